// Package requestbikerental implements the Request Bike Rental use case.
//
// The decision spans a bike and a user: the bike must be in the fleet and free, the user must not have
// an active rental. Its stream is the union of the bike's and the user's events.
package requestbikerental
