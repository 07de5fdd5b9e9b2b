// Package removebikefromfleet implements the Remove Bike from Fleet use case.
package removebikefromfleet
