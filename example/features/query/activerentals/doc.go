// Package activerentals implements the Active Rentals query use case.
//
// It lists every bike that is rented out right now, oldest rental first.
package activerentals
