// Package returnbike implements the Return Bike use case, it ends the active rental of a user and a bike.
package returnbike
