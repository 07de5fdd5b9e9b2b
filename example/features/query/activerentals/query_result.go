package activerentals

import (
	"time"
)

// RentalInfo is one open rental. RentedAt is when the rental was requested.
type RentalInfo struct {
	RentalID string    `json:"rentalId"`
	BikeID   string    `json:"bikeId"`
	UserID   string    `json:"userId"`
	RentedAt time.Time `json:"rentedAt"`
}

// ActiveRentals is the result of the query.
type ActiveRentals struct {
	Rentals        []RentalInfo `json:"rentals"`
	Count          int          `json:"count"`
	SequenceNumber uint         `json:"sequenceNumber"`
}
