package core

import (
	"github.com/dcbkit/dcb-runtime-go/entity"
)

// Tag keys used by the example domains.
const (
	TagDriver = "Driver"
	TagTeam   = "Team"
	TagRace   = "Race"
	TagUser   = "User"
	TagEmail  = "Email"
	TagBike   = "Bike"
	TagRental = "Rental"

	TagBooking   = "Booking"
	TagGuest     = "Guest"
	TagContainer = "Container"
)

// Result is what the example commands return to the caller, for accepted and rejected commands alike.
type Result struct {
	Success bool   `json:"success" yaml:"success"`
	Message string `json:"message" yaml:"message"`
	ID      string `json:"id,omitempty" yaml:"id,omitempty"`
}

func Succeeded(message string) Result {
	return Result{Success: true, Message: message}
}

func SucceededWithID(message, id string) Result {
	return Result{Success: true, Message: message, ID: id}
}

func Failed(message string) Result {
	return Result{Success: false, Message: message}
}

// DriverID identifies a driver.
type DriverID string

func (id DriverID) IdentityKey() string { return string(id) }

func ParseDriverID(raw string) (DriverID, error) {
	id, err := entity.ParseID(raw)
	return DriverID(id), err
}

// TeamID identifies a team.
type TeamID string

func (id TeamID) IdentityKey() string { return string(id) }

func ParseTeamID(raw string) (TeamID, error) {
	id, err := entity.ParseID(raw)
	return TeamID(id), err
}

// RaceID identifies a race.
type RaceID string

func (id RaceID) IdentityKey() string { return string(id) }

func ParseRaceID(raw string) (RaceID, error) {
	id, err := entity.ParseID(raw)
	return RaceID(id), err
}

// Email identifies a user account.
type Email string

func (e Email) IdentityKey() string { return string(e) }

func ParseEmail(raw string) (Email, error) {
	id, err := entity.ParseID(raw)
	return Email(id), err
}

// BikeID identifies a bike of the fleet.
type BikeID string

func (id BikeID) IdentityKey() string { return string(id) }

func ParseBikeID(raw string) (BikeID, error) {
	id, err := entity.ParseID(raw)
	return BikeID(id), err
}

// RentalTarget is the composite identifier of a rental decision: one user and one bike.
type RentalTarget struct {
	UserID string
	BikeID string
}

func (t RentalTarget) IdentityKey() string {
	return entity.CompositeKey(t.UserID, t.BikeID)
}

// ParseRentalTarget parses "<userID>|<bikeID>".
func ParseRentalTarget(raw string) (RentalTarget, error) {
	parts, err := entity.SplitCompositeKey(raw, 2)
	if err != nil {
		return RentalTarget{}, err
	}

	return RentalTarget{UserID: parts[0], BikeID: parts[1]}, nil
}
