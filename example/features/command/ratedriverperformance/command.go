package ratedriverperformance

import (
	"github.com/dcbkit/dcb-runtime-go/entity"
)

const commandType = "RateDriverPerformance"

type Command struct {
	UserID   string `json:"userId" yaml:"userId"`
	DriverID string `json:"driverId" yaml:"driverId"`
	RaceID   string `json:"raceId" yaml:"raceId"`
	Rating   int    `json:"rating" yaml:"rating"`
}

func (c Command) CommandType() string {
	return commandType
}

func BuildCommand(userID, driverID, raceID string, rating int) Command {
	return Command{UserID: userID, DriverID: driverID, RaceID: raceID, Rating: rating}
}

// Target is the composite identifier of one rating.
type Target struct {
	UserID   string
	DriverID string
	RaceID   string
}

func (t Target) IdentityKey() string {
	return entity.CompositeKey(t.UserID, t.DriverID, t.RaceID)
}

// ParseTarget parses "<userID>|<driverID>|<raceID>".
func ParseTarget(raw string) (Target, error) {
	parts, err := entity.SplitCompositeKey(raw, 3)
	if err != nil {
		return Target{}, err
	}

	return Target{UserID: parts[0], DriverID: parts[1], RaceID: parts[2]}, nil
}
