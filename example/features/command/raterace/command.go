package raterace

const commandType = "RateRace"

type Command struct {
	RaceID  string `json:"raceId" yaml:"raceId"`
	UserID  string `json:"userId" yaml:"userId"`
	Rating  int    `json:"rating" yaml:"rating"`
	Comment string `json:"comment,omitempty" yaml:"comment,omitempty"`
}

func (c Command) CommandType() string {
	return commandType
}

func BuildCommand(raceID, userID string, rating int, comment string) Command {
	return Command{RaceID: raceID, UserID: userID, Rating: rating, Comment: comment}
}
