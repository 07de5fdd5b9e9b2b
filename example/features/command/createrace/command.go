package createrace

const commandType = "CreateRace"

type Command struct {
	RaceID                 string   `json:"raceId" yaml:"raceId"`
	ParticipatingDriverIDs []string `json:"participatingDriverIds" yaml:"participatingDriverIds"`
	RaceDate               string   `json:"raceDate" yaml:"raceDate"`
	TrackName              string   `json:"trackName" yaml:"trackName"`
}

func (c Command) CommandType() string {
	return commandType
}

func BuildCommand(raceID, raceDate, trackName string, participatingDriverIDs ...string) Command {
	return Command{
		RaceID:                 raceID,
		ParticipatingDriverIDs: participatingDriverIDs,
		RaceDate:               raceDate,
		TrackName:              trackName,
	}
}
