package cancelrace

const commandType = "CancelRace"

type Command struct {
	RaceID string `json:"raceId" yaml:"raceId"`
}

func (c Command) CommandType() string {
	return commandType
}

func BuildCommand(raceID string) Command {
	return Command{RaceID: raceID}
}
