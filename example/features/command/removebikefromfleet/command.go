package removebikefromfleet

const commandType = "RemoveBikeFromFleet"

type Command struct {
	BikeID string `json:"bikeId" yaml:"bikeId"`
	Reason string `json:"reason" yaml:"reason"`
}

func (c Command) CommandType() string {
	return commandType
}

func BuildCommand(bikeID, reason string) Command {
	return Command{BikeID: bikeID, Reason: reason}
}
