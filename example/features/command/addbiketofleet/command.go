package addbiketofleet

const commandType = "AddBikeToFleet"

type Command struct {
	BikeID   string `json:"bikeId" yaml:"bikeId"`
	Location string `json:"location" yaml:"location"`
	BikeType string `json:"bikeType" yaml:"bikeType"`
}

func (c Command) CommandType() string {
	return commandType
}

func BuildCommand(bikeID, location, bikeType string) Command {
	return Command{BikeID: bikeID, Location: location, BikeType: bikeType}
}
