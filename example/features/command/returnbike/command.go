package returnbike

const commandType = "ReturnBike"

type Command struct {
	UserID string `json:"userId" yaml:"userId"`
	BikeID string `json:"bikeId" yaml:"bikeId"`
}

func (c Command) CommandType() string {
	return commandType
}

func BuildCommand(userID, bikeID string) Command {
	return Command{UserID: userID, BikeID: bikeID}
}
