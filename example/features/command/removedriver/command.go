package removedriver

const commandType = "RemoveDriver"

// Command represents the intent to remove a driver.
type Command struct {
	DriverID string `json:"driverId" yaml:"driverId"`
}

func (c Command) CommandType() string {
	return commandType
}

func BuildCommand(driverID string) Command {
	return Command{DriverID: driverID}
}
