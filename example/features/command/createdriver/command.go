package createdriver

const commandType = "CreateDriver"

// Command represents the intent to create a driver in a team.
type Command struct {
	TeamID     string `json:"teamId" yaml:"teamId"`
	DriverID   string `json:"driverId" yaml:"driverId"`
	DriverName string `json:"driverName" yaml:"driverName"`
}

func (c Command) CommandType() string {
	return commandType
}

func BuildCommand(teamID, driverID, driverName string) Command {
	return Command{TeamID: teamID, DriverID: driverID, DriverName: driverName}
}
