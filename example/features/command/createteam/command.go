package createteam

const commandType = "CreateTeam"

type Command struct {
	TeamID   string `json:"teamId" yaml:"teamId"`
	TeamName string `json:"teamName" yaml:"teamName"`
}

func (c Command) CommandType() string {
	return commandType
}

func BuildCommand(teamID, teamName string) Command {
	return Command{TeamID: teamID, TeamName: teamName}
}
