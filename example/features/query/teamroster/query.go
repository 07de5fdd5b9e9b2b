package teamroster

const queryType = "TeamRoster"

// Query represents the intent to list the drivers of a team.
type Query struct {
	TeamID string
}

func BuildQuery(teamID string) Query {
	return Query{TeamID: teamID}
}

func (q Query) QueryType() string {
	return queryType
}
