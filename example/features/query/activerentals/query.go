package activerentals

const queryType = "ActiveRentals"

// Query represents the intent to list the open rentals of the fleet.
type Query struct{}

func BuildQuery() Query {
	return Query{}
}

func (q Query) QueryType() string {
	return queryType
}
