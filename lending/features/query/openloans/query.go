package openloans

import (
	"time"
)

const (
	queryType = "OpenLoans"
)

// Query asks for the loans open at At.
type Query struct {
	At time.Time
}

// BuildQuery creates a new Query with the provided parameters.
func BuildQuery(at time.Time) Query {
	return Query{At: at}
}

// QueryType returns the query type.
func (q Query) QueryType() string {
	return queryType
}
