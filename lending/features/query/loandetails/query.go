package loandetails

import (
	"time"

	"github.com/google/uuid"

	"github.com/indraarianggi/nestjs-library-app-sub000/lending/core"
)

const (
	queryType = "LoanDetails"
)

// Query represents the intent to read one loan. At is the instant the effective status is derived for.
type Query struct {
	LoanID uuid.UUID
	Actor  core.Actor
	At     time.Time
}

// BuildQuery creates a new Query with the provided parameters.
func BuildQuery(loanID uuid.UUID, actor core.Actor, at time.Time) Query {
	return Query{
		LoanID: loanID,
		Actor:  actor,
		At:     at,
	}
}

// QueryType returns the query type.
func (q Query) QueryType() string {
	return queryType
}
