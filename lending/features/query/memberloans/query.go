package memberloans

import (
	"time"

	"github.com/google/uuid"

	"github.com/indraarianggi/nestjs-library-app-sub000/lending/core"
)

const (
	queryType = "MemberLoans"
)

// Query represents the intent to list the loans of a member.
type Query struct {
	MemberID uuid.UUID
	Actor    core.Actor
	At       time.Time
}

// BuildQuery creates a new Query with the provided parameters.
func BuildQuery(memberID uuid.UUID, actor core.Actor, at time.Time) Query {
	return Query{
		MemberID: memberID,
		Actor:    actor,
		At:       at,
	}
}

// QueryType returns the query type.
func (q Query) QueryType() string {
	return queryType
}
