package loandetails

import (
	"context"

	"github.com/indraarianggi/nestjs-library-app-sub000/eventstore"
	"github.com/indraarianggi/nestjs-library-app-sub000/lending/core"
	"github.com/indraarianggi/nestjs-library-app-sub000/lending/shell"
)

// QueryHandler runs Query -> Unmarshal -> Project for the loan, then loads its book and copy.
type QueryHandler struct {
	eventStore shell.QueriesEvents
}

// NewQueryHandler creates a new QueryHandler with the provided event store.
func NewQueryHandler(eventStore shell.QueriesEvents) QueryHandler {
	return QueryHandler{eventStore: eventStore}
}

// Handle returns the enriched loan.
func (h QueryHandler) Handle(ctx context.Context, query Query) (core.LoanView, error) {
	ctx = eventstore.PreferEventualConsistency(ctx)

	history, _, err := shell.QueryHistory(ctx, h.eventStore, shell.LoanFilter(query.LoanID.String()))
	if err != nil {
		return core.LoanView{}, err
	}

	loan, err := ProjectLoan(history, query)
	if err != nil {
		return core.LoanView{}, err
	}

	catalog, err := shell.QueryCatalogOf(ctx, h.eventStore, loan)
	if err != nil {
		return core.LoanView{}, err
	}

	return catalog.View(loan, query.At), nil
}
