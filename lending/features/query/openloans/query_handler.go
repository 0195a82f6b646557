package openloans

import (
	"context"

	"github.com/indraarianggi/nestjs-library-app-sub000/eventstore"
	"github.com/indraarianggi/nestjs-library-app-sub000/lending/core"
	"github.com/indraarianggi/nestjs-library-app-sub000/lending/shell"
)

// QueryHandler runs Query -> Unmarshal -> Project over all loan events.
type QueryHandler struct {
	eventStore shell.QueriesEvents
}

// NewQueryHandler creates a new QueryHandler with the provided event store.
func NewQueryHandler(eventStore shell.QueriesEvents) QueryHandler {
	return QueryHandler{eventStore: eventStore}
}

// Handle returns the open loans enriched with their books and copies.
func (h QueryHandler) Handle(ctx context.Context, query Query) ([]core.LoanView, error) {
	ctx = eventstore.PreferEventualConsistency(ctx)

	history, _, err := shell.QueryHistory(ctx, h.eventStore, BuildEventFilter())
	if err != nil {
		return nil, err
	}

	loans := ProjectOpenLoans(history, query)

	catalog, err := shell.QueryCatalogOf(ctx, h.eventStore, loans...)
	if err != nil {
		return nil, err
	}

	views := make([]core.LoanView, 0, len(loans))
	for _, loan := range loans {
		views = append(views, catalog.View(loan, query.At))
	}

	return views, nil
}

// BuildEventFilter selects the events of all loans.
func BuildEventFilter() eventstore.Filter {
	loanEventTypes := core.LoanEventTypes()

	return eventstore.BuildEventFilter().
		Matching().
		AnyEventTypeOf(loanEventTypes[0], loanEventTypes[1:]...).
		Finalize()
}
