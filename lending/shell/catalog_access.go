package shell

import (
	"context"

	"github.com/indraarianggi/nestjs-library-app-sub000/eventstore"
	"github.com/indraarianggi/nestjs-library-app-sub000/lending/core"
)

// Catalog holds the books and copies referenced by a set of loans, for display.
type Catalog struct {
	Books  map[core.BookIDString]core.Book
	Copies map[core.CopyIDString]core.Copy
}

// View enriches loan with its book and copy at now. Missing entries leave the summary fields empty.
func (c Catalog) View(loan core.Loan, now core.OccurredAt) core.LoanView {
	return core.BuildLoanView(loan, c.Books[loan.BookID], c.Copies[loan.CopyID], now)
}

// QueryCatalogOf loads the catalog entries and copies that loans reference, in one query.
func QueryCatalogOf(ctx context.Context, es QueriesEvents, loans ...core.Loan) (Catalog, error) {
	catalog := Catalog{
		Books:  make(map[core.BookIDString]core.Book),
		Copies: make(map[core.CopyIDString]core.Copy),
	}

	bookPredicates := make([]eventstore.FilterPredicate, 0, len(loans))
	copyPredicates := make([]eventstore.FilterPredicate, 0, len(loans))
	for _, loan := range loans {
		if loan.BookID != "" {
			bookPredicates = append(bookPredicates, eventstore.P("BookID", loan.BookID))
		}

		if loan.CopyID != "" {
			copyPredicates = append(copyPredicates, eventstore.P("CopyID", loan.CopyID))
		}
	}

	if len(bookPredicates) == 0 {
		return catalog, nil
	}

	builder := eventstore.BuildEventFilter().
		Matching().
		AnyEventTypeOf(core.BookAddedToCatalogEventType).
		AndAnyPredicateOf(bookPredicates[0], bookPredicates[1:]...)

	if len(copyPredicates) > 0 {
		builder = builder.
			OrMatching().
			AnyEventTypeOf(core.CopyAddedToInventoryEventType, core.CopyStatusChangedEventType, core.CopyClaimedEventType, core.CopyReleasedEventType).
			AndAnyPredicateOf(copyPredicates[0], copyPredicates[1:]...)
	}

	history, _, err := QueryHistory(ctx, es, builder.Finalize())
	if err != nil {
		return Catalog{}, err
	}

	for _, loan := range loans {
		if book, found := core.ProjectBook(history, loan.BookID); found {
			catalog.Books[loan.BookID] = book
		}
	}

	catalog.Copies = core.ProjectCopies(history)

	return catalog, nil
}
