package engine_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/indraarianggi/nestjs-library-app-sub000/eventstore"
	"github.com/indraarianggi/nestjs-library-app-sub000/eventstore/memengine"
	"github.com/indraarianggi/nestjs-library-app-sub000/lending/core"
	"github.com/indraarianggi/nestjs-library-app-sub000/lending/engine"
	"github.com/indraarianggi/nestjs-library-app-sub000/lending/policy"
	"github.com/indraarianggi/nestjs-library-app-sub000/lending/shell"
	"github.com/indraarianggi/nestjs-library-app-sub000/testutil/fixtures"
)

/***** test doubles *****/

type clock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *clock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()

	return c.now
}

func (c *clock) Set(now time.Time) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.now = now
}

type publisherSpy struct {
	mu     sync.Mutex
	events core.DomainEvents
}

func (p *publisherSpy) Publish(_ context.Context, events core.DomainEvents) {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.events = append(p.events, events...)
}

func (p *publisherSpy) eventTypes() []string {
	p.mu.Lock()
	defer p.mu.Unlock()

	return fixtures.EventTypes(p.events)
}

type fixedPolicy core.Policy

func (p fixedPolicy) Current(context.Context) (core.Policy, error) {
	return core.Policy(p), nil
}

type failingSaver struct {
	calls int
}

func (s *failingSaver) Save(context.Context, core.Policy, string) error {
	s.calls++

	return errors.New("settings table unavailable")
}

type alwaysConflicting struct {
	*memengine.EventStore
}

func (alwaysConflicting) Append(context.Context, eventstore.Filter, eventstore.MaxSequenceNumberUint, ...eventstore.StorableEvent) error {
	return eventstore.ErrConcurrencyConflict
}

// laggingReplica serves eventually consistent reads from a replica that has not caught up yet.
type laggingReplica struct {
	*memengine.EventStore
}

func (r laggingReplica) Query(ctx context.Context, filter eventstore.Filter) (
	eventstore.StorableEvents,
	eventstore.MaxSequenceNumberUint,
	error,
) {
	if eventstore.GetConsistencyLevel(ctx) == eventstore.EventualConsistency {
		return eventstore.StorableEvents{}, 0, nil
	}

	return r.EventStore.Query(ctx, filter)
}

/***** helpers *****/

type library struct {
	engine    *engine.Engine
	store     *memengine.EventStore
	publisher *publisherSpy
	clock     *clock
	bookID    uuid.UUID
	copyIDs   []uuid.UUID
}

// givenLibrary sets up an engine over an event-sourced policy, one book and copies with the given codes.
func givenLibrary(t *testing.T, lendingPolicy core.Policy, codes ...string) *library {
	t.Helper()

	es := memengine.NewEventStore()
	lib := &library{store: es, publisher: &publisherSpy{}, clock: &clock{now: fixtures.Now}}

	e, err := engine.New(es, policy.NewEventStoreProvider(es),
		engine.WithPublisher(lib.publisher),
		engine.WithClock(lib.clock.Now),
	)
	require.NoError(t, err)
	lib.engine = e

	ctx := context.Background()
	require.NoError(t, e.UpdatePolicy(ctx, fixtures.Admin(), lendingPolicy))

	lib.bookID, err = e.AddBook(ctx, fixtures.Admin(), engine.NewBook{
		ISBN:            "978-0-13-468599-1",
		Title:           "The Go Programming Language",
		Authors:         []string{"Alan A. A. Donovan", "Brian W. Kernighan"},
		PublicationYear: 2015,
	})
	require.NoError(t, err)

	for _, code := range codes {
		copyID, err := e.AddCopy(ctx, fixtures.Admin(), lib.bookID, code)
		require.NoError(t, err)
		lib.copyIDs = append(lib.copyIDs, copyID)
	}

	return lib
}

func (l *library) givenMember(t *testing.T) core.Actor {
	t.Helper()

	memberID := uuid.New()
	require.NoError(t, l.engine.RegisterMember(context.Background(), fixtures.Admin(), memberID, "Jane Reader", memberID.String()+"@example.org", core.MemberActive))

	return fixtures.Borrower(memberID)
}

/***** loan lifecycle *****/

func Test_Engine_AutoApprovedLoanLifecycle(t *testing.T) {
	// arrange
	lib := givenLibrary(t, fixtures.Policy(), "B-002", "B-001")
	borrower := lib.givenMember(t)
	ctx := context.Background()

	// act + assert: create takes the lowest-coded copy and approves right away
	created, err := lib.engine.CreateLoan(ctx, borrower, lib.bookID, uuid.NullUUID{})
	require.NoError(t, err)
	assert.Equal(t, core.StatusApproved, created.Status)
	assert.Equal(t, "B-001", created.CopyCode)
	assert.Equal(t, "The Go Programming Language", created.BookTitle)
	require.NotNil(t, created.DueDate)
	assert.Equal(t, fixtures.Now.AddDate(0, 0, 14), *created.DueDate)

	loanID := uuid.MustParse(created.LoanID)

	checkedOut, err := lib.engine.CheckoutLoan(ctx, fixtures.Admin(), loanID)
	require.NoError(t, err)
	assert.Equal(t, core.StatusActive, checkedOut.Status)
	assert.Equal(t, created.BorrowedAt, checkedOut.BorrowedAt)

	renewed, err := lib.engine.RenewLoan(ctx, borrower, loanID)
	require.NoError(t, err)
	assert.Equal(t, 1, renewed.RenewalCount)
	assert.Equal(t, fixtures.Now.AddDate(0, 0, 28), *renewed.DueDate)

	lib.clock.Set(renewed.DueDate.AddDate(0, 0, 2).Add(time.Hour))

	overdue, err := lib.engine.GetLoan(ctx, borrower, loanID)
	require.NoError(t, err)
	assert.Equal(t, core.StatusOverdue, overdue.Status)

	returned, err := lib.engine.ReturnLoan(ctx, borrower, loanID)
	require.NoError(t, err)
	assert.Equal(t, core.StatusReturned, returned.Status)
	assert.True(t, decimal.RequireFromString("3.00").Equal(returned.PenaltyAccrued))
	assert.Equal(t, 3, returned.OverdueDays)
	require.NotNil(t, returned.ReturnedAt)

	// the published events are the committed ones, audit entries included
	assert.Subset(t, lib.publisher.eventTypes(), []string{
		core.LoanRequestedEventType,
		core.LoanApprovedEventType,
		core.CopyClaimedEventType,
		core.LoanCheckedOutEventType,
		core.LoanRenewedEventType,
		core.LoanReturnedEventType,
		core.CopyReleasedEventType,
		core.AuditEntryRecordedEventType,
	})

	loans, err := lib.engine.MemberLoans(ctx, borrower, uuid.MustParse(borrower.ID))
	require.NoError(t, err)
	require.Len(t, loans, 1)
	assert.Equal(t, core.StatusReturned, loans[0].Status)
}

func Test_Engine_ApprovalFlow(t *testing.T) {
	// arrange
	lib := givenLibrary(t, fixtures.ApprovalPolicy(), "B-001")
	borrower := lib.givenMember(t)
	ctx := context.Background()

	requested, err := lib.engine.CreateLoan(ctx, borrower, lib.bookID, uuid.NullUUID{})
	require.NoError(t, err)
	require.Equal(t, core.StatusRequested, requested.Status)
	assert.Nil(t, requested.DueDate)

	loanID := uuid.MustParse(requested.LoanID)

	// act
	approved, err := lib.engine.ApproveLoan(ctx, fixtures.Admin(), loanID, lib.copyIDs[0])

	// assert
	require.NoError(t, err)
	assert.Equal(t, core.StatusApproved, approved.Status)
	assert.Equal(t, "B-001", approved.CopyCode)

	_, err = lib.engine.RejectLoan(ctx, fixtures.Admin(), loanID, "too late")
	assert.ErrorIs(t, err, core.ErrConflict)

	cancelled, err := lib.engine.CancelLoan(ctx, borrower, loanID)
	require.NoError(t, err)
	assert.Equal(t, core.StatusCancelled, cancelled.Status)
}

func Test_Engine_RejectLoan(t *testing.T) {
	lib := givenLibrary(t, fixtures.ApprovalPolicy(), "B-001")
	borrower := lib.givenMember(t)
	ctx := context.Background()

	requested, err := lib.engine.CreateLoan(ctx, borrower, lib.bookID, uuid.NullUUID{})
	require.NoError(t, err)

	rejected, err := lib.engine.RejectLoan(ctx, fixtures.Admin(), uuid.MustParse(requested.LoanID), "damaged shelf")

	require.NoError(t, err)
	assert.Equal(t, core.StatusRejected, rejected.Status)
	assert.Equal(t, "damaged shelf", rejected.RejectionReason)
}

/***** policy *****/

func Test_Engine_RefusesLoanOperationsWithoutPolicy(t *testing.T) {
	// arrange
	es := memengine.NewEventStore()
	bookID, copyID, memberID := uuid.New(), uuid.New(), uuid.New()
	fixtures.Seed(t, es, fixtures.Book(bookID), fixtures.Copy(copyID, bookID, "B-001"), fixtures.Member(memberID, core.MemberActive))

	e, err := engine.New(es, policy.NewEventStoreProvider(es))
	require.NoError(t, err)

	// act
	_, err = e.CreateLoan(context.Background(), fixtures.Borrower(memberID), bookID, uuid.NullUUID{})

	// assert
	assert.ErrorIs(t, err, core.ErrConfiguration)
	assert.ErrorIs(t, err, core.ErrPolicyMissing)
	assert.NotContains(t, fixtures.EventTypes(fixtures.StoredEvents(t, es)), core.LoanRequestedEventType)
}

func Test_Engine_UpdatePolicy_SavesToPolicySaver(t *testing.T) {
	// arrange
	settings := policy.NewSettingsTableProvider(fixtures.NewGormDB(t, &policy.LendingSettings{}))
	e, err := engine.New(memengine.NewEventStore(), settings, engine.WithPolicySaver(settings))
	require.NoError(t, err)

	// act
	err = e.UpdatePolicy(context.Background(), fixtures.Admin(), fixtures.ApprovalPolicy())

	// assert
	require.NoError(t, err)

	current, err := settings.Current(context.Background())
	require.NoError(t, err)
	assert.True(t, current.Equal(fixtures.ApprovalPolicy()))
}

func Test_Engine_UpdatePolicy_FailedSave_AppendsNothing(t *testing.T) {
	// arrange
	es := memengine.NewEventStore()
	saver := &failingSaver{}
	e, err := engine.New(es, fixedPolicy(fixtures.Policy()), engine.WithPolicySaver(saver))
	require.NoError(t, err)

	// act
	err = e.UpdatePolicy(context.Background(), fixtures.Admin(), fixtures.ApprovalPolicy())

	// assert
	require.Error(t, err)
	assert.Equal(t, 1, saver.calls)
	assert.Empty(t, fixtures.StoredEvents(t, es))
}

func Test_Engine_UpdatePolicy_NonAdmin_IsNotSaved(t *testing.T) {
	// arrange
	saver := &failingSaver{}
	e, err := engine.New(memengine.NewEventStore(), fixedPolicy(fixtures.Policy()), engine.WithPolicySaver(saver))
	require.NoError(t, err)

	// act
	err = e.UpdatePolicy(context.Background(), fixtures.Borrower(uuid.New()), fixtures.ApprovalPolicy())

	// assert
	assert.ErrorIs(t, err, core.ErrForbidden)
	assert.Zero(t, saver.calls)
}

func Test_Engine_UpdatePolicy_RejectsInvalidPolicy(t *testing.T) {
	e, err := engine.New(memengine.NewEventStore(), nil)
	require.NoError(t, err)

	invalid := fixtures.Policy()
	invalid.LoanDays = -1

	err = e.UpdatePolicy(context.Background(), fixtures.Admin(), invalid)

	assert.ErrorIs(t, err, core.ErrConflict)
}

/***** callers and conflicts *****/

func Test_Engine_RejectsCallerWithoutIdentity(t *testing.T) {
	e, err := engine.New(memengine.NewEventStore(), nil)
	require.NoError(t, err)

	_, err = e.CreateLoan(context.Background(), core.Actor{}, uuid.New(), uuid.NullUUID{})

	assert.ErrorIs(t, err, core.ErrForbidden)
	assert.NotErrorIs(t, err, core.ErrConfiguration)
}

func Test_Engine_ExhaustedConflictRetries_AreConflicts(t *testing.T) {
	// arrange
	bookID, memberID := uuid.New(), uuid.New()
	es := fixtures.NewStore(t, fixtures.Book(bookID), fixtures.Copy(uuid.New(), bookID, "B-001"), fixtures.Member(memberID, core.MemberActive))

	e, err := engine.New(alwaysConflicting{es}, fixedPolicy(fixtures.Policy()),
		engine.WithRetryOptions(shell.WithMaxAttempts(2), shell.WithBaseDelay(0)),
	)
	require.NoError(t, err)

	// act
	_, err = e.CreateLoan(context.Background(), fixtures.Borrower(memberID), bookID, uuid.NullUUID{})

	// assert
	assert.ErrorIs(t, err, core.ErrConflict)
	assert.Equal(t, "concurrent update, please retry", core.ReasonOf(err))
}

func Test_Engine_LoanCommands_ReadTheResultFromThePrimary(t *testing.T) {
	// arrange
	bookID, copyID, memberID := uuid.New(), uuid.New(), uuid.New()
	es := fixtures.NewStore(t, fixtures.Book(bookID), fixtures.Copy(copyID, bookID, "B-001"), fixtures.Member(memberID, core.MemberActive))

	e, err := engine.New(laggingReplica{es}, fixedPolicy(fixtures.Policy()))
	require.NoError(t, err)

	borrower := fixtures.Borrower(memberID)
	ctx := context.Background()

	// act
	created, err := e.CreateLoan(ctx, borrower, bookID, uuid.NullUUID{})
	require.NoError(t, err)

	_, staleErr := e.GetLoan(ctx, borrower, uuid.MustParse(created.LoanID))

	// assert
	assert.Equal(t, core.StatusApproved, created.Status)
	assert.Equal(t, copyID.String(), created.CopyID)
	assert.ErrorIs(t, staleErr, core.ErrNotFound, "plain reads stay eventually consistent")
}

func Test_Engine_CreateLoan_WithRequestedCopy(t *testing.T) {
	// arrange
	lib := givenLibrary(t, fixtures.Policy(), "B-001", "B-002")
	borrower := lib.givenMember(t)
	requested := uuid.NullUUID{UUID: lib.copyIDs[1], Valid: true}

	// act
	created, err := lib.engine.CreateLoan(context.Background(), borrower, lib.bookID, requested)

	// assert
	require.NoError(t, err)
	assert.Equal(t, lib.copyIDs[1].String(), created.CopyID)
	assert.Equal(t, "B-002", created.CopyCode)
}

func Test_Engine_ConcurrentRequestsForTheLastCopy(t *testing.T) {
	// arrange
	lib := givenLibrary(t, fixtures.Policy(), "B-001")
	borrowers := make([]core.Actor, 4)
	for i := range borrowers {
		borrowers[i] = lib.givenMember(t)
	}

	// act
	var wg sync.WaitGroup
	errs := make([]error, len(borrowers))
	for i, borrower := range borrowers {
		wg.Add(1)
		go func(i int, borrower core.Actor) {
			defer wg.Done()
			_, errs[i] = lib.engine.CreateLoan(context.Background(), borrower, lib.bookID, uuid.NullUUID{})
		}(i, borrower)
	}
	wg.Wait()

	// assert
	succeeded := 0
	for _, err := range errs {
		if err == nil {
			succeeded++
			continue
		}

		assert.ErrorIs(t, err, core.ErrConflict)
	}

	assert.Equal(t, 1, succeeded)
}

func Test_Engine_ConcurrentApprovals_AtTheLoanCap(t *testing.T) {
	// arrange
	lendingPolicy := fixtures.ApprovalPolicy()
	lendingPolicy.MaxConcurrentLoans = 2
	lib := givenLibrary(t, lendingPolicy, "B-001", "B-002", "B-003")
	borrower := lib.givenMember(t)
	ctx := context.Background()

	first, err := lib.engine.CreateLoan(ctx, borrower, lib.bookID, uuid.NullUUID{})
	require.NoError(t, err)
	_, err = lib.engine.ApproveLoan(ctx, fixtures.Admin(), uuid.MustParse(first.LoanID), lib.copyIDs[0])
	require.NoError(t, err)

	pending := make([]uuid.UUID, 2)
	for i := range pending {
		requested, err := lib.engine.CreateLoan(ctx, borrower, lib.bookID, uuid.NullUUID{})
		require.NoError(t, err)
		require.Equal(t, core.StatusRequested, requested.Status)
		pending[i] = uuid.MustParse(requested.LoanID)
	}

	// act
	var wg sync.WaitGroup
	errs := make([]error, len(pending))
	for i, loanID := range pending {
		wg.Add(1)
		go func(i int, loanID uuid.UUID) {
			defer wg.Done()
			_, errs[i] = lib.engine.ApproveLoan(ctx, fixtures.Admin(), loanID, lib.copyIDs[i+1])
		}(i, loanID)
	}
	wg.Wait()

	// assert
	succeeded := 0
	for _, err := range errs {
		if err == nil {
			succeeded++
			continue
		}

		assert.ErrorIs(t, err, core.ErrConflict)
		assert.Equal(t, "borrower no longer eligible: has reached the maximum of 2 concurrent loans", core.ReasonOf(err))
	}
	assert.Equal(t, 1, succeeded)

	loans, err := lib.engine.MemberLoans(ctx, borrower, uuid.MustParse(borrower.ID))
	require.NoError(t, err)

	open := 0
	for _, loan := range loans {
		if loan.Status.IsOpen() {
			open++
		}
	}
	assert.Equal(t, 2, open)
}

/***** admin *****/

func Test_Engine_ChangeCopyStatus_RefusesCopyOnLoan(t *testing.T) {
	lib := givenLibrary(t, fixtures.Policy(), "B-001")
	borrower := lib.givenMember(t)
	ctx := context.Background()

	_, err := lib.engine.CreateLoan(ctx, borrower, lib.bookID, uuid.NullUUID{})
	require.NoError(t, err)

	err = lib.engine.ChangeCopyStatus(ctx, fixtures.Admin(), lib.copyIDs[0], core.CopyLost)

	assert.ErrorIs(t, err, core.ErrConflict)
}

func Test_Engine_SuspendedMemberCannotBorrow(t *testing.T) {
	lib := givenLibrary(t, fixtures.Policy(), "B-001")
	borrower := lib.givenMember(t)
	ctx := context.Background()

	require.NoError(t, lib.engine.ChangeMemberStatus(ctx, fixtures.Admin(), uuid.MustParse(borrower.ID), core.MemberSuspended))

	_, err := lib.engine.CreateLoan(ctx, borrower, lib.bookID, uuid.NullUUID{})

	assert.ErrorIs(t, err, core.ErrForbidden)
	assert.Equal(t, "membership is not active (SUSPENDED)", core.ReasonOf(err))
}
