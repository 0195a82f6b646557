package main

import (
	"context"
	"errors"
	"fmt"
	"math/rand/v2"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/indraarianggi/nestjs-library-app-sub000/lending/core"
	"github.com/indraarianggi/nestjs-library-app-sub000/lending/engine"
	"github.com/indraarianggi/nestjs-library-app-sub000/lending/features/query/openloans"
	"github.com/indraarianggi/nestjs-library-app-sub000/lending/shell"
)

const (
	scenarioBorrow = "borrow"
	scenarioReturn = "return"

	scenarioTimeout = 5 * time.Second
)

var admin = core.BuildActor("00000000-0000-4000-8000-000000000001", core.RoleAdmin)

// Stats counts scenario outcomes. Refused scenarios hit a business rule, failed ones anything else.
type Stats struct {
	Requests  int64
	Succeeded int64
	Refused   int64
	Failed    int64
}

type heldLoan struct {
	loanID uuid.UUID
	member core.Actor
}

// LoadGenerator lets many members compete for few copies of one book.
type LoadGenerator struct {
	lending   *engine.Engine
	openLoans openloans.QueryHandler
	config    Config
	logger    shell.ContextualLogger

	bookID  uuid.UUID
	members []core.Actor

	mu    sync.Mutex
	held  []heldLoan
	stats Stats

	wg sync.WaitGroup
}

func NewLoadGenerator(lending *engine.Engine, eventStore shell.QueriesEvents, config Config, logger shell.ContextualLogger) *LoadGenerator {
	return &LoadGenerator{
		lending:   lending,
		openLoans: openloans.NewQueryHandler(eventStore),
		config:    config,
		logger:    logger,
	}
}

// Seed configures an auto-approving policy, one book with config.Copies copies and config.Members active members.
func (lg *LoadGenerator) Seed(ctx context.Context) error {
	policy := core.Policy{
		ApprovalsRequired:    false,
		LoanDays:             14,
		MaxRenewals:          2,
		OverdueFeePerDay:     decimal.RequireFromString("1.00"),
		OverdueFeeCapPerLoan: decimal.RequireFromString("50.00"),
		MaxConcurrentLoans:   3,
	}
	if err := lg.lending.UpdatePolicy(ctx, admin, policy); err != nil {
		return fmt.Errorf("seeding policy: %w", err)
	}

	bookID, err := lg.lending.AddBook(ctx, admin, engine.NewBook{ISBN: "978-0000000000", Title: "Load Test Book", Authors: []string{"Test Author"}})
	if err != nil {
		return fmt.Errorf("seeding book: %w", err)
	}
	lg.bookID = bookID

	for i := range lg.config.Copies {
		if _, err := lg.lending.AddCopy(ctx, admin, bookID, fmt.Sprintf("LT-%04d", i+1)); err != nil {
			return fmt.Errorf("seeding copy: %w", err)
		}
	}

	for i := range lg.config.Members {
		memberID := uuid.New()
		email := fmt.Sprintf("member-%d@loadtest.local", i+1)
		if err := lg.lending.RegisterMember(ctx, admin, memberID, fmt.Sprintf("Member %d", i+1), email, core.MemberActive); err != nil {
			return fmt.Errorf("seeding member: %w", err)
		}

		lg.members = append(lg.members, core.BuildActor(memberID.String(), core.RoleMember))
	}

	return nil
}

// Start runs scenarios at config.Rate per second until ctx is done.
func (lg *LoadGenerator) Start(ctx context.Context) {
	ticker := time.NewTicker(time.Second / time.Duration(lg.config.Rate))
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			lg.wg.Add(1)
			go lg.executeScenario(ctx)
		}
	}
}

// Burst runs n scenarios at once and waits for them.
func (lg *LoadGenerator) Burst(ctx context.Context, n int) {
	for range n {
		lg.wg.Add(1)
		go lg.executeScenario(ctx)
	}

	lg.wg.Wait()
}

// Wait blocks until in-flight scenarios are done or ctx ends.
func (lg *LoadGenerator) Wait(ctx context.Context) error {
	done := make(chan struct{})
	go func() {
		lg.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (lg *LoadGenerator) Stats() Stats {
	lg.mu.Lock()
	defer lg.mu.Unlock()

	return lg.stats
}

// Verify fails if any copy is held by more than one open loan.
func (lg *LoadGenerator) Verify(ctx context.Context) error {
	views, err := lg.openLoans.Handle(ctx, openloans.BuildQuery(time.Now()))
	if err != nil {
		return err
	}

	holders := make(map[string]int)
	for _, view := range views {
		holders[view.CopyID]++
	}

	var errs []error
	for copyID, count := range holders {
		if count > 1 {
			errs = append(errs, fmt.Errorf("copy %s has %d open loans", copyID, count))
		}
	}

	if len(views) > lg.config.Copies {
		errs = append(errs, fmt.Errorf("%d open loans for %d copies", len(views), lg.config.Copies))
	}

	return errors.Join(errs...)
}

func (lg *LoadGenerator) executeScenario(ctx context.Context) {
	defer lg.wg.Done()

	opCtx, cancel := context.WithTimeout(ctx, scenarioTimeout)
	defer cancel()

	scenario := lg.selectScenario()

	var err error
	switch scenario {
	case scenarioReturn:
		err = lg.runReturnScenario(opCtx)
	default:
		err = lg.runBorrowScenario(opCtx)
	}

	lg.record(ctx, scenario, err)
}

func (lg *LoadGenerator) selectScenario() string {
	if rand.IntN(100) < lg.config.ReturnWeight { //nolint:gosec // load test, weak random is fine
		return scenarioReturn
	}

	return scenarioBorrow
}

func (lg *LoadGenerator) runBorrowScenario(ctx context.Context) error {
	member := lg.members[rand.IntN(len(lg.members))] //nolint:gosec // load test, weak random is fine

	view, err := lg.lending.CreateLoan(ctx, member, lg.bookID, uuid.NullUUID{})
	if err != nil {
		return err
	}

	loanID := uuid.MustParse(view.LoanID)
	if _, err := lg.lending.CheckoutLoan(ctx, admin, loanID); err != nil {
		return err
	}

	lg.mu.Lock()
	lg.held = append(lg.held, heldLoan{loanID: loanID, member: member})
	lg.mu.Unlock()

	return nil
}

// runReturnScenario hands back a random held loan. With nothing on loan it borrows instead.
func (lg *LoadGenerator) runReturnScenario(ctx context.Context) error {
	lg.mu.Lock()
	if len(lg.held) == 0 {
		lg.mu.Unlock()
		return lg.runBorrowScenario(ctx)
	}

	i := rand.IntN(len(lg.held)) //nolint:gosec // load test, weak random is fine
	loan := lg.held[i]
	lg.held = append(lg.held[:i], lg.held[i+1:]...)
	lg.mu.Unlock()

	_, err := lg.lending.ReturnLoan(ctx, loan.member, loan.loanID)

	return err
}

func (lg *LoadGenerator) record(ctx context.Context, scenario string, err error) {
	lg.mu.Lock()
	defer lg.mu.Unlock()

	lg.stats.Requests++

	switch {
	case err == nil:
		lg.stats.Succeeded++
	case errors.Is(err, core.ErrConflict), errors.Is(err, core.ErrForbidden), errors.Is(err, core.ErrNotFound):
		lg.stats.Refused++
	default:
		lg.stats.Failed++
		lg.logger.WarnContext(ctx, "scenario failed", "scenario", scenario, "error", err.Error())
	}
}
