package engine

import (
	"context"

	"github.com/google/uuid"

	"github.com/indraarianggi/nestjs-library-app-sub000/eventstore"
	"github.com/indraarianggi/nestjs-library-app-sub000/lending/core"
	"github.com/indraarianggi/nestjs-library-app-sub000/lending/features/command/approveloan"
	"github.com/indraarianggi/nestjs-library-app-sub000/lending/features/command/cancelloan"
	"github.com/indraarianggi/nestjs-library-app-sub000/lending/features/command/checkoutloan"
	"github.com/indraarianggi/nestjs-library-app-sub000/lending/features/command/createloan"
	"github.com/indraarianggi/nestjs-library-app-sub000/lending/features/command/rejectloan"
	"github.com/indraarianggi/nestjs-library-app-sub000/lending/features/command/renewloan"
	"github.com/indraarianggi/nestjs-library-app-sub000/lending/features/command/returnloan"
	"github.com/indraarianggi/nestjs-library-app-sub000/lending/features/query/loandetails"
	"github.com/indraarianggi/nestjs-library-app-sub000/lending/features/query/memberloans"
)

// CreateLoan requests bookID for the calling member. An invalid copyID takes the
// lowest-coded available copy. Under an auto-approving policy the loan comes back APPROVED.
func (e *Engine) CreateLoan(ctx context.Context, actor core.Actor, bookID uuid.UUID, copyID uuid.NullUUID) (core.LoanView, error) {
	loanID := uuid.New()

	return e.runLoanCommand(ctx, actor, loanID, func(policy core.Policy) error {
		return execute(ctx, e, e.commands.createLoan, createloan.BuildCommand(loanID, bookID, copyID, actor, policy, e.now()))
	})
}

// ApproveLoan assigns copyID to a REQUESTED loan.
func (e *Engine) ApproveLoan(ctx context.Context, actor core.Actor, loanID, copyID uuid.UUID) (core.LoanView, error) {
	return e.runLoanCommand(ctx, actor, loanID, func(policy core.Policy) error {
		return execute(ctx, e, e.commands.approveLoan, approveloan.BuildCommand(loanID, copyID, actor, policy, e.now()))
	})
}

// RejectLoan declines a REQUESTED loan. reason may be empty.
func (e *Engine) RejectLoan(ctx context.Context, actor core.Actor, loanID uuid.UUID, reason string) (core.LoanView, error) {
	return e.runLoanCommand(ctx, actor, loanID, func(core.Policy) error {
		return execute(ctx, e, e.commands.rejectLoan, rejectloan.BuildCommand(loanID, reason, actor, e.now()))
	})
}

// CheckoutLoan hands the assigned copy of an APPROVED loan to the borrower.
func (e *Engine) CheckoutLoan(ctx context.Context, actor core.Actor, loanID uuid.UUID) (core.LoanView, error) {
	return e.runLoanCommand(ctx, actor, loanID, func(core.Policy) error {
		return execute(ctx, e, e.commands.checkoutLoan, checkoutloan.BuildCommand(loanID, actor, e.now()))
	})
}

// RenewLoan extends the due date of an ACTIVE loan by one loan period.
func (e *Engine) RenewLoan(ctx context.Context, actor core.Actor, loanID uuid.UUID) (core.LoanView, error) {
	return e.runLoanCommand(ctx, actor, loanID, func(policy core.Policy) error {
		return execute(ctx, e, e.commands.renewLoan, renewloan.BuildCommand(loanID, actor, policy, e.now()))
	})
}

// CancelLoan withdraws a REQUESTED or APPROVED loan and frees its copy.
func (e *Engine) CancelLoan(ctx context.Context, actor core.Actor, loanID uuid.UUID) (core.LoanView, error) {
	return e.runLoanCommand(ctx, actor, loanID, func(core.Policy) error {
		return execute(ctx, e, e.commands.cancelLoan, cancelloan.BuildCommand(loanID, actor, e.now()))
	})
}

// ReturnLoan closes an ACTIVE or OVERDUE loan. The returned view carries the penalty.
func (e *Engine) ReturnLoan(ctx context.Context, actor core.Actor, loanID uuid.UUID) (core.LoanView, error) {
	return e.runLoanCommand(ctx, actor, loanID, func(policy core.Policy) error {
		return execute(ctx, e, e.commands.returnLoan, returnloan.BuildCommand(loanID, actor, policy, e.now()))
	})
}

// GetLoan returns one loan to its borrower or an administrator.
func (e *Engine) GetLoan(ctx context.Context, actor core.Actor, loanID uuid.UUID) (core.LoanView, error) {
	if err := checkCaller(actor); err != nil {
		return core.LoanView{}, err
	}

	return e.queries.loanDetails.Handle(ctx, loandetails.BuildQuery(loanID, actor, e.now()))
}

// MemberLoans returns the loans of memberID, newest first, to that member or an administrator.
func (e *Engine) MemberLoans(ctx context.Context, actor core.Actor, memberID uuid.UUID) ([]core.LoanView, error) {
	if err := checkCaller(actor); err != nil {
		return nil, err
	}

	return e.queries.memberLoans.Handle(ctx, memberloans.BuildQuery(memberID, actor, e.now()))
}

// runLoanCommand checks the caller, reads the policy once, runs the command and loads the resulting loan.
func (e *Engine) runLoanCommand(
	ctx context.Context,
	actor core.Actor,
	loanID uuid.UUID,
	run func(policy core.Policy) error,
) (core.LoanView, error) {

	if err := checkCaller(actor); err != nil {
		return core.LoanView{}, err
	}

	lendingPolicy, err := e.currentPolicy(ctx)
	if err != nil {
		return core.LoanView{}, err
	}

	if err := run(lendingPolicy); err != nil {
		return core.LoanView{}, err
	}

	// the view must include the events just appended, so it is read from the primary
	ctx = eventstore.WithStrongConsistency(ctx)

	return e.queries.loanDetails.Handle(ctx, loandetails.BuildQuery(loanID, actor, e.now()))
}
