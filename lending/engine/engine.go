package engine

import (
	"context"
	"errors"
	"time"

	"github.com/indraarianggi/nestjs-library-app-sub000/eventstore"
	"github.com/indraarianggi/nestjs-library-app-sub000/lending/core"
	"github.com/indraarianggi/nestjs-library-app-sub000/lending/features/command/addbook"
	"github.com/indraarianggi/nestjs-library-app-sub000/lending/features/command/addcopy"
	"github.com/indraarianggi/nestjs-library-app-sub000/lending/features/command/approveloan"
	"github.com/indraarianggi/nestjs-library-app-sub000/lending/features/command/cancelloan"
	"github.com/indraarianggi/nestjs-library-app-sub000/lending/features/command/changecopystatus"
	"github.com/indraarianggi/nestjs-library-app-sub000/lending/features/command/changememberstatus"
	"github.com/indraarianggi/nestjs-library-app-sub000/lending/features/command/checkoutloan"
	"github.com/indraarianggi/nestjs-library-app-sub000/lending/features/command/createloan"
	"github.com/indraarianggi/nestjs-library-app-sub000/lending/features/command/registermember"
	"github.com/indraarianggi/nestjs-library-app-sub000/lending/features/command/rejectloan"
	"github.com/indraarianggi/nestjs-library-app-sub000/lending/features/command/renewloan"
	"github.com/indraarianggi/nestjs-library-app-sub000/lending/features/command/returnloan"
	"github.com/indraarianggi/nestjs-library-app-sub000/lending/features/command/updatepolicy"
	"github.com/indraarianggi/nestjs-library-app-sub000/lending/features/query/loandetails"
	"github.com/indraarianggi/nestjs-library-app-sub000/lending/features/query/memberloans"
	"github.com/indraarianggi/nestjs-library-app-sub000/lending/policy"
	"github.com/indraarianggi/nestjs-library-app-sub000/lending/shell"
	"github.com/indraarianggi/nestjs-library-app-sub000/lending/shell/observable"
)

const reasonConcurrentUpdate = "concurrent update, please retry"

// Publisher receives the events of every committed operation.
type Publisher interface {
	Publish(ctx context.Context, events core.DomainEvents)
}

// PolicySaver persists a policy snapshot outside the event store.
type PolicySaver interface {
	Save(ctx context.Context, policy core.Policy, updatedBy string) error
}

type commandHandlers struct {
	createLoan         shell.CoreCommandHandler[createloan.Command]
	approveLoan        shell.CoreCommandHandler[approveloan.Command]
	rejectLoan         shell.CoreCommandHandler[rejectloan.Command]
	checkoutLoan       shell.CoreCommandHandler[checkoutloan.Command]
	renewLoan          shell.CoreCommandHandler[renewloan.Command]
	cancelLoan         shell.CoreCommandHandler[cancelloan.Command]
	returnLoan         shell.CoreCommandHandler[returnloan.Command]
	registerMember     shell.CoreCommandHandler[registermember.Command]
	changeMemberStatus shell.CoreCommandHandler[changememberstatus.Command]
	addBook            shell.CoreCommandHandler[addbook.Command]
	addCopy            shell.CoreCommandHandler[addcopy.Command]
	changeCopyStatus   shell.CoreCommandHandler[changecopystatus.Command]
	updatePolicy       shell.CoreCommandHandler[updatepolicy.Command]
}

type queryHandlers struct {
	loanDetails shell.CoreQueryHandler[loandetails.Query, core.LoanView]
	memberLoans shell.CoreQueryHandler[memberloans.Query, []core.LoanView]
}

// Engine exposes the loan transitions, the loan reads and the administrative operations.
type Engine struct {
	policy       policy.Provider
	policySaver  PolicySaver
	publisher    Publisher
	now          func() time.Time
	retryOptions []shell.RetryOption
	observe      []observable.Option

	commands commandHandlers
	queries  queryHandlers
}

// Option configures an Engine.
type Option func(*Engine) error

// WithPublisher sets where committed events go, typically a sink.Dispatcher.
func WithPublisher(publisher Publisher) Option {
	return func(e *Engine) error {
		e.publisher = publisher
		return nil
	}
}

// WithPolicySaver makes UpdatePolicy also save the snapshot, for the settings table policy source.
func WithPolicySaver(saver PolicySaver) Option {
	return func(e *Engine) error {
		e.policySaver = saver
		return nil
	}
}

// WithClock replaces time.Now.
func WithClock(now func() time.Time) Option {
	return func(e *Engine) error {
		e.now = now
		return nil
	}
}

// WithRetryOptions configures the conflict retries of every command handler.
func WithRetryOptions(opts ...shell.RetryOption) Option {
	return func(e *Engine) error {
		e.retryOptions = opts
		return nil
	}
}

// WithObservability instruments every handler with metrics, tracing and logging.
func WithObservability(opts ...observable.Option) Option {
	return func(e *Engine) error {
		e.observe = opts
		return nil
	}
}

// New builds the handlers of all operations on eventStore.
func New(eventStore shell.EventStore, policyProvider policy.Provider, options ...Option) (*Engine, error) {
	e := &Engine{
		policy: policyProvider,
		now:    time.Now,
	}

	for _, option := range options {
		if err := option(e); err != nil {
			return nil, err
		}
	}

	retry := e.retryOptions
	var errs []error

	e.commands = commandHandlers{
		createLoan:         wrapCommand[createloan.Command](createloan.NewCommandHandler(eventStore, createloan.WithRetryOptions(retry...)), e.observe, &errs),
		approveLoan:        wrapCommand[approveloan.Command](approveloan.NewCommandHandler(eventStore, approveloan.WithRetryOptions(retry...)), e.observe, &errs),
		rejectLoan:         wrapCommand[rejectloan.Command](rejectloan.NewCommandHandler(eventStore, rejectloan.WithRetryOptions(retry...)), e.observe, &errs),
		checkoutLoan:       wrapCommand[checkoutloan.Command](checkoutloan.NewCommandHandler(eventStore, checkoutloan.WithRetryOptions(retry...)), e.observe, &errs),
		renewLoan:          wrapCommand[renewloan.Command](renewloan.NewCommandHandler(eventStore, renewloan.WithRetryOptions(retry...)), e.observe, &errs),
		cancelLoan:         wrapCommand[cancelloan.Command](cancelloan.NewCommandHandler(eventStore, cancelloan.WithRetryOptions(retry...)), e.observe, &errs),
		returnLoan:         wrapCommand[returnloan.Command](returnloan.NewCommandHandler(eventStore, returnloan.WithRetryOptions(retry...)), e.observe, &errs),
		registerMember:     wrapCommand[registermember.Command](registermember.NewCommandHandler(eventStore, registermember.WithRetryOptions(retry...)), e.observe, &errs),
		changeMemberStatus: wrapCommand[changememberstatus.Command](changememberstatus.NewCommandHandler(eventStore, changememberstatus.WithRetryOptions(retry...)), e.observe, &errs),
		addBook:            wrapCommand[addbook.Command](addbook.NewCommandHandler(eventStore, addbook.WithRetryOptions(retry...)), e.observe, &errs),
		addCopy:            wrapCommand[addcopy.Command](addcopy.NewCommandHandler(eventStore, addcopy.WithRetryOptions(retry...)), e.observe, &errs),
		changeCopyStatus:   wrapCommand[changecopystatus.Command](changecopystatus.NewCommandHandler(eventStore, changecopystatus.WithRetryOptions(retry...)), e.observe, &errs),
		updatePolicy:       wrapCommand[updatepolicy.Command](updatepolicy.NewCommandHandler(eventStore, updatepolicy.WithRetryOptions(retry...)), e.observe, &errs),
	}

	e.queries = queryHandlers{
		loanDetails: wrapQuery[loandetails.Query, core.LoanView](loandetails.NewQueryHandler(eventStore), e.observe, &errs),
		memberLoans: wrapQuery[memberloans.Query, []core.LoanView](memberloans.NewQueryHandler(eventStore), e.observe, &errs),
	}

	if err := errors.Join(errs...); err != nil {
		return nil, err
	}

	return e, nil
}

func wrapCommand[C shell.Command](
	handler shell.CoreCommandHandler[C],
	opts []observable.Option,
	errs *[]error,
) shell.CoreCommandHandler[C] {

	wrapped, err := observable.NewCommandWrapper(handler, opts...)
	if err != nil {
		*errs = append(*errs, err)
		return handler
	}

	return wrapped
}

func wrapQuery[Q shell.Query, R any](
	handler shell.CoreQueryHandler[Q, R],
	opts []observable.Option,
	errs *[]error,
) shell.CoreQueryHandler[Q, R] {

	wrapped, err := observable.NewQueryWrapper(handler, opts...)
	if err != nil {
		*errs = append(*errs, err)
		return handler
	}

	return wrapped
}

// execute runs command and publishes what it committed.
func execute[C shell.Command](ctx context.Context, e *Engine, handler shell.CoreCommandHandler[C], command C) error {
	result, err := handler.Handle(ctx, command)
	if err != nil {
		if errors.Is(err, eventstore.ErrConcurrencyConflict) {
			return core.Conflictf(reasonConcurrentUpdate)
		}

		return err
	}

	if e.publisher != nil && len(result.Events) > 0 {
		e.publisher.Publish(ctx, result.Events)
	}

	return nil
}

// currentPolicy reads the snapshot an operation works with.
func (e *Engine) currentPolicy(ctx context.Context) (core.Policy, error) {
	if e.policy == nil {
		return core.Policy{}, core.Misconfigured(core.ErrPolicyMissing)
	}

	return e.policy.Current(ctx)
}

// checkCaller rejects requests that carry no usable identity.
func checkCaller(actor core.Actor) error {
	if actor.ID == "" {
		return core.Forbiddenf("caller identity is missing")
	}

	if _, err := core.ParseRole(string(actor.Role)); err != nil {
		return core.Forbiddenf("caller role %q is unknown", actor.Role)
	}

	return nil
}
