package httpapi

import (
	"context"
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"github.com/indraarianggi/nestjs-library-app-sub000/lending/core"
	"github.com/indraarianggi/nestjs-library-app-sub000/lending/engine"
)

// Lending is the part of the engine the HTTP boundary drives.
type Lending interface {
	CreateLoan(ctx context.Context, actor core.Actor, bookID uuid.UUID, copyID uuid.NullUUID) (core.LoanView, error)
	ApproveLoan(ctx context.Context, actor core.Actor, loanID, copyID uuid.UUID) (core.LoanView, error)
	RejectLoan(ctx context.Context, actor core.Actor, loanID uuid.UUID, reason string) (core.LoanView, error)
	CheckoutLoan(ctx context.Context, actor core.Actor, loanID uuid.UUID) (core.LoanView, error)
	RenewLoan(ctx context.Context, actor core.Actor, loanID uuid.UUID) (core.LoanView, error)
	CancelLoan(ctx context.Context, actor core.Actor, loanID uuid.UUID) (core.LoanView, error)
	ReturnLoan(ctx context.Context, actor core.Actor, loanID uuid.UUID) (core.LoanView, error)
	GetLoan(ctx context.Context, actor core.Actor, loanID uuid.UUID) (core.LoanView, error)
	MemberLoans(ctx context.Context, actor core.Actor, memberID uuid.UUID) ([]core.LoanView, error)

	RegisterMember(ctx context.Context, actor core.Actor, memberID uuid.UUID, name, email string, status core.MemberStatus) error
	ChangeMemberStatus(ctx context.Context, actor core.Actor, memberID uuid.UUID, status core.MemberStatus) error
	AddBook(ctx context.Context, actor core.Actor, book engine.NewBook) (uuid.UUID, error)
	AddCopy(ctx context.Context, actor core.Actor, bookID uuid.UUID, code string) (uuid.UUID, error)
	ChangeCopyStatus(ctx context.Context, actor core.Actor, copyID uuid.UUID, status core.CopyStatus) error
	UpdatePolicy(ctx context.Context, actor core.Actor, policy core.Policy) error
}

var _ Lending = (*engine.Engine)(nil)

var errInvalidBody = errors.New("invalid request body")

// bind parses the JSON body into req and validates it. A non-nil response error means the
// request was already answered.
func (s *Server) bind(c *fiber.Ctx, req any) (bool, error) {
	if err := c.BodyParser(req); err != nil {
		return false, failure(c, fiber.StatusBadRequest, errInvalidBody.Error())
	}

	if err := s.validate.Struct(req); err != nil {
		return false, validationFailure(c, err)
	}

	return true, nil
}

func pathID(c *fiber.Ctx, name string) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Params(name))
	if err != nil {
		return uuid.Nil, false
	}

	return id, true
}

func (s *Server) fail(c *fiber.Ctx, err error) error {
	status := statusOf(err)
	if status >= fiber.StatusInternalServerError {
		s.logger.ErrorContext(c.UserContext(), "request failed",
			"method", c.Method(),
			"path", c.Path(),
			"error", err.Error(),
		)
	}

	return failure(c, status, messageOf(err))
}

func (s *Server) respondLoan(c *fiber.Ctx, code int, message string, view core.LoanView, err error) error {
	if err != nil {
		return s.fail(c, err)
	}

	return success(c, code, message, view)
}

/***** loans *****/

func (s *Server) createLoan(c *fiber.Ctx) error {
	var req createLoanRequest
	if ok, err := s.bind(c, &req); !ok {
		return err
	}

	var copyID uuid.NullUUID
	if req.CopyID != "" {
		copyID = uuid.NullUUID{UUID: uuid.MustParse(req.CopyID), Valid: true}
	}

	view, err := s.lending.CreateLoan(c.UserContext(), actorOf(c), uuid.MustParse(req.BookID), copyID)

	return s.respondLoan(c, fiber.StatusCreated, "loan requested", view, err)
}

func (s *Server) decideLoan(c *fiber.Ctx) error {
	loanID, ok := pathID(c, "id")
	if !ok {
		return failure(c, fiber.StatusBadRequest, "invalid loan id")
	}

	var req decisionRequest
	if ok, err := s.bind(c, &req); !ok {
		return err
	}

	if req.Action == actionApprove {
		view, err := s.lending.ApproveLoan(c.UserContext(), actorOf(c), loanID, uuid.MustParse(req.CopyID))
		return s.respondLoan(c, fiber.StatusOK, "loan approved", view, err)
	}

	view, err := s.lending.RejectLoan(c.UserContext(), actorOf(c), loanID, req.Reason)

	return s.respondLoan(c, fiber.StatusOK, "loan rejected", view, err)
}

// loanTransition adapts the engine transitions that only need the loan id.
func (s *Server) loanTransition(
	message string,
	transition func(ctx context.Context, actor core.Actor, loanID uuid.UUID) (core.LoanView, error),
) fiber.Handler {

	return func(c *fiber.Ctx) error {
		loanID, ok := pathID(c, "id")
		if !ok {
			return failure(c, fiber.StatusBadRequest, "invalid loan id")
		}

		view, err := transition(c.UserContext(), actorOf(c), loanID)

		return s.respondLoan(c, fiber.StatusOK, message, view, err)
	}
}

func (s *Server) memberLoans(c *fiber.Ctx) error {
	memberID, ok := pathID(c, "id")
	if !ok {
		return failure(c, fiber.StatusBadRequest, "invalid member id")
	}

	views, err := s.lending.MemberLoans(c.UserContext(), actorOf(c), memberID)
	if err != nil {
		return s.fail(c, err)
	}

	return success(c, fiber.StatusOK, "member loans", views)
}

/***** admin *****/

func (s *Server) registerMember(c *fiber.Ctx) error {
	var req registerMemberRequest
	if ok, err := s.bind(c, &req); !ok {
		return err
	}

	status := core.MemberPending
	if req.Status != "" {
		status = core.MemberStatus(req.Status)
	}

	memberID := uuid.MustParse(req.MemberID)
	if err := s.lending.RegisterMember(c.UserContext(), actorOf(c), memberID, req.Name, req.Email, status); err != nil {
		return s.fail(c, err)
	}

	return success(c, fiber.StatusCreated, "member registered", idResponse{ID: memberID.String()})
}

func (s *Server) changeMemberStatus(c *fiber.Ctx) error {
	memberID, ok := pathID(c, "id")
	if !ok {
		return failure(c, fiber.StatusBadRequest, "invalid member id")
	}

	var req memberStatusRequest
	if ok, err := s.bind(c, &req); !ok {
		return err
	}

	if err := s.lending.ChangeMemberStatus(c.UserContext(), actorOf(c), memberID, core.MemberStatus(req.Status)); err != nil {
		return s.fail(c, err)
	}

	return success(c, fiber.StatusOK, "member status changed", idResponse{ID: memberID.String()})
}

func (s *Server) addBook(c *fiber.Ctx) error {
	var req addBookRequest
	if ok, err := s.bind(c, &req); !ok {
		return err
	}

	bookID, err := s.lending.AddBook(c.UserContext(), actorOf(c), engine.NewBook{
		ISBN:            req.ISBN,
		Title:           req.Title,
		Authors:         req.Authors,
		PublicationYear: req.PublicationYear,
	})
	if err != nil {
		return s.fail(c, err)
	}

	return success(c, fiber.StatusCreated, "book added", idResponse{ID: bookID.String()})
}

func (s *Server) addCopy(c *fiber.Ctx) error {
	bookID, ok := pathID(c, "id")
	if !ok {
		return failure(c, fiber.StatusBadRequest, "invalid book id")
	}

	var req addCopyRequest
	if ok, err := s.bind(c, &req); !ok {
		return err
	}

	copyID, err := s.lending.AddCopy(c.UserContext(), actorOf(c), bookID, req.Code)
	if err != nil {
		return s.fail(c, err)
	}

	return success(c, fiber.StatusCreated, "copy added", idResponse{ID: copyID.String()})
}

func (s *Server) changeCopyStatus(c *fiber.Ctx) error {
	copyID, ok := pathID(c, "id")
	if !ok {
		return failure(c, fiber.StatusBadRequest, "invalid copy id")
	}

	var req copyStatusRequest
	if ok, err := s.bind(c, &req); !ok {
		return err
	}

	if err := s.lending.ChangeCopyStatus(c.UserContext(), actorOf(c), copyID, core.CopyStatus(req.Status)); err != nil {
		return s.fail(c, err)
	}

	return success(c, fiber.StatusOK, "copy status changed", idResponse{ID: copyID.String()})
}

func (s *Server) updatePolicy(c *fiber.Ctx) error {
	var req policyRequest
	if ok, err := s.bind(c, &req); !ok {
		return err
	}

	policy := core.Policy{
		ApprovalsRequired:    *req.ApprovalsRequired,
		LoanDays:             req.LoanDays,
		MaxRenewals:          req.MaxRenewals,
		OverdueFeePerDay:     req.OverdueFeePerDay,
		OverdueFeeCapPerLoan: req.OverdueFeeCapPerLoan,
		MaxConcurrentLoans:   req.MaxConcurrentLoans,
	}

	if err := s.lending.UpdatePolicy(c.UserContext(), actorOf(c), policy); err != nil {
		return s.fail(c, err)
	}

	return success(c, fiber.StatusOK, "lending policy updated", req)
}
