package httpapi

import (
	"errors"
	"log/slog"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/recover"

	"github.com/indraarianggi/nestjs-library-app-sub000/lending/shell"
)

// Server routes HTTP requests into the lending engine.
type Server struct {
	lending  Lending
	secret   []byte
	validate *validator.Validate
	logger   shell.ContextualLogger
}

type Option func(*Server)

// WithLogger sets the logger for failed requests. The default is slog.Default().
func WithLogger(logger shell.ContextualLogger) Option {
	return func(s *Server) {
		if logger != nil {
			s.logger = logger
		}
	}
}

func NewServer(lending Lending, jwtSecret []byte, options ...Option) *Server {
	s := &Server{
		lending:  lending,
		secret:   jwtSecret,
		validate: validator.New(),
		logger:   slog.Default(),
	}

	for _, option := range options {
		option(s)
	}

	return s
}

// App builds the fiber application with all routes mounted.
func (s *Server) App() *fiber.App {
	app := fiber.New(fiber.Config{
		AppName:      "lendingd",
		ErrorHandler: s.handleError,
	})

	app.Use(recover.New(recover.Config{EnableStackTrace: true}))

	app.Get("/health", func(c *fiber.Ctx) error {
		return success(c, fiber.StatusOK, "ok", fiber.Map{"status": "up"})
	})

	api := app.Group("/api", authenticate(s.secret))

	loans := api.Group("/loans")
	loans.Post("/", s.createLoan)
	loans.Get("/:id", s.loanTransition("loan", s.lending.GetLoan))
	loans.Post("/:id/decision", s.decideLoan)
	loans.Post("/:id/checkout", s.loanTransition("loan checked out", s.lending.CheckoutLoan))
	loans.Post("/:id/renew", s.loanTransition("loan renewed", s.lending.RenewLoan))
	loans.Post("/:id/cancel", s.loanTransition("loan cancelled", s.lending.CancelLoan))
	loans.Post("/:id/return", s.loanTransition("loan returned", s.lending.ReturnLoan))

	api.Get("/members/:id/loans", s.memberLoans)

	admin := api.Group("/admin")
	admin.Post("/members", s.registerMember)
	admin.Patch("/members/:id/status", s.changeMemberStatus)
	admin.Post("/books", s.addBook)
	admin.Post("/books/:id/copies", s.addCopy)
	admin.Patch("/copies/:id/status", s.changeCopyStatus)
	admin.Put("/policy", s.updatePolicy)

	return app
}

// handleError answers errors that escaped the handlers, such as unknown routes,
// rejected tokens and recovered panics.
func (s *Server) handleError(c *fiber.Ctx, err error) error {
	var fiberErr *fiber.Error
	if errors.As(err, &fiberErr) {
		return failure(c, fiberErr.Code, fiberErr.Message)
	}

	s.logger.ErrorContext(c.UserContext(), "unhandled request error",
		"method", c.Method(),
		"path", c.Path(),
		"error", err.Error(),
	)

	return failure(c, fiber.StatusInternalServerError, "internal server error")
}
