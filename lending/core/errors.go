package core

import (
	"errors"
	"fmt"
)

// The error taxonomy of the lending operations. Business failures are RuleViolation
// values that unwrap to exactly one of these kinds, so callers use errors.Is.
var (
	// ErrNotFound marks a loan, book, copy or member id that does not resolve.
	ErrNotFound = errors.New("not found")

	// ErrConflict marks a transition that is not allowed right now.
	ErrConflict = errors.New("conflict")

	// ErrForbidden marks a transition that is not allowed for this caller.
	ErrForbidden = errors.New("forbidden")

	// ErrConfiguration marks a misconfigured deployment, never a user error.
	ErrConfiguration = errors.New("configuration error")

	// ErrPolicyMissing is returned when no lending policy has been configured.
	ErrPolicyMissing = errors.New("lending policy is missing")

	// ErrPolicyInvalid is returned when the configured lending policy is unusable.
	ErrPolicyInvalid = errors.New("lending policy is invalid")
)

// RuleViolation is a business failure with a human-readable reason.
type RuleViolation struct {
	Kind   error
	Reason string
}

func (v RuleViolation) Error() string {
	return v.Reason
}

func (v RuleViolation) Unwrap() error {
	return v.Kind
}

// NotFoundf builds a RuleViolation of kind ErrNotFound.
func NotFoundf(format string, args ...any) error {
	return RuleViolation{Kind: ErrNotFound, Reason: fmt.Sprintf(format, args...)}
}

// Conflictf builds a RuleViolation of kind ErrConflict.
func Conflictf(format string, args ...any) error {
	return RuleViolation{Kind: ErrConflict, Reason: fmt.Sprintf(format, args...)}
}

// Forbiddenf builds a RuleViolation of kind ErrForbidden.
func Forbiddenf(format string, args ...any) error {
	return RuleViolation{Kind: ErrForbidden, Reason: fmt.Sprintf(format, args...)}
}

// Misconfigured marks err as a configuration failure.
func Misconfigured(err error) error {
	return errors.Join(ErrConfiguration, err)
}

// ReasonOf returns the business reason of err, or "" if err carries none.
func ReasonOf(err error) string {
	var violation RuleViolation
	if errors.As(err, &violation) {
		return violation.Reason
	}

	return ""
}
