package policy

import (
	"context"

	"github.com/indraarianggi/nestjs-library-app-sub000/lending/core"
)

// Provider returns the lending policy in effect.
type Provider interface {
	Current(ctx context.Context) (core.Policy, error)
}

// checked rejects unusable snapshots as configuration errors.
func checked(policy core.Policy) (core.Policy, error) {
	if err := policy.Validate(); err != nil {
		return core.Policy{}, core.Misconfigured(err)
	}

	return policy, nil
}
