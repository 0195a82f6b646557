package policy_test

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/indraarianggi/nestjs-library-app-sub000/lending/core"
	"github.com/indraarianggi/nestjs-library-app-sub000/lending/policy"
	"github.com/indraarianggi/nestjs-library-app-sub000/testutil/fixtures"
)

func Test_EventStoreProvider_Current_ReturnsLatestSnapshot(t *testing.T) {
	// arrange
	first := fixtures.Policy()
	latest := fixtures.ApprovalPolicy()
	es := fixtures.NewStore(t,
		core.BuildLendingPolicyUpdated(first, fixtures.AdminID, fixtures.Now.AddDate(0, -1, 0)),
		core.BuildLendingPolicyUpdated(latest, fixtures.AdminID, fixtures.Now),
	)

	// act
	current, err := policy.NewEventStoreProvider(es).Current(context.Background())

	// assert
	require.NoError(t, err)
	assert.True(t, current.Equal(latest))
}

func Test_EventStoreProvider_Current_MissingPolicy(t *testing.T) {
	_, err := policy.NewEventStoreProvider(fixtures.NewStore(t)).Current(context.Background())

	assert.ErrorIs(t, err, core.ErrConfiguration)
	assert.ErrorIs(t, err, core.ErrPolicyMissing)
}

func Test_EventStoreProvider_Current_InvalidPolicy(t *testing.T) {
	invalid := fixtures.Policy()
	invalid.LoanDays = 0
	es := fixtures.NewStore(t, core.BuildLendingPolicyUpdated(invalid, fixtures.AdminID, fixtures.Now))

	_, err := policy.NewEventStoreProvider(es).Current(context.Background())

	assert.ErrorIs(t, err, core.ErrConfiguration)
	assert.ErrorIs(t, err, core.ErrPolicyInvalid)
}

func givenSettingsProvider(t *testing.T) policy.SettingsTableProvider {
	t.Helper()

	return policy.NewSettingsTableProvider(fixtures.NewGormDB(t, &policy.LendingSettings{}))
}

func Test_SettingsTableProvider_Current_MissingRow(t *testing.T) {
	_, err := givenSettingsProvider(t).Current(context.Background())

	assert.ErrorIs(t, err, core.ErrConfiguration)
	assert.ErrorIs(t, err, core.ErrPolicyMissing)
}

func Test_SettingsTableProvider_SaveThenCurrent(t *testing.T) {
	// arrange
	provider := givenSettingsProvider(t)
	ctx := context.Background()
	require.NoError(t, provider.Save(ctx, fixtures.Policy(), fixtures.AdminID))

	updated := fixtures.ApprovalPolicy()
	updated.OverdueFeePerDay = decimal.RequireFromString("2.50")

	// act
	err := provider.Save(ctx, updated, fixtures.AdminID)
	current, currentErr := provider.Current(ctx)

	// assert
	require.NoError(t, err)
	require.NoError(t, currentErr)
	assert.True(t, current.Equal(updated))
}

func Test_SettingsTableProvider_Save_RejectsInvalidPolicy(t *testing.T) {
	invalid := fixtures.Policy()
	invalid.MaxConcurrentLoans = 0

	err := givenSettingsProvider(t).Save(context.Background(), invalid, fixtures.AdminID)

	assert.ErrorIs(t, err, core.ErrPolicyInvalid)
}

func Test_SettingsTableProvider_Migrate(t *testing.T) {
	provider := policy.NewSettingsTableProvider(fixtures.NewGormDB(t))

	require.NoError(t, provider.Migrate(context.Background()))

	_, err := provider.Current(context.Background())
	assert.ErrorIs(t, err, core.ErrPolicyMissing)
}
