package policy

import (
	"context"
	"errors"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/indraarianggi/nestjs-library-app-sub000/lending/core"
)

const settingsRowID = 1

// LendingSettings is the single row of the lending_settings table.
type LendingSettings struct {
	ID                   uint            `gorm:"column:id;primaryKey"`
	ApprovalsRequired    bool            `gorm:"column:approvals_required;not null"`
	LoanDays             int             `gorm:"column:loan_days;not null"`
	MaxRenewals          int             `gorm:"column:max_renewals;not null"`
	OverdueFeePerDay     decimal.Decimal `gorm:"column:overdue_fee_per_day;type:numeric(12,2);not null"`
	OverdueFeeCapPerLoan decimal.Decimal `gorm:"column:overdue_fee_cap_per_loan;type:numeric(12,2);not null"`
	MaxConcurrentLoans   int             `gorm:"column:max_concurrent_loans;not null"`
	UpdatedBy            string          `gorm:"column:updated_by"`
	UpdatedAt            time.Time       `gorm:"column:updated_at"`
}

func (LendingSettings) TableName() string {
	return "lending_settings"
}

func (s LendingSettings) policy() core.Policy {
	return core.Policy{
		ApprovalsRequired:    s.ApprovalsRequired,
		LoanDays:             s.LoanDays,
		MaxRenewals:          s.MaxRenewals,
		OverdueFeePerDay:     s.OverdueFeePerDay,
		OverdueFeeCapPerLoan: s.OverdueFeeCapPerLoan,
		MaxConcurrentLoans:   s.MaxConcurrentLoans,
	}
}

// SettingsTableProvider reads the policy from the lending_settings row.
type SettingsTableProvider struct {
	db *gorm.DB
}

func NewSettingsTableProvider(db *gorm.DB) SettingsTableProvider {
	return SettingsTableProvider{db: db}
}

// Migrate creates the lending_settings table.
func (p SettingsTableProvider) Migrate(ctx context.Context) error {
	return p.db.WithContext(ctx).AutoMigrate(&LendingSettings{})
}

func (p SettingsTableProvider) Current(ctx context.Context) (core.Policy, error) {
	var settings LendingSettings

	err := p.db.WithContext(ctx).Take(&settings, settingsRowID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return core.Policy{}, core.Misconfigured(core.ErrPolicyMissing)
	}

	if err != nil {
		return core.Policy{}, err
	}

	return checked(settings.policy())
}

// Save validates policy and replaces the settings row with it.
func (p SettingsTableProvider) Save(ctx context.Context, policy core.Policy, updatedBy string) error {
	if err := policy.Validate(); err != nil {
		return err
	}

	settings := LendingSettings{
		ID:                   settingsRowID,
		ApprovalsRequired:    policy.ApprovalsRequired,
		LoanDays:             policy.LoanDays,
		MaxRenewals:          policy.MaxRenewals,
		OverdueFeePerDay:     policy.OverdueFeePerDay,
		OverdueFeeCapPerLoan: policy.OverdueFeeCapPerLoan,
		MaxConcurrentLoans:   policy.MaxConcurrentLoans,
		UpdatedBy:            updatedBy,
		UpdatedAt:            time.Now().UTC(),
	}

	return p.db.WithContext(ctx).
		Clauses(clause.OnConflict{UpdateAll: true}).
		Create(&settings).Error
}

var _ Provider = SettingsTableProvider{}
