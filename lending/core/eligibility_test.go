package core_test

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/indraarianggi/nestjs-library-app-sub000/lending/core"
)

func Test_MemberFactsFrom_DerivesCounts(t *testing.T) {
	// arrange
	memberID := uuid.New()
	overdueEvents, _ := givenActiveLoan(memberID, testNow.Add(-48*time.Hour))
	activeEvents, _ := givenActiveLoan(memberID, testNow.AddDate(0, 0, 7))
	returnedEvents, returnedLoan := givenActiveLoan(memberID, testNow.AddDate(0, 0, -20))
	returnedEvents = append(returnedEvents, core.BuildLoanReturned(returnedLoan, decimal.RequireFromString("2.00"), 2, returnedLoan.MemberID, testNow.AddDate(0, 0, -18)))
	foreignEvents, _ := givenActiveLoan(uuid.New(), testNow.Add(-48*time.Hour))

	history := core.DomainEvents{givenMember(memberID, core.MemberActive)}
	history = append(history, overdueEvents...)
	history = append(history, activeEvents...)
	history = append(history, returnedEvents...)
	history = append(history, foreignEvents...)

	// act
	facts := core.MemberFactsFrom(history, memberID.String(), testNow)

	// assert
	assert.True(t, facts.ProfileExists)
	assert.Equal(t, core.MemberActive, facts.Status)
	assert.Equal(t, 1, facts.OverdueLoans)
	assert.Equal(t, 1, facts.PenalizedLoans)
	assert.Equal(t, 2, facts.OpenLoans)
}

func Test_CanBorrow_RulesInOrder(t *testing.T) {
	policy := givenPolicy()

	testCases := []struct {
		name           string
		facts          core.MemberFacts
		expectedReason string
	}{
		{
			name:           "no profile",
			facts:          core.MemberFacts{},
			expectedReason: "member profile not found",
		},
		{
			name:           "suspended wins over overdue",
			facts:          core.MemberFacts{ProfileExists: true, Status: core.MemberSuspended, OverdueLoans: 1},
			expectedReason: "membership is not active (SUSPENDED)",
		},
		{
			name:           "pending",
			facts:          core.MemberFacts{ProfileExists: true, Status: core.MemberPending},
			expectedReason: "membership is not active (PENDING)",
		},
		{
			name:           "overdue wins over penalties",
			facts:          core.MemberFacts{ProfileExists: true, Status: core.MemberActive, OverdueLoans: 1, PenalizedLoans: 1},
			expectedReason: "has overdue loans",
		},
		{
			name:           "unpaid penalty",
			facts:          core.MemberFacts{ProfileExists: true, Status: core.MemberActive, PenalizedLoans: 1},
			expectedReason: "has unpaid penalties",
		},
		{
			name:           "cap reached",
			facts:          core.MemberFacts{ProfileExists: true, Status: core.MemberActive, OpenLoans: 3},
			expectedReason: "has reached the maximum of 3 concurrent loans",
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			// act
			err := core.CanBorrow(tc.facts, policy)

			// assert
			require.Error(t, err)
			assert.ErrorIs(t, err, core.ErrForbidden)
			assert.Equal(t, tc.expectedReason, err.Error())
		})
	}
}

func Test_CanBorrow_Ok_BelowCap(t *testing.T) {
	facts := core.MemberFacts{ProfileExists: true, Status: core.MemberActive, OpenLoans: 2}

	assert.NoError(t, core.CanBorrow(facts, givenPolicy()))
}

func Test_CanRenew(t *testing.T) {
	memberID := uuid.New()
	policy := givenPolicy()
	member := core.BuildActor(memberID.String(), core.RoleMember)
	admin := core.BuildActor(uuid.NewString(), core.RoleAdmin)
	goodStanding := core.MemberFacts{ProfileExists: true, Status: core.MemberActive}
	suspended := core.MemberFacts{ProfileExists: true, Status: core.MemberSuspended}

	_, active := givenActiveLoan(memberID, testNow.AddDate(0, 0, 3))
	active.Status = core.StatusActive
	active.DueDate = testNow.AddDate(0, 0, 3)
	overdue := active
	overdue.DueDate = testNow.Add(-time.Minute)
	atLimit := active
	atLimit.RenewalCount = policy.MaxRenewals
	approved := active
	approved.Status = core.StatusApproved

	testCases := []struct {
		name        string
		loan        core.Loan
		facts       core.MemberFacts
		actor       core.Actor
		expectedErr error
		reason      string
	}{
		{name: "active loan in good standing", loan: active, facts: goodStanding, actor: member},
		{name: "admin overrides suspension", loan: active, facts: suspended, actor: admin},
		{name: "member suspended", loan: active, facts: suspended, actor: member, expectedErr: core.ErrForbidden, reason: "membership is not active (SUSPENDED)"},
		{name: "overdue loan", loan: overdue, facts: goodStanding, actor: admin, expectedErr: core.ErrConflict, reason: "loan is OVERDUE, only ACTIVE loans can be renewed"},
		{name: "not checked out", loan: approved, facts: goodStanding, actor: member, expectedErr: core.ErrConflict, reason: "loan is APPROVED, only ACTIVE loans can be renewed"},
		{name: "admin cannot override the limit", loan: atLimit, facts: goodStanding, actor: admin, expectedErr: core.ErrConflict, reason: "renewal limit of 2 reached"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			err := core.CanRenew(tc.loan, tc.facts, tc.actor, policy, testNow)

			if tc.expectedErr == nil {
				assert.NoError(t, err)
				return
			}

			assert.ErrorIs(t, err, tc.expectedErr)
			assert.Equal(t, tc.reason, core.ReasonOf(err))
		})
	}
}
