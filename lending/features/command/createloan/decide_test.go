package createloan_test

import (
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/indraarianggi/nestjs-library-app-sub000/lending/core"
	"github.com/indraarianggi/nestjs-library-app-sub000/lending/features/command/createloan"
	"github.com/indraarianggi/nestjs-library-app-sub000/testutil/fixtures"
)

type shelf struct {
	memberID uuid.UUID
	bookID   uuid.UUID
	firstID  uuid.UUID
	secondID uuid.UUID
}

func givenShelf() shelf {
	return shelf{memberID: uuid.New(), bookID: uuid.New(), firstID: uuid.New(), secondID: uuid.New()}
}

// history holds the book with two copies, registered in reverse code order, and an ACTIVE member.
func (s shelf) history() core.DomainEvents {
	return fixtures.Events(
		fixtures.Book(s.bookID),
		fixtures.Copy(s.secondID, s.bookID, "B-002"),
		fixtures.Copy(s.firstID, s.bookID, "B-001"),
		fixtures.Member(s.memberID, core.MemberActive),
	)
}

func Test_Decide_AutoApprove_ClaimsLowestCodedCopy(t *testing.T) {
	// arrange
	s := givenShelf()
	loanID := uuid.New()
	command := createloan.BuildCommand(loanID, s.bookID, uuid.NullUUID{}, fixtures.Borrower(s.memberID), fixtures.Policy(), fixtures.Now)

	// act
	result := createloan.Decide(s.history(), command)

	// assert
	require.NoError(t, result.HasError())
	require.Equal(t,
		[]string{core.LoanRequestedEventType, core.LoanApprovedEventType, core.CopyClaimedEventType, core.AuditEntryRecordedEventType},
		fixtures.EventTypes(result.Events),
	)

	approved := result.Events[1].(core.LoanApproved)
	assert.Equal(t, s.firstID.String(), approved.CopyID)
	assert.Equal(t, fixtures.Now, approved.BorrowedAt)
	assert.Equal(t, fixtures.Now.AddDate(0, 0, 14), approved.DueDate)
	assert.True(t, approved.AutoApproved)

	claimed := result.Events[2].(core.CopyClaimed)
	assert.Equal(t, loanID.String(), claimed.LoanID)
	assert.Equal(t, s.bookID.String(), claimed.BookID)

	audit := result.Events[3].(core.AuditEntryRecorded)
	assert.Equal(t, core.AuditActionLoanCreated, audit.Action)
	assert.Equal(t, string(core.StatusApproved), audit.Metadata["status"])
}

func Test_Decide_ApprovalsRequired_LeavesLoanRequested(t *testing.T) {
	// arrange
	s := givenShelf()
	command := createloan.BuildCommand(uuid.New(), s.bookID, uuid.NullUUID{}, fixtures.Borrower(s.memberID), fixtures.ApprovalPolicy(), fixtures.Now)

	// act
	result := createloan.Decide(s.history(), command)

	// assert
	require.NoError(t, result.HasError())
	require.Equal(t,
		[]string{core.LoanRequestedEventType, core.AuditEntryRecordedEventType},
		fixtures.EventTypes(result.Events),
	)

	requested := result.Events[0].(core.LoanRequested)
	assert.Equal(t, s.firstID.String(), requested.RequestedCopyID)
	assert.Equal(t, string(core.StatusRequested), result.Events[1].(core.AuditEntryRecorded).Metadata["status"])
}

func Test_Decide_RequestedCopy_IsUsed(t *testing.T) {
	// arrange
	s := givenShelf()
	command := createloan.BuildCommand(uuid.New(), s.bookID, uuid.NullUUID{UUID: s.secondID, Valid: true}, fixtures.Borrower(s.memberID), fixtures.Policy(), fixtures.Now)

	// act
	result := createloan.Decide(s.history(), command)

	// assert
	require.NoError(t, result.HasError())
	assert.Equal(t, s.secondID.String(), result.Events[1].(core.LoanApproved).CopyID)
}

func Test_Decide_RequestedCopy_ParsedFromUpperCase_IsUsed(t *testing.T) {
	// arrange
	s := givenShelf()
	copyID := uuid.NullUUID{UUID: uuid.MustParse(strings.ToUpper(s.secondID.String())), Valid: true}
	command := createloan.BuildCommand(uuid.New(), s.bookID, copyID, fixtures.Borrower(s.memberID), fixtures.Policy(), fixtures.Now)

	// act
	result := createloan.Decide(s.history(), command)

	// assert
	require.NoError(t, result.HasError())
	assert.Equal(t, s.secondID.String(), command.CopyID)
	assert.Equal(t, s.secondID.String(), result.Events[1].(core.LoanApproved).CopyID)
}

func Test_Decide_Forbidden_WhenBorrowerIsNotEligible(t *testing.T) {
	s := givenShelf()
	otherBookID := uuid.New()
	dueNextWeek := fixtures.Now.AddDate(0, 0, 7)

	testCases := []struct {
		name    string
		actor   core.Actor
		history core.DomainEvents
		reason  string
	}{
		{
			name:    "administrator",
			actor:   fixtures.Admin(),
			history: s.history(),
			reason:  "only members can request loans",
		},
		{
			name:    "no profile",
			actor:   fixtures.Borrower(s.memberID),
			history: s.history()[:3],
			reason:  "member profile not found",
		},
		{
			name:  "suspended",
			actor: fixtures.Borrower(s.memberID),
			history: fixtures.Join(
				s.history(),
				fixtures.Events(core.BuildMemberStatusChanged(s.memberID.String(), core.MemberSuspended, core.MemberActive, fixtures.AdminID, fixtures.Now.AddDate(0, 0, -1))),
			),
			reason: "membership is not active (SUSPENDED)",
		},
		{
			name:  "overdue loan",
			actor: fixtures.Borrower(s.memberID),
			history: fixtures.Join(
				s.history(),
				fixtures.NewLoan(s.memberID, otherBookID, uuid.New()).Active(fixtures.Now.AddDate(0, 0, -1)),
			),
			reason: "has overdue loans",
		},
		{
			name:  "unpaid penalty",
			actor: fixtures.Borrower(s.memberID),
			history: fixtures.Join(
				s.history(),
				fixtures.NewLoan(s.memberID, otherBookID, uuid.New()).Returned(fixtures.Now.AddDate(0, 0, -10), fixtures.Now.AddDate(0, 0, -5), "5.00"),
			),
			reason: "has unpaid penalties",
		},
		{
			name:  "loan cap reached",
			actor: fixtures.Borrower(s.memberID),
			history: fixtures.Join(
				s.history(),
				fixtures.NewLoan(s.memberID, otherBookID, uuid.New()).Active(dueNextWeek),
				fixtures.NewLoan(s.memberID, otherBookID, uuid.New()).Active(dueNextWeek),
				fixtures.NewLoan(s.memberID, otherBookID, uuid.New()).Active(dueNextWeek),
			),
			reason: "has reached the maximum of 3 concurrent loans",
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			// arrange
			command := createloan.BuildCommand(uuid.New(), s.bookID, uuid.NullUUID{}, tc.actor, fixtures.Policy(), fixtures.Now)

			// act
			result := createloan.Decide(tc.history, command)

			// assert
			err := result.HasError()
			assert.ErrorIs(t, err, core.ErrForbidden)
			assert.Equal(t, tc.reason, core.ReasonOf(err))
			assert.False(t, result.HasEventsToAppend())
		})
	}
}

func Test_Decide_NotFound_WhenBookIsNotCatalogued(t *testing.T) {
	// arrange
	s := givenShelf()
	command := createloan.BuildCommand(uuid.New(), uuid.New(), uuid.NullUUID{}, fixtures.Borrower(s.memberID), fixtures.Policy(), fixtures.Now)

	// act
	result := createloan.Decide(s.history(), command)

	// assert
	assert.ErrorIs(t, result.HasError(), core.ErrNotFound)
}

func Test_Decide_NotFound_WhenRequestedCopyIsUnknown(t *testing.T) {
	s := givenShelf()
	command := createloan.BuildCommand(uuid.New(), s.bookID, uuid.NullUUID{UUID: uuid.New(), Valid: true}, fixtures.Borrower(s.memberID), fixtures.Policy(), fixtures.Now)

	result := createloan.Decide(s.history(), command)

	assert.ErrorIs(t, result.HasError(), core.ErrNotFound)
}

func Test_Decide_Conflict_WhenNoCopyIsAvailable(t *testing.T) {
	// arrange
	s := givenShelf()
	history := fixtures.Join(
		s.history(),
		fixtures.Events(
			core.BuildCopyStatusChanged(s.firstID.String(), s.bookID.String(), core.CopyLost, fixtures.AdminID, fixtures.Now.AddDate(0, 0, -2)),
			core.BuildCopyStatusChanged(s.secondID.String(), s.bookID.String(), core.CopyDamaged, fixtures.AdminID, fixtures.Now.AddDate(0, 0, -2)),
		),
	)
	command := createloan.BuildCommand(uuid.New(), s.bookID, uuid.NullUUID{}, fixtures.Borrower(s.memberID), fixtures.Policy(), fixtures.Now)

	// act
	result := createloan.Decide(history, command)

	// assert
	err := result.HasError()
	assert.ErrorIs(t, err, core.ErrConflict)
	assert.Equal(t, "no available copy of this book", core.ReasonOf(err))
}

func Test_Decide_CopyClaimedMeanwhile(t *testing.T) {
	// arrange: another loan claimed B-001 between the first read and the retry
	s := givenShelf()
	history := fixtures.Join(
		s.history(),
		fixtures.NewLoan(uuid.New(), s.bookID, s.firstID).Approved(fixtures.Now.Add(-time.Minute), fixtures.Now.AddDate(0, 0, 14)),
	)
	anyCopy := createloan.BuildCommand(uuid.New(), s.bookID, uuid.NullUUID{}, fixtures.Borrower(s.memberID), fixtures.Policy(), fixtures.Now)
	pinnedCopy := createloan.BuildCommand(uuid.New(), s.bookID, uuid.NullUUID{UUID: s.firstID, Valid: true}, fixtures.Borrower(s.memberID), fixtures.Policy(), fixtures.Now)

	// act
	anyResult := createloan.Decide(history, anyCopy)
	pinnedResult := createloan.Decide(history, pinnedCopy)

	// assert
	require.NoError(t, anyResult.HasError())
	assert.Equal(t, s.secondID.String(), anyResult.Events[1].(core.LoanApproved).CopyID, "an open request takes the next available copy")
	assert.ErrorIs(t, pinnedResult.HasError(), core.ErrConflict, "a pinned request never switches copies")
}

func Test_Decide_Conflict_WhenRequestedCopyBelongsToAnotherBook(t *testing.T) {
	// arrange
	s := givenShelf()
	otherBookID, foreignCopyID := uuid.New(), uuid.New()
	history := fixtures.Join(
		s.history(),
		fixtures.Events(fixtures.Book(otherBookID), fixtures.Copy(foreignCopyID, otherBookID, "X-001")),
	)
	command := createloan.BuildCommand(uuid.New(), s.bookID, uuid.NullUUID{UUID: foreignCopyID, Valid: true}, fixtures.Borrower(s.memberID), fixtures.Policy(), fixtures.Now)

	// act
	result := createloan.Decide(history, command)

	// assert
	err := result.HasError()
	assert.ErrorIs(t, err, core.ErrConflict)
	assert.Contains(t, core.ReasonOf(err), "does not belong to the requested book")
}

func Test_Decide_Idempotent_WhenLoanAlreadyExists(t *testing.T) {
	// arrange
	s := givenShelf()
	loan := fixtures.Loan{LoanID: uuid.New(), MemberID: s.memberID, BookID: s.bookID, CopyID: s.firstID}
	history := fixtures.Join(s.history(), loan.Approved(fixtures.Now.Add(-time.Hour), fixtures.Now.AddDate(0, 0, 14)))
	command := createloan.BuildCommand(loan.LoanID, s.bookID, uuid.NullUUID{}, fixtures.Borrower(s.memberID), fixtures.Policy(), fixtures.Now)

	// act
	result := createloan.Decide(history, command)

	// assert
	assert.True(t, result.IsIdempotent())
	assert.False(t, result.HasEventsToAppend())
}
