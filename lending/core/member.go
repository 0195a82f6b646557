package core

import (
	"time"
)

// Member is the projected profile of a borrower.
type Member struct {
	MemberID MemberIDString
	Name     string
	Email    string
	Status   MemberStatus
}

// ProjectMember replays history into the profile of memberID.
func ProjectMember(history DomainEvents, memberID string) (Member, bool) {
	var member Member
	found := false

	for _, event := range history {
		switch e := event.(type) {
		case MemberRegistered:
			if e.MemberID == memberID {
				member = Member{MemberID: e.MemberID, Name: e.Name, Email: e.Email, Status: e.Status}
				found = true
			}

		case MemberStatusChanged:
			if e.MemberID == memberID && found {
				member.Status = e.Status
			}
		}
	}

	return member, found
}

// MemberFacts are the derived eligibility facts of a member. They are never stored.
type MemberFacts struct {
	MemberID       MemberIDString
	ProfileExists  bool
	Status         MemberStatus
	OverdueLoans   int
	PenalizedLoans int
	OpenLoans      int
}

// MemberFactsFrom derives the eligibility facts of memberID at now from history.
// history must contain all member and loan events of the member.
func MemberFactsFrom(history DomainEvents, memberID string, now time.Time) MemberFacts {
	facts := MemberFacts{MemberID: memberID}

	if member, found := ProjectMember(history, memberID); found {
		facts.ProfileExists = true
		facts.Status = member.Status
	}

	for _, loan := range ProjectLoans(history) {
		if loan.MemberID != memberID {
			continue
		}

		status := loan.StatusAt(now)

		if status == StatusOverdue {
			facts.OverdueLoans++
		}

		if (status == StatusOverdue || status == StatusReturned) && loan.HasPenalty() {
			facts.PenalizedLoans++
		}

		if status.IsOpen() {
			facts.OpenLoans++
		}
	}

	return facts
}
