package core

import (
	"cmp"
	"sort"
	"strings"
	"time"
)

// Copy is the projected inventory state of one physical copy.
type Copy struct {
	CopyID       CopyIDString
	BookID       BookIDString
	Code         string
	Status       CopyStatus
	HolderLoanID LoanIDString // set while ON_LOAN
}

func (c *Copy) apply(event DomainEvent) {
	switch e := event.(type) {
	case CopyAddedToInventory:
		*c = Copy{CopyID: e.CopyID, BookID: e.BookID, Code: e.Code, Status: CopyAvailable}

	case CopyStatusChanged:
		c.Status = e.Status

	case CopyClaimed:
		c.Status = CopyOnLoan
		c.HolderLoanID = e.LoanID

	case CopyReleased:
		c.Status = CopyAvailable
		c.HolderLoanID = ""
	}
}

func copyIDOf(event DomainEvent) string {
	switch e := event.(type) {
	case CopyAddedToInventory:
		return e.CopyID
	case CopyStatusChanged:
		return e.CopyID
	case CopyClaimed:
		return e.CopyID
	case CopyReleased:
		return e.CopyID
	default:
		return ""
	}
}

// ProjectCopies replays history into all copies added to inventory, keyed by copy id.
func ProjectCopies(history DomainEvents) map[CopyIDString]Copy {
	copies := make(map[CopyIDString]Copy)

	for _, event := range history {
		copyID := copyIDOf(event)
		if copyID == "" {
			continue
		}

		c, found := copies[copyID]
		if _, isAdded := event.(CopyAddedToInventory); !found && !isAdded {
			continue
		}

		c.apply(event)
		copies[copyID] = c
	}

	return copies
}

// ProjectCopy replays history into the copy with copyID.
func ProjectCopy(history DomainEvents, copyID string) (Copy, bool) {
	c, found := ProjectCopies(history)[copyID]

	return c, found
}

// SelectAvailableCopy returns the AVAILABLE copy of bookID with the lowest code, ties broken by copy id.
// Codes are compared naturally, so C-9 comes before C-10.
func SelectAvailableCopy(copies map[CopyIDString]Copy, bookID string) (Copy, bool) {
	candidates := make([]Copy, 0, len(copies))
	for _, c := range copies {
		if c.BookID == bookID && c.Status == CopyAvailable {
			candidates = append(candidates, c)
		}
	}

	if len(candidates) == 0 {
		return Copy{}, false
	}

	sort.Slice(candidates, func(i, j int) bool {
		if order := CompareCodes(candidates[i].Code, candidates[j].Code); order != 0 {
			return order < 0
		}

		return candidates[i].CopyID < candidates[j].CopyID
	})

	return candidates[0], true
}

// CompareCodes orders copy codes naturally: runs of digits compare by numeric value,
// everything else byte by byte. Codes that differ only in leading zeros fall back to
// plain string order.
func CompareCodes(a, b string) int {
	i, j := 0, 0
	for i < len(a) && j < len(b) {
		if isDigit(a[i]) && isDigit(b[j]) {
			endA, endB := digitRunEnd(a, i), digitRunEnd(b, j)
			if order := compareNumbers(a[i:endA], b[j:endB]); order != 0 {
				return order
			}
			i, j = endA, endB

			continue
		}

		if a[i] != b[j] {
			return cmp.Compare(a[i], b[j])
		}
		i++
		j++
	}

	if order := cmp.Compare(len(a)-i, len(b)-j); order != 0 {
		return order
	}

	return strings.Compare(a, b)
}

func isDigit(c byte) bool {
	return c >= '0' && c <= '9'
}

func digitRunEnd(s string, start int) int {
	end := start
	for end < len(s) && isDigit(s[end]) {
		end++
	}

	return end
}

// compareNumbers compares two digit runs of arbitrary length by value.
func compareNumbers(a, b string) int {
	a, b = strings.TrimLeft(a, "0"), strings.TrimLeft(b, "0")
	if order := cmp.Compare(len(a), len(b)); order != 0 {
		return order
	}

	return strings.Compare(a, b)
}

// CheckCopyAssignable verifies that c may be assigned to loan: it belongs to the loan's book,
// is AVAILABLE, and no other non-terminal loan in loans references it.
func CheckCopyAssignable(c Copy, loan Loan, loans map[LoanIDString]Loan) error {
	if c.BookID != loan.BookID {
		return Conflictf("copy %s does not belong to the requested book", c.Code)
	}

	if c.Status != CopyAvailable {
		return Conflictf("copy %s is not available (%s)", c.Code, c.Status)
	}

	for _, other := range loans {
		if other.LoanID != loan.LoanID && other.CopyID == c.CopyID && !other.Status.IsTerminal() {
			return Conflictf("copy %s is already assigned to an open loan", c.Code)
		}
	}

	return nil
}

// ClaimCopy produces the AVAILABLE -> ON_LOAN transition of c for loan.
func ClaimCopy(c Copy, loan Loan, loans map[LoanIDString]Loan, at time.Time) (CopyClaimed, error) {
	if err := CheckCopyAssignable(c, loan, loans); err != nil {
		return CopyClaimed{}, err
	}

	return BuildCopyClaimed(c.CopyID, c.BookID, loan.LoanID, at), nil
}

// ReleaseCopy produces the ON_LOAN -> AVAILABLE transition of c. Only the holding loan may release it.
func ReleaseCopy(c Copy, loan Loan, at time.Time) (CopyReleased, error) {
	if c.Status != CopyOnLoan || c.HolderLoanID != loan.LoanID {
		return CopyReleased{}, Conflictf("copy %s is not held by this loan", c.Code)
	}

	return BuildCopyReleased(c.CopyID, c.BookID, loan.LoanID, at), nil
}
