package core

import (
	"time"

	"github.com/shopspring/decimal"
)

const day = 24 * time.Hour

// Penalty computes the overdue fee of a loan due at dueDate and returned at returnDate.
// Started days count as full days; the fee never exceeds feeCap.
func Penalty(dueDate, returnDate time.Time, feePerDay, feeCap decimal.Decimal) (decimal.Decimal, int) {
	overdueDays := OverdueDays(dueDate, returnDate)
	if overdueDays == 0 {
		return decimal.Zero, 0
	}

	return decimal.Min(feePerDay.Mul(decimal.NewFromInt(int64(overdueDays))), feeCap), overdueDays
}

// OverdueDays returns max(0, ceil((returnDate - dueDate) / 1 day)).
func OverdueDays(dueDate, returnDate time.Time) int {
	late := returnDate.Sub(dueDate)
	if late <= 0 {
		return 0
	}

	days := int(late / day)
	if late%day != 0 {
		days++
	}

	return days
}
