package httpapi

import (
	"github.com/shopspring/decimal"
)

type createLoanRequest struct {
	BookID string `json:"book_id" validate:"required,uuid"`
	CopyID string `json:"copy_id" validate:"omitempty,uuid"`
}

const (
	actionApprove = "approve"
	actionReject  = "reject"
)

type decisionRequest struct {
	Action string `json:"action" validate:"required,oneof=approve reject"`
	CopyID string `json:"copy_id" validate:"required_if=Action approve,omitempty,uuid"`
	Reason string `json:"reason" validate:"max=500"`
}

type registerMemberRequest struct {
	MemberID string `json:"member_id" validate:"required,uuid"`
	Name     string `json:"name" validate:"required,max=200"`
	Email    string `json:"email" validate:"required,email"`
	Status   string `json:"status" validate:"omitempty,oneof=ACTIVE PENDING"`
}

type memberStatusRequest struct {
	Status string `json:"status" validate:"required,oneof=ACTIVE SUSPENDED PENDING EXPIRED"`
}

type addBookRequest struct {
	ISBN            string   `json:"isbn" validate:"required,max=20"`
	Title           string   `json:"title" validate:"required,max=300"`
	Authors         []string `json:"authors" validate:"dive,required"`
	PublicationYear int      `json:"publication_year" validate:"omitempty,gte=0"`
}

type addCopyRequest struct {
	Code string `json:"code" validate:"required,max=50"`
}

type copyStatusRequest struct {
	Status string `json:"status" validate:"required,oneof=AVAILABLE LOST DAMAGED"`
}

type policyRequest struct {
	ApprovalsRequired    *bool           `json:"approvals_required" validate:"required"`
	LoanDays             int             `json:"loan_days" validate:"gt=0"`
	MaxRenewals          int             `json:"max_renewals" validate:"gte=0"`
	OverdueFeePerDay     decimal.Decimal `json:"overdue_fee_per_day"`
	OverdueFeeCapPerLoan decimal.Decimal `json:"overdue_fee_cap_per_loan"`
	MaxConcurrentLoans   int             `json:"max_concurrent_loans" validate:"gt=0"`
}

type idResponse struct {
	ID string `json:"id"`
}
