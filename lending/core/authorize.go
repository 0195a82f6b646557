package core

// Transition names an operation for authorization.
type Transition string

const (
	TransitionCreate     Transition = "create"
	TransitionApprove    Transition = "approve"
	TransitionReject     Transition = "reject"
	TransitionCheckout   Transition = "checkout"
	TransitionRenew      Transition = "renew"
	TransitionCancel     Transition = "cancel"
	TransitionReturn     Transition = "return"
	TransitionView       Transition = "view"
	TransitionAdminister Transition = "administer"
)

// Authorize is the single authorization predicate of all operations.
// loan is ignored for create and the admin-only transitions.
func Authorize(transition Transition, actor Actor, loan Loan) error {
	if actor.ID == "" {
		return Forbiddenf("caller identity is missing")
	}

	switch transition {
	case TransitionCreate:
		if actor.Role != RoleMember {
			return Forbiddenf("only members can request loans")
		}

	case TransitionApprove, TransitionReject, TransitionCheckout, TransitionAdminister:
		if !actor.IsAdmin() {
			return Forbiddenf("administrator role required")
		}

	case TransitionRenew, TransitionCancel, TransitionReturn, TransitionView:
		if !actor.IsAdmin() && actor.ID != loan.MemberID {
			return Forbiddenf("loan belongs to another member")
		}

	default:
		return Forbiddenf("unknown operation %q", transition)
	}

	return nil
}
