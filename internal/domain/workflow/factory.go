package workflow

import "github.com/garyjia/procure-indent/internal/domain/role"

// NewIndentMachine builds the indent approval state machine positioned at
// the given state. The ladder advances strictly one state per approval
// event: manager tier clears PENDING, procurement tier clears APPROVED.
func NewIndentMachine(current State) StateMachine {
	builder := NewBuilder()

	builder.Configure(StatePending).
		Permit(TriggerApprove, StateApproved).
		Permit(TriggerReject, StateRejected)

	builder.Configure(StateApproved).
		Permit(TriggerApprove, StateProcurementApproved).
		Permit(TriggerReject, StateRejected)

	builder.Configure(StateProcurementApproved).
		Permit(TriggerCreatePO, StatePOCreated)

	builder.Configure(StatePOCreated).
		Permit(TriggerComplete, StateCompleted)

	return builder.Build(current)
}

// RequiredRole returns the minimum role whose tier may decide an approval
// while the indent is in the given state. The second return is false when
// no approval decision is accepted in that state.
func RequiredRole(s State) (role.Role, bool) {
	switch s {
	case StatePending:
		return role.RoleManager, true
	case StateApproved:
		return role.RoleProcurementOfficer, true
	default:
		return "", false
	}
}
