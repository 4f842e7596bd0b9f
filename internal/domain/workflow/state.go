package workflow

// State represents an indent's position in the approval lifecycle
type State string

const (
	StatePending             State = "PENDING"
	StateApproved            State = "APPROVED"
	StateProcurementApproved State = "PROCUREMENT_APPROVED"
	StatePOCreated           State = "PO_CREATED"
	StateCompleted           State = "COMPLETED"
	StateRejected            State = "REJECTED"
)

var validStates = map[State]bool{
	StatePending:             true,
	StateApproved:            true,
	StateProcurementApproved: true,
	StatePOCreated:           true,
	StateCompleted:           true,
	StateRejected:            true,
}

var terminalStates = map[State]bool{
	StateRejected:  true,
	StateCompleted: true,
}

// IsTerminal returns true if no further transitions are allowed from the state
func (s State) IsTerminal() bool {
	return terminalStates[s]
}

// IsValid returns true if the state is a valid workflow state
func (s State) IsValid() bool {
	return validStates[s]
}

// String returns the string representation of the state
func (s State) String() string {
	return string(s)
}
