package workflow

import "errors"

var (
	// ErrInvalidTransition is returned when a decision is submitted against
	// a status that does not accept it
	ErrInvalidTransition = errors.New("invalid state transition")

	// ErrInvalidState is returned when a state is not valid
	ErrInvalidState = errors.New("invalid state")

	// ErrGuardFailed is returned when a guard condition fails
	ErrGuardFailed = errors.New("guard condition failed")

	// ErrUnauthorized is returned when the actor's role does not reach the
	// tier required for the indent's current stage
	ErrUnauthorized = errors.New("role not authorized for current stage")
)
