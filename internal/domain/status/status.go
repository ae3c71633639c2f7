// Package status defines shared lifecycle types for workflows and invocations.
package status

import "errors"

// Status represents the lifecycle status of a workflow or execution.
type Status string

const (
	// Non-terminal states
	StatusDefined Status = "defined" // Registered, never executed
	StatusRunning Status = "running" // Actively executing steps

	// Terminal states; a re-run moves them back to running
	StatusCompleted Status = "completed" // All steps succeeded
	StatusFailed    Status = "failed"    // A step failed; execution halted
)

// ErrInvalidTransition is returned when a status transition is not allowed.
var ErrInvalidTransition = errors.New("invalid status transition")

// IsTerminal returns true if the status is a terminal state.
func (s Status) IsTerminal() bool {
	return s == StatusCompleted || s == StatusFailed
}

// String returns the string representation of the status.
func (s Status) String() string {
	return string(s)
}

// ValidTransitions defines allowed status transitions.
var ValidTransitions = map[Status][]Status{
	StatusDefined: {StatusRunning},
	StatusRunning: {StatusCompleted, StatusFailed},
	// Re-running a defined workflow overwrites its status back to running.
	StatusCompleted: {StatusRunning},
	StatusFailed:    {StatusRunning},
}

// CanTransitionTo checks if a transition from current status to target status is valid.
func (s Status) CanTransitionTo(target Status) bool {
	validTargets, ok := ValidTransitions[s]
	if !ok {
		return false
	}
	for _, t := range validTargets {
		if t == target {
			return true
		}
	}
	return false
}

// TransitionTo attempts to transition to the target status and returns error if invalid.
func (s Status) TransitionTo(target Status) (Status, error) {
	if !s.CanTransitionTo(target) {
		return s, ErrInvalidTransition
	}
	return target, nil
}
