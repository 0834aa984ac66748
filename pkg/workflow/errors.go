package workflow

import "errors"

var (
	// ErrInvalidTrigger rejects a workflow whose trigger kind is unknown or
	// whose trigger config fails its schema.
	ErrInvalidTrigger = errors.New("invalid trigger")
	// ErrInvalidAction rejects a step whose action kind is unknown or whose
	// config fails its schema.
	ErrInvalidAction = errors.New("invalid action")
	// ErrWorkflowInactive rejects a run request against a disabled workflow
	// before any execution is created.
	ErrWorkflowInactive = errors.New("workflow is not active")
)

func IsInvalidTrigger(err error) bool {
	return errors.Is(err, ErrInvalidTrigger)
}

func IsInvalidAction(err error) bool {
	return errors.Is(err, ErrInvalidAction)
}

func IsWorkflowInactive(err error) bool {
	return errors.Is(err, ErrWorkflowInactive)
}
