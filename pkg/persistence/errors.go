// Package persistence error sentinels shared by all implementations.
package persistence

import "errors"

var (
	ErrWorkflowNotFound  = errors.New("workflow not found")
	ErrStepNotFound      = errors.New("action step not found")
	ErrExecutionNotFound = errors.New("execution not found")
)

func IsWorkflowNotFound(err error) bool {
	return errors.Is(err, ErrWorkflowNotFound)
}

func IsStepNotFound(err error) bool {
	return errors.Is(err, ErrStepNotFound)
}

func IsExecutionNotFound(err error) bool {
	return errors.Is(err, ErrExecutionNotFound)
}
