package models

import "time"

// ExecutionStatus is the lifecycle state of one workflow run. Transitions are
// one-directional: running -> completed or running -> failed.
type ExecutionStatus string

const (
	ExecutionStatusRunning   ExecutionStatus = "running"
	ExecutionStatusCompleted ExecutionStatus = "completed"
	ExecutionStatusFailed    ExecutionStatus = "failed"
)

// StepStatus is the outcome of a single executed step.
type StepStatus string

const (
	StepStatusSuccess StepStatus = "success"
	// StepStatusConditionFalse marks a branch step whose condition evaluated
	// false; the run stops there and finalizes as completed.
	StepStatusConditionFalse StepStatus = "stop-condition-false"
)

// StepResult is recorded on the owning execution after every step.
type StepResult struct {
	StepID  string         `json:"step_id"`
	Kind    string         `json:"kind"`
	Status  StepStatus     `json:"status"`
	Payload map[string]any `json:"payload,omitempty"`
}

// Execution is one concrete run of a workflow. TriggerData is snapshotted when
// the run starts and never mutated; once the status is terminal the whole
// record is immutable.
type Execution struct {
	ID           string          `json:"id"`
	WorkflowID   string          `json:"workflow_id"`
	WorkflowName string          `json:"workflow_name,omitempty"`
	TriggerData  map[string]any  `json:"trigger_data,omitempty"`
	Status       ExecutionStatus `json:"status"`
	CurrentStep  int             `json:"current_step"`
	Results      []StepResult    `json:"results"`
	ErrorMessage string          `json:"error_message,omitempty"`
	StartedAt    time.Time       `json:"started_at"`
	CompletedAt  *time.Time      `json:"completed_at,omitempty"`
}

// Terminal reports whether the execution reached a final state.
func (e *Execution) Terminal() bool {
	return e.Status == ExecutionStatusCompleted || e.Status == ExecutionStatusFailed
}
