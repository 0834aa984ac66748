package models

import "time"

// ActionStep is one unit of work within a workflow, executed in ascending Order.
// Inactive steps are skipped at run time but retained so they can be re-enabled.
type ActionStep struct {
	ID         string         `json:"id"`
	WorkflowID string         `json:"workflow_id" validate:"required"`
	Kind       string         `json:"kind"        validate:"required"`
	Config     map[string]any `json:"config"`
	Order      int            `json:"order"`
	Active     bool           `json:"active"`
	CreatedAt  time.Time      `json:"created_at"`
}
