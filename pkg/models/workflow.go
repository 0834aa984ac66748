// Package models defines the core domain models for trigger-driven workflow automation.
package models

import "time"

// Workflow pairs one trigger with an ordered list of action steps.
type Workflow struct {
	ID            string         `json:"id"`
	Name          string         `json:"name"          validate:"required,min=3"`
	Description   string         `json:"description"`
	TriggerKind   string         `json:"trigger_kind"  validate:"required"`
	TriggerConfig map[string]any `json:"trigger_config"`
	Active        bool           `json:"active"`
	RunCount      int            `json:"run_count"`
	LastRunAt     *time.Time     `json:"last_run_at,omitempty"`
	CreatedAt     time.Time      `json:"created_at"`
	UpdatedAt     time.Time      `json:"updated_at"`

	// StepCount annotates list responses; it is derived, never stored.
	StepCount int `json:"step_count,omitempty"`
}
