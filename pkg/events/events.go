// Package events defines the lifecycle notifications published while
// workflows run.
package events

import (
	"time"

	"github.com/dealflow/dealflow/pkg/models"
)

type EventType string

// Topic is the single stream all lifecycle events are published to.
const Topic = "dealflow.events"

const EventMetadataKey = "key"
const EventTypeMetadataKey = "event_type"

const (
	ExecutionStartedEvent   EventType = "execution.started"
	ExecutionCompletedEvent EventType = "execution.completed"
	ExecutionFailedEvent    EventType = "execution.failed"
	WorkflowMatchedEvent    EventType = "workflow.matched"
)

type BaseEvent struct {
	ID         string    `json:"id"`
	Type       EventType `json:"type"`
	Timestamp  time.Time `json:"timestamp"`
	WorkflowID string    `json:"workflow_id"`
}

// ExecutionStarted is published when a run is created, before the first step.
type ExecutionStarted struct {
	BaseEvent

	ExecutionID string         `json:"execution_id"`
	TriggerData map[string]any `json:"trigger_data,omitempty"`
}

func (e ExecutionStarted) GetType() EventType {
	return ExecutionStartedEvent
}

type ExecutionCompleted struct {
	BaseEvent

	ExecutionID string              `json:"execution_id"`
	Results     []models.StepResult `json:"results,omitempty"`
	Duration    time.Duration       `json:"duration"`
}

func (e ExecutionCompleted) GetType() EventType {
	return ExecutionCompletedEvent
}

type ExecutionFailed struct {
	BaseEvent

	ExecutionID string `json:"execution_id"`
	Error       string `json:"error"`
	FailedStep  int    `json:"failed_step"`
}

func (e ExecutionFailed) GetType() EventType {
	return ExecutionFailedEvent
}

// WorkflowMatched is published when a dispatched domain event matched a
// workflow's trigger, before the run itself starts.
type WorkflowMatched struct {
	BaseEvent

	EventKind string         `json:"event_kind"`
	EventData map[string]any `json:"event_data,omitempty"`
}

func (e WorkflowMatched) GetType() EventType {
	return WorkflowMatchedEvent
}
