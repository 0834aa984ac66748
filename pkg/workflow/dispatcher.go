package workflow

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/dealflow/dealflow/pkg/eventbus"
	"github.com/dealflow/dealflow/pkg/events"
	"github.com/dealflow/dealflow/pkg/models"
	"github.com/dealflow/dealflow/pkg/persistence"
	"github.com/dealflow/dealflow/pkg/registry"
)

// Dispatcher fans one inbound event out to every active workflow whose
// trigger matches it. Matched workflows run sequentially; one workflow's
// failure is logged and never blocks its siblings.
type Dispatcher struct {
	persistence persistence.Persistence
	runner      *Runner
	publisher   eventbus.EventPublisher
	logger      *slog.Logger
}

func NewDispatcher(
	logger *slog.Logger,
	persist persistence.Persistence,
	runner *Runner,
	publisher eventbus.EventPublisher,
) *Dispatcher {
	return &Dispatcher{
		persistence: persist,
		runner:      runner,
		publisher:   publisher,
		logger:      logger.With("module", "event_dispatcher"),
	}
}

// Dispatch matches eventKind against every active workflow and starts a run
// per match. The returned slice holds every resulting execution, failed ones
// included; Dispatch itself only errors when the workflow list cannot be read.
func (d *Dispatcher) Dispatch(ctx context.Context, eventKind string, eventData map[string]any) ([]*models.Execution, error) {
	workflows, err := d.persistence.Workflows(ctx, true)
	if err != nil {
		return nil, err
	}

	logger := d.logger.With("event_kind", eventKind)
	executions := make([]*models.Execution, 0)

	for _, workflow := range workflows {
		if !d.matches(workflow, eventKind, eventData) {
			continue
		}

		logger.InfoContext(ctx, "Workflow matched event",
			"workflow_id", workflow.ID, "workflow_name", workflow.Name)

		if d.publisher != nil {
			matched := events.WorkflowMatched{
				BaseEvent: events.BaseEvent{
					ID:         uuid.New().String(),
					Type:       events.WorkflowMatchedEvent,
					Timestamp:  time.Now().UTC(),
					WorkflowID: workflow.ID,
				},
				EventKind: eventKind,
				EventData: eventData,
			}
			if err := d.publisher.Publish(ctx, workflow.ID, matched); err != nil {
				logger.ErrorContext(ctx, "Failed to publish match event", "error", err)
			}
		}

		execution, err := d.runner.Run(ctx, workflow.ID, eventData)
		if err != nil {
			logger.ErrorContext(ctx, "Workflow run failed",
				"workflow_id", workflow.ID, "error", err)
		}

		if execution != nil {
			executions = append(executions, execution)
		}
	}

	return executions, nil
}

// matches reports whether the workflow's trigger fires for this event. A
// trigger kind equal to the event kind matches directly (schedule ticks,
// webhook receipts); domain-event triggers match on their configured event
// name and filter predicates.
func (d *Dispatcher) matches(workflow *models.Workflow, eventKind string, eventData map[string]any) bool {
	if workflow.TriggerKind == eventKind {
		// A scheduler tick names the cron expression it fired for, so only
		// workflows on that schedule run. Ticks without a key fan out to
		// every schedule workflow.
		if eventKind == registry.TriggerSchedule {
			cronKey, _ := eventData["cron_key"].(string)
			cron, _ := workflow.TriggerConfig["cron"].(string)

			return cronKey == "" || cronKey == cron
		}

		return true
	}

	if workflow.TriggerKind != registry.TriggerDomainEvent {
		return false
	}

	event, _ := workflow.TriggerConfig["event"].(string)
	if event != eventKind {
		return false
	}

	return filtersPass(workflow.TriggerConfig, eventData)
}

// filtersPass applies the domain-event trigger's optional predicates:
// min_value as a numeric floor on the event's amount (or value), and
// from_state/to_state as an exact state-transition match.
func filtersPass(config map[string]any, eventData map[string]any) bool {
	if minValue, ok := asNumber(config["min_value"]); ok {
		amount, ok := asNumber(eventData["amount"])
		if !ok {
			amount, ok = asNumber(eventData["value"])
		}

		if !ok || amount < minValue {
			return false
		}
	}

	if fromState, ok := config["from_state"].(string); ok && fromState != "" {
		if actual, _ := eventData["from_state"].(string); actual != fromState {
			return false
		}
	}

	if toState, ok := config["to_state"].(string); ok && toState != "" {
		if actual, _ := eventData["to_state"].(string); actual != toState {
			return false
		}
	}

	return true
}

func asNumber(value any) (float64, bool) {
	switch v := value.(type) {
	case float64:
		return v, true
	case int:
		return float64(v), true
	case int64:
		return float64(v), true
	default:
		return 0, false
	}
}
