package workflow

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/dealflow/dealflow/pkg/eventbus"
	"github.com/dealflow/dealflow/pkg/events"
	"github.com/dealflow/dealflow/pkg/models"
	"github.com/dealflow/dealflow/pkg/persistence"
	"github.com/dealflow/dealflow/pkg/registry"
	"github.com/dealflow/dealflow/pkg/template"
)

// Runner executes one workflow run to a terminal state. Steps run strictly
// sequentially; progress is persisted after every step so a crash mid-run
// leaves an inspectable partial record.
type Runner struct {
	persistence persistence.Persistence
	actions     *registry.ActionRegistry
	publisher   eventbus.EventPublisher
	logger      *slog.Logger
}

func NewRunner(
	logger *slog.Logger,
	persist persistence.Persistence,
	actions *registry.ActionRegistry,
	publisher eventbus.EventPublisher,
) *Runner {
	return &Runner{
		persistence: persist,
		actions:     actions,
		publisher:   publisher,
		logger:      logger.With("module", "execution_runner"),
	}
}

// Run starts one execution of the workflow with the given trigger data.
// Inactive workflows are rejected before any execution record exists. The
// returned execution is always persisted in its terminal state when non-nil,
// including on failure; the error then describes the failing step.
func (r *Runner) Run(ctx context.Context, workflowID string, triggerData map[string]any) (*models.Execution, error) {
	workflow, err := r.persistence.WorkflowByID(ctx, workflowID)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch workflow %s: %w", workflowID, err)
	}

	if !workflow.Active {
		return nil, fmt.Errorf("%w: %s", ErrWorkflowInactive, workflowID)
	}

	if triggerData == nil {
		triggerData = map[string]any{}
	}

	execution := &models.Execution{
		ID:          uuid.New().String(),
		WorkflowID:  workflow.ID,
		TriggerData: triggerData,
		Status:      models.ExecutionStatusRunning,
		Results:     []models.StepResult{},
		StartedAt:   time.Now().UTC(),
	}

	logger := r.logger.With(
		"workflow_id", workflow.ID,
		"execution_id", execution.ID,
	)

	if err := r.persistence.SaveExecution(ctx, execution); err != nil {
		return nil, fmt.Errorf("failed to create execution: %w", err)
	}

	logger.InfoContext(ctx, "Started execution", "workflow_name", workflow.Name)
	r.publish(ctx, execution.ID, events.ExecutionStarted{
		BaseEvent:   r.baseEvent(events.ExecutionStartedEvent, workflow.ID),
		ExecutionID: execution.ID,
		TriggerData: triggerData,
	})

	steps, err := r.persistence.StepsByWorkflow(ctx, workflow.ID)
	if err != nil {
		return r.fail(ctx, logger, execution, fmt.Errorf("failed to fetch steps: %w", err))
	}

	for _, step := range steps {
		if !step.Active {
			logger.InfoContext(ctx, "Skipping inactive step", "step_id", step.ID)

			continue
		}

		stepLogger := logger.With("step_id", step.ID, "kind", step.Kind, "order", step.Order)

		resolved := template.ResolveConfig(step.Config, triggerData)

		action, err := r.actions.CreateAction(step.Kind, resolved)
		if err != nil {
			return r.fail(ctx, logger, execution, fmt.Errorf("step %s: %w", step.ID, err))
		}

		runCtx := models.RunContext{
			ExecutionID:  execution.ID,
			WorkflowID:   workflow.ID,
			TriggerData:  triggerData,
			PriorResults: execution.Results,
		}

		outcome, err := action.Execute(ctx, runCtx, stepLogger)
		if err != nil {
			return r.fail(ctx, logger, execution, fmt.Errorf("step %s (%s) failed: %w", step.ID, step.Kind, err))
		}

		// A false condition halts the run without recording a result; the
		// execution still finalizes as completed.
		if outcome.Status == models.StepStatusConditionFalse {
			stepLogger.InfoContext(ctx, "Condition evaluated false, stopping run")

			break
		}

		execution.Results = append(execution.Results, models.StepResult{
			StepID:  step.ID,
			Kind:    step.Kind,
			Status:  outcome.Status,
			Payload: outcome.Payload,
		})
		execution.CurrentStep = len(execution.Results)

		if err := r.persistence.SaveExecution(ctx, execution); err != nil {
			return r.fail(ctx, logger, execution, fmt.Errorf("failed to persist progress: %w", err))
		}
	}

	now := time.Now().UTC()
	execution.Status = models.ExecutionStatusCompleted
	execution.CompletedAt = &now

	if err := r.persistence.SaveExecution(ctx, execution); err != nil {
		return execution, fmt.Errorf("failed to finalize execution: %w", err)
	}

	if err := r.persistence.RecordRun(ctx, workflow.ID, now); err != nil {
		logger.ErrorContext(ctx, "Failed to record run", "error", err)
	}

	logger.InfoContext(ctx, "Completed execution", "steps", len(execution.Results))
	r.publish(ctx, execution.ID, events.ExecutionCompleted{
		BaseEvent:   r.baseEvent(events.ExecutionCompletedEvent, workflow.ID),
		ExecutionID: execution.ID,
		Results:     execution.Results,
		Duration:    now.Sub(execution.StartedAt),
	})

	return execution, nil
}

// fail finalizes the execution as failed, keeping the partial results and the
// error message, and returns the cause so the caller can propagate it. Run
// counters are untouched.
func (r *Runner) fail(ctx context.Context, logger *slog.Logger, execution *models.Execution, cause error) (*models.Execution, error) {
	now := time.Now().UTC()
	execution.Status = models.ExecutionStatusFailed
	execution.ErrorMessage = cause.Error()
	execution.CompletedAt = &now

	if err := r.persistence.SaveExecution(ctx, execution); err != nil {
		logger.ErrorContext(ctx, "Failed to persist failed execution", "error", err)
	}

	logger.ErrorContext(ctx, "Execution failed", "error", cause)
	r.publish(ctx, execution.ID, events.ExecutionFailed{
		BaseEvent:   r.baseEvent(events.ExecutionFailedEvent, execution.WorkflowID),
		ExecutionID: execution.ID,
		Error:       cause.Error(),
		FailedStep:  execution.CurrentStep,
	})

	return execution, cause
}

func (r *Runner) baseEvent(eventType events.EventType, workflowID string) events.BaseEvent {
	return events.BaseEvent{
		ID:         uuid.New().String(),
		Type:       eventType,
		Timestamp:  time.Now().UTC(),
		WorkflowID: workflowID,
	}
}

// publish is best effort: a broken event channel must not fail the run.
func (r *Runner) publish(ctx context.Context, key string, event eventbus.Event) {
	if r.publisher == nil {
		return
	}

	if err := r.publisher.Publish(ctx, key, event); err != nil {
		r.logger.ErrorContext(ctx, "Failed to publish event",
			"event_type", event.GetType(), "error", err)
	}
}
