package workflow

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dealflow/dealflow/pkg/models"
	"github.com/dealflow/dealflow/pkg/registry"
)

func TestDispatchMatchesConfiguredEvent(t *testing.T) {
	e := newEngine(t)
	ctx := context.Background()

	dealWon := e.activeWorkflow(t, "Deal won", registry.TriggerDomainEvent,
		map[string]any{"event": "deal-won"})
	e.addStep(t, dealWon.ID, "send-message", map[string]any{
		"template":  "won",
		"recipient": "{{email}}",
	})

	contactCreated := e.activeWorkflow(t, "Contact created", registry.TriggerDomainEvent,
		map[string]any{"event": "contact-created"})
	e.addStep(t, contactCreated.ID, "send-message", map[string]any{
		"template":  "welcome",
		"recipient": "{{email}}",
	})

	executions, err := e.dispatcher.Dispatch(ctx, "deal-won", map[string]any{"email": "a@b.com"})
	require.NoError(t, err)

	require.Len(t, executions, 1)
	assert.Equal(t, dealWon.ID, executions[0].WorkflowID)
	assert.Equal(t, models.ExecutionStatusCompleted, executions[0].Status)
}

func TestDispatchSkipsInactiveWorkflows(t *testing.T) {
	e := newEngine(t)
	ctx := context.Background()

	active := e.activeWorkflow(t, "Active listener", registry.TriggerDomainEvent,
		map[string]any{"event": "deal-created"})
	e.addStep(t, active.ID, "notify", map[string]any{"message": "new deal"})

	// created but never activated
	inactive, err := e.store.CreateWorkflow(ctx, &models.Workflow{
		Name:          "Dormant listener",
		TriggerKind:   registry.TriggerDomainEvent,
		TriggerConfig: map[string]any{"event": "deal-created"},
	})
	require.NoError(t, err)

	executions, err := e.dispatcher.Dispatch(ctx, "deal-created", map[string]any{"amount": float64(10)})
	require.NoError(t, err)

	require.Len(t, executions, 1)
	assert.Equal(t, active.ID, executions[0].WorkflowID)

	history, err := e.persist.Executions(ctx, inactive.ID, 0)
	require.NoError(t, err)
	assert.Empty(t, history)
}

func TestDispatchMinValueFilter(t *testing.T) {
	e := newEngine(t)
	ctx := context.Background()

	workflow := e.activeWorkflow(t, "Big deals", registry.TriggerDomainEvent,
		map[string]any{"event": "deal-created", "min_value": float64(1000)})
	e.addStep(t, workflow.ID, "notify", map[string]any{"message": "big deal: {{amount}}"})

	executions, err := e.dispatcher.Dispatch(ctx, "deal-created", map[string]any{"amount": float64(500)})
	require.NoError(t, err)
	assert.Empty(t, executions)

	executions, err = e.dispatcher.Dispatch(ctx, "deal-created", map[string]any{"amount": float64(5000)})
	require.NoError(t, err)
	require.Len(t, executions, 1)
	assert.Equal(t, models.ExecutionStatusCompleted, executions[0].Status)
}

func TestDispatchStateTransitionFilter(t *testing.T) {
	e := newEngine(t)
	ctx := context.Background()

	workflow := e.activeWorkflow(t, "Qualified to won", registry.TriggerDomainEvent,
		map[string]any{
			"event":      "deal-stage-changed",
			"from_state": "qualified",
			"to_state":   "won",
		})
	e.addStep(t, workflow.ID, "notify", map[string]any{"message": "deal won"})

	executions, err := e.dispatcher.Dispatch(ctx, "deal-stage-changed", map[string]any{
		"from_state": "lead",
		"to_state":   "won",
	})
	require.NoError(t, err)
	assert.Empty(t, executions)

	executions, err = e.dispatcher.Dispatch(ctx, "deal-stage-changed", map[string]any{
		"from_state": "qualified",
		"to_state":   "won",
	})
	require.NoError(t, err)
	assert.Len(t, executions, 1)
}

func TestDispatchIsolatesFailures(t *testing.T) {
	e := newEngine(t)
	ctx := context.Background()

	e.mutator.err = errors.New("crm unavailable")

	broken := e.activeWorkflow(t, "Broken tagger", registry.TriggerDomainEvent,
		map[string]any{"event": "contact-created"})
	e.addStep(t, broken.ID, "mutate-record", map[string]any{
		"entity":   "contact",
		"property": "status",
		"value":    "tagged",
	})

	healthy := e.activeWorkflow(t, "Welcome mail", registry.TriggerDomainEvent,
		map[string]any{"event": "contact-created"})
	e.addStep(t, healthy.ID, "send-message", map[string]any{
		"template":  "welcome",
		"recipient": "{{email}}",
	})

	executions, err := e.dispatcher.Dispatch(ctx, "contact-created", map[string]any{"email": "a@b.com"})
	require.NoError(t, err)

	// both executions are returned, one failed and one completed
	require.Len(t, executions, 2)

	byWorkflow := make(map[string]models.ExecutionStatus, len(executions))
	for _, execution := range executions {
		byWorkflow[execution.WorkflowID] = execution.Status
	}

	assert.Equal(t, models.ExecutionStatusFailed, byWorkflow[broken.ID])
	assert.Equal(t, models.ExecutionStatusCompleted, byWorkflow[healthy.ID])
	assert.Len(t, e.sender.sent, 1)
}

func TestDispatchScheduleTick(t *testing.T) {
	e := newEngine(t)
	ctx := context.Background()

	workflow := e.activeWorkflow(t, "Monday digest", registry.TriggerSchedule,
		map[string]any{"cron": "0 10 * * 1"})
	e.addStep(t, workflow.ID, "notify", map[string]any{"message": "weekly digest"})

	executions, err := e.dispatcher.Dispatch(ctx, "schedule", map[string]any{"cron_key": "0 10 * * 1"})
	require.NoError(t, err)
	assert.Len(t, executions, 1)

	// a tick for a different schedule leaves this workflow alone
	executions, err = e.dispatcher.Dispatch(ctx, "schedule", map[string]any{"cron_key": "*/5 * * * *"})
	require.NoError(t, err)
	assert.Empty(t, executions)
}
