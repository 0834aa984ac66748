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

func TestRunRejectsInactiveWorkflow(t *testing.T) {
	e := newEngine(t)
	ctx := context.Background()

	created, err := e.store.CreateWorkflow(ctx, &models.Workflow{
		Name:        "Paused campaign",
		TriggerKind: registry.TriggerManual,
	})
	require.NoError(t, err)

	execution, err := e.runner.Run(ctx, created.ID, nil)
	require.Error(t, err)
	assert.True(t, IsWorkflowInactive(err))
	assert.Nil(t, execution)

	// no execution record is created for a rejected run
	executions, err := e.persist.Executions(ctx, created.ID, 0)
	require.NoError(t, err)
	assert.Empty(t, executions)
}

func TestRunDealWonScenario(t *testing.T) {
	e := newEngine(t)
	ctx := context.Background()

	workflow := e.activeWorkflow(t, "Deal won follow-up", registry.TriggerDomainEvent,
		map[string]any{"event": "deal-won"})
	e.addStep(t, workflow.ID, "send-message", map[string]any{
		"template":  "won-email",
		"recipient": "{{email}}",
	})
	e.addStep(t, workflow.ID, "create-task", map[string]any{
		"title":       "Send contract",
		"due_in_days": float64(2),
	})

	execution, err := e.runner.Run(ctx, workflow.ID, map[string]any{
		"email":  "a@b.com",
		"amount": float64(5000),
	})
	require.NoError(t, err)

	assert.Equal(t, models.ExecutionStatusCompleted, execution.Status)
	require.Len(t, execution.Results, 2)
	assert.NotNil(t, execution.CompletedAt)

	require.Len(t, e.sender.sent, 1)
	assert.Equal(t, "a@b.com", e.sender.sent[0].recipient)
	assert.Equal(t, "won-email", e.sender.sent[0].template)

	require.Len(t, e.tasks.titles, 1)
	assert.Equal(t, "Send contract", e.tasks.titles[0])

	fetched, err := e.store.WorkflowByID(ctx, workflow.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, fetched.RunCount)
	assert.NotNil(t, fetched.LastRunAt)
}

func TestRunBranchConditionFalseHaltsRun(t *testing.T) {
	e := newEngine(t)
	ctx := context.Background()

	workflow := e.activeWorkflow(t, "Big deals only", registry.TriggerDomainEvent,
		map[string]any{"event": "deal-created"})
	e.addStep(t, workflow.ID, "send-message", map[string]any{
		"template":  "ack",
		"recipient": "{{email}}",
	})
	e.addStep(t, workflow.ID, "branch-if", map[string]any{
		"field":    "amount",
		"operator": "greater-than",
		"value":    float64(1000),
	})
	e.addStep(t, workflow.ID, "send-message", map[string]any{
		"template":  "vip",
		"recipient": "{{email}}",
	})

	execution, err := e.runner.Run(ctx, workflow.ID, map[string]any{
		"email":  "a@b.com",
		"amount": float64(500),
	})
	require.NoError(t, err)

	// condition-false is a normal termination: completed, only step 1 recorded
	assert.Equal(t, models.ExecutionStatusCompleted, execution.Status)
	require.Len(t, execution.Results, 1)
	assert.Equal(t, "send-message", execution.Results[0].Kind)
	assert.Len(t, e.sender.sent, 1)
}

func TestRunBranchConditionTrueContinues(t *testing.T) {
	e := newEngine(t)
	ctx := context.Background()

	workflow := e.activeWorkflow(t, "Big deals only", registry.TriggerDomainEvent,
		map[string]any{"event": "deal-created"})
	e.addStep(t, workflow.ID, "branch-if", map[string]any{
		"field":    "amount",
		"operator": "greater-than",
		"value":    float64(1000),
	})
	e.addStep(t, workflow.ID, "send-message", map[string]any{
		"template":  "vip",
		"recipient": "{{email}}",
	})

	execution, err := e.runner.Run(ctx, workflow.ID, map[string]any{
		"email":  "a@b.com",
		"amount": float64(9000),
	})
	require.NoError(t, err)

	assert.Equal(t, models.ExecutionStatusCompleted, execution.Status)
	require.Len(t, execution.Results, 2)
	assert.Equal(t, models.StepStatusSuccess, execution.Results[0].Status)
	assert.Equal(t, true, execution.Results[0].Payload["passed"])
}

func TestRunHandlerErrorFinalizesFailed(t *testing.T) {
	e := newEngine(t)
	ctx := context.Background()

	e.mutator.err = errors.New("crm unavailable")

	workflow := e.activeWorkflow(t, "Tagging", registry.TriggerDomainEvent,
		map[string]any{"event": "contact-created"})
	e.addStep(t, workflow.ID, "send-message", map[string]any{
		"template":  "hello",
		"recipient": "{{email}}",
	})
	e.addStep(t, workflow.ID, "mutate-record", map[string]any{
		"entity":   "contact",
		"property": "status",
		"value":    "welcomed",
	})

	execution, err := e.runner.Run(ctx, workflow.ID, map[string]any{"email": "a@b.com"})
	require.Error(t, err)
	require.NotNil(t, execution)

	assert.Equal(t, models.ExecutionStatusFailed, execution.Status)
	assert.Len(t, execution.Results, 1)
	assert.NotEmpty(t, execution.ErrorMessage)
	assert.NotNil(t, execution.CompletedAt)

	// the failed record is persisted with partial results
	stored, err := e.persist.ExecutionByID(ctx, execution.ID)
	require.NoError(t, err)
	assert.Equal(t, models.ExecutionStatusFailed, stored.Status)
	assert.Len(t, stored.Results, 1)

	// failure never bumps run counters
	fetched, err := e.store.WorkflowByID(ctx, workflow.ID)
	require.NoError(t, err)
	assert.Zero(t, fetched.RunCount)
	assert.Nil(t, fetched.LastRunAt)
}

func TestRunSkipsInactiveSteps(t *testing.T) {
	e := newEngine(t)
	ctx := context.Background()

	workflow := e.activeWorkflow(t, "Partial chain", registry.TriggerManual, nil)
	e.addStep(t, workflow.ID, "send-message", map[string]any{
		"template":  "hello",
		"recipient": "ops@dealflow.io",
	})
	disabled := e.addStep(t, workflow.ID, "send-message", map[string]any{
		"template":  "retired",
		"recipient": "ops@dealflow.io",
	})

	disabled.Active = false
	_, err := e.store.UpdateStep(ctx, disabled.ID, disabled)
	require.NoError(t, err)

	execution, err := e.runner.Run(ctx, workflow.ID, nil)
	require.NoError(t, err)

	require.Len(t, execution.Results, 1)
	assert.Len(t, e.sender.sent, 1)
	assert.Equal(t, "hello", e.sender.sent[0].template)
}

func TestRunSnapshotsTriggerDataAndUnknownTags(t *testing.T) {
	e := newEngine(t)
	ctx := context.Background()

	workflow := e.activeWorkflow(t, "Sparse data", registry.TriggerManual, nil)
	e.addStep(t, workflow.ID, "send-message", map[string]any{
		"template":  "hi {{missing}}",
		"recipient": "ops@dealflow.io",
	})

	execution, err := e.runner.Run(ctx, workflow.ID, map[string]any{"name": "Ada"})
	require.NoError(t, err)

	// unknown merge tags are left verbatim rather than aborting the run
	require.Len(t, e.sender.sent, 1)
	assert.Equal(t, "hi {{missing}}", e.sender.sent[0].template)

	assert.Equal(t, map[string]any{"name": "Ada"}, execution.TriggerData)
}
