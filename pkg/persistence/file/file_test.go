package file

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dealflow/dealflow/pkg/models"
	"github.com/dealflow/dealflow/pkg/persistence"
)

func newTestPersistence(t *testing.T) persistence.Persistence {
	t.Helper()

	return NewPersistence(t.TempDir())
}

func TestSaveAndFetchWorkflow(t *testing.T) {
	p := newTestPersistence(t)

	workflow := &models.Workflow{
		ID:          uuid.New().String(),
		Name:        "Deal won follow-up",
		TriggerKind: "domain-event",
		TriggerConfig: map[string]any{
			"event": "deal-won",
		},
		Active: true,
	}

	require.NoError(t, p.SaveWorkflow(t.Context(), workflow))
	assert.False(t, workflow.CreatedAt.IsZero())

	fetched, err := p.WorkflowByID(t.Context(), workflow.ID)
	require.NoError(t, err)
	assert.Equal(t, workflow.Name, fetched.Name)
	assert.Equal(t, "deal-won", fetched.TriggerConfig["event"])
}

func TestWorkflowByIDNotFound(t *testing.T) {
	p := newTestPersistence(t)

	_, err := p.WorkflowByID(t.Context(), "missing")
	assert.ErrorIs(t, err, persistence.ErrWorkflowNotFound)
}

func TestWorkflowsActiveOnlyAndStepCount(t *testing.T) {
	p := newTestPersistence(t)

	active := &models.Workflow{ID: "wf-active", Name: "active", TriggerKind: "manual", Active: true}
	inactive := &models.Workflow{ID: "wf-inactive", Name: "inactive", TriggerKind: "manual"}
	require.NoError(t, p.SaveWorkflow(t.Context(), active))
	require.NoError(t, p.SaveWorkflow(t.Context(), inactive))

	require.NoError(t, p.SaveStep(t.Context(), &models.ActionStep{
		ID: "step-1", WorkflowID: "wf-active", Kind: "notify", Order: 1, Active: true,
	}))

	all, err := p.Workflows(t.Context(), false)
	require.NoError(t, err)
	assert.Len(t, all, 2)

	activeOnly, err := p.Workflows(t.Context(), true)
	require.NoError(t, err)
	require.Len(t, activeOnly, 1)
	assert.Equal(t, "wf-active", activeOnly[0].ID)
	assert.Equal(t, 1, activeOnly[0].StepCount)
}

func TestDeleteWorkflowCascadesStepsKeepsExecutions(t *testing.T) {
	p := newTestPersistence(t)

	require.NoError(t, p.SaveWorkflow(t.Context(), &models.Workflow{ID: "wf-1", Name: "wf", TriggerKind: "manual"}))
	require.NoError(t, p.SaveStep(t.Context(), &models.ActionStep{ID: "step-1", WorkflowID: "wf-1", Kind: "wait", Order: 1}))
	require.NoError(t, p.SaveExecution(t.Context(), &models.Execution{
		ID: "exec-1", WorkflowID: "wf-1", Status: models.ExecutionStatusCompleted, StartedAt: time.Now().UTC(),
	}))

	require.NoError(t, p.DeleteWorkflow(t.Context(), "wf-1"))

	_, err := p.WorkflowByID(t.Context(), "wf-1")
	assert.ErrorIs(t, err, persistence.ErrWorkflowNotFound)

	_, err = p.StepByID(t.Context(), "step-1")
	assert.ErrorIs(t, err, persistence.ErrStepNotFound)

	execution, err := p.ExecutionByID(t.Context(), "exec-1")
	require.NoError(t, err, "executions are audit history and survive workflow deletion")
	assert.Equal(t, "wf-1", execution.WorkflowID)
}

func TestStepsByWorkflowOrdered(t *testing.T) {
	p := newTestPersistence(t)

	require.NoError(t, p.SaveStep(t.Context(), &models.ActionStep{ID: "s3", WorkflowID: "wf", Kind: "notify", Order: 7}))
	require.NoError(t, p.SaveStep(t.Context(), &models.ActionStep{ID: "s1", WorkflowID: "wf", Kind: "wait", Order: 1}))
	require.NoError(t, p.SaveStep(t.Context(), &models.ActionStep{ID: "s2", WorkflowID: "wf", Kind: "branch-if", Order: 3}))
	require.NoError(t, p.SaveStep(t.Context(), &models.ActionStep{ID: "other", WorkflowID: "another-wf", Kind: "wait", Order: 2}))

	steps, err := p.StepsByWorkflow(t.Context(), "wf")
	require.NoError(t, err)
	require.Len(t, steps, 3)
	assert.Equal(t, []int{1, 3, 7}, []int{steps[0].Order, steps[1].Order, steps[2].Order})
}

func TestRecordRun(t *testing.T) {
	p := newTestPersistence(t)

	require.NoError(t, p.SaveWorkflow(t.Context(), &models.Workflow{ID: "wf-1", Name: "wf", TriggerKind: "manual"}))

	ranAt := time.Now().UTC()
	require.NoError(t, p.RecordRun(t.Context(), "wf-1", ranAt))
	require.NoError(t, p.RecordRun(t.Context(), "wf-1", ranAt.Add(time.Minute)))

	workflow, err := p.WorkflowByID(t.Context(), "wf-1")
	require.NoError(t, err)
	assert.Equal(t, 2, workflow.RunCount)
	require.NotNil(t, workflow.LastRunAt)
	assert.WithinDuration(t, ranAt.Add(time.Minute), *workflow.LastRunAt, time.Second)
}

func TestExecutionsNewestFirstWithLimit(t *testing.T) {
	p := newTestPersistence(t)

	require.NoError(t, p.SaveWorkflow(t.Context(), &models.Workflow{ID: "wf-1", Name: "My workflow", TriggerKind: "manual"}))

	base := time.Now().UTC()
	for i, id := range []string{"e1", "e2", "e3"} {
		require.NoError(t, p.SaveExecution(t.Context(), &models.Execution{
			ID:         id,
			WorkflowID: "wf-1",
			Status:     models.ExecutionStatusCompleted,
			StartedAt:  base.Add(time.Duration(i) * time.Minute),
		}))
	}

	executions, err := p.Executions(t.Context(), "wf-1", 2)
	require.NoError(t, err)
	require.Len(t, executions, 2)
	assert.Equal(t, "e3", executions[0].ID)
	assert.Equal(t, "My workflow", executions[0].WorkflowName)
}

func TestStats(t *testing.T) {
	p := newTestPersistence(t)

	require.NoError(t, p.SaveWorkflow(t.Context(), &models.Workflow{ID: "wf-1", Name: "wf", TriggerKind: "manual", Active: true, RunCount: 3}))
	require.NoError(t, p.SaveWorkflow(t.Context(), &models.Workflow{ID: "wf-2", Name: "wf2", TriggerKind: "manual", RunCount: 1}))

	now := time.Now().UTC()
	require.NoError(t, p.SaveExecution(t.Context(), &models.Execution{ID: "e1", WorkflowID: "wf-1", Status: models.ExecutionStatusCompleted, StartedAt: now}))
	require.NoError(t, p.SaveExecution(t.Context(), &models.Execution{ID: "e2", WorkflowID: "wf-1", Status: models.ExecutionStatusFailed, StartedAt: now}))
	require.NoError(t, p.SaveExecution(t.Context(), &models.Execution{ID: "old", WorkflowID: "wf-1", Status: models.ExecutionStatusCompleted, StartedAt: now.Add(-40 * 24 * time.Hour)}))

	stats, err := p.Stats(t.Context(), 30*24*time.Hour)
	require.NoError(t, err)

	assert.Equal(t, 2, stats.Workflows.Total)
	assert.Equal(t, 1, stats.Workflows.Active)
	assert.Equal(t, 4, stats.Workflows.TotalRuns)
	assert.Equal(t, 2, stats.Executions.Total, "executions outside the window are excluded")
	assert.Equal(t, 1, stats.Executions.Completed)
	assert.Equal(t, 1, stats.Executions.Failed)
}
