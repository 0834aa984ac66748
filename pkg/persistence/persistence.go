// Package persistence provides the storage abstraction for workflows, action
// steps and executions.
package persistence

import (
	"context"
	"time"

	"github.com/dealflow/dealflow/pkg/models"
)

type Persistence interface {
	// Workflows returns workflows ordered by creation time descending, each
	// annotated with its step count. With activeOnly only active workflows
	// are returned.
	Workflows(ctx context.Context, activeOnly bool) ([]*models.Workflow, error)
	WorkflowByID(ctx context.Context, id string) (*models.Workflow, error)
	SaveWorkflow(ctx context.Context, workflow *models.Workflow) error
	// DeleteWorkflow cascades to the workflow's steps. Executions are kept
	// for audit history.
	DeleteWorkflow(ctx context.Context, id string) error
	// RecordRun bumps the workflow's run counter and last-run timestamp.
	RecordRun(ctx context.Context, workflowID string, ranAt time.Time) error

	// StepsByWorkflow returns steps ordered by Order ascending.
	StepsByWorkflow(ctx context.Context, workflowID string) ([]*models.ActionStep, error)
	StepByID(ctx context.Context, id string) (*models.ActionStep, error)
	SaveStep(ctx context.Context, step *models.ActionStep) error
	DeleteStep(ctx context.Context, id string) error

	SaveExecution(ctx context.Context, execution *models.Execution) error
	ExecutionByID(ctx context.Context, id string) (*models.Execution, error)
	// Executions returns execution history newest first, annotated with the
	// workflow name; workflowID may be empty for all workflows.
	Executions(ctx context.Context, workflowID string, limit int) ([]*models.Execution, error)

	// Stats aggregates workflow counters plus execution outcomes within the
	// given window.
	Stats(ctx context.Context, window time.Duration) (*models.EngineStats, error)

	HealthCheck(ctx context.Context) error
	Close(ctx context.Context) error
}
