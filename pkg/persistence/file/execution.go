package file

import (
	"context"
	"fmt"
	"os"
	"sort"
	"time"

	"github.com/dealflow/dealflow/pkg/models"
	"github.com/dealflow/dealflow/pkg/persistence"
)

func (p *Persistence) SaveExecution(_ context.Context, execution *models.Execution) error {
	return p.writeDoc(executionsDir, execution.ID, execution)
}

func (p *Persistence) ExecutionByID(_ context.Context, id string) (*models.Execution, error) {
	var execution models.Execution

	err := p.readDoc(executionsDir, id, &execution)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, persistence.ErrExecutionNotFound
		}

		return nil, fmt.Errorf("failed to fetch execution %s: %w", id, err)
	}

	return &execution, nil
}

func (p *Persistence) Executions(ctx context.Context, workflowID string, limit int) ([]*models.Execution, error) {
	ids, err := p.listIDs(executionsDir)
	if err != nil {
		return nil, err
	}

	executions := make([]*models.Execution, 0, len(ids))

	for _, id := range ids {
		execution, err := p.ExecutionByID(ctx, id)
		if err != nil {
			return nil, fmt.Errorf("failed to load execution %s: %w", id, err)
		}

		if workflowID != "" && execution.WorkflowID != workflowID {
			continue
		}

		if workflow, err := p.WorkflowByID(ctx, execution.WorkflowID); err == nil {
			execution.WorkflowName = workflow.Name
		}

		executions = append(executions, execution)
	}

	sort.Slice(executions, func(i, j int) bool {
		return executions[i].StartedAt.After(executions[j].StartedAt)
	})

	if limit > 0 && len(executions) > limit {
		executions = executions[:limit]
	}

	return executions, nil
}

func (p *Persistence) Stats(ctx context.Context, window time.Duration) (*models.EngineStats, error) {
	workflows, err := p.Workflows(ctx, false)
	if err != nil {
		return nil, err
	}

	stats := &models.EngineStats{Period: window.String()}

	for _, workflow := range workflows {
		stats.Workflows.Total++
		stats.Workflows.TotalRuns += workflow.RunCount

		if workflow.Active {
			stats.Workflows.Active++
		}
	}

	executions, err := p.Executions(ctx, "", 0)
	if err != nil {
		return nil, err
	}

	cutoff := time.Now().UTC().Add(-window)

	for _, execution := range executions {
		if execution.StartedAt.Before(cutoff) {
			continue
		}

		stats.Executions.Total++

		switch execution.Status {
		case models.ExecutionStatusCompleted:
			stats.Executions.Completed++
		case models.ExecutionStatusFailed:
			stats.Executions.Failed++
		case models.ExecutionStatusRunning:
			stats.Executions.Running++
		}
	}

	return stats, nil
}
