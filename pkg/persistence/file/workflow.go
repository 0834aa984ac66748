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

func (p *Persistence) Workflows(ctx context.Context, activeOnly bool) ([]*models.Workflow, error) {
	ids, err := p.listIDs(workflowsDir)
	if err != nil {
		return nil, err
	}

	workflows := make([]*models.Workflow, 0, len(ids))

	for _, id := range ids {
		workflow, err := p.WorkflowByID(ctx, id)
		if err != nil {
			return nil, fmt.Errorf("failed to load workflow %s: %w", id, err)
		}

		if activeOnly && !workflow.Active {
			continue
		}

		steps, err := p.StepsByWorkflow(ctx, id)
		if err != nil {
			return nil, err
		}

		workflow.StepCount = len(steps)
		workflows = append(workflows, workflow)
	}

	sort.Slice(workflows, func(i, j int) bool {
		return workflows[i].CreatedAt.After(workflows[j].CreatedAt)
	})

	return workflows, nil
}

func (p *Persistence) WorkflowByID(_ context.Context, id string) (*models.Workflow, error) {
	var workflow models.Workflow

	err := p.readDoc(workflowsDir, id, &workflow)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, persistence.ErrWorkflowNotFound
		}

		return nil, fmt.Errorf("failed to fetch workflow %s: %w", id, err)
	}

	return &workflow, nil
}

func (p *Persistence) SaveWorkflow(_ context.Context, workflow *models.Workflow) error {
	now := time.Now().UTC()
	if workflow.CreatedAt.IsZero() {
		workflow.CreatedAt = now
	}

	workflow.UpdatedAt = now

	return p.writeDoc(workflowsDir, workflow.ID, workflow)
}

func (p *Persistence) DeleteWorkflow(ctx context.Context, id string) error {
	if _, err := p.WorkflowByID(ctx, id); err != nil {
		return err
	}

	steps, err := p.StepsByWorkflow(ctx, id)
	if err != nil {
		return err
	}

	for _, step := range steps {
		if err := p.deleteDoc(stepsDir, step.ID); err != nil {
			return fmt.Errorf("failed to delete step %s: %w", step.ID, err)
		}
	}

	return p.deleteDoc(workflowsDir, id)
}

func (p *Persistence) RecordRun(ctx context.Context, workflowID string, ranAt time.Time) error {
	workflow, err := p.WorkflowByID(ctx, workflowID)
	if err != nil {
		return err
	}

	workflow.RunCount++
	workflow.LastRunAt = &ranAt

	return p.writeDoc(workflowsDir, workflow.ID, workflow)
}
