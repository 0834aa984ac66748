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

func (p *Persistence) StepsByWorkflow(ctx context.Context, workflowID string) ([]*models.ActionStep, error) {
	ids, err := p.listIDs(stepsDir)
	if err != nil {
		return nil, err
	}

	steps := make([]*models.ActionStep, 0)

	for _, id := range ids {
		step, err := p.StepByID(ctx, id)
		if err != nil {
			return nil, fmt.Errorf("failed to load step %s: %w", id, err)
		}

		if step.WorkflowID == workflowID {
			steps = append(steps, step)
		}
	}

	sort.Slice(steps, func(i, j int) bool {
		return steps[i].Order < steps[j].Order
	})

	return steps, nil
}

func (p *Persistence) StepByID(_ context.Context, id string) (*models.ActionStep, error) {
	var step models.ActionStep

	err := p.readDoc(stepsDir, id, &step)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, persistence.ErrStepNotFound
		}

		return nil, fmt.Errorf("failed to fetch step %s: %w", id, err)
	}

	return &step, nil
}

func (p *Persistence) SaveStep(_ context.Context, step *models.ActionStep) error {
	if step.CreatedAt.IsZero() {
		step.CreatedAt = time.Now().UTC()
	}

	return p.writeDoc(stepsDir, step.ID, step)
}

func (p *Persistence) DeleteStep(ctx context.Context, id string) error {
	if _, err := p.StepByID(ctx, id); err != nil {
		return err
	}

	return p.deleteDoc(stepsDir, id)
}
