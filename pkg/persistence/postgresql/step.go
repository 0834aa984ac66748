package postgresql

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/dealflow/dealflow/pkg/models"
	"github.com/dealflow/dealflow/pkg/persistence"
)

const stepColumns = `id, workflow_id, kind, config, step_order, active, created_at`

func (p *Persistence) StepsByWorkflow(ctx context.Context, workflowID string) ([]*models.ActionStep, error) {
	query := `
		SELECT ` + stepColumns + `
		FROM action_steps
		WHERE workflow_id = $1
		ORDER BY step_order ASC
	`

	rows, err := p.db.QueryContext(ctx, query, workflowID)
	if err != nil {
		return nil, fmt.Errorf("failed to query steps: %w", err)
	}

	defer func() {
		if err := rows.Close(); err != nil {
			p.logger.ErrorContext(ctx, "failed to close rows", "error", err)
		}
	}()

	steps := make([]*models.ActionStep, 0)

	for rows.Next() {
		step, err := scanStep(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan step: %w", err)
		}

		steps = append(steps, step)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating steps: %w", err)
	}

	return steps, nil
}

func (p *Persistence) StepByID(ctx context.Context, id string) (*models.ActionStep, error) {
	query := `SELECT ` + stepColumns + ` FROM action_steps WHERE id = $1`

	step, err := scanStep(p.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, persistence.ErrStepNotFound
		}

		return nil, fmt.Errorf("failed to scan step: %w", err)
	}

	return step, nil
}

func (p *Persistence) SaveStep(ctx context.Context, step *models.ActionStep) error {
	if step.CreatedAt.IsZero() {
		step.CreatedAt = time.Now().UTC()
	}

	configJSON, err := json.Marshal(step.Config)
	if err != nil {
		return fmt.Errorf("failed to marshal step config: %w", err)
	}

	query := `
		INSERT INTO action_steps (id, workflow_id, kind, config, step_order, active, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		ON CONFLICT (id) DO UPDATE SET
			kind = EXCLUDED.kind,
			config = EXCLUDED.config,
			step_order = EXCLUDED.step_order,
			active = EXCLUDED.active
	`

	_, err = p.db.ExecContext(ctx, query,
		step.ID,
		step.WorkflowID,
		step.Kind,
		configJSON,
		step.Order,
		step.Active,
		step.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to save step: %w", err)
	}

	return nil
}

func (p *Persistence) DeleteStep(ctx context.Context, id string) error {
	result, err := p.db.ExecContext(ctx, "DELETE FROM action_steps WHERE id = $1", id)
	if err != nil {
		return fmt.Errorf("failed to delete step: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}

	if rowsAffected == 0 {
		return persistence.ErrStepNotFound
	}

	return nil
}

func scanStep(row rowScanner) (*models.ActionStep, error) {
	var (
		step       models.ActionStep
		configJSON []byte
	)

	err := row.Scan(
		&step.ID,
		&step.WorkflowID,
		&step.Kind,
		&configJSON,
		&step.Order,
		&step.Active,
		&step.CreatedAt,
	)
	if err != nil {
		return nil, err
	}

	if err := json.Unmarshal(configJSON, &step.Config); err != nil {
		return nil, fmt.Errorf("failed to unmarshal step config: %w", err)
	}

	return &step, nil
}
