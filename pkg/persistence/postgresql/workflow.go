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

const workflowColumns = `
	w.id
  , w.name
  , w.description
  , w.trigger_kind
  , w.trigger_config
  , w.active
  , w.run_count
  , w.last_run_at
  , w.created_at
  , w.updated_at
  , (SELECT COUNT(*) FROM action_steps s WHERE s.workflow_id = w.id) AS step_count
`

func (p *Persistence) Workflows(ctx context.Context, activeOnly bool) ([]*models.Workflow, error) {
	query := `SELECT ` + workflowColumns + ` FROM workflows w`
	if activeOnly {
		query += ` WHERE w.active = true`
	}

	query += ` ORDER BY w.created_at DESC`

	rows, err := p.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to query workflows: %w", err)
	}

	defer func() {
		if err := rows.Close(); err != nil {
			p.logger.ErrorContext(ctx, "failed to close rows", "error", err)
		}
	}()

	workflows := make([]*models.Workflow, 0)

	for rows.Next() {
		workflow, err := scanWorkflow(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan workflow: %w", err)
		}

		workflows = append(workflows, workflow)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating workflows: %w", err)
	}

	return workflows, nil
}

func (p *Persistence) WorkflowByID(ctx context.Context, id string) (*models.Workflow, error) {
	query := `SELECT ` + workflowColumns + ` FROM workflows w WHERE w.id = $1`

	workflow, err := scanWorkflow(p.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, persistence.ErrWorkflowNotFound
		}

		return nil, fmt.Errorf("failed to scan workflow: %w", err)
	}

	return workflow, nil
}

func (p *Persistence) SaveWorkflow(ctx context.Context, workflow *models.Workflow) error {
	now := time.Now().UTC()

	if workflow.CreatedAt.IsZero() {
		workflow.CreatedAt = now
	}

	workflow.UpdatedAt = now

	triggerConfigJSON, err := json.Marshal(workflow.TriggerConfig)
	if err != nil {
		return fmt.Errorf("failed to marshal trigger config: %w", err)
	}

	query := `
		INSERT INTO workflows (id, name, description, trigger_kind, trigger_config,
			active, run_count, last_run_at, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		ON CONFLICT (id) DO UPDATE SET
			name = EXCLUDED.name,
			description = EXCLUDED.description,
			trigger_kind = EXCLUDED.trigger_kind,
			trigger_config = EXCLUDED.trigger_config,
			active = EXCLUDED.active,
			updated_at = EXCLUDED.updated_at
	`

	_, err = p.db.ExecContext(ctx, query,
		workflow.ID,
		workflow.Name,
		workflow.Description,
		workflow.TriggerKind,
		triggerConfigJSON,
		workflow.Active,
		workflow.RunCount,
		workflow.LastRunAt,
		workflow.CreatedAt,
		workflow.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to save workflow: %w", err)
	}

	return nil
}

// DeleteWorkflow removes the workflow; its steps go with it via the foreign
// key cascade while executions stay behind as history.
func (p *Persistence) DeleteWorkflow(ctx context.Context, id string) error {
	result, err := p.db.ExecContext(ctx, "DELETE FROM workflows WHERE id = $1", id)
	if err != nil {
		return fmt.Errorf("failed to delete workflow: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}

	if rowsAffected == 0 {
		return persistence.ErrWorkflowNotFound
	}

	return nil
}

func (p *Persistence) RecordRun(ctx context.Context, workflowID string, ranAt time.Time) error {
	query := `
		UPDATE workflows
		SET run_count = run_count + 1, last_run_at = $2, updated_at = $2
		WHERE id = $1
	`

	result, err := p.db.ExecContext(ctx, query, workflowID, ranAt.UTC())
	if err != nil {
		return fmt.Errorf("failed to record run: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}

	if rowsAffected == 0 {
		return persistence.ErrWorkflowNotFound
	}

	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanWorkflow(row rowScanner) (*models.Workflow, error) {
	var (
		workflow          models.Workflow
		triggerConfigJSON []byte
		lastRunAt         sql.NullTime
	)

	err := row.Scan(
		&workflow.ID,
		&workflow.Name,
		&workflow.Description,
		&workflow.TriggerKind,
		&triggerConfigJSON,
		&workflow.Active,
		&workflow.RunCount,
		&lastRunAt,
		&workflow.CreatedAt,
		&workflow.UpdatedAt,
		&workflow.StepCount,
	)
	if err != nil {
		return nil, err
	}

	if err := json.Unmarshal(triggerConfigJSON, &workflow.TriggerConfig); err != nil {
		return nil, fmt.Errorf("failed to unmarshal trigger config: %w", err)
	}

	if lastRunAt.Valid {
		t := lastRunAt.Time
		workflow.LastRunAt = &t
	}

	return &workflow, nil
}
