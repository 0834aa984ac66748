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

func (p *Persistence) SaveExecution(ctx context.Context, execution *models.Execution) error {
	triggerDataJSON, err := json.Marshal(execution.TriggerData)
	if err != nil {
		return fmt.Errorf("failed to marshal trigger data: %w", err)
	}

	results := execution.Results
	if results == nil {
		results = []models.StepResult{}
	}

	resultsJSON, err := json.Marshal(results)
	if err != nil {
		return fmt.Errorf("failed to marshal results: %w", err)
	}

	query := `
		INSERT INTO executions (id, workflow_id, trigger_data, status, current_step,
			results, error_message, started_at, completed_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		ON CONFLICT (id) DO UPDATE SET
			status = EXCLUDED.status,
			current_step = EXCLUDED.current_step,
			results = EXCLUDED.results,
			error_message = EXCLUDED.error_message,
			completed_at = EXCLUDED.completed_at
	`

	var errorMessage sql.NullString
	if execution.ErrorMessage != "" {
		errorMessage = sql.NullString{String: execution.ErrorMessage, Valid: true}
	}

	_, err = p.db.ExecContext(ctx, query,
		execution.ID,
		execution.WorkflowID,
		triggerDataJSON,
		execution.Status,
		execution.CurrentStep,
		resultsJSON,
		errorMessage,
		execution.StartedAt,
		execution.CompletedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to save execution: %w", err)
	}

	return nil
}

const executionColumns = `
	e.id
  , e.workflow_id
  , COALESCE(w.name, '')
  , e.trigger_data
  , e.status
  , e.current_step
  , e.results
  , e.error_message
  , e.started_at
  , e.completed_at
`

func (p *Persistence) ExecutionByID(ctx context.Context, id string) (*models.Execution, error) {
	query := `
		SELECT ` + executionColumns + `
		FROM executions e
		LEFT JOIN workflows w ON w.id = e.workflow_id
		WHERE e.id = $1
	`

	execution, err := scanExecution(p.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, persistence.ErrExecutionNotFound
		}

		return nil, fmt.Errorf("failed to scan execution: %w", err)
	}

	return execution, nil
}

func (p *Persistence) Executions(ctx context.Context, workflowID string, limit int) ([]*models.Execution, error) {
	query := `
		SELECT ` + executionColumns + `
		FROM executions e
		LEFT JOIN workflows w ON w.id = e.workflow_id
	`

	args := make([]any, 0, 2)

	if workflowID != "" {
		args = append(args, workflowID)
		query += fmt.Sprintf(" WHERE e.workflow_id = $%d", len(args))
	}

	query += " ORDER BY e.started_at DESC"

	if limit > 0 {
		args = append(args, limit)
		query += fmt.Sprintf(" LIMIT $%d", len(args))
	}

	rows, err := p.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query executions: %w", err)
	}

	defer func() {
		if err := rows.Close(); err != nil {
			p.logger.ErrorContext(ctx, "failed to close rows", "error", err)
		}
	}()

	executions := make([]*models.Execution, 0)

	for rows.Next() {
		execution, err := scanExecution(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan execution: %w", err)
		}

		executions = append(executions, execution)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating executions: %w", err)
	}

	return executions, nil
}

func (p *Persistence) Stats(ctx context.Context, window time.Duration) (*models.EngineStats, error) {
	stats := &models.EngineStats{Period: window.String()}

	workflowQuery := `
		SELECT
			COUNT(*)
		  , COUNT(*) FILTER (WHERE active)
		  , COALESCE(SUM(run_count), 0)
		FROM workflows
	`

	err := p.db.QueryRowContext(ctx, workflowQuery).Scan(
		&stats.Workflows.Total,
		&stats.Workflows.Active,
		&stats.Workflows.TotalRuns,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to aggregate workflow stats: %w", err)
	}

	executionQuery := `
		SELECT
			COUNT(*)
		  , COUNT(*) FILTER (WHERE status = 'completed')
		  , COUNT(*) FILTER (WHERE status = 'failed')
		  , COUNT(*) FILTER (WHERE status = 'running')
		FROM executions
		WHERE started_at >= $1
	`

	cutoff := time.Now().UTC().Add(-window)

	err = p.db.QueryRowContext(ctx, executionQuery, cutoff).Scan(
		&stats.Executions.Total,
		&stats.Executions.Completed,
		&stats.Executions.Failed,
		&stats.Executions.Running,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to aggregate execution stats: %w", err)
	}

	return stats, nil
}

func scanExecution(row rowScanner) (*models.Execution, error) {
	var (
		execution       models.Execution
		triggerDataJSON []byte
		resultsJSON     []byte
		errorMessage    sql.NullString
		completedAt     sql.NullTime
	)

	err := row.Scan(
		&execution.ID,
		&execution.WorkflowID,
		&execution.WorkflowName,
		&triggerDataJSON,
		&execution.Status,
		&execution.CurrentStep,
		&resultsJSON,
		&errorMessage,
		&execution.StartedAt,
		&completedAt,
	)
	if err != nil {
		return nil, err
	}

	if err := json.Unmarshal(triggerDataJSON, &execution.TriggerData); err != nil {
		return nil, fmt.Errorf("failed to unmarshal trigger data: %w", err)
	}

	if err := json.Unmarshal(resultsJSON, &execution.Results); err != nil {
		return nil, fmt.Errorf("failed to unmarshal results: %w", err)
	}

	if errorMessage.Valid {
		execution.ErrorMessage = errorMessage.String
	}

	if completedAt.Valid {
		t := completedAt.Time
		execution.CompletedAt = &t
	}

	return &execution, nil
}
