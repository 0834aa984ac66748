package workflow

import (
	"context"
	"time"

	"github.com/dealflow/dealflow/pkg/models"
	"github.com/dealflow/dealflow/pkg/persistence"
)

// DefaultStatsWindow bounds the execution counts returned by Overview.
const DefaultStatsWindow = 30 * 24 * time.Hour

// StatsService is the read-only aggregation over workflows and executions.
type StatsService struct {
	persistence persistence.Persistence
}

func NewStatsService(persist persistence.Persistence) *StatsService {
	return &StatsService{persistence: persist}
}

// Overview returns workflow totals plus execution outcomes over the last 30
// days.
func (s *StatsService) Overview(ctx context.Context) (*models.EngineStats, error) {
	return s.persistence.Stats(ctx, DefaultStatsWindow)
}

// Executions returns recent execution history, newest first. workflowID may
// be empty for all workflows; a non-positive limit falls back to 50.
func (s *StatsService) Executions(ctx context.Context, workflowID string, limit int) ([]*models.Execution, error) {
	if limit <= 0 {
		limit = 50
	}

	return s.persistence.Executions(ctx, workflowID, limit)
}

// ExecutionByID returns one execution record.
func (s *StatsService) ExecutionByID(ctx context.Context, id string) (*models.Execution, error) {
	return s.persistence.ExecutionByID(ctx, id)
}
