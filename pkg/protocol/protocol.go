// Package protocol defines the contracts between the execution runner and
// pluggable action handlers.
package protocol

import (
	"context"
	"log/slog"

	"github.com/dealflow/dealflow/pkg/models"
)

// StepOutcome is what an action handler reports back to the runner. A handler
// error is reserved for unrecoverable problems (malformed config, collaborator
// misuse); best-effort external failures belong in the payload instead.
type StepOutcome struct {
	Status  models.StepStatus
	Payload map[string]any
}

type Action interface {
	Execute(ctx context.Context, runCtx models.RunContext, logger *slog.Logger) (StepOutcome, error)
}

// ActionFactory creates action instances from resolved step config and carries
// the catalog metadata for its kind.
type ActionFactory interface {
	Create(config map[string]any) (Action, error)
	ID() string
	Name() string
	Description() string
	Schema() map[string]any
}
