// Package receivers defines the inbound edges that feed the dispatcher:
// scheduler ticks, queued domain events and signed webhook deliveries.
package receivers

import (
	"context"

	"github.com/dealflow/dealflow/pkg/models"
)

// Dispatcher is the engine surface every receiver hands events to.
type Dispatcher interface {
	Dispatch(ctx context.Context, eventKind string, eventData map[string]any) ([]*models.Execution, error)
}

// Receiver is one running inbound edge.
type Receiver interface {
	Start(ctx context.Context) error
	Stop(ctx context.Context) error
}
