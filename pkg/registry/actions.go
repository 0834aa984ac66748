package registry

import (
	"fmt"
	"log/slog"

	"github.com/dealflow/dealflow/pkg/protocol"
)

// ActionRegistry is the action catalog plus the factories that instantiate
// handlers for each kind.
type ActionRegistry struct {
	*Registry

	factories map[string]protocol.ActionFactory
}

// NewActionRegistry builds the catalog from the factories' own metadata so the
// descriptor and the implementation can never drift apart.
func NewActionRegistry(logger *slog.Logger, factories ...protocol.ActionFactory) *ActionRegistry {
	r := &ActionRegistry{
		Registry:  New(logger.With("module", "action_registry")),
		factories: make(map[string]protocol.ActionFactory, len(factories)),
	}

	for _, factory := range factories {
		r.factories[factory.ID()] = factory
		r.Register(Component{
			Kind:        factory.ID(),
			Name:        factory.Name(),
			Description: factory.Description(),
			Schema:      factory.Schema(),
		})
	}

	return r
}

// CreateAction instantiates the handler for a kind with already-resolved config.
func (r *ActionRegistry) CreateAction(kind string, config map[string]any) (protocol.Action, error) {
	factory, ok := r.factories[kind]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownKind, kind)
	}

	return factory.Create(config)
}
