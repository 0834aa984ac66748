// Package registry holds the static catalogs of trigger and action kinds.
// The catalogs are seeded at startup and never mutate afterwards; adding a new
// kind is a catalog entry, not a change to the runner.
package registry

import (
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"strings"

	"github.com/xeipuuv/gojsonschema"
)

var (
	ErrUnknownKind   = errors.New("kind not registered")
	ErrInvalidConfig = errors.New("config does not satisfy schema")
)

// Component describes one registered kind: its identity and the JSON schema
// its configuration must satisfy.
type Component struct {
	Kind        string         `json:"kind"`
	Name        string         `json:"name"`
	Description string         `json:"description"`
	Schema      map[string]any `json:"schema"`
}

type Registry struct {
	logger     *slog.Logger
	components map[string]Component
}

func New(logger *slog.Logger) *Registry {
	return &Registry{
		logger:     logger,
		components: make(map[string]Component),
	}
}

func (r *Registry) Register(component Component) {
	r.components[component.Kind] = component
	r.logger.Debug("Registered component", "kind", component.Kind, "name", component.Name)
}

// Describe returns the catalog entry for a kind.
func (r *Registry) Describe(kind string) (Component, bool) {
	component, ok := r.components[kind]

	return component, ok
}

// Components returns all catalog entries sorted by kind.
func (r *Registry) Components() []Component {
	components := make([]Component, 0, len(r.components))
	for _, component := range r.components {
		components = append(components, component)
	}

	sort.Slice(components, func(i, j int) bool {
		return components[i].Kind < components[j].Kind
	})

	return components
}

// Validate checks a configuration against the registered schema for the kind.
// An unknown kind and a schema violation are both reported as errors so the
// caller can reject the definition before anything is persisted.
func (r *Registry) Validate(kind string, config map[string]any) error {
	component, ok := r.components[kind]
	if !ok {
		return fmt.Errorf("%w: %q", ErrUnknownKind, kind)
	}

	if component.Schema == nil {
		return nil
	}

	if config == nil {
		config = map[string]any{}
	}

	schemaLoader := gojsonschema.NewGoLoader(component.Schema)
	configLoader := gojsonschema.NewGoLoader(config)

	result, err := gojsonschema.Validate(schemaLoader, configLoader)
	if err != nil {
		return fmt.Errorf("failed to validate %q config: %w", kind, err)
	}

	if !result.Valid() {
		details := make([]string, 0, len(result.Errors()))
		for _, resultError := range result.Errors() {
			details = append(details, resultError.String())
		}

		r.logger.Warn("Config rejected by schema", "kind", kind, "violations", len(details))

		return fmt.Errorf("%w: %s", ErrInvalidConfig, strings.Join(details, "; "))
	}

	return nil
}
