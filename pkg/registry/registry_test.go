package registry

import (
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTriggerRegistryDescribe(t *testing.T) {
	r := NewTriggerRegistry(slog.Default())

	component, ok := r.Describe(TriggerSchedule)
	require.True(t, ok)
	assert.Equal(t, "Schedule", component.Name)
	assert.NotNil(t, component.Schema)

	_, ok = r.Describe("no-such-kind")
	assert.False(t, ok)
}

func TestTriggerRegistryComponentsSorted(t *testing.T) {
	r := NewTriggerRegistry(slog.Default())

	components := r.Components()
	require.Len(t, components, 4)

	kinds := make([]string, 0, len(components))
	for _, c := range components {
		kinds = append(kinds, c.Kind)
	}

	assert.Equal(t, []string{TriggerDomainEvent, TriggerManual, TriggerSchedule, TriggerWebhook}, kinds)
}

func TestTriggerRegistryValidate(t *testing.T) {
	r := NewTriggerRegistry(slog.Default())

	tests := []struct {
		name    string
		kind    string
		config  map[string]any
		wantErr error
	}{
		{"manual with no config", TriggerManual, nil, nil},
		{"schedule with cron", TriggerSchedule, map[string]any{"cron": "0 9 * * 1"}, nil},
		{"schedule missing cron", TriggerSchedule, map[string]any{"timezone": "Europe/Berlin"}, ErrInvalidConfig},
		{"domain event with filters", TriggerDomainEvent, map[string]any{"event": "deal-created", "min_value": 1000}, nil},
		{"domain event missing event", TriggerDomainEvent, map[string]any{"min_value": 1000}, ErrInvalidConfig},
		{"webhook with secret", TriggerWebhook, map[string]any{"secret": "super-secret"}, nil},
		{"webhook secret too short", TriggerWebhook, map[string]any{"secret": "short"}, ErrInvalidConfig},
		{"unknown kind", "lead-score", map[string]any{}, ErrUnknownKind},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := r.Validate(tt.kind, tt.config)
			if tt.wantErr == nil {
				assert.NoError(t, err)
			} else {
				assert.ErrorIs(t, err, tt.wantErr)
			}
		})
	}
}
