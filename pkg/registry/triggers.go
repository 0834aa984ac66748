package registry

import "log/slog"

// Trigger kinds recognized by the dispatcher.
const (
	TriggerManual      = "manual"
	TriggerSchedule    = "schedule"
	TriggerDomainEvent = "domain-event"
	TriggerWebhook     = "webhook"
)

// NewTriggerRegistry seeds the trigger catalog. Triggers are descriptive only;
// timing and transport live in the receivers, matching in the dispatcher.
func NewTriggerRegistry(logger *slog.Logger) *Registry {
	r := New(logger.With("module", "trigger_registry"))

	r.Register(Component{
		Kind:        TriggerManual,
		Name:        "Manual",
		Description: "Started explicitly by an operator, no configuration",
		Schema: map[string]any{
			"type":                 "object",
			"properties":           map[string]any{},
			"additionalProperties": false,
		},
	})

	r.Register(Component{
		Kind:        TriggerSchedule,
		Name:        "Schedule",
		Description: "Fired by the scheduler at times computed from a cron expression",
		Schema: map[string]any{
			"type": "object",
			"properties": map[string]any{
				"cron": map[string]any{
					"type":        "string",
					"description": "Cron expression defining the schedule (standard 5-field format)",
					"examples":    []string{"0 9 * * 1", "*/15 * * * *"},
				},
				"timezone": map[string]any{
					"type":        "string",
					"description": "IANA timezone name for evaluating the expression",
					"default":     "UTC",
				},
			},
			"required": []string{"cron"},
		},
	})

	r.Register(Component{
		Kind:        TriggerDomainEvent,
		Name:        "Domain event",
		Description: "Fired when the host system reports the configured event",
		Schema: map[string]any{
			"type": "object",
			"properties": map[string]any{
				"event": map[string]any{
					"type":        "string",
					"description": "Event name to match, e.g. deal-created or contact-created",
				},
				"min_value": map[string]any{
					"type":        "number",
					"description": "Only fire when the event's amount/value meets this floor",
				},
				"from_state": map[string]any{
					"type":        "string",
					"description": "Only fire for transitions leaving this state",
				},
				"to_state": map[string]any{
					"type":        "string",
					"description": "Only fire for transitions entering this state",
				},
			},
			"required": []string{"event"},
		},
	})

	r.Register(Component{
		Kind:        TriggerWebhook,
		Name:        "Webhook",
		Description: "Fired by an inbound HTTP request carrying a valid signature",
		Schema: map[string]any{
			"type": "object",
			"properties": map[string]any{
				"secret": map[string]any{
					"type":        "string",
					"description": "Shared secret used to verify the request signature",
					"minLength":   8,
				},
			},
			"required": []string{"secret"},
		},
	})

	return r
}
