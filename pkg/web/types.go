// Package web provides the HTTP request and response types for the workflow
// API.
package web

type CreateWorkflowRequest struct {
	Name          string         `json:"name"           validate:"required,min=3"`
	Description   string         `json:"description"`
	TriggerKind   string         `json:"trigger_kind"   validate:"required"`
	TriggerConfig map[string]any `json:"trigger_config"`
}

// UpdateWorkflowRequest supports partial updates; absent fields keep their
// stored values. Activation happens here, never at creation.
type UpdateWorkflowRequest struct {
	Name          *string        `json:"name,omitempty"        validate:"omitempty,min=3"`
	Description   *string        `json:"description,omitempty"`
	TriggerKind   *string        `json:"trigger_kind,omitempty"`
	TriggerConfig map[string]any `json:"trigger_config,omitempty"`
	Active        *bool          `json:"active,omitempty"`
}

type CreateStepRequest struct {
	Kind   string         `json:"kind"   validate:"required"`
	Config map[string]any `json:"config"`
	Order  int            `json:"order"`
}

// UpdateStepRequest rewrites config, order or the active flag in place.
type UpdateStepRequest struct {
	Kind   *string        `json:"kind,omitempty"`
	Config map[string]any `json:"config,omitempty"`
	Order  *int           `json:"order,omitempty"`
	Active *bool          `json:"active,omitempty"`
}

// RunWorkflowRequest carries optional trigger data for a manual run.
type RunWorkflowRequest struct {
	TriggerData map[string]any `json:"trigger_data"`
}

// DispatchEventRequest reports a domain event to the engine.
type DispatchEventRequest struct {
	Kind string         `json:"kind" validate:"required"`
	Data map[string]any `json:"data"`
}
