package models

// RunContext is handed to each action handler: the trigger data snapshot plus the
// results accumulated so far. Base action kinds only read TriggerData; prior
// results are exposed as an extension point for kinds that chain outputs.
type RunContext struct {
	ExecutionID  string         `json:"execution_id"`
	WorkflowID   string         `json:"workflow_id"`
	TriggerData  map[string]any `json:"trigger_data,omitempty"`
	PriorResults []StepResult   `json:"prior_results,omitempty"`
}
