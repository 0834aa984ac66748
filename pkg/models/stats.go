package models

// WorkflowStats aggregates stored workflow counters.
type WorkflowStats struct {
	Total     int `json:"total"`
	Active    int `json:"active"`
	TotalRuns int `json:"total_runs"`
}

// ExecutionStats aggregates execution outcomes over the stats window.
type ExecutionStats struct {
	Total     int `json:"total"`
	Completed int `json:"completed"`
	Failed    int `json:"failed"`
	Running   int `json:"running"`
}

// EngineStats is the read-only aggregation returned by the stats layer.
type EngineStats struct {
	Workflows  WorkflowStats  `json:"workflows"`
	Executions ExecutionStats `json:"executions"`
	Period     string         `json:"period"`
}
