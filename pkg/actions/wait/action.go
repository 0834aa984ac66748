// Package wait implements the wait action kind.
//
// The runner is synchronous per run, so this action does not suspend anything:
// it computes the resume timestamp and the run continues with the next step.
// Real suspension would need a persisted pending-resume state and a re-entry
// path; that is an explicit product decision this engine does not make.
package wait

import (
	"context"
	"log/slog"
	"time"

	"github.com/dealflow/dealflow/pkg/models"
	"github.com/dealflow/dealflow/pkg/protocol"
)

const minutesPerDay = 24 * 60

func NewFactory() protocol.ActionFactory {
	return &Factory{}
}

type Factory struct{}

func (f *Factory) ID() string {
	return "wait"
}

func (f *Factory) Name() string {
	return "Wait"
}

func (f *Factory) Description() string {
	return "Marks a delay before the following steps; records the resume timestamp"
}

func (f *Factory) Schema() map[string]any {
	return map[string]any{
		"type": "object",
		"properties": map[string]any{
			"days":    map[string]any{"type": "number", "default": 0},
			"hours":   map[string]any{"type": "number", "default": 0},
			"minutes": map[string]any{"type": "number", "default": 0},
		},
	}
}

func (f *Factory) Create(config map[string]any) (protocol.Action, error) {
	return &Action{
		days:    numberFromConfig(config, "days"),
		hours:   numberFromConfig(config, "hours"),
		minutes: numberFromConfig(config, "minutes"),
	}, nil
}

type Action struct {
	days    int
	hours   int
	minutes int
}

func (a *Action) Execute(_ context.Context, _ models.RunContext, logger *slog.Logger) (protocol.StepOutcome, error) {
	totalMinutes := a.days*minutesPerDay + a.hours*60 + a.minutes
	resumeAt := time.Now().UTC().Add(time.Duration(totalMinutes) * time.Minute)

	logger.Info("Recorded wait step", "action_kind", "wait", "minutes", totalMinutes, "resume_at", resumeAt)

	return protocol.StepOutcome{
		Status: models.StepStatusSuccess,
		Payload: map[string]any{
			"delayed":   true,
			"minutes":   totalMinutes,
			"resume_at": resumeAt.Format(time.RFC3339),
		},
	}, nil
}

func numberFromConfig(config map[string]any, key string) int {
	switch v := config[key].(type) {
	case float64:
		return int(v)
	case int:
		return v
	default:
		return 0
	}
}
