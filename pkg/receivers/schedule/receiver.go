// Package schedule is the timing authority: it owns all cron parsing and
// timezone handling, and only tells the dispatcher that a tick happened. The
// engine itself never sees a cron expression.
package schedule

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/dealflow/dealflow/pkg/persistence"
	"github.com/dealflow/dealflow/pkg/receivers"
	"github.com/dealflow/dealflow/pkg/registry"
)

type Receiver struct {
	persistence persistence.Persistence
	dispatcher  receivers.Dispatcher
	logger      *slog.Logger
	cron        *cron.Cron
}

func NewReceiver(logger *slog.Logger, persist persistence.Persistence, dispatcher receivers.Dispatcher) *Receiver {
	return &Receiver{
		persistence: persist,
		dispatcher:  dispatcher,
		logger:      logger.With("module", "schedule_receiver"),
	}
}

// Start registers one cron entry per distinct schedule found on active
// workflows and begins ticking. Workflows sharing an expression share the
// entry; the dispatcher matches them by cron_key.
func (r *Receiver) Start(ctx context.Context) error {
	workflows, err := r.persistence.Workflows(ctx, true)
	if err != nil {
		return fmt.Errorf("failed to load workflows: %w", err)
	}

	r.cron = cron.New(cron.WithChain(
		cron.SkipIfStillRunning(cron.DefaultLogger),
		cron.Recover(cron.DefaultLogger),
	))

	registered := make(map[string]bool)

	for _, workflow := range workflows {
		if workflow.TriggerKind != registry.TriggerSchedule {
			continue
		}

		expr, _ := workflow.TriggerConfig["cron"].(string)
		if expr == "" || registered[expr] {
			continue
		}

		spec := expr
		if timezone, _ := workflow.TriggerConfig["timezone"].(string); timezone != "" {
			spec = "CRON_TZ=" + timezone + " " + expr
		}

		cronKey := expr
		if _, err := r.cron.AddFunc(spec, func() { r.tick(ctx, cronKey) }); err != nil {
			r.logger.ErrorContext(ctx, "Failed to register schedule",
				"workflow_id", workflow.ID, "cron", expr, "error", err)

			continue
		}

		registered[expr] = true
		r.logger.InfoContext(ctx, "Registered schedule", "cron", spec)
	}

	r.cron.Start()
	r.logger.InfoContext(ctx, "Schedule receiver started", "entries", len(registered))

	return nil
}

func (r *Receiver) tick(ctx context.Context, cronKey string) {
	executions, err := r.dispatcher.Dispatch(ctx, registry.TriggerSchedule, map[string]any{
		"fired_at": time.Now().UTC().Format(time.RFC3339),
		"cron_key": cronKey,
	})
	if err != nil {
		r.logger.ErrorContext(ctx, "Failed to dispatch schedule tick", "cron", cronKey, "error", err)

		return
	}

	r.logger.InfoContext(ctx, "Dispatched schedule tick", "cron", cronKey, "executions", len(executions))
}

func (r *Receiver) Stop(ctx context.Context) error {
	if r.cron == nil {
		return nil
	}

	stopCtx := r.cron.Stop()
	select {
	case <-stopCtx.Done():
	case <-ctx.Done():
	}

	r.logger.InfoContext(ctx, "Schedule receiver stopped")

	return nil
}
