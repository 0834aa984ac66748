// Package notify implements the notify action kind. Like call-webhook it is
// best effort: a failing notifier is recorded in the payload, not raised.
package notify

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	"github.com/dealflow/dealflow/pkg/connectors"
	"github.com/dealflow/dealflow/pkg/models"
	"github.com/dealflow/dealflow/pkg/protocol"
)

var ErrMessageRequired = errors.New("message is required")

func NewFactory(notifier connectors.Notifier) protocol.ActionFactory {
	return &Factory{notifier: notifier}
}

type Factory struct {
	notifier connectors.Notifier
}

func (f *Factory) ID() string {
	return "notify"
}

func (f *Factory) Name() string {
	return "Notify team"
}

func (f *Factory) Description() string {
	return "Sends an internal notification to a team channel"
}

func (f *Factory) Schema() map[string]any {
	return map[string]any{
		"type": "object",
		"properties": map[string]any{
			"channel": map[string]any{
				"type":    "string",
				"enum":    []any{"email", "slack", "dashboard"},
				"default": "dashboard",
			},
			"message": map[string]any{
				"type":        "string",
				"description": "Notification text, merge tags allowed",
			},
			"recipients": map[string]any{
				"type":        "string",
				"description": "Comma-separated recipient list",
			},
		},
		"required": []string{"message"},
	}
}

func (f *Factory) Create(config map[string]any) (protocol.Action, error) {
	message, _ := config["message"].(string)
	if message == "" {
		return nil, ErrMessageRequired
	}

	channel, _ := config["channel"].(string)
	if channel == "" {
		channel = "dashboard"
	}

	var recipients []string

	if raw, _ := config["recipients"].(string); raw != "" {
		for _, recipient := range strings.Split(raw, ",") {
			if trimmed := strings.TrimSpace(recipient); trimmed != "" {
				recipients = append(recipients, trimmed)
			}
		}
	}

	return &Action{
		notifier:   f.notifier,
		channel:    channel,
		message:    message,
		recipients: recipients,
	}, nil
}

type Action struct {
	notifier   connectors.Notifier
	channel    string
	message    string
	recipients []string
}

func (a *Action) Execute(ctx context.Context, _ models.RunContext, logger *slog.Logger) (protocol.StepOutcome, error) {
	logger = logger.With("action_kind", "notify", "channel", a.channel)
	logger.Info("Notifying team", "recipients", len(a.recipients))

	receipt, err := a.notifier.Notify(ctx, a.channel, a.message, a.recipients)
	if err != nil {
		logger.Warn("Notification failed", "error", err)

		return protocol.StepOutcome{
			Status: models.StepStatusSuccess,
			Payload: map[string]any{
				"notified": false,
				"ok":       false,
				"channel":  a.channel,
				"error":    err.Error(),
			},
		}, nil
	}

	return protocol.StepOutcome{
		Status: models.StepStatusSuccess,
		Payload: map[string]any{
			"notified":   receipt.Notified,
			"ok":         true,
			"channel":    a.channel,
			"message":    a.message,
			"recipients": a.recipients,
		},
	}, nil
}
