// Package sendmessage implements the send-message action kind.
package sendmessage

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/dealflow/dealflow/pkg/connectors"
	"github.com/dealflow/dealflow/pkg/models"
	"github.com/dealflow/dealflow/pkg/protocol"
)

var ErrRecipientRequired = errors.New("recipient is required")

func NewFactory(sender connectors.MessageSender) protocol.ActionFactory {
	return &Factory{sender: sender}
}

type Factory struct {
	sender connectors.MessageSender
}

func (f *Factory) ID() string {
	return "send-message"
}

func (f *Factory) Name() string {
	return "Send message"
}

func (f *Factory) Description() string {
	return "Sends a templated message to a recipient over the configured channel"
}

func (f *Factory) Schema() map[string]any {
	return map[string]any{
		"type": "object",
		"properties": map[string]any{
			"channel": map[string]any{
				"type":        "string",
				"description": "Delivery channel",
				"enum":        []any{"email", "whatsapp", "slack"},
				"default":     "email",
			},
			"template": map[string]any{
				"type":        "string",
				"description": "Message template identifier",
			},
			"recipient": map[string]any{
				"type":        "string",
				"description": "Recipient address, usually a merge tag such as {{email}}",
			},
		},
		"required": []string{"template", "recipient"},
	}
}

func (f *Factory) Create(config map[string]any) (protocol.Action, error) {
	channel, _ := config["channel"].(string)
	if channel == "" {
		channel = "email"
	}

	template, _ := config["template"].(string)
	recipient, _ := config["recipient"].(string)

	if recipient == "" {
		return nil, ErrRecipientRequired
	}

	return &Action{
		sender:    f.sender,
		channel:   channel,
		template:  template,
		recipient: recipient,
	}, nil
}

type Action struct {
	sender    connectors.MessageSender
	channel   string
	template  string
	recipient string
}

func (a *Action) Execute(ctx context.Context, _ models.RunContext, logger *slog.Logger) (protocol.StepOutcome, error) {
	logger = logger.With("action_kind", "send-message", "channel", a.channel)
	logger.Info("Sending message", "recipient", a.recipient, "template", a.template)

	receipt, err := a.sender.Send(ctx, a.channel, a.recipient, a.template)
	if err != nil {
		return protocol.StepOutcome{}, fmt.Errorf("message send failed: %w", err)
	}

	return protocol.StepOutcome{
		Status: models.StepStatusSuccess,
		Payload: map[string]any{
			"sent":      receipt.Sent,
			"id":        receipt.ID,
			"channel":   a.channel,
			"recipient": a.recipient,
			"template":  a.template,
		},
	}, nil
}
