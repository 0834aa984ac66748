// Package logport provides logging placeholder implementations of the
// outbound collaborator ports. They stand in until the real CRM and messaging
// integrations are wired, acknowledging every call after logging it.
package logport

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/dealflow/dealflow/pkg/connectors"
)

type Sender struct {
	logger *slog.Logger
}

func NewSender(logger *slog.Logger) *Sender {
	return &Sender{logger: logger.With("module", "log_sender")}
}

func (s *Sender) Send(ctx context.Context, channel, recipient, template string) (connectors.SendReceipt, error) {
	s.logger.InfoContext(ctx, "Would send message",
		"channel", channel, "recipient", recipient, "template", template)

	return connectors.SendReceipt{Sent: true, ID: uuid.New().String()}, nil
}

type Mutator struct {
	logger *slog.Logger
}

func NewMutator(logger *slog.Logger) *Mutator {
	return &Mutator{logger: logger.With("module", "log_mutator")}
}

func (m *Mutator) SetProperty(ctx context.Context, entityType, selector, property, value string) (connectors.MutateReceipt, error) {
	m.logger.InfoContext(ctx, "Would set record property",
		"entity_type", entityType, "selector", selector, "property", property, "value", value)

	return connectors.MutateReceipt{Updated: true}, nil
}

type TaskCreator struct {
	logger *slog.Logger
}

func NewTaskCreator(logger *slog.Logger) *TaskCreator {
	return &TaskCreator{logger: logger.With("module", "log_task_creator")}
}

func (t *TaskCreator) CreateTask(ctx context.Context, title, assignee string, dueAt time.Time) (connectors.TaskReceipt, error) {
	t.logger.InfoContext(ctx, "Would create task",
		"title", title, "assignee", assignee, "due_at", dueAt)

	return connectors.TaskReceipt{Created: true, ID: uuid.New().String()}, nil
}

type Notifier struct {
	logger *slog.Logger
}

func NewNotifier(logger *slog.Logger) *Notifier {
	return &Notifier{logger: logger.With("module", "log_notifier")}
}

func (n *Notifier) Notify(ctx context.Context, channel, message string, recipients []string) (connectors.NotifyReceipt, error) {
	n.logger.InfoContext(ctx, "Would notify",
		"channel", channel, "message", message, "recipients", recipients)

	return connectors.NotifyReceipt{Notified: true}, nil
}
