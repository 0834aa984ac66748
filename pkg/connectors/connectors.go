// Package connectors declares the outbound collaborator ports the action
// handlers delegate to. Implementations are injected where the factories are
// wired; the engine treats them as black-box side effects.
package connectors

import (
	"context"
	"time"
)

type SendReceipt struct {
	Sent bool   `json:"sent"`
	ID   string `json:"id,omitempty"`
}

// MessageSender delivers a templated message over a channel (email, whatsapp,
// slack) to one recipient.
type MessageSender interface {
	Send(ctx context.Context, channel, recipient, template string) (SendReceipt, error)
}

type MutateReceipt struct {
	Updated bool `json:"updated"`
}

// RecordMutator sets one property on a CRM record selected by type and selector.
type RecordMutator interface {
	SetProperty(ctx context.Context, entityType, selector, property, value string) (MutateReceipt, error)
}

type TaskReceipt struct {
	Created bool   `json:"created"`
	ID      string `json:"id,omitempty"`
}

type TaskCreator interface {
	CreateTask(ctx context.Context, title, assignee string, dueAt time.Time) (TaskReceipt, error)
}

type CallResult struct {
	Status int  `json:"status"`
	OK     bool `json:"ok"`
}

// HTTPCaller performs an outbound HTTP request with a bounded timeout.
type HTTPCaller interface {
	Call(ctx context.Context, url, method string, headers map[string]string, body any) (CallResult, error)
}

type NotifyReceipt struct {
	Notified bool `json:"notified"`
}

// Notifier pushes an internal notification to a team channel.
type Notifier interface {
	Notify(ctx context.Context, channel, message string, recipients []string) (NotifyReceipt, error)
}
