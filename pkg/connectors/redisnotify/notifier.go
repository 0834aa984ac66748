// Package redisnotify implements the Notifier collaborator on Redis pub/sub,
// where the dashboard and chat bridges subscribe for team notifications.
package redisnotify

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	redis "github.com/redis/go-redis/v9"

	"github.com/dealflow/dealflow/pkg/connectors"
)

const publishTimeout = 5 * time.Second

type Notifier struct {
	client redis.UniversalClient
	logger *slog.Logger
}

func New(redisURL string, logger *slog.Logger) (*Notifier, error) {
	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("invalid redis url: %w", err)
	}

	return &Notifier{
		client: redis.NewClient(opts),
		logger: logger.With("module", "redis_notifier"),
	}, nil
}

// NewWithClient wires an existing client, used by tests.
func NewWithClient(client redis.UniversalClient, logger *slog.Logger) *Notifier {
	return &Notifier{client: client, logger: logger.With("module", "redis_notifier")}
}

type envelope struct {
	Channel    string    `json:"channel"`
	Message    string    `json:"message"`
	Recipients []string  `json:"recipients,omitempty"`
	SentAt     time.Time `json:"sent_at"`
}

func (n *Notifier) Notify(ctx context.Context, channel, message string, recipients []string) (connectors.NotifyReceipt, error) {
	publishCtx, cancel := context.WithTimeout(ctx, publishTimeout)
	defer cancel()

	payload, err := json.Marshal(envelope{
		Channel:    channel,
		Message:    message,
		Recipients: recipients,
		SentAt:     time.Now().UTC(),
	})
	if err != nil {
		return connectors.NotifyReceipt{}, fmt.Errorf("failed to encode notification: %w", err)
	}

	err = n.client.Publish(publishCtx, "dealflow.notifications."+channel, payload).Err()
	if err != nil {
		return connectors.NotifyReceipt{}, fmt.Errorf("failed to publish notification: %w", err)
	}

	n.logger.Debug("Published notification", "channel", channel, "recipients", len(recipients))

	return connectors.NotifyReceipt{Notified: true}, nil
}

func (n *Notifier) Close() error {
	return n.client.Close()
}
