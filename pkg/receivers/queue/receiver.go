// Package queue consumes domain events from a Redis list and hands them to
// the dispatcher. Producers push envelopes of the form
// {"kind":"deal-created","data":{...}}.
package queue

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	redis "github.com/redis/go-redis/v9"

	"github.com/dealflow/dealflow/pkg/receivers"
)

const DefaultQueue = "dealflow.domain-events"

type envelope struct {
	Kind string         `json:"kind"`
	Data map[string]any `json:"data"`
}

type Receiver struct {
	dispatcher receivers.Dispatcher
	logger     *slog.Logger
	queue      string

	client *redis.Client
	stopCh chan struct{}
	wg     sync.WaitGroup
}

func NewReceiver(logger *slog.Logger, dispatcher receivers.Dispatcher, redisURL, queue string) (*Receiver, error) {
	options, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("invalid redis url: %w", err)
	}

	if queue == "" {
		queue = DefaultQueue
	}

	return &Receiver{
		dispatcher: dispatcher,
		queue:      queue,
		client:     redis.NewClient(options),
		stopCh:     make(chan struct{}),
		logger:     logger.With("module", "queue_receiver", "queue", queue),
	}, nil
}

func (r *Receiver) Start(ctx context.Context) error {
	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if err := r.client.Ping(pingCtx).Err(); err != nil {
		return fmt.Errorf("failed to connect to Redis: %w", err)
	}

	r.wg.Add(1)

	go r.consume(ctx)

	r.logger.InfoContext(ctx, "Queue receiver started")

	return nil
}

func (r *Receiver) consume(ctx context.Context) {
	defer r.wg.Done()

	for {
		select {
		case <-r.stopCh:
			return
		case <-ctx.Done():
			return
		default:
			if err := r.processMessage(ctx); err != nil {
				r.logger.ErrorContext(ctx, "Error processing message", "error", err)
				time.Sleep(1 * time.Second)
			}
		}
	}
}

func (r *Receiver) processMessage(ctx context.Context) error {
	result, err := r.client.BLPop(ctx, 1*time.Second, r.queue).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) || errors.Is(err, context.Canceled) {
			return nil
		}

		return fmt.Errorf("failed to pop message from queue: %w", err)
	}

	if len(result) < 2 {
		return nil
	}

	var env envelope
	if err := json.Unmarshal([]byte(result[1]), &env); err != nil {
		return fmt.Errorf("malformed event envelope: %w", err)
	}

	if env.Kind == "" {
		return errors.New("event envelope missing kind")
	}

	executions, err := r.dispatcher.Dispatch(ctx, env.Kind, env.Data)
	if err != nil {
		return fmt.Errorf("failed to dispatch %s: %w", env.Kind, err)
	}

	r.logger.InfoContext(ctx, "Dispatched queued event",
		"event_kind", env.Kind, "executions", len(executions))

	return nil
}

func (r *Receiver) Stop(ctx context.Context) error {
	close(r.stopCh)
	r.wg.Wait()

	if err := r.client.Close(); err != nil {
		r.logger.ErrorContext(ctx, "Error closing Redis client", "error", err)
	}

	r.logger.InfoContext(ctx, "Queue receiver stopped")

	return nil
}
