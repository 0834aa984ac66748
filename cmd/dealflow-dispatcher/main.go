// Package main provides the dealflow dispatcher daemon: the inbound edges
// (scheduler, domain-event queue, webhooks) feeding the engine.
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	cli "github.com/urfave/cli/v3"

	"github.com/dealflow/dealflow/pkg/cmd"
	"github.com/dealflow/dealflow/pkg/config"
	"github.com/dealflow/dealflow/pkg/log"
	"github.com/dealflow/dealflow/pkg/receivers"
	"github.com/dealflow/dealflow/pkg/receivers/queue"
	"github.com/dealflow/dealflow/pkg/receivers/schedule"
	"github.com/dealflow/dealflow/pkg/receivers/webhook"
	"github.com/dealflow/dealflow/pkg/workflow"
)

func main() {
	logger := log.WithModule("dispatcher")

	command := &cli.Command{
		Name:                  "dealflow-dispatcher",
		Usage:                 "Run the inbound receivers against the workflow engine",
		EnableShellCompletion: true,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "config",
				Usage:   "Path to an optional dispatcher config file (YAML)",
				Sources: cli.EnvVars("CONFIG_FILE"),
			},
			&cli.StringFlag{
				Name:     "database-url",
				Usage:    "Database connection URL for persistence",
				Required: true,
				Sources:  cli.EnvVars("DATABASE_URL"),
			},
			&cli.StringFlag{
				Name:    "event-bus",
				Usage:   "Event bus provider (gochannel, kafka)",
				Value:   "gochannel",
				Sources: cli.EnvVars("EVENT_BUS"),
			},
			&cli.StringFlag{
				Name:    "redis-url",
				Usage:   "Redis URL for the domain-event queue and notifications",
				Sources: cli.EnvVars("REDIS_URL"),
			},
			&cli.StringFlag{
				Name:    "event-queue",
				Usage:   "Redis list the host system pushes domain events to",
				Value:   queue.DefaultQueue,
				Sources: cli.EnvVars("EVENT_QUEUE"),
			},
			&cli.IntFlag{
				Name:    "webhook-port",
				Usage:   "Port for the signed webhook endpoint",
				Value:   config.DefaultWebhookPort,
				Sources: cli.EnvVars("WEBHOOK_PORT"),
			},
			&cli.StringFlag{
				Name:    "log-level",
				Usage:   "Log level (debug, info, warn, error)",
				Value:   "info",
				Sources: cli.EnvVars("LOG_LEVEL"),
			},
		},
		Action: run,
	}

	if err := command.Run(context.Background(), os.Args); err != nil {
		logger.Error("Dispatcher exited with error", "error", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, command *cli.Command) error {
	log.Setup(command.String("log-level"))

	logger := log.WithModule("dispatcher")
	logger.InfoContext(ctx, "Initializing Dealflow dispatcher")

	persist, err := cmd.NewPersistence(ctx, logger, command.String("database-url"))
	if err != nil {
		return err
	}

	defer func() {
		if err := persist.Close(ctx); err != nil {
			logger.ErrorContext(ctx, "Failed to close persistence", "error", err)
		}
	}()

	eventBus, err := cmd.NewEventBus(command.String("event-bus"), logger)
	if err != nil {
		return err
	}

	defer func() {
		if err := eventBus.Close(); err != nil {
			logger.ErrorContext(ctx, "Failed to close event bus", "error", err)
		}
	}()

	redisURL := command.String("redis-url")

	_, actions, err := cmd.NewRegistries(logger, redisURL)
	if err != nil {
		return err
	}

	runner := workflow.NewRunner(logger, persist, actions, eventBus)
	dispatcher := workflow.NewDispatcher(logger, persist, runner, eventBus)

	cfg := config.Default()

	if path := command.String("config"); path != "" {
		cfg, err = config.LoadDispatcher(path)
		if err != nil {
			return err
		}
	}

	// Flags given explicitly win over the config file.
	if command.IsSet("webhook-port") {
		cfg.WebhookPort = command.Int("webhook-port")
	}

	if command.IsSet("event-queue") {
		cfg.EventQueue = command.String("event-queue")
	}

	var running []receivers.Receiver

	if cfg.Receivers.Schedule {
		running = append(running, schedule.NewReceiver(logger, persist, dispatcher))
	}

	if cfg.Receivers.Webhook {
		running = append(running, webhook.NewReceiver(logger, persist, runner, cfg.WebhookPort))
	}

	switch {
	case cfg.Receivers.Queue && redisURL != "":
		queueReceiver, err := queue.NewReceiver(logger, dispatcher, redisURL, cfg.EventQueue)
		if err != nil {
			return err
		}

		running = append(running, queueReceiver)

	case cfg.Receivers.Queue:
		logger.WarnContext(ctx, "No redis-url configured, domain-event queue disabled")
	}

	runCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	for _, receiver := range running {
		if err := receiver.Start(runCtx); err != nil {
			return err
		}
	}

	signals := make(chan os.Signal, 1)
	signal.Notify(signals, os.Interrupt, syscall.SIGTERM)
	<-signals

	logger.InfoContext(ctx, "Shutting down")
	cancel()

	for _, receiver := range running {
		if err := receiver.Stop(ctx); err != nil {
			logger.ErrorContext(ctx, "Failed to stop receiver", "error", err)
		}
	}

	return nil
}
