// Package main provides the dealflow API server.
package main

import (
	"log/slog"
	"strconv"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v3"
	"github.com/gofiber/fiber/v3/middleware/cors"
	"github.com/gofiber/fiber/v3/middleware/healthcheck"
	"github.com/gofiber/fiber/v3/middleware/logger"

	"github.com/dealflow/dealflow/pkg/eventbus"
	"github.com/dealflow/dealflow/pkg/persistence"
	"github.com/dealflow/dealflow/pkg/registry"
	"github.com/dealflow/dealflow/pkg/web"
	"github.com/dealflow/dealflow/pkg/workflow"
)

type API struct {
	logger      *slog.Logger
	persistence persistence.Persistence
	triggers    *registry.Registry
	actions     *registry.ActionRegistry
	eventBus    eventbus.EventBus
	validate    *validator.Validate
}

func NewAPI(
	log *slog.Logger,
	persist persistence.Persistence,
	triggers *registry.Registry,
	actions *registry.ActionRegistry,
	bus eventbus.EventBus,
) *API {
	return &API{
		logger:      log,
		persistence: persist,
		triggers:    triggers,
		actions:     actions,
		eventBus:    bus,
		validate:    validator.New(validator.WithRequiredStructEnabled()),
	}
}

func (a *API) App() *fiber.App {
	store := workflow.NewStore(a.logger, a.persistence, a.triggers, a.actions)
	runner := workflow.NewRunner(a.logger, a.persistence, a.actions, a.eventBus)
	dispatcher := workflow.NewDispatcher(a.logger, a.persistence, runner, a.eventBus)
	stats := workflow.NewStatsService(a.persistence)

	handlers := web.NewAPIHandlers(store, runner, dispatcher, stats,
		a.triggers, a.actions, a.persistence, a.validate)

	app := fiber.New()
	app.Use(cors.New())
	app.Use(logger.New(logger.Config{
		DisableColors: true,
	}))

	app.Get(healthcheck.DefaultLivenessEndpoint, healthcheck.NewHealthChecker())
	app.Get(healthcheck.DefaultReadinessEndpoint, healthcheck.NewHealthChecker())

	app.Get("/", func(c fiber.Ctx) error {
		return c.SendString("Dealflow API")
	})

	w := app.Group("/workflows")
	w.Get("/", handlers.GetWorkflows)
	w.Post("/", handlers.CreateWorkflow)
	w.Get("/:id", handlers.GetWorkflow)
	w.Patch("/:id", handlers.UpdateWorkflow)
	w.Delete("/:id", handlers.DeleteWorkflow)
	w.Post("/:id/run", handlers.RunWorkflow)

	w.Get("/:id/steps", handlers.GetSteps)
	w.Post("/:id/steps", handlers.CreateStep)
	w.Patch("/:id/steps/:stepId", handlers.UpdateStep)
	w.Delete("/:id/steps/:stepId", handlers.DeleteStep)

	app.Post("/events", handlers.DispatchEvent)

	app.Get("/executions", handlers.GetExecutions)
	app.Get("/executions/:id", handlers.GetExecution)

	app.Get("/stats", handlers.GetStats)
	app.Get("/triggers", handlers.GetTriggers)
	app.Get("/actions", handlers.GetActions)

	app.Get("/health", handlers.HealthCheck)

	return app
}

func (a *API) Start(port int) error {
	return a.App().Listen(":" + strconv.Itoa(port))
}
