package web

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v3"

	"github.com/dealflow/dealflow/pkg/models"
	"github.com/dealflow/dealflow/pkg/persistence"
	"github.com/dealflow/dealflow/pkg/registry"
	"github.com/dealflow/dealflow/pkg/workflow"
)

// APIHandlers exposes the engine over REST: workflow and step CRUD, manual
// runs, event dispatch, execution history, stats and the kind catalogs.
type APIHandlers struct {
	store       *workflow.Store
	runner      *workflow.Runner
	dispatcher  *workflow.Dispatcher
	stats       *workflow.StatsService
	triggers    *registry.Registry
	actions     *registry.ActionRegistry
	persistence persistence.Persistence
	validator   *validator.Validate
}

func NewAPIHandlers(
	store *workflow.Store,
	runner *workflow.Runner,
	dispatcher *workflow.Dispatcher,
	stats *workflow.StatsService,
	triggers *registry.Registry,
	actions *registry.ActionRegistry,
	persist persistence.Persistence,
	validate *validator.Validate,
) *APIHandlers {
	return &APIHandlers{
		store:       store,
		runner:      runner,
		dispatcher:  dispatcher,
		stats:       stats,
		triggers:    triggers,
		actions:     actions,
		persistence: persist,
		validator:   validate,
	}
}

func (h *APIHandlers) GetWorkflows(c fiber.Ctx) error {
	activeOnly := false

	if activeStr := c.Query("active"); activeStr != "" {
		parsed, err := strconv.ParseBool(activeStr)
		if err != nil {
			return badRequest(c, "invalid active filter: "+activeStr)
		}

		activeOnly = parsed
	}

	workflows, err := h.store.Workflows(c.Context(), activeOnly)
	if err != nil {
		return internalError(c, err)
	}

	return c.JSON(fiber.Map{
		"workflows": workflows,
		"count":     len(workflows),
	})
}

func (h *APIHandlers) CreateWorkflow(c fiber.Ctx) error {
	var req CreateWorkflowRequest
	if err := c.Bind().JSON(&req); err != nil {
		return badRequest(c, "invalid JSON body")
	}

	if err := h.validator.Struct(req); err != nil {
		return badRequest(c, err.Error())
	}

	created, err := h.store.CreateWorkflow(c.Context(), &models.Workflow{
		Name:          req.Name,
		Description:   req.Description,
		TriggerKind:   req.TriggerKind,
		TriggerConfig: req.TriggerConfig,
	})
	if err != nil {
		return handleEngineError(c, err)
	}

	return c.Status(fiber.StatusCreated).JSON(created)
}

func (h *APIHandlers) GetWorkflow(c fiber.Ctx) error {
	wf, err := h.store.WorkflowByID(c.Context(), c.Params("id"))
	if err != nil {
		return handleEngineError(c, err)
	}

	return c.JSON(wf)
}

func (h *APIHandlers) UpdateWorkflow(c fiber.Ctx) error {
	id := c.Params("id")

	var req UpdateWorkflowRequest
	if err := c.Bind().JSON(&req); err != nil {
		return badRequest(c, "invalid JSON body")
	}

	if err := h.validator.Struct(req); err != nil {
		return badRequest(c, err.Error())
	}

	existing, err := h.store.WorkflowByID(c.Context(), id)
	if err != nil {
		return handleEngineError(c, err)
	}

	if req.Name != nil {
		existing.Name = *req.Name
	}

	if req.Description != nil {
		existing.Description = *req.Description
	}

	if req.TriggerKind != nil {
		existing.TriggerKind = *req.TriggerKind
	}

	if req.TriggerConfig != nil {
		existing.TriggerConfig = req.TriggerConfig
	}

	if req.Active != nil {
		existing.Active = *req.Active
	}

	updated, err := h.store.UpdateWorkflow(c.Context(), id, existing)
	if err != nil {
		return handleEngineError(c, err)
	}

	return c.JSON(updated)
}

func (h *APIHandlers) DeleteWorkflow(c fiber.Ctx) error {
	if err := h.store.DeleteWorkflow(c.Context(), c.Params("id")); err != nil {
		return handleEngineError(c, err)
	}

	return c.SendStatus(fiber.StatusNoContent)
}

func (h *APIHandlers) GetSteps(c fiber.Ctx) error {
	steps, err := h.store.StepsByWorkflow(c.Context(), c.Params("id"))
	if err != nil {
		return handleEngineError(c, err)
	}

	return c.JSON(fiber.Map{"steps": steps})
}

func (h *APIHandlers) CreateStep(c fiber.Ctx) error {
	var req CreateStepRequest
	if err := c.Bind().JSON(&req); err != nil {
		return badRequest(c, "invalid JSON body")
	}

	if err := h.validator.Struct(req); err != nil {
		return badRequest(c, err.Error())
	}

	created, err := h.store.AddStep(c.Context(), &models.ActionStep{
		WorkflowID: c.Params("id"),
		Kind:       req.Kind,
		Config:     req.Config,
		Order:      req.Order,
	})
	if err != nil {
		return handleEngineError(c, err)
	}

	return c.Status(fiber.StatusCreated).JSON(created)
}

func (h *APIHandlers) UpdateStep(c fiber.Ctx) error {
	stepID := c.Params("stepId")

	var req UpdateStepRequest
	if err := c.Bind().JSON(&req); err != nil {
		return badRequest(c, "invalid JSON body")
	}

	existing, err := h.store.StepByID(c.Context(), stepID)
	if err != nil {
		return handleEngineError(c, err)
	}

	if req.Kind != nil {
		existing.Kind = *req.Kind
	}

	if req.Config != nil {
		existing.Config = req.Config
	}

	if req.Order != nil {
		existing.Order = *req.Order
	}

	if req.Active != nil {
		existing.Active = *req.Active
	}

	updated, err := h.store.UpdateStep(c.Context(), stepID, existing)
	if err != nil {
		return handleEngineError(c, err)
	}

	return c.JSON(updated)
}

func (h *APIHandlers) DeleteStep(c fiber.Ctx) error {
	if err := h.store.DeleteStep(c.Context(), c.Params("stepId")); err != nil {
		return handleEngineError(c, err)
	}

	return c.SendStatus(fiber.StatusNoContent)
}

// RunWorkflow starts one execution immediately, bypassing dispatch matching.
func (h *APIHandlers) RunWorkflow(c fiber.Ctx) error {
	var req RunWorkflowRequest
	if len(c.Body()) > 0 {
		if err := c.Bind().JSON(&req); err != nil {
			return badRequest(c, "invalid JSON body")
		}
	}

	execution, err := h.runner.Run(c.Context(), c.Params("id"), req.TriggerData)
	if err != nil && execution == nil {
		return handleEngineError(c, err)
	}

	// a failed run still yields an inspectable execution record
	return c.Status(fiber.StatusCreated).JSON(execution)
}

// DispatchEvent reports a domain event and returns the executions it started.
func (h *APIHandlers) DispatchEvent(c fiber.Ctx) error {
	var req DispatchEventRequest
	if err := c.Bind().JSON(&req); err != nil {
		return badRequest(c, "invalid JSON body")
	}

	if err := h.validator.Struct(req); err != nil {
		return badRequest(c, err.Error())
	}

	executions, err := h.dispatcher.Dispatch(c.Context(), req.Kind, req.Data)
	if err != nil {
		return internalError(c, err)
	}

	return c.JSON(fiber.Map{
		"event_kind": req.Kind,
		"executions": executions,
	})
}

func (h *APIHandlers) GetExecutions(c fiber.Ctx) error {
	limit := 0

	if limitStr := c.Query("limit"); limitStr != "" {
		parsed, err := strconv.Atoi(limitStr)
		if err != nil || parsed < 0 {
			return badRequest(c, "invalid limit: "+limitStr)
		}

		limit = parsed
	}

	executions, err := h.stats.Executions(c.Context(), c.Query("workflow_id"), limit)
	if err != nil {
		return internalError(c, err)
	}

	return c.JSON(fiber.Map{"executions": executions})
}

func (h *APIHandlers) GetExecution(c fiber.Ctx) error {
	execution, err := h.stats.ExecutionByID(c.Context(), c.Params("id"))
	if err != nil {
		return handleEngineError(c, err)
	}

	return c.JSON(execution)
}

func (h *APIHandlers) GetStats(c fiber.Ctx) error {
	stats, err := h.stats.Overview(c.Context())
	if err != nil {
		return internalError(c, err)
	}

	return c.JSON(stats)
}

// GetTriggers lists the trigger kind catalog with config schemas.
func (h *APIHandlers) GetTriggers(c fiber.Ctx) error {
	return c.JSON(fiber.Map{"triggers": h.triggers.Components()})
}

// GetActions lists the action kind catalog with config schemas.
func (h *APIHandlers) GetActions(c fiber.Ctx) error {
	return c.JSON(fiber.Map{"actions": h.actions.Components()})
}

func (h *APIHandlers) HealthCheck(c fiber.Ctx) error {
	status := "healthy"
	httpStatus := http.StatusOK

	if err := h.persistence.HealthCheck(c.Context()); err != nil {
		status = "unhealthy"
		httpStatus = http.StatusInternalServerError
	}

	return c.Status(httpStatus).JSON(fiber.Map{
		"status":    status,
		"timestamp": time.Now().UTC(),
	})
}
