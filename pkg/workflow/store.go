// Package workflow contains the engine core: the store guarding workflow
// definitions, the runner executing them, and the dispatcher fanning events
// out to matching workflows.
package workflow

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"github.com/dealflow/dealflow/pkg/models"
	"github.com/dealflow/dealflow/pkg/persistence"
	"github.com/dealflow/dealflow/pkg/registry"
)

// Store is the only writer of workflow and step definitions. Every mutation
// passes registry validation first, so an unknown kind or a bad config never
// reaches execution.
type Store struct {
	persistence persistence.Persistence
	triggers    *registry.Registry
	actions     *registry.ActionRegistry
	validator   *validator.Validate
	logger      *slog.Logger
}

func NewStore(
	logger *slog.Logger,
	persist persistence.Persistence,
	triggers *registry.Registry,
	actions *registry.ActionRegistry,
) *Store {
	return &Store{
		persistence: persist,
		triggers:    triggers,
		actions:     actions,
		validator:   validator.New(),
		logger:      logger.With("module", "workflow_store"),
	}
}

func (s *Store) Workflows(ctx context.Context, activeOnly bool) ([]*models.Workflow, error) {
	return s.persistence.Workflows(ctx, activeOnly)
}

func (s *Store) WorkflowByID(ctx context.Context, id string) (*models.Workflow, error) {
	return s.persistence.WorkflowByID(ctx, id)
}

// CreateWorkflow validates and persists a new workflow. Workflows start out
// inactive regardless of the submitted flag; activation is a separate,
// deliberate update.
func (s *Store) CreateWorkflow(ctx context.Context, workflow *models.Workflow) (*models.Workflow, error) {
	if err := s.validator.Struct(workflow); err != nil {
		return nil, fmt.Errorf("invalid workflow: %w", err)
	}

	if err := s.triggers.Validate(workflow.TriggerKind, workflow.TriggerConfig); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidTrigger, err)
	}

	if workflow.ID == "" {
		workflow.ID = uuid.New().String()
	}

	workflow.Active = false
	workflow.RunCount = 0
	workflow.LastRunAt = nil

	if err := s.persistence.SaveWorkflow(ctx, workflow); err != nil {
		return nil, err
	}

	s.logger.InfoContext(ctx, "Created workflow",
		"workflow_id", workflow.ID, "trigger_kind", workflow.TriggerKind)

	return workflow, nil
}

// UpdateWorkflow replaces the definition fields of an existing workflow while
// preserving its run counters and creation time.
func (s *Store) UpdateWorkflow(ctx context.Context, id string, workflow *models.Workflow) (*models.Workflow, error) {
	existing, err := s.persistence.WorkflowByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if err := s.validator.Struct(workflow); err != nil {
		return nil, fmt.Errorf("invalid workflow: %w", err)
	}

	if err := s.triggers.Validate(workflow.TriggerKind, workflow.TriggerConfig); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidTrigger, err)
	}

	workflow.ID = id
	workflow.CreatedAt = existing.CreatedAt
	workflow.RunCount = existing.RunCount
	workflow.LastRunAt = existing.LastRunAt

	if err := s.persistence.SaveWorkflow(ctx, workflow); err != nil {
		return nil, err
	}

	return workflow, nil
}

func (s *Store) DeleteWorkflow(ctx context.Context, id string) error {
	if err := s.persistence.DeleteWorkflow(ctx, id); err != nil {
		return err
	}

	s.logger.InfoContext(ctx, "Deleted workflow", "workflow_id", id)

	return nil
}

func (s *Store) StepsByWorkflow(ctx context.Context, workflowID string) ([]*models.ActionStep, error) {
	if _, err := s.persistence.WorkflowByID(ctx, workflowID); err != nil {
		return nil, err
	}

	return s.persistence.StepsByWorkflow(ctx, workflowID)
}

// AddStep validates and appends a step to a workflow. A zero Order places the
// step at the end of the current sequence.
func (s *Store) AddStep(ctx context.Context, step *models.ActionStep) (*models.ActionStep, error) {
	if _, err := s.persistence.WorkflowByID(ctx, step.WorkflowID); err != nil {
		return nil, err
	}

	if err := s.validator.Struct(step); err != nil {
		return nil, fmt.Errorf("invalid step: %w", err)
	}

	if err := s.actions.Validate(step.Kind, step.Config); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidAction, err)
	}

	if step.ID == "" {
		step.ID = uuid.New().String()
	}

	if step.Order == 0 {
		order, err := s.nextOrder(ctx, step.WorkflowID)
		if err != nil {
			return nil, err
		}

		step.Order = order
	}

	step.Active = true

	if err := s.persistence.SaveStep(ctx, step); err != nil {
		return nil, err
	}

	s.logger.InfoContext(ctx, "Added step",
		"workflow_id", step.WorkflowID, "step_id", step.ID, "kind", step.Kind, "order", step.Order)

	return step, nil
}

// UpdateStep rewrites a step's config, order or active flag in place.
func (s *Store) UpdateStep(ctx context.Context, id string, step *models.ActionStep) (*models.ActionStep, error) {
	existing, err := s.persistence.StepByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if err := s.actions.Validate(step.Kind, step.Config); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidAction, err)
	}

	step.ID = id
	step.WorkflowID = existing.WorkflowID
	step.CreatedAt = existing.CreatedAt

	if step.Order == 0 {
		step.Order = existing.Order
	}

	if err := s.persistence.SaveStep(ctx, step); err != nil {
		return nil, err
	}

	return step, nil
}

func (s *Store) StepByID(ctx context.Context, id string) (*models.ActionStep, error) {
	return s.persistence.StepByID(ctx, id)
}

func (s *Store) DeleteStep(ctx context.Context, id string) error {
	return s.persistence.DeleteStep(ctx, id)
}

func (s *Store) nextOrder(ctx context.Context, workflowID string) (int, error) {
	steps, err := s.persistence.StepsByWorkflow(ctx, workflowID)
	if err != nil {
		return 0, err
	}

	max := 0
	for _, existing := range steps {
		if existing.Order > max {
			max = existing.Order
		}
	}

	return max + 1, nil
}
