// Package createtask implements the create-task action kind.
package createtask

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/dealflow/dealflow/pkg/connectors"
	"github.com/dealflow/dealflow/pkg/models"
	"github.com/dealflow/dealflow/pkg/protocol"
)

var ErrTitleRequired = errors.New("title is required")

const defaultDueInDays = 1

func NewFactory(creator connectors.TaskCreator) protocol.ActionFactory {
	return &Factory{creator: creator}
}

type Factory struct {
	creator connectors.TaskCreator
}

func (f *Factory) ID() string {
	return "create-task"
}

func (f *Factory) Name() string {
	return "Create task"
}

func (f *Factory) Description() string {
	return "Creates a follow-up task with an assignee and a due date"
}

func (f *Factory) Schema() map[string]any {
	return map[string]any{
		"type": "object",
		"properties": map[string]any{
			"title": map[string]any{
				"type":        "string",
				"description": "Task title, merge tags allowed",
			},
			"assignee": map[string]any{
				"type":        "string",
				"description": "User the task is assigned to",
			},
			"due_in_days": map[string]any{
				"type":        "number",
				"description": "Days from now until the task is due",
				"default":     defaultDueInDays,
			},
		},
		"required": []string{"title"},
	}
}

func (f *Factory) Create(config map[string]any) (protocol.Action, error) {
	title, _ := config["title"].(string)
	if title == "" {
		return nil, ErrTitleRequired
	}

	assignee, _ := config["assignee"].(string)

	dueInDays := defaultDueInDays
	if raw, ok := config["due_in_days"]; ok {
		switch v := raw.(type) {
		case float64:
			dueInDays = int(v)
		case int:
			dueInDays = v
		}
	}

	return &Action{
		creator:   f.creator,
		title:     title,
		assignee:  assignee,
		dueInDays: dueInDays,
	}, nil
}

type Action struct {
	creator   connectors.TaskCreator
	title     string
	assignee  string
	dueInDays int
}

func (a *Action) Execute(ctx context.Context, _ models.RunContext, logger *slog.Logger) (protocol.StepOutcome, error) {
	logger = logger.With("action_kind", "create-task")

	dueAt := time.Now().UTC().AddDate(0, 0, a.dueInDays)

	logger.Info("Creating task", "title", a.title, "due_at", dueAt)

	receipt, err := a.creator.CreateTask(ctx, a.title, a.assignee, dueAt)
	if err != nil {
		return protocol.StepOutcome{}, fmt.Errorf("task creation failed: %w", err)
	}

	return protocol.StepOutcome{
		Status: models.StepStatusSuccess,
		Payload: map[string]any{
			"created":  receipt.Created,
			"id":       receipt.ID,
			"title":    a.title,
			"assignee": a.assignee,
			"due_at":   dueAt.Format(time.RFC3339),
		},
	}, nil
}
