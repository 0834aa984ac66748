// Package mutaterecord implements the mutate-record action kind.
package mutaterecord

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/dealflow/dealflow/pkg/connectors"
	"github.com/dealflow/dealflow/pkg/models"
	"github.com/dealflow/dealflow/pkg/protocol"
)

var ErrPropertyRequired = errors.New("property is required")

func NewFactory(mutator connectors.RecordMutator) protocol.ActionFactory {
	return &Factory{mutator: mutator}
}

type Factory struct {
	mutator connectors.RecordMutator
}

func (f *Factory) ID() string {
	return "mutate-record"
}

func (f *Factory) Name() string {
	return "Update record"
}

func (f *Factory) Description() string {
	return "Sets one property on a CRM record (deal or contact)"
}

func (f *Factory) Schema() map[string]any {
	return map[string]any{
		"type": "object",
		"properties": map[string]any{
			"entity": map[string]any{
				"type":        "string",
				"description": "Record type to mutate",
				"enum":        []any{"deal", "contact"},
				"default":     "deal",
			},
			"selector": map[string]any{
				"type":        "string",
				"description": "Record selector, usually a merge tag such as {{deal_id}}",
			},
			"property": map[string]any{
				"type":        "string",
				"description": "Property name to set",
			},
			"value": map[string]any{
				"type":        "string",
				"description": "New value, merge tags allowed",
			},
		},
		"required": []string{"property", "value"},
	}
}

func (f *Factory) Create(config map[string]any) (protocol.Action, error) {
	entity, _ := config["entity"].(string)
	if entity == "" {
		entity = "deal"
	}

	property, _ := config["property"].(string)
	if property == "" {
		return nil, ErrPropertyRequired
	}

	value, _ := config["value"].(string)
	selector, _ := config["selector"].(string)

	return &Action{
		mutator:  f.mutator,
		entity:   entity,
		selector: selector,
		property: property,
		value:    value,
	}, nil
}

type Action struct {
	mutator  connectors.RecordMutator
	entity   string
	selector string
	property string
	value    string
}

func (a *Action) Execute(ctx context.Context, _ models.RunContext, logger *slog.Logger) (protocol.StepOutcome, error) {
	logger = logger.With("action_kind", "mutate-record", "entity", a.entity)
	logger.Info("Updating record property", "property", a.property)

	receipt, err := a.mutator.SetProperty(ctx, a.entity, a.selector, a.property, a.value)
	if err != nil {
		return protocol.StepOutcome{}, fmt.Errorf("record mutation failed: %w", err)
	}

	return protocol.StepOutcome{
		Status: models.StepStatusSuccess,
		Payload: map[string]any{
			"updated":  receipt.Updated,
			"entity":   a.entity,
			"property": a.property,
			"value":    a.value,
		},
	}, nil
}
