// Package branchif implements the branch-if action kind, the only kind that
// can halt a run: a false condition stops the remaining steps and the
// execution finalizes as completed.
package branchif

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"strings"

	"github.com/dealflow/dealflow/pkg/models"
	"github.com/dealflow/dealflow/pkg/protocol"
	"github.com/dealflow/dealflow/pkg/template"
)

var (
	ErrFieldRequired   = errors.New("field is required")
	ErrUnknownOperator = errors.New("unknown operator")
)

const (
	OperatorEquals      = "equals"
	OperatorNotEquals   = "not-equals"
	OperatorContains    = "contains"
	OperatorGreaterThan = "greater-than"
	OperatorLessThan    = "less-than"
)

func NewFactory() protocol.ActionFactory {
	return &Factory{}
}

type Factory struct{}

func (f *Factory) ID() string {
	return "branch-if"
}

func (f *Factory) Name() string {
	return "Condition"
}

func (f *Factory) Description() string {
	return "Continues the run only when the event field satisfies the condition"
}

func (f *Factory) Schema() map[string]any {
	return map[string]any{
		"type": "object",
		"properties": map[string]any{
			"field": map[string]any{
				"type":        "string",
				"description": "Event data field to test",
			},
			"operator": map[string]any{
				"type":    "string",
				"enum":    []any{OperatorEquals, OperatorNotEquals, OperatorContains, OperatorGreaterThan, OperatorLessThan},
				"default": OperatorEquals,
			},
			"value": map[string]any{
				"type":        []any{"string", "number"},
				"description": "Comparison value",
			},
		},
		"required": []string{"field", "value"},
	}
}

func (f *Factory) Create(config map[string]any) (protocol.Action, error) {
	field, _ := config["field"].(string)
	if field == "" {
		return nil, ErrFieldRequired
	}

	operator, _ := config["operator"].(string)
	if operator == "" {
		operator = OperatorEquals
	}

	switch operator {
	case OperatorEquals, OperatorNotEquals, OperatorContains, OperatorGreaterThan, OperatorLessThan:
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownOperator, operator)
	}

	value := template.Stringify(config["value"])

	return &Action{field: field, operator: operator, value: value}, nil
}

type Action struct {
	field    string
	operator string
	value    string
}

func (a *Action) Execute(_ context.Context, runCtx models.RunContext, logger *slog.Logger) (protocol.StepOutcome, error) {
	fieldValue := runCtx.TriggerData[a.field]

	passed, err := evaluate(a.operator, fieldValue, a.value)
	if err != nil {
		return protocol.StepOutcome{}, err
	}

	status := models.StepStatusSuccess
	if !passed {
		status = models.StepStatusConditionFalse
	}

	logger.Info("Evaluated condition",
		"action_kind", "branch-if",
		"field", a.field,
		"operator", a.operator,
		"passed", passed)

	return protocol.StepOutcome{
		Status: status,
		Payload: map[string]any{
			"passed":   passed,
			"field":    a.field,
			"operator": a.operator,
			"value":    a.value,
		},
	}, nil
}

func evaluate(operator string, fieldValue any, comparison string) (bool, error) {
	switch operator {
	case OperatorEquals:
		return template.Stringify(fieldValue) == comparison, nil
	case OperatorNotEquals:
		return template.Stringify(fieldValue) != comparison, nil
	case OperatorContains:
		return strings.Contains(template.Stringify(fieldValue), comparison), nil
	case OperatorGreaterThan, OperatorLessThan:
		left, err := toNumber(fieldValue)
		if err != nil {
			return false, err
		}

		right, err := strconv.ParseFloat(comparison, 64)
		if err != nil {
			return false, fmt.Errorf("comparison value %q is not numeric: %w", comparison, err)
		}

		if operator == OperatorGreaterThan {
			return left > right, nil
		}

		return left < right, nil
	default:
		return false, fmt.Errorf("%w: %q", ErrUnknownOperator, operator)
	}
}

func toNumber(value any) (float64, error) {
	switch v := value.(type) {
	case float64:
		return v, nil
	case int:
		return float64(v), nil
	case int64:
		return float64(v), nil
	case string:
		parsed, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return 0, fmt.Errorf("field value %q is not numeric: %w", v, err)
		}

		return parsed, nil
	case nil:
		return 0, errors.New("field value is missing")
	default:
		return 0, fmt.Errorf("field value of type %T is not numeric", value)
	}
}
