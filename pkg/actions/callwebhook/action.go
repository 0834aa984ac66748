// Package callwebhook implements the call-webhook action kind. The call is
// best effort: a network failure or non-2xx response is recorded in the step
// payload with ok=false instead of aborting the run.
package callwebhook

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	"github.com/dealflow/dealflow/pkg/connectors"
	"github.com/dealflow/dealflow/pkg/models"
	"github.com/dealflow/dealflow/pkg/protocol"
)

var ErrURLRequired = errors.New("url is required")

func NewFactory(caller connectors.HTTPCaller) protocol.ActionFactory {
	return &Factory{caller: caller}
}

type Factory struct {
	caller connectors.HTTPCaller
}

func (f *Factory) ID() string {
	return "call-webhook"
}

func (f *Factory) Name() string {
	return "Call webhook"
}

func (f *Factory) Description() string {
	return "Calls an external URL with the triggering event as JSON body"
}

func (f *Factory) Schema() map[string]any {
	return map[string]any{
		"type": "object",
		"properties": map[string]any{
			"url": map[string]any{
				"type":        "string",
				"description": "Target URL",
			},
			"method": map[string]any{
				"type":    "string",
				"enum":    []any{"GET", "POST", "PUT"},
				"default": "POST",
			},
			"headers": map[string]any{
				"type":        "object",
				"description": "Extra request headers",
			},
		},
		"required": []string{"url"},
	}
}

func (f *Factory) Create(config map[string]any) (protocol.Action, error) {
	url, _ := config["url"].(string)
	if url == "" {
		return nil, ErrURLRequired
	}

	method, _ := config["method"].(string)
	if method == "" {
		method = "POST"
	}

	headers := make(map[string]string)
	if headersConfig, ok := config["headers"].(map[string]any); ok {
		for key, value := range headersConfig {
			if s, ok := value.(string); ok {
				headers[key] = s
			}
		}
	}

	return &Action{
		caller:  f.caller,
		url:     url,
		method:  strings.ToUpper(method),
		headers: headers,
	}, nil
}

type Action struct {
	caller  connectors.HTTPCaller
	url     string
	method  string
	headers map[string]string
}

func (a *Action) Execute(ctx context.Context, runCtx models.RunContext, logger *slog.Logger) (protocol.StepOutcome, error) {
	logger = logger.With("action_kind", "call-webhook", "url", a.url, "method", a.method)
	logger.Info("Calling webhook")

	result, err := a.caller.Call(ctx, a.url, a.method, a.headers, runCtx.TriggerData)
	if err != nil {
		logger.Warn("Webhook call failed", "error", err)

		return protocol.StepOutcome{
			Status: models.StepStatusSuccess,
			Payload: map[string]any{
				"called": false,
				"ok":     false,
				"url":    a.url,
				"error":  err.Error(),
			},
		}, nil
	}

	return protocol.StepOutcome{
		Status: models.StepStatusSuccess,
		Payload: map[string]any{
			"called": true,
			"ok":     result.OK,
			"status": result.Status,
			"url":    a.url,
		},
	}, nil
}
