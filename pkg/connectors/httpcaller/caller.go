// Package httpcaller implements the HTTPCaller collaborator on net/http.
package httpcaller

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/dealflow/dealflow/pkg/connectors"
)

const defaultTimeout = 30 * time.Second

type Caller struct {
	client  *http.Client
	timeout time.Duration
}

func New() *Caller {
	return NewWithTimeout(defaultTimeout)
}

// NewWithTimeout bounds every call so one slow endpoint cannot stall the
// execution path that invoked it.
func NewWithTimeout(timeout time.Duration) *Caller {
	return &Caller{
		client:  &http.Client{},
		timeout: timeout,
	}
}

func (c *Caller) Call(ctx context.Context, url, method string, headers map[string]string, body any) (connectors.CallResult, error) {
	reqCtx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	method = strings.ToUpper(method)
	if method == "" {
		method = http.MethodPost
	}

	var bodyReader io.Reader

	if body != nil && method != http.MethodGet {
		payload, err := json.Marshal(body)
		if err != nil {
			return connectors.CallResult{}, fmt.Errorf("failed to encode request body: %w", err)
		}

		bodyReader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(reqCtx, method, url, bodyReader)
	if err != nil {
		return connectors.CallResult{}, fmt.Errorf("failed to create http request: %w", err)
	}

	req.Header.Set("Content-Type", "application/json")

	for key, value := range headers {
		req.Header.Set(key, value)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return connectors.CallResult{}, fmt.Errorf("http request failed: %w", err)
	}
	defer resp.Body.Close()

	// Drain so the connection can be reused.
	_, _ = io.Copy(io.Discard, resp.Body)

	return connectors.CallResult{
		Status: resp.StatusCode,
		OK:     resp.StatusCode >= 200 && resp.StatusCode < 300,
	}, nil
}
