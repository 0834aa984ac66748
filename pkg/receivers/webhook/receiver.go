// Package webhook exposes the signed inbound HTTP edge. Each workflow with a
// webhook trigger gets its own path; a delivery must carry an HMAC-SHA256
// signature computed with that workflow's shared secret.
package webhook

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/dealflow/dealflow/pkg/models"
	"github.com/dealflow/dealflow/pkg/persistence"
	"github.com/dealflow/dealflow/pkg/registry"
	"github.com/dealflow/dealflow/pkg/workflow"
)

// SignatureHeader carries "sha256=<hex>" over the raw request body.
const SignatureHeader = "X-Dealflow-Signature"

const maxBodyBytes = 1 << 20

// Runner starts one workflow run; satisfied by *workflow.Runner.
type Runner interface {
	Run(ctx context.Context, workflowID string, triggerData map[string]any) (*models.Execution, error)
}

type Receiver struct {
	persistence persistence.Persistence
	runner      Runner
	logger      *slog.Logger
	server      *http.Server
	port        int
}

func NewReceiver(logger *slog.Logger, persist persistence.Persistence, runner Runner, port int) *Receiver {
	return &Receiver{
		persistence: persist,
		runner:      runner,
		logger:      logger.With("module", "webhook_receiver"),
		port:        port,
	}
}

func (r *Receiver) Start(ctx context.Context) error {
	mux := http.NewServeMux()
	mux.HandleFunc("POST /hooks/{workflow_id}", r.handleDelivery)

	r.server = &http.Server{
		Addr:              fmt.Sprintf(":%d", r.port),
		Handler:           mux,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		if err := r.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			r.logger.ErrorContext(ctx, "Webhook server failed", "error", err)
		}
	}()

	r.logger.InfoContext(ctx, "Webhook receiver started", "port", r.port)

	return nil
}

func (r *Receiver) handleDelivery(w http.ResponseWriter, req *http.Request) {
	ctx := req.Context()
	workflowID := req.PathValue("workflow_id")

	wf, err := r.persistence.WorkflowByID(ctx, workflowID)
	if err != nil {
		if persistence.IsWorkflowNotFound(err) {
			http.Error(w, "workflow not found", http.StatusNotFound)
		} else {
			http.Error(w, "failed to load workflow", http.StatusInternalServerError)
		}

		return
	}

	if wf.TriggerKind != registry.TriggerWebhook {
		http.Error(w, "workflow is not webhook-triggered", http.StatusNotFound)

		return
	}

	body, err := io.ReadAll(io.LimitReader(req.Body, maxBodyBytes))
	if err != nil {
		http.Error(w, "failed to read request body", http.StatusBadRequest)

		return
	}

	secret, _ := wf.TriggerConfig["secret"].(string)
	if !verifySignature(secret, body, req.Header.Get(SignatureHeader)) {
		r.logger.WarnContext(ctx, "Rejected webhook delivery", "workflow_id", workflowID)
		http.Error(w, "invalid signature", http.StatusUnauthorized)

		return
	}

	payload := map[string]any{}
	if len(body) > 0 {
		if err := json.Unmarshal(body, &payload); err != nil {
			http.Error(w, "request body is not valid JSON", http.StatusBadRequest)

			return
		}
	}

	execution, err := r.runner.Run(ctx, workflowID, payload)
	if err != nil {
		if workflow.IsWorkflowInactive(err) {
			http.Error(w, "workflow is not active", http.StatusConflict)

			return
		}

		// the run failed but the execution record holds the diagnosis
		r.logger.ErrorContext(ctx, "Webhook-triggered run failed",
			"workflow_id", workflowID, "error", err)
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusAccepted)

	response := map[string]any{"workflow_id": workflowID}
	if execution != nil {
		response["execution_id"] = execution.ID
		response["status"] = execution.Status
	}

	_ = json.NewEncoder(w).Encode(response)
}

// verifySignature checks an HMAC-SHA256 "sha256=<hex>" header over body.
func verifySignature(secret string, body []byte, header string) bool {
	if secret == "" || header == "" {
		return false
	}

	provided, ok := strings.CutPrefix(header, "sha256=")
	if !ok {
		return false
	}

	providedMAC, err := hex.DecodeString(provided)
	if err != nil {
		return false
	}

	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write(body)

	return hmac.Equal(providedMAC, mac.Sum(nil))
}

func (r *Receiver) Stop(ctx context.Context) error {
	if r.server == nil {
		return nil
	}

	shutdownCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	if err := r.server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("failed to shut down webhook server: %w", err)
	}

	r.logger.InfoContext(ctx, "Webhook receiver stopped")

	return nil
}
