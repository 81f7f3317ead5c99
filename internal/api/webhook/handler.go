package webhook

import (
	"context"
	"errors"
	"io"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/nftpulse/notifier/internal/adapter"
	"github.com/nftpulse/notifier/internal/domain"
	"github.com/nftpulse/notifier/internal/logger"
	"github.com/nftpulse/notifier/internal/pipeline"
	"github.com/nftpulse/notifier/internal/source/evm"
	"github.com/nftpulse/notifier/internal/source/solana"
	"github.com/nftpulse/notifier/internal/store"
	"github.com/nftpulse/notifier/internal/store/schema"
	"github.com/nftpulse/notifier/internal/telegram"
)

// WebhookResponse is the acknowledgment returned to webhook providers
type WebhookResponse struct {
	Success   bool   `json:"success"`
	Processed int    `json:"processed"`
	Message   string `json:"message"`
}

// HealthResponse is the health endpoint body
type HealthResponse struct {
	Status    string `json:"status"`
	Timestamp string `json:"timestamp"`
	Database  string `json:"database"`
	Bot       string `json:"bot"`
}

// Handler serves the webhook and health endpoints
type Handler struct {
	processor     *pipeline.Processor
	evmAdapter    *evm.Adapter
	solanaAdapter *solana.Adapter
	store         store.Store
	messenger     telegram.Messenger
	clock         adapter.Clock
}

// NewHandler creates a webhook handler
func NewHandler(processor *pipeline.Processor, evmAdapter *evm.Adapter, solanaAdapter *solana.Adapter, st store.Store, messenger telegram.Messenger, clock adapter.Clock) *Handler {
	return &Handler{
		processor:     processor,
		evmAdapter:    evmAdapter,
		solanaAdapter: solanaAdapter,
		store:         st,
		messenger:     messenger,
		clock:         clock,
	}
}

// HandleChainWebhook ingests the EVM chain-activity webhook. The response
// is always 200 once the body was read: the provider retries non-2xx
// responses, and a redelivery of a payload we cannot parse will never
// parse better the second time.
func (h *Handler) HandleChainWebhook(c *gin.Context) {
	body, err := io.ReadAll(c.Request.Body)
	if err != nil {
		logger.ErrorCtx(c.Request.Context(), errors.New("failed to read webhook body"), zap.Error(err))
		c.JSON(http.StatusOK, WebhookResponse{Success: false, Processed: 0, Message: "failed to read body"})
		return
	}

	h.ingest(c, domain.SourceChain, body, func(ctx context.Context) ([]*domain.Activity, error) {
		return h.evmAdapter.ParseBatch(body)
	})
}

// HandleSolanaWebhook ingests the sale webhook. Authentication happened
// in middleware before the body was touched.
func (h *Handler) HandleSolanaWebhook(c *gin.Context) {
	body, err := io.ReadAll(c.Request.Body)
	if err != nil {
		logger.ErrorCtx(c.Request.Context(), errors.New("failed to read webhook body"), zap.Error(err))
		c.JSON(http.StatusOK, WebhookResponse{Success: false, Processed: 0, Message: "failed to read body"})
		return
	}

	h.ingest(c, domain.SourceSolana, body, func(ctx context.Context) ([]*domain.Activity, error) {
		return h.solanaAdapter.ParseBatch(ctx, body)
	})
}

// ingest runs one webhook delivery through audit logging, parsing, and
// the processing pipeline
func (h *Handler) ingest(c *gin.Context, source domain.Source, body []byte, parse func(ctx context.Context) ([]*domain.Activity, error)) {
	ctx := c.Request.Context()
	auditID := h.createAuditLog(ctx, source, body)

	activities, err := parse(ctx)
	if err != nil {
		logger.WarnCtx(ctx, "Rejecting malformed webhook payload",
			zap.String("source", string(source)),
			zap.Error(err))
		errMsg := err.Error()
		h.completeAuditLog(ctx, auditID, false, 0, &errMsg)
		c.JSON(http.StatusOK, WebhookResponse{Success: false, Processed: 0, Message: "malformed payload"})
		return
	}

	processed := h.processor.ProcessBatch(ctx, activities)
	h.completeAuditLog(ctx, auditID, true, processed, nil)

	logger.InfoCtx(ctx, "Webhook delivery handled",
		zap.String("source", string(source)),
		zap.Int("received", len(activities)),
		zap.Int("processed", processed))

	c.JSON(http.StatusOK, WebhookResponse{Success: true, Processed: processed, Message: "ok"})
}

// HandleHealth reports liveness of the two dependencies the service
// cannot run without
func (h *Handler) HandleHealth(c *gin.Context) {
	ctx := c.Request.Context()

	resp := HealthResponse{
		Status:    "ok",
		Timestamp: h.clock.Now().UTC().Format(time.RFC3339),
		Database:  "ok",
		Bot:       "ok",
	}
	status := http.StatusOK

	if err := h.store.Ping(ctx); err != nil {
		resp.Status = "degraded"
		resp.Database = err.Error()
		status = http.StatusServiceUnavailable
	}
	if err := h.messenger.Ping(ctx); err != nil {
		resp.Status = "degraded"
		resp.Bot = err.Error()
		status = http.StatusServiceUnavailable
	}

	c.JSON(status, resp)
}

// createAuditLog writes the receipt row; a failed write is logged, not fatal
func (h *Handler) createAuditLog(ctx context.Context, source domain.Source, body []byte) string {
	log := &schema.WebhookLog{
		ID:         uuid.NewString(),
		Source:     string(source),
		Payload:    body,
		ReceivedAt: h.clock.Now().UTC(),
	}
	if err := h.store.CreateWebhookLog(ctx, log); err != nil {
		logger.ErrorCtx(ctx, errors.New("failed to create webhook audit log"), zap.Error(err),
			zap.String("source", string(source)))
		return ""
	}
	return log.ID
}

// completeAuditLog finalizes the receipt row when one was created
func (h *Handler) completeAuditLog(ctx context.Context, id string, processed bool, count int, errMsg *string) {
	if id == "" {
		return
	}
	if err := h.store.CompleteWebhookLog(ctx, id, processed, count, errMsg); err != nil {
		logger.ErrorCtx(ctx, errors.New("failed to complete webhook audit log"), zap.Error(err),
			zap.String("id", id))
	}
}
