package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"molliebridge/internal/application/gateway/usecases"
	"molliebridge/internal/shared/logger"
)

// WebhookHandler receives Mollie payment notifications. Responses always
// carry an empty body; Mollie only looks at the status code and retries
// non-2xx deliveries on its own schedule.
type WebhookHandler struct {
	processWebhookUC *usecases.ProcessWebhookUseCase
	logger           logger.Interface
}

func NewWebhookHandler(processWebhookUC *usecases.ProcessWebhookUseCase, logger logger.Interface) *WebhookHandler {
	return &WebhookHandler{processWebhookUC: processWebhookUC, logger: logger}
}

func (h *WebhookHandler) HandleWebhook(c *gin.Context) {
	cmd := usecases.WebhookCommand{
		TransactionID:  c.PostForm("id"),
		StatusOverride: c.PostForm("status"),
	}

	if cmd.TransactionID == "" {
		c.Status(http.StatusOK)
		return
	}

	if err := h.processWebhookUC.Execute(c.Request.Context(), cmd); err != nil {
		if errors.Is(err, usecases.ErrNotActivated) {
			c.Status(http.StatusServiceUnavailable)
			return
		}
		// Processing failures were already logged and compensated inside the
		// usecase; acknowledging stops Mollie from hammering a permanently
		// failing notification.
		h.logger.Warnw("webhook processed with error", "transaction_id", cmd.TransactionID, "error", err)
	}

	c.Status(http.StatusOK)
}
