package handlers

import (
	"crypto/rand"
	"encoding/hex"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"molliebridge/internal/application/gateway"
	"molliebridge/internal/application/gateway/billing"
	"molliebridge/internal/application/gateway/usecases"
	apperrors "molliebridge/internal/shared/errors"
	"molliebridge/internal/shared/logger"
)

const (
	sessionCookieName = "molliebridge_session"
	sessionCookieAge  = 3600
)

// InvoicePayHandler serves the customer-facing payment fragment for an
// invoice: a pay-now form on GET, the form submission on POST. Successful
// submissions redirect to Mollie's hosted checkout.
type InvoicePayHandler struct {
	params  gateway.Params
	linkUC  *usecases.LinkUseCase
	billing billing.Context
	logger  logger.Interface
}

func NewInvoicePayHandler(params gateway.Params, linkUC *usecases.LinkUseCase, billingCtx billing.Context, logger logger.Interface) *InvoicePayHandler {
	return &InvoicePayHandler{params: params, linkUC: linkUC, billing: billingCtx, logger: logger}
}

func (h *InvoicePayHandler) ShowPayPage(c *gin.Context) {
	h.handle(c, "", "")
}

func (h *InvoicePayHandler) SubmitPayNow(c *gin.Context) {
	h.handle(c, c.PostForm("action"), c.PostForm("nonce"))
}

func (h *InvoicePayHandler) handle(c *gin.Context, action, nonceToken string) {
	invoiceID, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		c.String(http.StatusBadRequest, "invalid invoice id")
		return
	}

	invoice, err := h.billing.Invoice(c.Request.Context(), uint(invoiceID))
	if err != nil {
		if apperrors.IsNotFoundError(err) {
			c.String(http.StatusNotFound, "invoice not found")
			return
		}
		h.logger.Errorw("failed to load invoice", "invoice_id", invoiceID, "error", err)
		c.String(http.StatusInternalServerError, "internal error")
		return
	}

	client, err := h.billing.Client(c.Request.Context(), invoice.UserID)
	if err != nil {
		h.logger.Errorw("failed to load client", "client_id", invoice.UserID, "error", err)
		c.String(http.StatusInternalServerError, "internal error")
		return
	}

	result := h.linkUC.Execute(c.Request.Context(), usecases.LinkCommand{
		InvoiceID:   invoice.ID,
		ClientID:    client.ID,
		ClientName:  client.FullName,
		ClientEmail: client.Email,
		Amount:      invoice.Total,
		Description: "Invoice #" + strconv.FormatUint(invoiceID, 10),
		ReturnURL:   h.params.AbsoluteURL(c.Request.URL.String()),
		SessionID:   h.sessionID(c),
		Action:      action,
		Nonce:       nonceToken,
	})

	if result.RedirectURL != "" {
		c.Redirect(http.StatusFound, result.RedirectURL)
		return
	}

	html := result.HTML
	if result.Refresh {
		html = `<meta http-equiv="refresh" content="1">` + html
	}
	c.Data(http.StatusOK, "text/html; charset=utf-8", []byte(html))
}

// sessionID reads the browser session cookie, minting one on first contact.
// The nonce service scopes pay-now tokens to this value.
func (h *InvoicePayHandler) sessionID(c *gin.Context) string {
	if sid, err := c.Cookie(sessionCookieName); err == nil && sid != "" {
		return sid
	}

	buf := make([]byte, 16)
	if _, err := rand.Read(buf); err != nil {
		h.logger.Errorw("failed to generate session id", "error", err)
		return ""
	}
	sid := hex.EncodeToString(buf)

	c.SetCookie(sessionCookieName, sid, sessionCookieAge, "/", "", false, true)
	return sid
}
