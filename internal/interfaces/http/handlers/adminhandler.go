package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"molliebridge/internal/application/gateway/billing"
	"molliebridge/internal/application/gateway/usecases"
	apperrors "molliebridge/internal/shared/errors"
	"molliebridge/internal/shared/logger"
	"molliebridge/internal/shared/utils"
)

// AdminHandler exposes the operator-facing actions: the invoice status
// message, manual captures and refunds.
type AdminHandler struct {
	adminStatusUC *usecases.AdminStatusUseCase
	captureUC     *usecases.CaptureUseCase
	refundUC      *usecases.RefundUseCase
	billing       billing.Context
	logger        logger.Interface
}

func NewAdminHandler(
	adminStatusUC *usecases.AdminStatusUseCase,
	captureUC *usecases.CaptureUseCase,
	refundUC *usecases.RefundUseCase,
	billingCtx billing.Context,
	logger logger.Interface,
) *AdminHandler {
	return &AdminHandler{
		adminStatusUC: adminStatusUC,
		captureUC:     captureUC,
		refundUC:      refundUC,
		billing:       billingCtx,
		logger:        logger,
	}
}

type StatusMessageResponse struct {
	Type    string `json:"type"`
	Title   string `json:"title"`
	Message string `json:"message"`
}

// StatusMessage returns the diagnostic banner for an invoice detail page, or
// 204 when the gateway has nothing to say about the invoice.
func (h *AdminHandler) StatusMessage(c *gin.Context) {
	invoice, ok := h.loadInvoice(c)
	if !ok {
		return
	}

	result := h.adminStatusUC.Execute(c.Request.Context(), usecases.AdminStatusCommand{
		InvoiceID:     invoice.ID,
		ClientID:      invoice.UserID,
		InvoiceStatus: invoice.Status,
	})
	if result == nil {
		utils.NoContentResponse(c)
		return
	}

	utils.SuccessResponse(c, http.StatusOK, "", StatusMessageResponse{
		Type:    result.Type,
		Title:   result.Title,
		Message: result.Message,
	})
}

type CaptureResponse struct {
	// Status is "success" while the charge settles, "pending" when an
	// earlier charge is still in flight, "error" otherwise. The settling
	// outcome deliberately reads as the literal string "success"; the
	// invoice is only marked paid by the webhook.
	Status        string `json:"status"`
	Message       string `json:"message,omitempty"`
	TransactionID string `json:"transaction_id,omitempty"`
	RawError      string `json:"raw_error,omitempty"`
}

// Capture charges an unpaid invoice against the client's mandate.
func (h *AdminHandler) Capture(c *gin.Context) {
	invoice, ok := h.loadInvoice(c)
	if !ok {
		return
	}

	if invoice.Status != billing.InvoiceStatusUnpaid {
		utils.ErrorResponse(c, http.StatusConflict, "invoice is not unpaid")
		return
	}

	result := h.captureUC.Execute(c.Request.Context(), usecases.CaptureCommand{
		InvoiceID:   invoice.ID,
		ClientID:    invoice.UserID,
		Amount:      invoice.Total,
		Description: "Invoice #" + strconv.FormatUint(uint64(invoice.ID), 10),
	})

	resp := CaptureResponse{
		Message:       result.Message,
		TransactionID: result.TransactionID,
		RawError:      result.RawError,
	}
	switch result.Status {
	case usecases.CaptureStatusSettling:
		resp.Status = "success"
	case usecases.CaptureStatusPending:
		resp.Status = "pending"
	default:
		resp.Status = "error"
	}

	utils.SuccessResponse(c, http.StatusOK, "", resp)
}

type RefundRequest struct {
	TransactionID string  `json:"transaction_id" binding:"required"`
	Amount        float64 `json:"amount" binding:"required,gt=0"`
	Currency      string  `json:"currency"`
}

type RefundResponse struct {
	Status   string `json:"status"`
	Message  string `json:"message,omitempty"`
	RefundID string `json:"refund_id,omitempty"`
	RawError string `json:"raw_error,omitempty"`
}

// Refund refunds part or all of a settled payment.
func (h *AdminHandler) Refund(c *gin.Context) {
	var req RefundRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Errorw("failed to bind request", "error", err)
		utils.ErrorResponse(c, http.StatusBadRequest, "invalid request: "+err.Error())
		return
	}

	result := h.refundUC.Execute(c.Request.Context(), usecases.RefundCommand{
		TransactionID: req.TransactionID,
		Amount:        req.Amount,
		Currency:      req.Currency,
	})

	utils.SuccessResponse(c, http.StatusOK, "", RefundResponse{
		Status:   string(result.Status),
		Message:  result.Message,
		RefundID: result.RefundID,
		RawError: result.RawError,
	})
}

func (h *AdminHandler) loadInvoice(c *gin.Context) (*billing.Invoice, bool) {
	invoiceID, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		utils.ErrorResponse(c, http.StatusBadRequest, "invalid invoice id")
		return nil, false
	}

	invoice, err := h.billing.Invoice(c.Request.Context(), uint(invoiceID))
	if err != nil {
		if apperrors.IsNotFoundError(err) {
			utils.ErrorResponse(c, http.StatusNotFound, "invoice not found")
			return nil, false
		}
		h.logger.Errorw("failed to load invoice", "invoice_id", invoiceID, "error", err)
		utils.ErrorResponseWithError(c, err)
		return nil, false
	}

	return invoice, true
}
