package usecases

import (
	"context"
	"errors"
	"strconv"

	"molliebridge/internal/application/gateway"
	"molliebridge/internal/application/gateway/gatewaylog"
	"molliebridge/internal/application/gateway/mollie"
	"molliebridge/internal/domain/customer"
	"molliebridge/internal/domain/transaction"
	"molliebridge/internal/shared/i18n"
	"molliebridge/internal/shared/logger"
)

// CaptureStatus is the outcome class of a capture attempt.
type CaptureStatus string

const (
	// CaptureStatusSettling means the charge was handed to Mollie and is
	// awaiting webhook confirmation. The invoice must NOT be marked paid on
	// this status; adapters render it as the host's "success" sentinel
	// string, never as a boolean.
	CaptureStatusSettling CaptureStatus = "settling"
	// CaptureStatusPending means a previous charge is still awaiting its
	// webhook; no new charge was attempted.
	CaptureStatusPending CaptureStatus = "pending"
	CaptureStatusError   CaptureStatus = "error"
)

// CaptureCommand is a request to charge an invoice against the client's
// existing mandate. Amount is in EUR.
type CaptureCommand struct {
	InvoiceID   uint
	ClientID    uint
	Amount      float64
	Description string
}

// CaptureResult is always returned, even on failure; capture never lets an
// error escape to the caller. RawError carries the processor error text for
// operator diagnostics.
type CaptureResult struct {
	Status        CaptureStatus
	Message       string
	RawError      string
	TransactionID string
}

type CaptureUseCase struct {
	params       gateway.Params
	transactions transaction.Repository
	customers    customer.Repository
	client       mollie.Client
	glog         gatewaylog.Recorder
	translator   *i18n.Translator
	logger       logger.Interface
}

func NewCaptureUseCase(
	params gateway.Params,
	transactions transaction.Repository,
	customers customer.Repository,
	client mollie.Client,
	glog gatewaylog.Recorder,
	translator *i18n.Translator,
	logger logger.Interface,
) *CaptureUseCase {
	return &CaptureUseCase{
		params:       params,
		transactions: transactions,
		customers:    customers,
		client:       client,
		glog:         glog,
		translator:   translator,
		logger:       logger,
	}
}

func (uc *CaptureUseCase) Execute(ctx context.Context, cmd CaptureCommand) *CaptureResult {
	invoiceArg := map[string]string{"invoice": strconv.FormatUint(uint64(cmd.InvoiceID), 10)}

	if !uc.params.Active() {
		uc.markFailed(ctx, cmd.InvoiceID)
		return &CaptureResult{
			Status:  CaptureStatusError,
			Message: uc.translator.T(uc.params.Locale, "capture.missingapikey", invoiceArg),
		}
	}

	pending, err := uc.transactions.HasPending(ctx, cmd.InvoiceID)
	if err != nil {
		uc.logger.Errorw("failed to check pending transactions", "invoice_id", cmd.InvoiceID, "error", err)
		return &CaptureResult{
			Status:   CaptureStatusError,
			Message:  uc.translator.T(uc.params.Locale, "capture.paymentfailed", invoiceArg),
			RawError: err.Error(),
		}
	}
	if pending {
		return &CaptureResult{
			Status:  CaptureStatusPending,
			Message: uc.translator.T(uc.params.Locale, "capture.paymentpending", invoiceArg),
		}
	}

	customerID, err := uc.customers.CustomerID(ctx, cmd.ClientID)
	if err != nil {
		uc.logger.Errorw("failed to load customer mapping", "client_id", cmd.ClientID, "error", err)
	}
	if customerID == "" {
		uc.markFailed(ctx, cmd.InvoiceID)
		return &CaptureResult{
			Status:  CaptureStatusError,
			Message: uc.translator.T(uc.params.Locale, "capture.missingcustomerid", invoiceArg),
		}
	}

	cust, err := uc.client.GetCustomer(ctx, customerID)
	if err != nil {
		uc.markFailed(ctx, cmd.InvoiceID)

		if errors.Is(err, mollie.ErrNotFound) {
			// The stored customer no longer exists at Mollie; wipe the
			// mapping so the next setup creates a fresh customer.
			if setErr := uc.customers.SetCustomerID(ctx, cmd.ClientID, ""); setErr != nil {
				uc.logger.Errorw("failed to unlink stale customer mapping", "client_id", cmd.ClientID, "error", setErr)
			}
			return &CaptureResult{
				Status: CaptureStatusError,
				Message: uc.translator.T(uc.params.Locale, "capture.customernotfound", map[string]string{
					"invoice":  strconv.FormatUint(uint64(cmd.InvoiceID), 10),
					"customer": customerID,
				}),
				RawError: err.Error(),
			}
		}

		return &CaptureResult{
			Status:   CaptureStatusError,
			Message:  uc.translator.T(uc.params.Locale, "capture.paymentfailed", invoiceArg),
			RawError: err.Error(),
		}
	}

	if !cust.HasValidMandate {
		uc.markFailed(ctx, cmd.InvoiceID)
		return &CaptureResult{
			Status:  CaptureStatusError,
			Message: uc.translator.T(uc.params.Locale, "capture.novalidmandate", invoiceArg),
		}
	}

	payment, err := uc.client.CreateRecurringPayment(ctx, mollie.PaymentRequest{
		CustomerID:  customerID,
		Amount:      cmd.Amount,
		Description: cmd.Description,
		InvoiceID:   cmd.InvoiceID,
		WebhookURL:  uc.params.WebhookURL(),
	})
	if err != nil {
		uc.markFailed(ctx, cmd.InvoiceID)
		return &CaptureResult{
			Status:   CaptureStatusError,
			Message:  uc.translator.T(uc.params.Locale, "capture.paymentfailed", invoiceArg),
			RawError: err.Error(),
		}
	}

	if err := uc.transactions.SetStatus(ctx, cmd.InvoiceID, transaction.StatusPending, payment.ID); err != nil {
		// The charge is already on its way; the webhook will still settle
		// the invoice by metadata, so report settling but log loudly.
		uc.logger.Errorw("failed to store pending transaction after charge",
			"invoice_id", cmd.InvoiceID, "transaction_id", payment.ID, "error", err)
	}

	description := uc.translator.T(uc.params.Locale, "capture.paymentattempted", map[string]string{
		"invoice":     strconv.FormatUint(uint64(cmd.InvoiceID), 10),
		"transaction": payment.ID,
	})
	if err := uc.glog.Record(ctx, description, gatewaylog.StatusSuccess, nil); err != nil {
		uc.logger.Warnw("failed to record gateway log entry", "error", err)
	}

	uc.logger.Infow("recurring charge created, awaiting webhook",
		"invoice_id", cmd.InvoiceID, "transaction_id", payment.ID)

	return &CaptureResult{
		Status:        CaptureStatusSettling,
		TransactionID: payment.ID,
	}
}

func (uc *CaptureUseCase) markFailed(ctx context.Context, invoiceID uint) {
	if err := uc.transactions.SetStatus(ctx, invoiceID, transaction.StatusFailed, ""); err != nil {
		uc.logger.Errorw("failed to mark transaction failed", "invoice_id", invoiceID, "error", err)
	}
}
