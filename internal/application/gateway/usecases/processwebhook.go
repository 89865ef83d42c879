package usecases

import (
	"context"
	"errors"
	"fmt"

	"molliebridge/internal/application/gateway"
	"molliebridge/internal/application/gateway/billing"
	"molliebridge/internal/application/gateway/gatewaylog"
	"molliebridge/internal/application/gateway/mollie"
	"molliebridge/internal/domain/transaction"
	apperrors "molliebridge/internal/shared/errors"
	"molliebridge/internal/shared/logger"
)

// errAlreadyRecorded short-circuits a replayed notification for a payment
// that was already written to the invoice ledger.
var errAlreadyRecorded = errors.New("transaction already recorded")

// ErrNotActivated is returned when no API key is configured for the active
// mode. It is the only webhook outcome answered with 503; processor-side
// failures during processing are acknowledged so Mollie's retry schedule
// applies, not ours.
var ErrNotActivated = apperrors.NewUnavailableError("gateway not activated")

// WebhookCommand carries the Mollie transaction ID posted to the callback.
// StatusOverride lets an operator force a status on sandbox test payments;
// it is ignored outside sandbox mode.
type WebhookCommand struct {
	TransactionID  string
	StatusOverride string
}

// ProcessWebhookUseCase is the only place payments reach a terminal outcome:
// it fetches the payment from Mollie, reconciles the invoice and removes the
// pending transaction row. Processing failures never mutate the invoice;
// Mollie's own webhook retries provide eventual delivery.
type ProcessWebhookUseCase struct {
	params       gateway.Params
	transactions transaction.Repository
	client       mollie.Client
	billing      billing.Context
	glog         gatewaylog.Recorder
	logger       logger.Interface
}

func NewProcessWebhookUseCase(
	params gateway.Params,
	transactions transaction.Repository,
	client mollie.Client,
	billingCtx billing.Context,
	glog gatewaylog.Recorder,
	logger logger.Interface,
) *ProcessWebhookUseCase {
	return &ProcessWebhookUseCase{
		params:       params,
		transactions: transactions,
		client:       client,
		billing:      billingCtx,
		glog:         glog,
		logger:       logger,
	}
}

// Execute processes one notification. The returned error is for caller
// logging only; every failure has already been handled (logged, best-effort
// client notification) and the webhook response stays empty regardless.
func (uc *ProcessWebhookUseCase) Execute(ctx context.Context, cmd WebhookCommand) error {
	if cmd.TransactionID == "" {
		return nil
	}
	if !uc.params.Active() {
		return ErrNotActivated
	}

	if err := uc.process(ctx, cmd); err != nil {
		if errors.Is(err, errAlreadyRecorded) {
			uc.logger.Infow("duplicate webhook delivery ignored", "transaction_id", cmd.TransactionID)
			return nil
		}
		uc.recover(ctx, cmd.TransactionID, err)
		return err
	}

	return nil
}

func (uc *ProcessWebhookUseCase) process(ctx context.Context, cmd WebhookCommand) error {
	payment, err := uc.client.GetPayment(ctx, cmd.TransactionID)
	if err != nil {
		return fmt.Errorf("failed to fetch payment: %w", err)
	}

	invoiceID := payment.InvoiceID
	if invoiceID == 0 {
		return fmt.Errorf("invoice ID is missing from transaction metadata")
	}

	if err := uc.billing.ValidateInvoice(ctx, invoiceID); err != nil {
		return fmt.Errorf("invoice %d rejected: %w", invoiceID, err)
	}

	status := payment.Status
	// Sandbox test payments may be driven through their states manually.
	if uc.params.Sandbox && payment.Mode == "test" && cmd.StatusOverride != "" {
		status = mollie.PaymentStatus(cmd.StatusOverride)
	}

	switch status {
	case mollie.PaymentStatusPaid:
		if err := uc.handlePaid(ctx, invoiceID, payment); err != nil {
			return err
		}
	case mollie.PaymentStatusChargedBack:
		if err := uc.handleChargedBack(ctx, invoiceID, payment); err != nil {
			return err
		}
	default:
		// Intermediate states carry no invoice mutation; the row stays
		// pending until a terminal notification arrives.
		uc.logger.Infow("webhook for non-terminal payment status",
			"transaction_id", payment.ID, "status", status)
		return nil
	}

	if err := uc.transactions.Clear(ctx, invoiceID); err != nil {
		uc.logger.Errorw("failed to clear pending transaction", "invoice_id", invoiceID, "error", err)
	}

	return nil
}

func (uc *ProcessWebhookUseCase) handlePaid(ctx context.Context, invoiceID uint, payment *mollie.Payment) error {
	exists, err := uc.billing.PaymentExists(ctx, payment.ID)
	if err != nil {
		return fmt.Errorf("failed to check for existing payment: %w", err)
	}
	if exists {
		return errAlreadyRecorded
	}

	amount, err := uc.billing.ConvertFromEUR(ctx, invoiceID, payment.Amount)
	if err != nil {
		return fmt.Errorf("failed to convert amount: %w", err)
	}

	description := fmt.Sprintf("Payment %s completed successfully - invoice %d.", payment.ID, invoiceID)
	if err := uc.glog.Record(ctx, description, gatewaylog.StatusSuccess, map[string]any{
		"transaction_id": payment.ID,
		"amount_eur":     payment.Amount,
		"amount":         amount,
	}); err != nil {
		uc.logger.Warnw("failed to record gateway log entry", "error", err)
	}

	if err := uc.billing.AddInvoicePayment(ctx, invoiceID, payment.ID, amount, 0); err != nil {
		return fmt.Errorf("failed to add invoice payment: %w", err)
	}

	if err := uc.billing.SendPaymentConfirmation(ctx, invoiceID); err != nil {
		uc.logger.Warnw("failed to send payment confirmation", "invoice_id", invoiceID, "error", err)
	}

	uc.logger.Infow("payment reconciled",
		"invoice_id", invoiceID, "transaction_id", payment.ID, "amount", amount)

	return nil
}

func (uc *ProcessWebhookUseCase) handleChargedBack(ctx context.Context, invoiceID uint, payment *mollie.Payment) error {
	invoice, err := uc.billing.Invoice(ctx, invoiceID)
	if err != nil {
		return fmt.Errorf("failed to load invoice: %w", err)
	}

	if err := uc.billing.MarkInvoiceUnpaid(ctx, invoiceID); err != nil {
		return fmt.Errorf("failed to mark invoice unpaid: %w", err)
	}

	amount, err := uc.billing.ConvertFromEUR(ctx, invoiceID, payment.Amount)
	if err != nil {
		return fmt.Errorf("failed to convert amount: %w", err)
	}

	description := fmt.Sprintf("Payment %s charged back by customer - invoice %d.", payment.ID, invoiceID)
	if err := uc.glog.Record(ctx, description, gatewaylog.StatusChargedBack, map[string]any{
		"transaction_id": payment.ID,
		"amount":         amount,
	}); err != nil {
		uc.logger.Warnw("failed to record gateway log entry", "error", err)
	}

	if err := uc.billing.AddClientTransaction(ctx, invoice.UserID, description, amount, payment.ID, invoiceID); err != nil {
		return fmt.Errorf("failed to add client transaction: %w", err)
	}

	if err := uc.billing.SendPaymentFailed(ctx, invoiceID); err != nil {
		uc.logger.Warnw("failed to send chargeback notification", "invoice_id", invoiceID, "error", err)
	}

	uc.logger.Infow("chargeback reconciled",
		"invoice_id", invoiceID, "transaction_id", payment.ID, "amount", amount)

	return nil
}

// recover handles a processing failure: log it against the gateway log and
// try to notify the invoice owner by resolving the invoice through the
// historical payment ledger. The invoice itself is never mutated here.
func (uc *ProcessWebhookUseCase) recover(ctx context.Context, transactionID string, procErr error) {
	uc.logger.Errorw("webhook processing failed",
		"transaction_id", transactionID, "error", procErr)

	description := fmt.Sprintf("Payment %s failed with an error - %s.", transactionID, procErr.Error())
	if err := uc.glog.Record(ctx, description, gatewaylog.StatusError, nil); err != nil {
		uc.logger.Warnw("failed to record gateway log entry", "error", err)
	}

	invoiceID, err := uc.billing.FindInvoiceByTransaction(ctx, transactionID)
	if err != nil || invoiceID == 0 {
		return
	}
	if err := uc.billing.ValidateInvoice(ctx, invoiceID); err != nil {
		return
	}

	if err := uc.billing.SendPaymentFailed(ctx, invoiceID); err != nil {
		uc.logger.Warnw("failed to send payment failure notification", "invoice_id", invoiceID, "error", err)
	}
}
