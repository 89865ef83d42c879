package usecases

import (
	"context"
	"fmt"

	"molliebridge/internal/application/gateway"
	"molliebridge/internal/application/gateway/mollie"
	"molliebridge/internal/shared/i18n"
	"molliebridge/internal/shared/logger"
)

// RefundStatus is the outcome class of a refund attempt.
type RefundStatus string

const (
	RefundStatusSuccess RefundStatus = "success"
	RefundStatusError   RefundStatus = "error"
)

// RefundCommand refunds part or all of a settled Mollie payment. Amount is
// in EUR. Currency is only used in the operator-facing message. Refunds are
// independent of the pending-charge lifecycle and never touch the
// transaction rows.
type RefundCommand struct {
	TransactionID string
	Amount        float64
	Currency      string
}

type RefundResult struct {
	Status   RefundStatus
	Message  string
	RawError string
	RefundID string
}

type RefundUseCase struct {
	params     gateway.Params
	client     mollie.Client
	translator *i18n.Translator
	logger     logger.Interface
}

func NewRefundUseCase(
	params gateway.Params,
	client mollie.Client,
	translator *i18n.Translator,
	logger logger.Interface,
) *RefundUseCase {
	return &RefundUseCase{
		params:     params,
		client:     client,
		translator: translator,
		logger:     logger,
	}
}

func (uc *RefundUseCase) Execute(ctx context.Context, cmd RefundCommand) *RefundResult {
	if !uc.params.Active() {
		return &RefundResult{
			Status: RefundStatusError,
			Message: uc.translator.T(uc.params.Locale, "refund.missingapikey", map[string]string{
				"transid": cmd.TransactionID,
			}),
		}
	}

	refund, err := uc.client.CreateRefund(ctx, cmd.TransactionID, cmd.Amount)
	if err != nil {
		uc.logger.Errorw("failed to create refund", "transaction_id", cmd.TransactionID, "error", err)
		return &RefundResult{
			Status: RefundStatusError,
			Message: uc.translator.T(uc.params.Locale, "refund.error", map[string]string{
				"transid":   cmd.TransactionID,
				"exception": err.Error(),
			}),
			RawError: err.Error(),
		}
	}

	uc.logger.Infow("refund created",
		"transaction_id", cmd.TransactionID, "refund_id", refund.ID, "amount", cmd.Amount)

	return &RefundResult{
		Status: RefundStatusSuccess,
		Message: uc.translator.T(uc.params.Locale, "refund.success", map[string]string{
			"currency": cmd.Currency,
			"amount":   fmt.Sprintf("%.2f", cmd.Amount),
			"transid":  cmd.TransactionID,
		}),
		RefundID: refund.ID,
	}
}
