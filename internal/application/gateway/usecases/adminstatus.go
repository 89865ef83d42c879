package usecases

import (
	"context"

	"molliebridge/internal/application/gateway"
	"molliebridge/internal/application/gateway/billing"
	"molliebridge/internal/application/gateway/mollie"
	"molliebridge/internal/domain/customer"
	"molliebridge/internal/domain/transaction"
	"molliebridge/internal/shared/i18n"
	"molliebridge/internal/shared/logger"
)

// AdminStatusCommand asks for the diagnostic message an operator should see
// on an invoice detail page.
type AdminStatusCommand struct {
	InvoiceID     uint
	ClientID      uint
	InvoiceStatus string
}

// AdminStatusResult is the message to display, or nil when the invoice is
// not in a state this gateway has anything to say about.
type AdminStatusResult struct {
	Type    string // "error" or "info"
	Message string
	Title   string
}

type AdminStatusUseCase struct {
	params       gateway.Params
	transactions transaction.Repository
	customers    customer.Repository
	client       mollie.Client
	translator   *i18n.Translator
	logger       logger.Interface
}

func NewAdminStatusUseCase(
	params gateway.Params,
	transactions transaction.Repository,
	customers customer.Repository,
	client mollie.Client,
	translator *i18n.Translator,
	logger logger.Interface,
) *AdminStatusUseCase {
	return &AdminStatusUseCase{
		params:       params,
		transactions: transactions,
		customers:    customers,
		client:       client,
		translator:   translator,
		logger:       logger,
	}
}

// Execute is read-only and short-circuits at the first matching condition:
// missing key, not set up, payment pending, payment failed, no valid
// mandate. Unpaid invoices only; everything else yields nil.
func (uc *AdminStatusUseCase) Execute(ctx context.Context, cmd AdminStatusCommand) *AdminStatusResult {
	if !uc.params.Active() {
		return uc.statusMessage("error", "admin.missingapikey")
	}

	if cmd.InvoiceStatus != billing.InvoiceStatusUnpaid {
		return nil
	}

	customerID, err := uc.customers.CustomerID(ctx, cmd.ClientID)
	if err != nil {
		uc.logger.Errorw("failed to load customer mapping", "client_id", cmd.ClientID, "error", err)
	}
	if customerID == "" {
		return uc.statusMessage("error", "admin.notsetup")
	}

	if pending, err := uc.transactions.HasPending(ctx, cmd.InvoiceID); err == nil && pending {
		return uc.statusMessage("info", "admin.paymentpending")
	}

	if failed, err := uc.transactions.HasFailed(ctx, cmd.InvoiceID); err == nil && failed {
		return uc.statusMessage("error", "admin.paymentfailed")
	}

	cust, err := uc.client.GetCustomer(ctx, customerID)
	if err != nil {
		// Any processor trouble reads as "not set up" for the operator.
		return uc.statusMessage("error", "admin.notsetup")
	}
	if !cust.HasValidMandate {
		return uc.statusMessage("error", "admin.novalidmandate")
	}

	return nil
}

func (uc *AdminStatusUseCase) statusMessage(typ, key string) *AdminStatusResult {
	return &AdminStatusResult{
		Type:    typ,
		Message: uc.translator.T(uc.params.Locale, key, nil),
		Title:   uc.params.Name,
	}
}
