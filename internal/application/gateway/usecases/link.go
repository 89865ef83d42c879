package usecases

import (
	"context"
	"errors"
	"fmt"
	"html"
	"strconv"

	"github.com/microcosm-cc/bluemonday"

	"molliebridge/internal/application/gateway"
	"molliebridge/internal/application/gateway/gatewaylog"
	"molliebridge/internal/application/gateway/mollie"
	"molliebridge/internal/application/gateway/nonce"
	"molliebridge/internal/domain/customer"
	"molliebridge/internal/domain/transaction"
	"molliebridge/internal/shared/i18n"
	"molliebridge/internal/shared/logger"
)

// LinkActionPayNow is the form action value of a pay-now submission.
const LinkActionPayNow = "paynow"

// LinkCommand renders the invoice payment fragment or, for a verified
// pay-now submission, creates the first recurring payment. Amount is in EUR.
type LinkCommand struct {
	InvoiceID   uint
	ClientID    uint
	ClientName  string
	ClientEmail string
	Amount      float64
	Description string
	ReturnURL   string
	SessionID   string

	// Form submission fields; empty on a plain render.
	Action string
	Nonce  string
}

// LinkResult is either an HTML fragment to embed in the invoice page or a
// redirect to Mollie's hosted checkout. Refresh asks the host page to reload
// itself (stale customer mapping was just erased).
type LinkResult struct {
	HTML        string
	RedirectURL string
	Refresh     bool
}

type LinkUseCase struct {
	params       gateway.Params
	transactions transaction.Repository
	customers    customer.Repository
	client       mollie.Client
	nonces       *nonce.Service
	glog         gatewaylog.Recorder
	translator   *i18n.Translator
	sanitizer    *bluemonday.Policy
	logger       logger.Interface
}

func NewLinkUseCase(
	params gateway.Params,
	transactions transaction.Repository,
	customers customer.Repository,
	client mollie.Client,
	nonces *nonce.Service,
	glog gatewaylog.Recorder,
	translator *i18n.Translator,
	logger logger.Interface,
) *LinkUseCase {
	return &LinkUseCase{
		params:       params,
		transactions: transactions,
		customers:    customers,
		client:       client,
		nonces:       nonces,
		glog:         glog,
		translator:   translator,
		sanitizer:    bluemonday.StrictPolicy(),
		logger:       logger,
	}
}

func (uc *LinkUseCase) Execute(ctx context.Context, cmd LinkCommand) *LinkResult {
	if !uc.params.Active() {
		return &LinkResult{HTML: uc.statusMessage(uc.translator.T(uc.params.Locale, "link.error", nil))}
	}

	cust, err := uc.getOrCreateCustomer(ctx, cmd)
	if err != nil {
		if errors.Is(err, mollie.ErrNotFound) {
			// Stored customer is gone at Mollie; erase the mapping and ask
			// the page to reload so a fresh customer gets created.
			if setErr := uc.customers.SetCustomerID(ctx, cmd.ClientID, ""); setErr != nil {
				uc.logger.Errorw("failed to unlink stale customer mapping", "client_id", cmd.ClientID, "error", setErr)
			}
			return &LinkResult{
				HTML:    uc.statusMessage(uc.translator.T(uc.params.Locale, "link.error", nil)),
				Refresh: true,
			}
		}

		uc.logger.Errorw("failed to resolve customer", "client_id", cmd.ClientID, "error", err)
		return &LinkResult{HTML: uc.statusMessage(uc.translator.T(uc.params.Locale, "link.error", nil))}
	}

	pending, err := uc.transactions.HasPending(ctx, cmd.InvoiceID)
	if err != nil {
		uc.logger.Errorw("failed to check pending transactions", "invoice_id", cmd.InvoiceID, "error", err)
		return &LinkResult{HTML: uc.statusMessage(uc.translator.T(uc.params.Locale, "link.error", nil))}
	}

	// With a valid mandate the capture path takes over; with a pending
	// payment the webhook will settle it. Either way there is nothing for
	// the customer to do here.
	if cust.HasValidMandate || pending {
		return &LinkResult{HTML: uc.statusMessage(uc.translator.T(uc.params.Locale, "link.paymentpending", nil))}
	}

	if cmd.Action == LinkActionPayNow {
		ok, err := uc.nonces.Verify(ctx, cmd.ClientID, cmd.SessionID, cmd.Nonce)
		if err != nil {
			uc.logger.Errorw("failed to verify pay-now nonce", "client_id", cmd.ClientID, "error", err)
		}
		if ok {
			return uc.createFirstPayment(ctx, cmd, cust)
		}
		// Mismatched or replayed nonce falls through to a fresh form.
	}

	return uc.payNowForm(ctx, cmd)
}

func (uc *LinkUseCase) getOrCreateCustomer(ctx context.Context, cmd LinkCommand) (*mollie.Customer, error) {
	customerID, err := uc.customers.CustomerID(ctx, cmd.ClientID)
	if err != nil {
		return nil, err
	}

	if customerID == "" {
		cust, err := uc.client.CreateCustomer(ctx, cmd.ClientName, cmd.ClientEmail, cmd.ClientID)
		if err != nil {
			return nil, err
		}
		if err := uc.customers.SetCustomerID(ctx, cmd.ClientID, cust.ID); err != nil {
			return nil, err
		}
		return cust, nil
	}

	return uc.client.GetCustomer(ctx, customerID)
}

func (uc *LinkUseCase) createFirstPayment(ctx context.Context, cmd LinkCommand, cust *mollie.Customer) *LinkResult {
	payment, err := uc.client.CreateFirstRecurringPayment(ctx, mollie.PaymentRequest{
		CustomerID:  cust.ID,
		Amount:      cmd.Amount,
		Description: cmd.Description,
		InvoiceID:   cmd.InvoiceID,
		RedirectURL: cmd.ReturnURL,
		WebhookURL:  uc.params.WebhookURL(),
	})
	if err != nil {
		uc.logger.Errorw("failed to create first recurring payment", "invoice_id", cmd.InvoiceID, "error", err)
		return &LinkResult{HTML: uc.statusMessage(uc.translator.T(uc.params.Locale, "link.error", nil))}
	}

	if err := uc.transactions.SetStatus(ctx, cmd.InvoiceID, transaction.StatusPending, payment.ID); err != nil {
		uc.logger.Errorw("failed to store pending transaction", "invoice_id", cmd.InvoiceID, "error", err)
	}

	description := uc.translator.T(uc.params.Locale, "capture.paymentattempted", map[string]string{
		"invoice":     strconv.FormatUint(uint64(cmd.InvoiceID), 10),
		"transaction": payment.ID,
	})
	if err := uc.glog.Record(ctx, description, gatewaylog.StatusSuccess, nil); err != nil {
		uc.logger.Warnw("failed to record gateway log entry", "error", err)
	}

	return &LinkResult{RedirectURL: payment.CheckoutURL}
}

func (uc *LinkUseCase) payNowForm(ctx context.Context, cmd LinkCommand) *LinkResult {
	token, err := uc.nonces.Issue(ctx, cmd.ClientID, cmd.SessionID)
	if err != nil {
		uc.logger.Errorw("failed to issue pay-now nonce", "client_id", cmd.ClientID, "error", err)
		return &LinkResult{HTML: uc.statusMessage(uc.translator.T(uc.params.Locale, "link.error", nil))}
	}

	description := uc.sanitizer.Sanitize(cmd.Description)
	label := uc.translator.T(uc.params.Locale, "link.paynow", nil)

	form := fmt.Sprintf(`<form action="" method="POST">
    <input type="hidden" name="action" value="%s" />
    <input type="hidden" name="nonce" value="%s" />
    <p>%s</p>
    <input type="submit" value="%s" />
</form>`, LinkActionPayNow, html.EscapeString(token), description, html.EscapeString(label))

	if uc.params.Sandbox {
		form = sandboxBanner + form
	}

	return &LinkResult{HTML: form}
}

const sandboxBanner = `<strong style="color: red;">SANDBOX MODE</strong><br />`

func (uc *LinkUseCase) statusMessage(message string) string {
	msg := "<p>" + html.EscapeString(message) + "</p>"
	if uc.params.Sandbox {
		msg = sandboxBanner + msg
	}
	return msg
}
