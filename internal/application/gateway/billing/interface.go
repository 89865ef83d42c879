// Package billing defines the contract against the host billing platform:
// invoice and client lookups, currency conversion, payment recording and
// customer notifications. The gateway never touches host tables directly;
// everything goes through this port so usecases stay testable.
package billing

import "context"

// Invoice statuses used by the gateway. The host platform owns the full set.
const (
	InvoiceStatusUnpaid = "Unpaid"
	InvoiceStatusPaid   = "Paid"
)

// Invoice is the slice of a host invoice the gateway needs.
type Invoice struct {
	ID           uint
	UserID       uint
	Status       string
	Total        float64
	CurrencyCode string
}

// Client is the slice of a host client record the gateway needs.
type Client struct {
	ID       uint
	FullName string
	Email    string
}

// Context exposes the host billing platform to the gateway actions.
type Context interface {
	// Invoice returns the invoice, or a not-found error for unknown IDs.
	Invoice(ctx context.Context, invoiceID uint) (*Invoice, error)

	// Client returns the invoice owner's client record.
	Client(ctx context.Context, clientID uint) (*Client, error)

	// ValidateInvoice rejects webhook notifications for invoices this
	// gateway must not touch (unknown, or already settled by another
	// method).
	ValidateInvoice(ctx context.Context, invoiceID uint) error

	// ConvertFromEUR converts a EUR amount into the billing currency of the
	// invoice owner.
	ConvertFromEUR(ctx context.Context, invoiceID uint, amount float64) (float64, error)

	// PaymentExists reports whether a payment with this gateway transaction
	// ID was already recorded; used to keep webhook processing idempotent.
	PaymentExists(ctx context.Context, transactionID string) (bool, error)

	// AddInvoicePayment records a settled payment against the invoice.
	AddInvoicePayment(ctx context.Context, invoiceID uint, transactionID string, amount, fee float64) error

	// MarkInvoiceUnpaid flips an invoice back to unpaid after a chargeback.
	MarkInvoiceUnpaid(ctx context.Context, invoiceID uint) error

	// AddClientTransaction records a chargeback on the client ledger, not
	// the invoice payment ledger. amountOut is the amount leaving.
	AddClientTransaction(ctx context.Context, clientID uint, description string, amountOut float64, transactionID string, invoiceID uint) error

	// FindInvoiceByTransaction resolves an invoice from the historical
	// payment ledger; returns 0 when the transaction is unknown.
	FindInvoiceByTransaction(ctx context.Context, transactionID string) (uint, error)

	// SendPaymentConfirmation notifies the invoice owner that the payment
	// settled, preferring an operator-configured template over the default.
	SendPaymentConfirmation(ctx context.Context, invoiceID uint) error

	// SendPaymentFailed notifies the invoice owner that a payment failed or
	// was charged back.
	SendPaymentFailed(ctx context.Context, invoiceID uint) error
}
