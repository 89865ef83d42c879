// Package mollie defines the contract consumed from the Mollie payments API:
// customers with mandates, recurring payments and refunds. Implementations
// translate HTTP failures into the sentinel errors declared here so callers
// branch on variants instead of inspecting response codes.
package mollie

import (
	"context"
	"errors"
)

// ErrNotFound is returned when Mollie reports 404 for a resource, e.g. a
// customer ID that no longer exists. Callers treat this as "stale local
// state" rather than a hard failure.
var ErrNotFound = errors.New("mollie: resource not found")

// PaymentStatus is the payment state as reported by Mollie. Only the
// terminal states paid and charged_back trigger invoice mutations.
type PaymentStatus string

const (
	PaymentStatusOpen        PaymentStatus = "open"
	PaymentStatusPending     PaymentStatus = "pending"
	PaymentStatusPaid        PaymentStatus = "paid"
	PaymentStatusFailed      PaymentStatus = "failed"
	PaymentStatusChargedBack PaymentStatus = "charged_back"
	PaymentStatusExpired     PaymentStatus = "expired"
	PaymentStatusCanceled    PaymentStatus = "canceled"
)

// Customer is a Mollie customer. HasValidMandate gates whether a recurring
// charge may be attempted without customer interaction.
type Customer struct {
	ID              string
	Name            string
	Email           string
	HasValidMandate bool
}

// Payment is a Mollie payment. Amount is in EUR; InvoiceID is recovered from
// the payment metadata and is 0 when the metadata is missing or malformed.
// Mode is "live" or "test". CheckoutURL is only set on first recurring
// payments, which require interactive confirmation.
type Payment struct {
	ID          string
	Status      PaymentStatus
	Amount      float64
	Mode        string
	InvoiceID   uint
	CheckoutURL string
}

// Refund is a refund created against an existing payment.
type Refund struct {
	ID        string
	PaymentID string
	Amount    float64
}

// PaymentRequest describes a recurring charge. Amount is in EUR. RedirectURL
// is only used for first recurring payments. WebhookURL may be empty to
// suppress callbacks (develop mode).
type PaymentRequest struct {
	CustomerID  string
	Amount      float64
	Description string
	InvoiceID   uint
	RedirectURL string
	WebhookURL  string
}

// Client is the outbound Mollie API contract.
type Client interface {
	CreateCustomer(ctx context.Context, name, email string, clientID uint) (*Customer, error)
	GetCustomer(ctx context.Context, customerID string) (*Customer, error)
	CreateRecurringPayment(ctx context.Context, req PaymentRequest) (*Payment, error)
	CreateFirstRecurringPayment(ctx context.Context, req PaymentRequest) (*Payment, error)
	GetPayment(ctx context.Context, paymentID string) (*Payment, error)
	CreateRefund(ctx context.Context, paymentID string, amount float64) (*Refund, error)
}
