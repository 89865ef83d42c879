package transaction

import "context"

// Repository persists the per-invoice transaction rows. SetStatus must be an
// atomic upsert keyed by invoice ID so two concurrent charge attempts can
// never produce two rows for the same invoice.
type Repository interface {
	HasPending(ctx context.Context, invoiceID uint) (bool, error)
	HasFailed(ctx context.Context, invoiceID uint) (bool, error)
	SetStatus(ctx context.Context, invoiceID uint, status Status, transactionID string) error
	Clear(ctx context.Context, invoiceID uint) error
	GetByInvoiceID(ctx context.Context, invoiceID uint) (*PendingTransaction, error)
}
