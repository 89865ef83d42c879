// Package transaction holds the gateway-side transaction state tracked per
// invoice: at most one row per invoice, either awaiting a webhook
// confirmation (pending) or recording the last failed charge attempt.
package transaction

import "fmt"

type PendingTransaction struct {
	invoiceID     uint
	transactionID *string
	status        Status
}

// NewPendingTransaction creates a transaction row for an invoice. The Mollie
// transaction ID is only known for pending rows; failed rows may carry none.
func NewPendingTransaction(invoiceID uint, status Status, transactionID string) (*PendingTransaction, error) {
	if invoiceID == 0 {
		return nil, fmt.Errorf("invoice ID is required")
	}
	if _, err := ParseStatus(string(status)); err != nil {
		return nil, err
	}

	t := &PendingTransaction{
		invoiceID: invoiceID,
		status:    status,
	}
	if transactionID != "" {
		t.transactionID = &transactionID
	}

	return t, nil
}

func (t *PendingTransaction) InvoiceID() uint {
	return t.invoiceID
}

// TransactionID returns the Mollie transaction ID, or "" when none was
// recorded for this attempt.
func (t *PendingTransaction) TransactionID() string {
	if t.transactionID == nil {
		return ""
	}
	return *t.transactionID
}

func (t *PendingTransaction) Status() Status {
	return t.status
}

// ReconstructPendingTransaction rebuilds a row from persistence.
func ReconstructPendingTransaction(invoiceID uint, status Status, transactionID *string) *PendingTransaction {
	return &PendingTransaction{
		invoiceID:     invoiceID,
		transactionID: transactionID,
		status:        status,
	}
}
