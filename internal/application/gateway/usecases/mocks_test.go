package usecases

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"molliebridge/internal/application/gateway"
	"molliebridge/internal/application/gateway/billing"
	"molliebridge/internal/domain/transaction"
	apperrors "molliebridge/internal/shared/errors"
	"molliebridge/internal/shared/i18n"
	"molliebridge/internal/shared/logger"
)

// In-memory fakes for the usecase collaborators. Behavior is controlled
// through public fields; calls are recorded for assertions.

type fakeTransactionRepo struct {
	rows map[uint]*transaction.PendingTransaction

	setStatusErr  error
	hasPendingErr error

	clearedInvoices []uint
}

func newFakeTransactionRepo() *fakeTransactionRepo {
	return &fakeTransactionRepo{rows: make(map[uint]*transaction.PendingTransaction)}
}

func (f *fakeTransactionRepo) HasPending(ctx context.Context, invoiceID uint) (bool, error) {
	if f.hasPendingErr != nil {
		return false, f.hasPendingErr
	}
	row, ok := f.rows[invoiceID]
	return ok && row.Status().IsPending(), nil
}

func (f *fakeTransactionRepo) HasFailed(ctx context.Context, invoiceID uint) (bool, error) {
	row, ok := f.rows[invoiceID]
	return ok && row.Status().IsFailed(), nil
}

func (f *fakeTransactionRepo) SetStatus(ctx context.Context, invoiceID uint, status transaction.Status, transactionID string) error {
	if f.setStatusErr != nil {
		return f.setStatusErr
	}
	row, err := transaction.NewPendingTransaction(invoiceID, status, transactionID)
	if err != nil {
		return err
	}
	f.rows[invoiceID] = row
	return nil
}

func (f *fakeTransactionRepo) Clear(ctx context.Context, invoiceID uint) error {
	delete(f.rows, invoiceID)
	f.clearedInvoices = append(f.clearedInvoices, invoiceID)
	return nil
}

func (f *fakeTransactionRepo) GetByInvoiceID(ctx context.Context, invoiceID uint) (*transaction.PendingTransaction, error) {
	return f.rows[invoiceID], nil
}

type fakeCustomerRepo struct {
	mappings map[uint]string

	customerIDErr error
}

func newFakeCustomerRepo() *fakeCustomerRepo {
	return &fakeCustomerRepo{mappings: make(map[uint]string)}
}

func (f *fakeCustomerRepo) CustomerID(ctx context.Context, clientID uint) (string, error) {
	if f.customerIDErr != nil {
		return "", f.customerIDErr
	}
	return f.mappings[clientID], nil
}

func (f *fakeCustomerRepo) SetCustomerID(ctx context.Context, clientID uint, customerID string) error {
	f.mappings[clientID] = customerID
	return nil
}

type recordedLog struct {
	Description string
	Status      string
	Raw         map[string]any
}

type fakeRecorder struct {
	entries []recordedLog
}

func (f *fakeRecorder) Record(ctx context.Context, description, status string, raw map[string]any) error {
	f.entries = append(f.entries, recordedLog{Description: description, Status: status, Raw: raw})
	return nil
}

type recordedPayment struct {
	InvoiceID     uint
	TransactionID string
	Amount        float64
	Fee           float64
}

type recordedClientTransaction struct {
	ClientID      uint
	Description   string
	AmountOut     float64
	TransactionID string
	InvoiceID     uint
}

type fakeBillingContext struct {
	invoices map[uint]*billing.Invoice
	clients  map[uint]*billing.Client

	// rate converts EUR amounts into the invoice currency; 1.0 when unset.
	rate float64

	payments           []recordedPayment
	clientTransactions []recordedClientTransaction
	unpaidInvoices     []uint
	confirmationsSent  []uint
	failuresSent       []uint

	validateInvoiceErr error
	convertErr         error
}

func newFakeBillingContext() *fakeBillingContext {
	return &fakeBillingContext{
		invoices: make(map[uint]*billing.Invoice),
		clients:  make(map[uint]*billing.Client),
		rate:     1.0,
	}
}

func (f *fakeBillingContext) Invoice(ctx context.Context, invoiceID uint) (*billing.Invoice, error) {
	inv, ok := f.invoices[invoiceID]
	if !ok {
		return nil, apperrors.NewNotFoundError("invoice not found")
	}
	return inv, nil
}

func (f *fakeBillingContext) Client(ctx context.Context, clientID uint) (*billing.Client, error) {
	cl, ok := f.clients[clientID]
	if !ok {
		return nil, apperrors.NewNotFoundError("client not found")
	}
	return cl, nil
}

func (f *fakeBillingContext) ValidateInvoice(ctx context.Context, invoiceID uint) error {
	if f.validateInvoiceErr != nil {
		return f.validateInvoiceErr
	}
	if _, ok := f.invoices[invoiceID]; !ok {
		return apperrors.NewNotFoundError("invoice not found")
	}
	return nil
}

func (f *fakeBillingContext) ConvertFromEUR(ctx context.Context, invoiceID uint, amount float64) (float64, error) {
	if f.convertErr != nil {
		return 0, f.convertErr
	}
	return amount * f.rate, nil
}

func (f *fakeBillingContext) PaymentExists(ctx context.Context, transactionID string) (bool, error) {
	for _, p := range f.payments {
		if p.TransactionID == transactionID {
			return true, nil
		}
	}
	return false, nil
}

func (f *fakeBillingContext) AddInvoicePayment(ctx context.Context, invoiceID uint, transactionID string, amount, fee float64) error {
	f.payments = append(f.payments, recordedPayment{
		InvoiceID:     invoiceID,
		TransactionID: transactionID,
		Amount:        amount,
		Fee:           fee,
	})
	if inv, ok := f.invoices[invoiceID]; ok {
		inv.Status = billing.InvoiceStatusPaid
	}
	return nil
}

func (f *fakeBillingContext) MarkInvoiceUnpaid(ctx context.Context, invoiceID uint) error {
	f.unpaidInvoices = append(f.unpaidInvoices, invoiceID)
	if inv, ok := f.invoices[invoiceID]; ok {
		inv.Status = billing.InvoiceStatusUnpaid
	}
	return nil
}

func (f *fakeBillingContext) AddClientTransaction(ctx context.Context, clientID uint, description string, amountOut float64, transactionID string, invoiceID uint) error {
	f.clientTransactions = append(f.clientTransactions, recordedClientTransaction{
		ClientID:      clientID,
		Description:   description,
		AmountOut:     amountOut,
		TransactionID: transactionID,
		InvoiceID:     invoiceID,
	})
	return nil
}

func (f *fakeBillingContext) FindInvoiceByTransaction(ctx context.Context, transactionID string) (uint, error) {
	for _, p := range f.payments {
		if p.TransactionID == transactionID {
			return p.InvoiceID, nil
		}
	}
	return 0, nil
}

func (f *fakeBillingContext) SendPaymentConfirmation(ctx context.Context, invoiceID uint) error {
	f.confirmationsSent = append(f.confirmationsSent, invoiceID)
	return nil
}

func (f *fakeBillingContext) SendPaymentFailed(ctx context.Context, invoiceID uint) error {
	f.failuresSent = append(f.failuresSent, invoiceID)
	return nil
}

const testCatalog = `capture:
  missingapikey: "Payment for invoice %invoice% failed: no API key configured."
  paymentpending: "Payment for invoice %invoice% is still pending."
  paymentattempted: "Payment attempted for invoice %invoice% with transaction %transaction%."
  paymentfailed: "Payment for invoice %invoice% failed."
  missingcustomerid: "No customer on file for invoice %invoice%."
  novalidmandate: "No valid mandate for invoice %invoice%."
  customernotfound: "Customer %customer% for invoice %invoice% no longer exists."
link:
  paymentpending: "A payment is pending for this invoice."
  error: "The payment could not be set up."
  paynow: "Pay now"
admin:
  missingapikey: "No API key configured."
  notsetup: "Recurring payments are not set up for this client."
  paymentpending: "A payment is pending."
  paymentfailed: "The last payment attempt failed."
  novalidmandate: "The client has no valid mandate."
refund:
  missingapikey: "Refund of %transid% failed: no API key configured."
  error: "Refund of %transid% failed: %exception%"
  success: "Refunded %currency% %amount% of transaction %transid%."
`

func testTranslator(t *testing.T) *i18n.Translator {
	t.Helper()

	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "en.yaml"), []byte(testCatalog), 0o644))

	translator, err := i18n.Load(dir)
	require.NoError(t, err)
	return translator
}

func testParams() gateway.Params {
	return gateway.Params{
		Name:       "mollierecurring",
		LiveAPIKey: "live_key",
		TestAPIKey: "test_key",
		Locale:     "en",
		BaseURL:    "https://billing.example.com",
	}
}

func testLogger() logger.Interface {
	return logger.NewLogger()
}
