package usecases

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"molliebridge/internal/application/gateway"
	"molliebridge/internal/application/gateway/billing"
	"molliebridge/internal/application/gateway/mollie"
	"molliebridge/internal/domain/transaction"
)

type adminStatusFixture struct {
	uc           *AdminStatusUseCase
	transactions *fakeTransactionRepo
	customers    *fakeCustomerRepo
	client       *mollie.MockClient
}

func newAdminStatusFixture(t *testing.T, params gateway.Params) *adminStatusFixture {
	t.Helper()

	f := &adminStatusFixture{
		transactions: newFakeTransactionRepo(),
		customers:    newFakeCustomerRepo(),
		client:       mollie.NewMockClient(),
	}
	f.uc = NewAdminStatusUseCase(params, f.transactions, f.customers, f.client, testTranslator(t), testLogger())
	return f
}

func adminStatusCommand() AdminStatusCommand {
	return AdminStatusCommand{
		InvoiceID:     42,
		ClientID:      7,
		InvoiceStatus: billing.InvoiceStatusUnpaid,
	}
}

func TestAdminStatusMissingAPIKey(t *testing.T) {
	params := testParams()
	params.LiveAPIKey = ""
	f := newAdminStatusFixture(t, params)

	result := f.uc.Execute(context.Background(), adminStatusCommand())

	require.NotNil(t, result)
	assert.Equal(t, "error", result.Type)
	assert.Contains(t, result.Message, "API key")
	assert.Equal(t, "mollierecurring", result.Title)
}

func TestAdminStatusNonUnpaidInvoice(t *testing.T) {
	f := newAdminStatusFixture(t, testParams())

	cmd := adminStatusCommand()
	cmd.InvoiceStatus = billing.InvoiceStatusPaid

	assert.Nil(t, f.uc.Execute(context.Background(), cmd))
}

func TestAdminStatusNotSetUp(t *testing.T) {
	f := newAdminStatusFixture(t, testParams())

	result := f.uc.Execute(context.Background(), adminStatusCommand())

	require.NotNil(t, result)
	assert.Equal(t, "error", result.Type)
	assert.Contains(t, result.Message, "not set up")
}

func TestAdminStatusPendingBeatsFailedAndMandate(t *testing.T) {
	f := newAdminStatusFixture(t, testParams())

	f.customers.mappings[7] = "cst_abc"
	require.NoError(t, f.transactions.SetStatus(context.Background(), 42, transaction.StatusPending, "tr_1"))

	result := f.uc.Execute(context.Background(), adminStatusCommand())

	require.NotNil(t, result)
	assert.Equal(t, "info", result.Type)
	assert.Contains(t, result.Message, "pending")
}

func TestAdminStatusFailed(t *testing.T) {
	f := newAdminStatusFixture(t, testParams())

	f.customers.mappings[7] = "cst_abc"
	require.NoError(t, f.transactions.SetStatus(context.Background(), 42, transaction.StatusFailed, ""))

	result := f.uc.Execute(context.Background(), adminStatusCommand())

	require.NotNil(t, result)
	assert.Equal(t, "error", result.Type)
	assert.Contains(t, result.Message, "failed")
}

func TestAdminStatusNoValidMandate(t *testing.T) {
	f := newAdminStatusFixture(t, testParams())

	f.customers.mappings[7] = "cst_abc"
	f.client.Customers["cst_abc"] = &mollie.Customer{ID: "cst_abc", HasValidMandate: false}

	result := f.uc.Execute(context.Background(), adminStatusCommand())

	require.NotNil(t, result)
	assert.Equal(t, "error", result.Type)
	assert.Contains(t, result.Message, "mandate")
}

func TestAdminStatusProcessorErrorDegradesToNotSetUp(t *testing.T) {
	f := newAdminStatusFixture(t, testParams())

	// Mapping exists but the customer is gone at Mollie.
	f.customers.mappings[7] = "cst_gone"

	result := f.uc.Execute(context.Background(), adminStatusCommand())

	require.NotNil(t, result)
	assert.Contains(t, result.Message, "not set up")
}

func TestAdminStatusHealthyMandateSaysNothing(t *testing.T) {
	f := newAdminStatusFixture(t, testParams())

	f.customers.mappings[7] = "cst_abc"
	f.client.Customers["cst_abc"] = &mollie.Customer{ID: "cst_abc", HasValidMandate: true}

	assert.Nil(t, f.uc.Execute(context.Background(), adminStatusCommand()))
}
