package transaction

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewPendingTransaction(t *testing.T) {
	tests := []struct {
		name          string
		invoiceID     uint
		status        Status
		transactionID string
		wantErr       bool
	}{
		{name: "pending with transaction ID", invoiceID: 42, status: StatusPending, transactionID: "tr_123"},
		{name: "failed without transaction ID", invoiceID: 42, status: StatusFailed},
		{name: "zero invoice ID", invoiceID: 0, status: StatusPending, wantErr: true},
		{name: "invalid status", invoiceID: 42, status: Status("paid"), wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			row, err := NewPendingTransaction(tt.invoiceID, tt.status, tt.transactionID)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.invoiceID, row.InvoiceID())
			assert.Equal(t, tt.status, row.Status())
			assert.Equal(t, tt.transactionID, row.TransactionID())
		})
	}
}

func TestParseStatus(t *testing.T) {
	for _, valid := range []string{"pending", "failed"} {
		status, err := ParseStatus(valid)
		require.NoError(t, err)
		assert.Equal(t, valid, status.String())
	}

	for _, invalid := range []string{"", "paid", "charged_back", "PENDING"} {
		_, err := ParseStatus(invalid)
		assert.Error(t, err, invalid)
	}
}
