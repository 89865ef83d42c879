package repository

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"molliebridge/internal/domain/transaction"
	"molliebridge/internal/infrastructure/crypto"
	"molliebridge/internal/infrastructure/persistence/migrations"
	"molliebridge/internal/infrastructure/persistence/models"
	"molliebridge/internal/shared/logger"
)

func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, migrations.MigrateGatewayTables(db))

	return db
}

func TestTransactionRepositoryUpsertKeepsOneRowPerInvoice(t *testing.T) {
	db := setupTestDB(t)
	repo := NewTransactionRepository(db)
	ctx := context.Background()

	require.NoError(t, repo.SetStatus(ctx, 42, transaction.StatusFailed, ""))
	require.NoError(t, repo.SetStatus(ctx, 42, transaction.StatusPending, "tr_123"))

	var count int64
	require.NoError(t, db.Model(&models.MollieTransactionModel{}).Where("invoice_id = ?", 42).Count(&count).Error)
	assert.EqualValues(t, 1, count, "upsert must collapse into a single row")

	row, err := repo.GetByInvoiceID(ctx, 42)
	require.NoError(t, err)
	require.NotNil(t, row)
	assert.Equal(t, transaction.StatusPending, row.Status())
	assert.Equal(t, "tr_123", row.TransactionID())
}

func TestTransactionRepositoryStatusChecks(t *testing.T) {
	db := setupTestDB(t)
	repo := NewTransactionRepository(db)
	ctx := context.Background()

	pending, err := repo.HasPending(ctx, 42)
	require.NoError(t, err)
	assert.False(t, pending)

	require.NoError(t, repo.SetStatus(ctx, 42, transaction.StatusPending, "tr_123"))

	pending, err = repo.HasPending(ctx, 42)
	require.NoError(t, err)
	assert.True(t, pending)

	failed, err := repo.HasFailed(ctx, 42)
	require.NoError(t, err)
	assert.False(t, failed)

	require.NoError(t, repo.SetStatus(ctx, 42, transaction.StatusFailed, ""))

	failed, err = repo.HasFailed(ctx, 42)
	require.NoError(t, err)
	assert.True(t, failed)
	pending, err = repo.HasPending(ctx, 42)
	require.NoError(t, err)
	assert.False(t, pending)
}

func TestTransactionRepositoryFailedRowStoresNullTransactionID(t *testing.T) {
	db := setupTestDB(t)
	repo := NewTransactionRepository(db)
	ctx := context.Background()

	require.NoError(t, repo.SetStatus(ctx, 42, transaction.StatusFailed, ""))

	var model models.MollieTransactionModel
	require.NoError(t, db.Where("invoice_id = ?", 42).First(&model).Error)
	assert.Nil(t, model.TransactionID, "empty transaction ID must be stored as NULL, not \"\"")
}

func TestTransactionRepositoryClear(t *testing.T) {
	db := setupTestDB(t)
	repo := NewTransactionRepository(db)
	ctx := context.Background()

	require.NoError(t, repo.SetStatus(ctx, 42, transaction.StatusPending, "tr_123"))
	require.NoError(t, repo.Clear(ctx, 42))

	row, err := repo.GetByInvoiceID(ctx, 42)
	require.NoError(t, err)
	assert.Nil(t, row)

	// Clearing an absent row is not an error.
	require.NoError(t, repo.Clear(ctx, 42))
}

func TestTransactionRepositoryRejectsInvalidStatus(t *testing.T) {
	db := setupTestDB(t)
	repo := NewTransactionRepository(db)

	err := repo.SetStatus(context.Background(), 42, transaction.Status("paid"), "tr_123")
	assert.Error(t, err)
}

func newCustomerRepo(t *testing.T, db *gorm.DB) (*CustomerRepository, *crypto.Cipher) {
	t.Helper()

	cipher, err := crypto.NewCipher("test-secret")
	require.NoError(t, err)
	return NewCustomerRepository(db, cipher, logger.NewLogger()), cipher
}

func TestCustomerRepositoryRoundTrip(t *testing.T) {
	db := setupTestDB(t)
	repo, _ := newCustomerRepo(t, db)
	ctx := context.Background()

	customerID, err := repo.CustomerID(ctx, 7)
	require.NoError(t, err)
	assert.Empty(t, customerID)

	require.NoError(t, repo.SetCustomerID(ctx, 7, "cst_abc"))

	customerID, err = repo.CustomerID(ctx, 7)
	require.NoError(t, err)
	assert.Equal(t, "cst_abc", customerID)

	// The stored value is ciphertext, not the plain customer ID.
	var model models.MollieCustomerModel
	require.NoError(t, db.Where("client_id = ?", 7).First(&model).Error)
	assert.NotEqual(t, "cst_abc", model.CustomerID)
	assert.NotContains(t, model.CustomerID, "cst_abc")
}

func TestCustomerRepositoryUnlink(t *testing.T) {
	db := setupTestDB(t)
	repo, _ := newCustomerRepo(t, db)
	ctx := context.Background()

	require.NoError(t, repo.SetCustomerID(ctx, 7, "cst_abc"))
	require.NoError(t, repo.SetCustomerID(ctx, 7, ""))

	customerID, err := repo.CustomerID(ctx, 7)
	require.NoError(t, err)
	assert.Empty(t, customerID)

	var count int64
	require.NoError(t, db.Model(&models.MollieCustomerModel{}).Where("client_id = ?", 7).Count(&count).Error)
	assert.EqualValues(t, 1, count, "unlinking keeps the row with an empty value")
}

func TestCustomerRepositoryUndecryptableValueReadsAsUnset(t *testing.T) {
	db := setupTestDB(t)
	repo, _ := newCustomerRepo(t, db)
	ctx := context.Background()

	// Simulate a value written under a different key.
	otherCipher, err := crypto.NewCipher("other-secret")
	require.NoError(t, err)
	foreign, err := otherCipher.Encrypt("cst_abc")
	require.NoError(t, err)
	require.NoError(t, db.Create(&models.MollieCustomerModel{ClientID: 7, CustomerID: foreign}).Error)

	customerID, err := repo.CustomerID(ctx, 7)
	require.NoError(t, err)
	assert.Empty(t, customerID, "undecryptable mapping must read as unset, not fail")
}

func TestGatewayLogRepositoryRecord(t *testing.T) {
	db := setupTestDB(t)
	repo := NewGatewayLogRepository(db, "mollierecurring", false)

	err := repo.Record(context.Background(), "Payment tr_123 completed successfully - invoice 42.", "Success", map[string]any{
		"transaction_id": "tr_123",
		"amount":         11.0,
	})
	require.NoError(t, err)

	var entry models.GatewayLogModel
	require.NoError(t, db.First(&entry).Error)
	assert.Equal(t, "mollierecurring", entry.Gateway)
	assert.Equal(t, "Success", entry.Status)
	assert.NotContains(t, entry.Description, "[SANDBOX]")
	assert.Contains(t, string(entry.Raw), "tr_123")
}

func TestGatewayLogRepositorySandboxPrefix(t *testing.T) {
	db := setupTestDB(t)
	repo := NewGatewayLogRepository(db, "mollierecurring", true)

	require.NoError(t, repo.Record(context.Background(), "Payment tr_123 completed successfully - invoice 42.", "Success", nil))

	var entry models.GatewayLogModel
	require.NoError(t, db.First(&entry).Error)
	assert.Equal(t, "[SANDBOX] Payment tr_123 completed successfully - invoice 42.", entry.Description)
}
