package repository

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"molliebridge/internal/domain/transaction"
	"molliebridge/internal/infrastructure/persistence/models"
)

type TransactionRepository struct {
	db *gorm.DB
}

func NewTransactionRepository(db *gorm.DB) *TransactionRepository {
	return &TransactionRepository{db: db}
}

var _ transaction.Repository = (*TransactionRepository)(nil)

func (r *TransactionRepository) HasPending(ctx context.Context, invoiceID uint) (bool, error) {
	return r.hasStatus(ctx, invoiceID, transaction.StatusPending)
}

func (r *TransactionRepository) HasFailed(ctx context.Context, invoiceID uint) (bool, error) {
	return r.hasStatus(ctx, invoiceID, transaction.StatusFailed)
}

func (r *TransactionRepository) hasStatus(ctx context.Context, invoiceID uint, status transaction.Status) (bool, error) {
	var count int64
	if err := r.db.WithContext(ctx).
		Model(&models.MollieTransactionModel{}).
		Where("invoice_id = ? AND status = ?", invoiceID, status.String()).
		Count(&count).Error; err != nil {
		return false, fmt.Errorf("failed to count %s transactions: %w", status, err)
	}
	return count > 0, nil
}

// SetStatus upserts the invoice's transaction row in one statement. The
// unique index on invoice_id guarantees at most one row per invoice even
// under concurrent charge attempts.
func (r *TransactionRepository) SetStatus(ctx context.Context, invoiceID uint, status transaction.Status, transactionID string) error {
	if _, err := transaction.ParseStatus(status.String()); err != nil {
		return err
	}

	model := models.MollieTransactionModel{
		InvoiceID: invoiceID,
		Status:    status.String(),
	}
	if transactionID != "" {
		model.TransactionID = &transactionID
	}

	if err := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "invoice_id"}},
			DoUpdates: clause.AssignmentColumns([]string{"transaction_id", "status", "updated_at"}),
		}).
		Create(&model).Error; err != nil {
		return fmt.Errorf("failed to upsert transaction for invoice %d: %w", invoiceID, err)
	}

	return nil
}

func (r *TransactionRepository) Clear(ctx context.Context, invoiceID uint) error {
	if err := r.db.WithContext(ctx).
		Where("invoice_id = ?", invoiceID).
		Delete(&models.MollieTransactionModel{}).Error; err != nil {
		return fmt.Errorf("failed to clear transaction for invoice %d: %w", invoiceID, err)
	}
	return nil
}

func (r *TransactionRepository) GetByInvoiceID(ctx context.Context, invoiceID uint) (*transaction.PendingTransaction, error) {
	var model models.MollieTransactionModel

	if err := r.db.WithContext(ctx).
		Where("invoice_id = ?", invoiceID).
		First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get transaction for invoice %d: %w", invoiceID, err)
	}

	status, err := transaction.ParseStatus(model.Status)
	if err != nil {
		return nil, err
	}

	return transaction.ReconstructPendingTransaction(model.InvoiceID, status, model.TransactionID), nil
}
