package repository

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"molliebridge/internal/domain/customer"
	"molliebridge/internal/infrastructure/crypto"
	"molliebridge/internal/infrastructure/persistence/models"
	"molliebridge/internal/shared/logger"
)

type CustomerRepository struct {
	db     *gorm.DB
	cipher *crypto.Cipher
	logger logger.Interface
}

func NewCustomerRepository(db *gorm.DB, cipher *crypto.Cipher, logger logger.Interface) *CustomerRepository {
	return &CustomerRepository{db: db, cipher: cipher, logger: logger}
}

var _ customer.Repository = (*CustomerRepository)(nil)

// CustomerID returns the decrypted Mollie customer ID for the client, or ""
// when no mapping exists. Decryption failures (key rotation, corrupted
// blob) also yield "" so the flow recreates the customer instead of dying.
func (r *CustomerRepository) CustomerID(ctx context.Context, clientID uint) (string, error) {
	var model models.MollieCustomerModel

	if err := r.db.WithContext(ctx).
		Where("client_id = ?", clientID).
		First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return "", nil
		}
		return "", fmt.Errorf("failed to get customer mapping for client %d: %w", clientID, err)
	}

	if model.CustomerID == "" {
		return "", nil
	}

	customerID, err := r.cipher.Decrypt(model.CustomerID)
	if err != nil {
		r.logger.Warnw("stored customer ID could not be decrypted, treating as unset",
			"client_id", clientID, "error", err)
		return "", nil
	}

	return customerID, nil
}

// SetCustomerID upserts the mapping. An empty customerID unlinks the client
// without deleting the row.
func (r *CustomerRepository) SetCustomerID(ctx context.Context, clientID uint, customerID string) error {
	mapping, err := customer.NewMapping(clientID, customerID)
	if err != nil {
		return err
	}

	stored := ""
	if mapping.CustomerID() != "" {
		encrypted, err := r.cipher.Encrypt(mapping.CustomerID())
		if err != nil {
			return fmt.Errorf("failed to encrypt customer ID: %w", err)
		}
		stored = encrypted
	}

	model := models.MollieCustomerModel{
		ClientID:   mapping.ClientID(),
		CustomerID: stored,
	}

	if err := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "client_id"}},
			DoUpdates: clause.AssignmentColumns([]string{"customer_id", "updated_at"}),
		}).
		Create(&model).Error; err != nil {
		return fmt.Errorf("failed to upsert customer mapping for client %d: %w", clientID, err)
	}

	return nil
}
