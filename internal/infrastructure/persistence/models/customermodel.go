package models

import "time"

// MollieCustomerModel maps a billing client to their Mollie customer ID.
// CustomerID holds the AEAD ciphertext; it is deliberately not unique since
// the random encryption nonce makes equal plaintexts encrypt differently.
type MollieCustomerModel struct {
	ID         uint   `gorm:"primaryKey"`
	ClientID   uint   `gorm:"uniqueIndex;not null"`
	CustomerID string `gorm:"size:255;not null"`
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

func (MollieCustomerModel) TableName() string {
	return "mod_mollie_customers"
}
