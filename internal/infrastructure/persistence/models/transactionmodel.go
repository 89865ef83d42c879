package models

import "time"

// MollieTransactionModel tracks the single in-flight transaction per
// invoice. The unique index on InvoiceID makes the upsert in the repository
// atomic; two racing charge attempts collapse into one row.
type MollieTransactionModel struct {
	ID            uint    `gorm:"primaryKey"`
	InvoiceID     uint    `gorm:"uniqueIndex;not null"`
	TransactionID *string `gorm:"size:64;uniqueIndex"`
	Status        string  `gorm:"size:16;not null"`
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

func (MollieTransactionModel) TableName() string {
	return "mod_mollie_transactions"
}
