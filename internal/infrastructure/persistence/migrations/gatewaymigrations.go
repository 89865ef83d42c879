package migrations

import (
	"gorm.io/gorm"

	"molliebridge/internal/infrastructure/persistence/models"
)

// MigrateGatewayTables creates the module-owned tables if they are absent.
// AutoMigrate is idempotent, so this runs safely on every startup. The host
// billing tables are owned by the platform and never migrated here.
func MigrateGatewayTables(db *gorm.DB) error {
	return db.AutoMigrate(
		&models.MollieTransactionModel{},
		&models.MollieCustomerModel{},
		&models.GatewayLogModel{},
	)
}
