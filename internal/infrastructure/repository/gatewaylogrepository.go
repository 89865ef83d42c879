package repository

import (
	"context"
	"encoding/json"
	"fmt"

	"gorm.io/datatypes"
	"gorm.io/gorm"

	"molliebridge/internal/application/gateway/gatewaylog"
	"molliebridge/internal/infrastructure/persistence/models"
)

// GatewayLogRepository appends entries to the gateway transaction log.
// Sandbox entries get the [SANDBOX] prefix so operators can tell test
// traffic from real money at a glance.
type GatewayLogRepository struct {
	db      *gorm.DB
	gateway string
	sandbox bool
}

func NewGatewayLogRepository(db *gorm.DB, gateway string, sandbox bool) *GatewayLogRepository {
	return &GatewayLogRepository{db: db, gateway: gateway, sandbox: sandbox}
}

var _ gatewaylog.Recorder = (*GatewayLogRepository)(nil)

func (r *GatewayLogRepository) Record(ctx context.Context, description, status string, raw map[string]any) error {
	if r.sandbox {
		description = "[SANDBOX] " + description
	}

	model := models.GatewayLogModel{
		Gateway:     r.gateway,
		Description: description,
		Status:      status,
	}

	if len(raw) > 0 {
		data, err := json.Marshal(raw)
		if err != nil {
			return fmt.Errorf("failed to marshal raw log data: %w", err)
		}
		model.Raw = datatypes.JSON(data)
	}

	if err := r.db.WithContext(ctx).Create(&model).Error; err != nil {
		return fmt.Errorf("failed to write gateway log: %w", err)
	}

	return nil
}
