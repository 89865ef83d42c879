package models

import (
	"time"

	"gorm.io/datatypes"
)

// GatewayLogModel is the operator-facing gateway transaction log. Raw keeps
// the structured payload of the logged event for diagnostics.
type GatewayLogModel struct {
	ID          uint   `gorm:"primaryKey"`
	Gateway     string `gorm:"size:32;index;not null"`
	Description string `gorm:"type:text"`
	Status      string `gorm:"size:20;not null"`
	Raw         datatypes.JSON
	CreatedAt   time.Time
}

func (GatewayLogModel) TableName() string {
	return "mod_gateway_log"
}
