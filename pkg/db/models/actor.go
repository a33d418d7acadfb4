package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/agritrust/agritrust-backend/pkg/enums"
)

// Actor is a marketplace party holding a wallet balance. Balances only
// move through wallet operations; they never go negative.
type Actor struct {
	ID           uuid.UUID       `gorm:"column:id;type:uuid;primaryKey"`
	Name         string          `gorm:"column:name;not null"`
	Role         enums.ActorRole `gorm:"column:role;type:text;not null"`
	BalanceUnits int64           `gorm:"column:balance_units;not null;default:0"`
	CreatedAt    time.Time       `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt    time.Time       `gorm:"column:updated_at;autoUpdateTime"`
}
