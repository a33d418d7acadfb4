package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/agritrust/agritrust-backend/pkg/enums"
)

// EscrowEvent records an immutable money lifecycle event. Order-scoped
// events carry the order id; wallet deposits and withdrawals carry only
// the actor. The table is append-only.
type EscrowEvent struct {
	ID          uuid.UUID             `gorm:"column:id;type:uuid;primaryKey"`
	OrderID     *uuid.UUID            `gorm:"column:order_id;type:uuid"`
	ActorID     uuid.UUID             `gorm:"column:actor_id;type:uuid;not null"`
	Type        enums.EscrowEventType `gorm:"column:type;type:text;not null"`
	AmountUnits int64                 `gorm:"column:amount_units;not null"`
	CreatedAt   time.Time             `gorm:"column:created_at;autoCreateTime"`
}
