package models

import (
	"time"

	"github.com/google/uuid"
)

// Notification stores a human-readable event line scoped to an actor.
// Rows beyond the retention cap are pruned oldest-first on append.
type Notification struct {
	ID        uuid.UUID `gorm:"column:id;type:uuid;primaryKey"`
	ActorID   uuid.UUID `gorm:"column:actor_id;type:uuid;not null"`
	Message   string    `gorm:"column:message;type:text;not null"`
	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime"`
}
