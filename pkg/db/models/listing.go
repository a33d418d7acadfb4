package models

import (
	"time"

	"github.com/google/uuid"
)

// Listing is a farmer's standing offer of a quantity of a crop at a fixed
// unit price. Quantity is decremented by purchases; the unit price is
// immutable after creation. Sold-out listings stay on record with
// quantity 0 and are excluded from browse results.
type Listing struct {
	ID         uuid.UUID `gorm:"column:id;type:uuid;primaryKey"`
	OwnerID    uuid.UUID `gorm:"column:owner_id;type:uuid;not null"`
	Crop       string    `gorm:"column:crop;not null"`
	Market     string    `gorm:"column:market;not null"`
	QuantityKg int       `gorm:"column:quantity_kg;not null"`
	PriceUnits int64     `gorm:"column:price_units;not null"`
	Owner      *Actor    `gorm:"foreignKey:OwnerID"`
	CreatedAt  time.Time `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt  time.Time `gorm:"column:updated_at;autoUpdateTime"`
}
