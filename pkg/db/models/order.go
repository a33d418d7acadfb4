package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/agritrust/agritrust-backend/pkg/enums"
)

// Order is an escrow-backed purchase of listing stock. Amount is fixed at
// creation (quantity x unit price) and never changes. Orders are never
// deleted; terminal states are retained for audit and history.
type Order struct {
	ID            uuid.UUID         `gorm:"column:id;type:uuid;primaryKey"`
	OrderNumber   int64             `gorm:"column:order_number;uniqueIndex;not null"`
	ListingID     uuid.UUID         `gorm:"column:listing_id;type:uuid;not null"`
	BuyerID       uuid.UUID         `gorm:"column:buyer_id;type:uuid;not null"`
	SellerID      uuid.UUID         `gorm:"column:seller_id;type:uuid;not null"`
	Crop          string            `gorm:"column:crop;not null"`
	QuantityKg    int               `gorm:"column:quantity_kg;not null"`
	AmountUnits   int64             `gorm:"column:amount_units;not null"`
	Status        enums.OrderStatus `gorm:"column:status;type:text;not null;default:'locked'"`
	DisputeReason *string           `gorm:"column:dispute_reason"`
	AdminReleased bool              `gorm:"column:admin_released;not null;default:false"`
	DeliveredAt   *time.Time        `gorm:"column:delivered_at"`
	ReleasedAt    *time.Time        `gorm:"column:released_at"`
	DisputedAt    *time.Time        `gorm:"column:disputed_at"`
	Listing       *Listing          `gorm:"foreignKey:ListingID"`
	Buyer         *Actor            `gorm:"foreignKey:BuyerID"`
	Seller        *Actor            `gorm:"foreignKey:SellerID"`
	CreatedAt     time.Time         `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt     time.Time         `gorm:"column:updated_at;autoUpdateTime"`
}
