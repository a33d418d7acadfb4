package orders

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/agritrust/agritrust-backend/pkg/db/models"
	"github.com/agritrust/agritrust-backend/pkg/enums"
)

// StatusUpdate applies one lifecycle edge to an order row.
type StatusUpdate struct {
	Status        enums.OrderStatus
	DisputeReason *string
	AdminReleased bool
	DeliveredAt   *time.Time
	ReleasedAt    *time.Time
	DisputedAt    *time.Time
}

// Repository manages persistence for escrow orders.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	Create(ctx context.Context, order *models.Order) error
	Find(ctx context.Context, id uuid.UUID) (*models.Order, error)
	ListForActor(ctx context.Context, actorID uuid.UUID) ([]models.Order, error)
	ListAll(ctx context.Context) ([]models.Order, error)
	// NextOrderNumber returns max(order_number)+1, or start when the table
	// is empty. Callers must hold a transaction to avoid duplicate numbers.
	NextOrderNumber(ctx context.Context, start int64) (int64, error)
	// UpdateStatus applies the edge only when the row is still in from,
	// reporting whether the guarded update matched.
	UpdateStatus(ctx context.Context, id uuid.UUID, from enums.OrderStatus, update StatusUpdate) (bool, error)
}

type repository struct {
	db *gorm.DB
}

// NewRepository returns an order repository bound to the provided database.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

func (r *repository) Create(ctx context.Context, order *models.Order) error {
	if order.ID == uuid.Nil {
		order.ID = uuid.New()
	}
	return r.db.WithContext(ctx).Create(order).Error
}

func (r *repository) Find(ctx context.Context, id uuid.UUID) (*models.Order, error) {
	var order models.Order
	if err := r.db.WithContext(ctx).
		Joins("Buyer").
		Joins("Seller").
		Joins("Listing").
		First(&order, "orders.id = ?", id).Error; err != nil {
		return nil, err
	}
	return &order, nil
}

func (r *repository) ListForActor(ctx context.Context, actorID uuid.UUID) ([]models.Order, error) {
	var rows []models.Order
	if err := r.db.WithContext(ctx).
		Joins("Buyer").
		Joins("Seller").
		Where("orders.buyer_id = ? OR orders.seller_id = ?", actorID, actorID).
		Order("orders.created_at DESC, orders.id DESC").
		Find(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *repository) ListAll(ctx context.Context) ([]models.Order, error) {
	var rows []models.Order
	if err := r.db.WithContext(ctx).
		Joins("Buyer").
		Joins("Seller").
		Order("orders.created_at DESC, orders.id DESC").
		Find(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *repository) NextOrderNumber(ctx context.Context, start int64) (int64, error) {
	var next int64
	if err := r.db.WithContext(ctx).
		Model(&models.Order{}).
		Select("COALESCE(MAX(order_number) + 1, ?)", start).
		Scan(&next).Error; err != nil {
		return 0, err
	}
	return next, nil
}

func (r *repository) UpdateStatus(ctx context.Context, id uuid.UUID, from enums.OrderStatus, update StatusUpdate) (bool, error) {
	values := map[string]any{"status": update.Status}
	if update.DisputeReason != nil {
		values["dispute_reason"] = *update.DisputeReason
	}
	if update.AdminReleased {
		values["admin_released"] = true
	}
	if update.DeliveredAt != nil {
		values["delivered_at"] = *update.DeliveredAt
	}
	if update.ReleasedAt != nil {
		values["released_at"] = *update.ReleasedAt
	}
	if update.DisputedAt != nil {
		values["disputed_at"] = *update.DisputedAt
	}

	res := r.db.WithContext(ctx).
		Model(&models.Order{}).
		Where("id = ? AND status = ?", id, from).
		Updates(values)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}
