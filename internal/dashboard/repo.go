package dashboard

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/agritrust/agritrust-backend/pkg/db/models"
	"github.com/agritrust/agritrust-backend/pkg/enums"
)

// escrowHolding are the statuses whose funds still sit in escrow.
var escrowHolding = []enums.OrderStatus{
	enums.OrderStatusLocked,
	enums.OrderStatusDelivered,
	enums.OrderStatusDisputed,
}

// Repository answers aggregate questions over orders for dashboards.
type Repository interface {
	CountByStatus(ctx context.Context, scope *uuid.UUID) (map[enums.OrderStatus]int64, error)
	// LockedUnits sums escrowed amounts over orders whose funds have not
	// been released.
	LockedUnits(ctx context.Context, scope *uuid.UUID) (int64, error)
	ReleasedUnits(ctx context.Context, scope *uuid.UUID) (int64, error)
	OrdersForExport(ctx context.Context, scope *uuid.UUID) ([]models.Order, error)
}

type repository struct {
	db *gorm.DB
}

// NewRepository returns a dashboard repository bound to the provided database.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) scoped(ctx context.Context, scope *uuid.UUID) *gorm.DB {
	query := r.db.WithContext(ctx).Model(&models.Order{})
	if scope != nil {
		query = query.Where("buyer_id = ? OR seller_id = ?", *scope, *scope)
	}
	return query
}

func (r *repository) CountByStatus(ctx context.Context, scope *uuid.UUID) (map[enums.OrderStatus]int64, error) {
	type row struct {
		Status enums.OrderStatus
		Total  int64
	}
	var rows []row
	if err := r.scoped(ctx, scope).
		Select("status, COUNT(*) AS total").
		Group("status").
		Scan(&rows).Error; err != nil {
		return nil, err
	}
	counts := make(map[enums.OrderStatus]int64, len(rows))
	for _, entry := range rows {
		counts[entry.Status] = entry.Total
	}
	return counts, nil
}

func (r *repository) LockedUnits(ctx context.Context, scope *uuid.UUID) (int64, error) {
	var total int64
	if err := r.scoped(ctx, scope).
		Select("COALESCE(SUM(amount_units), 0)").
		Where("status IN ?", escrowHolding).
		Scan(&total).Error; err != nil {
		return 0, err
	}
	return total, nil
}

func (r *repository) ReleasedUnits(ctx context.Context, scope *uuid.UUID) (int64, error) {
	var total int64
	if err := r.scoped(ctx, scope).
		Select("COALESCE(SUM(amount_units), 0)").
		Where("status = ?", enums.OrderStatusReleased).
		Scan(&total).Error; err != nil {
		return 0, err
	}
	return total, nil
}

func (r *repository) OrdersForExport(ctx context.Context, scope *uuid.UUID) ([]models.Order, error) {
	query := r.db.WithContext(ctx).
		Joins("Buyer").
		Joins("Seller")
	if scope != nil {
		query = query.Where("orders.buyer_id = ? OR orders.seller_id = ?", *scope, *scope)
	}
	var rows []models.Order
	if err := query.
		Order("orders.order_number ASC").
		Find(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}
