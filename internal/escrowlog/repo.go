package escrowlog

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/agritrust/agritrust-backend/pkg/db/models"
)

// Repository manages persistence for escrow audit events. The table is
// append-only: no update or delete surface exists.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	Create(ctx context.Context, event *models.EscrowEvent) error
	ListByOrderID(ctx context.Context, orderID uuid.UUID) ([]models.EscrowEvent, error)
	ListByActorID(ctx context.Context, actorID uuid.UUID) ([]models.EscrowEvent, error)
}

type repository struct {
	db *gorm.DB
}

// NewRepository returns an escrow event repository bound to the provided database.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

func (r *repository) Create(ctx context.Context, event *models.EscrowEvent) error {
	if event.ID == uuid.Nil {
		event.ID = uuid.New()
	}
	return r.db.WithContext(ctx).Create(event).Error
}

func (r *repository) ListByOrderID(ctx context.Context, orderID uuid.UUID) ([]models.EscrowEvent, error) {
	var events []models.EscrowEvent
	if err := r.db.WithContext(ctx).
		Where("order_id = ?", orderID).
		Order("created_at ASC").
		Find(&events).Error; err != nil {
		return nil, err
	}
	return events, nil
}

func (r *repository) ListByActorID(ctx context.Context, actorID uuid.UUID) ([]models.EscrowEvent, error) {
	var events []models.EscrowEvent
	if err := r.db.WithContext(ctx).
		Where("actor_id = ?", actorID).
		Order("created_at ASC").
		Find(&events).Error; err != nil {
		return nil, err
	}
	return events, nil
}
