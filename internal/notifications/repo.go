package notifications

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/agritrust/agritrust-backend/pkg/db/models"
)

// Repository exposes persistence helpers for the notification log.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	Create(ctx context.Context, notification *models.Notification) error
	// PruneBeyond deletes rows older than the actor's newest keep entries.
	PruneBeyond(ctx context.Context, actorID uuid.UUID, keep int) (int64, error)
	ListRecent(ctx context.Context, actorID uuid.UUID, limit int) ([]models.Notification, error)
	CountByActor(ctx context.Context, actorID uuid.UUID) (int64, error)
}

type repositoryImpl struct {
	db *gorm.DB
}

// NewRepository returns a notifications repository bound to the provided database.
func NewRepository(db *gorm.DB) Repository {
	return &repositoryImpl{db: db}
}

func (r *repositoryImpl) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repositoryImpl{db: tx}
}

func (r *repositoryImpl) Create(ctx context.Context, notification *models.Notification) error {
	if notification.ID == uuid.Nil {
		notification.ID = uuid.New()
	}
	return r.db.WithContext(ctx).Create(notification).Error
}

func (r *repositoryImpl) PruneBeyond(ctx context.Context, actorID uuid.UUID, keep int) (int64, error) {
	if keep <= 0 {
		return 0, nil
	}

	var keepIDs []uuid.UUID
	if err := r.db.WithContext(ctx).
		Model(&models.Notification{}).
		Where("actor_id = ?", actorID).
		Order("created_at DESC, id DESC").
		Limit(keep).
		Pluck("id", &keepIDs).Error; err != nil {
		return 0, err
	}

	res := r.db.WithContext(ctx).
		Where("actor_id = ? AND id NOT IN ?", actorID, keepIDs).
		Delete(&models.Notification{})
	if res.Error != nil {
		return 0, res.Error
	}
	return res.RowsAffected, nil
}

func (r *repositoryImpl) ListRecent(ctx context.Context, actorID uuid.UUID, limit int) ([]models.Notification, error) {
	var notifications []models.Notification
	if err := r.db.WithContext(ctx).
		Where("actor_id = ?", actorID).
		Order("created_at DESC, id DESC").
		Limit(limit).
		Find(&notifications).Error; err != nil {
		return nil, err
	}
	return notifications, nil
}

func (r *repositoryImpl) CountByActor(ctx context.Context, actorID uuid.UUID) (int64, error) {
	var count int64
	if err := r.db.WithContext(ctx).
		Model(&models.Notification{}).
		Where("actor_id = ?", actorID).
		Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}
