package wallet

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/agritrust/agritrust-backend/pkg/db/models"
)

// Repository manages persistence for actors and their wallet balances.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	Create(ctx context.Context, actor *models.Actor) error
	Find(ctx context.Context, actorID uuid.UUID) (*models.Actor, error)
	FindByName(ctx context.Context, name string) (*models.Actor, error)
	// Credit unconditionally adds amount to the actor's balance.
	Credit(ctx context.Context, actorID uuid.UUID, amount int64) (bool, error)
	// Debit subtracts amount only when the balance covers it. The guard is
	// a conditional UPDATE so a failed debit never partially applies.
	Debit(ctx context.Context, actorID uuid.UUID, amount int64) (bool, error)
}

type repository struct {
	db *gorm.DB
}

// NewRepository returns a wallet repository bound to the provided database.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

func (r *repository) Create(ctx context.Context, actor *models.Actor) error {
	if actor.ID == uuid.Nil {
		actor.ID = uuid.New()
	}
	return r.db.WithContext(ctx).Create(actor).Error
}

func (r *repository) Find(ctx context.Context, actorID uuid.UUID) (*models.Actor, error) {
	var actor models.Actor
	if err := r.db.WithContext(ctx).First(&actor, "id = ?", actorID).Error; err != nil {
		return nil, err
	}
	return &actor, nil
}

func (r *repository) FindByName(ctx context.Context, name string) (*models.Actor, error) {
	var actor models.Actor
	if err := r.db.WithContext(ctx).First(&actor, "name = ?", name).Error; err != nil {
		return nil, err
	}
	return &actor, nil
}

func (r *repository) Credit(ctx context.Context, actorID uuid.UUID, amount int64) (bool, error) {
	res := r.db.WithContext(ctx).Model(&models.Actor{}).
		Where("id = ?", actorID).
		UpdateColumn("balance_units", gorm.Expr("balance_units + ?", amount))
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

func (r *repository) Debit(ctx context.Context, actorID uuid.UUID, amount int64) (bool, error) {
	res := r.db.WithContext(ctx).Model(&models.Actor{}).
		Where("id = ? AND balance_units >= ?", actorID, amount).
		UpdateColumn("balance_units", gorm.Expr("balance_units - ?", amount))
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}
