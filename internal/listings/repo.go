package listings

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/agritrust/agritrust-backend/pkg/db/models"
	"github.com/agritrust/agritrust-backend/pkg/pagination"
)

// ListFilter narrows the listing catalogue query.
type ListFilter struct {
	Crop   string
	Search string
	// IncludeEmpty keeps sold-out listings in the result set.
	IncludeEmpty bool
}

// Repository exposes persistence helpers for produce listings.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	Create(ctx context.Context, listing *models.Listing) error
	Find(ctx context.Context, id uuid.UUID) (*models.Listing, error)
	List(ctx context.Context, filter ListFilter, cursor *pagination.Cursor, limit int) ([]models.Listing, error)
	ListByOwner(ctx context.Context, ownerID uuid.UUID) ([]models.Listing, error)
	// Decrement atomically reduces remaining stock, reporting whether the
	// listing still covered the requested quantity.
	Decrement(ctx context.Context, id uuid.UUID, quantityKg int) (bool, error)
}

type repository struct {
	db *gorm.DB
}

// NewRepository returns a listings repository bound to the provided database.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

func (r *repository) Create(ctx context.Context, listing *models.Listing) error {
	if listing.ID == uuid.Nil {
		listing.ID = uuid.New()
	}
	return r.db.WithContext(ctx).Create(listing).Error
}

func (r *repository) Find(ctx context.Context, id uuid.UUID) (*models.Listing, error) {
	var listing models.Listing
	if err := r.db.WithContext(ctx).
		Joins("Owner").
		First(&listing, "listings.id = ?", id).Error; err != nil {
		return nil, err
	}
	return &listing, nil
}

func (r *repository) List(ctx context.Context, filter ListFilter, cursor *pagination.Cursor, limit int) ([]models.Listing, error) {
	query := r.db.WithContext(ctx).
		Model(&models.Listing{}).
		Joins("Owner")

	if !filter.IncludeEmpty {
		query = query.Where("listings.quantity_kg > 0")
	}
	if filter.Crop != "" {
		query = query.Where("LOWER(listings.crop) = LOWER(?)", filter.Crop)
	}
	if search := strings.TrimSpace(filter.Search); search != "" {
		needle := "%" + strings.ToLower(search) + "%"
		query = query.Where(
			"LOWER(listings.crop) LIKE ? OR LOWER(listings.market) LIKE ? OR LOWER(\"Owner\".name) LIKE ?",
			needle, needle, needle,
		)
	}
	if cursor != nil {
		query = query.Where(
			"listings.created_at < ? OR (listings.created_at = ? AND listings.id < ?)",
			cursor.CreatedAt, cursor.CreatedAt, cursor.ID,
		)
	}

	var rows []models.Listing
	if err := query.
		Order("listings.created_at DESC, listings.id DESC").
		Limit(limit).
		Find(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *repository) ListByOwner(ctx context.Context, ownerID uuid.UUID) ([]models.Listing, error) {
	var rows []models.Listing
	if err := r.db.WithContext(ctx).
		Where("owner_id = ?", ownerID).
		Order("created_at DESC, id DESC").
		Find(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *repository) Decrement(ctx context.Context, id uuid.UUID, quantityKg int) (bool, error) {
	res := r.db.WithContext(ctx).
		Model(&models.Listing{}).
		Where("id = ? AND quantity_kg >= ?", id, quantityKg).
		UpdateColumn("quantity_kg", gorm.Expr("quantity_kg - ?", quantityKg))
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}
