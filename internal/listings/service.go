package listings

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/agritrust/agritrust-backend/pkg/db/models"
	"github.com/agritrust/agritrust-backend/pkg/enums"
	pkgerrors "github.com/agritrust/agritrust-backend/pkg/errors"
	"github.com/agritrust/agritrust-backend/pkg/pagination"
)

type actorFinder interface {
	Find(ctx context.Context, id uuid.UUID) (*models.Actor, error)
}

// Service exposes catalogue operations over produce listings.
type Service interface {
	Create(ctx context.Context, input CreateInput) (*models.Listing, error)
	Get(ctx context.Context, id uuid.UUID) (*models.Listing, error)
	Browse(ctx context.Context, input BrowseInput) (*Page, error)
	Mine(ctx context.Context, ownerID uuid.UUID) ([]models.Listing, error)
}

type service struct {
	repo   Repository
	actors actorFinder
}

// NewService wires listing dependencies.
func NewService(repo Repository, actors actorFinder) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("listings repository required")
	}
	if actors == nil {
		return nil, fmt.Errorf("actor finder required")
	}
	return &service{repo: repo, actors: actors}, nil
}

func (s *service) Create(ctx context.Context, input CreateInput) (*models.Listing, error) {
	if input.OwnerID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "owner id required")
	}
	if strings.TrimSpace(input.Crop) == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "crop required")
	}
	if strings.TrimSpace(input.Market) == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "market required")
	}
	if input.QuantityKg <= 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "quantity must be positive")
	}
	if input.PriceUnits <= 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "price must be positive")
	}

	owner, err := s.actors.Find(ctx, input.OwnerID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "owner not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load owner")
	}
	if owner.Role != enums.ActorRoleFarmer {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "only farmers can post listings")
	}

	listing := &models.Listing{
		OwnerID:    input.OwnerID,
		Crop:       strings.TrimSpace(input.Crop),
		Market:     strings.TrimSpace(input.Market),
		QuantityKg: input.QuantityKg,
		PriceUnits: input.PriceUnits,
	}
	if err := s.repo.Create(ctx, listing); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create listing")
	}
	listing.Owner = owner
	return listing, nil
}

func (s *service) Get(ctx context.Context, id uuid.UUID) (*models.Listing, error) {
	if id == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "listing id required")
	}
	listing, err := s.repo.Find(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "listing not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load listing")
	}
	return listing, nil
}

func (s *service) Browse(ctx context.Context, input BrowseInput) (*Page, error) {
	cursor, err := pagination.ParseCursor(input.Cursor)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid cursor")
	}
	limit := pagination.NormalizeLimit(input.Limit)

	rows, err := s.repo.List(ctx, ListFilter{
		Crop:   strings.TrimSpace(input.Crop),
		Search: input.Search,
	}, cursor, limit+1)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "browse listings")
	}

	page := &Page{Listings: rows}
	if len(rows) > limit {
		page.Listings = rows[:limit]
		last := page.Listings[limit-1]
		page.NextCursor = pagination.EncodeCursor(pagination.Cursor{
			CreatedAt: last.CreatedAt,
			ID:        last.ID,
		})
	}
	return page, nil
}

func (s *service) Mine(ctx context.Context, ownerID uuid.UUID) ([]models.Listing, error) {
	if ownerID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "owner id required")
	}
	rows, err := s.repo.ListByOwner(ctx, ownerID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list own listings")
	}
	return rows, nil
}
