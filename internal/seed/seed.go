package seed

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"github.com/agritrust/agritrust-backend/internal/listings"
	"github.com/agritrust/agritrust-backend/internal/notifications"
	"github.com/agritrust/agritrust-backend/internal/wallet"
	"github.com/agritrust/agritrust-backend/pkg/db/models"
	"github.com/agritrust/agritrust-backend/pkg/enums"
	"github.com/agritrust/agritrust-backend/pkg/logger"
)

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

// Seeder loads the demo marketplace: three farmers with one listing each,
// a funded buyer, and an admin. Running it twice is a no-op.
type Seeder struct {
	tx       txRunner
	actors   wallet.Repository
	listings listings.Repository
	notify   notifications.Service
	logg     *logger.Logger
}

// New builds a seeder over the given repositories.
func New(tx txRunner, actors wallet.Repository, listingRepo listings.Repository, notify notifications.Service, logg *logger.Logger) (*Seeder, error) {
	if tx == nil || actors == nil || listingRepo == nil || notify == nil || logg == nil {
		return nil, fmt.Errorf("seeder requires all dependencies")
	}
	return &Seeder{tx: tx, actors: actors, listings: listingRepo, notify: notify, logg: logg}, nil
}

type seedListing struct {
	crop       string
	market     string
	quantityKg int
	priceUnits int64
}

type seedFarmer struct {
	name    string
	listing seedListing
}

var demoFarmers = []seedFarmer{
	{name: "SellerA", listing: seedListing{crop: "Wheat", market: "Kurnool", quantityKg: 1200, priceUnits: 22}},
	{name: "SellerB", listing: seedListing{crop: "Onion", market: "Nashik", quantityKg: 500, priceUnits: 14}},
	{name: "SellerC", listing: seedListing{crop: "Rice", market: "Raipur", quantityKg: 800, priceUnits: 35}},
}

const (
	demoBuyerName    = "BuyerB"
	demoBuyerBalance = 50000
	demoAdminName    = "Admin"
)

// Run inserts the demo data unless it is already present.
func (s *Seeder) Run(ctx context.Context) error {
	_, err := s.actors.FindByName(ctx, demoFarmers[0].name)
	if err == nil {
		s.logg.Info(ctx, "demo data already present, skipping seed")
		return nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return fmt.Errorf("check existing seed: %w", err)
	}

	err = s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		actorRepo := s.actors.WithTx(tx)
		listingRepo := s.listings.WithTx(tx)

		for _, farmer := range demoFarmers {
			actor := &models.Actor{Name: farmer.name, Role: enums.ActorRoleFarmer}
			if err := actorRepo.Create(ctx, actor); err != nil {
				return fmt.Errorf("seed farmer %s: %w", farmer.name, err)
			}
			listing := &models.Listing{
				OwnerID:    actor.ID,
				Crop:       farmer.listing.crop,
				Market:     farmer.listing.market,
				QuantityKg: farmer.listing.quantityKg,
				PriceUnits: farmer.listing.priceUnits,
			}
			if err := listingRepo.Create(ctx, listing); err != nil {
				return fmt.Errorf("seed listing %s: %w", farmer.listing.crop, err)
			}
		}

		buyer := &models.Actor{Name: demoBuyerName, Role: enums.ActorRoleBuyer, BalanceUnits: demoBuyerBalance}
		if err := actorRepo.Create(ctx, buyer); err != nil {
			return fmt.Errorf("seed buyer: %w", err)
		}
		if err := s.notify.Append(ctx, tx, buyer.ID,
			fmt.Sprintf("Welcome! Your wallet starts with %d units.", demoBuyerBalance)); err != nil {
			return err
		}

		admin := &models.Actor{Name: demoAdminName, Role: enums.ActorRoleAdmin}
		if err := actorRepo.Create(ctx, admin); err != nil {
			return fmt.Errorf("seed admin: %w", err)
		}
		return nil
	})
	if err != nil {
		return err
	}

	s.logg.Info(ctx, "demo data seeded")
	return nil
}
