package dashboard

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strconv"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/agritrust/agritrust-backend/pkg/db/models"
	"github.com/agritrust/agritrust-backend/pkg/enums"
	pkgerrors "github.com/agritrust/agritrust-backend/pkg/errors"
)

type actorFinder interface {
	Find(ctx context.Context, id uuid.UUID) (*models.Actor, error)
}

// Summary is the aggregate view backing the home screen. Admin summaries
// span the whole marketplace; farmer and buyer summaries cover only orders
// they participate in.
type Summary struct {
	ActiveOrders   int64                       `json:"active_orders"`
	DisputedOrders int64                       `json:"disputed_orders"`
	LockedUnits    int64                       `json:"locked_units"`
	ReleasedUnits  int64                       `json:"released_units"`
	ByStatus       map[enums.OrderStatus]int64 `json:"by_status"`
}

// Service exposes read-only projections over the order book.
type Service interface {
	Summarize(ctx context.Context, actorID uuid.UUID) (*Summary, error)
	// ExportOrders streams the actor's order history as CSV.
	ExportOrders(ctx context.Context, actorID uuid.UUID, w io.Writer) error
}

type service struct {
	repo   Repository
	actors actorFinder
}

// NewService wires the dashboard projections.
func NewService(repo Repository, actors actorFinder) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("dashboard repository required")
	}
	if actors == nil {
		return nil, fmt.Errorf("actor finder required")
	}
	return &service{repo: repo, actors: actors}, nil
}

func (s *service) scope(ctx context.Context, actorID uuid.UUID) (*uuid.UUID, error) {
	if actorID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "actor id required")
	}
	actor, err := s.actors.Find(ctx, actorID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "actor not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load actor")
	}
	if actor.Role == enums.ActorRoleAdmin {
		return nil, nil
	}
	scoped := actor.ID
	return &scoped, nil
}

func (s *service) Summarize(ctx context.Context, actorID uuid.UUID) (*Summary, error) {
	scope, err := s.scope(ctx, actorID)
	if err != nil {
		return nil, err
	}

	counts, err := s.repo.CountByStatus(ctx, scope)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "count orders")
	}
	locked, err := s.repo.LockedUnits(ctx, scope)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "sum locked escrow")
	}
	released, err := s.repo.ReleasedUnits(ctx, scope)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "sum released escrow")
	}

	return &Summary{
		ActiveOrders:   counts[enums.OrderStatusLocked] + counts[enums.OrderStatusDelivered],
		DisputedOrders: counts[enums.OrderStatusDisputed],
		LockedUnits:    locked,
		ReleasedUnits:  released,
		ByStatus:       counts,
	}, nil
}

var exportHeader = []string{
	"order_number", "crop", "quantity_kg", "amount_units",
	"buyer", "seller", "status", "admin_released", "created_at",
}

func (s *service) ExportOrders(ctx context.Context, actorID uuid.UUID, w io.Writer) error {
	scope, err := s.scope(ctx, actorID)
	if err != nil {
		return err
	}
	rows, err := s.repo.OrdersForExport(ctx, scope)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load orders for export")
	}

	writer := csv.NewWriter(w)
	if err := writer.Write(exportHeader); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "write export header")
	}
	for _, order := range rows {
		record := []string{
			strconv.FormatInt(order.OrderNumber, 10),
			order.Crop,
			strconv.Itoa(order.QuantityKg),
			strconv.FormatInt(order.AmountUnits, 10),
			actorName(order.Buyer),
			actorName(order.Seller),
			order.Status.String(),
			strconv.FormatBool(order.AdminReleased),
			order.CreatedAt.UTC().Format("2006-01-02T15:04:05Z"),
		}
		if err := writer.Write(record); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "write export row")
		}
	}
	writer.Flush()
	if err := writer.Error(); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "flush export")
	}
	return nil
}

func actorName(actor *models.Actor) string {
	if actor == nil {
		return ""
	}
	return actor.Name
}
