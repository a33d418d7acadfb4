package orders

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/agritrust/agritrust-backend/internal/escrowlog"
	"github.com/agritrust/agritrust-backend/internal/listings"
	"github.com/agritrust/agritrust-backend/internal/notifications"
	"github.com/agritrust/agritrust-backend/internal/wallet"
	"github.com/agritrust/agritrust-backend/pkg/db"
	"github.com/agritrust/agritrust-backend/pkg/db/models"
	"github.com/agritrust/agritrust-backend/pkg/enums"
	pkgerrors "github.com/agritrust/agritrust-backend/pkg/errors"
	"github.com/agritrust/agritrust-backend/pkg/logger"
	"github.com/agritrust/agritrust-backend/pkg/metrics"
)

// DefaultOrderNumberStart is the first human-facing order number assigned
// when the order table is empty.
const DefaultOrderNumberStart = 1000

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

type actorFinder interface {
	Find(ctx context.Context, id uuid.UUID) (*models.Actor, error)
}

// Service drives the escrow order lifecycle. Every transition runs inside
// one transaction covering the status edge, any wallet movement, the audit
// event, and the notifications it fans out.
type Service interface {
	Place(ctx context.Context, input PlaceInput) (*models.Order, error)
	MarkDelivered(ctx context.Context, actorID, orderID uuid.UUID) (*models.Order, error)
	ConfirmReceipt(ctx context.Context, actorID, orderID uuid.UUID) (*models.Order, error)
	RaiseDispute(ctx context.Context, input DisputeInput) (*models.Order, error)
	ForceRelease(ctx context.Context, adminID, orderID uuid.UUID) (*models.Order, error)
	Get(ctx context.Context, actorID, orderID uuid.UUID) (*models.Order, error)
	ListForActor(ctx context.Context, actorID uuid.UUID) ([]models.Order, error)
	Timeline(ctx context.Context, actorID, orderID uuid.UUID) ([]models.EscrowEvent, error)
}

// Config tunes order behavior that is not derivable from the data itself.
type Config struct {
	OrderNumberStart int64
}

type service struct {
	repo     Repository
	listings listings.Repository
	actors   actorFinder
	wallets  wallet.Service
	events   escrowlog.Service
	notify   notifications.Service
	tx       txRunner
	metrics  *metrics.EscrowMetrics
	logg     *logger.Logger
	cfg      Config
}

// NewService wires the order state machine with its collaborators.
func NewService(
	repo Repository,
	listingRepo listings.Repository,
	actors actorFinder,
	wallets wallet.Service,
	events escrowlog.Service,
	notify notifications.Service,
	tx txRunner,
	escrowMetrics *metrics.EscrowMetrics,
	logg *logger.Logger,
	cfg Config,
) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("order repository required")
	}
	if listingRepo == nil {
		return nil, fmt.Errorf("listings repository required")
	}
	if actors == nil {
		return nil, fmt.Errorf("actor finder required")
	}
	if wallets == nil {
		return nil, fmt.Errorf("wallet service required")
	}
	if events == nil {
		return nil, fmt.Errorf("escrow log service required")
	}
	if notify == nil {
		return nil, fmt.Errorf("notifications service required")
	}
	if tx == nil {
		return nil, fmt.Errorf("transaction runner required")
	}
	if logg == nil {
		return nil, fmt.Errorf("logger required")
	}
	if cfg.OrderNumberStart <= 0 {
		cfg.OrderNumberStart = DefaultOrderNumberStart
	}
	return &service{
		repo:     repo,
		listings: listingRepo,
		actors:   actors,
		wallets:  wallets,
		events:   events,
		notify:   notify,
		tx:       tx,
		metrics:  escrowMetrics,
		logg:     logg,
		cfg:      cfg,
	}, nil
}

func (s *service) Place(ctx context.Context, input PlaceInput) (*models.Order, error) {
	if input.BuyerID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "buyer id required")
	}
	if input.ListingID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "listing id required")
	}
	if input.QuantityKg <= 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "quantity must be positive")
	}

	buyer, err := s.findActor(ctx, input.BuyerID)
	if err != nil {
		return nil, err
	}
	if buyer.Role != enums.ActorRoleBuyer {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "only buyers can place orders")
	}

	listing, err := s.listings.Find(ctx, input.ListingID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "listing not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load listing")
	}
	if listing.OwnerID == buyer.ID {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "cannot order own listing")
	}

	amount := int64(input.QuantityKg) * listing.PriceUnits

	var order *models.Order
	err = s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		ok, err := s.listings.WithTx(tx).Decrement(ctx, listing.ID, input.QuantityKg)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "reserve listing stock")
		}
		if !ok {
			return pkgerrors.New(pkgerrors.CodeInsufficientStock, "listing stock does not cover quantity").
				WithDetails(map[string]any{"available_kg": listing.QuantityKg, "requested_kg": input.QuantityKg})
		}

		if err := s.wallets.Debit(ctx, tx, buyer.ID, amount); err != nil {
			return err
		}

		repo := s.repo.WithTx(tx)
		number, err := repo.NextOrderNumber(ctx, s.cfg.OrderNumberStart)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "assign order number")
		}

		order = &models.Order{
			OrderNumber: number,
			ListingID:   listing.ID,
			BuyerID:     buyer.ID,
			SellerID:    listing.OwnerID,
			Crop:        listing.Crop,
			QuantityKg:  input.QuantityKg,
			AmountUnits: amount,
			Status:      enums.OrderStatusLocked,
		}
		if err := repo.Create(ctx, order); err != nil {
			// Concurrent placements can race on MAX(order_number)+1.
			if db.IsUniqueViolation(err, "") {
				return pkgerrors.Wrap(pkgerrors.CodeConflict, err, "order number taken, retry placement")
			}
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create order")
		}

		if _, err := s.events.RecordEvent(ctx, tx, escrowlog.RecordEventInput{
			OrderID:     &order.ID,
			ActorID:     buyer.ID,
			Type:        enums.EscrowEventTypeEscrowLocked,
			AmountUnits: amount,
		}); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "record escrow lock")
		}

		if err := s.notify.Append(ctx, tx, buyer.ID,
			fmt.Sprintf("Order #%d placed: %d units locked in escrow for %d kg %s", number, amount, input.QuantityKg, listing.Crop)); err != nil {
			return err
		}
		return s.notify.Append(ctx, tx, listing.OwnerID,
			fmt.Sprintf("New order #%d: %s bought %d kg %s, %d units held in escrow", number, buyer.Name, input.QuantityKg, listing.Crop, amount))
	})
	if err != nil {
		return nil, err
	}

	s.metrics.ObserveTransition(enums.EscrowEventTypeEscrowLocked, amount)
	s.logg.Info(s.logg.WithOrderID(ctx, order.ID.String()), "escrow locked")
	return s.repo.Find(ctx, order.ID)
}

func (s *service) MarkDelivered(ctx context.Context, actorID, orderID uuid.UUID) (*models.Order, error) {
	order, err := s.loadOrder(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if order.SellerID != actorID {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "only the seller can mark delivery")
	}
	if err := s.requireTransition(order, enums.OrderStatusDelivered); err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	err = s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		if err := s.applyEdge(ctx, tx, order, StatusUpdate{
			Status:      enums.OrderStatusDelivered,
			DeliveredAt: &now,
		}); err != nil {
			return err
		}
		if _, err := s.events.RecordEvent(ctx, tx, escrowlog.RecordEventInput{
			OrderID:     &order.ID,
			ActorID:     actorID,
			Type:        enums.EscrowEventTypeDeliveryMarked,
			AmountUnits: order.AmountUnits,
		}); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "record delivery event")
		}
		return s.notify.Append(ctx, tx, order.BuyerID,
			fmt.Sprintf("Order #%d marked delivered: confirm receipt to release escrow", order.OrderNumber))
	})
	if err != nil {
		return nil, err
	}

	s.metrics.ObserveTransition(enums.EscrowEventTypeDeliveryMarked, order.AmountUnits)
	return s.repo.Find(ctx, order.ID)
}

func (s *service) ConfirmReceipt(ctx context.Context, actorID, orderID uuid.UUID) (*models.Order, error) {
	order, err := s.loadOrder(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if order.BuyerID != actorID {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "only the buyer can confirm receipt")
	}
	if err := s.requireTransition(order, enums.OrderStatusReleased); err != nil {
		return nil, err
	}
	if err := s.requireUnreleased(ctx, order.ID); err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	err = s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		if err := s.applyEdge(ctx, tx, order, StatusUpdate{
			Status:     enums.OrderStatusReleased,
			ReleasedAt: &now,
		}); err != nil {
			return err
		}
		if err := s.wallets.Credit(ctx, tx, order.SellerID, order.AmountUnits); err != nil {
			return err
		}
		if _, err := s.events.RecordEvent(ctx, tx, escrowlog.RecordEventInput{
			OrderID:     &order.ID,
			ActorID:     actorID,
			Type:        enums.EscrowEventTypeEscrowReleased,
			AmountUnits: order.AmountUnits,
		}); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "record release event")
		}
		if err := s.notify.Append(ctx, tx, order.SellerID,
			fmt.Sprintf("Order #%d complete: %d units released from escrow", order.OrderNumber, order.AmountUnits)); err != nil {
			return err
		}
		return s.notify.Append(ctx, tx, order.BuyerID,
			fmt.Sprintf("Order #%d complete: escrow released to seller", order.OrderNumber))
	})
	if err != nil {
		return nil, err
	}

	s.metrics.ObserveTransition(enums.EscrowEventTypeEscrowReleased, order.AmountUnits)
	s.logg.Info(s.logg.WithOrderID(ctx, order.ID.String()), "escrow released")
	return s.repo.Find(ctx, order.ID)
}

func (s *service) RaiseDispute(ctx context.Context, input DisputeInput) (*models.Order, error) {
	reason := strings.TrimSpace(input.Reason)
	if reason == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "dispute reason required")
	}

	order, err := s.loadOrder(ctx, input.OrderID)
	if err != nil {
		return nil, err
	}
	if order.BuyerID != input.ActorID {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "only the buyer can raise a dispute")
	}
	if err := s.requireTransition(order, enums.OrderStatusDisputed); err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	err = s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		// Funds stay locked: a dispute freezes the order for admin review.
		if err := s.applyEdge(ctx, tx, order, StatusUpdate{
			Status:        enums.OrderStatusDisputed,
			DisputeReason: &reason,
			DisputedAt:    &now,
		}); err != nil {
			return err
		}
		if _, err := s.events.RecordEvent(ctx, tx, escrowlog.RecordEventInput{
			OrderID:     &order.ID,
			ActorID:     input.ActorID,
			Type:        enums.EscrowEventTypeDisputeRaised,
			AmountUnits: order.AmountUnits,
		}); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "record dispute event")
		}
		return s.notify.Append(ctx, tx, order.SellerID,
			fmt.Sprintf("Order #%d disputed by buyer: %s", order.OrderNumber, reason))
	})
	if err != nil {
		return nil, err
	}

	s.metrics.ObserveTransition(enums.EscrowEventTypeDisputeRaised, order.AmountUnits)
	s.logg.Warn(s.logg.WithOrderID(ctx, order.ID.String()), "order disputed")
	return s.repo.Find(ctx, order.ID)
}

func (s *service) ForceRelease(ctx context.Context, adminID, orderID uuid.UUID) (*models.Order, error) {
	admin, err := s.findActor(ctx, adminID)
	if err != nil {
		return nil, err
	}
	if admin.Role != enums.ActorRoleAdmin {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "admin role required")
	}

	order, err := s.loadOrder(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if !canForceRelease(order.Status) {
		return nil, transitionConflict(order, enums.OrderStatusReleased)
	}
	if err := s.requireUnreleased(ctx, order.ID); err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	err = s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		if err := s.applyEdge(ctx, tx, order, StatusUpdate{
			Status:        enums.OrderStatusReleased,
			AdminReleased: true,
			ReleasedAt:    &now,
		}); err != nil {
			return err
		}
		if err := s.wallets.Credit(ctx, tx, order.SellerID, order.AmountUnits); err != nil {
			return err
		}
		if _, err := s.events.RecordEvent(ctx, tx, escrowlog.RecordEventInput{
			OrderID:     &order.ID,
			ActorID:     adminID,
			Type:        enums.EscrowEventTypeAdminForceRelease,
			AmountUnits: order.AmountUnits,
		}); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "record force release event")
		}
		if err := s.notify.Append(ctx, tx, order.SellerID,
			fmt.Sprintf("Order #%d: admin released %d units from escrow", order.OrderNumber, order.AmountUnits)); err != nil {
			return err
		}
		return s.notify.Append(ctx, tx, order.BuyerID,
			fmt.Sprintf("Order #%d: escrow released to seller by admin", order.OrderNumber))
	})
	if err != nil {
		return nil, err
	}

	s.metrics.ObserveTransition(enums.EscrowEventTypeAdminForceRelease, order.AmountUnits)
	adminCtx := s.logg.WithFields(ctx, map[string]any{
		"order_id":    order.ID.String(),
		"admin_id":    adminID.String(),
		"from_status": order.Status.String(),
	})
	s.logg.Warn(adminCtx, "admin force released escrow")
	return s.repo.Find(ctx, order.ID)
}

func (s *service) Get(ctx context.Context, actorID, orderID uuid.UUID) (*models.Order, error) {
	order, err := s.loadOrder(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if err := s.requireParticipant(ctx, actorID, order); err != nil {
		return nil, err
	}
	return order, nil
}

func (s *service) ListForActor(ctx context.Context, actorID uuid.UUID) ([]models.Order, error) {
	actor, err := s.findActor(ctx, actorID)
	if err != nil {
		return nil, err
	}
	if actor.Role == enums.ActorRoleAdmin {
		rows, err := s.repo.ListAll(ctx)
		if err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list orders")
		}
		return rows, nil
	}
	rows, err := s.repo.ListForActor(ctx, actorID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list orders")
	}
	return rows, nil
}

func (s *service) Timeline(ctx context.Context, actorID, orderID uuid.UUID) ([]models.EscrowEvent, error) {
	order, err := s.loadOrder(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if err := s.requireParticipant(ctx, actorID, order); err != nil {
		return nil, err
	}
	events, err := s.events.ListForOrder(ctx, orderID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load order timeline")
	}
	return events, nil
}

func (s *service) findActor(ctx context.Context, actorID uuid.UUID) (*models.Actor, error) {
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
	return actor, nil
}

func (s *service) loadOrder(ctx context.Context, orderID uuid.UUID) (*models.Order, error) {
	if orderID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "order id required")
	}
	order, err := s.repo.Find(ctx, orderID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "order not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load order")
	}
	return order, nil
}

func (s *service) requireParticipant(ctx context.Context, actorID uuid.UUID, order *models.Order) error {
	if order.BuyerID == actorID || order.SellerID == actorID {
		return nil
	}
	actor, err := s.findActor(ctx, actorID)
	if err != nil {
		return err
	}
	if actor.Role == enums.ActorRoleAdmin {
		return nil
	}
	return pkgerrors.New(pkgerrors.CodeForbidden, "not a participant in this order")
}

func (s *service) requireTransition(order *models.Order, to enums.OrderStatus) error {
	if canTransition(order.Status, to) {
		return nil
	}
	return transitionConflict(order, to)
}

func transitionConflict(order *models.Order, to enums.OrderStatus) error {
	return pkgerrors.New(pkgerrors.CodeStateConflict,
		fmt.Sprintf("order cannot move from %s to %s", order.Status, to)).
		WithDetails(map[string]any{"status": order.Status.String()})
}

// requireUnreleased refuses a second payout when the audit log already
// holds a release event for the order, whatever the order row says.
func (s *service) requireUnreleased(ctx context.Context, orderID uuid.UUID) error {
	for _, eventType := range []enums.EscrowEventType{
		enums.EscrowEventTypeEscrowReleased,
		enums.EscrowEventTypeAdminForceRelease,
	} {
		released, err := s.events.HasEvent(ctx, orderID, eventType)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "check release history")
		}
		if released {
			return pkgerrors.New(pkgerrors.CodeStateConflict, "escrow already released for this order").
				WithDetails(map[string]any{"event_type": eventType.String()})
		}
	}
	return nil
}

// applyEdge performs the guarded status update. A miss means another
// transition won the race after our initial read.
func (s *service) applyEdge(ctx context.Context, tx *gorm.DB, order *models.Order, update StatusUpdate) error {
	ok, err := s.repo.WithTx(tx).UpdateStatus(ctx, order.ID, order.Status, update)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update order status")
	}
	if !ok {
		return pkgerrors.New(pkgerrors.CodeStateConflict,
			fmt.Sprintf("order no longer in %s", order.Status))
	}
	return nil
}
