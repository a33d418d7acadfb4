package orders

import (
	"context"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/agritrust/agritrust-backend/internal/escrowlog"
	"github.com/agritrust/agritrust-backend/internal/listings"
	"github.com/agritrust/agritrust-backend/internal/notifications"
	"github.com/agritrust/agritrust-backend/internal/wallet"
	"github.com/agritrust/agritrust-backend/pkg/db/models"
	"github.com/agritrust/agritrust-backend/pkg/enums"
	"github.com/agritrust/agritrust-backend/pkg/pagination"
)

// memStore is an in-memory stand-in for the database. The tx runner
// snapshots it before each unit of work and restores on error, mirroring
// rollback semantics closely enough for service-level tests.
type memStore struct {
	actors   map[uuid.UUID]models.Actor
	listings map[uuid.UUID]models.Listing
	orders   map[uuid.UUID]models.Order
	events   []models.EscrowEvent
	notes    []models.Notification
	clock    time.Time
}

func newMemStore() *memStore {
	return &memStore{
		actors:   map[uuid.UUID]models.Actor{},
		listings: map[uuid.UUID]models.Listing{},
		orders:   map[uuid.UUID]models.Order{},
		clock:    time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC),
	}
}

// tick returns a strictly increasing timestamp so newest-first ordering is
// deterministic.
func (s *memStore) tick() time.Time {
	s.clock = s.clock.Add(time.Second)
	return s.clock
}

func (s *memStore) snapshot() *memStore {
	copied := &memStore{
		actors:   make(map[uuid.UUID]models.Actor, len(s.actors)),
		listings: make(map[uuid.UUID]models.Listing, len(s.listings)),
		orders:   make(map[uuid.UUID]models.Order, len(s.orders)),
		events:   append([]models.EscrowEvent(nil), s.events...),
		notes:    append([]models.Notification(nil), s.notes...),
		clock:    s.clock,
	}
	for k, v := range s.actors {
		copied.actors[k] = v
	}
	for k, v := range s.listings {
		copied.listings[k] = v
	}
	for k, v := range s.orders {
		copied.orders[k] = v
	}
	return copied
}

func (s *memStore) restore(snap *memStore) {
	s.actors = snap.actors
	s.listings = snap.listings
	s.orders = snap.orders
	s.events = snap.events
	s.notes = snap.notes
	s.clock = snap.clock
}

type memTx struct {
	store *memStore
}

func (t *memTx) WithTx(_ context.Context, fn func(tx *gorm.DB) error) error {
	snap := t.store.snapshot()
	if err := fn(nil); err != nil {
		t.store.restore(snap)
		return err
	}
	return nil
}

type memActorRepo struct {
	store *memStore
}

func (r *memActorRepo) WithTx(*gorm.DB) wallet.Repository { return r }

func (r *memActorRepo) Create(_ context.Context, actor *models.Actor) error {
	if actor.ID == uuid.Nil {
		actor.ID = uuid.New()
	}
	actor.CreatedAt = r.store.tick()
	r.store.actors[actor.ID] = *actor
	return nil
}

func (r *memActorRepo) Find(_ context.Context, actorID uuid.UUID) (*models.Actor, error) {
	actor, ok := r.store.actors[actorID]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return &actor, nil
}

func (r *memActorRepo) FindByName(_ context.Context, name string) (*models.Actor, error) {
	for _, actor := range r.store.actors {
		if actor.Name == name {
			found := actor
			return &found, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *memActorRepo) Credit(_ context.Context, actorID uuid.UUID, amount int64) (bool, error) {
	actor, ok := r.store.actors[actorID]
	if !ok {
		return false, nil
	}
	actor.BalanceUnits += amount
	r.store.actors[actorID] = actor
	return true, nil
}

func (r *memActorRepo) Debit(_ context.Context, actorID uuid.UUID, amount int64) (bool, error) {
	actor, ok := r.store.actors[actorID]
	if !ok || actor.BalanceUnits < amount {
		return false, nil
	}
	actor.BalanceUnits -= amount
	r.store.actors[actorID] = actor
	return true, nil
}

type memListingRepo struct {
	store *memStore
}

func (r *memListingRepo) WithTx(*gorm.DB) listings.Repository { return r }

func (r *memListingRepo) Create(_ context.Context, listing *models.Listing) error {
	if listing.ID == uuid.Nil {
		listing.ID = uuid.New()
	}
	listing.CreatedAt = r.store.tick()
	r.store.listings[listing.ID] = *listing
	return nil
}

func (r *memListingRepo) Find(_ context.Context, id uuid.UUID) (*models.Listing, error) {
	listing, ok := r.store.listings[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	if owner, ok := r.store.actors[listing.OwnerID]; ok {
		listing.Owner = &owner
	}
	return &listing, nil
}

func (r *memListingRepo) List(_ context.Context, filter listings.ListFilter, _ *pagination.Cursor, limit int) ([]models.Listing, error) {
	var rows []models.Listing
	for _, listing := range r.store.listings {
		if !filter.IncludeEmpty && listing.QuantityKg == 0 {
			continue
		}
		if filter.Crop != "" && !strings.EqualFold(listing.Crop, filter.Crop) {
			continue
		}
		rows = append(rows, listing)
	}
	sort.Slice(rows, func(i, j int) bool { return rows[i].CreatedAt.After(rows[j].CreatedAt) })
	if limit > 0 && len(rows) > limit {
		rows = rows[:limit]
	}
	return rows, nil
}

func (r *memListingRepo) ListByOwner(_ context.Context, ownerID uuid.UUID) ([]models.Listing, error) {
	var rows []models.Listing
	for _, listing := range r.store.listings {
		if listing.OwnerID == ownerID {
			rows = append(rows, listing)
		}
	}
	return rows, nil
}

func (r *memListingRepo) Decrement(_ context.Context, id uuid.UUID, quantityKg int) (bool, error) {
	listing, ok := r.store.listings[id]
	if !ok || listing.QuantityKg < quantityKg {
		return false, nil
	}
	listing.QuantityKg -= quantityKg
	r.store.listings[id] = listing
	return true, nil
}

type memOrderRepo struct {
	store *memStore
}

func (r *memOrderRepo) WithTx(*gorm.DB) Repository { return r }

func (r *memOrderRepo) Create(_ context.Context, order *models.Order) error {
	if order.ID == uuid.Nil {
		order.ID = uuid.New()
	}
	order.CreatedAt = r.store.tick()
	r.store.orders[order.ID] = *order
	return nil
}

func (r *memOrderRepo) Find(_ context.Context, id uuid.UUID) (*models.Order, error) {
	order, ok := r.store.orders[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	if buyer, ok := r.store.actors[order.BuyerID]; ok {
		order.Buyer = &buyer
	}
	if seller, ok := r.store.actors[order.SellerID]; ok {
		order.Seller = &seller
	}
	return &order, nil
}

func (r *memOrderRepo) ListForActor(_ context.Context, actorID uuid.UUID) ([]models.Order, error) {
	var rows []models.Order
	for _, order := range r.store.orders {
		if order.BuyerID == actorID || order.SellerID == actorID {
			rows = append(rows, order)
		}
	}
	sort.Slice(rows, func(i, j int) bool { return rows[i].CreatedAt.After(rows[j].CreatedAt) })
	return rows, nil
}

func (r *memOrderRepo) ListAll(_ context.Context) ([]models.Order, error) {
	var rows []models.Order
	for _, order := range r.store.orders {
		rows = append(rows, order)
	}
	sort.Slice(rows, func(i, j int) bool { return rows[i].CreatedAt.After(rows[j].CreatedAt) })
	return rows, nil
}

func (r *memOrderRepo) NextOrderNumber(_ context.Context, start int64) (int64, error) {
	next := start
	for _, order := range r.store.orders {
		if order.OrderNumber+1 > next {
			next = order.OrderNumber + 1
		}
	}
	return next, nil
}

func (r *memOrderRepo) UpdateStatus(_ context.Context, id uuid.UUID, from enums.OrderStatus, update StatusUpdate) (bool, error) {
	order, ok := r.store.orders[id]
	if !ok || order.Status != from {
		return false, nil
	}
	order.Status = update.Status
	if update.DisputeReason != nil {
		order.DisputeReason = update.DisputeReason
	}
	if update.AdminReleased {
		order.AdminReleased = true
	}
	if update.DeliveredAt != nil {
		order.DeliveredAt = update.DeliveredAt
	}
	if update.ReleasedAt != nil {
		order.ReleasedAt = update.ReleasedAt
	}
	if update.DisputedAt != nil {
		order.DisputedAt = update.DisputedAt
	}
	r.store.orders[id] = order
	return true, nil
}

type memEventRepo struct {
	store *memStore
}

func (r *memEventRepo) WithTx(*gorm.DB) escrowlog.Repository { return r }

func (r *memEventRepo) Create(_ context.Context, event *models.EscrowEvent) error {
	if event.ID == uuid.Nil {
		event.ID = uuid.New()
	}
	event.CreatedAt = r.store.tick()
	r.store.events = append(r.store.events, *event)
	return nil
}

func (r *memEventRepo) ListByOrderID(_ context.Context, orderID uuid.UUID) ([]models.EscrowEvent, error) {
	var rows []models.EscrowEvent
	for _, event := range r.store.events {
		if event.OrderID != nil && *event.OrderID == orderID {
			rows = append(rows, event)
		}
	}
	return rows, nil
}

func (r *memEventRepo) ListByActorID(_ context.Context, actorID uuid.UUID) ([]models.EscrowEvent, error) {
	var rows []models.EscrowEvent
	for _, event := range r.store.events {
		if event.ActorID == actorID {
			rows = append(rows, event)
		}
	}
	return rows, nil
}

type memNoteRepo struct {
	store *memStore
}

func (r *memNoteRepo) WithTx(*gorm.DB) notifications.Repository { return r }

func (r *memNoteRepo) Create(_ context.Context, note *models.Notification) error {
	if note.ID == uuid.Nil {
		note.ID = uuid.New()
	}
	note.CreatedAt = r.store.tick()
	r.store.notes = append(r.store.notes, *note)
	return nil
}

func (r *memNoteRepo) PruneBeyond(_ context.Context, actorID uuid.UUID, keep int) (int64, error) {
	var mine []models.Notification
	var others []models.Notification
	for _, note := range r.store.notes {
		if note.ActorID == actorID {
			mine = append(mine, note)
		} else {
			others = append(others, note)
		}
	}
	if len(mine) <= keep {
		return 0, nil
	}
	pruned := int64(len(mine) - keep)
	mine = mine[len(mine)-keep:]
	r.store.notes = append(others, mine...)
	return pruned, nil
}

func (r *memNoteRepo) ListRecent(_ context.Context, actorID uuid.UUID, limit int) ([]models.Notification, error) {
	var rows []models.Notification
	for i := len(r.store.notes) - 1; i >= 0; i-- {
		if r.store.notes[i].ActorID == actorID {
			rows = append(rows, r.store.notes[i])
		}
		if len(rows) == limit {
			break
		}
	}
	return rows, nil
}

func (r *memNoteRepo) CountByActor(_ context.Context, actorID uuid.UUID) (int64, error) {
	var count int64
	for _, note := range r.store.notes {
		if note.ActorID == actorID {
			count++
		}
	}
	return count, nil
}
