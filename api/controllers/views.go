package controllers

import (
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/agritrust/agritrust-backend/api/middleware"
	"github.com/agritrust/agritrust-backend/pkg/db/models"
	pkgerrors "github.com/agritrust/agritrust-backend/pkg/errors"
)

// actorID resolves the authenticated actor id placed by the actor middleware.
func actorID(r *http.Request) (uuid.UUID, error) {
	raw := middleware.ActorIDFromContext(r.Context())
	if raw == "" {
		return uuid.Nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "actor context missing")
	}
	id, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, pkgerrors.Wrap(pkgerrors.CodeUnauthorized, err, "invalid actor context")
	}
	return id, nil
}

type actorView struct {
	ID           uuid.UUID `json:"id"`
	Name         string    `json:"name"`
	Role         string    `json:"role"`
	BalanceUnits int64     `json:"balance_units"`
}

func newActorView(actor *models.Actor) actorView {
	return actorView{
		ID:           actor.ID,
		Name:         actor.Name,
		Role:         actor.Role.String(),
		BalanceUnits: actor.BalanceUnits,
	}
}

type listingView struct {
	ID         uuid.UUID `json:"id"`
	Crop       string    `json:"crop"`
	Market     string    `json:"market"`
	QuantityKg int       `json:"quantity_kg"`
	PriceUnits int64     `json:"price_units"`
	OwnerID    uuid.UUID `json:"owner_id"`
	OwnerName  string    `json:"owner_name,omitempty"`
	CreatedAt  time.Time `json:"created_at"`
}

func newListingView(listing models.Listing) listingView {
	view := listingView{
		ID:         listing.ID,
		Crop:       listing.Crop,
		Market:     listing.Market,
		QuantityKg: listing.QuantityKg,
		PriceUnits: listing.PriceUnits,
		OwnerID:    listing.OwnerID,
		CreatedAt:  listing.CreatedAt,
	}
	if listing.Owner != nil {
		view.OwnerName = listing.Owner.Name
	}
	return view
}

func newListingViews(listings []models.Listing) []listingView {
	views := make([]listingView, 0, len(listings))
	for _, listing := range listings {
		views = append(views, newListingView(listing))
	}
	return views
}

type orderView struct {
	ID            uuid.UUID  `json:"id"`
	OrderNumber   int64      `json:"order_number"`
	ListingID     uuid.UUID  `json:"listing_id"`
	Crop          string     `json:"crop"`
	QuantityKg    int        `json:"quantity_kg"`
	AmountUnits   int64      `json:"amount_units"`
	Status        string     `json:"status"`
	BuyerID       uuid.UUID  `json:"buyer_id"`
	BuyerName     string     `json:"buyer_name,omitempty"`
	SellerID      uuid.UUID  `json:"seller_id"`
	SellerName    string     `json:"seller_name,omitempty"`
	DisputeReason *string    `json:"dispute_reason,omitempty"`
	AdminReleased bool       `json:"admin_released"`
	DeliveredAt   *time.Time `json:"delivered_at,omitempty"`
	ReleasedAt    *time.Time `json:"released_at,omitempty"`
	DisputedAt    *time.Time `json:"disputed_at,omitempty"`
	CreatedAt     time.Time  `json:"created_at"`
}

func newOrderView(order *models.Order) orderView {
	view := orderView{
		ID:            order.ID,
		OrderNumber:   order.OrderNumber,
		ListingID:     order.ListingID,
		Crop:          order.Crop,
		QuantityKg:    order.QuantityKg,
		AmountUnits:   order.AmountUnits,
		Status:        order.Status.String(),
		BuyerID:       order.BuyerID,
		SellerID:      order.SellerID,
		DisputeReason: order.DisputeReason,
		AdminReleased: order.AdminReleased,
		DeliveredAt:   order.DeliveredAt,
		ReleasedAt:    order.ReleasedAt,
		DisputedAt:    order.DisputedAt,
		CreatedAt:     order.CreatedAt,
	}
	if order.Buyer != nil {
		view.BuyerName = order.Buyer.Name
	}
	if order.Seller != nil {
		view.SellerName = order.Seller.Name
	}
	return view
}

func newOrderViews(orders []models.Order) []orderView {
	views := make([]orderView, 0, len(orders))
	for i := range orders {
		views = append(views, newOrderView(&orders[i]))
	}
	return views
}

type eventView struct {
	ID          uuid.UUID  `json:"id"`
	OrderID     *uuid.UUID `json:"order_id,omitempty"`
	ActorID     uuid.UUID  `json:"actor_id"`
	Type        string     `json:"type"`
	AmountUnits int64      `json:"amount_units"`
	CreatedAt   time.Time  `json:"created_at"`
}

func newEventViews(events []models.EscrowEvent) []eventView {
	views := make([]eventView, 0, len(events))
	for _, event := range events {
		views = append(views, eventView{
			ID:          event.ID,
			OrderID:     event.OrderID,
			ActorID:     event.ActorID,
			Type:        event.Type.String(),
			AmountUnits: event.AmountUnits,
			CreatedAt:   event.CreatedAt,
		})
	}
	return views
}

type notificationView struct {
	ID        uuid.UUID `json:"id"`
	Message   string    `json:"message"`
	CreatedAt time.Time `json:"created_at"`
}

func newNotificationViews(notes []models.Notification) []notificationView {
	views := make([]notificationView, 0, len(notes))
	for _, note := range notes {
		views = append(views, notificationView{
			ID:        note.ID,
			Message:   note.Message,
			CreatedAt: note.CreatedAt,
		})
	}
	return views
}
