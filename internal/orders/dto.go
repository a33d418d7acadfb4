package orders

import (
	"github.com/google/uuid"
)

// PlaceInput carries what a buyer submits to lock funds against a listing.
type PlaceInput struct {
	BuyerID    uuid.UUID
	ListingID  uuid.UUID
	QuantityKg int
}

// DisputeInput carries a buyer's dispute of a marked delivery.
type DisputeInput struct {
	ActorID uuid.UUID
	OrderID uuid.UUID
	Reason  string
}
