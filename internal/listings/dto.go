package listings

import (
	"github.com/google/uuid"

	"github.com/agritrust/agritrust-backend/pkg/db/models"
)

// CreateInput carries the fields a farmer submits when posting produce.
type CreateInput struct {
	OwnerID    uuid.UUID
	Crop       string
	Market     string
	QuantityKg int
	PriceUnits int64
}

// BrowseInput narrows and pages the public catalogue.
type BrowseInput struct {
	Crop   string
	Search string
	Limit  int
	Cursor string
}

// Page is one window of catalogue results plus the cursor for the next.
type Page struct {
	Listings   []models.Listing
	NextCursor string
}
