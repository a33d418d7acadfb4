package controllers

import (
	"net/http"
	"strings"

	"github.com/agritrust/agritrust-backend/api/responses"
	"github.com/agritrust/agritrust-backend/api/validators"
	"github.com/agritrust/agritrust-backend/internal/listings"
	pkgerrors "github.com/agritrust/agritrust-backend/pkg/errors"
	"github.com/agritrust/agritrust-backend/pkg/logger"
	"github.com/agritrust/agritrust-backend/pkg/pagination"
)

type createListingRequest struct {
	Crop       string `json:"crop" validate:"required"`
	Market     string `json:"market" validate:"required"`
	QuantityKg int    `json:"quantity_kg" validate:"required,gt=0"`
	PriceUnits int64  `json:"price_units" validate:"required,gt=0"`
}

// CreateListing posts a farmer's produce offer.
func CreateListing(svc listings.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ownerID, err := actorID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var req createListingRequest
		if err := validators.DecodeJSONBody(r, &req); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		listing, err := svc.Create(r.Context(), listings.CreateInput{
			OwnerID:    ownerID,
			Crop:       req.Crop,
			Market:     req.Market,
			QuantityKg: req.QuantityKg,
			PriceUnits: req.PriceUnits,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, newListingView(*listing))
	}
}

// BrowseListings returns the public catalogue page.
func BrowseListings(svc listings.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		limit, err := validators.ParseQueryInt(r, "limit", pagination.DefaultLimit, 1, pagination.MaxLimit)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		page, err := svc.Browse(r.Context(), listings.BrowseInput{
			Crop:   r.URL.Query().Get("crop"),
			Search: r.URL.Query().Get("q"),
			Limit:  limit,
			Cursor: strings.TrimSpace(r.URL.Query().Get("cursor")),
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, map[string]any{
			"listings":    newListingViews(page.Listings),
			"next_cursor": page.NextCursor,
		})
	}
}

// ListingDetail returns one listing by id.
func ListingDetail(svc listings.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := validators.ParseUUIDParam(r, "listingId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		listing, err := svc.Get(r.Context(), id)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, newListingView(*listing))
	}
}

// MyListings returns the calling farmer's own listings, sold out included.
func MyListings(svc listings.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "listings service unavailable"))
			return
		}
		ownerID, err := actorID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		rows, err := svc.Mine(r.Context(), ownerID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]any{"listings": newListingViews(rows)})
	}
}
