package controllers

import (
	"net/http"

	"github.com/agritrust/agritrust-backend/api/responses"
	"github.com/agritrust/agritrust-backend/internal/pricefeed"
	"github.com/agritrust/agritrust-backend/pkg/logger"
)

// MarketPrices returns current crop quotes, optionally filtered by crop.
func MarketPrices(svc pricefeed.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		quotes, err := svc.Quotes(r.Context(), r.URL.Query().Get("crop"))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, quotes)
	}
}
