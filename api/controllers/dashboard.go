package controllers

import (
	"fmt"
	"net/http"
	"time"

	"github.com/agritrust/agritrust-backend/api/responses"
	"github.com/agritrust/agritrust-backend/internal/dashboard"
	"github.com/agritrust/agritrust-backend/pkg/logger"
)

// DashboardSummary returns the aggregate order view for the caller.
func DashboardSummary(svc dashboard.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		callerID, err := actorID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		summary, err := svc.Summarize(r.Context(), callerID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, summary)
	}
}

// ExportOrders streams the caller's order history as a CSV download.
func ExportOrders(svc dashboard.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		callerID, err := actorID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		filename := fmt.Sprintf("orders-%s.csv", time.Now().UTC().Format("20060102"))
		w.Header().Set("Content-Type", "text/csv")
		w.Header().Set("Content-Disposition", `attachment; filename="`+filename+`"`)

		if err := svc.ExportOrders(r.Context(), callerID, w); err != nil {
			// Headers may already be out; log instead of rewriting status.
			logg.Error(r.Context(), "order export failed", err)
		}
	}
}
