package controllers

import (
	"net/http"

	"github.com/agritrust/agritrust-backend/api/responses"
	"github.com/agritrust/agritrust-backend/api/validators"
	"github.com/agritrust/agritrust-backend/internal/notifications"
	pkgerrors "github.com/agritrust/agritrust-backend/pkg/errors"
	"github.com/agritrust/agritrust-backend/pkg/logger"
)

// ListNotifications returns the caller's notification log, newest first.
// The log is bounded; limit beyond the retention cap is clamped.
func ListNotifications(svc notifications.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "notifications service unavailable"))
			return
		}

		callerID, err := actorID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		limit, err := validators.ParseQueryInt(r, "limit", 0, 1, notifications.DefaultRetention)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		rows, err := svc.Recent(r.Context(), callerID, limit)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		total, err := svc.Count(r.Context(), callerID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]any{
			"notifications": newNotificationViews(rows),
			"total":         total,
		})
	}
}
