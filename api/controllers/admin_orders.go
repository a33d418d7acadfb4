package controllers

import (
	"net/http"

	"github.com/agritrust/agritrust-backend/api/responses"
	"github.com/agritrust/agritrust-backend/api/validators"
	"github.com/agritrust/agritrust-backend/internal/orders"
	"github.com/agritrust/agritrust-backend/pkg/logger"
)

// AdminForceRelease releases escrow to the seller without buyer
// confirmation. The service records the override on the order and in the
// audit trail.
func AdminForceRelease(svc orders.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		adminID, err := actorID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		orderID, err := validators.ParseUUIDParam(r, "orderId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		order, err := svc.ForceRelease(r.Context(), adminID, orderID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, newOrderView(order))
	}
}
