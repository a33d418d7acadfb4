package controllers

import (
	"net/http"

	"github.com/google/uuid"

	"github.com/agritrust/agritrust-backend/api/responses"
	"github.com/agritrust/agritrust-backend/api/validators"
	"github.com/agritrust/agritrust-backend/internal/wallet"
	"github.com/agritrust/agritrust-backend/pkg/logger"
)

// WalletBalance returns the caller's wallet.
func WalletBalance(svc wallet.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		callerID, err := actorID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		actor, err := svc.Balance(r.Context(), callerID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, newActorView(actor))
	}
}

type walletAmountRequest struct {
	AmountUnits int64 `json:"amount_units" validate:"required,gt=0"`
}

// WalletDeposit adds funds to the caller's wallet.
func WalletDeposit(svc wallet.Service, logg *logger.Logger) http.HandlerFunc {
	return walletMovement(logg, func(r *http.Request, callerID uuid.UUID, amount int64) (any, error) {
		actor, err := svc.Deposit(r.Context(), callerID, amount)
		if err != nil {
			return nil, err
		}
		return newActorView(actor), nil
	})
}

// WalletWithdraw removes funds from the caller's wallet when the balance
// covers the amount.
func WalletWithdraw(svc wallet.Service, logg *logger.Logger) http.HandlerFunc {
	return walletMovement(logg, func(r *http.Request, callerID uuid.UUID, amount int64) (any, error) {
		actor, err := svc.Withdraw(r.Context(), callerID, amount)
		if err != nil {
			return nil, err
		}
		return newActorView(actor), nil
	})
}

func walletMovement(logg *logger.Logger, apply func(r *http.Request, callerID uuid.UUID, amount int64) (any, error)) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		callerID, err := actorID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		var req walletAmountRequest
		if err := validators.DecodeJSONBody(r, &req); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		view, err := apply(r, callerID, req.AmountUnits)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, view)
	}
}
