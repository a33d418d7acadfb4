package wallet

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/agritrust/agritrust-backend/internal/escrowlog"
	"github.com/agritrust/agritrust-backend/internal/notifications"
	"github.com/agritrust/agritrust-backend/pkg/db/models"
	"github.com/agritrust/agritrust-backend/pkg/enums"
	pkgerrors "github.com/agritrust/agritrust-backend/pkg/errors"
)

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

// Service exposes wallet operations. Credit and Debit are the ledger
// primitives used by the order state machine inside its own transaction;
// Deposit and Withdraw are the public out-of-band funding operations.
type Service interface {
	Balance(ctx context.Context, actorID uuid.UUID) (*models.Actor, error)
	Deposit(ctx context.Context, actorID uuid.UUID, amountUnits int64) (*models.Actor, error)
	Withdraw(ctx context.Context, actorID uuid.UUID, amountUnits int64) (*models.Actor, error)
	Credit(ctx context.Context, tx *gorm.DB, actorID uuid.UUID, amountUnits int64) error
	Debit(ctx context.Context, tx *gorm.DB, actorID uuid.UUID, amountUnits int64) error
}

type service struct {
	repo   Repository
	tx     txRunner
	events escrowlog.Service
	notify notifications.Service
}

// NewService builds a wallet service with the required dependencies.
func NewService(repo Repository, tx txRunner, events escrowlog.Service, notify notifications.Service) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("wallet repository required")
	}
	if tx == nil {
		return nil, fmt.Errorf("transaction runner required")
	}
	if events == nil {
		return nil, fmt.Errorf("escrow log service required")
	}
	if notify == nil {
		return nil, fmt.Errorf("notifications service required")
	}
	return &service{repo: repo, tx: tx, events: events, notify: notify}, nil
}

func (s *service) Balance(ctx context.Context, actorID uuid.UUID) (*models.Actor, error) {
	if actorID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "actor id required")
	}
	actor, err := s.repo.Find(ctx, actorID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "actor not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load actor")
	}
	return actor, nil
}

func (s *service) Deposit(ctx context.Context, actorID uuid.UUID, amountUnits int64) (*models.Actor, error) {
	if err := validateAmount(actorID, amountUnits); err != nil {
		return nil, err
	}

	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		if err := s.Credit(ctx, tx, actorID, amountUnits); err != nil {
			return err
		}
		if _, err := s.events.RecordEvent(ctx, tx, escrowlog.RecordEventInput{
			ActorID:     actorID,
			Type:        enums.EscrowEventTypeWalletDeposit,
			AmountUnits: amountUnits,
		}); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "record deposit event")
		}
		return s.notify.Append(ctx, tx, actorID, fmt.Sprintf("Added %d units to wallet", amountUnits))
	})
	if err != nil {
		return nil, err
	}
	return s.Balance(ctx, actorID)
}

func (s *service) Withdraw(ctx context.Context, actorID uuid.UUID, amountUnits int64) (*models.Actor, error) {
	if err := validateAmount(actorID, amountUnits); err != nil {
		return nil, err
	}

	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		if err := s.Debit(ctx, tx, actorID, amountUnits); err != nil {
			return err
		}
		if _, err := s.events.RecordEvent(ctx, tx, escrowlog.RecordEventInput{
			ActorID:     actorID,
			Type:        enums.EscrowEventTypeWalletWithdrawal,
			AmountUnits: amountUnits,
		}); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "record withdrawal event")
		}
		return s.notify.Append(ctx, tx, actorID, fmt.Sprintf("Withdrew %d units from wallet", amountUnits))
	})
	if err != nil {
		return nil, err
	}
	return s.Balance(ctx, actorID)
}

func (s *service) Credit(ctx context.Context, tx *gorm.DB, actorID uuid.UUID, amountUnits int64) error {
	if err := validateAmount(actorID, amountUnits); err != nil {
		return err
	}
	ok, err := s.repo.WithTx(tx).Credit(ctx, actorID, amountUnits)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "credit wallet")
	}
	if !ok {
		return pkgerrors.New(pkgerrors.CodeNotFound, "actor not found")
	}
	return nil
}

func (s *service) Debit(ctx context.Context, tx *gorm.DB, actorID uuid.UUID, amountUnits int64) error {
	if err := validateAmount(actorID, amountUnits); err != nil {
		return err
	}
	repo := s.repo.WithTx(tx)
	ok, err := repo.Debit(ctx, actorID, amountUnits)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "debit wallet")
	}
	if ok {
		return nil
	}

	// Distinguish an unknown actor from an uncovered balance.
	if _, err := repo.Find(ctx, actorID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return pkgerrors.New(pkgerrors.CodeNotFound, "actor not found")
		}
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load actor")
	}
	return pkgerrors.New(pkgerrors.CodeInsufficientFunds, "wallet balance does not cover amount")
}

func validateAmount(actorID uuid.UUID, amountUnits int64) error {
	if actorID == uuid.Nil {
		return pkgerrors.New(pkgerrors.CodeValidation, "actor id required")
	}
	if amountUnits <= 0 {
		return pkgerrors.New(pkgerrors.CodeValidation, "amount must be positive")
	}
	return nil
}
