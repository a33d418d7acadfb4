package wallet

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/agritrust/agritrust-backend/internal/escrowlog"
	"github.com/agritrust/agritrust-backend/pkg/db/models"
	"github.com/agritrust/agritrust-backend/pkg/enums"
	pkgerrors "github.com/agritrust/agritrust-backend/pkg/errors"
)

type fakeRepo struct {
	find   func(actorID uuid.UUID) (*models.Actor, error)
	credit func(actorID uuid.UUID, amount int64) (bool, error)
	debit  func(actorID uuid.UUID, amount int64) (bool, error)
}

func (f *fakeRepo) WithTx(*gorm.DB) Repository { return f }

func (f *fakeRepo) Create(context.Context, *models.Actor) error { return nil }

func (f *fakeRepo) Find(_ context.Context, actorID uuid.UUID) (*models.Actor, error) {
	return f.find(actorID)
}

func (f *fakeRepo) FindByName(context.Context, string) (*models.Actor, error) {
	return nil, gorm.ErrRecordNotFound
}

func (f *fakeRepo) Credit(_ context.Context, actorID uuid.UUID, amount int64) (bool, error) {
	return f.credit(actorID, amount)
}

func (f *fakeRepo) Debit(_ context.Context, actorID uuid.UUID, amount int64) (bool, error) {
	return f.debit(actorID, amount)
}

type fakeEvents struct {
	recorded []escrowlog.RecordEventInput
}

func (f *fakeEvents) RecordEvent(_ context.Context, _ *gorm.DB, input escrowlog.RecordEventInput) (*models.EscrowEvent, error) {
	f.recorded = append(f.recorded, input)
	return &models.EscrowEvent{}, nil
}

func (f *fakeEvents) HasEvent(context.Context, uuid.UUID, enums.EscrowEventType) (bool, error) {
	return false, nil
}

func (f *fakeEvents) ListForOrder(context.Context, uuid.UUID) ([]models.EscrowEvent, error) {
	return nil, nil
}

type fakeNotify struct {
	messages []string
}

func (f *fakeNotify) Append(_ context.Context, _ *gorm.DB, _ uuid.UUID, message string) error {
	f.messages = append(f.messages, message)
	return nil
}

func (f *fakeNotify) Recent(context.Context, uuid.UUID, int) ([]models.Notification, error) {
	return nil, nil
}

func (f *fakeNotify) Count(context.Context, uuid.UUID) (int64, error) { return 0, nil }

type passTx struct{}

func (passTx) WithTx(_ context.Context, fn func(tx *gorm.DB) error) error { return fn(nil) }

func TestDepositCreditsAndAudits(t *testing.T) {
	actorID := uuid.New()
	balance := int64(100)

	repo := &fakeRepo{
		find: func(id uuid.UUID) (*models.Actor, error) {
			if id != actorID {
				return nil, gorm.ErrRecordNotFound
			}
			return &models.Actor{ID: actorID, BalanceUnits: balance}, nil
		},
		credit: func(_ uuid.UUID, amount int64) (bool, error) {
			balance += amount
			return true, nil
		},
		debit: func(uuid.UUID, int64) (bool, error) { return false, nil },
	}
	events := &fakeEvents{}
	notify := &fakeNotify{}
	svc, err := NewService(repo, passTx{}, events, notify)
	if err != nil {
		t.Fatalf("new service: %v", err)
	}

	actor, err := svc.Deposit(context.Background(), actorID, 500)
	if err != nil {
		t.Fatalf("deposit: %v", err)
	}
	if actor.BalanceUnits != 600 {
		t.Fatalf("balance = %d, want 600", actor.BalanceUnits)
	}
	if len(events.recorded) != 1 || events.recorded[0].Type != enums.EscrowEventTypeWalletDeposit {
		t.Fatalf("events = %+v, want one wallet_deposit", events.recorded)
	}
	if events.recorded[0].OrderID != nil {
		t.Fatalf("deposit event must not carry an order id")
	}
	if len(notify.messages) != 1 {
		t.Fatalf("notifications = %d, want 1", len(notify.messages))
	}
}

func TestWithdrawRejectsUncoveredBalance(t *testing.T) {
	actorID := uuid.New()
	repo := &fakeRepo{
		find: func(uuid.UUID) (*models.Actor, error) {
			return &models.Actor{ID: actorID, BalanceUnits: 100}, nil
		},
		credit: func(uuid.UUID, int64) (bool, error) { return true, nil },
		debit:  func(uuid.UUID, int64) (bool, error) { return false, nil },
	}
	events := &fakeEvents{}
	svc, err := NewService(repo, passTx{}, events, &fakeNotify{})
	if err != nil {
		t.Fatalf("new service: %v", err)
	}

	_, err = svc.Withdraw(context.Background(), actorID, 500)
	if !pkgerrors.IsCode(err, pkgerrors.CodeInsufficientFunds) {
		t.Fatalf("error = %v, want INSUFFICIENT_FUNDS", err)
	}
	if len(events.recorded) != 0 {
		t.Fatalf("no audit event expected for a failed withdrawal")
	}
}

func TestDebitDistinguishesMissingActor(t *testing.T) {
	repo := &fakeRepo{
		find:   func(uuid.UUID) (*models.Actor, error) { return nil, gorm.ErrRecordNotFound },
		credit: func(uuid.UUID, int64) (bool, error) { return false, nil },
		debit:  func(uuid.UUID, int64) (bool, error) { return false, nil },
	}
	svc, err := NewService(repo, passTx{}, &fakeEvents{}, &fakeNotify{})
	if err != nil {
		t.Fatalf("new service: %v", err)
	}

	err = svc.Debit(context.Background(), nil, uuid.New(), 10)
	if !pkgerrors.IsCode(err, pkgerrors.CodeNotFound) {
		t.Fatalf("error = %v, want NOT_FOUND", err)
	}
}

func TestAmountValidation(t *testing.T) {
	svc, err := NewService(&fakeRepo{}, passTx{}, &fakeEvents{}, &fakeNotify{})
	if err != nil {
		t.Fatalf("new service: %v", err)
	}

	for _, amount := range []int64{0, -5} {
		if _, err := svc.Deposit(context.Background(), uuid.New(), amount); !pkgerrors.IsCode(err, pkgerrors.CodeValidation) {
			t.Fatalf("deposit %d error = %v, want VALIDATION_ERROR", amount, err)
		}
	}
	if _, err := svc.Deposit(context.Background(), uuid.Nil, 100); !pkgerrors.IsCode(err, pkgerrors.CodeValidation) {
		t.Fatalf("nil actor error = %v, want VALIDATION_ERROR", err)
	}
}
