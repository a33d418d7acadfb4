package escrowlog

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/agritrust/agritrust-backend/pkg/db/models"
	"github.com/agritrust/agritrust-backend/pkg/enums"
)

// Service defines operations that record escrow audit events.
type Service interface {
	RecordEvent(ctx context.Context, tx *gorm.DB, input RecordEventInput) (*models.EscrowEvent, error)
	HasEvent(ctx context.Context, orderID uuid.UUID, eventType enums.EscrowEventType) (bool, error)
	ListForOrder(ctx context.Context, orderID uuid.UUID) ([]models.EscrowEvent, error)
}

type service struct {
	repo Repository
}

// RecordEventInput captures the immutable data an escrow event requires.
type RecordEventInput struct {
	OrderID     *uuid.UUID
	ActorID     uuid.UUID
	Type        enums.EscrowEventType
	AmountUnits int64
}

// NewService wires an escrow log service with the provided repository.
func NewService(repo Repository) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("escrow log repository required")
	}
	return &service{repo: repo}, nil
}

func (s *service) RecordEvent(ctx context.Context, tx *gorm.DB, input RecordEventInput) (*models.EscrowEvent, error) {
	if input.ActorID == uuid.Nil {
		return nil, fmt.Errorf("actor id is required")
	}
	if !input.Type.IsValid() {
		return nil, fmt.Errorf("invalid escrow event type %q", input.Type)
	}
	if input.AmountUnits < 0 {
		return nil, fmt.Errorf("event amount cannot be negative")
	}

	event := &models.EscrowEvent{
		OrderID:     input.OrderID,
		ActorID:     input.ActorID,
		Type:        input.Type,
		AmountUnits: input.AmountUnits,
	}

	if err := s.repo.WithTx(tx).Create(ctx, event); err != nil {
		return nil, err
	}
	return event, nil
}

func (s *service) HasEvent(ctx context.Context, orderID uuid.UUID, eventType enums.EscrowEventType) (bool, error) {
	if orderID == uuid.Nil {
		return false, fmt.Errorf("order id is required")
	}
	if !eventType.IsValid() {
		return false, fmt.Errorf("invalid escrow event type %q", eventType)
	}

	events, err := s.repo.ListByOrderID(ctx, orderID)
	if err != nil {
		return false, err
	}
	for _, event := range events {
		if event.Type == eventType {
			return true, nil
		}
	}
	return false, nil
}

func (s *service) ListForOrder(ctx context.Context, orderID uuid.UUID) ([]models.EscrowEvent, error) {
	if orderID == uuid.Nil {
		return nil, fmt.Errorf("order id is required")
	}
	return s.repo.ListByOrderID(ctx, orderID)
}
