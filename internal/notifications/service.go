package notifications

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/agritrust/agritrust-backend/pkg/db/models"
	pkgerrors "github.com/agritrust/agritrust-backend/pkg/errors"
)

// DefaultRetention matches the cap the dashboards render.
const DefaultRetention = 8

// Service defines the bounded, newest-first notification log.
type Service interface {
	// Append writes a notification inside the caller's transaction and
	// prunes entries beyond the retention cap, oldest first.
	Append(ctx context.Context, tx *gorm.DB, actorID uuid.UUID, message string) error
	Recent(ctx context.Context, actorID uuid.UUID, limit int) ([]models.Notification, error)
	Count(ctx context.Context, actorID uuid.UUID) (int64, error)
}

type service struct {
	repo      Repository
	retention int
}

// NewService wires notification dependencies. retention <= 0 falls back to
// the default cap.
func NewService(repo Repository, retention int) (Service, error) {
	if repo == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "notifications repository required")
	}
	if retention <= 0 {
		retention = DefaultRetention
	}
	return &service{repo: repo, retention: retention}, nil
}

func (s *service) Append(ctx context.Context, tx *gorm.DB, actorID uuid.UUID, message string) error {
	if actorID == uuid.Nil {
		return pkgerrors.New(pkgerrors.CodeValidation, "actor id required")
	}
	if message == "" {
		return pkgerrors.New(pkgerrors.CodeValidation, "message required")
	}

	repo := s.repo.WithTx(tx)
	if err := repo.Create(ctx, &models.Notification{ActorID: actorID, Message: message}); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "append notification")
	}
	if _, err := repo.PruneBeyond(ctx, actorID, s.retention); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "prune notifications")
	}
	return nil
}

func (s *service) Recent(ctx context.Context, actorID uuid.UUID, limit int) ([]models.Notification, error) {
	if actorID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "actor id required")
	}
	if limit <= 0 || limit > s.retention {
		limit = s.retention
	}
	rows, err := s.repo.ListRecent(ctx, actorID, limit)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list notifications")
	}
	return rows, nil
}

func (s *service) Count(ctx context.Context, actorID uuid.UUID) (int64, error) {
	if actorID == uuid.Nil {
		return 0, pkgerrors.New(pkgerrors.CodeValidation, "actor id required")
	}
	count, err := s.repo.CountByActor(ctx, actorID)
	if err != nil {
		return 0, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "count notifications")
	}
	return count, nil
}
