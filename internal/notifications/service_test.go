package notifications

import (
	"context"
	"fmt"
	"testing"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/agritrust/agritrust-backend/pkg/db/models"
	pkgerrors "github.com/agritrust/agritrust-backend/pkg/errors"
)

// memRepo keeps notifications in insertion order, newest last.
type memRepo struct {
	notes []models.Notification
}

func (m *memRepo) WithTx(*gorm.DB) Repository { return m }

func (m *memRepo) Create(_ context.Context, note *models.Notification) error {
	note.ID = uuid.New()
	m.notes = append(m.notes, *note)
	return nil
}

func (m *memRepo) PruneBeyond(_ context.Context, actorID uuid.UUID, keep int) (int64, error) {
	var mine, others []models.Notification
	for _, note := range m.notes {
		if note.ActorID == actorID {
			mine = append(mine, note)
		} else {
			others = append(others, note)
		}
	}
	if len(mine) <= keep {
		return 0, nil
	}
	pruned := int64(len(mine) - keep)
	m.notes = append(others, mine[len(mine)-keep:]...)
	return pruned, nil
}

func (m *memRepo) ListRecent(_ context.Context, actorID uuid.UUID, limit int) ([]models.Notification, error) {
	var rows []models.Notification
	for i := len(m.notes) - 1; i >= 0 && len(rows) < limit; i-- {
		if m.notes[i].ActorID == actorID {
			rows = append(rows, m.notes[i])
		}
	}
	return rows, nil
}

func (m *memRepo) CountByActor(_ context.Context, actorID uuid.UUID) (int64, error) {
	var count int64
	for _, note := range m.notes {
		if note.ActorID == actorID {
			count++
		}
	}
	return count, nil
}

func TestAppendPrunesBeyondRetention(t *testing.T) {
	repo := &memRepo{}
	svc, err := NewService(repo, 5)
	if err != nil {
		t.Fatalf("new service: %v", err)
	}
	ctx := context.Background()
	actorID := uuid.New()

	for i := 1; i <= 9; i++ {
		if err := svc.Append(ctx, nil, actorID, fmt.Sprintf("event %d", i)); err != nil {
			t.Fatalf("append %d: %v", i, err)
		}
	}

	count, err := svc.Count(ctx, actorID)
	if err != nil {
		t.Fatalf("count: %v", err)
	}
	if count != 5 {
		t.Fatalf("count = %d, want retention cap 5", count)
	}

	recent, err := svc.Recent(ctx, actorID, 0)
	if err != nil {
		t.Fatalf("recent: %v", err)
	}
	if len(recent) != 5 {
		t.Fatalf("recent = %d rows, want 5", len(recent))
	}
	// Newest first: events 9 down to 5 survive.
	for i, note := range recent {
		want := fmt.Sprintf("event %d", 9-i)
		if note.Message != want {
			t.Fatalf("recent[%d] = %q, want %q", i, note.Message, want)
		}
	}
}

func TestAppendIsScopedPerActor(t *testing.T) {
	repo := &memRepo{}
	svc, err := NewService(repo, 3)
	if err != nil {
		t.Fatalf("new service: %v", err)
	}
	ctx := context.Background()
	first := uuid.New()
	second := uuid.New()

	for i := 0; i < 4; i++ {
		if err := svc.Append(ctx, nil, first, fmt.Sprintf("first %d", i)); err != nil {
			t.Fatalf("append: %v", err)
		}
	}
	if err := svc.Append(ctx, nil, second, "second 0"); err != nil {
		t.Fatalf("append: %v", err)
	}

	firstCount, _ := svc.Count(ctx, first)
	secondCount, _ := svc.Count(ctx, second)
	if firstCount != 3 {
		t.Fatalf("first count = %d, want 3", firstCount)
	}
	if secondCount != 1 {
		t.Fatalf("second count = %d, want 1; pruning must not cross actors", secondCount)
	}
}

func TestRecentClampsLimitToRetention(t *testing.T) {
	repo := &memRepo{}
	svc, err := NewService(repo, 4)
	if err != nil {
		t.Fatalf("new service: %v", err)
	}
	ctx := context.Background()
	actorID := uuid.New()

	for i := 0; i < 4; i++ {
		if err := svc.Append(ctx, nil, actorID, fmt.Sprintf("event %d", i)); err != nil {
			t.Fatalf("append: %v", err)
		}
	}

	rows, err := svc.Recent(ctx, actorID, 100)
	if err != nil {
		t.Fatalf("recent: %v", err)
	}
	if len(rows) != 4 {
		t.Fatalf("recent = %d rows, want clamp at 4", len(rows))
	}
}

func TestAppendValidation(t *testing.T) {
	svc, err := NewService(&memRepo{}, 0)
	if err != nil {
		t.Fatalf("new service: %v", err)
	}
	ctx := context.Background()

	if err := svc.Append(ctx, nil, uuid.Nil, "message"); !pkgerrors.IsCode(err, pkgerrors.CodeValidation) {
		t.Fatalf("nil actor error = %v, want VALIDATION_ERROR", err)
	}
	if err := svc.Append(ctx, nil, uuid.New(), ""); !pkgerrors.IsCode(err, pkgerrors.CodeValidation) {
		t.Fatalf("empty message error = %v, want VALIDATION_ERROR", err)
	}
}
