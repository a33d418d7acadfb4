package migrate

import (
	"context"
	"io"
	"path/filepath"
	"testing"

	"github.com/google/uuid"

	"github.com/agritrust/agritrust-backend/pkg/config"
	"github.com/agritrust/agritrust-backend/pkg/db"
	"github.com/agritrust/agritrust-backend/pkg/logger"
)

// The schema has to apply cleanly under sqlite as well as postgres, since
// dev mode auto-runs it against a local sqlite file.
func TestRunAppliesSchemaOnSQLite(t *testing.T) {
	ctx := context.Background()
	logg := logger.New(logger.Options{ServiceName: "test", Output: io.Discard})

	client, err := db.New(ctx, config.DBConfig{
		SQLitePath: filepath.Join(t.TempDir(), "escrow.db"),
	}, true, logg)
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	t.Cleanup(func() { _ = client.Close() })

	sqlDB, err := client.DB().DB()
	if err != nil {
		t.Fatalf("sql handle: %v", err)
	}

	if err := Run(ctx, sqlDB, "sqlite3", "migrations", "up"); err != nil {
		t.Fatalf("goose up: %v", err)
	}

	// Timestamp and balance defaults must fill in for a minimal insert.
	id := uuid.NewString()
	if err := client.DB().Exec(
		"INSERT INTO actors (id, name, role) VALUES (?, ?, ?)", id, "SellerA", "farmer",
	).Error; err != nil {
		t.Fatalf("insert actor: %v", err)
	}

	var count int64
	if err := client.DB().Raw(
		"SELECT COUNT(*) FROM actors WHERE id = ? AND created_at IS NOT NULL AND balance_units = 0", id,
	).Scan(&count).Error; err != nil {
		t.Fatalf("query actor: %v", err)
	}
	if count != 1 {
		t.Fatalf("seeded actor rows = %d, want 1 with defaults applied", count)
	}

	if err := Run(ctx, sqlDB, "sqlite3", "migrations", "down"); err != nil {
		t.Fatalf("goose down: %v", err)
	}
}
