package repo

import (
	"context"
	"database/sql"
	"testing"

	"donatrack/internal/infra"
)

func openTestDB(t *testing.T) *sql.DB {
	t.Helper()
	ctx := context.Background()
	db, err := infra.OpenDB(ctx, ":memory:")
	if err != nil {
		t.Fatalf("OpenDB() error: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })
	if err := infra.InitSchema(ctx, db); err != nil {
		t.Fatalf("InitSchema() error: %v", err)
	}
	return db
}
