package mysql

import (
	"context"
	"os"
	"testing"

	"github.com/memvault/memvault/internal/store"
	"github.com/memvault/memvault/internal/store/storetest"
)

// Requires a reachable MySQL instance, e.g.
// MEMVAULT_TEST_MYSQL_DSN=user:pass@tcp(localhost:3306)/memvault_test
func TestMySQLStore_Compliance(t *testing.T) {
	dsn := os.Getenv("MEMVAULT_TEST_MYSQL_DSN")
	if dsn == "" {
		t.Skip("MEMVAULT_TEST_MYSQL_DSN not set")
	}
	storetest.Run(t, func(t *testing.T) store.Store {
		db, err := Open(dsn)
		if err != nil {
			t.Fatalf("open mysql: %v", err)
		}
		ctx := context.Background()
		if err := EnsureSchema(ctx, db); err != nil {
			t.Fatalf("schema: %v", err)
		}
		for _, tbl := range []string{"memories", "albums"} {
			if _, err := db.ExecContext(ctx, "TRUNCATE TABLE "+tbl); err != nil {
				t.Fatalf("truncate %s: %v", tbl, err)
			}
		}
		t.Cleanup(func() { _ = db.Close() })
		return NewWithDB(db)
	})
}
