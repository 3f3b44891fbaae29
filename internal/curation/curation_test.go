// curation_test.go provides a shared test database helper for the engine's
// integration tests. Tests are skipped if PostgreSQL is not available.
package curation

import (
	"context"
	"database/sql"
	"os"
	"testing"
	"time"

	"github.com/google/uuid"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose/v3"
	"github.com/stretchr/testify/require"

	"newsdesk/internal/database"
	"newsdesk/internal/models"
)

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

// testDB opens a connection to the test database and runs migrations.
// If the database is unavailable, the test is skipped.
func testDB(t *testing.T) *sql.DB {
	t.Helper()

	host := envOr("POSTGRES_HOST", "localhost")
	port := envOr("POSTGRES_PORT", "5432")
	user := envOr("POSTGRES_USER", "newsdesk")
	pass := envOr("POSTGRES_PASSWORD", "changeme")
	name := envOr("POSTGRES_DB", "newsdesk")
	dsn := "postgres://" + user + ":" + pass + "@" + host + ":" + port + "/" + name + "?sslmode=disable"

	db, err := sql.Open("pgx", dsn)
	if err != nil {
		t.Skipf("skipping integration test: cannot open DB: %v", err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		t.Skipf("skipping integration test: DB not reachable: %v", err)
	}

	if err := database.Migrate(db); err != nil {
		db.Close()
		t.Fatalf("failed to run migrations: %v", err)
	}
	goose.SetBaseFS(nil)

	t.Cleanup(func() { db.Close() })
	return db
}

// resetCuration empties both slots and all curation lists so each test
// starts from a clean engine state.
func resetCuration(t *testing.T, db *sql.DB) {
	t.Helper()
	if _, err := db.Exec(`DELETE FROM curation_entries`); err != nil {
		t.Fatalf("reset curation entries: %v", err)
	}
	if _, err := db.Exec(`UPDATE slots SET article_id = NULL`); err != nil {
		t.Fatalf("reset slots: %v", err)
	}
}

// seedArticle inserts a test article and registers cleanup for it.
// publishedAt only applies to published articles.
func seedArticle(t *testing.T, db *sql.DB, title string, status models.ArticleStatus, publishedAt time.Time) uuid.UUID {
	t.Helper()

	var id uuid.UUID
	var pub *time.Time
	if status == models.ArticleStatusPublished {
		pub = &publishedAt
	}
	err := db.QueryRow(`
		INSERT INTO articles (title, slug, category, status, published_at)
		VALUES ($1, $2, 'magazine', $3, $4)
		RETURNING id
	`, title, "test-"+uuid.NewString(), status, pub).Scan(&id)
	require.NoError(t, err, "seed article")

	t.Cleanup(func() {
		db.Exec(`DELETE FROM articles WHERE id = $1`, id)
	})
	return id
}

// testEngine wires a complete engine over the test database with the
// default featured cap of 3 and editors pick cap of 6, no feed cache.
func testEngine(t *testing.T) (*sql.DB, *Registry, *Lists, *Deriver, *Gateway) {
	t.Helper()

	db := testDB(t)
	resetCuration(t, db)

	registry := NewRegistry(db)
	lists := NewLists(db, 3, 6)
	deriver := NewDeriver(db, lists)
	gateway := NewGateway(db, registry, lists, nil)
	return db, registry, lists, deriver, gateway
}

func ctx() context.Context {
	return context.Background()
}
