// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// handler_test.go provides shared test infrastructure for handler
// integration tests. Tests are skipped when PostgreSQL is unavailable; the
// feed cache is left nil since caching is optional by design.
package handlers_test

import (
	"bytes"
	"database/sql"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose/v3"

	"newsdesk/internal/curation"
	"newsdesk/internal/database"
	"newsdesk/internal/handlers"
	"newsdesk/internal/models"
	"newsdesk/internal/router"
)

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

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
		t.Skipf("skipping: cannot open DB: %v", err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		t.Skipf("skipping: DB not reachable: %v", err)
	}
	if err := database.Migrate(db); err != nil {
		db.Close()
		t.Fatalf("migrate: %v", err)
	}
	goose.SetBaseFS(nil)

	t.Cleanup(func() { db.Close() })
	return db
}

// testEnv holds the wired engine and router for handler tests.
type testEnv struct {
	DB     *sql.DB
	Router chi.Router
}

// newTestEnv builds the full stack over the test database with empty
// curation state and no feed cache.
func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	db := testDB(t)
	if _, err := db.Exec(`DELETE FROM curation_entries`); err != nil {
		t.Fatalf("reset curation entries: %v", err)
	}
	if _, err := db.Exec(`UPDATE slots SET article_id = NULL`); err != nil {
		t.Fatalf("reset slots: %v", err)
	}

	registry := curation.NewRegistry(db)
	lists := curation.NewLists(db, 3, 6)
	deriver := curation.NewDeriver(db, lists)
	gateway := curation.NewGateway(db, registry, lists, nil)

	admin := handlers.NewAdmin(gateway, deriver)
	public := handlers.NewPublic(deriver, gateway, nil)
	r := router.New(admin, public, nil)

	return &testEnv{DB: db, Router: r}
}

// seedPublished inserts a published article directly and registers cleanup.
func (env *testEnv) seedPublished(t *testing.T, title string, publishedAt time.Time) uuid.UUID {
	t.Helper()

	var id uuid.UUID
	err := env.DB.QueryRow(`
		INSERT INTO articles (title, slug, category, status, published_at)
		VALUES ($1, $2, 'magazine', 'published', $3)
		RETURNING id
	`, title, "h-"+uuid.NewString(), publishedAt).Scan(&id)
	if err != nil {
		t.Fatalf("seed article: %v", err)
	}
	t.Cleanup(func() {
		env.DB.Exec(`DELETE FROM articles WHERE id = $1`, id)
	})
	return id
}

// do performs a request against the router and returns the recorder.
func (env *testEnv) do(t *testing.T, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()

	var reader *bytes.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("marshal body: %v", err)
		}
		reader = bytes.NewReader(data)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	rec := httptest.NewRecorder()
	env.Router.ServeHTTP(rec, req)
	return rec
}

// decode unmarshals a recorder body into dst.
func decode(t *testing.T, rec *httptest.ResponseRecorder, dst any) {
	t.Helper()
	if err := json.Unmarshal(rec.Body.Bytes(), dst); err != nil {
		t.Fatalf("decode response %q: %v", rec.Body.String(), err)
	}
}

// slotsState fetches the current slot occupancy through the API.
func (env *testEnv) slotsState(t *testing.T) models.SlotState {
	t.Helper()
	rec := env.do(t, http.MethodGet, "/admin/api/slots/", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("get slots: status %d", rec.Code)
	}
	var state models.SlotState
	decode(t, rec, &state)
	return state
}
