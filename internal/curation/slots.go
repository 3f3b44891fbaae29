// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package curation

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/google/uuid"

	"newsdesk/internal/articles"
	"newsdesk/internal/models"
)

// Registry holds the current occupant of each fixed position. Both rows
// exist from the first migration on; occupancy is the nullable article_id.
// Every mutation is a single transaction, so two concurrent admin sessions
// serialize on the row locks and a reader never observes a half-applied
// state.
type Registry struct {
	db *sql.DB
}

// NewRegistry creates a slot registry over the given connection pool.
func NewRegistry(db *sql.DB) *Registry {
	return &Registry{db: db}
}

// Set assigns a published article to a slot, replacing any current
// occupant. If the article already occupies the other slot, that occupancy
// is cleared in the same transaction: an article is never pinned twice.
func (r *Registry) Set(ctx context.Context, slot models.Slot, articleID uuid.UUID) error {
	if !models.ValidSlot(slot) {
		return fmt.Errorf("%w: unknown slot %q", ErrValidation, slot)
	}
	if articleID == uuid.Nil {
		return fmt.Errorf("%w: empty article id", ErrValidation)
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return classify("set slot", err)
	}
	defer tx.Rollback()

	// Lock both slot rows in one statement before anything else. Concurrent
	// Sets serialize here, so the exclusion check below always sees the
	// latest committed occupancy rather than a stale snapshot in which the
	// same article could slip into both slots.
	if _, err := tx.ExecContext(ctx, `SELECT name FROM slots FOR UPDATE`); err != nil {
		return classify("set slot", err)
	}

	a, err := articles.NewStore(tx).PublishedByID(ctx, articleID)
	if err != nil {
		return classify("set slot", err)
	}
	if a == nil {
		return fmt.Errorf("set slot %s: %w", slot, ErrNotFound)
	}

	// Mutual exclusion: vacate the other slot if this article holds it.
	_, err = tx.ExecContext(ctx,
		`UPDATE slots SET article_id = NULL, updated_at = now()
		 WHERE name = $1 AND article_id = $2`,
		slot.Other(), articleID,
	)
	if err != nil {
		return classify("set slot", err)
	}

	_, err = tx.ExecContext(ctx,
		`UPDATE slots SET article_id = $2, updated_at = now() WHERE name = $1`,
		slot, articleID,
	)
	if err != nil {
		return classify("set slot", err)
	}

	return classify("set slot", tx.Commit())
}

// Remove clears a slot. Clearing an already-empty slot is a no-op success.
func (r *Registry) Remove(ctx context.Context, slot models.Slot) error {
	if !models.ValidSlot(slot) {
		return fmt.Errorf("%w: unknown slot %q", ErrValidation, slot)
	}

	_, err := r.db.ExecContext(ctx,
		`UPDATE slots SET article_id = NULL, updated_at = now() WHERE name = $1`,
		slot,
	)
	return classify("remove slot", err)
}

// Swap exchanges the occupants of main and second. The UPDATE..FROM
// self-join reads both rows from the statement's snapshot, so the exchange
// commits as one atomic write and applying it twice restores the original
// configuration. An empty slot simply swaps its emptiness.
func (r *Registry) Swap(ctx context.Context) error {
	_, err := r.db.ExecContext(ctx, `
		UPDATE slots s
		SET article_id = o.article_id, updated_at = now()
		FROM slots o
		WHERE (s.name = 'main' AND o.name = 'second')
		   OR (s.name = 'second' AND o.name = 'main')
	`)
	return classify("swap slots", err)
}

// Get returns the current occupancy of both slots with hydrated article
// references. Read-only and side-effect free; an occupant that has slipped
// out of published status since assignment is reported as empty.
func (r *Registry) Get(ctx context.Context) (*models.SlotState, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT s.name,
		       a.id, a.title, a.slug, a.category, a.status,
		       a.cover_image, a.published_at, a.created_at, a.updated_at
		FROM slots s
		LEFT JOIN articles a ON a.id = s.article_id AND a.status = 'published'
		ORDER BY s.name
	`)
	if err != nil {
		return nil, classify("get slots", err)
	}
	defer rows.Close()

	state := &models.SlotState{}
	for rows.Next() {
		var (
			name      models.Slot
			id        uuid.NullUUID
			title     sql.NullString
			slug      sql.NullString
			category  sql.NullString
			status    sql.NullString
			cover     sql.NullString
			published sql.NullTime
			created   sql.NullTime
			updated   sql.NullTime
		)
		if err := rows.Scan(&name, &id, &title, &slug, &category, &status,
			&cover, &published, &created, &updated); err != nil {
			return nil, classify("get slots", err)
		}

		var a *models.Article
		if id.Valid {
			a = &models.Article{
				ID:        id.UUID,
				Title:     title.String,
				Slug:      slug.String,
				Category:  category.String,
				Status:    models.ArticleStatus(status.String),
				CreatedAt: created.Time,
				UpdatedAt: updated.Time,
			}
			if cover.Valid {
				a.CoverImage = &cover.String
			}
			if published.Valid {
				a.PublishedAt = &published.Time
			}
		}

		switch name {
		case models.SlotMain:
			state.Main = a
		case models.SlotSecond:
			state.Second = a
		}
	}
	if err := rows.Err(); err != nil {
		return nil, classify("get slots", err)
	}
	return state, nil
}
