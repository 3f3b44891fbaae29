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

// Lists manages the three named curation lists. Ranks are kept dense
// (a contiguous 1..N sequence) after every mutation; the deferred unique
// constraint on (list_name, rank) lets the shift statements reorder freely
// inside a transaction while still rejecting a corrupted commit.
type Lists struct {
	db *sql.DB

	// caps holds the maximum length per list; 0 means unbounded.
	caps map[models.ListName]int
}

// NewLists creates the list manager. featuredCap is fixed by product at 3,
// editorsPickCap comes from configuration, trending is unbounded.
func NewLists(db *sql.DB, featuredCap, editorsPickCap int) *Lists {
	return &Lists{
		db: db,
		caps: map[models.ListName]int{
			models.ListFeatured:    featuredCap,
			models.ListEditorsPick: editorsPickCap,
			models.ListTrending:    0,
		},
	}
}

// Cap returns the configured maximum length for a list; 0 means unbounded.
func (l *Lists) Cap(list models.ListName) int {
	return l.caps[list]
}

// Add inserts a published article into a list. atRank 0 means append; any
// other value inserts at that position and shifts neighbors down. Adding an
// article already in the list is a no-op success. When a bounded list is
// full, the least-recently-added member is evicted before the insert, so
// the cap holds after any sequence of adds.
func (l *Lists) Add(ctx context.Context, list models.ListName, articleID uuid.UUID, atRank int) error {
	if err := l.validate(list, articleID); err != nil {
		return err
	}
	if atRank < 0 {
		return fmt.Errorf("%w: negative rank %d", ErrValidation, atRank)
	}

	tx, err := l.db.BeginTx(ctx, nil)
	if err != nil {
		return classify("add to list", err)
	}
	defer tx.Rollback()

	a, err := articles.NewStore(tx).PublishedByID(ctx, articleID)
	if err != nil {
		return classify("add to list", err)
	}
	if a == nil {
		return fmt.Errorf("add to %s: %w", list, ErrNotFound)
	}

	// Duplicate membership is a no-op, not an error.
	var existing int
	err = tx.QueryRowContext(ctx,
		`SELECT rank FROM curation_entries WHERE list_name = $1 AND article_id = $2`,
		list, articleID,
	).Scan(&existing)
	if err == nil {
		return nil
	}
	if err != sql.ErrNoRows {
		return classify("add to list", err)
	}

	// Lock the list's entries so concurrent adds serialize and the
	// count/evict/insert sequence stays consistent.
	var count int
	err = tx.QueryRowContext(ctx, `
		SELECT COUNT(*) FROM (
			SELECT 1 FROM curation_entries WHERE list_name = $1 FOR UPDATE
		) locked
	`, list).Scan(&count)
	if err != nil {
		return classify("add to list", err)
	}

	if limit := l.caps[list]; limit > 0 && count >= limit {
		if err := evictOldest(ctx, tx, list); err != nil {
			return classify("add to list", err)
		}
		count--
	}

	rank := atRank
	if rank == 0 || rank > count {
		rank = count + 1
	} else {
		_, err = tx.ExecContext(ctx,
			`UPDATE curation_entries SET rank = rank + 1 WHERE list_name = $1 AND rank >= $2`,
			list, rank,
		)
		if err != nil {
			return classify("add to list", err)
		}
	}

	_, err = tx.ExecContext(ctx,
		`INSERT INTO curation_entries (list_name, article_id, rank) VALUES ($1, $2, $3)`,
		list, articleID, rank,
	)
	if err != nil {
		return classify("add to list", err)
	}

	return classify("add to list", tx.Commit())
}

// evictOldest removes the least-recently-added member of a list and closes
// the rank gap it leaves behind.
func evictOldest(ctx context.Context, tx *sql.Tx, list models.ListName) error {
	var evictedRank int
	err := tx.QueryRowContext(ctx, `
		DELETE FROM curation_entries
		WHERE list_name = $1 AND article_id = (
			SELECT article_id FROM curation_entries
			WHERE list_name = $1
			ORDER BY added_at ASC
			LIMIT 1
		)
		RETURNING rank
	`, list).Scan(&evictedRank)
	if err != nil {
		return fmt.Errorf("evict oldest: %w", err)
	}

	_, err = tx.ExecContext(ctx,
		`UPDATE curation_entries SET rank = rank - 1 WHERE list_name = $1 AND rank > $2`,
		list, evictedRank,
	)
	if err != nil {
		return fmt.Errorf("compact after evict: %w", err)
	}
	return nil
}

// Remove deletes an article from a list and compacts the remaining ranks.
// Removing an absent member is a no-op success.
func (l *Lists) Remove(ctx context.Context, list models.ListName, articleID uuid.UUID) error {
	if err := l.validate(list, articleID); err != nil {
		return err
	}

	tx, err := l.db.BeginTx(ctx, nil)
	if err != nil {
		return classify("remove from list", err)
	}
	defer tx.Rollback()

	var removedRank int
	err = tx.QueryRowContext(ctx,
		`DELETE FROM curation_entries WHERE list_name = $1 AND article_id = $2 RETURNING rank`,
		list, articleID,
	).Scan(&removedRank)
	if err == sql.ErrNoRows {
		return nil
	}
	if err != nil {
		return classify("remove from list", err)
	}

	_, err = tx.ExecContext(ctx,
		`UPDATE curation_entries SET rank = rank - 1 WHERE list_name = $1 AND rank > $2`,
		list, removedRank,
	)
	if err != nil {
		return classify("remove from list", err)
	}

	return classify("remove from list", tx.Commit())
}

// Reorder moves an article to newRank and shifts the members in between,
// keeping the ordering dense. newRank must land within the current 1..N.
func (l *Lists) Reorder(ctx context.Context, list models.ListName, articleID uuid.UUID, newRank int) error {
	if err := l.validate(list, articleID); err != nil {
		return err
	}
	if newRank < 1 {
		return fmt.Errorf("%w: rank must be at least 1, got %d", ErrValidation, newRank)
	}

	tx, err := l.db.BeginTx(ctx, nil)
	if err != nil {
		return classify("reorder list", err)
	}
	defer tx.Rollback()

	var current int
	err = tx.QueryRowContext(ctx,
		`SELECT rank FROM curation_entries WHERE list_name = $1 AND article_id = $2 FOR UPDATE`,
		list, articleID,
	).Scan(&current)
	if err == sql.ErrNoRows {
		return fmt.Errorf("reorder %s: %w", list, ErrNotFound)
	}
	if err != nil {
		return classify("reorder list", err)
	}

	var count int
	err = tx.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM curation_entries WHERE list_name = $1`,
		list,
	).Scan(&count)
	if err != nil {
		return classify("reorder list", err)
	}
	if newRank > count {
		return fmt.Errorf("%w: rank %d exceeds list length %d", ErrValidation, newRank, count)
	}
	if newRank == current {
		return nil
	}

	if newRank > current {
		_, err = tx.ExecContext(ctx, `
			UPDATE curation_entries SET rank = rank - 1
			WHERE list_name = $1 AND rank > $2 AND rank <= $3
		`, list, current, newRank)
	} else {
		_, err = tx.ExecContext(ctx, `
			UPDATE curation_entries SET rank = rank + 1
			WHERE list_name = $1 AND rank >= $3 AND rank < $2
		`, list, current, newRank)
	}
	if err != nil {
		return classify("reorder list", err)
	}

	_, err = tx.ExecContext(ctx,
		`UPDATE curation_entries SET rank = $3 WHERE list_name = $1 AND article_id = $2`,
		list, articleID, newRank,
	)
	if err != nil {
		return classify("reorder list", err)
	}

	return classify("reorder list", tx.Commit())
}

// SetGrowth updates the stored display metric for a trending member. The
// metric never reorders anything; ranking stays manually curated.
func (l *Lists) SetGrowth(ctx context.Context, articleID uuid.UUID, rate float64) error {
	if articleID == uuid.Nil {
		return fmt.Errorf("%w: empty article id", ErrValidation)
	}

	res, err := l.db.ExecContext(ctx,
		`UPDATE curation_entries SET growth_rate = $2 WHERE list_name = $1 AND article_id = $3`,
		models.ListTrending, rate, articleID,
	)
	if err != nil {
		return classify("set growth", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return classify("set growth", err)
	}
	if n == 0 {
		return fmt.Errorf("set growth: %w", ErrNotFound)
	}
	return nil
}

// Entries returns a page of a list in ascending rank order with hydrated
// article references. The single SELECT reads one MVCC snapshot, so a page
// in progress is unaffected by concurrent writes and never blocks on them.
func (l *Lists) Entries(ctx context.Context, list models.ListName, page, pageSize int) ([]models.CurationEntry, error) {
	if !models.ValidList(list) {
		return nil, fmt.Errorf("%w: unknown list %q", ErrValidation, list)
	}
	if page < 1 {
		page = 1
	}
	if pageSize < 1 {
		pageSize = 20
	}

	rows, err := l.db.QueryContext(ctx, `
		SELECT e.list_name, e.article_id, e.rank, e.growth_rate, e.added_at,
		       a.id, a.title, a.slug, a.category, a.status,
		       a.cover_image, a.published_at, a.created_at, a.updated_at
		FROM curation_entries e
		JOIN articles a ON a.id = e.article_id
		WHERE e.list_name = $1
		ORDER BY e.rank ASC
		LIMIT $2 OFFSET $3
	`, list, pageSize, (page-1)*pageSize)
	if err != nil {
		return nil, classify("list entries", err)
	}
	defer rows.Close()

	var entries []models.CurationEntry
	for rows.Next() {
		var (
			e models.CurationEntry
			a models.Article
		)
		if err := rows.Scan(
			&e.List, &e.ArticleID, &e.Rank, &e.GrowthRate, &e.AddedAt,
			&a.ID, &a.Title, &a.Slug, &a.Category, &a.Status,
			&a.CoverImage, &a.PublishedAt, &a.CreatedAt, &a.UpdatedAt,
		); err != nil {
			return nil, classify("list entries", err)
		}
		e.Article = &a
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, classify("list entries", err)
	}
	return entries, nil
}

func (l *Lists) validate(list models.ListName, articleID uuid.UUID) error {
	if !models.ValidList(list) {
		return fmt.Errorf("%w: unknown list %q", ErrValidation, list)
	}
	if articleID == uuid.Nil {
		return fmt.Errorf("%w: empty article id", ErrValidation)
	}
	return nil
}
