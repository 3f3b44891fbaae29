// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package curation

import (
	"context"
	"database/sql"
	"fmt"

	sq "github.com/Masterminds/squirrel"

	"newsdesk/internal/models"
)

// Deriver computes the read-only derived views by combining the article
// pool with current slot and list state. Every view is recomputed on demand
// from whatever snapshot is current; none of them is a source of truth, and
// missing data degrades to an empty sequence rather than an error.
type Deriver struct {
	db    *sql.DB
	lists *Lists
}

// NewDeriver creates a derivation engine over the given pool.
func NewDeriver(db *sql.DB, lists *Lists) *Deriver {
	return &Deriver{db: db, lists: lists}
}

var psql = sq.StatementBuilder.PlaceholderFormat(sq.Dollar)

// LatestExcludingSlots returns the newest published articles that are not
// currently pinned to main or second. This is the complement set the admin
// selection pickers feed from: an id held by a slot never appears here.
func (d *Deriver) LatestExcludingSlots(ctx context.Context, limit int) ([]models.Article, error) {
	if limit < 1 {
		limit = 10
	}

	query, args, err := psql.
		Select("id", "title", "slug", "category", "status",
			"cover_image", "published_at", "created_at", "updated_at").
		From("articles").
		Where(sq.Eq{"status": models.ArticleStatusPublished}).
		Where("id NOT IN (SELECT article_id FROM slots WHERE article_id IS NOT NULL)").
		OrderBy("published_at DESC NULLS LAST").
		Limit(uint64(limit)).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build latest query: %w", err)
	}

	rows, err := d.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, classify("latest excluding slots", err)
	}
	defer rows.Close()

	return scanArticles(rows)
}

// TrendingRanked returns the trending list in ascending rank order, each
// entry carrying its stored growth metric. Promote and demote are the only
// rank mutators; no automatic re-ranking pass exists.
func (d *Deriver) TrendingRanked(ctx context.Context, page, pageSize int) ([]models.CurationEntry, error) {
	return d.lists.Entries(ctx, models.ListTrending, page, pageSize)
}

// FeaturedLatest returns the featured list's articles sorted by publish
// date descending. This display ordering is distinct from the list's
// insertion rank.
func (d *Deriver) FeaturedLatest(ctx context.Context, limit int) ([]models.Article, error) {
	if limit < 1 {
		limit = 3
	}

	query, args, err := psql.
		Select("a.id", "a.title", "a.slug", "a.category", "a.status",
			"a.cover_image", "a.published_at", "a.created_at", "a.updated_at").
		From("curation_entries e").
		Join("articles a ON a.id = e.article_id").
		Where(sq.Eq{"e.list_name": models.ListFeatured}).
		Where(sq.Eq{"a.status": models.ArticleStatusPublished}).
		OrderBy("COALESCE(a.published_at, a.created_at) DESC").
		Limit(uint64(limit)).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build featured query: %w", err)
	}

	rows, err := d.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, classify("featured latest", err)
	}
	defer rows.Close()

	return scanArticles(rows)
}

func scanArticles(rows *sql.Rows) ([]models.Article, error) {
	var items []models.Article
	for rows.Next() {
		var a models.Article
		if err := rows.Scan(
			&a.ID, &a.Title, &a.Slug, &a.Category, &a.Status,
			&a.CoverImage, &a.PublishedAt, &a.CreatedAt, &a.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("scan article: %w", err)
		}
		items = append(items, a)
	}
	return items, rows.Err()
}
