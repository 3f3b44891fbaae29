// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package articles is the adapter in front of the article system of record.
// The curation engine reads and writes curation metadata about articles but
// never owns article content; everything it sees goes through this boundary,
// which also normalizes legacy field aliases into the canonical shape.
package articles

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/google/uuid"

	"newsdesk/internal/models"
)

const articleColumns = `id, title, slug, category, status, cover_image, published_at, created_at, updated_at`

// DBTX is the database handle subset the store needs. Both *sql.DB and
// *sql.Tx satisfy it, so the curation gateway can run article writes inside
// its cascade transactions.
type DBTX interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// Store handles article database operations.
type Store struct {
	db DBTX
}

// NewStore creates a new article Store with the given database handle.
func NewStore(db DBTX) *Store {
	return &Store{db: db}
}

// Input is the write shape accepted from admin clients. Older call paths
// send the cover image under "image" or "thumbnail"; CoverImage wins when
// several are present.
type Input struct {
	Title      string               `json:"title"`
	Slug       string               `json:"slug"`
	Category   string               `json:"category"`
	Status     models.ArticleStatus `json:"status"`
	CoverImage string               `json:"cover_image"`
	Image      string               `json:"image"`
	Thumbnail  string               `json:"thumbnail"`
}

// canonicalImage collapses the image aliases into one nullable value.
func (in *Input) canonicalImage() *string {
	for _, v := range []string{in.CoverImage, in.Image, in.Thumbnail} {
		if s := strings.TrimSpace(v); s != "" {
			return &s
		}
	}
	return nil
}

// ByID retrieves an article by id. Returns nil if not found.
func (s *Store) ByID(ctx context.Context, id uuid.UUID) (*models.Article, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+articleColumns+` FROM articles WHERE id = $1`, id)
	a, err := scanArticle(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("article by id: %w", err)
	}
	return a, nil
}

// PublishedByID retrieves an article by id only if it is published.
// Returns nil if the article does not exist or is not published.
func (s *Store) PublishedByID(ctx context.Context, id uuid.UUID) (*models.Article, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+articleColumns+` FROM articles WHERE id = $1 AND status = 'published'`, id)
	a, err := scanArticle(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("published article by id: %w", err)
	}
	return a, nil
}

// Sortable columns for ListPublished. Anything else falls back to publish date.
var sortColumns = map[string]string{
	"published_at": "published_at",
	"created_at":   "created_at",
	"title":        "title",
}

// ListPublished returns a page of published articles. sortBy and order vary
// per caller (admin pickers sort by different columns), so the query is
// built dynamically.
func (s *Store) ListPublished(ctx context.Context, sortBy, order string, page, pageSize int) ([]models.Article, error) {
	col, ok := sortColumns[sortBy]
	if !ok {
		col = "published_at"
	}
	dir := "DESC"
	if strings.EqualFold(order, "asc") {
		dir = "ASC"
	}
	if page < 1 {
		page = 1
	}
	if pageSize < 1 {
		pageSize = 20
	}

	query, args, err := sq.Select(strings.Split(articleColumns, ", ")...).
		From("articles").
		Where(sq.Eq{"status": models.ArticleStatusPublished}).
		OrderBy(col + " " + dir + " NULLS LAST").
		Limit(uint64(pageSize)).
		Offset(uint64((page - 1) * pageSize)).
		PlaceholderFormat(sq.Dollar).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build list published: %w", err)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list published: %w", err)
	}
	defer rows.Close()

	return collectArticles(rows)
}

// Create inserts a new article and returns it with the generated id.
// Publishing sets published_at when it is not already set.
func (s *Store) Create(ctx context.Context, in *Input) (*models.Article, error) {
	var publishedAt *time.Time
	if in.Status == models.ArticleStatusPublished {
		now := time.Now()
		publishedAt = &now
	}

	row := s.db.QueryRowContext(ctx, `
		INSERT INTO articles (title, slug, category, status, cover_image, published_at)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING `+articleColumns,
		in.Title, in.Slug, in.Category, in.Status, in.canonicalImage(), publishedAt,
	)
	a, err := scanArticle(row)
	if err != nil {
		return nil, fmt.Errorf("create article: %w", err)
	}
	return a, nil
}

// SetStatus transitions an article's publishing status and returns the
// updated article. Returns nil if the article does not exist. The caller is
// responsible for running the curation cascade when the article leaves
// published status.
func (s *Store) SetStatus(ctx context.Context, id uuid.UUID, status models.ArticleStatus) (*models.Article, error) {
	row := s.db.QueryRowContext(ctx, `
		UPDATE articles SET
			status = $1,
			published_at = CASE
				WHEN $1 = 'published' AND published_at IS NULL THEN now()
				ELSE published_at
			END,
			updated_at = now()
		WHERE id = $2
		RETURNING `+articleColumns,
		status, id,
	)
	a, err := scanArticle(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("set article status: %w", err)
	}
	return a, nil
}

// Delete removes an article by id. Reports whether a row was deleted.
// The caller is responsible for running the curation cascade.
func (s *Store) Delete(ctx context.Context, id uuid.UUID) (bool, error) {
	res, err := s.db.ExecContext(ctx, `DELETE FROM articles WHERE id = $1`, id)
	if err != nil {
		return false, fmt.Errorf("delete article: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("delete article rows: %w", err)
	}
	return n > 0, nil
}

// CountByStatus returns the number of articles in the given status.
func (s *Store) CountByStatus(ctx context.Context, status models.ArticleStatus) (int, error) {
	var count int
	err := s.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM articles WHERE status = $1`, status).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("count articles: %w", err)
	}
	return count, nil
}

// rowScanner covers both *sql.Row and *sql.Rows.
type rowScanner interface {
	Scan(dest ...any) error
}

func scanArticle(r rowScanner) (*models.Article, error) {
	a := &models.Article{}
	err := r.Scan(
		&a.ID, &a.Title, &a.Slug, &a.Category, &a.Status,
		&a.CoverImage, &a.PublishedAt, &a.CreatedAt, &a.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return a, nil
}

func collectArticles(rows *sql.Rows) ([]models.Article, error) {
	var items []models.Article
	for rows.Next() {
		a, err := scanArticle(rows)
		if err != nil {
			return nil, fmt.Errorf("scan article: %w", err)
		}
		items = append(items, *a)
	}
	return items, rows.Err()
}
