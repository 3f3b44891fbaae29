// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package curation

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"strings"

	"github.com/google/uuid"

	"newsdesk/internal/articles"
	"newsdesk/internal/models"
)

// FeedInvalidator drops cached derived feeds after a successful mutation.
// Implemented by the Valkey feed cache; nil disables caching entirely.
type FeedInvalidator interface {
	InvalidateAll(ctx context.Context)
}

// Gateway is the single entry point for curation mutations. Every write is
// validated first, applied as one transaction, and only then reflected into
// the read-side cache. The durable store always commits before the cache
// learns anything.
type Gateway struct {
	db    *sql.DB
	slots *Registry
	lists *Lists
	feeds FeedInvalidator
}

// NewGateway wires the curation façade.
func NewGateway(db *sql.DB, slots *Registry, lists *Lists, feeds FeedInvalidator) *Gateway {
	return &Gateway{db: db, slots: slots, lists: lists, feeds: feeds}
}

// invalidate drops all cached feeds after a committed mutation.
func (g *Gateway) invalidate(ctx context.Context) {
	if g.feeds != nil {
		g.feeds.InvalidateAll(ctx)
	}
}

// --- Slot operations ---

// SetSlot assigns an article to a fixed position.
func (g *Gateway) SetSlot(ctx context.Context, slot models.Slot, articleID uuid.UUID) error {
	if err := g.slots.Set(ctx, slot, articleID); err != nil {
		return err
	}
	slog.Info("slot assigned", "slot", slot, "article_id", articleID)
	g.invalidate(ctx)
	return nil
}

// ClearSlot empties a fixed position.
func (g *Gateway) ClearSlot(ctx context.Context, slot models.Slot) error {
	if err := g.slots.Remove(ctx, slot); err != nil {
		return err
	}
	slog.Info("slot cleared", "slot", slot)
	g.invalidate(ctx)
	return nil
}

// SwapSlots exchanges the occupants of main and second.
func (g *Gateway) SwapSlots(ctx context.Context) error {
	if err := g.slots.Swap(ctx); err != nil {
		return err
	}
	slog.Info("slots swapped")
	g.invalidate(ctx)
	return nil
}

// Slots returns the current occupancy of both positions.
func (g *Gateway) Slots(ctx context.Context) (*models.SlotState, error) {
	return g.slots.Get(ctx)
}

// --- List operations ---

// PromoteTrending appends an article to the trending list at the next
// available rank. Promoting a current member is a no-op.
func (g *Gateway) PromoteTrending(ctx context.Context, articleID uuid.UUID) error {
	if err := g.lists.Add(ctx, models.ListTrending, articleID, 0); err != nil {
		return err
	}
	slog.Info("article promoted to trending", "article_id", articleID)
	g.invalidate(ctx)
	return nil
}

// DemoteTrending removes an article from trending; subsequent ranks compact.
func (g *Gateway) DemoteTrending(ctx context.Context, articleID uuid.UUID) error {
	if err := g.lists.Remove(ctx, models.ListTrending, articleID); err != nil {
		return err
	}
	slog.Info("article demoted from trending", "article_id", articleID)
	g.invalidate(ctx)
	return nil
}

// SetFeatured adds an article to the featured list, evicting the oldest
// member when the cap is reached.
func (g *Gateway) SetFeatured(ctx context.Context, articleID uuid.UUID) error {
	return g.AddToList(ctx, models.ListFeatured, articleID, 0)
}

// UnsetFeatured removes an article from the featured list.
func (g *Gateway) UnsetFeatured(ctx context.Context, articleID uuid.UUID) error {
	return g.RemoveFromList(ctx, models.ListFeatured, articleID)
}

// SetEditorsPick adds an article to the editor's pick list.
func (g *Gateway) SetEditorsPick(ctx context.Context, articleID uuid.UUID) error {
	return g.AddToList(ctx, models.ListEditorsPick, articleID, 0)
}

// UnsetEditorsPick removes an article from the editor's pick list.
func (g *Gateway) UnsetEditorsPick(ctx context.Context, articleID uuid.UUID) error {
	return g.RemoveFromList(ctx, models.ListEditorsPick, articleID)
}

// AddToList inserts an article into any named list at an optional rank.
func (g *Gateway) AddToList(ctx context.Context, list models.ListName, articleID uuid.UUID, atRank int) error {
	if err := g.lists.Add(ctx, list, articleID, atRank); err != nil {
		return err
	}
	slog.Info("article added to list", "list", list, "article_id", articleID)
	g.invalidate(ctx)
	return nil
}

// RemoveFromList deletes an article from any named list.
func (g *Gateway) RemoveFromList(ctx context.Context, list models.ListName, articleID uuid.UUID) error {
	if err := g.lists.Remove(ctx, list, articleID); err != nil {
		return err
	}
	slog.Info("article removed from list", "list", list, "article_id", articleID)
	g.invalidate(ctx)
	return nil
}

// ReorderList moves an article to a new rank within its list.
func (g *Gateway) ReorderList(ctx context.Context, list models.ListName, articleID uuid.UUID, newRank int) error {
	if err := g.lists.Reorder(ctx, list, articleID, newRank); err != nil {
		return err
	}
	slog.Info("list reordered", "list", list, "article_id", articleID, "rank", newRank)
	g.invalidate(ctx)
	return nil
}

// SetTrendingGrowth stores the display metric shown next to a trending
// entry. It does not reorder anything.
func (g *Gateway) SetTrendingGrowth(ctx context.Context, articleID uuid.UUID, rate float64) error {
	if err := g.lists.SetGrowth(ctx, articleID, rate); err != nil {
		return err
	}
	g.invalidate(ctx)
	return nil
}

// Entries returns a page of a curation list.
func (g *Gateway) Entries(ctx context.Context, list models.ListName, page, pageSize int) ([]models.CurationEntry, error) {
	return g.lists.Entries(ctx, list, page, pageSize)
}

// --- Cascade and article lifecycle ---

// Article returns a single article by id, any status. The console edit view
// reads drafts through this.
func (g *Gateway) Article(ctx context.Context, articleID uuid.UUID) (*models.Article, error) {
	if articleID == uuid.Nil {
		return nil, fmt.Errorf("%w: empty article id", ErrValidation)
	}
	a, err := articles.NewStore(g.db).ByID(ctx, articleID)
	if err != nil {
		return nil, classify("article by id", err)
	}
	if a == nil {
		return nil, fmt.Errorf("article by id: %w", ErrNotFound)
	}
	return a, nil
}

// PublishedArticles returns a page of published articles together with the
// total published count, for the console table's pagination.
func (g *Gateway) PublishedArticles(ctx context.Context, sortBy, order string, page, pageSize int) ([]models.Article, int, error) {
	store := articles.NewStore(g.db)

	items, err := store.ListPublished(ctx, sortBy, order, page, pageSize)
	if err != nil {
		return nil, 0, classify("list articles", err)
	}
	total, err := store.CountByStatus(ctx, models.ArticleStatusPublished)
	if err != nil {
		return nil, 0, classify("list articles", err)
	}
	return items, total, nil
}

// OnArticleDeleted evicts an article from both slots and all three lists.
// The article store (or its adapter) must invoke this whenever an article
// is deleted or leaves published status. Safe to call for ids that are not
// curated anywhere.
func (g *Gateway) OnArticleDeleted(ctx context.Context, articleID uuid.UUID) error {
	if articleID == uuid.Nil {
		return fmt.Errorf("%w: empty article id", ErrValidation)
	}

	tx, err := g.db.BeginTx(ctx, nil)
	if err != nil {
		return classify("cascade", err)
	}
	defer tx.Rollback()

	if err := cascadeTx(ctx, tx, articleID); err != nil {
		return classify("cascade", err)
	}
	if err := tx.Commit(); err != nil {
		return classify("cascade", err)
	}

	slog.Info("curation cascade applied", "article_id", articleID)
	g.invalidate(ctx)
	return nil
}

// CreateArticle inserts a new article through the store adapter after
// validating required fields.
func (g *Gateway) CreateArticle(ctx context.Context, in *articles.Input) (*models.Article, error) {
	if strings.TrimSpace(in.Title) == "" {
		return nil, fmt.Errorf("%w: title is required", ErrValidation)
	}
	if strings.TrimSpace(in.Slug) == "" {
		return nil, fmt.Errorf("%w: slug is required", ErrValidation)
	}
	if in.Status == "" {
		in.Status = models.ArticleStatusDraft
	}
	if !models.ValidStatus(in.Status) {
		return nil, fmt.Errorf("%w: unknown status %q", ErrValidation, in.Status)
	}

	a, err := articles.NewStore(g.db).Create(ctx, in)
	if err != nil {
		return nil, classify("create article", err)
	}

	slog.Info("article created", "article_id", a.ID, "status", a.Status)
	if a.IsPublished() {
		g.invalidate(ctx)
	}
	return a, nil
}

// SetArticleStatus transitions an article's publishing status. Leaving
// published status triggers the curation cascade in the same transaction,
// so a reader never sees an unpublished article still pinned somewhere.
func (g *Gateway) SetArticleStatus(ctx context.Context, articleID uuid.UUID, status models.ArticleStatus) (*models.Article, error) {
	if articleID == uuid.Nil {
		return nil, fmt.Errorf("%w: empty article id", ErrValidation)
	}
	if !models.ValidStatus(status) {
		return nil, fmt.Errorf("%w: unknown status %q", ErrValidation, status)
	}

	tx, err := g.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, classify("set article status", err)
	}
	defer tx.Rollback()

	a, err := articles.NewStore(tx).SetStatus(ctx, articleID, status)
	if err != nil {
		return nil, classify("set article status", err)
	}
	if a == nil {
		return nil, fmt.Errorf("set article status: %w", ErrNotFound)
	}

	if status != models.ArticleStatusPublished {
		if err := cascadeTx(ctx, tx, articleID); err != nil {
			return nil, classify("set article status", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return nil, classify("set article status", err)
	}

	slog.Info("article status changed", "article_id", articleID, "status", status)
	g.invalidate(ctx)
	return a, nil
}

// DeleteArticle removes an article and its curation references in one
// transaction: the cascade compacts list ranks before the row disappears,
// so the FK backstop never leaves gaps behind.
func (g *Gateway) DeleteArticle(ctx context.Context, articleID uuid.UUID) error {
	if articleID == uuid.Nil {
		return fmt.Errorf("%w: empty article id", ErrValidation)
	}

	tx, err := g.db.BeginTx(ctx, nil)
	if err != nil {
		return classify("delete article", err)
	}
	defer tx.Rollback()

	if err := cascadeTx(ctx, tx, articleID); err != nil {
		return classify("delete article", err)
	}

	deleted, err := articles.NewStore(tx).Delete(ctx, articleID)
	if err != nil {
		return classify("delete article", err)
	}
	if !deleted {
		return fmt.Errorf("delete article: %w", ErrNotFound)
	}

	if err := tx.Commit(); err != nil {
		return classify("delete article", err)
	}

	slog.Info("article deleted", "article_id", articleID)
	g.invalidate(ctx)
	return nil
}

// cascadeTx removes an article from both slots and all lists within an
// existing transaction, compacting each affected list's ranks.
func cascadeTx(ctx context.Context, tx *sql.Tx, articleID uuid.UUID) error {
	_, err := tx.ExecContext(ctx,
		`UPDATE slots SET article_id = NULL, updated_at = now() WHERE article_id = $1`,
		articleID,
	)
	if err != nil {
		return fmt.Errorf("clear slots: %w", err)
	}

	rows, err := tx.QueryContext(ctx,
		`DELETE FROM curation_entries WHERE article_id = $1 RETURNING list_name, rank`,
		articleID,
	)
	if err != nil {
		return fmt.Errorf("delete list entries: %w", err)
	}

	type removed struct {
		list models.ListName
		rank int
	}
	var removals []removed
	for rows.Next() {
		var r removed
		if err := rows.Scan(&r.list, &r.rank); err != nil {
			rows.Close()
			return fmt.Errorf("scan removed entry: %w", err)
		}
		removals = append(removals, r)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return fmt.Errorf("removed entries: %w", err)
	}

	for _, r := range removals {
		_, err := tx.ExecContext(ctx,
			`UPDATE curation_entries SET rank = rank - 1 WHERE list_name = $1 AND rank > $2`,
			r.list, r.rank,
		)
		if err != nil {
			return fmt.Errorf("compact %s: %w", r.list, err)
		}
	}
	return nil
}
