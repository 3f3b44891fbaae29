// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package handlers

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"newsdesk/internal/cache"
	"newsdesk/internal/curation"
	"newsdesk/internal/models"
)

// Public serves the site-facing feed endpoints. Reads are non-blocking and
// may come from a slightly stale Valkey snapshot; a backend failure
// degrades to an empty feed rather than an error page, because an empty
// homepage slot is a valid state.
type Public struct {
	deriver *curation.Deriver
	gateway *curation.Gateway
	feeds   *cache.FeedCache
}

// NewPublic creates the public handler group. feeds may be nil, which
// disables caching.
func NewPublic(deriver *curation.Deriver, gateway *curation.Gateway, feeds *cache.FeedCache) *Public {
	return &Public{deriver: deriver, gateway: gateway, feeds: feeds}
}

// Latest returns the newest published articles excluding slot occupants.
func (h *Public) Latest(w http.ResponseWriter, r *http.Request) {
	limit := queryInt(r, "limit", defaultLimit, maxLimit)
	h.serveCached(w, r, cache.LatestKey(limit), func() (any, error) {
		items, err := h.deriver.LatestExcludingSlots(r.Context(), limit)
		if items == nil {
			items = []models.Article{}
		}
		return items, err
	})
}

// Trending returns the trending list in rank order with growth metrics.
func (h *Public) Trending(w http.ResponseWriter, r *http.Request) {
	page := queryInt(r, "page", 1, 10_000)
	pageSize := queryInt(r, "page_size", defaultPageSize, maxPageSize)
	h.serveCached(w, r, cache.TrendingKey(page, pageSize), func() (any, error) {
		entries, err := h.deriver.TrendingRanked(r.Context(), page, pageSize)
		if entries == nil {
			entries = []models.CurationEntry{}
		}
		return entries, err
	})
}

// Featured returns the featured articles by publish date descending.
func (h *Public) Featured(w http.ResponseWriter, r *http.Request) {
	limit := queryInt(r, "limit", 3, maxLimit)
	h.serveCached(w, r, cache.FeaturedKey(limit), func() (any, error) {
		items, err := h.deriver.FeaturedLatest(r.Context(), limit)
		if items == nil {
			items = []models.Article{}
		}
		return items, err
	})
}

// homePayload is the combined homepage response.
type homePayload struct {
	Slots    *models.SlotState      `json:"slots"`
	Latest   []models.Article       `json:"latest"`
	Trending []models.CurationEntry `json:"trending"`
	Featured []models.Article       `json:"featured"`
}

// Home returns the slots plus all three feeds in one payload.
func (h *Public) Home(w http.ResponseWriter, r *http.Request) {
	h.serveCached(w, r, cache.HomeKey(), func() (any, error) {
		ctx := r.Context()
		payload := homePayload{
			Slots:    &models.SlotState{},
			Latest:   []models.Article{},
			Trending: []models.CurationEntry{},
			Featured: []models.Article{},
		}

		if slots, err := h.gateway.Slots(ctx); err == nil {
			payload.Slots = slots
		} else {
			slog.Warn("home feed: slots degraded to empty", "error", err)
		}
		if latest, err := h.deriver.LatestExcludingSlots(ctx, defaultLimit); err == nil && latest != nil {
			payload.Latest = latest
		}
		if trending, err := h.deriver.TrendingRanked(ctx, 1, defaultPageSize); err == nil && trending != nil {
			payload.Trending = trending
		}
		if featured, err := h.deriver.FeaturedLatest(ctx, 3); err == nil && featured != nil {
			payload.Featured = featured
		}
		return payload, nil
	})
}

// serveCached answers from the feed cache when possible, otherwise computes
// the payload, stores it, and degrades to an empty body on backend failure.
func (h *Public) serveCached(w http.ResponseWriter, r *http.Request, key string, compute func() (any, error)) {
	if h.feeds != nil {
		if cached, ok := h.feeds.Get(r.Context(), key); ok {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusOK)
			w.Write(cached)
			return
		}
	}

	payload, err := compute()
	if err != nil {
		// Public reads degrade instead of failing; the payload already
		// carries its empty shape.
		slog.Warn("public feed degraded to empty", "key", key, "error", err)
		writeJSON(w, http.StatusOK, payload)
		return
	}

	body, err := json.Marshal(payload)
	if err != nil {
		slog.Error("marshal feed payload", "key", key, "error", err)
		writeJSON(w, http.StatusOK, payload)
		return
	}

	if h.feeds != nil {
		h.feeds.Set(r.Context(), key, body)
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	w.Write(body)
}
