// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package handlers

import (
	"encoding/json"
	"fmt"
	"net/http"

	"newsdesk/internal/articles"
	"newsdesk/internal/curation"
	"newsdesk/internal/models"
)

// Admin serves the curation console's JSON API. Every mutation goes through
// the gateway, which validates before writing; the handlers only translate
// HTTP to engine calls and back.
type Admin struct {
	gateway *curation.Gateway
	deriver *curation.Deriver
}

// NewAdmin creates the admin handler group.
func NewAdmin(gateway *curation.Gateway, deriver *curation.Deriver) *Admin {
	return &Admin{gateway: gateway, deriver: deriver}
}

// --- Slots ---

// SlotsGet returns the current occupancy of main and second.
func (h *Admin) SlotsGet(w http.ResponseWriter, r *http.Request) {
	state, err := h.gateway.Slots(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, state)
}

// SlotGet returns the occupant of a single slot, null when empty.
func (h *Admin) SlotGet(w http.ResponseWriter, r *http.Request) {
	slot, err := pathSlot(r)
	if err != nil {
		writeError(w, err)
		return
	}
	state, err := h.gateway.Slots(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	occupant := state.Main
	if slot == models.SlotSecond {
		occupant = state.Second
	}
	writeJSON(w, http.StatusOK, occupant)
}

// SlotSet assigns an article to the slot named in the URL.
func (h *Admin) SlotSet(w http.ResponseWriter, r *http.Request) {
	slot, err := pathSlot(r)
	if err != nil {
		writeError(w, err)
		return
	}

	var body struct {
		ArticleID string `json:"article_id"`
	}
	if err := decodeJSON(r, &body); err != nil {
		writeError(w, err)
		return
	}
	id, err := parseID(body.ArticleID)
	if err != nil {
		writeError(w, err)
		return
	}

	if err := h.gateway.SetSlot(r.Context(), slot, id); err != nil {
		writeError(w, err)
		return
	}
	h.SlotsGet(w, r)
}

// SlotClear empties the slot named in the URL. Idempotent.
func (h *Admin) SlotClear(w http.ResponseWriter, r *http.Request) {
	slot, err := pathSlot(r)
	if err != nil {
		writeError(w, err)
		return
	}
	if err := h.gateway.ClearSlot(r.Context(), slot); err != nil {
		writeError(w, err)
		return
	}
	h.SlotsGet(w, r)
}

// SlotSwap exchanges the occupants of main and second.
func (h *Admin) SlotSwap(w http.ResponseWriter, r *http.Request) {
	if err := h.gateway.SwapSlots(r.Context()); err != nil {
		writeError(w, err)
		return
	}
	h.SlotsGet(w, r)
}

// --- Trending ---

// TrendingPromote appends an article to trending at the next rank.
func (h *Admin) TrendingPromote(w http.ResponseWriter, r *http.Request) {
	id, err := pathUUID(r, "id")
	if err != nil {
		writeError(w, err)
		return
	}
	if err := h.gateway.PromoteTrending(r.Context(), id); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, statusBody{Status: "promoted"})
}

// TrendingDemote removes an article from trending.
func (h *Admin) TrendingDemote(w http.ResponseWriter, r *http.Request) {
	id, err := pathUUID(r, "id")
	if err != nil {
		writeError(w, err)
		return
	}
	if err := h.gateway.DemoteTrending(r.Context(), id); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, statusBody{Status: "demoted"})
}

// TrendingGrowth updates the display metric for a trending entry.
func (h *Admin) TrendingGrowth(w http.ResponseWriter, r *http.Request) {
	id, err := pathUUID(r, "id")
	if err != nil {
		writeError(w, err)
		return
	}

	var body struct {
		GrowthRate float64 `json:"growth_rate"`
	}
	if err := decodeJSON(r, &body); err != nil {
		writeError(w, err)
		return
	}

	if err := h.gateway.SetTrendingGrowth(r.Context(), id, body.GrowthRate); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, statusBody{Status: "updated"})
}

// --- Generic list operations ---

// ListGet returns a page of the named list in rank order.
func (h *Admin) ListGet(w http.ResponseWriter, r *http.Request) {
	list, err := pathList(r)
	if err != nil {
		writeError(w, err)
		return
	}
	page := queryInt(r, "page", 1, 10_000)
	pageSize := queryInt(r, "page_size", defaultPageSize, maxPageSize)

	entries, err := h.gateway.Entries(r.Context(), list, page, pageSize)
	if err != nil {
		writeError(w, err)
		return
	}
	if entries == nil {
		entries = []models.CurationEntry{}
	}
	writeJSON(w, http.StatusOK, entries)
}

// ListAdd inserts the article into the named list. An optional rank in the
// body places it; 0 or absent appends.
func (h *Admin) ListAdd(w http.ResponseWriter, r *http.Request) {
	list, err := pathList(r)
	if err != nil {
		writeError(w, err)
		return
	}
	id, err := pathUUID(r, "id")
	if err != nil {
		writeError(w, err)
		return
	}

	var body struct {
		Rank int `json:"rank"`
	}
	// Body is optional on this endpoint.
	if r.ContentLength > 0 {
		if err := decodeJSON(r, &body); err != nil {
			writeError(w, err)
			return
		}
	}

	if err := h.gateway.AddToList(r.Context(), list, id, body.Rank); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, statusBody{Status: "added"})
}

// ListRemove deletes the article from the named list. Idempotent.
func (h *Admin) ListRemove(w http.ResponseWriter, r *http.Request) {
	list, err := pathList(r)
	if err != nil {
		writeError(w, err)
		return
	}
	id, err := pathUUID(r, "id")
	if err != nil {
		writeError(w, err)
		return
	}
	if err := h.gateway.RemoveFromList(r.Context(), list, id); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, statusBody{Status: "removed"})
}

// ListReorder moves an article to a new rank within the named list.
func (h *Admin) ListReorder(w http.ResponseWriter, r *http.Request) {
	list, err := pathList(r)
	if err != nil {
		writeError(w, err)
		return
	}

	var body struct {
		ArticleID string `json:"article_id"`
		Rank      int    `json:"rank"`
	}
	if err := decodeJSON(r, &body); err != nil {
		writeError(w, err)
		return
	}
	id, err := parseID(body.ArticleID)
	if err != nil {
		writeError(w, err)
		return
	}

	if err := h.gateway.ReorderList(r.Context(), list, id, body.Rank); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, statusBody{Status: "reordered"})
}

// --- Article pass-through (the external-store contract made concrete) ---

// ArticlePickerLatest returns the newest published articles excluding the
// current slot occupants. The admin selection pickers feed from this, so an
// already-pinned article can never be offered for pinning again.
func (h *Admin) ArticlePickerLatest(w http.ResponseWriter, r *http.Request) {
	limit := queryInt(r, "limit", defaultLimit, maxLimit)

	items, err := h.deriver.LatestExcludingSlots(r.Context(), limit)
	if err != nil {
		writeError(w, err)
		return
	}
	if items == nil {
		items = []models.Article{}
	}
	writeJSON(w, http.StatusOK, items)
}

// ArticleList returns a page of published articles with the total count.
// This is the console table view; sort and order vary per column header.
func (h *Admin) ArticleList(w http.ResponseWriter, r *http.Request) {
	sortBy := r.URL.Query().Get("sort")
	order := r.URL.Query().Get("order")
	page := queryInt(r, "page", 1, 10_000)
	pageSize := queryInt(r, "page_size", defaultPageSize, maxPageSize)

	items, total, err := h.gateway.PublishedArticles(r.Context(), sortBy, order, page, pageSize)
	if err != nil {
		writeError(w, err)
		return
	}
	if items == nil {
		items = []models.Article{}
	}
	writeJSON(w, http.StatusOK, articleListBody{Items: items, Total: total})
}

// ArticleGet returns one article by id, any status.
func (h *Admin) ArticleGet(w http.ResponseWriter, r *http.Request) {
	id, err := pathUUID(r, "id")
	if err != nil {
		writeError(w, err)
		return
	}
	a, err := h.gateway.Article(r.Context(), id)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, a)
}

// ArticleCreate inserts a new article through the adapter, normalizing any
// legacy image aliases the client sends.
func (h *Admin) ArticleCreate(w http.ResponseWriter, r *http.Request) {
	var in articles.Input
	if err := decodeJSON(r, &in); err != nil {
		writeError(w, err)
		return
	}

	a, err := h.gateway.CreateArticle(r.Context(), &in)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, a)
}

// ArticleSetStatus transitions an article's publishing status. Leaving
// published triggers the curation cascade.
func (h *Admin) ArticleSetStatus(w http.ResponseWriter, r *http.Request) {
	id, err := pathUUID(r, "id")
	if err != nil {
		writeError(w, err)
		return
	}

	var body struct {
		Status models.ArticleStatus `json:"status"`
	}
	if err := decodeJSON(r, &body); err != nil {
		writeError(w, err)
		return
	}

	a, err := h.gateway.SetArticleStatus(r.Context(), id, body.Status)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, a)
}

// ArticleDelete removes an article and cascades it out of every slot and list.
func (h *Admin) ArticleDelete(w http.ResponseWriter, r *http.Request) {
	id, err := pathUUID(r, "id")
	if err != nil {
		writeError(w, err)
		return
	}
	if err := h.gateway.DeleteArticle(r.Context(), id); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, statusBody{Status: "deleted"})
}

// statusBody is the minimal acknowledgement payload for mutations.
type statusBody struct {
	Status string `json:"status"`
}

// articleListBody is a page of articles plus the total for pagination.
type articleListBody struct {
	Items []models.Article `json:"items"`
	Total int              `json:"total"`
}

// decodeJSON decodes a request body, mapping malformed JSON to the
// validation error class.
func decodeJSON(r *http.Request, dst any) error {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		return fmt.Errorf("%w: malformed request body", curation.ErrValidation)
	}
	return nil
}
