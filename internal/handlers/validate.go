package handlers

import (
	"fmt"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"newsdesk/internal/curation"
	"newsdesk/internal/models"
)

// Pagination bounds for list and feed endpoints.
const (
	defaultPageSize = 20
	maxPageSize     = 100
	defaultLimit    = 10
	maxLimit        = 100
)

// parseID parses an article id from a request body field.
func parseID(raw string) (uuid.UUID, error) {
	id, err := uuid.Parse(raw)
	if err != nil || id == uuid.Nil {
		return uuid.Nil, fmt.Errorf("%w: malformed article id %q", curation.ErrValidation, raw)
	}
	return id, nil
}

// pathUUID parses a UUID from a chi URL parameter.
func pathUUID(r *http.Request, param string) (uuid.UUID, error) {
	raw := chi.URLParam(r, param)
	id, err := uuid.Parse(raw)
	if err != nil || id == uuid.Nil {
		return uuid.Nil, fmt.Errorf("%w: malformed %s %q", curation.ErrValidation, param, raw)
	}
	return id, nil
}

// pathSlot parses a slot name from a chi URL parameter.
func pathSlot(r *http.Request) (models.Slot, error) {
	s := models.Slot(chi.URLParam(r, "slot"))
	if !models.ValidSlot(s) {
		return "", fmt.Errorf("%w: unknown slot %q", curation.ErrValidation, s)
	}
	return s, nil
}

// pathList parses a curation list name from a chi URL parameter.
func pathList(r *http.Request) (models.ListName, error) {
	l := models.ListName(chi.URLParam(r, "list"))
	if !models.ValidList(l) {
		return "", fmt.Errorf("%w: unknown list %q", curation.ErrValidation, l)
	}
	return l, nil
}

// queryInt reads an integer query parameter, clamped to [1, max], falling
// back to def when absent or unparsable.
func queryInt(r *http.Request, name string, def, max int) int {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return def
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < 1 {
		return def
	}
	if n > max {
		return max
	}
	return n
}
