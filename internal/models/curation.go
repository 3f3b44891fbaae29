// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package models

import (
	"time"

	"github.com/google/uuid"
)

// Slot names the two fixed, mutually exclusive homepage positions.
type Slot string

const (
	SlotMain   Slot = "main"
	SlotSecond Slot = "second"
)

// ValidSlot reports whether s is one of the two known slots.
func ValidSlot(s Slot) bool {
	return s == SlotMain || s == SlotSecond
}

// Other returns the opposite slot.
func (s Slot) Other() Slot {
	if s == SlotMain {
		return SlotSecond
	}
	return SlotMain
}

// SlotState is the current occupancy of both slots. A nil entry means the
// slot is empty, which is a valid state, not an error.
type SlotState struct {
	Main   *Article `json:"main"`
	Second *Article `json:"second"`
}

// ListName identifies one of the curated article lists.
type ListName string

const (
	ListFeatured    ListName = "featured"
	ListTrending    ListName = "trending"
	ListEditorsPick ListName = "editors_pick"
)

// ValidList reports whether l is one of the three known curation lists.
func ValidList(l ListName) bool {
	switch l {
	case ListFeatured, ListTrending, ListEditorsPick:
		return true
	}
	return false
}

// CurationEntry is one article's membership in a curation list. Rank is a
// dense 1..N position within the list; GrowthRate is a display metric only
// carried by the trending list and never used to reorder anything.
type CurationEntry struct {
	List       ListName  `json:"list"`
	ArticleID  uuid.UUID `json:"article_id"`
	Rank       int       `json:"rank"`
	GrowthRate float64   `json:"growth_rate"`
	AddedAt    time.Time `json:"added_at"`

	// Article is the hydrated reference, populated on reads.
	Article *Article `json:"article,omitempty"`
}
