// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package models

import (
	"time"

	"github.com/google/uuid"
)

// ArticleStatus represents the publishing state of an article.
type ArticleStatus string

const (
	ArticleStatusDraft     ArticleStatus = "draft"
	ArticleStatusReview    ArticleStatus = "review"
	ArticleStatusPublished ArticleStatus = "published"
)

// ValidStatus reports whether s is one of the known article statuses.
func ValidStatus(s ArticleStatus) bool {
	switch s {
	case ArticleStatusDraft, ArticleStatusReview, ArticleStatusPublished:
		return true
	}
	return false
}

// Article is the canonical article shape the curation engine works with.
// The articles adapter normalizes all legacy field aliases (image vs
// thumbnail vs cover_image) into this one form before anything else sees it.
type Article struct {
	ID          uuid.UUID     `json:"id"`
	Title       string        `json:"title"`
	Slug        string        `json:"slug"`
	Category    string        `json:"category"`
	Status      ArticleStatus `json:"status"`
	CoverImage  *string       `json:"cover_image,omitempty"`
	PublishedAt *time.Time    `json:"published_at,omitempty"`
	CreatedAt   time.Time     `json:"created_at"`
	UpdatedAt   time.Time     `json:"updated_at"`
}

// IsPublished returns true if the article is in published status.
func (a *Article) IsPublished() bool {
	return a.Status == ArticleStatusPublished
}
