package database

import (
	"database/sql"
	"fmt"
	"log/slog"
	"time"
)

// Seed populates the database with initial development data: a handful of
// published articles so the admin picker and public feeds have something to
// show on first boot. No-op if any articles already exist.
func Seed(db *sql.DB) error {
	var count int
	if err := db.QueryRow("SELECT COUNT(*) FROM articles").Scan(&count); err != nil {
		return fmt.Errorf("seed check articles: %w", err)
	}

	if count > 0 {
		slog.Info("database already seeded, skipping")
		return nil
	}

	seedArticles := []struct {
		title    string
		slug     string
		category string
	}{
		{"The Long Read: A Year in Review", "long-read-year-in-review", "magazine"},
		{"Behind the Scenes of Season Three", "behind-the-scenes-season-three", "tv"},
		{"Interview: Voices From the Newsroom", "voices-from-the-newsroom", "podcast"},
		{"Five Stories You Might Have Missed", "five-stories-you-missed", "magazine"},
		{"The Economics of Streaming", "economics-of-streaming", "magazine"},
	}

	for i, a := range seedArticles {
		// Stagger publish dates so the latest feed has a stable order.
		publishedAt := time.Now().Add(-time.Duration(i) * time.Hour)
		_, err := db.Exec(`
			INSERT INTO articles (title, slug, category, status, published_at)
			VALUES ($1, $2, $3, 'published', $4)
		`, a.title, a.slug, a.category, publishedAt)
		if err != nil {
			return fmt.Errorf("seed insert article %q: %w", a.slug, err)
		}
	}

	slog.Info("database seeded with development articles", "count", len(seedArticles))
	return nil
}
