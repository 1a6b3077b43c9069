package models

import (
	"errors"
	"fmt"
	"strings"
)

// Category is the type of a watchlist entry. Values are the strings the backend stores.
type Category string

const (
	CategoryFilm        Category = "Film"
	CategorySeries      Category = "Serie"
	CategoryDocumentary Category = "Dokumentation"
	CategoryAnime       Category = "Anime"
)

const (
	MinRating = 1
	MaxRating = 10
)

// Categories lists every valid [Category] in display order.
var Categories = []Category{CategoryFilm, CategorySeries, CategoryDocumentary, CategoryAnime}

var (
	ErrMissingTitle    = errors.New("title is required")
	ErrInvalidCategory = errors.New("invalid category")
	ErrRatingRange     = fmt.Errorf("rating must be between %d and %d", MinRating, MaxRating)
)

// Valid reports whether c is one of [Categories].
func (c Category) Valid() bool {
	for _, v := range Categories {
		if c == v {
			return true
		}
	}
	return false
}

// ParseCategory matches s case-insensitively against the stored values and their English names.
func ParseCategory(s string) (Category, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "film", "movie":
		return CategoryFilm, nil
	case "serie", "series":
		return CategorySeries, nil
	case "dokumentation", "documentary":
		return CategoryDocumentary, nil
	case "anime":
		return CategoryAnime, nil
	}
	return "", fmt.Errorf("%w: %q", ErrInvalidCategory, s)
}

// Entry is a single item on a user's watchlist. ID is nil until the backend persists it.
type Entry struct {
	ID        *int64   `json:"id,omitempty"`
	Title     string   `json:"title"`
	Type      Category `json:"type"`
	Genre     string   `json:"genre"`
	Watched   bool     `json:"watched"`
	Rating    int      `json:"rating"`
	PosterURL string   `json:"posterUrl,omitempty"`
	UserID    *int64   `json:"userId,omitempty"`
}

// Validate checks the fields the backend relies on.
// A rating is only required once the entry is marked watched.
func (e Entry) Validate() error {
	if strings.TrimSpace(e.Title) == "" {
		return ErrMissingTitle
	}
	if !e.Type.Valid() {
		return fmt.Errorf("%w: %q", ErrInvalidCategory, e.Type)
	}
	if e.Rating < 0 || e.Rating > MaxRating {
		return ErrRatingRange
	}
	if e.Watched && e.Rating < MinRating {
		return ErrRatingRange
	}
	return nil
}

// HasID reports whether the entry has been persisted.
func (e Entry) HasID() bool { return e.ID != nil }

// IDValue returns the entry ID or 0.
func (e Entry) IDValue() int64 {
	if e.ID == nil {
		return 0
	}
	return *e.ID
}

// WatchedLabel renders the watched flag the way the table shows it.
func (e Entry) WatchedLabel() string {
	if e.Watched {
		return "Ja"
	}
	return "Nein"
}

// Stars renders the rating as stars (one per two points, rounded up) followed by "n/10".
// Unwatched or unrated entries render as "-".
func (e Entry) Stars() string {
	if !e.Watched || e.Rating < MinRating {
		return "-"
	}
	return fmt.Sprintf("%s %d/%d", strings.Repeat("⭐", (e.Rating+1)/2), e.Rating, MaxRating)
}

// Int64 returns a pointer to v, for optional ID fields.
func Int64(v int64) *int64 { return &v }
