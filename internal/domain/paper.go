package domain

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

// Common validation errors for Paper
var (
	ErrEmptyPaperID  = errors.New("paper ID cannot be empty")
	ErrEmptyPaperURL = errors.New("paper URL cannot be empty")
)

// Paper represents a single research paper observed at a bibliographic
// source. The canonical URL uniquely identifies a paper: deduplication is
// URL-equality only. A paper is created on first sighting and never
// deleted; the only field that may change afterwards is the synopsis,
// which is back-filled once summarization has run.
type Paper struct {
	ID    uuid.UUID `json:"id"`
	URL   string    `json:"url"`
	Title string    `json:"title"`

	// Authors preserves the order reported by the source.
	Authors []string `json:"authors"`

	// Abstract is the raw abstract text as fetched.
	Abstract string `json:"abstract"`

	// Synopsis is the structured summary generated from the abstract.
	// Nil until back-filled.
	Synopsis *string `json:"synopsis,omitempty"`

	// Source tags the bibliographic origin, e.g. "arXiv".
	Source      string    `json:"source"`
	PublishedAt time.Time `json:"published_at"`
	CreatedAt   time.Time `json:"created_at"`
}

// NewPaper creates a new Paper with the given metadata.
// It generates a new UUID and sets the creation timestamp.
// Returns an error if validation fails.
func NewPaper(url, title, abstract string, authors []string, source string, publishedAt time.Time) (*Paper, error) {
	paper := &Paper{
		ID:          uuid.New(),
		URL:         url,
		Title:       title,
		Authors:     authors,
		Abstract:    abstract,
		Source:      source,
		PublishedAt: publishedAt,
		CreatedAt:   time.Now().UTC(),
	}

	if err := paper.Validate(); err != nil {
		return nil, err
	}

	return paper, nil
}

// Validate checks if the Paper has valid data.
// Returns an error if any field fails validation.
func (p *Paper) Validate() error {
	if p.ID == uuid.Nil {
		return ErrEmptyPaperID
	}

	if p.URL == "" {
		return ErrEmptyPaperURL
	}

	return nil
}
