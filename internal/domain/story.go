package domain

import (
	"time"

	"github.com/google/uuid"
)

// Story represents a serialized work tracked from the publishing site
type Story struct {
	ID            uuid.UUID `json:"id" db:"id"`
	SourceURL     string    `json:"source_url" db:"source_url"`
	Title         string    `json:"title" db:"title"`
	Author        string    `json:"author" db:"author"`
	Description   string    `json:"description" db:"description"`
	CoverImageURL *string   `json:"cover_image_url" db:"cover_image_url"`
	Source        string    `json:"source" db:"source"`

	// Timestamps
	CreatedAt time.Time  `json:"created_at" db:"created_at"`
	UpdatedAt *time.Time `json:"updated_at" db:"updated_at"`
}

// Chapter is one entry in a story's table of contents. Numbers are 1-based,
// contiguous and unique within a story.
type Chapter struct {
	ID         uuid.UUID `json:"id" db:"id"`
	StoryID    uuid.UUID `json:"story_id" db:"story_id"`
	Number     int       `json:"number" db:"number"`
	Title      string    `json:"title" db:"title"`
	ChapterURL *string   `json:"chapter_url" db:"chapter_url"`

	CreatedAt time.Time  `json:"created_at" db:"created_at"`
	UpdatedAt *time.Time `json:"updated_at" db:"updated_at"`
}

// Source site identifier
const SourceFyctia = "fyctia"

// Extraction strategy tags
const (
	StrategyDynamic        = "dynamic"
	StrategyStatic         = "static"
	StrategyHeuristic      = "heuristic"
	StrategyPartialDynamic = "partial-dynamic"
	StrategyPartialStatic  = "partial-static"
	StrategyVerification   = "verification"
)

// Confidence levels for extraction results, used only to pick the
// best-of-attempted result inside the orchestrator. Never persisted.
const (
	ConfidenceFull    = 2
	ConfidencePartial = 1
	ConfidenceLowest  = 0
)

// TitlePending is the sentinel title used for partial results where the
// chapter list was found but no usable title was.
const TitlePending = "Titre à déterminer"

// RawChapterEntry is a chapter candidate as emitted by an extraction
// strategy, before normalization. Extractors never assign numbers.
type RawChapterEntry struct {
	Title string `json:"title"`
	URL   string `json:"url,omitempty"`
}

// ExtractionResult is the ephemeral output of one extraction strategy.
// It is consumed once by the normalizer and the upserter, then discarded.
type ExtractionResult struct {
	Title             string
	Author            string
	Description       string
	CoverImageURL     string
	RawChapterEntries []RawChapterEntry
	StrategyUsed      string
	Confidence        int
}

// IsFullSuccess reports whether the result meets the orchestrator's
// success threshold: a real title was found, regardless of chapter count.
func (r *ExtractionResult) IsFullSuccess() bool {
	return r.Confidence >= ConfidenceFull
}
