// Package journal is the typed data layer over the storage slots: the draft,
// the bounded entry history with its insights, prompt bookmarks, and guide
// reading progress.
package journal

import (
	"fmt"
	"time"

	"github.com/quillvault/quill/internal/prompts"
)

// Draft is the single mutable scratch slot, overwritten on every autosave
// tick and cleared after a successful analysis-and-save.
type Draft struct {
	PromptID  prompts.ID `json:"promptId"`
	Entry     string     `json:"entry"`
	UpdatedAt time.Time  `json:"updatedAt"`
}

// EmotionInsight is the sentiment half of an analysis result. RawLabel is the
// classifier's binary label ("POSITIVE" or "NEGATIVE"); Tone and Emoji are
// the user-facing rendering derived from it and the confidence.
type EmotionInsight struct {
	Emoji      string  `json:"emoji"`
	Tone       string  `json:"tone"`
	Text       string  `json:"text"`
	Confidence float64 `json:"confidence"`
	RawLabel   string  `json:"rawLabel"`
}

// ThemeInsight names the dominant topic of an entry. RawSummary keeps the
// summarizer output the theme text was derived from.
type ThemeInsight struct {
	Emoji      string `json:"emoji"`
	Title      string `json:"title"`
	Text       string `json:"text"`
	RawSummary string `json:"rawSummary"`
}

// ReflectionInsight is a follow-up journaling question with the therapeutic
// technique it draws on.
type ReflectionInsight struct {
	Emoji     string `json:"emoji"`
	Question  string `json:"question"`
	Technique string `json:"technique"`
}

// InsightBundle is the emotion/theme/reflection triple produced by one
// analysis. Bundles are always complete; no component ever holds a partial
// one.
type InsightBundle struct {
	Emotion    EmotionInsight    `json:"emotion"`
	Theme      ThemeInsight      `json:"theme"`
	Reflection ReflectionInsight `json:"reflection"`
}

// StoredEntry is one history item. Insights and AnalyzedAt are both nil or
// both set; they are cleared together when an analyzed entry's text changes.
type StoredEntry struct {
	ID         string         `json:"id"`
	PromptID   prompts.ID     `json:"promptId"`
	Entry      string         `json:"entry"`
	WordCount  int            `json:"wordCount"`
	CreatedAt  time.Time      `json:"createdAt"`
	Insights   *InsightBundle `json:"insights"`
	AnalyzedAt *time.Time     `json:"analyzedAt"`
}

// Bookmark marks a prompt the user saved for later.
type Bookmark struct {
	ID           string    `json:"id"`
	Category     string    `json:"category"`
	BookmarkedAt time.Time `json:"bookmarkedAt"`
}

// ReadingProgress tracks how far through a guide the user has read.
// Progress is a 0 to 100 percentage; CompletedAt is zero until it hits 100.
type ReadingProgress struct {
	Slug        string    `json:"slug"`
	CompletedAt time.Time `json:"completedAt"`
	Progress    int       `json:"progress"`
}

// NewEntryID builds the id for an entry saved in-app.
func NewEntryID(now time.Time) string {
	return fmt.Sprintf("entry_%d", now.UnixMilli())
}

// ImportEntryID builds the id for the index-th entry of an import batch. The
// index keeps ids unique within a batch created in the same millisecond.
func ImportEntryID(now time.Time, index int) string {
	return fmt.Sprintf("import_%d_%d", now.UnixMilli(), index)
}
