// Package analysis turns raw journal text into an insight bundle. It prefers
// a neural runtime (classifier + summarizer) and degrades to a deterministic
// keyword analyzer when the runtime is unavailable or the text is in a script
// the bundled models do not handle.
package analysis

import "errors"

var (
	// ErrEmptyEntry rejects analysis of whitespace-only text.
	ErrEmptyEntry = errors.New("entry is empty")

	// ErrEntryTooShort rejects text under the minimum character floor.
	ErrEntryTooShort = errors.New("entry is too short to analyze")
)

// MinEntryChars is the character floor below which analysis is refused.
const MinEntryChars = 20

// SummaryTailChars bounds summarizer input to the trailing portion of long
// entries.
const SummaryTailChars = 2000

// ModelStatus describes the neural runtime's acquisition state.
type ModelStatus string

const (
	StatusIdle        ModelStatus = "idle"
	StatusDownloading ModelStatus = "downloading"
	StatusReady       ModelStatus = "ready"
)

// Callbacks is the push channel for model status and download progress.
// Progress is 0 through 100 and stays below 100 until the runtime is fully
// ready. Both fields are optional.
type Callbacks struct {
	OnModelStatus func(ModelStatus)
	OnProgress    func(percent int)
}

func (c *Callbacks) status(s ModelStatus) {
	if c != nil && c.OnModelStatus != nil {
		c.OnModelStatus(s)
	}
}

func (c *Callbacks) progress(percent int) {
	if c != nil && c.OnProgress != nil {
		c.OnProgress(percent)
	}
}

// Classification is the emotion classifier's output: a binary label
// ("POSITIVE" or "NEGATIVE") with a confidence score in [0,1].
type Classification struct {
	Label string  `json:"label"`
	Score float64 `json:"score"`
}
