// Package controller sequences user actions into journal and analysis
// operations. It owns the ephemeral session state (entry text, bound history
// entry, in-flight flag, current insights) and reacts to vault lock events
// by dropping sensitive in-memory state.
package controller

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/quillvault/quill/internal/analysis"
	"github.com/quillvault/quill/internal/analytics"
	"github.com/quillvault/quill/internal/journal"
	"github.com/quillvault/quill/internal/prompts"
	"github.com/quillvault/quill/internal/vault"
)

var (
	// ErrAnalysisInFlight rejects a second analysis while one is running.
	ErrAnalysisInFlight = errors.New("analysis already in progress")

	// ErrTooFewWords rejects analysis below the word gate.
	ErrTooFewWords = errors.New("entry has too few words to analyze")

	// ErrUpdateDeclined is returned when the user refuses to overwrite an
	// analyzed entry.
	ErrUpdateDeclined = errors.New("update declined")
)

// DefaultMinWordCount gates the analyze action.
const DefaultMinWordCount = 10

// DefaultAutosaveDelay is the quiet period before a draft write.
const DefaultAutosaveDelay = 2 * time.Second

// Confirm asks the user a yes/no question. The controller calls it before an
// action that clears existing insights.
type Confirm func(question string) bool

// Options configures a Controller.
type Options struct {
	MinWordCount  int
	AutosaveDelay time.Duration
	Locale        string
	Confirm       Confirm
	Tracker       *analytics.Tracker
	Logger        *slog.Logger
}

// Controller is one user session over the journal. Not safe for concurrent
// use by multiple goroutines except where noted; the expected caller is a
// single interactive loop.
type Controller struct {
	journal  *journal.Store
	pipeline *analysis.Pipeline
	vault    *vault.Vault
	tracker  *analytics.Tracker
	logger   *slog.Logger

	minWords      int
	autosaveDelay time.Duration
	locale        string
	confirm       Confirm

	mu            sync.Mutex
	entry         string
	promptID      prompts.ID
	activeEntryID string
	analyzing     bool
	dirty         bool
	insights      *journal.InsightBundle
	history       []journal.StoredEntry

	autosaveTimer *time.Timer
	unsubscribe   func()
}

// New wires a controller and subscribes it to vault state changes. Close
// releases the subscription.
func New(j *journal.Store, p *analysis.Pipeline, v *vault.Vault, opts Options) *Controller {
	if opts.MinWordCount <= 0 {
		opts.MinWordCount = DefaultMinWordCount
	}
	if opts.AutosaveDelay <= 0 {
		opts.AutosaveDelay = DefaultAutosaveDelay
	}
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	if opts.Confirm == nil {
		opts.Confirm = func(string) bool { return true }
	}

	c := &Controller{
		journal:       j,
		pipeline:      p,
		vault:         v,
		tracker:       opts.Tracker,
		logger:        opts.Logger,
		minWords:      opts.MinWordCount,
		autosaveDelay: opts.AutosaveDelay,
		locale:        opts.Locale,
		confirm:       opts.Confirm,
		promptID:      prompts.DefaultID,
	}
	c.unsubscribe = v.OnStateChange(c.onVaultStateChange)
	return c
}

// Close flushes any pending autosave and releases the vault subscription.
func (c *Controller) Close() error {
	if c.unsubscribe != nil {
		c.unsubscribe()
		c.unsubscribe = nil
	}
	return c.Flush()
}

// onVaultStateChange drops history and insights from memory on lock; holding
// them readable after a lock would defeat the point of locking. On unlock it
// reloads from storage.
func (c *Controller) onVaultStateChange(state vault.State) {
	c.mu.Lock()
	defer c.mu.Unlock()

	switch state {
	case vault.StateLocked:
		c.history = nil
		c.insights = nil
		c.activeEntryID = ""
	case vault.StateUnlocked, vault.StateDisabled:
		history, err := c.journal.LoadHistory()
		if err != nil {
			c.logger.Warn("reload history after vault change", slog.String("error", err.Error()))
			return
		}
		c.history = history
	}
}

// Restore loads the saved draft and history into the session. Called once at
// startup.
func (c *Controller) Restore() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	draft, err := c.journal.LoadDraft()
	if err != nil {
		return fmt.Errorf("load draft: %w", err)
	}
	if draft != nil {
		c.entry = draft.Entry
		c.promptID = prompts.Normalize(string(draft.PromptID))
	} else {
		c.entry = prompts.Prefill(c.promptID, c.locale)
	}
	c.dirty = false

	history, err := c.journal.LoadHistory()
	if err != nil {
		return fmt.Errorf("load history: %w", err)
	}
	c.history = history
	return nil
}

// EntryText returns the current session text.
func (c *Controller) EntryText() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.entry
}

// WordCount counts the current text.
func (c *Controller) WordCount() int {
	return journal.CountWords(c.EntryText())
}

// Insights returns the insights for the current session, if any.
func (c *Controller) Insights() *journal.InsightBundle {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.insights
}

// History returns the in-memory history snapshot.
func (c *Controller) History() []journal.StoredEntry {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.history
}

// SetEntryText updates the session text and schedules a debounced draft
// save: each edit resets the timer, and only a quiet period triggers the
// actual write.
func (c *Controller) SetEntryText(text string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.entry = text
	c.dirty = true
	if c.autosaveTimer != nil {
		c.autosaveTimer.Stop()
	}
	c.autosaveTimer = time.AfterFunc(c.autosaveDelay, func() {
		if err := c.saveDraftNow(); err != nil && !errors.Is(err, vault.ErrLocked) {
			c.logger.Warn("autosave failed", slog.String("error", err.Error()))
		}
	})
}

// Flush persists any pending draft immediately.
func (c *Controller) Flush() error {
	c.mu.Lock()
	if c.autosaveTimer != nil {
		c.autosaveTimer.Stop()
		c.autosaveTimer = nil
	}
	c.mu.Unlock()
	return c.saveDraftNow()
}

func (c *Controller) saveDraftNow() error {
	c.mu.Lock()
	entry := c.entry
	promptID := c.promptID
	dirty := c.dirty
	c.mu.Unlock()

	// Only user edits reach storage. Without this, restoring a prompt
	// scaffold and closing would persist a draft the user never typed, and
	// closing after an analysis would resurrect the entry it just saved.
	if !dirty {
		return nil
	}

	// An emptied editor clears the stored draft rather than persisting
	// whitespace.
	if strings.TrimSpace(entry) == "" {
		return c.journal.SaveDraft(nil)
	}

	return c.journal.SaveDraft(&journal.Draft{
		PromptID:  promptID,
		Entry:     entry,
		UpdatedAt: time.Now().UTC(),
	})
}

// SelectPrompt switches the guided prompt and, when the session text is
// empty or still a pristine prefill, replaces it with the new scaffold.
func (c *Controller) SelectPrompt(id prompts.ID) {
	c.mu.Lock()
	defer c.mu.Unlock()

	previous := c.promptID
	c.promptID = prompts.Normalize(string(id))
	if c.entry == "" || c.entry == prompts.Prefill(previous, c.locale) {
		c.entry = prompts.Prefill(c.promptID, c.locale)
	}

	c.track(analytics.EventPromptSelected, map[string]any{
		"prompt_type": string(c.promptID),
	})
}

// NewEntry starts a blank session: unbinds the active history entry, clears
// insights, and resets the text to the current prompt's scaffold.
func (c *Controller) NewEntry() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.activeEntryID = ""
	c.insights = nil
	c.entry = prompts.Prefill(c.promptID, c.locale)
	c.dirty = false

	c.track(analytics.EventNewEntryStarted, nil)
}

// LoadEntry binds a history entry into the session for re-reading or
// editing.
func (c *Controller) LoadEntry(id string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	for _, entry := range c.history {
		if entry.ID == id {
			c.activeEntryID = entry.ID
			c.entry = entry.Entry
			c.promptID = entry.PromptID
			c.insights = entry.Insights
			c.dirty = false
			c.track(analytics.EventHistoryEntryLoaded, nil)
			return nil
		}
	}
	return fmt.Errorf("history entry %s not found", id)
}

// SaveEntry persists the session text to history. Unchanged text against the
// bound entry is a no-op. Overwriting an analyzed entry's text requires
// confirmation because it clears the existing insights (both fields go
// together).
func (c *Controller) SaveEntry(ctx context.Context) (*journal.StoredEntry, error) {
	c.mu.Lock()
	entry := c.entry
	promptID := c.promptID
	activeID := c.activeEntryID
	c.mu.Unlock()

	if activeID != "" {
		existing := c.findEntry(activeID)
		if existing != nil && existing.Entry == entry {
			return existing, nil
		}
		if existing != nil && existing.Insights != nil {
			if !c.confirm("This entry was analyzed. Saving new text clears its insights. Continue?") {
				return nil, ErrUpdateDeclined
			}
		}

		history, err := c.journal.UpdateEntry(activeID, func(e journal.StoredEntry) journal.StoredEntry {
			e.Entry = entry
			e.WordCount = journal.CountWords(entry)
			e.Insights = nil
			e.AnalyzedAt = nil
			return e
		})
		if err != nil {
			return nil, err
		}

		c.mu.Lock()
		c.history = history
		c.insights = nil
		c.dirty = false
		c.mu.Unlock()

		c.track(analytics.EventHistoryEntrySaved, map[string]any{
			"word_count": journal.CountWords(entry),
		})
		return c.findEntry(activeID), nil
	}

	stored := journal.StoredEntry{
		ID:        journal.NewEntryID(time.Now()),
		PromptID:  promptID,
		Entry:     entry,
		WordCount: journal.CountWords(entry),
		CreatedAt: time.Now().UTC(),
	}
	history, err := c.journal.AddEntry(stored)
	if err != nil {
		return nil, err
	}

	c.mu.Lock()
	c.history = history
	c.activeEntryID = stored.ID
	c.dirty = false
	c.mu.Unlock()

	c.track(analytics.EventHistoryEntrySaved, map[string]any{
		"word_count": stored.WordCount,
	})
	return &stored, nil
}

func (c *Controller) findEntry(id string) *journal.StoredEntry {
	c.mu.Lock()
	defer c.mu.Unlock()
	for i := range c.history {
		if c.history[i].ID == id {
			return &c.history[i]
		}
	}
	return nil
}

// CanAnalyze reports whether the analyze action is currently permitted.
func (c *Controller) CanAnalyze() bool {
	c.mu.Lock()
	analyzing := c.analyzing
	entry := c.entry
	c.mu.Unlock()
	return !analyzing && journal.CountWords(entry) >= c.minWords
}

// Analyze runs the pipeline over the session text, saves the analyzed entry
// to history, and clears the draft. A second call while one is running is
// refused rather than queued.
func (c *Controller) Analyze(ctx context.Context, cb *analysis.Callbacks) (*journal.InsightBundle, error) {
	c.mu.Lock()
	if c.analyzing {
		c.mu.Unlock()
		return nil, ErrAnalysisInFlight
	}
	entry := c.entry
	promptID := c.promptID
	activeID := c.activeEntryID
	if journal.CountWords(entry) < c.minWords {
		c.mu.Unlock()
		return nil, ErrTooFewWords
	}
	c.analyzing = true
	c.mu.Unlock()

	defer func() {
		c.mu.Lock()
		c.analyzing = false
		c.mu.Unlock()
	}()

	c.track(analytics.EventInsightRequested, map[string]any{
		"word_count":      journal.CountWords(entry),
		"character_count": len(entry),
		"prompt_type":     string(promptID),
	})

	started := time.Now()
	bundle, err := c.pipeline.Analyze(ctx, entry, cb)
	if err != nil {
		c.track(analytics.EventErrorOccurred, map[string]any{
			"error_type": "analysis_rejected",
		})
		return nil, err
	}

	now := time.Now().UTC()
	var history []journal.StoredEntry
	if activeID != "" && c.findEntry(activeID) != nil {
		history, err = c.journal.UpdateEntry(activeID, func(e journal.StoredEntry) journal.StoredEntry {
			e.Entry = entry
			e.WordCount = journal.CountWords(entry)
			e.Insights = bundle
			e.AnalyzedAt = &now
			return e
		})
	} else {
		stored := journal.StoredEntry{
			ID:         journal.NewEntryID(now),
			PromptID:   promptID,
			Entry:      entry,
			WordCount:  journal.CountWords(entry),
			CreatedAt:  now,
			Insights:   bundle,
			AnalyzedAt: &now,
		}
		activeID = stored.ID
		history, err = c.journal.AddEntry(stored)
	}
	if err != nil {
		// Analysis succeeded; only persistence failed. The caller surfaces
		// the distinct vault-locked condition for re-authentication.
		return bundle, err
	}

	// The entry is saved; a stale draft must not resurface it.
	if err := c.journal.SaveDraft(nil); err != nil && !errors.Is(err, vault.ErrLocked) {
		c.logger.Warn("clear draft after analysis", slog.String("error", err.Error()))
	}

	c.mu.Lock()
	c.history = history
	c.activeEntryID = activeID
	c.insights = bundle
	c.dirty = false
	c.mu.Unlock()

	c.track(analytics.EventInsightCompleted, map[string]any{
		"emotion_detected":     strings.ToLower(bundle.Emotion.RawLabel),
		"confidence_score":     bundle.Emotion.Confidence,
		"analysis_duration_ms": time.Since(started).Milliseconds(),
	})
	return bundle, nil
}

// DeleteEntry removes a history entry; deleting the bound entry also resets
// the session binding.
func (c *Controller) DeleteEntry(id string) error {
	history, err := c.journal.DeleteEntry(id)
	if err != nil {
		return err
	}

	c.mu.Lock()
	c.history = history
	if c.activeEntryID == id {
		c.activeEntryID = ""
		c.insights = nil
	}
	c.mu.Unlock()

	c.track(analytics.EventHistoryEntryDeleted, nil)
	return nil
}

// ClearHistory removes every entry.
func (c *Controller) ClearHistory() error {
	if err := c.journal.ClearHistory(); err != nil {
		return err
	}

	c.mu.Lock()
	c.history = nil
	c.activeEntryID = ""
	c.insights = nil
	c.mu.Unlock()

	c.track(analytics.EventHistoryCleared, nil)
	return nil
}

// Export serializes history in the requested format ("json" or "markdown").
func (c *Controller) Export(format string) ([]byte, error) {
	history, err := c.journal.LoadHistory()
	if err != nil {
		return nil, err
	}

	var data []byte
	switch format {
	case "markdown", "md":
		data = []byte(journal.ExportMarkdown(history, time.Now()))
	case "json", "":
		data, err = journal.ExportJSON(history)
		if err != nil {
			return nil, err
		}
	default:
		return nil, fmt.Errorf("unsupported export format %q", format)
	}

	c.track(analytics.EventHistoryExported, map[string]any{"format": format})
	return data, nil
}

// Import parses an export file, merges the entries into history under the
// retention bound, and refreshes the session snapshot. It returns the number
// of imported entries.
func (c *Controller) Import(data []byte, filename string) (int, error) {
	entries, err := journal.ParseImport(data, filename, time.Now())
	if err != nil {
		return 0, err
	}

	history, err := c.journal.MergeHistory(entries)
	if err != nil {
		return 0, err
	}

	c.mu.Lock()
	c.history = history
	c.mu.Unlock()

	c.track(analytics.EventHistoryImported, map[string]any{
		"imported_count": len(entries),
	})
	return len(entries), nil
}

func (c *Controller) track(name string, props map[string]any) {
	if c.tracker == nil {
		return
	}
	c.tracker.Track(context.Background(), name, props)
}
