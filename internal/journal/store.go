package journal

import (
	"sort"
	"sync"
	"time"

	"github.com/quillvault/quill/internal/storage"
	"github.com/quillvault/quill/internal/vault"
)

// DefaultHistoryLimit bounds the retained history after merges.
const DefaultHistoryLimit = 100

// Store provides read/modify/write operations over the journal slots. All
// mutations to a slot run under one mutex so a slow write never races a
// subsequent read-modify-write on the same collection.
type Store struct {
	storage      *storage.Storage
	historyLimit int

	mu sync.Mutex
}

func NewStore(s *storage.Storage, historyLimit int) *Store {
	if historyLimit <= 0 {
		historyLimit = DefaultHistoryLimit
	}
	return &Store{storage: s, historyLimit: historyLimit}
}

// HistoryLimit returns the maximum retained history length.
func (s *Store) HistoryLimit() int {
	return s.historyLimit
}

// LoadDraft returns the saved draft, or nil when none exists or the vault is
// locked.
func (s *Store) LoadDraft() (*Draft, error) {
	var draft Draft
	found, err := s.storage.Get(vault.SlotDraft, &draft)
	if err != nil || !found {
		return nil, err
	}
	return &draft, nil
}

// SaveDraft persists the draft; a nil draft clears the slot so a completed
// entry is not resumed as stale scratch text.
func (s *Store) SaveDraft(draft *Draft) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if draft == nil {
		return s.storage.Clear(vault.SlotDraft)
	}
	return s.storage.Set(vault.SlotDraft, draft)
}

// LoadHistory returns all stored entries, newest first by convention. A
// locked vault reads as empty.
func (s *Store) LoadHistory() ([]StoredEntry, error) {
	var history []StoredEntry
	if _, err := s.storage.Get(vault.SlotHistory, &history); err != nil {
		return nil, err
	}
	return history, nil
}

// SaveHistory replaces the whole history collection.
func (s *Store) SaveHistory(history []StoredEntry) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.saveHistoryLocked(history)
}

func (s *Store) saveHistoryLocked(history []StoredEntry) error {
	if history == nil {
		history = []StoredEntry{}
	}
	return s.storage.Set(vault.SlotHistory, history)
}

// AddEntry prepends an entry to history and persists the result.
func (s *Store) AddEntry(entry StoredEntry) ([]StoredEntry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	history, err := s.LoadHistory()
	if err != nil {
		return nil, err
	}
	updated := append([]StoredEntry{entry}, history...)
	if err := s.saveHistoryLocked(updated); err != nil {
		return nil, err
	}
	return updated, nil
}

// UpdateEntry applies updater to the entry with the given id and persists.
// An unknown id is a no-op returning the unchanged list; no entry is ever
// invented.
func (s *Store) UpdateEntry(id string, updater func(StoredEntry) StoredEntry) ([]StoredEntry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	history, err := s.LoadHistory()
	if err != nil {
		return nil, err
	}

	changed := false
	for i, entry := range history {
		if entry.ID == id {
			history[i] = updater(entry)
			changed = true
			break
		}
	}
	if !changed {
		return history, nil
	}

	if err := s.saveHistoryLocked(history); err != nil {
		return nil, err
	}
	return history, nil
}

// DeleteEntry removes the entry with the given id.
func (s *Store) DeleteEntry(id string) ([]StoredEntry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	history, err := s.LoadHistory()
	if err != nil {
		return nil, err
	}

	updated := history[:0:0]
	for _, entry := range history {
		if entry.ID != id {
			updated = append(updated, entry)
		}
	}
	if len(updated) == len(history) {
		return history, nil
	}

	if err := s.saveHistoryLocked(updated); err != nil {
		return nil, err
	}
	return updated, nil
}

// ClearHistory removes every stored entry.
func (s *Store) ClearHistory() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.storage.Clear(vault.SlotHistory)
}

// MergeHistory combines incoming entries with the stored history, newest
// first by creation time, truncated to the retained limit, and persists the
// result.
func (s *Store) MergeHistory(incoming []StoredEntry) ([]StoredEntry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	current, err := s.LoadHistory()
	if err != nil {
		return nil, err
	}

	merged := make([]StoredEntry, 0, len(incoming)+len(current))
	merged = append(merged, incoming...)
	merged = append(merged, current...)
	sort.SliceStable(merged, func(i, j int) bool {
		return merged[i].CreatedAt.After(merged[j].CreatedAt)
	})
	if len(merged) > s.historyLimit {
		merged = merged[:s.historyLimit]
	}

	if err := s.saveHistoryLocked(merged); err != nil {
		return nil, err
	}
	return merged, nil
}

// LoadBookmarks returns all bookmarked prompts.
func (s *Store) LoadBookmarks() ([]Bookmark, error) {
	var bookmarks []Bookmark
	if _, err := s.storage.Get(vault.SlotBookmarks, &bookmarks); err != nil {
		return nil, err
	}
	return bookmarks, nil
}

// IsBookmarked reports whether a prompt id is bookmarked.
func (s *Store) IsBookmarked(promptID string) (bool, error) {
	bookmarks, err := s.LoadBookmarks()
	if err != nil {
		return false, err
	}
	for _, b := range bookmarks {
		if b.ID == promptID {
			return true, nil
		}
	}
	return false, nil
}

// AddBookmark prepends a bookmark; adding an already-bookmarked prompt is a
// no-op.
func (s *Store) AddBookmark(promptID, category string) ([]Bookmark, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	bookmarks, err := s.LoadBookmarks()
	if err != nil {
		return nil, err
	}
	for _, b := range bookmarks {
		if b.ID == promptID {
			return bookmarks, nil
		}
	}

	updated := append([]Bookmark{{
		ID:           promptID,
		Category:     category,
		BookmarkedAt: time.Now().UTC(),
	}}, bookmarks...)
	if err := s.storage.Set(vault.SlotBookmarks, updated); err != nil {
		return nil, err
	}
	return updated, nil
}

// RemoveBookmark drops the bookmark for a prompt id.
func (s *Store) RemoveBookmark(promptID string) ([]Bookmark, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	bookmarks, err := s.LoadBookmarks()
	if err != nil {
		return nil, err
	}
	updated := bookmarks[:0:0]
	for _, b := range bookmarks {
		if b.ID != promptID {
			updated = append(updated, b)
		}
	}
	if updated == nil {
		updated = []Bookmark{}
	}
	if err := s.storage.Set(vault.SlotBookmarks, updated); err != nil {
		return nil, err
	}
	return updated, nil
}

// ToggleBookmark flips a prompt's bookmark state and reports the new state.
func (s *Store) ToggleBookmark(promptID, category string) (bookmarks []Bookmark, nowBookmarked bool, err error) {
	bookmarked, err := s.IsBookmarked(promptID)
	if err != nil {
		return nil, false, err
	}
	if bookmarked {
		bookmarks, err = s.RemoveBookmark(promptID)
		return bookmarks, false, err
	}
	bookmarks, err = s.AddBookmark(promptID, category)
	return bookmarks, true, err
}

// LoadReadingProgress returns progress records for all guides.
func (s *Store) LoadReadingProgress() ([]ReadingProgress, error) {
	var progress []ReadingProgress
	if _, err := s.storage.Get(vault.SlotReadingProgress, &progress); err != nil {
		return nil, err
	}
	return progress, nil
}

// UpdateReadingProgress upserts a guide's progress, clamped to 0 through 100.
// Reaching 100 stamps the completion time.
func (s *Store) UpdateReadingProgress(slug string, percent int) ([]ReadingProgress, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	progress, err := s.LoadReadingProgress()
	if err != nil {
		return nil, err
	}

	if percent < 0 {
		percent = 0
	} else if percent > 100 {
		percent = 100
	}

	found := false
	for i := range progress {
		if progress[i].Slug == slug {
			progress[i].Progress = percent
			if percent == 100 {
				progress[i].CompletedAt = time.Now().UTC()
			}
			found = true
			break
		}
	}
	if !found {
		record := ReadingProgress{Slug: slug, Progress: percent}
		if percent == 100 {
			record.CompletedAt = time.Now().UTC()
		}
		progress = append(progress, record)
	}

	if err := s.storage.Set(vault.SlotReadingProgress, progress); err != nil {
		return nil, err
	}
	return progress, nil
}

// GuideCompleted reports whether a guide has been read to the end.
func (s *Store) GuideCompleted(slug string) (bool, error) {
	progress, err := s.LoadReadingProgress()
	if err != nil {
		return false, err
	}
	for _, p := range progress {
		if p.Slug == slug {
			return p.Progress == 100, nil
		}
	}
	return false, nil
}

// ClearReadingProgress drops a single guide's record.
func (s *Store) ClearReadingProgress(slug string) ([]ReadingProgress, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	progress, err := s.LoadReadingProgress()
	if err != nil {
		return nil, err
	}
	updated := progress[:0:0]
	for _, p := range progress {
		if p.Slug != slug {
			updated = append(updated, p)
		}
	}
	if updated == nil {
		updated = []ReadingProgress{}
	}
	if err := s.storage.Set(vault.SlotReadingProgress, updated); err != nil {
		return nil, err
	}
	return updated, nil
}
