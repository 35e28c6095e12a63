package controller

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/quillvault/quill/internal/analysis"
	"github.com/quillvault/quill/internal/journal"
	"github.com/quillvault/quill/internal/storage"
	"github.com/quillvault/quill/internal/store"
	"github.com/quillvault/quill/internal/vault"
)

const longEntry = "Today was a genuinely good day: I finished the project, went for a long walk, and felt calm for the first time in weeks."

func newTestController(t *testing.T) (*Controller, *vault.Vault) {
	t.Helper()
	s, err := store.NewBoltStore(filepath.Join(t.TempDir(), "quill.db"))
	if err != nil {
		t.Fatalf("NewBoltStore: %v", err)
	}
	t.Cleanup(func() { s.Close() })

	v := vault.New(s)
	j := journal.NewStore(storage.New(v), 0)
	p := analysis.New(nil,
		analysis.WithRandInt(func(int) int { return 0 }),
		analysis.WithRetryPolicy(analysis.RetryPolicy{MaxAttempts: 1, BaseDelay: time.Millisecond, Multiplier: 2}),
	)

	c := New(j, p, v, Options{AutosaveDelay: 10 * time.Millisecond})
	t.Cleanup(func() { c.Close() })
	return c, v
}

func TestAnalyze_WordGate(t *testing.T) {
	c, _ := newTestController(t)

	c.SetEntryText("not enough words here at all")
	if c.CanAnalyze() {
		t.Fatal("analyze should be gated below the word minimum")
	}
	if _, err := c.Analyze(context.Background(), nil); !errors.Is(err, ErrTooFewWords) {
		t.Fatalf("expected ErrTooFewWords, got %v", err)
	}
}

func TestAnalyze_SavesEntryAndClearsDraft(t *testing.T) {
	c, _ := newTestController(t)

	c.SetEntryText(longEntry)
	if err := c.Flush(); err != nil {
		t.Fatalf("Flush: %v", err)
	}

	bundle, err := c.Analyze(context.Background(), nil)
	if err != nil {
		t.Fatalf("Analyze: %v", err)
	}
	if bundle.Emotion.Tone == "" || bundle.Reflection.Question == "" {
		t.Fatalf("incomplete bundle: %+v", bundle)
	}

	history := c.History()
	if len(history) != 1 {
		t.Fatalf("expected one saved entry, got %d", len(history))
	}
	saved := history[0]
	if saved.Insights == nil || saved.AnalyzedAt == nil {
		t.Fatalf("analyzed entry missing insights pairing: %+v", saved)
	}
	if saved.Entry != longEntry {
		t.Fatalf("entry text mismatch: %q", saved.Entry)
	}
}

func TestAnalyze_RefusesConcurrentRequests(t *testing.T) {
	c, _ := newTestController(t)
	c.SetEntryText(longEntry)

	c.mu.Lock()
	c.analyzing = true
	c.mu.Unlock()

	if _, err := c.Analyze(context.Background(), nil); !errors.Is(err, ErrAnalysisInFlight) {
		t.Fatalf("expected ErrAnalysisInFlight, got %v", err)
	}
}

func TestSaveEntry_DirtyCheck(t *testing.T) {
	c, _ := newTestController(t)

	c.SetEntryText(longEntry)
	first, err := c.SaveEntry(context.Background())
	if err != nil {
		t.Fatalf("SaveEntry: %v", err)
	}

	// Unchanged content is a no-op: same entry, no duplicate.
	second, err := c.SaveEntry(context.Background())
	if err != nil {
		t.Fatalf("SaveEntry: %v", err)
	}
	if second.ID != first.ID {
		t.Fatalf("re-save created a new entry: %s vs %s", second.ID, first.ID)
	}
	if len(c.History()) != 1 {
		t.Fatalf("expected one entry, got %d", len(c.History()))
	}
}

func TestSaveEntry_ConfirmBeforeClearingInsights(t *testing.T) {
	s, err := store.NewBoltStore(filepath.Join(t.TempDir(), "quill.db"))
	if err != nil {
		t.Fatalf("NewBoltStore: %v", err)
	}
	t.Cleanup(func() { s.Close() })

	v := vault.New(s)
	j := journal.NewStore(storage.New(v), 0)
	p := analysis.New(nil, analysis.WithRandInt(func(int) int { return 0 }))

	declined := false
	c := New(j, p, v, Options{
		AutosaveDelay: 10 * time.Millisecond,
		Confirm: func(string) bool {
			declined = true
			return false
		},
	})
	t.Cleanup(func() { c.Close() })

	c.SetEntryText(longEntry)
	if _, err := c.Analyze(context.Background(), nil); err != nil {
		t.Fatalf("Analyze: %v", err)
	}

	c.SetEntryText(longEntry + " And then everything changed.")
	if _, err := c.SaveEntry(context.Background()); !errors.Is(err, ErrUpdateDeclined) {
		t.Fatalf("expected ErrUpdateDeclined, got %v", err)
	}
	if !declined {
		t.Fatal("confirm callback never invoked")
	}

	// The stored entry keeps its insights untouched.
	entry := c.History()[0]
	if entry.Insights == nil || entry.AnalyzedAt == nil {
		t.Fatalf("declined update still cleared insights: %+v", entry)
	}
}

func TestVaultLock_BlocksWritesUntilUnlock(t *testing.T) {
	c, v := newTestController(t)
	const password = "correcthorsebattery"

	c.SetEntryText(longEntry)
	if _, err := c.SaveEntry(context.Background()); err != nil {
		t.Fatalf("SaveEntry: %v", err)
	}

	if err := v.Enable(password); err != nil {
		t.Fatalf("Enable: %v", err)
	}
	v.Lock()

	// A write while locked surfaces the distinguished vault condition.
	c.NewEntry()
	c.SetEntryText("A brand new entry written while the vault is locked tight.")
	if _, err := c.SaveEntry(context.Background()); !errors.Is(err, vault.ErrLocked) {
		t.Fatalf("expected vault.ErrLocked, got %v", err)
	}

	// Lock cleared the in-memory history.
	if len(c.History()) != 0 {
		t.Fatal("history retained in memory after lock")
	}

	ok, err := v.Unlock(password)
	if err != nil || !ok {
		t.Fatalf("Unlock: ok=%v err=%v", ok, err)
	}

	saved, err := c.SaveEntry(context.Background())
	if err != nil {
		t.Fatalf("SaveEntry after unlock: %v", err)
	}
	found := false
	for _, entry := range c.History() {
		if entry.ID == saved.ID {
			found = true
		}
	}
	if !found {
		t.Fatal("entry saved after unlock not present in history")
	}
}

func TestImportExport_RoundTripThroughController(t *testing.T) {
	c, _ := newTestController(t)

	c.SetEntryText(longEntry)
	if _, err := c.SaveEntry(context.Background()); err != nil {
		t.Fatalf("SaveEntry: %v", err)
	}

	data, err := c.Export("markdown")
	if err != nil {
		t.Fatalf("Export: %v", err)
	}

	if err := c.ClearHistory(); err != nil {
		t.Fatalf("ClearHistory: %v", err)
	}

	count, err := c.Import(data, "export.md")
	if err != nil {
		t.Fatalf("Import: %v", err)
	}
	if count != 1 {
		t.Fatalf("expected 1 imported entry, got %d", count)
	}
	if c.History()[0].Entry != longEntry {
		t.Fatalf("imported text mismatch: %q", c.History()[0].Entry)
	}
}

func TestAutosave_Debounce(t *testing.T) {
	c, _ := newTestController(t)

	c.SetEntryText("first keystroke burst")
	c.SetEntryText("second keystroke burst wins")

	time.Sleep(50 * time.Millisecond)

	// Only the final text should be persisted.
	if err := c.Restore(); err != nil {
		t.Fatalf("Restore: %v", err)
	}
	if c.EntryText() != "second keystroke burst wins" {
		t.Fatalf("unexpected draft after debounce: %q", c.EntryText())
	}
}

func TestDeleteEntry_UnbindsActiveEntry(t *testing.T) {
	c, _ := newTestController(t)

	c.SetEntryText(longEntry)
	saved, err := c.SaveEntry(context.Background())
	if err != nil {
		t.Fatalf("SaveEntry: %v", err)
	}

	if err := c.DeleteEntry(saved.ID); err != nil {
		t.Fatalf("DeleteEntry: %v", err)
	}
	if len(c.History()) != 0 {
		t.Fatal("entry still present after delete")
	}
	if c.Insights() != nil {
		t.Fatal("insights survived deleting the bound entry")
	}
}

func TestClose_WithoutEditsSavesNoDraft(t *testing.T) {
	c, _ := newTestController(t)

	// Restoring seeds the session with the prompt scaffold; closing right
	// away must not turn that scaffold into a stored draft.
	if err := c.Restore(); err != nil {
		t.Fatalf("Restore: %v", err)
	}
	if err := c.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	draft, err := c.journal.LoadDraft()
	if err != nil {
		t.Fatalf("LoadDraft: %v", err)
	}
	if draft != nil {
		t.Fatalf("draft persisted with zero edits: %q", draft.Entry)
	}
}

func TestClose_AfterAnalyzeKeepsDraftClear(t *testing.T) {
	c, _ := newTestController(t)

	c.SetEntryText(longEntry)
	if _, err := c.Analyze(context.Background(), nil); err != nil {
		t.Fatalf("Analyze: %v", err)
	}

	draft, err := c.journal.LoadDraft()
	if err != nil {
		t.Fatalf("LoadDraft: %v", err)
	}
	if draft != nil {
		t.Fatal("analysis should clear the stored draft")
	}

	// Closing the session must not write the analyzed text back as a draft,
	// and the pending autosave timer must not either.
	if err := c.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}
	time.Sleep(50 * time.Millisecond)

	draft, err = c.journal.LoadDraft()
	if err != nil {
		t.Fatalf("LoadDraft: %v", err)
	}
	if draft != nil {
		t.Fatalf("draft resurrected after analysis: %q", draft.Entry)
	}

	history, err := c.journal.LoadHistory()
	if err != nil {
		t.Fatalf("LoadHistory: %v", err)
	}
	if len(history) != 1 {
		t.Fatalf("expected exactly one saved entry, got %d", len(history))
	}
}
