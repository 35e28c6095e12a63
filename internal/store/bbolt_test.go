package store

import (
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/quillvault/quill/internal/crypto"
)

func newTestStore(t *testing.T) *BoltStore {
	t.Helper()
	s, err := NewBoltStore(filepath.Join(t.TempDir(), "quill.db"))
	if err != nil {
		t.Fatalf("NewBoltStore: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func TestMeta_RoundTrip(t *testing.T) {
	s := newTestStore(t)

	if _, err := s.GetMeta(); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}

	meta := &VaultMeta{
		Version:    1,
		EnabledAt:  time.Now().UTC().Truncate(time.Second),
		Salt:       []byte("0123456789abcdef"),
		Iterations: crypto.DefaultIterations,
		Verifier:   crypto.EncryptedPayload{IV: make([]byte, crypto.NonceSize), CT: []byte{1, 2, 3}},
		VaultID:    "test-vault",
	}
	if err := s.SetMeta(meta); err != nil {
		t.Fatalf("SetMeta: %v", err)
	}

	got, err := s.GetMeta()
	if err != nil {
		t.Fatalf("GetMeta: %v", err)
	}
	if got.Iterations != meta.Iterations || got.VaultID != meta.VaultID {
		t.Fatalf("meta mismatch: %+v", got)
	}
	if !got.EnabledAt.Equal(meta.EnabledAt) {
		t.Fatalf("expected EnabledAt %v, got %v", meta.EnabledAt, got.EnabledAt)
	}

	if err := s.DeleteMeta(); err != nil {
		t.Fatalf("DeleteMeta: %v", err)
	}
	if _, err := s.GetMeta(); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound after delete, got %v", err)
	}
}

func TestSlots_PlaintextLifecycle(t *testing.T) {
	s := newTestStore(t)

	if _, found, err := s.GetSlot("draft"); err != nil || found {
		t.Fatalf("expected absent slot, got found=%v err=%v", found, err)
	}

	if err := s.SetSlot("draft", `{"entry":"hello"}`); err != nil {
		t.Fatalf("SetSlot: %v", err)
	}

	value, found, err := s.GetSlot("draft")
	if err != nil {
		t.Fatalf("GetSlot: %v", err)
	}
	if !found || value != `{"entry":"hello"}` {
		t.Fatalf("unexpected slot content: found=%v value=%q", found, value)
	}

	if err := s.DeleteSlot("draft"); err != nil {
		t.Fatalf("DeleteSlot: %v", err)
	}
	if _, found, _ := s.GetSlot("draft"); found {
		t.Fatal("slot still present after delete")
	}
}

func TestSealed_Lifecycle(t *testing.T) {
	s := newTestStore(t)

	payload := &crypto.EncryptedPayload{
		IV: []byte{0, 1, 2, 3, 4, 5, 6, 7, 8, 9, 10, 11},
		CT: []byte{0xde, 0xad, 0xbe, 0xef},
	}
	if err := s.SetSealed("history", payload); err != nil {
		t.Fatalf("SetSealed: %v", err)
	}

	got, found, err := s.GetSealed("history")
	if err != nil {
		t.Fatalf("GetSealed: %v", err)
	}
	if !found {
		t.Fatal("expected sealed payload")
	}
	if len(got.IV) != len(payload.IV) || len(got.CT) != len(payload.CT) {
		t.Fatalf("payload mismatch: %+v", got)
	}

	// Sealed and plaintext namespaces are independent.
	if _, found, _ := s.GetSlot("history"); found {
		t.Fatal("sealed write leaked into plaintext namespace")
	}

	if err := s.DeleteSealed("history"); err != nil {
		t.Fatalf("DeleteSealed: %v", err)
	}
	if _, found, _ := s.GetSealed("history"); found {
		t.Fatal("sealed payload still present after delete")
	}
}

func TestEvents_NewestFirst(t *testing.T) {
	s := newTestStore(t)

	base := time.Now().UTC()
	for i := 0; i < 5; i++ {
		err := s.AppendEvent(&Event{
			ID:        "evt",
			Name:      "insight_requested",
			Props:     map[string]any{"word_count": i},
			Timestamp: base.Add(time.Duration(i) * time.Second),
		})
		if err != nil {
			t.Fatalf("AppendEvent: %v", err)
		}
	}

	events, err := s.ListEvents(3)
	if err != nil {
		t.Fatalf("ListEvents: %v", err)
	}
	if len(events) != 3 {
		t.Fatalf("expected 3 events, got %d", len(events))
	}
	for i := 1; i < len(events); i++ {
		if events[i].Timestamp.After(events[i-1].Timestamp) {
			t.Fatal("events not in newest-first order")
		}
	}
}
