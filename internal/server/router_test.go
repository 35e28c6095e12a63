package server

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/quillvault/quill/internal/analysis"
	"github.com/quillvault/quill/internal/journal"
	"github.com/quillvault/quill/internal/storage"
	"github.com/quillvault/quill/internal/store"
	"github.com/quillvault/quill/internal/vault"
)

func newTestServer(t *testing.T) (*httptest.Server, *vault.Vault, *journal.Store) {
	t.Helper()
	s, err := store.NewBoltStore(filepath.Join(t.TempDir(), "quill.db"))
	if err != nil {
		t.Fatalf("NewBoltStore: %v", err)
	}
	t.Cleanup(func() { s.Close() })

	v := vault.New(s)
	j := journal.NewStore(storage.New(v), 0)
	p := analysis.New(nil, analysis.WithRandInt(func(int) int { return 0 }))

	ts := httptest.NewServer(NewRouter(&Dependencies{Vault: v, Journal: j, Pipeline: p}))
	t.Cleanup(ts.Close)
	return ts, v, j
}

func getJSON(t *testing.T, url string, out any) int {
	t.Helper()
	resp, err := http.Get(url)
	if err != nil {
		t.Fatalf("GET %s: %v", url, err)
	}
	defer resp.Body.Close()
	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			t.Fatalf("decode response: %v", err)
		}
	}
	return resp.StatusCode
}

func postJSON(t *testing.T, url, body string, out any) int {
	t.Helper()
	resp, err := http.Post(url, "application/json", strings.NewReader(body))
	if err != nil {
		t.Fatalf("POST %s: %v", url, err)
	}
	defer resp.Body.Close()
	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			t.Fatalf("decode response: %v", err)
		}
	}
	return resp.StatusCode
}

func TestHealthz(t *testing.T) {
	ts, _, _ := newTestServer(t)

	var body map[string]string
	if status := getJSON(t, ts.URL+"/healthz", &body); status != http.StatusOK {
		t.Fatalf("healthz returned %d", status)
	}
	if body["status"] != "ok" {
		t.Fatalf("unexpected health body: %v", body)
	}
}

func TestVaultLifecycleOverHTTP(t *testing.T) {
	ts, v, _ := newTestServer(t)

	var status struct {
		Enabled bool   `json:"enabled"`
		State   string `json:"state"`
	}
	getJSON(t, ts.URL+"/api/v1/vault/status", &status)
	if status.Enabled || status.State != "disabled" {
		t.Fatalf("expected disabled vault, got %+v", status)
	}

	if err := v.Enable("correcthorsebattery"); err != nil {
		t.Fatalf("Enable: %v", err)
	}

	if code := postJSON(t, ts.URL+"/api/v1/vault/lock", "{}", nil); code != http.StatusOK {
		t.Fatalf("lock returned %d", code)
	}

	var unlock struct {
		Unlocked bool `json:"unlocked"`
	}
	postJSON(t, ts.URL+"/api/v1/vault/unlock", `{"password":"wrong"}`, &unlock)
	if unlock.Unlocked {
		t.Fatal("wrong password unlocked over HTTP")
	}

	code := postJSON(t, ts.URL+"/api/v1/vault/unlock", `{"password":"correcthorsebattery"}`, &unlock)
	if code != http.StatusOK || !unlock.Unlocked {
		t.Fatalf("unlock failed: code=%d body=%+v", code, unlock)
	}
}

func TestHistoryLockedReturns423(t *testing.T) {
	ts, v, j := newTestServer(t)

	if _, err := j.AddEntry(journal.StoredEntry{ID: "entry_1", Entry: "saved before enabling"}); err != nil {
		t.Fatalf("AddEntry: %v", err)
	}
	if err := v.Enable("correcthorsebattery"); err != nil {
		t.Fatalf("Enable: %v", err)
	}
	v.Lock()

	if status := getJSON(t, ts.URL+"/api/v1/history", nil); status != http.StatusLocked {
		t.Fatalf("expected 423 for locked vault, got %d", status)
	}
}

func TestHistoryExportFormats(t *testing.T) {
	ts, _, j := newTestServer(t)

	if _, err := j.AddEntry(journal.StoredEntry{ID: "entry_1", PromptID: "daily_reflection", Entry: "a short test entry", WordCount: 4}); err != nil {
		t.Fatalf("AddEntry: %v", err)
	}

	resp, err := http.Get(ts.URL + "/api/v1/history/export?format=markdown")
	if err != nil {
		t.Fatalf("GET export: %v", err)
	}
	defer resp.Body.Close()
	if ct := resp.Header.Get("Content-Type"); !strings.HasPrefix(ct, "text/markdown") {
		t.Fatalf("unexpected content type %q", ct)
	}

	if status := getJSON(t, ts.URL+"/api/v1/history/export?format=xml", nil); status != http.StatusBadRequest {
		t.Fatalf("expected 400 for unknown format, got %d", status)
	}
}

func TestHistoryFilterAndStats(t *testing.T) {
	ts, _, j := newTestServer(t)

	now := time.Now().UTC()
	if _, err := j.AddEntry(journal.StoredEntry{ID: "entry_1", Entry: "a plain note about gardening", WordCount: 5, CreatedAt: now}); err != nil {
		t.Fatalf("AddEntry: %v", err)
	}
	analyzed := journal.StoredEntry{
		ID:        "entry_2",
		Entry:     "a happier day at work",
		WordCount: 5,
		CreatedAt: now,
		Insights: &journal.InsightBundle{
			Emotion:    journal.EmotionInsight{Emoji: "😊", Tone: "joyful or excited", RawLabel: "POSITIVE"},
			Theme:      journal.ThemeInsight{Emoji: "🧭", Title: "Emerging theme", Text: "You seem to be working through work."},
			Reflection: journal.ReflectionInsight{Emoji: "💡", Question: "What went well today?", Technique: "Positive psychology"},
		},
		AnalyzedAt: &now,
	}
	if _, err := j.AddEntry(analyzed); err != nil {
		t.Fatalf("AddEntry: %v", err)
	}

	var listing struct {
		History []journal.StoredEntry `json:"history"`
		Total   int                   `json:"total"`
	}
	getJSON(t, ts.URL+"/api/v1/history?mood=positive", &listing)
	if listing.Total != 2 || len(listing.History) != 1 || listing.History[0].ID != "entry_2" {
		t.Fatalf("mood filter wrong: %+v", listing)
	}

	var stats journal.Stats
	if code := getJSON(t, ts.URL+"/api/v1/history/stats", &stats); code != http.StatusOK {
		t.Fatalf("stats returned %d", code)
	}
	if stats.TotalEntries != 2 || stats.AnalyzedEntries != 1 || stats.PositivePercent != 100 {
		t.Fatalf("unexpected stats: %+v", stats)
	}
	if stats.CurrentStreak != 1 {
		t.Fatalf("current streak = %d, want 1", stats.CurrentStreak)
	}
}

func TestAnalyzeEndpoint(t *testing.T) {
	ts, _, _ := newTestServer(t)

	if code := postJSON(t, ts.URL+"/api/v1/analyze", `{"text":""}`, nil); code != http.StatusUnprocessableEntity {
		t.Fatalf("empty text returned %d", code)
	}
	if code := postJSON(t, ts.URL+"/api/v1/analyze", `{"text":"too short"}`, nil); code != http.StatusUnprocessableEntity {
		t.Fatalf("short text returned %d", code)
	}

	var bundle journal.InsightBundle
	code := postJSON(t, ts.URL+"/api/v1/analyze",
		`{"text":"Today I took a long walk and felt calm, grateful, and genuinely happy about life."}`, &bundle)
	if code != http.StatusOK {
		t.Fatalf("analyze returned %d", code)
	}
	if bundle.Emotion.Tone == "" || bundle.Reflection.Question == "" {
		t.Fatalf("incomplete bundle over HTTP: %+v", bundle)
	}
}
