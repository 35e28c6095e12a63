package journal

import (
	"encoding/json"
	"strings"
	"testing"
	"time"
)

func sampleHistory(now time.Time) []StoredEntry {
	analyzed := now.Add(-time.Hour)
	return []StoredEntry{
		{
			ID:        "entry_3",
			PromptID:  "gratitude_growth",
			Entry:     "Grateful for a slow morning and good coffee.",
			WordCount: 8,
			CreatedAt: now,
			Insights: &InsightBundle{
				Emotion:    EmotionInsight{Emoji: "🙂", Tone: "Positive", Text: "A bright tone.", Confidence: 0.91, RawLabel: "POSITIVE"},
				Theme:      ThemeInsight{Emoji: "🌱", Title: "Personal Growth", Text: "Focused on gratitude."},
				Reflection: ReflectionInsight{Emoji: "💭", Question: "What made the morning restful?", Technique: "Savoring"},
			},
			AnalyzedAt: &analyzed,
		},
		{
			ID:        "entry_2",
			PromptID:  "daily_reflection",
			Entry:     "Work was stressful but the deadline moved.",
			WordCount: 7,
			CreatedAt: now.Add(-24 * time.Hour),
		},
		{
			ID:        "entry_1",
			PromptID:  "cbt_thought_record",
			Entry:     "I assumed the worst about the meeting and it went fine.",
			WordCount: 11,
			CreatedAt: now.Add(-48 * time.Hour),
		},
	}
}

func TestExportJSON_ImportRoundTrip(t *testing.T) {
	now := time.Now().UTC().Truncate(time.Second)
	history := sampleHistory(now)

	data, err := ExportJSON(history)
	if err != nil {
		t.Fatalf("ExportJSON: %v", err)
	}

	var envelope map[string]json.RawMessage
	if err := json.Unmarshal(data, &envelope); err != nil {
		t.Fatalf("export is not valid JSON: %v", err)
	}
	if _, ok := envelope["history"]; !ok {
		t.Fatal("export missing history key")
	}

	imported, err := ParseImport(data, "export.json", now)
	if err != nil {
		t.Fatalf("ParseImport: %v", err)
	}
	if len(imported) != len(history) {
		t.Fatalf("expected %d imported entries, got %d", len(history), len(imported))
	}

	for i, entry := range imported {
		if entry.Entry != history[i].Entry {
			t.Errorf("entry %d text mismatch: %q", i, entry.Entry)
		}
		if !strings.HasPrefix(entry.ID, "import_") {
			t.Errorf("entry %d kept a stale id: %q", i, entry.ID)
		}
		if (entry.Insights == nil) != (entry.AnalyzedAt == nil) {
			t.Errorf("entry %d breaks the insights pairing: %+v", i, entry)
		}
	}

	// The analyzed entry keeps its insights; the others stay bare.
	if imported[0].Insights == nil {
		t.Fatal("analyzed entry lost its insights on import")
	}
	if imported[1].Insights != nil {
		t.Fatal("unanalyzed entry gained insights on import")
	}
}

func TestExportMarkdown_ImportRoundTrip(t *testing.T) {
	now := time.Now().UTC().Truncate(time.Second)
	history := sampleHistory(now)

	doc := ExportMarkdown(history, now)
	for _, want := range []string{"## Entry 1", "## Entry 3", "**Created At (ISO):**", "**Word Count:**", "### Content", "### AI Insights"} {
		if !strings.Contains(doc, want) {
			t.Fatalf("export missing %q", want)
		}
	}

	imported, err := ParseImport([]byte(doc), "export.md", now)
	if err != nil {
		t.Fatalf("ParseImport: %v", err)
	}
	if len(imported) != 3 {
		t.Fatalf("expected 3 imported entries, got %d", len(imported))
	}

	for i, entry := range imported {
		if entry.Entry != strings.TrimSpace(history[i].Entry) {
			t.Errorf("entry %d text mismatch:\n got %q\nwant %q", i, entry.Entry, history[i].Entry)
		}
		if !entry.CreatedAt.Equal(history[i].CreatedAt) {
			t.Errorf("entry %d createdAt mismatch: %v vs %v", i, entry.CreatedAt, history[i].CreatedAt)
		}
		if entry.WordCount != history[i].WordCount {
			t.Errorf("entry %d word count mismatch: %d vs %d", i, entry.WordCount, history[i].WordCount)
		}
		if entry.PromptID != history[i].PromptID {
			t.Errorf("entry %d prompt mismatch: %s vs %s", i, entry.PromptID, history[i].PromptID)
		}
		// Markdown carries insights for reading only; import drops them.
		if entry.Insights != nil || entry.AnalyzedAt != nil {
			t.Errorf("entry %d gained insights from markdown", i)
		}
	}
}

func TestParseImport_BareArray(t *testing.T) {
	now := time.Now().UTC()
	raw := `[{"entry": "a fine day outside", "promptId": "bogus_prompt"}]`

	imported, err := ParseImport([]byte(raw), "history.json", now)
	if err != nil {
		t.Fatalf("ParseImport: %v", err)
	}
	if len(imported) != 1 {
		t.Fatalf("expected 1 entry, got %d", len(imported))
	}

	entry := imported[0]
	if entry.PromptID != "daily_reflection" {
		t.Fatalf("unknown prompt not defaulted: %s", entry.PromptID)
	}
	if entry.WordCount != 4 {
		t.Fatalf("word count not recomputed: %d", entry.WordCount)
	}
	if !entry.CreatedAt.Equal(now) {
		t.Fatalf("missing createdAt not defaulted: %v", entry.CreatedAt)
	}
}

func TestParseImport_SkipsMalformedRecords(t *testing.T) {
	now := time.Now().UTC()
	raw := `{"history": [
		{"entry": "a valid record"},
		{"entry": "   "},
		"not an object",
		{"entry": "another valid one", "insights": {"emotion": "broken"}}
	]}`

	imported, err := ParseImport([]byte(raw), "history.json", now)
	if err != nil {
		t.Fatalf("ParseImport: %v", err)
	}
	if len(imported) != 2 {
		t.Fatalf("expected 2 surviving entries, got %d", len(imported))
	}
	if imported[1].Insights != nil {
		t.Fatal("unparseable insights should be treated as absent")
	}
}

func TestParseImport_NothingImportable(t *testing.T) {
	now := time.Now().UTC()

	if _, err := ParseImport([]byte("just some plain prose"), "notes.txt", now); err == nil {
		t.Fatal("expected error for a file with no entries")
	}
	if _, err := ParseImport([]byte("{not json"), "broken.json", now); err == nil {
		t.Fatal("expected error for malformed JSON")
	}
}
