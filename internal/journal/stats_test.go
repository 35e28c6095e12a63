package journal

import (
	"testing"
	"time"
)

func analyzedEntry(id string, createdAt time.Time, label string, words int) StoredEntry {
	at := createdAt
	return StoredEntry{
		ID:        id,
		Entry:     "entry " + id,
		WordCount: words,
		CreatedAt: createdAt,
		Insights: &InsightBundle{
			Emotion:    EmotionInsight{Emoji: "😊", Tone: "joyful or excited", RawLabel: label},
			Theme:      ThemeInsight{Emoji: "🧭", Title: "Emerging theme", Text: "You seem to be working through the week."},
			Reflection: ReflectionInsight{Emoji: "💡", Question: "What made this feel meaningful?", Technique: "Positive psychology"},
		},
		AnalyzedAt: &at,
	}
}

func TestComputeStats(t *testing.T) {
	now := time.Date(2026, 8, 31, 12, 0, 0, 0, time.UTC)
	day := func(offset int) time.Time { return now.AddDate(0, 0, -offset) }

	history := []StoredEntry{
		analyzedEntry("entry_4", day(0), "POSITIVE", 30),
		{ID: "entry_3", Entry: "plain", WordCount: 10, CreatedAt: day(0)},
		analyzedEntry("entry_2", day(1), "NEGATIVE", 20),
		{ID: "entry_1", Entry: "older", WordCount: 40, CreatedAt: day(5)},
	}

	stats := ComputeStats(history, now)

	if stats.TotalEntries != 4 || stats.AnalyzedEntries != 2 {
		t.Fatalf("totals wrong: %+v", stats)
	}
	if stats.PositiveEntries != 1 || stats.NegativeEntries != 1 || stats.PositivePercent != 50 {
		t.Fatalf("positive share wrong: %+v", stats)
	}
	if stats.TotalWords != 100 || stats.AverageWords != 25 {
		t.Fatalf("word totals wrong: %+v", stats)
	}
	if stats.CurrentStreak != 2 {
		t.Fatalf("current streak = %d, want 2", stats.CurrentStreak)
	}
	if stats.MaxStreak != 2 {
		t.Fatalf("max streak = %d, want 2", stats.MaxStreak)
	}
	if len(stats.Activity) != ActivityWindowDays {
		t.Fatalf("activity window has %d days", len(stats.Activity))
	}
	last := stats.Activity[len(stats.Activity)-1]
	if last.Day != "2026-08-31" || last.Count != 2 {
		t.Fatalf("today's bucket wrong: %+v", last)
	}
}

func TestComputeStats_NoEntryTodayBreaksStreak(t *testing.T) {
	now := time.Date(2026, 8, 31, 12, 0, 0, 0, time.UTC)
	history := []StoredEntry{
		{ID: "entry_1", Entry: "yesterday", WordCount: 5, CreatedAt: now.AddDate(0, 0, -1)},
		{ID: "entry_2", Entry: "before", WordCount: 5, CreatedAt: now.AddDate(0, 0, -2)},
	}

	stats := ComputeStats(history, now)
	if stats.CurrentStreak != 0 {
		t.Fatalf("current streak = %d, want 0", stats.CurrentStreak)
	}
	if stats.MaxStreak != 2 {
		t.Fatalf("max streak = %d, want 2", stats.MaxStreak)
	}
}

func TestComputeStats_Empty(t *testing.T) {
	stats := ComputeStats(nil, time.Now())
	if stats.TotalEntries != 0 || stats.AverageWords != 0 || stats.PositivePercent != 0 {
		t.Fatalf("empty stats not zeroed: %+v", stats)
	}
}

func TestFilterHistory(t *testing.T) {
	now := time.Date(2026, 8, 31, 12, 0, 0, 0, time.UTC)
	history := []StoredEntry{
		analyzedEntry("entry_3", now, "POSITIVE", 10),
		analyzedEntry("entry_2", now, "NEGATIVE", 10),
		{ID: "entry_1", Entry: "never analyzed, mentions gardening", WordCount: 5, CreatedAt: now},
	}

	tests := []struct {
		name   string
		filter Filter
		want   []string
	}{
		{"no filter", Filter{}, []string{"entry_3", "entry_2", "entry_1"}},
		{"positive mood", Filter{Mood: "positive"}, []string{"entry_3"}},
		{"negative mood", Filter{Mood: "negative"}, []string{"entry_2"}},
		{"query on entry text", Filter{Query: "GARDENING"}, []string{"entry_1"}},
		{"query on insight question", Filter{Query: "meaningful"}, []string{"entry_3", "entry_2"}},
		{"query plus mood", Filter{Query: "meaningful", Mood: "positive"}, []string{"entry_3"}},
		{"no match", Filter{Query: "submarine"}, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := FilterHistory(history, tt.filter)
			if len(got) != len(tt.want) {
				t.Fatalf("got %d entries, want %d", len(got), len(tt.want))
			}
			for i, id := range tt.want {
				if got[i].ID != id {
					t.Fatalf("entry %d = %s, want %s", i, got[i].ID, id)
				}
			}
		})
	}
}
