package journal

import (
	"sort"
	"strings"
	"time"
)

// ActivityWindowDays is the span of the day-bucketed activity summary.
const ActivityWindowDays = 30

// DayActivity is one bucket of the activity window.
type DayActivity struct {
	Day   string `json:"day"` // YYYY-MM-DD
	Count int    `json:"count"`
}

// Stats summarizes a history snapshot.
type Stats struct {
	TotalEntries    int           `json:"totalEntries"`
	AnalyzedEntries int           `json:"analyzedEntries"`
	PositiveEntries int           `json:"positiveEntries"`
	NegativeEntries int           `json:"negativeEntries"`
	PositivePercent int           `json:"positivePercent"`
	TotalWords      int           `json:"totalWords"`
	AverageWords    int           `json:"averageWords"`
	CurrentStreak   int           `json:"currentStreak"`
	MaxStreak       int           `json:"maxStreak"`
	Activity        []DayActivity `json:"activity"` // oldest first
}

const dayLayout = "2006-01-02"

func dayKey(t time.Time, loc *time.Location) string {
	return t.In(loc).Format(dayLayout)
}

// ComputeStats derives totals, the positive share among analyzed entries,
// word counts, and day-bucketed activity with streaks over the trailing
// window ending at now. Days are bucketed in now's location.
func ComputeStats(history []StoredEntry, now time.Time) Stats {
	loc := now.Location()

	stats := Stats{TotalEntries: len(history)}

	countsByDay := make(map[string]int)
	for _, entry := range history {
		countsByDay[dayKey(entry.CreatedAt, loc)]++
		stats.TotalWords += entry.WordCount

		if entry.Insights == nil {
			continue
		}
		stats.AnalyzedEntries++
		if entry.Insights.Emotion.RawLabel == "POSITIVE" {
			stats.PositiveEntries++
		}
	}
	stats.NegativeEntries = stats.AnalyzedEntries - stats.PositiveEntries
	if stats.AnalyzedEntries > 0 {
		stats.PositivePercent = int(float64(stats.PositiveEntries)/float64(stats.AnalyzedEntries)*100 + 0.5)
	}
	if len(history) > 0 {
		stats.AverageWords = int(float64(stats.TotalWords)/float64(len(history)) + 0.5)
	}

	today := time.Date(now.In(loc).Year(), now.In(loc).Month(), now.In(loc).Day(), 0, 0, 0, 0, loc)

	stats.Activity = make([]DayActivity, 0, ActivityWindowDays)
	for i := ActivityWindowDays - 1; i >= 0; i-- {
		day := today.AddDate(0, 0, -i)
		key := day.Format(dayLayout)
		stats.Activity = append(stats.Activity, DayActivity{Day: key, Count: countsByDay[key]})
	}

	for cursor := today; countsByDay[cursor.Format(dayLayout)] > 0; cursor = cursor.AddDate(0, 0, -1) {
		stats.CurrentStreak++
	}
	stats.MaxStreak = maxStreak(countsByDay)

	return stats
}

// maxStreak finds the longest run of consecutive active days across the
// whole history, not just the activity window.
func maxStreak(countsByDay map[string]int) int {
	activeDays := make([]string, 0, len(countsByDay))
	for key, count := range countsByDay {
		if count > 0 {
			activeDays = append(activeDays, key)
		}
	}
	sort.Strings(activeDays)

	best, current := 0, 0
	var prev time.Time
	for i, key := range activeDays {
		day, err := time.Parse(dayLayout, key)
		if err != nil {
			continue
		}
		if i > 0 && day.Sub(prev) == 24*time.Hour {
			current++
		} else {
			current = 1
		}
		if current > best {
			best = current
		}
		prev = day
	}
	return best
}

// Filter narrows a history listing. Mood is "", "positive", or "negative";
// a mood filter only matches analyzed entries. Query matches entry text or
// any insight text, case-insensitively.
type Filter struct {
	Query string
	Mood  string
}

// FilterHistory returns the entries matching the filter, preserving order.
func FilterHistory(history []StoredEntry, f Filter) []StoredEntry {
	query := strings.ToLower(strings.TrimSpace(f.Query))

	var out []StoredEntry
	for _, entry := range history {
		if f.Mood != "" && f.Mood != "all" {
			if entry.Insights == nil {
				continue
			}
			positive := entry.Insights.Emotion.RawLabel == "POSITIVE"
			if f.Mood == "positive" && !positive {
				continue
			}
			if f.Mood == "negative" && positive {
				continue
			}
		}

		if query != "" && !matchesQuery(entry, query) {
			continue
		}

		out = append(out, entry)
	}
	return out
}

func matchesQuery(entry StoredEntry, query string) bool {
	if strings.Contains(strings.ToLower(entry.Entry), query) {
		return true
	}
	if entry.Insights == nil {
		return false
	}
	return strings.Contains(strings.ToLower(entry.Insights.Theme.Text), query) ||
		strings.Contains(strings.ToLower(entry.Insights.Emotion.Tone), query) ||
		strings.Contains(strings.ToLower(entry.Insights.Reflection.Question), query)
}
