package journal

import (
	"encoding/json"
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/quillvault/quill/internal/prompts"
)

// ErrNothingImportable is returned when a file parses but yields no usable
// entries, or does not match either supported format at all.
var ErrNothingImportable = fmt.Errorf("no importable entries found")

// ParseImport reads an export file in either supported format. JSON is
// detected by filename or a leading bracket; anything else is treated as
// Markdown. Individual malformed records are skipped, never fatal to the
// batch.
func ParseImport(data []byte, filename string, now time.Time) ([]StoredEntry, error) {
	trimmed := strings.TrimSpace(string(data))
	looksJSON := strings.HasSuffix(strings.ToLower(filename), ".json") ||
		strings.HasPrefix(trimmed, "[") ||
		strings.HasPrefix(trimmed, "{")

	var entries []StoredEntry
	if looksJSON {
		var err error
		entries, err = parseJSONEntries(trimmed, now)
		if err != nil {
			return nil, err
		}
	} else {
		entries = parseMarkdownEntries(string(data), now)
	}

	if len(entries) == 0 {
		return nil, ErrNothingImportable
	}
	return entries, nil
}

// parseJSONEntries accepts a bare entry array or the {"history": [...]}
// envelope. Records are decoded loosely so one bad field falls back to a
// computed default instead of rejecting the record, and one bad record never
// rejects the batch.
func parseJSONEntries(text string, now time.Time) ([]StoredEntry, error) {
	var parsed any
	if err := json.Unmarshal([]byte(text), &parsed); err != nil {
		return nil, fmt.Errorf("parse import: %w", err)
	}

	var list []any
	switch v := parsed.(type) {
	case []any:
		list = v
	case map[string]any:
		if history, ok := v["history"].([]any); ok {
			list = history
		}
	}

	entries := make([]StoredEntry, 0, len(list))
	for index, item := range list {
		record, ok := item.(map[string]any)
		if !ok {
			continue
		}

		entryText, _ := record["entry"].(string)
		if strings.TrimSpace(entryText) == "" {
			continue
		}

		createdAt := now
		if raw, ok := record["createdAt"].(string); ok {
			if t, err := time.Parse(time.RFC3339, raw); err == nil {
				createdAt = t
			}
		}

		wordCount := CountWords(entryText)
		if raw, ok := record["wordCount"].(float64); ok && raw >= 0 {
			wordCount = int(raw)
		}

		promptID := prompts.DefaultID
		if raw, ok := record["promptId"].(string); ok {
			promptID = prompts.Normalize(raw)
		}

		insights := coerceInsights(record["insights"])

		var analyzedAt *time.Time
		if insights != nil {
			at := createdAt
			if raw, ok := record["analyzedAt"].(string); ok {
				if t, err := time.Parse(time.RFC3339, raw); err == nil {
					at = t
				}
			}
			analyzedAt = &at
		}

		entries = append(entries, StoredEntry{
			ID:         ImportEntryID(now, index),
			PromptID:   promptID,
			Entry:      entryText,
			WordCount:  wordCount,
			CreatedAt:  createdAt,
			Insights:   insights,
			AnalyzedAt: analyzedAt,
		})
	}
	return entries, nil
}

// coerceInsights validates an imported insights value. Anything missing the
// core fields is treated as absent rather than an error, which keeps the
// insights/analyzedAt invariant intact for the rebuilt entry.
func coerceInsights(value any) *InsightBundle {
	record, ok := value.(map[string]any)
	if !ok {
		return nil
	}

	raw, err := json.Marshal(record)
	if err != nil {
		return nil
	}
	var bundle InsightBundle
	if err := json.Unmarshal(raw, &bundle); err != nil {
		return nil
	}

	if bundle.Emotion.Emoji == "" || bundle.Emotion.Tone == "" {
		return nil
	}
	if bundle.Theme.Text == "" || bundle.Reflection.Question == "" {
		return nil
	}
	return &bundle
}

var (
	createdAtRe = regexp.MustCompile(`\*\*Created At \(ISO\):\*\*\s*(.+)`)
	promptRe    = regexp.MustCompile(`\*\*Prompt:\*\*\s*(.+)`)
	wordCountRe = regexp.MustCompile(`\*\*Word Count:\*\*\s*(\d+)`)
)

// parseMarkdownEntries rebuilds entries from the Markdown export layout.
// Insight blocks are presentation-only in that format, so reconstructed
// entries carry no insights.
func parseMarkdownEntries(text string, now time.Time) []StoredEntry {
	chunks := strings.Split(text, "\n## Entry ")
	if len(chunks) <= 1 {
		return nil
	}

	var entries []StoredEntry
	for index, chunk := range chunks[1:] {
		createdAt := now
		if m := createdAtRe.FindStringSubmatch(chunk); m != nil {
			if t, err := time.Parse(time.RFC3339, strings.TrimSpace(m[1])); err == nil {
				createdAt = t
			}
		}

		promptID := prompts.DefaultID
		if m := promptRe.FindStringSubmatch(chunk); m != nil {
			promptID = prompts.Normalize(strings.TrimSpace(m[1]))
		}

		wordCount := -1
		if m := wordCountRe.FindStringSubmatch(chunk); m != nil {
			if n, err := strconv.Atoi(m[1]); err == nil {
				wordCount = n
			}
		}

		contentStart := strings.Index(chunk, "### Content")
		if contentStart == -1 {
			continue
		}
		after := chunk[contentStart:]
		lineEnd := strings.Index(after, "\n")
		if lineEnd == -1 {
			continue
		}
		rest := after[lineEnd+1:]

		end := len(rest)
		if i := strings.Index(rest, "### AI Insights"); i != -1 && i < end {
			end = i
		}
		if i := strings.Index(rest, "\n---"); i != -1 && i < end {
			end = i
		}

		entryText := strings.TrimSpace(rest[:end])
		if entryText == "" {
			continue
		}
		if wordCount < 0 {
			wordCount = CountWords(entryText)
		}

		entries = append(entries, StoredEntry{
			ID:        ImportEntryID(now, index+1),
			PromptID:  promptID,
			Entry:     entryText,
			WordCount: wordCount,
			CreatedAt: createdAt,
		})
	}
	return entries
}
