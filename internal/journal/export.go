package journal

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"
)

// jsonExport is the JSON export envelope. Import also accepts a bare array.
type jsonExport struct {
	History []StoredEntry `json:"history"`
}

// ExportJSON serializes history as {"history": [...]}.
func ExportJSON(history []StoredEntry) ([]byte, error) {
	if history == nil {
		history = []StoredEntry{}
	}
	data, err := json.MarshalIndent(jsonExport{History: history}, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("encode history: %w", err)
	}
	return data, nil
}

// ExportMarkdown renders history as a human-readable document, one section
// per entry. ImportMarkdown parses this same layout.
func ExportMarkdown(history []StoredEntry, now time.Time) string {
	var b strings.Builder

	b.WriteString("# Journal Export\n\n")
	fmt.Fprintf(&b, "Exported %s. %d entries.\n", now.UTC().Format(time.RFC3339), len(history))

	for i, entry := range history {
		fmt.Fprintf(&b, "\n## Entry %d\n\n", i+1)
		fmt.Fprintf(&b, "**Created At (ISO):** %s\n", entry.CreatedAt.UTC().Format(time.RFC3339))
		fmt.Fprintf(&b, "**Prompt:** %s\n", entry.PromptID)
		fmt.Fprintf(&b, "**Word Count:** %d\n\n", entry.WordCount)
		b.WriteString("### Content\n\n")
		b.WriteString(strings.TrimSpace(entry.Entry))
		b.WriteString("\n")

		if entry.Insights != nil {
			ins := entry.Insights
			b.WriteString("\n### AI Insights\n\n")
			fmt.Fprintf(&b, "**Emotion:** %s %s (%d%%)\n", ins.Emotion.Emoji, ins.Emotion.Tone, int(ins.Emotion.Confidence*100))
			fmt.Fprintf(&b, "**Theme:** %s %s. %s\n", ins.Theme.Emoji, ins.Theme.Title, ins.Theme.Text)
			fmt.Fprintf(&b, "**Reflection:** %s %s\n", ins.Reflection.Emoji, ins.Reflection.Question)
		}

		b.WriteString("\n---\n")
	}

	return b.String()
}
