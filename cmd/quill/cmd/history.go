package cmd

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/quillvault/quill/internal/journal"
)

var (
	historySearch string
	historyMood   string
	historyStats  bool
)

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "List saved journal entries",
	Long: `List saved journal entries, newest first.

Use --search to match entry or insight text, --mood to keep only analyzed
entries with a positive or negative emotion, and --stats for totals,
word counts, and writing streaks.

Examples:
  quill history
  quill history --search garden
  quill history --mood negative
  quill history --stats`,
	RunE: runHistory,
}

func init() {
	historyCmd.Flags().StringVar(&historySearch, "search", "", "filter by text in entries or insights")
	historyCmd.Flags().StringVar(&historyMood, "mood", "", "filter by mood: positive or negative")
	historyCmd.Flags().BoolVar(&historyStats, "stats", false, "show history statistics instead of the listing")
	rootCmd.AddCommand(historyCmd)
}

// previewText collapses an entry to a single short line for the listing.
func previewText(text string, max int) string {
	collapsed := strings.Join(strings.Fields(text), " ")
	runes := []rune(collapsed)
	if len(runes) <= max {
		return collapsed
	}
	return string(runes[:max]) + "…"
}

func runHistory(_ *cobra.Command, _ []string) error {
	if historyMood != "" && historyMood != "positive" && historyMood != "negative" {
		return fmt.Errorf("invalid mood %q (supported: positive, negative)", historyMood)
	}

	a, err := openApp()
	if err != nil {
		return err
	}
	defer a.Close()

	if err := a.unlock(); err != nil {
		return err
	}

	history, err := a.journal.LoadHistory()
	if err != nil {
		return fmt.Errorf("failed to load history: %w", err)
	}

	if historyStats {
		return printStats(history)
	}

	filtered := journal.FilterHistory(history, journal.Filter{
		Query: historySearch,
		Mood:  historyMood,
	})

	if jsonOutput {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(filtered)
	}

	if len(history) == 0 {
		Info("No entries yet. Start with 'quill write'.")
		return nil
	}
	if len(filtered) == 0 {
		Info("No entries match the filter.")
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, Bold("ID")+"\t"+Bold("CREATED")+"\t"+Bold("WORDS")+"\t"+Bold("PROMPT")+"\t"+Bold("ENTRY"))
	for _, entry := range filtered {
		marker := ""
		if entry.Insights != nil {
			marker = " ✨"
		}
		fmt.Fprintf(w, "%s\t%s\t%d\t%s\t%s%s\n",
			entry.ID,
			entry.CreatedAt.Local().Format("2006-01-02 15:04"),
			entry.WordCount,
			entry.PromptID,
			previewText(entry.Entry, 48),
			marker,
		)
	}
	w.Flush()

	fmt.Println()
	if len(filtered) != len(history) {
		fmt.Println(Dim("%d of %d entries. ✨ marks analyzed entries.", len(filtered), len(history)))
	} else {
		fmt.Println(Dim("%d entries. ✨ marks analyzed entries.", len(history)))
	}
	return nil
}

func printStats(history []journal.StoredEntry) error {
	stats := journal.ComputeStats(history, time.Now())

	if jsonOutput {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(stats)
	}

	PrintKeyValue("Entries", fmt.Sprintf("%d (%d analyzed)", stats.TotalEntries, stats.AnalyzedEntries))
	if stats.AnalyzedEntries > 0 {
		PrintKeyValue("Mood", fmt.Sprintf("%d%% positive (%d positive, %d negative)",
			stats.PositivePercent, stats.PositiveEntries, stats.NegativeEntries))
	}
	PrintKeyValue("Words", fmt.Sprintf("%d total, %d average", stats.TotalWords, stats.AverageWords))
	PrintKeyValue("Streak", fmt.Sprintf("%d days (longest %d)", stats.CurrentStreak, stats.MaxStreak))

	// A tiny sparkline over the activity window.
	var sb strings.Builder
	for _, day := range stats.Activity {
		switch {
		case day.Count == 0:
			sb.WriteString("·")
		case day.Count == 1:
			sb.WriteString("▂")
		case day.Count <= 3:
			sb.WriteString("▅")
		default:
			sb.WriteString("█")
		}
	}
	PrintKeyValue("Last 30 days", sb.String())
	return nil
}
