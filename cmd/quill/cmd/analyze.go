package cmd

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/quillvault/quill/internal/analysis"
	"github.com/quillvault/quill/internal/controller"
	"github.com/quillvault/quill/internal/journal"
	"github.com/quillvault/quill/internal/vault"
)

var analyzeEntryID string

var analyzeCmd = &cobra.Command{
	Use:   "analyze [TEXT]",
	Short: "Analyze an entry for emotion, theme, and a reflection",
	Long: `Analyze an entry for emotion, theme, and a reflection question.

With no arguments the current draft is analyzed. Pass text directly, or use
--entry to re-analyze a saved entry. Analysis runs against the local model
runtime; if the models are unavailable, a simplified keyword analysis is
used instead.

Examples:
  quill analyze
  quill analyze --entry entry_1756600000000
  quill analyze "Work has been heavy this week but I am coping better."`,
	Args: cobra.MaximumNArgs(1),
	RunE: runAnalyze,
}

func init() {
	analyzeCmd.Flags().StringVar(&analyzeEntryID, "entry", "", "id of a saved entry to analyze")
	rootCmd.AddCommand(analyzeCmd)
}

func runAnalyze(_ *cobra.Command, args []string) error {
	a, err := openApp()
	if err != nil {
		return err
	}
	defer a.Close()

	if err := a.unlock(); err != nil {
		return err
	}

	c := a.newController()
	defer c.Close()
	if err := c.Restore(); err != nil {
		return fmt.Errorf("failed to restore session: %w", err)
	}

	switch {
	case analyzeEntryID != "":
		if err := c.LoadEntry(analyzeEntryID); err != nil {
			return err
		}
	case len(args) == 1:
		c.NewEntry()
		c.SetEntryText(args[0])
	default:
		if strings.TrimSpace(c.EntryText()) == "" {
			return fmt.Errorf("nothing to analyze: no draft in progress, pass text or --entry")
		}
	}

	downloading := false
	cb := &analysis.Callbacks{
		OnModelStatus: func(status analysis.ModelStatus) {
			if status == analysis.StatusDownloading && !downloading {
				downloading = true
				Info("Preparing local models...")
			}
		},
		OnProgress: func(percent int) {
			fmt.Fprintf(os.Stderr, "\r  %d%%", percent)
			if percent >= 100 {
				fmt.Fprintln(os.Stderr)
			}
		},
	}

	bundle, err := c.Analyze(context.Background(), cb)
	switch {
	case errors.Is(err, controller.ErrTooFewWords):
		return fmt.Errorf("entry needs at least %d words before analysis (currently %d)",
			a.cfg.Journal.MinWordCount, c.WordCount())
	case errors.Is(err, vault.ErrLocked) && bundle != nil:
		Warning("Insights were generated but could not be saved: the vault locked during analysis.")
	case err != nil:
		return fmt.Errorf("analysis failed: %w", err)
	}

	printInsights(bundle)
	return nil
}

func printInsights(bundle *journal.InsightBundle) {
	if jsonOutput {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		enc.Encode(bundle)
		return
	}

	fmt.Println()
	fmt.Printf("%s %s\n", bundle.Emotion.Emoji, Bold("%s", bundle.Emotion.Tone))
	fmt.Println(bundle.Emotion.Text)
	fmt.Println()
	fmt.Printf("%s %s\n", bundle.Theme.Emoji, Bold("%s", bundle.Theme.Title))
	fmt.Println(bundle.Theme.Text)
	fmt.Println()
	fmt.Printf("%s %s\n", bundle.Reflection.Emoji, Bold("%s", bundle.Reflection.Question))
	fmt.Println(Dim("%s", bundle.Reflection.Technique))
}
