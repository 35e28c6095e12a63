package cmd

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"

	"github.com/quillvault/quill/internal/journal"
)

var importCmd = &cobra.Command{
	Use:   "import FILE",
	Short: "Import entries from a JSON or Markdown export",
	Long: `Import entries from a JSON or Markdown export.

Imported entries are merged with the existing history, newest first, and
the history limit is applied to the merged result. Records that cannot be
parsed are skipped.

Examples:
  quill import journal.json
  quill import journal.md`,
	Args: cobra.ExactArgs(1),
	RunE: runImport,
}

func init() {
	rootCmd.AddCommand(importCmd)
}

func runImport(_ *cobra.Command, args []string) error {
	data, err := os.ReadFile(args[0])
	if err != nil {
		return fmt.Errorf("failed to read %s: %w", args[0], err)
	}

	entries, err := journal.ParseImport(data, filepath.Base(args[0]), time.Now())
	if errors.Is(err, journal.ErrNothingImportable) {
		return fmt.Errorf("no importable entries found in %s", args[0])
	}
	if err != nil {
		return fmt.Errorf("failed to parse %s: %w", args[0], err)
	}

	a, err := openApp()
	if err != nil {
		return err
	}
	defer a.Close()

	if err := a.unlock(); err != nil {
		return err
	}

	merged, err := a.journal.MergeHistory(entries)
	if err != nil {
		return fmt.Errorf("failed to merge history: %w", err)
	}

	Success("Imported %d entries (%d total).", len(entries), len(merged))
	return nil
}
