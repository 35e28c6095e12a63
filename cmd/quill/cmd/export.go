package cmd

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/quillvault/quill/internal/journal"
)

var (
	exportFormat string
	exportOut    string
)

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export your journal",
	Long: `Export your journal as JSON or Markdown.

The JSON export round-trips through 'quill import' with insights intact.
The Markdown export is meant for reading; importing it recovers the entry
text but not the insights.

Examples:
  quill export > journal.json
  quill export --format markdown --out journal.md`,
	RunE: runExport,
}

func init() {
	exportCmd.Flags().StringVar(&exportFormat, "format", "json", "export format: json or markdown")
	exportCmd.Flags().StringVar(&exportOut, "out", "", "write to a file instead of stdout")
	rootCmd.AddCommand(exportCmd)
}

func runExport(_ *cobra.Command, _ []string) error {
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

	var data []byte
	switch exportFormat {
	case "json":
		data, err = journal.ExportJSON(history)
		if err != nil {
			return fmt.Errorf("failed to export: %w", err)
		}
	case "markdown", "md":
		data = []byte(journal.ExportMarkdown(history, time.Now()))
	default:
		return fmt.Errorf("unsupported format %q (supported: json, markdown)", exportFormat)
	}

	if exportOut == "" {
		_, err = os.Stdout.Write(data)
		return err
	}

	if err := os.WriteFile(exportOut, data, 0o600); err != nil {
		return fmt.Errorf("failed to write %s: %w", exportOut, err)
	}
	Success("Exported %d entries to %s.", len(history), exportOut)
	return nil
}
