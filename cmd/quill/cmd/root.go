// Package cmd provides the CLI commands for quill.
package cmd

import (
	"github.com/spf13/cobra"

	"github.com/quillvault/quill/internal/logging"
)

var (
	dataDir    string
	localeFlag string
	jsonOutput bool
	verbose    bool
)

// rootCmd represents the base command.
var rootCmd = &cobra.Command{
	Use:   "quill",
	Short: "Quill - private journaling with on-device insights",
	Long: `Quill is a journaling tool that keeps everything on your machine.

Entries, drafts, and AI insights live in a local database. You can put the
whole journal behind a password, and analysis runs against a local model
runtime so your writing never leaves the device.

Get started:
  quill write              Write a new journal entry
  quill analyze            Analyze your current draft
  quill history            List saved entries
  quill protect            Encrypt your journal with a password

Examples:
  quill write "Today I finally finished the garden fence."
  quill write --prompt gratitude_growth
  quill export --format markdown --out journal.md
  quill import backup.json`,
	SilenceUsage: true,
	PersistentPreRun: func(_ *cobra.Command, _ []string) {
		// Keep structured logs out of normal CLI output.
		if verbose {
			logging.Setup("debug")
		} else {
			logging.Setup("error")
		}
	},
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().StringVar(&dataDir, "data-dir", "", "data directory (default ~/.quill)")
	rootCmd.PersistentFlags().StringVar(&localeFlag, "locale", "", "interface language: en or zh (default en)")
	rootCmd.PersistentFlags().BoolVar(&jsonOutput, "json", false, "output in JSON format")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable verbose output")
}
