package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

var clearForce bool

var clearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Delete all journal entries",
	Long:  "Delete all journal entries. Consider 'quill export' first.",
	RunE:  runClear,
}

func init() {
	clearCmd.Flags().BoolVarP(&clearForce, "force", "f", false, "skip confirmation")
	rootCmd.AddCommand(clearCmd)
}

func runClear(_ *cobra.Command, _ []string) error {
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
	if len(history) == 0 {
		Info("History is already empty.")
		return nil
	}

	if !clearForce && !PromptConfirm(fmt.Sprintf("Delete all %d journal entries? This cannot be undone.", len(history))) {
		Info("Cancelled.")
		return nil
	}

	if err := a.journal.ClearHistory(); err != nil {
		return fmt.Errorf("failed to clear history: %w", err)
	}

	Success("Deleted %d entries.", len(history))
	return nil
}
