package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

var deleteForce bool

var deleteCmd = &cobra.Command{
	Use:   "delete ID",
	Short: "Delete a journal entry",
	Args:  cobra.ExactArgs(1),
	RunE:  runDelete,
}

func init() {
	deleteCmd.Flags().BoolVarP(&deleteForce, "force", "f", false, "skip confirmation")
	rootCmd.AddCommand(deleteCmd)
}

func runDelete(_ *cobra.Command, args []string) error {
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
	found := false
	for _, entry := range history {
		if entry.ID == args[0] {
			found = true
			break
		}
	}
	if !found {
		return fmt.Errorf("entry %s not found", args[0])
	}

	if !deleteForce && !PromptConfirm(fmt.Sprintf("Delete entry %s? This cannot be undone.", args[0])) {
		Info("Cancelled.")
		return nil
	}

	if _, err := a.journal.DeleteEntry(args[0]); err != nil {
		return fmt.Errorf("failed to delete entry: %w", err)
	}

	Success("Deleted entry %s.", args[0])
	return nil
}
