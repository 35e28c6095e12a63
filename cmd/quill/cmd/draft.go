package cmd

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var draftClear bool

var draftCmd = &cobra.Command{
	Use:   "draft",
	Short: "Show or discard the draft in progress",
	RunE:  runDraft,
}

func init() {
	draftCmd.Flags().BoolVar(&draftClear, "clear", false, "discard the current draft")
	rootCmd.AddCommand(draftCmd)
}

func runDraft(_ *cobra.Command, _ []string) error {
	a, err := openApp()
	if err != nil {
		return err
	}
	defer a.Close()

	if err := a.unlock(); err != nil {
		return err
	}

	if draftClear {
		if err := a.journal.SaveDraft(nil); err != nil {
			return fmt.Errorf("failed to clear draft: %w", err)
		}
		Success("Draft discarded.")
		return nil
	}

	draft, err := a.journal.LoadDraft()
	if err != nil {
		return fmt.Errorf("failed to load draft: %w", err)
	}
	if draft == nil {
		Info("No draft in progress.")
		return nil
	}

	if jsonOutput {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(draft)
	}

	PrintKeyValue("Prompt", string(draft.PromptID))
	PrintKeyValue("Updated", draft.UpdatedAt.Local().Format("2006-01-02 15:04"))
	fmt.Println()
	fmt.Println(draft.Entry)
	return nil
}
