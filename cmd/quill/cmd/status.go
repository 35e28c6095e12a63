package cmd

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/quillvault/quill/internal/vault"
)

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show journal status",
	Long:  "Show journal status including data location, vault state, and entry counts.",
	RunE:  runStatus,
}

func init() {
	rootCmd.AddCommand(statusCmd)
}

func runStatus(_ *cobra.Command, _ []string) error {
	a, err := openApp()
	if err != nil {
		return err
	}
	defer a.Close()

	state := a.vault.State()

	entryCount := -1
	hasDraft := false
	if state == vault.StateDisabled {
		if history, err := a.journal.LoadHistory(); err == nil {
			entryCount = len(history)
		}
		if draft, err := a.journal.LoadDraft(); err == nil && draft != nil {
			hasDraft = true
		}
	}

	if jsonOutput {
		out := map[string]any{
			"data_dir":      a.cfg.Data.Dir,
			"vault_enabled": state != vault.StateDisabled,
			"vault_state":   state.String(),
			"history_limit": a.journal.HistoryLimit(),
		}
		if entryCount >= 0 {
			out["entries"] = entryCount
			out["has_draft"] = hasDraft
		}
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(out)
	}

	PrintKeyValue("Data", a.cfg.Data.Dir)
	PrintKeyValue("Vault", state.String())
	PrintKeyValue("History limit", fmt.Sprintf("%d entries", a.journal.HistoryLimit()))
	if entryCount >= 0 {
		PrintKeyValue("Entries", fmt.Sprintf("%d", entryCount))
		if hasDraft {
			PrintKeyValue("Draft", "in progress")
		}
	} else {
		PrintKeyValue("Entries", Dim("unavailable while locked"))
	}

	return nil
}
