package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

var unprotectCmd = &cobra.Command{
	Use:   "unprotect",
	Short: "Remove vault encryption from your journal",
	Long: `Remove vault encryption from your journal.

All protected data is decrypted back into plain local storage. Requires the
current vault password.`,
	RunE: runUnprotect,
}

func init() {
	rootCmd.AddCommand(unprotectCmd)
}

func runUnprotect(_ *cobra.Command, _ []string) error {
	a, err := openApp()
	if err != nil {
		return err
	}
	defer a.Close()

	if !a.vault.Enabled() {
		return fmt.Errorf("vault is not enabled")
	}

	if err := a.unlock(); err != nil {
		return err
	}

	if !PromptConfirm("Decrypt all journal data and disable the vault?") {
		Info("Cancelled.")
		return nil
	}

	if err := a.vault.Disable(); err != nil {
		return fmt.Errorf("failed to disable vault: %w", err)
	}

	Success("Vault disabled. Journal data is stored unencrypted again.")
	return nil
}
