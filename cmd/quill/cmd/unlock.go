package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

var unlockCmd = &cobra.Command{
	Use:   "unlock",
	Short: "Check that your vault password works",
	Long: `Check that your vault password works.

The vault key only lives in memory while a command runs, so every command
that reads protected data asks for the password (or QUILL_PASSWORD). This
command simply verifies the password against the vault.`,
	RunE: runUnlock,
}

func init() {
	rootCmd.AddCommand(unlockCmd)
}

func runUnlock(_ *cobra.Command, _ []string) error {
	a, err := openApp()
	if err != nil {
		return err
	}
	defer a.Close()

	if !a.vault.Enabled() {
		return fmt.Errorf("vault is not enabled, run 'quill protect' first")
	}

	if err := a.unlock(); err != nil {
		return err
	}

	Success("Password accepted.")
	return nil
}
