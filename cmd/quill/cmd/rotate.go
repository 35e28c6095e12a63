package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

var rotateCmd = &cobra.Command{
	Use:   "rotate",
	Short: "Change the vault password",
	Long: `Change the vault password.

All protected data is re-encrypted under a key derived from the new
password. Requires the current password.`,
	RunE: runRotate,
}

func init() {
	rootCmd.AddCommand(rotateCmd)
}

func runRotate(_ *cobra.Command, _ []string) error {
	a, err := openApp()
	if err != nil {
		return err
	}
	defer a.Close()

	if !a.vault.Enabled() {
		return fmt.Errorf("vault is not enabled, run 'quill protect' first")
	}

	current, err := promptPassword("Enter current vault password: ")
	if err != nil {
		return fmt.Errorf("failed to read password: %w", err)
	}
	ok, err := a.vault.Unlock(current)
	if err != nil {
		return err
	}
	if !ok {
		return fmt.Errorf("wrong password")
	}

	next, err := promptPasswordConfirm()
	if err != nil {
		return err
	}

	if err := a.vault.ChangePassword(next); err != nil {
		return fmt.Errorf("failed to change password: %w", err)
	}

	Success("Password changed. All journal data was re-encrypted.")
	return nil
}
