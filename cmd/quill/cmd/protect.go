package cmd

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/quillvault/quill/internal/vault"
)

var protectCmd = &cobra.Command{
	Use:   "protect",
	Short: "Encrypt your journal with a password",
	Long: `Encrypt your journal with a password.

All existing entries, drafts, bookmarks, and reading progress are moved into
the encrypted vault. The password is never stored; losing it means losing
access to your journal.

Examples:
  quill protect`,
	RunE: runProtect,
}

func init() {
	rootCmd.AddCommand(protectCmd)
}

func runProtect(_ *cobra.Command, _ []string) error {
	a, err := openApp()
	if err != nil {
		return err
	}
	defer a.Close()

	password, err := promptPasswordConfirm()
	if err != nil {
		return err
	}

	if err := a.vault.Enable(password); err != nil {
		if errors.Is(err, vault.ErrAlreadyEnabled) {
			return fmt.Errorf("vault is already enabled, use 'quill rotate' to change the password")
		}
		return fmt.Errorf("failed to enable vault: %w", err)
	}

	Success("Vault enabled. Your journal is now encrypted at rest.")
	Info("There is no recovery: if you forget the password, the data is gone.")
	return nil
}
