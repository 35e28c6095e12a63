package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

var lockCmd = &cobra.Command{
	Use:   "lock",
	Short: "Confirm the journal is sealed at rest",
	Long: `Confirm the journal is sealed at rest.

Protected data is only decrypted in memory while a command runs with the
password, so an enabled vault is always locked between commands. This
command reports that state.`,
	RunE: runLock,
}

func init() {
	rootCmd.AddCommand(lockCmd)
}

func runLock(_ *cobra.Command, _ []string) error {
	a, err := openApp()
	if err != nil {
		return err
	}
	defer a.Close()

	if !a.vault.Enabled() {
		return fmt.Errorf("vault is not enabled, run 'quill protect' first")
	}

	a.vault.Lock()
	Success("Vault is locked. Journal data stays encrypted until the next unlock.")
	return nil
}
