package cmd

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var showCmd = &cobra.Command{
	Use:   "show ID",
	Short: "Show a journal entry with its insights",
	Args:  cobra.ExactArgs(1),
	RunE:  runShow,
}

func init() {
	rootCmd.AddCommand(showCmd)
}

func runShow(_ *cobra.Command, args []string) error {
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

	for _, entry := range history {
		if entry.ID != args[0] {
			continue
		}

		if jsonOutput {
			enc := json.NewEncoder(os.Stdout)
			enc.SetIndent("", "  ")
			return enc.Encode(entry)
		}

		PrintKeyValue("ID", entry.ID)
		PrintKeyValue("Created", entry.CreatedAt.Local().Format("2006-01-02 15:04"))
		PrintKeyValue("Prompt", string(entry.PromptID))
		PrintKeyValue("Words", fmt.Sprintf("%d", entry.WordCount))
		fmt.Println()
		fmt.Println(entry.Entry)

		if entry.Insights != nil {
			printInsights(entry.Insights)
		}
		return nil
	}

	return fmt.Errorf("entry %s not found", args[0])
}
