package cmd

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/quillvault/quill/internal/prompts"
)

var (
	writePrompt string
	writeFile   string
)

var writeCmd = &cobra.Command{
	Use:   "write [TEXT]",
	Short: "Write a journal entry",
	Long: `Write a journal entry.

The entry text comes from the argument, --file, or stdin. Use --prompt to
attach one of the guided prompts (see 'quill prompts').

Examples:
  quill write "Today I finally finished the garden fence."
  quill write --file entry.txt
  cat entry.txt | quill write
  quill write --prompt cbt_thought_record "What happened? I missed the..."`,
	Args: cobra.MaximumNArgs(1),
	RunE: runWrite,
}

func init() {
	writeCmd.Flags().StringVar(&writePrompt, "prompt", "", "guided prompt id")
	writeCmd.Flags().StringVar(&writeFile, "file", "", "read entry text from a file")
	rootCmd.AddCommand(writeCmd)
}

// readEntryText resolves entry text from the argument, a file, or stdin.
func readEntryText(args []string) (string, error) {
	if len(args) == 1 {
		return args[0], nil
	}
	if writeFile != "" {
		data, err := os.ReadFile(writeFile)
		if err != nil {
			return "", fmt.Errorf("failed to read %s: %w", writeFile, err)
		}
		return string(data), nil
	}
	data, err := io.ReadAll(os.Stdin)
	if err != nil {
		return "", fmt.Errorf("failed to read stdin: %w", err)
	}
	return string(data), nil
}

func runWrite(_ *cobra.Command, args []string) error {
	text, err := readEntryText(args)
	if err != nil {
		return err
	}
	if strings.TrimSpace(text) == "" {
		return fmt.Errorf("entry text is empty")
	}

	if writePrompt != "" && !prompts.Valid(writePrompt) {
		return fmt.Errorf("unknown prompt %q, see 'quill prompts'", writePrompt)
	}

	a, err := openApp()
	if err != nil {
		return err
	}
	defer a.Close()

	if err := a.unlock(); err != nil {
		return err
	}

	c := a.newController()
	defer c.Close()
	if err := c.Restore(); err != nil {
		return fmt.Errorf("failed to restore session: %w", err)
	}

	c.NewEntry()
	if writePrompt != "" {
		c.SelectPrompt(prompts.ID(writePrompt))
	}
	c.SetEntryText(text)

	entry, err := c.SaveEntry(context.Background())
	if err != nil {
		return fmt.Errorf("failed to save entry: %w", err)
	}

	// The text now lives in history; do not leave it behind as a draft.
	c.SetEntryText("")

	Success("Saved entry %s (%d words).", entry.ID, entry.WordCount)
	if entry.WordCount >= a.cfg.Journal.MinWordCount {
		Info("Run 'quill analyze --entry %s' for insights.", entry.ID)
	}
	return nil
}
