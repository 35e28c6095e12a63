package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/quillvault/quill/internal/prompts"
)

var promptsCmd = &cobra.Command{
	Use:   "prompts",
	Short: "List the guided writing prompts",
	RunE:  runPrompts,
}

func init() {
	rootCmd.AddCommand(promptsCmd)
}

func runPrompts(_ *cobra.Command, _ []string) error {
	locale := localeFlag
	if locale == "" {
		locale = "en"
	}

	for i, tmpl := range prompts.Templates(locale) {
		if i > 0 {
			fmt.Println()
		}
		fmt.Printf("%s  %s\n", Bold("%s", tmpl.Label), Dim("(%s)", string(tmpl.ID)))
		fmt.Println(tmpl.Description)
		for _, q := range tmpl.Questions {
			fmt.Printf("  • %s\n", q)
		}
	}
	return nil
}
