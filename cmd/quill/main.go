// Package main is the entry point for the Quill CLI.
package main

import (
	"os"

	"github.com/quillvault/quill/cmd/quill/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
