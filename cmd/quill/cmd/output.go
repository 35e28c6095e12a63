package cmd

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"github.com/fatih/color"
)

var (
	green  = color.New(color.FgGreen)
	yellow = color.New(color.FgYellow)
	cyan   = color.New(color.FgCyan)
	bold   = color.New(color.Bold)
	faint  = color.New(color.Faint)
)

// Success reports a completed action.
func Success(format string, a ...any) {
	green.Fprintf(os.Stdout, "✓ "+format+"\n", a...)
}

// Warning flags something worth attention without failing the command.
func Warning(format string, a ...any) {
	yellow.Fprintf(os.Stdout, "⚠ "+format+"\n", a...)
}

// Info prints a neutral hint or status line.
func Info(format string, a ...any) {
	cyan.Fprintf(os.Stdout, "ℹ "+format+"\n", a...)
}

// Bold formats emphasized text.
func Bold(format string, a ...any) string {
	return bold.Sprintf(format, a...)
}

// Dim formats de-emphasized text.
func Dim(format string, a ...any) string {
	return faint.Sprintf(format, a...)
}

// PrintKeyValue prints a "Key: value" line with the key emphasized.
func PrintKeyValue(key, value string) {
	fmt.Printf("%s: %s\n", bold.Sprint(key), value)
}

// PromptConfirm asks before a destructive action. Anything but an explicit
// yes declines, including a read error on a closed stdin.
func PromptConfirm(question string) bool {
	fmt.Printf("%s [y/N]: ", question)

	line, err := bufio.NewReader(os.Stdin).ReadString('\n')
	if err != nil {
		return false
	}
	switch strings.ToLower(strings.TrimSpace(line)) {
	case "y", "yes":
		return true
	default:
		return false
	}
}
