package vault

import "errors"

var (
	// ErrLocked is returned when a write requires an unlocked vault. Callers
	// surface this as a recoverable condition (prompt to unlock), never as a
	// generic failure.
	ErrLocked = errors.New("vault is locked")

	// ErrNotEnabled is returned when an operation requires vault protection
	// to be enabled.
	ErrNotEnabled = errors.New("vault is not enabled")

	// ErrAlreadyEnabled is returned when enabling a vault that already exists.
	ErrAlreadyEnabled = errors.New("vault is already enabled")

	// ErrEmptyPassword is returned when a password is empty.
	ErrEmptyPassword = errors.New("password cannot be empty")
)
