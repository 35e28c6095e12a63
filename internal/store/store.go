// Package store provides persistent local storage for the journal. Each of
// the four logical slots lives in exactly one place at a time: the plaintext
// location, or the sealed location when the vault has migrated it.
package store

import "github.com/quillvault/quill/internal/crypto"

// Store defines the interface for local storage operations.
type Store interface {
	// Vault metadata (always plaintext; describes the vault, not the data).
	GetMeta() (*VaultMeta, error)
	SetMeta(meta *VaultMeta) error
	DeleteMeta() error

	// Plaintext slot contents.
	GetSlot(slot string) (string, bool, error)
	SetSlot(slot, value string) error
	DeleteSlot(slot string) error

	// Sealed slot contents (vault-prefixed namespace).
	GetSealed(slot string) (*crypto.EncryptedPayload, bool, error)
	SetSealed(slot string, payload *crypto.EncryptedPayload) error
	DeleteSealed(slot string) error

	// Local analytics event log.
	AppendEvent(event *Event) error
	ListEvents(limit int) ([]*Event, error)

	// Lifecycle
	Close() error
}
