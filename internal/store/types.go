package store

import (
	"time"

	"github.com/quillvault/quill/internal/crypto"
)

// VaultMeta describes the vault configuration. It is created on enable,
// replaced wholesale on password change (new salt and verifier, same
// EnabledAt), and deleted on disable.
type VaultMeta struct {
	Version    int                     `json:"version"`
	EnabledAt  time.Time               `json:"enabled_at"`
	Salt       []byte                  `json:"salt"`
	Iterations int                     `json:"iterations"`
	Verifier   crypto.EncryptedPayload `json:"verifier"`
	VaultID    string                  `json:"vault_id"`
}

// Event is one locally persisted analytics event. Props never contain
// journal text; the tracker filters sensitive keys before events get here.
type Event struct {
	ID        string         `json:"id"`
	Name      string         `json:"name"`
	Props     map[string]any `json:"props,omitempty"`
	Timestamp time.Time      `json:"timestamp"`
}
