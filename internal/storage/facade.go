// Package storage is the typed access layer over the vault-mediated slots.
// Every persisted value is whole-slot JSON; callers never touch raw slot
// strings or care whether the bytes at rest are sealed or plaintext.
package storage

import (
	"encoding/json"
	"fmt"

	"github.com/quillvault/quill/internal/vault"
)

// Storage marshals typed values into vault slots. A locked vault makes reads
// report absent and writes fail with vault.ErrLocked; the caller decides how
// to surface that.
type Storage struct {
	vault *vault.Vault
}

func New(v *vault.Vault) *Storage {
	return &Storage{vault: v}
}

// Vault exposes the underlying vault for state queries and subscriptions.
func (s *Storage) Vault() *vault.Vault {
	return s.vault
}

// Get unmarshals the slot's JSON into dst. It returns false when the slot is
// empty or unreadable because the vault is locked.
func (s *Storage) Get(slot vault.Slot, dst any) (bool, error) {
	raw, found, err := s.vault.GetRaw(slot)
	if err != nil {
		return false, err
	}
	if !found {
		return false, nil
	}
	if err := json.Unmarshal([]byte(raw), dst); err != nil {
		return false, fmt.Errorf("decode slot %s: %w", slot, err)
	}
	return true, nil
}

// Set marshals value as JSON and writes it to the slot.
func (s *Storage) Set(slot vault.Slot, value any) error {
	raw, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("encode slot %s: %w", slot, err)
	}
	return s.vault.SetRaw(slot, string(raw))
}

// Clear removes the slot's content.
func (s *Storage) Clear(slot vault.Slot) error {
	return s.vault.ClearRaw(slot)
}
