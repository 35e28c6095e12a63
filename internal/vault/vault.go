// Package vault provides the optional password-derived encryption layer over
// the four local storage slots. It owns key derivation, envelope encryption,
// the enable/unlock/lock/disable/rotate lifecycle, and migration of slot
// contents between the plaintext and sealed locations.
package vault

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/quillvault/quill/internal/crypto"
	"github.com/quillvault/quill/internal/metrics"
	"github.com/quillvault/quill/internal/store"
)

const verifyText = "quill-vault-verifier-v1"

// Slot identifies one of the four persisted local-data domains.
type Slot string

const (
	SlotDraft           Slot = "draft"
	SlotHistory         Slot = "history"
	SlotBookmarks       Slot = "bookmarks"
	SlotReadingProgress Slot = "reading_progress"
)

// Slots lists every slot the vault migrates on enable/disable/rotate.
var Slots = []Slot{SlotDraft, SlotHistory, SlotBookmarks, SlotReadingProgress}

// State is the vault lifecycle state.
type State int

const (
	StateDisabled State = iota
	StateLocked
	StateUnlocked
)

func (s State) String() string {
	switch s {
	case StateLocked:
		return "locked"
	case StateUnlocked:
		return "unlocked"
	default:
		return "disabled"
	}
}

// Vault protects the storage slots behind a user password. The derived key
// lives only in memory: it is set by Enable, Unlock and ChangePassword,
// cleared by Lock and Disable, and never returned to callers.
type Vault struct {
	store      store.Store
	iterations int

	mu  sync.RWMutex
	key []byte // nil when locked or disabled

	subMu     sync.Mutex
	subs      map[int]func(State)
	nextSubID int
}

// New wraps a store with the vault layer. The iteration count applies to
// newly enabled vaults; existing vaults keep the count stored in their
// metadata.
func New(s store.Store) *Vault {
	return &Vault{
		store:      s,
		iterations: crypto.DefaultIterations,
		subs:       make(map[int]func(State)),
	}
}

// OnStateChange registers a listener invoked after every vault state
// transition. The returned function unsubscribes it.
func (v *Vault) OnStateChange(fn func(State)) func() {
	v.subMu.Lock()
	defer v.subMu.Unlock()
	id := v.nextSubID
	v.nextSubID++
	v.subs[id] = fn
	return func() {
		v.subMu.Lock()
		defer v.subMu.Unlock()
		delete(v.subs, id)
	}
}

func (v *Vault) notify(s State) {
	metrics.VaultStateChanges.WithLabelValues(s.String()).Inc()
	v.subMu.Lock()
	listeners := make([]func(State), 0, len(v.subs))
	for _, fn := range v.subs {
		listeners = append(listeners, fn)
	}
	v.subMu.Unlock()
	for _, fn := range listeners {
		fn(s)
	}
}

// Enabled reports whether vault protection is enabled (metadata exists).
func (v *Vault) Enabled() bool {
	_, err := v.store.GetMeta()
	return err == nil
}

// Unlocked reports whether the derived key is currently held in memory.
func (v *Vault) Unlocked() bool {
	v.mu.RLock()
	defer v.mu.RUnlock()
	return v.key != nil
}

// State returns the current lifecycle state.
func (v *Vault) State() State {
	if !v.Enabled() {
		return StateDisabled
	}
	if v.Unlocked() {
		return StateUnlocked
	}
	return StateLocked
}

// Enable turns on vault protection: it derives a key from the password and a
// fresh salt, writes the verifier, migrates every populated slot into the
// sealed location, and keeps the key in memory as the unlocked state.
func (v *Vault) Enable(password string) error {
	if password == "" {
		return ErrEmptyPassword
	}

	v.mu.Lock()
	if _, err := v.store.GetMeta(); err == nil {
		v.mu.Unlock()
		return ErrAlreadyEnabled
	} else if !errors.Is(err, store.ErrNotFound) {
		v.mu.Unlock()
		return fmt.Errorf("get meta: %w", err)
	}

	salt, err := crypto.GenerateSalt()
	if err != nil {
		v.mu.Unlock()
		return err
	}

	key, err := crypto.DeriveKey([]byte(password), salt, v.iterations)
	if err != nil {
		v.mu.Unlock()
		return fmt.Errorf("derive key: %w", err)
	}

	verifier, err := crypto.EncryptString(key, verifyText)
	if err != nil {
		crypto.ZeroBytes(key)
		v.mu.Unlock()
		return fmt.Errorf("create verifier: %w", err)
	}

	meta := &store.VaultMeta{
		Version:    1,
		EnabledAt:  time.Now().UTC(),
		Salt:       salt,
		Iterations: v.iterations,
		Verifier:   *verifier,
		VaultID:    uuid.New().String(),
	}
	if err := v.store.SetMeta(meta); err != nil {
		crypto.ZeroBytes(key)
		v.mu.Unlock()
		return fmt.Errorf("set meta: %w", err)
	}

	if err := v.migrateIn(key); err != nil {
		// Roll back the metadata so the vault does not end up half-enabled.
		_ = v.store.DeleteMeta()
		crypto.ZeroBytes(key)
		v.mu.Unlock()
		return err
	}

	v.key = key
	v.mu.Unlock()

	v.notify(StateUnlocked)
	return nil
}

// migrateIn seals every populated plaintext slot. All plaintexts are read
// and encrypted up front, and a failure while writing rolls the already
// written slots back, so an error never strands a slot sealed-only while
// Enable goes on to delete the metadata holding its salt.
func (v *Vault) migrateIn(key []byte) error {
	type pendingSlot struct {
		slot      Slot
		plaintext string
		payload   *crypto.EncryptedPayload
	}

	var pending []pendingSlot
	for _, slot := range Slots {
		plaintext, found, err := v.store.GetSlot(string(slot))
		if err != nil {
			return fmt.Errorf("read slot %s: %w", slot, err)
		}
		if !found {
			continue
		}

		payload, err := crypto.EncryptString(key, plaintext)
		if err != nil {
			return fmt.Errorf("encrypt slot %s: %w", slot, err)
		}
		metrics.EncryptionOperations.WithLabelValues("encrypt").Inc()
		pending = append(pending, pendingSlot{slot: slot, plaintext: plaintext, payload: payload})
	}

	rollback := func() {
		for _, p := range pending {
			_ = v.store.SetSlot(string(p.slot), p.plaintext)
			_ = v.store.DeleteSealed(string(p.slot))
		}
	}

	for _, p := range pending {
		if err := v.store.SetSealed(string(p.slot), p.payload); err != nil {
			rollback()
			return fmt.Errorf("seal slot %s: %w", p.slot, err)
		}
	}
	for _, p := range pending {
		if err := v.store.DeleteSlot(string(p.slot)); err != nil {
			rollback()
			return fmt.Errorf("remove plaintext slot %s: %w", p.slot, err)
		}
	}
	return nil
}

// Unlock re-derives the key from the stored salt and checks it against the
// verifier. A wrong password is an expected outcome of normal use, so it is
// reported as false, not as an error.
func (v *Vault) Unlock(password string) (bool, error) {
	v.mu.Lock()

	meta, err := v.store.GetMeta()
	if errors.Is(err, store.ErrNotFound) {
		v.mu.Unlock()
		return false, ErrNotEnabled
	}
	if err != nil {
		v.mu.Unlock()
		return false, fmt.Errorf("get meta: %w", err)
	}

	key, err := crypto.DeriveKey([]byte(password), meta.Salt, meta.Iterations)
	if err != nil {
		v.mu.Unlock()
		return false, fmt.Errorf("derive key: %w", err)
	}

	plaintext, err := crypto.DecryptString(key, &meta.Verifier)
	if err != nil || plaintext != verifyText {
		crypto.ZeroBytes(key)
		v.mu.Unlock()
		return false, nil
	}

	if v.key != nil {
		crypto.ZeroBytes(v.key)
	}
	v.key = key
	v.mu.Unlock()

	v.notify(StateUnlocked)
	return true, nil
}

// Lock clears the in-memory key. It is idempotent and has no persisted side
// effects.
func (v *Vault) Lock() {
	v.mu.Lock()
	if v.key != nil {
		crypto.ZeroBytes(v.key)
		v.key = nil
	}
	enabled := true
	if _, err := v.store.GetMeta(); errors.Is(err, store.ErrNotFound) {
		enabled = false
	}
	v.mu.Unlock()

	if enabled {
		v.notify(StateLocked)
	}
}

// Disable removes vault protection: every sealed slot is decrypted back to
// its plaintext location, the metadata is deleted, and the key is cleared.
// Requires the unlocked state.
func (v *Vault) Disable() error {
	v.mu.Lock()

	if _, err := v.store.GetMeta(); errors.Is(err, store.ErrNotFound) {
		v.mu.Unlock()
		return ErrNotEnabled
	}
	if v.key == nil {
		v.mu.Unlock()
		return ErrLocked
	}

	// Decrypt every slot before touching storage. A slot that fails to
	// decrypt aborts the whole operation while the metadata and all sealed
	// blobs are still intact; deleting the metadata would throw away the
	// salt and make the sealed data permanently unrecoverable.
	restored := make(map[Slot]string)
	for _, slot := range Slots {
		payload, found, err := v.store.GetSealed(string(slot))
		if err != nil {
			v.mu.Unlock()
			return fmt.Errorf("read sealed slot %s: %w", slot, err)
		}
		if !found {
			continue
		}

		plaintext, err := crypto.DecryptString(v.key, payload)
		if err != nil {
			v.mu.Unlock()
			return fmt.Errorf("decrypt slot %s: %w", slot, err)
		}
		metrics.EncryptionOperations.WithLabelValues("decrypt").Inc()
		restored[slot] = plaintext
	}

	for _, slot := range Slots {
		plaintext, ok := restored[slot]
		if !ok {
			continue
		}
		if err := v.store.SetSlot(string(slot), plaintext); err != nil {
			v.mu.Unlock()
			return fmt.Errorf("restore slot %s: %w", slot, err)
		}
		if err := v.store.DeleteSealed(string(slot)); err != nil {
			v.mu.Unlock()
			return fmt.Errorf("remove sealed slot %s: %w", slot, err)
		}
	}

	if err := v.store.DeleteMeta(); err != nil {
		v.mu.Unlock()
		return fmt.Errorf("delete meta: %w", err)
	}

	crypto.ZeroBytes(v.key)
	v.key = nil
	v.mu.Unlock()

	v.notify(StateDisabled)
	return nil
}

// ChangePassword re-encrypts every sealed slot under a key derived from the
// new password and a fresh salt, without ever writing plaintext to storage.
// The metadata is replaced wholesale except for the original EnabledAt.
// Requires the unlocked state.
func (v *Vault) ChangePassword(newPassword string) error {
	if newPassword == "" {
		return ErrEmptyPassword
	}

	v.mu.Lock()

	meta, err := v.store.GetMeta()
	if errors.Is(err, store.ErrNotFound) {
		v.mu.Unlock()
		return ErrNotEnabled
	}
	if err != nil {
		v.mu.Unlock()
		return fmt.Errorf("get meta: %w", err)
	}
	if v.key == nil {
		v.mu.Unlock()
		return ErrLocked
	}

	newSalt, err := crypto.GenerateSalt()
	if err != nil {
		v.mu.Unlock()
		return err
	}

	newKey, err := crypto.DeriveKey([]byte(newPassword), newSalt, v.iterations)
	if err != nil {
		v.mu.Unlock()
		return fmt.Errorf("derive new key: %w", err)
	}

	for _, slot := range Slots {
		payload, found, err := v.store.GetSealed(string(slot))
		if err != nil {
			crypto.ZeroBytes(newKey)
			v.mu.Unlock()
			return fmt.Errorf("read sealed slot %s: %w", slot, err)
		}
		if !found {
			continue
		}

		plaintext, err := crypto.Decrypt(v.key, payload)
		if err != nil {
			crypto.ZeroBytes(newKey)
			v.mu.Unlock()
			return fmt.Errorf("decrypt slot %s: %w", slot, err)
		}

		resealed, err := crypto.Encrypt(newKey, plaintext)
		crypto.ZeroBytes(plaintext)
		if err != nil {
			crypto.ZeroBytes(newKey)
			v.mu.Unlock()
			return fmt.Errorf("re-encrypt slot %s: %w", slot, err)
		}
		metrics.EncryptionOperations.WithLabelValues("encrypt").Inc()

		if err := v.store.SetSealed(string(slot), resealed); err != nil {
			crypto.ZeroBytes(newKey)
			v.mu.Unlock()
			return fmt.Errorf("store slot %s: %w", slot, err)
		}
	}

	verifier, err := crypto.EncryptString(newKey, verifyText)
	if err != nil {
		crypto.ZeroBytes(newKey)
		v.mu.Unlock()
		return fmt.Errorf("create verifier: %w", err)
	}

	next := &store.VaultMeta{
		Version:    meta.Version,
		EnabledAt:  meta.EnabledAt,
		Salt:       newSalt,
		Iterations: v.iterations,
		Verifier:   *verifier,
		VaultID:    meta.VaultID,
	}
	if err := v.store.SetMeta(next); err != nil {
		crypto.ZeroBytes(newKey)
		v.mu.Unlock()
		return fmt.Errorf("set meta: %w", err)
	}

	crypto.ZeroBytes(v.key)
	v.key = newKey
	v.mu.Unlock()

	v.notify(StateUnlocked)
	return nil
}

// GetRaw reads a slot's content. When the vault is disabled this is a plain
// pass-through; when enabled and locked the content is unreadable and the
// call reports absent; when unlocked the sealed payload is decrypted.
func (v *Vault) GetRaw(slot Slot) (string, bool, error) {
	v.mu.RLock()
	defer v.mu.RUnlock()

	if _, err := v.store.GetMeta(); errors.Is(err, store.ErrNotFound) {
		return v.store.GetSlot(string(slot))
	} else if err != nil {
		return "", false, fmt.Errorf("get meta: %w", err)
	}

	if v.key == nil {
		return "", false, nil
	}

	payload, found, err := v.store.GetSealed(string(slot))
	if err != nil || !found {
		return "", false, err
	}

	plaintext, err := crypto.DecryptString(v.key, payload)
	if err != nil {
		return "", false, fmt.Errorf("decrypt slot %s: %w", slot, err)
	}
	metrics.EncryptionOperations.WithLabelValues("decrypt").Inc()
	return plaintext, true, nil
}

// SetRaw writes a slot's content. Writes while enabled-and-locked fail with
// ErrLocked so callers can prompt for re-authentication.
func (v *Vault) SetRaw(slot Slot, value string) error {
	v.mu.Lock()
	defer v.mu.Unlock()

	if _, err := v.store.GetMeta(); errors.Is(err, store.ErrNotFound) {
		return v.store.SetSlot(string(slot), value)
	} else if err != nil {
		return fmt.Errorf("get meta: %w", err)
	}

	if v.key == nil {
		return ErrLocked
	}

	payload, err := crypto.EncryptString(v.key, value)
	if err != nil {
		return fmt.Errorf("encrypt slot %s: %w", slot, err)
	}
	metrics.EncryptionOperations.WithLabelValues("encrypt").Inc()
	return v.store.SetSealed(string(slot), payload)
}

// ClearRaw removes a slot's content from whichever location currently holds it.
func (v *Vault) ClearRaw(slot Slot) error {
	v.mu.Lock()
	defer v.mu.Unlock()

	if _, err := v.store.GetMeta(); errors.Is(err, store.ErrNotFound) {
		return v.store.DeleteSlot(string(slot))
	} else if err != nil {
		return fmt.Errorf("get meta: %w", err)
	}

	if v.key == nil {
		return ErrLocked
	}
	return v.store.DeleteSealed(string(slot))
}
