package store

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	bolt "go.etcd.io/bbolt"

	"github.com/quillvault/quill/internal/crypto"
)

// Bucket names used in the bbolt database.
var (
	bucketMeta       = []byte("_meta")
	bucketSlots      = []byte("slots")
	bucketVaultSlots = []byte("vault_slots")
	bucketEvents     = []byte("events")
)

// ErrNotFound is returned by store operations when a record does not exist.
var ErrNotFound = errors.New("not found")

// BoltStore implements Store using bbolt.
type BoltStore struct {
	db *bolt.DB
}

// NewBoltStore opens (or creates) a bbolt database at the given path and
// ensures all required buckets exist. The file is created with 0600 permissions.
func NewBoltStore(path string) (*BoltStore, error) {
	db, err := bolt.Open(path, 0o600, &bolt.Options{Timeout: 1 * time.Second})
	if err != nil {
		return nil, fmt.Errorf("open bolt db: %w", err)
	}

	if err = db.Update(func(tx *bolt.Tx) error {
		for _, b := range [][]byte{bucketMeta, bucketSlots, bucketVaultSlots, bucketEvents} {
			if _, bErr := tx.CreateBucketIfNotExists(b); bErr != nil {
				return fmt.Errorf("create bucket %s: %w", b, bErr)
			}
		}
		return nil
	}); err != nil {
		db.Close()
		return nil, fmt.Errorf("init buckets: %w", err)
	}

	return &BoltStore{db: db}, nil
}

// Close closes the underlying bbolt database.
func (s *BoltStore) Close() error {
	return s.db.Close()
}

// ---------------------------------------------------------------------------
// Vault metadata
// ---------------------------------------------------------------------------

const metaKey = "vault_meta"

// GetMeta returns the vault metadata, or ErrNotFound when the vault is disabled.
func (s *BoltStore) GetMeta() (*VaultMeta, error) {
	var meta VaultMeta
	err := s.db.View(func(tx *bolt.Tx) error {
		v := tx.Bucket(bucketMeta).Get([]byte(metaKey))
		if v == nil {
			return ErrNotFound
		}
		return json.Unmarshal(v, &meta)
	})
	if err != nil {
		return nil, err
	}
	return &meta, nil
}

// SetMeta stores the vault metadata.
func (s *BoltStore) SetMeta(meta *VaultMeta) error {
	return s.db.Update(func(tx *bolt.Tx) error {
		data, err := json.Marshal(meta)
		if err != nil {
			return fmt.Errorf("marshal meta: %w", err)
		}
		return tx.Bucket(bucketMeta).Put([]byte(metaKey), data)
	})
}

// DeleteMeta removes the vault metadata. Deleting absent metadata is a no-op.
func (s *BoltStore) DeleteMeta() error {
	return s.db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket(bucketMeta).Delete([]byte(metaKey))
	})
}

// ---------------------------------------------------------------------------
// Plaintext slots
// ---------------------------------------------------------------------------

// GetSlot returns the plaintext content of a slot. The second return value
// reports whether the slot had any content.
func (s *BoltStore) GetSlot(slot string) (string, bool, error) {
	var value string
	var found bool
	err := s.db.View(func(tx *bolt.Tx) error {
		v := tx.Bucket(bucketSlots).Get([]byte(slot))
		if v == nil {
			return nil
		}
		value = string(v)
		found = true
		return nil
	})
	return value, found, err
}

// SetSlot stores plaintext slot content, replacing any previous value.
func (s *BoltStore) SetSlot(slot, value string) error {
	return s.db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket(bucketSlots).Put([]byte(slot), []byte(value))
	})
}

// DeleteSlot removes plaintext slot content. Absent slots are a no-op.
func (s *BoltStore) DeleteSlot(slot string) error {
	return s.db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket(bucketSlots).Delete([]byte(slot))
	})
}

// ---------------------------------------------------------------------------
// Sealed slots
// ---------------------------------------------------------------------------

// GetSealed returns the encrypted payload stored for a slot.
func (s *BoltStore) GetSealed(slot string) (*crypto.EncryptedPayload, bool, error) {
	var payload crypto.EncryptedPayload
	var found bool
	err := s.db.View(func(tx *bolt.Tx) error {
		v := tx.Bucket(bucketVaultSlots).Get([]byte(slot))
		if v == nil {
			return nil
		}
		if err := json.Unmarshal(v, &payload); err != nil {
			return fmt.Errorf("unmarshal sealed slot %s: %w", slot, err)
		}
		found = true
		return nil
	})
	if err != nil || !found {
		return nil, found, err
	}
	return &payload, true, nil
}

// SetSealed stores an encrypted payload for a slot.
func (s *BoltStore) SetSealed(slot string, payload *crypto.EncryptedPayload) error {
	return s.db.Update(func(tx *bolt.Tx) error {
		data, err := json.Marshal(payload)
		if err != nil {
			return fmt.Errorf("marshal sealed slot %s: %w", slot, err)
		}
		return tx.Bucket(bucketVaultSlots).Put([]byte(slot), data)
	})
}

// DeleteSealed removes the encrypted payload for a slot.
func (s *BoltStore) DeleteSealed(slot string) error {
	return s.db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket(bucketVaultSlots).Delete([]byte(slot))
	})
}

// ---------------------------------------------------------------------------
// Analytics events
// ---------------------------------------------------------------------------

// AppendEvent appends an analytics event. Entries are keyed by timestamp +
// UUID for ordering and uniqueness.
func (s *BoltStore) AppendEvent(event *Event) error {
	return s.db.Update(func(tx *bolt.Tx) error {
		key := fmt.Sprintf("%s_%s", event.Timestamp.UTC().Format(time.RFC3339Nano), uuid.New().String())
		data, err := json.Marshal(event)
		if err != nil {
			return fmt.Errorf("marshal event: %w", err)
		}
		return tx.Bucket(bucketEvents).Put([]byte(key), data)
	})
}

// ListEvents returns the most recent events, newest first, up to limit.
// A non-positive limit returns everything.
func (s *BoltStore) ListEvents(limit int) ([]*Event, error) {
	var events []*Event
	err := s.db.View(func(tx *bolt.Tx) error {
		c := tx.Bucket(bucketEvents).Cursor()
		for k, v := c.Last(); k != nil; k, v = c.Prev() {
			if limit > 0 && len(events) >= limit {
				break
			}
			var event Event
			if err := json.Unmarshal(v, &event); err != nil {
				return err
			}
			events = append(events, &event)
		}
		return nil
	})
	return events, err
}
