// Package crypto provides the cryptographic primitives for the Quill vault.
// It implements AES-256-GCM for envelope encryption and PBKDF2-HMAC-SHA256
// for password-based key derivation.
package crypto

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"crypto/sha256"
	"crypto/subtle"
	"errors"
	"fmt"

	"golang.org/x/crypto/pbkdf2"
)

const (
	// KeySize is the size of AES-256 keys in bytes.
	KeySize = 32

	// NonceSize is the size of GCM nonces in bytes.
	NonceSize = 12

	// SaltSize is the size of salts for key derivation in bytes.
	SaltSize = 16

	// DefaultIterations is the PBKDF2 work factor for new vaults. The value
	// is stored in the vault metadata so it can be tuned later without
	// breaking existing vaults.
	DefaultIterations = 210_000
)

var (
	// ErrInvalidKeySize is returned when a key has an incorrect size.
	ErrInvalidKeySize = errors.New("key must be 32 bytes")

	// ErrInvalidSaltSize is returned when a salt has an incorrect size.
	ErrInvalidSaltSize = errors.New("salt must be 16 bytes")

	// ErrInvalidIterations is returned when the iteration count is not positive.
	ErrInvalidIterations = errors.New("iteration count must be positive")

	// ErrInvalidPayload is returned when an encrypted payload is malformed.
	ErrInvalidPayload = errors.New("encrypted payload is malformed")

	// ErrDecryptionFailed is returned when decryption fails (authentication error).
	ErrDecryptionFailed = errors.New("decryption failed: authentication error")
)

// EncryptedPayload is one sealed value: a fresh random IV plus the
// authenticated ciphertext. Both fields are base64-encoded in JSON.
type EncryptedPayload struct {
	IV []byte `json:"iv"`
	CT []byte `json:"ct"`
}

// Encrypt seals plaintext with AES-256-GCM. A fresh random IV is generated
// on every call; reusing an IV under the same key would break confidentiality.
func Encrypt(key, plaintext []byte) (*EncryptedPayload, error) {
	if len(key) != KeySize {
		return nil, ErrInvalidKeySize
	}

	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, fmt.Errorf("create cipher: %w", err)
	}

	gcm, err := cipher.NewGCM(block)
	if err != nil {
		return nil, fmt.Errorf("create GCM: %w", err)
	}

	iv := make([]byte, NonceSize)
	if _, err := rand.Read(iv); err != nil {
		return nil, fmt.Errorf("generate nonce: %w", err)
	}

	return &EncryptedPayload{
		IV: iv,
		CT: gcm.Seal(nil, iv, plaintext, nil),
	}, nil
}

// Decrypt opens a payload produced by Encrypt. Tampering with either the IV
// or the ciphertext yields ErrDecryptionFailed.
func Decrypt(key []byte, payload *EncryptedPayload) ([]byte, error) {
	if len(key) != KeySize {
		return nil, ErrInvalidKeySize
	}
	if payload == nil || len(payload.IV) != NonceSize || len(payload.CT) == 0 {
		return nil, ErrInvalidPayload
	}

	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, fmt.Errorf("create cipher: %w", err)
	}

	gcm, err := cipher.NewGCM(block)
	if err != nil {
		return nil, fmt.Errorf("create GCM: %w", err)
	}

	plaintext, err := gcm.Open(nil, payload.IV, payload.CT, nil)
	if err != nil {
		return nil, ErrDecryptionFailed
	}

	return plaintext, nil
}

// EncryptString seals a string value.
func EncryptString(key []byte, plaintext string) (*EncryptedPayload, error) {
	return Encrypt(key, []byte(plaintext))
}

// DecryptString opens a payload and returns the plaintext string.
func DecryptString(key []byte, payload *EncryptedPayload) (string, error) {
	plaintext, err := Decrypt(key, payload)
	if err != nil {
		return "", err
	}
	return string(plaintext), nil
}

// GenerateSalt generates a cryptographically secure random 16-byte salt.
func GenerateSalt() ([]byte, error) {
	salt := make([]byte, SaltSize)
	if _, err := rand.Read(salt); err != nil {
		return nil, fmt.Errorf("generate salt: %w", err)
	}
	return salt, nil
}

// DeriveKey derives a 32-byte key from a password using PBKDF2-HMAC-SHA256.
// The iteration count is a stored parameter, not a constant, so old vaults
// keep unlocking after the default is raised.
func DeriveKey(password, salt []byte, iterations int) ([]byte, error) {
	if len(salt) != SaltSize {
		return nil, ErrInvalidSaltSize
	}
	if iterations <= 0 {
		return nil, ErrInvalidIterations
	}
	return pbkdf2.Key(password, salt, iterations, KeySize, sha256.New), nil
}

// ConstantTimeEqual compares two byte slices in constant time.
func ConstantTimeEqual(a, b []byte) bool {
	return subtle.ConstantTimeCompare(a, b) == 1
}

// ZeroBytes securely zeros a byte slice. Use this to clear key material
// from memory when done.
func ZeroBytes(b []byte) {
	for i := range b {
		b[i] = 0
	}
}
