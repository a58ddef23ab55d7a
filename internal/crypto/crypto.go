package crypto

import (
	"context"
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"encoding/base64"
	"errors"
	"fmt"
	"io"

	"mindjournal/internal/storage"
)

// Sealer encrypts persisted snapshots with AES-256-GCM.
type Sealer struct {
	gcm cipher.AEAD
}

// NewSealer creates a Sealer from a base64-encoded key.
// The key must be exactly 32 bytes after decoding.
func NewSealer(base64Key string) (*Sealer, error) {
	if base64Key == "" {
		return nil, errors.New("encryption key is required")
	}
	key, err := base64.StdEncoding.DecodeString(base64Key)
	if err != nil {
		return nil, fmt.Errorf("failed to decode encryption key: %w", err)
	}
	if len(key) != 32 {
		return nil, fmt.Errorf("encryption key must be 32 bytes for AES-256, got %d bytes", len(key))
	}

	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, err
	}
	gcm, err := cipher.NewGCM(block)
	if err != nil {
		return nil, err
	}
	return &Sealer{gcm: gcm}, nil
}

// Seal returns the ciphertext with the nonce prepended.
func (s *Sealer) Seal(plaintext []byte) ([]byte, error) {
	nonce := make([]byte, s.gcm.NonceSize())
	if _, err := io.ReadFull(rand.Reader, nonce); err != nil {
		return nil, err
	}
	return s.gcm.Seal(nonce, nonce, plaintext, nil), nil
}

// Open reverses Seal.
func (s *Sealer) Open(data []byte) ([]byte, error) {
	nonceSize := s.gcm.NonceSize()
	if len(data) < nonceSize {
		return nil, errors.New("ciphertext too short")
	}
	nonce, cipherBytes := data[:nonceSize], data[nonceSize:]
	return s.gcm.Open(nil, nonce, cipherBytes, nil)
}

// SealedSlots wraps a storage backend so every slot is encrypted at rest.
type SealedSlots struct {
	next   storage.Slots
	sealer *Sealer
}

func NewSealedSlots(next storage.Slots, sealer *Sealer) *SealedSlots {
	return &SealedSlots{next: next, sealer: sealer}
}

func (s *SealedSlots) Load(ctx context.Context, key string) ([]byte, error) {
	data, err := s.next.Load(ctx, key)
	if err != nil {
		return nil, err
	}
	plain, err := s.sealer.Open(data)
	if err != nil {
		return nil, fmt.Errorf("open slot %s: %w", key, err)
	}
	return plain, nil
}

func (s *SealedSlots) Save(ctx context.Context, key string, value []byte) error {
	sealed, err := s.sealer.Seal(value)
	if err != nil {
		return fmt.Errorf("seal slot %s: %w", key, err)
	}
	return s.next.Save(ctx, key, sealed)
}
