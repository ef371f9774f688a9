package crypto

import (
	"crypto/rand"
	"encoding/base64"
	"errors"
	"fmt"
	"io"

	"golang.org/x/crypto/blake2b"
)

var (
	ErrInvalidKey   = errors.New("session secret must be at least 32 bytes")
	ErrInvalidToken = errors.New("malformed session token")
)

// TokenBytes is the entropy of a session token (256 bits).
const TokenBytes = 32

// SessionKeyer derives store keys from session cookie tokens with a keyed
// BLAKE2b-256 hash, so the raw token never reaches the state store.
type SessionKeyer struct {
	key []byte
}

func NewSessionKeyer(secret []byte) (*SessionKeyer, error) {
	if len(secret) < 32 {
		return nil, ErrInvalidKey
	}
	// blake2b accepts keys up to 64 bytes.
	if len(secret) > blake2b.Size {
		sum := blake2b.Sum256(secret)
		secret = sum[:]
	}
	return &SessionKeyer{key: append([]byte(nil), secret...)}, nil
}

// NewToken returns a fresh URL-safe session token.
func (k *SessionKeyer) NewToken() (string, error) {
	b := make([]byte, TokenBytes)
	if _, err := io.ReadFull(rand.Reader, b); err != nil {
		return "", fmt.Errorf("failed to read random: %w", err)
	}
	return base64.RawURLEncoding.EncodeToString(b), nil
}

// Key returns the store key for token. Tokens that were not produced by
// NewToken are rejected.
func (k *SessionKeyer) Key(token string) (string, error) {
	raw, err := base64.RawURLEncoding.DecodeString(token)
	if err != nil || len(raw) != TokenBytes {
		return "", ErrInvalidToken
	}

	h, err := blake2b.New256(k.key)
	if err != nil {
		return "", fmt.Errorf("failed to create hash: %w", err)
	}
	h.Write(raw)
	return base64.RawURLEncoding.EncodeToString(h.Sum(nil)), nil
}
