package crypto

import (
	"bytes"
	"errors"
	"testing"
)

func testKeyer(t *testing.T, secret string) *SessionKeyer {
	t.Helper()
	k, err := NewSessionKeyer([]byte(secret))
	if err != nil {
		t.Fatal(err)
	}
	return k
}

func TestNewSessionKeyer_ShortSecret(t *testing.T) {
	if _, err := NewSessionKeyer([]byte("too short")); !errors.Is(err, ErrInvalidKey) {
		t.Errorf("error = %v, want ErrInvalidKey", err)
	}
}

func TestNewSessionKeyer_LongSecret(t *testing.T) {
	if _, err := NewSessionKeyer(bytes.Repeat([]byte("s"), 100)); err != nil {
		t.Errorf("unexpected error: %v", err)
	}
}

func TestKey_StableAndSecretDependent(t *testing.T) {
	a := testKeyer(t, "0123456789abcdef0123456789abcdef")
	b := testKeyer(t, "fedcba9876543210fedcba9876543210")

	token, err := a.NewToken()
	if err != nil {
		t.Fatal(err)
	}

	k1, err := a.Key(token)
	if err != nil {
		t.Fatal(err)
	}
	k2, _ := a.Key(token)
	if k1 != k2 {
		t.Error("same token produced different keys")
	}
	if k1 == token {
		t.Error("key must not equal the raw token")
	}

	other, _ := b.Key(token)
	if other == k1 {
		t.Error("different secrets produced the same key")
	}
}

func TestNewToken_Unique(t *testing.T) {
	k := testKeyer(t, "0123456789abcdef0123456789abcdef")
	seen := make(map[string]bool)
	for i := 0; i < 100; i++ {
		tok, err := k.NewToken()
		if err != nil {
			t.Fatal(err)
		}
		if seen[tok] {
			t.Fatalf("duplicate token %q", tok)
		}
		seen[tok] = true
	}
}

func TestKey_RejectsMalformedTokens(t *testing.T) {
	k := testKeyer(t, "0123456789abcdef0123456789abcdef")
	for _, tok := range []string{"", "not base64 !!", "c2hvcnQ"} {
		if _, err := k.Key(tok); !errors.Is(err, ErrInvalidToken) {
			t.Errorf("Key(%q) error = %v, want ErrInvalidToken", tok, err)
		}
	}
}
