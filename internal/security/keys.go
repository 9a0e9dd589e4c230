package security

import (
	"crypto/sha256"
	"errors"
	"fmt"
	"io"

	"golang.org/x/crypto/hkdf"
)

// KeySize is the length in bytes of derived keys
const KeySize = 32

// Purposes for keys derived from the session secret
const (
	PurposeSessionToken = "learningtime session token v1"
	PurposeCSRF         = "learningtime csrf v1"
)

// DeriveKey expands secret into an independent key for purpose, so one
// configured secret can sign sessions and CSRF tokens without reuse
func DeriveKey(secret, purpose string) ([]byte, error) {
	if secret == "" {
		return nil, errors.New("secret is required")
	}

	key := make([]byte, KeySize)
	r := hkdf.New(sha256.New, []byte(secret), nil, []byte(purpose))
	if _, err := io.ReadFull(r, key); err != nil {
		return nil, fmt.Errorf("failed to derive %q key: %w", purpose, err)
	}
	return key, nil
}
