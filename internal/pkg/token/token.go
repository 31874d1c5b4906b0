// internal/pkg/token/token.go
package token

import (
	"crypto/rand"
	"encoding/base64"
	"fmt"
)

// secretBytes is the amount of randomness behind every generated token.
// 16 bytes keeps tokens unguessable while staying short enough for URLs.
const secretBytes = 16

// New generates a URL-safe bearer token. The same generator backs wishlist
// slugs, creator secrets and reserver/contributor secrets: possession of the
// token is the authorization.
func New() (string, error) {
	buf := make([]byte, secretBytes)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("failed to read random bytes: %w", err)
	}
	return base64.RawURLEncoding.EncodeToString(buf), nil
}

// MustNew generates a token and panics if the system random source fails.
// Used from gorm hooks where returning an error aborts the whole insert anyway.
func MustNew() string {
	t, err := New()
	if err != nil {
		panic(err)
	}
	return t
}
