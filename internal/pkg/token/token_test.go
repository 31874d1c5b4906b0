package token

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew(t *testing.T) {
	tok, err := New()
	require.NoError(t, err)

	// 16 bytes of randomness, base64url without padding
	assert.Len(t, tok, 22)
	assert.False(t, strings.ContainsAny(tok, "+/="), "token must be URL-safe: %s", tok)
}

func TestNewUniqueness(t *testing.T) {
	seen := make(map[string]bool)
	for i := 0; i < 1000; i++ {
		tok, err := New()
		require.NoError(t, err)
		require.False(t, seen[tok], "duplicate token generated: %s", tok)
		seen[tok] = true
	}
}
