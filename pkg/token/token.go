// Package token generates opaque session tokens. The session store treats
// tokens as caller-supplied bearer credentials, so all entropy decisions
// live here: tokens are raw crypto/rand bytes, base64url-encoded, with a
// configurable length.
package token

import (
	"crypto/rand"
	"encoding/base64"
	"fmt"
)

const (
	// DefaultSize is the token entropy in bytes (256 bits).
	DefaultSize = 32
	// minSize guards against configurations weak enough to be guessable.
	minSize = 16
)

// Generator mints random bearer tokens of a fixed byte length.
type Generator struct {
	size int
}

// NewGenerator returns a Generator producing tokens of size random bytes.
// Sizes below minSize fall back to DefaultSize.
func NewGenerator(size int) *Generator {
	if size < minSize {
		size = DefaultSize
	}
	return &Generator{size: size}
}

// New returns a fresh URL-safe token.
func (g *Generator) New() (string, error) {
	buf := make([]byte, g.size)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("token: reading entropy: %w", err)
	}
	return base64.RawURLEncoding.EncodeToString(buf), nil
}
