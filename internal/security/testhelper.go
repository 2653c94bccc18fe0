package security

import (
	"crypto/ed25519"
	"crypto/rand"
	"time"
)

// NewTestTokenProvider returns a TokenProvider over a freshly generated Ed25519 key pair.
// For tests only.
func NewTestTokenProvider(ttl time.Duration) (*TokenProvider, error) {
	pub, priv, err := ed25519.GenerateKey(rand.Reader)
	if err != nil {
		return nil, err
	}
	return NewTokenProvider(priv, pub, "portal-test", "portal-test-agent", ttl), nil
}
