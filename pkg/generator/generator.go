package generator

import (
	"crypto/rand"
	"encoding/hex"
)

const (
	tokenPrefix  = "sess_"
	tokenEntropy = 8 // random bytes per token, 64 bits
)

// NewSessionToken returns an opaque session identifier of the form
// "sess_" + 16 hex characters.
func NewSessionToken() (string, error) {
	raw := make([]byte, tokenEntropy)
	if _, err := rand.Read(raw); err != nil {
		return "", err
	}

	return tokenPrefix + hex.EncodeToString(raw), nil
}
