package util

import (
	"crypto/rand"
	"encoding/hex"
)

// NewID returns a random hex ID, used for journal records and other
// client-local identifiers. Server-side entities carry server ids.
func NewID() string {
	b := make([]byte, 16)
	_, _ = rand.Read(b)
	return hex.EncodeToString(b)
}
