package testutil

import (
	"winrecent/internal/encryption"
	"winrecent/internal/recent"
)

// NewTestEncryptor creates a new test encryptor for testing.
func NewTestEncryptor() recent.Encryptor {
	return encryption.NewTestEncryptor()
}
