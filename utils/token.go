package utils

import (
	"crypto/rand"
	"encoding/hex"
)

// GenerateToken returns a hex-encoded random token of n bytes of entropy.
func GenerateToken(n int) string {
	b := make([]byte, n)
	if _, err := rand.Read(b); err != nil {
		// crypto/rand failing means the platform is broken; there is no
		// reasonable fallback for a credential.
		panic(err)
	}
	return hex.EncodeToString(b)
}

// GenerateInvitationToken returns a token for team invitation links.
func GenerateInvitationToken() string {
	return GenerateToken(32)
}

// GenerateEmailVerificationToken returns a token for verification links.
func GenerateEmailVerificationToken() string {
	return GenerateToken(32)
}
