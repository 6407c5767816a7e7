package utils

import (
	"encoding/base64"

	"golang.org/x/crypto/bcrypt"
)

// dummyHash is compared against when no user matches a login email, so that
// unknown-email and wrong-password failures take comparable time.
var dummyHash, _ = bcrypt.GenerateFromPassword([]byte("saintsal-timing-pad"), bcrypt.DefaultCost)

// HashPassword hashes a plain password with bcrypt and base64-encodes the
// hash for storage.
func HashPassword(password string) (string, error) {
	hashedBytes, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return base64.StdEncoding.EncodeToString(hashedBytes), nil
}

// ComparePasswords checks a plain password against a stored base64-encoded
// bcrypt hash. Also accepts a raw bcrypt hash for rows written before the
// encoding was introduced.
func ComparePasswords(storedPassword, plainPassword string) bool {
	hashedBytes, err := base64.StdEncoding.DecodeString(storedPassword)
	if err != nil {
		hashedBytes = []byte(storedPassword)
	}
	return bcrypt.CompareHashAndPassword(hashedBytes, []byte(plainPassword)) == nil
}

// CompareDummyPassword burns a bcrypt comparison without validating
// anything. Called on the unknown-email login path.
func CompareDummyPassword(plainPassword string) {
	_ = bcrypt.CompareHashAndPassword(dummyHash, []byte(plainPassword))
}
