package utils

import (
	"encoding/base64"
	"testing"

	"golang.org/x/crypto/bcrypt"
)

func TestHashAndComparePasswords(t *testing.T) {
	hashed, err := HashPassword("correct horse battery staple")
	if err != nil {
		t.Fatalf("HashPassword: %v", err)
	}
	if hashed == "correct horse battery staple" {
		t.Fatal("password stored in plain text")
	}
	if _, err := base64.StdEncoding.DecodeString(hashed); err != nil {
		t.Fatalf("stored hash is not base64: %v", err)
	}

	if !ComparePasswords(hashed, "correct horse battery staple") {
		t.Error("correct password rejected")
	}
	if ComparePasswords(hashed, "wrong password") {
		t.Error("wrong password accepted")
	}
	if ComparePasswords(hashed, "") {
		t.Error("empty password accepted")
	}
}

func TestHashPasswordSalted(t *testing.T) {
	a, err := HashPassword("same-input")
	if err != nil {
		t.Fatalf("HashPassword: %v", err)
	}
	b, err := HashPassword("same-input")
	if err != nil {
		t.Fatalf("HashPassword: %v", err)
	}
	if a == b {
		t.Error("two hashes of the same password are identical")
	}
}

func TestComparePasswordsRawBcryptFallback(t *testing.T) {
	// Rows written before base64 encoding hold the raw bcrypt hash.
	raw, err := bcrypt.GenerateFromPassword([]byte("legacy-secret"), bcrypt.DefaultCost)
	if err != nil {
		t.Fatalf("bcrypt: %v", err)
	}
	if !ComparePasswords(string(raw), "legacy-secret") {
		t.Error("raw bcrypt hash rejected")
	}
	if ComparePasswords(string(raw), "not-the-secret") {
		t.Error("wrong password accepted against raw hash")
	}
}

func TestCompareDummyPassword(t *testing.T) {
	// Must not panic; exists only to equalize login timing.
	CompareDummyPassword("anything")
	CompareDummyPassword("")
}
