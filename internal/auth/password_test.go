package auth

import (
	"strings"
	"testing"

	"golang.org/x/crypto/bcrypt"
)

func TestHashAndVerify(t *testing.T) {
	ps := NewPasswordServiceForTest(bcrypt.MinCost)

	hash, err := ps.Hash("correct horse battery staple")
	if err != nil {
		t.Fatalf("Hash() error = %v", err)
	}
	if hash == "correct horse battery staple" {
		t.Fatal("Hash() returned the plaintext")
	}

	if err := ps.Verify(hash, "correct horse battery staple"); err != nil {
		t.Errorf("Verify() with correct password: error = %v", err)
	}
	if err := ps.Verify(hash, "wrong password"); err == nil {
		t.Error("Verify() with wrong password should fail")
	}
}

func TestHash_SaltsDiffer(t *testing.T) {
	ps := NewPasswordServiceForTest(bcrypt.MinCost)

	h1, _ := ps.Hash("same password")
	h2, _ := ps.Hash("same password")
	if h1 == h2 {
		t.Error("two hashes of the same password should differ (random salt)")
	}
}

func TestHash_RejectsOverlongPassword(t *testing.T) {
	ps := NewPasswordServiceForTest(bcrypt.MinCost)

	if _, err := ps.Hash(strings.Repeat("x", 73)); err == nil {
		t.Error("Hash() should reject passwords longer than 72 bytes")
	}
}

func TestVerify_EmptyHashNeverMatches(t *testing.T) {
	// GitHub-created accounts carry an empty hash; password login for
	// them must always fail.
	ps := NewPasswordServiceForTest(bcrypt.MinCost)

	if err := ps.Verify("", "anything"); err == nil {
		t.Error("Verify() against an empty hash should fail")
	}
	if err := ps.Verify("", ""); err == nil {
		t.Error("Verify() of empty password against empty hash should fail")
	}
}
