package security

import "testing"

func TestHashAndCheckPassword(t *testing.T) {
	hash, err := HashPassword("secret1")

	if err != nil {
		t.Fatalf("HashPassword failed: %v", err)
	}

	if hash == "secret1" {
		t.Fatalf("hash must not equal the plaintext")
	}

	if err := CheckPassword(hash, "secret1"); err != nil {
		t.Fatalf("expected matching password to verify, got %v", err)
	}

	if err := CheckPassword(hash, "wrong-password"); err == nil {
		t.Fatalf("expected mismatch for wrong password")
	}
}

func TestCheckPassword_MalformedHash(t *testing.T) {
	// a corrupt stored hash is a mismatch, not a panic
	if err := CheckPassword("not-a-bcrypt-hash", "anything"); err == nil {
		t.Fatalf("expected error for malformed hash")
	}
}

func TestHashPassword_UniqueSalts(t *testing.T) {
	h1, err := HashPassword("same-input")
	if err != nil {
		t.Fatalf("HashPassword failed: %v", err)
	}

	h2, err := HashPassword("same-input")
	if err != nil {
		t.Fatalf("HashPassword failed: %v", err)
	}

	if h1 == h2 {
		t.Fatalf("two hashes of the same input should differ (random salt)")
	}
}
