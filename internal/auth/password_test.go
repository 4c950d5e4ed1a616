package auth

import "testing"

func TestHashAndVerifyPassword(t *testing.T) {
	hash, err := HashPassword("hunter22")
	if err != nil {
		t.Fatalf("HashPassword() error = %v", err)
	}
	if hash == "hunter22" {
		t.Fatal("hash equals plaintext")
	}

	if !VerifyPassword("hunter22", hash) {
		t.Error("VerifyPassword() = false for correct password")
	}
	if VerifyPassword("hunter23", hash) {
		t.Error("VerifyPassword() = true for wrong password")
	}
	if VerifyPassword("hunter22", "not-a-hash") {
		t.Error("VerifyPassword() = true for malformed hash")
	}
}

func TestHashPassword_Salted(t *testing.T) {
	first, err := HashPassword("hunter22")
	if err != nil {
		t.Fatalf("HashPassword() error = %v", err)
	}
	second, err := HashPassword("hunter22")
	if err != nil {
		t.Fatalf("HashPassword() error = %v", err)
	}
	if first == second {
		t.Error("two hashes of the same password are identical; salt missing")
	}
}
