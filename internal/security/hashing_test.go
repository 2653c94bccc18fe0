package security

import (
	"testing"
)

func TestHasher_HashAndCompare(t *testing.T) {
	h := NewHasher(4)
	password := []byte("secret123")
	hash, err := h.Hash(password)
	if err != nil {
		t.Fatalf("Hash: %v", err)
	}
	if hash == "" {
		t.Fatal("Hash returned empty")
	}
	if err := h.Compare(hash, password); err != nil {
		t.Fatalf("Compare: %v", err)
	}
	ok, err := h.Matches(hash, password)
	if err != nil || !ok {
		t.Fatalf("Matches = %v, %v; want true, nil", ok, err)
	}
}

func TestHasher_WrongPassword(t *testing.T) {
	h := NewHasher(4)
	hash, _ := h.Hash([]byte("secret123"))
	if err := h.Compare(hash, []byte("wrong")); err == nil {
		t.Fatal("Compare with wrong password should fail")
	}
	ok, err := h.Matches(hash, []byte("wrong"))
	if err != nil || ok {
		t.Fatalf("Matches = %v, %v; want false, nil", ok, err)
	}
}

func TestHasher_MalformedHash(t *testing.T) {
	h := NewHasher(4)
	if _, err := h.Matches("not-a-bcrypt-hash", []byte("x")); err == nil {
		t.Fatal("Matches with malformed hash should return error")
	}
}

func TestHasher_Cost(t *testing.T) {
	if h := NewHasher(12); h.Cost != 12 {
		t.Errorf("Cost want 12, got %d", h.Cost)
	}
	if h := NewHasher(0); h.Cost != 10 {
		t.Errorf("zero cost should use bcrypt.DefaultCost, got %d", h.Cost)
	}
	if h := NewHasher(2); h.Cost != 4 {
		t.Errorf("low cost should clamp to 4, got %d", h.Cost)
	}
	if h := NewHasher(40); h.Cost != 31 {
		t.Errorf("high cost should clamp to 31, got %d", h.Cost)
	}
}
