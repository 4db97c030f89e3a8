package auth

import (
	"errors"
	"strings"
	"testing"

	"golang.org/x/crypto/bcrypt"
)

func TestHashAndVerify(t *testing.T) {
	p := NewPasswordService(bcrypt.MinCost)

	hash, err := p.Hash("correct horse")
	if err != nil {
		t.Fatalf("Hash: %v", err)
	}
	if hash == "correct horse" {
		t.Fatal("hash should not equal the password")
	}

	if err := p.Verify(hash, "correct horse"); err != nil {
		t.Errorf("Verify correct password: %v", err)
	}
	if err := p.Verify(hash, "wrong horse"); !errors.Is(err, ErrInvalidCredentials) {
		t.Errorf("Verify wrong password: err = %v, want ErrInvalidCredentials", err)
	}
}

func TestHashTooShort(t *testing.T) {
	p := NewPasswordService(bcrypt.MinCost)
	if _, err := p.Hash("short"); !errors.Is(err, ErrPasswordTooShort) {
		t.Errorf("err = %v, want ErrPasswordTooShort", err)
	}
}

func TestHashTooLong(t *testing.T) {
	p := NewPasswordService(bcrypt.MinCost)
	if _, err := p.Hash(strings.Repeat("a", 73)); !errors.Is(err, ErrPasswordTooLong) {
		t.Errorf("err = %v, want ErrPasswordTooLong", err)
	}
	if _, err := p.Hash(strings.Repeat("a", 72)); err != nil {
		t.Errorf("72-byte password: %v", err)
	}
}

func TestNewPasswordServiceInvalidCost(t *testing.T) {
	p := NewPasswordService(0)
	if p.cost != bcrypt.DefaultCost {
		t.Errorf("cost = %d, want %d", p.cost, bcrypt.DefaultCost)
	}
}

func TestVerifyMalformedHash(t *testing.T) {
	p := NewPasswordService(bcrypt.MinCost)
	err := p.Verify("not-a-hash", "whatever1")
	if err == nil || errors.Is(err, ErrInvalidCredentials) {
		t.Errorf("err = %v, want a non-credential error", err)
	}
}
