package auth

import (
	"crypto/sha256"
	"crypto/subtle"
	"encoding/hex"
	"fmt"

	"golang.org/x/crypto/bcrypt"
)

// Hasher turns a plaintext password into the form stored in the database.
type Hasher interface {
	Hash(password string) (string, error)
	// Verify compares a plaintext password against a stored hash.
	Verify(hash, password string) bool
	// Deterministic hashers can look accounts up by their hash directly.
	Deterministic() bool
}

// SHA256Hasher stores the lowercase hex SHA-256 digest of the password.
type SHA256Hasher struct{}

func (SHA256Hasher) Hash(password string) (string, error) {
	sum := sha256.Sum256([]byte(password))
	return hex.EncodeToString(sum[:]), nil
}

func (h SHA256Hasher) Verify(hash, password string) bool {
	got, _ := h.Hash(password)
	return subtle.ConstantTimeCompare([]byte(got), []byte(hash)) == 1
}

func (SHA256Hasher) Deterministic() bool { return true }

type BcryptHasher struct {
	Cost int
}

func (h BcryptHasher) Hash(password string) (string, error) {
	cost := h.Cost
	if cost == 0 {
		cost = bcrypt.DefaultCost
	}
	b, err := bcrypt.GenerateFromPassword([]byte(password), cost)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

func (BcryptHasher) Verify(hash, password string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) == nil
}

func (BcryptHasher) Deterministic() bool { return false }

func NewHasher(scheme string) (Hasher, error) {
	switch scheme {
	case "", "sha256":
		return SHA256Hasher{}, nil
	case "bcrypt":
		return BcryptHasher{}, nil
	default:
		return nil, fmt.Errorf("unknown hash scheme %q", scheme)
	}
}
