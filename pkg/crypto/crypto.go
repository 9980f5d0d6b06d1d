package crypto

import (
	"crypto/sha256"
	"encoding/base64"
	"errors"
	"fmt"

	"golang.org/x/crypto/bcrypt"
)

var (
	// ErrInvalidCredentials is returned when the credentials provided are invalid.
	ErrInvalidCredentials = errors.New("invalid credentials")
)

const (
	// Cost is the default cost used to hash passwords.
	Cost = 10
)

// Hasher turns a plain text password into the credential material that gets stored.
type Hasher interface {
	Hash(password string) (string, error)
}

// BcryptHasher hashes passwords with bcrypt. Passwords are reduced to a fixed-size
// SHA-256 digest first, so inputs longer than bcrypt's 72-byte limit are accepted
// and no suffix of a long password is silently ignored.
type BcryptHasher struct {
	cost int
}

// NewBcryptHasher creates a BcryptHasher. Costs outside bcrypt's accepted range fall back to Cost.
func NewBcryptHasher(cost int) *BcryptHasher {
	if cost < bcrypt.MinCost || cost > bcrypt.MaxCost {
		cost = Cost
	}
	return &BcryptHasher{cost: cost}
}

// Hash implements Hasher.
func (h *BcryptHasher) Hash(password string) (string, error) {
	bytes, err := bcrypt.GenerateFromPassword(prehash(password), h.cost)
	if err != nil {
		return "", fmt.Errorf("failed to hash password: %w", err)
	}
	return string(bytes), nil
}

// HashPassword hashes a password with bcrypt and the default cost of 10.
func HashPassword(password string) (string, error) {
	return NewBcryptHasher(Cost).Hash(password)
}

// CheckPassword checks if a password matches a hash produced by BcryptHasher.
func CheckPassword(password, hash string) error {
	if err := bcrypt.CompareHashAndPassword([]byte(hash), prehash(password)); err != nil {
		if errors.Is(err, bcrypt.ErrMismatchedHashAndPassword) {
			return ErrInvalidCredentials
		}

		return err
	}

	return nil
}

// prehash returns the base64 encoded SHA-256 digest of password (44 bytes).
func prehash(password string) []byte {
	sum := sha256.Sum256([]byte(password))
	encoded := make([]byte, base64.StdEncoding.EncodedLen(len(sum)))
	base64.StdEncoding.Encode(encoded, sum[:])
	return encoded
}
