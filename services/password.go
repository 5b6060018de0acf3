package services

import (
	"crypto/subtle"

	"github.com/vishalmadargaon/Flight-delay-predictor/config"

	"golang.org/x/crypto/bcrypt"
)

// PasswordHasher turns a password into its stored form and checks a candidate
// against it.
type PasswordHasher interface {
	Hash(plain string) (string, error)
	Verify(stored, plain string) bool
}

// PlainHasher stores passwords verbatim so existing plaintext user tables keep
// working. Prefer BcryptHasher.
type PlainHasher struct{}

func (PlainHasher) Hash(plain string) (string, error) { return plain, nil }

func (PlainHasher) Verify(stored, plain string) bool {
	return subtle.ConstantTimeCompare([]byte(stored), []byte(plain)) == 1
}

type BcryptHasher struct{ Cost int }

func (b BcryptHasher) Hash(plain string) (string, error) {
	cost := b.Cost
	if cost == 0 {
		cost = bcrypt.DefaultCost
	}
	h, err := bcrypt.GenerateFromPassword([]byte(plain), cost)
	return string(h), err
}

func (b BcryptHasher) Verify(stored, plain string) bool {
	return bcrypt.CompareHashAndPassword([]byte(stored), []byte(plain)) == nil
}

// NewPasswordHasher picks the hasher named by PASSWORD_HASHING.
func NewPasswordHasher(cfg config.SecurityConfig) PasswordHasher {
	if cfg.PasswordHashing == config.HashingBcrypt {
		return BcryptHasher{}
	}
	return PlainHasher{}
}
