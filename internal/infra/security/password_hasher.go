package security

import (
	"mlm-membership-platform/internal/domain"
	"mlm-membership-platform/internal/domain/ports/adapter"

	"golang.org/x/crypto/bcrypt"
)

// Ensure compile-time conformance
var _ adapter.PasswordHasher = (*BcryptHasher)(nil)

// BcryptHasher hashes credentials with bcrypt; the cost factor makes the hash
// deliberately slow.
type BcryptHasher struct {
	cost int
}

func NewBcryptHasher(cost int) *BcryptHasher {
	if cost < bcrypt.MinCost || cost > bcrypt.MaxCost {
		cost = bcrypt.DefaultCost
	}
	return &BcryptHasher{cost: cost}
}

func (h *BcryptHasher) Hash(password string) (string, error) {
	b, err := bcrypt.GenerateFromPassword([]byte(password), h.cost)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

func (h *BcryptHasher) Compare(hash, password string) error {
	if err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)); err != nil {
		return domain.ErrInvalidCredentials
	}
	return nil
}
