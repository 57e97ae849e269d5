package password

import (
	"errors"
	"fmt"
	"strings"

	"golang.org/x/crypto/bcrypt"

	"memberd/internal/member/models"
	dErrors "memberd/pkg/domain-errors"
)

// Hasher is the hashing capability consumed by the member service. The
// production implementation is bcrypt; PlainHasher exists for deterministic
// tests. Implementations must encode the salt inside the digest so Verify
// needs no side channel.
type Hasher interface {
	Hash(raw string) (models.PasswordDigest, error)
	Verify(raw string, digest models.PasswordDigest) bool
}

// BcryptHasher hashes with bcrypt at a configurable cost.
type BcryptHasher struct {
	cost int
}

// NewBcryptHasher builds a bcrypt hasher. Costs outside bcrypt's valid range
// fall back to the library default.
func NewBcryptHasher(cost int) *BcryptHasher {
	if cost < bcrypt.MinCost || cost > bcrypt.MaxCost {
		cost = bcrypt.DefaultCost
	}
	return &BcryptHasher{cost: cost}
}

func (h *BcryptHasher) Hash(raw string) (models.PasswordDigest, error) {
	if raw == "" {
		return "", dErrors.New(dErrors.CodeInvalidInput, "password cannot be empty")
	}
	hashed, err := bcrypt.GenerateFromPassword([]byte(raw), h.cost)
	if err != nil {
		if errors.Is(err, bcrypt.ErrPasswordTooLong) {
			return "", dErrors.New(dErrors.CodeInvalidInput, "password is too long")
		}
		return "", fmt.Errorf("could not hash password: %w", err)
	}
	return models.PasswordDigest(hashed), nil
}

func (h *BcryptHasher) Verify(raw string, digest models.PasswordDigest) bool {
	return bcrypt.CompareHashAndPassword([]byte(digest), []byte(raw)) == nil
}

// PlainHasher is a deterministic test double: the digest is the raw password
// behind a fixed prefix. Never use outside tests.
type PlainHasher struct{}

const plainPrefix = "plain$"

func (PlainHasher) Hash(raw string) (models.PasswordDigest, error) {
	if raw == "" {
		return "", dErrors.New(dErrors.CodeInvalidInput, "password cannot be empty")
	}
	return models.PasswordDigest(plainPrefix + raw), nil
}

func (PlainHasher) Verify(raw string, digest models.PasswordDigest) bool {
	return strings.TrimPrefix(string(digest), plainPrefix) == raw &&
		strings.HasPrefix(string(digest), plainPrefix)
}
