// Package store defines member persistence and its implementations.
package store

import (
	"context"

	"memberd/internal/member/models"
	id "memberd/pkg/domain"
)

// MemberStore is the persistence port for member accounts. Implementations
// return sentinel.ErrNotFound for missing records and sentinel.ErrAlreadyUsed
// when a login id is taken; services translate these into domain errors.
type MemberStore interface {
	// Create persists a new member and assigns its ID. The login id must
	// be unique; concurrent duplicates resolve to exactly one winner.
	Create(ctx context.Context, member *models.Member) (*models.Member, error)
	FindByID(ctx context.Context, memberID id.MemberID) (*models.Member, error)
	FindByLoginID(ctx context.Context, loginID models.LoginID) (*models.Member, error)
	ExistsByLoginID(ctx context.Context, loginID models.LoginID) (bool, error)
	// UpdateDigest atomically replaces the stored password digest.
	UpdateDigest(ctx context.Context, memberID id.MemberID, digest models.PasswordDigest) error
}
