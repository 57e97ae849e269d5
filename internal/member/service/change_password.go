package service

import (
	"context"
	"errors"
	"time"

	id "memberd/pkg/domain"
	dErrors "memberd/pkg/domain-errors"
	audit "memberd/pkg/platform/audit"
	"memberd/pkg/platform/sentinel"
)

// ErrSamePassword rejects a password change that reuses the current password.
var ErrSamePassword = dErrors.New(dErrors.CodeConflict, "new password must differ from the current password")

// ChangePassword replaces a member's password after re-verifying the current
// one.
//
// The checks run in a fixed order: member lookup, current-password
// verification, same-password rejection, policy validation, digest swap. A
// wrong current password surfaces as CodeUnauthorized before the new
// password is examined at all, so a caller who fails verification learns
// nothing about the policy outcome.
func (s *Service) ChangePassword(ctx context.Context, memberID id.MemberID, currentPassword, newPassword string) error {
	if s.metrics != nil {
		defer s.metrics.ObserveChangePassword(time.Now())
	}
	if memberID.Nil() {
		return dErrors.New(dErrors.CodeUnauthorized, "member ID required")
	}

	member, err := s.members.FindByID(ctx, memberID)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			// An authenticated caller whose account vanished gets the
			// same answer as a bad credential.
			return dErrors.New(dErrors.CodeUnauthorized, "invalid credentials")
		}
		return dErrors.Wrap(err, dErrors.CodeInternal, "failed to look up member")
	}

	if !s.hasher.Verify(currentPassword, member.Digest) {
		if s.metrics != nil {
			s.metrics.IncrementPasswordChange("rejected")
		}
		s.logger.WarnContext(ctx, "password change rejected", "member_id", memberID.String())
		return dErrors.New(dErrors.CodeUnauthorized, "invalid credentials")
	}

	if s.hasher.Verify(newPassword, member.Digest) {
		return ErrSamePassword
	}

	if err := s.policy.Validate(newPassword, member.BirthDate, member.LoginID.String()); err != nil {
		if s.metrics != nil {
			s.metrics.IncrementPasswordChange("rejected")
		}
		return err
	}

	digest, err := s.hasher.Hash(newPassword)
	if err != nil {
		return dErrors.Wrap(err, dErrors.CodeInternal, "failed to hash password")
	}

	if err := s.members.UpdateDigest(ctx, memberID, digest); err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return dErrors.New(dErrors.CodeUnauthorized, "invalid credentials")
		}
		return dErrors.Wrap(err, dErrors.CodeInternal, "failed to update password")
	}

	if s.metrics != nil {
		s.metrics.IncrementPasswordChange("success")
	}
	s.emitAudit(ctx, audit.Event{
		Action:   audit.EventPasswordChanged,
		Category: audit.CategorySecurity,
		MemberID: member.ID,
		LoginID:  member.LoginID.String(),
	})
	s.logger.InfoContext(ctx, "password changed", "member_id", memberID.String())

	return nil
}
