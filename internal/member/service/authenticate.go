package service

import (
	"context"
	"errors"
	"time"

	"memberd/internal/member/models"
	dErrors "memberd/pkg/domain-errors"
	audit "memberd/pkg/platform/audit"
	"memberd/pkg/platform/sentinel"
)

// ErrInvalidCredentials is returned for every authentication failure: unknown
// login id, wrong password, malformed input. One error value means a caller
// cannot tell which part was wrong.
var ErrInvalidCredentials = dErrors.New(dErrors.CodeUnauthorized, "invalid credentials")

// dummyDigest is a real bcrypt digest of a random throwaway password. When
// the login id does not exist, the password is verified against this digest
// so the unknown-id path costs the same bcrypt work as the known-id path.
const dummyDigest = models.PasswordDigest("$2a$10$N9qo8uLOickgx2ZMRZoMyeIjZAgcfl7p92ldGxad68LJZdL17lhWy")

// Authenticate checks a login id and password pair and returns the matching
// principal.
//
// Exactly one digest verification runs per call regardless of whether the
// login id exists, keeping response timing from leaking account existence.
func (s *Service) Authenticate(ctx context.Context, loginID, rawPassword string) (models.Principal, error) {
	if s.metrics != nil {
		defer s.metrics.ObserveAuthenticate(time.Now())
	}

	parsed, parseErr := models.ParseLoginID(loginID)

	var member *models.Member
	digest := dummyDigest
	if parseErr == nil {
		found, err := s.members.FindByLoginID(ctx, parsed)
		switch {
		case err == nil:
			member = found
			digest = found.Digest
		case errors.Is(err, sentinel.ErrNotFound):
			// fall through to the dummy verification
		default:
			return models.Principal{}, dErrors.Wrap(err, dErrors.CodeInternal, "failed to look up member")
		}
	}

	verified := s.hasher.Verify(rawPassword, digest)

	if parseErr != nil || member == nil || !verified {
		s.authFailure(ctx)
		return models.Principal{}, ErrInvalidCredentials
	}

	if s.metrics != nil {
		s.metrics.IncrementLogin("success")
	}
	s.emitAudit(ctx, audit.Event{
		Action:   audit.EventLoginSucceeded,
		Category: audit.CategoryOperations,
		MemberID: member.ID,
		LoginID:  member.LoginID.String(),
	})

	return models.Principal{MemberID: member.ID, LoginID: member.LoginID}, nil
}

// authFailure records a failed login without identifying the account. The
// attempted login id goes to neither logs nor audit so the trail cannot
// confirm which ids exist.
func (s *Service) authFailure(ctx context.Context) {
	if s.metrics != nil {
		s.metrics.IncrementLogin("failure")
	}
	s.emitAudit(ctx, audit.Event{
		Action:   audit.EventLoginFailed,
		Category: audit.CategorySecurity,
		Reason:   "invalid credentials",
	})
	s.logger.WarnContext(ctx, "login failed")
}
