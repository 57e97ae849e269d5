package service

import (
	"context"
	"errors"
	"time"

	"memberd/internal/member/models"
	dErrors "memberd/pkg/domain-errors"
	audit "memberd/pkg/platform/audit"
	"memberd/pkg/platform/sentinel"
	"memberd/pkg/requestcontext"
)

// RegisterRequest carries the raw signup fields. Validation happens inside
// Register; callers pass user input through untouched.
type RegisterRequest struct {
	LoginID  string
	Password string
	Name     string
	// BirthDate in yyyy-MM-dd form.
	BirthDate string
	Email     string
}

// Register creates a member account.
//
// Field validation runs before the uniqueness check so a request with a bad
// password never reveals whether the login id is taken. The store's unique
// constraint is the real duplicate guard; concurrent registrations with the
// same login id resolve to exactly one winner.
//
// Errors: CodeValidation for any malformed field or rejected password;
// CodeConflict when the login id is already in use; CodeInternal otherwise.
func (s *Service) Register(ctx context.Context, req RegisterRequest) (*models.Member, error) {
	if s.metrics != nil {
		defer s.metrics.ObserveRegister(time.Now())
	}
	now := requestcontext.Now(ctx)

	loginID, err := models.ParseLoginID(req.LoginID)
	if err != nil {
		return nil, err
	}
	name, err := models.ParseName(req.Name)
	if err != nil {
		return nil, err
	}
	birthDate, err := models.ParseBirthDate(req.BirthDate, now)
	if err != nil {
		return nil, err
	}
	email, err := models.ParseEmail(req.Email)
	if err != nil {
		return nil, err
	}

	if err := s.policy.Validate(req.Password, birthDate, loginID.String()); err != nil {
		return nil, err
	}

	digest, err := s.hasher.Hash(req.Password)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to hash password")
	}

	member, err := models.NewMember(loginID, digest, name, birthDate, email, now)
	if err != nil {
		return nil, err
	}

	created, err := s.members.Create(ctx, member)
	if err != nil {
		if errors.Is(err, sentinel.ErrAlreadyUsed) {
			return nil, dErrors.New(dErrors.CodeConflict, "login id is already in use")
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to create member")
	}

	if s.metrics != nil {
		s.metrics.IncrementRegistered()
	}
	s.emitAudit(ctx, audit.Event{
		Action:   audit.EventMemberRegistered,
		Category: audit.CategoryCompliance,
		MemberID: created.ID,
		LoginID:  created.LoginID.String(),
	})
	s.logger.InfoContext(ctx, "member registered", "member_id", created.ID.String())

	return created, nil
}
