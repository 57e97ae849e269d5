package service

import (
	"context"
	"errors"

	"memberd/internal/member/models"
	id "memberd/pkg/domain"
	dErrors "memberd/pkg/domain-errors"
	"memberd/pkg/platform/sentinel"
)

// Profile is the read model for a member's own account view. The name is
// masked and no password material is present.
type Profile struct {
	MemberID  id.MemberID
	LoginID   string
	Name      string
	BirthDate string
	Email     string
}

// GetProfile returns the masked profile for a member.
//
// Errors: CodeNotFound when no such member exists; CodeInternal otherwise.
func (s *Service) GetProfile(ctx context.Context, memberID id.MemberID) (Profile, error) {
	if memberID.Nil() {
		return Profile{}, dErrors.New(dErrors.CodeUnauthorized, "member ID required")
	}

	member, err := s.members.FindByID(ctx, memberID)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return Profile{}, dErrors.New(dErrors.CodeNotFound, "member not found")
		}
		return Profile{}, dErrors.Wrap(err, dErrors.CodeInternal, "failed to look up member")
	}

	return newProfile(member), nil
}

func newProfile(member *models.Member) Profile {
	return Profile{
		MemberID:  member.ID,
		LoginID:   member.LoginID.String(),
		Name:      member.Name.Masked(),
		BirthDate: member.BirthDate.Dashed(),
		Email:     member.Email.String(),
	}
}
