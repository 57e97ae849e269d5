package service

import (
	"context"

	"go.uber.org/mock/gomock"

	"memberd/internal/member/models"
	id "memberd/pkg/domain"
	dErrors "memberd/pkg/domain-errors"
	audit "memberd/pkg/platform/audit"
	"memberd/pkg/platform/sentinel"
)

func (s *ServiceSuite) TestChangePassword_Success() {
	ctx := context.Background()
	member := s.testMember("alice01", "Str0ng!pass")

	s.mockStore.EXPECT().FindByID(gomock.Any(), member.ID).Return(member, nil)
	s.mockStore.EXPECT().UpdateDigest(gomock.Any(), member.ID, gomock.Any()).DoAndReturn(
		func(_ context.Context, _ id.MemberID, digest models.PasswordDigest) error {
			s.True(s.hasher.Hasher.Verify("N3w!password", digest))
			return nil
		})
	s.mockAudit.EXPECT().Emit(gomock.Any(), gomock.Any()).DoAndReturn(
		func(_ context.Context, event audit.Event) error {
			s.Equal(audit.EventPasswordChanged, event.Action)
			s.Equal(audit.CategorySecurity, event.Category)
			s.Equal(member.ID, event.MemberID)
			return nil
		})

	err := s.service.ChangePassword(ctx, member.ID, "Str0ng!pass", "N3w!password")
	s.Require().NoError(err)
}

func (s *ServiceSuite) TestChangePassword_NilMemberID() {
	err := s.service.ChangePassword(context.Background(), id.MemberID{}, "a", "b")
	s.Require().Error(err)
	s.True(dErrors.HasCode(err, dErrors.CodeUnauthorized))
}

func (s *ServiceSuite) TestChangePassword_MemberGone() {
	memberID := id.NewMemberID()
	s.mockStore.EXPECT().FindByID(gomock.Any(), memberID).Return(nil, sentinel.ErrNotFound)

	err := s.service.ChangePassword(context.Background(), memberID, "Str0ng!pass", "N3w!password")
	s.Require().Error(err)
	s.True(dErrors.HasCode(err, dErrors.CodeUnauthorized))
}

func (s *ServiceSuite) TestChangePassword_WrongCurrentPassword() {
	ctx := context.Background()
	member := s.testMember("alice01", "Str0ng!pass")

	s.mockStore.EXPECT().FindByID(gomock.Any(), member.ID).Return(member, nil)

	// The new password here is too short; verification failure must win,
	// revealing nothing about the policy outcome.
	err := s.service.ChangePassword(ctx, member.ID, "wrong-current", "x1!")
	s.Require().Error(err)
	s.True(dErrors.HasCode(err, dErrors.CodeUnauthorized))
}

func (s *ServiceSuite) TestChangePassword_SamePassword() {
	ctx := context.Background()
	member := s.testMember("alice01", "Str0ng!pass")

	s.mockStore.EXPECT().FindByID(gomock.Any(), member.ID).Return(member, nil)

	err := s.service.ChangePassword(ctx, member.ID, "Str0ng!pass", "Str0ng!pass")
	s.Require().ErrorIs(err, ErrSamePassword)
	s.True(dErrors.HasCode(err, dErrors.CodeConflict))
}

func (s *ServiceSuite) TestChangePassword_PolicyRejectsNewPassword() {
	ctx := context.Background()
	member := s.testMember("alice01", "Str0ng!pass")

	cases := []struct {
		name        string
		newPassword string
	}{
		{"too short", "x1!"},
		{"contains birth date", "pw19900615!"},
		{"contains login id", "xxalice01yy1!"},
		{"repeated run", "aaa1!bcdx"},
	}
	for _, tc := range cases {
		s.Run(tc.name, func() {
			s.mockStore.EXPECT().FindByID(gomock.Any(), member.ID).Return(member, nil)

			err := s.service.ChangePassword(ctx, member.ID, "Str0ng!pass", tc.newPassword)
			s.Require().Error(err)
			s.True(dErrors.HasCode(err, dErrors.CodeValidation), "got %v", err)
		})
	}
}

func (s *ServiceSuite) TestChangePassword_UpdateConflict() {
	ctx := context.Background()
	member := s.testMember("alice01", "Str0ng!pass")

	s.mockStore.EXPECT().FindByID(gomock.Any(), member.ID).Return(member, nil)
	s.mockStore.EXPECT().UpdateDigest(gomock.Any(), member.ID, gomock.Any()).Return(sentinel.ErrNotFound)

	err := s.service.ChangePassword(ctx, member.ID, "Str0ng!pass", "N3w!password")
	s.Require().Error(err)
	s.True(dErrors.HasCode(err, dErrors.CodeUnauthorized))
}
