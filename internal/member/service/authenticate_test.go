package service

import (
	"context"

	"go.uber.org/mock/gomock"

	"memberd/internal/member/models"
	audit "memberd/pkg/platform/audit"
	"memberd/pkg/platform/sentinel"
	"memberd/pkg/requestcontext"
)

func (s *ServiceSuite) TestAuthenticate_Success() {
	ctx := requestcontext.WithFingerprint(context.Background(), "fp-chrome-120")
	member := s.testMember("alice01", "Str0ng!pass")
	s.hasher.verifyCalls = 0

	s.mockStore.EXPECT().FindByLoginID(gomock.Any(), models.LoginID("alice01")).Return(member, nil)
	s.mockAudit.EXPECT().Emit(gomock.Any(), gomock.Any()).DoAndReturn(
		func(_ context.Context, event audit.Event) error {
			s.Equal(audit.EventLoginSucceeded, event.Action)
			s.Equal(member.ID, event.MemberID)
			s.Equal("fp-chrome-120", event.Fingerprint)
			return nil
		})

	principal, err := s.service.Authenticate(ctx, "alice01", "Str0ng!pass")
	s.Require().NoError(err)
	s.Equal(member.ID, principal.MemberID)
	s.Equal(models.LoginID("alice01"), principal.LoginID)
	s.Equal(1, s.hasher.verifyCalls)
}

func (s *ServiceSuite) TestAuthenticate_WrongPassword() {
	ctx := context.Background()
	member := s.testMember("alice01", "Str0ng!pass")
	s.hasher.verifyCalls = 0

	s.mockStore.EXPECT().FindByLoginID(gomock.Any(), models.LoginID("alice01")).Return(member, nil)
	s.mockAudit.EXPECT().Emit(gomock.Any(), gomock.Any()).DoAndReturn(
		func(_ context.Context, event audit.Event) error {
			s.Equal(audit.EventLoginFailed, event.Action)
			s.True(event.MemberID.Nil(), "failure events carry no account attribution")
			s.Empty(event.LoginID)
			return nil
		})

	_, err := s.service.Authenticate(ctx, "alice01", "wrong-password")
	s.Require().ErrorIs(err, ErrInvalidCredentials)
	s.Equal(1, s.hasher.verifyCalls)
}

func (s *ServiceSuite) TestAuthenticate_UnknownLoginID() {
	ctx := context.Background()
	s.hasher.verifyCalls = 0

	s.mockStore.EXPECT().FindByLoginID(gomock.Any(), models.LoginID("nobody99")).Return(nil, sentinel.ErrNotFound)
	s.mockAudit.EXPECT().Emit(gomock.Any(), gomock.Any()).Return(nil)

	_, err := s.service.Authenticate(ctx, "nobody99", "Str0ng!pass")
	s.Require().ErrorIs(err, ErrInvalidCredentials)

	// The dummy digest is still verified, so the unknown-id path does the
	// same hashing work as the known-id path.
	s.Equal(1, s.hasher.verifyCalls)
}

func (s *ServiceSuite) TestAuthenticate_MalformedLoginID() {
	ctx := context.Background()
	s.hasher.verifyCalls = 0

	// No store lookup for input that cannot be a login id, but the error
	// and the hashing work are identical to the unknown-id case.
	s.mockAudit.EXPECT().Emit(gomock.Any(), gomock.Any()).Return(nil)

	_, err := s.service.Authenticate(ctx, "not a login id!", "Str0ng!pass")
	s.Require().ErrorIs(err, ErrInvalidCredentials)
	s.Equal(1, s.hasher.verifyCalls)
}

func (s *ServiceSuite) TestAuthenticate_IndistinguishableFailures() {
	ctx := context.Background()
	member := s.testMember("alice01", "Str0ng!pass")

	s.mockStore.EXPECT().FindByLoginID(gomock.Any(), models.LoginID("alice01")).Return(member, nil)
	s.mockStore.EXPECT().FindByLoginID(gomock.Any(), models.LoginID("nobody99")).Return(nil, sentinel.ErrNotFound)
	s.mockAudit.EXPECT().Emit(gomock.Any(), gomock.Any()).Return(nil).Times(2)

	_, wrongPassword := s.service.Authenticate(ctx, "alice01", "bad-password")
	_, unknownID := s.service.Authenticate(ctx, "nobody99", "bad-password")

	s.Equal(wrongPassword.Error(), unknownID.Error())
}
