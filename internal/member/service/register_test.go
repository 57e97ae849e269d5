package service

import (
	"context"

	"go.uber.org/mock/gomock"

	"memberd/internal/member/models"
	id "memberd/pkg/domain"
	dErrors "memberd/pkg/domain-errors"
	audit "memberd/pkg/platform/audit"
	"memberd/pkg/platform/sentinel"
	"memberd/pkg/requestcontext"
)

func validRegisterRequest() RegisterRequest {
	return RegisterRequest{
		LoginID:   "alice01",
		Password:  "Str0ng!pass",
		Name:      "Alice",
		BirthDate: "1990-06-15",
		Email:     "alice@example.com",
	}
}

func (s *ServiceSuite) TestRegister_Success() {
	ctx := requestcontext.WithTime(context.Background(), fixedNow)

	s.mockStore.EXPECT().Create(gomock.Any(), gomock.Any()).DoAndReturn(
		func(_ context.Context, member *models.Member) (*models.Member, error) {
			s.Equal(models.LoginID("alice01"), member.LoginID)
			s.NotEmpty(member.Digest)
			s.True(member.ID.Nil(), "store assigns the ID")
			created := *member
			created.ID = id.NewMemberID()
			return &created, nil
		})
	s.mockAudit.EXPECT().Emit(gomock.Any(), gomock.Any()).DoAndReturn(
		func(_ context.Context, event audit.Event) error {
			s.Equal(audit.EventMemberRegistered, event.Action)
			s.Equal(audit.CategoryCompliance, event.Category)
			s.False(event.MemberID.Nil())
			return nil
		})

	member, err := s.service.Register(ctx, validRegisterRequest())
	s.Require().NoError(err)
	s.False(member.ID.Nil())
	s.Equal(fixedNow, member.CreatedAt)
}

func (s *ServiceSuite) TestRegister_ValidationFailures() {
	ctx := requestcontext.WithTime(context.Background(), fixedNow)

	// No store or audit calls are expected for any of these.
	cases := []struct {
		name   string
		mutate func(*RegisterRequest)
	}{
		{"blank login id", func(r *RegisterRequest) { r.LoginID = " " }},
		{"login id too short", func(r *RegisterRequest) { r.LoginID = "ab1" }},
		{"login id with symbol", func(r *RegisterRequest) { r.LoginID = "alice_01" }},
		{"name with digits", func(r *RegisterRequest) { r.Name = "Alice2" }},
		{"birth date wrong format", func(r *RegisterRequest) { r.BirthDate = "15-06-1990" }},
		{"birth date in the future", func(r *RegisterRequest) { r.BirthDate = "2031-01-01" }},
		{"malformed email", func(r *RegisterRequest) { r.Email = "alice-at-example" }},
	}
	for _, tc := range cases {
		s.Run(tc.name, func() {
			req := validRegisterRequest()
			tc.mutate(&req)

			_, err := s.service.Register(ctx, req)
			s.Require().Error(err)
			s.True(dErrors.HasCode(err, dErrors.CodeValidation), "got %v", err)
		})
	}
}

func (s *ServiceSuite) TestRegister_PolicyRejectsBeforeUniquenessCheck() {
	ctx := requestcontext.WithTime(context.Background(), fixedNow)

	req := validRegisterRequest()
	req.Password = "short1!"

	// A rejected password must not touch the store, so the caller cannot
	// probe login id availability with throwaway passwords.
	_, err := s.service.Register(ctx, req)
	s.Require().Error(err)
	s.True(dErrors.HasCode(err, dErrors.CodeValidation))
}

func (s *ServiceSuite) TestRegister_PasswordContainingBirthDateRejected() {
	ctx := requestcontext.WithTime(context.Background(), fixedNow)

	req := validRegisterRequest()
	req.Password = "pw19900615!"

	_, err := s.service.Register(ctx, req)
	s.Require().Error(err)
	s.True(dErrors.HasCode(err, dErrors.CodeValidation))
}

func (s *ServiceSuite) TestRegister_DuplicateLoginID() {
	ctx := requestcontext.WithTime(context.Background(), fixedNow)

	s.mockStore.EXPECT().Create(gomock.Any(), gomock.Any()).Return(nil, sentinel.ErrAlreadyUsed)

	_, err := s.service.Register(ctx, validRegisterRequest())
	s.Require().Error(err)
	s.True(dErrors.HasCode(err, dErrors.CodeConflict))
}
