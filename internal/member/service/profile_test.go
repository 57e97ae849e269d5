package service

import (
	"context"

	"go.uber.org/mock/gomock"

	"memberd/internal/member/models"
	id "memberd/pkg/domain"
	dErrors "memberd/pkg/domain-errors"
	"memberd/pkg/platform/sentinel"
)

func (s *ServiceSuite) TestGetProfile_MasksName() {
	ctx := context.Background()
	member := s.testMember("alice01", "Str0ng!pass")
	member.Name = models.Name("Alice")

	s.mockStore.EXPECT().FindByID(gomock.Any(), member.ID).Return(member, nil)

	profile, err := s.service.GetProfile(ctx, member.ID)
	s.Require().NoError(err)
	s.Equal("A****", profile.Name)
	s.Equal("alice01", profile.LoginID)
	s.Equal("1990-06-15", profile.BirthDate)
	s.Equal("alice@example.com", profile.Email)
}

func (s *ServiceSuite) TestGetProfile_SingleRuneNameUnmasked() {
	ctx := context.Background()
	member := s.testMember("alice01", "Str0ng!pass")
	member.Name = models.Name("J")

	s.mockStore.EXPECT().FindByID(gomock.Any(), member.ID).Return(member, nil)

	profile, err := s.service.GetProfile(ctx, member.ID)
	s.Require().NoError(err)
	s.Equal("J", profile.Name)
}

func (s *ServiceSuite) TestGetProfile_NotFound() {
	memberID := id.NewMemberID()
	s.mockStore.EXPECT().FindByID(gomock.Any(), memberID).Return(nil, sentinel.ErrNotFound)

	_, err := s.service.GetProfile(context.Background(), memberID)
	s.Require().Error(err)
	s.True(dErrors.HasCode(err, dErrors.CodeNotFound))
}

func (s *ServiceSuite) TestGetProfile_NilID() {
	_, err := s.service.GetProfile(context.Background(), id.MemberID{})
	s.Require().Error(err)
	s.True(dErrors.HasCode(err, dErrors.CodeUnauthorized))
}
