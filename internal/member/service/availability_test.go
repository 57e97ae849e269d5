package service

import (
	"context"
	"errors"

	"go.uber.org/mock/gomock"

	"memberd/internal/member/models"
	dErrors "memberd/pkg/domain-errors"
)

func (s *ServiceSuite) TestCheckAvailability() {
	ctx := context.Background()

	s.Run("free login id is available", func() {
		s.mockStore.EXPECT().ExistsByLoginID(gomock.Any(), models.LoginID("fresh01")).Return(false, nil)

		available, err := s.service.CheckAvailability(ctx, "fresh01")
		s.Require().NoError(err)
		s.True(available)
	})

	s.Run("taken login id is not available", func() {
		s.mockStore.EXPECT().ExistsByLoginID(gomock.Any(), models.LoginID("alice01")).Return(true, nil)

		available, err := s.service.CheckAvailability(ctx, "alice01")
		s.Require().NoError(err)
		s.False(available)
	})

	s.Run("invalid login id fails validation without a lookup", func() {
		_, err := s.service.CheckAvailability(ctx, "")
		s.Require().Error(err)
		s.True(dErrors.HasCode(err, dErrors.CodeValidation))
	})

	s.Run("store failure surfaces as internal", func() {
		s.mockStore.EXPECT().ExistsByLoginID(gomock.Any(), models.LoginID("fresh01")).
			Return(false, errors.New("connection reset"))

		_, err := s.service.CheckAvailability(ctx, "fresh01")
		s.Require().Error(err)
		s.True(dErrors.HasCode(err, dErrors.CodeInternal))
	})
}
