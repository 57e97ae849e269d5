package service

import (
	"context"

	"memberd/internal/member/models"
	dErrors "memberd/pkg/domain-errors"
)

// CheckAvailability reports whether a login id is free to register. Lookups go
// through the store's existence check so a cache-backed store can answer
// without touching the primary.
func (s *Service) CheckAvailability(ctx context.Context, loginID string) (bool, error) {
	parsed, err := models.ParseLoginID(loginID)
	if err != nil {
		return false, err
	}

	exists, err := s.members.ExistsByLoginID(ctx, parsed)
	if err != nil {
		return false, dErrors.Wrap(err, dErrors.CodeInternal, "check login id availability")
	}
	return !exists, nil
}
