package store

import (
	"context"
	"strings"
	"sync"
	"time"

	"memberd/internal/member/models"
	id "memberd/pkg/domain"
	"memberd/pkg/platform/sentinel"
)

// InMemory keeps members in a map. It favors clarity over performance and
// backs unit tests and local development.
type InMemory struct {
	mu      sync.RWMutex
	members map[id.MemberID]*models.Member
	byLogin map[string]id.MemberID
}

func NewInMemory() *InMemory {
	return &InMemory{
		members: make(map[id.MemberID]*models.Member),
		byLogin: make(map[string]id.MemberID),
	}
}

func loginKey(loginID models.LoginID) string {
	return strings.ToLower(loginID.String())
}

func (s *InMemory) Create(_ context.Context, member *models.Member) (*models.Member, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	key := loginKey(member.LoginID)
	if _, taken := s.byLogin[key]; taken {
		return nil, sentinel.ErrAlreadyUsed
	}

	stored := *member
	if stored.ID.Nil() {
		stored.ID = id.NewMemberID()
	}
	s.members[stored.ID] = &stored
	s.byLogin[key] = stored.ID

	result := stored
	return &result, nil
}

func (s *InMemory) FindByID(_ context.Context, memberID id.MemberID) (*models.Member, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	member, ok := s.members[memberID]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	result := *member
	return &result, nil
}

func (s *InMemory) FindByLoginID(_ context.Context, loginID models.LoginID) (*models.Member, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	memberID, ok := s.byLogin[loginKey(loginID)]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	result := *s.members[memberID]
	return &result, nil
}

func (s *InMemory) ExistsByLoginID(_ context.Context, loginID models.LoginID) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.byLogin[loginKey(loginID)]
	return ok, nil
}

func (s *InMemory) UpdateDigest(_ context.Context, memberID id.MemberID, digest models.PasswordDigest) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	member, ok := s.members[memberID]
	if !ok {
		return sentinel.ErrNotFound
	}
	member.Digest = digest
	member.UpdatedAt = time.Now()
	return nil
}
