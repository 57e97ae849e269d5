// Package service holds the member account business logic: registration,
// credential authentication, password change, and profile reads.
package service

import (
	"context"
	"log/slog"

	"memberd/internal/member/metrics"
	"memberd/internal/member/password"
	"memberd/internal/member/store"
	audit "memberd/pkg/platform/audit"
	"memberd/pkg/requestcontext"
)

// AuditPublisher records audit events. Emission failures never fail the
// member operation that triggered them.
type AuditPublisher interface {
	Emit(ctx context.Context, event audit.Event) error
}

// Service wires the member store, password machinery, and observability into
// the account flows. Construct with NewService; the zero value is not usable.
type Service struct {
	members store.MemberStore
	hasher  password.Hasher
	policy  password.Policy
	auditor AuditPublisher
	metrics *metrics.Metrics
	logger  *slog.Logger
}

type Option func(*Service)

// WithMetrics attaches prometheus metrics. Without it the service runs
// unobserved, which tests rely on.
func WithMetrics(m *metrics.Metrics) Option {
	return func(s *Service) {
		s.metrics = m
	}
}

// WithPolicy overrides the default password policy.
func WithPolicy(p password.Policy) Option {
	return func(s *Service) {
		s.policy = p
	}
}

func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) {
		s.logger = logger
	}
}

func NewService(members store.MemberStore, hasher password.Hasher, auditor AuditPublisher, opts ...Option) *Service {
	s := &Service{
		members: members,
		hasher:  hasher,
		policy:  password.DefaultPolicy(),
		auditor: auditor,
		logger:  slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// emitAudit publishes an event enriched with request metadata. Audit is
// best-effort: failures are logged and the operation proceeds.
func (s *Service) emitAudit(ctx context.Context, event audit.Event) {
	if s.auditor == nil {
		return
	}
	event.Timestamp = requestcontext.Now(ctx)
	if event.RequestID == "" {
		event.RequestID = requestcontext.RequestID(ctx)
	}
	if event.Device == "" {
		event.Device = requestcontext.Device(ctx)
	}
	if event.Fingerprint == "" {
		event.Fingerprint = requestcontext.Fingerprint(ctx)
	}
	if event.ClientIP == "" {
		event.ClientIP = requestcontext.ClientIP(ctx)
	}
	if err := s.auditor.Emit(ctx, event); err != nil {
		s.logger.ErrorContext(ctx, "emit audit event", "action", event.Action, "error", err)
	}
}
