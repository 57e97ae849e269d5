// Package audit defines the audit event model and its sinks.
//
// Domain services emit events; sinks (memory, Kafka) fan them out. Events are
// transport-agnostic so stores and brokers can share one shape.
package audit

import (
	"context"
	"time"

	id "memberd/pkg/domain"
)

// EventCategory classifies audit events by their primary purpose, enabling
// different retention policies and routing.
type EventCategory string

const (
	// CategoryCompliance covers events with regulatory significance:
	// account creation, data-affecting changes.
	CategoryCompliance EventCategory = "compliance"

	// CategorySecurity covers events feeding security monitoring:
	// authentication failures and password changes.
	CategorySecurity EventCategory = "security"

	// CategoryOperations covers events for debugging and visibility:
	// successful logins, routine access.
	CategoryOperations EventCategory = "operations"
)

// Action names for member account events.
type Action string

const (
	EventMemberRegistered Action = "member_registered"
	EventLoginSucceeded   Action = "login_succeeded"
	EventLoginFailed      Action = "login_failed"
	EventPasswordChanged  Action = "password_changed"
)

var actionCategories = map[Action]EventCategory{
	EventMemberRegistered: CategoryCompliance,
	EventLoginSucceeded:   CategoryOperations,
	EventLoginFailed:      CategorySecurity,
	EventPasswordChanged:  CategorySecurity,
}

// Category returns the category for an action. Unknown actions default to
// operations so nothing is silently dropped.
func (a Action) Category() EventCategory {
	if c, ok := actionCategories[a]; ok {
		return c
	}
	return CategoryOperations
}

// Event is emitted from domain logic to capture key actions.
//
// LoginID is recorded only for actions tied to an existing account; failed
// logins carry no identifier so the audit trail cannot be used to confirm
// which login ids exist.
type Event struct {
	Category  EventCategory `json:"category"`
	Action    Action        `json:"action"`
	Timestamp time.Time     `json:"timestamp"`
	MemberID  id.MemberID   `json:"member_id,omitempty"`
	LoginID   string        `json:"login_id,omitempty"`
	Device    string        `json:"device,omitempty"`
	// Fingerprint hashes the client's stable user-agent parts so downstream
	// consumers can spot logins from unfamiliar devices.
	Fingerprint string `json:"fingerprint,omitempty"`
	ClientIP    string `json:"client_ip,omitempty"`
	RequestID   string `json:"request_id,omitempty"`
	Reason      string `json:"reason,omitempty"`
}

// Store persists audit events. Implementations must be safe for concurrent
// use.
type Store interface {
	Append(ctx context.Context, event Event) error
	ListByMember(ctx context.Context, memberID id.MemberID) ([]Event, error)
}
