// Package domain holds typed identifiers shared across modules.
//
// IDs are distinct uuid-backed types so a MemberID cannot be passed where
// another ID is expected. Construct them via the Parse functions at trust
// boundaries; direct casting bypasses validation.
package domain

import (
	"github.com/google/uuid"

	dErrors "memberd/pkg/domain-errors"
)

// MemberID identifies a member account.
type MemberID uuid.UUID

// Nil reports whether the ID is the zero UUID. A member has a nil ID only
// before its first save.
func (m MemberID) Nil() bool {
	return uuid.UUID(m) == uuid.Nil
}

func (m MemberID) String() string {
	return uuid.UUID(m).String()
}

// MarshalText renders the ID in canonical uuid form for JSON and logs. The
// nil ID renders as the empty string.
func (m MemberID) MarshalText() ([]byte, error) {
	if m.Nil() {
		return nil, nil
	}
	return []byte(uuid.UUID(m).String()), nil
}

func (m *MemberID) UnmarshalText(text []byte) error {
	if len(text) == 0 {
		*m = MemberID{}
		return nil
	}
	parsed, err := ParseMemberID(string(text))
	if err != nil {
		return err
	}
	*m = parsed
	return nil
}

// NewMemberID returns a freshly generated member ID.
func NewMemberID() MemberID {
	return MemberID(uuid.New())
}

// ParseMemberID constructs a MemberID from external input.
//
// Errors: CodeInvalidInput when the value is empty, malformed, or the nil
// UUID; no other errors are expected.
func ParseMemberID(s string) (MemberID, error) {
	if s == "" {
		return MemberID{}, dErrors.New(dErrors.CodeInvalidInput, "member id cannot be empty")
	}
	parsed, err := uuid.Parse(s)
	if err != nil {
		return MemberID{}, dErrors.New(dErrors.CodeInvalidInput, "member id must be a valid UUID")
	}
	if parsed == uuid.Nil {
		return MemberID{}, dErrors.New(dErrors.CodeInvalidInput, "member id cannot be the nil UUID")
	}
	return MemberID(parsed), nil
}
