package domain

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	dErrors "memberd/pkg/domain-errors"
)

// TestParseMemberID_Invariants validates the parsing invariant:
// IDs must be valid, non-empty, non-nil UUIDs.
func TestParseMemberID_Invariants(t *testing.T) {
	t.Run("rejects empty string", func(t *testing.T) {
		_, err := ParseMemberID("")
		require.Error(t, err)
		assert.True(t, dErrors.HasCode(err, dErrors.CodeInvalidInput))
	})

	t.Run("rejects invalid format", func(t *testing.T) {
		_, err := ParseMemberID("not-a-uuid")
		require.Error(t, err)
		assert.True(t, dErrors.HasCode(err, dErrors.CodeInvalidInput))
	})

	t.Run("rejects nil UUID", func(t *testing.T) {
		_, err := ParseMemberID(uuid.Nil.String())
		require.Error(t, err)
		assert.True(t, dErrors.HasCode(err, dErrors.CodeInvalidInput))
	})

	t.Run("accepts valid UUID", func(t *testing.T) {
		valid := uuid.New()
		id, err := ParseMemberID(valid.String())
		require.NoError(t, err)
		assert.Equal(t, MemberID(valid), id)
	})
}

func TestMemberID_Nil(t *testing.T) {
	assert.True(t, MemberID{}.Nil())
	assert.False(t, NewMemberID().Nil())
}

func TestMemberID_TextRoundTrip(t *testing.T) {
	original := NewMemberID()

	text, err := original.MarshalText()
	require.NoError(t, err)
	assert.Equal(t, original.String(), string(text))

	var parsed MemberID
	require.NoError(t, parsed.UnmarshalText(text))
	assert.Equal(t, original, parsed)

	t.Run("nil ID renders empty", func(t *testing.T) {
		text, err := MemberID{}.MarshalText()
		require.NoError(t, err)
		assert.Empty(t, text)

		var parsed MemberID
		require.NoError(t, parsed.UnmarshalText(nil))
		assert.True(t, parsed.Nil())
	})
}
