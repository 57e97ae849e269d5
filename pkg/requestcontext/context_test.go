package requestcontext_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	id "memberd/pkg/domain"
	"memberd/pkg/requestcontext"
	"memberd/pkg/testutil"
)

func TestRequestValues(t *testing.T) {
	testutil.Given(t, "an empty context", func(t *testing.T) {
		ctx := context.Background()

		testutil.Then(t, "accessors return zero values", func(t *testing.T) {
			assert.True(t, requestcontext.MemberID(ctx).Nil())
			assert.Empty(t, requestcontext.LoginID(ctx))
			assert.Empty(t, requestcontext.RequestID(ctx))
			assert.Empty(t, requestcontext.Device(ctx))
			assert.Empty(t, requestcontext.Fingerprint(ctx))
			assert.Empty(t, requestcontext.ClientIP(ctx))
		})

		testutil.Then(t, "Now falls back to the wall clock", func(t *testing.T) {
			before := time.Now()
			got := requestcontext.Now(ctx)
			assert.False(t, got.Before(before))
		})
	})

	testutil.Given(t, "a context with request values", func(t *testing.T) {
		memberID := id.NewMemberID()
		ctx := requestcontext.WithMemberID(context.Background(), memberID)
		ctx = requestcontext.WithLoginID(ctx, "alice01")
		ctx = requestcontext.WithRequestID(ctx, "req-123")
		ctx = requestcontext.WithDevice(ctx, "Chrome on Linux")
		ctx = requestcontext.WithFingerprint(ctx, "fp-chrome-120")
		ctx = requestcontext.WithClientIP(ctx, "10.0.0.1")

		testutil.Then(t, "accessors round-trip", func(t *testing.T) {
			assert.Equal(t, memberID, requestcontext.MemberID(ctx))
			assert.Equal(t, "alice01", requestcontext.LoginID(ctx))
			assert.Equal(t, "req-123", requestcontext.RequestID(ctx))
			assert.Equal(t, "Chrome on Linux", requestcontext.Device(ctx))
			assert.Equal(t, "fp-chrome-120", requestcontext.Fingerprint(ctx))
			assert.Equal(t, "10.0.0.1", requestcontext.ClientIP(ctx))
		})
	})
}

func TestFixedClock(t *testing.T) {
	pinned := time.Date(2026, 3, 15, 12, 0, 0, 0, time.UTC)

	testutil.When(t, "the clock is pinned", func(t *testing.T) {
		ctx := testutil.FixedClock(context.Background(), pinned)
		assert.True(t, requestcontext.Now(ctx).Equal(pinned))
	})
}
