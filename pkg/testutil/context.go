package testutil

import (
	"context"
	"time"

	"memberd/pkg/requestcontext"
)

// FixedClock pins the request clock so time-dependent checks are
// deterministic in tests.
func FixedClock(ctx context.Context, t time.Time) context.Context {
	return requestcontext.WithTime(ctx, t)
}
