// Package requestcontext provides HTTP-independent context accessors for
// request-scoped values.
//
// Values are set by middleware and consumed by services. Keeping this package
// free of net/http lets services import only what they need.
//
// Usage in services (read values):
//
//	memberID := requestcontext.MemberID(ctx)
//	now := requestcontext.Now(ctx)
//
// Usage in tests (inject values):
//
//	ctx = requestcontext.WithTime(ctx, fixedTime)
package requestcontext

import (
	"context"
	"time"

	id "memberd/pkg/domain"
)

type (
	memberIDKey    struct{}
	loginIDKey     struct{}
	requestIDKey   struct{}
	requestTimeKey struct{}
	deviceKey      struct{}
	clientIPKey    struct{}
	fingerprintKey struct{}
)

// MemberID retrieves the authenticated member ID from the context.
// Returns the zero value if not set.
func MemberID(ctx context.Context) id.MemberID {
	if memberID, ok := ctx.Value(memberIDKey{}).(id.MemberID); ok {
		return memberID
	}
	return id.MemberID{}
}

// WithMemberID injects a member ID into the context.
func WithMemberID(ctx context.Context, memberID id.MemberID) context.Context {
	return context.WithValue(ctx, memberIDKey{}, memberID)
}

// LoginID retrieves the authenticated login id from the context.
func LoginID(ctx context.Context) string {
	if loginID, ok := ctx.Value(loginIDKey{}).(string); ok {
		return loginID
	}
	return ""
}

// WithLoginID injects a login id into the context.
func WithLoginID(ctx context.Context, loginID string) context.Context {
	return context.WithValue(ctx, loginIDKey{}, loginID)
}

// RequestID retrieves the correlation ID set by middleware.
func RequestID(ctx context.Context) string {
	if requestID, ok := ctx.Value(requestIDKey{}).(string); ok {
		return requestID
	}
	return ""
}

// WithRequestID injects a correlation ID into the context.
func WithRequestID(ctx context.Context, requestID string) context.Context {
	return context.WithValue(ctx, requestIDKey{}, requestID)
}

// Now returns the request time if one was injected, falling back to
// time.Now(). Services read the clock through this so tests can pin time.
func Now(ctx context.Context) time.Time {
	if t, ok := ctx.Value(requestTimeKey{}).(time.Time); ok {
		return t
	}
	return time.Now()
}

// WithTime pins the request clock. Middleware sets this once per request;
// tests use it to make time-dependent checks deterministic.
func WithTime(ctx context.Context, t time.Time) context.Context {
	return context.WithValue(ctx, requestTimeKey{}, t)
}

// Device retrieves the parsed device display name for the request.
func Device(ctx context.Context) string {
	if device, ok := ctx.Value(deviceKey{}).(string); ok {
		return device
	}
	return ""
}

// WithDevice injects a device display name into the context.
func WithDevice(ctx context.Context, device string) context.Context {
	return context.WithValue(ctx, deviceKey{}, device)
}

// Fingerprint retrieves the device fingerprint computed by middleware. Empty
// when fingerprinting is disabled.
func Fingerprint(ctx context.Context) string {
	if fp, ok := ctx.Value(fingerprintKey{}).(string); ok {
		return fp
	}
	return ""
}

// WithFingerprint injects a device fingerprint into the context.
func WithFingerprint(ctx context.Context, fingerprint string) context.Context {
	return context.WithValue(ctx, fingerprintKey{}, fingerprint)
}

// ClientIP retrieves the remote address recorded by middleware.
func ClientIP(ctx context.Context) string {
	if ip, ok := ctx.Value(clientIPKey{}).(string); ok {
		return ip
	}
	return ""
}

// WithClientIP injects the remote address into the context.
func WithClientIP(ctx context.Context, ip string) context.Context {
	return context.WithValue(ctx, clientIPKey{}, ip)
}
