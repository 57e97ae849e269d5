package middleware

import (
	"net"
	"net/http"
	"strings"
	"time"

	"memberd/internal/member/device"
	"memberd/pkg/requestcontext"
)

// RequestMeta pins the request clock and records the device label, device
// fingerprint, and client IP so services and audit events see consistent
// metadata.
func RequestMeta(devices *device.Service) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := requestcontext.WithTime(r.Context(), time.Now())
			ctx = requestcontext.WithDevice(ctx, device.ParseUserAgent(r.UserAgent()))
			if devices != nil {
				ctx = requestcontext.WithFingerprint(ctx, devices.ComputeFingerprint(r.UserAgent()))
			}
			ctx = requestcontext.WithClientIP(ctx, clientIP(r))
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// clientIP trusts X-Forwarded-For only for its first hop; deployments put a
// single proxy in front of this service.
func clientIP(r *http.Request) string {
	if forwarded := r.Header.Get("X-Forwarded-For"); forwarded != "" {
		first, _, _ := strings.Cut(forwarded, ",")
		return strings.TrimSpace(first)
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
