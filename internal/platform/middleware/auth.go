package middleware

import (
	"log/slog"
	"net/http"
	"strings"

	"memberd/internal/member/device"
	"memberd/internal/token"
	"memberd/pkg/requestcontext"
)

// TokenValidator resolves a bearer token to the member it was issued for.
type TokenValidator interface {
	Principal(tokenString string) (token.Principal, error)
}

// RequireAuth rejects requests without a valid bearer token and stores the
// resolved member identity in the request context. When the request device
// fingerprint drifts from the one the token was issued to, the request is
// logged but still served; drift alone is not proof of theft.
func RequireAuth(validator TokenValidator, devices *device.Service, logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()

			tokenString, ok := strings.CutPrefix(r.Header.Get("Authorization"), "Bearer ")
			if !ok || tokenString == "" {
				logger.WarnContext(ctx, "unauthorized access - missing token",
					"request_id", GetRequestID(ctx),
				)
				writeUnauthorized(w, "Missing or invalid Authorization header")
				return
			}

			principal, err := validator.Principal(tokenString)
			if err != nil {
				logger.WarnContext(ctx, "unauthorized access - invalid token",
					"error", err,
					"request_id", GetRequestID(ctx),
				)
				writeUnauthorized(w, "Invalid or expired token")
				return
			}

			if devices != nil {
				if _, drift := devices.CompareFingerprints(principal.Fingerprint, requestcontext.Fingerprint(ctx)); drift {
					logger.WarnContext(ctx, "device fingerprint drift",
						"member_id", principal.MemberID.String(),
						"device", requestcontext.Device(ctx),
						"request_id", GetRequestID(ctx),
					)
				}
			}

			ctx = requestcontext.WithMemberID(ctx, principal.MemberID)
			ctx = requestcontext.WithLoginID(ctx, principal.LoginID)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func writeUnauthorized(w http.ResponseWriter, description string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusUnauthorized)
	_, _ = w.Write([]byte(`{"error":"unauthorized","error_description":"` + description + `"}`))
}
