// Package token issues and validates the signed access tokens returned by
// login.
package token

import (
	"context"
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	id "memberd/pkg/domain"
	dErrors "memberd/pkg/domain-errors"
	"memberd/pkg/requestcontext"
)

// Validation failures are reported as one of these two values so callers can
// distinguish an expired token (client should re-authenticate) from a
// malformed or tampered one.
var (
	ErrTokenExpired = dErrors.New(dErrors.CodeUnauthorized, "token has expired")
	ErrTokenInvalid = dErrors.New(dErrors.CodeUnauthorized, "invalid token")
)

// Claims carried by an access token. Subject holds the member ID. Fingerprint
// pins the device the token was issued to; empty when fingerprinting is off.
type Claims struct {
	LoginID     string `json:"login_id"`
	Fingerprint string `json:"fp,omitempty"`
	jwt.RegisteredClaims
}

// Service signs and validates HS256 access tokens.
type Service struct {
	signingKey []byte
	issuer     string
	ttl        time.Duration
}

func NewService(signingKey string, issuer string, ttl time.Duration) *Service {
	return &Service{
		signingKey: []byte(signingKey),
		issuer:     issuer,
		ttl:        ttl,
	}
}

// TTL returns the configured token lifetime.
func (s *Service) TTL() time.Duration {
	return s.ttl
}

// Issue signs an access token for the authenticated member. Issued-at comes
// from the request clock so callers control time in tests.
func (s *Service) Issue(ctx context.Context, memberID id.MemberID, loginID string) (string, error) {
	now := requestcontext.Now(ctx)

	newToken := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{
		LoginID:     loginID,
		Fingerprint: requestcontext.Fingerprint(ctx),
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   memberID.String(),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.ttl)),
			IssuedAt:  jwt.NewNumericDate(now),
			Issuer:    s.issuer,
			ID:        uuid.NewString(),
		},
	})

	signedToken, err := newToken.SignedString(s.signingKey)
	if err != nil {
		return "", dErrors.Wrap(err, dErrors.CodeInternal, "sign access token")
	}
	return signedToken, nil
}

// Validate parses and verifies a token string.
//
// Errors: ErrTokenExpired when the token is well-formed but past its expiry;
// ErrTokenInvalid for every other failure, including a non-HMAC signing
// method, a bad signature, and a wrong issuer.
func (s *Service) Validate(tokenString string) (*Claims, error) {
	parsed, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (any, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, jwt.ErrTokenUnverifiable
		}
		return s.signingKey, nil
	}, jwt.WithIssuer(s.issuer), jwt.WithStrictDecoding())

	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, ErrTokenExpired
		}
		return nil, ErrTokenInvalid
	}

	if !parsed.Valid {
		return nil, ErrTokenInvalid
	}

	claims, ok := parsed.Claims.(*Claims)
	if !ok {
		return nil, ErrTokenInvalid
	}

	return claims, nil
}

// Principal identifies the member a token was issued for, plus the device
// fingerprint captured at issue time.
type Principal struct {
	MemberID    id.MemberID
	LoginID     string
	Fingerprint string
}

// Principal resolves a validated token to the member it was issued for.
func (s *Service) Principal(tokenString string) (Principal, error) {
	claims, err := s.Validate(tokenString)
	if err != nil {
		return Principal{}, err
	}
	memberID, err := id.ParseMemberID(claims.Subject)
	if err != nil {
		return Principal{}, ErrTokenInvalid
	}
	return Principal{
		MemberID:    memberID,
		LoginID:     claims.LoginID,
		Fingerprint: claims.Fingerprint,
	}, nil
}
