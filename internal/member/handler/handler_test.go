package handler_test

import (
	"bytes"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"memberd/internal/member/device"
	memberhandler "memberd/internal/member/handler"
	"memberd/internal/member/password"
	"memberd/internal/member/service"
	"memberd/internal/member/store"
	"memberd/internal/platform/metrics"
	"memberd/internal/token"
	httptransport "memberd/internal/transport/http"
	"memberd/pkg/platform/audit/publisher"
	auditmemory "memberd/pkg/platform/audit/store/memory"
)

// One registry-backed metrics instance for the whole test binary; promauto
// panics on duplicate registration.
var testMetrics = metrics.New()

type HandlerSuite struct {
	suite.Suite
	server  *httptest.Server
	tokens  *token.Service
	devices *device.Service
}

func TestHandlerSuite(t *testing.T) {
	suite.Run(t, new(HandlerSuite))
}

func (s *HandlerSuite) SetupTest() {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	members := store.NewInMemory()
	auditor := publisher.NewPublisher(auditmemory.NewInMemoryStore())
	svc := service.NewService(members, password.PlainHasher{}, auditor, service.WithLogger(logger))
	s.tokens = token.NewService("test-signing-key-32-bytes-long!!!", "memberd-test", 15*time.Minute)
	s.devices = device.NewService(true)

	h := memberhandler.New(svc, s.tokens, s.tokens, s.devices, logger)
	router := httptransport.NewRouter(httptransport.Deps{
		Logger:  logger,
		Metrics: testMetrics,
		Devices: s.devices,
		Members: h,
	})

	s.server = httptest.NewServer(router)
	s.T().Cleanup(s.server.Close)
}

func (s *HandlerSuite) postJSON(path string, payload any, headers map[string]string) *http.Response {
	return s.doJSON(http.MethodPost, path, payload, headers)
}

func (s *HandlerSuite) doJSON(method, path string, payload any, headers map[string]string) *http.Response {
	var body io.Reader
	if payload != nil {
		raw, err := json.Marshal(payload)
		s.Require().NoError(err)
		body = bytes.NewReader(raw)
	}

	req, err := http.NewRequest(method, s.server.URL+path, body)
	s.Require().NoError(err)
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	resp, err := s.server.Client().Do(req)
	s.Require().NoError(err)
	s.T().Cleanup(func() { _ = resp.Body.Close() })
	return resp
}

func (s *HandlerSuite) decode(resp *http.Response, out any) {
	s.Require().NoError(json.NewDecoder(resp.Body).Decode(out))
}

func validSignup() map[string]string {
	return map[string]string{
		"login_id":   "alice01",
		"password":   "Str0ng!pass",
		"name":       "Alice",
		"birth_date": "1990-06-15",
		"email":      "alice@example.com",
	}
}

// register-then-login helper returning a bearer token.
func (s *HandlerSuite) signupAndLogin() string {
	resp := s.postJSON("/members", validSignup(), nil)
	s.Require().Equal(http.StatusCreated, resp.StatusCode)

	resp = s.postJSON("/auth/login", map[string]string{
		"login_id": "alice01",
		"password": "Str0ng!pass",
	}, nil)
	s.Require().Equal(http.StatusOK, resp.StatusCode)

	var login struct {
		AccessToken string `json:"access_token"`
	}
	s.decode(resp, &login)
	s.Require().NotEmpty(login.AccessToken)
	return login.AccessToken
}

func (s *HandlerSuite) TestRegister() {
	s.Run("valid signup returns 201 with member id", func() {
		resp := s.postJSON("/members", validSignup(), nil)
		s.Equal(http.StatusCreated, resp.StatusCode)

		var created struct {
			MemberID string `json:"member_id"`
			LoginID  string `json:"login_id"`
		}
		s.decode(resp, &created)
		s.NotEmpty(created.MemberID)
		s.Equal("alice01", created.LoginID)
	})

	s.Run("duplicate login id returns 409", func() {
		resp := s.postJSON("/members", validSignup(), nil)
		s.Equal(http.StatusConflict, resp.StatusCode)
	})

	s.Run("case-insensitive duplicate returns 409", func() {
		signup := validSignup()
		signup["login_id"] = "ALICE01"
		resp := s.postJSON("/members", signup, nil)
		s.Equal(http.StatusConflict, resp.StatusCode)
	})
}

func (s *HandlerSuite) TestRegister_Validation() {
	cases := []struct {
		name   string
		mutate func(map[string]string)
	}{
		{"short login id", func(m map[string]string) { m["login_id"] = "ab1" }},
		{"weak password", func(m map[string]string) { m["password"] = "short" }},
		{"password with birth date", func(m map[string]string) { m["password"] = "pw19900615!" }},
		{"bad birth date", func(m map[string]string) { m["birth_date"] = "June 15 1990" }},
		{"bad email", func(m map[string]string) { m["email"] = "not-an-email" }},
	}
	for _, tc := range cases {
		s.Run(tc.name, func() {
			signup := validSignup()
			tc.mutate(signup)
			resp := s.postJSON("/members", signup, nil)
			s.Equal(http.StatusBadRequest, resp.StatusCode)
		})
	}

	s.Run("malformed json returns 400", func() {
		req, err := http.NewRequest(http.MethodPost, s.server.URL+"/members", bytes.NewReader([]byte("{")))
		s.Require().NoError(err)
		req.Header.Set("Content-Type", "application/json")
		resp, err := s.server.Client().Do(req)
		s.Require().NoError(err)
		defer resp.Body.Close()
		s.Equal(http.StatusBadRequest, resp.StatusCode)
	})

	s.Run("non-json body returns 415", func() {
		req, err := http.NewRequest(http.MethodPost, s.server.URL+"/members", bytes.NewReader([]byte("login_id=alice01")))
		s.Require().NoError(err)
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
		resp, err := s.server.Client().Do(req)
		s.Require().NoError(err)
		defer resp.Body.Close()
		s.Equal(http.StatusUnsupportedMediaType, resp.StatusCode)
	})
}

func (s *HandlerSuite) TestAvailability() {
	s.Run("free login id is available", func() {
		resp := s.doJSON(http.MethodGet, "/members/availability?login_id=alice01", nil, nil)
		s.Require().Equal(http.StatusOK, resp.StatusCode)

		var body struct {
			LoginID   string `json:"login_id"`
			Available bool   `json:"available"`
		}
		s.decode(resp, &body)
		s.Equal("alice01", body.LoginID)
		s.True(body.Available)
	})

	s.Run("taken login id is unavailable, case-insensitively", func() {
		resp := s.postJSON("/members", validSignup(), nil)
		s.Require().Equal(http.StatusCreated, resp.StatusCode)

		resp = s.doJSON(http.MethodGet, "/members/availability?login_id=ALICE01", nil, nil)
		s.Require().Equal(http.StatusOK, resp.StatusCode)

		var body struct {
			Available bool `json:"available"`
		}
		s.decode(resp, &body)
		s.False(body.Available)
	})

	s.Run("blank login id returns 400", func() {
		resp := s.doJSON(http.MethodGet, "/members/availability", nil, nil)
		s.Equal(http.StatusBadRequest, resp.StatusCode)
	})
}

func (s *HandlerSuite) TestLogin() {
	resp := s.postJSON("/members", validSignup(), nil)
	s.Require().Equal(http.StatusCreated, resp.StatusCode)

	s.Run("valid credentials return a bearer token", func() {
		resp := s.postJSON("/auth/login", map[string]string{
			"login_id": "alice01",
			"password": "Str0ng!pass",
		}, nil)
		s.Require().Equal(http.StatusOK, resp.StatusCode)

		var login struct {
			AccessToken string `json:"access_token"`
			TokenType   string `json:"token_type"`
			ExpiresIn   int64  `json:"expires_in"`
		}
		s.decode(resp, &login)
		s.Equal("Bearer", login.TokenType)
		s.Equal(int64(15*60), login.ExpiresIn)

		principal, err := s.tokens.Principal(login.AccessToken)
		s.Require().NoError(err)
		s.False(principal.MemberID.Nil())
		s.Equal("alice01", principal.LoginID)
	})

	s.Run("wrong password and unknown id are indistinguishable", func() {
		wrongPassword := s.postJSON("/auth/login", map[string]string{
			"login_id": "alice01", "password": "wrong!pass1",
		}, nil)
		unknownID := s.postJSON("/auth/login", map[string]string{
			"login_id": "nobody99", "password": "wrong!pass1",
		}, nil)

		s.Equal(http.StatusUnauthorized, wrongPassword.StatusCode)
		s.Equal(http.StatusUnauthorized, unknownID.StatusCode)

		first, err := io.ReadAll(wrongPassword.Body)
		s.Require().NoError(err)
		second, err := io.ReadAll(unknownID.Body)
		s.Require().NoError(err)
		s.Equal(string(first), string(second))
	})
}

func (s *HandlerSuite) TestProfile() {
	tokenString := s.signupAndLogin()

	s.Run("authenticated profile has masked name", func() {
		resp := s.doJSON(http.MethodGet, "/members/me", nil, map[string]string{
			"Authorization": "Bearer " + tokenString,
		})
		s.Require().Equal(http.StatusOK, resp.StatusCode)

		var profile struct {
			LoginID   string `json:"login_id"`
			Name      string `json:"name"`
			BirthDate string `json:"birth_date"`
		}
		s.decode(resp, &profile)
		s.Equal("alice01", profile.LoginID)
		s.Equal("A****", profile.Name)
		s.Equal("1990-06-15", profile.BirthDate)
	})

	s.Run("missing token returns 401", func() {
		resp := s.doJSON(http.MethodGet, "/members/me", nil, nil)
		s.Equal(http.StatusUnauthorized, resp.StatusCode)
	})

	s.Run("garbage token returns 401", func() {
		resp := s.doJSON(http.MethodGet, "/members/me", nil, map[string]string{
			"Authorization": "Bearer not-a-token",
		})
		s.Equal(http.StatusUnauthorized, resp.StatusCode)
	})
}

func (s *HandlerSuite) TestDeviceFingerprint() {
	const chromeUA = "Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36"
	const firefoxUA = "Mozilla/5.0 (X11; Linux x86_64; rv:121.0) Gecko/20100101 Firefox/121.0"

	resp := s.postJSON("/members", validSignup(), nil)
	s.Require().Equal(http.StatusCreated, resp.StatusCode)

	resp = s.postJSON("/auth/login", map[string]string{
		"login_id": "alice01", "password": "Str0ng!pass",
	}, map[string]string{"User-Agent": chromeUA})
	s.Require().Equal(http.StatusOK, resp.StatusCode)

	var login struct {
		AccessToken string `json:"access_token"`
	}
	s.decode(resp, &login)

	s.Run("token pins the fingerprint of the login device", func() {
		principal, err := s.tokens.Principal(login.AccessToken)
		s.Require().NoError(err)
		s.Equal(s.devices.ComputeFingerprint(chromeUA), principal.Fingerprint)
		s.NotEmpty(principal.Fingerprint)
	})

	s.Run("drifted device is logged but still served", func() {
		resp := s.doJSON(http.MethodGet, "/members/me", nil, map[string]string{
			"Authorization": "Bearer " + login.AccessToken,
			"User-Agent":    firefoxUA,
		})
		s.Equal(http.StatusOK, resp.StatusCode)
	})
}

func (s *HandlerSuite) TestChangePassword() {
	tokenString := s.signupAndLogin()
	auth := map[string]string{"Authorization": "Bearer " + tokenString}

	s.Run("happy path rotates the credential", func() {
		resp := s.doJSON(http.MethodPut, "/members/me/password", map[string]string{
			"current_password": "Str0ng!pass",
			"new_password":     "N3w!password",
		}, auth)
		s.Require().Equal(http.StatusNoContent, resp.StatusCode)

		// Old password no longer works, new one does.
		old := s.postJSON("/auth/login", map[string]string{
			"login_id": "alice01", "password": "Str0ng!pass",
		}, nil)
		s.Equal(http.StatusUnauthorized, old.StatusCode)

		fresh := s.postJSON("/auth/login", map[string]string{
			"login_id": "alice01", "password": "N3w!password",
		}, nil)
		s.Equal(http.StatusOK, fresh.StatusCode)
	})

	s.Run("wrong current password returns 401", func() {
		resp := s.doJSON(http.MethodPut, "/members/me/password", map[string]string{
			"current_password": "guess!pass1",
			"new_password":     "An0ther!pw",
		}, auth)
		s.Equal(http.StatusUnauthorized, resp.StatusCode)
	})

	s.Run("reusing the current password returns 409", func() {
		resp := s.doJSON(http.MethodPut, "/members/me/password", map[string]string{
			"current_password": "N3w!password",
			"new_password":     "N3w!password",
		}, auth)
		s.Equal(http.StatusConflict, resp.StatusCode)
	})

	s.Run("policy-rejected new password returns 400", func() {
		resp := s.doJSON(http.MethodPut, "/members/me/password", map[string]string{
			"current_password": "N3w!password",
			"new_password":     "short",
		}, auth)
		s.Equal(http.StatusBadRequest, resp.StatusCode)
	})
}

func (s *HandlerSuite) TestHealthz() {
	resp := s.doJSON(http.MethodGet, "/healthz", nil, nil)
	s.Equal(http.StatusOK, resp.StatusCode)
}
