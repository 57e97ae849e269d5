// Package handler exposes the member account endpoints.
package handler

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"memberd/internal/member/device"
	"memberd/internal/member/models"
	"memberd/internal/member/service"
	"memberd/internal/platform/middleware"
	"memberd/internal/transport/http/shared"
	id "memberd/pkg/domain"
	dErrors "memberd/pkg/domain-errors"
	"memberd/pkg/requestcontext"
)

// Service defines the member operations consumed by this handler.
type Service interface {
	Register(ctx context.Context, req service.RegisterRequest) (*models.Member, error)
	CheckAvailability(ctx context.Context, loginID string) (bool, error)
	Authenticate(ctx context.Context, loginID, rawPassword string) (models.Principal, error)
	ChangePassword(ctx context.Context, memberID id.MemberID, currentPassword, newPassword string) error
	GetProfile(ctx context.Context, memberID id.MemberID) (service.Profile, error)
}

// TokenIssuer signs access tokens for authenticated members.
type TokenIssuer interface {
	Issue(ctx context.Context, memberID id.MemberID, loginID string) (string, error)
	TTL() time.Duration
}

// Handler handles member account endpoints.
type Handler struct {
	logger    *slog.Logger
	members   Service
	tokens    TokenIssuer
	validator middleware.TokenValidator
	devices   *device.Service
}

// New creates a member Handler.
func New(members Service, tokens TokenIssuer, validator middleware.TokenValidator, devices *device.Service, logger *slog.Logger) *Handler {
	return &Handler{
		logger:    logger,
		members:   members,
		tokens:    tokens,
		validator: validator,
		devices:   devices,
	}
}

// Register registers the member routes with the chi router. Public routes
// and authenticated routes carry different middleware chains.
func (h *Handler) Register(r chi.Router) {
	r.Post("/members", h.handleRegister)
	r.Get("/members/availability", h.handleAvailability)
	r.Post("/auth/login", h.handleLogin)

	r.Group(func(r chi.Router) {
		r.Use(middleware.RequireAuth(h.validator, h.devices, h.logger))
		r.Get("/members/me", h.handleGetProfile)
		r.Put("/members/me/password", h.handleChangePassword)
	})
}

func (h *Handler) handleRegister(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req registerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		shared.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "invalid request body"))
		return
	}

	member, err := h.members.Register(ctx, service.RegisterRequest{
		LoginID:   req.LoginID,
		Password:  req.Password,
		Name:      req.Name,
		BirthDate: req.BirthDate,
		Email:     req.Email,
	})
	if err != nil {
		if dErrors.HasCode(err, dErrors.CodeInternal) {
			h.logger.ErrorContext(ctx, "register failed",
				"request_id", middleware.GetRequestID(ctx),
				"error", err.Error(),
			)
		}
		shared.WriteError(w, err)
		return
	}

	shared.WriteJSON(w, http.StatusCreated, registerResponse{
		MemberID: member.ID.String(),
		LoginID:  member.LoginID.String(),
	})
}

func (h *Handler) handleAvailability(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	loginID := r.URL.Query().Get("login_id")
	available, err := h.members.CheckAvailability(ctx, loginID)
	if err != nil {
		if dErrors.HasCode(err, dErrors.CodeInternal) {
			h.logger.ErrorContext(ctx, "availability check failed",
				"request_id", middleware.GetRequestID(ctx),
				"error", err.Error(),
			)
		}
		shared.WriteError(w, err)
		return
	}

	shared.WriteJSON(w, http.StatusOK, availabilityResponse{
		LoginID:   loginID,
		Available: available,
	})
}

func (h *Handler) handleLogin(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req loginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		shared.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "invalid request body"))
		return
	}

	principal, err := h.members.Authenticate(ctx, req.LoginID, req.Password)
	if err != nil {
		shared.WriteError(w, err)
		return
	}

	tokenString, err := h.tokens.Issue(ctx, principal.MemberID, principal.LoginID.String())
	if err != nil {
		h.logger.ErrorContext(ctx, "token issue failed",
			"request_id", middleware.GetRequestID(ctx),
			"error", err.Error(),
		)
		shared.WriteError(w, dErrors.New(dErrors.CodeInternal, "failed to issue token"))
		return
	}

	shared.WriteJSON(w, http.StatusOK, loginResponse{
		AccessToken: tokenString,
		TokenType:   "Bearer",
		ExpiresIn:   int64(h.tokens.TTL().Seconds()),
	})
}

func (h *Handler) handleGetProfile(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	memberID := requestcontext.MemberID(ctx)
	profile, err := h.members.GetProfile(ctx, memberID)
	if err != nil {
		shared.WriteError(w, err)
		return
	}

	shared.WriteJSON(w, http.StatusOK, profileResponse{
		MemberID:  profile.MemberID.String(),
		LoginID:   profile.LoginID,
		Name:      profile.Name,
		BirthDate: profile.BirthDate,
		Email:     profile.Email,
	})
}

func (h *Handler) handleChangePassword(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req changePasswordRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		shared.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "invalid request body"))
		return
	}

	memberID := requestcontext.MemberID(ctx)
	if err := h.members.ChangePassword(ctx, memberID, req.CurrentPassword, req.NewPassword); err != nil {
		if dErrors.HasCode(err, dErrors.CodeInternal) {
			h.logger.ErrorContext(ctx, "password change failed",
				"request_id", middleware.GetRequestID(ctx),
				"error", err.Error(),
			)
		}
		shared.WriteError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
