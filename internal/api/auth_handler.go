package api

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/phrazzld/thinkforge-api/internal/api/shared"
	"github.com/phrazzld/thinkforge-api/internal/config"
	"github.com/phrazzld/thinkforge-api/internal/domain"
	"github.com/phrazzld/thinkforge-api/internal/platform/logger"
	"github.com/phrazzld/thinkforge-api/internal/redact"
	"github.com/phrazzld/thinkforge-api/internal/service/auth"
	"github.com/phrazzld/thinkforge-api/internal/store"
)

// UserAccounts is the account functionality the auth endpoints need.
type UserAccounts interface {
	Register(ctx context.Context, email, password string) (*domain.User, error)
	Authenticate(ctx context.Context, email, password string) (*domain.User, error)
	GetUser(ctx context.Context, userID uuid.UUID) (*domain.User, error)
}

// AuthHandler serves the identity endpoints.
type AuthHandler struct {
	users      UserAccounts
	jwtService auth.JWTService
	authConfig config.AuthConfig
	logger     *slog.Logger
	timeFunc   func() time.Time
}

// NewAuthHandler creates an AuthHandler. It panics on missing dependencies.
func NewAuthHandler(
	users UserAccounts,
	jwtService auth.JWTService,
	authConfig config.AuthConfig,
	logger *slog.Logger,
) *AuthHandler {
	if users == nil || jwtService == nil {
		panic("api: AuthHandler requires user accounts and a JWT service")
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &AuthHandler{
		users:      users,
		jwtService: jwtService,
		authConfig: authConfig,
		logger:     logger.With(slog.String("component", "auth_handler")),
		timeFunc:   time.Now,
	}
}

// Register handles POST /api/auth/register.
func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req RegisterRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	user, err := h.users.Register(r.Context(), req.Email, req.Password)
	if err != nil {
		HandleAPIError(w, r, err, "")
		return
	}

	resp, err := h.issueTokens(r.Context(), user.ID)
	if err != nil {
		h.tokenFailure(w, r, user.ID, err)
		return
	}
	shared.RespondWithJSON(w, r, http.StatusCreated, resp)
}

// Login handles POST /api/auth/login.
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	user, err := h.users.Authenticate(r.Context(), req.Email, req.Password)
	if err != nil {
		HandleAPIError(w, r, err, "")
		return
	}

	resp, err := h.issueTokens(r.Context(), user.ID)
	if err != nil {
		h.tokenFailure(w, r, user.ID, err)
		return
	}
	shared.RespondWithJSON(w, r, http.StatusOK, resp)
}

// RefreshToken handles POST /api/auth/refresh. A valid refresh token of an
// existing user is exchanged for a new token pair.
func (h *AuthHandler) RefreshToken(w http.ResponseWriter, r *http.Request) {
	var req RefreshTokenRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	claims, err := h.jwtService.ValidateRefreshToken(r.Context(), req.RefreshToken)
	if err != nil {
		if !errors.Is(err, auth.ErrInvalidRefreshToken) && !errors.Is(err, auth.ErrExpiredRefreshToken) &&
			!errors.Is(err, auth.ErrWrongTokenType) {
			err = errors.Join(auth.ErrInvalidRefreshToken, err)
		}
		HandleAPIError(w, r, err, "")
		return
	}

	if _, err := h.users.GetUser(r.Context(), claims.UserID); err != nil {
		if errors.Is(err, store.ErrUserNotFound) {
			HandleAPIError(w, r, errors.Join(auth.ErrInvalidRefreshToken, err), "")
			return
		}
		HandleAPIError(w, r, err, "")
		return
	}

	pair, err := h.issueTokens(r.Context(), claims.UserID)
	if err != nil {
		h.tokenFailure(w, r, claims.UserID, err)
		return
	}
	shared.RespondWithJSON(w, r, http.StatusOK, RefreshTokenResponse{
		AccessToken:  pair.AccessToken,
		RefreshToken: pair.RefreshToken,
		ExpiresAt:    pair.ExpiresAt,
	})
}

func (h *AuthHandler) issueTokens(ctx context.Context, userID uuid.UUID) (AuthResponse, error) {
	expiresAt := h.timeFunc().Add(h.authConfig.TokenLifetime())

	access, err := h.jwtService.GenerateToken(ctx, userID)
	if err != nil {
		return AuthResponse{}, err
	}
	refresh, err := h.jwtService.GenerateRefreshToken(ctx, userID)
	if err != nil {
		return AuthResponse{}, err
	}
	return AuthResponse{
		UserID:       userID,
		AccessToken:  access,
		RefreshToken: refresh,
		ExpiresAt:    expiresAt.UTC().Format(time.RFC3339),
	}, nil
}

func (h *AuthHandler) tokenFailure(w http.ResponseWriter, r *http.Request, userID uuid.UUID, err error) {
	logger.FromContextOrDefault(r.Context(), h.logger).Error("failed to generate tokens",
		slog.String("user_id", userID.String()),
		redact.Attr(err))
	shared.RespondWithError(w, r, http.StatusInternalServerError, "Failed to generate authentication token")
}
