package api

import (
	"time"

	"github.com/google/uuid"

	"github.com/phrazzld/thinkforge-api/internal/domain"
	"github.com/phrazzld/thinkforge-api/internal/service"
)

// RegisterRequest is the payload of POST /api/auth/register.
type RegisterRequest struct {
	Email    string `json:"email"    validate:"required,email"`
	Password string `json:"password" validate:"required,min=12,max=72"`
}

// LoginRequest is the payload of POST /api/auth/login.
type LoginRequest struct {
	Email    string `json:"email"    validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// RefreshTokenRequest is the payload of POST /api/auth/refresh.
type RefreshTokenRequest struct {
	RefreshToken string `json:"refresh_token" validate:"required"`
}

// AuthResponse is returned by register and login.
type AuthResponse struct {
	UserID       uuid.UUID `json:"user_id"`
	AccessToken  string    `json:"token"`
	RefreshToken string    `json:"refresh_token,omitempty"`
	// ExpiresAt is the RFC 3339 expiry of the access token.
	ExpiresAt string `json:"expires_at,omitempty"`
}

// RefreshTokenResponse is returned by the refresh endpoint.
type RefreshTokenResponse struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	ExpiresAt    string `json:"expires_at"`
}

// GenerateFlashcardsRequest is the payload of POST /api/flashcards/generate.
type GenerateFlashcardsRequest struct {
	Topic string `json:"topic"`
	Count int    `json:"count"`
}

// CreatePathRequest is the payload of POST /api/paths.
type CreatePathRequest struct {
	Topic string `json:"topic"`
}

// PathListResponse is the in-progress path listing. Stale is set when the
// listing could not be refreshed after a successful change.
type PathListResponse struct {
	Paths []*domain.LearningPath `json:"paths"`
	Stale bool                   `json:"stale,omitempty"`
}

// CreatePathResponse carries the new path and the refreshed listing.
type CreatePathResponse struct {
	Path *domain.LearningPath `json:"path"`
	PathListResponse
}

// QuizAttemptRequest is the payload of POST /api/quiz-attempts. A missing
// date means now.
type QuizAttemptRequest struct {
	Accuracy *float64  `json:"accuracy" validate:"required"`
	Date     time.Time `json:"date"`
}

func listingResponse(l service.PathListing) PathListResponse {
	paths := l.Paths
	if paths == nil {
		paths = []*domain.LearningPath{}
	}
	return PathListResponse{Paths: paths, Stale: l.Stale}
}
