package middleware

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/phrazzld/thinkforge-api/internal/api/shared"
	"github.com/phrazzld/thinkforge-api/internal/domain"
	"github.com/phrazzld/thinkforge-api/internal/mocks"
	"github.com/phrazzld/thinkforge-api/internal/platform/logger"
	"github.com/phrazzld/thinkforge-api/internal/service/auth"
)

func TestAuthMiddleware_Authenticate(t *testing.T) {
	t.Parallel()

	userID := uuid.New()

	tests := []struct {
		name       string
		header     string
		validate   func(context.Context, string) (*auth.Claims, error)
		wantStatus int
		wantUser   bool
	}{
		{
			name:       "missing header",
			wantStatus: http.StatusUnauthorized,
		},
		{
			name:       "wrong scheme",
			header:     "Basic dXNlcjpwYXNz",
			wantStatus: http.StatusUnauthorized,
		},
		{
			name:       "bearer without token",
			header:     "Bearer   ",
			wantStatus: http.StatusUnauthorized,
		},
		{
			name:   "expired token",
			header: "Bearer expired",
			validate: func(context.Context, string) (*auth.Claims, error) {
				return nil, auth.ErrExpiredToken
			},
			wantStatus: http.StatusUnauthorized,
		},
		{
			name:   "refresh token used as access token",
			header: "Bearer refresh",
			validate: func(context.Context, string) (*auth.Claims, error) {
				return nil, auth.ErrWrongTokenType
			},
			wantStatus: http.StatusUnauthorized,
		},
		{
			name:   "unexpected validation failure",
			header: "Bearer token",
			validate: func(context.Context, string) (*auth.Claims, error) {
				return nil, errors.New("key store offline")
			},
			wantStatus: http.StatusInternalServerError,
		},
		{
			name:   "valid token",
			header: "bearer good",
			validate: func(_ context.Context, token string) (*auth.Claims, error) {
				if token != "good" {
					return nil, auth.ErrInvalidToken
				}
				return mocks.ClaimsFor(userID), nil
			},
			wantStatus: http.StatusOK,
			wantUser:   true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			jwtSvc := &mocks.MockJWTService{ValidateTokenFn: tt.validate}
			var seen uuid.UUID
			next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				id, err := CurrentUser(r.Context())
				require.NoError(t, err)
				seen = id
				w.WriteHeader(http.StatusOK)
			})

			r := httptest.NewRequest(http.MethodGet, "/api/dashboard", nil)
			if tt.header != "" {
				r.Header.Set("Authorization", tt.header)
			}
			w := httptest.NewRecorder()
			NewAuthMiddleware(jwtSvc).Authenticate(next).ServeHTTP(w, r)

			assert.Equal(t, tt.wantStatus, w.Code)
			if tt.wantUser {
				assert.Equal(t, userID, seen)
			} else {
				assert.Equal(t, uuid.Nil, seen)
			}
		})
	}
}

func TestCurrentUser_Unauthenticated(t *testing.T) {
	t.Parallel()

	_, err := CurrentUser(context.Background())
	assert.ErrorIs(t, err, domain.ErrNotAuthenticated)
}

func TestTraceMiddleware(t *testing.T) {
	t.Parallel()

	log, buf := logger.NewCapturing()
	var traceID string
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		traceID = shared.GetTraceID(r.Context())
		logger.FromContext(r.Context()).Info("inside handler")
	})

	r := httptest.NewRequest(http.MethodGet, "/health", nil)
	NewTraceMiddleware(log)(next).ServeHTTP(httptest.NewRecorder(), r)

	require.NotEmpty(t, traceID)
	entries, err := buf.Entries()
	require.NoError(t, err)
	require.Len(t, entries, 2)
	for _, e := range entries {
		assert.Equal(t, traceID, e["trace_id"])
	}
}
