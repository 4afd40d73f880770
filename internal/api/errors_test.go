package api

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"

	"github.com/phrazzld/thinkforge-api/internal/domain"
	"github.com/phrazzld/thinkforge-api/internal/generation"
	"github.com/phrazzld/thinkforge-api/internal/service/auth"
	"github.com/phrazzld/thinkforge-api/internal/store"
)

func TestMapErrorToStatusCode(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		err  error
		want int
	}{
		{"validation", domain.NewValidationError("topic", "must not be empty"), http.StatusBadRequest},
		{"wrapped validation", fmt.Errorf("register: %w", domain.ErrValidation), http.StatusBadRequest},
		{"invalid entity", store.ErrInvalidEntity, http.StatusBadRequest},
		{"not authenticated", domain.ErrNotAuthenticated, http.StatusUnauthorized},
		{"invalid credentials", auth.ErrInvalidCredentials, http.StatusUnauthorized},
		{"expired token", auth.ErrExpiredToken, http.StatusUnauthorized},
		{"path not found", domain.ErrPathNotFound, http.StatusNotFound},
		{"user not found", store.ErrUserNotFound, http.StatusNotFound},
		{"email exists", store.ErrEmailExists, http.StatusConflict},
		{"generation", fmt.Errorf("%w: %w", domain.ErrGeneration, generation.ErrInvalidResponse), http.StatusBadGateway},
		{"store", fmt.Errorf("%w: insert: %w", domain.ErrStore, errors.New("boom")), http.StatusInternalServerError},
		{"unknown", errors.New("boom"), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, MapErrorToStatusCode(tt.err))
		})
	}
}

func TestGetSafeErrorMessage_NeverLeaksCauses(t *testing.T) {
	t.Parallel()

	secret := errors.New(`pq: password authentication failed for user "admin" at 10.1.2.3`)
	for _, err := range []error{
		fmt.Errorf("%w: get progress: %w", domain.ErrStore, secret),
		fmt.Errorf("%w: %w", domain.ErrGeneration, secret),
		fmt.Errorf("%w: %w", domain.ErrValidation, secret),
		secret,
	} {
		msg := GetSafeErrorMessage(err)
		assert.NotContains(t, msg, "10.1.2.3")
		assert.NotContains(t, msg, "admin")
	}

	assert.Equal(t, "An unexpected error occurred", GetSafeErrorMessage(nil))
	assert.Equal(t, "Invalid topic: must not be empty",
		GetSafeErrorMessage(domain.NewValidationError("topic", "must not be empty")))
	assert.Equal(t, "Invalid user data: invalid email format",
		GetSafeErrorMessage(fmt.Errorf("%w: %w", domain.ErrValidation, domain.ErrInvalidEmail)))
}

func TestSanitizeValidationError(t *testing.T) {
	t.Parallel()

	v := validator.New()
	err := v.Struct(RegisterRequest{Email: "ada@example.com"})
	assert.Equal(t, "Invalid password: required field", SanitizeValidationError(err))
	assert.Equal(t, "Validation error", SanitizeValidationError(errors.New("other")))
}
