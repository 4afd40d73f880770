package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/phrazzld/thinkforge-api/internal/api/middleware"
	"github.com/phrazzld/thinkforge-api/internal/config"
	"github.com/phrazzld/thinkforge-api/internal/events"
	"github.com/phrazzld/thinkforge-api/internal/mocks"
	"github.com/phrazzld/thinkforge-api/internal/platform/logger"
	"github.com/phrazzld/thinkforge-api/internal/service"
	"github.com/phrazzld/thinkforge-api/internal/service/auth"
	"github.com/phrazzld/thinkforge-api/internal/session"
	"github.com/phrazzld/thinkforge-api/internal/store"
)

// testAPI wires the handlers onto in-memory collaborators. Access tokens
// are the user ID prefixed with "access:"; refresh tokens use "refresh:".
type testAPI struct {
	router    http.Handler
	users     *mocks.MockUserStore
	progress  *mocks.MockProgressStore
	paths     *mocks.MockPathStore
	generator *mocks.MockGenerator
	jwt       *mocks.MockJWTService
}

func newTestAPI(t *testing.T) *testAPI {
	t.Helper()

	log, _ := logger.NewCapturing()
	a := &testAPI{
		users:     mocks.NewMockUserStore(),
		progress:  mocks.NewMockProgressStore(),
		paths:     mocks.NewMockPathStore(),
		generator: &mocks.MockGenerator{Cards: mocks.Flashcards(5), ModuleList: mocks.Modules(3)},
	}
	a.jwt = &mocks.MockJWTService{
		GenerateTokenFn: func(_ context.Context, id uuid.UUID) (string, error) {
			return "access:" + id.String(), nil
		},
		GenerateRefreshTokenFn: func(_ context.Context, id uuid.UUID) (string, error) {
			return "refresh:" + id.String(), nil
		},
		ValidateTokenFn: func(_ context.Context, token string) (*auth.Claims, error) {
			return parseTestToken(token, "access:", auth.ErrInvalidToken)
		},
		ValidateRefreshTokenFn: func(_ context.Context, token string) (*auth.Claims, error) {
			return parseTestToken(token, "refresh:", auth.ErrInvalidRefreshToken)
		},
	}

	emitter := events.NewInMemoryEventEmitter(log)
	verifier := &mocks.MockPasswordVerifier{
		CompareFn: func(hashed, password string) error {
			if hashed != mocks.HashFor(password) {
				return errors.New("mismatch")
			}
			return nil
		},
	}
	inline := func(ctx context.Context, fn store.TxFn) error { return fn(ctx, nil) }

	users, err := service.NewUserService(a.users, a.progress, verifier, inline, log)
	require.NoError(t, err)
	paths, err := service.NewPathService(a.paths, a.generator, emitter, log)
	require.NoError(t, err)
	progress, err := service.NewProgressService(a.progress, a.paths, emitter, time.UTC, time.Minute, log)
	require.NoError(t, err)
	emitter.RegisterHandler(progress.CacheInvalidator())
	sessions := session.NewManager(a.generator, a.progress, emitter, log)

	authCfg := config.AuthConfig{TokenLifetimeMinutes: 60, RefreshTokenLifetimeMinutes: 1440}
	authHandler := NewAuthHandler(users, a.jwt, authCfg, log)
	flashcards := NewFlashcardHandler(sessions, log)
	pathHandler := NewPathHandler(paths, log)
	progressHandler := NewProgressHandler(progress, log)

	r := chi.NewRouter()
	r.Use(middleware.NewTraceMiddleware(log))
	r.Route("/api", func(r chi.Router) {
		r.Post("/auth/register", authHandler.Register)
		r.Post("/auth/login", authHandler.Login)
		r.Post("/auth/refresh", authHandler.RefreshToken)

		r.Group(func(r chi.Router) {
			r.Use(middleware.NewAuthMiddleware(a.jwt).Authenticate)
			r.Post("/flashcards/generate", flashcards.Generate)
			r.Get("/flashcards/session", flashcards.Session)
			r.Post("/flashcards/session/flip", flashcards.Flip)
			r.Post("/flashcards/session/next", flashcards.Next)
			r.Post("/flashcards/session/prev", flashcards.Prev)
			r.Get("/paths", pathHandler.List)
			r.Post("/paths", pathHandler.Create)
			r.Delete("/paths/{id}", pathHandler.Delete)
			r.Get("/dashboard", progressHandler.Dashboard)
			r.Post("/quiz-attempts", progressHandler.RecordQuizAttempt)
		})
	})
	a.router = r
	return a
}

func parseTestToken(token, prefix string, invalid error) (*auth.Claims, error) {
	if len(token) <= len(prefix) || token[:len(prefix)] != prefix {
		return nil, invalid
	}
	id, err := uuid.Parse(token[len(prefix):])
	if err != nil {
		return nil, invalid
	}
	return mocks.ClaimsFor(id), nil
}

// do sends body (marshaled unless it is a string) as userID. A nil user
// sends no Authorization header.
func (a *testAPI) do(t *testing.T, method, path string, userID uuid.UUID, body any) *httptest.ResponseRecorder {
	t.Helper()

	var buf bytes.Buffer
	switch b := body.(type) {
	case nil:
	case string:
		buf.WriteString(b)
	default:
		require.NoError(t, json.NewEncoder(&buf).Encode(b))
	}

	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if userID != uuid.Nil {
		req.Header.Set("Authorization", "Bearer access:"+userID.String())
	}
	w := httptest.NewRecorder()
	a.router.ServeHTTP(w, req)
	return w
}

func decodeBody[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()

	var v T
	require.NoError(t, json.NewDecoder(w.Body).Decode(&v), w.Body.String())
	return v
}
