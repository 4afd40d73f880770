package main

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/phrazzld/thinkforge-api/internal/api"
	apiMiddleware "github.com/phrazzld/thinkforge-api/internal/api/middleware"
	"github.com/phrazzld/thinkforge-api/internal/api/shared"
)

const healthCheckTimeout = 2 * time.Second

// pinger reports whether the database is reachable.
type pinger interface {
	PingContext(ctx context.Context) error
}

// setupRouter registers middleware and routes.
func (app *application) setupRouter() http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(apiMiddleware.NewTraceMiddleware(app.logger))

	authHandler := api.NewAuthHandler(app.userService, app.jwtService, app.config.Auth, app.logger)
	authMiddleware := apiMiddleware.NewAuthMiddleware(app.jwtService)
	flashcardHandler := api.NewFlashcardHandler(app.sessions, app.logger)
	pathHandler := api.NewPathHandler(app.pathService, app.logger)
	progressHandler := api.NewProgressHandler(app.progressService, app.logger)

	r.Route("/api", func(r chi.Router) {
		r.Post("/auth/register", authHandler.Register)
		r.Post("/auth/login", authHandler.Login)
		r.Post("/auth/refresh", authHandler.RefreshToken)

		r.Group(func(r chi.Router) {
			r.Use(authMiddleware.Authenticate)

			r.Post("/flashcards/generate", flashcardHandler.Generate)
			r.Get("/flashcards/session", flashcardHandler.Session)
			r.Post("/flashcards/session/flip", flashcardHandler.Flip)
			r.Post("/flashcards/session/next", flashcardHandler.Next)
			r.Post("/flashcards/session/prev", flashcardHandler.Prev)

			r.Get("/paths", pathHandler.List)
			r.Post("/paths", pathHandler.Create)
			r.Delete("/paths/{id}", pathHandler.Delete)

			r.Get("/dashboard", progressHandler.Dashboard)
			r.Post("/quiz-attempts", progressHandler.RecordQuizAttempt)
		})
	})

	var db pinger
	if app.db != nil {
		db = app.db
	}
	r.Get("/health", healthHandler(db))

	return r
}

// healthHandler reports 200 when the database answers a ping and 503
// otherwise. A nil db is reported healthy.
func healthHandler(db pinger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if db != nil {
			ctx, cancel := context.WithTimeout(r.Context(), healthCheckTimeout)
			defer cancel()
			if err := db.PingContext(ctx); err != nil {
				shared.RespondWithErrorAndLog(w, r, http.StatusServiceUnavailable, "Database unavailable", err)
				return
			}
		}
		shared.RespondWithJSON(w, r, http.StatusOK, map[string]string{"status": "ok"})
	}
}
