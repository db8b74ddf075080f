package router

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/itchan-dev/threads/backend/internal/setup"
	mw "github.com/itchan-dev/threads/shared/middleware"
	"github.com/itchan-dev/threads/shared/middleware/metrics"
	rl "github.com/itchan-dev/threads/shared/middleware/ratelimiter"
)

// New creates and configures a new chi router with all the routes.
// IMPORTANT! ratelimiters set with .Use limit request for all endpoints combined in that group
func New(deps *setup.Dependencies) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(metrics.Middleware)

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   deps.Config.Public.CorsOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	r.Use(mw.SecurityHeaders(deps.Config.Public.SecureCookies, mw.APIContentSecurityPolicy))

	h := deps.Handler
	authMw := deps.AuthMiddleware

	r.Get("/health", h.Health)
	r.Get("/ready", h.Ready)
	r.Handle("/metrics", metrics.Handler())

	r.Route("/v1", func(r chi.Router) {
		r.Use(mw.RateLimit(rl.Rps100(), mw.GetIP)) // 100 rps per IP

		// Public reads
		r.Group(func(r chi.Router) {
			r.Use(authMw.OptionalAuth())
			r.Get("/threads", h.GetThreadsPage)
			r.Get("/threads/{threadId}", h.GetThread)
			r.Get("/threads/{threadId}/expand", h.ExpandThread)
			r.Get("/users/{userId}", h.GetUser)
			r.Get("/users/{userId}/threads", h.GetUserThreads)
		})

		// Writes
		r.Group(func(r chi.Router) {
			r.Use(authMw.NeedAuth())
			r.Use(mw.RateLimit(rl.Rps10(), mw.GetUserIdFromRequest)) // 10 rps per user

			// CreateThread and CreateComment: 1 per second per user
			r.With(mw.RateLimit(rl.OnceInSecond(), mw.GetUserIdFromRequest)).Post("/threads", h.CreateThread)
			r.With(mw.RateLimit(rl.OnceInSecond(), mw.GetUserIdFromRequest)).Post("/threads/{threadId}/comments", h.CreateComment)
			r.Put("/users/me", h.UpsertProfile)
		})
	})

	return r
}
