package main

import (
	"net/http"

	"github.com/AdamBeresnev/op-chess/internal/config"
	"github.com/AdamBeresnev/op-chess/internal/httputil"
	"github.com/AdamBeresnev/op-chess/internal/live"
	"github.com/AdamBeresnev/op-chess/internal/middleware"
	"github.com/AdamBeresnev/op-chess/internal/policy"
	"github.com/alexedwards/scs/v2"
	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/markbates/goth/gothic"
)

func newRouter(app *application, sessionManager *scs.SessionManager, cfg *config.Config) http.Handler {
	r := chi.NewRouter()

	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(chimiddleware.Recoverer)

	r.Handle("/metrics", app.metrics.Handler())
	r.Handle("/ws/tournaments/{id}", live.NewHandler(app.hub, cfg.CORSAllowedOrigins))

	r.Group(func(r chi.Router) {
		r.Use(chimiddleware.Logger)
		r.Use(app.metrics.Instrument)
		r.Use(cors.Handler(corsOptions(cfg.CORSAllowedOrigins)))
		r.Use(sessionManager.LoadAndSave)
		r.Use(middleware.LoadAuthenticatedUser(sessionManager, app.userStore, cfg.JWTSecretKey))

		app.apiRoutes(r)
		authRoutes(r, app, sessionManager)
	})

	return r
}

func (app *application) apiRoutes(r chi.Router) {
	r.Route("/api", func(r chi.Router) {
		r.Get("/tournaments", app.listTournaments)
		r.Get("/tournaments/{id}", app.getTournament)
		r.Get("/tournaments/{id}/matches", app.getMatches)
		r.Get("/tournaments/{id}/standings", app.getStandings)
		r.Get("/tournaments/{id}/actions", app.getActions)
		r.Get("/tournaments/{id}/inscriptions", app.listInscriptions)
		r.Get("/players/{id}/inscriptions", app.listPlayerInscriptions)

		r.Group(func(r chi.Router) {
			r.Use(middleware.RequireAuth)

			r.Get("/me", app.getMe)

			r.Post("/tournaments", app.createTournament)
			r.Put("/tournaments/{id}", app.updateTournament)
			r.Delete("/tournaments/{id}", app.deleteTournament)
			r.Post("/tournaments/{id}/start", app.transition("Failed to start tournament", app.tournaments.Start))
			r.Post("/tournaments/{id}/finish", app.transition("Failed to finish tournament", app.tournaments.Finish))
			r.Post("/tournaments/{id}/cancel", app.transition("Failed to cancel tournament", app.tournaments.Cancel))
			r.Post("/tournaments/{id}/rounds", app.generateRound)

			r.Post("/tournaments/{id}/inscriptions", app.joinTournament)
			r.Delete("/tournaments/{id}/inscriptions", app.leaveTournament)
			r.Delete("/tournaments/{id}/inscriptions/{playerID}", app.removeInscription)

			r.Put("/matches/{id}/result", app.recordResult)
		})

		r.Route("/admin", func(r chi.Router) {
			r.Use(middleware.RequirePermission(policy.ManageUsers))
			r.Put("/users/{id}/role", app.setUserRole)
			r.Delete("/users/{id}", app.deleteUser)
		})
	})
}

func authRoutes(r chi.Router, app *application, sessionManager *scs.SessionManager) {
	r.Get("/auth/{provider}", func(w http.ResponseWriter, r *http.Request) {
		r = gothic.GetContextWithProvider(r, chi.URLParam(r, "provider"))
		gothic.BeginAuthHandler(w, r)
	})

	r.Get("/auth/{provider}/callback", func(w http.ResponseWriter, r *http.Request) {
		r = gothic.GetContextWithProvider(r, chi.URLParam(r, "provider"))

		gothUser, err := gothic.CompleteUserAuth(w, r)
		if err != nil {
			httputil.BadRequest(w, "Authentication failure", err)
			return
		}

		user, err := app.users.FindOrCreateUserByProvider(r.Context(), gothUser)
		if err != nil {
			httputil.InternalServerError(w, "Failed to find or create user", err)
			return
		}

		if err := sessionManager.RenewToken(r.Context()); err != nil {
			httputil.InternalServerError(w, "Failed to renew session", err)
			return
		}
		sessionManager.Put(r.Context(), middleware.SessionUserKey, user.ID.String())
		http.Redirect(w, r, "/", http.StatusFound)
	})

	r.Post("/auth/guest", func(w http.ResponseWriter, r *http.Request) {
		user, err := app.users.EnsureGuestUser(r.Context())
		if err != nil {
			httputil.InternalServerError(w, "Failed to login as guest", err)
			return
		}

		if err := sessionManager.RenewToken(r.Context()); err != nil {
			httputil.InternalServerError(w, "Failed to renew session", err)
			return
		}
		sessionManager.Put(r.Context(), middleware.SessionUserKey, user.ID.String())
		_ = httputil.WriteJSON(w, http.StatusOK, user)
	})

	r.Post("/logout", func(w http.ResponseWriter, r *http.Request) {
		if err := sessionManager.Destroy(r.Context()); err != nil {
			httputil.InternalServerError(w, "Failed to log out", err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	})
}

func corsOptions(origins []string) cors.Options {
	opts := cors.Options{
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-Request-ID"},
		ExposedHeaders:   []string{"X-Request-ID"},
		AllowCredentials: true,
		MaxAge:           300,
	}
	if len(origins) == 0 {
		opts.AllowedOrigins = []string{"*"}
		opts.AllowCredentials = false
	} else {
		opts.AllowedOrigins = origins
	}
	return opts
}
