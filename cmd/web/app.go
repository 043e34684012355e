package main

import (
	"log/slog"

	"github.com/AdamBeresnev/op-chess/internal/live"
	"github.com/AdamBeresnev/op-chess/internal/metrics"
	"github.com/AdamBeresnev/op-chess/internal/service"
	"github.com/AdamBeresnev/op-chess/internal/store"
	"github.com/jmoiron/sqlx"
)

// application is everything the handlers share.
type application struct {
	tournaments  *service.TournamentService
	matches      *service.MatchService
	inscriptions *service.InscriptionService
	users        *service.UserService
	userStore    *store.UserStore
	hub          *live.Hub
	metrics      *metrics.Metrics
	logger       *slog.Logger
}

func newApplication(database *sqlx.DB, logger *slog.Logger) *application {
	tournamentStore := store.NewTournamentStore(database)
	userStore := store.NewUserStore(database)
	hub := live.NewHub(logger)
	m := metrics.New()

	opts := []service.Option{service.WithNotifier(hub), service.WithRecorder(m)}
	return &application{
		tournaments:  service.NewTournamentService(database, tournamentStore, userStore, opts...),
		matches:      service.NewMatchService(database, tournamentStore, userStore, opts...),
		inscriptions: service.NewInscriptionService(database, tournamentStore, userStore, opts...),
		users:        service.NewUserService(database, userStore),
		userStore:    userStore,
		hub:          hub,
		metrics:      m,
		logger:       logger,
	}
}
