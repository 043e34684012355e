package service

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/AdamBeresnev/op-chess/internal/chess"
	"github.com/AdamBeresnev/op-chess/internal/policy"
	"github.com/AdamBeresnev/op-chess/internal/store"
	users "github.com/AdamBeresnev/op-chess/internal/user"
	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/sqlite3"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/require"
)

var testNow = time.Date(2026, time.May, 1, 12, 0, 0, 0, time.UTC)

// setupTestDB creates an in-memory SQLite database and applies migrations
func setupTestDB(t *testing.T) *sqlx.DB {
	t.Helper()

	database, err := sqlx.Connect("sqlite3", "file::memory:")
	require.NoError(t, err, "Failed to connect to in-memory DB")
	database.SetMaxOpenConns(1)

	_, err = database.Exec("PRAGMA foreign_keys = ON;")
	require.NoError(t, err)

	driver, err := sqlite3.WithInstance(database.DB, &sqlite3.Config{})
	require.NoError(t, err, "Failed to create migrate driver instance")

	m, err := migrate.NewWithDatabaseInstance(
		"file://../../migrations/sqlite3",
		"sqlite3",
		driver,
	)
	require.NoError(t, err, "Failed to create migrate instance")

	err = m.Up()
	if err != nil && err != migrate.ErrNoChange {
		require.NoError(t, err, "Failed to apply migrations")
	}

	return database
}

type recordingNotifier struct {
	mu     sync.Mutex
	events []Event
}

func (n *recordingNotifier) Publish(e Event) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.events = append(n.events, e)
}

func (n *recordingNotifier) types() []EventType {
	n.mu.Lock()
	defer n.mu.Unlock()
	out := make([]EventType, 0, len(n.events))
	for _, e := range n.events {
		out = append(out, e.Type)
	}
	return out
}

type countingRecorder struct {
	mu          sync.Mutex
	transitions map[string]int
	rounds      int
	results     int
	inscription map[string]int
}

func newCountingRecorder() *countingRecorder {
	return &countingRecorder{transitions: map[string]int{}, inscription: map[string]int{}}
}

func (r *countingRecorder) StatusChanged(from, to chess.TournamentStatus) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.transitions[string(from)+">"+string(to)]++
}

func (r *countingRecorder) RoundGenerated(chess.Format) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.rounds++
}

func (r *countingRecorder) ResultRecorded(chess.MatchResult) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.results++
}

func (r *countingRecorder) InscriptionChanged(op string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.inscription[op]++
}

type fixture struct {
	db          *sqlx.DB
	store       *store.TournamentStore
	users       *store.UserStore
	tournaments *TournamentService
	matches     *MatchService
	inscribe    *InscriptionService
	accounts    *UserService
	notifier    *recordingNotifier
	recorder    *countingRecorder
	clock       time.Time
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	db := setupTestDB(t)
	t.Cleanup(func() { db.Close() })

	f := &fixture{
		db:       db,
		store:    store.NewTournamentStore(db),
		users:    store.NewUserStore(db),
		notifier: &recordingNotifier{},
		recorder: newCountingRecorder(),
		clock:    testNow,
	}
	opts := []Option{
		WithNotifier(f.notifier),
		WithRecorder(f.recorder),
		WithClock(func() time.Time { return f.clock }),
	}
	f.tournaments = NewTournamentService(db, f.store, f.users, opts...)
	f.matches = NewMatchService(db, f.store, f.users, opts...)
	f.inscribe = NewInscriptionService(db, f.store, f.users, opts...)
	f.accounts = NewUserService(db, f.users)
	f.accounts.now = func() time.Time { return f.clock }
	return f
}

func (f *fixture) player(t *testing.T, name string, rating int) policy.Actor {
	t.Helper()
	u := &users.User{
		ID:        uuid.New(),
		Email:     name + "@example.com",
		Username:  name,
		CreatedAt: testNow,
		Role:      policy.RolePlayer,
		Rating:    rating,
	}
	require.NoError(t, f.users.CreateUser(context.Background(), u))
	return u.Actor()
}

func (f *fixture) admin() policy.Actor {
	return policy.Actor{ID: uuid.MustParse("00000000-0000-0000-0000-000000000001"), Role: policy.RoleAdmin}
}

func validInput(format chess.Format) TournamentInput {
	start := testNow.Add(30 * 24 * time.Hour)
	return TournamentInput{
		Name:            "Riga Spring Open",
		Description:     "Classical, 90+30",
		Location:        "Riga Chess Club",
		StartDate:       start,
		EndDate:         start.Add(72 * time.Hour),
		MaxParticipants: 8,
		Format:          format,
	}
}

func (f *fixture) tournamentWithPlayers(t *testing.T, format chess.Format, n int) (*chess.Tournament, policy.Actor, []policy.Actor) {
	t.Helper()
	ctx := context.Background()
	organizer := f.player(t, "organizer", 1500)

	tournament, err := f.tournaments.Create(ctx, organizer, validInput(format))
	require.NoError(t, err)

	players := make([]policy.Actor, 0, n)
	for i := 0; i < n; i++ {
		p := f.player(t, "player"+string(rune('a'+i)), 2000-i*50)
		f.clock = f.clock.Add(time.Second)
		_, err := f.inscribe.Join(ctx, p, tournament.ID)
		require.NoError(t, err)
		players = append(players, p)
	}
	return tournament, organizer, players
}
