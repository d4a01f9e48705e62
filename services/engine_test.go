package services

import (
	"context"
	"io"
	"log/slog"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/Dosada05/tournament-engine/directory"
	"github.com/Dosada05/tournament-engine/events"
	"github.com/Dosada05/tournament-engine/models"
	"github.com/Dosada05/tournament-engine/repositories"
	"github.com/Dosada05/tournament-engine/seeding"
)

type recordingPublisher struct {
	mu     sync.Mutex
	events []string
}

func (p *recordingPublisher) Publish(_ context.Context, eventType string, _ int, _ interface{}) {
	p.mu.Lock()
	p.events = append(p.events, eventType)
	p.mu.Unlock()
}

func (p *recordingPublisher) count(eventType string) int {
	p.mu.Lock()
	defer p.mu.Unlock()
	n := 0
	for _, e := range p.events {
		if e == eventType {
			n++
		}
	}
	return n
}

var _ events.Publisher = (*recordingPublisher)(nil)

type engine struct {
	store        *repositories.MemoryStore
	tournaments  TournamentService
	participants ParticipantService
	seeding      SeedingService
	brackets     BracketService
	matches      MatchService
	published    *recordingPublisher
}

func newEngine(t *testing.T, dir directory.ParticipantDirectory) *engine {
	t.Helper()
	if dir == nil {
		dir = directory.StaticDirectory{}
	}
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	store := repositories.NewMemoryStore()
	pub := &recordingPublisher{}
	tr, pr, mr, sr := store.Tournaments(), store.Participants(), store.Matches(), store.Standings()

	return &engine{
		store:        store,
		tournaments:  NewTournamentService(store, tr, pr, mr, sr, pub, logger),
		participants: NewParticipantService(store, tr, pr, dir, logger),
		seeding:      NewSeedingService(store, tr, pr, seeding.NewSeeder(directory.Ratings{Directory: dir}, nil, logger), logger),
		brackets:     NewBracketService(store, tr, pr, mr, sr, pub, logger),
		matches:      NewMatchService(store, tr, pr, mr, sr, pub, logger),
		published:    pub,
	}
}

// closedTournament creates a tournament and registers participants 1..n in order.
func (e *engine) closedTournament(t *testing.T, format models.TournamentFormat, cfg models.TournamentConfig, n int) *models.Tournament {
	t.Helper()
	ctx := context.Background()
	if cfg.MaxParticipants == 0 {
		cfg.MaxParticipants = n
	}
	tour, err := e.tournaments.CreateTournament(ctx, CreateTournamentInput{Name: "Club Cup", Format: format, Config: cfg})
	require.NoError(t, err)
	_, err = e.tournaments.OpenRegistration(ctx, tour.ID)
	require.NoError(t, err)
	for id := 1; id <= n; id++ {
		_, err := e.participants.RegisterParticipant(ctx, tour.ID, id)
		require.NoError(t, err)
	}
	tour, err = e.tournaments.CloseRegistration(ctx, tour.ID)
	require.NoError(t, err)
	return tour
}

func (e *engine) startedTournament(t *testing.T, format models.TournamentFormat, cfg models.TournamentConfig, n int) *models.Tournament {
	t.Helper()
	tour := e.closedTournament(t, format, cfg, n)
	started, err := e.brackets.GenerateSchedule(context.Background(), tour.ID)
	require.NoError(t, err)
	return started
}

func (e *engine) matchesOf(t *testing.T, tournamentID int, filter repositories.MatchFilter) []*models.Match {
	t.Helper()
	ms, err := e.matches.ListMatches(context.Background(), tournamentID, filter)
	require.NoError(t, err)
	return ms
}

func (e *engine) matchAt(t *testing.T, tournamentID, round, position int) *models.Match {
	t.Helper()
	for _, m := range e.matchesOf(t, tournamentID, repositories.MatchFilter{Round: &round}) {
		if m.Position == position {
			return m
		}
	}
	t.Fatalf("no match at round %d position %d", round, position)
	return nil
}

// win submits a 2-0 or 0-2 result for winnerID.
func (e *engine) win(t *testing.T, m *models.Match, winnerID int) *ResultOutcome {
	t.Helper()
	a, b := 2, 0
	if *m.ParticipantBID == winnerID {
		a, b = 0, 2
	}
	res, err := e.matches.SubmitResult(context.Background(), SubmitResultInput{
		TournamentID: m.TournamentID,
		MatchID:      m.ID,
		WinnerID:     winnerID,
		ScoreA:       a,
		ScoreB:       b,
	})
	require.NoError(t, err)
	return res
}

// playAll resolves every ready unresolved match, the lower participant id winning,
// until nothing is left to play.
func (e *engine) playAll(t *testing.T, tournamentID int) {
	t.Helper()
	for {
		played := false
		for _, m := range e.matchesOf(t, tournamentID, repositories.MatchFilter{}) {
			if m.Status.Resolved() || !m.Ready() {
				continue
			}
			winner := *m.ParticipantAID
			if *m.ParticipantBID < winner {
				winner = *m.ParticipantBID
			}
			e.win(t, m, winner)
			played = true
		}
		if !played {
			return
		}
	}
}

func intRef(v int) *int {
	return &v
}
