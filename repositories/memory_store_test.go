package repositories

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Dosada05/tournament-engine/models"
)

func newOpenTournament(t *testing.T, store *MemoryStore, max int) *models.Tournament {
	t.Helper()
	ctx := context.Background()
	tournament := &models.Tournament{
		Name:   "Club Cup",
		Format: models.FormatSingleElimination,
		Status: models.StatusDraft,
		Config: models.TournamentConfig{MaxParticipants: max}.WithDefaults(),
	}
	require.NoError(t, store.Tournaments().Create(ctx, nil, tournament))
	require.NoError(t, store.Tournaments().UpdateStatus(ctx, nil, tournament.ID,
		[]models.TournamentStatus{models.StatusDraft}, models.StatusRegistrationOpen))
	return tournament
}

func TestMemoryStoreRollbackRestoresState(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()
	tournament := newOpenTournament(t, store, 4)

	boom := errors.New("boom")
	err := store.RunInTx(ctx, func(exec SQLExecutor) error {
		require.NoError(t, store.Participants().Add(ctx, exec, &models.Participant{TournamentID: tournament.ID, ParticipantID: 1, Name: "A"}))
		require.NoError(t, store.Tournaments().IncrementParticipants(ctx, exec, tournament.ID))
		return boom
	})
	assert.ErrorIs(t, err, boom)

	got, err := store.Tournaments().GetByID(ctx, nil, tournament.ID)
	require.NoError(t, err)
	assert.Equal(t, 0, got.TotalParticipants)
	ps, err := store.Participants().ListByTournament(ctx, nil, tournament.ID, nil)
	require.NoError(t, err)
	assert.Empty(t, ps)
}

func TestMemoryStoreCapacityUnderConcurrency(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()
	tournament := newOpenTournament(t, store, 3)

	var wg sync.WaitGroup
	var mu sync.Mutex
	accepted, full := 0, 0
	for i := 1; i <= 10; i++ {
		wg.Add(1)
		go func(id int) {
			defer wg.Done()
			err := store.RunInTx(ctx, func(exec SQLExecutor) error {
				if err := store.Participants().Add(ctx, exec, &models.Participant{TournamentID: tournament.ID, ParticipantID: id}); err != nil {
					return err
				}
				return store.Tournaments().IncrementParticipants(ctx, exec, tournament.ID)
			})
			mu.Lock()
			defer mu.Unlock()
			if err == nil {
				accepted++
			} else if errors.Is(err, ErrTournamentFull) {
				full++
			}
		}(i)
	}
	wg.Wait()

	assert.Equal(t, 3, accepted)
	assert.Equal(t, 7, full)
	ps, err := store.Participants().ListByTournament(ctx, nil, tournament.ID, nil)
	require.NoError(t, err)
	assert.Len(t, ps, 3)
}

func TestMemoryStoreParticipantReRegistration(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()
	tournament := newOpenTournament(t, store, 4)
	repo := store.Participants()

	require.NoError(t, repo.Add(ctx, nil, &models.Participant{TournamentID: tournament.ID, ParticipantID: 1}))
	require.NoError(t, repo.Add(ctx, nil, &models.Participant{TournamentID: tournament.ID, ParticipantID: 2}))
	assert.ErrorIs(t, repo.Add(ctx, nil, &models.Participant{TournamentID: tournament.ID, ParticipantID: 1}), ErrParticipantConflict)

	require.NoError(t, repo.Withdraw(ctx, nil, tournament.ID, 1))
	assert.ErrorIs(t, repo.Withdraw(ctx, nil, tournament.ID, 1), ErrParticipantNotFound)
	require.NoError(t, repo.Add(ctx, nil, &models.Participant{TournamentID: tournament.ID, ParticipantID: 1}))

	ps, err := repo.ListByTournament(ctx, nil, tournament.ID, nil)
	require.NoError(t, err)
	require.Len(t, ps, 2)
	assert.Equal(t, 2, ps[0].ParticipantID)
	assert.Equal(t, 1, ps[1].ParticipantID)
	assert.Equal(t, models.ParticipantRegistered, ps[1].Status)
}

func TestMemoryStoreCompleteIsCheckAndSet(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()
	tournament := newOpenTournament(t, store, 4)

	a, b := 1, 2
	match := &models.Match{
		TournamentID: tournament.ID, Phase: models.PhaseKnockout, Round: 1,
		ParticipantAID: &a, ParticipantBID: &b, Status: models.MatchPending,
	}
	require.NoError(t, store.Matches().Create(ctx, nil, match))

	var wg sync.WaitGroup
	results := make(chan error, 2)
	for _, winner := range []int{a, b} {
		wg.Add(1)
		go func(w int) {
			defer wg.Done()
			results <- store.Matches().Complete(ctx, nil, MatchResult{
				MatchID: match.ID, WinnerID: w, ScoreA: 2, ScoreB: 1,
				Status: models.MatchCompleted, CompletedAt: time.Now(),
			})
		}(winner)
	}
	wg.Wait()
	close(results)

	var ok, conflicts int
	for err := range results {
		if err == nil {
			ok++
		} else if errors.Is(err, ErrMatchAlreadyResolved) {
			conflicts++
		}
	}
	assert.Equal(t, 1, ok)
	assert.Equal(t, 1, conflicts)

	assert.ErrorIs(t, store.Matches().Complete(ctx, nil, MatchResult{MatchID: 999}), ErrMatchNotFound)
}

func TestMemoryStoreThirdPlaceSlots(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()
	tournament := newOpenTournament(t, store, 4)

	third := &models.Match{TournamentID: tournament.ID, Phase: models.PhaseKnockout, Round: 3, IsThirdPlace: true, Status: models.MatchPending}
	require.NoError(t, store.Matches().Create(ctx, nil, third))

	require.NoError(t, store.Matches().AssignThirdPlaceSlot(ctx, nil, tournament.ID, 7, "G"))
	require.NoError(t, store.Matches().AssignThirdPlaceSlot(ctx, nil, tournament.ID, 8, "H"))
	assert.ErrorIs(t, store.Matches().AssignThirdPlaceSlot(ctx, nil, tournament.ID, 9, "I"), ErrMatchSlotUnavailable)

	got, err := store.Matches().GetByID(ctx, nil, third.ID)
	require.NoError(t, err)
	assert.Equal(t, 7, *got.ParticipantAID)
	assert.Equal(t, 8, *got.ParticipantBID)
	assert.Equal(t, "H", got.ParticipantB)
}

func TestMemoryStoreStandingsAccumulate(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()
	tournament := newOpenTournament(t, store, 4)
	group := "A"

	require.NoError(t, store.Standings().InitRows(ctx, nil, []models.StandingRow{
		{TournamentID: tournament.ID, GroupLabel: &group, ParticipantID: 1, Name: "A"},
		{TournamentID: tournament.ID, ParticipantID: 1, Name: "A"},
	}))
	require.NoError(t, store.Standings().ApplyDelta(ctx, nil, tournament.ID, StandingDelta{GroupLabel: &group, ParticipantID: 1, Won: 1, SetsWon: 2, SetsLost: 1, Points: 2}))
	assert.ErrorIs(t, store.Standings().ApplyDelta(ctx, nil, tournament.ID, StandingDelta{ParticipantID: 5}), ErrStandingNotFound)

	rows, err := store.Standings().ListByTournament(ctx, nil, tournament.ID)
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, 2, rows[0].Points)
	assert.Equal(t, 1, rows[0].Played)
	assert.Equal(t, 0, rows[1].Played)
}
