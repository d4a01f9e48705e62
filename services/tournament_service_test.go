package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Dosada05/tournament-engine/directory"
	"github.com/Dosada05/tournament-engine/events"
	"github.com/Dosada05/tournament-engine/models"
	"github.com/Dosada05/tournament-engine/repositories"
	"github.com/Dosada05/tournament-engine/seeding"
)

func TestCreateTournament(t *testing.T) {
	e := newEngine(t, nil)
	ctx := context.Background()

	tour, err := e.tournaments.CreateTournament(ctx, CreateTournamentInput{
		Name:   "  Spring Open ",
		Format: models.FormatRoundRobin,
		Config: models.TournamentConfig{MaxParticipants: 8},
	})
	require.NoError(t, err)
	assert.NotZero(t, tour.ID)
	assert.Equal(t, "Spring Open", tour.Name)
	assert.Equal(t, models.StatusDraft, tour.Status)
	assert.Equal(t, models.DefaultBestOf, tour.Config.BestOf)
	assert.Equal(t, models.DefaultPointsPerSet, tour.Config.PointsPerSet)
	assert.Equal(t, models.DefaultWinPoints, tour.Config.WinPoints)
}

func TestCreateTournamentValidation(t *testing.T) {
	e := newEngine(t, nil)

	tests := []struct {
		name  string
		input CreateTournamentInput
		want  error
	}{
		{"blank name", CreateTournamentInput{Name: " ", Format: models.FormatRoundRobin, Config: models.TournamentConfig{MaxParticipants: 4}}, ErrTournamentNameRequired},
		{"unknown format", CreateTournamentInput{Name: "Cup", Format: "swiss", Config: models.TournamentConfig{MaxParticipants: 4}}, ErrInvalidFormat},
		{"too small", CreateTournamentInput{Name: "Cup", Format: models.FormatRoundRobin, Config: models.TournamentConfig{MaxParticipants: 1}}, models.ErrConfigMaxParticipants},
		{"even best of", CreateTournamentInput{Name: "Cup", Format: models.FormatRoundRobin, Config: models.TournamentConfig{MaxParticipants: 4, BestOf: 4}}, models.ErrConfigBestOf},
		{"groups without advance", CreateTournamentInput{Name: "Cup", Format: models.FormatGroupKnockout, Config: models.TournamentConfig{MaxParticipants: 8, NumGroups: 2}}, models.ErrConfigGroups},
		{"groups larger than field", CreateTournamentInput{Name: "Cup", Format: models.FormatGroupKnockout, Config: models.TournamentConfig{MaxParticipants: 5, NumGroups: 3, AdvancePerGroup: 1}}, models.ErrConfigGroups},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := e.tournaments.CreateTournament(context.Background(), tt.input)
			require.ErrorIs(t, err, tt.want)
			assert.ErrorIs(t, err, ErrValidationFailed)
		})
	}

	list, err := e.tournaments.ListTournaments(context.Background(), repositories.ListTournamentsFilter{})
	require.NoError(t, err)
	assert.Empty(t, list)
}

func TestLifecycleTransitions(t *testing.T) {
	e := newEngine(t, nil)
	ctx := context.Background()
	tour, err := e.tournaments.CreateTournament(ctx, CreateTournamentInput{
		Name: "Cup", Format: models.FormatSingleElimination, Config: models.TournamentConfig{MaxParticipants: 4},
	})
	require.NoError(t, err)

	_, err = e.tournaments.CloseRegistration(ctx, tour.ID)
	assert.ErrorIs(t, err, ErrTournamentInvalidStatus, "draft cannot skip registration")

	opened, err := e.tournaments.OpenRegistration(ctx, tour.ID)
	require.NoError(t, err)
	assert.Equal(t, models.StatusRegistrationOpen, opened.Status)

	_, err = e.tournaments.OpenRegistration(ctx, tour.ID)
	assert.ErrorIs(t, err, ErrTournamentInvalidStatus)

	closed, err := e.tournaments.CloseRegistration(ctx, tour.ID)
	require.NoError(t, err)
	assert.Equal(t, models.StatusRegistrationClosed, closed.Status)

	_, err = e.tournaments.OpenRegistration(ctx, tour.ID)
	assert.ErrorIs(t, err, ErrTournamentInvalidStatus, "status never moves backwards")

	_, err = e.tournaments.FinalizeTournament(ctx, tour.ID)
	assert.ErrorIs(t, err, ErrTournamentInvalidStatus)

	cancelled, err := e.tournaments.CancelTournament(ctx, tour.ID)
	require.NoError(t, err)
	assert.Equal(t, models.StatusCancelled, cancelled.Status)

	_, err = e.tournaments.CancelTournament(ctx, tour.ID)
	assert.ErrorIs(t, err, ErrTournamentInvalidStatus)
	_, err = e.tournaments.OpenRegistration(ctx, 404)
	assert.ErrorIs(t, err, ErrTournamentNotFound)
}

func TestCancelRunningTournament(t *testing.T) {
	e := newEngine(t, nil)
	ctx := context.Background()
	tour := e.startedTournament(t, models.FormatSingleElimination, models.TournamentConfig{}, 4)
	m := e.matchAt(t, tour.ID, 1, 0)

	_, err := e.tournaments.CancelTournament(ctx, tour.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, e.published.count(events.TypeBracketUpdated))

	_, err = e.matches.SubmitResult(ctx, SubmitResultInput{TournamentID: tour.ID, MatchID: m.ID, WinnerID: *m.ParticipantAID})
	assert.ErrorIs(t, err, ErrTournamentInvalidStatus)
	_, err = e.brackets.RegenerateSchedule(ctx, tour.ID)
	assert.ErrorIs(t, err, ErrTournamentInvalidStatus)
}

func TestFinalizeTournament(t *testing.T) {
	ctx := context.Background()

	t.Run("undecided bracket", func(t *testing.T) {
		e := newEngine(t, nil)
		tour := e.startedTournament(t, models.FormatSingleElimination, models.TournamentConfig{}, 4)

		_, err := e.tournaments.FinalizeTournament(ctx, tour.ID)
		require.ErrorIs(t, err, ErrTournamentUndecided)

		got, err := e.tournaments.GetTournament(ctx, tour.ID)
		require.NoError(t, err)
		assert.Equal(t, models.StatusInProgress, got.Status)
	})

	t.Run("round robin ranked by current table", func(t *testing.T) {
		e := newEngine(t, nil)
		tour := e.startedTournament(t, models.FormatRoundRobin, models.TournamentConfig{}, 4)
		first := e.matchAt(t, tour.ID, 1, 0)
		e.win(t, first, *first.ParticipantBID)

		done, err := e.tournaments.FinalizeTournament(ctx, tour.ID)
		require.NoError(t, err)
		assert.Equal(t, models.StatusCompleted, done.Status)
		assert.Equal(t, *first.ParticipantBID, *done.Outcome.ChampionID)
		assert.Equal(t, 1, e.published.count(events.TypeTournamentCompleted))

		_, err = e.tournaments.FinalizeTournament(ctx, tour.ID)
		assert.ErrorIs(t, err, ErrTournamentInvalidStatus)
	})
}

func TestDeleteTournament(t *testing.T) {
	e := newEngine(t, nil)
	ctx := context.Background()
	tour := e.startedTournament(t, models.FormatRoundRobin, models.TournamentConfig{}, 3)

	require.NoError(t, e.tournaments.DeleteTournament(ctx, tour.ID))
	assert.Equal(t, 1, e.published.count(events.TypeTournamentDeleted))

	_, err := e.tournaments.GetTournament(ctx, tour.ID)
	assert.ErrorIs(t, err, ErrTournamentNotFound)
	_, err = e.matches.ListMatches(ctx, tour.ID, repositories.MatchFilter{})
	assert.ErrorIs(t, err, ErrNotFound)

	err = e.tournaments.DeleteTournament(ctx, tour.ID)
	assert.ErrorIs(t, err, ErrTournamentNotFound)
}

func TestListTournamentsFilters(t *testing.T) {
	e := newEngine(t, nil)
	ctx := context.Background()
	e.closedTournament(t, models.FormatSingleElimination, models.TournamentConfig{}, 2)
	e.startedTournament(t, models.FormatRoundRobin, models.TournamentConfig{}, 2)

	running := models.StatusInProgress
	list, err := e.tournaments.ListTournaments(ctx, repositories.ListTournamentsFilter{Status: &running})
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, models.FormatRoundRobin, list[0].Format)

	list, err = e.tournaments.ListTournaments(ctx, repositories.ListTournamentsFilter{Limit: 1000})
	require.NoError(t, err)
	assert.Len(t, list, 2)

	bogus := models.TournamentStatus("paused")
	_, err = e.tournaments.ListTournaments(ctx, repositories.ListTournamentsFilter{Status: &bogus})
	assert.ErrorIs(t, err, ErrValidationFailed)
}

func TestRegisterParticipant(t *testing.T) {
	dir := directory.StaticDirectory{7: {Name: "Ann Lee", Rating: 1800, HasRating: true}}
	e := newEngine(t, dir)
	ctx := context.Background()
	tour, err := e.tournaments.CreateTournament(ctx, CreateTournamentInput{
		Name: "Cup", Format: models.FormatSingleElimination, Config: models.TournamentConfig{MaxParticipants: 2},
	})
	require.NoError(t, err)

	_, err = e.participants.RegisterParticipant(ctx, tour.ID, 7)
	assert.ErrorIs(t, err, ErrRegistrationNotOpen)

	_, err = e.tournaments.OpenRegistration(ctx, tour.ID)
	require.NoError(t, err)

	p, err := e.participants.RegisterParticipant(ctx, tour.ID, 7)
	require.NoError(t, err)
	assert.Equal(t, "Ann Lee", p.Name)
	assert.Equal(t, models.ParticipantRegistered, p.Status)

	_, err = e.participants.RegisterParticipant(ctx, tour.ID, 7)
	require.ErrorIs(t, err, ErrAlreadyRegistered)
	assert.ErrorIs(t, err, ErrConflict)

	_, err = e.participants.RegisterParticipant(ctx, tour.ID, 0)
	assert.ErrorIs(t, err, ErrInvalidParticipantID)

	other, err := e.participants.RegisterParticipant(ctx, tour.ID, 8)
	require.NoError(t, err)
	assert.Equal(t, "Participant 8", other.Name)

	_, err = e.participants.RegisterParticipant(ctx, tour.ID, 9)
	require.ErrorIs(t, err, ErrTournamentFull)
	assert.ErrorIs(t, err, ErrConflict)

	got, err := e.tournaments.GetTournament(ctx, tour.ID)
	require.NoError(t, err)
	assert.Equal(t, 2, got.TotalParticipants)
	assert.Len(t, got.Participants, 2)

	// Отказ освобождает место, повторная регистрация встает в конец очереди.
	require.NoError(t, e.participants.WithdrawParticipant(ctx, tour.ID, 7))
	_, err = e.participants.RegisterParticipant(ctx, tour.ID, 9)
	require.NoError(t, err)
	_, err = e.participants.RegisterParticipant(ctx, tour.ID, 7)
	assert.ErrorIs(t, err, ErrTournamentFull)

	registered := models.ParticipantRegistered
	list, err := e.participants.ListParticipants(ctx, tour.ID, &registered)
	require.NoError(t, err)
	ids := make([]int, 0, len(list))
	for _, p := range list {
		ids = append(ids, p.ParticipantID)
	}
	assert.Equal(t, []int{8, 9}, ids)

	all, err := e.participants.ListParticipants(ctx, tour.ID, nil)
	require.NoError(t, err)
	assert.Len(t, all, 3)
}

func TestRegisterConcurrentlyRespectsCapacity(t *testing.T) {
	e := newEngine(t, nil)
	ctx := context.Background()
	tour, err := e.tournaments.CreateTournament(ctx, CreateTournamentInput{
		Name: "Cup", Format: models.FormatRoundRobin, Config: models.TournamentConfig{MaxParticipants: 4},
	})
	require.NoError(t, err)
	_, err = e.tournaments.OpenRegistration(ctx, tour.ID)
	require.NoError(t, err)

	errs := make(chan error, 10)
	for id := 1; id <= 10; id++ {
		go func(id int) {
			_, err := e.participants.RegisterParticipant(ctx, tour.ID, id)
			errs <- err
		}(id)
	}
	accepted := 0
	for i := 0; i < 10; i++ {
		if err := <-errs; err == nil {
			accepted++
		} else {
			assert.ErrorIs(t, err, ErrTournamentFull)
		}
	}
	assert.Equal(t, 4, accepted)

	got, err := e.tournaments.GetTournament(ctx, tour.ID)
	require.NoError(t, err)
	assert.Equal(t, 4, got.TotalParticipants)
	assert.Len(t, got.Participants, 4)
}

func TestWithdrawParticipant(t *testing.T) {
	e := newEngine(t, nil)
	ctx := context.Background()

	closed := e.closedTournament(t, models.FormatRoundRobin, models.TournamentConfig{MaxParticipants: 4}, 3)
	require.NoError(t, e.participants.WithdrawParticipant(ctx, closed.ID, 2))
	err := e.participants.WithdrawParticipant(ctx, closed.ID, 2)
	assert.ErrorIs(t, err, ErrParticipantNotFound)

	started, err := e.brackets.GenerateSchedule(ctx, closed.ID)
	require.NoError(t, err)
	assert.Len(t, e.matchesOf(t, started.ID, repositories.MatchFilter{}), 1)

	err = e.participants.WithdrawParticipant(ctx, started.ID, 1)
	require.ErrorIs(t, err, ErrWithdrawAfterStart)
	assert.ErrorIs(t, err, ErrInvalidState)
}

func TestApplySeeding(t *testing.T) {
	dir := directory.StaticDirectory{
		1: {Rating: 1000, HasRating: true},
		2: {Rating: 1500, HasRating: true},
		3: {Rating: 1200, HasRating: true},
	}
	ctx := context.Background()

	t.Run("rating based", func(t *testing.T) {
		e := newEngine(t, dir)
		tour := e.closedTournament(t, models.FormatSingleElimination, models.TournamentConfig{}, 4)

		seeded, err := e.seeding.ApplySeeding(ctx, tour.ID, seeding.Request{Source: seeding.SourceRating})
		require.NoError(t, err)
		order := make([]int, 0, len(seeded))
		for i, p := range seeded {
			order = append(order, p.ParticipantID)
			assert.Equal(t, i+1, *p.Seed)
		}
		assert.Equal(t, []int{2, 3, 1, 4}, order)

		started, err := e.brackets.GenerateSchedule(ctx, tour.ID)
		require.NoError(t, err)
		first := e.matchAt(t, started.ID, 1, 0)
		assert.Equal(t, []int{2, 4}, []int{*first.ParticipantAID, *first.ParticipantBID})
	})

	t.Run("invalid manual seeds", func(t *testing.T) {
		e := newEngine(t, dir)
		tour := e.closedTournament(t, models.FormatSingleElimination, models.TournamentConfig{}, 3)

		_, err := e.seeding.ApplySeeding(ctx, tour.ID, seeding.Request{
			Source: seeding.SourceManual,
			Seeds:  map[int]int{1: 1, 2: 1, 3: 2},
		})
		require.ErrorIs(t, err, seeding.ErrInvalidSeeds)
		assert.ErrorIs(t, err, ErrValidationFailed)
	})

	t.Run("unknown source", func(t *testing.T) {
		e := newEngine(t, dir)
		tour := e.closedTournament(t, models.FormatSingleElimination, models.TournamentConfig{}, 2)

		_, err := e.seeding.ApplySeeding(ctx, tour.ID, seeding.Request{Source: "coin_flip"})
		assert.ErrorIs(t, err, ErrValidationFailed)
	})

	t.Run("registration still open", func(t *testing.T) {
		e := newEngine(t, dir)
		tour, err := e.tournaments.CreateTournament(ctx, CreateTournamentInput{
			Name: "Cup", Format: models.FormatSingleElimination, Config: models.TournamentConfig{MaxParticipants: 4},
		})
		require.NoError(t, err)
		_, err = e.tournaments.OpenRegistration(ctx, tour.ID)
		require.NoError(t, err)

		_, err = e.seeding.ApplySeeding(ctx, tour.ID, seeding.Request{Source: seeding.SourceRandom})
		assert.ErrorIs(t, err, ErrSeedingNotAllowed)
	})
}
