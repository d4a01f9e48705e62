package services

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/Dosada05/tournament-engine/events"
	"github.com/Dosada05/tournament-engine/models"
	"github.com/Dosada05/tournament-engine/repositories"
)

const (
	defaultListLimit = 20
	maxListLimit     = 100
)

type CreateTournamentInput struct {
	Name   string                  `json:"name"`
	Format models.TournamentFormat `json:"format"`
	Config models.TournamentConfig `json:"config"`
}

// StandingsView is the tournament-wide table and the group tables, each sorted.
type StandingsView struct {
	TournamentID int                             `json:"tournament_id"`
	Overall      []models.StandingRow            `json:"overall,omitempty"`
	Groups       map[string][]models.StandingRow `json:"groups,omitempty"`
}

type TournamentService interface {
	CreateTournament(ctx context.Context, input CreateTournamentInput) (*models.Tournament, error)
	// GetTournament returns the tournament with its participants, groups, standings and matches.
	GetTournament(ctx context.Context, id int) (*models.Tournament, error)
	ListTournaments(ctx context.Context, filter repositories.ListTournamentsFilter) ([]*models.Tournament, error)
	OpenRegistration(ctx context.Context, id int) (*models.Tournament, error)
	CloseRegistration(ctx context.Context, id int) (*models.Tournament, error)
	CancelTournament(ctx context.Context, id int) (*models.Tournament, error)
	FinalizeTournament(ctx context.Context, id int) (*models.Tournament, error)
	DeleteTournament(ctx context.Context, id int) error
	GetStandings(ctx context.Context, id int) (*StandingsView, error)
}

type tournamentService struct {
	tx              repositories.TxManager
	tournamentRepo  repositories.TournamentRepository
	participantRepo repositories.ParticipantRepository
	matchRepo       repositories.MatchRepository
	standingRepo    repositories.StandingRepository
	completion      *completionDetector
	publisher       events.Publisher
	logger          *slog.Logger
}

func NewTournamentService(
	tx repositories.TxManager,
	tournamentRepo repositories.TournamentRepository,
	participantRepo repositories.ParticipantRepository,
	matchRepo repositories.MatchRepository,
	standingRepo repositories.StandingRepository,
	publisher events.Publisher,
	logger *slog.Logger,
) TournamentService {
	return &tournamentService{
		tx:              tx,
		tournamentRepo:  tournamentRepo,
		participantRepo: participantRepo,
		matchRepo:       matchRepo,
		standingRepo:    standingRepo,
		completion:      &completionDetector{tournamentRepo: tournamentRepo, matchRepo: matchRepo, standingRepo: standingRepo},
		publisher:       publisher,
		logger:          logger,
	}
}

func (s *tournamentService) CreateTournament(ctx context.Context, input CreateTournamentInput) (*models.Tournament, error) {
	name := strings.TrimSpace(input.Name)
	if name == "" {
		return nil, ErrTournamentNameRequired
	}
	if !input.Format.Valid() {
		return nil, fmt.Errorf("%w '%s'", ErrInvalidFormat, input.Format)
	}
	cfg := input.Config.WithDefaults()
	if err := cfg.Validate(input.Format); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrValidationFailed, err)
	}

	t := &models.Tournament{
		Name:   name,
		Format: input.Format,
		Status: models.StatusDraft,
		Config: cfg,
	}
	if err := s.tournamentRepo.Create(ctx, nil, t); err != nil {
		return nil, fmt.Errorf("failed to create tournament: %w", err)
	}
	s.logger.InfoContext(ctx, "tournament created", "tournament_id", t.ID, "format", t.Format)
	return t, nil
}

func (s *tournamentService) GetTournament(ctx context.Context, id int) (*models.Tournament, error) {
	var (
		tournament   *models.Tournament
		participants []*models.Participant
		standings    []models.StandingRow
		matches      []*models.Match
	)
	registered := models.ParticipantRegistered

	g, gCtx := errgroup.WithContext(ctx)
	g.Go(func() error {
		t, err := s.tournamentRepo.GetByID(gCtx, nil, id)
		if err != nil {
			return mapRepositoryError(err)
		}
		tournament = t
		return nil
	})
	g.Go(func() error {
		ps, err := s.participantRepo.ListByTournament(gCtx, nil, id, &registered)
		if err != nil {
			return fmt.Errorf("failed to list participants of tournament %d: %w", id, err)
		}
		participants = ps
		return nil
	})
	g.Go(func() error {
		rows, err := s.standingRepo.ListByTournament(gCtx, nil, id)
		if err != nil {
			return fmt.Errorf("failed to list standings of tournament %d: %w", id, err)
		}
		standings = rows
		return nil
	})
	g.Go(func() error {
		ms, err := s.matchRepo.ListByTournament(gCtx, nil, id, repositories.MatchFilter{})
		if err != nil {
			return fmt.Errorf("failed to list matches of tournament %d: %w", id, err)
		}
		matches = ms
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	tournament.Participants = make([]models.Participant, 0, len(participants))
	for _, p := range participants {
		tournament.Participants = append(tournament.Participants, *p)
	}
	tournament.Groups = groupsFromParticipants(participants)
	tournament.Standings, tournament.GroupStandings = splitStandings(standings)
	tournament.Matches = make([]models.Match, 0, len(matches))
	for _, m := range matches {
		tournament.Matches = append(tournament.Matches, *m)
	}
	return tournament, nil
}

func (s *tournamentService) ListTournaments(ctx context.Context, filter repositories.ListTournamentsFilter) ([]*models.Tournament, error) {
	if filter.Limit <= 0 {
		filter.Limit = defaultListLimit
	}
	if filter.Limit > maxListLimit {
		filter.Limit = maxListLimit
	}
	if filter.Offset < 0 {
		filter.Offset = 0
	}
	if filter.Format != nil && !filter.Format.Valid() {
		return nil, fmt.Errorf("%w '%s'", ErrInvalidFormat, *filter.Format)
	}
	if filter.Status != nil && !filter.Status.Valid() {
		return nil, fmt.Errorf("%w: unknown tournament status '%s'", ErrValidationFailed, *filter.Status)
	}

	tournaments, err := s.tournamentRepo.List(ctx, nil, filter)
	if err != nil {
		return nil, fmt.Errorf("failed to list tournaments: %w", err)
	}
	return tournaments, nil
}

func (s *tournamentService) OpenRegistration(ctx context.Context, id int) (*models.Tournament, error) {
	return s.transition(ctx, id, models.StatusRegistrationOpen)
}

func (s *tournamentService) CloseRegistration(ctx context.Context, id int) (*models.Tournament, error) {
	return s.transition(ctx, id, models.StatusRegistrationClosed)
}

func (s *tournamentService) CancelTournament(ctx context.Context, id int) (*models.Tournament, error) {
	t, err := s.transition(ctx, id, models.StatusCancelled)
	if err != nil {
		return nil, err
	}
	s.publisher.Publish(ctx, events.TypeBracketUpdated, id, events.BracketUpdatedPayload{Reason: "cancelled"})
	return t, nil
}

// transition applies one lifecycle step under the tournament lock.
func (s *tournamentService) transition(ctx context.Context, id int, to models.TournamentStatus) (*models.Tournament, error) {
	var updated *models.Tournament
	err := s.tx.RunInTx(ctx, func(exec repositories.SQLExecutor) error {
		t, err := s.tournamentRepo.GetForUpdate(ctx, exec, id)
		if err != nil {
			return mapRepositoryError(err)
		}
		if !isValidStatusTransition(t.Status, to) {
			return fmt.Errorf("%w: cannot move from %s to %s", ErrTournamentInvalidStatus, t.Status, to)
		}
		if err := s.tournamentRepo.UpdateStatus(ctx, exec, id, []models.TournamentStatus{t.Status}, to); err != nil {
			return mapRepositoryError(err)
		}
		t.Status = to
		updated = t
		return nil
	})
	if err != nil {
		return nil, err
	}
	s.logger.InfoContext(ctx, "tournament status changed", "tournament_id", id, "status", to)
	return updated, nil
}

func (s *tournamentService) FinalizeTournament(ctx context.Context, id int) (*models.Tournament, error) {
	var t *models.Tournament
	err := s.tx.RunInTx(ctx, func(exec repositories.SQLExecutor) error {
		var err error
		t, err = s.tournamentRepo.GetForUpdate(ctx, exec, id)
		if err != nil {
			return mapRepositoryError(err)
		}
		outcome, err := s.completion.finalize(ctx, exec, t)
		if err != nil {
			return err
		}
		now := time.Now().UTC()
		t.Status = models.StatusCompleted
		t.Outcome = outcome
		t.CompletedAt = &now
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.InfoContext(ctx, "tournament finalized", "tournament_id", id)
	s.publisher.Publish(ctx, events.TypeTournamentCompleted, id, events.TournamentCompletedPayload{
		Name: t.Name, Format: t.Format, Outcome: t.Outcome,
	})
	return t, nil
}

// DeleteTournament removes the tournament with its participants, matches and standings.
func (s *tournamentService) DeleteTournament(ctx context.Context, id int) error {
	if err := s.tournamentRepo.Delete(ctx, nil, id); err != nil {
		return mapRepositoryError(err)
	}
	s.logger.InfoContext(ctx, "tournament deleted", "tournament_id", id)
	s.publisher.Publish(ctx, events.TypeTournamentDeleted, id, nil)
	return nil
}

func (s *tournamentService) GetStandings(ctx context.Context, id int) (*StandingsView, error) {
	if _, err := s.tournamentRepo.GetByID(ctx, nil, id); err != nil {
		return nil, mapRepositoryError(err)
	}
	rows, err := s.standingRepo.ListByTournament(ctx, nil, id)
	if err != nil {
		return nil, fmt.Errorf("failed to list standings of tournament %d: %w", id, err)
	}
	overall, groups := splitStandings(rows)
	return &StandingsView{TournamentID: id, Overall: overall, Groups: groups}, nil
}
