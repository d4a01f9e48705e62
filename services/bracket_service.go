package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/Dosada05/tournament-engine/brackets"
	"github.com/Dosada05/tournament-engine/events"
	"github.com/Dosada05/tournament-engine/models"
	"github.com/Dosada05/tournament-engine/repositories"
)

type BracketService interface {
	// GenerateSchedule creates the matches of a closed tournament and starts it.
	GenerateSchedule(ctx context.Context, tournamentID int) (*models.Tournament, error)
	// RegenerateSchedule discards every match and standing of a running tournament and
	// generates the schedule again from the current seeds.
	RegenerateSchedule(ctx context.Context, tournamentID int) (*models.Tournament, error)
	// GenerateKnockoutFromGroups appends the knockout phase once group play is over.
	GenerateKnockoutFromGroups(ctx context.Context, tournamentID int) (*models.Tournament, error)
}

type bracketService struct {
	tx              repositories.TxManager
	tournamentRepo  repositories.TournamentRepository
	participantRepo repositories.ParticipantRepository
	matchRepo       repositories.MatchRepository
	standingRepo    repositories.StandingRepository
	publisher       events.Publisher
	logger          *slog.Logger
}

func NewBracketService(
	tx repositories.TxManager,
	tournamentRepo repositories.TournamentRepository,
	participantRepo repositories.ParticipantRepository,
	matchRepo repositories.MatchRepository,
	standingRepo repositories.StandingRepository,
	publisher events.Publisher,
	logger *slog.Logger,
) BracketService {
	return &bracketService{
		tx:              tx,
		tournamentRepo:  tournamentRepo,
		participantRepo: participantRepo,
		matchRepo:       matchRepo,
		standingRepo:    standingRepo,
		publisher:       publisher,
		logger:          logger,
	}
}

func (s *bracketService) GenerateSchedule(ctx context.Context, tournamentID int) (*models.Tournament, error) {
	var (
		t        *models.Tournament
		schedule *brackets.Schedule
		roster   int
	)
	err := s.tx.RunInTx(ctx, func(exec repositories.SQLExecutor) error {
		var err error
		t, err = s.tournamentRepo.GetForUpdate(ctx, exec, tournamentID)
		if err != nil {
			return mapRepositoryError(err)
		}
		if t.Status.Started() {
			return ErrScheduleExists
		}
		if t.Status != models.StatusRegistrationClosed {
			return fmt.Errorf("%w: schedule can only be generated after registration is closed (status %s)", ErrTournamentInvalidStatus, t.Status)
		}

		participants, err := s.registeredInSeedOrder(ctx, exec, tournamentID)
		if err != nil {
			return err
		}
		roster = len(participants)
		if schedule, err = s.buildSchedule(ctx, t, participants); err != nil {
			return err
		}
		if err := s.persistSchedule(ctx, exec, t, participants, schedule); err != nil {
			return err
		}

		now := time.Now().UTC()
		if err := s.tournamentRepo.Start(ctx, exec, tournamentID, schedule.Rounds, now); err != nil {
			return mapRepositoryError(err)
		}
		t.Status = models.StatusInProgress
		t.StartedAt = &now
		t.Rounds = schedule.Rounds
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.InfoContext(ctx, "schedule generated", "tournament_id", tournamentID, "format", t.Format, "matches", len(schedule.Matches))
	s.publisher.Publish(ctx, events.TypeTournamentStarted, tournamentID, events.TournamentStartedPayload{
		Name:         t.Name,
		Format:       t.Format,
		Participants: roster,
		Rounds:       t.Rounds,
	})
	return withSchedule(t, schedule), nil
}

func (s *bracketService) RegenerateSchedule(ctx context.Context, tournamentID int) (*models.Tournament, error) {
	var (
		t        *models.Tournament
		schedule *brackets.Schedule
	)
	err := s.tx.RunInTx(ctx, func(exec repositories.SQLExecutor) error {
		var err error
		t, err = s.tournamentRepo.GetForUpdate(ctx, exec, tournamentID)
		if err != nil {
			return mapRepositoryError(err)
		}
		if t.Status != models.StatusInProgress {
			return fmt.Errorf("%w: only a running tournament can be regenerated (status %s)", ErrTournamentInvalidStatus, t.Status)
		}
		if t.Format == models.FormatOpenLadder {
			return fmt.Errorf("%w: open ladder has no schedule", ErrFormatNotSupported)
		}
		unresolved, err := s.matchRepo.CountUnresolved(ctx, exec, tournamentID, nil)
		if err != nil {
			return err
		}
		if unresolved == 0 {
			return ErrNothingToRegenerate
		}

		participants, err := s.registeredInSeedOrder(ctx, exec, tournamentID)
		if err != nil {
			return err
		}
		if schedule, err = s.buildSchedule(ctx, t, participants); err != nil {
			return err
		}

		if err := s.matchRepo.DeleteByTournament(ctx, exec, tournamentID); err != nil {
			return err
		}
		if err := s.standingRepo.DeleteByTournament(ctx, exec, tournamentID); err != nil {
			return err
		}
		if err := s.persistSchedule(ctx, exec, t, participants, schedule); err != nil {
			return err
		}
		if err := s.tournamentRepo.SetRounds(ctx, exec, tournamentID, schedule.Rounds); err != nil {
			return mapRepositoryError(err)
		}
		t.Rounds = schedule.Rounds
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.WarnContext(ctx, "schedule regenerated, previous matches discarded", "tournament_id", tournamentID, "matches", len(schedule.Matches))
	s.publisher.Publish(ctx, events.TypeBracketUpdated, tournamentID, events.BracketUpdatedPayload{Reason: "regenerated"})
	return withSchedule(t, schedule), nil
}

func (s *bracketService) GenerateKnockoutFromGroups(ctx context.Context, tournamentID int) (*models.Tournament, error) {
	var (
		t        *models.Tournament
		schedule *brackets.Schedule
	)
	err := s.tx.RunInTx(ctx, func(exec repositories.SQLExecutor) error {
		var err error
		t, err = s.tournamentRepo.GetForUpdate(ctx, exec, tournamentID)
		if err != nil {
			return mapRepositoryError(err)
		}
		if t.Format != models.FormatGroupKnockout {
			return fmt.Errorf("%w: knockout from groups needs the %s format", ErrFormatNotSupported, models.FormatGroupKnockout)
		}
		if t.Status != models.StatusInProgress {
			return fmt.Errorf("%w: tournament is %s", ErrTournamentInvalidStatus, t.Status)
		}

		knockout, group := models.PhaseKnockout, models.PhaseGroup
		existing, err := s.matchRepo.CountByTournament(ctx, exec, tournamentID, &knockout)
		if err != nil {
			return err
		}
		if existing > 0 {
			return ErrKnockoutExists
		}
		unresolved, err := s.matchRepo.CountUnresolved(ctx, exec, tournamentID, &group)
		if err != nil {
			return err
		}
		if unresolved > 0 {
			return fmt.Errorf("%w (%d left)", ErrGroupStageUnfinished, unresolved)
		}

		rows, err := s.standingRepo.ListByTournament(ctx, exec, tournamentID)
		if err != nil {
			return err
		}
		_, groups := splitStandings(rows)
		qualifiers := qualifiersRankMajor(tournamentID, groups, t.Config.AdvancePerGroup)
		if len(qualifiers) < 2 {
			return fmt.Errorf("%w (found %d)", ErrNotEnoughQualifiers, len(qualifiers))
		}

		offset, err := s.matchRepo.MaxRound(ctx, exec, tournamentID)
		if err != nil {
			return err
		}
		schedule, err = brackets.NewSingleEliminationGenerator().GenerateBracket(ctx, brackets.GenerateBracketParams{
			TournamentID: tournamentID,
			Participants: qualifiers,
			Config:       t.Config,
			RoundOffset:  offset,
		})
		if err != nil {
			return fmt.Errorf("failed to generate knockout for tournament %d: %w", tournamentID, err)
		}
		if err := s.matchRepo.BatchCreate(ctx, exec, schedule.Matches); err != nil {
			return mapRepositoryError(err)
		}

		rounds := append(append([]models.RoundDescriptor(nil), t.Rounds...), schedule.Rounds...)
		if err := s.tournamentRepo.SetRounds(ctx, exec, tournamentID, rounds); err != nil {
			return mapRepositoryError(err)
		}
		t.Rounds = rounds
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.InfoContext(ctx, "knockout generated from groups", "tournament_id", tournamentID, "matches", len(schedule.Matches))
	s.publisher.Publish(ctx, events.TypeBracketUpdated, tournamentID, events.BracketUpdatedPayload{
		Reason: "knockout_generated",
		Phase:  models.PhaseKnockout,
	})
	return withSchedule(t, schedule), nil
}

func (s *bracketService) registeredInSeedOrder(ctx context.Context, exec repositories.SQLExecutor, tournamentID int) ([]*models.Participant, error) {
	registered := models.ParticipantRegistered
	participants, err := s.participantRepo.ListByTournament(ctx, exec, tournamentID, &registered)
	if err != nil {
		return nil, fmt.Errorf("failed to list participants of tournament %d: %w", tournamentID, err)
	}
	if len(participants) < 2 {
		return nil, fmt.Errorf("%w (found %d)", ErrNotEnoughParticipants, len(participants))
	}
	return orderForGeneration(participants), nil
}

// buildSchedule runs the generator of the tournament format. Open ladders start empty.
func (s *bracketService) buildSchedule(ctx context.Context, t *models.Tournament, participants []*models.Participant) (*brackets.Schedule, error) {
	if t.Format == models.FormatOpenLadder {
		return &brackets.Schedule{}, nil
	}
	generator, err := brackets.NewGenerator(t.Format)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrFormatNotSupported, err)
	}
	schedule, err := generator.GenerateBracket(ctx, brackets.GenerateBracketParams{
		TournamentID: t.ID,
		Participants: participants,
		Config:       t.Config,
	})
	if err != nil {
		if errors.Is(err, brackets.ErrNotEnoughParticipants) {
			return nil, fmt.Errorf("%w: %w", ErrNotEnoughParticipants, err)
		}
		return nil, fmt.Errorf("%s generator failed for tournament %d: %w", generator.GetName(), t.ID, err)
	}
	return schedule, nil
}

// persistSchedule stores the matches, the group assignment and zeroed standings rows.
func (s *bracketService) persistSchedule(ctx context.Context, exec repositories.SQLExecutor, t *models.Tournament, participants []*models.Participant, schedule *brackets.Schedule) error {
	if err := s.matchRepo.BatchCreate(ctx, exec, schedule.Matches); err != nil {
		return mapRepositoryError(err)
	}
	if len(schedule.Groups) > 0 {
		if err := s.participantRepo.UpdateGroups(ctx, exec, t.ID, schedule.Groups); err != nil {
			return err
		}
	}

	names := make(map[int]string, len(participants))
	for _, p := range participants {
		names[p.ParticipantID] = p.Name
	}
	var rows []models.StandingRow
	switch {
	case t.Format.UsesOverallTable():
		for _, p := range participants {
			rows = append(rows, models.StandingRow{TournamentID: t.ID, ParticipantID: p.ParticipantID, Name: p.Name})
		}
	case len(schedule.Groups) > 0:
		for _, label := range sortedGroupLabels(schedule.Groups) {
			for _, id := range schedule.Groups[label] {
				rows = append(rows, models.StandingRow{TournamentID: t.ID, GroupLabel: stringPtr(label), ParticipantID: id, Name: names[id]})
			}
		}
	}
	if len(rows) == 0 {
		return nil
	}
	return s.standingRepo.InitRows(ctx, exec, rows)
}

// qualifiersRankMajor takes the top advance rows of every group and seeds them rank by
// rank: all group winners in group order, then all runners-up, and so on.
func qualifiersRankMajor(tournamentID int, groups map[string][]models.StandingRow, advance int) []*models.Participant {
	labels := sortedGroupLabels(groups)
	var qualifiers []*models.Participant
	for rank := 0; rank < advance; rank++ {
		for _, label := range labels {
			rows := groups[label]
			if rank >= len(rows) {
				continue
			}
			seed := len(qualifiers) + 1
			qualifiers = append(qualifiers, &models.Participant{
				TournamentID:  tournamentID,
				ParticipantID: rows[rank].ParticipantID,
				Name:          rows[rank].Name,
				Seed:          &seed,
				GroupLabel:    stringPtr(label),
				Status:        models.ParticipantRegistered,
			})
		}
	}
	return qualifiers
}

func withSchedule(t *models.Tournament, schedule *brackets.Schedule) *models.Tournament {
	if schedule.Groups != nil {
		t.Groups = schedule.Groups
	}
	t.Matches = make([]models.Match, 0, len(schedule.Matches))
	for _, m := range schedule.Matches {
		t.Matches = append(t.Matches, *m)
	}
	return t
}
