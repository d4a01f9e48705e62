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

type SubmitResultInput struct {
	TournamentID int               `json:"-"`
	MatchID      int               `json:"-"`
	WinnerID     int               `json:"winner_id"`
	ScoreA       int               `json:"score_a"`
	ScoreB       int               `json:"score_b"`
	Sets         []models.SetScore `json:"sets,omitempty"`
	Walkover     bool              `json:"walkover,omitempty"`
}

type LadderResultInput struct {
	TournamentID   int               `json:"-"`
	ParticipantAID int               `json:"participant_a_id"`
	ParticipantBID int               `json:"participant_b_id"`
	WinnerID       int               `json:"winner_id"`
	ScoreA         int               `json:"score_a"`
	ScoreB         int               `json:"score_b"`
	Sets           []models.SetScore `json:"sets,omitempty"`
}

// ResultOutcome is what an accepted result changed.
type ResultOutcome struct {
	Match               *models.Match   `json:"match"`
	Advanced            bool            `json:"advanced"`
	TournamentCompleted bool            `json:"tournament_completed"`
	Outcome             *models.Outcome `json:"outcome,omitempty"`
}

type MatchService interface {
	ListMatches(ctx context.Context, tournamentID int, filter repositories.MatchFilter) ([]*models.Match, error)
	GetMatch(ctx context.Context, tournamentID, matchID int) (*models.Match, error)
	StartMatch(ctx context.Context, tournamentID, matchID int) (*models.Match, error)
	// SubmitResult resolves a scheduled match exactly once, advances the bracket,
	// updates standings and completes the tournament when it is decided.
	SubmitResult(ctx context.Context, input SubmitResultInput) (*ResultOutcome, error)
	// ReportLadderResult records an ad-hoc open ladder match.
	ReportLadderResult(ctx context.Context, input LadderResultInput) (*ResultOutcome, error)
}

type matchService struct {
	tx              repositories.TxManager
	tournamentRepo  repositories.TournamentRepository
	participantRepo repositories.ParticipantRepository
	matchRepo       repositories.MatchRepository
	standingRepo    repositories.StandingRepository
	completion      *completionDetector
	publisher       events.Publisher
	logger          *slog.Logger
}

func NewMatchService(
	tx repositories.TxManager,
	tournamentRepo repositories.TournamentRepository,
	participantRepo repositories.ParticipantRepository,
	matchRepo repositories.MatchRepository,
	standingRepo repositories.StandingRepository,
	publisher events.Publisher,
	logger *slog.Logger,
) MatchService {
	return &matchService{
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

func (s *matchService) ListMatches(ctx context.Context, tournamentID int, filter repositories.MatchFilter) ([]*models.Match, error) {
	if _, err := s.tournamentRepo.GetByID(ctx, nil, tournamentID); err != nil {
		return nil, mapRepositoryError(err)
	}
	matches, err := s.matchRepo.ListByTournament(ctx, nil, tournamentID, filter)
	if err != nil {
		return nil, fmt.Errorf("failed to list matches of tournament %d: %w", tournamentID, err)
	}
	return matches, nil
}

func (s *matchService) GetMatch(ctx context.Context, tournamentID, matchID int) (*models.Match, error) {
	m, err := s.matchRepo.GetByID(ctx, nil, matchID)
	if err != nil {
		return nil, mapRepositoryError(err)
	}
	if m.TournamentID != tournamentID {
		return nil, ErrMatchNotInTournament
	}
	return m, nil
}

func (s *matchService) StartMatch(ctx context.Context, tournamentID, matchID int) (*models.Match, error) {
	var started *models.Match
	err := s.tx.RunInTx(ctx, func(exec repositories.SQLExecutor) error {
		if _, err := s.runningTournament(ctx, exec, tournamentID); err != nil {
			return err
		}
		m, err := s.matchOf(ctx, exec, tournamentID, matchID)
		if err != nil {
			return err
		}
		switch {
		case m.Status.Resolved():
			return ErrMatchAlreadyResolved
		case !m.Ready():
			return ErrMatchNotReady
		case m.Status != models.MatchPending:
			return ErrMatchNotPending
		}
		if err := s.matchRepo.Start(ctx, exec, matchID); err != nil {
			return mapRepositoryError(err)
		}
		m.Status = models.MatchInProgress
		started = m
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.InfoContext(ctx, "match started", "tournament_id", tournamentID, "match_id", matchID)
	s.publisher.Publish(ctx, events.TypeBracketUpdated, tournamentID, events.BracketUpdatedPayload{Reason: "match_started", Phase: started.Phase})
	return started, nil
}

func (s *matchService) SubmitResult(ctx context.Context, input SubmitResultInput) (*ResultOutcome, error) {
	if err := validateResultShape(input.ScoreA, input.ScoreB, input.Sets, input.Walkover); err != nil {
		return nil, err
	}

	var (
		t      *models.Tournament
		result = &ResultOutcome{}
	)
	err := s.tx.RunInTx(ctx, func(exec repositories.SQLExecutor) error {
		var err error
		if t, err = s.runningTournament(ctx, exec, input.TournamentID); err != nil {
			return err
		}
		m, err := s.matchOf(ctx, exec, input.TournamentID, input.MatchID)
		if err != nil {
			return err
		}
		if m.Phase == models.PhaseLadder || m.Status.Resolved() {
			return ErrMatchAlreadyResolved
		}
		if !m.Ready() {
			return ErrMatchNotReady
		}
		if !m.HasParticipant(input.WinnerID) {
			return fmt.Errorf("%w (winner %d, match %d)", ErrWinnerNotParticipant, input.WinnerID, m.ID)
		}

		winnerIsA := *m.ParticipantAID == input.WinnerID
		scoreA, scoreB, err := normalizeScores(t.Config, input.ScoreA, input.ScoreB, input.Sets, input.Walkover, winnerIsA)
		if err != nil {
			return err
		}
		status := models.MatchCompleted
		if input.Walkover {
			status = models.MatchWalkover
		}

		err = s.matchRepo.Complete(ctx, exec, repositories.MatchResult{
			MatchID:     m.ID,
			WinnerID:    input.WinnerID,
			ScoreA:      scoreA,
			ScoreB:      scoreB,
			Sets:        input.Sets,
			Status:      status,
			CompletedAt: time.Now().UTC(),
		})
		if err != nil {
			return mapRepositoryError(err)
		}

		loserID := *m.Opponent(input.WinnerID)
		winnerSets, loserSets := scoreA, scoreB
		if !winnerIsA {
			winnerSets, loserSets = scoreB, scoreA
		}
		if input.Walkover {
			winnerSets, loserSets = 0, 0
		}
		if result.Advanced, err = s.applyResult(ctx, exec, t, m, input.WinnerID, loserID, winnerSets, loserSets); err != nil {
			return err
		}

		if result.Outcome, err = s.completion.check(ctx, exec, t); err != nil {
			return err
		}
		result.TournamentCompleted = result.Outcome != nil

		result.Match, err = s.matchRepo.GetByID(ctx, exec, m.ID)
		return err
	})
	if err != nil {
		return nil, err
	}

	s.logger.InfoContext(ctx, "match result accepted",
		"tournament_id", input.TournamentID, "match_id", input.MatchID, "winner_id", input.WinnerID, "status", result.Match.Status)
	s.publishResult(ctx, t, result)
	return result, nil
}

func (s *matchService) ReportLadderResult(ctx context.Context, input LadderResultInput) (*ResultOutcome, error) {
	a, b := input.ParticipantAID, input.ParticipantBID
	if a <= 0 || b <= 0 {
		return nil, ErrInvalidParticipantID
	}
	if a == b {
		return nil, ErrSelfMatch
	}
	if input.WinnerID != a && input.WinnerID != b {
		return nil, fmt.Errorf("%w (winner %d)", ErrWinnerNotParticipant, input.WinnerID)
	}
	if err := validateResultShape(input.ScoreA, input.ScoreB, input.Sets, false); err != nil {
		return nil, err
	}

	var (
		t      *models.Tournament
		result = &ResultOutcome{}
	)
	err := s.tx.RunInTx(ctx, func(exec repositories.SQLExecutor) error {
		var err error
		if t, err = s.runningTournament(ctx, exec, input.TournamentID); err != nil {
			return err
		}
		if t.Format != models.FormatOpenLadder {
			return fmt.Errorf("%w: ad-hoc results need the %s format", ErrFormatNotSupported, models.FormatOpenLadder)
		}
		pa, err := s.registeredPlayer(ctx, exec, t.ID, a)
		if err != nil {
			return err
		}
		pb, err := s.registeredPlayer(ctx, exec, t.ID, b)
		if err != nil {
			return err
		}

		winnerIsA := input.WinnerID == a
		scoreA, scoreB, err := normalizeScores(t.Config, input.ScoreA, input.ScoreB, input.Sets, false, winnerIsA)
		if err != nil {
			return err
		}

		ladder := models.PhaseLadder
		played, err := s.matchRepo.CountByTournament(ctx, exec, t.ID, &ladder)
		if err != nil {
			return err
		}
		now := time.Now().UTC()
		winner := input.WinnerID
		m := &models.Match{
			TournamentID:   t.ID,
			Phase:          models.PhaseLadder,
			Round:          played + 1,
			ParticipantAID: &pa.ParticipantID,
			ParticipantA:   pa.Name,
			ParticipantBID: &pb.ParticipantID,
			ParticipantB:   pb.Name,
			ScoreA:         scoreA,
			ScoreB:         scoreB,
			Sets:           input.Sets,
			WinnerID:       &winner,
			Status:         models.MatchCompleted,
			CompletedAt:    &now,
		}
		if err := s.matchRepo.Create(ctx, exec, m); err != nil {
			return mapRepositoryError(err)
		}

		loserID, winnerSets, loserSets := b, scoreA, scoreB
		if !winnerIsA {
			loserID, winnerSets, loserSets = a, scoreB, scoreA
		}
		if _, err := s.applyResult(ctx, exec, t, m, winner, loserID, winnerSets, loserSets); err != nil {
			return err
		}
		if result.Outcome, err = s.completion.check(ctx, exec, t); err != nil {
			return err
		}
		result.TournamentCompleted = result.Outcome != nil
		result.Match = m
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.InfoContext(ctx, "ladder result recorded", "tournament_id", input.TournamentID, "match_id", result.Match.ID, "winner_id", input.WinnerID)
	s.publishResult(ctx, t, result)
	return result, nil
}

// applyResult runs the format-specific effects of a resolved match.
func (s *matchService) applyResult(ctx context.Context, exec repositories.SQLExecutor, t *models.Tournament, m *models.Match, winnerID, loserID, winnerSets, loserSets int) (bool, error) {
	switch m.Phase {
	case models.PhaseKnockout:
		if m.IsThirdPlace {
			return false, nil
		}
		return s.advance(ctx, exec, t, m, winnerID, loserID)
	case models.PhaseLeague, models.PhaseLadder, models.PhaseGroup:
		var group *string
		if m.Phase == models.PhaseGroup {
			group = m.GroupLabel
		}
		for _, delta := range resultDeltas(t.Config, group, winnerID, loserID, winnerSets, loserSets) {
			if err := s.standingRepo.ApplyDelta(ctx, exec, t.ID, delta); err != nil {
				return false, fmt.Errorf("failed to update standings of participant %d: %w", delta.ParticipantID, err)
			}
		}
	}
	return false, nil
}

// advance writes the winner into the next knockout round and, after a semifinal,
// the loser into the third-place match. The final advances nobody.
func (s *matchService) advance(ctx context.Context, exec repositories.SQLExecutor, t *models.Tournament, m *models.Match, winnerID, loserID int) (bool, error) {
	finalRound, hasThirdPlace := knockoutLayout(t.Rounds)
	if m.Round >= finalRound {
		return false, nil
	}

	nextRound := m.Round + 1
	position, side := brackets.NextSlot(m.Position)
	if err := s.matchRepo.AssignSlot(ctx, exec, t.ID, nextRound, position, side, winnerID, m.NameOf(winnerID)); err != nil {
		return false, fmt.Errorf("failed to advance winner of match %d to round %d position %d: %w", m.ID, nextRound, position, err)
	}

	if hasThirdPlace && nextRound == finalRound {
		if err := s.matchRepo.AssignThirdPlaceSlot(ctx, exec, t.ID, loserID, m.NameOf(loserID)); err != nil {
			return false, fmt.Errorf("failed to place loser of match %d into the third-place match: %w", m.ID, err)
		}
	}
	return true, nil
}

// knockoutLayout returns the final round number and whether a third-place match exists.
func knockoutLayout(rounds []models.RoundDescriptor) (int, bool) {
	finalRound, thirdPlace := 0, false
	for _, r := range rounds {
		if r.Phase != models.PhaseKnockout {
			continue
		}
		if r.IsThirdPlace {
			thirdPlace = true
			continue
		}
		if r.Round > finalRound {
			finalRound = r.Round
		}
	}
	return finalRound, thirdPlace
}

func (s *matchService) publishResult(ctx context.Context, t *models.Tournament, result *ResultOutcome) {
	s.publisher.Publish(ctx, events.TypeMatchCompleted, t.ID, events.MatchCompletedPayload{Match: result.Match})
	if result.Advanced {
		s.publisher.Publish(ctx, events.TypeBracketUpdated, t.ID, events.BracketUpdatedPayload{Reason: "advanced", Phase: models.PhaseKnockout})
	}
	if result.TournamentCompleted {
		s.logger.InfoContext(ctx, "tournament completed", "tournament_id", t.ID)
		s.publisher.Publish(ctx, events.TypeTournamentCompleted, t.ID, events.TournamentCompletedPayload{
			Name: t.Name, Format: t.Format, Outcome: *result.Outcome,
		})
	}
}

func (s *matchService) runningTournament(ctx context.Context, exec repositories.SQLExecutor, tournamentID int) (*models.Tournament, error) {
	t, err := s.tournamentRepo.GetForUpdate(ctx, exec, tournamentID)
	if err != nil {
		return nil, mapRepositoryError(err)
	}
	if t.Status != models.StatusInProgress {
		return nil, fmt.Errorf("%w: results are accepted only while the tournament is in progress (status %s)", ErrTournamentInvalidStatus, t.Status)
	}
	return t, nil
}

func (s *matchService) matchOf(ctx context.Context, exec repositories.SQLExecutor, tournamentID, matchID int) (*models.Match, error) {
	m, err := s.matchRepo.GetByID(ctx, exec, matchID)
	if err != nil {
		return nil, mapRepositoryError(err)
	}
	if m.TournamentID != tournamentID {
		return nil, ErrMatchNotInTournament
	}
	return m, nil
}

func (s *matchService) registeredPlayer(ctx context.Context, exec repositories.SQLExecutor, tournamentID, participantID int) (*models.Participant, error) {
	p, err := s.participantRepo.Get(ctx, exec, tournamentID, participantID)
	if err != nil {
		if errors.Is(err, repositories.ErrParticipantNotFound) {
			return nil, fmt.Errorf("%w (participant %d)", ErrPlayerNotRegistered, participantID)
		}
		return nil, err
	}
	if p.Status != models.ParticipantRegistered {
		return nil, fmt.Errorf("%w (participant %d)", ErrPlayerNotRegistered, participantID)
	}
	return p, nil
}

// validateResultShape checks what can be checked without the match.
func validateResultShape(scoreA, scoreB int, sets []models.SetScore, walkover bool) error {
	if scoreA < 0 || scoreB < 0 {
		return fmt.Errorf("%w: scores must not be negative", ErrInvalidScore)
	}
	if walkover && len(sets) > 0 {
		return fmt.Errorf("%w: a walkover has no set detail", ErrInvalidSets)
	}
	for i, set := range sets {
		if set.A < 0 || set.B < 0 {
			return fmt.Errorf("%w: set %d has a negative score", ErrInvalidSets, i+1)
		}
		if set.A == set.B {
			return fmt.Errorf("%w: set %d is tied", ErrInvalidSets, i+1)
		}
	}
	return nil
}

// normalizeScores bounds the set detail by best_of, derives the score from the sets when
// no score is given and checks that the winner is not behind.
func normalizeScores(cfg models.TournamentConfig, scoreA, scoreB int, sets []models.SetScore, walkover, winnerIsA bool) (int, int, error) {
	if cfg.BestOf > 0 && len(sets) > cfg.BestOf {
		return 0, 0, fmt.Errorf("%w: %d sets exceed best of %d", ErrInvalidSets, len(sets), cfg.BestOf)
	}
	if len(sets) > 0 {
		wonA, wonB := 0, 0
		for _, set := range sets {
			if set.A > set.B {
				wonA++
			} else {
				wonB++
			}
		}
		switch {
		case scoreA == 0 && scoreB == 0:
			scoreA, scoreB = wonA, wonB
		case scoreA != wonA || scoreB != wonB:
			return 0, 0, fmt.Errorf("%w: set detail %d-%d does not match score %d-%d", ErrInvalidSets, wonA, wonB, scoreA, scoreB)
		}
	}
	if walkover || (scoreA == 0 && scoreB == 0) {
		return scoreA, scoreB, nil
	}

	winnerScore, loserScore := scoreA, scoreB
	if !winnerIsA {
		winnerScore, loserScore = scoreB, scoreA
	}
	if winnerScore <= loserScore {
		return 0, 0, fmt.Errorf("%w: winner must have the higher score (%d-%d)", ErrInvalidScore, scoreA, scoreB)
	}
	return scoreA, scoreB, nil
}
