package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/Dosada05/tournament-engine/models"
	"github.com/Dosada05/tournament-engine/repositories"
)

// completionDetector decides whether a tournament has a final outcome.
type completionDetector struct {
	tournamentRepo repositories.TournamentRepository
	matchRepo      repositories.MatchRepository
	standingRepo   repositories.StandingRepository
}

// outcomeFromBracket reads placements from the knockout phase. It reports false while
// any match is unresolved or no knockout match exists yet.
func outcomeFromBracket(matches []*models.Match) (models.Outcome, bool) {
	var final, thirdPlace *models.Match
	for _, m := range matches {
		if !m.Status.Resolved() {
			return models.Outcome{}, false
		}
		if m.Phase != models.PhaseKnockout {
			continue
		}
		if m.IsThirdPlace {
			thirdPlace = m
			continue
		}
		if final == nil || m.Round > final.Round {
			final = m
		}
	}
	if final == nil || final.WinnerID == nil {
		return models.Outcome{}, false
	}

	outcome := models.Outcome{ChampionID: final.WinnerID}
	if runnerUp := final.Opponent(*final.WinnerID); runnerUp != nil {
		id := *runnerUp
		outcome.RunnerUpID = &id
	}
	if thirdPlace != nil && thirdPlace.WinnerID != nil {
		outcome.ThirdPlaceID = thirdPlace.WinnerID
	}
	return outcome, true
}

// outcomeFromStandings takes the top three rows of the tournament-wide table.
func outcomeFromStandings(rows []models.StandingRow) models.Outcome {
	overall, _ := splitStandings(rows)
	var outcome models.Outcome
	places := []**int{&outcome.ChampionID, &outcome.RunnerUpID, &outcome.ThirdPlaceID}
	for i, row := range overall {
		if i == len(places) {
			break
		}
		id := row.ParticipantID
		*places[i] = &id
	}
	return outcome
}

// check runs after every accepted result inside the result transaction. It finalizes
// the tournament when the outcome is decided and is a no-op for tournaments that are
// not in progress. Open ladders are completed only by an explicit finalize.
func (d *completionDetector) check(ctx context.Context, exec repositories.SQLExecutor, t *models.Tournament) (*models.Outcome, error) {
	if t.Status != models.StatusInProgress || t.Format == models.FormatOpenLadder {
		return nil, nil
	}

	matches, err := d.matchRepo.ListByTournament(ctx, exec, t.ID, repositories.MatchFilter{})
	if err != nil {
		return nil, err
	}

	var (
		outcome models.Outcome
		decided bool
	)
	switch t.Format {
	case models.FormatSingleElimination, models.FormatGroupKnockout:
		outcome, decided = outcomeFromBracket(matches)
	case models.FormatRoundRobin:
		for _, m := range matches {
			if !m.Status.Resolved() {
				return nil, nil
			}
		}
		rows, err := d.standingRepo.ListByTournament(ctx, exec, t.ID)
		if err != nil {
			return nil, err
		}
		outcome, decided = outcomeFromStandings(rows), true
	}
	if !decided {
		return nil, nil
	}

	if err := d.tournamentRepo.Finalize(ctx, exec, t.ID, outcome, time.Now().UTC()); err != nil {
		if errors.Is(err, repositories.ErrTournamentStatusMismatch) {
			return nil, nil
		}
		return nil, fmt.Errorf("finalize tournament %d: %w", t.ID, err)
	}
	return &outcome, nil
}

// finalize is the administrative completion. Elimination formats need a decided
// bracket; table formats are ranked by their current standings.
func (d *completionDetector) finalize(ctx context.Context, exec repositories.SQLExecutor, t *models.Tournament) (models.Outcome, error) {
	if t.Status != models.StatusInProgress {
		return models.Outcome{}, ErrTournamentInvalidStatus
	}

	var outcome models.Outcome
	if t.Format.UsesOverallTable() {
		rows, err := d.standingRepo.ListByTournament(ctx, exec, t.ID)
		if err != nil {
			return models.Outcome{}, err
		}
		outcome = outcomeFromStandings(rows)
	} else {
		matches, err := d.matchRepo.ListByTournament(ctx, exec, t.ID, repositories.MatchFilter{})
		if err != nil {
			return models.Outcome{}, err
		}
		var decided bool
		if outcome, decided = outcomeFromBracket(matches); !decided {
			return models.Outcome{}, ErrTournamentUndecided
		}
	}

	if err := d.tournamentRepo.Finalize(ctx, exec, t.ID, outcome, time.Now().UTC()); err != nil {
		return models.Outcome{}, mapRepositoryError(err)
	}
	return outcome, nil
}
