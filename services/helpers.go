package services

import (
	"errors"
	"sort"
	"strings"

	"github.com/Dosada05/tournament-engine/models"
	"github.com/Dosada05/tournament-engine/repositories"
)

// --- Жизненный цикл ---

var allowedTransitions = map[models.TournamentStatus][]models.TournamentStatus{
	models.StatusDraft:              {models.StatusRegistrationOpen, models.StatusCancelled},
	models.StatusRegistrationOpen:   {models.StatusRegistrationClosed, models.StatusCancelled},
	models.StatusRegistrationClosed: {models.StatusInProgress, models.StatusCancelled},
	models.StatusInProgress:         {models.StatusCompleted, models.StatusCancelled},
	models.StatusCompleted:          {},
	models.StatusCancelled:          {},
}

func isValidStatusTransition(current, next models.TournamentStatus) bool {
	for _, allowed := range allowedTransitions[current] {
		if next == allowed {
			return true
		}
	}
	return false
}

// --- Ошибки репозиториев ---

// mapRepositoryError translates repository sentinels into the engine error kinds.
func mapRepositoryError(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, repositories.ErrTournamentNotFound):
		return ErrTournamentNotFound
	case errors.Is(err, repositories.ErrTournamentStatusMismatch):
		return ErrTournamentInvalidStatus
	case errors.Is(err, repositories.ErrTournamentFull):
		return ErrTournamentFull
	case errors.Is(err, repositories.ErrParticipantNotFound):
		return ErrParticipantNotFound
	case errors.Is(err, repositories.ErrParticipantConflict):
		return ErrAlreadyRegistered
	case errors.Is(err, repositories.ErrMatchNotFound):
		return ErrMatchNotFound
	case errors.Is(err, repositories.ErrMatchAlreadyResolved):
		return ErrMatchAlreadyResolved
	case errors.Is(err, repositories.ErrMatchNotPending):
		return ErrMatchNotPending
	case errors.Is(err, repositories.ErrMatchSlotConflict):
		return ErrConcurrentUpdate
	}
	return err
}

// --- Участники ---

// orderForGeneration sorts participants by seed; unseeded participants follow in
// registration order.
func orderForGeneration(participants []*models.Participant) []*models.Participant {
	ordered := append([]*models.Participant(nil), participants...)
	sort.SliceStable(ordered, func(i, j int) bool {
		a, b := ordered[i].Seed, ordered[j].Seed
		switch {
		case a == nil:
			return false
		case b == nil:
			return true
		}
		return *a < *b
	})
	return ordered
}

func stringPtr(s string) *string {
	return &s
}

// --- Таблицы ---

// resultDeltas returns the increments one result adds to the winner's and loser's rows.
func resultDeltas(cfg models.TournamentConfig, group *string, winnerID, loserID, winnerSets, loserSets int) []repositories.StandingDelta {
	return []repositories.StandingDelta{
		{GroupLabel: group, ParticipantID: winnerID, Won: 1, SetsWon: winnerSets, SetsLost: loserSets, Points: cfg.WinPoints},
		{GroupLabel: group, ParticipantID: loserID, Lost: 1, SetsWon: loserSets, SetsLost: winnerSets, Points: cfg.LossPoints},
	}
}

// splitStandings separates the tournament-wide table from group tables and sorts each.
func splitStandings(rows []models.StandingRow) ([]models.StandingRow, map[string][]models.StandingRow) {
	var overall []models.StandingRow
	groups := make(map[string][]models.StandingRow)
	for _, row := range rows {
		if row.GroupLabel == nil {
			overall = append(overall, row)
			continue
		}
		groups[*row.GroupLabel] = append(groups[*row.GroupLabel], row)
	}
	models.SortStandings(overall)
	for label := range groups {
		models.SortStandings(groups[label])
	}
	if len(groups) == 0 {
		groups = nil
	}
	return overall, groups
}

// sortedGroupLabels orders labels "A".."Z" before "G27", "G28", ...
func sortedGroupLabels[V any](groups map[string]V) []string {
	labels := make([]string, 0, len(groups))
	for label := range groups {
		labels = append(labels, label)
	}
	sort.Slice(labels, func(i, j int) bool {
		if len(labels[i]) != len(labels[j]) {
			return len(labels[i]) < len(labels[j])
		}
		return strings.Compare(labels[i], labels[j]) < 0
	})
	return labels
}

// groupsFromParticipants rebuilds the group -> participant ids map in seed order.
func groupsFromParticipants(participants []*models.Participant) map[string][]int {
	groups := make(map[string][]int)
	for _, p := range orderForGeneration(participants) {
		if p.GroupLabel == nil {
			continue
		}
		groups[*p.GroupLabel] = append(groups[*p.GroupLabel], p.ParticipantID)
	}
	if len(groups) == 0 {
		return nil
	}
	return groups
}
