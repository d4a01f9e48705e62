package brackets

import (
	"context"
	"errors"
	"fmt"

	"github.com/Dosada05/tournament-engine/models"
)

var (
	ErrNotEnoughParticipants = errors.New("not enough participants to generate a schedule (minimum 2)")
	ErrNoScheduleForFormat   = errors.New("format has no pre-generated schedule")
)

type GenerateBracketParams struct {
	TournamentID int
	// Participants must already be ordered by seed (strongest first).
	Participants []*models.Participant
	Config       models.TournamentConfig
	// RoundOffset is added to every generated round number.
	RoundOffset int
}

// Schedule is the output of a generator: match placeholders and the round summary.
type Schedule struct {
	Matches []*models.Match
	Rounds  []models.RoundDescriptor
	Groups  map[string][]int
}

type BracketGenerator interface {
	GenerateBracket(ctx context.Context, params GenerateBracketParams) (*Schedule, error)

	GetName() string
}

// NewGenerator returns the generator used when a tournament of the given format starts.
// Open ladder tournaments have no pre-generated schedule.
func NewGenerator(format models.TournamentFormat) (BracketGenerator, error) {
	switch format {
	case models.FormatSingleElimination:
		return NewSingleEliminationGenerator(), nil
	case models.FormatRoundRobin:
		return NewRoundRobinGenerator(), nil
	case models.FormatGroupKnockout:
		return NewGroupStageGenerator(), nil
	case models.FormatOpenLadder:
		return nil, ErrNoScheduleForFormat
	default:
		return nil, fmt.Errorf("unsupported tournament format '%s'", format)
	}
}

func newMatch(tournamentID int, phase models.MatchPhase, round, position int, a, b *models.Participant) *models.Match {
	m := &models.Match{
		TournamentID: tournamentID,
		Phase:        phase,
		Round:        round,
		Position:     position,
		Status:       models.MatchPending,
	}
	if a != nil {
		id := a.ParticipantID
		m.ParticipantAID = &id
		m.ParticipantA = a.Name
	}
	if b != nil {
		id := b.ParticipantID
		m.ParticipantBID = &id
		m.ParticipantB = b.Name
	}
	return m
}
