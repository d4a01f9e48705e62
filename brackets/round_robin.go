package brackets

import (
	"context"
	"fmt"

	"github.com/Dosada05/tournament-engine/models"
)

type RoundRobinGenerator struct{}

func NewRoundRobinGenerator() BracketGenerator {
	return &RoundRobinGenerator{}
}

func (g *RoundRobinGenerator) GetName() string {
	return "RoundRobin"
}

// GenerateBracket creates a single round-robin over all participants.
func (g *RoundRobinGenerator) GenerateBracket(ctx context.Context, params GenerateBracketParams) (*Schedule, error) {
	if len(params.Participants) < 2 {
		return nil, fmt.Errorf("round robin: %w (found %d)", ErrNotEnoughParticipants, len(params.Participants))
	}

	matches, rounds := circleSchedule(params.TournamentID, params.Participants, models.PhaseLeague, nil, params.RoundOffset)
	schedule := &Schedule{Matches: matches}
	for i, count := range rounds {
		round := params.RoundOffset + i + 1
		schedule.Rounds = append(schedule.Rounds, models.RoundDescriptor{
			Round:      round,
			Label:      LeagueRoundLabel(round),
			Phase:      models.PhaseLeague,
			MatchCount: count,
		})
	}
	return schedule, nil
}

// circleSchedule runs the circle method: the first participant stays fixed while the
// rest rotate by one position each round. With an odd count a nil slot is added and
// whoever meets it sits the round out. It returns the matches and the match count per round.
func circleSchedule(tournamentID int, participants []*models.Participant, phase models.MatchPhase, group *string, offset int) ([]*models.Match, []int) {
	players := make([]*models.Participant, len(participants), len(participants)+1)
	copy(players, participants)
	if len(players)%2 != 0 {
		players = append(players, nil)
	}
	n := len(players)

	matches := make([]*models.Match, 0, n/2*(n-1))
	perRound := make([]int, 0, n-1)
	for r := 0; r < n-1; r++ {
		position := 0
		for i := 0; i < n/2; i++ {
			a, b := players[i], players[n-1-i]
			if a == nil || b == nil {
				continue
			}
			m := newMatch(tournamentID, phase, offset+r+1, position, a, b)
			if group != nil {
				label := *group
				m.GroupLabel = &label
			}
			matches = append(matches, m)
			position++
		}
		perRound = append(perRound, position)

		rotated := make([]*models.Participant, 0, n)
		rotated = append(rotated, players[0], players[n-1])
		rotated = append(rotated, players[1:n-1]...)
		players = rotated
	}
	return matches, perRound
}
