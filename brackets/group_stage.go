package brackets

import (
	"context"
	"fmt"

	"github.com/Dosada05/tournament-engine/models"
)

// GroupStageGenerator produces the group phase of a group_knockout tournament.
// The knockout phase is generated later from the final group standings.
type GroupStageGenerator struct{}

func NewGroupStageGenerator() BracketGenerator {
	return &GroupStageGenerator{}
}

func (g *GroupStageGenerator) GetName() string {
	return "GroupStage"
}

// DistributeSnake splits seeded participants into numGroups groups, walking the group
// list forward on even passes and backward on odd passes.
func DistributeSnake(participants []*models.Participant, numGroups int) [][]*models.Participant {
	groups := make([][]*models.Participant, numGroups)
	for idx, p := range participants {
		pass, pos := idx/numGroups, idx%numGroups
		if pass%2 == 1 {
			pos = numGroups - 1 - pos
		}
		groups[pos] = append(groups[pos], p)
	}
	return groups
}

func (g *GroupStageGenerator) GenerateBracket(ctx context.Context, params GenerateBracketParams) (*Schedule, error) {
	numGroups := params.Config.NumGroups
	n := len(params.Participants)
	if n < 2 {
		return nil, fmt.Errorf("group stage: %w (found %d)", ErrNotEnoughParticipants, n)
	}
	if numGroups < 1 {
		return nil, fmt.Errorf("group stage: invalid number of groups %d", numGroups)
	}
	if n < numGroups*2 {
		return nil, fmt.Errorf("group stage: %w: %d participants cannot fill %d groups of at least 2", ErrNotEnoughParticipants, n, numGroups)
	}

	schedule := &Schedule{Groups: make(map[string][]int, numGroups)}
	matchesPerRound := make(map[int]int)
	maxRound := 0
	for i, members := range DistributeSnake(params.Participants, numGroups) {
		label := GroupLabel(i)
		ids := make([]int, 0, len(members))
		for _, p := range members {
			ids = append(ids, p.ParticipantID)
		}
		schedule.Groups[label] = ids

		matches, rounds := circleSchedule(params.TournamentID, members, models.PhaseGroup, &label, params.RoundOffset)
		schedule.Matches = append(schedule.Matches, matches...)
		for r, count := range rounds {
			matchesPerRound[r] += count
		}
		if len(rounds) > maxRound {
			maxRound = len(rounds)
		}
	}

	for r := 0; r < maxRound; r++ {
		round := params.RoundOffset + r + 1
		schedule.Rounds = append(schedule.Rounds, models.RoundDescriptor{
			Round:      round,
			Label:      GroupRoundLabel(round),
			Phase:      models.PhaseGroup,
			MatchCount: matchesPerRound[r],
		})
	}
	return schedule, nil
}
