package brackets

import (
	"context"
	"fmt"

	"github.com/Dosada05/tournament-engine/models"
)

type SingleEliminationGenerator struct {
}

func NewSingleEliminationGenerator() BracketGenerator {
	return &SingleEliminationGenerator{}
}

func (g *SingleEliminationGenerator) GetName() string {
	return "SingleElimination"
}

// RoundCount returns ceil(log2(n)).
func RoundCount(n int) int {
	rounds := 0
	for (1 << rounds) < n {
		rounds++
	}
	return rounds
}

// StandardBracketSeeds returns the seed (1-based) occupying each slot of a bracket
// of the given size, so that seeds 1 and 2 can only meet in the final.
// For 8 slots: 1, 8, 4, 5, 2, 7, 3, 6.
func StandardBracketSeeds(size int) []int {
	seeds := []int{1}
	for len(seeds) < size {
		next := make([]int, 0, len(seeds)*2)
		sum := len(seeds)*2 + 1
		for _, s := range seeds {
			next = append(next, s, sum-s)
		}
		seeds = next
	}
	return seeds
}

// NextSlot returns where the winner of the match at position goes in the next round.
func NextSlot(position int) (int, models.Side) {
	return position / 2, models.Side(position % 2)
}

// GenerateBracket pairs seed i with seed S-1-i (0-based) in round 1, pre-creates empty
// placeholders for the later rounds and resolves byes straight into round 2.
func (g *SingleEliminationGenerator) GenerateBracket(ctx context.Context, params GenerateBracketParams) (*Schedule, error) {
	participants := params.Participants
	n := len(participants)
	if n < 2 {
		return nil, fmt.Errorf("single elimination: %w (found %d)", ErrNotEnoughParticipants, n)
	}

	numRounds := RoundCount(n)
	size := 1 << numRounds
	offset := params.RoundOffset

	// Позиция пары в первом раунде по стандартной сетке, чтобы сильнейшие не встретились рано.
	positionOfTopSeed := make(map[int]int, size/2)
	for slot, seed := range StandardBracketSeeds(size) {
		if seed <= size/2 {
			positionOfTopSeed[seed] = slot / 2
		}
	}

	rounds := make([][]*models.Match, numRounds)
	rounds[0] = make([]*models.Match, size/2)
	byes := 0
	for i := 0; i < size/2; i++ {
		a := participants[i]
		var b *models.Participant
		if size-1-i < n {
			b = participants[size-1-i]
		}
		position := positionOfTopSeed[i+1]
		m := newMatch(params.TournamentID, models.PhaseKnockout, offset+1, position, a, b)
		if b == nil {
			m.Status = models.MatchBye
			winner := a.ParticipantID
			m.WinnerID = &winner
			byes++
		}
		rounds[0][position] = m
	}

	for r := 1; r < numRounds; r++ {
		count := size >> (r + 1)
		rounds[r] = make([]*models.Match, count)
		for p := 0; p < count; p++ {
			rounds[r][p] = newMatch(params.TournamentID, models.PhaseKnockout, offset+r+1, p, nil, nil)
		}
	}

	// Участники с bye сразу переходят во второй раунд.
	if numRounds > 1 {
		for _, m := range rounds[0] {
			if m.Status != models.MatchBye {
				continue
			}
			nextPos, side := NextSlot(m.Position)
			placeParticipant(rounds[1][nextPos], side, *m.WinnerID, m.ParticipantA)
		}
	}

	schedule := &Schedule{}
	for r, ms := range rounds {
		schedule.Matches = append(schedule.Matches, ms...)
		schedule.Rounds = append(schedule.Rounds, models.RoundDescriptor{
			Round:      offset + r + 1,
			Label:      EliminationRoundLabel(numRounds-r-1, size>>r),
			Phase:      models.PhaseKnockout,
			MatchCount: len(ms),
		})
	}

	if params.Config.ThirdPlaceMatch && thirdPlacePossible(numRounds, byes) {
		third := newMatch(params.TournamentID, models.PhaseKnockout, offset+numRounds+1, 0, nil, nil)
		third.IsThirdPlace = true
		schedule.Matches = append(schedule.Matches, third)
		schedule.Rounds = append(schedule.Rounds, models.RoundDescriptor{
			Round:        offset + numRounds + 1,
			Label:        ThirdPlaceLabel,
			Phase:        models.PhaseKnockout,
			MatchCount:   1,
			IsThirdPlace: true,
		})
	}

	return schedule, nil
}

// thirdPlacePossible reports whether both semifinals are real matches, so two losers exist.
func thirdPlacePossible(numRounds, byes int) bool {
	if numRounds < 2 {
		return false
	}
	return !(numRounds == 2 && byes > 0)
}

func placeParticipant(m *models.Match, side models.Side, participantID int, name string) {
	id := participantID
	if side == models.SideA {
		m.ParticipantAID = &id
		m.ParticipantA = name
		return
	}
	m.ParticipantBID = &id
	m.ParticipantB = name
}
