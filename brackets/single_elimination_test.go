package brackets

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Dosada05/tournament-engine/models"
)

func seededParticipants(n int) []*models.Participant {
	ps := make([]*models.Participant, n)
	for i := range ps {
		seed := i + 1
		ps[i] = &models.Participant{
			TournamentID:  1,
			ParticipantID: 100 + i,
			Name:          fmt.Sprintf("P%d", i+1),
			Seed:          &seed,
			Status:        models.ParticipantRegistered,
		}
	}
	return ps
}

func matchesInRound(s *Schedule, round int) []*models.Match {
	var out []*models.Match
	for _, m := range s.Matches {
		if m.Round == round && !m.IsThirdPlace {
			out = append(out, m)
		}
	}
	return out
}

func TestRoundCount(t *testing.T) {
	tests := []struct{ n, want int }{
		{2, 1}, {3, 2}, {4, 2}, {5, 3}, {8, 3}, {9, 4}, {16, 4}, {17, 5},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, RoundCount(tt.n), "n=%d", tt.n)
	}
}

func TestStandardBracketSeeds(t *testing.T) {
	assert.Equal(t, []int{1, 2}, StandardBracketSeeds(2))
	assert.Equal(t, []int{1, 4, 2, 3}, StandardBracketSeeds(4))
	assert.Equal(t, []int{1, 8, 4, 5, 2, 7, 3, 6}, StandardBracketSeeds(8))
}

func TestSingleEliminationBracketSize(t *testing.T) {
	gen := NewSingleEliminationGenerator()
	for n := 2; n <= 20; n++ {
		for _, third := range []bool{false, true} {
			t.Run(fmt.Sprintf("n=%d third=%v", n, third), func(t *testing.T) {
				s, err := gen.GenerateBracket(context.Background(), GenerateBracketParams{
					TournamentID: 1,
					Participants: seededParticipants(n),
					Config:       models.TournamentConfig{ThirdPlaceMatch: third},
				})
				require.NoError(t, err)

				rounds := RoundCount(n)
				size := 1 << rounds
				assert.Len(t, matchesInRound(s, 1), size/2)

				expectedRounds := rounds
				hasThird := false
				for _, m := range s.Matches {
					if m.IsThirdPlace {
						hasThird = true
						assert.Equal(t, rounds+1, m.Round)
					}
				}
				if hasThird {
					expectedRounds++
				}
				assert.Len(t, s.Rounds, expectedRounds)
				assert.Equal(t, size-1, len(s.Matches)-boolToInt(hasThird))

				if third && n >= 4 {
					assert.True(t, hasThird, "third place match expected for n=%d", n)
				}
			})
		}
	}
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}

func TestSingleEliminationByesAdvanceImmediately(t *testing.T) {
	// 5 участников: S=8, три bye и один реальный матч в первом раунде
	ps := seededParticipants(5)
	s, err := NewSingleEliminationGenerator().GenerateBracket(context.Background(), GenerateBracketParams{
		TournamentID: 1,
		Participants: ps,
		Config:       models.TournamentConfig{ThirdPlaceMatch: true},
	})
	require.NoError(t, err)

	first := matchesInRound(s, 1)
	require.Len(t, first, 4)

	byes, real := 0, 0
	for _, m := range first {
		if m.Status == models.MatchBye {
			byes++
			require.NotNil(t, m.WinnerID)
			require.NotNil(t, m.ParticipantAID)
			assert.Nil(t, m.ParticipantBID)
			assert.Equal(t, *m.ParticipantAID, *m.WinnerID)

			nextPos, side := NextSlot(m.Position)
			next := matchesInRound(s, 2)[nextPos]
			require.Equal(t, nextPos, next.Position)
			if side == models.SideA {
				require.NotNil(t, next.ParticipantAID)
				assert.Equal(t, *m.WinnerID, *next.ParticipantAID)
			} else {
				require.NotNil(t, next.ParticipantBID)
				assert.Equal(t, *m.WinnerID, *next.ParticipantBID)
			}
			continue
		}
		real++
		assert.Equal(t, models.MatchPending, m.Status)
		assert.True(t, m.Ready())
	}
	assert.Equal(t, 3, byes)
	assert.Equal(t, 1, real)

	// Финал и матч за третье место идут последними раундами
	final := matchesInRound(s, 3)
	require.Len(t, final, 1)
	assert.Equal(t, "Final", s.Rounds[2].Label)
	assert.Equal(t, ThirdPlaceLabel, s.Rounds[3].Label)
}

func TestSingleEliminationPairsTopAgainstBottom(t *testing.T) {
	ps := seededParticipants(8)
	s, err := NewSingleEliminationGenerator().GenerateBracket(context.Background(), GenerateBracketParams{
		TournamentID: 1,
		Participants: ps,
	})
	require.NoError(t, err)

	for _, m := range matchesInRound(s, 1) {
		require.True(t, m.Ready())
		a, b := *m.ParticipantAID-100, *m.ParticipantBID-100
		assert.Equal(t, 7, a+b, "seed %d must meet seed %d", a, 7-a)
	}
}

func TestSingleEliminationSkipsImpossibleThirdPlace(t *testing.T) {
	s, err := NewSingleEliminationGenerator().GenerateBracket(context.Background(), GenerateBracketParams{
		TournamentID: 1,
		Participants: seededParticipants(3),
		Config:       models.TournamentConfig{ThirdPlaceMatch: true},
	})
	require.NoError(t, err)
	for _, m := range s.Matches {
		assert.False(t, m.IsThirdPlace)
	}
	// Один полуфинал занят bye: второго проигравшего нет, раундов только два.
	assert.Len(t, s.Rounds, 2)
	assert.Equal(t, "Final", s.Rounds[1].Label)
}

func TestSingleEliminationRoundOnePositionsFollowStandardBracket(t *testing.T) {
	s, err := NewSingleEliminationGenerator().GenerateBracket(context.Background(), GenerateBracketParams{
		TournamentID: 1,
		Participants: seededParticipants(8),
	})
	require.NoError(t, err)

	// Позиция p держит пару из слотов 2p и 2p+1 стандартной сетки: 1-8, 4-5, 2-7, 3-6.
	want := map[int][2]int{0: {1, 8}, 1: {4, 5}, 2: {2, 7}, 3: {3, 6}}
	round := matchesInRound(s, 1)
	require.Len(t, round, 4)
	for _, m := range round {
		seeds := want[m.Position]
		assert.Equal(t, seeds[0], *m.ParticipantAID-99, "position %d", m.Position)
		assert.Equal(t, seeds[1], *m.ParticipantBID-99, "position %d", m.Position)
	}

	// Сеяные 1 и 2 встречаются только в финале.
	top := map[int]int{}
	for _, m := range round {
		top[*m.ParticipantAID-99] = m.Position
	}
	next1, _ := NextSlot(top[1])
	next2, _ := NextSlot(top[2])
	assert.NotEqual(t, next1, next2)
	semi1, _ := NextSlot(next1)
	semi2, _ := NextSlot(next2)
	assert.Equal(t, semi1, semi2)
}

func TestSingleEliminationRoundOffset(t *testing.T) {
	s, err := NewSingleEliminationGenerator().GenerateBracket(context.Background(), GenerateBracketParams{
		TournamentID: 1,
		Participants: seededParticipants(4),
		RoundOffset:  3,
	})
	require.NoError(t, err)
	assert.Len(t, matchesInRound(s, 4), 2)
	assert.Len(t, matchesInRound(s, 5), 1)
	assert.Equal(t, 4, s.Rounds[0].Round)
}

func TestSingleEliminationRejectsTooFew(t *testing.T) {
	_, err := NewSingleEliminationGenerator().GenerateBracket(context.Background(), GenerateBracketParams{
		Participants: seededParticipants(1),
	})
	assert.ErrorIs(t, err, ErrNotEnoughParticipants)
}
