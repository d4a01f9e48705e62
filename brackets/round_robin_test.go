package brackets

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Dosada05/tournament-engine/models"
)

func TestRoundRobinEveryPairOnce(t *testing.T) {
	for n := 2; n <= 11; n++ {
		t.Run(fmt.Sprintf("n=%d", n), func(t *testing.T) {
			s, err := NewRoundRobinGenerator().GenerateBracket(context.Background(), GenerateBracketParams{
				TournamentID: 1,
				Participants: seededParticipants(n),
			})
			require.NoError(t, err)

			assert.Len(t, s.Matches, n*(n-1)/2)
			expectedRounds := n - 1
			if n%2 == 1 {
				expectedRounds = n
			}
			assert.Len(t, s.Rounds, expectedRounds)

			pairs := make(map[[2]int]int)
			playedIn := make(map[int]map[int]bool)
			for _, m := range s.Matches {
				require.True(t, m.Ready())
				assert.Equal(t, models.PhaseLeague, m.Phase)
				assert.Nil(t, m.GroupLabel)
				a, b := *m.ParticipantAID, *m.ParticipantBID
				if a > b {
					a, b = b, a
				}
				pairs[[2]int{a, b}]++
				for _, id := range []int{a, b} {
					if playedIn[id] == nil {
						playedIn[id] = make(map[int]bool)
					}
					assert.False(t, playedIn[id][m.Round], "participant %d plays twice in round %d", id, m.Round)
					playedIn[id][m.Round] = true
				}
			}
			for _, count := range pairs {
				assert.Equal(t, 1, count)
			}
			assert.Len(t, pairs, n*(n-1)/2)

			for id, rounds := range playedIn {
				idle := expectedRounds - len(rounds)
				if n%2 == 1 {
					assert.Equal(t, 1, idle, "participant %d must sit out exactly one round", id)
				} else {
					assert.Equal(t, 0, idle)
				}
			}

			for _, rd := range s.Rounds {
				assert.Equal(t, n/2, rd.MatchCount)
			}
		})
	}
}

func TestRoundRobinSixParticipants(t *testing.T) {
	s, err := NewRoundRobinGenerator().GenerateBracket(context.Background(), GenerateBracketParams{
		TournamentID: 1,
		Participants: seededParticipants(6),
	})
	require.NoError(t, err)
	assert.Len(t, s.Rounds, 5)
	assert.Len(t, s.Matches, 15)
	assert.Equal(t, "Round 1", s.Rounds[0].Label)
}
