package seeding

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Dosada05/tournament-engine/models"
)

type staticRatings map[int]float64

func (s staticRatings) Rating(_ context.Context, id int) (float64, bool) {
	v, ok := s[id]
	return v, ok
}

type rankingFunc func(ctx context.Context, leagueID string) ([]int, error)

func (f rankingFunc) Ranking(ctx context.Context, leagueID string) ([]int, error) {
	return f(ctx, leagueID)
}

func registered(ids ...int) []*models.Participant {
	ps := make([]*models.Participant, len(ids))
	for i, id := range ids {
		ps[i] = &models.Participant{ParticipantID: id}
	}
	return ps
}

func idsAndSeeds(t *testing.T, ps []*models.Participant) []int {
	t.Helper()
	ids := make([]int, len(ps))
	for i, p := range ps {
		require.NotNil(t, p.Seed)
		assert.Equal(t, i+1, *p.Seed)
		ids[i] = p.ParticipantID
	}
	return ids
}

func discard() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestSeedByRatingStableAndUnrankedLast(t *testing.T) {
	ratings := staticRatings{10: 1500, 11: 1700, 13: 1500, 14: 1900}
	s := NewSeeder(ratings, nil, discard())

	out, err := s.Seed(context.Background(), registered(10, 11, 12, 13, 14), Request{Source: SourceRating})
	require.NoError(t, err)
	// 10 и 13 с равным рейтингом остаются в порядке регистрации, 12 без рейтинга последний
	assert.Equal(t, []int{14, 11, 10, 13, 12}, idsAndSeeds(t, out))
}

func TestSeedByExternalRanking(t *testing.T) {
	ranking := rankingFunc(func(_ context.Context, leagueID string) ([]int, error) {
		assert.Equal(t, "2025-summer", leagueID)
		return []int{3, 99, 1}, nil
	})
	s := NewSeeder(nil, ranking, discard())

	out, err := s.Seed(context.Background(), registered(1, 2, 3, 4), Request{Source: SourceRating, LeagueID: "2025-summer"})
	require.NoError(t, err)
	assert.Equal(t, []int{3, 1, 2, 4}, idsAndSeeds(t, out))
}

func TestSeedByExternalRankingFailureKeepsRegistrationOrder(t *testing.T) {
	ranking := rankingFunc(func(context.Context, string) ([]int, error) {
		return nil, errors.New("league page unavailable")
	})
	s := NewSeeder(nil, ranking, discard())

	out, err := s.Seed(context.Background(), registered(5, 6, 7), Request{Source: SourceRating, LeagueID: "x"})
	require.NoError(t, err)
	assert.Equal(t, []int{5, 6, 7}, idsAndSeeds(t, out))
}

func TestSeedRandomAssignsPermutation(t *testing.T) {
	s := NewSeeder(nil, nil, discard())
	s.shuffle = func(n int, swap func(i, j int)) {
		for i := 0; i < n/2; i++ {
			swap(i, n-1-i)
		}
	}

	out, err := s.Seed(context.Background(), registered(1, 2, 3, 4), Request{Source: SourceRandom})
	require.NoError(t, err)
	assert.Equal(t, []int{4, 3, 2, 1}, idsAndSeeds(t, out))
}

func TestSeedManual(t *testing.T) {
	tests := []struct {
		name    string
		input   func() []*models.Participant
		seeds   map[int]int
		want    []int
		wantErr bool
	}{
		{
			name:  "explicit permutation",
			input: func() []*models.Participant { return registered(1, 2, 3) },
			seeds: map[int]int{1: 3, 2: 1, 3: 2},
			want:  []int{2, 3, 1},
		},
		{
			name: "existing seeds pass through",
			input: func() []*models.Participant {
				ps := registered(1, 2)
				two, one := 2, 1
				ps[0].Seed, ps[1].Seed = &two, &one
				return ps
			},
			want: []int{2, 1},
		},
		{
			name:    "duplicate seed",
			input:   func() []*models.Participant { return registered(1, 2) },
			seeds:   map[int]int{1: 1, 2: 1},
			wantErr: true,
		},
		{
			name:    "out of range",
			input:   func() []*models.Participant { return registered(1, 2) },
			seeds:   map[int]int{1: 1, 2: 5},
			wantErr: true,
		},
		{
			name:    "missing participant",
			input:   func() []*models.Participant { return registered(1, 2) },
			seeds:   map[int]int{1: 1},
			wantErr: true,
		},
		{
			name:    "no existing seed",
			input:   func() []*models.Participant { return registered(1, 2) },
			wantErr: true,
		},
	}

	s := NewSeeder(nil, nil, discard())
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, err := s.Seed(context.Background(), tt.input(), Request{Source: SourceManual, Seeds: tt.seeds})
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrInvalidSeeds)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, idsAndSeeds(t, out))
		})
	}
}

func TestSeedUnknownSource(t *testing.T) {
	_, err := NewSeeder(nil, nil, discard()).Seed(context.Background(), registered(1, 2), Request{Source: "elo"})
	assert.ErrorIs(t, err, ErrUnknownSource)
}
