package seeding

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math/rand"
	"sort"

	"github.com/Dosada05/tournament-engine/models"
)

type Source string

const (
	SourceRandom Source = "random"
	SourceManual Source = "manual"
	// SourceRating sorts by directory rating, or by an external league ranking when LeagueID is set.
	SourceRating Source = "rating_based"
)

func (s Source) Valid() bool {
	switch s {
	case SourceRandom, SourceManual, SourceRating:
		return true
	}
	return false
}

var (
	ErrUnknownSource = errors.New("unknown seeding source")
	ErrInvalidSeeds  = errors.New("seeds must be a permutation of 1..N")
)

type Request struct {
	Source Source
	// LeagueID selects an external ranking for SourceRating.
	LeagueID string
	// Seeds is the manual participant_id -> seed assignment. Empty means keep existing seeds.
	Seeds map[int]int
}

// RatingSource returns a participant's rating; ok is false when none is known.
type RatingSource interface {
	Rating(ctx context.Context, participantID int) (rating float64, ok bool)
}

// RankingSource returns participant ids of a league ordered from best to worst.
type RankingSource interface {
	Ranking(ctx context.Context, leagueID string) ([]int, error)
}

type Seeder struct {
	ratings  RatingSource
	rankings RankingSource
	shuffle  func(n int, swap func(i, j int))
	logger   *slog.Logger
}

// NewSeeder builds a seeder. ratings and rankings may be nil, which makes every
// participant unranked for the corresponding source.
func NewSeeder(ratings RatingSource, rankings RankingSource, logger *slog.Logger) *Seeder {
	return &Seeder{
		ratings:  ratings,
		rankings: rankings,
		shuffle:  rand.Shuffle,
		logger:   logger,
	}
}

// Seed returns the participants ordered by their new seed, with Seed set to 1..N.
// Input must be in registration order; that order breaks every tie.
func (s *Seeder) Seed(ctx context.Context, participants []*models.Participant, req Request) ([]*models.Participant, error) {
	ordered := make([]*models.Participant, len(participants))
	copy(ordered, participants)

	switch req.Source {
	case SourceRandom:
		s.shuffle(len(ordered), func(i, j int) { ordered[i], ordered[j] = ordered[j], ordered[i] })
	case SourceManual:
		var err error
		if ordered, err = Manual(ordered, req.Seeds); err != nil {
			return nil, err
		}
		return ordered, nil
	case SourceRating:
		if req.LeagueID != "" {
			ordered = ByRanking(ordered, s.lookupRanking(ctx, req.LeagueID))
		} else {
			ordered = ByMetric(ordered, s.lookupRatings(ctx, ordered))
		}
	default:
		return nil, fmt.Errorf("%w: '%s'", ErrUnknownSource, req.Source)
	}

	number(ordered)
	return ordered, nil
}

func (s *Seeder) lookupRatings(ctx context.Context, participants []*models.Participant) map[int]float64 {
	metric := make(map[int]float64, len(participants))
	if s.ratings == nil {
		return metric
	}
	for _, p := range participants {
		if rating, ok := s.ratings.Rating(ctx, p.ParticipantID); ok {
			metric[p.ParticipantID] = rating
		}
	}
	return metric
}

func (s *Seeder) lookupRanking(ctx context.Context, leagueID string) []int {
	if s.rankings == nil {
		s.logger.WarnContext(ctx, "no ranking source configured, every participant is unranked", "league_id", leagueID)
		return nil
	}
	ranking, err := s.rankings.Ranking(ctx, leagueID)
	if err != nil {
		// Недоступный рейтинг не должен блокировать старт турнира.
		s.logger.WarnContext(ctx, "external ranking lookup failed, every participant is unranked", "league_id", leagueID, "error", err)
		return nil
	}
	return ranking
}

// ByMetric sorts descending by metric. Participants without a value go last.
func ByMetric(participants []*models.Participant, metric map[int]float64) []*models.Participant {
	sort.SliceStable(participants, func(i, j int) bool {
		vi, okI := metric[participants[i].ParticipantID]
		vj, okJ := metric[participants[j].ParticipantID]
		if okI != okJ {
			return okI
		}
		return okI && vi > vj
	})
	return participants
}

// ByRanking orders participants by their index in ranking. Unranked participants go last.
func ByRanking(participants []*models.Participant, ranking []int) []*models.Participant {
	metric := make(map[int]float64, len(ranking))
	for i, id := range ranking {
		if _, seen := metric[id]; !seen {
			metric[id] = float64(-i)
		}
	}
	return ByMetric(participants, metric)
}

// Manual applies seeds (participant_id -> seed). With no seeds the existing ones are
// kept and must already be unique and complete.
func Manual(participants []*models.Participant, seeds map[int]int) ([]*models.Participant, error) {
	n := len(participants)
	assigned := make(map[int]int, n)
	for _, p := range participants {
		if len(seeds) > 0 {
			seed, ok := seeds[p.ParticipantID]
			if !ok {
				return nil, fmt.Errorf("%w: participant %d has no seed", ErrInvalidSeeds, p.ParticipantID)
			}
			assigned[p.ParticipantID] = seed
			continue
		}
		if p.Seed == nil {
			return nil, fmt.Errorf("%w: participant %d has no seed", ErrInvalidSeeds, p.ParticipantID)
		}
		assigned[p.ParticipantID] = *p.Seed
	}
	if len(seeds) > n {
		return nil, fmt.Errorf("%w: %d seeds given for %d participants", ErrInvalidSeeds, len(seeds), n)
	}

	used := make(map[int]bool, n)
	for id, seed := range assigned {
		if seed < 1 || seed > n {
			return nil, fmt.Errorf("%w: seed %d of participant %d is out of range", ErrInvalidSeeds, seed, id)
		}
		if used[seed] {
			return nil, fmt.Errorf("%w: seed %d is used twice", ErrInvalidSeeds, seed)
		}
		used[seed] = true
	}

	sort.SliceStable(participants, func(i, j int) bool {
		return assigned[participants[i].ParticipantID] < assigned[participants[j].ParticipantID]
	})
	number(participants)
	return participants, nil
}

func number(participants []*models.Participant) {
	for i, p := range participants {
		seed := i + 1
		p.Seed = &seed
	}
}
