package leaderboard

import (
	"context"
	"fmt"
	"sort"
	"strconv"
	"sync"

	"github.com/go-redis/redis/v8"

	"github.com/Dosada05/tournament-engine/events"
	"github.com/Dosada05/tournament-engine/models"
)

// Очки за итоговые места турнира.
const (
	ChampionPoints   = 3
	RunnerUpPoints   = 2
	ThirdPlacePoints = 1
)

const (
	redisKey         = "leaderboard:all_time"
	recordedKeyFmt   = "leaderboard:recorded:%d"
	defaultTopLength = 10
)

type Entry struct {
	ParticipantID int `json:"participant_id"`
	Points        int `json:"points"`
}

// Leaderboard accumulates placements across completed tournaments.
// Record is idempotent per tournament.
type Leaderboard interface {
	Record(ctx context.Context, tournamentID int, outcome models.Outcome) error
	Top(ctx context.Context, n int) ([]Entry, error)
}

func awards(outcome models.Outcome) map[int]int {
	points := make(map[int]int, 3)
	if outcome.ChampionID != nil {
		points[*outcome.ChampionID] += ChampionPoints
	}
	if outcome.RunnerUpID != nil {
		points[*outcome.RunnerUpID] += RunnerUpPoints
	}
	if outcome.ThirdPlaceID != nil {
		points[*outcome.ThirdPlaceID] += ThirdPlacePoints
	}
	return points
}

// Hook returns the tournament.completed subscriber that feeds lb.
func Hook(lb Leaderboard) events.HandlerFunc {
	return func(ctx context.Context, evt events.Event) error {
		if evt.Type != events.TypeTournamentCompleted {
			return nil
		}
		var payload events.TournamentCompletedPayload
		if err := evt.Decode(&payload); err != nil {
			return fmt.Errorf("decode %s payload: %w", evt.Type, err)
		}
		return lb.Record(ctx, evt.TournamentID, payload.Outcome)
	}
}

type RedisLeaderboard struct {
	client *redis.Client
}

func NewRedisLeaderboard(client *redis.Client) *RedisLeaderboard {
	return &RedisLeaderboard{client: client}
}

func (l *RedisLeaderboard) Record(ctx context.Context, tournamentID int, outcome models.Outcome) error {
	first, err := l.client.SetNX(ctx, fmt.Sprintf(recordedKeyFmt, tournamentID), 1, 0).Result()
	if err != nil {
		return fmt.Errorf("mark tournament %d as recorded: %w", tournamentID, err)
	}
	if !first {
		return nil
	}

	_, err = l.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		for id, points := range awards(outcome) {
			pipe.ZIncrBy(ctx, redisKey, float64(points), strconv.Itoa(id))
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("update all-time leaderboard for tournament %d: %w", tournamentID, err)
	}
	return nil
}

func (l *RedisLeaderboard) Top(ctx context.Context, n int) ([]Entry, error) {
	if n <= 0 {
		n = defaultTopLength
	}
	members, err := l.client.ZRevRangeWithScores(ctx, redisKey, 0, int64(n-1)).Result()
	if err != nil {
		return nil, fmt.Errorf("read all-time leaderboard: %w", err)
	}
	entries := make([]Entry, 0, len(members))
	for _, m := range members {
		member, ok := m.Member.(string)
		if !ok {
			continue
		}
		id, err := strconv.Atoi(member)
		if err != nil {
			continue
		}
		entries = append(entries, Entry{ParticipantID: id, Points: int(m.Score)})
	}
	return entries, nil
}

// MemoryLeaderboard is used with the memory storage driver and in tests.
type MemoryLeaderboard struct {
	mu       sync.Mutex
	points   map[int]int
	recorded map[int]bool
}

func NewMemoryLeaderboard() *MemoryLeaderboard {
	return &MemoryLeaderboard{points: make(map[int]int), recorded: make(map[int]bool)}
}

func (l *MemoryLeaderboard) Record(_ context.Context, tournamentID int, outcome models.Outcome) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.recorded[tournamentID] {
		return nil
	}
	l.recorded[tournamentID] = true
	for id, points := range awards(outcome) {
		l.points[id] += points
	}
	return nil
}

func (l *MemoryLeaderboard) Top(_ context.Context, n int) ([]Entry, error) {
	if n <= 0 {
		n = defaultTopLength
	}
	l.mu.Lock()
	entries := make([]Entry, 0, len(l.points))
	for id, points := range l.points {
		entries = append(entries, Entry{ParticipantID: id, Points: points})
	}
	l.mu.Unlock()

	sort.Slice(entries, func(i, j int) bool {
		if entries[i].Points != entries[j].Points {
			return entries[i].Points > entries[j].Points
		}
		return entries[i].ParticipantID < entries[j].ParticipantID
	})
	if len(entries) > n {
		entries = entries[:n]
	}
	return entries, nil
}
