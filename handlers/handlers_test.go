package handlers_test

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/golang-jwt/jwt/v4"
	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Dosada05/tournament-engine/directory"
	"github.com/Dosada05/tournament-engine/events"
	"github.com/Dosada05/tournament-engine/handlers"
	"github.com/Dosada05/tournament-engine/leaderboard"
	"github.com/Dosada05/tournament-engine/models"
	"github.com/Dosada05/tournament-engine/realtime"
	"github.com/Dosada05/tournament-engine/repositories"
	"github.com/Dosada05/tournament-engine/routes"
	"github.com/Dosada05/tournament-engine/seeding"
	"github.com/Dosada05/tournament-engine/services"
)

type apiServer struct {
	*httptest.Server
	board leaderboard.Leaderboard
}

func newAPIServer(t *testing.T, secret string) *apiServer {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	ctx, cancel := context.WithCancel(context.Background())

	store := repositories.NewMemoryStore()
	tr, pr, mr, sr := store.Tournaments(), store.Participants(), store.Matches(), store.Standings()
	dir := directory.StaticDirectory{1: {Name: "Ann"}, 2: {Name: "Bob"}}

	bus := events.NewBus(logger)
	board := leaderboard.NewMemoryLeaderboard()
	require.NoError(t, bus.Subscribe(ctx, "leaderboard", leaderboard.Hook(board)))

	hub := realtime.NewHub(logger)
	hubDone := make(chan struct{})
	go func() {
		defer close(hubDone)
		hub.Run(ctx)
	}()
	require.NoError(t, bus.Subscribe(ctx, "websocket-relay", realtime.NewRelay(hub).Handle))

	ts := services.NewTournamentService(store, tr, pr, mr, sr, bus, logger)
	router := chi.NewRouter()
	routes.SetupRoutes(router,
		routes.Options{AllowedOrigins: []string{"*"}, JWTSecret: secret},
		handlers.NewTournamentHandler(ts,
			services.NewBracketService(store, tr, pr, mr, sr, bus, logger),
			services.NewSeedingService(store, tr, pr, seeding.NewSeeder(directory.Ratings{Directory: dir}, nil, logger), logger),
		),
		handlers.NewParticipantHandler(services.NewParticipantService(store, tr, pr, dir, logger)),
		handlers.NewMatchHandler(services.NewMatchService(store, tr, pr, mr, sr, bus, logger)),
		handlers.NewLeaderboardHandler(board),
		handlers.NewWebSocketHandler(hub, ts, []string{"*"}, logger),
	)

	srv := httptest.NewServer(router)
	t.Cleanup(func() {
		srv.Close()
		cancel()
		<-hubDone
		_ = bus.Close()
	})
	return &apiServer{Server: srv, board: board}
}

func (s *apiServer) do(t *testing.T, method, path string, body interface{}, headers ...string) (int, map[string]json.RawMessage) {
	t.Helper()
	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	}
	req, err := http.NewRequest(method, s.URL+path, reader)
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")
	for i := 0; i+1 < len(headers); i += 2 {
		req.Header.Set(headers[i], headers[i+1])
	}

	resp, err := s.Client().Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	var decoded map[string]json.RawMessage
	if resp.StatusCode != http.StatusNoContent {
		require.NoError(t, json.NewDecoder(resp.Body).Decode(&decoded))
	}
	return resp.StatusCode, decoded
}

func decodeField(t *testing.T, body map[string]json.RawMessage, key string, dst interface{}) {
	t.Helper()
	raw, ok := body[key]
	require.True(t, ok, "response has no %q field: %v", key, body)
	require.NoError(t, json.Unmarshal(raw, dst))
}

// startedDuel drives a two-player single elimination tournament to in_progress.
func (s *apiServer) startedDuel(t *testing.T) (int, models.Match) {
	t.Helper()
	status, body := s.do(t, http.MethodPost, "/tournaments", map[string]interface{}{
		"name":   "Friday Duel",
		"format": "single_elimination",
		"config": map[string]interface{}{"max_participants": 2},
	})
	require.Equal(t, http.StatusCreated, status)
	var tour models.Tournament
	decodeField(t, body, "tournament", &tour)
	base := fmt.Sprintf("/tournaments/%d", tour.ID)

	status, _ = s.do(t, http.MethodPost, base+"/open", nil)
	require.Equal(t, http.StatusOK, status)
	for _, id := range []int{1, 2} {
		status, _ = s.do(t, http.MethodPost, base+"/participants", map[string]int{"participant_id": id})
		require.Equal(t, http.StatusCreated, status)
	}
	status, _ = s.do(t, http.MethodPost, base+"/close", nil)
	require.Equal(t, http.StatusOK, status)
	status, body = s.do(t, http.MethodPost, base+"/schedule", nil)
	require.Equal(t, http.StatusOK, status)
	decodeField(t, body, "tournament", &tour)
	require.Equal(t, models.StatusInProgress, tour.Status)

	status, body = s.do(t, http.MethodGet, base+"/matches", nil)
	require.Equal(t, http.StatusOK, status)
	var matches []models.Match
	decodeField(t, body, "matches", &matches)
	require.Len(t, matches, 1)
	return tour.ID, matches[0]
}

func TestTournamentFlowOverHTTP(t *testing.T) {
	s := newAPIServer(t, "")
	id, final := s.startedDuel(t)
	base := fmt.Sprintf("/tournaments/%d", id)
	assert.Equal(t, "Ann", final.ParticipantA)
	assert.Equal(t, "Bob", final.ParticipantB)

	status, body := s.do(t, http.MethodPost, fmt.Sprintf("%s/matches/%d/result", base, final.ID), map[string]interface{}{
		"winner_id": 2,
		"sets":      []map[string]int{{"a": 9, "b": 11}, {"a": 11, "b": 7}, {"a": 8, "b": 11}},
	})
	require.Equal(t, http.StatusOK, status)
	var outcome services.ResultOutcome
	decodeField(t, body, "result", &outcome)
	assert.True(t, outcome.TournamentCompleted)
	require.NotNil(t, outcome.Outcome)
	assert.Equal(t, 2, *outcome.Outcome.ChampionID)
	assert.Equal(t, 1, outcome.Match.ScoreA)
	assert.Equal(t, 2, outcome.Match.ScoreB)

	// Повторный результат отклоняется
	status, _ = s.do(t, http.MethodPost, fmt.Sprintf("%s/matches/%d/result", base, final.ID), map[string]interface{}{
		"winner_id": 1, "score_a": 2, "score_b": 0,
	})
	assert.Equal(t, http.StatusConflict, status)

	status, body = s.do(t, http.MethodGet, base, nil)
	require.Equal(t, http.StatusOK, status)
	var tour models.Tournament
	decodeField(t, body, "tournament", &tour)
	assert.Equal(t, models.StatusCompleted, tour.Status)

	require.Eventually(t, func() bool {
		top, err := s.board.Top(context.Background(), 10)
		return err == nil && len(top) == 2
	}, 2*time.Second, 10*time.Millisecond)

	status, body = s.do(t, http.MethodGet, "/leaderboard?limit=1", nil)
	require.Equal(t, http.StatusOK, status)
	var entries []leaderboard.Entry
	decodeField(t, body, "leaderboard", &entries)
	require.Len(t, entries, 1)
	assert.Equal(t, leaderboard.Entry{ParticipantID: 2, Points: leaderboard.ChampionPoints}, entries[0])
}

func TestErrorMapping(t *testing.T) {
	s := newAPIServer(t, "")
	id, final := s.startedDuel(t)
	base := fmt.Sprintf("/tournaments/%d", id)

	tests := []struct {
		name   string
		method string
		path   string
		body   interface{}
		want   int
	}{
		{"unknown tournament", http.MethodGet, "/tournaments/999", nil, http.StatusNotFound},
		{"bad id", http.MethodGet, "/tournaments/abc", nil, http.StatusBadRequest},
		{"unknown match", http.MethodGet, base + "/matches/999", nil, http.StatusNotFound},
		{"register after start", http.MethodPost, base + "/participants", map[string]int{"participant_id": 3}, http.StatusConflict},
		{"schedule twice", http.MethodPost, base + "/schedule", nil, http.StatusConflict},
		{"knockout for single elimination", http.MethodPost, base + "/knockout", nil, http.StatusConflict},
		{"winner not in match", http.MethodPost, fmt.Sprintf("%s/matches/%d/result", base, final.ID), map[string]int{"winner_id": 7}, http.StatusConflict},
		{"winner behind on score", http.MethodPost, fmt.Sprintf("%s/matches/%d/result", base, final.ID), map[string]int{"winner_id": 1, "score_a": 0, "score_b": 2}, http.StatusBadRequest},
		{"unknown body field", http.MethodPost, fmt.Sprintf("%s/matches/%d/result", base, final.ID), map[string]int{"winner": 1}, http.StatusBadRequest},
		{"bad leaderboard limit", http.MethodGet, "/leaderboard?limit=500", nil, http.StatusBadRequest},
		{"invalid format", http.MethodPost, "/tournaments", map[string]string{"name": "X", "format": "swiss"}, http.StatusBadRequest},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			status, body := s.do(t, tt.method, tt.path, tt.body)
			assert.Equal(t, tt.want, status)
			assert.Contains(t, body, "error")
		})
	}
}

func TestScheduleWithOneParticipantIsUnprocessable(t *testing.T) {
	s := newAPIServer(t, "")
	status, body := s.do(t, http.MethodPost, "/tournaments", map[string]interface{}{
		"name": "Lonely", "format": "round_robin", "config": map[string]int{"max_participants": 4},
	})
	require.Equal(t, http.StatusCreated, status)
	var tour models.Tournament
	decodeField(t, body, "tournament", &tour)
	base := fmt.Sprintf("/tournaments/%d", tour.ID)

	s.do(t, http.MethodPost, base+"/open", nil)
	s.do(t, http.MethodPost, base+"/participants", map[string]int{"participant_id": 1})
	s.do(t, http.MethodPost, base+"/close", nil)

	status, _ = s.do(t, http.MethodPost, base+"/schedule", nil)
	assert.Equal(t, http.StatusUnprocessableEntity, status)

	status, _ = s.do(t, http.MethodDelete, base, nil)
	assert.Equal(t, http.StatusNoContent, status)
	status, _ = s.do(t, http.MethodGet, base, nil)
	assert.Equal(t, http.StatusNotFound, status)
}

func TestAdminRoutesRequireOrganizerToken(t *testing.T) {
	const secret = "test-secret"
	s := newAPIServer(t, secret)
	input := map[string]interface{}{"name": "Guarded", "format": "round_robin", "config": map[string]int{"max_participants": 4}}

	status, _ := s.do(t, http.MethodPost, "/tournaments", input)
	assert.Equal(t, http.StatusUnauthorized, status)

	player := signToken(t, secret, 5, "player")
	status, _ = s.do(t, http.MethodPost, "/tournaments", input, "Authorization", "Bearer "+player)
	assert.Equal(t, http.StatusForbidden, status)

	organizer := signToken(t, secret, 6, "organizer")
	status, body := s.do(t, http.MethodPost, "/tournaments", input, "Authorization", "Bearer "+organizer)
	require.Equal(t, http.StatusCreated, status)
	var tour models.Tournament
	decodeField(t, body, "tournament", &tour)

	// Чтение остается публичным
	status, _ = s.do(t, http.MethodGet, fmt.Sprintf("/tournaments/%d", tour.ID), nil)
	assert.Equal(t, http.StatusOK, status)
	status, _ = s.do(t, http.MethodPost, fmt.Sprintf("/tournaments/%d/open", tour.ID), nil)
	assert.Equal(t, http.StatusUnauthorized, status)
}

func TestWebSocketSendsSnapshotFirst(t *testing.T) {
	s := newAPIServer(t, "")
	id, _ := s.startedDuel(t)

	wsURL := "ws" + strings.TrimPrefix(s.URL, "http") + fmt.Sprintf("/ws/tournaments/%d", id)
	conn, resp, err := websocket.DefaultDialer.Dial(wsURL, nil)
	require.NoError(t, err)
	defer resp.Body.Close()
	defer conn.Close()

	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	var msg struct {
		Type    string            `json:"type"`
		Payload models.Tournament `json:"payload"`
	}
	require.NoError(t, conn.ReadJSON(&msg))
	assert.Equal(t, handlers.SnapshotMessageType, msg.Type)
	assert.Equal(t, id, msg.Payload.ID)
	assert.Len(t, msg.Payload.Matches, 1)

	_, resp, err = websocket.DefaultDialer.Dial("ws"+strings.TrimPrefix(s.URL, "http")+"/ws/tournaments/999", nil)
	require.Error(t, err)
	require.NotNil(t, resp)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func signToken(t *testing.T, secret string, userID int, role string) string {
	t.Helper()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"user_id": userID,
		"role":    role,
		"exp":     time.Now().Add(time.Hour).Unix(),
	})
	signed, err := token.SignedString([]byte(secret))
	require.NoError(t, err)
	return signed
}
