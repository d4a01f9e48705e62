package realtime

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Dosada05/tournament-engine/events"
)

func TestRelayBroadcastsToTournamentRoom(t *testing.T) {
	hub := NewHub(slog.New(slog.NewTextHandler(io.Discard, nil)))
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go hub.Run(ctx)

	watcher := &Client{Hub: hub, Send: make(chan []byte, 4), Room: RoomForTournament(3)}
	other := &Client{Hub: hub, Send: make(chan []byte, 4), Room: RoomForTournament(4)}
	hub.Register <- watcher
	hub.Register <- other
	require.Eventually(t, func() bool {
		return hub.RoomSize(RoomForTournament(3)) == 1 && hub.RoomSize(RoomForTournament(4)) == 1
	}, time.Second, 10*time.Millisecond)

	relay := NewRelay(hub)
	require.NoError(t, relay.Handle(ctx, events.Event{
		Type:         events.TypeMatchCompleted,
		TournamentID: 3,
		Payload:      json.RawMessage(`{"match":{"id":11}}`),
	}))

	select {
	case raw := <-watcher.Send:
		var msg struct {
			Type    string          `json:"type"`
			Payload json.RawMessage `json:"payload"`
			RoomID  string          `json:"room_id"`
		}
		require.NoError(t, json.Unmarshal(raw, &msg))
		assert.Equal(t, events.TypeMatchCompleted, msg.Type)
		assert.Equal(t, "tournament_3", msg.RoomID)
		assert.JSONEq(t, `{"match":{"id":11}}`, string(msg.Payload))
	case <-time.After(time.Second):
		t.Fatal("watcher did not receive the event")
	}
	assert.Len(t, other.Send, 0)

	hub.Unregister <- watcher
	require.Eventually(t, func() bool { return hub.RoomSize(RoomForTournament(3)) == 0 }, time.Second, 10*time.Millisecond)
	_, open := <-watcher.Send
	assert.False(t, open)
}
