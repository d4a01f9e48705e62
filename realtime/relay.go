package realtime

import (
	"context"
	"encoding/json"

	"github.com/Dosada05/tournament-engine/events"
)

// Relay forwards bus events to the websocket room of the tournament they belong to.
type Relay struct {
	hub *Hub
}

func NewRelay(hub *Hub) *Relay {
	return &Relay{hub: hub}
}

func (r *Relay) Handle(_ context.Context, evt events.Event) error {
	room := RoomForTournament(evt.TournamentID)
	r.hub.BroadcastToRoom(room, WebSocketMessage{
		Type:    evt.Type,
		Payload: json.RawMessage(evt.Payload),
		RoomID:  room,
	})
	return nil
}
