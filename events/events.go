package events

import (
	"encoding/json"
	"time"

	"github.com/Dosada05/tournament-engine/models"
)

const (
	TypeTournamentStarted   = "tournament.started"
	TypeMatchCompleted      = "match.completed"
	TypeTournamentCompleted = "tournament.completed"
	TypeBracketUpdated      = "bracket.updated"
	TypeTournamentDeleted   = "tournament.deleted"
)

// Event is the envelope every subscriber receives.
type Event struct {
	ID           string          `json:"id"`
	Type         string          `json:"type"`
	TournamentID int             `json:"tournament_id"`
	OccurredAt   time.Time       `json:"occurred_at"`
	Payload      json.RawMessage `json:"payload,omitempty"`
}

type TournamentStartedPayload struct {
	Name         string                   `json:"name"`
	Format       models.TournamentFormat  `json:"format"`
	Participants int                      `json:"participants"`
	Rounds       []models.RoundDescriptor `json:"rounds,omitempty"`
}

type MatchCompletedPayload struct {
	Match *models.Match `json:"match"`
}

type TournamentCompletedPayload struct {
	Name    string                  `json:"name"`
	Format  models.TournamentFormat `json:"format"`
	Outcome models.Outcome          `json:"outcome"`
}

type BracketUpdatedPayload struct {
	Reason string            `json:"reason"`
	Phase  models.MatchPhase `json:"phase,omitempty"`
}

func (e Event) Decode(v interface{}) error {
	return json.Unmarshal(e.Payload, v)
}
