package models

import "time"

type ParticipantStatus string

const (
	ParticipantRegistered ParticipantStatus = "registered"
	ParticipantWithdrawn  ParticipantStatus = "withdrawn"
)

// Participant is one registered entrant of a tournament. ParticipantID is the
// identifier issued by the participant directory.
type Participant struct {
	TournamentID  int               `json:"tournament_id" db:"tournament_id"`
	ParticipantID int               `json:"participant_id" db:"participant_id"`
	Name          string            `json:"name" db:"name"`
	Rating        float64           `json:"rating" db:"rating"`
	Seed          *int              `json:"seed,omitempty" db:"seed"`
	GroupLabel    *string           `json:"group,omitempty" db:"group_label"`
	Status        ParticipantStatus `json:"status" db:"status"`
	RegisteredAt  time.Time         `json:"registered_at" db:"registered_at"`
}
