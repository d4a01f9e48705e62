package models

import "time"

type MatchStatus string

const (
	MatchPending    MatchStatus = "pending"
	MatchInProgress MatchStatus = "in_progress"
	MatchCompleted  MatchStatus = "completed"
	MatchBye        MatchStatus = "bye"
	MatchWalkover   MatchStatus = "walkover"
)

// Resolved reports whether the match has a final winner.
func (s MatchStatus) Resolved() bool {
	return s == MatchCompleted || s == MatchBye || s == MatchWalkover
}

// MatchPhase tells which part of the tournament a match belongs to.
type MatchPhase string

const (
	PhaseKnockout MatchPhase = "knockout"
	PhaseLeague   MatchPhase = "league"
	PhaseGroup    MatchPhase = "group"
	PhaseLadder   MatchPhase = "ladder"
)

// Side is a slot of a match.
type Side int

const (
	SideA Side = iota
	SideB
)

// SetScore is the result of one set.
type SetScore struct {
	A int `json:"a"`
	B int `json:"b"`
}

type Match struct {
	ID             int         `json:"id" db:"id"`
	TournamentID   int         `json:"tournament_id" db:"tournament_id"`
	Phase          MatchPhase  `json:"phase" db:"phase"`
	Round          int         `json:"round" db:"round"`
	Position       int         `json:"position" db:"position"`
	GroupLabel     *string     `json:"group,omitempty" db:"group_label"`
	IsThirdPlace   bool        `json:"is_third_place,omitempty" db:"is_third_place"`
	ParticipantAID *int        `json:"participant_a_id" db:"participant_a_id"`
	ParticipantA   string      `json:"participant_a_name,omitempty" db:"participant_a_name"`
	ParticipantBID *int        `json:"participant_b_id" db:"participant_b_id"`
	ParticipantB   string      `json:"participant_b_name,omitempty" db:"participant_b_name"`
	ScoreA         int         `json:"score_a" db:"score_a"`
	ScoreB         int         `json:"score_b" db:"score_b"`
	Sets           []SetScore  `json:"sets,omitempty" db:"sets"`
	WinnerID       *int        `json:"winner_id,omitempty" db:"winner_id"`
	Status         MatchStatus `json:"status" db:"status"`
	CreatedAt      time.Time   `json:"created_at" db:"created_at"`
	CompletedAt    *time.Time  `json:"completed_at,omitempty" db:"completed_at"`
}

// HasParticipant reports whether id occupies one of the two slots.
func (m *Match) HasParticipant(id int) bool {
	return (m.ParticipantAID != nil && *m.ParticipantAID == id) ||
		(m.ParticipantBID != nil && *m.ParticipantBID == id)
}

// Ready reports whether both participants are known.
func (m *Match) Ready() bool {
	return m.ParticipantAID != nil && m.ParticipantBID != nil
}

// Opponent returns the other participant of id, if any.
func (m *Match) Opponent(id int) *int {
	switch {
	case m.ParticipantAID != nil && *m.ParticipantAID == id:
		return m.ParticipantBID
	case m.ParticipantBID != nil && *m.ParticipantBID == id:
		return m.ParticipantAID
	}
	return nil
}

// NameOf returns the stored display name of a participant in this match.
func (m *Match) NameOf(id int) string {
	if m.ParticipantAID != nil && *m.ParticipantAID == id {
		return m.ParticipantA
	}
	if m.ParticipantBID != nil && *m.ParticipantBID == id {
		return m.ParticipantB
	}
	return ""
}
