package models

import (
	"sort"
	"time"
)

// StandingRow is the accumulated record of one participant in a table.
// GroupLabel is nil for the tournament-wide table of round-robin and ladder formats.
type StandingRow struct {
	TournamentID  int       `json:"tournament_id" db:"tournament_id"`
	GroupLabel    *string   `json:"group,omitempty" db:"group_label"`
	ParticipantID int       `json:"participant_id" db:"participant_id"`
	Name          string    `json:"name" db:"name"`
	Played        int       `json:"played" db:"played"`
	Won           int       `json:"won" db:"won"`
	Lost          int       `json:"lost" db:"lost"`
	SetsWon       int       `json:"sets_won" db:"sets_won"`
	SetsLost      int       `json:"sets_lost" db:"sets_lost"`
	Points        int       `json:"points" db:"points"`
	UpdatedAt     time.Time `json:"updated_at" db:"updated_at"`
}

// SetDifferential is sets won minus sets lost.
func (r StandingRow) SetDifferential() int {
	return r.SetsWon - r.SetsLost
}

// SortStandings orders rows by points desc, then set differential desc.
// Ties keep their current relative order.
func SortStandings(rows []StandingRow) {
	sort.SliceStable(rows, func(i, j int) bool {
		if rows[i].Points != rows[j].Points {
			return rows[i].Points > rows[j].Points
		}
		return rows[i].SetDifferential() > rows[j].SetDifferential()
	})
}
