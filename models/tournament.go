package models

import "time"

// TournamentStatus представляет статусы жизненного цикла турнира.
type TournamentStatus string

const (
	StatusDraft              TournamentStatus = "draft"
	StatusRegistrationOpen   TournamentStatus = "registration_open"
	StatusRegistrationClosed TournamentStatus = "registration_closed"
	StatusInProgress         TournamentStatus = "in_progress"
	StatusCompleted          TournamentStatus = "completed"
	StatusCancelled          TournamentStatus = "cancelled"
)

// Valid reports whether s is a known lifecycle status.
func (s TournamentStatus) Valid() bool {
	switch s {
	case StatusDraft, StatusRegistrationOpen, StatusRegistrationClosed,
		StatusInProgress, StatusCompleted, StatusCancelled:
		return true
	}
	return false
}

// Terminal reports whether no further lifecycle transition is possible.
func (s TournamentStatus) Terminal() bool {
	return s == StatusCompleted || s == StatusCancelled
}

// Started reports whether the roster and format are frozen.
func (s TournamentStatus) Started() bool {
	return s == StatusInProgress || s == StatusCompleted
}

// RoundDescriptor describes one round of the generated schedule.
type RoundDescriptor struct {
	Round        int        `json:"round"`
	Label        string     `json:"label"`
	Phase        MatchPhase `json:"phase"`
	MatchCount   int        `json:"match_count"`
	IsThirdPlace bool       `json:"is_third_place,omitempty"`
}

// Outcome holds the final placements once the tournament is decided.
type Outcome struct {
	ChampionID   *int `json:"champion_id,omitempty"`
	RunnerUpID   *int `json:"runner_up_id,omitempty"`
	ThirdPlaceID *int `json:"third_place_id,omitempty"`
}

// Decided reports whether at least a champion is known.
func (o Outcome) Decided() bool {
	return o.ChampionID != nil
}

// Tournament is the aggregate root of the engine.
type Tournament struct {
	ID                int               `json:"id" db:"id"`
	Name              string            `json:"name" db:"name"`
	Format            TournamentFormat  `json:"format" db:"format"`
	Status            TournamentStatus  `json:"status" db:"status"`
	Config            TournamentConfig  `json:"config" db:"config"`
	TotalParticipants int               `json:"total_participants" db:"total_participants"`
	Rounds            []RoundDescriptor `json:"rounds,omitempty" db:"rounds"`
	Outcome           Outcome           `json:"outcome" db:"-"`
	CreatedAt         time.Time         `json:"created_at" db:"created_at"`
	StartedAt         *time.Time        `json:"started_at,omitempty" db:"started_at"`
	CompletedAt       *time.Time        `json:"completed_at,omitempty" db:"completed_at"`

	// Проекции, собираемые сервисом (не хранятся в таблице tournaments)
	Participants   []Participant            `json:"participants,omitempty" db:"-"`
	Groups         map[string][]int         `json:"groups,omitempty" db:"-"`
	Standings      []StandingRow            `json:"standings,omitempty" db:"-"`
	GroupStandings map[string][]StandingRow `json:"group_standings,omitempty" db:"-"`
	Matches        []Match                  `json:"matches,omitempty" db:"-"`
}
