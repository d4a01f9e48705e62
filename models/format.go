package models

import (
	"errors"
	"fmt"
)

// TournamentFormat selects the scheduling algorithm of a tournament.
type TournamentFormat string

const (
	FormatSingleElimination TournamentFormat = "single_elimination"
	FormatRoundRobin        TournamentFormat = "round_robin"
	FormatGroupKnockout     TournamentFormat = "group_knockout"
	FormatOpenLadder        TournamentFormat = "open_ladder"
)

// Valid reports whether f is one of the supported formats.
func (f TournamentFormat) Valid() bool {
	switch f {
	case FormatSingleElimination, FormatRoundRobin, FormatGroupKnockout, FormatOpenLadder:
		return true
	}
	return false
}

// UsesOverallTable reports whether results accrue into a single tournament-wide table.
func (f TournamentFormat) UsesOverallTable() bool {
	return f == FormatRoundRobin || f == FormatOpenLadder
}

const (
	DefaultBestOf       = 3
	DefaultPointsPerSet = 11
	DefaultWinPoints    = 2
	DefaultLossPoints   = 0
)

// TournamentConfig holds the settings fixed at creation time.
type TournamentConfig struct {
	MaxParticipants int  `json:"max_participants"`
	BestOf          int  `json:"best_of"`
	PointsPerSet    int  `json:"points_per_set"`
	ThirdPlaceMatch bool `json:"third_place_match"`
	NumGroups       int  `json:"num_groups,omitempty"`
	AdvancePerGroup int  `json:"advance_per_group,omitempty"`
	WinPoints       int  `json:"win_points"`
	LossPoints      int  `json:"loss_points"`
}

var (
	ErrConfigMaxParticipants = errors.New("max_participants must be at least 2")
	ErrConfigBestOf          = errors.New("best_of must be a positive odd number")
	ErrConfigPointsPerSet    = errors.New("points_per_set must be positive")
	ErrConfigGroups          = errors.New("group format requires num_groups >= 2 and advance_per_group >= 1")
	ErrConfigScoring         = errors.New("win_points must not be lower than loss_points")
)

// WithDefaults fills zero-valued match settings.
func (c TournamentConfig) WithDefaults() TournamentConfig {
	if c.BestOf == 0 {
		c.BestOf = DefaultBestOf
	}
	if c.PointsPerSet == 0 {
		c.PointsPerSet = DefaultPointsPerSet
	}
	if c.WinPoints == 0 && c.LossPoints == 0 {
		c.WinPoints = DefaultWinPoints
		c.LossPoints = DefaultLossPoints
	}
	return c
}

// Validate checks the configuration against the chosen format.
func (c TournamentConfig) Validate(format TournamentFormat) error {
	if c.MaxParticipants < 2 {
		return ErrConfigMaxParticipants
	}
	if c.BestOf < 1 || c.BestOf%2 == 0 {
		return fmt.Errorf("%w, got %d", ErrConfigBestOf, c.BestOf)
	}
	if c.PointsPerSet < 1 {
		return ErrConfigPointsPerSet
	}
	if c.WinPoints < c.LossPoints {
		return ErrConfigScoring
	}
	if format == FormatGroupKnockout {
		if c.NumGroups < 2 || c.AdvancePerGroup < 1 {
			return ErrConfigGroups
		}
		if c.NumGroups*2 > c.MaxParticipants {
			return fmt.Errorf("%w: %d groups need at least %d participants", ErrConfigGroups, c.NumGroups, c.NumGroups*2)
		}
	}
	return nil
}
