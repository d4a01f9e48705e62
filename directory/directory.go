package directory

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
)

// Profile is what the engine needs to know about a participant.
type Profile struct {
	ID        int     `json:"id"`
	Name      string  `json:"name"`
	Rating    float64 `json:"rating"`
	HasRating bool    `json:"has_rating"`
}

// ParticipantDirectory resolves participant ids. Lookup never fails: an unknown
// participant or an unavailable directory yields DefaultProfile.
type ParticipantDirectory interface {
	Lookup(ctx context.Context, participantID int) Profile
}

func DefaultProfile(participantID int) Profile {
	return Profile{ID: participantID, Name: fmt.Sprintf("Participant %d", participantID)}
}

// Ratings adapts a directory to the seeding rating lookup.
type Ratings struct {
	Directory ParticipantDirectory
}

func (r Ratings) Rating(ctx context.Context, participantID int) (float64, bool) {
	p := r.Directory.Lookup(ctx, participantID)
	return p.Rating, p.HasRating
}

type PostgresDirectory struct {
	db     *sql.DB
	logger *slog.Logger
}

func NewPostgresDirectory(db *sql.DB, logger *slog.Logger) *PostgresDirectory {
	return &PostgresDirectory{db: db, logger: logger}
}

func (d *PostgresDirectory) Lookup(ctx context.Context, participantID int) Profile {
	var (
		name   string
		rating sql.NullFloat64
	)
	query := `SELECT display_name, rating FROM participant_profiles WHERE id = $1`
	err := d.db.QueryRowContext(ctx, query, participantID).Scan(&name, &rating)
	if err != nil {
		if !errors.Is(err, sql.ErrNoRows) {
			d.logger.WarnContext(ctx, "participant lookup failed, using default profile", "participant_id", participantID, "error", err)
		}
		return DefaultProfile(participantID)
	}
	profile := Profile{ID: participantID, Name: name, Rating: rating.Float64, HasRating: rating.Valid}
	if profile.Name == "" {
		profile.Name = DefaultProfile(participantID).Name
	}
	return profile
}

// StaticDirectory serves profiles from memory.
type StaticDirectory map[int]Profile

func (d StaticDirectory) Lookup(_ context.Context, participantID int) Profile {
	if p, ok := d[participantID]; ok {
		p.ID = participantID
		if p.Name == "" {
			p.Name = DefaultProfile(participantID).Name
		}
		return p
	}
	return DefaultProfile(participantID)
}
