package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/Dosada05/tournament-engine/models"
)

var (
	ErrStandingNotFound = errors.New("standing row not found")
)

// StandingDelta is the increment a single result adds to one row.
type StandingDelta struct {
	GroupLabel    *string
	ParticipantID int
	Won           int
	Lost          int
	SetsWon       int
	SetsLost      int
	Points        int
}

type StandingRepository interface {
	// InitRows inserts zero rows; existing rows are left untouched.
	InitRows(ctx context.Context, exec SQLExecutor, rows []models.StandingRow) error
	// ApplyDelta atomically adds delta to the row (played += 1).
	ApplyDelta(ctx context.Context, exec SQLExecutor, tournamentID int, delta StandingDelta) error
	// ListByTournament returns rows in insertion order; callers sort them.
	ListByTournament(ctx context.Context, exec SQLExecutor, tournamentID int) ([]models.StandingRow, error)
	DeleteByTournament(ctx context.Context, exec SQLExecutor, tournamentID int) error
}

type postgresStandingRepository struct {
	db *sql.DB
}

func NewPostgresStandingRepository(db *sql.DB) StandingRepository {
	return &postgresStandingRepository{db: db}
}

func (r *postgresStandingRepository) getExecutor(exec SQLExecutor) SQLExecutor {
	if exec != nil {
		return exec
	}
	return r.db
}

func (r *postgresStandingRepository) InitRows(ctx context.Context, exec SQLExecutor, rows []models.StandingRow) error {
	executor := r.getExecutor(exec)
	query := `
		INSERT INTO standings (tournament_id, group_label, participant_id, name)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT DO NOTHING`
	for _, row := range rows {
		if _, err := executor.ExecContext(ctx, query, row.TournamentID, row.GroupLabel, row.ParticipantID, row.Name); err != nil {
			return fmt.Errorf("failed to init standing row for participant %d: %w", row.ParticipantID, err)
		}
	}
	return nil
}

func (r *postgresStandingRepository) ApplyDelta(ctx context.Context, exec SQLExecutor, tournamentID int, d StandingDelta) error {
	executor := r.getExecutor(exec)
	// Инкремент на стороне БД: конкурентные результаты одной группы не теряют обновления.
	query := `
		UPDATE standings SET
			played = played + 1,
			won = won + $1,
			lost = lost + $2,
			sets_won = sets_won + $3,
			sets_lost = sets_lost + $4,
			points = points + $5,
			updated_at = NOW()
		WHERE tournament_id = $6 AND group_label IS NOT DISTINCT FROM $7 AND participant_id = $8`
	result, err := executor.ExecContext(ctx, query,
		d.Won, d.Lost, d.SetsWon, d.SetsLost, d.Points,
		tournamentID, d.GroupLabel, d.ParticipantID,
	)
	if err != nil {
		return fmt.Errorf("failed to update standing of participant %d: %w", d.ParticipantID, err)
	}
	return checkAffectedRows(result, ErrStandingNotFound)
}

func (r *postgresStandingRepository) ListByTournament(ctx context.Context, exec SQLExecutor, tournamentID int) ([]models.StandingRow, error) {
	executor := r.getExecutor(exec)
	query := `
		SELECT tournament_id, group_label, participant_id, name, played, won, lost,
		       sets_won, sets_lost, points, updated_at
		FROM standings
		WHERE tournament_id = $1
		ORDER BY id ASC`
	rows, err := executor.QueryContext(ctx, query, tournamentID)
	if err != nil {
		return nil, fmt.Errorf("failed to query standings for tournament %d: %w", tournamentID, err)
	}
	defer rows.Close()

	standings := make([]models.StandingRow, 0)
	for rows.Next() {
		var s models.StandingRow
		if scanErr := rows.Scan(
			&s.TournamentID, &s.GroupLabel, &s.ParticipantID, &s.Name, &s.Played, &s.Won, &s.Lost,
			&s.SetsWon, &s.SetsLost, &s.Points, &s.UpdatedAt,
		); scanErr != nil {
			return nil, fmt.Errorf("failed to scan standing row: %w", scanErr)
		}
		standings = append(standings, s)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error during standing rows iteration: %w", err)
	}
	return standings, nil
}

func (r *postgresStandingRepository) DeleteByTournament(ctx context.Context, exec SQLExecutor, tournamentID int) error {
	executor := r.getExecutor(exec)
	if _, err := executor.ExecContext(ctx, `DELETE FROM standings WHERE tournament_id = $1`, tournamentID); err != nil {
		return fmt.Errorf("failed to delete standings of tournament %d: %w", tournamentID, err)
	}
	return nil
}
