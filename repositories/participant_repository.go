package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/Dosada05/tournament-engine/models"
	"github.com/lib/pq"
)

var (
	ErrParticipantNotFound          = errors.New("participant not found")
	ErrParticipantConflict          = errors.New("participant is already registered for this tournament")
	ErrParticipantTournamentInvalid = errors.New("participant tournament conflict or invalid")
)

type ParticipantRepository interface {
	// Add registers p. A previously withdrawn registration is reactivated; an active one
	// yields ErrParticipantConflict.
	Add(ctx context.Context, exec SQLExecutor, p *models.Participant) error
	Get(ctx context.Context, exec SQLExecutor, tournamentID, participantID int) (*models.Participant, error)
	// ListByTournament returns participants in registration order.
	ListByTournament(ctx context.Context, exec SQLExecutor, tournamentID int, statusFilter *models.ParticipantStatus) ([]*models.Participant, error)
	Withdraw(ctx context.Context, exec SQLExecutor, tournamentID, participantID int) error
	UpdateSeeds(ctx context.Context, exec SQLExecutor, tournamentID int, seeds map[int]int) error
	UpdateGroups(ctx context.Context, exec SQLExecutor, tournamentID int, groups map[string][]int) error
}

type postgresParticipantRepository struct {
	db *sql.DB
}

func NewPostgresParticipantRepository(db *sql.DB) ParticipantRepository {
	return &postgresParticipantRepository{db: db}
}

func (r *postgresParticipantRepository) getExecutor(exec SQLExecutor) SQLExecutor {
	if exec != nil {
		return exec
	}
	return r.db
}

const participantColumns = `tournament_id, participant_id, name, rating, seed, group_label, status, registered_at`

func scanParticipant(row rowScanner) (*models.Participant, error) {
	p := &models.Participant{}
	err := row.Scan(&p.TournamentID, &p.ParticipantID, &p.Name, &p.Rating, &p.Seed, &p.GroupLabel, &p.Status, &p.RegisteredAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrParticipantNotFound
		}
		return nil, err
	}
	return p, nil
}

func (r *postgresParticipantRepository) Add(ctx context.Context, exec SQLExecutor, p *models.Participant) error {
	executor := r.getExecutor(exec)
	query := `
		INSERT INTO tournament_participants (tournament_id, participant_id, name, rating, status)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (tournament_id, participant_id) DO UPDATE
			SET name = EXCLUDED.name, rating = EXCLUDED.rating, status = EXCLUDED.status,
			    seed = NULL, group_label = NULL, registered_at = NOW()
			WHERE tournament_participants.status = 'withdrawn'
		RETURNING registered_at`

	p.Status = models.ParticipantRegistered
	err := executor.QueryRowContext(ctx, query, p.TournamentID, p.ParticipantID, p.Name, p.Rating, p.Status).Scan(&p.RegisteredAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			// ON CONFLICT ... WHERE не сработал: участник уже активен
			return ErrParticipantConflict
		}
		var pqErr *pq.Error
		if errors.As(err, &pqErr) {
			switch pqErr.Code {
			case "23505":
				return ErrParticipantConflict
			case "23503":
				if pqErr.Constraint == "tournament_participants_tournament_id_fkey" {
					return ErrParticipantTournamentInvalid
				}
			}
		}
		return fmt.Errorf("failed to add participant %d to tournament %d: %w", p.ParticipantID, p.TournamentID, err)
	}
	p.Seed, p.GroupLabel = nil, nil
	return nil
}

func (r *postgresParticipantRepository) Get(ctx context.Context, exec SQLExecutor, tournamentID, participantID int) (*models.Participant, error) {
	executor := r.getExecutor(exec)
	query := `SELECT ` + participantColumns + ` FROM tournament_participants WHERE tournament_id = $1 AND participant_id = $2`
	return scanParticipant(executor.QueryRowContext(ctx, query, tournamentID, participantID))
}

func (r *postgresParticipantRepository) ListByTournament(ctx context.Context, exec SQLExecutor, tournamentID int, statusFilter *models.ParticipantStatus) ([]*models.Participant, error) {
	executor := r.getExecutor(exec)
	qb := newQueryBuilder(`SELECT `+participantColumns+` FROM tournament_participants WHERE tournament_id = $1`, tournamentID)
	if statusFilter != nil {
		qb.where("status = ?", *statusFilter)
	}
	qb.raw(" ORDER BY registered_at ASC, id ASC")

	rows, err := executor.QueryContext(ctx, qb.String(), qb.args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query participants for tournament %d: %w", tournamentID, err)
	}
	defer rows.Close()

	participants := make([]*models.Participant, 0)
	for rows.Next() {
		p, scanErr := scanParticipant(rows)
		if scanErr != nil {
			return nil, fmt.Errorf("failed to scan participant row: %w", scanErr)
		}
		participants = append(participants, p)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error during participant rows iteration: %w", err)
	}
	return participants, nil
}

func (r *postgresParticipantRepository) Withdraw(ctx context.Context, exec SQLExecutor, tournamentID, participantID int) error {
	executor := r.getExecutor(exec)
	query := `
		UPDATE tournament_participants SET status = $1, seed = NULL, group_label = NULL
		WHERE tournament_id = $2 AND participant_id = $3 AND status = $4`
	result, err := executor.ExecContext(ctx, query, models.ParticipantWithdrawn, tournamentID, participantID, models.ParticipantRegistered)
	if err != nil {
		return fmt.Errorf("failed to withdraw participant %d: %w", participantID, err)
	}
	return checkAffectedRows(result, ErrParticipantNotFound)
}

func (r *postgresParticipantRepository) UpdateSeeds(ctx context.Context, exec SQLExecutor, tournamentID int, seeds map[int]int) error {
	executor := r.getExecutor(exec)
	ids := make([]int64, 0, len(seeds))
	values := make([]int64, 0, len(seeds))
	for id, seed := range seeds {
		ids = append(ids, int64(id))
		values = append(values, int64(seed))
	}
	query := `
		UPDATE tournament_participants AS tp SET seed = s.seed
		FROM unnest($2::int[], $3::int[]) AS s(participant_id, seed)
		WHERE tp.tournament_id = $1 AND tp.participant_id = s.participant_id`
	if _, err := executor.ExecContext(ctx, query, tournamentID, pq.Array(ids), pq.Array(values)); err != nil {
		return fmt.Errorf("failed to update seeds for tournament %d: %w", tournamentID, err)
	}
	return nil
}

func (r *postgresParticipantRepository) UpdateGroups(ctx context.Context, exec SQLExecutor, tournamentID int, groups map[string][]int) error {
	executor := r.getExecutor(exec)
	for label, members := range groups {
		ids := make([]int64, len(members))
		for i, id := range members {
			ids[i] = int64(id)
		}
		query := `UPDATE tournament_participants SET group_label = $1 WHERE tournament_id = $2 AND participant_id = ANY($3)`
		if _, err := executor.ExecContext(ctx, query, label, tournamentID, pq.Array(ids)); err != nil {
			return fmt.Errorf("failed to assign group %s in tournament %d: %w", label, tournamentID, err)
		}
	}
	return nil
}
