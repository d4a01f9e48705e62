package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/Dosada05/tournament-engine/models"
	"github.com/lib/pq"
)

var (
	ErrTournamentNotFound = errors.New("tournament not found")
	// ErrTournamentStatusMismatch: условный UPDATE не нашел турнир в ожидаемом статусе.
	ErrTournamentStatusMismatch = errors.New("tournament is not in the expected status")
	ErrTournamentFull           = errors.New("tournament is full")
)

type ListTournamentsFilter struct {
	Format *models.TournamentFormat
	Status *models.TournamentStatus
	Limit  int
	Offset int
}

type TournamentRepository interface {
	Create(ctx context.Context, exec SQLExecutor, tournament *models.Tournament) error
	GetByID(ctx context.Context, exec SQLExecutor, id int) (*models.Tournament, error)
	// GetForUpdate reads the tournament and locks it until the transaction ends.
	// Mutations of one tournament are serialized through this lock.
	GetForUpdate(ctx context.Context, exec SQLExecutor, id int) (*models.Tournament, error)
	List(ctx context.Context, exec SQLExecutor, filter ListTournamentsFilter) ([]*models.Tournament, error)
	// UpdateStatus moves the tournament to `to` only if its current status is one of `from`.
	UpdateStatus(ctx context.Context, exec SQLExecutor, id int, from []models.TournamentStatus, to models.TournamentStatus) error
	// Start moves registration_closed -> in_progress and stores the round summary.
	Start(ctx context.Context, exec SQLExecutor, id int, rounds []models.RoundDescriptor, startedAt time.Time) error
	SetRounds(ctx context.Context, exec SQLExecutor, id int, rounds []models.RoundDescriptor) error
	// Finalize moves in_progress -> completed with the given outcome.
	Finalize(ctx context.Context, exec SQLExecutor, id int, outcome models.Outcome, completedAt time.Time) error
	// IncrementParticipants reserves one seat while registration is open and capacity remains.
	IncrementParticipants(ctx context.Context, exec SQLExecutor, id int) error
	DecrementParticipants(ctx context.Context, exec SQLExecutor, id int) error
	Delete(ctx context.Context, exec SQLExecutor, id int) error
}

type postgresTournamentRepository struct {
	db *sql.DB
}

func NewPostgresTournamentRepository(db *sql.DB) TournamentRepository {
	return &postgresTournamentRepository{db: db}
}

func (r *postgresTournamentRepository) getExecutor(exec SQLExecutor) SQLExecutor {
	if exec != nil {
		return exec
	}
	return r.db
}

const tournamentColumns = `
	id, name, format, status, config, total_participants, rounds,
	champion_id, runner_up_id, third_place_id, created_at, started_at, completed_at`

func scanTournament(row rowScanner) (*models.Tournament, error) {
	t := &models.Tournament{}
	err := row.Scan(
		&t.ID, &t.Name, &t.Format, &t.Status, jsonColumn{&t.Config}, &t.TotalParticipants, jsonColumn{&t.Rounds},
		&t.Outcome.ChampionID, &t.Outcome.RunnerUpID, &t.Outcome.ThirdPlaceID,
		&t.CreatedAt, &t.StartedAt, &t.CompletedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrTournamentNotFound
		}
		return nil, err
	}
	return t, nil
}

func (r *postgresTournamentRepository) Create(ctx context.Context, exec SQLExecutor, t *models.Tournament) error {
	executor := r.getExecutor(exec)
	config, err := marshalJSON(t.Config)
	if err != nil {
		return err
	}
	rounds, err := marshalJSON(nonNilRounds(t.Rounds))
	if err != nil {
		return err
	}

	query := `
		INSERT INTO tournaments (name, format, status, config, max_participants, rounds)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id, total_participants, created_at`

	err = executor.QueryRowContext(ctx, query,
		t.Name, t.Format, t.Status, config, t.Config.MaxParticipants, rounds,
	).Scan(&t.ID, &t.TotalParticipants, &t.CreatedAt)
	return r.handleTournamentError(err)
}

func (r *postgresTournamentRepository) GetByID(ctx context.Context, exec SQLExecutor, id int) (*models.Tournament, error) {
	executor := r.getExecutor(exec)
	query := `SELECT` + tournamentColumns + ` FROM tournaments WHERE id = $1`
	return scanTournament(executor.QueryRowContext(ctx, query, id))
}

func (r *postgresTournamentRepository) GetForUpdate(ctx context.Context, exec SQLExecutor, id int) (*models.Tournament, error) {
	executor := r.getExecutor(exec)
	query := `SELECT` + tournamentColumns + ` FROM tournaments WHERE id = $1 FOR UPDATE`
	return scanTournament(executor.QueryRowContext(ctx, query, id))
}

func (r *postgresTournamentRepository) List(ctx context.Context, exec SQLExecutor, filter ListTournamentsFilter) ([]*models.Tournament, error) {
	executor := r.getExecutor(exec)
	qb := newQueryBuilder(`SELECT` + tournamentColumns + ` FROM tournaments WHERE 1=1`)
	if filter.Format != nil {
		qb.where("format = ?", *filter.Format)
	}
	if filter.Status != nil {
		qb.where("status = ?", *filter.Status)
	}
	qb.raw(" ORDER BY created_at DESC, id DESC")
	qb.limitOffset(filter.Limit, filter.Offset)

	rows, err := executor.QueryContext(ctx, qb.String(), qb.args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query tournaments: %w", err)
	}
	defer rows.Close()

	tournaments := make([]*models.Tournament, 0)
	for rows.Next() {
		t, scanErr := scanTournament(rows)
		if scanErr != nil {
			return nil, fmt.Errorf("failed to scan tournament row: %w", scanErr)
		}
		tournaments = append(tournaments, t)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error during tournament rows iteration: %w", err)
	}
	return tournaments, nil
}

func (r *postgresTournamentRepository) UpdateStatus(ctx context.Context, exec SQLExecutor, id int, from []models.TournamentStatus, to models.TournamentStatus) error {
	executor := r.getExecutor(exec)
	allowed := make([]string, len(from))
	for i, s := range from {
		allowed[i] = string(s)
	}
	query := `UPDATE tournaments SET status = $1 WHERE id = $2 AND status = ANY($3)`
	result, err := executor.ExecContext(ctx, query, to, id, pq.Array(allowed))
	if err != nil {
		return fmt.Errorf("failed to update status of tournament %d: %w", id, err)
	}
	return r.mismatchOrNotFound(ctx, executor, id, checkAffectedRows(result, ErrTournamentStatusMismatch))
}

func (r *postgresTournamentRepository) Start(ctx context.Context, exec SQLExecutor, id int, rounds []models.RoundDescriptor, startedAt time.Time) error {
	executor := r.getExecutor(exec)
	data, err := marshalJSON(nonNilRounds(rounds))
	if err != nil {
		return err
	}
	query := `
		UPDATE tournaments SET status = $1, rounds = $2, started_at = $3
		WHERE id = $4 AND status = $5`
	result, err := executor.ExecContext(ctx, query, models.StatusInProgress, data, startedAt, id, models.StatusRegistrationClosed)
	if err != nil {
		return fmt.Errorf("failed to start tournament %d: %w", id, err)
	}
	return r.mismatchOrNotFound(ctx, executor, id, checkAffectedRows(result, ErrTournamentStatusMismatch))
}

func (r *postgresTournamentRepository) SetRounds(ctx context.Context, exec SQLExecutor, id int, rounds []models.RoundDescriptor) error {
	executor := r.getExecutor(exec)
	data, err := marshalJSON(nonNilRounds(rounds))
	if err != nil {
		return err
	}
	result, err := executor.ExecContext(ctx, `UPDATE tournaments SET rounds = $1 WHERE id = $2`, data, id)
	if err != nil {
		return fmt.Errorf("failed to update rounds of tournament %d: %w", id, err)
	}
	return checkAffectedRows(result, ErrTournamentNotFound)
}

func (r *postgresTournamentRepository) Finalize(ctx context.Context, exec SQLExecutor, id int, outcome models.Outcome, completedAt time.Time) error {
	executor := r.getExecutor(exec)
	query := `
		UPDATE tournaments
		SET status = $1, champion_id = $2, runner_up_id = $3, third_place_id = $4, completed_at = $5
		WHERE id = $6 AND status = $7`
	result, err := executor.ExecContext(ctx, query,
		models.StatusCompleted, outcome.ChampionID, outcome.RunnerUpID, outcome.ThirdPlaceID, completedAt,
		id, models.StatusInProgress,
	)
	if err != nil {
		return fmt.Errorf("failed to finalize tournament %d: %w", id, err)
	}
	return r.mismatchOrNotFound(ctx, executor, id, checkAffectedRows(result, ErrTournamentStatusMismatch))
}

func (r *postgresTournamentRepository) IncrementParticipants(ctx context.Context, exec SQLExecutor, id int) error {
	executor := r.getExecutor(exec)
	query := `
		UPDATE tournaments SET total_participants = total_participants + 1
		WHERE id = $1 AND status = $2 AND total_participants < max_participants`
	result, err := executor.ExecContext(ctx, query, id, models.StatusRegistrationOpen)
	if err != nil {
		return fmt.Errorf("failed to reserve seat in tournament %d: %w", id, err)
	}
	if err := checkAffectedRows(result, ErrTournamentFull); err != nil {
		t, getErr := r.GetByID(ctx, executor, id)
		if getErr != nil {
			return getErr
		}
		if t.Status != models.StatusRegistrationOpen {
			return ErrTournamentStatusMismatch
		}
		return err
	}
	return nil
}

func (r *postgresTournamentRepository) DecrementParticipants(ctx context.Context, exec SQLExecutor, id int) error {
	executor := r.getExecutor(exec)
	query := `
		UPDATE tournaments SET total_participants = total_participants - 1
		WHERE id = $1 AND total_participants > 0`
	result, err := executor.ExecContext(ctx, query, id)
	if err != nil {
		return fmt.Errorf("failed to release seat in tournament %d: %w", id, err)
	}
	return checkAffectedRows(result, ErrTournamentNotFound)
}

func (r *postgresTournamentRepository) Delete(ctx context.Context, exec SQLExecutor, id int) error {
	executor := r.getExecutor(exec)
	// matches, participants и standings удаляются через ON DELETE CASCADE
	result, err := executor.ExecContext(ctx, `DELETE FROM tournaments WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete tournament %d: %w", id, err)
	}
	return checkAffectedRows(result, ErrTournamentNotFound)
}

// mismatchOrNotFound отличает "нет такого турнира" от "турнир в другом статусе".
func (r *postgresTournamentRepository) mismatchOrNotFound(ctx context.Context, executor SQLExecutor, id int, err error) error {
	if !errors.Is(err, ErrTournamentStatusMismatch) {
		return err
	}
	var exists bool
	if qErr := executor.QueryRowContext(ctx, `SELECT EXISTS(SELECT 1 FROM tournaments WHERE id = $1)`, id).Scan(&exists); qErr != nil {
		return fmt.Errorf("failed to check tournament %d: %w", id, qErr)
	}
	if !exists {
		return ErrTournamentNotFound
	}
	return err
}

func (r *postgresTournamentRepository) handleTournamentError(err error) error {
	if err == nil {
		return nil
	}
	var pqErr *pq.Error
	if errors.As(err, &pqErr) && pqErr.Constraint == "tournaments_total_within_max" {
		return ErrTournamentFull
	}
	return err
}

func nonNilRounds(rounds []models.RoundDescriptor) []models.RoundDescriptor {
	if rounds == nil {
		return []models.RoundDescriptor{}
	}
	return rounds
}
