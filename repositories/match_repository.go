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
	ErrMatchNotFound          = errors.New("match not found")
	ErrMatchAlreadyResolved   = errors.New("match already resolved")
	ErrMatchNotPending        = errors.New("match is not pending")
	ErrMatchSlotUnavailable   = errors.New("bracket slot is already taken or does not exist")
	ErrMatchSlotConflict      = errors.New("a match already occupies this round position")
	ErrMatchTournamentInvalid = errors.New("match tournament conflict or invalid")
)

type MatchFilter struct {
	Round         *int
	GroupLabel    *string
	ParticipantID *int
	Phase         *models.MatchPhase
	Status        *models.MatchStatus
}

// MatchResult is the final state written by Complete.
type MatchResult struct {
	MatchID     int
	WinnerID    int
	ScoreA      int
	ScoreB      int
	Sets        []models.SetScore
	Status      models.MatchStatus
	CompletedAt time.Time
}

type MatchRepository interface {
	Create(ctx context.Context, exec SQLExecutor, match *models.Match) error
	BatchCreate(ctx context.Context, exec SQLExecutor, matches []*models.Match) error
	GetByID(ctx context.Context, exec SQLExecutor, id int) (*models.Match, error)
	ListByTournament(ctx context.Context, exec SQLExecutor, tournamentID int, filter MatchFilter) ([]*models.Match, error)
	CountByTournament(ctx context.Context, exec SQLExecutor, tournamentID int, phase *models.MatchPhase) (int, error)
	// CountUnresolved counts pending and in_progress matches.
	CountUnresolved(ctx context.Context, exec SQLExecutor, tournamentID int, phase *models.MatchPhase) (int, error)
	MaxRound(ctx context.Context, exec SQLExecutor, tournamentID int) (int, error)
	// Start moves a match pending -> in_progress.
	Start(ctx context.Context, exec SQLExecutor, id int) error
	// Complete resolves a pending or in_progress match. Losing a race yields ErrMatchAlreadyResolved.
	Complete(ctx context.Context, exec SQLExecutor, result MatchResult) error
	// AssignSlot writes a participant into an empty side of a knockout match.
	AssignSlot(ctx context.Context, exec SQLExecutor, tournamentID, round, position int, side models.Side, participantID int, name string) error
	// AssignThirdPlaceSlot writes a participant into the first empty side of the third-place match.
	AssignThirdPlaceSlot(ctx context.Context, exec SQLExecutor, tournamentID, participantID int, name string) error
	DeleteByTournament(ctx context.Context, exec SQLExecutor, tournamentID int) error
}

type postgresMatchRepository struct {
	db *sql.DB
}

func NewPostgresMatchRepository(db *sql.DB) MatchRepository {
	return &postgresMatchRepository{db: db}
}

func (r *postgresMatchRepository) getExecutor(exec SQLExecutor) SQLExecutor {
	if exec != nil {
		return exec
	}
	return r.db
}

const matchColumns = `
	id, tournament_id, phase, round, position, group_label, is_third_place,
	participant_a_id, participant_a_name, participant_b_id, participant_b_name,
	score_a, score_b, sets, winner_id, status, created_at, completed_at`

func scanMatch(row rowScanner) (*models.Match, error) {
	m := &models.Match{}
	err := row.Scan(
		&m.ID, &m.TournamentID, &m.Phase, &m.Round, &m.Position, &m.GroupLabel, &m.IsThirdPlace,
		&m.ParticipantAID, &m.ParticipantA, &m.ParticipantBID, &m.ParticipantB,
		&m.ScoreA, &m.ScoreB, jsonColumn{&m.Sets}, &m.WinnerID, &m.Status, &m.CreatedAt, &m.CompletedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrMatchNotFound
		}
		return nil, err
	}
	return m, nil
}

func (r *postgresMatchRepository) Create(ctx context.Context, exec SQLExecutor, m *models.Match) error {
	executor := r.getExecutor(exec)
	var sets interface{}
	if len(m.Sets) > 0 {
		data, err := marshalJSON(m.Sets)
		if err != nil {
			return err
		}
		sets = data
	}

	query := `
		INSERT INTO matches
			(tournament_id, phase, round, position, group_label, is_third_place,
			 participant_a_id, participant_a_name, participant_b_id, participant_b_name,
			 score_a, score_b, sets, winner_id, status, completed_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16)
		RETURNING id, created_at`

	err := executor.QueryRowContext(ctx, query,
		m.TournamentID, m.Phase, m.Round, m.Position, m.GroupLabel, m.IsThirdPlace,
		m.ParticipantAID, m.ParticipantA, m.ParticipantBID, m.ParticipantB,
		m.ScoreA, m.ScoreB, sets, m.WinnerID, m.Status, m.CompletedAt,
	).Scan(&m.ID, &m.CreatedAt)
	return r.handleMatchError(err)
}

func (r *postgresMatchRepository) BatchCreate(ctx context.Context, exec SQLExecutor, matches []*models.Match) error {
	for _, m := range matches {
		if err := r.Create(ctx, exec, m); err != nil {
			return fmt.Errorf("BatchCreate failed for round %d position %d: %w", m.Round, m.Position, err)
		}
	}
	return nil
}

func (r *postgresMatchRepository) GetByID(ctx context.Context, exec SQLExecutor, id int) (*models.Match, error) {
	executor := r.getExecutor(exec)
	query := `SELECT` + matchColumns + ` FROM matches WHERE id = $1`
	return scanMatch(executor.QueryRowContext(ctx, query, id))
}

func (r *postgresMatchRepository) ListByTournament(ctx context.Context, exec SQLExecutor, tournamentID int, filter MatchFilter) ([]*models.Match, error) {
	executor := r.getExecutor(exec)
	qb := newQueryBuilder(`SELECT`+matchColumns+` FROM matches WHERE tournament_id = $1`, tournamentID)
	if filter.Round != nil {
		qb.where("round = ?", *filter.Round)
	}
	if filter.GroupLabel != nil {
		qb.where("group_label = ?", *filter.GroupLabel)
	}
	if filter.Phase != nil {
		qb.where("phase = ?", *filter.Phase)
	}
	if filter.Status != nil {
		qb.where("status = ?", *filter.Status)
	}
	if filter.ParticipantID != nil {
		qb.where("? IN (participant_a_id, participant_b_id)", *filter.ParticipantID)
	}
	qb.raw(" ORDER BY round ASC, group_label ASC NULLS FIRST, position ASC, id ASC")

	rows, err := executor.QueryContext(ctx, qb.String(), qb.args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query matches for tournament %d: %w", tournamentID, err)
	}
	defer rows.Close()

	matches := make([]*models.Match, 0)
	for rows.Next() {
		m, scanErr := scanMatch(rows)
		if scanErr != nil {
			return nil, fmt.Errorf("failed to scan match row: %w", scanErr)
		}
		matches = append(matches, m)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error during match rows iteration: %w", err)
	}
	return matches, nil
}

func (r *postgresMatchRepository) CountByTournament(ctx context.Context, exec SQLExecutor, tournamentID int, phase *models.MatchPhase) (int, error) {
	executor := r.getExecutor(exec)
	qb := newQueryBuilder(`SELECT COUNT(*) FROM matches WHERE tournament_id = $1`, tournamentID)
	if phase != nil {
		qb.where("phase = ?", *phase)
	}
	var count int
	if err := executor.QueryRowContext(ctx, qb.String(), qb.args...).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count matches for tournament %d: %w", tournamentID, err)
	}
	return count, nil
}

func (r *postgresMatchRepository) CountUnresolved(ctx context.Context, exec SQLExecutor, tournamentID int, phase *models.MatchPhase) (int, error) {
	executor := r.getExecutor(exec)
	qb := newQueryBuilder(`SELECT COUNT(*) FROM matches WHERE tournament_id = $1 AND status IN ('pending', 'in_progress')`, tournamentID)
	if phase != nil {
		qb.where("phase = ?", *phase)
	}
	var count int
	if err := executor.QueryRowContext(ctx, qb.String(), qb.args...).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count unresolved matches for tournament %d: %w", tournamentID, err)
	}
	return count, nil
}

func (r *postgresMatchRepository) MaxRound(ctx context.Context, exec SQLExecutor, tournamentID int) (int, error) {
	executor := r.getExecutor(exec)
	var maxRound int
	query := `SELECT COALESCE(MAX(round), 0) FROM matches WHERE tournament_id = $1`
	if err := executor.QueryRowContext(ctx, query, tournamentID).Scan(&maxRound); err != nil {
		return 0, fmt.Errorf("failed to get max round for tournament %d: %w", tournamentID, err)
	}
	return maxRound, nil
}

func (r *postgresMatchRepository) Start(ctx context.Context, exec SQLExecutor, id int) error {
	executor := r.getExecutor(exec)
	query := `
		UPDATE matches SET status = $1
		WHERE id = $2 AND status = $3 AND participant_a_id IS NOT NULL AND participant_b_id IS NOT NULL`
	result, err := executor.ExecContext(ctx, query, models.MatchInProgress, id, models.MatchPending)
	if err != nil {
		return fmt.Errorf("failed to start match %d: %w", id, err)
	}
	return r.existsOr(ctx, executor, id, checkAffectedRows(result, ErrMatchNotPending))
}

func (r *postgresMatchRepository) Complete(ctx context.Context, exec SQLExecutor, res MatchResult) error {
	executor := r.getExecutor(exec)
	var sets interface{}
	if len(res.Sets) > 0 {
		data, err := marshalJSON(res.Sets)
		if err != nil {
			return err
		}
		sets = data
	}

	// Check-and-set по статусу: из двух конкурентных результатов пройдет только один.
	query := `
		UPDATE matches
		SET winner_id = $1, score_a = $2, score_b = $3, sets = $4, status = $5, completed_at = $6
		WHERE id = $7 AND status IN ('pending', 'in_progress')`
	result, err := executor.ExecContext(ctx, query,
		res.WinnerID, res.ScoreA, res.ScoreB, sets, res.Status, res.CompletedAt, res.MatchID,
	)
	if err != nil {
		return fmt.Errorf("failed to complete match %d: %w", res.MatchID, err)
	}
	return r.existsOr(ctx, executor, res.MatchID, checkAffectedRows(result, ErrMatchAlreadyResolved))
}

func (r *postgresMatchRepository) AssignSlot(ctx context.Context, exec SQLExecutor, tournamentID, round, position int, side models.Side, participantID int, name string) error {
	executor := r.getExecutor(exec)
	query := `
		UPDATE matches SET participant_a_id = $1, participant_a_name = $2
		WHERE tournament_id = $3 AND phase = 'knockout' AND NOT is_third_place
		  AND round = $4 AND position = $5 AND participant_a_id IS NULL`
	if side == models.SideB {
		query = `
		UPDATE matches SET participant_b_id = $1, participant_b_name = $2
		WHERE tournament_id = $3 AND phase = 'knockout' AND NOT is_third_place
		  AND round = $4 AND position = $5 AND participant_b_id IS NULL`
	}
	result, err := executor.ExecContext(ctx, query, participantID, name, tournamentID, round, position)
	if err != nil {
		return fmt.Errorf("failed to assign slot round %d position %d: %w", round, position, err)
	}
	return checkAffectedRows(result, ErrMatchSlotUnavailable)
}

func (r *postgresMatchRepository) AssignThirdPlaceSlot(ctx context.Context, exec SQLExecutor, tournamentID, participantID int, name string) error {
	executor := r.getExecutor(exec)
	// В SET все CASE видят старые значения строки.
	query := `
		UPDATE matches SET
			participant_a_id   = CASE WHEN participant_a_id IS NULL THEN $1 ELSE participant_a_id END,
			participant_a_name = CASE WHEN participant_a_id IS NULL THEN $2 ELSE participant_a_name END,
			participant_b_id   = CASE WHEN participant_a_id IS NOT NULL THEN $1 ELSE participant_b_id END,
			participant_b_name = CASE WHEN participant_a_id IS NOT NULL THEN $2 ELSE participant_b_name END
		WHERE tournament_id = $3 AND is_third_place
		  AND (participant_a_id IS NULL OR participant_b_id IS NULL)`
	result, err := executor.ExecContext(ctx, query, participantID, name, tournamentID)
	if err != nil {
		return fmt.Errorf("failed to assign third place slot in tournament %d: %w", tournamentID, err)
	}
	return checkAffectedRows(result, ErrMatchSlotUnavailable)
}

func (r *postgresMatchRepository) DeleteByTournament(ctx context.Context, exec SQLExecutor, tournamentID int) error {
	executor := r.getExecutor(exec)
	if _, err := executor.ExecContext(ctx, `DELETE FROM matches WHERE tournament_id = $1`, tournamentID); err != nil {
		return fmt.Errorf("failed to delete matches of tournament %d: %w", tournamentID, err)
	}
	return nil
}

// existsOr превращает err в ErrMatchNotFound, если матча с таким id нет.
func (r *postgresMatchRepository) existsOr(ctx context.Context, executor SQLExecutor, id int, err error) error {
	if err == nil {
		return nil
	}
	var exists bool
	if qErr := executor.QueryRowContext(ctx, `SELECT EXISTS(SELECT 1 FROM matches WHERE id = $1)`, id).Scan(&exists); qErr != nil {
		return fmt.Errorf("failed to check match %d: %w", id, qErr)
	}
	if !exists {
		return ErrMatchNotFound
	}
	return err
}

func (r *postgresMatchRepository) handleMatchError(err error) error {
	if err == nil {
		return nil
	}
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		switch pqErr.Constraint {
		case "matches_tournament_id_fkey":
			return ErrMatchTournamentInvalid
		case "matches_slot_key":
			return ErrMatchSlotConflict
		}
	}
	return err
}
