package db

import (
	"context"
	"database/sql"
	"fmt"
)

var schema = []string{
	`CREATE TABLE IF NOT EXISTS tournaments (
		id SERIAL PRIMARY KEY,
		name VARCHAR(255) NOT NULL,
		format VARCHAR(32) NOT NULL,
		status VARCHAR(32) NOT NULL DEFAULT 'draft',
		config JSONB NOT NULL,
		max_participants INT NOT NULL,
		total_participants INT NOT NULL DEFAULT 0,
		rounds JSONB NOT NULL DEFAULT '[]',
		champion_id INT,
		runner_up_id INT,
		third_place_id INT,
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		started_at TIMESTAMPTZ,
		completed_at TIMESTAMPTZ,
		CONSTRAINT tournaments_total_within_max CHECK (total_participants <= max_participants)
	)`,
	`CREATE TABLE IF NOT EXISTS tournament_participants (
		id SERIAL PRIMARY KEY,
		tournament_id INT NOT NULL,
		participant_id INT NOT NULL,
		name VARCHAR(255) NOT NULL,
		rating DOUBLE PRECISION NOT NULL DEFAULT 0,
		seed INT,
		group_label VARCHAR(16),
		status VARCHAR(16) NOT NULL DEFAULT 'registered',
		registered_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		CONSTRAINT tournament_participants_tournament_id_fkey FOREIGN KEY (tournament_id) REFERENCES tournaments (id) ON DELETE CASCADE,
		CONSTRAINT tournament_participants_unique UNIQUE (tournament_id, participant_id)
	)`,
	`CREATE TABLE IF NOT EXISTS matches (
		id SERIAL PRIMARY KEY,
		tournament_id INT NOT NULL,
		phase VARCHAR(16) NOT NULL,
		round INT NOT NULL,
		position INT NOT NULL,
		group_label VARCHAR(16),
		is_third_place BOOLEAN NOT NULL DEFAULT FALSE,
		participant_a_id INT,
		participant_a_name VARCHAR(255) NOT NULL DEFAULT '',
		participant_b_id INT,
		participant_b_name VARCHAR(255) NOT NULL DEFAULT '',
		score_a INT NOT NULL DEFAULT 0,
		score_b INT NOT NULL DEFAULT 0,
		sets JSONB,
		winner_id INT,
		status VARCHAR(16) NOT NULL DEFAULT 'pending',
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		completed_at TIMESTAMPTZ,
		CONSTRAINT matches_tournament_id_fkey FOREIGN KEY (tournament_id) REFERENCES tournaments (id) ON DELETE CASCADE,
		CONSTRAINT matches_winner_is_participant CHECK (
			winner_id IS NULL OR winner_id = participant_a_id OR winner_id = participant_b_id
		)
	)`,
	`CREATE TABLE IF NOT EXISTS standings (
		id SERIAL PRIMARY KEY,
		tournament_id INT NOT NULL,
		group_label VARCHAR(16),
		participant_id INT NOT NULL,
		name VARCHAR(255) NOT NULL DEFAULT '',
		played INT NOT NULL DEFAULT 0,
		won INT NOT NULL DEFAULT 0,
		lost INT NOT NULL DEFAULT 0,
		sets_won INT NOT NULL DEFAULT 0,
		sets_lost INT NOT NULL DEFAULT 0,
		points INT NOT NULL DEFAULT 0,
		updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		CONSTRAINT standings_tournament_id_fkey FOREIGN KEY (tournament_id) REFERENCES tournaments (id) ON DELETE CASCADE
	)`,
	// Профили участников принадлежат внешнему справочнику; таблица создается, чтобы он мог читать из той же БД.
	`CREATE TABLE IF NOT EXISTS participant_profiles (
		id INT PRIMARY KEY,
		display_name VARCHAR(255) NOT NULL,
		rating DOUBLE PRECISION
	)`,
	// Раунд+позиция уникальны внутри фазы (и группы); ladder-матчи добавляются без сетки.
	`CREATE UNIQUE INDEX IF NOT EXISTS matches_slot_key
		ON matches (tournament_id, phase, round, position, COALESCE(group_label, ''))
		WHERE phase <> 'ladder'`,
	`CREATE UNIQUE INDEX IF NOT EXISTS standings_row_key
		ON standings (tournament_id, COALESCE(group_label, ''), participant_id)`,
	`CREATE INDEX IF NOT EXISTS idx_matches_tournament_round ON matches (tournament_id, round)`,
	`CREATE INDEX IF NOT EXISTS idx_matches_participants ON matches (participant_a_id, participant_b_id)`,
	`CREATE INDEX IF NOT EXISTS idx_tournaments_status ON tournaments (status)`,
}

// Migrate creates the engine tables if they do not exist yet.
func Migrate(ctx context.Context, conn *sql.DB) error {
	for _, query := range schema {
		if _, err := conn.ExecContext(ctx, query); err != nil {
			return fmt.Errorf("failed to execute migration query: %w", err)
		}
	}
	return nil
}
