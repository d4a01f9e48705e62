package db

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "github.com/lib/pq" // Import postgres driver
)

const pingInterval = 500 * time.Millisecond

// Connect открывает пул соединений и ждет, пока база ответит, не дольше timeout.
func Connect(dsn string, timeout time.Duration) (*sql.DB, error) {
	conn, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to create database handle: %w", err)
	}

	// Каждая мутация держит блокировку строки турнира до конца транзакции
	conn.SetMaxOpenConns(25)
	conn.SetMaxIdleConns(10)
	conn.SetConnMaxLifetime(30 * time.Minute)
	conn.SetConnMaxIdleTime(5 * time.Minute)

	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	if err := waitForPing(ctx, conn); err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("database is not reachable within %v: %w", timeout, err)
	}
	return conn, nil
}

// waitForPing повторяет PING, пока база поднимается (например, в docker compose).
func waitForPing(ctx context.Context, conn *sql.DB) error {
	ticker := time.NewTicker(pingInterval)
	defer ticker.Stop()

	for {
		err := conn.PingContext(ctx)
		if err == nil {
			return nil
		}
		select {
		case <-ctx.Done():
			return err
		case <-ticker.C:
		}
	}
}
