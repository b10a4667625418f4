package db

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	_ "github.com/lib/pq"
)

var (
	ErrNotFound = errors.New("record not found")
	// ErrDuplicate is returned when a (session, user) response already exists.
	ErrDuplicate = errors.New("duplicate record")
	// ErrNotActive is returned when completing a session that is no longer active.
	ErrNotActive = errors.New("session is not active")
	// ErrChannelBusy is returned when creating a session on a channel that
	// already has an active one.
	ErrChannelBusy = errors.New("channel already has an active session")
)

const schema = `
CREATE TABLE IF NOT EXISTS quizzes (
	id SERIAL PRIMARY KEY,
	type VARCHAR(50) NOT NULL,
	difficulty VARCHAR(20) NOT NULL,
	question TEXT NOT NULL,
	options JSONB NOT NULL,
	answer VARCHAR(10) NOT NULL,
	explanation TEXT NOT NULL,
	source_file VARCHAR(500),
	created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
);

CREATE TABLE IF NOT EXISTS quiz_sessions (
	id SERIAL PRIMARY KEY,
	quiz_id INTEGER NOT NULL REFERENCES quizzes(id),
	channel_id VARCHAR(100) NOT NULL,
	post_id VARCHAR(100),
	status VARCHAR(20) NOT NULL DEFAULT 'active',
	started_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
	ended_at TIMESTAMPTZ
);

CREATE INDEX IF NOT EXISTS idx_quiz_sessions_status ON quiz_sessions (status);
CREATE UNIQUE INDEX IF NOT EXISTS idx_quiz_sessions_active_channel
	ON quiz_sessions (channel_id) WHERE status = 'active';

CREATE TABLE IF NOT EXISTS user_responses (
	id SERIAL PRIMARY KEY,
	session_id INTEGER NOT NULL REFERENCES quiz_sessions(id),
	user_id VARCHAR(100) NOT NULL,
	answer VARCHAR(10) NOT NULL,
	is_correct BOOLEAN NOT NULL DEFAULT FALSE,
	response_time DOUBLE PRECISION,
	points_earned INTEGER NOT NULL DEFAULT 0,
	created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
	UNIQUE (session_id, user_id)
);

CREATE TABLE IF NOT EXISTS users (
	id VARCHAR(100) PRIMARY KEY,
	username VARCHAR(100) NOT NULL,
	total_points INTEGER NOT NULL DEFAULT 0,
	current_streak INTEGER NOT NULL DEFAULT 0,
	longest_streak INTEGER NOT NULL DEFAULT 0,
	badges TEXT[] NOT NULL DEFAULT '{}',
	last_participation TIMESTAMPTZ,
	created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
);`

func Open(databaseURL string) (*sql.DB, error) {
	db, err := sql.Open("postgres", databaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	db.SetMaxOpenConns(10)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(5 * time.Minute)

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return db, nil
}

func InitSchema(ctx context.Context, db *sql.DB) error {
	if _, err := db.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("failed to create schema: %w", err)
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}
