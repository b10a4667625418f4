package db

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jinbekim/quizquiz/models"

	"github.com/lib/pq"
)

type UserRepository interface {
	GetOrCreateUser(ctx context.Context, id, username string) (*models.User, error)
	GetUserByID(ctx context.Context, id string) (*models.User, error)
	GetTopUsers(ctx context.Context, limit int) ([]*models.User, error)
}

type PostgresUserRepository struct {
	db *sql.DB
}

func NewPostgresUserRepository(db *sql.DB) *PostgresUserRepository {
	return &PostgresUserRepository{db: db}
}

const userColumns = `id, username, total_points, current_streak, longest_streak, badges, last_participation, created_at`

func (r *PostgresUserRepository) GetOrCreateUser(ctx context.Context, id, username string) (*models.User, error) {
	// A placeholder name (the id) written by grading is replaced once a real name is known.
	query := `
		INSERT INTO users (id, username)
		VALUES ($1, $2)
		ON CONFLICT (id) DO UPDATE SET username = EXCLUDED.username
		WHERE users.username = users.id
		RETURNING ` + userColumns

	user, err := scanUser(r.db.QueryRowContext(ctx, query, id, username))
	if err == nil {
		return user, nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("failed to upsert user: %w", err)
	}

	// Conflict without update: the user exists with a real name already.
	return r.GetUserByID(ctx, id)
}

func (r *PostgresUserRepository) GetUserByID(ctx context.Context, id string) (*models.User, error) {
	user, err := scanUser(r.db.QueryRowContext(ctx, `SELECT `+userColumns+` FROM users WHERE id = $1`, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("user %s: %w", id, ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	return user, nil
}

func (r *PostgresUserRepository) GetTopUsers(ctx context.Context, limit int) ([]*models.User, error) {
	query := `
		SELECT ` + userColumns + `
		FROM users
		ORDER BY total_points DESC, longest_streak DESC, id
		LIMIT $1`

	rows, err := r.db.QueryContext(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query leaderboard: %w", err)
	}
	defer rows.Close()

	users := make([]*models.User, 0, limit)
	for rows.Next() {
		user, err := scanUser(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan user: %w", err)
		}
		users = append(users, user)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating over users: %w", err)
	}

	return users, nil
}

func scanUser(row rowScanner) (*models.User, error) {
	user := &models.User{}
	var lastParticipation sql.NullTime

	err := row.Scan(&user.ID, &user.Username, &user.TotalPoints, &user.CurrentStreak,
		&user.LongestStreak, pq.Array(&user.Badges), &lastParticipation, &user.CreatedAt)
	if err != nil {
		return nil, err
	}

	if lastParticipation.Valid {
		user.LastParticipation = &lastParticipation.Time
	}
	if user.Badges == nil {
		user.Badges = []string{}
	}

	return user, nil
}
