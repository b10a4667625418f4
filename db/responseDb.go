package db

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jinbekim/quizquiz/models"
)

type ResponseRepository interface {
	// CreateResponse returns ErrDuplicate if the user already answered the session.
	CreateResponse(ctx context.Context, response *models.UserResponse) error
	GetResponsesBySession(ctx context.Context, sessionID int) ([]*models.UserResponse, error)
	HasResponded(ctx context.Context, sessionID int, userID string) (bool, error)
}

type PostgresResponseRepository struct {
	db *sql.DB
}

func NewPostgresResponseRepository(db *sql.DB) *PostgresResponseRepository {
	return &PostgresResponseRepository{db: db}
}

func (r *PostgresResponseRepository) CreateResponse(ctx context.Context, response *models.UserResponse) error {
	query := `
		INSERT INTO user_responses (session_id, user_id, answer, is_correct, response_time, points_earned)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (session_id, user_id) DO NOTHING
		RETURNING id, created_at`

	row := r.db.QueryRowContext(ctx, query,
		response.SessionID, response.UserID, response.Answer, response.IsCorrect,
		response.ResponseTime, response.PointsEarned)

	if err := row.Scan(&response.ID, &response.CreatedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return ErrDuplicate
		}
		return fmt.Errorf("failed to create response: %w", err)
	}

	return nil
}

func (r *PostgresResponseRepository) GetResponsesBySession(ctx context.Context, sessionID int) ([]*models.UserResponse, error) {
	query := `
		SELECT id, session_id, user_id, answer, is_correct, response_time, points_earned, created_at
		FROM user_responses
		WHERE session_id = $1
		ORDER BY created_at`

	rows, err := r.db.QueryContext(ctx, query, sessionID)
	if err != nil {
		return nil, fmt.Errorf("failed to query responses: %w", err)
	}
	defer rows.Close()

	responses := make([]*models.UserResponse, 0)
	for rows.Next() {
		response := &models.UserResponse{}
		var responseTime sql.NullFloat64
		err := rows.Scan(&response.ID, &response.SessionID, &response.UserID, &response.Answer,
			&response.IsCorrect, &responseTime, &response.PointsEarned, &response.CreatedAt)
		if err != nil {
			return nil, fmt.Errorf("failed to scan response: %w", err)
		}
		if responseTime.Valid {
			response.ResponseTime = &responseTime.Float64
		}
		responses = append(responses, response)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating over responses: %w", err)
	}

	return responses, nil
}

func (r *PostgresResponseRepository) HasResponded(ctx context.Context, sessionID int, userID string) (bool, error) {
	var exists bool
	query := `SELECT EXISTS (SELECT 1 FROM user_responses WHERE session_id = $1 AND user_id = $2)`
	if err := r.db.QueryRowContext(ctx, query, sessionID, userID).Scan(&exists); err != nil {
		return false, fmt.Errorf("failed to check response: %w", err)
	}
	return exists, nil
}
