package db

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/jinbekim/quizquiz/models"

	"github.com/lib/pq"
	"github.com/samber/lo"
)

type SessionRepository interface {
	// CreateSession inserts an active session. It returns ErrChannelBusy if
	// the channel already has one.
	CreateSession(ctx context.Context, session *models.QuizSession) error
	GetSessionByID(ctx context.Context, id int) (*models.QuizSession, error)
	GetSessionsByStatus(ctx context.Context, status models.SessionStatus) ([]*models.QuizSession, error)
	GetActiveSessionForChannel(ctx context.Context, channelID string) (*models.QuizSession, error)
	SetPostID(ctx context.Context, id int, postID string) error
	// CompleteSession marks an active session completed and applies the
	// participations to user records in the same transaction. It returns
	// ErrNotActive if the session was no longer active.
	CompleteSession(ctx context.Context, id int, endedAt time.Time, participations []models.Participation) ([]*models.User, error)
}

type PostgresSessionRepository struct {
	db *sql.DB
}

func NewPostgresSessionRepository(db *sql.DB) *PostgresSessionRepository {
	return &PostgresSessionRepository{db: db}
}

const sessionColumns = `id, quiz_id, channel_id, post_id, status, started_at, ended_at`

func (r *PostgresSessionRepository) CreateSession(ctx context.Context, session *models.QuizSession) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `SELECT pg_advisory_xact_lock(hashtext($1))`, session.ChannelID); err != nil {
		return fmt.Errorf("failed to lock channel %s: %w", session.ChannelID, err)
	}

	query := `
		INSERT INTO quiz_sessions (quiz_id, channel_id, post_id, status)
		SELECT $1, $2, $3, $4
		WHERE NOT EXISTS (
			SELECT 1 FROM quiz_sessions WHERE channel_id = $2 AND status = $5
		)
		RETURNING id, started_at`

	row := tx.QueryRowContext(ctx, query, session.QuizID, session.ChannelID, session.PostID,
		string(session.Status), string(models.SessionActive))
	if err := row.Scan(&session.ID, &session.StartedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) || isUniqueViolation(err) {
			return fmt.Errorf("channel %s: %w", session.ChannelID, ErrChannelBusy)
		}
		return fmt.Errorf("failed to create session: %w", err)
	}

	if err := tx.Commit(); err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("channel %s: %w", session.ChannelID, ErrChannelBusy)
		}
		return fmt.Errorf("failed to commit session: %w", err)
	}

	return nil
}

func isUniqueViolation(err error) bool {
	var pqErr *pq.Error
	return errors.As(err, &pqErr) && pqErr.Code == "23505"
}

func (r *PostgresSessionRepository) GetSessionByID(ctx context.Context, id int) (*models.QuizSession, error) {
	query := `SELECT ` + sessionColumns + ` FROM quiz_sessions WHERE id = $1`
	return r.getOne(ctx, query, id)
}

func (r *PostgresSessionRepository) GetActiveSessionForChannel(ctx context.Context, channelID string) (*models.QuizSession, error) {
	query := `
		SELECT ` + sessionColumns + `
		FROM quiz_sessions
		WHERE channel_id = $1 AND status = $2
		ORDER BY started_at DESC
		LIMIT 1`
	return r.getOne(ctx, query, channelID, string(models.SessionActive))
}

func (r *PostgresSessionRepository) getOne(ctx context.Context, query string, args ...any) (*models.QuizSession, error) {
	session, err := scanSession(r.db.QueryRowContext(ctx, query, args...))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get session: %w", err)
	}
	return session, nil
}

func (r *PostgresSessionRepository) GetSessionsByStatus(ctx context.Context, status models.SessionStatus) ([]*models.QuizSession, error) {
	query := `
		SELECT ` + sessionColumns + `
		FROM quiz_sessions
		WHERE status = $1
		ORDER BY started_at`

	rows, err := r.db.QueryContext(ctx, query, string(status))
	if err != nil {
		return nil, fmt.Errorf("failed to query sessions: %w", err)
	}
	defer rows.Close()

	sessions := make([]*models.QuizSession, 0)
	for rows.Next() {
		session, err := scanSession(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan session: %w", err)
		}
		sessions = append(sessions, session)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating over sessions: %w", err)
	}

	return sessions, nil
}

func (r *PostgresSessionRepository) SetPostID(ctx context.Context, id int, postID string) error {
	result, err := r.db.ExecContext(ctx, `UPDATE quiz_sessions SET post_id = $1 WHERE id = $2`, postID, id)
	if err != nil {
		return fmt.Errorf("failed to set post id: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return fmt.Errorf("session with id %d: %w", id, ErrNotFound)
	}

	return nil
}

func (r *PostgresSessionRepository) CompleteSession(ctx context.Context, id int, endedAt time.Time, participations []models.Participation) ([]*models.User, error) {
	if _, ids := lockOrder(participations); len(ids) > 0 {
		if err := r.ensureUsers(ctx, ids); err != nil {
			return nil, err
		}
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	result, err := tx.ExecContext(ctx,
		`UPDATE quiz_sessions SET status = $1, ended_at = $2 WHERE id = $3 AND status = $4`,
		string(models.SessionCompleted), endedAt, id, string(models.SessionActive))
	if err != nil {
		return nil, fmt.Errorf("failed to complete session: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return nil, fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return nil, ErrNotActive
	}

	sorted, participantIDs := lockOrder(participations)
	if err := lockUsers(ctx, tx, participantIDs); err != nil {
		return nil, err
	}

	updated := make([]*models.User, 0, len(sorted))
	for _, p := range sorted {
		user, err := applyParticipationTx(ctx, tx, p, endedAt)
		if err != nil {
			return nil, err
		}
		updated = append(updated, user)
	}

	if _, err := tx.ExecContext(ctx,
		`UPDATE users SET current_streak = 0 WHERE current_streak > 0 AND NOT (id = ANY($1))`,
		pq.Array(participantIDs)); err != nil {
		return nil, fmt.Errorf("failed to reset streaks: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit session completion: %w", err)
	}

	return updated, nil
}

// ensureUsers creates missing participant rows outside the completion
// transaction so that transaction only locks existing rows.
func (r *PostgresSessionRepository) ensureUsers(ctx context.Context, ids []string) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO users (id, username)
		SELECT id, id FROM unnest($1::text[]) AS id
		ORDER BY id
		ON CONFLICT (id) DO NOTHING`, pq.Array(ids))
	if err != nil {
		return fmt.Errorf("failed to ensure users: %w", err)
	}
	return nil
}

// lockOrder sorts participations by user id and returns the distinct ids in
// the same order. Every row lock taken during completion follows this order.
func lockOrder(participations []models.Participation) ([]models.Participation, []string) {
	sorted := slices.Clone(participations)
	slices.SortStableFunc(sorted, func(a, b models.Participation) int { return strings.Compare(a.UserID, b.UserID) })
	ids := lo.Uniq(lo.Map(sorted, func(p models.Participation, _ int) string { return p.UserID }))
	return sorted, ids
}

// lockUsers row-locks every user the completion may write, participants and
// streak holders alike, in id order. Concurrent completions then acquire
// locks in the same order.
func lockUsers(ctx context.Context, tx *sql.Tx, participantIDs []string) error {
	rows, err := tx.QueryContext(ctx, `
		SELECT id FROM users
		WHERE id = ANY($1) OR current_streak > 0
		ORDER BY id
		FOR UPDATE`, pq.Array(participantIDs))
	if err != nil {
		return fmt.Errorf("failed to lock users: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
	}
	return rows.Err()
}

func applyParticipationTx(ctx context.Context, tx *sql.Tx, p models.Participation, at time.Time) (*models.User, error) {
	user, err := scanUser(tx.QueryRowContext(ctx,
		`SELECT `+userColumns+` FROM users WHERE id = $1 FOR UPDATE`, p.UserID))
	if err != nil {
		return nil, fmt.Errorf("failed to lock user %s: %w", p.UserID, err)
	}

	models.ApplyParticipation(user, p, at)

	_, err = tx.ExecContext(ctx, `
		UPDATE users
		SET total_points = $1, current_streak = $2, longest_streak = $3, badges = $4, last_participation = $5
		WHERE id = $6`,
		user.TotalPoints, user.CurrentStreak, user.LongestStreak, pq.Array(user.Badges), user.LastParticipation, user.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to update user %s: %w", p.UserID, err)
	}

	return user, nil
}

func scanSession(row rowScanner) (*models.QuizSession, error) {
	session := &models.QuizSession{}
	var status string
	var postID sql.NullString
	var endedAt sql.NullTime

	err := row.Scan(&session.ID, &session.QuizID, &session.ChannelID, &postID, &status, &session.StartedAt, &endedAt)
	if err != nil {
		return nil, err
	}

	if session.Status, err = models.ParseSessionStatus(status); err != nil {
		return nil, fmt.Errorf("session %d: %w", session.ID, err)
	}
	if postID.Valid {
		session.PostID = &postID.String
	}
	if endedAt.Valid {
		session.EndedAt = &endedAt.Time
	}

	return session, nil
}
