package session

import (
	"context"
	"errors"
	"fmt"
	"log"

	"github.com/jinbekim/quizquiz/db"
	"github.com/jinbekim/quizquiz/models"
	"github.com/jinbekim/quizquiz/services/chat"
)

type GradeSummary struct {
	Graded  int `json:"graded"`
	Skipped int `json:"skipped"`
	Failed  int `json:"failed"`
}

// Grade closes an active session: it ingests reaction answers, posts the
// results and completes the session together with the participants'
// score updates. Grading a session that is no longer active is a no-op
// reported as ErrSessionNotActive.
func (m *Manager) Grade(ctx context.Context, sessionID int) (*models.GradeResult, error) {
	session, quiz, err := m.loadActive(ctx, sessionID)
	if err != nil {
		return nil, err
	}

	if m.reactions != nil && session.PostID != nil {
		if added, err := m.ingestReactions(ctx, session, quiz); err != nil {
			log.Printf("[WARN] Failed to ingest reactions: session_id=%d, error=%v", session.ID, err)
		} else {
			log.Printf("[INFO] Ingested reactions: session_id=%d, new_responses=%d", session.ID, added)
		}
	}

	responses, err := m.repos.Responses.GetResponsesBySession(ctx, session.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to load responses: %w", err)
	}
	result := models.NewGradeResult(session, quiz, responses)

	if m.chat != nil {
		names := m.displayNames(ctx, result.CorrectUserIDs)
		if _, err := m.chat.PostMessage(ctx, chat.FormatResults(result, names)); err != nil {
			log.Printf("[ERROR] Failed to post results: session_id=%d, error=%v", session.ID, err)
		}
	}

	endedAt := m.now()
	if _, err := m.repos.Sessions.CompleteSession(ctx, session.ID, endedAt, result.Participations()); err != nil {
		if errors.Is(err, db.ErrNotActive) {
			log.Printf("[WARN] Session was completed concurrently: session_id=%d", session.ID)
			return nil, fmt.Errorf("%w: session %d", ErrSessionNotActive, session.ID)
		}
		return nil, fmt.Errorf("failed to complete session: %w", err)
	}
	session.Status = models.SessionCompleted
	session.EndedAt = &endedAt

	if m.cache != nil {
		if err := m.cache.Invalidate(ctx); err != nil {
			log.Printf("[WARN] Failed to invalidate leaderboard cache: %v", err)
		}
	}

	log.Printf("[INFO] Session graded: session_id=%d, responses=%d, correct=%d, accuracy=%.0f%%",
		session.ID, len(result.Responses), len(result.CorrectUserIDs), result.Accuracy)
	return result, nil
}

// GradeAllActive grades every active session independently. A failure or
// panic in one session is logged and does not stop the others.
func (m *Manager) GradeAllActive(ctx context.Context) (*GradeSummary, error) {
	sessions, err := m.repos.Sessions.GetSessionsByStatus(ctx, models.SessionActive)
	if err != nil {
		return nil, fmt.Errorf("failed to list active sessions: %w", err)
	}

	summary := &GradeSummary{}
	for _, s := range sessions {
		err := m.gradeSafely(ctx, s.ID)
		switch {
		case err == nil:
			summary.Graded++
		case errors.Is(err, ErrSessionNotActive):
			summary.Skipped++
		default:
			summary.Failed++
			log.Printf("[ERROR] Failed to grade session: session_id=%d, error=%v", s.ID, err)
		}
	}

	log.Printf("[INFO] Graded active sessions: graded=%d, skipped=%d, failed=%d", summary.Graded, summary.Skipped, summary.Failed)
	return summary, nil
}

func (m *Manager) gradeSafely(ctx context.Context, sessionID int) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("panic while grading: %v", r)
		}
	}()
	_, err = m.Grade(ctx, sessionID)
	return err
}

func (m *Manager) loadActive(ctx context.Context, sessionID int) (*models.QuizSession, *models.Quiz, error) {
	session, err := m.repos.Sessions.GetSessionByID(ctx, sessionID)
	if err != nil {
		if errors.Is(err, db.ErrNotFound) {
			log.Printf("[WARN] Session not found: session_id=%d", sessionID)
			return nil, nil, fmt.Errorf("%w: %d", ErrSessionNotFound, sessionID)
		}
		return nil, nil, fmt.Errorf("failed to load session: %w", err)
	}
	if !session.IsActive() {
		log.Printf("[WARN] Session not active: session_id=%d, status=%s", sessionID, session.Status)
		return nil, nil, fmt.Errorf("%w: session %d is %s", ErrSessionNotActive, sessionID, session.Status)
	}

	quiz, err := m.repos.Quizzes.GetQuizByID(ctx, session.QuizID)
	if err != nil {
		if errors.Is(err, db.ErrNotFound) {
			log.Printf("[ERROR] Quiz missing for session: session_id=%d, quiz_id=%d", sessionID, session.QuizID)
			return nil, nil, fmt.Errorf("%w: quiz %d", ErrQuizMissing, session.QuizID)
		}
		return nil, nil, fmt.Errorf("failed to load quiz: %w", err)
	}

	return session, quiz, nil
}

func (m *Manager) displayNames(ctx context.Context, userIDs []string) map[string]string {
	names := make(map[string]string, len(userIDs))
	for _, id := range userIDs {
		user, err := m.repos.Users.GetUserByID(ctx, id)
		if err != nil {
			continue
		}
		names[id] = user.DisplayName()
	}
	return names
}
