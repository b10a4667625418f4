package session

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sort"
	"time"

	"github.com/jinbekim/quizquiz/db"
	"github.com/jinbekim/quizquiz/models"
	"github.com/jinbekim/quizquiz/services/chat"
)

// RecordResponse scores and stores one answer. A user can answer a
// session once; later answers are rejected with ErrAlreadyResponded.
func (m *Manager) RecordResponse(ctx context.Context, sessionID int, userID, username, answer string, responseTime *float64) (*models.UserResponse, error) {
	if !models.IsOptionKey(answer) {
		return nil, ErrInvalidAnswer
	}

	session, quiz, err := m.loadActive(ctx, sessionID)
	if err != nil {
		return nil, err
	}

	return m.recordResponse(ctx, session, quiz, userID, username, answer, responseTime)
}

func (m *Manager) recordResponse(ctx context.Context, session *models.QuizSession, quiz *models.Quiz, userID, username, answer string, responseTime *float64) (*models.UserResponse, error) {
	if username == "" {
		username = userID
	}
	if _, err := m.repos.Users.GetOrCreateUser(ctx, userID, username); err != nil {
		return nil, fmt.Errorf("failed to register user: %w", err)
	}

	response := models.NewUserResponse(quiz, session.ID, userID, answer, responseTime)
	if err := m.repos.Responses.CreateResponse(ctx, response); err != nil {
		if errors.Is(err, db.ErrDuplicate) {
			return nil, ErrAlreadyResponded
		}
		return nil, fmt.Errorf("failed to store response: %w", err)
	}

	log.Printf("[INFO] Response recorded: session_id=%d, user_id=%s, correct=%t", session.ID, userID, response.IsCorrect)
	return response, nil
}

// ingestReactions turns answer reactions on the quiz post into responses.
// A user's earliest answer reaction counts; the bot's own reactions and
// non-answer emojis are ignored.
func (m *Manager) ingestReactions(ctx context.Context, session *models.QuizSession, quiz *models.Quiz) (int, error) {
	reactions, err := m.reactions.GetReactions(ctx, *session.PostID)
	if err != nil {
		return 0, err
	}

	botID, err := m.reactions.BotUserID(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to resolve bot user: %w", err)
	}

	sort.SliceStable(reactions, func(i, j int) bool { return reactions[i].CreateAt < reactions[j].CreateAt })

	seen := make(map[string]bool)
	added := 0
	for _, r := range reactions {
		if r.UserID == "" || r.UserID == botID || seen[r.UserID] {
			continue
		}
		answer, ok := chat.AnswerForEmoji(r.EmojiName)
		if !ok {
			continue
		}
		seen[r.UserID] = true

		name, err := m.reactions.GetDisplayName(ctx, r.UserID)
		if err != nil {
			log.Printf("[WARN] Failed to get display name: user_id=%s, error=%v", r.UserID, err)
		}

		_, err = m.recordResponse(ctx, session, quiz, r.UserID, name, answer, responseLatency(session.StartedAt, r.CreateAt))
		switch {
		case err == nil:
			added++
		case errors.Is(err, ErrAlreadyResponded):
		default:
			log.Printf("[ERROR] Failed to record reaction answer: user_id=%s, error=%v", r.UserID, err)
		}
	}

	return added, nil
}

// responseLatency is the seconds between the session start and a reaction
// timestamp in epoch milliseconds.
func responseLatency(startedAt time.Time, createAtMillis int64) *float64 {
	if createAtMillis <= 0 || startedAt.IsZero() {
		return nil
	}
	seconds := time.UnixMilli(createAtMillis).Sub(startedAt).Seconds()
	if seconds < 0 {
		seconds = 0
	}
	return &seconds
}
