package session

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/jinbekim/quizquiz/db"
	"github.com/jinbekim/quizquiz/models"
	"github.com/jinbekim/quizquiz/services/chat"
)

// ConsoleChannel is recorded on sessions started without a chat platform.
const ConsoleChannel = "console"

var (
	ErrChannelBusy      = errors.New("channel already has an active quiz session")
	ErrSessionNotFound  = errors.New("quiz session not found")
	ErrSessionNotActive = errors.New("quiz session is not active")
	ErrQuizMissing      = errors.New("quiz for session is missing")
	ErrAlreadyResponded = errors.New("user already answered this session")
	ErrInvalidAnswer    = errors.New("answer must be one of 1, 2, 3, 4")
)

type QuizGenerator interface {
	GenerateQuiz(ctx context.Context, category models.Category, difficulty models.Difficulty) (*models.Quiz, error)
}

type Repositories struct {
	Quizzes   db.QuizRepository
	Sessions  db.SessionRepository
	Responses db.ResponseRepository
	Users     db.UserRepository
}

// Manager drives quiz sessions from publication to grading. The chat
// client, reaction reader and leaderboard cache are optional.
type Manager struct {
	generator QuizGenerator
	repos     Repositories
	chat      chat.Client
	reactions chat.ReactionReader
	cache     db.LeaderboardCache
	now       func() time.Time
}

// NewManager wires a manager. When chatClient can also read reactions,
// answers are ingested from the quiz post at grading time.
func NewManager(generator QuizGenerator, repos Repositories, chatClient chat.Client, cache db.LeaderboardCache) *Manager {
	m := &Manager{
		generator: generator,
		repos:     repos,
		chat:      chatClient,
		cache:     cache,
		now:       time.Now,
	}
	if reader, ok := chatClient.(chat.ReactionReader); ok {
		m.reactions = reader
	}
	return m
}

func (m *Manager) ChannelID() string {
	if m.chat == nil {
		return ConsoleChannel
	}
	return m.chat.ChannelID()
}

// Start generates a quiz and opens an active session for it. Posting to
// chat is best effort; the session exists even if the post fails.
func (m *Manager) Start(ctx context.Context, category models.Category, difficulty models.Difficulty) (*models.QuizSession, *models.Quiz, error) {
	channelID := m.ChannelID()

	active, err := m.repos.Sessions.GetActiveSessionForChannel(ctx, channelID)
	switch {
	case err == nil:
		log.Printf("[WARN] Channel already has an active session: channel=%s, session_id=%d", channelID, active.ID)
		return nil, nil, fmt.Errorf("%w: session %d", ErrChannelBusy, active.ID)
	case !errors.Is(err, db.ErrNotFound):
		return nil, nil, fmt.Errorf("failed to check active session: %w", err)
	}

	quiz, err := m.generator.GenerateQuiz(ctx, category, difficulty)
	if err != nil {
		log.Printf("[ERROR] Failed to start quiz session: %v", err)
		return nil, nil, err
	}

	session := &models.QuizSession{
		QuizID:    quiz.ID,
		ChannelID: channelID,
		Status:    models.SessionActive,
	}
	if err := m.repos.Sessions.CreateSession(ctx, session); err != nil {
		if errors.Is(err, db.ErrChannelBusy) {
			log.Printf("[WARN] Channel became busy during generation: channel=%s, quiz_id=%d", channelID, quiz.ID)
			return nil, nil, fmt.Errorf("%w: %w", ErrChannelBusy, err)
		}
		log.Printf("[ERROR] Failed to create session for quiz %d: %v", quiz.ID, err)
		return nil, nil, err
	}
	log.Printf("[INFO] Quiz session started: session_id=%d, quiz_id=%d, channel=%s", session.ID, quiz.ID, channelID)

	if m.chat != nil {
		m.publish(ctx, session, quiz)
	}

	return session, quiz, nil
}

func (m *Manager) publish(ctx context.Context, session *models.QuizSession, quiz *models.Quiz) {
	postID, err := m.chat.PostMessage(ctx, chat.FormatQuiz(session, quiz))
	if err != nil {
		log.Printf("[ERROR] Failed to post quiz: session_id=%d, error=%v", session.ID, err)
		return
	}
	if postID == "" {
		return
	}

	if err := m.repos.Sessions.SetPostID(ctx, session.ID, postID); err != nil {
		log.Printf("[ERROR] Failed to record post id: session_id=%d, post_id=%s, error=%v", session.ID, postID, err)
	} else {
		session.PostID = &postID
	}

	seeder, ok := m.chat.(chat.ReactionSeeder)
	if !ok {
		return
	}
	for _, emoji := range chat.AnswerEmojis {
		if err := seeder.AddReaction(ctx, postID, emoji); err != nil {
			log.Printf("[WARN] Failed to add reaction: emoji=%s, error=%v", emoji, err)
		}
	}
}

// ActiveSessions lists active sessions, oldest first.
func (m *Manager) ActiveSessions(ctx context.Context) ([]*models.QuizSession, error) {
	return m.repos.Sessions.GetSessionsByStatus(ctx, models.SessionActive)
}
