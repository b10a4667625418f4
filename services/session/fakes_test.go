package session

import (
	"context"
	"errors"
	"sort"
	"sync"
	"time"

	"github.com/jinbekim/quizquiz/db"
	"github.com/jinbekim/quizquiz/models"
	"github.com/jinbekim/quizquiz/services/chat"
)

// memStore is an in-memory stand-in for the four Postgres repositories.
type memStore struct {
	mu        sync.Mutex
	quizzes   map[int]*models.Quiz
	sessions  map[int]*models.QuizSession
	responses []*models.UserResponse
	users     map[string]*models.User
	nextID    int

	failComplete map[int]error
	panicOn      map[int]bool
}

func newMemStore() *memStore {
	return &memStore{
		quizzes:      map[int]*models.Quiz{},
		sessions:     map[int]*models.QuizSession{},
		users:        map[string]*models.User{},
		failComplete: map[int]error{},
		panicOn:      map[int]bool{},
	}
}

func (s *memStore) repos() Repositories {
	return Repositories{Quizzes: s, Sessions: s, Responses: s, Users: s}
}

func (s *memStore) id() int {
	s.nextID++
	return s.nextID
}

func (s *memStore) CreateQuiz(ctx context.Context, quiz *models.Quiz) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	quiz.ID = s.id()
	s.quizzes[quiz.ID] = quiz
	return nil
}

func (s *memStore) GetQuizByID(ctx context.Context, id int) (*models.Quiz, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	q, ok := s.quizzes[id]
	if !ok {
		return nil, db.ErrNotFound
	}
	return q, nil
}

func (s *memStore) GetRecentQuestions(ctx context.Context, limit int) ([]string, error) {
	return nil, nil
}

func (s *memStore) CreateSession(ctx context.Context, session *models.QuizSession) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, existing := range s.sessions {
		if existing.ChannelID == session.ChannelID && existing.IsActive() {
			return db.ErrChannelBusy
		}
	}
	session.ID = s.id()
	session.StartedAt = time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)
	copied := *session
	s.sessions[session.ID] = &copied
	return nil
}

func (s *memStore) GetSessionByID(ctx context.Context, id int) (*models.QuizSession, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.panicOn[id] {
		panic("corrupt session row")
	}
	session, ok := s.sessions[id]
	if !ok {
		return nil, db.ErrNotFound
	}
	copied := *session
	return &copied, nil
}

func (s *memStore) GetSessionsByStatus(ctx context.Context, status models.SessionStatus) ([]*models.QuizSession, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []*models.QuizSession
	for _, session := range s.sessions {
		if session.Status == status {
			copied := *session
			out = append(out, &copied)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (s *memStore) GetActiveSessionForChannel(ctx context.Context, channelID string) (*models.QuizSession, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, session := range s.sessions {
		if session.ChannelID == channelID && session.IsActive() {
			copied := *session
			return &copied, nil
		}
	}
	return nil, db.ErrNotFound
}

func (s *memStore) SetPostID(ctx context.Context, id int, postID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	session, ok := s.sessions[id]
	if !ok {
		return db.ErrNotFound
	}
	session.PostID = &postID
	return nil
}

func (s *memStore) CompleteSession(ctx context.Context, id int, endedAt time.Time, participations []models.Participation) ([]*models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.failComplete[id]; err != nil {
		return nil, err
	}
	session, ok := s.sessions[id]
	if !ok || !session.IsActive() {
		return nil, db.ErrNotActive
	}
	session.Status = models.SessionCompleted
	session.EndedAt = &endedAt

	var updated []*models.User
	participants := map[string]bool{}
	for _, p := range participations {
		user, ok := s.users[p.UserID]
		if !ok {
			user = &models.User{ID: p.UserID, Username: p.UserID}
			s.users[p.UserID] = user
		}
		models.ApplyParticipation(user, p, endedAt)
		participants[p.UserID] = true
		updated = append(updated, user)
	}
	for id, user := range s.users {
		if !participants[id] {
			user.CurrentStreak = 0
		}
	}
	return updated, nil
}

func (s *memStore) CreateResponse(ctx context.Context, response *models.UserResponse) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, r := range s.responses {
		if r.SessionID == response.SessionID && r.UserID == response.UserID {
			return db.ErrDuplicate
		}
	}
	response.ID = s.id()
	s.responses = append(s.responses, response)
	return nil
}

func (s *memStore) GetResponsesBySession(ctx context.Context, sessionID int) ([]*models.UserResponse, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []*models.UserResponse
	for _, r := range s.responses {
		if r.SessionID == sessionID {
			out = append(out, r)
		}
	}
	return out, nil
}

func (s *memStore) HasResponded(ctx context.Context, sessionID int, userID string) (bool, error) {
	responses, _ := s.GetResponsesBySession(ctx, sessionID)
	for _, r := range responses {
		if r.UserID == userID {
			return true, nil
		}
	}
	return false, nil
}

func (s *memStore) GetOrCreateUser(ctx context.Context, id, username string) (*models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	user, ok := s.users[id]
	if !ok {
		user = &models.User{ID: id, Username: username}
		s.users[id] = user
	} else if user.Username == id && username != id {
		user.Username = username
	}
	return user, nil
}

func (s *memStore) GetUserByID(ctx context.Context, id string) (*models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	user, ok := s.users[id]
	if !ok {
		return nil, db.ErrNotFound
	}
	return user, nil
}

func (s *memStore) GetTopUsers(ctx context.Context, limit int) ([]*models.User, error) {
	return nil, nil
}

type fakeGenerator struct {
	store *memStore
	err   error

	mu    sync.Mutex
	calls int
	// gate, when set, is waited on before each quiz is created.
	gate *sync.WaitGroup
}

func (g *fakeGenerator) GenerateQuiz(ctx context.Context, category models.Category, difficulty models.Difficulty) (*models.Quiz, error) {
	g.mu.Lock()
	g.calls++
	g.mu.Unlock()
	if g.gate != nil {
		g.gate.Done()
		g.gate.Wait()
	}
	if g.err != nil {
		return nil, g.err
	}
	quiz := &models.Quiz{
		Category:    models.CategoryCodebase,
		Difficulty:  models.DifficultyMedium,
		Question:    "Which directory holds the Pinia stores?",
		Options:     models.Options{"1": "src/stores", "2": "src/views", "3": "public", "4": "tests"},
		Answer:      "1",
		Explanation: "Stores live under src/stores.",
	}
	if err := g.store.CreateQuiz(ctx, quiz); err != nil {
		return nil, err
	}
	return quiz, nil
}

// fakeChat records posts and serves canned reactions.
type fakeChat struct {
	mu        sync.Mutex
	posts     []string
	postErr   error
	reactions []chat.Reaction
	seeded    []string
	names     map[string]string
	botErr    error
}

func (c *fakeChat) PostMessage(ctx context.Context, text string) (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.posts = append(c.posts, text)
	if c.postErr != nil {
		return "", c.postErr
	}
	return "post-1", nil
}

func (c *fakeChat) ChannelID() string { return "town-square" }

func (c *fakeChat) AddReaction(ctx context.Context, postID, emojiName string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.seeded = append(c.seeded, emojiName)
	return nil
}

func (c *fakeChat) GetReactions(ctx context.Context, postID string) ([]chat.Reaction, error) {
	return c.reactions, nil
}

func (c *fakeChat) GetDisplayName(ctx context.Context, userID string) (string, error) {
	if name, ok := c.names[userID]; ok {
		return name, nil
	}
	return "", errors.New("unknown user")
}

func (c *fakeChat) BotUserID(ctx context.Context) (string, error) {
	if c.botErr != nil {
		return "", c.botErr
	}
	return "bot", nil
}

func (c *fakeChat) postCount() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.posts)
}

type fakeCache struct {
	invalidations int
}

func (c *fakeCache) Get(ctx context.Context, limit int) ([]*models.User, error) { return nil, nil }

func (c *fakeCache) Set(ctx context.Context, limit int, users []*models.User) error { return nil }

func (c *fakeCache) Invalidate(ctx context.Context) error {
	c.invalidations++
	return nil
}
