package services

import (
	"context"
	"errors"
	"fmt"
	"log"

	"github.com/jinbekim/quizquiz/db"
	"github.com/jinbekim/quizquiz/models"
	"github.com/jinbekim/quizquiz/services/chat"
)

var ErrNoPlayers = errors.New("no users have played yet")

type LeaderboardService struct {
	users db.UserRepository
	cache db.LeaderboardCache
	chat  chat.Client
}

// NewLeaderboardService builds the ranking service. cache and chatClient
// may be nil.
func NewLeaderboardService(users db.UserRepository, cache db.LeaderboardCache, chatClient chat.Client) *LeaderboardService {
	return &LeaderboardService{
		users: users,
		cache: cache,
		chat:  chatClient,
	}
}

// Top returns up to limit users ranked by points, then longest streak.
func (s *LeaderboardService) Top(ctx context.Context, limit int) ([]*models.User, error) {
	if limit <= 0 {
		log.Printf("[ERROR] Invalid leaderboard limit provided: %d", limit)
		return nil, fmt.Errorf("invalid leaderboard limit: %d", limit)
	}

	if s.cache != nil {
		cached, err := s.cache.Get(ctx, limit)
		if err != nil {
			log.Printf("[WARN] Leaderboard cache read failed: %v", err)
		} else if cached != nil {
			return cached, nil
		}
	}

	users, err := s.users.GetTopUsers(ctx, limit)
	if err != nil {
		log.Printf("[ERROR] Failed to get top users: %v", err)
		return nil, fmt.Errorf("failed to get leaderboard: %w", err)
	}

	if s.cache != nil {
		if err := s.cache.Set(ctx, limit, users); err != nil {
			log.Printf("[WARN] Leaderboard cache write failed: %v", err)
		}
	}

	return users, nil
}

// Post renders the leaderboard to chat and returns the rendered text.
func (s *LeaderboardService) Post(ctx context.Context, limit int) (string, error) {
	users, err := s.Top(ctx, limit)
	if err != nil {
		return "", err
	}
	if len(users) == 0 {
		return "", ErrNoPlayers
	}

	message := chat.FormatLeaderboard(users)
	if s.chat == nil {
		return message, nil
	}
	if _, err := s.chat.PostMessage(ctx, message); err != nil {
		log.Printf("[ERROR] Failed to post leaderboard: %v", err)
		return message, fmt.Errorf("failed to post leaderboard: %w", err)
	}

	log.Printf("[INFO] Leaderboard posted: users=%d", len(users))
	return message, nil
}
