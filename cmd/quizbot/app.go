package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log"

	"github.com/jinbekim/quizquiz/config"
	"github.com/jinbekim/quizquiz/db"
	"github.com/jinbekim/quizquiz/services"
	"github.com/jinbekim/quizquiz/services/chat"
	"github.com/jinbekim/quizquiz/services/generator"
	"github.com/jinbekim/quizquiz/services/quiz"
	"github.com/jinbekim/quizquiz/services/repofacts"
	"github.com/jinbekim/quizquiz/services/session"

	"github.com/redis/go-redis/v9"
)

type app struct {
	cfg         *config.Config
	db          *sql.DB
	redis       *redis.Client
	chat        chat.Client
	quizzes     *quiz.Service
	sessions    *session.Manager
	leaderboard *services.LeaderboardService
}

func openDatabase(cfg *config.Config) (*sql.DB, error) {
	if cfg.DatabaseURL == "" {
		return nil, errors.New("DB_URL environment variable is required")
	}
	return db.Open(cfg.DatabaseURL)
}

func newApp(ctx context.Context, cfg *config.Config) (*app, error) {
	database, err := openDatabase(cfg)
	if err != nil {
		return nil, err
	}

	gen, err := generator.New(cfg)
	if err != nil {
		database.Close()
		return nil, fmt.Errorf("failed to initialize generator: %w", err)
	}

	a := &app{cfg: cfg, db: database, chat: newChatClient(cfg)}

	var cache db.LeaderboardCache
	if cfg.RedisAddr != "" {
		client, err := db.NewRedisClient(ctx, cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)
		if err != nil {
			log.Printf("[WARN] Redis unavailable, leaderboard cache disabled: %v", err)
		} else {
			a.redis = client
			cache = db.NewRedisLeaderboardCache(client)
		}
	}

	quizRepo := db.NewPostgresQuizRepository(database)
	userRepo := db.NewPostgresUserRepository(database)
	facts := repofacts.NewAnalyzer(cfg.TargetRepoPath, cfg.TargetRepoName)

	a.quizzes = quiz.NewService(gen, facts, quizRepo, cfg.QuizExportDir)
	a.sessions = session.NewManager(a.quizzes, session.Repositories{
		Quizzes:   quizRepo,
		Sessions:  db.NewPostgresSessionRepository(database),
		Responses: db.NewPostgresResponseRepository(database),
		Users:     userRepo,
	}, a.chat, cache)
	a.leaderboard = services.NewLeaderboardService(userRepo, cache, a.chat)

	log.Printf("[INFO] Quiz bot ready: repo=%s, backend=%s, channel=%s", facts.Name(), cfg.GeneratorBackend, a.sessions.ChannelID())
	return a, nil
}

// newChatClient prefers the bot API, which can read reactions, over the
// post-only webhook. It returns nil when neither is configured.
func newChatClient(cfg *config.Config) chat.Client {
	switch {
	case cfg.MattermostBotConfigured():
		return chat.NewMattermostClient(cfg.MattermostURL, cfg.MattermostToken, cfg.MattermostChannelID)
	case cfg.WebhookConfigured():
		log.Printf("[INFO] Using Mattermost webhook; answers will not be read from reactions")
		return chat.NewWebhookClient(cfg.MattermostWebhookURL)
	default:
		log.Printf("[INFO] No chat platform configured, running in console mode")
		return nil
	}
}

func (a *app) Close() {
	if a.redis != nil {
		a.redis.Close()
	}
	a.db.Close()
}
