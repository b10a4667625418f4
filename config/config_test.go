package config

import "testing"

func TestLoadDefaults(t *testing.T) {
	t.Setenv("QUIZ_PUBLISH_CRON", "30 9 * * 1-5")
	t.Setenv("LEADERBOARD_SIZE", "not-a-number")
	t.Setenv("REDIS_DB", "3")

	cfg := Load()

	if cfg.QuizPublishCron != "30 9 * * 1-5" {
		t.Errorf("QuizPublishCron = %q, expected override", cfg.QuizPublishCron)
	}
	if cfg.QuizGradingCron != "0 16 * * 1-5" {
		t.Errorf("QuizGradingCron = %q, expected default", cfg.QuizGradingCron)
	}
	if cfg.LeaderboardSize != 5 {
		t.Errorf("LeaderboardSize = %d, expected fallback 5", cfg.LeaderboardSize)
	}
	if cfg.RedisDB != 3 {
		t.Errorf("RedisDB = %d, expected 3", cfg.RedisDB)
	}
	if cfg.QuizExportDir != "quizzes" {
		t.Errorf("QuizExportDir = %q, expected quizzes", cfg.QuizExportDir)
	}
}

func TestChatConfigured(t *testing.T) {
	tests := []struct {
		name    string
		cfg     Config
		bot     bool
		webhook bool
	}{
		{name: "nothing", cfg: Config{}},
		{name: "webhook only", cfg: Config{MattermostWebhookURL: "http://hook"}, webhook: true},
		{
			name: "bot without channel",
			cfg:  Config{MattermostURL: "http://mm", MattermostToken: "t"},
		},
		{
			name: "bot",
			cfg:  Config{MattermostURL: "http://mm", MattermostToken: "t", MattermostChannelID: "c"},
			bot:  true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.cfg.MattermostBotConfigured(); got != tt.bot {
				t.Errorf("MattermostBotConfigured() = %v, expected %v", got, tt.bot)
			}
			if got := tt.cfg.WebhookConfigured(); got != tt.webhook {
				t.Errorf("WebhookConfigured() = %v, expected %v", got, tt.webhook)
			}
		})
	}
}
