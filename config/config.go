package config

import (
	"log"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

const (
	BackendClaudeCLI = "claude-cli"
	BackendAnthropic = "anthropic"
	BackendOpenAI    = "openai"
)

type Config struct {
	Port string

	DatabaseURL   string
	RedisAddr     string
	RedisPassword string
	RedisDB       int

	MattermostWebhookURL string
	MattermostURL        string
	MattermostToken      string
	MattermostChannelID  string

	TargetRepoPath string
	TargetRepoName string

	GeneratorBackend string
	ClaudeCodePath   string
	AnthropicAPIKey  string
	OpenAIAPIKey     string
	OpenAIModel      string

	QuizPublishCron string
	QuizGradingCron string
	QuizExportDir   string
	LeaderboardSize int
}

func Load() *Config {
	if err := godotenv.Load(); err != nil {
		log.Println("[INFO] No .env file found, relying on environment variables")
	}

	return &Config{
		Port: getEnv("PORT", "8080"),

		DatabaseURL:   getEnv("DB_URL", ""),
		RedisAddr:     getEnv("REDIS_ADDR", ""),
		RedisPassword: getEnv("REDIS_PASSWORD", ""),
		RedisDB:       getEnvAsInt("REDIS_DB", 0),

		MattermostWebhookURL: getEnv("MATTERMOST_WEBHOOK_URL", ""),
		MattermostURL:        getEnv("MATTERMOST_URL", ""),
		MattermostToken:      getEnv("MATTERMOST_TOKEN", ""),
		MattermostChannelID:  getEnv("MATTERMOST_CHANNEL_ID", ""),

		TargetRepoPath: getEnv("TARGET_REPO_PATH", "./target_repo"),
		TargetRepoName: getEnv("TARGET_REPO_NAME", "target_repo"),

		GeneratorBackend: getEnv("GENERATOR_BACKEND", BackendClaudeCLI),
		ClaudeCodePath:   getEnv("CLAUDE_CODE_PATH", "claude"),
		AnthropicAPIKey:  getEnv("ANTHROPIC_API_KEY", ""),
		OpenAIAPIKey:     getEnv("OPENAI_API_KEY", ""),
		OpenAIModel:      getEnv("OPENAI_MODEL", "gpt-4o-mini"),

		QuizPublishCron: getEnv("QUIZ_PUBLISH_CRON", "0 10 * * 1-5"),
		QuizGradingCron: getEnv("QUIZ_GRADING_CRON", "0 16 * * 1-5"),
		QuizExportDir:   getEnv("QUIZ_EXPORT_DIR", "quizzes"),
		LeaderboardSize: getEnvAsInt("LEADERBOARD_SIZE", 5),
	}
}

// MattermostBotConfigured reports whether the bot API (posting, reactions,
// user lookup) is usable. A webhook alone can only post.
func (c *Config) MattermostBotConfigured() bool {
	return c.MattermostURL != "" && c.MattermostToken != "" && c.MattermostChannelID != ""
}

func (c *Config) WebhookConfigured() bool {
	return c.MattermostWebhookURL != ""
}

func getEnv(key, fallback string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return fallback
}

func getEnvAsInt(key string, fallback int) int {
	valueStr := getEnv(key, "")
	if value, err := strconv.Atoi(valueStr); err == nil {
		return value
	}
	return fallback
}
