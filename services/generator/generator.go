package generator

import (
	"context"
	"errors"
	"fmt"

	"github.com/jinbekim/quizquiz/config"
)

var (
	ErrGeneratorNotFound = errors.New("generator executable not found")
	ErrGeneratorTimeout  = errors.New("generator timed out")
	ErrMissingAPIKey     = errors.New("generator api key not configured")
)

// Generator turns a prompt into raw model output. The output is expected
// to contain one quiz JSON object, possibly wrapped or fenced.
type Generator interface {
	Generate(ctx context.Context, prompt string) (string, error)
}

// New builds the backend selected by cfg.GeneratorBackend.
func New(cfg *config.Config) (Generator, error) {
	switch cfg.GeneratorBackend {
	case config.BackendClaudeCLI, "":
		return NewClaudeCLI(cfg.ClaudeCodePath), nil
	case config.BackendAnthropic:
		if cfg.AnthropicAPIKey == "" {
			return nil, fmt.Errorf("anthropic backend: %w", ErrMissingAPIKey)
		}
		return NewAnthropic(cfg.AnthropicAPIKey), nil
	case config.BackendOpenAI:
		if cfg.OpenAIAPIKey == "" {
			return nil, fmt.Errorf("openai backend: %w", ErrMissingAPIKey)
		}
		return NewOpenAI(cfg.OpenAIAPIKey, cfg.OpenAIModel)
	default:
		return nil, fmt.Errorf("unknown generator backend %q", cfg.GeneratorBackend)
	}
}
