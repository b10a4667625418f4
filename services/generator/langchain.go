package generator

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"

	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langchaingo/llms/openai"
)

// LangChain adapts any langchaingo model.
type LangChain struct {
	llm llms.Model
}

func NewLangChain(llm llms.Model) *LangChain {
	return &LangChain{llm: llm}
}

func NewOpenAI(apiKey, model string) (*LangChain, error) {
	if model == "" {
		model = "gpt-4o-mini"
	}
	llm, err := openai.New(
		openai.WithModel(model),
		openai.WithToken(apiKey),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create OpenAI client: %w", err)
	}
	return NewLangChain(llm), nil
}

func (l *LangChain) Generate(ctx context.Context, prompt string) (string, error) {
	log.Printf("[INFO] Calling LLM for quiz generation: prompt_chars=%d", len(prompt))

	completion, err := llms.GenerateFromSinglePrompt(ctx, l.llm, prompt, llms.WithTemperature(0.7))
	if err != nil {
		if errors.Is(ctx.Err(), context.DeadlineExceeded) {
			return "", ErrGeneratorTimeout
		}
		log.Printf("[ERROR] Failed to generate LLM response: %v", err)
		return "", fmt.Errorf("failed to generate LLM response: %w", err)
	}

	return strings.TrimSpace(completion), nil
}
