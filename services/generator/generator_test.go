package generator

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/jinbekim/quizquiz/config"

	"github.com/tmc/langchaingo/llms"
)

func writeScript(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "claude")
	if err := os.WriteFile(path, []byte("#!/bin/sh\n"+body+"\n"), 0755); err != nil {
		t.Fatalf("failed to write script: %v", err)
	}
	return path
}

func TestClaudeCLIGenerate(t *testing.T) {
	tests := []struct {
		name        string
		script      string
		timeout     time.Duration
		expected    string
		expectedErr error
		wantErr     bool
	}{
		{
			name:     "passes prompt and output format",
			script:   `echo "{\"result\":\"$2 $3 $4\"}"`,
			timeout:  5 * time.Second,
			expected: `{"result":"hello --output-format json"}`,
		},
		{
			name:    "non-zero exit",
			script:  "echo boom >&2; exit 3",
			timeout: 5 * time.Second,
			wantErr: true,
		},
		{
			name:        "deadline exceeded",
			script:      "exec sleep 5",
			timeout:     100 * time.Millisecond,
			expectedErr: ErrGeneratorTimeout,
			wantErr:     true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctx, cancel := context.WithTimeout(context.Background(), tt.timeout)
			defer cancel()

			got, err := NewClaudeCLI(writeScript(t, tt.script)).Generate(ctx, "hello")
			if tt.wantErr {
				if err == nil {
					t.Fatalf("expected error, got output %q", got)
				}
				if tt.expectedErr != nil && !errors.Is(err, tt.expectedErr) {
					t.Errorf("error = %v, want %v", err, tt.expectedErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got != tt.expected {
				t.Errorf("Generate() = %q, want %q", got, tt.expected)
			}
		})
	}
}

func TestClaudeCLIMissingBinary(t *testing.T) {
	missing := filepath.Join(t.TempDir(), "no-such-claude")

	_, err := NewClaudeCLI(missing).Generate(context.Background(), "hello")
	if !errors.Is(err, ErrGeneratorNotFound) {
		t.Errorf("error = %v, want ErrGeneratorNotFound", err)
	}
}

func TestNew(t *testing.T) {
	tests := []struct {
		name     string
		cfg      config.Config
		wantType string
		wantErr  error
	}{
		{name: "default is claude cli", cfg: config.Config{}, wantType: "cli"},
		{name: "anthropic", cfg: config.Config{GeneratorBackend: config.BackendAnthropic, AnthropicAPIKey: "k"}, wantType: "anthropic"},
		{name: "anthropic without key", cfg: config.Config{GeneratorBackend: config.BackendAnthropic}, wantErr: ErrMissingAPIKey},
		{name: "openai without key", cfg: config.Config{GeneratorBackend: config.BackendOpenAI}, wantErr: ErrMissingAPIKey},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			gen, err := New(&tt.cfg)
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Errorf("error = %v, want %v", err, tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}

			switch gen.(type) {
			case *ClaudeCLI:
				if tt.wantType != "cli" {
					t.Errorf("got ClaudeCLI, want %s", tt.wantType)
				}
			case *Anthropic:
				if tt.wantType != "anthropic" {
					t.Errorf("got Anthropic, want %s", tt.wantType)
				}
			default:
				t.Errorf("unexpected generator type %T", gen)
			}
		})
	}

	if _, err := New(&config.Config{GeneratorBackend: "gemini"}); err == nil {
		t.Errorf("expected error for unknown backend")
	}
}

type fakeLLM struct {
	reply  string
	prompt string
}

func (f *fakeLLM) GenerateContent(ctx context.Context, messages []llms.MessageContent, options ...llms.CallOption) (*llms.ContentResponse, error) {
	if len(messages) > 0 && len(messages[0].Parts) > 0 {
		if text, ok := messages[0].Parts[0].(llms.TextContent); ok {
			f.prompt = text.Text
		}
	}
	return &llms.ContentResponse{
		Choices: []*llms.ContentChoice{{Content: f.reply}},
	}, nil
}

func (f *fakeLLM) Call(ctx context.Context, prompt string, options ...llms.CallOption) (string, error) {
	f.prompt = prompt
	return f.reply, nil
}

func TestLangChainGenerate(t *testing.T) {
	llm := &fakeLLM{reply: "  {\"question\":\"Q?\"}\n"}

	got, err := NewLangChain(llm).Generate(context.Background(), "make a quiz")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != `{"question":"Q?"}` {
		t.Errorf("Generate() = %q", got)
	}
	if llm.prompt != "make a quiz" {
		t.Errorf("prompt = %q", llm.prompt)
	}
}

func TestQuizInputSchema(t *testing.T) {
	schema := quizInputSchema()
	if schema.Properties == nil {
		t.Fatal("expected schema properties")
	}
}
