package generator

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"strings"

	"github.com/jinbekim/quizquiz/models"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
	"github.com/invopop/jsonschema"
)

const submitQuizTool = "submit_quiz"

// Anthropic calls the Messages API directly. The model is offered a
// submit_quiz tool whose input is the quiz payload; when it uses the tool
// the tool input is returned, otherwise the concatenated text.
type Anthropic struct {
	client *anthropic.Client
	model  anthropic.Model
}

func NewAnthropic(apiKey string) *Anthropic {
	client := anthropic.NewClient(option.WithAPIKey(apiKey))
	return &Anthropic{
		client: &client,
		model:  anthropic.ModelClaude4Sonnet20250514,
	}
}

func quizInputSchema() anthropic.ToolInputSchemaParam {
	reflector := jsonschema.Reflector{
		AllowAdditionalProperties: false,
		DoNotReference:            true,
	}
	schema := reflector.Reflect(&models.GeneratedQuiz{})

	return anthropic.ToolInputSchemaParam{
		Properties: schema.Properties,
	}
}

func (a *Anthropic) Generate(ctx context.Context, prompt string) (string, error) {
	log.Printf("[INFO] Calling Anthropic API: model=%s, prompt_chars=%d", a.model, len(prompt))

	response, err := a.client.Messages.New(ctx, anthropic.MessageNewParams{
		Model:     a.model,
		MaxTokens: 4096,
		Messages: []anthropic.MessageParam{
			anthropic.NewUserMessage(anthropic.NewTextBlock(prompt)),
		},
		Tools: []anthropic.ToolUnionParam{
			{
				OfTool: &anthropic.ToolParam{
					Name:        submitQuizTool,
					Description: anthropic.String("Submit the generated multiple-choice quiz"),
					InputSchema: quizInputSchema(),
				},
			},
		},
	})
	if err != nil {
		if errors.Is(ctx.Err(), context.DeadlineExceeded) {
			return "", ErrGeneratorTimeout
		}
		log.Printf("[ERROR] Failed to call Anthropic API: %v", err)
		return "", fmt.Errorf("failed to call Anthropic API: %w", err)
	}

	var text strings.Builder
	for _, block := range response.Content {
		switch block := block.AsAny().(type) {
		case anthropic.ToolUseBlock:
			if block.Name != submitQuizTool {
				continue
			}
			input, err := json.Marshal(block.Input)
			if err != nil {
				return "", fmt.Errorf("failed to marshal tool input: %w", err)
			}
			return string(input), nil
		case anthropic.TextBlock:
			text.WriteString(block.Text)
		}
	}

	log.Printf("[WARN] Anthropic response did not use %s, falling back to text", submitQuizTool)
	return text.String(), nil
}
