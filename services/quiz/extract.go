package quiz

import (
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"strings"

	"github.com/jinbekim/quizquiz/models"
)

const logPreviewChars = 500

var ErrExtraction = errors.New("no quiz payload found in generator output")

var requiredFields = []string{"question", "options", "answer", "explanation"}

type extractStrategy struct {
	name string
	find func(text string) (string, bool)
}

// Strategies are tried in order; the first candidate that parses as a JSON
// object wins.
var extractStrategies = []extractStrategy{
	{name: "tagged_fence", find: taggedFence},
	{name: "any_fence", find: anyFence},
	{name: "brace_span", find: braceSpan},
}

// Extract pulls the quiz payload out of raw generator output. Missing
// type and difficulty default to the requested values.
func Extract(raw string, category models.Category, difficulty models.Difficulty) (*models.GeneratedQuiz, error) {
	text := unwrapEnvelope(raw)

	for _, strategy := range extractStrategies {
		candidate, ok := strategy.find(text)
		if !ok {
			continue
		}

		var fields map[string]json.RawMessage
		if err := json.Unmarshal([]byte(candidate), &fields); err != nil || fields == nil {
			continue
		}

		payload, err := decodePayload(fields)
		if err != nil {
			log.Printf("[ERROR] Quiz payload rejected: strategy=%s, error=%v", strategy.name, err)
			return nil, err
		}
		if payload.Type == "" {
			payload.Type = string(category)
		}
		if payload.Difficulty == "" {
			payload.Difficulty = string(difficulty)
		}
		return payload, nil
	}

	log.Printf("[ERROR] Failed to parse quiz JSON: response=%q", preview(text, logPreviewChars))
	return nil, ErrExtraction
}

func decodePayload(fields map[string]json.RawMessage) (*models.GeneratedQuiz, error) {
	for _, key := range requiredFields {
		if _, ok := fields[key]; !ok {
			return nil, fmt.Errorf("%w: missing field %q", ErrExtraction, key)
		}
	}

	data, err := json.Marshal(fields)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrExtraction, err)
	}

	var payload models.GeneratedQuiz
	if err := json.Unmarshal(data, &payload); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrExtraction, err)
	}
	return &payload, nil
}

// unwrapEnvelope returns the "result" member when the whole text is a JSON
// object carrying one, and the text unchanged otherwise.
func unwrapEnvelope(raw string) string {
	var envelope map[string]json.RawMessage
	if err := json.Unmarshal([]byte(strings.TrimSpace(raw)), &envelope); err != nil {
		return raw
	}
	result, ok := envelope["result"]
	if !ok {
		return raw
	}

	var s string
	if err := json.Unmarshal(result, &s); err == nil {
		return s
	}
	return string(result)
}

func taggedFence(text string) (string, bool) {
	idx := strings.Index(text, "```json")
	if idx < 0 {
		return "", false
	}
	start := idx + len("```json")
	end := strings.Index(text[start:], "```")
	if end <= 0 {
		return "", false
	}
	return strings.TrimSpace(text[start : start+end]), true
}

// anyFence skips the rest of the opening fence line, which may carry a
// language tag.
func anyFence(text string) (string, bool) {
	idx := strings.Index(text, "```")
	if idx < 0 {
		return "", false
	}
	start := idx + len("```")
	if nl := strings.Index(text[start:], "\n"); nl > 0 {
		start += nl + 1
	}
	end := strings.Index(text[start:], "```")
	if end <= 0 {
		return "", false
	}
	return strings.TrimSpace(text[start : start+end]), true
}

func braceSpan(text string) (string, bool) {
	start := strings.Index(text, "{")
	end := strings.LastIndex(text, "}")
	if start < 0 || end <= start {
		return "", false
	}
	return text[start : end+1], true
}

func preview(s string, n int) string {
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n])
}
