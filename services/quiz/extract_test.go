package quiz

import (
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"github.com/jinbekim/quizquiz/models"
)

const samplePayload = `{"type":"codebase","difficulty":"easy","question":"Q?","options":{"1":"A","2":"B","3":"C","4":"D"},"answer":"2","explanation":"because B"}`

func envelope(t *testing.T, result any) string {
	t.Helper()
	data, err := json.Marshal(map[string]any{"type": "result", "is_error": false, "result": result})
	if err != nil {
		t.Fatalf("failed to build envelope: %v", err)
	}
	return string(data)
}

func TestExtract(t *testing.T) {
	tests := []struct {
		name string
		raw  func(t *testing.T) string
	}{
		{
			name: "bare object",
			raw:  func(t *testing.T) string { return samplePayload },
		},
		{
			name: "json fence",
			raw:  func(t *testing.T) string { return "Here you go:\n```json\n" + samplePayload + "\n```\nEnjoy." },
		},
		{
			name: "fence with other language tag",
			raw:  func(t *testing.T) string { return "```javascript\n" + samplePayload + "\n```" },
		},
		{
			name: "object inside prose",
			raw:  func(t *testing.T) string { return "Sure! " + samplePayload + " Let me know." },
		},
		{
			name: "envelope with fenced string result",
			raw:  func(t *testing.T) string { return envelope(t, "```json\n"+samplePayload+"\n```") },
		},
		{
			name: "envelope with object result",
			raw: func(t *testing.T) string {
				return envelope(t, json.RawMessage(samplePayload))
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			payload, err := Extract(tt.raw(t), models.CategoryLibrary, models.DifficultyHard)
			if err != nil {
				t.Fatalf("Extract() error = %v", err)
			}
			if payload.Question != "Q?" || payload.Answer != "2" || payload.Explanation != "because B" {
				t.Errorf("unexpected payload: %+v", payload)
			}
			if payload.Options["2"] != "B" || len(payload.Options) != 4 {
				t.Errorf("unexpected options: %v", payload.Options)
			}
			if payload.Type != "codebase" || payload.Difficulty != "easy" {
				t.Errorf("payload type/difficulty should come from the payload, got %s/%s", payload.Type, payload.Difficulty)
			}
		})
	}
}

func TestExtractFencedScenarioScoresTenPoints(t *testing.T) {
	raw := "```json\n" + samplePayload + "\n```"

	payload, err := Extract(raw, models.CategoryCodebase, models.DifficultyMedium)
	if err != nil {
		t.Fatalf("Extract() error = %v", err)
	}
	if err := ValidatePayload(payload); err != nil {
		t.Fatalf("ValidatePayload() error = %v", err)
	}

	quiz := toQuiz(payload, models.CategoryCodebase, models.DifficultyMedium)
	if quiz.Answer != "2" {
		t.Errorf("answer = %s, want 2", quiz.Answer)
	}
	if quiz.Points() != 10 {
		t.Errorf("points = %d, want 10", quiz.Points())
	}
}

func TestExtractDefaults(t *testing.T) {
	raw := `{"question":"Q?","options":{"1":"A","2":"B","3":"C","4":"D"},"answer":"1","explanation":"E"}`

	payload, err := Extract(raw, models.CategoryRecentChange, models.DifficultyHard)
	if err != nil {
		t.Fatalf("Extract() error = %v", err)
	}
	if payload.Type != string(models.CategoryRecentChange) || payload.Difficulty != string(models.DifficultyHard) {
		t.Errorf("defaults not applied: %+v", payload)
	}
	if payload.SourceFile != nil {
		t.Errorf("source file should be nil, got %v", *payload.SourceFile)
	}
}

func TestExtractFailures(t *testing.T) {
	tests := []struct {
		name string
		raw  string
	}{
		{name: "prose only", raw: "I could not come up with a question today."},
		{name: "empty", raw: ""},
		{name: "missing explanation", raw: `{"question":"Q?","options":{"1":"A","2":"B","3":"C","4":"D"},"answer":"1"}`},
		{name: "missing options in fence", raw: "```json\n{\"question\":\"Q?\",\"answer\":\"1\",\"explanation\":\"E\"}\n```"},
		{name: "options not a mapping", raw: `{"question":"Q?","options":["A","B","C","D"],"answer":"1","explanation":"E"}`},
		{name: "broken json", raw: `{"question": "Q?", "options": {`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			payload, err := Extract(tt.raw, models.CategoryCodebase, models.DifficultyMedium)
			if !errors.Is(err, ErrExtraction) {
				t.Errorf("error = %v, want ErrExtraction", err)
			}
			if payload != nil {
				t.Errorf("expected nil payload, got %+v", payload)
			}
		})
	}
}

func TestExtractStrategies(t *testing.T) {
	tests := []struct {
		name     string
		find     func(string) (string, bool)
		text     string
		expected string
		ok       bool
	}{
		{name: "tagged fence", find: taggedFence, text: "a ```json {\"x\":1} ``` b", expected: `{"x":1}`, ok: true},
		{name: "tagged fence unterminated", find: taggedFence, text: "```json {\"x\":1}", ok: false},
		{name: "any fence skips tag line", find: anyFence, text: "```ts\n{\"x\":1}\n```", expected: `{"x":1}`, ok: true},
		{name: "any fence no tag", find: anyFence, text: "```\n{\"x\":1}\n```", expected: `{"x":1}`, ok: true},
		{name: "brace span", find: braceSpan, text: "x {\"a\":{\"b\":1}} y", expected: `{"a":{"b":1}}`, ok: true},
		{name: "brace span reversed", find: braceSpan, text: "} {", ok: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := tt.find(tt.text)
			if ok != tt.ok || got != tt.expected {
				t.Errorf("got (%q, %v), want (%q, %v)", got, ok, tt.expected, tt.ok)
			}
		})
	}
}

func TestUnwrapEnvelope(t *testing.T) {
	tests := []struct {
		name     string
		raw      string
		expected string
	}{
		{name: "not json", raw: "hello", expected: "hello"},
		{name: "object without result", raw: `{"a":1}`, expected: `{"a":1}`},
		{name: "string result", raw: `{"result":"inner text"}`, expected: "inner text"},
		{name: "object result", raw: `{"result":{"a":1}}`, expected: `{"a":1}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := unwrapEnvelope(tt.raw); got != tt.expected {
				t.Errorf("unwrapEnvelope() = %q, want %q", got, tt.expected)
			}
		})
	}
}

func TestValidatePayload(t *testing.T) {
	valid := func() *models.GeneratedQuiz {
		return &models.GeneratedQuiz{
			Question:    "Q?",
			Options:     map[string]string{"1": "A", "2": "B", "3": "C", "4": "D"},
			Answer:      "3",
			Explanation: "E",
		}
	}

	tests := []struct {
		name    string
		mutate  func(p *models.GeneratedQuiz)
		wantErr bool
	}{
		{name: "valid", mutate: func(p *models.GeneratedQuiz) {}},
		{name: "answer not an option key", mutate: func(p *models.GeneratedQuiz) { p.Answer = "5" }, wantErr: true},
		{name: "answer is option text", mutate: func(p *models.GeneratedQuiz) { p.Answer = "C" }, wantErr: true},
		{name: "three options", mutate: func(p *models.GeneratedQuiz) { delete(p.Options, "4") }, wantErr: true},
		{name: "wrong option key", mutate: func(p *models.GeneratedQuiz) { delete(p.Options, "4"); p.Options["a"] = "D" }, wantErr: true},
		{name: "empty option text", mutate: func(p *models.GeneratedQuiz) { p.Options["2"] = "" }, wantErr: true},
		{name: "blank question", mutate: func(p *models.GeneratedQuiz) { p.Question = "   " }, wantErr: true},
		{name: "empty explanation", mutate: func(p *models.GeneratedQuiz) { p.Explanation = "" }, wantErr: true},
		{name: "answer with whitespace", mutate: func(p *models.GeneratedQuiz) { p.Answer = " 3 " }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := valid()
			tt.mutate(p)
			err := ValidatePayload(p)
			if tt.wantErr {
				if !errors.Is(err, ErrInvalidPayload) {
					t.Errorf("error = %v, want ErrInvalidPayload", err)
				}
				return
			}
			if err != nil {
				t.Errorf("unexpected error: %v", err)
			}
		})
	}
}

func TestToQuizFallbacks(t *testing.T) {
	source := " src/App.vue "
	payload := &models.GeneratedQuiz{
		Type:        "architecture",
		Difficulty:  "legendary",
		Question:    "Q?",
		Options:     map[string]string{"1": "A", "2": "B", "3": "C", "4": "D"},
		Answer:      "4",
		Explanation: "E",
		SourceFile:  &source,
	}

	quiz := toQuiz(payload, models.CategoryCodebase, models.DifficultyHard)
	if quiz.Category != models.CategoryCodebase || quiz.Difficulty != models.DifficultyHard {
		t.Errorf("fallbacks not applied: %s/%s", quiz.Category, quiz.Difficulty)
	}
	if quiz.SourceFile == nil || *quiz.SourceFile != "src/App.vue" {
		t.Errorf("source file = %v", quiz.SourceFile)
	}
	if !strings.EqualFold(quiz.AnswerText(), "D") {
		t.Errorf("answer text = %s", quiz.AnswerText())
	}
}
