package quiz

import (
	"errors"
	"fmt"
	"log"
	"strings"

	"github.com/jinbekim/quizquiz/models"

	"github.com/go-playground/validator/v10"
)

var ErrInvalidPayload = errors.New("invalid quiz payload")

var validate = validator.New()

// ValidatePayload enforces four options keyed "1".."4" with non-empty
// text, an answer among them, and a non-empty question and explanation.
func ValidatePayload(payload *models.GeneratedQuiz) error {
	payload.Question = strings.TrimSpace(payload.Question)
	payload.Explanation = strings.TrimSpace(payload.Explanation)
	payload.Answer = strings.TrimSpace(payload.Answer)

	if err := validate.Struct(payload); err != nil {
		var validationErrors validator.ValidationErrors
		if errors.As(err, &validationErrors) {
			fields := make([]string, 0, len(validationErrors))
			for _, fe := range validationErrors {
				fields = append(fields, fmt.Sprintf("%s(%s)", fe.Namespace(), fe.Tag()))
			}
			return fmt.Errorf("%w: %s", ErrInvalidPayload, strings.Join(fields, ", "))
		}
		return fmt.Errorf("%w: %v", ErrInvalidPayload, err)
	}
	return nil
}

// toQuiz builds the quiz record. Unknown type or difficulty values fall
// back to what was requested.
func toQuiz(payload *models.GeneratedQuiz, category models.Category, difficulty models.Difficulty) *models.Quiz {
	quiz := &models.Quiz{
		Category:    category,
		Difficulty:  difficulty,
		Question:    payload.Question,
		Options:     models.Options(payload.Options),
		Answer:      payload.Answer,
		Explanation: payload.Explanation,
	}

	if c, err := models.ParseCategory(payload.Type); err == nil {
		quiz.Category = c
	} else {
		log.Printf("[WARN] Generator returned unknown quiz type, using requested: type=%q, requested=%s", payload.Type, category)
	}
	if d, err := models.ParseDifficulty(payload.Difficulty); err == nil {
		quiz.Difficulty = d
	} else {
		log.Printf("[WARN] Generator returned unknown difficulty, using requested: difficulty=%q, requested=%s", payload.Difficulty, difficulty)
	}

	if payload.SourceFile != nil && strings.TrimSpace(*payload.SourceFile) != "" {
		sourceFile := strings.TrimSpace(*payload.SourceFile)
		quiz.SourceFile = &sourceFile
	}

	return quiz
}
