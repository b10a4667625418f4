package quiz

import (
	"context"
	"fmt"
	"log"

	"github.com/jinbekim/quizquiz/models"

	"github.com/samber/lo"
)

// GenerateQuiz runs the full pipeline for one quiz. An empty category
// picks one of the generatable categories. Every failure is logged and
// returned wrapped in ErrGenerationFailed; nothing is persisted on failure.
func (s *Service) GenerateQuiz(ctx context.Context, category models.Category, difficulty models.Difficulty) (*models.Quiz, error) {
	if category == "" {
		category = lo.Sample(models.GeneratableCategories)
	}
	if difficulty == "" {
		difficulty = models.DifficultyMedium
	}
	log.Printf("[INFO] Generating quiz: type=%s, difficulty=%s", category, difficulty)

	if !category.Generatable() {
		log.Printf("[WARN] Unsupported quiz type: type=%s", category)
		return nil, fmt.Errorf("%w: %w: %s", ErrGenerationFailed, ErrUnsupportedCategory, category)
	}

	quiz, err := s.generate(ctx, category, difficulty)
	if err != nil {
		log.Printf("[ERROR] Failed to generate %s quiz: %v", category, err)
		return nil, fmt.Errorf("%w: %w", ErrGenerationFailed, err)
	}

	log.Printf("[INFO] Quiz generated: id=%d, type=%s, difficulty=%s", quiz.ID, quiz.Category, quiz.Difficulty)
	return quiz, nil
}

func (s *Service) generate(ctx context.Context, category models.Category, difficulty models.Difficulty) (*models.Quiz, error) {
	if err := s.facts.Refresh(ctx); err != nil {
		log.Printf("[WARN] Failed to refresh repository, using local state: %v", err)
	}

	recent, err := s.quizzes.GetRecentQuestions(ctx, recentQuestionsMax)
	if err != nil {
		log.Printf("[WARN] Failed to load recent questions: %v", err)
		recent = nil
	}

	codeContext, err := s.buildContext(ctx, category, recent)
	if err != nil {
		return nil, err
	}
	prompt := renderPrompt(codeContext, category, difficulty)

	genCtx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()
	raw, err := s.generator.Generate(genCtx, prompt)
	if err != nil {
		return nil, fmt.Errorf("generator failed: %w", err)
	}

	payload, err := Extract(raw, category, difficulty)
	if err != nil {
		return nil, err
	}
	if err := ValidatePayload(payload); err != nil {
		return nil, err
	}

	quiz := toQuiz(payload, category, difficulty)
	if similar, ok := findSimilarQuestion(quiz.Question, recent); ok {
		log.Printf("[WARN] Generated question is close to a recent one: previous=%q", preview(similar, 120))
	}

	if err := s.quizzes.CreateQuiz(ctx, quiz); err != nil {
		return nil, err
	}

	if path, err := s.exportQuiz(quiz); err != nil {
		log.Printf("[WARN] Failed to export quiz: id=%d, error=%v", quiz.ID, err)
	} else {
		log.Printf("[INFO] Quiz exported to file: path=%s", path)
	}

	return quiz, nil
}
