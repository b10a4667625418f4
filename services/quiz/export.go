package quiz

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/jinbekim/quizquiz/models"
)

const exportTimeLayout = "20060102_150405"

// exportQuiz writes quiz_<id>_<timestamp>.json into the export directory.
func (s *Service) exportQuiz(quiz *models.Quiz) (string, error) {
	if s.exportDir == "" {
		return "", fmt.Errorf("export directory not configured")
	}
	if err := os.MkdirAll(s.exportDir, 0755); err != nil {
		return "", fmt.Errorf("failed to create export directory: %w", err)
	}

	data, err := json.MarshalIndent(quiz, "", "  ")
	if err != nil {
		return "", fmt.Errorf("failed to marshal quiz: %w", err)
	}

	name := fmt.Sprintf("quiz_%d_%s.json", quiz.ID, s.now().Format(exportTimeLayout))
	path := filepath.Join(s.exportDir, name)
	if err := os.WriteFile(path, data, 0644); err != nil {
		return "", fmt.Errorf("failed to write %s: %w", path, err)
	}

	return path, nil
}
