package quiz

import (
	"fmt"
	"strings"

	"github.com/jinbekim/quizquiz/models"
)

func renderPrompt(codeContext string, category models.Category, difficulty models.Difficulty) string {
	var prompt strings.Builder
	prompt.WriteString("You are a quiz generator for a development team. Create a quiz question from the code context below.\n\n")
	prompt.WriteString("Context:\n")
	prompt.WriteString(codeContext)
	prompt.WriteString("\n\n")
	prompt.WriteString(fmt.Sprintf("Quiz type: %s\n", category))
	prompt.WriteString(fmt.Sprintf("Difficulty: %s\n\n", difficulty))
	prompt.WriteString("Requirements:\n")
	prompt.WriteString("1. Exactly one multiple-choice question with 4 options\n")
	prompt.WriteString("2. Test knowledge that is useful in day-to-day work on this project\n")
	prompt.WriteString("3. Include a clear explanation of the correct answer\n\n")
	prompt.WriteString("IMPORTANT: Respond with JSON only, in exactly this format, with no other text.\n\n")
	prompt.WriteString(fmt.Sprintf(
		`{"type":"%s","difficulty":"%s","question":"question text","options":{"1":"option 1","2":"option 2","3":"option 3","4":"option 4"},"answer":"correct option number","explanation":"explanation","source_file":"related file path"}`,
		category, difficulty))
	return prompt.String()
}
