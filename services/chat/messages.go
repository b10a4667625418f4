package chat

import (
	"fmt"
	"strings"

	"github.com/jinbekim/quizquiz/models"
)

const divider = "━━━━━━━━━━━━━━━━━━━━━━━━━"

// AnswerEmojis are the reactions seeded under every quiz post, in option
// order.
var AnswerEmojis = []string{"one", "two", "three", "four"}

var emojiAnswers = map[string]string{
	"one":   "1",
	"two":   "2",
	"three": "3",
	"four":  "4",
	"1️⃣":    "1",
	"2️⃣":    "2",
	"3️⃣":    "3",
	"4️⃣":    "4",
}

var answerEmoji = map[string]string{"1": "1️⃣", "2": "2️⃣", "3": "3️⃣", "4": "4️⃣"}

var medals = []string{"🥇", "🥈", "🥉", "4️⃣", "5️⃣"}

// AnswerForEmoji maps a reaction name to an option key.
func AnswerForEmoji(emojiName string) (string, bool) {
	answer, ok := emojiAnswers[emojiName]
	return answer, ok
}

func FormatQuiz(session *models.QuizSession, quiz *models.Quiz) string {
	var b strings.Builder
	b.WriteString(fmt.Sprintf("📚 **Daily Quiz #%d** | Difficulty: %s (%s)\n", session.ID, quiz.Difficulty.Stars(), quiz.Difficulty))
	b.WriteString(divider + "\n\n")
	b.WriteString(fmt.Sprintf("❓ %s\n\n", quiz.Question))
	for _, key := range models.OptionKeys {
		b.WriteString(fmt.Sprintf("%s %s\n", answerEmoji[key], quiz.Options[key]))
	}
	b.WriteString("\n⏰ Answer with a reaction before the results are posted! (1️⃣ 2️⃣ 3️⃣ 4️⃣)\n")
	b.WriteString(divider)
	return b.String()
}

// FormatResults renders the answer post. names maps user ids to display
// names; unknown ids are shown as-is.
func FormatResults(result *models.GradeResult, names map[string]string) string {
	quiz := result.Quiz

	winners := make([]string, 0, len(result.CorrectUserIDs))
	for _, id := range result.CorrectUserIDs {
		name := names[id]
		if name == "" {
			name = id
		}
		winners = append(winners, fmt.Sprintf("@%s (%d pts)", name, quiz.Points()))
	}
	winnersText := "none"
	if len(winners) > 0 {
		winnersText = strings.Join(winners, ", ")
	}

	var b strings.Builder
	b.WriteString(fmt.Sprintf("✅ **Daily Quiz #%d results!**\n", result.Session.ID))
	b.WriteString(divider + "\n\n")
	b.WriteString(fmt.Sprintf("Answer: %s %s\n\n", answerEmoji[quiz.Answer], quiz.AnswerText()))
	b.WriteString(fmt.Sprintf("📖 **Explanation:**\n%s\n", quiz.Explanation))
	if quiz.SourceFile != nil {
		b.WriteString(fmt.Sprintf("📁 See: `%s`\n", *quiz.SourceFile))
	}
	b.WriteString(fmt.Sprintf("\n🏆 **Correct:** %s\n", winnersText))
	b.WriteString(fmt.Sprintf("📊 **Accuracy:** %.0f%% (%d/%d)\n", result.Accuracy, len(result.CorrectUserIDs), len(result.Responses)))
	b.WriteString(divider)
	return b.String()
}

func FormatLeaderboard(users []*models.User) string {
	var b strings.Builder
	b.WriteString("🏆 **Leaderboard**\n")
	b.WriteString(divider + "\n\n")
	for i, u := range users {
		medal := fmt.Sprintf("%d.", i+1)
		if i < len(medals) {
			medal = medals[i]
		}
		b.WriteString(fmt.Sprintf("%s @%s - %d pts (🔥 %d)\n", medal, u.DisplayName(), u.TotalPoints, u.CurrentStreak))
	}
	b.WriteString("\n" + divider)
	return b.String()
}
