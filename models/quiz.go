package models

import (
	"fmt"
	"strings"
	"time"
)

type Category string

const (
	CategoryCodebase     Category = "codebase"
	CategoryRecentChange Category = "recent_change"
	CategoryLibrary      Category = "library"
	CategoryCodeReview   Category = "code_review"
	CategoryGitHistory   Category = "git_history"
	CategoryBestPractice Category = "best_practice"
)

var Categories = []Category{
	CategoryCodebase,
	CategoryRecentChange,
	CategoryLibrary,
	CategoryCodeReview,
	CategoryGitHistory,
	CategoryBestPractice,
}

// GeneratableCategories are the categories with a generation strategy.
var GeneratableCategories = []Category{
	CategoryCodebase,
	CategoryLibrary,
	CategoryRecentChange,
}

// ParseCategory accepts the persisted form as well as dashed or upper-case
// spellings ("recent-change", "Library").
func ParseCategory(s string) (Category, error) {
	normalized := strings.ReplaceAll(strings.ToLower(strings.TrimSpace(s)), "-", "_")
	for _, c := range Categories {
		if string(c) == normalized {
			return c, nil
		}
	}
	return "", fmt.Errorf("unknown quiz category %q", s)
}

func (c Category) Generatable() bool {
	for _, g := range GeneratableCategories {
		if g == c {
			return true
		}
	}
	return false
}

type Difficulty string

const (
	DifficultyEasy   Difficulty = "easy"
	DifficultyMedium Difficulty = "medium"
	DifficultyHard   Difficulty = "hard"
)

var Difficulties = []Difficulty{DifficultyEasy, DifficultyMedium, DifficultyHard}

func ParseDifficulty(s string) (Difficulty, error) {
	normalized := strings.ToLower(strings.TrimSpace(s))
	for _, d := range Difficulties {
		if string(d) == normalized {
			return d, nil
		}
	}
	return "", fmt.Errorf("unknown quiz difficulty %q", s)
}

// Points is the score awarded for a correct answer. Unknown difficulties
// are worth the same as easy ones.
func (d Difficulty) Points() int {
	switch d {
	case DifficultyMedium:
		return 20
	case DifficultyHard:
		return 30
	default:
		return 10
	}
}

func (d Difficulty) Stars() string {
	switch d {
	case DifficultyEasy:
		return "⭐"
	case DifficultyHard:
		return "⭐⭐⭐"
	default:
		return "⭐⭐"
	}
}

// OptionKeys are the only valid option keys, in display order.
var OptionKeys = []string{"1", "2", "3", "4"}

type Options map[string]string

// Keys returns the option keys present, in display order.
func (o Options) Keys() []string {
	keys := make([]string, 0, len(o))
	for _, k := range OptionKeys {
		if _, ok := o[k]; ok {
			keys = append(keys, k)
		}
	}
	return keys
}

func IsOptionKey(key string) bool {
	for _, k := range OptionKeys {
		if k == key {
			return true
		}
	}
	return false
}

type Quiz struct {
	ID          int        `json:"id" db:"id"`
	Category    Category   `json:"type" db:"type"`
	Difficulty  Difficulty `json:"difficulty" db:"difficulty"`
	Question    string     `json:"question" db:"question"`
	Options     Options    `json:"options" db:"options"`
	Answer      string     `json:"answer" db:"answer"`
	Explanation string     `json:"explanation" db:"explanation"`
	SourceFile  *string    `json:"source_file" db:"source_file"`
	CreatedAt   time.Time  `json:"created_at" db:"created_at"`
}

func (q *Quiz) Points() int {
	return q.Difficulty.Points()
}

func (q *Quiz) AnswerText() string {
	return q.Options[q.Answer]
}

func (q *Quiz) IsCorrect(answer string) bool {
	return answer == q.Answer
}
