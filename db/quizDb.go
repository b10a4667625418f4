package db

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jinbekim/quizquiz/models"
)

type QuizRepository interface {
	CreateQuiz(ctx context.Context, quiz *models.Quiz) error
	GetQuizByID(ctx context.Context, id int) (*models.Quiz, error)
	GetRecentQuestions(ctx context.Context, limit int) ([]string, error)
}

type PostgresQuizRepository struct {
	db *sql.DB
}

func NewPostgresQuizRepository(db *sql.DB) *PostgresQuizRepository {
	return &PostgresQuizRepository{db: db}
}

func (r *PostgresQuizRepository) CreateQuiz(ctx context.Context, quiz *models.Quiz) error {
	optionsJSON, err := json.Marshal(quiz.Options)
	if err != nil {
		return fmt.Errorf("failed to marshal options: %w", err)
	}

	query := `
		INSERT INTO quizzes (type, difficulty, question, options, answer, explanation, source_file)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id, created_at`

	row := r.db.QueryRowContext(ctx, query,
		string(quiz.Category), string(quiz.Difficulty), quiz.Question, optionsJSON,
		quiz.Answer, quiz.Explanation, quiz.SourceFile)

	if err := row.Scan(&quiz.ID, &quiz.CreatedAt); err != nil {
		return fmt.Errorf("failed to create quiz: %w", err)
	}

	return nil
}

func (r *PostgresQuizRepository) GetQuizByID(ctx context.Context, id int) (*models.Quiz, error) {
	query := `
		SELECT id, type, difficulty, question, options, answer, explanation, source_file, created_at
		FROM quizzes
		WHERE id = $1`

	quiz, err := scanQuiz(r.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("quiz with id %d: %w", id, ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get quiz: %w", err)
	}

	return quiz, nil
}

func (r *PostgresQuizRepository) GetRecentQuestions(ctx context.Context, limit int) ([]string, error) {
	query := `SELECT question FROM quizzes ORDER BY created_at DESC LIMIT $1`

	rows, err := r.db.QueryContext(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query recent questions: %w", err)
	}
	defer rows.Close()

	questions := make([]string, 0, limit)
	for rows.Next() {
		var question string
		if err := rows.Scan(&question); err != nil {
			return nil, fmt.Errorf("failed to scan question: %w", err)
		}
		questions = append(questions, question)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating over questions: %w", err)
	}

	return questions, nil
}

func scanQuiz(row rowScanner) (*models.Quiz, error) {
	quiz := &models.Quiz{}
	var category, difficulty string
	var optionsJSON []byte
	var sourceFile sql.NullString

	err := row.Scan(&quiz.ID, &category, &difficulty, &quiz.Question, &optionsJSON,
		&quiz.Answer, &quiz.Explanation, &sourceFile, &quiz.CreatedAt)
	if err != nil {
		return nil, err
	}

	if quiz.Category, err = models.ParseCategory(category); err != nil {
		return nil, fmt.Errorf("quiz %d: %w", quiz.ID, err)
	}
	// Difficulty is kept as stored; Points() already falls back for unknown values.
	quiz.Difficulty = models.Difficulty(difficulty)

	if err := json.Unmarshal(optionsJSON, &quiz.Options); err != nil {
		return nil, fmt.Errorf("failed to unmarshal options: %w", err)
	}
	if sourceFile.Valid {
		quiz.SourceFile = &sourceFile.String
	}

	return quiz, nil
}
