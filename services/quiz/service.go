package quiz

import (
	"context"
	"errors"
	"time"

	"github.com/jinbekim/quizquiz/db"
	"github.com/jinbekim/quizquiz/models"
	"github.com/jinbekim/quizquiz/services/generator"
)

const (
	generateTimeout    = 180 * time.Second
	recentCommitCount  = 10
	recentQuestionsMax = 10
)

var (
	ErrGenerationFailed    = errors.New("quiz generation failed")
	ErrUnsupportedCategory = errors.New("unsupported quiz category")
)

// RepoFacts is the read side of the target repository.
type RepoFacts interface {
	Name() string
	Refresh(ctx context.Context) error
	DirectoryTree(maxDepth int) (string, error)
	SourceFiles(extensions []string, limit int) ([]string, error)
	ReadFile(rel string) (string, error)
	Manifest() (*models.Manifest, error)
	RecentCommits(ctx context.Context, n int) ([]models.Commit, error)
	CommitFiles(ctx context.Context, sha string) ([]string, error)
	CommitDiff(ctx context.Context, sha string) (string, error)
}

type Service struct {
	generator generator.Generator
	facts     RepoFacts
	quizzes   db.QuizRepository
	exportDir string
	timeout   time.Duration
	now       func() time.Time
}

func NewService(gen generator.Generator, facts RepoFacts, quizzes db.QuizRepository, exportDir string) *Service {
	return &Service{
		generator: gen,
		facts:     facts,
		quizzes:   quizzes,
		exportDir: exportDir,
		timeout:   generateTimeout,
		now:       time.Now,
	}
}
