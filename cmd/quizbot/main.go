package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/jinbekim/quizquiz/config"
	"github.com/jinbekim/quizquiz/db"
	"github.com/jinbekim/quizquiz/models"
	"github.com/jinbekim/quizquiz/services/chat"
)

const usage = `Usage: quizbot <command> [flags]

Commands:
  serve                                  run the HTTP server and the publish/grade schedule
  quiz [--type T] [--difficulty D]       start a quiz session now
  generate [--type T] [--difficulty D] [-n N]
                                         generate quizzes without starting sessions
  grade                                  grade every active session
  leaderboard                            post the leaderboard
  init                                   create the database schema
`

// commandOptions holds the flags a command accepted.
type commandOptions struct {
	category   models.Category
	difficulty models.Difficulty
	count      int
}

func main() {
	if len(os.Args) < 2 {
		fmt.Fprint(os.Stderr, usage)
		os.Exit(2)
	}

	cfg := config.Load()
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := run(ctx, cfg, os.Args[1], os.Args[2:])
	stop()
	if err != nil {
		log.Printf("[ERROR] %v", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg *config.Config, command string, args []string) error {
	if command == "help" || command == "-h" || command == "--help" {
		fmt.Print(usage)
		return nil
	}

	opts, err := parseCommandFlags(command, args)
	if err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return nil
		}
		fmt.Fprint(os.Stderr, usage)
		return err
	}

	if command == "init" {
		return runInit(ctx, cfg)
	}

	a, err := newApp(ctx, cfg)
	if err != nil {
		return err
	}
	defer a.Close()

	switch command {
	case "serve":
		return runServe(ctx, a)
	case "quiz":
		return runQuiz(ctx, a, opts.category, opts.difficulty)
	case "generate":
		return runGenerate(ctx, a, opts.category, opts.difficulty, opts.count)
	case "grade":
		summary, err := a.sessions.GradeAllActive(ctx)
		if err != nil {
			return err
		}
		fmt.Printf("graded=%d skipped=%d failed=%d\n", summary.Graded, summary.Skipped, summary.Failed)
		return nil
	default:
		message, err := a.leaderboard.Post(ctx, cfg.LeaderboardSize)
		if message != "" && a.chat == nil {
			fmt.Println(message)
		}
		return err
	}
}

// parseCommandFlags parses args with a flag set holding only the flags
// command documents. Unknown commands, undeclared flags and positional
// arguments are errors.
func parseCommandFlags(command string, args []string) (*commandOptions, error) {
	fs := flag.NewFlagSet(command, flag.ContinueOnError)
	var categoryFlag, difficultyFlag *string
	count := new(int)
	*count = 1

	switch command {
	case "quiz", "generate":
		categoryFlag = fs.String("type", "", "quiz category (codebase, library, recent-change); random when empty")
		difficultyFlag = fs.String("difficulty", "", "easy, medium or hard; medium when empty")
		if command == "generate" {
			count = fs.Int("n", 1, "number of quizzes to generate")
		}
	case "serve", "grade", "leaderboard", "init":
	default:
		return nil, fmt.Errorf("unknown command %q", command)
	}

	if err := fs.Parse(args); err != nil {
		return nil, err
	}
	if fs.NArg() > 0 {
		return nil, fmt.Errorf("%s: unexpected arguments %v", command, fs.Args())
	}

	opts := &commandOptions{count: *count}
	if categoryFlag != nil {
		category, difficulty, err := parseQuizFlags(*categoryFlag, *difficultyFlag)
		if err != nil {
			return nil, err
		}
		opts.category, opts.difficulty = category, difficulty
	}
	return opts, nil
}

func parseQuizFlags(categoryFlag, difficultyFlag string) (models.Category, models.Difficulty, error) {
	var category models.Category
	var difficulty models.Difficulty
	if categoryFlag != "" {
		c, err := models.ParseCategory(categoryFlag)
		if err != nil {
			return "", "", err
		}
		category = c
	}
	if difficultyFlag != "" {
		d, err := models.ParseDifficulty(difficultyFlag)
		if err != nil {
			return "", "", err
		}
		difficulty = d
	}
	return category, difficulty, nil
}

func runInit(ctx context.Context, cfg *config.Config) error {
	database, err := openDatabase(cfg)
	if err != nil {
		return err
	}
	defer database.Close()

	if err := db.InitSchema(ctx, database); err != nil {
		return err
	}
	log.Printf("[INFO] Database schema initialized")
	return nil
}

func runQuiz(ctx context.Context, a *app, category models.Category, difficulty models.Difficulty) error {
	s, q, err := a.sessions.Start(ctx, category, difficulty)
	if err != nil {
		return err
	}
	if a.chat == nil {
		fmt.Println(chat.FormatQuiz(s, q))
	}
	fmt.Printf("session=%d quiz=%d\n", s.ID, q.ID)
	return nil
}

func runGenerate(ctx context.Context, a *app, category models.Category, difficulty models.Difficulty, count int) error {
	if count < 1 {
		return errors.New("-n must be at least 1")
	}

	failures := 0
	for i := 0; i < count; i++ {
		q, err := a.quizzes.GenerateQuiz(ctx, category, difficulty)
		if err != nil {
			failures++
			log.Printf("[ERROR] Quiz %d/%d failed: %v", i+1, count, err)
			continue
		}
		out, err := json.MarshalIndent(q, "", "  ")
		if err != nil {
			return fmt.Errorf("failed to encode quiz: %w", err)
		}
		fmt.Println(string(out))
	}

	log.Printf("[INFO] Generated quizzes: ok=%d, failed=%d", count-failures, failures)
	if failures == count {
		return fmt.Errorf("all %d generation attempts failed", count)
	}
	return nil
}
