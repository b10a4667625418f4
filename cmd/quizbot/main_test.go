package main

import (
	"errors"
	"flag"
	"testing"

	"github.com/jinbekim/quizquiz/models"
)

func TestParseQuizFlags(t *testing.T) {
	tests := []struct {
		name           string
		category       string
		difficulty     string
		wantCategory   models.Category
		wantDifficulty models.Difficulty
		wantErr        bool
	}{
		{name: "defaults"},
		{name: "dashed category", category: "recent-change", difficulty: "HARD", wantCategory: models.CategoryRecentChange, wantDifficulty: models.DifficultyHard},
		{name: "unknown category", category: "trivia", wantErr: true},
		{name: "unknown difficulty", difficulty: "insane", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			category, difficulty, err := parseQuizFlags(tt.category, tt.difficulty)
			if (err != nil) != tt.wantErr {
				t.Fatalf("parseQuizFlags() error = %v, wantErr %v", err, tt.wantErr)
			}
			if category != tt.wantCategory || difficulty != tt.wantDifficulty {
				t.Errorf("parseQuizFlags() = (%q, %q), want (%q, %q)", category, difficulty, tt.wantCategory, tt.wantDifficulty)
			}
		})
	}
}

func TestParseCommandFlags(t *testing.T) {
	tests := []struct {
		name    string
		command string
		args    []string
		want    commandOptions
		wantErr bool
	}{
		{name: "generate with count", command: "generate", args: []string{"-n", "3", "--type", "library"}, want: commandOptions{category: models.CategoryLibrary, count: 3}},
		{name: "quiz with difficulty", command: "quiz", args: []string{"--difficulty", "easy"}, want: commandOptions{difficulty: models.DifficultyEasy, count: 1}},
		{name: "serve without flags", command: "serve", want: commandOptions{count: 1}},
		{name: "quiz rejects count", command: "quiz", args: []string{"-n", "2"}, wantErr: true},
		{name: "serve rejects count", command: "serve", args: []string{"-n", "2"}, wantErr: true},
		{name: "grade rejects type", command: "grade", args: []string{"--type", "codebase"}, wantErr: true},
		{name: "leaderboard rejects limit", command: "leaderboard", args: []string{"-limit", "5"}, wantErr: true},
		{name: "init rejects flags", command: "init", args: []string{"--difficulty", "hard"}, wantErr: true},
		{name: "positional argument", command: "grade", args: []string{"now"}, wantErr: true},
		{name: "bad category", command: "generate", args: []string{"--type", "trivia"}, wantErr: true},
		{name: "unknown command", command: "publish", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := parseCommandFlags(tt.command, tt.args)
			if (err != nil) != tt.wantErr {
				t.Fatalf("parseCommandFlags() error = %v, wantErr %v", err, tt.wantErr)
			}
			if tt.wantErr {
				return
			}
			if *got != tt.want {
				t.Errorf("parseCommandFlags() = %+v, want %+v", *got, tt.want)
			}
		})
	}
}

func TestParseCommandFlagsHelp(t *testing.T) {
	if _, err := parseCommandFlags("serve", []string{"-h"}); !errors.Is(err, flag.ErrHelp) {
		t.Errorf("error = %v, want flag.ErrHelp", err)
	}
}
