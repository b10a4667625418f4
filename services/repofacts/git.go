package repofacts

import (
	"bytes"
	"context"
	"fmt"
	"log"
	"os/exec"
	"strconv"
	"strings"
	"time"

	"github.com/jinbekim/quizquiz/models"
)

const (
	pullTimeout = 60 * time.Second
	gitTimeout  = 30 * time.Second
	diffTimeout = 60 * time.Second
)

// Refresh pulls the latest changes from the remote.
func (a *Analyzer) Refresh(ctx context.Context) error {
	out, err := a.git(ctx, pullTimeout, "pull")
	if err != nil {
		return err
	}
	log.Printf("[INFO] git pull succeeded: output=%q", strings.TrimSpace(out))
	return nil
}

func (a *Analyzer) RecentCommits(ctx context.Context, n int) ([]models.Commit, error) {
	out, err := a.git(ctx, gitTimeout, "log", "-"+strconv.Itoa(n), "--format=%H|%s|%an|%ad", "--date=short")
	if err != nil {
		return nil, err
	}
	return parseCommitLog(out), nil
}

func (a *Analyzer) CommitFiles(ctx context.Context, sha string) ([]string, error) {
	out, err := a.git(ctx, gitTimeout, "show", "--name-only", "--format=", sha)
	if err != nil {
		return nil, err
	}
	return nonEmptyLines(out), nil
}

// CommitDiff returns the full patch of a commit.
func (a *Analyzer) CommitDiff(ctx context.Context, sha string) (string, error) {
	out, err := a.git(ctx, diffTimeout, "show", "--format=", "--patch", sha)
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(out), nil
}

func (a *Analyzer) git(ctx context.Context, timeout time.Duration, args ...string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	cmd := exec.CommandContext(ctx, a.gitPath, args...)
	cmd.Dir = a.path
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		if ctx.Err() != nil {
			return "", fmt.Errorf("git %s timed out after %s: %w", args[0], timeout, ctx.Err())
		}
		return "", fmt.Errorf("git %s failed: %w: %s", args[0], err, strings.TrimSpace(stderr.String()))
	}

	return stdout.String(), nil
}

// parseCommitLog parses "sha|subject|author|date" lines. Subjects may
// contain '|', so the date is taken from the last field.
func parseCommitLog(out string) []models.Commit {
	commits := make([]models.Commit, 0)
	for _, line := range nonEmptyLines(out) {
		first := strings.Index(line, "|")
		last := strings.LastIndex(line, "|")
		if first < 0 || first == last {
			continue
		}
		middle := line[first+1 : last]
		secondLast := strings.LastIndex(middle, "|")
		if secondLast < 0 {
			continue
		}
		commits = append(commits, models.Commit{
			SHA:     line[:first],
			Message: middle[:secondLast],
			Author:  middle[secondLast+1:],
			Date:    line[last+1:],
		})
	}
	return commits
}

func nonEmptyLines(s string) []string {
	lines := make([]string, 0)
	for _, line := range strings.Split(strings.TrimSpace(s), "\n") {
		if line = strings.TrimSpace(line); line != "" {
			lines = append(lines, line)
		}
	}
	return lines
}
