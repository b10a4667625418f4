package generator

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log"
	"os/exec"
	"strings"
)

// ClaudeCLI runs the claude command line tool in print mode.
type ClaudeCLI struct {
	path string
}

func NewClaudeCLI(path string) *ClaudeCLI {
	if path == "" {
		path = "claude"
	}
	return &ClaudeCLI{path: path}
}

func (c *ClaudeCLI) Generate(ctx context.Context, prompt string) (string, error) {
	cmd := exec.CommandContext(ctx, c.path, "-p", prompt, "--output-format", "json")
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	log.Printf("[INFO] Running claude CLI: path=%s, prompt_chars=%d", c.path, len(prompt))
	err := cmd.Run()
	if err == nil {
		return strings.TrimSpace(stdout.String()), nil
	}

	if errors.Is(err, exec.ErrNotFound) || errors.Is(err, fs.ErrNotExist) {
		log.Printf("[ERROR] claude CLI not found: path=%s", c.path)
		return "", fmt.Errorf("%s: %w", c.path, ErrGeneratorNotFound)
	}
	if errors.Is(ctx.Err(), context.DeadlineExceeded) {
		log.Printf("[ERROR] claude CLI timed out")
		return "", ErrGeneratorTimeout
	}
	if ctx.Err() != nil {
		return "", fmt.Errorf("claude CLI interrupted: %w", ctx.Err())
	}

	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		log.Printf("[ERROR] claude CLI failed: returncode=%d, stderr=%q", exitErr.ExitCode(), strings.TrimSpace(stderr.String()))
		return "", fmt.Errorf("claude CLI exited with code %d", exitErr.ExitCode())
	}
	return "", fmt.Errorf("failed to run claude CLI: %w", err)
}
