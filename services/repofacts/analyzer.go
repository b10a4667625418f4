package repofacts

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"log"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/jinbekim/quizquiz/models"

	"github.com/samber/lo"
)

const (
	maxTreeLines    = 50
	maxTreeFiles    = 5
	maxExcerptBytes = 50000
)

var (
	// SourceExtensions are the file types sampled for codebase quizzes.
	SourceExtensions = []string{".ts", ".tsx", ".vue", ".js", ".jsx"}

	excludedDirs = []string{"node_modules", ".git", "dist", "build", ".storybook", "coverage", "__pycache__"}

	ErrBinaryFile = errors.New("file is binary or too large")
)

// Analyzer reads facts from a local clone of the target repository.
type Analyzer struct {
	path    string
	name    string
	gitPath string
}

func NewAnalyzer(path, name string) *Analyzer {
	if abs, err := filepath.Abs(path); err == nil {
		path = abs
	}
	return &Analyzer{path: path, name: name, gitPath: "git"}
}

func (a *Analyzer) Name() string {
	return a.name
}

func (a *Analyzer) Path() string {
	return a.path
}

// DirectoryTree renders the directory layout up to maxDepth levels below
// the root. Only directories are listed; the output is capped at 50 lines.
func (a *Analyzer) DirectoryTree(maxDepth int) (string, error) {
	if _, err := os.Stat(a.path); err != nil {
		return "", fmt.Errorf("failed to stat repository: %w", err)
	}

	lines := make([]string, 0, maxTreeLines)
	a.walkTree(a.path, "", 0, maxDepth, &lines)

	if len(lines) > maxTreeLines {
		lines = lines[:maxTreeLines]
	}
	return strings.Join(lines, "\n"), nil
}

func (a *Analyzer) walkTree(dir, prefix string, depth, maxDepth int, lines *[]string) {
	if depth > maxDepth {
		return
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		log.Printf("[WARN] Failed to read directory: path=%s, error=%v", dir, err)
		return
	}

	dirs := lo.Filter(entries, func(e fs.DirEntry, _ int) bool {
		return e.IsDir() && !lo.Contains(excludedDirs, e.Name())
	})
	files := lo.Filter(entries, func(e fs.DirEntry, _ int) bool {
		return e.Type().IsRegular()
	})
	if len(files) > maxTreeFiles {
		files = files[:maxTreeFiles]
	}
	sort.Slice(dirs, func(i, j int) bool { return dirs[i].Name() < dirs[j].Name() })

	for i, d := range dirs {
		last := i == len(dirs)-1 && len(files) == 0
		connector, indent := "├── ", "│   "
		if last {
			connector, indent = "└── ", "    "
		}
		*lines = append(*lines, prefix+connector+d.Name()+"/")
		a.walkTree(filepath.Join(dir, d.Name()), prefix+indent, depth+1, maxDepth, lines)
	}
}

// SourceFiles returns repository-relative paths of files with one of the
// given extensions, in walk order, stopping at limit.
func (a *Analyzer) SourceFiles(extensions []string, limit int) ([]string, error) {
	files := make([]string, 0, limit)

	err := filepath.WalkDir(a.path, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			if path != a.path && lo.Contains(excludedDirs, d.Name()) {
				return filepath.SkipDir
			}
			return nil
		}
		if !lo.Contains(extensions, filepath.Ext(d.Name())) {
			return nil
		}

		rel, err := filepath.Rel(a.path, path)
		if err != nil {
			return err
		}
		files = append(files, filepath.ToSlash(rel))
		if len(files) >= limit {
			return filepath.SkipAll
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list source files: %w", err)
	}

	return files, nil
}

// Manifest reads package.json. It returns nil without error when the
// repository has no manifest.
func (a *Analyzer) Manifest() (*models.Manifest, error) {
	data, err := os.ReadFile(filepath.Join(a.path, "package.json"))
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read package.json: %w", err)
	}

	var manifest models.Manifest
	if err := json.Unmarshal(data, &manifest); err != nil {
		return nil, fmt.Errorf("failed to parse package.json: %w", err)
	}
	return &manifest, nil
}

// ReadFile returns the text of a repository file. Binary or oversized
// files are refused with ErrBinaryFile.
func (a *Analyzer) ReadFile(rel string) (string, error) {
	full := filepath.Join(a.path, filepath.FromSlash(rel))
	if !strings.HasPrefix(full, a.path+string(filepath.Separator)) {
		return "", fmt.Errorf("path escapes repository: %s", rel)
	}
	if isBinaryFile(full) {
		return "", fmt.Errorf("%s: %w", rel, ErrBinaryFile)
	}

	content, err := os.ReadFile(full)
	if err != nil {
		return "", fmt.Errorf("failed to read file %s: %w", rel, err)
	}
	if len(content) > maxExcerptBytes || isBinaryContent(content) {
		return "", fmt.Errorf("%s: %w", rel, ErrBinaryFile)
	}

	return string(content), nil
}

func isBinaryFile(path string) bool {
	binaryExts := []string{".exe", ".bin", ".so", ".dylib", ".dll", ".o", ".a", ".zip", ".tar", ".gz", ".pdf", ".jpg", ".png", ".gif", ".ico", ".woff", ".woff2", ".mp3", ".mp4"}
	return lo.Contains(binaryExts, strings.ToLower(filepath.Ext(path)))
}

// isBinaryContent reports whether more than 10% of the first KiB is
// control characters.
func isBinaryContent(content []byte) bool {
	checkSize := min(len(content), 1024)

	controlCount := 0
	for _, b := range content[:checkSize] {
		if b == 0 || (b < 32 && b != '\t' && b != '\n' && b != '\r') {
			controlCount++
		}
	}

	return controlCount > checkSize/10
}
