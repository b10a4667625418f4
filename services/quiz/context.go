package quiz

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sort"
	"strings"

	"github.com/jinbekim/quizquiz/models"
	"github.com/jinbekim/quizquiz/services/repofacts"

	"github.com/samber/lo"
)

const (
	treeDepth          = 3
	sourceFileLimit    = 20
	sampledFileCount   = 10
	scriptLimit        = 10
	changedFileLimit   = 10
	diffLineLimit      = 150
	excerptLineLimit   = 40
	differentAngleNote = "Ask about a new angle that differs from previously asked questions."
)

var (
	errNoManifest = errors.New("no package.json found")
	errNoCommits  = errors.New("no recent commits found")
)

// buildContext gathers repository facts for the category and renders the
// prompt context around one randomly chosen topic.
func (s *Service) buildContext(ctx context.Context, category models.Category, recent []string) (string, error) {
	topic, err := SelectTopic(category)
	if err != nil {
		return "", err
	}

	var body string
	switch category {
	case models.CategoryCodebase:
		body, err = s.codebaseContext(topic)
	case models.CategoryLibrary:
		body, err = s.libraryContext(topic)
	case models.CategoryRecentChange:
		body, err = s.recentChangeContext(ctx, topic)
	default:
		return "", fmt.Errorf("%w: %s", ErrUnsupportedCategory, category)
	}
	if err != nil {
		return "", err
	}

	return body + recentQuestionsSection(recent), nil
}

func (s *Service) codebaseContext(topic string) (string, error) {
	tree, err := s.facts.DirectoryTree(treeDepth)
	if err != nil {
		return "", fmt.Errorf("failed to read directory tree: %w", err)
	}
	files, err := s.facts.SourceFiles(repofacts.SourceExtensions, sourceFileLimit)
	if err != nil {
		return "", fmt.Errorf("failed to list source files: %w", err)
	}
	sampled := files
	if len(files) > sampledFileCount {
		sampled = lo.Samples(files, sampledFileCount)
	}
	log.Printf("[INFO] Codebase quiz focus: topic=%q, files=%d", topic, len(sampled))

	var b strings.Builder
	b.WriteString(fmt.Sprintf("Project: %s\n\n", s.facts.Name()))
	b.WriteString(fmt.Sprintf("[Quiz topic]\n%s\n\n", topic))
	b.WriteString(fmt.Sprintf("Directory structure:\n%s\n\n", tree))
	b.WriteString("Sample source files:\n")
	for _, f := range sampled {
		b.WriteString(fmt.Sprintf("- %s\n", f))
	}

	if len(sampled) > 0 {
		focus := lo.Sample(sampled)
		if content, err := s.facts.ReadFile(focus); err == nil {
			b.WriteString(fmt.Sprintf("\nExcerpt of %s:\n%s\n", focus, truncateLines(content, excerptLineLimit)))
		} else {
			log.Printf("[WARN] Skipping file excerpt: file=%s, error=%v", focus, err)
		}
	}

	manifest, err := s.facts.Manifest()
	if err != nil {
		log.Printf("[WARN] Failed to read manifest: %v", err)
	}
	if manifest != nil && len(manifest.Scripts) > 0 {
		scripts := lo.Keys(manifest.Scripts)
		sort.Strings(scripts)
		if len(scripts) > scriptLimit {
			scripts = scripts[:scriptLimit]
		}
		b.WriteString(fmt.Sprintf("\nnpm scripts: %s\n", strings.Join(scripts, ", ")))
	}

	b.WriteString("\n[Request]\n")
	b.WriteString(fmt.Sprintf("Create a quiz about %q in the project above.\n", topic))
	b.WriteString(differentAngleNote + "\n")
	return b.String(), nil
}

func (s *Service) libraryContext(topic string) (string, error) {
	manifest, err := s.facts.Manifest()
	if err != nil {
		return "", fmt.Errorf("failed to read manifest: %w", err)
	}
	if manifest == nil {
		return "", errNoManifest
	}

	lib := lo.Sample(availableLibraries(manifest))
	log.Printf("[INFO] Library quiz focus: library=%s, topic=%q", lib.Name, topic)

	name := manifest.Name
	if name == "" {
		name = "unknown"
	}

	var b strings.Builder
	b.WriteString(fmt.Sprintf("Project: %s\n\n", name))
	b.WriteString(fmt.Sprintf("[Library]\n%s - %s\n\n", lib.Name, lib.Description))
	b.WriteString(fmt.Sprintf("[Quiz topic]\n%s\n\n", topic))
	b.WriteString("[Request]\n")
	b.WriteString(fmt.Sprintf("Create a practical quiz about %q for the library above.\n", topic))
	b.WriteString(differentAngleNote + "\n")
	return b.String(), nil
}

func (s *Service) recentChangeContext(ctx context.Context, topic string) (string, error) {
	commits, err := s.facts.RecentCommits(ctx, recentCommitCount)
	if err != nil {
		return "", fmt.Errorf("failed to read recent commits: %w", err)
	}
	if len(commits) == 0 {
		return "", errNoCommits
	}

	commit := lo.Sample(commits)
	files, err := s.facts.CommitFiles(ctx, commit.SHA)
	if err != nil {
		log.Printf("[WARN] Failed to list commit files: commit=%s, error=%v", commit.ShortSHA(), err)
	}
	if len(files) > changedFileLimit {
		files = files[:changedFileLimit]
	}
	diff, err := s.facts.CommitDiff(ctx, commit.SHA)
	if err != nil {
		log.Printf("[WARN] Failed to read commit diff: commit=%s, error=%v", commit.ShortSHA(), err)
	}
	log.Printf("[INFO] Recent change quiz focus: topic=%q, commit=%s", topic, commit.ShortSHA())

	var b strings.Builder
	b.WriteString("Recent commit:\n\n")
	b.WriteString(fmt.Sprintf("Commit: %s\nAuthor: %s\nDate: %s\nMessage: %s\n\n",
		commit.ShortSHA(), commit.Author, commit.Date, commit.Message))
	b.WriteString("Changed files:\n")
	for _, f := range files {
		b.WriteString(fmt.Sprintf("- %s\n", f))
	}
	b.WriteString(fmt.Sprintf("\n[Diff]\n%s\n\n", truncateLines(diff, diffLineLimit)))
	b.WriteString(fmt.Sprintf("[Quiz topic]\n%s\n\n", topic))
	b.WriteString("[Request]\n")
	b.WriteString(fmt.Sprintf("Analyze the change above and create a quiz about %q.\n\n", topic))
	b.WriteString("Notes:\n")
	b.WriteString("- Avoid shallow questions such as \"which file was changed?\".\n")
	b.WriteString("- The question should require understanding the change itself.\n")
	b.WriteString("- Ask what the change means for the project's behavior, policy, or design.\n")
	b.WriteString("- REQUIRED: start the question text with the commit reference in this form:\n")
	b.WriteString(fmt.Sprintf("  \"Question about commit %s (%s). ...\"\n", commit.ShortSHA(), commit.Message))
	return b.String(), nil
}

func recentQuestionsSection(recent []string) string {
	if len(recent) == 0 {
		return ""
	}
	var b strings.Builder
	b.WriteString("\n[Previously asked questions]\n")
	for _, q := range recent {
		b.WriteString(fmt.Sprintf("- %s\n", preview(strings.ReplaceAll(q, "\n", " "), 200)))
	}
	return b.String()
}

// truncateLines keeps the first limit lines and notes the original length.
func truncateLines(text string, limit int) string {
	lines := strings.Split(text, "\n")
	if len(lines) <= limit {
		return text
	}
	return fmt.Sprintf("%s\n... (truncated: %d total lines)", strings.Join(lines[:limit], "\n"), len(lines))
}
