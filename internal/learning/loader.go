package learning

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"
)

// LoadResult carries the parsed entries plus the count of files that failed
// to parse. Malformed files are skipped, never fatal.
type LoadResult struct {
	Entries []FeedbackEntry
	Skipped int
}

// LoadFeedbackDir reads every .yaml/.yml file under dir as a feedback entry
// file. Each file holds either a single entry or a list under "feedback".
// Entries without an ID get one assigned.
func LoadFeedbackDir(dir string, logger *zap.Logger) (*LoadResult, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	paths, err := feedbackFiles(dir)
	if err != nil {
		return nil, err
	}

	result := &LoadResult{}
	for _, path := range paths {
		entries, err := loadFeedbackFile(path)
		if err != nil {
			logger.Warn("skipping malformed feedback file",
				zap.String("path", path),
				zap.Error(err),
			)
			result.Skipped++
			continue
		}
		result.Entries = append(result.Entries, entries...)
	}

	for i := range result.Entries {
		if result.Entries[i].ID == "" {
			result.Entries[i].ID = uuid.NewString()
		}
	}

	return result, nil
}

func feedbackFiles(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("reading feedback directory: %w", err)
	}

	var paths []string
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		name := entry.Name()
		if strings.HasSuffix(name, ".yaml") || strings.HasSuffix(name, ".yml") {
			paths = append(paths, filepath.Join(dir, name))
		}
	}
	return paths, nil
}

func loadFeedbackFile(path string) ([]FeedbackEntry, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	// A file is either a list under "feedback" or a single top-level entry.
	var wrapper struct {
		Feedback []FeedbackEntry `yaml:"feedback"`
	}
	if err := yaml.Unmarshal(data, &wrapper); err == nil && len(wrapper.Feedback) > 0 {
		return validateEntries(wrapper.Feedback)
	}

	var single FeedbackEntry
	if err := yaml.Unmarshal(data, &single); err != nil {
		return nil, fmt.Errorf("parsing feedback: %w", err)
	}
	return validateEntries([]FeedbackEntry{single})
}

func validateEntries(entries []FeedbackEntry) ([]FeedbackEntry, error) {
	for _, entry := range entries {
		if strings.TrimSpace(entry.SkillName) == "" {
			return nil, fmt.Errorf("feedback entry is missing skill_name")
		}
		if entry.Rating < 0 || entry.Rating > 5 {
			return nil, fmt.Errorf("feedback rating %d for %q out of range", entry.Rating, entry.SkillName)
		}
	}
	return entries, nil
}
