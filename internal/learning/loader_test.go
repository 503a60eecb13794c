package learning

import (
	"os"
	"path/filepath"
	"testing"

	"go.uber.org/zap"
)

func writeFeedbackFile(t *testing.T, dir, name, content string) {
	t.Helper()
	if err := os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestLoadFeedbackDir(t *testing.T) {
	dir := t.TempDir()

	writeFeedbackFile(t, dir, "batch.yaml", `feedback:
  - skill_name: Go
    rating: 4
    corrections:
      contexts: [backend services]
    timestamp: 2026-08-01T12:00:00Z
  - skill_name: Kubernetes
    rating: 3
    timestamp: 2026-08-02T12:00:00Z
`)
	writeFeedbackFile(t, dir, "single.yml", `skill_name: Terraform
id: keep-this-id
notes: looks good
timestamp: 2026-08-03T12:00:00Z
`)
	writeFeedbackFile(t, dir, "notes.txt", "not yaml, not loaded")

	result, err := LoadFeedbackDir(dir, zap.NewNop())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(result.Entries) != 3 || result.Skipped != 0 {
		t.Fatalf("unexpected result: %d entries, %d skipped", len(result.Entries), result.Skipped)
	}

	for _, entry := range result.Entries {
		if entry.ID == "" {
			t.Fatalf("entry %q has no assigned ID", entry.SkillName)
		}
		if entry.SkillName == "Terraform" && entry.ID != "keep-this-id" {
			t.Fatalf("existing ID overwritten: %q", entry.ID)
		}
	}
}

func TestLoadFeedbackDirSkipsMalformed(t *testing.T) {
	dir := t.TempDir()

	writeFeedbackFile(t, dir, "good.yaml", `skill_name: Go
timestamp: 2026-08-01T12:00:00Z
`)
	writeFeedbackFile(t, dir, "no-name.yaml", `rating: 3
timestamp: 2026-08-01T12:00:00Z
`)
	writeFeedbackFile(t, dir, "bad-rating.yaml", `skill_name: Go
rating: 11
`)
	writeFeedbackFile(t, dir, "garbage.yaml", `{{{ not yaml`)

	result, err := LoadFeedbackDir(dir, zap.NewNop())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(result.Entries) != 1 {
		t.Fatalf("expected 1 entry, got %d", len(result.Entries))
	}
	if result.Skipped != 3 {
		t.Fatalf("skipped = %d, want 3", result.Skipped)
	}
}

func TestLoadFeedbackDirMissing(t *testing.T) {
	if _, err := LoadFeedbackDir(filepath.Join(t.TempDir(), "absent"), nil); err == nil {
		t.Fatalf("expected error for missing directory")
	}
}
