package storage

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/dmaslov/skillfit/internal/matching"
	"github.com/dmaslov/skillfit/internal/skills"
)

// skillsFile is the authored skill definition file format.
type skillsFile struct {
	Aliases map[string]string `yaml:"aliases,omitempty"`
	Skills  []*skills.Skill   `yaml:"skills"`
}

// LoadSkillsFile reads an authored YAML definition file into the store and
// returns the alias table for the synonym resolver. Entries without a name
// are skipped with a count, never fatal.
func LoadSkillsFile(path string, store *skills.Store) (aliases map[string]string, skipped int, err error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, 0, fmt.Errorf("reading skills file: %w", err)
	}

	var file skillsFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, 0, fmt.Errorf("parsing skills file %q: %w", path, err)
	}

	for _, skill := range file.Skills {
		if err := store.Upsert(skill); err != nil {
			skipped++
		}
	}

	return file.Aliases, skipped, nil
}

// ExportSkillsFile writes the store's definitions back to an authored YAML
// file so corrected definitions can round-trip into version control.
func ExportSkillsFile(path string, store *skills.Store, aliases map[string]string) error {
	file := skillsFile{
		Aliases: aliases,
		Skills:  store.All(),
	}

	data, err := yaml.Marshal(&file)
	if err != nil {
		return fmt.Errorf("encoding skills file: %w", err)
	}

	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("writing skills file: %w", err)
	}
	return nil
}

// LoadJobFile reads a job description file: title, description, requirements
// and optionally the candidate's skills.
func LoadJobFile(path string) (*matching.Job, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading job file: %w", err)
	}

	var job matching.Job
	if err := yaml.Unmarshal(data, &job); err != nil {
		return nil, fmt.Errorf("parsing job file %q: %w", path, err)
	}
	return &job, nil
}

// LoadCandidateFile reads a plain list of candidate skill phrases.
func LoadCandidateFile(path string) ([]string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading candidate file: %w", err)
	}

	var file struct {
		Skills []string `yaml:"skills"`
	}
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("parsing candidate file %q: %w", path, err)
	}
	return file.Skills, nil
}
