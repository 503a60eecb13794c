package storage

import (
	"database/sql"
	"embed"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	_ "modernc.org/sqlite"

	"github.com/dmaslov/skillfit/internal/learning"
	"github.com/dmaslov/skillfit/internal/relationship"
	"github.com/dmaslov/skillfit/internal/skills"
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

const dbFileName = "skillfit.db"

// Store wraps a SQLite database holding the engine's owned state: skill
// definitions, the relationship cache, and the applied-feedback log.
type Store struct {
	db *sql.DB
}

// Open opens (or creates) the database in dataDir and runs pending
// migrations. Pass ":memory:" as dataDir for an in-memory database (used by
// tests).
func Open(dataDir string) (*Store, error) {
	var dsn string
	if dataDir == ":memory:" {
		dsn = ":memory:"
	} else {
		if err := os.MkdirAll(dataDir, 0o755); err != nil {
			return nil, fmt.Errorf("creating data directory: %w", err)
		}
		dsn = filepath.Join(dataDir, dbFileName)
	}

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("pinging database: %w", err)
	}

	// Limit to single connection to avoid "database is locked" errors.
	db.SetMaxOpenConns(1)

	if _, err := db.Exec("PRAGMA busy_timeout = 5000"); err != nil {
		db.Close()
		return nil, fmt.Errorf("setting busy timeout: %w", err)
	}

	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("setting journal mode: %w", err)
	}

	s := &Store{db: db}
	if err := s.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("running migrations: %w", err)
	}

	return s, nil
}

// Close closes the underlying database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// migrate applies embedded SQL migration files that haven't been run yet.
func (s *Store) migrate() error {
	if _, err := s.db.Exec(`CREATE TABLE IF NOT EXISTS schema_version (
		version INTEGER PRIMARY KEY,
		applied_at DATETIME DEFAULT CURRENT_TIMESTAMP
	)`); err != nil {
		return fmt.Errorf("creating schema_version table: %w", err)
	}

	entries, err := migrationsFS.ReadDir("migrations")
	if err != nil {
		return fmt.Errorf("reading migrations directory: %w", err)
	}

	sort.Slice(entries, func(i, j int) bool {
		return entries[i].Name() < entries[j].Name()
	})

	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".sql") {
			continue
		}

		version := migrationVersion(entry.Name())

		var applied int
		if err := s.db.QueryRow("SELECT COUNT(*) FROM schema_version WHERE version = ?", version).Scan(&applied); err != nil {
			return fmt.Errorf("checking migration %s: %w", entry.Name(), err)
		}
		if applied > 0 {
			continue
		}

		content, err := migrationsFS.ReadFile("migrations/" + entry.Name())
		if err != nil {
			return fmt.Errorf("reading migration %s: %w", entry.Name(), err)
		}

		if _, err := s.db.Exec(string(content)); err != nil {
			return fmt.Errorf("applying migration %s: %w", entry.Name(), err)
		}
		if _, err := s.db.Exec("INSERT INTO schema_version (version) VALUES (?)", version); err != nil {
			return fmt.Errorf("recording migration %s: %w", entry.Name(), err)
		}
	}

	return nil
}

func migrationVersion(name string) int {
	version := 0
	for _, r := range name {
		if r < '0' || r > '9' {
			break
		}
		version = version*10 + int(r-'0')
	}
	return version
}

// SaveSkill inserts or replaces a skill definition.
func (s *Store) SaveSkill(skill *skills.Skill) error {
	knowledge, contexts, functions, err := marshalSets(skill)
	if err != nil {
		return err
	}

	_, err = s.db.Exec(`INSERT INTO skills
		(name, category, knowledge_components, contexts, functions, proficiency_level, quality_score, notes, feedback_applied_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, CURRENT_TIMESTAMP)
		ON CONFLICT(name) DO UPDATE SET
			category = excluded.category,
			knowledge_components = excluded.knowledge_components,
			contexts = excluded.contexts,
			functions = excluded.functions,
			proficiency_level = excluded.proficiency_level,
			quality_score = excluded.quality_score,
			notes = excluded.notes,
			feedback_applied_at = excluded.feedback_applied_at,
			updated_at = CURRENT_TIMESTAMP`,
		skill.Name, skill.Category, knowledge, contexts, functions,
		skill.ProficiencyLevel, skill.QualityScore, skill.Notes, nullableTime(skill.FeedbackAppliedAt),
	)
	if err != nil {
		return fmt.Errorf("saving skill %q: %w", skill.Name, err)
	}
	return nil
}

// LoadSkills reads every stored skill into a fresh in-memory store.
func (s *Store) LoadSkills() (*skills.Store, error) {
	rows, err := s.db.Query(`SELECT name, category, knowledge_components, contexts, functions,
		proficiency_level, quality_score, notes, feedback_applied_at FROM skills`)
	if err != nil {
		return nil, fmt.Errorf("querying skills: %w", err)
	}
	defer rows.Close()

	store := skills.NewStore()
	for rows.Next() {
		var skill skills.Skill
		var knowledge, contexts, functions string
		var appliedAt sql.NullTime

		if err := rows.Scan(&skill.Name, &skill.Category, &knowledge, &contexts, &functions,
			&skill.ProficiencyLevel, &skill.QualityScore, &skill.Notes, &appliedAt); err != nil {
			return nil, fmt.Errorf("scanning skill: %w", err)
		}

		if err := unmarshalSets(&skill, knowledge, contexts, functions); err != nil {
			return nil, fmt.Errorf("decoding skill %q: %w", skill.Name, err)
		}
		if appliedAt.Valid {
			skill.FeedbackAppliedAt = appliedAt.Time
		}

		if err := store.Upsert(&skill); err != nil {
			return nil, err
		}
	}
	return store, rows.Err()
}

// SaveSkills persists every skill in the store.
func (s *Store) SaveSkills(store *skills.Store) error {
	for _, skill := range store.All() {
		if err := s.SaveSkill(skill); err != nil {
			return err
		}
	}
	return nil
}

// Get implements relationship.Cache over the relationship_cache table. Rows
// whose stored enrichment hashes no longer match are treated as absent.
func (s *Store) Get(a, b, hashA, hashB string) (*relationship.Entry, bool) {
	var storedHashA, storedHashB, relType string
	var similarity float64

	err := s.db.QueryRow(`SELECT hash_a, hash_b, relationship_type, similarity
		FROM relationship_cache WHERE skill_a = ? AND skill_b = ?`, a, b).
		Scan(&storedHashA, &storedHashB, &relType, &similarity)
	if err != nil {
		return nil, false
	}
	if storedHashA != hashA || storedHashB != hashB {
		return nil, false
	}

	return &relationship.Entry{
		SkillA:     a,
		SkillB:     b,
		Type:       relationship.Type(relType),
		Similarity: similarity,
	}, true
}

// Put implements relationship.Cache.
func (s *Store) Put(a, b, hashA, hashB string, entry *relationship.Entry) {
	// Cache writes are best-effort; a failed write only costs a recompute.
	s.db.Exec(`INSERT INTO relationship_cache
		(skill_a, skill_b, hash_a, hash_b, relationship_type, similarity, computed_at)
		VALUES (?, ?, ?, ?, ?, ?, CURRENT_TIMESTAMP)
		ON CONFLICT(skill_a, skill_b) DO UPDATE SET
			hash_a = excluded.hash_a,
			hash_b = excluded.hash_b,
			relationship_type = excluded.relationship_type,
			similarity = excluded.similarity,
			computed_at = CURRENT_TIMESTAMP`,
		a, b, hashA, hashB, string(entry.Type), entry.Similarity,
	)
}

// CachedPairs returns the number of cached relationship rows.
func (s *Store) CachedPairs() (int, error) {
	var count int
	if err := s.db.QueryRow("SELECT COUNT(*) FROM relationship_cache").Scan(&count); err != nil {
		return 0, fmt.Errorf("counting cached pairs: %w", err)
	}
	return count, nil
}

// LogFeedback records an applied feedback entry.
func (s *Store) LogFeedback(entry learning.FeedbackEntry) error {
	corrections, err := json.Marshal(entry.Corrections)
	if err != nil {
		return fmt.Errorf("encoding corrections for %q: %w", entry.SkillName, err)
	}

	_, err = s.db.Exec(`INSERT OR REPLACE INTO feedback_log
		(id, skill_name, rating, notes, corrections, created_at, applied_at)
		VALUES (?, ?, ?, ?, ?, ?, CURRENT_TIMESTAMP)`,
		entry.ID, entry.SkillName, entry.Rating, entry.Notes, string(corrections), entry.Timestamp,
	)
	if err != nil {
		return fmt.Errorf("logging feedback for %q: %w", entry.SkillName, err)
	}
	return nil
}

// FeedbackHistory returns the applied entries for one skill, newest first.
func (s *Store) FeedbackHistory(skillName string) ([]learning.FeedbackEntry, error) {
	rows, err := s.db.Query(`SELECT id, skill_name, rating, notes, corrections, created_at
		FROM feedback_log WHERE skill_name = ? ORDER BY created_at DESC`, skillName)
	if err != nil {
		return nil, fmt.Errorf("querying feedback history: %w", err)
	}
	defer rows.Close()

	var entries []learning.FeedbackEntry
	for rows.Next() {
		var entry learning.FeedbackEntry
		var corrections string
		var createdAt time.Time

		if err := rows.Scan(&entry.ID, &entry.SkillName, &entry.Rating, &entry.Notes, &corrections, &createdAt); err != nil {
			return nil, fmt.Errorf("scanning feedback entry: %w", err)
		}
		if err := json.Unmarshal([]byte(corrections), &entry.Corrections); err != nil {
			return nil, fmt.Errorf("decoding corrections: %w", err)
		}
		entry.Timestamp = createdAt
		entries = append(entries, entry)
	}
	return entries, rows.Err()
}

func marshalSets(skill *skills.Skill) (string, string, string, error) {
	knowledge, err := json.Marshal(emptyIfNil(skill.KnowledgeComponents))
	if err != nil {
		return "", "", "", fmt.Errorf("encoding knowledge components: %w", err)
	}
	contexts, err := json.Marshal(emptyIfNil(skill.Contexts))
	if err != nil {
		return "", "", "", fmt.Errorf("encoding contexts: %w", err)
	}
	functions, err := json.Marshal(emptyIfNil(skill.Functions))
	if err != nil {
		return "", "", "", fmt.Errorf("encoding functions: %w", err)
	}
	return string(knowledge), string(contexts), string(functions), nil
}

func unmarshalSets(skill *skills.Skill, knowledge, contexts, functions string) error {
	if err := json.Unmarshal([]byte(knowledge), &skill.KnowledgeComponents); err != nil {
		return err
	}
	if err := json.Unmarshal([]byte(contexts), &skill.Contexts); err != nil {
		return err
	}
	return json.Unmarshal([]byte(functions), &skill.Functions)
}

func emptyIfNil(values []string) []string {
	if values == nil {
		return []string{}
	}
	return values
}

func nullableTime(t time.Time) any {
	if t.IsZero() {
		return nil
	}
	return t
}
