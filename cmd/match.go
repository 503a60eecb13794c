package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/dmaslov/skillfit/internal/ai"
	"github.com/dmaslov/skillfit/internal/ai/gemini"
	"github.com/dmaslov/skillfit/internal/logger"
	"github.com/dmaslov/skillfit/internal/matching"
	"github.com/dmaslov/skillfit/internal/relationship"
	"github.com/dmaslov/skillfit/internal/secrets"
	"github.com/dmaslov/skillfit/internal/skills"
	"github.com/dmaslov/skillfit/internal/storage"
	"github.com/dmaslov/skillfit/internal/weighting"
)

var matchCmd = &cobra.Command{
	Use:   "match",
	Short: "Score a job's requirements against candidate skills",
	Run: func(cmd *cobra.Command, _ []string) {
		match(cmd)
	},
}

func init() {
	rootCmd.AddCommand(matchCmd)

	matchCmd.Flags().String("job", "", "path to the job file (title, description, requirements)")
	matchCmd.Flags().String("candidate", "", "path to the candidate skills file; defaults to candidate_skills in the job file")
	matchCmd.MarkFlagRequired("job")
}

// match is the main scoring command.
func match(cmd *cobra.Command) {
	ctx := context.Background()

	logger, err := logger.New(viper.GetBool("json"), viper.GetBool("debug"))
	if err != nil {
		log.Fatalf("creating a logger: %s", err)
	}

	config, err := getConfig()
	if err != nil {
		logger.Fatal("getting a config", zap.Error(err))
	}

	logger.Info("starting skillfit", zap.String("version", version))

	jobFile, _ := cmd.Flags().GetString("job")
	job, err := storage.LoadJobFile(jobFile)
	if err != nil {
		logger.Fatal("loading job file", zap.Error(err))
	}

	candidateSkills := job.CandidateSkills
	if candidateFile, _ := cmd.Flags().GetString("candidate"); candidateFile != "" {
		candidateSkills, err = storage.LoadCandidateFile(candidateFile)
		if err != nil {
			logger.Fatal("loading candidate file", zap.Error(err))
		}
	}

	db, store, aliases, err := openStore(config, logger)
	if err != nil {
		logger.Fatal("opening skill store", zap.Error(err))
	}
	defer db.Close()

	logger.Info("skill store loaded", zap.Int("skills", store.Len()))

	judge := newJudge(ctx, config, logger)
	scorer := newScorer(config, store, aliases, db, judge, logger)

	result, err := scorer.Score(ctx, job, candidateSkills)
	if err != nil {
		logger.Fatal("scoring job", zap.Error(err))
	}

	pretty, err := json.MarshalIndent(result, "", "  ")
	if err != nil {
		logger.Fatal("encoding result", zap.Error(err))
	}
	fmt.Println(string(pretty))
}

// openStore opens the database and merges authored definitions from the
// skills file (when configured) over the persisted ones.
func openStore(config *Config, logger *zap.Logger) (*storage.Store, *skills.Store, map[string]string, error) {
	db, err := storage.Open(config.DataDir)
	if err != nil {
		return nil, nil, nil, err
	}

	store, err := db.LoadSkills()
	if err != nil {
		db.Close()
		return nil, nil, nil, err
	}

	aliases := config.Aliases
	if config.SkillsFile != "" {
		fileAliases, skipped, err := storage.LoadSkillsFile(config.SkillsFile, store)
		if err != nil {
			db.Close()
			return nil, nil, nil, err
		}
		if skipped > 0 {
			logger.Warn("skills file entries skipped", zap.Int("count", skipped))
		}
		if aliases == nil {
			aliases = fileAliases
		} else {
			for alias, name := range fileAliases {
				aliases[alias] = name
			}
		}

		if err := db.SaveSkills(store); err != nil {
			db.Close()
			return nil, nil, nil, err
		}
	}

	return db, store, aliases, nil
}

// newScorer wires the matching scorer: resolver, strategy chain (behind the
// persistent cache when enabled) and the weighting evaluators over an
// immutable snapshot of the store.
func newScorer(config *Config, store *skills.Store, aliases map[string]string, db *storage.Store, judge ai.Judge, logger *zap.Logger) *matching.Scorer {
	snapshot := store.Snapshot()

	names := make([]string, 0, snapshot.Len())
	for _, skill := range snapshot.All() {
		names = append(names, skill.Name)
	}

	chain := relationship.NewChain(
		relationship.NewEnrichmentClassifier(),
		relationship.NewLexicalClassifier(),
	)

	var classifier relationship.Classifier = chain
	if config.Matching.CacheEnabled {
		classifier = relationship.NewCachedClassifier(chain, db)
	}

	timeout := judgeTimeout(config)

	return matching.NewScorer(*config.Matching, &matching.ScorerDeps{
		Snapshot:    snapshot,
		Resolver:    skills.NewResolver(names, aliases),
		Classifier:  classifier,
		Criticality: weighting.NewCriticalityEvaluator(judge, timeout, logger),
		Acquisition: weighting.NewAcquisitionEvaluator(judge, timeout, logger),
		Similarity:  weighting.NewSimilarityEvaluator(judge, timeout, logger),
		Logger:      logger,
	})
}

// newJudge builds the configured judge, or returns nil when AI is disabled
// or misconfigured; the evaluators then run on their documented defaults.
func newJudge(ctx context.Context, config *Config, logger *zap.Logger) ai.Judge {
	if config.AI == nil || !config.AI.Enabled {
		logger.Info("ai judge disabled; requirement weights fall back to defaults")
		return nil
	}

	judge, err := buildGeminiJudge(ctx, config.AI, logger)
	if err != nil {
		logger.Warn("ai judge unavailable; requirement weights fall back to defaults", zap.Error(err))
		return nil
	}
	return judge
}

func buildGeminiJudge(ctx context.Context, cfg *AIConfig, log *zap.Logger) (ai.Judge, error) {
	provider := strings.TrimSpace(strings.ToLower(cfg.Provider))
	if provider != "" && provider != "gemini" {
		return nil, fmt.Errorf("unsupported ai provider: %s", cfg.Provider)
	}

	if cfg.Gemini == nil {
		return nil, fmt.Errorf("gemini configuration is required when ai is enabled")
	}

	apiKey, err := secrets.Load(secrets.Source{
		Name: "gemini api key",
		File: cfg.Gemini.APIKeyFile,
	})
	if err != nil {
		return nil, fmt.Errorf("%w (set ai.gemini.api-key-file or GEMINI_API_KEY_FILE)", err)
	}

	genLogger := logger.WithCommonFields(log, "gemini", cfg.Gemini.Model)

	generator, err := gemini.NewGenerator(ctx, apiKey, cfg.Gemini.Model, cfg.Gemini.MaxRetries, genLogger)
	if err != nil {
		return nil, err
	}

	return gemini.NewJudge(generator, cfg.Gemini.MaxLogLength, log), nil
}

func judgeTimeout(config *Config) time.Duration {
	if config.AI == nil || config.AI.TimeoutSeconds <= 0 {
		return 0
	}
	return time.Duration(config.AI.TimeoutSeconds) * time.Second
}
