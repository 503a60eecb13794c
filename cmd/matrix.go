package cmd

import (
	"context"
	"log"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/dmaslov/skillfit/internal/logger"
	"github.com/dmaslov/skillfit/internal/relationship"
)

var matrixCmd = &cobra.Command{
	Use:   "matrix",
	Short: "Build the full pairwise relationship matrix for the skill store",
	Run: func(_ *cobra.Command, _ []string) {
		matrix()
	},
}

func init() {
	rootCmd.AddCommand(matrixCmd)
}

func matrix() {
	ctx := context.Background()

	logger, err := logger.New(viper.GetBool("json"), viper.GetBool("debug"))
	if err != nil {
		log.Fatalf("creating a logger: %s", err)
	}

	config, err := getConfig()
	if err != nil {
		logger.Fatal("getting a config", zap.Error(err))
	}

	db, store, _, err := openStore(config, logger)
	if err != nil {
		logger.Fatal("opening skill store", zap.Error(err))
	}
	defer db.Close()

	snapshot := store.Snapshot()
	logger.Info("building relationship matrix",
		zap.Int("skills", snapshot.Len()),
		zap.Int("pairs", snapshot.Len()*(snapshot.Len()-1)),
	)

	chain := relationship.NewChain(
		relationship.NewEnrichmentClassifier(),
		relationship.NewLexicalClassifier(),
	)

	var cache relationship.Cache
	if config.Matching.CacheEnabled {
		cache = db
	}

	builder := relationship.NewMatrixBuilder(chain, cache, logger)
	builder.OnProgress(func(p relationship.Progress) {
		logger.Info("matrix progress", zap.Int("done", p.Done), zap.Int("total", p.Total))
	})

	entries, err := builder.Build(ctx, snapshot)
	if err != nil {
		logger.Fatal("building matrix", zap.Error(err))
	}

	counts := make(map[relationship.Type]int)
	for _, entry := range entries {
		counts[entry.Type]++
	}

	logger.Info("matrix complete",
		zap.Int("pairs", len(entries)),
		zap.Int("exact", counts[relationship.ExactMatch]),
		zap.Int("subset", counts[relationship.Subset]),
		zap.Int("superset", counts[relationship.Superset]),
		zap.Int("neighboring", counts[relationship.Neighboring]),
		zap.Int("hybrid", counts[relationship.Hybrid]),
		zap.Int("unrelated", counts[relationship.Unrelated]),
	)
}
