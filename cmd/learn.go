package cmd

import (
	"encoding/json"
	"fmt"
	"log"

	"github.com/manifoldco/promptui"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/dmaslov/skillfit/internal/learning"
	"github.com/dmaslov/skillfit/internal/logger"
	"github.com/dmaslov/skillfit/internal/storage"
)

const (
	PromptAcknowledge = "Acknowledge"
	PromptSkip        = "Skip"
	PromptStop        = "Stop review"
)

var learnCmd = &cobra.Command{
	Use:   "learn",
	Short: "Continuous learning: apply expert feedback and inspect definition quality",
}

var learnApplyCmd = &cobra.Command{
	Use:   "apply",
	Short: "Apply expert feedback entries to the skill store",
	Run: func(cmd *cobra.Command, _ []string) {
		learnApply(cmd)
	},
}

var learnReportCmd = &cobra.Command{
	Use:   "report",
	Short: "Print the quality distribution and consistency issues",
	Run: func(_ *cobra.Command, _ []string) {
		learnReport()
	},
}

var learnReviewCmd = &cobra.Command{
	Use:   "review",
	Short: "Interactively triage consistency issues",
	Run: func(_ *cobra.Command, _ []string) {
		learnReview()
	},
}

func init() {
	rootCmd.AddCommand(learnCmd)
	learnCmd.AddCommand(learnApplyCmd, learnReportCmd, learnReviewCmd)

	learnApplyCmd.Flags().String("feedback", "", "directory of feedback YAML files")
	learnApplyCmd.MarkFlagRequired("feedback")
}

func learnApply(cmd *cobra.Command) {
	logger, err := logger.New(viper.GetBool("json"), viper.GetBool("debug"))
	if err != nil {
		log.Fatalf("creating a logger: %s", err)
	}

	config, err := getConfig()
	if err != nil {
		logger.Fatal("getting a config", zap.Error(err))
	}

	feedbackDir, _ := cmd.Flags().GetString("feedback")
	loaded, err := learning.LoadFeedbackDir(feedbackDir, logger)
	if err != nil {
		logger.Fatal("loading feedback", zap.Error(err))
	}

	db, store, _, err := openStore(config, logger)
	if err != nil {
		logger.Fatal("opening skill store", zap.Error(err))
	}
	defer db.Close()

	result, err := learning.ApplyFeedback(store, loaded.Entries, logger)
	if err != nil {
		logger.Fatal("applying feedback", zap.Error(err))
	}

	if err := db.SaveSkills(store); err != nil {
		logger.Fatal("persisting corrected skills", zap.Error(err))
	}

	applied := make(map[string]bool, len(result.Updated))
	for _, name := range result.Updated {
		applied[name] = true
	}
	for _, entry := range learning.Reconcile(loaded.Entries) {
		if !applied[entry.SkillName] {
			continue
		}
		if err := db.LogFeedback(entry); err != nil {
			logger.Warn("recording feedback log entry", zap.Error(err))
		}
	}

	if config.SkillsFile != "" {
		if err := storage.ExportSkillsFile(config.SkillsFile, store, config.Aliases); err != nil {
			logger.Warn("exporting corrected skills file", zap.Error(err))
		}
	}

	logger.Info("feedback pass complete",
		zap.Int("updated", len(result.Updated)),
		zap.Int("skipped_entries", result.Skipped),
		zap.Int("skipped_files", loaded.Skipped),
	)
}

func learnReport() {
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

	report := learning.QualityReport(store.Snapshot(), config.Matching.QualityThreshold)

	pretty, err := json.MarshalIndent(report, "", "  ")
	if err != nil {
		logger.Fatal("encoding report", zap.Error(err))
	}
	fmt.Println(string(pretty))
}

func learnReview() {
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

	issues := learning.CheckConsistency(store.Snapshot())
	if len(issues) == 0 {
		logger.Info("no consistency issues found")
		return
	}

	logger.Info("reviewing consistency issues", zap.Int("count", len(issues)))

	for _, issue := range issues {
		fmt.Printf("\n[%s] %s (%s)\n  %s\n", issue.Kind, issue.SkillName, issue.Category, issue.Detail)
		for _, value := range issue.Values {
			fmt.Printf("  - %s\n", value)
		}

		prompt := promptui.Select{
			Label: "Next step",
			Items: []string{PromptAcknowledge, PromptSkip, PromptStop},
		}

		_, action, err := prompt.Run()
		if err != nil {
			logger.Fatal("exiting", zap.Error(err))
		}

		switch action {
		case PromptStop:
			logger.Info("review stopped")
			return
		case PromptAcknowledge:
			logger.Info("issue acknowledged",
				zap.String("kind", issue.Kind),
				zap.String("skill", issue.SkillName),
			)
		}
	}

	logger.Info("review complete", zap.Int("issues", len(issues)))
}
