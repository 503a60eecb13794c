package gemini

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"
	"unicode/utf8"

	_ "embed"

	"go.uber.org/zap"

	"github.com/dmaslov/skillfit/internal/ai"
	"github.com/dmaslov/skillfit/internal/logger"
	"github.com/dmaslov/skillfit/internal/utils"
)

type contentGenerator interface {
	GenerateContent(ctx context.Context, prompt string) (string, error)
	Model() string
}

//go:embed criticality.md
var criticalityTemplate string

//go:embed acquisition.md
var acquisitionTemplate string

//go:embed similarity.md
var similarityTemplate string

const defaultMaxLogLength = 200

// Judge implements ai.Judge on top of a Gemini content generator.
type Judge struct {
	generator contentGenerator
	logger    *zap.Logger
	maxLogLen int
}

// NewJudge creates a Gemini-backed judge.
func NewJudge(generator contentGenerator, maxLogLength int, log *zap.Logger) *Judge {
	if maxLogLength <= 0 {
		maxLogLength = defaultMaxLogLength
	}

	log = logger.WithCommonFields(log, "gemini", generator.Model())

	return &Judge{
		generator: generator,
		logger:    log,
		maxLogLen: maxLogLength,
	}
}

// JudgeCriticality asks how indispensable the requirement is to the role.
func (j *Judge) JudgeCriticality(ctx context.Context, jobTitle, jobDescription, requirement string) (*ai.CriticalityVerdict, error) {
	prompt := fillTemplate(criticalityTemplate, map[string]string{
		"{{JOB_TITLE}}":       jobTitle,
		"{{JOB_DESCRIPTION}}": jobDescription,
		"{{REQUIREMENT}}":     requirement,
	})

	raw, err := j.generate(ctx, "criticality", prompt)
	if err != nil {
		return nil, err
	}

	data, err := parseJSON(raw)
	if err != nil {
		return nil, err
	}

	score := coerceFloat(data["score"])
	if math.IsNaN(score) {
		return nil, fmt.Errorf("criticality response missing score: %s", utils.TruncateForLog(raw, j.maxLogLen))
	}

	return &ai.CriticalityVerdict{
		Score:  clamp01(score),
		Reason: coerceString(data["reason"]),
		Raw:    raw,
	}, nil
}

// JudgeAcquisitionTime asks how long closing a gap in the requirement would
// take an otherwise-qualified candidate.
func (j *Judge) JudgeAcquisitionTime(ctx context.Context, jobTitle, requirement string) (*ai.AcquisitionVerdict, error) {
	prompt := fillTemplate(acquisitionTemplate, map[string]string{
		"{{JOB_TITLE}}":   jobTitle,
		"{{REQUIREMENT}}": requirement,
	})

	raw, err := j.generate(ctx, "acquisition", prompt)
	if err != nil {
		return nil, err
	}

	data, err := parseJSON(raw)
	if err != nil {
		return nil, err
	}

	bucket := strings.ToUpper(coerceString(data["bucket"]))
	switch bucket {
	case "SHORT", "MEDIUM", "LONG":
	default:
		return nil, fmt.Errorf("acquisition response has unknown bucket %q", bucket)
	}

	months := 0
	if m := coerceFloat(data["months"]); !math.IsNaN(m) {
		months = int(m)
	}

	return &ai.AcquisitionVerdict{
		Bucket: bucket,
		Months: months,
		Reason: coerceString(data["reason"]),
		Raw:    raw,
	}, nil
}

// JudgeSimilarity rates the semantic similarity of two short phrases.
func (j *Judge) JudgeSimilarity(ctx context.Context, phraseA, phraseB string) (float64, error) {
	prompt := fillTemplate(similarityTemplate, map[string]string{
		"{{PHRASE_A}}": phraseA,
		"{{PHRASE_B}}": phraseB,
	})

	raw, err := j.generate(ctx, "similarity", prompt)
	if err != nil {
		return 0, err
	}

	data, err := parseJSON(raw)
	if err != nil {
		return 0, err
	}

	score := coerceFloat(data["score"])
	if math.IsNaN(score) {
		return 0, fmt.Errorf("similarity response missing score: %s", utils.TruncateForLog(raw, j.maxLogLen))
	}

	return clamp01(score), nil
}

func (j *Judge) generate(ctx context.Context, kind, prompt string) (string, error) {
	j.logger.Debug("gemini judge request",
		zap.String("kind", kind),
		zap.Int("prompt_length", utf8.RuneCountInString(prompt)),
		zap.String("prompt_preview", utils.TruncateForLog(prompt, j.maxLogLen)),
	)

	raw, err := j.generator.GenerateContent(ctx, prompt)
	if err != nil {
		return "", err
	}

	j.logger.Debug("gemini judge response",
		zap.String("kind", kind),
		zap.Int("response_length", utf8.RuneCountInString(raw)),
		zap.String("response_preview", utils.TruncateForLog(raw, j.maxLogLen)),
	)

	return raw, nil
}

func fillTemplate(template string, replacements map[string]string) string {
	for placeholder, value := range replacements {
		template = strings.ReplaceAll(template, placeholder, strings.TrimSpace(value))
	}
	return template
}

func parseJSON(raw string) (map[string]any, error) {
	cleaned := extractJSON(raw)

	var data map[string]any
	if err := json.Unmarshal([]byte(cleaned), &data); err != nil {
		return nil, fmt.Errorf("parse gemini response: %w", err)
	}
	return data, nil
}

func extractJSON(raw string) string {
	raw = strings.TrimSpace(raw)
	if strings.HasPrefix(raw, "```") {
		raw = strings.TrimPrefix(raw, "```json")
		raw = strings.TrimPrefix(raw, "```")
		raw = strings.TrimSpace(raw)
		if idx := strings.LastIndex(raw, "```"); idx != -1 {
			raw = raw[:idx]
		}
	}
	raw = strings.Trim(raw, "`")
	return strings.TrimSpace(raw)
}

func coerceFloat(v any) float64 {
	switch val := v.(type) {
	case float64:
		return val
	case int:
		return float64(val)
	case string:
		trimmed := strings.TrimSpace(val)
		if trimmed == "" {
			return math.NaN()
		}
		f, err := strconv.ParseFloat(trimmed, 64)
		if err != nil {
			return math.NaN()
		}
		return f
	default:
		return math.NaN()
	}
}

func coerceString(v any) string {
	switch val := v.(type) {
	case string:
		return strings.TrimSpace(val)
	case fmt.Stringer:
		return strings.TrimSpace(val.String())
	default:
		if v == nil {
			return ""
		}
		bytes, err := json.Marshal(v)
		if err != nil {
			return fmt.Sprintf("%v", v)
		}
		return string(bytes)
	}
}

func clamp01(v float64) float64 {
	switch {
	case v < 0:
		return 0
	case v > 1:
		return 1
	default:
		return v
	}
}
