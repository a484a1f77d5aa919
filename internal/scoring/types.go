// Package scoring turns questionnaire answers into an Improve / Move
// recommendation.
//
// The pipeline runs five pure stages in order: Normalize, ScoreQuestion,
// AggregateCategories, Combine and Classify. Compute validates a Bundle once
// and then runs them. Nothing in this package performs I/O or keeps state
// between calls, so an Engine may be shared freely between goroutines.
package scoring

import (
	"math"

	apperrors "move-improve-workers/internal/common/errors"
)

type QuestionType string

const (
	QuestionTypeScale QuestionType = "SCALE"
	QuestionTypeYesNo QuestionType = "YESNO"
)

// NAHandling is the policy for questions answered N/A.
type NAHandling string

const (
	// NAExcludeFromDenominator drops N/A questions from both the sum and the
	// count of their category mean.
	NAExcludeFromDenominator NAHandling = "EXCLUDE_FROM_DENOMINATOR"
)

type Decision string

const (
	DecisionImprove Decision = "Improve"
	DecisionMove    Decision = "Move"
	DecisionUnclear Decision = "Unclear"
)

type LeanStrength string

const (
	LeanNone     LeanStrength = "None"
	LeanSlight   LeanStrength = "Slight"
	LeanModerate LeanStrength = "Moderate"
	LeanStrong   LeanStrength = "Strong"
)

// Version identifies the immutable questionnaire snapshot every other record
// in a Bundle belongs to.
type Version struct {
	ID          string `json:"id"`
	Version     int    `json:"version"`
	IsActive    bool   `json:"isActive"`
	Description string `json:"description,omitempty"`
}

type Category struct {
	ID            string  `json:"id"`
	VersionID     string  `json:"versionId"`
	Name          string  `json:"name"`
	Label         string  `json:"label"`
	Description   string  `json:"description,omitempty"`
	DefaultWeight float64 `json:"defaultWeight"`
	SortOrder     int     `json:"sortOrder"`
}

type Question struct {
	ID          string            `json:"id"`
	VersionID   string            `json:"versionId"`
	CategoryID  string            `json:"categoryId"`
	Text        string            `json:"text,omitempty"`
	Type        QuestionType      `json:"type"`
	ScaleMin    int               `json:"scaleMin,omitempty"`
	ScaleMax    int               `json:"scaleMax,omitempty"`
	ScaleLabels map[string]string `json:"scaleLabels,omitempty"`
	AllowNA     bool              `json:"allowNA"`
	SortOrder   int               `json:"sortOrder"`
}

// QuestionScoring carries the weights of exactly one Question. ImproveWeight
// and MoveWeight are read independently; nothing forces them to be opposites.
type QuestionScoring struct {
	QuestionID    string  `json:"questionId"`
	ImproveWeight float64 `json:"improveWeight"`
	MoveWeight    float64 `json:"moveWeight"`
	Multiplier    float64 `json:"multiplier"`
	ReverseScored bool    `json:"reverseScored"`
}

// Config is the per-version scoring configuration.
type Config struct {
	VersionID             string     `json:"versionId"`
	EqualWeighting        bool       `json:"equalWeighting"`
	NeutralZoneMin        float64    `json:"neutralZoneMin"`
	NeutralZoneMax        float64    `json:"neutralZoneMax"`
	SlightLeanThreshold   float64    `json:"slightLeanThreshold"`
	ModerateLeanThreshold float64    `json:"moderateLeanThreshold"`
	StrongLeanThreshold   float64    `json:"strongLeanThreshold"`
	NAHandling            NAHandling `json:"naHandling"`
}

// Validate checks the neutral zone and the threshold ladder. An empty
// NAHandling is read as NAExcludeFromDenominator, the only defined policy.
func (c Config) Validate() error {
	bounds := []struct {
		name  string
		value float64
	}{
		{"neutralZoneMin", c.NeutralZoneMin},
		{"neutralZoneMax", c.NeutralZoneMax},
		{"slightLeanThreshold", c.SlightLeanThreshold},
		{"moderateLeanThreshold", c.ModerateLeanThreshold},
		{"strongLeanThreshold", c.StrongLeanThreshold},
	}
	for _, b := range bounds {
		if !isFinite(b.value) {
			return apperrors.NewInvalidConfigError(b.name + " is not a finite number")
		}
	}

	if c.NeutralZoneMin > 0 || c.NeutralZoneMax < 0 {
		return apperrors.NewInvalidConfigError("neutral zone must satisfy neutralZoneMin <= 0 <= neutralZoneMax").
			WithMetadata("neutralZoneMin", c.NeutralZoneMin).
			WithMetadata("neutralZoneMax", c.NeutralZoneMax)
	}

	if c.SlightLeanThreshold < 0 ||
		c.SlightLeanThreshold >= c.ModerateLeanThreshold ||
		c.ModerateLeanThreshold >= c.StrongLeanThreshold {
		return apperrors.NewInvalidConfigError("lean thresholds must satisfy 0 <= slight < moderate < strong").
			WithMetadata("slightLeanThreshold", c.SlightLeanThreshold).
			WithMetadata("moderateLeanThreshold", c.ModerateLeanThreshold).
			WithMetadata("strongLeanThreshold", c.StrongLeanThreshold)
	}

	switch c.NAHandling {
	case "", NAExcludeFromDenominator:
	default:
		return apperrors.NewInvalidConfigError("unknown naHandling policy " + string(c.NAHandling))
	}
	return nil
}

func (c Config) naPolicy() NAHandling {
	if c.NAHandling == "" {
		return NAExcludeFromDenominator
	}
	return c.NAHandling
}

type Answer struct {
	QuestionID string      `json:"questionId"`
	Value      AnswerValue `json:"value"`
}

// Bundle is everything one computation needs, all drawn from a single
// questionnaire version.
type Bundle struct {
	Version    Version           `json:"version"`
	Categories []Category        `json:"categories"`
	Questions  []Question        `json:"questions"`
	Scorings   []QuestionScoring `json:"scorings"`
	Config     Config            `json:"config"`
	Answers    []Answer          `json:"answers"`
}

type CategoryScore struct {
	Improve float64 `json:"improve"`
	Move    float64 `json:"move"`
}

type Metadata struct {
	VersionID            string          `json:"versionId"`
	Version              int             `json:"version"`
	QuestionsAnswered    int             `json:"questionsAnswered"`
	QuestionsSkipped     int             `json:"questionsSkipped"`
	UnansweredCategories []string        `json:"unansweredCategories"`
	CategoryLeans        map[string]Lean `json:"categoryLeans"`
}

// ScoreResult is the engine output. It is created once per computation and
// never modified afterwards.
type ScoreResult struct {
	ImproveComposite  float64                  `json:"improveComposite"`
	MoveComposite     float64                  `json:"moveComposite"`
	DecisionIndex     float64                  `json:"decisionIndex"`
	Decision          Decision                 `json:"decision"`
	LeanStrength      LeanStrength             `json:"leanStrength"`
	CategoryBreakdown map[string]CategoryScore `json:"categoryBreakdown"`
	Metadata          Metadata                 `json:"metadata"`
}

func isFinite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
