package scoring

import (
	"fmt"
	"sort"

	apperrors "move-improve-workers/internal/common/errors"
)

// Engine runs the scoring pipeline over a Bundle. It holds only immutable
// options and is safe for concurrent use.
type Engine struct {
	requireAnswers bool
}

type Option func(*Engine)

// WithRequiredAnswers makes a question that received no answer at all fail
// with NOT_ALLOWED unless it allows N/A. By default a missing answer is
// skipped exactly like an explicit N/A.
func WithRequiredAnswers() Option {
	return func(e *Engine) { e.requireAnswers = true }
}

func NewEngine(opts ...Option) *Engine {
	e := &Engine{}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// plan is a validated Bundle laid out in evaluation order.
type plan struct {
	categories []Category
	questions  []Question
	scorings   map[string]QuestionScoring
	answers    map[string]AnswerValue
	config     Config
}

// Compute validates b once and runs every stage. Any error aborts the whole
// computation; no partial result is returned.
func (e *Engine) Compute(b *Bundle) (*ScoreResult, error) {
	p, err := e.prepare(b)
	if err != nil {
		return nil, err
	}

	scored := make([]QuestionScore, 0, len(p.questions))
	answeredCount := 0
	for _, q := range p.questions {
		s := p.scorings[q.ID]
		n := NotAnswered
		if v, ok := p.answers[q.ID]; ok {
			if n, err = Normalize(q, s, v); err != nil {
				return nil, err
			}
		}
		qs := ScoreQuestion(n, s)
		qs.CategoryID = q.CategoryID
		if !qs.Skip {
			answeredCount++
		}
		scored = append(scored, qs)
	}

	breakdown, unanswered := AggregateCategories(p.categories, scored, p.config.naPolicy())

	composite, err := Combine(breakdown, p.categories, p.config)
	if err != nil {
		return nil, err
	}
	cls := Classify(composite, p.config)

	leans := make(map[string]Lean, len(breakdown))
	for id, cs := range breakdown {
		leans[id] = LeanOf(cs.Improve, cs.Move)
	}

	return &ScoreResult{
		ImproveComposite:  composite.Improve,
		MoveComposite:     composite.Move,
		DecisionIndex:     cls.DecisionIndex,
		Decision:          cls.Decision,
		LeanStrength:      cls.LeanStrength,
		CategoryBreakdown: breakdown,
		Metadata: Metadata{
			VersionID:            anchorVersion(b),
			Version:              b.Version.Version,
			QuestionsAnswered:    answeredCount,
			QuestionsSkipped:     len(p.questions) - answeredCount,
			UnansweredCategories: unanswered,
			CategoryLeans:        leans,
		},
	}, nil
}

// anchorVersion is the version every record must share: the bundle's own,
// else the config's, else the first one found on a category or question.
func anchorVersion(b *Bundle) string {
	if b.Version.ID != "" {
		return b.Version.ID
	}
	if b.Config.VersionID != "" {
		return b.Config.VersionID
	}
	for _, c := range b.Categories {
		if c.VersionID != "" {
			return c.VersionID
		}
	}
	for _, q := range b.Questions {
		if q.VersionID != "" {
			return q.VersionID
		}
	}
	return ""
}

// prepare checks the bundle as a whole before any stage runs. Records with an
// empty VersionID are taken to belong to the bundle's version.
func (e *Engine) prepare(b *Bundle) (*plan, error) {
	if b == nil {
		return nil, apperrors.NewEmptyConfigurationError("no bundle supplied")
	}
	if len(b.Categories) == 0 {
		return nil, apperrors.NewEmptyConfigurationError("no categories supplied")
	}
	if len(b.Questions) == 0 {
		return nil, apperrors.NewEmptyConfigurationError("no questions supplied")
	}
	if err := b.Config.Validate(); err != nil {
		return nil, err
	}

	versionID := anchorVersion(b)
	sameVersion := func(kind, id, v string) error {
		if v != "" && versionID != "" && v != versionID {
			return apperrors.NewForeignReferenceError(
				fmt.Sprintf("%s %s belongs to version %s, not %s", kind, id, v, versionID)).
				WithMetadata("versionId", versionID)
		}
		return nil
	}
	if err := sameVersion("scoring config", "", b.Config.VersionID); err != nil {
		return nil, err
	}

	p := &plan{
		categories: append([]Category(nil), b.Categories...),
		questions:  append([]Question(nil), b.Questions...),
		scorings:   make(map[string]QuestionScoring, len(b.Scorings)),
		answers:    make(map[string]AnswerValue, len(b.Answers)),
		config:     b.Config,
	}

	categoryIDs := make(map[string]struct{}, len(p.categories))
	for _, c := range p.categories {
		if _, dup := categoryIDs[c.ID]; dup {
			return nil, apperrors.NewInvalidConfigError("duplicate category " + c.ID)
		}
		categoryIDs[c.ID] = struct{}{}
		if err := sameVersion("category", c.ID, c.VersionID); err != nil {
			return nil, err
		}
		if !isFinite(c.DefaultWeight) || c.DefaultWeight <= 0 {
			return nil, apperrors.NewInvalidConfigError(
				fmt.Sprintf("category %s has non-positive defaultWeight %g", c.ID, c.DefaultWeight)).
				WithMetadata("categoryId", c.ID)
		}
	}

	questionIDs := make(map[string]struct{}, len(p.questions))
	for _, q := range p.questions {
		if _, dup := questionIDs[q.ID]; dup {
			return nil, apperrors.NewInvalidConfigError("duplicate question " + q.ID)
		}
		questionIDs[q.ID] = struct{}{}
		if err := sameVersion("question", q.ID, q.VersionID); err != nil {
			return nil, err
		}
		if _, ok := categoryIDs[q.CategoryID]; !ok {
			return nil, apperrors.NewForeignReferenceError(
				fmt.Sprintf("question %s references unknown category %s", q.ID, q.CategoryID)).
				WithMetadata("questionId", q.ID)
		}
		if err := checkQuestion(q); err != nil {
			return nil, err
		}
	}

	for _, s := range b.Scorings {
		if _, ok := questionIDs[s.QuestionID]; !ok {
			return nil, apperrors.NewForeignReferenceError("scoring references unknown question "+s.QuestionID).
				WithMetadata("questionId", s.QuestionID)
		}
		if _, dup := p.scorings[s.QuestionID]; dup {
			return nil, apperrors.NewForeignReferenceError("question "+s.QuestionID+" has more than one scoring").
				WithMetadata("questionId", s.QuestionID)
		}
		if !isFinite(s.ImproveWeight) || !isFinite(s.MoveWeight) || !isFinite(s.Multiplier) {
			return nil, apperrors.NewInvalidConfigError("scoring for question "+s.QuestionID+" has a non-finite weight").
				WithMetadata("questionId", s.QuestionID)
		}
		if s.Multiplier <= 0 {
			return nil, apperrors.NewInvalidConfigError(
				fmt.Sprintf("scoring for question %s has non-positive multiplier %g", s.QuestionID, s.Multiplier)).
				WithMetadata("questionId", s.QuestionID)
		}
		p.scorings[s.QuestionID] = s
	}
	for _, q := range p.questions {
		if _, ok := p.scorings[q.ID]; !ok {
			return nil, apperrors.NewForeignReferenceError("question "+q.ID+" has no scoring").
				WithMetadata("questionId", q.ID)
		}
	}

	for _, a := range b.Answers {
		if _, ok := questionIDs[a.QuestionID]; !ok {
			return nil, apperrors.NewForeignReferenceError("answer references unknown question "+a.QuestionID).
				WithMetadata("questionId", a.QuestionID)
		}
		if _, dup := p.answers[a.QuestionID]; dup {
			return nil, apperrors.NewNotAllowedError("question "+a.QuestionID+" answered more than once").
				WithMetadata("questionId", a.QuestionID)
		}
		if a.Value.Kind() == AnswerKindNone {
			return nil, apperrors.NewInvalidRangeError("answer for question "+a.QuestionID+" has no value").
				WithMetadata("questionId", a.QuestionID)
		}
		p.answers[a.QuestionID] = a.Value
	}

	if e.requireAnswers {
		for _, q := range p.questions {
			if _, ok := p.answers[q.ID]; !ok && !q.AllowNA {
				return nil, apperrors.NewNotAllowedError("question "+q.ID+" requires an answer").
					WithMetadata("questionId", q.ID)
			}
		}
	}

	sort.SliceStable(p.categories, func(i, j int) bool {
		return orderedBefore(p.categories[i].SortOrder, p.categories[i].ID, p.categories[j].SortOrder, p.categories[j].ID)
	})
	sort.SliceStable(p.questions, func(i, j int) bool {
		return orderedBefore(p.questions[i].SortOrder, p.questions[i].ID, p.questions[j].SortOrder, p.questions[j].ID)
	})
	return p, nil
}

func checkQuestion(q Question) error {
	switch q.Type {
	case QuestionTypeScale:
		if q.ScaleMin == q.ScaleMax {
			return apperrors.NewInvalidRangeError(
				fmt.Sprintf("question %s has degenerate scale [%d, %d]", q.ID, q.ScaleMin, q.ScaleMax)).
				WithMetadata("questionId", q.ID)
		}
		if q.ScaleMin > q.ScaleMax {
			return apperrors.NewInvalidConfigError(
				fmt.Sprintf("question %s has inverted scale [%d, %d]", q.ID, q.ScaleMin, q.ScaleMax)).
				WithMetadata("questionId", q.ID)
		}
	case QuestionTypeYesNo:
	default:
		return apperrors.NewInvalidConfigError("question "+q.ID+" has unknown type "+string(q.Type)).
			WithMetadata("questionId", q.ID)
	}
	return nil
}

func orderedBefore(ao int, aid string, bo int, bid string) bool {
	if ao != bo {
		return ao < bo
	}
	return aid < bid
}

// IsKind reports whether err carries the given error code.
func IsKind(err error, code apperrors.ErrorCode) bool {
	return apperrors.HasCode(err, code)
}
