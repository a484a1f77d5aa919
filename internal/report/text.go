// Package report renders a stored score result for people. It only reads
// result and category fields; nothing is recomputed here.
package report

import (
	"fmt"
	"io"
	"sort"
	"strings"
	"time"

	"move-improve-workers/internal/scoring"
)

const ruleWidth = 50

// Input is everything a report shows.
type Input struct {
	SessionID   string
	CreatedAt   time.Time
	GeneratedAt time.Time
	Result      *scoring.ScoreResult
	Categories  []scoring.Category
}

var methodology = []string{
	"Each question is scored on a normalized scale",
	"Category scores are calculated as weighted averages",
	"Composite scores weight categories based on their importance",
	"The decision is based on the difference between Improve and Move scores",
	"Lean strength indicates the confidence of the recommendation",
}

// Summary is the one-line reading of a decision.
func Summary(d scoring.Decision) string {
	switch d {
	case scoring.DecisionImprove:
		return "The data suggests improving your current situation."
	case scoring.DecisionMove:
		return "The data suggests moving to a new situation."
	default:
		return "The data is unclear - consider both options."
	}
}

// RenderText returns the plain-text report.
func RenderText(in Input) (string, error) {
	var b strings.Builder
	if err := WriteText(&b, in); err != nil {
		return "", err
	}
	return b.String(), nil
}

// WriteText writes the plain-text report to w.
func WriteText(w io.Writer, in Input) error {
	if in.Result == nil {
		return fmt.Errorf("report: no score result for session %s", in.SessionID)
	}
	res := in.Result
	p := &printer{w: w}

	p.line("MOVE VS IMPROVE ASSESSMENT RESULTS")
	p.line(strings.Repeat("=", ruleWidth))
	p.line("")
	p.linef("Assessment ID: %s", in.SessionID)
	if !in.CreatedAt.IsZero() {
		p.linef("Date: %s", in.CreatedAt.Format("2006-01-02"))
		p.linef("Time: %s", in.CreatedAt.Format("15:04:05 MST"))
	}
	p.line("")

	p.section("DECISION")
	p.line(string(res.Decision))
	p.line(Summary(res.Decision))
	p.linef("Lean Strength: %s", res.LeanStrength)
	p.line("")

	p.section("COMPOSITE SCORES")
	p.linef("Improve Score: %.2f", res.ImproveComposite)
	p.linef("Move Score: %.2f", res.MoveComposite)
	p.linef("Decision Index: %.2f", res.DecisionIndex)
	p.line("")

	p.section("CATEGORY BREAKDOWN")
	for _, cat := range ordered(in.Categories) {
		score, ok := res.CategoryBreakdown[cat.ID]
		if !ok {
			continue
		}
		lean := scoring.LeanOf(score.Improve, score.Move)

		p.line("")
		p.line(labelOf(cat))
		if cat.Description != "" {
			p.line(cat.Description)
		}
		p.linef("  Improve: %.2f", score.Improve)
		p.linef("  Move: %.2f", score.Move)
		p.linef("  Leans: %s (%.2f)", lean.Direction, lean.Margin)
		if unanswered(res, cat.ID) {
			p.line("  No questions answered in this category")
		}
	}
	p.line("")

	p.section("METHODOLOGY")
	p.line("This assessment uses a weighted scoring system across multiple categories:")
	for _, m := range methodology {
		p.line("- " + m)
	}
	p.line("")

	if !in.GeneratedAt.IsZero() {
		p.linef("Generated on %s", in.GeneratedAt.Format(time.RFC1123))
	}
	p.line("© Move vs Improve Assessment Tool")
	return p.err
}

type printer struct {
	w   io.Writer
	err error
}

func (p *printer) line(s string) {
	if p.err != nil {
		return
	}
	_, p.err = io.WriteString(p.w, s+"\n")
}

func (p *printer) linef(format string, args ...interface{}) {
	p.line(fmt.Sprintf(format, args...))
}

func (p *printer) section(title string) {
	p.line(title)
	p.line(strings.Repeat("-", ruleWidth))
}

func ordered(categories []scoring.Category) []scoring.Category {
	out := append([]scoring.Category(nil), categories...)
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].SortOrder != out[j].SortOrder {
			return out[i].SortOrder < out[j].SortOrder
		}
		return out[i].ID < out[j].ID
	})
	return out
}

func labelOf(c scoring.Category) string {
	if c.Label != "" {
		return c.Label
	}
	return c.Name
}

func unanswered(res *scoring.ScoreResult, categoryID string) bool {
	for _, id := range res.Metadata.UnansweredCategories {
		if id == categoryID {
			return true
		}
	}
	return false
}
