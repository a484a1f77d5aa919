package scoring

import (
	"fmt"

	apperrors "move-improve-workers/internal/common/errors"
)

// Normalized is a question's answer mapped onto [-1, 1], already in its final
// polarity. The zero value is NotAnswered.
type Normalized struct {
	Value    float64
	Answered bool
}

// NotAnswered marks an N/A or missing answer.
var NotAnswered = Normalized{}

func answered(v float64) Normalized {
	return Normalized{Value: v, Answered: true}
}

// Normalize maps one raw answer onto [-1, 1]. SCALE answers are stretched
// linearly from [ScaleMin, ScaleMax], YESNO answers map yes to 1 and no to -1.
// Reverse scoring is applied last.
func Normalize(q Question, s QuestionScoring, v AnswerValue) (Normalized, error) {
	if v.IsNA() {
		if !q.AllowNA {
			return NotAnswered, apperrors.NewNotAllowedError("question does not allow N/A").
				WithMetadata("questionId", q.ID)
		}
		return NotAnswered, nil
	}

	var base float64
	switch q.Type {
	case QuestionTypeScale:
		n, ok := v.Number()
		if !ok {
			return NotAnswered, rangeError(q, fmt.Sprintf("SCALE question expects a number, got %s", v))
		}
		if q.ScaleMin == q.ScaleMax {
			return NotAnswered, rangeError(q, fmt.Sprintf("degenerate scale [%d, %d]", q.ScaleMin, q.ScaleMax))
		}
		if !isFinite(n) {
			return NotAnswered, rangeError(q, "answer is not a finite number")
		}
		lo, hi := float64(q.ScaleMin), float64(q.ScaleMax)
		if n < lo || n > hi {
			return NotAnswered, rangeError(q, fmt.Sprintf("answer %g outside [%d, %d]", n, q.ScaleMin, q.ScaleMax))
		}
		base = 2*(n-lo)/(hi-lo) - 1

	case QuestionTypeYesNo:
		b, ok := v.Bool()
		if !ok {
			return NotAnswered, rangeError(q, fmt.Sprintf("YESNO question expects a boolean, got %s", v))
		}
		base = -1
		if b {
			base = 1
		}

	default:
		return NotAnswered, apperrors.NewInvalidConfigError("unknown question type "+string(q.Type)).
			WithMetadata("questionId", q.ID)
	}

	if s.ReverseScored {
		base = -base
	}
	return answered(positiveZero(base)), nil
}

func rangeError(q Question, details string) *apperrors.StandardError {
	return apperrors.NewInvalidRangeError(details).WithMetadata("questionId", q.ID)
}

// positiveZero folds -0 into 0 so results serialize identically.
func positiveZero(v float64) float64 {
	if v == 0 {
		return 0
	}
	return v
}
