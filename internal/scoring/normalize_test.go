package scoring

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "move-improve-workers/internal/common/errors"
)

func scaleQuestion(min, max int, allowNA bool) Question {
	return Question{ID: "q", CategoryID: "c", Type: QuestionTypeScale, ScaleMin: min, ScaleMax: max, AllowNA: allowNA}
}

func TestNormalize_Scale(t *testing.T) {
	tests := []struct {
		name    string
		q       Question
		reverse bool
		value   float64
		want    float64
	}{
		{name: "min maps to -1", q: scaleQuestion(1, 10, false), value: 1, want: -1},
		{name: "max maps to 1", q: scaleQuestion(1, 10, false), value: 10, want: 1},
		{name: "reverse min maps to 1", q: scaleQuestion(1, 10, false), reverse: true, value: 1, want: 1},
		{name: "reverse max maps to -1", q: scaleQuestion(1, 10, false), reverse: true, value: 10, want: -1},
		{name: "midpoint of even span", q: scaleQuestion(0, 4, false), value: 2, want: 0},
		{name: "reverse midpoint stays positive zero", q: scaleQuestion(0, 4, false), reverse: true, value: 2, want: 0},
		{name: "quarter", q: scaleQuestion(0, 4, false), value: 1, want: -0.5},
		{name: "negative bounds", q: scaleQuestion(-5, 5, false), value: 5, want: 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			n, err := Normalize(tt.q, QuestionScoring{ReverseScored: tt.reverse}, NumberAnswer(tt.value))
			require.NoError(t, err)
			assert.True(t, n.Answered)
			assert.Equal(t, tt.want, n.Value)
		})
	}
}

func TestNormalize_YesNo(t *testing.T) {
	q := Question{ID: "q", Type: QuestionTypeYesNo}

	yes, err := Normalize(q, QuestionScoring{}, BoolAnswer(true))
	require.NoError(t, err)
	assert.Equal(t, 1.0, yes.Value)

	no, err := Normalize(q, QuestionScoring{}, BoolAnswer(false))
	require.NoError(t, err)
	assert.Equal(t, -1.0, no.Value)

	reversed, err := Normalize(q, QuestionScoring{ReverseScored: true}, BoolAnswer(true))
	require.NoError(t, err)
	assert.Equal(t, -1.0, reversed.Value)
}

func TestNormalize_NA(t *testing.T) {
	n, err := Normalize(scaleQuestion(1, 10, true), QuestionScoring{}, NAAnswer())
	require.NoError(t, err)
	assert.Equal(t, NotAnswered, n)

	_, err = Normalize(scaleQuestion(1, 10, false), QuestionScoring{}, NAAnswer())
	require.Error(t, err)
	assert.True(t, IsKind(err, apperrors.ErrCodeNotAllowed))
}

func TestNormalize_Errors(t *testing.T) {
	tests := []struct {
		name  string
		q     Question
		value AnswerValue
		code  apperrors.ErrorCode
	}{
		{name: "degenerate scale", q: scaleQuestion(5, 5, false), value: NumberAnswer(5), code: apperrors.ErrCodeInvalidRange},
		{name: "below min", q: scaleQuestion(1, 10, false), value: NumberAnswer(0), code: apperrors.ErrCodeInvalidRange},
		{name: "above max", q: scaleQuestion(1, 10, false), value: NumberAnswer(10.5), code: apperrors.ErrCodeInvalidRange},
		{name: "boolean for scale", q: scaleQuestion(1, 10, false), value: BoolAnswer(true), code: apperrors.ErrCodeInvalidRange},
		{name: "number for yes/no", q: Question{ID: "q", Type: QuestionTypeYesNo}, value: NumberAnswer(1), code: apperrors.ErrCodeInvalidRange},
		{name: "unknown type", q: Question{ID: "q", Type: "SLIDER"}, value: NumberAnswer(1), code: apperrors.ErrCodeInvalidConfig},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Normalize(tt.q, QuestionScoring{}, tt.value)
			require.Error(t, err)
			assert.Equal(t, tt.code, apperrors.CodeOf(err))
		})
	}
}
