package scoring

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAnswerValue_UnmarshalJSON(t *testing.T) {
	tests := []struct {
		name     string
		raw      string
		wantKind AnswerKind
		wantNum  float64
		wantBool bool
		wantErr  bool
	}{
		{name: "integer", raw: `7`, wantKind: AnswerKindNumber, wantNum: 7},
		{name: "fraction", raw: `2.5`, wantKind: AnswerKindNumber, wantNum: 2.5},
		{name: "yes", raw: `true`, wantKind: AnswerKindBool, wantBool: true},
		{name: "no", raw: `false`, wantKind: AnswerKindBool},
		{name: "N/A sentinel", raw: `"N/A"`, wantKind: AnswerKindNA},
		{name: "NA lower case", raw: `"na"`, wantKind: AnswerKindNA},
		{name: "null", raw: `null`, wantKind: AnswerKindNone},
		{name: "other string", raw: `"seven"`, wantErr: true},
		{name: "object", raw: `{"v":1}`, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var v AnswerValue
			err := json.Unmarshal([]byte(tt.raw), &v)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantKind, v.Kind())

			if n, ok := v.Number(); ok {
				assert.Equal(t, tt.wantNum, n)
			}
			if b, ok := v.Bool(); ok {
				assert.Equal(t, tt.wantBool, b)
			}
		})
	}
}

func TestAnswer_JSONShape(t *testing.T) {
	answers := []Answer{
		{QuestionID: "q1", Value: NumberAnswer(8)},
		{QuestionID: "q2", Value: NAAnswer()},
		{QuestionID: "q4", Value: BoolAnswer(true)},
	}

	data, err := json.Marshal(answers)
	require.NoError(t, err)
	assert.JSONEq(t,
		`[{"questionId":"q1","value":8},{"questionId":"q2","value":"N/A"},{"questionId":"q4","value":true}]`,
		string(data))
}
