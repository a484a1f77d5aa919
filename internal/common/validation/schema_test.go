package validation

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"move-improve-workers/internal/common/errors"
	"move-improve-workers/pkg/registry"
)

func TestValidateInput(t *testing.T) {
	schema := map[string]interface{}{
		"type":     "object",
		"required": []interface{}{"sessionId"},
		"properties": map[string]interface{}{
			"sessionId": map[string]interface{}{"type": "string", "minLength": 1},
		},
	}

	res, err := ValidateInput(map[string]interface{}{"sessionId": "s-1"}, schema)
	require.NoError(t, err)
	assert.True(t, res.Valid)

	res, err = ValidateInput(map[string]interface{}{}, schema)
	require.NoError(t, err)
	assert.False(t, res.Valid)
	require.NotEmpty(t, res.Errors)
	assert.Contains(t, res.GetErrorMessages()[0], "sessionId")
}

func TestSchemaValidator(t *testing.T) {
	v, err := NewSchemaValidator(registry.Default())
	require.NoError(t, err)

	tests := []struct {
		name     string
		taskType string
		vars     map[string]interface{}
		wantErr  bool
	}{
		{
			name:     "session only",
			taskType: registry.TaskComputeScore,
			vars:     map[string]interface{}{"sessionId": "s-1"},
		},
		{
			name:     "inline bundle",
			taskType: registry.TaskComputeScore,
			vars: map[string]interface{}{
				"sessionId": "s-1",
				"bundle": map[string]interface{}{
					"categories": []interface{}{},
					"questions":  []interface{}{},
					"scorings":   []interface{}{},
					"config":     map[string]interface{}{},
					"answers": []interface{}{
						map[string]interface{}{"questionId": "q1", "value": 7.0},
						map[string]interface{}{"questionId": "q2", "value": "N/A"},
						map[string]interface{}{"questionId": "q4", "value": true},
					},
				},
			},
		},
		{
			name:     "missing session",
			taskType: registry.TaskRenderReport,
			vars:     map[string]interface{}{},
			wantErr:  true,
		},
		{
			name:     "empty session",
			taskType: registry.TaskRenderReport,
			vars:     map[string]interface{}{"sessionId": ""},
			wantErr:  true,
		},
		{
			name:     "answer value of wrong shape",
			taskType: registry.TaskComputeScore,
			vars: map[string]interface{}{
				"sessionId": "s-1",
				"bundle": map[string]interface{}{
					"categories": []interface{}{},
					"questions":  []interface{}{},
					"scorings":   []interface{}{},
					"config":     map[string]interface{}{},
					"answers": []interface{}{
						map[string]interface{}{"questionId": "q1", "value": "seven"},
					},
				},
			},
			wantErr: true,
		},
		{
			name:     "unregistered task passes",
			taskType: "unknown",
			vars:     map[string]interface{}{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := v.Validate(tt.taskType, tt.vars)
			if tt.wantErr {
				require.Error(t, err)
				assert.True(t, errors.HasCode(err, errors.ErrCodeInputValidationFailed))
				return
			}
			assert.NoError(t, err)
		})
	}
}
