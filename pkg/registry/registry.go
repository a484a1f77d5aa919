// pkg/registry/registry.go
package registry

import (
	"encoding/json"
	"fmt"
	"os"
)

const (
	TaskComputeScore = "compute-score"
	TaskRenderReport = "render-report"
)

// LoadRegistry reads a registry file. An empty path returns Default().
func LoadRegistry(path string) (*ActivityRegistry, error) {
	if path == "" {
		return Default(), nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var reg ActivityRegistry
	if err := json.Unmarshal(data, &reg); err != nil {
		return nil, fmt.Errorf("parse registry %s: %w", path, err)
	}
	return &reg, nil
}

// Lookup returns the activity registered for taskType.
func (r *ActivityRegistry) Lookup(taskType string) (*Activity, bool) {
	for i := range r.Activities {
		if r.Activities[i].TaskType == taskType {
			return &r.Activities[i], true
		}
	}
	return nil, false
}

// Default describes the assessment activities this service implements.
func Default() *ActivityRegistry {
	return &ActivityRegistry{
		Version:     "1.0.0",
		LastUpdated: "2026-10-01",
		Activities: []Activity{
			{
				ID:                   "assessment.compute-score",
				DisplayName:          "Compute Move vs Improve Score",
				Description:          "Scores a response session and stores its immutable result",
				Category:             "assessment",
				Version:              "1.0.0",
				TaskType:             TaskComputeScore,
				ImplementationStatus: "implemented",
				InputSchema: map[string]interface{}{
					"type":     "object",
					"required": []interface{}{"sessionId"},
					"properties": map[string]interface{}{
						"sessionId": map[string]interface{}{"type": "string", "minLength": 1},
						"bundle": map[string]interface{}{
							"type":     "object",
							"required": []interface{}{"categories", "questions", "scorings", "config"},
							"properties": map[string]interface{}{
								"categories": map[string]interface{}{"type": "array"},
								"questions":  map[string]interface{}{"type": "array"},
								"scorings":   map[string]interface{}{"type": "array"},
								"config":     map[string]interface{}{"type": "object"},
								"answers": map[string]interface{}{
									"type": "array",
									"items": map[string]interface{}{
										"type":     "object",
										"required": []interface{}{"questionId", "value"},
										"properties": map[string]interface{}{
											"questionId": map[string]interface{}{"type": "string"},
											"value": map[string]interface{}{
												"oneOf": []interface{}{
													map[string]interface{}{"type": "number"},
													map[string]interface{}{"type": "boolean"},
													map[string]interface{}{"type": "string", "enum": []interface{}{"N/A", "NA"}},
												},
											},
										},
									},
								},
							},
						},
					},
				},
				OutputSchema: map[string]interface{}{
					"type":     "object",
					"required": []interface{}{"sessionId", "resultId", "result"},
				},
				ErrorCodes: []string{
					"SCORING_INPUT_INVALID",
					"SCORING_CONFIG_INVALID",
					"SESSION_NOT_FOUND",
					"RESULT_ALREADY_EXISTS",
					"INPUT_VALIDATION_FAILED",
				},
				Timeout:   "10s",
				Retries:   3,
				Workflows: []string{"assessment"},
				Tags:      []string{"scoring", "decision"},
			},
			{
				ID:                   "assessment.render-report",
				DisplayName:          "Render Text Report",
				Description:          "Renders the plain-text report of a stored score result",
				Category:             "assessment",
				Version:              "1.0.0",
				TaskType:             TaskRenderReport,
				ImplementationStatus: "implemented",
				InputSchema: map[string]interface{}{
					"type":     "object",
					"required": []interface{}{"sessionId"},
					"properties": map[string]interface{}{
						"sessionId": map[string]interface{}{"type": "string", "minLength": 1},
					},
				},
				OutputSchema: map[string]interface{}{
					"type":     "object",
					"required": []interface{}{"sessionId", "format", "report"},
				},
				ErrorCodes: []string{"RESULT_NOT_FOUND", "INPUT_VALIDATION_FAILED", "INTERNAL_ERROR"},
				Timeout:    "10s",
				Retries:    3,
				Workflows:  []string{"assessment"},
				Tags:       []string{"report"},
			},
		},
	}
}
