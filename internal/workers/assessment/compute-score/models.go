// internal/workers/assessment/compute-score/models.go
package computescore

import "move-improve-workers/internal/scoring"

// Input carries the session to score. Bundle is optional; without it the
// bundle is loaded from the record store.
type Input struct {
	SessionID string          `json:"sessionId"`
	Bundle    *scoring.Bundle `json:"bundle,omitempty"`
}

type Output struct {
	SessionID    string               `json:"sessionId"`
	ResultID     string               `json:"resultId"`
	Decision     scoring.Decision     `json:"decision"`
	LeanStrength scoring.LeanStrength `json:"leanStrength"`
	Result       *scoring.ScoreResult `json:"result"`
	Cached       bool                 `json:"cached"`
}
