// internal/workers/assessment/render-report/models.go
package renderreport

import "move-improve-workers/internal/scoring"

const FormatText = "text"

type Input struct {
	SessionID string `json:"sessionId"`
}

type Output struct {
	SessionID string           `json:"sessionId"`
	Format    string           `json:"format"`
	Report    string           `json:"report"`
	Decision  scoring.Decision `json:"decision"`
}
