// Package store is the record store and result cache around the scoring
// engine. The engine never calls it; workers assemble a Bundle here, score it
// and hand the result back for persistence.
package store

import (
	"context"
	"time"

	"github.com/google/uuid"

	"move-improve-workers/internal/scoring"
)

// DefaultVersionLimit caps ListVersions when no limit is given.
const DefaultVersionLimit = 20

// StoredResult is a persisted ScoreResult. One exists per session and it is
// never updated.
type StoredResult struct {
	ID        uuid.UUID            `json:"id"`
	SessionID string               `json:"sessionId"`
	VersionID string               `json:"versionId"`
	Result    *scoring.ScoreResult `json:"result"`
	CreatedAt time.Time            `json:"createdAt"`
}

type Store interface {
	// LoadBundle assembles the engine input for a session: its version's
	// categories, questions, scorings and config plus the session's answers.
	LoadBundle(ctx context.Context, sessionID string) (*scoring.Bundle, error)
	// SaveResult persists res for sessionID. A second save for the same
	// session fails with RESULT_ALREADY_EXISTS.
	SaveResult(ctx context.Context, sessionID string, res *scoring.ScoreResult) (*StoredResult, error)
	GetResult(ctx context.Context, sessionID string) (*StoredResult, error)
	// SessionVersion returns the questionnaire version a session was opened
	// against.
	SessionVersion(ctx context.Context, sessionID string) (string, error)
	Categories(ctx context.Context, versionID string) ([]scoring.Category, error)
	// ListVersions returns versions newest first. limit <= 0 means
	// DefaultVersionLimit.
	ListVersions(ctx context.Context, limit int) ([]scoring.Version, error)
	ActiveVersion(ctx context.Context) (*scoring.Version, error)
}

// ResultCache memoizes stored results by session id. Get returns (nil, nil) on
// a miss.
type ResultCache interface {
	Get(ctx context.Context, sessionID string) (*StoredResult, error)
	Set(ctx context.Context, res *StoredResult) error
}
