package store

import (
	"context"
	"database/sql"
	_ "embed"
	"encoding/json"
	stderrors "errors"
	"time"

	"github.com/google/uuid"

	"move-improve-workers/internal/common/errors"
	"move-improve-workers/internal/scoring"
)

//go:embed schema.sql
var schemaSQL string

const (
	querySessionVersion = `SELECT version_id FROM response_sessions WHERE id = $1`

	queryVersionByID = `SELECT id, version, is_active, COALESCE(description, '')
		FROM questionnaire_versions WHERE id = $1`

	queryListVersions = `SELECT id, version, is_active, COALESCE(description, '')
		FROM questionnaire_versions ORDER BY version DESC LIMIT $1`

	queryActiveVersion = `SELECT id, version, is_active, COALESCE(description, '')
		FROM questionnaire_versions WHERE is_active ORDER BY version DESC LIMIT 1`

	queryCategories = `SELECT id, version_id, name, label, COALESCE(description, ''), default_weight, sort_order
		FROM categories WHERE version_id = $1 ORDER BY sort_order, id`

	queryQuestions = `SELECT id, version_id, category_id, text, type,
		COALESCE(scale_min, 0), COALESCE(scale_max, 0), scale_labels, allow_na, sort_order
		FROM questions WHERE version_id = $1 ORDER BY sort_order, id`

	queryScorings = `SELECT s.question_id, s.improve_weight, s.move_weight, s.multiplier, s.reverse_scored
		FROM question_scorings s JOIN questions q ON q.id = s.question_id
		WHERE q.version_id = $1 ORDER BY q.sort_order, q.id`

	queryScoringConfig = `SELECT version_id, equal_weighting, neutral_zone_min, neutral_zone_max,
		slight_lean_threshold, moderate_lean_threshold, strong_lean_threshold, na_handling
		FROM scoring_configs WHERE version_id = $1`

	queryAnswers = `SELECT question_id, value FROM answers WHERE session_id = $1 ORDER BY question_id`

	queryInsertResult = `INSERT INTO score_results (id, session_id, version_id, result, created_at)
		VALUES ($1, $2, $3, $4, $5) ON CONFLICT (session_id) DO NOTHING`

	queryResultBySession = `SELECT id, session_id, version_id, result, created_at
		FROM score_results WHERE session_id = $1`
)

// PostgresStore implements Store on the questionnaire tables in schema.sql.
type PostgresStore struct {
	db    *sql.DB
	now   func() time.Time
	newID func() uuid.UUID
}

func NewPostgresStore(db *sql.DB) *PostgresStore {
	return &PostgresStore{
		db:    db,
		now:   func() time.Time { return time.Now().UTC() },
		newID: uuid.New,
	}
}

// Migrate creates any missing tables.
func (s *PostgresStore) Migrate(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, schemaSQL); err != nil {
		return queryError(ctx, "migrate", err)
	}
	return nil
}

func (s *PostgresStore) LoadBundle(ctx context.Context, sessionID string) (*scoring.Bundle, error) {
	versionID, err := s.SessionVersion(ctx, sessionID)
	if err != nil {
		return nil, err
	}

	version, err := s.scanVersion(ctx, s.db.QueryRowContext(ctx, queryVersionByID, versionID))
	if err != nil {
		if errors.HasCode(err, errors.ErrCodeVersionNotFound) {
			return nil, errors.NewVersionNotFoundError("versionId: " + versionID)
		}
		return nil, err
	}

	b := &scoring.Bundle{Version: *version}
	if b.Categories, err = s.Categories(ctx, versionID); err != nil {
		return nil, err
	}
	if b.Questions, err = s.questions(ctx, versionID); err != nil {
		return nil, err
	}
	if b.Scorings, err = s.scorings(ctx, versionID); err != nil {
		return nil, err
	}
	if b.Config, err = s.scoringConfig(ctx, versionID); err != nil {
		return nil, err
	}
	if b.Answers, err = s.answers(ctx, sessionID); err != nil {
		return nil, err
	}
	return b, nil
}

func (s *PostgresStore) SessionVersion(ctx context.Context, sessionID string) (string, error) {
	var versionID string
	err := s.db.QueryRowContext(ctx, querySessionVersion, sessionID).Scan(&versionID)
	if stderrors.Is(err, sql.ErrNoRows) {
		return "", errors.NewSessionNotFoundError(sessionID)
	}
	if err != nil {
		return "", queryError(ctx, "session", err)
	}
	return versionID, nil
}

func (s *PostgresStore) Categories(ctx context.Context, versionID string) ([]scoring.Category, error) {
	rows, err := s.db.QueryContext(ctx, queryCategories, versionID)
	if err != nil {
		return nil, queryError(ctx, "categories", err)
	}
	defer rows.Close()

	var out []scoring.Category
	for rows.Next() {
		var c scoring.Category
		if err := rows.Scan(&c.ID, &c.VersionID, &c.Name, &c.Label, &c.Description, &c.DefaultWeight, &c.SortOrder); err != nil {
			return nil, queryError(ctx, "categories", err)
		}
		out = append(out, c)
	}
	if err := rows.Err(); err != nil {
		return nil, queryError(ctx, "categories", err)
	}
	return out, nil
}

func (s *PostgresStore) questions(ctx context.Context, versionID string) ([]scoring.Question, error) {
	rows, err := s.db.QueryContext(ctx, queryQuestions, versionID)
	if err != nil {
		return nil, queryError(ctx, "questions", err)
	}
	defer rows.Close()

	var out []scoring.Question
	for rows.Next() {
		var (
			q      scoring.Question
			qType  string
			labels []byte
		)
		if err := rows.Scan(&q.ID, &q.VersionID, &q.CategoryID, &q.Text, &qType,
			&q.ScaleMin, &q.ScaleMax, &labels, &q.AllowNA, &q.SortOrder); err != nil {
			return nil, queryError(ctx, "questions", err)
		}
		q.Type = scoring.QuestionType(qType)
		if len(labels) > 0 {
			if err := json.Unmarshal(labels, &q.ScaleLabels); err != nil {
				return nil, errors.NewParseError(err).WithMetadata("questionId", q.ID)
			}
		}
		out = append(out, q)
	}
	if err := rows.Err(); err != nil {
		return nil, queryError(ctx, "questions", err)
	}
	return out, nil
}

func (s *PostgresStore) scorings(ctx context.Context, versionID string) ([]scoring.QuestionScoring, error) {
	rows, err := s.db.QueryContext(ctx, queryScorings, versionID)
	if err != nil {
		return nil, queryError(ctx, "scorings", err)
	}
	defer rows.Close()

	var out []scoring.QuestionScoring
	for rows.Next() {
		var qs scoring.QuestionScoring
		if err := rows.Scan(&qs.QuestionID, &qs.ImproveWeight, &qs.MoveWeight, &qs.Multiplier, &qs.ReverseScored); err != nil {
			return nil, queryError(ctx, "scorings", err)
		}
		out = append(out, qs)
	}
	if err := rows.Err(); err != nil {
		return nil, queryError(ctx, "scorings", err)
	}
	return out, nil
}

func (s *PostgresStore) scoringConfig(ctx context.Context, versionID string) (scoring.Config, error) {
	var (
		cfg scoring.Config
		na  string
	)
	err := s.db.QueryRowContext(ctx, queryScoringConfig, versionID).Scan(
		&cfg.VersionID, &cfg.EqualWeighting, &cfg.NeutralZoneMin, &cfg.NeutralZoneMax,
		&cfg.SlightLeanThreshold, &cfg.ModerateLeanThreshold, &cfg.StrongLeanThreshold, &na)
	if stderrors.Is(err, sql.ErrNoRows) {
		return cfg, errors.NewVersionNotFoundError("no scoring config for versionId: " + versionID)
	}
	if err != nil {
		return cfg, queryError(ctx, "scoring config", err)
	}
	cfg.NAHandling = scoring.NAHandling(na)
	return cfg, nil
}

func (s *PostgresStore) answers(ctx context.Context, sessionID string) ([]scoring.Answer, error) {
	rows, err := s.db.QueryContext(ctx, queryAnswers, sessionID)
	if err != nil {
		return nil, queryError(ctx, "answers", err)
	}
	defer rows.Close()

	var out []scoring.Answer
	for rows.Next() {
		var (
			a   scoring.Answer
			raw []byte
		)
		if err := rows.Scan(&a.QuestionID, &raw); err != nil {
			return nil, queryError(ctx, "answers", err)
		}
		if err := json.Unmarshal(raw, &a.Value); err != nil {
			return nil, errors.NewParseError(err).WithMetadata("questionId", a.QuestionID)
		}
		out = append(out, a)
	}
	if err := rows.Err(); err != nil {
		return nil, queryError(ctx, "answers", err)
	}
	return out, nil
}

func (s *PostgresStore) SaveResult(ctx context.Context, sessionID string, res *scoring.ScoreResult) (*StoredResult, error) {
	payload, err := json.Marshal(res)
	if err != nil {
		return nil, errors.NewParseError(err)
	}

	stored := &StoredResult{
		ID:        s.newID(),
		SessionID: sessionID,
		VersionID: res.Metadata.VersionID,
		Result:    res,
		CreatedAt: s.now(),
	}

	out, err := s.db.ExecContext(ctx, queryInsertResult,
		stored.ID, stored.SessionID, stored.VersionID, payload, stored.CreatedAt)
	if err != nil {
		return nil, queryError(ctx, "insert result", err)
	}
	n, err := out.RowsAffected()
	if err != nil {
		return nil, queryError(ctx, "insert result", err)
	}
	if n == 0 {
		return nil, errors.NewResultAlreadyExistsError(sessionID)
	}
	return stored, nil
}

func (s *PostgresStore) GetResult(ctx context.Context, sessionID string) (*StoredResult, error) {
	var (
		stored  StoredResult
		payload []byte
	)
	err := s.db.QueryRowContext(ctx, queryResultBySession, sessionID).Scan(
		&stored.ID, &stored.SessionID, &stored.VersionID, &payload, &stored.CreatedAt)
	if stderrors.Is(err, sql.ErrNoRows) {
		return nil, errors.NewResultNotFoundError(sessionID)
	}
	if err != nil {
		return nil, queryError(ctx, "result", err)
	}

	if err := json.Unmarshal(payload, &stored.Result); err != nil {
		return nil, errors.NewParseError(err).WithMetadata("sessionId", sessionID)
	}
	return &stored, nil
}

func (s *PostgresStore) ListVersions(ctx context.Context, limit int) ([]scoring.Version, error) {
	if limit <= 0 {
		limit = DefaultVersionLimit
	}
	rows, err := s.db.QueryContext(ctx, queryListVersions, limit)
	if err != nil {
		return nil, queryError(ctx, "versions", err)
	}
	defer rows.Close()

	var out []scoring.Version
	for rows.Next() {
		var v scoring.Version
		if err := rows.Scan(&v.ID, &v.Version, &v.IsActive, &v.Description); err != nil {
			return nil, queryError(ctx, "versions", err)
		}
		out = append(out, v)
	}
	if err := rows.Err(); err != nil {
		return nil, queryError(ctx, "versions", err)
	}
	return out, nil
}

func (s *PostgresStore) ActiveVersion(ctx context.Context) (*scoring.Version, error) {
	return s.scanVersion(ctx, s.db.QueryRowContext(ctx, queryActiveVersion))
}

func (s *PostgresStore) scanVersion(ctx context.Context, row *sql.Row) (*scoring.Version, error) {
	var v scoring.Version
	err := row.Scan(&v.ID, &v.Version, &v.IsActive, &v.Description)
	if stderrors.Is(err, sql.ErrNoRows) {
		return nil, errors.NewVersionNotFoundError("no matching questionnaire version")
	}
	if err != nil {
		return nil, queryError(ctx, "version", err)
	}
	return &v, nil
}

// queryError classifies a driver error as a timeout or a failed query.
func queryError(ctx context.Context, query string, err error) error {
	if stderrors.Is(err, context.DeadlineExceeded) || stderrors.Is(ctx.Err(), context.DeadlineExceeded) {
		return errors.NewQueryTimeoutError(query)
	}
	return errors.NewQueryExecutionFailedError(query, err)
}

var _ Store = (*PostgresStore)(nil)
