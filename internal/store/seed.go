package store

import (
	"context"
	"database/sql"
	"encoding/json"

	"move-improve-workers/internal/common/errors"
	"move-improve-workers/internal/scoring"
)

const (
	querySeedVersion = `INSERT INTO questionnaire_versions (id, version, is_active, description)
		VALUES ($1, $2, $3, $4) ON CONFLICT (id) DO NOTHING`

	querySeedCategory = `INSERT INTO categories (id, version_id, name, label, description, default_weight, sort_order)
		VALUES ($1, $2, $3, $4, $5, $6, $7) ON CONFLICT (id) DO NOTHING`

	querySeedQuestion = `INSERT INTO questions (id, version_id, category_id, text, type, scale_min, scale_max, scale_labels, allow_na, sort_order)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10) ON CONFLICT (id) DO NOTHING`

	querySeedScoring = `INSERT INTO question_scorings (question_id, improve_weight, move_weight, multiplier, reverse_scored)
		VALUES ($1, $2, $3, $4, $5) ON CONFLICT (question_id) DO NOTHING`

	querySeedConfig = `INSERT INTO scoring_configs (version_id, equal_weighting, neutral_zone_min, neutral_zone_max,
		slight_lean_threshold, moderate_lean_threshold, strong_lean_threshold, na_handling)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8) ON CONFLICT (version_id) DO NOTHING`

	queryInsertSession = `INSERT INTO response_sessions (id, version_id) VALUES ($1, $2)`

	queryInsertAnswer = `INSERT INTO answers (session_id, question_id, value) VALUES ($1, $2, $3)`
)

// SeedVersion writes the questionnaire records of b in one transaction.
// Records that already exist are left untouched, so seeding twice is a no-op.
// Answers in b are ignored.
func (s *PostgresStore) SeedVersion(ctx context.Context, b *scoring.Bundle) error {
	versionID := b.Version.ID
	return s.inTx(ctx, "seed version", func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx, querySeedVersion,
			versionID, b.Version.Version, b.Version.IsActive, b.Version.Description); err != nil {
			return err
		}
		for _, c := range b.Categories {
			if _, err := tx.ExecContext(ctx, querySeedCategory,
				c.ID, versionID, c.Name, c.Label, c.Description, c.DefaultWeight, c.SortOrder); err != nil {
				return err
			}
		}
		for _, q := range b.Questions {
			labels, err := scaleLabels(q.ScaleLabels)
			if err != nil {
				return err
			}
			if _, err := tx.ExecContext(ctx, querySeedQuestion,
				q.ID, versionID, q.CategoryID, q.Text, string(q.Type),
				nullableScale(q), nullableScaleMax(q), labels, q.AllowNA, q.SortOrder); err != nil {
				return err
			}
		}
		for _, sc := range b.Scorings {
			if _, err := tx.ExecContext(ctx, querySeedScoring,
				sc.QuestionID, sc.ImproveWeight, sc.MoveWeight, sc.Multiplier, sc.ReverseScored); err != nil {
				return err
			}
		}
		c := b.Config
		_, err := tx.ExecContext(ctx, querySeedConfig,
			versionID, c.EqualWeighting, c.NeutralZoneMin, c.NeutralZoneMax,
			c.SlightLeanThreshold, c.ModerateLeanThreshold, c.StrongLeanThreshold, string(naPolicyOf(c)))
		return err
	})
}

// CreateSession opens a response session on versionID with its answers.
func (s *PostgresStore) CreateSession(ctx context.Context, sessionID, versionID string, answers []scoring.Answer) error {
	return s.inTx(ctx, "create session", func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx, queryInsertSession, sessionID, versionID); err != nil {
			return err
		}
		for _, a := range answers {
			value, err := json.Marshal(a.Value)
			if err != nil {
				return err
			}
			if _, err := tx.ExecContext(ctx, queryInsertAnswer, sessionID, a.QuestionID, value); err != nil {
				return err
			}
		}
		return nil
	})
}

func (s *PostgresStore) inTx(ctx context.Context, op string, fn func(*sql.Tx) error) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return errors.NewDatabaseConnectionFailedError(err)
	}
	if err := fn(tx); err != nil {
		_ = tx.Rollback()
		return queryError(ctx, op, err)
	}
	if err := tx.Commit(); err != nil {
		return queryError(ctx, op, err)
	}
	return nil
}

func scaleLabels(labels map[string]string) (interface{}, error) {
	if len(labels) == 0 {
		return nil, nil
	}
	data, err := json.Marshal(labels)
	if err != nil {
		return nil, err
	}
	return data, nil
}

// YESNO questions carry no scale.
func nullableScale(q scoring.Question) interface{} {
	if q.Type != scoring.QuestionTypeScale {
		return nil
	}
	return q.ScaleMin
}

func nullableScaleMax(q scoring.Question) interface{} {
	if q.Type != scoring.QuestionTypeScale {
		return nil
	}
	return q.ScaleMax
}

func naPolicyOf(c scoring.Config) scoring.NAHandling {
	if c.NAHandling == "" {
		return scoring.NAExcludeFromDenominator
	}
	return c.NAHandling
}
