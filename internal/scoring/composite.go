package scoring

import (
	apperrors "move-improve-workers/internal/common/errors"
)

// Composite holds the weighted means of the category scores.
type Composite struct {
	Improve float64 `json:"improveComposite"`
	Move    float64 `json:"moveComposite"`
}

// Combine folds category scores into the two composites. Each category
// weighs 1 under equal weighting, its DefaultWeight otherwise. The result is
// a weighted mean, so it stays on the category scale.
func Combine(scores map[string]CategoryScore, categories []Category, cfg Config) (Composite, error) {
	var improve, move, total float64
	for _, c := range categories {
		w := c.DefaultWeight
		if cfg.EqualWeighting {
			w = 1
		}
		s := scores[c.ID]
		improve += w * s.Improve
		move += w * s.Move
		total += w
	}

	if total == 0 {
		return Composite{}, apperrors.NewEmptyConfigurationError("total category weight is zero")
	}
	return Composite{
		Improve: positiveZero(improve / total),
		Move:    positiveZero(move / total),
	}, nil
}
