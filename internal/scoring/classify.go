package scoring

import "math"

type Classification struct {
	DecisionIndex float64
	Decision      Decision
	LeanStrength  LeanStrength
}

// Classify derives the decision index and maps it onto a decision and a lean
// tier. The neutral zone is inclusive on both ends. Lean strength is read from
// |index| alone, so an Unclear decision still carries one. cfg is assumed to
// have passed Validate.
func Classify(c Composite, cfg Config) Classification {
	index := positiveZero(c.Improve - c.Move)

	decision := DecisionMove
	switch {
	case index >= cfg.NeutralZoneMin && index <= cfg.NeutralZoneMax:
		decision = DecisionUnclear
	case index > 0:
		decision = DecisionImprove
	}

	return Classification{
		DecisionIndex: index,
		Decision:      decision,
		LeanStrength:  strengthOf(math.Abs(index), cfg),
	}
}

func strengthOf(magnitude float64, cfg Config) LeanStrength {
	switch {
	case magnitude >= cfg.StrongLeanThreshold:
		return LeanStrong
	case magnitude >= cfg.ModerateLeanThreshold:
		return LeanModerate
	case magnitude >= cfg.SlightLeanThreshold:
		return LeanSlight
	default:
		return LeanNone
	}
}
