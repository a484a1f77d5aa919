package scoring

import "math"

type LeanDirection string

const (
	DirectionImprove LeanDirection = "Improve"
	DirectionMove    LeanDirection = "Move"
	DirectionNeutral LeanDirection = "Neutral"
)

// Lean is the direction a single category pulls in, with its margin.
type Lean struct {
	Direction LeanDirection `json:"direction"`
	Margin    float64       `json:"margin"`
}

// LeanOf compares the two poles of one category score. Exact ties are
// Neutral. Both the engine metadata and the report renderer go through here.
func LeanOf(improve, move float64) Lean {
	l := Lean{Direction: DirectionNeutral, Margin: positiveZero(math.Abs(improve - move))}
	switch {
	case improve > move:
		l.Direction = DirectionImprove
	case move > improve:
		l.Direction = DirectionMove
	}
	return l
}
