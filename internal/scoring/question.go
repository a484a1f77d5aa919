package scoring

// QuestionScore is one question's pull towards each pole. Skip is set for
// questions that were not answered and contribute nothing.
type QuestionScore struct {
	QuestionID string
	CategoryID string
	Improve    float64
	Move       float64
	Skip       bool
}

// ScoreQuestion weights a normalized answer. ImproveWeight and MoveWeight are
// applied independently of each other.
func ScoreQuestion(n Normalized, s QuestionScoring) QuestionScore {
	qs := QuestionScore{QuestionID: s.QuestionID}
	if !n.Answered {
		qs.Skip = true
		return qs
	}
	qs.Improve = positiveZero(n.Value * s.ImproveWeight * s.Multiplier)
	qs.Move = positiveZero(n.Value * s.MoveWeight * s.Multiplier)
	return qs
}
