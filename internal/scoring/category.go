package scoring

// AggregateCategories averages question scores per category. Under
// NAExcludeFromDenominator skipped questions are left out of both the sum and
// the count. Every category gets an entry; one with nothing answered scores
// {0, 0} and is returned in unanswered, in the order categories were given.
func AggregateCategories(categories []Category, scored []QuestionScore, policy NAHandling) (map[string]CategoryScore, []string) {
	if policy == "" {
		policy = NAExcludeFromDenominator
	}
	type acc struct {
		improve, move float64
		n             int
	}
	sums := make(map[string]*acc, len(categories))
	for _, c := range categories {
		sums[c.ID] = &acc{}
	}

	for _, qs := range scored {
		a, ok := sums[qs.CategoryID]
		if !ok {
			continue
		}
		if qs.Skip && policy == NAExcludeFromDenominator {
			continue
		}
		a.improve += qs.Improve
		a.move += qs.Move
		a.n++
	}

	out := make(map[string]CategoryScore, len(categories))
	unanswered := make([]string, 0)
	for _, c := range categories {
		a := sums[c.ID]
		if a.n == 0 {
			out[c.ID] = CategoryScore{}
			unanswered = append(unanswered, c.ID)
			continue
		}
		out[c.ID] = CategoryScore{
			Improve: a.improve / float64(a.n),
			Move:    a.move / float64(a.n),
		}
	}
	return out, unanswered
}
