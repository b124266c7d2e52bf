package retrieval

// Verdict is the relevance gate's decision: either the retrieved evidence is
// strong enough to ground an answer, or the pipeline must fall back to a
// no-grounding prompt.
type Verdict struct {
	Grounded bool
	// Passages holds only hits at or above the threshold used for this
	// verdict, still in descending score order. Empty when Ungrounded.
	Passages []Hit
}

// Gate admits a result when at least one hit scores at or above the
// threshold; the boundary itself counts as grounded. The threshold is fixed
// configuration, never adjusted at runtime: a generator fed weakly related
// passages will confidently hallucinate, and this is the check that stops it.
func Gate(result Result, threshold float64) Verdict {
	var passages []Hit
	for _, hit := range result.Hits {
		if hit.Score >= threshold {
			passages = append(passages, hit)
		}
	}

	if len(passages) == 0 {
		return Verdict{Grounded: false}
	}

	return Verdict{Grounded: true, Passages: passages}
}
