// Package assembler turns gated retrieval hits into a bounded context block.
package assembler

import (
	"github.com/merchant-assistant/backend/internal/retrieval"
)

type Assembler struct {
	counter TokenCounter
}

func New(counter TokenCounter) *Assembler {
	return &Assembler{counter: counter}
}

// Assemble deduplicates passages by source document (keeping the best-scoring
// occurrence), then greedily includes passages in descending score order until
// the next one would blow the token budget. Passages are never split; one that
// does not fit whole is skipped so a smaller later passage can still be used.
// An ungrounded verdict yields an empty block, which the prompt builder treats
// as the signal for the no-grounding template.
func (a *Assembler) Assemble(verdict retrieval.Verdict, tokenBudget int) []retrieval.Hit {
	if !verdict.Grounded || tokenBudget <= 0 {
		return nil
	}

	// Dedupe first. Hits arrive sorted by descending score, so the first
	// passage seen for a source document is also its highest-scoring one.
	seen := make(map[string]bool, len(verdict.Passages))
	deduped := make([]retrieval.Hit, 0, len(verdict.Passages))
	for _, hit := range verdict.Passages {
		if seen[hit.Passage.SourceDocumentID] {
			continue
		}
		seen[hit.Passage.SourceDocumentID] = true
		deduped = append(deduped, hit)
	}

	var block []retrieval.Hit
	used := 0
	for _, hit := range deduped {
		cost := a.counter.Count(hit.Passage.Text)
		if used+cost > tokenBudget {
			continue
		}
		block = append(block, hit)
		used += cost
	}

	return block
}
