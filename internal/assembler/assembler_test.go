package assembler

import (
	"strings"
	"testing"

	"github.com/merchant-assistant/backend/internal/retrieval"
)

// wordCounter counts one token per whitespace-separated word, keeping test
// budgets easy to reason about.
type wordCounter struct{}

func (wordCounter) Count(text string) int {
	return len(strings.Fields(text))
}

func hit(id, sourceDoc, text string, score float64) retrieval.Hit {
	return retrieval.Hit{
		Passage: retrieval.Passage{ID: id, SourceDocumentID: sourceDoc, Text: text},
		Score:   score,
	}
}

func grounded(hits ...retrieval.Hit) retrieval.Verdict {
	return retrieval.Verdict{Grounded: true, Passages: hits}
}

func TestAssembleUngroundedIsEmpty(t *testing.T) {
	a := New(wordCounter{})

	block := a.Assemble(retrieval.Verdict{Grounded: false}, 100)
	if len(block) != 0 {
		t.Errorf("got %d passages for ungrounded verdict, want 0", len(block))
	}
}

func TestAssembleRespectsBudget(t *testing.T) {
	a := New(wordCounter{})
	verdict := grounded(
		hit("a", "doc1", "one two three four", 0.9),
		hit("b", "doc2", "five six seven", 0.8),
		hit("c", "doc3", "eight nine", 0.7),
	)

	block := a.Assemble(verdict, 7)

	total := 0
	for _, h := range block {
		total += len(strings.Fields(h.Passage.Text))
	}
	if total > 7 {
		t.Errorf("block uses %d tokens, budget is 7", total)
	}
	// a (4) fits, b (3) fits exactly, c cannot.
	if len(block) != 2 || block[0].Passage.ID != "a" || block[1].Passage.ID != "b" {
		t.Errorf("unexpected block composition: %+v", ids(block))
	}
}

func TestAssembleNeverSplitsPassages(t *testing.T) {
	a := New(wordCounter{})
	verdict := grounded(
		hit("a", "doc1", "one two three four five six", 0.9),
		hit("b", "doc2", "seven eight", 0.8),
	)

	// a is over budget whole, so it is skipped entirely and b still fits.
	block := a.Assemble(verdict, 3)
	if len(block) != 1 || block[0].Passage.ID != "b" {
		t.Errorf("unexpected block composition: %+v", ids(block))
	}
}

func TestAssembleDeduplicatesBySourceDocument(t *testing.T) {
	a := New(wordCounter{})
	verdict := grounded(
		hit("a", "doc1", "one two", 0.9),
		hit("b", "doc1", "three four", 0.8),
		hit("c", "doc2", "five six", 0.7),
	)

	block := a.Assemble(verdict, 100)
	if len(block) != 2 {
		t.Fatalf("got %d passages, want 2 after dedupe", len(block))
	}
	if block[0].Passage.ID != "a" {
		t.Errorf("kept %s for doc1, want highest-scoring a", block[0].Passage.ID)
	}
	if block[1].Passage.ID != "c" {
		t.Errorf("second passage = %s, want c", block[1].Passage.ID)
	}
}

func TestAssembleDedupeBeatsBudgetSkips(t *testing.T) {
	a := New(wordCounter{})
	// The doc1 representative is too big for the budget. Its lower-scoring
	// sibling from the same document must not sneak in.
	verdict := grounded(
		hit("a", "doc1", "one two three four five", 0.9),
		hit("b", "doc1", "six", 0.8),
		hit("c", "doc2", "seven eight", 0.7),
	)

	block := a.Assemble(verdict, 3)
	if len(block) != 1 || block[0].Passage.ID != "c" {
		t.Errorf("unexpected block composition: %+v", ids(block))
	}
}

func TestAssembleZeroBudget(t *testing.T) {
	a := New(wordCounter{})
	verdict := grounded(hit("a", "doc1", "one", 0.9))

	if block := a.Assemble(verdict, 0); len(block) != 0 {
		t.Errorf("got %d passages with zero budget, want 0", len(block))
	}
}

func ids(block []retrieval.Hit) []string {
	out := make([]string, len(block))
	for i, h := range block {
		out[i] = h.Passage.ID
	}
	return out
}
