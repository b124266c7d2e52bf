package retrieval

import "testing"

func hit(id string, score float64) Hit {
	return Hit{Passage: Passage{ID: id, SourceDocumentID: "doc_" + id}, Score: score}
}

func TestGateGroundedAboveThreshold(t *testing.T) {
	result := Result{Hits: []Hit{hit("a", 0.9), hit("b", 0.6), hit("c", 0.3)}}

	verdict := Gate(result, 0.5)
	if !verdict.Grounded {
		t.Fatal("verdict ungrounded, want grounded")
	}
	if len(verdict.Passages) != 2 {
		t.Fatalf("kept %d passages, want 2", len(verdict.Passages))
	}
	for _, h := range verdict.Passages {
		if h.Score < 0.5 {
			t.Errorf("passage %s with score %v kept below threshold", h.Passage.ID, h.Score)
		}
	}
}

func TestGateBoundaryScoreIsGrounded(t *testing.T) {
	result := Result{Hits: []Hit{hit("a", 0.5)}}

	verdict := Gate(result, 0.5)
	if !verdict.Grounded {
		t.Error("score equal to threshold must be grounded")
	}
	if len(verdict.Passages) != 1 {
		t.Errorf("kept %d passages, want 1", len(verdict.Passages))
	}
}

func TestGateUngroundedBelowThreshold(t *testing.T) {
	result := Result{Hits: []Hit{hit("a", 0.49), hit("b", 0.2)}}

	verdict := Gate(result, 0.5)
	if verdict.Grounded {
		t.Error("verdict grounded, want ungrounded")
	}
	if len(verdict.Passages) != 0 {
		t.Errorf("ungrounded verdict carries %d passages, want 0", len(verdict.Passages))
	}
}

func TestGateEmptyResultUngrounded(t *testing.T) {
	verdict := Gate(Result{}, 0.5)
	if verdict.Grounded {
		t.Error("empty result must be ungrounded")
	}
}
