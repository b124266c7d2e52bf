package retrieval

import (
	"context"
	"errors"
	"fmt"
	"testing"
)

type mockEmbedder struct {
	vector []float32
	err    error
	calls  int
}

func (m *mockEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	m.calls++
	if m.err != nil {
		return nil, m.err
	}
	return m.vector, nil
}

type mockIndex struct {
	scored   []ScoredID
	queryErr error
	fetchErr error
	passages map[string]Passage
}

func (m *mockIndex) QueryNearest(ctx context.Context, vector []float32, topK int) ([]ScoredID, error) {
	if m.queryErr != nil {
		return nil, m.queryErr
	}
	return m.scored, nil
}

func (m *mockIndex) FetchPassage(ctx context.Context, passageID string) (Passage, error) {
	if m.fetchErr != nil {
		return Passage{}, m.fetchErr
	}
	p, ok := m.passages[passageID]
	if !ok {
		return Passage{}, fmt.Errorf("passage %s not found", passageID)
	}
	return p, nil
}

func passagesFor(ids ...string) map[string]Passage {
	out := make(map[string]Passage, len(ids))
	for _, id := range ids {
		out[id] = Passage{ID: id, SourceDocumentID: "doc_" + id, Text: "text " + id}
	}
	return out
}

func TestRetrieveOrdersByScoreDescending(t *testing.T) {
	index := &mockIndex{
		scored: []ScoredID{
			{PassageID: "a", Score: 0.3},
			{PassageID: "b", Score: 0.9},
			{PassageID: "c", Score: 0.7},
		},
		passages: passagesFor("a", "b", "c"),
	}
	r := NewRetriever(&mockEmbedder{vector: []float32{1}}, index)

	result, err := r.Retrieve(context.Background(), "query", 5)
	if err != nil {
		t.Fatalf("Retrieve: %v", err)
	}

	wantOrder := []string{"b", "c", "a"}
	if len(result.Hits) != len(wantOrder) {
		t.Fatalf("got %d hits, want %d", len(result.Hits), len(wantOrder))
	}
	for i, id := range wantOrder {
		if result.Hits[i].Passage.ID != id {
			t.Errorf("hit %d = %s, want %s", i, result.Hits[i].Passage.ID, id)
		}
	}
}

func TestRetrieveBreaksTiesByPassageID(t *testing.T) {
	index := &mockIndex{
		scored: []ScoredID{
			{PassageID: "z", Score: 0.8},
			{PassageID: "a", Score: 0.8},
			{PassageID: "m", Score: 0.8},
		},
		passages: passagesFor("a", "m", "z"),
	}
	r := NewRetriever(&mockEmbedder{vector: []float32{1}}, index)

	result, err := r.Retrieve(context.Background(), "query", 5)
	if err != nil {
		t.Fatalf("Retrieve: %v", err)
	}

	wantOrder := []string{"a", "m", "z"}
	for i, id := range wantOrder {
		if result.Hits[i].Passage.ID != id {
			t.Errorf("hit %d = %s, want %s", i, result.Hits[i].Passage.ID, id)
		}
	}
}

func TestRetrieveTruncatesToTopK(t *testing.T) {
	index := &mockIndex{
		scored: []ScoredID{
			{PassageID: "a", Score: 0.9},
			{PassageID: "b", Score: 0.8},
			{PassageID: "c", Score: 0.7},
			{PassageID: "d", Score: 0.6},
		},
		passages: passagesFor("a", "b", "c", "d"),
	}
	r := NewRetriever(&mockEmbedder{vector: []float32{1}}, index)

	result, err := r.Retrieve(context.Background(), "query", 2)
	if err != nil {
		t.Fatalf("Retrieve: %v", err)
	}
	if len(result.Hits) != 2 {
		t.Fatalf("got %d hits, want 2", len(result.Hits))
	}
	if result.Hits[0].Passage.ID != "a" || result.Hits[1].Passage.ID != "b" {
		t.Errorf("kept wrong hits: %s, %s", result.Hits[0].Passage.ID, result.Hits[1].Passage.ID)
	}
}

func TestRetrieveWrapsFailuresAsUnavailable(t *testing.T) {
	cases := []struct {
		name     string
		embedder *mockEmbedder
		index    *mockIndex
	}{
		{
			name:     "embedding failure",
			embedder: &mockEmbedder{err: errors.New("connection refused")},
			index:    &mockIndex{},
		},
		{
			name:     "index query failure",
			embedder: &mockEmbedder{vector: []float32{1}},
			index:    &mockIndex{queryErr: errors.New("connection refused")},
		},
		{
			name:     "passage fetch failure",
			embedder: &mockEmbedder{vector: []float32{1}},
			index: &mockIndex{
				scored:   []ScoredID{{PassageID: "a", Score: 0.9}},
				fetchErr: errors.New("connection refused"),
			},
		},
	}

	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			r := NewRetriever(c.embedder, c.index)
			_, err := r.Retrieve(context.Background(), "query", 5)
			if !errors.Is(err, ErrUnavailable) {
				t.Errorf("err = %v, want ErrUnavailable", err)
			}
		})
	}
}
