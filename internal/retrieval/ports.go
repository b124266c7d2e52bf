// Package retrieval queries the external knowledge index and decides whether
// what came back is strong enough to ground an answer.
package retrieval

import (
	"context"
	"errors"
)

// ErrUnavailable reports that the knowledge index could not be reached. It is
// never swallowed inside this package; callers map it to an Ungrounded
// verdict at the pipeline boundary.
var ErrUnavailable = errors.New("knowledge index unavailable")

// Passage is one retrievable unit of knowledge-base text. Immutable; the
// embedding itself lives in the index and is referenced by ID only.
type Passage struct {
	ID               string
	SourceDocumentID string
	Title            string
	Text             string
	Language         string
	Product          string
}

// Hit pairs a passage with its similarity score for one query. Scores are
// cosine similarity in [0,1]; higher is more relevant.
type Hit struct {
	Passage Passage
	Score   float64
}

// Result is the ordered outcome of one retrieval, descending by score.
type Result struct {
	Hits []Hit
}

// ScoredID is what the index's nearest-neighbour query returns before
// passages are fetched.
type ScoredID struct {
	PassageID string
	Score     float64
}

// Embedder turns text into a query vector. Implemented by the LLM client.
type Embedder interface {
	Embed(ctx context.Context, text string) ([]float32, error)
}

// Index is the external vector knowledge base. Assumed pre-populated; the
// serving pipeline only reads from it.
type Index interface {
	QueryNearest(ctx context.Context, vector []float32, topK int) ([]ScoredID, error)
	FetchPassage(ctx context.Context, passageID string) (Passage, error)
}
