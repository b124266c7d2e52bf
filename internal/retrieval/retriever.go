package retrieval

import (
	"context"
	"fmt"
	"sort"

	"go.uber.org/zap"

	"github.com/merchant-assistant/backend/pkg/logger"
)

type Retriever struct {
	embedder Embedder
	index    Index
}

func NewRetriever(embedder Embedder, index Index) *Retriever {
	return &Retriever{
		embedder: embedder,
		index:    index,
	}
}

// Retrieve embeds the canonical query and returns up to topK passages sorted
// by descending score, ties broken by ascending passage id so the ordering is
// reproducible. Index failures surface as ErrUnavailable.
func (r *Retriever) Retrieve(ctx context.Context, canonicalQuery string, topK int) (Result, error) {
	vector, err := r.embedder.Embed(ctx, canonicalQuery)
	if err != nil {
		return Result{}, fmt.Errorf("%w: embedding query: %s", ErrUnavailable, err)
	}

	scored, err := r.index.QueryNearest(ctx, vector, topK)
	if err != nil {
		return Result{}, fmt.Errorf("%w: querying index: %s", ErrUnavailable, err)
	}

	sort.SliceStable(scored, func(i, j int) bool {
		if scored[i].Score != scored[j].Score {
			return scored[i].Score > scored[j].Score
		}
		return scored[i].PassageID < scored[j].PassageID
	})

	if len(scored) > topK {
		scored = scored[:topK]
	}

	hits := make([]Hit, 0, len(scored))
	for _, s := range scored {
		passage, err := r.index.FetchPassage(ctx, s.PassageID)
		if err != nil {
			return Result{}, fmt.Errorf("%w: fetching passage %s: %s", ErrUnavailable, s.PassageID, err)
		}
		hits = append(hits, Hit{Passage: passage, Score: s.Score})
	}

	logger.Debug("Retrieval completed",
		zap.String("query", canonicalQuery),
		zap.Int("hits", len(hits)),
	)

	return Result{Hits: hits}, nil
}
