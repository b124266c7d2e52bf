// Package milvus adapts a Milvus collection to the retrieval.Index port.
package milvus

import (
	"context"
	"fmt"

	"github.com/milvus-io/milvus-sdk-go/v2/client"
	"github.com/milvus-io/milvus-sdk-go/v2/entity"
	"go.uber.org/zap"

	"github.com/merchant-assistant/backend/internal/retrieval"
	"github.com/merchant-assistant/backend/pkg/logger"
)

type Client struct {
	client         client.Client
	collectionName string
	vectorDim      int
}

func NewClient(endpoint, collectionName string, vectorDim int) (*Client, error) {
	c, err := client.NewGrpcClient(
		context.Background(),
		endpoint,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create milvus client: %w", err)
	}

	logger.Info("Milvus client initialized",
		zap.String("endpoint", endpoint),
		zap.String("collection", collectionName),
	)

	return &Client{
		client:         c,
		collectionName: collectionName,
		vectorDim:      vectorDim,
	}, nil
}

func (m *Client) Close() error {
	return m.client.Close()
}

func (m *Client) CreateCollection(ctx context.Context) error {
	has, err := m.client.HasCollection(ctx, m.collectionName)
	if err != nil {
		return fmt.Errorf("failed to check collection: %w", err)
	}

	if has {
		logger.Info("Collection already exists", zap.String("collection", m.collectionName))
		return nil
	}

	schema := &entity.Schema{
		CollectionName: m.collectionName,
		Description:    "Merchant knowledge base passages",
		Fields: []*entity.Field{
			{
				Name:       "passage_id",
				DataType:   entity.FieldTypeVarChar,
				PrimaryKey: true,
				AutoID:     false,
				TypeParams: map[string]string{
					"max_length": "64",
				},
			},
			{
				Name:     "embedding",
				DataType: entity.FieldTypeFloatVector,
				TypeParams: map[string]string{
					"dim": fmt.Sprintf("%d", m.vectorDim),
				},
			},
			{
				Name:     "text",
				DataType: entity.FieldTypeVarChar,
				TypeParams: map[string]string{
					"max_length": "4096",
				},
			},
			{
				Name:     "source_doc_id",
				DataType: entity.FieldTypeVarChar,
				TypeParams: map[string]string{
					"max_length": "128",
				},
			},
			{
				Name:     "title",
				DataType: entity.FieldTypeVarChar,
				TypeParams: map[string]string{
					"max_length": "256",
				},
			},
			{
				Name:     "language",
				DataType: entity.FieldTypeVarChar,
				TypeParams: map[string]string{
					"max_length": "8",
				},
			},
			{
				Name:     "product",
				DataType: entity.FieldTypeVarChar,
				TypeParams: map[string]string{
					"max_length": "64",
				},
			},
		},
	}

	err = m.client.CreateCollection(ctx, schema, entity.DefaultShardNumber)
	if err != nil {
		return fmt.Errorf("failed to create collection: %w", err)
	}

	idx, err := entity.NewIndexIvfFlat(entity.COSINE, 1024)
	if err != nil {
		return fmt.Errorf("failed to build index spec: %w", err)
	}
	err = m.client.CreateIndex(ctx, m.collectionName, "embedding", idx, false)
	if err != nil {
		return fmt.Errorf("failed to create index: %w", err)
	}

	err = m.client.LoadCollection(ctx, m.collectionName, false)
	if err != nil {
		return fmt.Errorf("failed to load collection: %w", err)
	}

	logger.Info("Collection created and loaded", zap.String("collection", m.collectionName))

	return nil
}

// PassageRow is one embedded passage as inserted by the seed tool.
type PassageRow struct {
	ID        string
	Embedding []float32
	Text      string
	SourceDoc string
	Title     string
	Language  string
	Product   string
}

func (m *Client) Insert(ctx context.Context, rows []PassageRow) error {
	if len(rows) == 0 {
		return nil
	}

	ids := make([]string, len(rows))
	embeddings := make([][]float32, len(rows))
	texts := make([]string, len(rows))
	sourceDocs := make([]string, len(rows))
	titles := make([]string, len(rows))
	languages := make([]string, len(rows))
	products := make([]string, len(rows))

	for i, row := range rows {
		ids[i] = row.ID
		embeddings[i] = row.Embedding
		texts[i] = row.Text
		sourceDocs[i] = row.SourceDoc
		titles[i] = row.Title
		languages[i] = row.Language
		products[i] = row.Product
	}

	_, err := m.client.Insert(
		ctx,
		m.collectionName,
		"",
		entity.NewColumnVarChar("passage_id", ids),
		entity.NewColumnFloatVector("embedding", m.vectorDim, embeddings),
		entity.NewColumnVarChar("text", texts),
		entity.NewColumnVarChar("source_doc_id", sourceDocs),
		entity.NewColumnVarChar("title", titles),
		entity.NewColumnVarChar("language", languages),
		entity.NewColumnVarChar("product", products),
	)
	if err != nil {
		return fmt.Errorf("failed to insert passages: %w", err)
	}

	err = m.client.Flush(ctx, m.collectionName, false)
	if err != nil {
		return fmt.Errorf("failed to flush: %w", err)
	}

	logger.Info("Passages inserted into vector index", zap.Int("count", len(rows)))

	return nil
}

// QueryNearest returns the ids and cosine scores of the topK nearest passages.
func (m *Client) QueryNearest(ctx context.Context, vector []float32, topK int) ([]retrieval.ScoredID, error) {
	sp, err := entity.NewIndexIvfFlatSearchParam(16)
	if err != nil {
		return nil, fmt.Errorf("failed to build search params: %w", err)
	}

	searchResult, err := m.client.Search(
		ctx,
		m.collectionName,
		[]string{},
		"",
		[]string{"passage_id"},
		[]entity.Vector{entity.FloatVector(vector)},
		"embedding",
		entity.COSINE,
		topK,
		sp,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to search: %w", err)
	}

	scored := make([]retrieval.ScoredID, 0, topK)
	for _, sr := range searchResult {
		idCol := sr.Fields.GetColumn("passage_id")
		if idCol == nil {
			continue
		}
		for i := 0; i < sr.ResultCount; i++ {
			id, err := idCol.Get(i)
			if err != nil {
				return nil, fmt.Errorf("failed to read result %d: %w", i, err)
			}
			scored = append(scored, retrieval.ScoredID{
				PassageID: id.(string),
				Score:     float64(sr.Scores[i]),
			})
		}
	}

	logger.Debug("Vector search completed",
		zap.Int("topK", topK),
		zap.Int("results", len(scored)),
	)

	return scored, nil
}

// FetchPassage loads the stored fields of a single passage by id.
func (m *Client) FetchPassage(ctx context.Context, passageID string) (retrieval.Passage, error) {
	expr := fmt.Sprintf(`passage_id == "%s"`, passageID)

	results, err := m.client.Query(
		ctx,
		m.collectionName,
		[]string{},
		expr,
		[]string{"passage_id", "text", "source_doc_id", "title", "language", "product"},
	)
	if err != nil {
		return retrieval.Passage{}, fmt.Errorf("failed to query passage: %w", err)
	}

	fields := make(map[string]string, len(results))
	rowCount := 0
	for _, col := range results {
		if col.Len() == 0 {
			continue
		}
		rowCount = col.Len()
		val, err := col.Get(0)
		if err != nil {
			continue
		}
		if s, ok := val.(string); ok {
			fields[col.Name()] = s
		}
	}

	if rowCount == 0 {
		return retrieval.Passage{}, fmt.Errorf("passage %s not found", passageID)
	}

	return retrieval.Passage{
		ID:               fields["passage_id"],
		SourceDocumentID: fields["source_doc_id"],
		Title:            fields["title"],
		Text:             fields["text"],
		Language:         fields["language"],
		Product:          fields["product"],
	}, nil
}
