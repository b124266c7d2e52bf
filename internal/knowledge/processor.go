package knowledge

import (
	"context"
	"fmt"
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"go.uber.org/zap"

	"github.com/merchant-assistant/backend/internal/metrics"
	"github.com/merchant-assistant/backend/internal/vector/milvus"
	"github.com/merchant-assistant/backend/pkg/logger"
	"github.com/merchant-assistant/backend/pkg/utils"
)

// Embedder is the batch embedding seam for the seed tool.
type Embedder interface {
	EmbedBatch(ctx context.Context, texts []string) ([][]float32, error)
}

// Processor chunks documents, embeds the chunks, and inserts them into the
// vector index.
type Processor struct {
	vectorDB     *milvus.Client
	embedder     Embedder
	chunkSize    int
	chunkOverlap int
}

func NewProcessor(vectorDB *milvus.Client, embedder Embedder) *Processor {
	return &Processor{
		vectorDB:     vectorDB,
		embedder:     embedder,
		chunkSize:    1000,
		chunkOverlap: 100,
	}
}

// IndexDocuments chunks, embeds, and inserts the given documents. Passage ids
// are derived from the chunk content so reseeding is idempotent.
func (p *Processor) IndexDocuments(ctx context.Context, docs []Document) error {
	var rows []milvus.PassageRow
	var texts []string

	for _, doc := range docs {
		chunks := p.chunkText(doc.Content)
		for i, chunk := range chunks {
			rows = append(rows, milvus.PassageRow{
				ID:        fmt.Sprintf("%s_%d_%s", doc.SourceID, i, utils.HashString(chunk)[:8]),
				Text:      chunk,
				SourceDoc: doc.SourceID,
				Title:     doc.Title,
				Language:  doc.Language,
				Product:   doc.Product,
			})
			texts = append(texts, chunk)
		}
	}

	if len(rows) == 0 {
		return nil
	}

	embeddings, err := p.embedder.EmbedBatch(ctx, texts)
	if err != nil {
		return fmt.Errorf("failed to embed passages: %w", err)
	}
	if len(embeddings) != len(rows) {
		return fmt.Errorf("embedding count mismatch: got %d, expected %d", len(embeddings), len(rows))
	}

	for i := range rows {
		rows[i].Embedding = embeddings[i]
	}

	if err := p.vectorDB.Insert(ctx, rows); err != nil {
		return fmt.Errorf("failed to insert passages: %w", err)
	}

	metrics.PassagesSeeded.Add(float64(len(rows)))
	logger.Info("Documents indexed",
		zap.Int("documents", len(docs)),
		zap.Int("passages", len(rows)),
	)

	return nil
}

// IndexHTML cleans an HTML page and indexes it as a single document.
func (p *Processor) IndexHTML(ctx context.Context, sourceID, title, language, product, html string) error {
	text := CleanHTML(html)
	if text == "" {
		return fmt.Errorf("no content extracted from HTML")
	}

	if title == "" {
		title = extractTitle(html)
	}

	return p.IndexDocuments(ctx, []Document{{
		SourceID: sourceID,
		Title:    title,
		Content:  text,
		Language: language,
		Product:  product,
	}})
}

var whitespaceRe = regexp.MustCompile(`\s+`)

// CleanHTML strips markup and chrome elements, returning the page's text.
func CleanHTML(html string) string {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return ""
	}

	doc.Find("script, style, nav, footer, header, aside").Each(func(i int, s *goquery.Selection) {
		s.Remove()
	})

	text := doc.Find("body").Text()
	text = whitespaceRe.ReplaceAllString(text, " ")

	return strings.TrimSpace(text)
}

func extractTitle(html string) string {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return "Untitled"
	}

	title := doc.Find("title").First().Text()
	if title == "" {
		title = doc.Find("h1").First().Text()
	}
	if title == "" {
		title = "Untitled"
	}

	return strings.TrimSpace(title)
}

// chunkText splits text into overlapping word chunks bounded by chunkSize
// bytes.
func (p *Processor) chunkText(text string) []string {
	words := strings.Fields(text)
	if len(words) == 0 {
		return nil
	}

	var chunks []string
	var current strings.Builder

	for _, word := range words {
		if current.Len()+len(word)+1 > p.chunkSize && current.Len() > 0 {
			chunks = append(chunks, strings.TrimSpace(current.String()))

			overlapWords := strings.Fields(current.String())
			overlapStart := len(overlapWords) - p.chunkOverlap/10
			if overlapStart < 0 {
				overlapStart = 0
			}
			current.Reset()
			current.WriteString(strings.Join(overlapWords[overlapStart:], " ") + " ")
		}

		current.WriteString(word + " ")
	}

	if current.Len() > 0 {
		chunks = append(chunks, strings.TrimSpace(current.String()))
	}

	return chunks
}
