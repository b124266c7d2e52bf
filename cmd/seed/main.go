// Command seed indexes the built-in knowledge corpus, and optionally local
// HTML files, into the vector index.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"go.uber.org/zap"

	cacheredis "github.com/merchant-assistant/backend/internal/cache/redis"
	"github.com/merchant-assistant/backend/internal/knowledge"
	"github.com/merchant-assistant/backend/internal/llm"
	"github.com/merchant-assistant/backend/internal/metrics"
	"github.com/merchant-assistant/backend/internal/vector/milvus"
	"github.com/merchant-assistant/backend/pkg/config"
	appLogger "github.com/merchant-assistant/backend/pkg/logger"
)

func main() {
	htmlDir := flag.String("html-dir", "", "optional directory of HTML files to index alongside the seed corpus")
	language := flag.String("language", "en", "language tag for HTML documents")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		fmt.Printf("Failed to load config: %v\n", err)
		os.Exit(1)
	}

	err = appLogger.Init(cfg.Logging.Level, cfg.Logging.Format, cfg.Logging.OutputPath)
	if err != nil {
		fmt.Printf("Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer appLogger.Sync()

	metrics.Init()

	milvusClient, err := milvus.NewClient(
		cfg.Milvus.Endpoint,
		cfg.Milvus.CollectionName,
		cfg.Milvus.VectorDim,
	)
	if err != nil {
		appLogger.Fatal("Failed to create Milvus client", zap.Error(err))
	}
	defer milvusClient.Close()

	ctx := context.Background()

	if err := milvusClient.CreateCollection(ctx); err != nil {
		appLogger.Fatal("Failed to create collection", zap.Error(err))
	}

	llmClient := llm.NewClient(
		cfg.LLM.APIKey,
		cfg.LLM.Model,
		cfg.LLM.EmbeddingModel,
		cfg.LLM.Temperature,
		cfg.LLM.MaxTokens,
	)

	processor := knowledge.NewProcessor(milvusClient, llmClient)

	docs := knowledge.Seed()
	appLogger.Info("Indexing seed corpus", zap.Int("documents", len(docs)))

	if err := processor.IndexDocuments(ctx, docs); err != nil {
		appLogger.Fatal("Failed to index seed corpus", zap.Error(err))
	}

	if *htmlDir != "" {
		if err := indexHTMLDir(ctx, processor, *htmlDir, *language); err != nil {
			appLogger.Fatal("Failed to index HTML documents", zap.Error(err))
		}
	}

	// Reseeding changes what grounded answers should say, so stale cached
	// answers must go.
	if cfg.Redis.Enabled {
		cacheClient, err := cacheredis.NewClient(cfg.Redis.Host, cfg.Redis.Port, cfg.Redis.Password, cfg.Redis.DB)
		if err != nil {
			appLogger.Warn("Redis unavailable, skipping cache invalidation", zap.Error(err))
		} else {
			defer cacheClient.Close()
			if err := cacheClient.InvalidateAnswers(ctx); err != nil {
				appLogger.Warn("Failed to invalidate answer cache", zap.Error(err))
			}
		}
	}

	appLogger.Info("Seeding complete")
}

func indexHTMLDir(ctx context.Context, processor *knowledge.Processor, dir, language string) error {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return fmt.Errorf("failed to read directory: %w", err)
	}

	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".html") {
			continue
		}

		path := filepath.Join(dir, entry.Name())
		data, err := os.ReadFile(path)
		if err != nil {
			return fmt.Errorf("failed to read %s: %w", path, err)
		}

		sourceID := strings.TrimSuffix(entry.Name(), ".html")
		if err := processor.IndexHTML(ctx, sourceID, "", language, "", string(data)); err != nil {
			return fmt.Errorf("failed to index %s: %w", path, err)
		}

		appLogger.Info("HTML document indexed", zap.String("source", sourceID))
	}

	return nil
}
