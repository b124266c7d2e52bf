// Package llm wraps the hosted completion and embedding backend. All network
// failures are classified into the two sentinel errors below before they
// leave this package.
package llm

import (
	"context"
	"errors"
	"fmt"
	"time"

	openai "github.com/sashabaranov/go-openai"
	"go.uber.org/zap"

	"github.com/merchant-assistant/backend/internal/metrics"
	"github.com/merchant-assistant/backend/pkg/circuitbreaker"
	"github.com/merchant-assistant/backend/pkg/logger"
	"github.com/merchant-assistant/backend/pkg/retry"
)

var (
	// ErrBackendTimeout reports that the completion backend did not answer
	// within the deadline.
	ErrBackendTimeout = errors.New("completion backend timed out")
	// ErrBackendError reports any other backend failure.
	ErrBackendError = errors.New("completion backend error")
)

type Client struct {
	client         *openai.Client
	model          string
	embeddingModel string
	temperature    float32
	maxTokens      int
	cb             *circuitbreaker.CircuitBreaker
	retryConfig    retry.Config
}

func NewClient(apiKey, model, embeddingModel string, temperature float32, maxTokens int) *Client {
	cb := circuitbreaker.New("llm", circuitbreaker.Config{
		MaxRequests:      5,
		Interval:         time.Minute,
		Timeout:          30 * time.Second,
		FailureThreshold: 5,
		SuccessThreshold: 2,
		Logger:           logger.GetLogger(),
	})

	// One retry with backoff. The second failure falls through to the fixed
	// apology upstream, never to the user as a raw error.
	retryConfig := retry.Config{
		MaxAttempts:    2,
		InitialDelay:   500 * time.Millisecond,
		MaxDelay:       2 * time.Second,
		Multiplier:     2.0,
		JitterFraction: 0.1,
		Logger:         logger.GetLogger(),
		OnRetry:        func() { metrics.LLMRetries.Inc() },
	}

	logger.Info("LLM client initialized",
		zap.String("model", model),
		zap.String("embedding_model", embeddingModel),
	)

	return &Client{
		client:         openai.NewClient(apiKey),
		model:          model,
		embeddingModel: embeddingModel,
		temperature:    temperature,
		maxTokens:      maxTokens,
		cb:             cb,
		retryConfig:    retryConfig,
	}
}

// Complete sends a system/user prompt pair to the chat backend and returns
// the generated text. The caller bounds the call with a deadline on ctx;
// deadline overruns come back as ErrBackendTimeout.
func (c *Client) Complete(ctx context.Context, system, user string, maxTokens int) (string, error) {
	if maxTokens <= 0 {
		maxTokens = c.maxTokens
	}

	messages := []openai.ChatCompletionMessage{
		{Role: openai.ChatMessageRoleSystem, Content: system},
		{Role: openai.ChatMessageRoleUser, Content: user},
	}

	var answer string

	err := c.cb.Execute(ctx, func() error {
		return retry.Do(ctx, c.retryConfig, func() error {
			resp, err := c.client.CreateChatCompletion(
				ctx,
				openai.ChatCompletionRequest{
					Model:       c.model,
					Messages:    messages,
					Temperature: c.temperature,
					MaxTokens:   maxTokens,
				},
			)
			if err != nil {
				return fmt.Errorf("creating completion: %w", err)
			}
			if len(resp.Choices) == 0 {
				return fmt.Errorf("completion returned no choices")
			}

			logger.Debug("Completion generated",
				zap.Int("prompt_tokens", resp.Usage.PromptTokens),
				zap.Int("completion_tokens", resp.Usage.CompletionTokens),
			)

			answer = resp.Choices[0].Message.Content
			return nil
		})
	})

	if err != nil {
		return "", classify(err)
	}

	return answer, nil
}

// Embed generates the query vector for retrieval.
func (c *Client) Embed(ctx context.Context, text string) ([]float32, error) {
	var embedding []float32

	err := c.cb.Execute(ctx, func() error {
		return retry.Do(ctx, c.retryConfig, func() error {
			resp, err := c.client.CreateEmbeddings(
				ctx,
				openai.EmbeddingRequest{
					Input: []string{text},
					Model: openai.EmbeddingModel(c.embeddingModel),
				},
			)
			if err != nil {
				return fmt.Errorf("creating embedding: %w", err)
			}
			if len(resp.Data) == 0 {
				return fmt.Errorf("embedding returned no data")
			}

			embedding = append([]float32(nil), resp.Data[0].Embedding...)
			return nil
		})
	})

	if err != nil {
		return nil, classify(err)
	}

	return embedding, nil
}

// EmbedBatch embeds many texts in bounded batches. Used by the seed tool.
func (c *Client) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	if len(texts) == 0 {
		return nil, nil
	}

	const batchSize = 100
	embeddings := make([][]float32, 0, len(texts))

	for start := 0; start < len(texts); start += batchSize {
		end := start + batchSize
		if end > len(texts) {
			end = len(texts)
		}
		batch := texts[start:end]

		err := c.cb.Execute(ctx, func() error {
			return retry.Do(ctx, c.retryConfig, func() error {
				resp, err := c.client.CreateEmbeddings(
					ctx,
					openai.EmbeddingRequest{
						Input: batch,
						Model: openai.EmbeddingModel(c.embeddingModel),
					},
				)
				if err != nil {
					return fmt.Errorf("creating batch embeddings: %w", err)
				}
				for _, data := range resp.Data {
					embeddings = append(embeddings, append([]float32(nil), data.Embedding...))
				}
				return nil
			})
		})
		if err != nil {
			return nil, classify(err)
		}
	}

	logger.Debug("Batch embeddings generated", zap.Int("count", len(embeddings)))

	return embeddings, nil
}

func classify(err error) error {
	if errors.Is(err, context.DeadlineExceeded) {
		return fmt.Errorf("%w: %s", ErrBackendTimeout, err)
	}
	if errors.Is(err, context.Canceled) {
		return err
	}
	return fmt.Errorf("%w: %s", ErrBackendError, err)
}
