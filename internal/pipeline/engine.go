// Package pipeline orchestrates a conversation turn end to end: classify,
// normalize, retrieve, gate, assemble, prompt, generate, record. Every
// downstream failure degrades to a fixed answer; the only error Chat returns
// is the caller's own context cancellation.
package pipeline

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/merchant-assistant/backend/internal/assembler"
	cache "github.com/merchant-assistant/backend/internal/cache/redis"
	"github.com/merchant-assistant/backend/internal/lang"
	"github.com/merchant-assistant/backend/internal/metrics"
	"github.com/merchant-assistant/backend/internal/prompt"
	"github.com/merchant-assistant/backend/internal/retrieval"
	"github.com/merchant-assistant/backend/internal/session"
	"github.com/merchant-assistant/backend/internal/storage/models"
	"github.com/merchant-assistant/backend/pkg/logger"
	"github.com/merchant-assistant/backend/pkg/utils"
)

// Completer is the generation backend seam.
type Completer interface {
	Complete(ctx context.Context, system, user string, maxTokens int) (string, error)
}

// Retriever is the retrieval seam.
type Retriever interface {
	Retrieve(ctx context.Context, canonicalQuery string, topK int) (retrieval.Result, error)
}

// AnswerCache is satisfied by the redis client. A nil cache disables caching.
type AnswerCache interface {
	GetAnswer(ctx context.Context, queryHash, language string) (cache.CachedAnswer, bool, error)
	SetAnswer(ctx context.Context, queryHash, language string, answer cache.CachedAnswer, ttl time.Duration) error
}

// TurnRecorder persists completed turns. A nil recorder disables persistence;
// recording failures are logged, never surfaced to the user.
type TurnRecorder interface {
	InsertTurn(record *models.TurnRecord) error
	InsertTurnPassage(passage *models.TurnPassage) error
}

type Options struct {
	RelevanceThreshold float64
	TopK               int
	ContextTokenBudget int
	HistoryWindow      int
	RetrievalTimeout   time.Duration
	GenerationTimeout  time.Duration
	OnLanguageMismatch string
	AnswerTTL          time.Duration
}

type Engine struct {
	sessions  *session.Manager
	retriever Retriever
	assembler *assembler.Assembler
	builder   *prompt.Builder
	completer Completer
	cache     AnswerCache
	recorder  TurnRecorder
	opts      Options
}

func NewEngine(
	sessions *session.Manager,
	retriever Retriever,
	asm *assembler.Assembler,
	builder *prompt.Builder,
	completer Completer,
	answerCache AnswerCache,
	recorder TurnRecorder,
	opts Options,
) *Engine {
	if opts.AnswerTTL <= 0 {
		opts.AnswerTTL = time.Hour
	}
	return &Engine{
		sessions:  sessions,
		retriever: retriever,
		assembler: asm,
		builder:   builder,
		completer: completer,
		cache:     answerCache,
		recorder:  recorder,
		opts:      opts,
	}
}

type ChatRequest struct {
	SessionID string
	Utterance string
}

// Source identifies one context passage for citation display.
type Source struct {
	PassageID string  `json:"passage_id"`
	SourceDoc string  `json:"source_doc"`
	Title     string  `json:"title"`
	Score     float64 `json:"score"`
}

type ChatResponse struct {
	TurnID    string   `json:"turn_id"`
	SessionID string   `json:"session_id"`
	Answer    string   `json:"answer"`
	Language  string   `json:"language"`
	Intent    string   `json:"intent"`
	Grounded  bool     `json:"grounded"`
	Sources   []Source `json:"sources,omitempty"`
	LatencyMS int      `json:"latency_ms"`
}

// Chat runs one conversation turn. Turns within a session are serialized by
// the session lock; a cancelled context is the only case where no turn is
// recorded.
func (e *Engine) Chat(ctx context.Context, req ChatRequest) (*ChatResponse, error) {
	start := time.Now()

	state, release := e.sessions.Acquire(req.SessionID)
	defer release()

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	turn := session.Turn{
		ID:        uuid.New().String(),
		Index:     state.NextIndex(),
		Utterance: req.Utterance,
		Stage:     session.StageReceived,
		Timestamp: start,
	}

	prior := state.Prior()

	cls := lang.Classify(req.Utterance, prior)
	turn.Language = cls.Language
	turn.Intent = cls.Intent
	turn.Stage = session.StageClassified
	metrics.LanguageDetected.WithLabelValues(cls.Language.String()).Inc()
	metrics.IntentDetected.WithLabelValues(cls.Intent.String()).Inc()

	logger.Debug("Turn classified",
		zap.String("turn_id", turn.ID),
		zap.String("language", cls.Language.String()),
		zap.String("intent", cls.Intent.String()),
		zap.Float64("confidence", cls.LanguageConfidence),
	)

	// Unsupported language short-circuits before any backend call.
	if cls.Language == lang.Other {
		turn.Answer = prompt.Unsupported()
		return e.record(ctx, state, turn, start)
	}

	turn.CanonicalQuery = lang.Normalize(req.Utterance, prior)
	turn.Stage = session.StageNormalized

	queryHash := utils.HashString(turn.CanonicalQuery)
	if e.cache != nil {
		cached, hit, err := e.cache.GetAnswer(ctx, queryHash, cls.Language.String())
		if err != nil {
			logger.Warn("Answer cache lookup failed", zap.Error(err))
		}
		if hit {
			metrics.CacheHits.WithLabelValues("answer").Inc()
			turn.Answer = cached.Answer
			turn.Grounded = true
			turn.Context = cachedContext(cached.Sources)
			return e.record(ctx, state, turn, start)
		}
		metrics.CacheMisses.WithLabelValues("answer").Inc()
	}

	result := e.retrieve(ctx, turn.CanonicalQuery)
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	turn.Stage = session.StageRetrieved
	metrics.RetrievalResultsCount.Observe(float64(len(result.Hits)))

	verdict := retrieval.Gate(result, e.opts.RelevanceThreshold)
	turn.Grounded = verdict.Grounded
	turn.Stage = session.StageGated
	if verdict.Grounded {
		metrics.GateVerdicts.WithLabelValues("grounded").Inc()
	} else {
		metrics.GateVerdicts.WithLabelValues("ungrounded").Inc()
	}

	block := e.assembler.Assemble(verdict, e.opts.ContextTokenBudget)
	turn.Context = block
	turn.Stage = session.StageAssembled
	metrics.ContextPassages.Observe(float64(len(block)))

	built := e.builder.Build(cls.Language, cls.Intent, block, state.Recent(e.opts.HistoryWindow), req.Utterance)
	turn.Stage = session.StagePrompted

	answer, failed, err := e.generate(ctx, built, cls.Language)
	if err != nil {
		return nil, err
	}
	turn.Answer = answer
	if failed {
		turn.Grounded = false
		turn.Stage = session.StageFailed
		metrics.GenerationFallbacks.Inc()
	} else {
		turn.Stage = session.StageGenerated
	}

	var cacheable *cache.CachedAnswer
	if !failed && turn.Grounded {
		sources := make([]cache.CachedSource, 0, len(block))
		for _, hit := range block {
			sources = append(sources, cache.CachedSource{
				PassageID: hit.Passage.ID,
				SourceDoc: hit.Passage.SourceDocumentID,
				Title:     hit.Passage.Title,
				Score:     hit.Score,
			})
		}
		cacheable = &cache.CachedAnswer{Answer: answer, Sources: sources}
	}

	resp, recErr := e.record(ctx, state, turn, start)
	if recErr != nil {
		return nil, recErr
	}

	if cacheable != nil && e.cache != nil {
		if err := e.cache.SetAnswer(ctx, queryHash, cls.Language.String(), *cacheable, e.opts.AnswerTTL); err != nil {
			logger.Warn("Answer cache store failed", zap.Error(err))
		}
	}

	return resp, nil
}

// cachedContext rebuilds the context block of a cache hit from its stored
// citations, so hit and miss responses carry the same source information.
func cachedContext(sources []cache.CachedSource) []retrieval.Hit {
	hits := make([]retrieval.Hit, 0, len(sources))
	for _, s := range sources {
		hits = append(hits, retrieval.Hit{
			Passage: retrieval.Passage{
				ID:               s.PassageID,
				SourceDocumentID: s.SourceDoc,
				Title:            s.Title,
			},
			Score: s.Score,
		})
	}
	return hits
}

// retrieve runs the bounded retrieval leg. Index trouble is degradation, not
// failure: an empty result flows on to the gate, which rules Ungrounded.
func (e *Engine) retrieve(ctx context.Context, canonicalQuery string) retrieval.Result {
	stageStart := time.Now()
	rctx, cancel := context.WithTimeout(ctx, e.opts.RetrievalTimeout)
	defer cancel()

	result, err := e.retriever.Retrieve(rctx, canonicalQuery, e.opts.TopK)
	metrics.StageDuration.WithLabelValues("retrieve").Observe(time.Since(stageStart).Seconds())
	if err != nil {
		if errors.Is(err, retrieval.ErrUnavailable) {
			logger.Warn("Retrieval unavailable, continuing ungrounded", zap.Error(err))
		} else if ctx.Err() == nil {
			logger.Warn("Retrieval failed, continuing ungrounded", zap.Error(err))
		}
		return retrieval.Result{}
	}
	return result
}

// generate calls the completion backend and applies the language-mismatch
// policy. The boolean result reports fallback to the fixed apology. An error
// is returned only for caller cancellation.
func (e *Engine) generate(ctx context.Context, built prompt.Prompt, language lang.Language) (string, bool, error) {
	answer, err := e.complete(ctx, built)
	if err != nil {
		if ctx.Err() != nil {
			return "", false, ctx.Err()
		}
		logger.Error("Generation failed after retry", zap.Error(err))
		return prompt.Apology(language), true, nil
	}

	detected, confidence := lang.DetectLanguage(answer)
	if confidence == 0 || detected == language {
		return answer, false, nil
	}

	logger.Warn("Answer language mismatch",
		zap.String("expected", language.String()),
		zap.String("detected", detected.String()),
	)

	if e.opts.OnLanguageMismatch == "apologize" {
		return prompt.Apology(language), true, nil
	}

	// Re-prompt exactly once with an explicit directive.
	directed := e.builder.WithLanguageDirective(built, language)
	answer, err = e.complete(ctx, directed)
	if err != nil {
		if ctx.Err() != nil {
			return "", false, ctx.Err()
		}
		return prompt.Apology(language), true, nil
	}

	detected, confidence = lang.DetectLanguage(answer)
	if confidence > 0 && detected != language {
		return prompt.Apology(language), true, nil
	}
	return answer, false, nil
}

func (e *Engine) complete(ctx context.Context, built prompt.Prompt) (string, error) {
	stageStart := time.Now()
	gctx, cancel := context.WithTimeout(ctx, e.opts.GenerationTimeout)
	defer cancel()

	answer, err := e.completer.Complete(gctx, built.System, built.User, 0)
	metrics.StageDuration.WithLabelValues("generate").Observe(time.Since(stageStart).Seconds())
	return answer, err
}

// record appends the turn to the in-memory state, persists it best-effort,
// and builds the response. A cancelled context bails out before the append so
// nothing is recorded. Every turn that gets here ends in a terminal stage:
// StageFailed stays, everything else becomes StageRecorded.
func (e *Engine) record(ctx context.Context, state *session.State, turn session.Turn, start time.Time) (*ChatResponse, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	if turn.Stage != session.StageFailed {
		turn.Stage = session.StageRecorded
	}

	latency := int(time.Since(start).Milliseconds())

	state.Append(turn)

	if e.recorder != nil {
		rec := &models.TurnRecord{
			ID:             turn.ID,
			SessionID:      state.ID,
			TurnIndex:      turn.Index,
			Utterance:      turn.Utterance,
			CanonicalQuery: turn.CanonicalQuery,
			Language:       turn.Language.String(),
			Intent:         turn.Intent.String(),
			Answer:         turn.Answer,
			Grounded:       turn.Grounded,
			Stage:          turn.Stage.String(),
			LatencyMS:      latency,
			CreatedAt:      turn.Timestamp,
		}
		if err := e.recorder.InsertTurn(rec); err != nil {
			logger.Warn("Turn persistence failed", zap.Error(err))
		} else {
			for _, hit := range turn.Context {
				tp := &models.TurnPassage{
					TurnID:    turn.ID,
					PassageID: hit.Passage.ID,
					SourceDoc: hit.Passage.SourceDocumentID,
					Score:     hit.Score,
				}
				if err := e.recorder.InsertTurnPassage(tp); err != nil {
					logger.Warn("Turn passage persistence failed", zap.Error(err))
				}
			}
		}
	}

	verdict := "ungrounded"
	if turn.Grounded {
		verdict = "grounded"
	}
	metrics.TurnsTotal.WithLabelValues(turn.Stage.String(), verdict).Inc()
	metrics.TurnDuration.WithLabelValues(turn.Intent.String()).Observe(time.Since(start).Seconds())

	sources := make([]Source, 0, len(turn.Context))
	for _, hit := range turn.Context {
		sources = append(sources, Source{
			PassageID: hit.Passage.ID,
			SourceDoc: hit.Passage.SourceDocumentID,
			Title:     hit.Passage.Title,
			Score:     hit.Score,
		})
	}

	logger.Info("Turn completed",
		zap.String("turn_id", turn.ID),
		zap.String("session_id", state.ID),
		zap.String("stage", turn.Stage.String()),
		zap.Bool("grounded", turn.Grounded),
		zap.Int("latency_ms", latency),
	)

	return &ChatResponse{
		TurnID:    turn.ID,
		SessionID: state.ID,
		Answer:    turn.Answer,
		Language:  turn.Language.String(),
		Intent:    turn.Intent.String(),
		Grounded:  turn.Grounded,
		Sources:   sources,
		LatencyMS: latency,
	}, nil
}
