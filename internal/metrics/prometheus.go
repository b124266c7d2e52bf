package metrics

import (
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	TurnsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "assistant_turns_total",
			Help: "Total turns processed, by final stage and grounding verdict",
		},
		[]string{"stage", "verdict"},
	)

	TurnDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "assistant_turn_duration_seconds",
			Help:    "End-to-end turn duration in seconds",
			Buckets: []float64{0.1, 0.5, 1, 2, 5, 10, 30},
		},
		[]string{"intent"},
	)

	StageDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "assistant_stage_duration_seconds",
			Help:    "Per-stage pipeline duration in seconds",
			Buckets: []float64{0.001, 0.01, 0.05, 0.1, 0.5, 1, 5, 30},
		},
		[]string{"stage"},
	)

	GateVerdicts = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "assistant_gate_verdicts_total",
			Help: "Relevance gate outcomes",
		},
		[]string{"verdict"},
	)

	LanguageDetected = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "assistant_language_detected_total",
			Help: "Detected utterance languages",
		},
		[]string{"language"},
	)

	IntentDetected = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "assistant_intent_detected_total",
			Help: "Detected utterance intents",
		},
		[]string{"intent"},
	)

	RetrievalResultsCount = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "assistant_retrieval_results_count",
			Help:    "Number of passages returned per retrieval",
			Buckets: []float64{0, 1, 2, 5, 10, 20},
		},
	)

	ContextPassages = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "assistant_context_passages_count",
			Help:    "Passages included in the assembled context block",
			Buckets: []float64{0, 1, 2, 3, 5, 10},
		},
	)

	LLMRetries = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "assistant_llm_retries_total",
			Help: "Generation attempts beyond the first",
		},
	)

	GenerationFallbacks = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "assistant_generation_fallbacks_total",
			Help: "Turns answered with the fixed apology",
		},
	)

	CacheHits = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "assistant_cache_hits_total",
			Help: "Total cache hits",
		},
		[]string{"cache_type"},
	)

	CacheMisses = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "assistant_cache_misses_total",
			Help: "Total cache misses",
		},
		[]string{"cache_type"},
	)

	UserSatisfaction = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "assistant_satisfaction_score",
			Help: "User feedback satisfaction score",
		},
		[]string{"helpful"},
	)

	ActiveSessions = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "assistant_active_sessions",
			Help: "Sessions currently held in memory",
		},
	)

	PassagesSeeded = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "assistant_passages_seeded_total",
			Help: "Passages inserted into the vector index",
		},
	)
)

func Init() {
	prometheus.MustRegister(TurnsTotal)
	prometheus.MustRegister(TurnDuration)
	prometheus.MustRegister(StageDuration)
	prometheus.MustRegister(GateVerdicts)
	prometheus.MustRegister(LanguageDetected)
	prometheus.MustRegister(IntentDetected)
	prometheus.MustRegister(RetrievalResultsCount)
	prometheus.MustRegister(ContextPassages)
	prometheus.MustRegister(LLMRetries)
	prometheus.MustRegister(GenerationFallbacks)
	prometheus.MustRegister(CacheHits)
	prometheus.MustRegister(CacheMisses)
	prometheus.MustRegister(UserSatisfaction)
	prometheus.MustRegister(ActiveSessions)
	prometheus.MustRegister(PassagesSeeded)
}

func MetricsHandler() fiber.Handler {
	return adaptor.HTTPHandler(promhttp.Handler())
}
