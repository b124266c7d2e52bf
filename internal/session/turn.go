// Package session owns per-conversation state: the rolling turn history the
// normalizer and prompt builder read, capped and evicted FIFO.
package session

import (
	"time"

	"github.com/merchant-assistant/backend/internal/lang"
	"github.com/merchant-assistant/backend/internal/retrieval"
)

// Stage tracks how far through the pipeline a turn travelled. Terminal
// stages are StageRecorded and StageFailed; a failed turn is still appended
// to history (with the apology as its answer) so follow-up resolution keeps
// working.
type Stage int

const (
	StageReceived Stage = iota
	StageClassified
	StageNormalized
	StageRetrieved
	StageGated
	StageAssembled
	StagePrompted
	StageGenerated
	StageRecorded
	StageFailed
)

func (s Stage) String() string {
	switch s {
	case StageReceived:
		return "received"
	case StageClassified:
		return "classified"
	case StageNormalized:
		return "normalized"
	case StageRetrieved:
		return "retrieved"
	case StageGated:
		return "gated"
	case StageAssembled:
		return "assembled"
	case StagePrompted:
		return "prompted"
	case StageGenerated:
		return "generated"
	case StageRecorded:
		return "recorded"
	case StageFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// Turn is one completed request/response exchange. Append-only: once added to
// a session's history it is never mutated.
type Turn struct {
	ID             string
	Index          int
	Utterance      string
	CanonicalQuery string
	Language       lang.Language
	Intent         lang.Intent
	Grounded       bool
	Context        []retrieval.Hit
	Answer         string
	Stage          Stage
	Timestamp      time.Time
}
