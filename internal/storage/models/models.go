// Package models holds the row types persisted by the storage layer.
package models

import "time"

// TurnRecord is one completed pipeline turn as persisted to history. Failed
// turns are recorded too, with the apology as the answer.
type TurnRecord struct {
	ID             string
	SessionID      string
	TurnIndex      int
	Utterance      string
	CanonicalQuery string
	Language       string
	Intent         string
	Answer         string
	Grounded       bool
	Stage          string
	LatencyMS      int
	CreatedAt      time.Time
}

// TurnPassage links a recorded turn to one passage of its context block.
type TurnPassage struct {
	ID        int
	TurnID    string
	PassageID string
	SourceDoc string
	Score     float64
}

type Feedback struct {
	ID        int
	TurnID    string
	Helpful   bool
	Comment   string
	CreatedAt time.Time
}
