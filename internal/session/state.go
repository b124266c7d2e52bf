package session

import "github.com/merchant-assistant/backend/internal/lang"

// State is one conversation's rolling history. Turns are appended in order
// and the oldest is evicted once capacity is reached: FIFO, not LRU, because
// recency is what matters for follow-up resolution.
//
// State is not safe for concurrent use on its own; the Manager hands it out
// under a per-session lock.
type State struct {
	ID       string
	capacity int
	turns    []Turn
	appended int
}

func NewState(id string, capacity int) *State {
	if capacity <= 0 {
		capacity = 1
	}
	return &State{
		ID:       id,
		capacity: capacity,
	}
}

// Append records a completed turn, evicting the oldest when full.
func (s *State) Append(turn Turn) {
	if len(s.turns) == s.capacity {
		s.turns = s.turns[1:]
	}
	s.turns = append(s.turns, turn)
	s.appended++
}

// Len is the number of retained turns, never above capacity.
func (s *State) Len() int {
	return len(s.turns)
}

// NextIndex is the ordinal of the turn currently being processed, counting
// evicted turns too.
func (s *State) NextIndex() int {
	return s.appended
}

// Last returns the most recent turn, or nil for a fresh session.
func (s *State) Last() *Turn {
	if len(s.turns) == 0 {
		return nil
	}
	return &s.turns[len(s.turns)-1]
}

// Recent returns up to n most recent turns, oldest first.
func (s *State) Recent(n int) []Turn {
	if n <= 0 || len(s.turns) == 0 {
		return nil
	}
	if n > len(s.turns) {
		n = len(s.turns)
	}
	out := make([]Turn, n)
	copy(out, s.turns[len(s.turns)-n:])
	return out
}

// Prior builds the bounded one-turn lookback for the classifier and
// normalizer.
func (s *State) Prior() *lang.Prior {
	last := s.Last()
	if last == nil {
		return nil
	}
	return &lang.Prior{
		Query:  last.CanonicalQuery,
		Intent: last.Intent,
	}
}
