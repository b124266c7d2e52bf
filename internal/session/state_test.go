package session

import (
	"sync"
	"testing"
	"time"

	"github.com/merchant-assistant/backend/internal/lang"
)

func TestStateAppendEvictsFIFO(t *testing.T) {
	s := NewState("s1", 3)

	for i := 0; i < 5; i++ {
		s.Append(Turn{Index: i})
	}

	if s.Len() != 3 {
		t.Fatalf("Len = %d, want 3", s.Len())
	}

	recent := s.Recent(3)
	wantIndexes := []int{2, 3, 4}
	for i, turn := range recent {
		if turn.Index != wantIndexes[i] {
			t.Errorf("recent[%d].Index = %d, want %d", i, turn.Index, wantIndexes[i])
		}
	}
}

func TestStateNextIndexCountsEvicted(t *testing.T) {
	s := NewState("s1", 2)

	for i := 0; i < 5; i++ {
		if got := s.NextIndex(); got != i {
			t.Errorf("NextIndex before turn %d = %d", i, got)
		}
		s.Append(Turn{Index: i})
	}
}

func TestStatePrior(t *testing.T) {
	s := NewState("s1", 10)

	if s.Prior() != nil {
		t.Error("fresh session must have nil prior")
	}

	s.Append(Turn{CanonicalQuery: "jim fees", Intent: lang.IntentPricing})
	prior := s.Prior()
	if prior == nil {
		t.Fatal("prior is nil after append")
	}
	if prior.Query != "jim fees" || prior.Intent != lang.IntentPricing {
		t.Errorf("prior = %+v, want last turn's query and intent", prior)
	}
}

func TestStateRecentReturnsCopy(t *testing.T) {
	s := NewState("s1", 10)
	s.Append(Turn{Utterance: "original"})

	recent := s.Recent(1)
	recent[0].Utterance = "mutated"

	if s.Last().Utterance != "original" {
		t.Error("Recent leaked internal storage")
	}
}

func TestManagerSerializesTurnsWithinSession(t *testing.T) {
	m := NewManager(100, time.Hour)

	const goroutines = 20
	var wg sync.WaitGroup
	for i := 0; i < goroutines; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			state, release := m.Acquire("shared")
			// NextIndex then Append must be atomic per session; any
			// interleaving would produce duplicate indexes.
			idx := state.NextIndex()
			state.Append(Turn{Index: idx})
			release()
		}()
	}
	wg.Wait()

	state, release := m.Acquire("shared")
	defer release()

	if state.Len() != goroutines {
		t.Fatalf("Len = %d, want %d", state.Len(), goroutines)
	}
	seen := make(map[int]bool)
	for _, turn := range state.Recent(goroutines) {
		if seen[turn.Index] {
			t.Errorf("duplicate turn index %d", turn.Index)
		}
		seen[turn.Index] = true
	}
}

func TestManagerSessionsAreIndependent(t *testing.T) {
	m := NewManager(100, time.Hour)

	s1, release1 := m.Acquire("one")
	s1.Append(Turn{Utterance: "in one"})
	release1()

	s2, release2 := m.Acquire("two")
	defer release2()

	if s2.Len() != 0 {
		t.Errorf("session two sees %d turns from session one", s2.Len())
	}
}

func TestManagerSweepEvictsIdleSessions(t *testing.T) {
	m := NewManager(100, time.Minute)

	s, release := m.Acquire("idle")
	s.Append(Turn{})
	release()

	if evicted := m.Sweep(time.Now()); evicted != 0 {
		t.Errorf("Sweep evicted %d fresh sessions, want 0", evicted)
	}
	if evicted := m.Sweep(time.Now().Add(10 * time.Minute)); evicted != 1 {
		t.Errorf("Sweep evicted %d, want 1", evicted)
	}

	state, release := m.Acquire("idle")
	defer release()
	if state.Len() != 0 {
		t.Error("evicted session retained history")
	}
}

func TestManagerSweepSkipsSessionMidTurn(t *testing.T) {
	m := NewManager(100, time.Minute)

	_, release := m.Acquire("busy")

	// The lock is still held, so even a long-idle session must survive.
	if evicted := m.Sweep(time.Now().Add(10 * time.Minute)); evicted != 0 {
		t.Errorf("Sweep evicted %d sessions mid-turn, want 0", evicted)
	}

	release()

	if evicted := m.Sweep(time.Now().Add(10 * time.Minute)); evicted != 1 {
		t.Errorf("Sweep evicted %d after release, want 1", evicted)
	}
}

func TestManagerSweepConcurrentWithTurns(t *testing.T) {
	m := NewManager(100, time.Minute)

	stop := make(chan struct{})
	sweeperDone := make(chan struct{})
	go func() {
		defer close(sweeperDone)
		for {
			select {
			case <-stop:
				return
			default:
				m.Sweep(time.Now())
			}
		}
	}()

	var wg sync.WaitGroup
	sessions := []string{"a", "b", "c", "d"}
	for _, id := range sessions {
		wg.Add(1)
		go func(id string) {
			defer wg.Done()
			for i := 0; i < 50; i++ {
				state, release := m.Acquire(id)
				state.Append(Turn{Index: state.NextIndex()})
				release()
			}
		}(id)
	}

	wg.Wait()
	close(stop)
	<-sweeperDone

	for _, id := range sessions {
		state, release := m.Acquire(id)
		if state.Len() != 50 {
			t.Errorf("session %s Len = %d, want 50", id, state.Len())
		}
		release()
	}
}

func TestManagerEnd(t *testing.T) {
	m := NewManager(100, time.Hour)

	s, release := m.Acquire("gone")
	s.Append(Turn{})
	release()

	m.End("gone")

	state, release := m.Acquire("gone")
	defer release()
	if state.Len() != 0 {
		t.Error("ended session retained history")
	}
}
