package assembler

import (
	"sync"

	"github.com/pkoukk/tiktoken-go"
	tiktokenloader "github.com/pkoukk/tiktoken-go-loader"
)

func init() {
	tiktoken.SetBpeLoader(tiktokenloader.NewOfflineLoader())
}

// TokenCounter measures text against the context budget. The interface exists
// so tests can swap in a trivial counter.
type TokenCounter interface {
	Count(text string) int
}

type tiktokenCounter struct {
	encoding *tiktoken.Tiktoken
	mu       sync.RWMutex
}

var (
	counterInstance *tiktokenCounter
	counterOnce     sync.Once
	counterErr      error
)

// NewTokenCounter returns the shared cl100k_base counter. The encoding tables
// are loaded once per process from the embedded offline copy.
func NewTokenCounter() (TokenCounter, error) {
	counterOnce.Do(func() {
		enc, err := tiktoken.GetEncoding("cl100k_base")
		if err != nil {
			counterErr = err
			return
		}
		counterInstance = &tiktokenCounter{encoding: enc}
	})

	if counterErr != nil {
		return nil, counterErr
	}
	return counterInstance, nil
}

func (c *tiktokenCounter) Count(text string) int {
	if text == "" {
		return 0
	}

	c.mu.RLock()
	defer c.mu.RUnlock()

	return len(c.encoding.Encode(text, nil, nil))
}
