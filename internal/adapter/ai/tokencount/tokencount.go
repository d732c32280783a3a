// Package tokencount estimates prompt sizes before they are sent to the
// model so oversized resumes are rejected up front.
//
// Gemini has no local tokenizer; cl100k_base from tiktoken-go is close enough
// for budgeting. When the encoding cannot be loaded the counter falls back to
// the usual four-characters-per-token estimate.
package tokencount

import (
	"log/slog"
	"sync"

	tiktoken "github.com/pkoukk/tiktoken-go"
)

const defaultEncoding = "cl100k_base"

// Counter provides thread-safe token counting.
type Counter struct {
	encoding string

	once sync.Once
	enc  *tiktoken.Tiktoken
	err  error
}

// NewCounter creates a counter using the cl100k_base encoding.
func NewCounter() *Counter {
	return &Counter{encoding: defaultEncoding}
}

// DefaultCounter is a shared counter instance.
var DefaultCounter = NewCounter()

func (c *Counter) load() (*tiktoken.Tiktoken, error) {
	c.once.Do(func() {
		c.enc, c.err = tiktoken.GetEncoding(c.encoding)
		if c.err != nil {
			slog.Warn("token encoding unavailable, using estimate",
				slog.String("encoding", c.encoding),
				slog.Any("error", c.err))
		}
	})
	return c.enc, c.err
}

// CountTokens returns the number of tokens in text. It never fails: an
// estimate is returned when the encoding is unavailable.
func (c *Counter) CountTokens(text string) int {
	if text == "" {
		return 0
	}
	enc, err := c.load()
	if err != nil || enc == nil {
		return Estimate(text)
	}
	return len(enc.Encode(text, nil, nil))
}

// Estimate is the rough chars/4 heuristic, rounded up.
func Estimate(text string) int {
	return (len(text) + 3) / 4
}

// Fits reports whether text stays within limit tokens. A non-positive limit
// disables the check.
func (c *Counter) Fits(text string, limit int) (int, bool) {
	n := c.CountTokens(text)
	if limit <= 0 {
		return n, true
	}
	return n, n <= limit
}
