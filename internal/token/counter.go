// Package token counts prompt tokens for budget trimming. It prefers a
// real tiktoken encoding and degrades to a character heuristic when no
// encoding data is available.
package token

import (
	"log/slog"

	"github.com/pkoukk/tiktoken-go"
)

// encodingPreferences lists the tiktoken encodings to try, in order.
// o200k_base covers the current GPT model family; cl100k_base is the
// older fallback.
var encodingPreferences = []string{"o200k_base", "cl100k_base"}

// Counter counts tokens in text. When no tiktoken encoding could be
// loaded it falls back to an approximate count of one token per four
// bytes, never returning zero for non-empty text.
type Counter struct {
	enc      *tiktoken.Tiktoken
	encoding string

	// warned tracks whether the approximate-count warning has been
	// emitted for this counter. Carried on the counter rather than a
	// package global so independent counters warn independently.
	warned bool
}

// NewCounter creates a Counter, loading the first available encoding
// from encodingPreferences. A Counter with no encoding is still usable
// and counts approximately.
func NewCounter() *Counter {
	for _, name := range encodingPreferences {
		enc, err := tiktoken.GetEncoding(name)
		if err != nil {
			continue
		}
		return &Counter{enc: enc, encoding: name}
	}
	return &Counter{}
}

// Count returns the token count for text. The approximate path assumes
// ~4 bytes per token and returns at least 1.
func (c *Counter) Count(text string) int {
	if c.enc != nil {
		return len(c.enc.Encode(text, nil, nil))
	}

	n := len(text) / 4
	if n < 1 {
		n = 1
	}
	return n
}

// Precise reports whether counts come from a real encoding rather than
// the character heuristic.
func (c *Counter) Precise() bool {
	return c.enc != nil
}

// Encoding returns the name of the loaded encoding, or "" when counting
// approximately.
func (c *Counter) Encoding() string {
	return c.encoding
}

// WarnApproximate logs a one-shot warning when the counter is running
// on the approximate fallback. Subsequent calls on the same counter are
// no-ops.
func (c *Counter) WarnApproximate(log *slog.Logger) {
	if c.Precise() || c.warned {
		return
	}
	if log == nil {
		log = slog.Default()
	}

	c.warned = true
	log.Warn("Precise token counting requires tiktoken encoding data; " +
		"using an approximate fallback")
}
