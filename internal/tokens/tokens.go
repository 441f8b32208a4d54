// Package tokens counts message tokens.
package tokens

import (
	"log/slog"
	"sync"

	"github.com/pkoukk/tiktoken-go"
)

// Counter reports the number of tokens in a piece of text.
type Counter interface {
	Count(text string) int
}

// New returns the counter selected by cfg.
func New(cfg Config, logger *slog.Logger) Counter {
	if cfg.Counter == KindTiktoken {
		return NewTiktoken(cfg.Encoding, logger)
	}
	return Estimator{}
}

// Estimator approximates four characters per token.
type Estimator struct{}

// Count returns ceil(len(text)/4). Empty text counts as zero.
func (Estimator) Count(text string) int {
	return (len(text) + 3) / 4
}

// Loader is implemented by counters with an expensive setup step that should
// run at startup instead of on the first Count.
type Loader interface {
	Load()
}

// Tiktoken counts tokens with a BPE encoding. Load fetches the encoding, and
// Count loads it on demand if Load was never called. When the encoding cannot
// be loaded, counts fall back to the Estimator.
type Tiktoken struct {
	encoding string
	logger   *slog.Logger

	once sync.Once
	enc  *tiktoken.Tiktoken
}

// NewTiktoken creates a counter for the named encoding, such as "cl100k_base".
func NewTiktoken(encoding string, logger *slog.Logger) *Tiktoken {
	return &Tiktoken{
		encoding: encoding,
		logger:   logger.With("system", "tokens"),
	}
}

// Load fetches the encoding, which may download the BPE ranks. Later calls are no-ops.
func (t *Tiktoken) Load() {
	t.once.Do(t.load)
}

// Loaded reports whether the encoding is available.
func (t *Tiktoken) Loaded() bool {
	t.Load()
	return t.enc != nil
}

// Count returns the encoded token count of text.
func (t *Tiktoken) Count(text string) int {
	t.Load()
	if t.enc == nil {
		return Estimator{}.Count(text)
	}
	return len(t.enc.Encode(text, nil, nil))
}

func (t *Tiktoken) load() {
	enc, err := tiktoken.GetEncoding(t.encoding)
	if err != nil {
		t.logger.Warn("encoding unavailable, estimating tokens", "encoding", t.encoding, "error", err)
		return
	}
	t.enc = enc
	t.logger.Info("encoding loaded", "encoding", t.encoding)
}
