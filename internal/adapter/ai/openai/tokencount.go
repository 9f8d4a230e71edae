package openai

import (
	"strings"
	"sync"

	tiktoken "github.com/pkoukk/tiktoken-go"
)

// tokenCounter caches tiktoken encodings per model and falls back to a rough
// character estimate when an encoding cannot be loaded.
type tokenCounter struct {
	mu    sync.Mutex
	cache map[string]*tiktoken.Tiktoken
}

func newTokenCounter() *tokenCounter {
	return &tokenCounter{cache: make(map[string]*tiktoken.Tiktoken)}
}

// Count returns the token count of text for the given model.
func (c *tokenCounter) Count(model, text string) int {
	enc := c.encodingFor(model)
	if enc == nil {
		// ~4 characters per token is close enough for budget logging.
		return len(text) / 4
	}
	return len(enc.Encode(text, nil, nil))
}

func (c *tokenCounter) encodingFor(model string) *tiktoken.Tiktoken {
	name := normalizeModel(model)
	c.mu.Lock()
	defer c.mu.Unlock()
	if enc, ok := c.cache[name]; ok {
		return enc
	}
	enc, err := tiktoken.EncodingForModel(name)
	if err != nil {
		enc, err = tiktoken.GetEncoding("cl100k_base")
		if err != nil {
			return nil
		}
	}
	c.cache[name] = enc
	return enc
}

func normalizeModel(model string) string {
	// Strip provider prefixes such as "openai/".
	if i := strings.LastIndex(model, "/"); i >= 0 {
		model = model[i+1:]
	}
	return model
}
