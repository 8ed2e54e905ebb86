package tokenizer

import (
	"errors"
	"fmt"
	"strings"

	"github.com/pkoukk/tiktoken-go"
	tiktoken_loader "github.com/pkoukk/tiktoken-go-loader"
)

// DefaultEncoding is used when the model name is unknown to tiktoken,
// which is the usual case for custom or fine-tuned deployments.
const DefaultEncoding = tiktoken.MODEL_CL100K_BASE

var errNoEncoding = errors.New("token encoding unavailable")

func init() {
	// BPE ranks ship inside the binary; tiktoken never goes to the network.
	tiktoken.SetBpeLoader(tiktoken_loader.NewOfflineLoader())
}

// Counter estimates prompt sizes for a single model.
type Counter struct {
	model    string
	encoding string
	enc      *tiktoken.Tiktoken
}

// New resolves the encoding for model up front, falling back to
// DefaultEncoding for names tiktoken does not know.
func New(model string) (*Counter, error) {
	name, enc, err := resolveEncoding(model)
	if err != nil {
		return nil, err
	}
	return &Counter{model: model, encoding: name, enc: enc}, nil
}

// Encoding returns the name of the resolved encoding.
func (c *Counter) Encoding() string {
	return c.encoding
}

// Count returns the number of tokens in text.
func (c *Counter) Count(text string) (int, error) {
	if c == nil || c.enc == nil {
		return 0, errNoEncoding
	}
	return len(c.enc.Encode(text, nil, nil)), nil
}

// CountMessages sums the tokens of every message body plus the fixed
// per-message overhead OpenAI documents for chat formats.
func (c *Counter) CountMessages(contents ...string) (int, error) {
	const perMessage = 3
	total := 3 // reply priming
	for _, s := range contents {
		n, err := c.Count(s)
		if err != nil {
			return 0, err
		}
		total += n + perMessage
	}
	return total, nil
}

func resolveEncoding(model string) (string, *tiktoken.Tiktoken, error) {
	name := encodingName(baseModelName(model))
	enc, err := tiktoken.GetEncoding(name)
	if err == nil {
		return name, enc, nil
	}
	if name != DefaultEncoding {
		if enc, derr := tiktoken.GetEncoding(DefaultEncoding); derr == nil {
			return DefaultEncoding, enc, nil
		}
	}
	return "", nil, fmt.Errorf("couldn't get token encoding for model %q: %w", model, err)
}

func encodingName(model string) string {
	if name, ok := tiktoken.MODEL_TO_ENCODING[model]; ok {
		return name
	}
	for prefix, name := range tiktoken.MODEL_PREFIX_TO_ENCODING {
		if strings.HasPrefix(model, prefix) {
			return name
		}
	}
	return DefaultEncoding
}

// baseModelName strips a "vendor/" prefix.
func baseModelName(model string) string {
	if i := strings.LastIndex(model, "/"); i >= 0 {
		return model[i+1:]
	}
	return model
}
