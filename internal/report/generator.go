package report

import (
	"context"
	"strings"
	"time"

	anthropic "github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
)

// NoSummaryFallback replaces an empty narrative in the lenient variant,
// matching the historical behavior of the service.
const NoSummaryFallback = "(No summary)"

const maxNarrativeTokens = 4096

// Caller is the seam to the text-generation backend. Exactly one call is
// made per pipeline run; there is no internal retry.
type Caller interface {
	Generate(ctx context.Context, instructions, payload string) (string, error)
}

type AnthropicMessager interface {
	New(ctx context.Context, params anthropic.MessageNewParams, opts ...option.RequestOption) (*anthropic.Message, error)
}

// AnthropicCaller sends the prompt to the Anthropic messages API.
type AnthropicCaller struct {
	messages    AnthropicMessager
	model       anthropic.Model
	temperature float64
}

func NewAnthropicCaller(apiKey, model string, temperature float64) *AnthropicCaller {
	c := anthropic.NewClient(option.WithAPIKey(apiKey))
	return &AnthropicCaller{
		messages:    &c.Messages,
		model:       anthropic.Model(model),
		temperature: temperature,
	}
}

func (a *AnthropicCaller) Generate(ctx context.Context, instructions, payload string) (string, error) {
	resp, err := a.messages.New(ctx, anthropic.MessageNewParams{
		Model:       a.model,
		MaxTokens:   maxNarrativeTokens,
		System:      []anthropic.TextBlockParam{{Text: instructions}},
		Messages:    []anthropic.MessageParam{anthropic.NewUserMessage(anthropic.NewTextBlock(payload))},
		Temperature: anthropic.Float(a.temperature),
	})
	if err != nil {
		return "", err
	}
	var sb strings.Builder
	for _, b := range resp.Content {
		if b.Type == "text" {
			sb.WriteString(b.Text)
		}
	}
	return sb.String(), nil
}

// Generator wraps the backend call with the markup gate and the
// strict/lenient empty-result policy.
type Generator struct {
	caller  Caller
	strict  bool
	timeout time.Duration
}

func NewGenerator(caller Caller, strict bool, timeout time.Duration) *Generator {
	return &Generator{caller: caller, strict: strict, timeout: timeout}
}

// Narrative performs the single backend call and validates the result.
// In strict mode the trimmed output must look like the start of an HTML
// document; in lenient mode an empty result degrades to NoSummaryFallback.
func (g *Generator) Narrative(ctx context.Context, p Prompt) (string, error) {
	if g.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, g.timeout)
		defer cancel()
	}
	raw, err := g.caller.Generate(ctx, p.Instructions, p.Payload)
	if err != nil {
		return "", err
	}
	text := strings.TrimSpace(raw)
	if g.strict {
		if text == "" {
			return "", ErrEmptyNarrative
		}
		if !strings.HasPrefix(text, "<") {
			return "", ErrNotMarkup
		}
		return text, nil
	}
	if text == "" {
		return NoSummaryFallback, nil
	}
	return text, nil
}
