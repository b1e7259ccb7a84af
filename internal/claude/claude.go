package claude

import (
	"context"
	"fmt"
	"os"
	"regexp"
	"strings"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
)

// DefaultModel is used when no model is configured.
const DefaultModel = "claude-sonnet-4-5"

// Client wraps the Anthropic SDK for Claude API calls.
type Client struct {
	inner anthropic.Client
	model anthropic.Model
}

// NewClient creates a Claude client. apiKey defaults to ANTHROPIC_API_KEY env.
func NewClient(apiKey, model string) (*Client, error) {
	if apiKey == "" {
		apiKey = os.Getenv("ANTHROPIC_API_KEY")
	}
	if apiKey == "" {
		return nil, fmt.Errorf("ANTHROPIC_API_KEY not set")
	}

	inner := anthropic.NewClient(
		option.WithAPIKey(apiKey),
	)

	if model == "" {
		model = DefaultModel
	}
	return &Client{inner: inner, model: anthropic.Model(model)}, nil
}

const narratePrompt = `You are a delivery lead explaining a backlog completion forecast to stakeholders.

You will receive the headline numbers of a forecast and the schedule it was derived from.
The forecast comes from a deterministic greedy scheduler, not an optimiser: it is one
feasible plan under fixed velocity assumptions, not a promise.

Write a short narrative covering:
- When the work is projected to finish and how that compares to the target.
- Which developers or stories drive the end date.
- Any stories that could not be scheduled and what that implies.

Keep it to two or three short paragraphs of plain prose. Do not restate every number.
Do not invent dates, names or figures that are not in the input.
`

// NarrateForecast asks Claude for a plain-language reading of a forecast.
func (c *Client) NarrateForecast(ctx context.Context, summary string) (string, error) {
	resp, err := c.inner.Messages.New(ctx, anthropic.MessageNewParams{
		Model:     c.model,
		MaxTokens: int64(2048),
		System: []anthropic.TextBlockParam{
			{Text: narratePrompt},
		},
		Messages: []anthropic.MessageParam{
			anthropic.NewUserMessage(anthropic.NewTextBlock(StripANSI(summary))),
		},
	})
	if err != nil {
		return "", fmt.Errorf("claude API call: %w", err)
	}

	var text string
	for _, block := range resp.Content {
		if block.Type == "text" {
			text += block.Text
		}
	}

	return stripFences(text), nil
}

var ansiEscape = regexp.MustCompile(`\x1b\[[0-9;]*m`)

// StripANSI removes terminal color codes from captured output.
func StripANSI(s string) string {
	return ansiEscape.ReplaceAllString(s, "")
}

// stripFences removes markdown code fences that Claude sometimes adds.
func stripFences(s string) string {
	s = strings.TrimSpace(s)
	if strings.HasPrefix(s, "```") {
		if idx := strings.Index(s, "\n"); idx >= 0 {
			s = s[idx+1:]
		}
		if idx := strings.LastIndex(s, "```"); idx >= 0 {
			s = s[:idx]
		}
		s = strings.TrimSpace(s)
	}
	return s
}
