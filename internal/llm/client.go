package llm

import (
	"context"
	"fmt"

	"google.golang.org/genai"
)

// DefaultModelName is the Gemini model used when none is configured.
const DefaultModelName = "gemini-2.5-flash"

// Message is one role-tagged entry of a prompt conversation.
type Message struct {
	Role    string // "user" or "model"
	Content string
}

// Options control a single completion call.
type Options struct {
	Temperature     float32
	MaxOutputTokens int32
}

// Client produces text completions. Implementations must classify failures
// through the error kinds in errors.go.
type Client interface {
	Complete(ctx context.Context, messages []Message, opts Options) (string, error)
}

// GeminiClient calls the Gemini API with a fixed model name.
type GeminiClient struct {
	client *genai.Client
	model  string
}

// NewGeminiClient creates a Gemini-backed client. Credentials come from the
// environment, same as the rest of the Google SDKs.
func NewGeminiClient(ctx context.Context, model string) (*GeminiClient, error) {
	if model == "" {
		model = DefaultModelName
	}
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		HTTPOptions: genai.HTTPOptions{APIVersion: "v1"},
	})
	if err != nil {
		return nil, fmt.Errorf("llm: create genai client: %w", err)
	}
	return &GeminiClient{client: client, model: model}, nil
}

// Complete sends the messages to the model and returns its raw text output.
func (c *GeminiClient) Complete(ctx context.Context, messages []Message, opts Options) (string, error) {
	contents := make([]*genai.Content, 0, len(messages))
	for _, m := range messages {
		contents = append(contents, &genai.Content{
			Role:  m.Role,
			Parts: []*genai.Part{{Text: m.Content}},
		})
	}

	cfg := &genai.GenerateContentConfig{}
	if opts.Temperature > 0 {
		cfg.Temperature = genai.Ptr(opts.Temperature)
	}
	if opts.MaxOutputTokens > 0 {
		cfg.MaxOutputTokens = opts.MaxOutputTokens
	}

	resp, err := c.client.Models.GenerateContent(ctx, c.model, contents, cfg)
	if err != nil {
		return "", Classify(fmt.Errorf("llm: generate content: %w", err))
	}

	text := resp.Text()
	if text == "" {
		return "", Classify(fmt.Errorf("llm: empty response from model"))
	}
	return text, nil
}
