package llm

import (
	"context"
	"strings"

	"github.com/go-resty/resty/v2"
)

// GroqClient calls an OpenAI-compatible chat completions endpoint.
type GroqClient struct {
	opts Options
	http *resty.Client
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatRequest struct {
	Model       string        `json:"model"`
	Messages    []chatMessage `json:"messages"`
	Temperature float64       `json:"temperature"`
	MaxTokens   int           `json:"max_tokens"`
	TopP        float64       `json:"top_p"`
	Stream      bool          `json:"stream"`
}

type chatResponse struct {
	Choices []struct {
		Message chatMessage `json:"message"`
	} `json:"choices"`
}

func NewGroq(opts Options) (*GroqClient, error) {
	if err := opts.validate("groq"); err != nil {
		return nil, err
	}
	return &GroqClient{opts: opts, http: newResty(opts)}, nil
}

func (c *GroqClient) Name() string { return "groq" }

func (c *GroqClient) Complete(ctx context.Context, req Request) (string, error) {
	body := chatRequest{
		Model: c.opts.Model,
		Messages: []chatMessage{
			{Role: "system", Content: req.System},
			{Role: "user", Content: req.User},
		},
		Temperature: req.Temperature,
		MaxTokens:   req.MaxTokens,
		TopP:        req.TopP,
	}

	var out chatResponse
	if err := post(ctx, c.http, c.Name(), c.opts.URL, body, &out); err != nil {
		return "", err
	}
	if len(out.Choices) == 0 {
		return "", malformed(c.Name(), errEmptyCompletion)
	}

	text := strings.TrimSpace(out.Choices[0].Message.Content)
	if text == "" {
		return "", malformed(c.Name(), errEmptyCompletion)
	}
	return text, nil
}
