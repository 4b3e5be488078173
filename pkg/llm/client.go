// Package llm holds the HTTP clients for the external text-completion
// providers consulted by the response pipeline.
package llm

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/go-resty/resty/v2"
)

// Request is a single (system directive, user context) completion call.
type Request struct {
	System      string
	User        string
	MaxTokens   int
	Temperature float64
	TopP        float64
}

// Completer is implemented by every provider client.
type Completer interface {
	Name() string
	Complete(ctx context.Context, req Request) (string, error)
}

// Options configures a provider client.
type Options struct {
	URL     string
	Token   string
	Model   string
	Timeout time.Duration
}

func (o Options) validate(provider string) error {
	if o.URL == "" {
		return fmt.Errorf("%s url required", provider)
	}
	if o.Token == "" {
		return fmt.Errorf("%s token required", provider)
	}
	return nil
}

func newResty(opts Options) *resty.Client {
	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = 20 * time.Second
	}
	return resty.New().
		SetTimeout(timeout).
		SetAuthToken(opts.Token).
		SetHeader("Content-Type", "application/json").
		SetHeader("Accept", "application/json")
}

var errEmptyCompletion = errors.New("empty completion")

// post sends body as JSON and decodes a successful response into out. Transport
// failures, non-2xx statuses and undecodable bodies map onto the typed Error.
func post(ctx context.Context, client *resty.Client, provider, url string, body, out any) error {
	resp, err := client.R().
		SetContext(ctx).
		SetBody(body).
		Post(url)
	if err != nil {
		return transportError(provider, err)
	}
	if resp.IsError() {
		return statusError(provider, resp.StatusCode())
	}
	if err := json.Unmarshal(resp.Body(), out); err != nil {
		return malformed(provider, err)
	}
	return nil
}
