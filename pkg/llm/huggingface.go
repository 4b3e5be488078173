package llm

import (
	"context"
	"encoding/json"
	"strings"

	"github.com/go-resty/resty/v2"
)

// HuggingFaceClient calls a text-generation inference endpoint. The system
// directive and user context are joined into a single prompt.
type HuggingFaceClient struct {
	opts Options
	http *resty.Client
}

type hfParameters struct {
	MaxNewTokens   int     `json:"max_new_tokens"`
	Temperature    float64 `json:"temperature"`
	TopP           float64 `json:"top_p"`
	DoSample       bool    `json:"do_sample"`
	ReturnFullText bool    `json:"return_full_text"`
}

type hfRequest struct {
	Inputs     string       `json:"inputs"`
	Parameters hfParameters `json:"parameters"`
}

type hfGeneration struct {
	GeneratedText string `json:"generated_text"`
}

func NewHuggingFace(opts Options) (*HuggingFaceClient, error) {
	if err := opts.validate("huggingface"); err != nil {
		return nil, err
	}
	return &HuggingFaceClient{opts: opts, http: newResty(opts)}, nil
}

func (c *HuggingFaceClient) Name() string { return "huggingface" }

func (c *HuggingFaceClient) Complete(ctx context.Context, req Request) (string, error) {
	body := hfRequest{
		Inputs: req.System + "\n\n" + req.User,
		Parameters: hfParameters{
			MaxNewTokens: req.MaxTokens,
			Temperature:  req.Temperature,
			TopP:         req.TopP,
			DoSample:     true,
		},
	}

	// The endpoint answers either a list of generations or a single object.
	var raw json.RawMessage
	if err := post(ctx, c.http, c.Name(), c.opts.URL, body, &raw); err != nil {
		return "", err
	}

	var text string
	var list []hfGeneration
	if err := json.Unmarshal(raw, &list); err == nil {
		if len(list) > 0 {
			text = list[0].GeneratedText
		}
	} else {
		var single hfGeneration
		if err := json.Unmarshal(raw, &single); err != nil {
			return "", malformed(c.Name(), err)
		}
		text = single.GeneratedText
	}

	text = strings.TrimSpace(text)
	if text == "" {
		return "", malformed(c.Name(), errEmptyCompletion)
	}
	return text, nil
}
