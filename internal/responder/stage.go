package responder

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/ejidepharmacy/pharmabot-backend/pkg/config"
	"github.com/ejidepharmacy/pharmabot-backend/pkg/llm"
)

// Stage is one step of the reply chain. Any error means "no answer" and the
// chain moves on.
type Stage interface {
	Name() string
	Attempt(ctx context.Context, p Prompt) (string, error)
}

var errNoAnswer = errors.New("no answer")

// AIStage asks an external completion provider.
type AIStage struct {
	completer llm.Completer
	system    string
	params    llm.Request
}

func NewAIStage(c llm.Completer, system string, cfg config.AIConfig) *AIStage {
	return &AIStage{
		completer: c,
		system:    system,
		params: llm.Request{
			MaxTokens:   cfg.MaxTokens,
			Temperature: cfg.Temperature,
			TopP:        cfg.TopP,
		},
	}
}

func (s *AIStage) Name() string { return s.completer.Name() }

func (s *AIStage) Attempt(ctx context.Context, p Prompt) (string, error) {
	req := s.params
	req.System = s.system
	req.User = p.Context
	reply, err := s.completer.Complete(ctx, req)
	if err != nil {
		return "", err
	}
	if strings.TrimSpace(reply) == "" {
		return "", errNoAnswer
	}
	return reply, nil
}

// StagesFromConfig builds the AI stages in the configured order. Providers
// that lack credentials, or that are switched off, are left out.
func StagesFromConfig(cfg config.AIConfig, system string) ([]Stage, error) {
	stages := []Stage{}
	for _, raw := range cfg.Stages {
		switch name := strings.ToLower(strings.TrimSpace(raw)); name {
		case "":
			continue
		case "groq":
			if cfg.GroqAPIKey == "" {
				continue
			}
			client, err := llm.NewGroq(llm.Options{
				URL:     cfg.GroqURL,
				Token:   cfg.GroqAPIKey,
				Model:   cfg.GroqModel,
				Timeout: cfg.StageTimeout,
			})
			if err != nil {
				return nil, err
			}
			stages = append(stages, NewAIStage(client, system, cfg))
		case "huggingface", "hf":
			if !cfg.HuggingFaceEnabled || cfg.HuggingFaceToken == "" {
				continue
			}
			client, err := llm.NewHuggingFace(llm.Options{
				URL:     cfg.HuggingFaceURL,
				Token:   cfg.HuggingFaceToken,
				Timeout: cfg.HuggingFaceTimeout,
			})
			if err != nil {
				return nil, err
			}
			stages = append(stages, NewAIStage(client, system, cfg))
		default:
			return nil, fmt.Errorf("unknown ai stage %q", raw)
		}
	}
	return stages, nil
}
