package generator

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/resumefire/backend/go-services/internal/resume"
	"github.com/resumefire/backend/go-services/pkg/logger"
	"github.com/sashabaranov/go-openai"
)

const defaultModel = "gpt-4o-mini"

// OpenAIConfig configures the chat-completions gateway. BaseURL may point
// at any OpenAI-compatible endpoint.
type OpenAIConfig struct {
	APIKey  string
	Model   string
	BaseURL string
	Timeout time.Duration
}

// OpenAIGateway implements Gateway over the OpenAI chat-completions API.
type OpenAIGateway struct {
	client  *openai.Client
	model   string
	timeout time.Duration
}

func NewOpenAIGateway(cfg OpenAIConfig) (*OpenAIGateway, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("generator API key not set")
	}
	oc := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		oc.BaseURL = strings.TrimRight(cfg.BaseURL, "/")
	}
	model := cfg.Model
	if model == "" {
		model = defaultModel
		logger.Warnf("GENERATOR_MODEL not set, defaulting to %s", model)
	}
	logger.Infow("initializing generator gateway", "model", model, "base_url", oc.BaseURL)
	return &OpenAIGateway{client: openai.NewClientWithConfig(oc), model: model, timeout: cfg.Timeout}, nil
}

func (g *OpenAIGateway) complete(ctx context.Context, req openai.ChatCompletionRequest) (string, error) {
	if g.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, g.timeout)
		defer cancel()
	}
	req.Model = g.model
	resp, err := g.client.CreateChatCompletion(ctx, req)
	if err != nil {
		logger.Errorw("generator call failed", "model", g.model, "error", err)
		return "", fmt.Errorf("chat completion: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("generator returned no choices")
	}
	logger.Debugf("generator finish_reason=%s", resp.Choices[0].FinishReason)
	return resp.Choices[0].Message.Content, nil
}

// Generate asks the model for a tailored copy of doc and returns the raw
// JSON it produced, with any Markdown fence removed.
func (g *OpenAIGateway) Generate(ctx context.Context, doc resume.Document, in Instructions) ([]byte, error) {
	prompt, err := tailorPrompt(doc, in)
	if err != nil {
		return nil, err
	}
	out, err := g.complete(ctx, openai.ChatCompletionRequest{
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleUser, Content: prompt},
		},
		ResponseFormat: &openai.ChatCompletionResponseFormat{Type: openai.ChatCompletionResponseFormatTypeJSONObject},
	})
	if err != nil {
		return nil, &resume.GenerationError{
			Reason: "there was an error generating the modified resume, please try again",
			Err:    err,
		}
	}
	return []byte(stripFences(out)), nil
}

// Summarize drafts a short first-person summary.
func (g *OpenAIGateway) Summarize(ctx context.Context, title string, experience []resume.Experience, skills []string) (string, error) {
	out, err := g.complete(ctx, openai.ChatCompletionRequest{
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleUser, Content: summaryPrompt(title, experience, skills)},
		},
	})
	if err != nil {
		return "", &resume.GenerationError{
			Reason: "there was an error generating the summary, please try again",
			Err:    err,
		}
	}
	return strings.TrimSpace(out), nil
}
