// Package cleanup post-processes raw transcripts through an LLM.
package cleanup

import (
	"context"
	"fmt"
	"strings"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
	"github.com/openai/openai-go/packages/param"
)

// DefaultSystemPrompt is used when the settings file leaves the prompt
// empty.
const DefaultSystemPrompt = "You are a helpful assistant that cleans up and improves transcribed text. Fix grammar, punctuation, and formatting while preserving the original meaning."

const (
	DefaultModel       = "gpt-4o-mini"
	cleanupTemperature = 0.3
)

// Cleaner rewrites a transcript into polished text.
type Cleaner interface {
	Process(ctx context.Context, text string) (string, error)
}

type Config struct {
	APIKey       string
	Model        string
	SystemPrompt string
	BaseURL      string // test override
}

// OpenAICleaner sends the transcript through the chat completions API.
type OpenAICleaner struct {
	client       openai.Client
	model        string
	systemPrompt string
}

func NewOpenAI(cfg Config) (*OpenAICleaner, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("cleanup requires an API key (set OPENAI_API_KEY)")
	}
	opts := []option.RequestOption{option.WithAPIKey(cfg.APIKey)}
	if cfg.BaseURL != "" {
		opts = append(opts, option.WithBaseURL(cfg.BaseURL))
	}
	model := cfg.Model
	if model == "" {
		model = DefaultModel
	}
	prompt := cfg.SystemPrompt
	if prompt == "" {
		prompt = DefaultSystemPrompt
	}
	return &OpenAICleaner{
		client:       openai.NewClient(opts...),
		model:        model,
		systemPrompt: prompt,
	}, nil
}

func (c *OpenAICleaner) Process(ctx context.Context, text string) (string, error) {
	resp, err := c.client.Chat.Completions.New(ctx, openai.ChatCompletionNewParams{
		Model:       openai.ChatModel(c.model),
		Temperature: param.NewOpt(cleanupTemperature),
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.SystemMessage(c.systemPrompt),
			openai.UserMessage(text),
		},
	})
	if err != nil {
		return "", fmt.Errorf("cleanup request failed: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("cleanup: no choices in response")
	}
	out := strings.TrimSpace(resp.Choices[0].Message.Content)
	if out == "" {
		return "", fmt.Errorf("cleanup: empty response")
	}
	return out, nil
}
