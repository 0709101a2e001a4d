package generate

import (
	"context"
	"errors"
	"fmt"

	codex "github.com/Paranoid-AF/zsh-codex"
	defaults "github.com/Paranoid-AF/zsh-codex/default"
	"github.com/openai/openai-go/v3"
	"github.com/openai/openai-go/v3/option"
)

// GroqBaseURL is Groq's OpenAI-compatible endpoint.
const GroqBaseURL = "https://api.groq.com/openai/v1"

// chatCompletions is the part of the openai-go client the adapters use.
type chatCompletions interface {
	New(ctx context.Context, body openai.ChatCompletionNewParams, opts ...option.RequestOption) (*openai.ChatCompletion, error)
}

// OpenAISettings holds the options read from an openai section.
type OpenAISettings struct {
	APIKey       string
	Model        string
	BaseURL      string // empty = SDK default
	Organization string
	Temperature  float64
}

// ParseOpenAISettings validates and extracts the OpenAI adapter options.
func ParseOpenAISettings(cfg *codex.Config) (OpenAISettings, error) {
	key, err := cfg.Require("api_key")
	if err != nil {
		return OpenAISettings{}, err
	}
	temp, err := cfg.Float("temperature", defaultTemperature)
	if err != nil {
		return OpenAISettings{}, err
	}
	return OpenAISettings{
		APIKey:       key,
		Model:        cfg.Get("model", loadModelDefaults().OpenAI),
		BaseURL:      cfg.Get("base_url", ""),
		Organization: cfg.Get("organization", ""),
		Temperature:  temp,
	}, nil
}

// OpenAIClient completes via the OpenAI chat completions API.
type OpenAIClient struct {
	settings OpenAISettings
	chat     chatCompletions
}

// NewOpenAIClient creates an OpenAI adapter. Retries are disabled.
func NewOpenAIClient(s OpenAISettings) *OpenAIClient {
	opts := []option.RequestOption{
		option.WithAPIKey(s.APIKey),
		option.WithMaxRetries(0),
	}
	if s.BaseURL != "" {
		opts = append(opts, option.WithBaseURL(s.BaseURL))
	}
	if s.Organization != "" {
		opts = append(opts, option.WithOrganization(s.Organization))
	}
	client := openai.NewClient(opts...)
	return &OpenAIClient{settings: s, chat: &client.Chat.Completions}
}

// Complete implements Client.
func (c *OpenAIClient) Complete(ctx context.Context, prompt string) (string, error) {
	out, err := chatComplete(ctx, c.chat, c.settings.Model, c.settings.Temperature, prompt)
	if err != nil {
		return "", fmt.Errorf("openai: %w", err)
	}
	return out, nil
}

// Name implements Client.
func (c *OpenAIClient) Name() string { return APITypeOpenAI }

// Model implements Client.
func (c *OpenAIClient) Model() string { return c.settings.Model }

// GroqSettings holds the options read from a groq section.
type GroqSettings struct {
	APIKey      string
	Model       string
	BaseURL     string
	Temperature float64
}

// ParseGroqSettings validates and extracts the Groq adapter options.
func ParseGroqSettings(cfg *codex.Config) (GroqSettings, error) {
	key, err := cfg.Require("api_key")
	if err != nil {
		return GroqSettings{}, err
	}
	temp, err := cfg.Float("temperature", defaultTemperature)
	if err != nil {
		return GroqSettings{}, err
	}
	return GroqSettings{
		APIKey:      key,
		Model:       cfg.Get("model", loadModelDefaults().Groq),
		BaseURL:     cfg.Get("base_url", GroqBaseURL),
		Temperature: temp,
	}, nil
}

// GroqClient completes via Groq's OpenAI-compatible chat completions API.
type GroqClient struct {
	settings GroqSettings
	chat     chatCompletions
}

// NewGroqClient creates a Groq adapter. Retries are disabled.
func NewGroqClient(s GroqSettings) *GroqClient {
	client := openai.NewClient(
		option.WithAPIKey(s.APIKey),
		option.WithBaseURL(s.BaseURL),
		option.WithMaxRetries(0),
	)
	return &GroqClient{settings: s, chat: &client.Chat.Completions}
}

// Complete implements Client.
func (c *GroqClient) Complete(ctx context.Context, prompt string) (string, error) {
	out, err := chatComplete(ctx, c.chat, c.settings.Model, c.settings.Temperature, prompt)
	if err != nil {
		return "", fmt.Errorf("groq: %w", err)
	}
	return out, nil
}

// Name implements Client.
func (c *GroqClient) Name() string { return APITypeGroq }

// Model implements Client.
func (c *GroqClient) Model() string { return c.settings.Model }

// chatComplete sends the system prompt and prompt as one chat completion and
// returns the first choice's message content.
func chatComplete(ctx context.Context, chat chatCompletions, model string, temperature float64, prompt string) (string, error) {
	resp, err := chat.New(ctx, openai.ChatCompletionNewParams{
		Model: openai.ChatModel(model),
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.SystemMessage(defaults.SystemPrompt),
			openai.UserMessage(prompt),
		},
		Temperature: openai.Float(temperature),
	})
	if err != nil {
		return "", err
	}
	if len(resp.Choices) == 0 {
		return "", errors.New("no choices in response")
	}
	return resp.Choices[0].Message.Content, nil
}
