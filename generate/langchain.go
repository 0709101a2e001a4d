package generate

import (
	"context"
	"errors"
	"fmt"

	codex "github.com/Paranoid-AF/zsh-codex"
	defaults "github.com/Paranoid-AF/zsh-codex/default"
	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langchaingo/llms/googleai"
	"github.com/tmc/langchaingo/llms/mistral"
)

// contentGenerator is the part of a langchaingo model the adapters use.
type contentGenerator interface {
	GenerateContent(ctx context.Context, messages []llms.MessageContent, options ...llms.CallOption) (*llms.ContentResponse, error)
}

// SDK constructors, replaced in tests.
var (
	newGoogleModel = func(ctx context.Context, s GoogleSettings) (contentGenerator, error) {
		m, err := googleai.New(ctx,
			googleai.WithAPIKey(s.APIKey),
			googleai.WithDefaultModel(s.Model),
		)
		if err != nil {
			return nil, err
		}
		return m, nil
	}
	newMistralModel = func(s MistralSettings) (contentGenerator, error) {
		m, err := mistral.New(
			mistral.WithAPIKey(s.APIKey),
			mistral.WithModel(s.Model),
		)
		if err != nil {
			return nil, err
		}
		return m, nil
	}
)

// GoogleSettings holds the options read from a gemeni section.
type GoogleSettings struct {
	APIKey string
	Model  string
}

// ParseGoogleSettings validates and extracts the Google Generative AI adapter options.
func ParseGoogleSettings(cfg *codex.Config) (GoogleSettings, error) {
	key, err := cfg.Require("api_key")
	if err != nil {
		return GoogleSettings{}, err
	}
	return GoogleSettings{
		APIKey: key,
		Model:  cfg.Get("model", loadModelDefaults().Google),
	}, nil
}

// GoogleClient completes via Google Generative AI. The system prompt and the
// command buffer are sent as a single chat message.
type GoogleClient struct {
	settings GoogleSettings
	model    contentGenerator
}

// NewGoogleClient creates a Google Generative AI adapter.
func NewGoogleClient(ctx context.Context, s GoogleSettings) (*GoogleClient, error) {
	m, err := newGoogleModel(ctx, s)
	if err != nil {
		return nil, fmt.Errorf("gemini: %w", err)
	}
	return &GoogleClient{settings: s, model: m}, nil
}

// Complete implements Client.
func (c *GoogleClient) Complete(ctx context.Context, prompt string) (string, error) {
	msgs := []llms.MessageContent{
		llms.TextParts(llms.ChatMessageTypeHuman, defaults.SystemPrompt+"\n\n"+prompt),
	}
	out, err := firstChoice(c.model.GenerateContent(ctx, msgs))
	if err != nil {
		return "", fmt.Errorf("gemini: %w", err)
	}
	return out, nil
}

// Name implements Client.
func (c *GoogleClient) Name() string { return APITypeGoogle }

// Model implements Client.
func (c *GoogleClient) Model() string { return c.settings.Model }

// MistralSettings holds the options read from a mistral section.
type MistralSettings struct {
	APIKey      string
	Model       string
	Temperature float64
}

// ParseMistralSettings validates and extracts the Mistral adapter options.
func ParseMistralSettings(cfg *codex.Config) (MistralSettings, error) {
	key, err := cfg.Require("api_key")
	if err != nil {
		return MistralSettings{}, err
	}
	temp, err := cfg.Float("temperature", defaultTemperature)
	if err != nil {
		return MistralSettings{}, err
	}
	return MistralSettings{
		APIKey:      key,
		Model:       cfg.Get("model", loadModelDefaults().Mistral),
		Temperature: temp,
	}, nil
}

// MistralClient completes via the Mistral chat API.
type MistralClient struct {
	settings MistralSettings
	model    contentGenerator
}

// NewMistralClient creates a Mistral adapter.
func NewMistralClient(s MistralSettings) (*MistralClient, error) {
	m, err := newMistralModel(s)
	if err != nil {
		return nil, fmt.Errorf("mistral: %w", err)
	}
	return &MistralClient{settings: s, model: m}, nil
}

// Complete implements Client.
func (c *MistralClient) Complete(ctx context.Context, prompt string) (string, error) {
	msgs := []llms.MessageContent{
		llms.TextParts(llms.ChatMessageTypeSystem, defaults.SystemPrompt),
		llms.TextParts(llms.ChatMessageTypeHuman, prompt),
	}
	out, err := firstChoice(c.model.GenerateContent(ctx, msgs,
		llms.WithModel(c.settings.Model),
		llms.WithTemperature(c.settings.Temperature),
	))
	if err != nil {
		return "", fmt.Errorf("mistral: %w", err)
	}
	return out, nil
}

// Name implements Client.
func (c *MistralClient) Name() string { return APITypeMistral }

// Model implements Client.
func (c *MistralClient) Model() string { return c.settings.Model }

func firstChoice(resp *llms.ContentResponse, err error) (string, error) {
	if err != nil {
		return "", err
	}
	if resp == nil || len(resp.Choices) == 0 {
		return "", errors.New("no choices in response")
	}
	return resp.Choices[0].Content, nil
}
