package generate

import (
	"context"
	"errors"
	"log/slog"
	"sort"

	codex "github.com/Paranoid-AF/zsh-codex"
)

// API types accepted in the api_type option.
const (
	APITypeOpenAI  = "openai"
	APITypeGoogle  = "gemeni"
	APITypeGemini  = "gemini"
	APITypeGroq    = "groq"
	APITypeMistral = "mistral"
	APITypeBedrock = "bedrock"
)

type constructor func(ctx context.Context, cfg *codex.Config) (Client, error)

// constructors is the closed api_type -> adapter table.
var constructors = map[string]constructor{
	APITypeOpenAI: func(ctx context.Context, cfg *codex.Config) (Client, error) {
		s, err := ParseOpenAISettings(cfg)
		if err != nil {
			return nil, err
		}
		return NewOpenAIClient(s), nil
	},
	APITypeGoogle: newGoogleFromConfig,
	APITypeGemini: newGoogleFromConfig,
	APITypeGroq: func(ctx context.Context, cfg *codex.Config) (Client, error) {
		s, err := ParseGroqSettings(cfg)
		if err != nil {
			return nil, err
		}
		return NewGroqClient(s), nil
	},
	APITypeMistral: func(ctx context.Context, cfg *codex.Config) (Client, error) {
		s, err := ParseMistralSettings(cfg)
		if err != nil {
			return nil, err
		}
		return NewMistralClient(s)
	},
	APITypeBedrock: func(ctx context.Context, cfg *codex.Config) (Client, error) {
		s, err := ParseBedrockSettings(cfg)
		if err != nil {
			return nil, err
		}
		return NewBedrockClient(ctx, s)
	},
}

func newGoogleFromConfig(ctx context.Context, cfg *codex.Config) (Client, error) {
	s, err := ParseGoogleSettings(cfg)
	if err != nil {
		return nil, err
	}
	return NewGoogleClient(ctx, s)
}

// SupportedAPITypes returns the accepted api_type values in sorted order.
func SupportedAPITypes() []string {
	types := make([]string, 0, len(constructors))
	for k := range constructors {
		types = append(types, k)
	}
	sort.Strings(types)
	return types
}

// Create builds the adapter selected by the api_type option of cfg.
// Settings are validated before any vendor SDK client is constructed.
func Create(ctx context.Context, cfg *codex.Config) (Client, error) {
	apiType := cfg.APIType()
	if apiType == "" {
		return nil, &codex.ConfigurationError{
			Path:    cfg.Path,
			Section: cfg.Service,
			Key:     "api_type",
			Err:     errors.New("required key is missing"),
		}
	}

	ctor, ok := constructors[apiType]
	if !ok {
		return nil, &codex.UnsupportedServiceError{APIType: apiType, Supported: SupportedAPITypes()}
	}

	client, err := ctor(ctx, cfg)
	if err != nil {
		return nil, err
	}

	slog.Debug("client created", "service", cfg.Service, "api_type", apiType, "model", client.Model())
	return client, nil
}
