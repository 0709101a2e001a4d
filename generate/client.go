// Package generate turns a zsh command-line buffer into a model completion.
// It holds the vendor adapters, the factory that picks one from the active
// configuration section, and the Engine that wraps a single completion call.
package generate

import (
	"cmp"
	"context"
	"log/slog"

	"github.com/codingconcepts/env"
)

// Client is a vendor adapter. Complete issues exactly one blocking request.
type Client interface {
	// Complete sends prompt to the model and returns the raw completion text.
	Complete(ctx context.Context, prompt string) (string, error)
	// Name returns the api_type the client was built for.
	Name() string
	// Model returns the model identifier sent to the vendor.
	Model() string
}

// Built-in default models, used when neither the section nor the
// environment names one.
const (
	DefaultOpenAIModel  = "gpt-4o-mini"
	DefaultGoogleModel  = "gemini-1.5-pro-latest"
	DefaultGroqModel    = "llama-3.2-11b-text-preview"
	DefaultMistralModel = "mistral-small-latest"
	DefaultBedrockModel = "anthropic.claude-3-5-sonnet-20240620-v1:0"
)

// modelDefaults are the per-vendor default models, overridable via environment.
type modelDefaults struct {
	OpenAI  string `env:"OPENAI_DEFAULT_MODEL"`
	Google  string `env:"GOOGLE_GENAI_DEFAULT_MODEL"`
	Groq    string `env:"GROQ_DEFAULT_MODEL"`
	Mistral string `env:"MISTRAL_DEFAULT_MODEL"`
	Bedrock string `env:"BEDROCK_DEFAULT_MODEL"`
}

func loadModelDefaults() modelDefaults {
	var d modelDefaults
	if err := env.Set(&d); err != nil {
		slog.Warn("failed to read default model overrides, using built-in defaults", "error", err)
		d = modelDefaults{}
	}
	return modelDefaults{
		OpenAI:  cmp.Or(d.OpenAI, DefaultOpenAIModel),
		Google:  cmp.Or(d.Google, DefaultGoogleModel),
		Groq:    cmp.Or(d.Groq, DefaultGroqModel),
		Mistral: cmp.Or(d.Mistral, DefaultMistralModel),
		Bedrock: cmp.Or(d.Bedrock, DefaultBedrockModel),
	}
}

// defaultTemperature matches the vendors' own default sampling temperature.
const defaultTemperature = 1.0
