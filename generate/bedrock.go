package generate

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	codex "github.com/Paranoid-AF/zsh-codex"
	defaults "github.com/Paranoid-AF/zsh-codex/default"
	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/bedrockruntime"
)

const (
	bedrockDefaultRegion    = "us-east-1"
	bedrockAnthropicVersion = "bedrock-2023-05-31"
	bedrockMaxTokens        = 1000
)

// modelInvoker is the part of the bedrockruntime client the adapter uses.
type modelInvoker interface {
	InvokeModel(ctx context.Context, params *bedrockruntime.InvokeModelInput, optFns ...func(*bedrockruntime.Options)) (*bedrockruntime.InvokeModelOutput, error)
}

// newBedrockRuntime builds the SDK client, replaced in tests.
var newBedrockRuntime = func(ctx context.Context, s BedrockSettings) (modelInvoker, error) {
	cfg, err := config.LoadDefaultConfig(ctx,
		config.WithRegion(s.Region),
		config.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(s.AccessKeyID, s.SecretAccessKey, s.SessionToken)),
		config.WithRetryMaxAttempts(1),
	)
	if err != nil {
		return nil, fmt.Errorf("loading aws config: %w", err)
	}
	return bedrockruntime.NewFromConfig(cfg), nil
}

// BedrockSettings holds the options read from a bedrock section.
type BedrockSettings struct {
	AccessKeyID     string
	SecretAccessKey string
	SessionToken    string
	Region          string
	Model           string
	Temperature     float64
}

// ParseBedrockSettings validates and extracts the Amazon Bedrock adapter options.
func ParseBedrockSettings(cfg *codex.Config) (BedrockSettings, error) {
	id, err := cfg.Require("aws_access_key_id")
	if err != nil {
		return BedrockSettings{}, err
	}
	secret, err := cfg.Require("aws_secret_access_key")
	if err != nil {
		return BedrockSettings{}, err
	}
	temp, err := cfg.Float("temperature", defaultTemperature)
	if err != nil {
		return BedrockSettings{}, err
	}
	return BedrockSettings{
		AccessKeyID:     id,
		SecretAccessKey: secret,
		SessionToken:    cfg.Get("aws_session_token", ""),
		Region:          cfg.Get("aws_region", bedrockDefaultRegion),
		Model:           cfg.Get("model", loadModelDefaults().Bedrock),
		Temperature:     temp,
	}, nil
}

// BedrockClient completes via an Anthropic model hosted on Amazon Bedrock.
type BedrockClient struct {
	settings BedrockSettings
	runtime  modelInvoker
}

// NewBedrockClient creates an Amazon Bedrock adapter. Retries are disabled.
func NewBedrockClient(ctx context.Context, s BedrockSettings) (*BedrockClient, error) {
	rt, err := newBedrockRuntime(ctx, s)
	if err != nil {
		return nil, fmt.Errorf("bedrock: %w", err)
	}
	return &BedrockClient{settings: s, runtime: rt}, nil
}

type bedrockMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type bedrockRequest struct {
	AnthropicVersion string           `json:"anthropic_version"`
	MaxTokens        int              `json:"max_tokens"`
	System           string           `json:"system"`
	Messages         []bedrockMessage `json:"messages"`
	Temperature      float64          `json:"temperature"`
}

type bedrockContent struct {
	Type string `json:"type"`
	Text string `json:"text"`
}

type bedrockResponse struct {
	Content []bedrockContent `json:"content"`
}

// Complete implements Client.
func (c *BedrockClient) Complete(ctx context.Context, prompt string) (string, error) {
	body, err := json.Marshal(bedrockRequest{
		AnthropicVersion: bedrockAnthropicVersion,
		MaxTokens:        bedrockMaxTokens,
		System:           defaults.SystemPrompt,
		Messages:         []bedrockMessage{{Role: "user", Content: prompt}},
		Temperature:      c.settings.Temperature,
	})
	if err != nil {
		return "", fmt.Errorf("bedrock: %w", err)
	}

	out, err := c.runtime.InvokeModel(ctx, &bedrockruntime.InvokeModelInput{
		ModelId:     aws.String(c.settings.Model),
		Body:        body,
		Accept:      aws.String("application/json"),
		ContentType: aws.String("application/json"),
	})
	if err != nil {
		return "", fmt.Errorf("bedrock: %w", err)
	}

	var resp bedrockResponse
	if err := json.Unmarshal(out.Body, &resp); err != nil {
		return "", fmt.Errorf("bedrock: failed to parse response: %w (body: %s)", err, string(out.Body))
	}
	if len(resp.Content) == 0 {
		return "", errors.New("bedrock: no content in response")
	}
	return resp.Content[0].Text, nil
}

// Name implements Client.
func (c *BedrockClient) Name() string { return APITypeBedrock }

// Model implements Client.
func (c *BedrockClient) Model() string { return c.settings.Model }
