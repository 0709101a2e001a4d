package generate

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	codex "github.com/Paranoid-AF/zsh-codex"
	defaults "github.com/Paranoid-AF/zsh-codex/default"
	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBedrockComplete(t *testing.T) {
	inv := &fakeInvoker{body: `{"id":"msg_1","type":"message","role":"assistant","content":[{"type":"text","text":"aws s3 ls"}]}`}
	stubSDKs(t, &fakeGenerator{}, inv)

	client, err := Create(context.Background(), codex.NewConfig("bedrock_service", map[string]string{
		"api_type":              "bedrock",
		"aws_access_key_id":     "id",
		"aws_secret_access_key": "secret",
		"model":                 "anthropic.claude-3-haiku-20240307-v1:0",
		"temperature":           "0.3",
	}))
	require.NoError(t, err)
	require.IsType(t, &BedrockClient{}, client)

	got, err := client.Complete(context.Background(), "#!/bin/zsh\n\naws s3")
	require.NoError(t, err)
	assert.Equal(t, "aws s3 ls", got)

	require.NotNil(t, inv.input)
	assert.Equal(t, "anthropic.claude-3-haiku-20240307-v1:0", aws.ToString(inv.input.ModelId))
	assert.Equal(t, "application/json", aws.ToString(inv.input.ContentType))
	assert.Equal(t, "application/json", aws.ToString(inv.input.Accept))

	var body bedrockRequest
	require.NoError(t, json.Unmarshal(inv.input.Body, &body))
	assert.Equal(t, "bedrock-2023-05-31", body.AnthropicVersion)
	assert.Equal(t, 1000, body.MaxTokens)
	assert.Equal(t, defaults.SystemPrompt, body.System)
	assert.Equal(t, 0.3, body.Temperature)
	assert.Equal(t, []bedrockMessage{{Role: "user", Content: "#!/bin/zsh\n\naws s3"}}, body.Messages)
}

func TestBedrockCompleteErrors(t *testing.T) {
	sdkErr := errors.New("AccessDeniedException")
	tests := []struct {
		name string
		inv  *fakeInvoker
	}{
		{"sdk error", &fakeInvoker{err: sdkErr}},
		{"malformed body", &fakeInvoker{body: "not json"}},
		{"empty content", &fakeInvoker{body: `{"content":[]}`}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client := &BedrockClient{settings: BedrockSettings{Model: "m"}, runtime: tt.inv}
			_, err := client.Complete(context.Background(), "ls")
			require.Error(t, err)
			assert.Contains(t, err.Error(), "bedrock")
		})
	}

	client := &BedrockClient{settings: BedrockSettings{Model: "m"}, runtime: &fakeInvoker{err: sdkErr}}
	_, err := client.Complete(context.Background(), "ls")
	assert.ErrorIs(t, err, sdkErr)
}
