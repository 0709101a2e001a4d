package generate

import (
	"context"
	"testing"

	"github.com/aws/aws-sdk-go-v2/service/bedrockruntime"
	"github.com/tmc/langchaingo/llms"
)

type fakeGenerator struct {
	text     string
	err      error
	messages []llms.MessageContent
	options  llms.CallOptions
	calls    int
}

func (f *fakeGenerator) GenerateContent(_ context.Context, messages []llms.MessageContent, options ...llms.CallOption) (*llms.ContentResponse, error) {
	f.calls++
	f.messages = messages
	for _, opt := range options {
		opt(&f.options)
	}
	if f.err != nil {
		return nil, f.err
	}
	return &llms.ContentResponse{Choices: []*llms.ContentChoice{{Content: f.text}}}, nil
}

type fakeInvoker struct {
	body  string
	err   error
	input *bedrockruntime.InvokeModelInput
}

func (f *fakeInvoker) InvokeModel(_ context.Context, params *bedrockruntime.InvokeModelInput, _ ...func(*bedrockruntime.Options)) (*bedrockruntime.InvokeModelOutput, error) {
	f.input = params
	if f.err != nil {
		return nil, f.err
	}
	return &bedrockruntime.InvokeModelOutput{Body: []byte(f.body)}, nil
}

type stubClient struct {
	model      string
	completion string
	err        error
	prompts    []string
}

func (s *stubClient) Complete(_ context.Context, prompt string) (string, error) {
	s.prompts = append(s.prompts, prompt)
	return s.completion, s.err
}

func (s *stubClient) Name() string  { return "stub" }
func (s *stubClient) Model() string {
	if s.model != "" {
		return s.model
	}
	return "stub-model"
}

// stubSDKs swaps the langchaingo and bedrock constructors for fakes and
// counts how often any of them was invoked.
func stubSDKs(t *testing.T, gen *fakeGenerator, inv *fakeInvoker) *int {
	t.Helper()
	var calls int
	origGoogle, origMistral, origBedrock := newGoogleModel, newMistralModel, newBedrockRuntime
	newGoogleModel = func(context.Context, GoogleSettings) (contentGenerator, error) {
		calls++
		return gen, nil
	}
	newMistralModel = func(MistralSettings) (contentGenerator, error) {
		calls++
		return gen, nil
	}
	newBedrockRuntime = func(context.Context, BedrockSettings) (modelInvoker, error) {
		calls++
		return inv, nil
	}
	t.Cleanup(func() {
		newGoogleModel, newMistralModel, newBedrockRuntime = origGoogle, origMistral, origBedrock
	})
	return &calls
}
