package engine

import (
	"context"
	"fmt"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
)

// DefaultOpenAIModel is the default model for OpenAI-compatible endpoints.
const DefaultOpenAIModel = "gpt-4o"

// OpenAI summarizes via an OpenAI-compatible chat completions endpoint.
// A custom base URL allows pointing at any compatible provider.
type OpenAI struct {
	client *openai.Client
	model  string
}

// NewOpenAI creates an OpenAI engine. Empty baseURL uses the official
// endpoint; empty model selects DefaultOpenAIModel.
func NewOpenAI(apiKey, baseURL, model string) *OpenAI {
	opts := []option.RequestOption{option.WithAPIKey(apiKey)}
	if baseURL != "" {
		opts = append(opts, option.WithBaseURL(baseURL))
	}
	if model == "" {
		model = DefaultOpenAIModel
	}
	return &OpenAI{
		client: openai.NewClient(opts...),
		model:  model,
	}
}

// Name returns "openai".
func (o *OpenAI) Name() string { return "openai" }

// Summarize performs one chat completion request.
func (o *OpenAI) Summarize(ctx context.Context, req Request) (string, error) {
	maxTokens := req.MaxTokens
	if maxTokens == 0 {
		maxTokens = DefaultMaxTokens
	}

	completion, err := o.client.Chat.Completions.New(ctx, openai.ChatCompletionNewParams{
		Model:               openai.F(openai.ChatModel(o.model)),
		MaxCompletionTokens: openai.F(int64(maxTokens)),
		Temperature:         openai.F(0.3),
		Messages: openai.F([]openai.ChatCompletionMessageParamUnion{
			openai.SystemMessage(req.System),
			openai.UserMessage(req.Prompt),
		}),
	})
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrSummarizationFailed, err)
	}
	if len(completion.Choices) == 0 || completion.Choices[0].Message.Content == "" {
		return "", ErrEmptyResponse
	}
	return completion.Choices[0].Message.Content, nil
}
