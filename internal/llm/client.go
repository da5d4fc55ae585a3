package llm

import (
	"context"
	"strings"

	"coinsage/internal/domain"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
)

// CompletionRequest is one text-completion invocation. System may be empty.
// History carries prior conversation turns, oldest first, replayed between
// the system prompt and the current user message.
type CompletionRequest struct {
	System      string
	History     []domain.ConversationMessage
	User        string
	Temperature float64
	MaxTokens   int
}

// Client abstracts the chat-completions endpoint for testability.
type Client interface {
	Complete(ctx context.Context, req CompletionRequest) (string, error)
}

type chatCompletionAPI interface {
	CreateChatCompletion(ctx context.Context, params openai.ChatCompletionNewParams) (*openai.ChatCompletion, error)
}

// OpenAIClient talks to any OpenAI-compatible completions endpoint
// (the deployment targets DeepSeek through its compatible API).
type OpenAIClient struct {
	api   chatCompletionAPI
	model string
}

// NewOpenAIClient returns nil when no API key is configured; callers treat
// a nil client as a disabled stage.
func NewOpenAIClient(apiKey, baseURL, model string) *OpenAIClient {
	apiKey = strings.TrimSpace(apiKey)
	if apiKey == "" {
		return nil
	}
	if strings.TrimSpace(model) == "" {
		model = "deepseek-chat"
	}

	opts := []option.RequestOption{option.WithAPIKey(apiKey)}
	if baseURL = strings.TrimSpace(baseURL); baseURL != "" {
		opts = append(opts, option.WithBaseURL(strings.TrimRight(baseURL, "/")+"/v1"))
	}
	client := openai.NewClient(opts...)
	return &OpenAIClient{api: &sdkClient{client: client}, model: model}
}

func (c *OpenAIClient) Complete(ctx context.Context, req CompletionRequest) (string, error) {
	messages := make([]openai.ChatCompletionMessageParamUnion, 0, len(req.History)+2)
	if req.System != "" {
		messages = append(messages, openai.SystemMessage(req.System))
	}
	for _, turn := range req.History {
		switch turn.Role {
		case "assistant":
			messages = append(messages, openai.AssistantMessage(turn.Content))
		default:
			messages = append(messages, openai.UserMessage(turn.Content))
		}
	}
	messages = append(messages, openai.UserMessage(req.User))

	params := openai.ChatCompletionNewParams{
		Model:    c.model,
		Messages: messages,
	}
	if req.Temperature > 0 {
		params.Temperature = openai.Float(req.Temperature)
	}
	if req.MaxTokens > 0 {
		params.MaxTokens = openai.Int(int64(req.MaxTokens))
	}

	completion, err := c.api.CreateChatCompletion(ctx, params)
	if err != nil {
		return "", &domain.UpstreamError{Stage: "completion", Detail: err.Error()}
	}
	if len(completion.Choices) == 0 {
		return "", &domain.UpstreamError{Stage: "completion", Detail: "no choices in response"}
	}
	return completion.Choices[0].Message.Content, nil
}

type sdkClient struct {
	client openai.Client
}

func (c *sdkClient) CreateChatCompletion(ctx context.Context, params openai.ChatCompletionNewParams) (*openai.ChatCompletion, error) {
	return c.client.Chat.Completions.New(ctx, params)
}
