package backend

import (
	"context"
	"errors"
	"net/http"

	openai "github.com/sashabaranov/go-openai"

	"github.com/ahrav/go-verdict/internal/ports"
)

const (
	// OpenAIDefaultModel is the default OpenAI judgment model.
	OpenAIDefaultModel = "gpt-4o-mini"

	// evalSystemPrompt steers the model toward always submitting its
	// verdict through the evaluation tool.
	evalSystemPrompt = "You are an evaluation assistant. Always use the " +
		EvalToolName + " tool to provide your verdict."
)

func init() {
	Register("openai", newOpenAIBackend)
}

var _ ports.JudgmentBackend = (*openAIBackend)(nil)

// openAIBackend implements ports.JudgmentBackend against the OpenAI Chat
// Completions API using strict function calling, so the verdict field is
// schema-constrained to the pass/fail enumeration. The same adapter serves
// any OpenAI-compatible endpoint via the BaseURL override.
type openAIBackend struct {
	client     *openai.Client
	model      string
	provider   string
	classifier *ErrorClassifier
}

// newOpenAIBackend creates a backend for OpenAI's hosted API.
func newOpenAIBackend(config Config) (ports.JudgmentBackend, error) {
	return newOpenAICompatibleBackend("openai", OpenAIDefaultModel, config)
}

// newOpenAICompatibleBackend builds an adapter for any endpoint speaking the
// OpenAI chat-completions wire format. Both the openai and cerebras
// factories funnel through here.
func newOpenAICompatibleBackend(provider, defaultModel string, config Config) (ports.JudgmentBackend, error) {
	if config.APIKey == "" {
		return nil, ErrEmptyAPIKey
	}

	model := config.Model
	if model == "" {
		model = defaultModel
	}

	clientConfig := openai.DefaultConfig(config.APIKey)

	if config.BaseURL != "" {
		validatedURL, err := ValidateBaseURL(config.BaseURL)
		if err != nil {
			return nil, err
		}
		clientConfig.BaseURL = validatedURL
	}

	if config.Timeout > 0 {
		clientConfig.HTTPClient = &http.Client{
			Timeout: ValidateTimeout(config.Timeout),
		}
	}

	return &openAIBackend{
		client:     openai.NewClientWithConfig(clientConfig),
		model:      model,
		provider:   provider,
		classifier: &ErrorClassifier{Provider: provider},
	}, nil
}

// SubmitJudgment sends the judgment prompt with a forced call to the
// evaluation tool and decodes the structured arguments. A plain text
// completion without a tool call is surfaced as an unstructured result so
// the judge client can apply its constrained fallback parse.
func (b *openAIBackend) SubmitJudgment(ctx context.Context, prompt string) (ports.JudgmentResult, error) {
	req := openai.ChatCompletionRequest{
		Model: b.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: evalSystemPrompt},
			{Role: openai.ChatMessageRoleUser, Content: prompt},
		},
		Tools: []openai.Tool{
			{
				Type: openai.ToolTypeFunction,
				Function: &openai.FunctionDefinition{
					Name:        EvalToolName,
					Description: EvalToolDescription,
					Strict:      true,
					Parameters:  evalToolParameters(),
				},
			},
		},
		ToolChoice: openai.ToolChoice{
			Type:     openai.ToolTypeFunction,
			Function: openai.ToolFunction{Name: EvalToolName},
		},
		// Deterministic scoring; judgment quality degrades with sampling noise.
		Temperature: 0,
	}

	resp, err := b.client.CreateChatCompletion(ctx, req)
	if err != nil {
		return ports.JudgmentResult{}, b.handleError(err)
	}

	if len(resp.Choices) == 0 {
		return ports.JudgmentResult{}, b.classifier.ClassifyProtocolViolation(
			"no response choices returned", ErrNoResponseChoice)
	}

	message := resp.Choices[0].Message

	for _, call := range message.ToolCalls {
		if call.Function.Name == EvalToolName {
			return parseEvalArguments([]byte(call.Function.Arguments), b.classifier)
		}
	}

	// Degraded mode: the model answered in text despite the forced tool
	// choice. Hand the raw text back for the fallback parse.
	if message.Content != "" {
		return ports.JudgmentResult{Raw: message.Content, Structured: false}, nil
	}

	return ports.JudgmentResult{}, b.classifier.ClassifyProtocolViolation(
		"no tool call or content in response", ErrEmptyResponse)
}

// Model returns the configured model identifier.
func (b *openAIBackend) Model() string { return b.model }

// handleError classifies and wraps errors from the OpenAI API.
// It distinguishes between context-related errors, API errors, and other
// failures, wrapping them in the standardized BackendError type.
func (b *openAIBackend) handleError(err error) error {
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		return b.classifier.ClassifyContextError(err)
	}

	var apiErr *openai.APIError
	if errors.As(err, &apiErr) {
		message := apiErr.Message
		if message == "" {
			message = "unknown error"
		}
		return b.classifier.ClassifyHTTPError(apiErr.HTTPStatusCode, message, err)
	}

	var reqErr *openai.RequestError
	if errors.As(err, &reqErr) {
		return b.classifier.ClassifyHTTPError(reqErr.HTTPStatusCode, "request failed", err)
	}

	return NewBackendError(b.provider, KindNetwork, 0, "request failed", err)
}
