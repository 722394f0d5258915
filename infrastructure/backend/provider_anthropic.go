package backend

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"

	"github.com/ahrav/go-verdict/internal/ports"
)

const (
	// AnthropicDefaultModel is the default Anthropic judgment model.
	AnthropicDefaultModel = "claude-3-5-sonnet-20241022"

	// anthropicMaxTokens bounds the verdict-plus-reasoning reply; the
	// Messages API requires an explicit cap.
	anthropicMaxTokens = 512
)

func init() {
	Register("anthropic", newAnthropicBackend)
}

var _ ports.JudgmentBackend = (*anthropicBackend)(nil)

// anthropicBackend implements ports.JudgmentBackend against Anthropic's
// Messages API using tool use with a forced tool choice, which constrains
// the verdict field to the pass/fail enumeration.
type anthropicBackend struct {
	client     anthropic.Client
	model      string
	classifier *ErrorClassifier
}

// newAnthropicBackend creates a backend for Anthropic's Claude API.
func newAnthropicBackend(config Config) (ports.JudgmentBackend, error) {
	if config.APIKey == "" {
		return nil, ErrEmptyAPIKey
	}

	model := config.Model
	if model == "" {
		model = AnthropicDefaultModel
	}

	opts := []option.RequestOption{option.WithAPIKey(config.APIKey)}
	if config.BaseURL != "" {
		validatedURL, err := ValidateBaseURL(config.BaseURL)
		if err != nil {
			return nil, err
		}
		opts = append(opts, option.WithBaseURL(validatedURL))
	}
	if config.Timeout > 0 {
		opts = append(opts, option.WithRequestTimeout(ValidateTimeout(config.Timeout)))
	}

	return &anthropicBackend{
		client:     anthropic.NewClient(opts...),
		model:      model,
		classifier: &ErrorClassifier{Provider: "anthropic"},
	}, nil
}

// SubmitJudgment sends the judgment prompt with the evaluation tool forced
// and decodes the tool-use input block. Text-only replies fall back to the
// unstructured path.
func (b *anthropicBackend) SubmitJudgment(ctx context.Context, prompt string) (ports.JudgmentResult, error) {
	params := anthropic.MessageNewParams{
		Model:     anthropic.Model(b.model),
		MaxTokens: anthropicMaxTokens,
		Messages: []anthropic.MessageParam{
			anthropic.NewUserMessage(anthropic.NewTextBlock(prompt)),
		},
		System: []anthropic.TextBlockParam{{Text: evalSystemPrompt}},
		Tools: []anthropic.ToolUnionParam{
			{
				OfTool: &anthropic.ToolParam{
					Name:        EvalToolName,
					Description: anthropic.String(EvalToolDescription),
					InputSchema: anthropic.ToolInputSchemaParam{
						Properties: evalToolProperties(),
						Required:   []string{"verdict", "reasoning"},
					},
				},
			},
		},
		ToolChoice: anthropic.ToolChoiceUnionParam{
			OfTool: &anthropic.ToolChoiceToolParam{Name: EvalToolName},
		},
		Temperature: anthropic.Float(0),
	}

	message, err := b.client.Messages.New(ctx, params)
	if err != nil {
		return ports.JudgmentResult{}, b.wrapError(err)
	}

	var responseText strings.Builder
	for _, block := range message.Content {
		switch content := block.AsAny().(type) {
		case anthropic.ToolUseBlock:
			if content.Name != EvalToolName {
				continue
			}
			raw, err := json.Marshal(content.Input)
			if err != nil {
				return ports.JudgmentResult{}, b.classifier.ClassifyProtocolViolation(
					fmt.Sprintf("unreadable %s input", EvalToolName), err)
			}
			return parseEvalArguments(raw, b.classifier)
		case anthropic.TextBlock:
			responseText.WriteString(content.Text)
		}
	}

	if text := responseText.String(); text != "" {
		return ports.JudgmentResult{Raw: text, Structured: false}, nil
	}

	return ports.JudgmentResult{}, b.classifier.ClassifyProtocolViolation(
		"no tool call or content in response", ErrEmptyResponse)
}

// Model returns the configured model identifier.
func (b *anthropicBackend) Model() string { return b.model }

// wrapError classifies Anthropic SDK errors into the standard taxonomy.
func (b *anthropicBackend) wrapError(err error) error {
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		return b.classifier.ClassifyContextError(err)
	}

	var anthropicErr *anthropic.Error
	if errors.As(err, &anthropicErr) {
		return b.classifier.ClassifyHTTPError(anthropicErr.StatusCode, "request failed", err)
	}

	return NewBackendError("anthropic", KindNetwork, 0, "request failed", err)
}
