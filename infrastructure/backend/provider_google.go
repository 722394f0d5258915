package backend

import (
	"context"
	"encoding/json"
	"errors"

	"google.golang.org/api/googleapi"
	"google.golang.org/genai"

	"github.com/ahrav/go-verdict/internal/ports"
)

const (
	// GoogleDefaultModel is the default Gemini judgment model.
	GoogleDefaultModel = "gemini-2.0-flash-exp"

	// googleMaxTokens bounds the verdict-plus-reasoning reply.
	googleMaxTokens = 512
)

func init() {
	Register("google", newGoogleBackend)
}

var _ ports.JudgmentBackend = (*googleBackend)(nil)

// googleBackend implements ports.JudgmentBackend against Google's Gemini
// API. Gemini constrains output through a response JSON schema rather than
// tool calling; the verdict field carries the pass/fail enumeration.
type googleBackend struct {
	client     *genai.Client
	model      string
	classifier *ErrorClassifier
}

// newGoogleBackend creates a backend for Google's Gemini API.
func newGoogleBackend(config Config) (ports.JudgmentBackend, error) {
	if config.APIKey == "" {
		return nil, ErrEmptyAPIKey
	}

	model := config.Model
	if model == "" {
		model = GoogleDefaultModel
	}

	client, err := genai.NewClient(context.Background(), &genai.ClientConfig{
		APIKey:  config.APIKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, err
	}

	return &googleBackend{
		client:     client,
		model:      model,
		classifier: &ErrorClassifier{Provider: "google"},
	}, nil
}

// verdictResponseSchema is the closed response schema Gemini is instructed
// to honor: a verdict restricted to the two allowed literals plus a
// reasoning string, with both fields required.
func verdictResponseSchema() *genai.Schema {
	return &genai.Schema{
		Type: genai.TypeObject,
		Properties: map[string]*genai.Schema{
			"verdict": {
				Type:        genai.TypeString,
				Enum:        []string{"pass", "fail"},
				Description: VerdictFieldDescription,
			},
			"reasoning": {
				Type:        genai.TypeString,
				Description: ReasoningFieldDescription,
			},
		},
		Required: []string{"verdict", "reasoning"},
	}
}

// SubmitJudgment sends the judgment prompt with the verdict response schema
// and decodes the JSON reply. A reply that is not valid JSON is surfaced as
// an unstructured result for the fallback parse.
func (b *googleBackend) SubmitJudgment(ctx context.Context, prompt string) (ports.JudgmentResult, error) {
	contents := []*genai.Content{
		genai.NewContentFromText(prompt, genai.RoleUser),
	}

	generateConfig := &genai.GenerateContentConfig{
		Temperature:      genai.Ptr(float32(0)),
		MaxOutputTokens:  googleMaxTokens,
		ResponseMIMEType: "application/json",
		ResponseSchema:   verdictResponseSchema(),
	}

	resp, err := b.client.Models.GenerateContent(ctx, b.model, contents, generateConfig)
	if err != nil {
		return ports.JudgmentResult{}, b.handleError(err)
	}

	content := resp.Text()
	if content == "" {
		return ports.JudgmentResult{}, b.classifier.ClassifyProtocolViolation(
			"empty response", ErrEmptyResponse)
	}

	var args evalArguments
	if err := json.Unmarshal([]byte(content), &args); err != nil {
		// Schema not honored; hand the raw text to the fallback parse.
		return ports.JudgmentResult{Raw: content, Structured: false}, nil
	}

	return ports.JudgmentResult{
		Verdict:    args.Verdict,
		Reasoning:  args.Reasoning,
		Structured: true,
	}, nil
}

// Model returns the configured model identifier.
func (b *googleBackend) Model() string { return b.model }

// handleError provides structured error handling for Google API responses.
func (b *googleBackend) handleError(err error) error {
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		return b.classifier.ClassifyContextError(err)
	}

	var apiErr *googleapi.Error
	if errors.As(err, &apiErr) {
		message := apiErr.Message
		if message == "" && len(apiErr.Errors) > 0 {
			message = apiErr.Errors[0].Message
		}
		return b.classifier.ClassifyHTTPError(apiErr.Code, message, err)
	}

	return NewBackendError("google", KindNetwork, 0, "request failed", err)
}
