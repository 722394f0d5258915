package backend

import (
	"encoding/json"
	"fmt"

	"github.com/ahrav/go-verdict/internal/ports"
)

// The submit_evaluation tool is the structured-output contract every
// provider adapter enforces: a closed verdict enumeration plus a brief
// reasoning string, with no extra fields allowed. Forcing the model to call
// this tool eliminates free-text parsing from the primary path.
const (
	// EvalToolName is the function/tool name the model is forced to call.
	EvalToolName = "submit_evaluation"

	// EvalToolDescription explains the tool to the model.
	EvalToolDescription = "Submit the evaluation result for a question/response pair"

	// VerdictFieldDescription documents the verdict enumeration.
	VerdictFieldDescription = "pass if the response correctly answers the question, fail otherwise"

	// ReasoningFieldDescription documents the reasoning field.
	ReasoningFieldDescription = "Brief explanation for the verdict (1-2 sentences)"
)

// evalToolProperties returns the JSON Schema property map shared by all
// provider tool definitions.
func evalToolProperties() map[string]any {
	return map[string]any{
		"verdict": map[string]any{
			"type":        "string",
			"enum":        []string{"pass", "fail"},
			"description": VerdictFieldDescription,
		},
		"reasoning": map[string]any{
			"type":        "string",
			"description": ReasoningFieldDescription,
		},
	}
}

// evalToolParameters returns the full JSON Schema object for providers that
// take the schema as an opaque parameters document (OpenAI-style function
// definitions). additionalProperties must be false for strict mode.
func evalToolParameters() map[string]any {
	return map[string]any{
		"type":                 "object",
		"properties":           evalToolProperties(),
		"required":             []string{"verdict", "reasoning"},
		"additionalProperties": false,
	}
}

// evalArguments mirrors the submit_evaluation argument payload.
type evalArguments struct {
	Verdict   string `json:"verdict"`
	Reasoning string `json:"reasoning"`
}

// parseEvalArguments decodes a tool-call argument document into a structured
// JudgmentResult. A payload that does not decode is a protocol violation,
// not a transient failure; missing fields are left empty for the judge
// client's fail-safe defaults to handle.
func parseEvalArguments(raw []byte, classifier *ErrorClassifier) (ports.JudgmentResult, error) {
	var args evalArguments
	if err := json.Unmarshal(raw, &args); err != nil {
		return ports.JudgmentResult{}, classifier.ClassifyProtocolViolation(
			fmt.Sprintf("malformed %s arguments", EvalToolName), err)
	}

	return ports.JudgmentResult{
		Verdict:    args.Verdict,
		Reasoning:  args.Reasoning,
		Structured: true,
	}, nil
}
