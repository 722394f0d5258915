package judge

// DefaultPromptTemplate is the judgment prompt used when no custom template
// is configured. It embeds the question and response verbatim and instructs
// the backend to return a discrete verdict with brief reasoning through the
// evaluation tool. Treated as configuration data so alternative criteria
// require no code change.
const DefaultPromptTemplate = `You are evaluating whether an AI response correctly and helpfully answers a question.

Question: {{.Question}}

Response: {{.Response}}

Evaluate the response on these criteria:
1. Is the response factually correct?
2. Does it actually answer the question asked?
3. Is it complete and not misleading?

Use the submit_evaluation tool to provide your verdict:
- "pass" if the response is correct and helpful
- "fail" if the response is wrong, incomplete, or misleading`

// promptData carries the template inputs for one evaluation.
type promptData struct {
	Question string
	Response string
}
