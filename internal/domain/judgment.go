package domain

// Judgment is the result of one evaluation call. It is created by the judge
// client and never mutated afterwards.
type Judgment struct {
	// Verdict is the binary outcome. Guaranteed to be VerdictPass or
	// VerdictFail for every Judgment the judge client produces, including
	// the fail-safe path.
	Verdict Verdict `json:"verdict"`

	// Reasoning is a brief explanation for the verdict, truncated to a
	// bounded length before being stored.
	Reasoning string `json:"reasoning"`

	// Attempts is the number of backend calls consumed to obtain this
	// judgment, including the successful one. Always at least 1.
	Attempts int `json:"attempts"`
}

// LabeledResult pairs a ground-truth label with the verdict a judge
// predicted for the same input. A sequence of these is the sole input to
// the metrics engine; order is irrelevant and duplicates are allowed.
type LabeledResult struct {
	// Label is the ground-truth verdict from the labeled dataset.
	Label Verdict `json:"label"`

	// Prediction is the verdict the judge produced.
	Prediction Verdict `json:"prediction"`
}
