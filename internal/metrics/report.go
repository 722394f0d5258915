package metrics

import (
	"fmt"
	"strings"
)

// String renders the report for terminal output. All values are derived;
// rendering never mutates the report.
func (r Report) String() string {
	var b strings.Builder

	b.WriteString("=== Judge Evaluation Report ===\n\n")

	b.WriteString("Confusion Matrix:\n")
	b.WriteString(fmt.Sprintf("  TP: %-5d FP: %d\n", r.Counts.TP, r.Counts.FP))
	b.WriteString(fmt.Sprintf("  FN: %-5d TN: %d\n", r.Counts.FN, r.Counts.TN))
	b.WriteString(fmt.Sprintf("  Total: %d\n\n", r.Total))

	b.WriteString("Accuracy:\n")
	b.WriteString(fmt.Sprintf("  Accuracy: %.2f%% (CI: %.2f%% - %.2f%%)\n\n",
		r.Accuracy*100, r.AccuracyCI.Lower*100, r.AccuracyCI.Upper*100))

	b.WriteString("Pass Detection:\n")
	b.WriteString(fmt.Sprintf("  Precision: %.3f  Recall: %.3f  F1: %.3f\n\n",
		r.PrecisionPass, r.RecallPass, r.F1Pass))

	b.WriteString("Fail Detection:\n")
	b.WriteString(fmt.Sprintf("  Precision: %.3f  Recall: %.3f  F1: %.3f\n\n",
		r.PrecisionFail, r.RecallFail, r.F1Fail))

	b.WriteString("Agreement:\n")
	b.WriteString(fmt.Sprintf("  Cohen's Kappa: %.3f (%s)\n", r.Kappa, InterpretAgreement(r.Kappa)))

	return b.String()
}
