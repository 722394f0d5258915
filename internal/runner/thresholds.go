package runner

import (
	"fmt"

	"github.com/ahrav/go-verdict/internal/metrics"
)

// Default acceptance targets for judge quality: substantial
// chance-corrected agreement and a high failure catch rate.
const (
	DefaultMinKappa      = 0.4
	DefaultMinFailRecall = 0.8
)

// Thresholds are the acceptance criteria a judge must meet before its
// verdicts are trusted for unattended evaluation.
type Thresholds struct {
	// MinKappa is the minimum chance-corrected agreement. Kappa rather
	// than accuracy, since accuracy is inflated under class imbalance.
	MinKappa float64 `yaml:"min_kappa" json:"min_kappa"`

	// MinFailRecall is the minimum fraction of true failures the judge
	// must catch.
	MinFailRecall float64 `yaml:"min_fail_recall" json:"min_fail_recall"`
}

// DefaultThresholds returns the standard acceptance targets.
func DefaultThresholds() Thresholds {
	return Thresholds{
		MinKappa:      DefaultMinKappa,
		MinFailRecall: DefaultMinFailRecall,
	}
}

// Check compares a report against the thresholds and returns one message
// per violated criterion. An empty slice means the judge is acceptable.
func (t Thresholds) Check(report metrics.Report) []string {
	var violations []string

	if report.Kappa < t.MinKappa {
		violations = append(violations, fmt.Sprintf(
			"kappa %.3f below minimum %.3f (%s)",
			report.Kappa, t.MinKappa, metrics.InterpretAgreement(report.Kappa)))
	}

	if report.RecallFail < t.MinFailRecall {
		violations = append(violations, fmt.Sprintf(
			"fail recall %.3f below minimum %.3f: judge is missing real failures",
			report.RecallFail, t.MinFailRecall))
	}

	return violations
}
