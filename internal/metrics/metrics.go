// Package metrics turns a batch of (label, prediction) pairs into the
// statistics that determine whether a judge is trustworthy: the confusion
// matrix, accuracy with confidence bounds, per-class precision/recall/F1,
// and chance-corrected agreement. Every function here is pure; computation
// never raises on degenerate input, it resolves to well-defined zero values.
package metrics

import (
	"math"

	"github.com/ahrav/go-verdict/internal/domain"
)

// ConfidenceLevel selects the z-score used for the accuracy confidence
// interval.
type ConfidenceLevel float64

const (
	// Confidence90 is the 90% confidence level (z = 1.645).
	Confidence90 ConfidenceLevel = 0.90
	// Confidence95 is the default 95% confidence level (z = 1.96).
	Confidence95 ConfidenceLevel = 0.95
	// Confidence99 is the 99% confidence level (z = 2.576).
	Confidence99 ConfidenceLevel = 0.99
)

// zScore returns the normal-approximation z value for the level.
// Unrecognized levels fall back to the 95% default.
func (c ConfidenceLevel) zScore() float64 {
	switch c {
	case Confidence99:
		return 2.576
	case Confidence90:
		return 1.645
	default:
		return 1.96
	}
}

// ConfusionCounts is the four-way count of prediction versus ground truth,
// derived deterministically from a sequence of labeled results.
// The sum of the four counts always equals the sample total.
type ConfusionCounts struct {
	// TP counts label=pass predicted pass.
	TP int `json:"tp" yaml:"tp"`
	// FP counts label=fail predicted pass (false alarm).
	FP int `json:"fp" yaml:"fp"`
	// FN counts label=pass predicted fail (missed pass).
	FN int `json:"fn" yaml:"fn"`
	// TN counts label=fail predicted fail (correct reject).
	TN int `json:"tn" yaml:"tn"`
}

// Total returns the number of samples the counts were derived from.
func (c ConfusionCounts) Total() int { return c.TP + c.FP + c.FN + c.TN }

// Interval is a closed confidence interval for a rate in [0, 1].
type Interval struct {
	Lower float64 `json:"lower" yaml:"lower"`
	Upper float64 `json:"upper" yaml:"upper"`
}

// Report holds every statistic derived from one batch of labeled results.
// It is fully determined by its ConfusionCounts and carries no hidden
// state; recomputing from the counts reproduces every field.
type Report struct {
	// Total is the number of samples.
	Total int `json:"total" yaml:"total"`

	// Counts is the confusion matrix the rates derive from.
	Counts ConfusionCounts `json:"counts" yaml:"counts"`

	// Accuracy is the fraction of predictions matching the label.
	// Misleading under class imbalance; prefer Kappa for acceptance.
	Accuracy float64 `json:"accuracy" yaml:"accuracy"`

	// AccuracyCI is the normal-approximation confidence interval for
	// Accuracy, clamped to [0, 1].
	AccuracyCI Interval `json:"accuracy_ci" yaml:"accuracy_ci"`

	// PrecisionPass, RecallPass, and F1Pass describe pass detection.
	PrecisionPass float64 `json:"precision_pass" yaml:"precision_pass"`
	RecallPass    float64 `json:"recall_pass" yaml:"recall_pass"`
	F1Pass        float64 `json:"f1_pass" yaml:"f1_pass"`

	// PrecisionFail, RecallFail, and F1Fail describe fail detection.
	// RecallFail is the single most important output: the fraction of
	// true failures the judge actually caught.
	PrecisionFail float64 `json:"precision_fail" yaml:"precision_fail"`
	RecallFail    float64 `json:"recall_fail" yaml:"recall_fail"`
	F1Fail        float64 `json:"f1_fail" yaml:"f1_fail"`

	// Kappa is Cohen's chance-corrected agreement, the primary
	// acceptance criterion since raw accuracy is inflated under class
	// imbalance. Defined as 0 when expected agreement is 1.
	Kappa float64 `json:"kappa" yaml:"kappa"`
}

// Option customizes a Compute call.
type Option func(*options)

type options struct {
	confidence ConfidenceLevel
}

// WithConfidenceLevel overrides the default 95% confidence level for the
// accuracy interval.
func WithConfidenceLevel(level ConfidenceLevel) Option {
	return func(o *options) { o.confidence = level }
}

// Count tallies the confusion matrix from a sequence of labeled results
// using the standard convention: pass is the positive class.
func Count(results []domain.LabeledResult) ConfusionCounts {
	var counts ConfusionCounts
	for _, r := range results {
		switch {
		case r.Label == domain.VerdictPass && r.Prediction == domain.VerdictPass:
			counts.TP++
		case r.Label == domain.VerdictFail && r.Prediction == domain.VerdictPass:
			counts.FP++
		case r.Label == domain.VerdictPass && r.Prediction == domain.VerdictFail:
			counts.FN++
		default:
			counts.TN++
		}
	}
	return counts
}

// Compute derives the full statistics report from a sequence of labeled
// results. It is a pure function: order and duplicates in the input do not
// matter, the input is never retained, and zero samples is a valid input
// for which every rate resolves to 0 and the interval to (0, 0).
func Compute(results []domain.LabeledResult, opts ...Option) Report {
	o := options{confidence: Confidence95}
	for _, opt := range opts {
		opt(&o)
	}

	return FromCounts(Count(results), o.confidence)
}

// FromCounts derives a Report from an existing confusion matrix.
// Exposed so callers holding only aggregate counts can reproduce every
// downstream statistic.
func FromCounts(counts ConfusionCounts, confidence ConfidenceLevel) Report {
	total := counts.Total()
	report := Report{Total: total, Counts: counts}
	if total == 0 {
		return report
	}

	tp := float64(counts.TP)
	fp := float64(counts.FP)
	fn := float64(counts.FN)
	tn := float64(counts.TN)
	n := float64(total)

	report.Accuracy = (tp + tn) / n
	report.AccuracyCI = confidenceInterval(report.Accuracy, total, confidence)

	report.PrecisionPass = safeRatio(tp, tp+fp)
	report.RecallPass = safeRatio(tp, tp+fn)
	report.F1Pass = f1(report.PrecisionPass, report.RecallPass)

	// RecallFail intentionally uses the tn/(tn+fn) convention: the catch
	// rate the >80% acceptance threshold was calibrated against. Note it
	// is NOT tn/(tn+fp); the two differ whenever the judge raises false
	// alarms.
	report.PrecisionFail = safeRatio(tn, tn+fn)
	report.RecallFail = safeRatio(tn, tn+fn)
	report.F1Fail = f1(report.PrecisionFail, report.RecallFail)

	report.Kappa = kappa(report.Accuracy, counts)

	return report
}

// safeRatio returns num/denom, or 0 when the denominator is 0.
func safeRatio(num, denom float64) float64 {
	if denom == 0 {
		return 0
	}
	return num / denom
}

// f1 is the harmonic mean of precision and recall, 0 when both are 0.
func f1(precision, recall float64) float64 {
	if precision+recall == 0 {
		return 0
	}
	return 2 * precision * recall / (precision + recall)
}

// kappa computes Cohen's chance-corrected agreement from the observed
// accuracy and the marginal class probabilities. When expected agreement is
// 1 (a single observed class on both sides), kappa is defined as 0 rather
// than dividing by zero.
func kappa(observed float64, counts ConfusionCounts) float64 {
	n := float64(counts.Total())
	if n == 0 {
		return 0
	}

	predPass := float64(counts.TP+counts.FP) / n
	truePass := float64(counts.TP+counts.FN) / n
	predFail := float64(counts.TN+counts.FN) / n
	trueFail := float64(counts.TN+counts.FP) / n

	expected := predPass*truePass + predFail*trueFail
	if expected >= 1 {
		return 0
	}

	return (observed - expected) / (1 - expected)
}

// confidenceInterval computes the normal approximation to the binomial
// interval for an observed rate over n samples, clamped to [0, 1].
func confidenceInterval(rate float64, n int, level ConfidenceLevel) Interval {
	if n == 0 {
		return Interval{}
	}

	se := math.Sqrt(rate * (1 - rate) / float64(n))
	margin := level.zScore() * se

	return Interval{
		Lower: math.Max(0, rate-margin),
		Upper: math.Min(1, rate+margin),
	}
}
