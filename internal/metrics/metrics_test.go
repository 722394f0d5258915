package metrics

import (
	"math/rand/v2"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ahrav/go-verdict/internal/domain"
)

// resultsFromCounts expands a confusion matrix into an explicit result
// sequence so Compute can be exercised end to end.
func resultsFromCounts(counts ConfusionCounts) []domain.LabeledResult {
	var results []domain.LabeledResult
	add := func(n int, label, pred domain.Verdict) {
		for i := 0; i < n; i++ {
			results = append(results, domain.LabeledResult{Label: label, Prediction: pred})
		}
	}
	add(counts.TP, domain.VerdictPass, domain.VerdictPass)
	add(counts.FP, domain.VerdictFail, domain.VerdictPass)
	add(counts.FN, domain.VerdictPass, domain.VerdictFail)
	add(counts.TN, domain.VerdictFail, domain.VerdictFail)
	return results
}

func TestCompute_EmptyInput(t *testing.T) {
	report := Compute(nil)

	assert.Equal(t, 0, report.Total)
	assert.Zero(t, report.Accuracy)
	assert.Zero(t, report.AccuracyCI.Lower)
	assert.Zero(t, report.AccuracyCI.Upper)
	assert.Zero(t, report.PrecisionPass)
	assert.Zero(t, report.RecallPass)
	assert.Zero(t, report.F1Pass)
	assert.Zero(t, report.PrecisionFail)
	assert.Zero(t, report.RecallFail)
	assert.Zero(t, report.F1Fail)
	assert.Zero(t, report.Kappa)
}

func TestCompute_KnownScenario(t *testing.T) {
	// 50 samples, strong judge: 40 true passes, 8 true fails, 2 false
	// alarms, no missed failures.
	counts := ConfusionCounts{TP: 40, TN: 8, FP: 2, FN: 0}
	report := Compute(resultsFromCounts(counts))

	assert.Equal(t, 50, report.Total)
	assert.InDelta(t, 0.96, report.Accuracy, 1e-9)

	// p_expected = 0.84*0.80 + 0.16*0.20 = 0.704
	// kappa = (0.96 - 0.704) / (1 - 0.704) ≈ 0.865
	assert.InDelta(t, 0.8648648648, report.Kappa, 1e-6)
	assert.Equal(t, AgreementNearPerfect, InterpretAgreement(report.Kappa))

	assert.InDelta(t, 1.0, report.RecallFail, 1e-9, "all 8 true failures caught")
	assert.InDelta(t, 1.0, report.PrecisionFail, 1e-9)
	assert.InDelta(t, 40.0/42.0, report.PrecisionPass, 1e-9)
	assert.InDelta(t, 1.0, report.RecallPass, 1e-9)
}

func TestCompute_AccuracyMisleadsKappaDoesNot(t *testing.T) {
	// A judge that predicts pass for everything over a 90/10 imbalanced
	// dataset looks 90% accurate but agrees no better than chance.
	counts := ConfusionCounts{TP: 90, FP: 10, TN: 0, FN: 0}
	report := Compute(resultsFromCounts(counts))

	assert.InDelta(t, 0.90, report.Accuracy, 1e-9)
	assert.InDelta(t, 0.0, report.Kappa, 1e-9)
}

func TestCompute_DegenerateSingleClassAgreement(t *testing.T) {
	// Every label and every prediction is pass: expected agreement is 1,
	// so kappa is defined as 0 by the zero-division guard, not 1.
	counts := ConfusionCounts{TP: 25}
	report := Compute(resultsFromCounts(counts))

	assert.InDelta(t, 1.0, report.Accuracy, 1e-9)
	assert.Zero(t, report.Kappa)
}

func TestCompute_PermutationInvariantAndPure(t *testing.T) {
	counts := ConfusionCounts{TP: 17, FP: 5, FN: 3, TN: 11}
	results := resultsFromCounts(counts)

	first := Compute(results)
	second := Compute(results)
	assert.Equal(t, first, second, "compute must be idempotent")

	shuffled := append([]domain.LabeledResult(nil), results...)
	rng := rand.New(rand.NewPCG(7, 13))
	rng.Shuffle(len(shuffled), func(i, j int) { shuffled[i], shuffled[j] = shuffled[j], shuffled[i] })

	assert.Equal(t, first, Compute(shuffled), "compute must be order independent")
}

func TestCompute_InvariantsHoldAcrossCounts(t *testing.T) {
	// Bounds that must hold for any confusion matrix with samples.
	cases := []ConfusionCounts{
		{TP: 1},
		{FP: 1},
		{FN: 1},
		{TN: 1},
		{TP: 10, FP: 10, FN: 10, TN: 10},
		{TP: 1, FP: 99},
		{TP: 50, FN: 50},
		{TP: 3, FP: 1, FN: 4, TN: 1},
		{TP: 123, FP: 7, FN: 2, TN: 68},
	}

	for _, counts := range cases {
		report := FromCounts(counts, Confidence95)

		require.Equal(t, counts.Total(), report.Total)
		assert.GreaterOrEqual(t, report.Accuracy, 0.0)
		assert.LessOrEqual(t, report.Accuracy, 1.0)
		assert.LessOrEqual(t, report.AccuracyCI.Lower, report.Accuracy)
		assert.GreaterOrEqual(t, report.AccuracyCI.Upper, report.Accuracy)
		assert.GreaterOrEqual(t, report.AccuracyCI.Lower, 0.0)
		assert.LessOrEqual(t, report.AccuracyCI.Upper, 1.0)
		assert.LessOrEqual(t, report.Kappa, 1.0)
	}
}

func TestConfidenceInterval_Levels(t *testing.T) {
	// Wider confidence demands a wider interval.
	counts := ConfusionCounts{TP: 40, TN: 40, FP: 10, FN: 10}

	r90 := FromCounts(counts, Confidence90)
	r95 := FromCounts(counts, Confidence95)
	r99 := FromCounts(counts, Confidence99)

	width := func(i Interval) float64 { return i.Upper - i.Lower }
	assert.Less(t, width(r90.AccuracyCI), width(r95.AccuracyCI))
	assert.Less(t, width(r95.AccuracyCI), width(r99.AccuracyCI))
}

func TestConfidenceInterval_KnownValue(t *testing.T) {
	// accuracy 0.80 over 50 samples: se = sqrt(0.8*0.2/50) ≈ 0.05657,
	// 95% margin ≈ 0.1109.
	counts := ConfusionCounts{TP: 40, FP: 10}
	report := FromCounts(counts, Confidence95)

	assert.InDelta(t, 0.6891, report.AccuracyCI.Lower, 1e-3)
	assert.InDelta(t, 0.9109, report.AccuracyCI.Upper, 1e-3)
}

func TestInterpretAgreement_Bands(t *testing.T) {
	tests := []struct {
		kappa float64
		want  string
	}{
		{-0.5, AgreementWorseThanChance},
		{-0.0001, AgreementWorseThanChance},
		{0.0, AgreementSlight},
		{0.19, AgreementSlight},
		{0.2, AgreementFair},
		{0.39, AgreementFair},
		{0.4, AgreementSubstantial},
		{0.59, AgreementSubstantial},
		{0.6, AgreementExcellent},
		{0.79, AgreementExcellent},
		{0.8, AgreementNearPerfect},
		{1.0, AgreementNearPerfect},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, InterpretAgreement(tt.kappa), "kappa=%v", tt.kappa)
	}
}

func TestReportString(t *testing.T) {
	report := Compute(resultsFromCounts(ConfusionCounts{TP: 40, TN: 8, FP: 2}))
	rendered := report.String()

	assert.Contains(t, rendered, "Cohen's Kappa")
	assert.Contains(t, rendered, AgreementNearPerfect)
	assert.Contains(t, rendered, "Total: 50")
}
