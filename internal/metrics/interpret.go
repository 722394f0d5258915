package metrics

// Agreement interpretation bands for Cohen's kappa. Bands are half-open on
// the lower bound; the final band includes 1.0. Human inter-rater
// reliability often lands around 0.2-0.3, so substantial agreement is the
// realistic target for an LLM judge and near-perfect warrants a check for
// overfitting.
const (
	AgreementWorseThanChance = "Worse than chance"
	AgreementSlight          = "Slight agreement"
	AgreementFair            = "Fair agreement"
	AgreementSubstantial     = "Substantial agreement (TARGET)"
	AgreementExcellent       = "Excellent agreement"
	AgreementNearPerfect     = "Near-perfect agreement"
)

// InterpretAgreement maps a kappa value onto its interpretation band.
func InterpretAgreement(kappa float64) string {
	switch {
	case kappa < 0:
		return AgreementWorseThanChance
	case kappa < 0.2:
		return AgreementSlight
	case kappa < 0.4:
		return AgreementFair
	case kappa < 0.6:
		return AgreementSubstantial
	case kappa < 0.8:
		return AgreementExcellent
	default:
		return AgreementNearPerfect
	}
}
