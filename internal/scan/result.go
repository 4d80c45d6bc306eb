package scan

// Insight categories providers are asked to fill. The pipeline derives the
// recommendation list forwarded to the backend from the actionable ones.
const (
	InsightDosha     = "dosha_assessment"
	InsightDietary   = "dietary_recommendations"
	InsightHerbal    = "herbal_remedies"
	InsightLifestyle = "lifestyle_tips"
	InsightHome      = "home_remedies"
)

// Result is the structured judgment produced by one analysis provider.
type Result struct {
	// HemoglobinEstimate is in g/dL.
	HemoglobinEstimate float64
	Stage              Stage
	// Confidence is always within [0, 1].
	Confidence  float64
	Explanation string
	// PerSlotFindings maps slot name to the provider's finding for that photo.
	PerSlotFindings map[string]string
	// Insights maps category (see Insight* constants) to advisory text.
	Insights map[string]string
	Provider string
}

// ClampConfidence forces a confidence value into [0, 1].
func ClampConfidence(value float64) float64 {
	if value < 0 {
		return 0
	}
	if value > 1 {
		return 1
	}
	return value
}

// Recommendations extracts the actionable insight texts in a stable order.
func (r Result) Recommendations() []string {
	var out []string
	for _, category := range []string{InsightDietary, InsightHerbal, InsightLifestyle, InsightHome} {
		if text := r.Insights[category]; text != "" {
			out = append(out, text)
		}
	}
	return out
}
