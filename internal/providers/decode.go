package providers

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"hemascan/internal/scan"
)

// DecodeModelJSON parses a JSON payload returned by a vision model. Models
// frequently wrap JSON in markdown fences or prefix it with prose, so the
// decoder strips fences and, when direct parsing fails, retries on the
// outermost brace-delimited object.
func DecodeModelJSON(content string, target any) error {
	trimmed := strings.TrimSpace(content)
	if trimmed == "" {
		return errors.New("decode model json: empty payload")
	}
	trimmed = stripCodeFence(trimmed)

	if err := json.Unmarshal([]byte(trimmed), target); err == nil {
		return nil
	}

	start := strings.Index(trimmed, "{")
	end := strings.LastIndex(trimmed, "}")
	if start < 0 || end <= start {
		return fmt.Errorf("decode model json: no JSON object in payload %q", summarize(trimmed))
	}
	candidate := trimmed[start : end+1]
	if err := json.Unmarshal([]byte(candidate), target); err != nil {
		return fmt.Errorf("decode model json: %w (payload %q)", err, summarize(trimmed))
	}
	return nil
}

func stripCodeFence(content string) string {
	if !strings.HasPrefix(content, "```") {
		return content
	}
	body := content[3:]
	if newline := strings.IndexByte(body, '\n'); newline >= 0 {
		// Drop the language tag line ("json" etc).
		body = body[newline+1:]
	}
	if idx := strings.LastIndex(body, "```"); idx >= 0 {
		body = body[:idx]
	}
	return strings.TrimSpace(body)
}

func summarize(content string) string {
	const limit = 120
	clean := strings.Join(strings.Fields(content), " ")
	runes := []rune(clean)
	if len(runes) > limit {
		return string(runes[:limit]) + "..."
	}
	return clean
}

type analysisPayload struct {
	HemoglobinEstimate jsonNumber              `json:"hemoglobin_estimate"`
	Stage              string                  `json:"stage"`
	Confidence         jsonNumber              `json:"confidence"`
	Explanation        string                  `json:"explanation"`
	PerImageFindings   map[string]string       `json:"per_image_findings"`
	AyurvedicInsights  map[string]insightValue `json:"ayurvedic_insights"`
}

// jsonNumber tolerates numbers that arrive as strings ("11.5 g/dL" minus the
// unit would still fail; plain "11.5" is accepted).
type jsonNumber float64

func (n *jsonNumber) UnmarshalJSON(data []byte) error {
	trimmed := strings.Trim(strings.TrimSpace(string(data)), `"`)
	if trimmed == "" || trimmed == "null" {
		*n = 0
		return nil
	}
	var value float64
	if err := json.Unmarshal([]byte(trimmed), &value); err != nil {
		return fmt.Errorf("parse number %q: %w", trimmed, err)
	}
	*n = jsonNumber(value)
	return nil
}

// insightValue accepts either a string or an array of strings.
type insightValue string

func (v *insightValue) UnmarshalJSON(data []byte) error {
	var single string
	if err := json.Unmarshal(data, &single); err == nil {
		*v = insightValue(strings.TrimSpace(single))
		return nil
	}
	var many []string
	if err := json.Unmarshal(data, &many); err == nil {
		for i, item := range many {
			many[i] = strings.TrimSpace(item)
		}
		*v = insightValue(strings.Join(many, "; "))
		return nil
	}
	return fmt.Errorf("insight value %s is neither string nor array", summarize(string(data)))
}

// ParseResult decodes a provider payload into a Result. A missing or unknown
// stage falls back to the hemoglobin classification so a numerically sound
// answer is never discarded over a formatting slip.
func ParseResult(content, providerName string) (scan.Result, error) {
	var payload analysisPayload
	if err := DecodeModelJSON(content, &payload); err != nil {
		return scan.Result{}, err
	}

	stage := scan.StageOrUnknown(payload.Stage)
	if stage == scan.StageUnknown && payload.HemoglobinEstimate > 0 {
		stage = scan.ClassifyHemoglobin(float64(payload.HemoglobinEstimate))
	}

	insights := make(map[string]string, len(payload.AyurvedicInsights))
	for category, value := range payload.AyurvedicInsights {
		if text := string(value); text != "" {
			insights[category] = text
		}
	}

	findings := make(map[string]string, len(payload.PerImageFindings))
	for slot, finding := range payload.PerImageFindings {
		if trimmed := strings.TrimSpace(finding); trimmed != "" {
			findings[strings.ToLower(strings.TrimSpace(slot))] = trimmed
		}
	}

	return scan.Result{
		HemoglobinEstimate: float64(payload.HemoglobinEstimate),
		Stage:              stage,
		Confidence:         scan.ClampConfidence(float64(payload.Confidence)),
		Explanation:        strings.TrimSpace(payload.Explanation),
		PerSlotFindings:    findings,
		Insights:           insights,
		Provider:           providerName,
	}, nil
}
