package providers

import (
	"strings"
	"testing"

	"hemascan/internal/scan"
)

const validPayload = `{
  "hemoglobin_estimate": 10.4,
  "stage": "MODERATE",
  "confidence": 0.81,
  "explanation": "pale conjunctiva and nail beds",
  "per_image_findings": {"Conjunctiva": "marked pallor", "nails": "pale beds"},
  "ayurvedic_insights": {
    "dosha_assessment": "pitta imbalance",
    "dietary_recommendations": ["leafy greens", "dates"]
  }
}`

func TestParseResult(t *testing.T) {
	result, err := ParseResult(validPayload, "groq")
	if err != nil {
		t.Fatalf("ParseResult: %v", err)
	}
	if result.HemoglobinEstimate != 10.4 {
		t.Errorf("hemoglobin = %v", result.HemoglobinEstimate)
	}
	if result.Stage != scan.StageModerate {
		t.Errorf("stage = %s", result.Stage)
	}
	if result.Confidence != 0.81 {
		t.Errorf("confidence = %v", result.Confidence)
	}
	if result.Provider != "groq" {
		t.Errorf("provider = %q", result.Provider)
	}
	if result.PerSlotFindings["conjunctiva"] != "marked pallor" {
		t.Errorf("findings = %v", result.PerSlotFindings)
	}
	if result.Insights[scan.InsightDietary] != "leafy greens; dates" {
		t.Errorf("dietary insight = %q", result.Insights[scan.InsightDietary])
	}
}

func TestParseResultFencedPayload(t *testing.T) {
	fenced := "```json\n" + validPayload + "\n```"
	result, err := ParseResult(fenced, "gemini")
	if err != nil {
		t.Fatalf("ParseResult fenced: %v", err)
	}
	if result.Stage != scan.StageModerate {
		t.Errorf("stage = %s", result.Stage)
	}
}

func TestParseResultProseWrappedPayload(t *testing.T) {
	wrapped := "Here is the analysis you asked for:\n" + validPayload + "\nLet me know if you need anything else."
	if _, err := ParseResult(wrapped, "gemini"); err != nil {
		t.Fatalf("ParseResult prose-wrapped: %v", err)
	}
}

func TestParseResultStageFallsBackToClassification(t *testing.T) {
	payload := `{"hemoglobin_estimate": 7.2, "stage": "BAD VALUE", "confidence": 0.5}`
	result, err := ParseResult(payload, "groq")
	if err != nil {
		t.Fatalf("ParseResult: %v", err)
	}
	if result.Stage != scan.StageSevere {
		t.Errorf("expected severe from hemoglobin fallback, got %s", result.Stage)
	}
}

func TestParseResultClampsConfidence(t *testing.T) {
	payload := `{"hemoglobin_estimate": 13, "stage": "NORMAL", "confidence": 1.7}`
	result, err := ParseResult(payload, "groq")
	if err != nil {
		t.Fatalf("ParseResult: %v", err)
	}
	if result.Confidence != 1 {
		t.Errorf("confidence = %v", result.Confidence)
	}
}

func TestParseResultStringNumbers(t *testing.T) {
	payload := `{"hemoglobin_estimate": "11.5", "stage": "MILD", "confidence": "0.6"}`
	result, err := ParseResult(payload, "huggingface")
	if err != nil {
		t.Fatalf("ParseResult: %v", err)
	}
	if result.HemoglobinEstimate != 11.5 || result.Confidence != 0.6 {
		t.Errorf("got hb=%v conf=%v", result.HemoglobinEstimate, result.Confidence)
	}
}

func TestDecodeModelJSONRejectsGarbage(t *testing.T) {
	var target analysisPayload
	if err := DecodeModelJSON("no json here at all", &target); err == nil {
		t.Fatal("expected error for non-JSON payload")
	}
	if err := DecodeModelJSON("", &target); err == nil {
		t.Fatal("expected error for empty payload")
	}
}

func TestBuildPromptContents(t *testing.T) {
	prompt := BuildPrompt(scan.Subject{Name: "Asha", Age: 29, Gender: "Female", MenstrualStatus: "regular"})

	for _, want := range []string{
		"NORMAL: hemoglobin >= 12",
		"below 8 g/dL",
		"INVALID",
		"per_image_findings",
		"ayurvedic_insights",
		"Age: 29",
		"Menstrual status: regular",
	} {
		if !strings.Contains(prompt, want) {
			t.Errorf("prompt missing %q", want)
		}
	}
}

func TestBuildPromptOmitsMenstrualStatusForMales(t *testing.T) {
	prompt := BuildPrompt(scan.Subject{Gender: "Male", MenstrualStatus: "n/a"})
	if strings.Contains(prompt, "Menstrual status") {
		t.Fatal("menstrual status should not be included for male subjects")
	}
}
