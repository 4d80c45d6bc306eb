package providers

import (
	"fmt"
	"strings"

	"hemascan/internal/scan"
)

// BuildPrompt renders the analysis instruction sent to every provider. The
// same prompt goes to each provider in the chain so that fallback does not
// change analysis semantics, only the model answering.
func BuildPrompt(subject scan.Subject) string {
	var b strings.Builder

	b.WriteString("You are a clinical screening assistant estimating anemia risk from photographs.\n")
	b.WriteString("You will receive up to five photos of one person, in this order:\n")
	for i, slot := range scan.Slots() {
		fmt.Fprintf(&b, "%d. %s: %s\n", i+1, slot.Label, slot.Guidance)
	}
	b.WriteString("\n")

	if !subject.IsZero() {
		b.WriteString("Subject details:\n")
		writeSubjectLine(&b, "Name", subject.Name)
		if subject.Age > 0 {
			fmt.Fprintf(&b, "- Age: %d\n", subject.Age)
		}
		writeSubjectLine(&b, "Gender", subject.Gender)
		writeSubjectLine(&b, "Ethnicity", subject.Ethnicity)
		writeSubjectLine(&b, "Region", subject.Region)
		if subject.WeightKg > 0 {
			fmt.Fprintf(&b, "- Weight: %.1f kg\n", subject.WeightKg)
		}
		writeSubjectLine(&b, "Diet", subject.Diet)
		writeSubjectLine(&b, "Known conditions", subject.KnownConditions)
		writeSubjectLine(&b, "Current symptoms", subject.CurrentSymptoms)
		if subject.IsFemale() {
			writeSubjectLine(&b, "Menstrual status", subject.MenstrualStatus)
		}
		if subject.PreviousAnemia {
			b.WriteString("- Previous anemia history: yes\n")
		}
		writeSubjectLine(&b, "Current medicines", subject.CurrentMedicines)
		b.WriteString("\n")
	}

	b.WriteString("Estimate the hemoglobin level in g/dL from pallor cues in the images ")
	b.WriteString("(conjunctival pallor, nail bed color, palmar crease pallor, tongue color, facial pallor).\n\n")

	b.WriteString("Classify the anemia stage using WHO hemoglobin thresholds:\n")
	b.WriteString("- NORMAL: hemoglobin >= 12 g/dL\n")
	b.WriteString("- MILD: 11 to 11.9 g/dL\n")
	b.WriteString("- MODERATE: 8 to 10.9 g/dL\n")
	b.WriteString("- SEVERE: below 8 g/dL\n\n")

	b.WriteString("If the images are not of human body parts suitable for pallor assessment ")
	b.WriteString("(wrong subject, too dark, too blurry), set stage to INVALID, hemoglobin_estimate to 0, ")
	b.WriteString("and explain the problem.\n\n")

	b.WriteString("Respond with ONLY a JSON object, no markdown fences, in exactly this shape:\n")
	b.WriteString(`{
  "hemoglobin_estimate": 11.2,
  "stage": "MILD",
  "confidence": 0.72,
  "explanation": "short clinical reasoning",
  "per_image_findings": {
    "face": "observation",
    "tongue": "observation",
    "conjunctiva": "observation",
    "palm": "observation",
    "nails": "observation"
  },
  "ayurvedic_insights": {
    "dosha_assessment": "text",
    "dietary_recommendations": ["item"],
    "herbal_remedies": ["item"],
    "lifestyle_tips": ["item"],
    "home_remedies": ["item"]
  }
}`)
	b.WriteString("\n")
	return b.String()
}

func writeSubjectLine(b *strings.Builder, label, value string) {
	if trimmed := strings.TrimSpace(value); trimmed != "" {
		fmt.Fprintf(b, "- %s: %s\n", label, trimmed)
	}
}
