package scan

import "testing"

func TestClassifyHemoglobin(t *testing.T) {
	cases := []struct {
		hb   float64
		want Stage
	}{
		{14.2, StageNormal},
		{12.0, StageNormal},
		{11.9, StageMild},
		{11.0, StageMild},
		{10.9, StageModerate},
		{8.0, StageModerate},
		{7.9, StageSevere},
		{0.1, StageSevere},
		{0, StageUnknown},
		{-3, StageUnknown},
	}
	for _, tc := range cases {
		if got := ClassifyHemoglobin(tc.hb); got != tc.want {
			t.Errorf("ClassifyHemoglobin(%.1f) = %s, want %s", tc.hb, got, tc.want)
		}
	}
}

func TestParseStage(t *testing.T) {
	stage, ok := ParseStage("  moderate ")
	if !ok || stage != StageModerate {
		t.Fatalf("ParseStage(moderate) = %s, %v", stage, ok)
	}
	if _, ok := ParseStage("critical"); ok {
		t.Fatal("expected unknown stage name to fail")
	}
	if _, ok := ParseStage(""); ok {
		t.Fatal("expected empty stage to fail")
	}
}

func TestStageOrUnknown(t *testing.T) {
	if got := StageOrUnknown("INVALID"); got != StageInvalid {
		t.Fatalf("StageOrUnknown(INVALID) = %s", got)
	}
	if got := StageOrUnknown("garbled"); got != StageUnknown {
		t.Fatalf("StageOrUnknown(garbled) = %s", got)
	}
}

func TestStageLabel(t *testing.T) {
	if got := StageSevere.Label(); got != "Severe Anemia" {
		t.Fatalf("unexpected label %q", got)
	}
	if got := Stage("bogus").Label(); got != "Unknown" {
		t.Fatalf("unexpected fallback label %q", got)
	}
}
