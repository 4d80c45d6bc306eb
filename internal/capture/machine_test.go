package capture

import (
	"errors"
	"testing"

	"hemascan/internal/scan"
)

func TestMachineGuidedCaptureFlow(t *testing.T) {
	m := NewMachine()
	m, err := m.Start()
	if err != nil {
		t.Fatalf("Start: %v", err)
	}
	if state := m.State(); state.Phase != PhaseCamera || state.Step != 0 || state.Slot.Name != scan.SlotFace {
		t.Fatalf("unexpected state after start: %+v", state)
	}

	for i := 0; i < scan.SlotCount; i++ {
		var effect Effect
		m, effect, err = m.SubmitImage([]byte{byte(i + 1)})
		if err != nil {
			t.Fatalf("SubmitImage %d: %v", i, err)
		}
		if i < scan.SlotCount-1 {
			if effect != EffectNone {
				t.Fatalf("unexpected effect at step %d", i)
			}
			if state := m.State(); state.Phase != PhaseCamera || state.Step != i+1 {
				t.Fatalf("unexpected state at step %d: %+v", i, state)
			}
		} else {
			if effect != EffectAnalyze {
				t.Fatal("expected analyze effect on fifth image")
			}
			if m.State().Phase != PhaseAnalyzing {
				t.Fatalf("expected analyzing phase, got %s", m.State().Phase)
			}
		}
	}

	images := m.Images()
	if len(images) != scan.SlotCount {
		t.Fatalf("expected %d queued images, got %d", scan.SlotCount, len(images))
	}
	names := scan.SlotNames()
	for i, image := range images {
		if image.Slot != names[i] {
			t.Errorf("image %d slot = %q, want %q", i, image.Slot, names[i])
		}
	}
}

func TestMachineSubmitImageRejectsWrongPhase(t *testing.T) {
	m := NewMachine()
	if _, _, err := m.SubmitImage([]byte{1}); !errors.Is(err, ErrInvalidTransition) {
		t.Fatalf("expected invalid transition, got %v", err)
	}
}

func TestMachineSubmitImageRejectsEmptyData(t *testing.T) {
	m := NewMachine()
	m, _ = m.Start()
	if _, _, err := m.SubmitImage(nil); err == nil {
		t.Fatal("expected error for empty image")
	}
}

func TestMachineSubmitBulk(t *testing.T) {
	m := NewMachine()
	m, effect, err := m.SubmitBulk([][]byte{{1}, {2}, {3}})
	if err != nil {
		t.Fatalf("SubmitBulk: %v", err)
	}
	if effect != EffectAnalyze {
		t.Fatal("expected analyze effect")
	}
	if m.State().Phase != PhaseAnalyzing {
		t.Fatalf("expected analyzing, got %s", m.State().Phase)
	}
	if images := m.Images(); len(images) != 3 {
		t.Fatalf("expected 3 images, got %d", len(images))
	}
}

func TestMachineSubmitBulkReplacesPartialQueue(t *testing.T) {
	m := NewMachine()
	m, _ = m.Start()
	m, _, _ = m.SubmitImage([]byte{1})
	m, _, _ = m.SubmitImage([]byte{2})

	m, _, err := m.SubmitBulk([][]byte{{9}})
	if err != nil {
		t.Fatalf("SubmitBulk: %v", err)
	}
	images := m.Images()
	if len(images) != 1 || images[0].Data[0] != 9 {
		t.Fatalf("bulk submit should replace queue, got %d images", len(images))
	}
}

func TestMachineSubmitBulkLimits(t *testing.T) {
	m := NewMachine()
	if _, _, err := m.SubmitBulk(nil); err == nil {
		t.Fatal("expected error for zero images")
	}
	six := [][]byte{{1}, {2}, {3}, {4}, {5}, {6}}
	if _, _, err := m.SubmitBulk(six); err == nil {
		t.Fatal("expected error for six images")
	}
	if _, _, err := m.SubmitBulk([][]byte{{1}, nil}); err == nil {
		t.Fatal("expected error for empty image in set")
	}
}

func TestMachineAnalysisOutcomes(t *testing.T) {
	m := NewMachine()
	m, _, _ = m.SubmitBulk([][]byte{{1}})

	record := scan.Record{ID: "rec-1", Stage: scan.StageMild}
	done, err := m.CompleteAnalysis(record)
	if err != nil {
		t.Fatalf("CompleteAnalysis: %v", err)
	}
	if state := done.State(); state.Phase != PhaseResult || state.Record == nil || state.Record.ID != "rec-1" {
		t.Fatalf("unexpected result state: %+v", state)
	}

	failed, err := m.FailAnalysis("all providers failed")
	if err != nil {
		t.Fatalf("FailAnalysis: %v", err)
	}
	if state := failed.State(); state.Phase != PhaseError || state.Message == "" {
		t.Fatalf("unexpected error state: %+v", state)
	}

	// Terminal phases only accept Reset.
	if _, _, err := done.SubmitBulk([][]byte{{1}}); !errors.Is(err, ErrInvalidTransition) {
		t.Fatalf("expected invalid transition from result, got %v", err)
	}
	if _, err := failed.CompleteAnalysis(record); !errors.Is(err, ErrInvalidTransition) {
		t.Fatalf("expected invalid transition from error, got %v", err)
	}
}

func TestMachineResetClearsEverything(t *testing.T) {
	m := NewMachine()
	m, _ = m.WithSubject(scan.Subject{Name: "Asha"})
	m, _, _ = m.SubmitBulk([][]byte{{1}, {2}})

	reset := m.Reset()
	if state := reset.State(); state.Phase != PhaseIntro {
		t.Fatalf("expected intro after reset, got %s", state.Phase)
	}
	if len(reset.Images()) != 0 {
		t.Fatal("expected empty queue after reset")
	}
	if !reset.Subject().IsZero() {
		t.Fatal("expected cleared subject after reset")
	}
}

func TestMachineWithSubjectPhaseRules(t *testing.T) {
	m := NewMachine()
	m, _, _ = m.SubmitBulk([][]byte{{1}})
	if _, err := m.WithSubject(scan.Subject{Name: "x"}); !errors.Is(err, ErrInvalidTransition) {
		t.Fatalf("expected invalid transition while analyzing, got %v", err)
	}
}

func TestMachineValueSemantics(t *testing.T) {
	m := NewMachine()
	started, _ := m.Start()
	if m.State().Phase != PhaseIntro {
		t.Fatal("original machine mutated by Start")
	}
	if started.State().Phase != PhaseCamera {
		t.Fatal("returned machine missing transition")
	}
}
