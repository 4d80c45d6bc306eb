package capture

import (
	"errors"
	"fmt"

	"hemascan/internal/scan"
)

// Phase identifies the current state of a capture session.
type Phase string

const (
	PhaseIntro     Phase = "intro"
	PhaseCamera    Phase = "camera"
	PhaseAnalyzing Phase = "analyzing"
	PhaseResult    Phase = "result"
	PhaseError     Phase = "error"
)

// Effect describes side-effect work an operation requests from the caller.
type Effect int

const (
	// EffectNone means no side effect is requested.
	EffectNone Effect = iota
	// EffectAnalyze means the collected images are complete and the analysis
	// pipeline should run.
	EffectAnalyze
)

// State is the tagged capture state. Phase selects which fields are
// meaningful: Step and Slot during camera capture, Record on result, Message
// on error.
type State struct {
	Phase   Phase
	Step    int
	Slot    scan.Slot
	Record  *scan.Record
	Message string
}

// Machine is an immutable capture session value. Operations return the next
// machine rather than mutating the receiver, so transitions stay pure and
// trivially testable.
type Machine struct {
	state   State
	images  []scan.Image
	subject scan.Subject
}

// ErrInvalidTransition is returned for operations not valid in the current phase.
var ErrInvalidTransition = errors.New("invalid capture transition")

// NewMachine returns a machine in the Intro phase with an empty queue.
func NewMachine() Machine {
	return Machine{state: State{Phase: PhaseIntro}}
}

// State returns the current capture state.
func (m Machine) State() State {
	return m.state
}

// Images returns a copy of the queued images.
func (m Machine) Images() []scan.Image {
	cp := make([]scan.Image, len(m.images))
	copy(cp, m.images)
	return cp
}

// Subject returns the subject details attached to the session.
func (m Machine) Subject() scan.Subject {
	return m.subject
}

// WithSubject attaches subject details. Valid before analysis begins.
func (m Machine) WithSubject(subject scan.Subject) (Machine, error) {
	switch m.state.Phase {
	case PhaseIntro, PhaseCamera:
		m.subject = subject
		return m, nil
	default:
		return m, fmt.Errorf("%w: set subject during %s", ErrInvalidTransition, m.state.Phase)
	}
}

// Start begins guided capture at the first slot. Any previously queued images
// are discarded.
func (m Machine) Start() (Machine, error) {
	if m.state.Phase != PhaseIntro {
		return m, fmt.Errorf("%w: start during %s", ErrInvalidTransition, m.state.Phase)
	}
	slot, _ := scan.SlotAt(0)
	m.images = nil
	m.state = State{Phase: PhaseCamera, Step: 0, Slot: slot}
	return m, nil
}

// SubmitImage accepts the photo for the current slot. The machine advances to
// the next slot, or to Analyzing with an analyze effect once all slots are
// filled.
func (m Machine) SubmitImage(data []byte) (Machine, Effect, error) {
	if m.state.Phase != PhaseCamera {
		return m, EffectNone, fmt.Errorf("%w: submit image during %s", ErrInvalidTransition, m.state.Phase)
	}
	if len(data) == 0 {
		return m, EffectNone, errors.New("submit image: empty image data")
	}

	slot, ok := scan.SlotAt(len(m.images))
	if !ok {
		return m, EffectNone, fmt.Errorf("%w: image queue already full", ErrInvalidTransition)
	}

	images := make([]scan.Image, len(m.images), len(m.images)+1)
	copy(images, m.images)
	m.images = append(images, scan.Image{Slot: slot.Name, Data: data})

	next := len(m.images)
	if next < scan.SlotCount {
		nextSlot, _ := scan.SlotAt(next)
		m.state = State{Phase: PhaseCamera, Step: next, Slot: nextSlot}
		return m, EffectNone, nil
	}

	m.state = State{Phase: PhaseAnalyzing}
	return m, EffectAnalyze, nil
}

// SubmitBulk replaces any partially collected queue with the supplied photos
// (one to five) and moves straight to Analyzing. Slot labels are not enforced
// on this path.
func (m Machine) SubmitBulk(images [][]byte) (Machine, Effect, error) {
	switch m.state.Phase {
	case PhaseIntro, PhaseCamera:
	default:
		return m, EffectNone, fmt.Errorf("%w: bulk submit during %s", ErrInvalidTransition, m.state.Phase)
	}
	if len(images) == 0 {
		return m, EffectNone, errors.New("bulk submit: at least one image required")
	}
	if len(images) > scan.SlotCount {
		return m, EffectNone, fmt.Errorf("bulk submit: at most %d images allowed, got %d", scan.SlotCount, len(images))
	}

	queue := make([]scan.Image, 0, len(images))
	for i, data := range images {
		if len(data) == 0 {
			return m, EffectNone, fmt.Errorf("bulk submit: image %d is empty", i)
		}
		queue = append(queue, scan.Image{Data: data})
	}

	m.images = queue
	m.state = State{Phase: PhaseAnalyzing}
	return m, EffectAnalyze, nil
}

// CompleteAnalysis records the persisted result. Valid only while analyzing.
func (m Machine) CompleteAnalysis(record scan.Record) (Machine, error) {
	if m.state.Phase != PhaseAnalyzing {
		return m, fmt.Errorf("%w: complete analysis during %s", ErrInvalidTransition, m.state.Phase)
	}
	m.state = State{Phase: PhaseResult, Record: &record}
	return m, nil
}

// FailAnalysis records a pipeline failure. Valid only while analyzing; the
// only exit from the error phase is Reset.
func (m Machine) FailAnalysis(message string) (Machine, error) {
	if m.state.Phase != PhaseAnalyzing {
		return m, fmt.Errorf("%w: fail analysis during %s", ErrInvalidTransition, m.state.Phase)
	}
	m.state = State{Phase: PhaseError, Message: message}
	return m, nil
}

// Reset returns to Intro from any phase, clearing queued images and subject
// details atomically.
func (m Machine) Reset() Machine {
	return NewMachine()
}
