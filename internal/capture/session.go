package capture

import (
	"context"
	"log/slog"
	"sync"

	"hemascan/internal/logging"
	"hemascan/internal/scan"
)

// Analyzer runs the full analyze-and-persist pipeline for a completed image
// set and returns the durable record.
type Analyzer interface {
	Run(ctx context.Context, images []scan.Image, subject scan.Subject) (scan.Record, error)
}

// Session wraps a Machine with the asynchronous pipeline task. All operations
// are safe for concurrent use; the terminal Result/Error transition fires only
// after the whole pipeline, including best-effort enrichment, has finished.
type Session struct {
	analyzer Analyzer
	logger   *slog.Logger

	mu         sync.Mutex
	machine    Machine
	generation int
	done       chan struct{}
}

// NewSession builds a session in the Intro phase.
func NewSession(analyzer Analyzer, logger *slog.Logger) *Session {
	return &Session{
		analyzer: analyzer,
		logger:   logging.NewComponentLogger(logger, "capture"),
		machine:  NewMachine(),
	}
}

// State returns the current capture state.
func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.machine.State()
}

// SetSubject attaches subject details to the session.
func (s *Session) SetSubject(subject scan.Subject) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	next, err := s.machine.WithSubject(subject)
	if err != nil {
		return err
	}
	s.machine = next
	return nil
}

// Start begins guided capture.
func (s *Session) Start() (State, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	next, err := s.machine.Start()
	if err != nil {
		return s.machine.State(), err
	}
	s.machine = next
	return s.machine.State(), nil
}

// SubmitImage accepts the next slot photo and launches analysis when the set
// completes.
func (s *Session) SubmitImage(ctx context.Context, data []byte) (State, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	next, effect, err := s.machine.SubmitImage(data)
	if err != nil {
		return s.machine.State(), err
	}
	s.machine = next
	if effect == EffectAnalyze {
		s.launchAnalysis(ctx)
	}
	return s.machine.State(), nil
}

// SubmitBulk accepts one to five photos and launches analysis immediately.
func (s *Session) SubmitBulk(ctx context.Context, images [][]byte) (State, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	next, effect, err := s.machine.SubmitBulk(images)
	if err != nil {
		return s.machine.State(), err
	}
	s.machine = next
	if effect == EffectAnalyze {
		s.launchAnalysis(ctx)
	}
	return s.machine.State(), nil
}

// Reset returns the session to Intro. An in-flight pipeline task is not
// interrupted; its eventual outcome is discarded.
func (s *Session) Reset() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.generation++
	s.done = nil
	s.machine = s.machine.Reset()
	return s.machine.State()
}

// Wait blocks until the in-flight analysis task (if any) reaches a terminal
// state or the context is cancelled, then returns the current state.
func (s *Session) Wait(ctx context.Context) State {
	s.mu.Lock()
	done := s.done
	s.mu.Unlock()

	if done != nil {
		select {
		case <-done:
		case <-ctx.Done():
		}
	}
	return s.State()
}

// launchAnalysis starts the pipeline task for the current image set. Caller
// must hold s.mu.
func (s *Session) launchAnalysis(ctx context.Context) {
	generation := s.generation
	images := s.machine.Images()
	subject := s.machine.Subject()
	done := make(chan struct{})
	s.done = done

	go func() {
		defer close(done)

		record, err := s.analyzer.Run(ctx, images, subject)

		s.mu.Lock()
		defer s.mu.Unlock()
		if s.generation != generation {
			s.logger.Debug("discarding stale analysis outcome",
				logging.Int("generation", generation))
			return
		}

		var next Machine
		var transitionErr error
		if err != nil {
			s.logger.Warn("analysis pipeline failed", logging.Error(err))
			next, transitionErr = s.machine.FailAnalysis(err.Error())
		} else {
			next, transitionErr = s.machine.CompleteAnalysis(record)
		}
		if transitionErr != nil {
			s.logger.Warn("capture transition rejected", logging.Error(transitionErr))
			return
		}
		s.machine = next
	}()
}
