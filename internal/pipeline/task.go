package pipeline

import (
	"context"
	"log/slog"

	"hemascan/internal/logging"
	"hemascan/internal/scan"
)

// ResultAnalyzer is the slice of the provider manager the task needs.
type ResultAnalyzer interface {
	Analyze(ctx context.Context, images []scan.Image, subject scan.Subject) (scan.Result, error)
}

// Task runs one capture through analysis and persistence. It satisfies the
// capture session's Analyzer contract.
type Task struct {
	analyzer     ResultAnalyzer
	orchestrator *Orchestrator
	ownerID      string
	logger       *slog.Logger
}

// NewTask wires analysis and persistence for one owner.
func NewTask(analyzer ResultAnalyzer, orchestrator *Orchestrator, ownerID string, logger *slog.Logger) *Task {
	if logger == nil {
		logger = logging.NewNop()
	}
	return &Task{
		analyzer:     analyzer,
		orchestrator: orchestrator,
		ownerID:      ownerID,
		logger:       logging.NewComponentLogger(logger, "pipeline"),
	}
}

// Run analyzes the images and persists the outcome. If every provider fails,
// nothing is persisted and the chain error is returned as-is. Persistence
// degradation does not fail the run; the record is returned alongside a
// warning log per failed step.
func (t *Task) Run(ctx context.Context, images []scan.Image, subject scan.Subject) (scan.Record, error) {
	result, err := t.analyzer.Analyze(ctx, images, subject)
	if err != nil {
		return scan.Record{}, err
	}

	record, report, err := t.orchestrator.Persist(ctx, t.ownerID, result, subject, images)
	if err != nil {
		return scan.Record{}, err
	}
	if report.Degraded() {
		t.logger.Warn("scan persisted with degraded enrichment",
			logging.String("record_id", record.ID),
			logging.Int("failed_steps", len(report.FailedSteps())))
	}
	return *record, nil
}
