package pipeline

import (
	"context"
	"fmt"
	"log/slog"

	"hemascan/internal/blob"
	"hemascan/internal/config"
	"hemascan/internal/logging"
	"hemascan/internal/records"
	"hemascan/internal/scan"
)

// Enrichment step names, in execution order.
const (
	StepPhotoUpload = "photo_upload"
	StepCorpusCopy  = "corpus_copy"
	StepScanCounter = "scan_counter"
	StepBackendSync = "backend_sync"
)

// StepOutcome is the result of one best-effort enrichment step.
type StepOutcome struct {
	Step    string
	Skipped bool
	Err     error
}

// OK reports whether the step ran and succeeded.
func (o StepOutcome) OK() bool { return !o.Skipped && o.Err == nil }

// Report summarizes one persistence run.
type Report struct {
	RecordID string
	Steps    []StepOutcome
}

// Degraded reports whether any enrichment step failed.
func (r Report) Degraded() bool {
	for _, step := range r.Steps {
		if step.Err != nil {
			return true
		}
	}
	return false
}

// FailedSteps returns the errors of all failed steps.
func (r Report) FailedSteps() []StepError {
	var failed []StepError
	for _, step := range r.Steps {
		if step.Err != nil {
			failed = append(failed, StepError{Step: step.Step, Err: step.Err})
		}
	}
	return failed
}

// BackendSyncer is the slice of the backend service the orchestrator needs.
type BackendSyncer interface {
	SyncResult(ctx context.Context, record scan.Record) error
}

// Orchestrator persists finished scans. The record insert must succeed;
// everything after it degrades step by step.
type Orchestrator struct {
	store   *records.Store
	blobs   blob.Store
	backend BackendSyncer
	corpus  config.Corpus
	logger  *slog.Logger
}

// NewOrchestrator wires the persistence pipeline.
func NewOrchestrator(store *records.Store, blobs blob.Store, backend BackendSyncer, corpus config.Corpus, logger *slog.Logger) *Orchestrator {
	if logger == nil {
		logger = logging.NewNop()
	}
	return &Orchestrator{
		store:   store,
		blobs:   blobs,
		backend: backend,
		corpus:  corpus,
		logger:  logging.NewComponentLogger(logger, "pipeline"),
	}
}

// Persist writes the scan record and runs the enrichment steps. An empty owner
// ID fails with ErrAuthenticationRequired before anything is written. A failed
// record insert fails with ErrDurablePersistence. Enrichment failures are
// collected in the report; the returned error stays nil for them.
func (o *Orchestrator) Persist(ctx context.Context, ownerID string, result scan.Result, subject scan.Subject, images []scan.Image) (*scan.Record, Report, error) {
	if ownerID == "" {
		return nil, Report{}, fmt.Errorf("persist scan: %w", ErrAuthenticationRequired)
	}

	record := scan.NewRecord(ownerID, result, subject)
	if err := o.store.Save(ctx, &record); err != nil {
		return nil, Report{}, fmt.Errorf("persist scan: %w: %w", ErrDurablePersistence, err)
	}
	o.logger.Info("scan record saved",
		logging.String("record_id", record.ID),
		logging.String("stage", string(record.Stage)))

	report := Report{RecordID: record.ID}
	report.Steps = append(report.Steps,
		o.uploadPhotos(ctx, &record, images),
		o.copyToCorpus(ctx, record, subject),
		o.bumpScanCounter(ctx, ownerID),
		o.syncBackend(ctx, record),
	)

	for _, failed := range report.FailedSteps() {
		o.logger.Warn("enrichment step failed",
			logging.String("record_id", record.ID),
			logging.String("step", failed.Step),
			logging.Error(failed.Err))
	}
	return &record, report, nil
}

// uploadPhotos stores the captured images and patches their URLs onto the
// record. Partial upload success still patches what made it.
func (o *Orchestrator) uploadPhotos(ctx context.Context, record *scan.Record, images []scan.Image) StepOutcome {
	outcome := StepOutcome{Step: StepPhotoUpload}
	if o.blobs == nil || len(images) == 0 {
		outcome.Skipped = true
		return outcome
	}

	var (
		urls     []string
		firstErr error
	)
	for i, image := range images {
		url, err := o.blobs.Upload(ctx, record.OwnerID, record.ID, i, image.Data)
		if err != nil {
			if firstErr == nil {
				firstErr = fmt.Errorf("upload photo %d: %w", i, err)
			}
			continue
		}
		urls = append(urls, url)
	}

	if len(urls) > 0 {
		if err := o.store.PatchImageURLs(ctx, record.ID, urls); err != nil {
			outcome.Err = fmt.Errorf("patch image urls: %w", err)
			return outcome
		}
		record.ImageURLs = urls
	}
	outcome.Err = firstErr
	return outcome
}

func (o *Orchestrator) copyToCorpus(ctx context.Context, record scan.Record, subject scan.Subject) StepOutcome {
	outcome := StepOutcome{Step: StepCorpusCopy}
	if !o.corpus.Enabled {
		outcome.Skipped = true
		return outcome
	}
	entry := records.NewCorpusEntry(record, subject, o.corpus.Consent)
	if err := o.store.AddCorpusEntry(ctx, entry); err != nil {
		outcome.Err = err
	}
	return outcome
}

func (o *Orchestrator) bumpScanCounter(ctx context.Context, ownerID string) StepOutcome {
	outcome := StepOutcome{Step: StepScanCounter}
	if err := o.store.IncrementScanCount(ctx, ownerID); err != nil {
		outcome.Err = err
	}
	return outcome
}

func (o *Orchestrator) syncBackend(ctx context.Context, record scan.Record) StepOutcome {
	outcome := StepOutcome{Step: StepBackendSync}
	if o.backend == nil {
		outcome.Skipped = true
		return outcome
	}
	if err := o.backend.SyncResult(ctx, record); err != nil {
		outcome.Err = err
	}
	return outcome
}
