package pipeline

import (
	"errors"
	"fmt"
)

// ErrAuthenticationRequired indicates persistence was attempted without an
// owner identity. Nothing is written in that case.
var ErrAuthenticationRequired = errors.New("authentication required")

// ErrDurablePersistence marks a failure of the critical record write. When
// this is returned the scan produced no durable record at all.
var ErrDurablePersistence = errors.New("durable persistence failed")

// StepError reports a failed best-effort enrichment step. It never propagates
// out of Persist as an error; it lives in the Report.
type StepError struct {
	Step string
	Err  error
}

func (e *StepError) Error() string {
	return fmt.Sprintf("step %s: %v", e.Step, e.Err)
}

func (e *StepError) Unwrap() error { return e.Err }
