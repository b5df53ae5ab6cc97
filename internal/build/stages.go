package build

import (
	"context"
	"errors"
	"fmt"
	"time"
)

// StageName identifies a discrete unit of work in the site build.
type StageName string

const (
	StagePrepare  StageName = "prepare_staging"
	StageLoad     StageName = "load_content"
	StageParse    StageName = "parse_documents"
	StagePlan     StageName = "plan_outputs"
	StageRender   StageName = "render_pages"
	StageAssets   StageName = "write_assets"
	StageFinalize StageName = "finalize_output"
)

// Stage is one step of the build pipeline.
type Stage func(ctx context.Context, bs *buildState) error

// StageErrorKind enumerates structured stage error categories.
type StageErrorKind string

const (
	StageErrorFatal    StageErrorKind = "fatal"    // build must abort
	StageErrorWarning  StageErrorKind = "warning"  // non-fatal; record and continue
	StageErrorCanceled StageErrorKind = "canceled" // context cancellation
)

// StageError is a structured error carrying stage classification and cause.
type StageError struct {
	Kind  StageErrorKind
	Stage StageName
	Err   error
}

func (e *StageError) Error() string { return fmt.Sprintf("%s stage %s: %v", e.Kind, e.Stage, e.Err) }
func (e *StageError) Unwrap() error { return e.Err }

func newFatalStageError(stage StageName, err error) *StageError {
	return &StageError{Kind: StageErrorFatal, Stage: stage, Err: err}
}

func newWarnStageError(stage StageName, err error) *StageError {
	return &StageError{Kind: StageErrorWarning, Stage: stage, Err: err}
}

func newCanceledStageError(stage StageName, err error) *StageError {
	return &StageError{Kind: StageErrorCanceled, Stage: stage, Err: err}
}

type namedStage struct {
	name StageName
	fn   Stage
}

// runStages executes stages in order, recording timing and stopping on the
// first fatal error. Warning-kind stage errors are recorded and the pipeline
// continues.
func runStages(ctx context.Context, bs *buildState, stages []namedStage) error {
	for _, st := range stages {
		select {
		case <-ctx.Done():
			se := newCanceledStageError(st.name, ctx.Err())
			bs.report.recordStageError(se)
			return se
		default:
		}

		t0 := time.Now()
		err := st.fn(ctx, bs)
		dur := time.Since(t0)
		bs.report.StageDurations[st.name] = dur
		bs.recorder.ObserveStageDuration(string(st.name), dur)

		if err == nil {
			bs.recorder.IncStageResult(string(st.name), "success")
			continue
		}

		var se *StageError
		if !errors.As(err, &se) {
			// Unclassified errors are fatal by default.
			se = newFatalStageError(st.name, err)
		}
		bs.report.recordStageError(se)
		bs.recorder.IncStageResult(string(st.name), string(se.Kind))
		if se.Kind == StageErrorWarning {
			continue
		}
		return se
	}
	return nil
}
