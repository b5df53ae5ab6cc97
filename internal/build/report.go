package build

import (
	"encoding/json"
	"fmt"
	"os"
	"time"
)

// Outcome is the typed enumeration of final build result states.
type Outcome string

const (
	OutcomeSuccess  Outcome = "success"  // every document rendered
	OutcomePartial  Outcome = "partial"  // output emitted, some documents failed
	OutcomeFailed   Outcome = "failed"   // build aborted, no output published
	OutcomeCanceled Outcome = "canceled" // context canceled
)

// DocumentFailure records one document excluded from the output set.
type DocumentFailure struct {
	SourcePath string `json:"source_path"`
	Category   string `json:"category"`
	Message    string `json:"message"`
}

// Report captures high-level metrics about one site build.
type Report struct {
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`

	Documents     int `json:"documents"`      // markdown sources found
	RenderedPages int `json:"rendered_pages"` // pages written to the output tree
	SkippedDrafts int `json:"skipped_drafts"`

	Failures []DocumentFailure `json:"failures,omitempty"` // per-document, build continued
	Warnings []string          `json:"warnings,omitempty"` // non-fatal issues (unreadable files etc.)

	StageDurations  map[StageName]time.Duration  `json:"stage_durations"`
	StageErrorKinds map[StageName]StageErrorKind `json:"stage_error_kinds,omitempty"`

	Outcome Outcome `json:"outcome"`
}

func newReport() *Report {
	return &Report{
		Start:           time.Now(),
		StageDurations:  make(map[StageName]time.Duration),
		StageErrorKinds: make(map[StageName]StageErrorKind),
	}
}

func (r *Report) recordStageError(se *StageError) {
	r.StageErrorKinds[se.Stage] = se.Kind
	if se.Kind == StageErrorWarning {
		r.Warnings = append(r.Warnings, se.Error())
	}
}

// AddFailure records a per-document failure.
func (r *Report) AddFailure(sourcePath string, category ErrorCategory, err error) {
	r.Failures = append(r.Failures, DocumentFailure{
		SourcePath: sourcePath,
		Category:   string(category),
		Message:    err.Error(),
	})
}

// Failed reports whether any document failed.
func (r *Report) Failed() bool { return len(r.Failures) > 0 }

// finish stamps the end time and derives the outcome for a non-fatal build.
func (r *Report) finish() {
	r.End = time.Now()
	if r.Outcome != "" {
		return
	}
	if r.Failed() {
		r.Outcome = OutcomePartial
	} else {
		r.Outcome = OutcomeSuccess
	}
}

// Persist writes the report as JSON to path. Best effort side channel for
// operators; the report is deliberately not written into the output tree so
// builds over unchanged input stay byte-identical.
func (r *Report) Persist(path string) error {
	data, err := json.MarshalIndent(r, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal build report: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write build report: %w", err)
	}
	return nil
}
