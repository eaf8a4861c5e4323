// Package report turns an upload outcome into pipeline outputs and
// human-readable log lines.
package report

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/DeployGate/deploygate-upload-github-action/internal/uploader"
)

// OutputSink is the pipeline host's output surface: named step outputs
// plus secret flagging. Wired to the GitHub Actions toolkit in the CLI
// and to recorders in tests.
type OutputSink interface {
	SetOutput(name, value string)
	AddMask(value string)
}

// Reporter publishes results. Logf and Warnf may be nil.
type Reporter struct {
	Out   OutputSink
	Logf  func(format string, args ...any)
	Warnf func(format string, args ...any)
}

// Success serializes the full results record (passthrough fields
// included) to the "results" output and logs a privacy-safe summary.
// The download URL is masked: it grants access to the binary, so it is
// exposed through outputs but never printed.
func (r *Reporter) Success(results *uploader.AppResults, fileSize int64) error {
	raw, err := json.Marshal(results)
	if err != nil {
		return fmt.Errorf("serialize results: %w", err)
	}

	if results.File != "" {
		r.Out.AddMask(results.File)
	}
	r.Out.SetOutput("results", string(raw))

	r.logf("report: uploaded %s (%s) revision %d", results.Name, results.PackageName, results.Revision)
	r.logf("report: os=%s version=%s (code %s) size=%.1f MB",
		results.OSName, results.VersionName, results.VersionCode,
		float64(fileSize)/(1024*1024))
	if results.Message != "" {
		r.logf("report: server message present (%d chars)", len(results.Message))
	}
	r.logf("report: download URL available in the 'results' output")
	if url := results.DistributionURL(); url != "" {
		r.logf("report: distribution page: %s", url)
	}
	return nil
}

// Failure renders the terminal error as the run's visible failure
// reason, with classification and HTTP status where known. The returned
// error is what the CLI propagates, so the process ends failed.
func (r *Reporter) Failure(err error) error {
	var httpErr *uploader.HTTPError
	var appErr *uploader.AppError
	var transErr *uploader.TransportError

	switch {
	case errors.As(err, &httpErr):
		r.warnf("report: upload rejected (HTTP %d): %s", httpErr.StatusCode, httpErr.Message)
	case errors.As(err, &appErr):
		r.warnf("report: service error: %s", appErr.Message)
	case errors.As(err, &transErr):
		r.warnf("report: network failure: %v", transErr.Err)
	default:
		r.warnf("report: upload failed: %v", err)
	}
	return fmt.Errorf("upload failed: %w", err)
}

func (r *Reporter) logf(format string, args ...any) {
	if r.Logf != nil {
		r.Logf(format, args...)
	}
}

func (r *Reporter) warnf(format string, args ...any) {
	if r.Warnf != nil {
		r.Warnf(format, args...)
	}
}
