// Package testutil provides shared test helpers for the action's tests.
package testutil

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"sync"
	"testing"
)

// WriteAppFile creates a fake app binary of the given size in dir and
// returns its path.
func WriteAppFile(t *testing.T, dir, name string, size int) string {
	t.Helper()

	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, bytes.Repeat([]byte{0xAB}, size), 0644); err != nil {
		t.Fatalf("write app file: %v", err)
	}
	return path
}

// ActionsPREnv points the GitHub Actions environment variables at a
// synthetic pull_request event for the duration of the test.
func ActionsPREnv(t *testing.T, repo string, prNumber int) {
	t.Helper()

	eventPath := filepath.Join(t.TempDir(), "event.json")
	payload := map[string]any{
		"pull_request": map[string]any{"number": prNumber},
	}
	data, err := json.Marshal(payload)
	if err != nil {
		t.Fatalf("marshal event payload: %v", err)
	}
	if err := os.WriteFile(eventPath, data, 0644); err != nil {
		t.Fatalf("write event payload: %v", err)
	}

	outputPath := filepath.Join(t.TempDir(), "output")
	if err := os.WriteFile(outputPath, nil, 0644); err != nil {
		t.Fatalf("write output file: %v", err)
	}

	t.Setenv("GITHUB_ACTIONS", "true")
	t.Setenv("GITHUB_REPOSITORY", repo)
	t.Setenv("GITHUB_EVENT_PATH", eventPath)
	t.Setenv("GITHUB_OUTPUT", outputPath)
}

// OutputRecorder captures step outputs and masked values, standing in
// for the pipeline host in tests.
type OutputRecorder struct {
	mu      sync.Mutex
	Outputs map[string]string
	Masked  []string
}

// NewOutputRecorder returns an empty recorder.
func NewOutputRecorder() *OutputRecorder {
	return &OutputRecorder{Outputs: make(map[string]string)}
}

// SetOutput records a named output.
func (r *OutputRecorder) SetOutput(name, value string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.Outputs[name] = value
}

// AddMask records a value flagged for masking.
func (r *OutputRecorder) AddMask(value string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.Masked = append(r.Masked, value)
}
