package report

import (
	"encoding/json"
	"fmt"
	"strings"
	"testing"

	"github.com/DeployGate/deploygate-upload-github-action/internal/testutil"
	"github.com/DeployGate/deploygate-upload-github-action/internal/uploader"
)

func resultsFromJSON(t *testing.T, raw string) *uploader.AppResults {
	t.Helper()

	var results uploader.AppResults
	if err := json.Unmarshal([]byte(raw), &results); err != nil {
		t.Fatalf("unmarshal results: %v", err)
	}
	return &results
}

func TestSuccessPublishesFullResults(t *testing.T) {
	rec := testutil.NewOutputRecorder()
	r := &Reporter{Out: rec}

	results := resultsFromJSON(t, `{
		"name": "Example",
		"package_name": "com.example.app",
		"revision": 5,
		"file": "https://example.com/download/5",
		"future_field": "kept"
	}`)

	if err := r.Success(results, 4*1024*1024); err != nil {
		t.Fatalf("Success() error = %v", err)
	}

	out, ok := rec.Outputs["results"]
	if !ok {
		t.Fatal("results output not set")
	}

	var decoded map[string]any
	if err := json.Unmarshal([]byte(out), &decoded); err != nil {
		t.Fatalf("results output is not JSON: %v", err)
	}
	if decoded["revision"] != float64(5) {
		t.Errorf("revision = %v, want 5", decoded["revision"])
	}
	if decoded["future_field"] != "kept" {
		t.Errorf("unknown field dropped from output: %v", decoded)
	}
}

func TestSuccessMasksDownloadURL(t *testing.T) {
	rec := testutil.NewOutputRecorder()

	var logged []string
	r := &Reporter{
		Out:  rec,
		Logf: func(format string, args ...any) { logged = append(logged, fmt.Sprintf(format, args...)) },
	}

	const downloadURL = "https://example.com/download/secret"
	results := resultsFromJSON(t, `{"revision":1,"file":"`+downloadURL+`"}`)

	if err := r.Success(results, 1024); err != nil {
		t.Fatalf("Success() error = %v", err)
	}

	if len(rec.Masked) != 1 || rec.Masked[0] != downloadURL {
		t.Errorf("Masked = %v, want the download URL", rec.Masked)
	}
	for _, line := range logged {
		if strings.Contains(line, downloadURL) {
			t.Errorf("download URL printed in log line %q", line)
		}
	}
}

func TestFailureFormatsByKind(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want string
	}{
		{"http", &uploader.HTTPError{StatusCode: 500, Message: "boom"}, "HTTP 500"},
		{"app", &uploader.AppError{Message: "bad package"}, "bad package"},
		{"transport", &uploader.TransportError{Err: fmt.Errorf("dial tcp: refused")}, "refused"},
		{"other", fmt.Errorf("odd failure"), "odd failure"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var warned []string
			r := &Reporter{
				Out:   testutil.NewOutputRecorder(),
				Warnf: func(format string, args ...any) { warned = append(warned, fmt.Sprintf(format, args...)) },
			}

			err := r.Failure(tt.err)
			if err == nil {
				t.Fatal("Failure() must return a terminal error")
			}
			if len(warned) != 1 || !strings.Contains(warned[0], tt.want) {
				t.Errorf("warning = %v, want substring %q", warned, tt.want)
			}
		})
	}
}
