package ghaction

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestWorkflowConfigValidate(t *testing.T) {
	tests := []struct {
		name    string
		cfg     WorkflowConfig
		wantErr bool
	}{
		{"default", DefaultWorkflowConfig(), false},
		{"pinned version", WorkflowConfig{AppFilePath: "app.apk", ActionVersion: "1.2.0"}, false},
		{"prerelease version", WorkflowConfig{AppFilePath: "app.apk", ActionVersion: "1.2.0-rc.1"}, false},
		{"empty path", WorkflowConfig{}, true},
		{"version injection", WorkflowConfig{AppFilePath: "app.apk", ActionVersion: `1.0.0"; rm -rf /`}, true},
		{"path injection", WorkflowConfig{AppFilePath: `app.apk"; curl evil`}, true},
		{"path with spaces", WorkflowConfig{AppFilePath: "my app.apk"}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.cfg.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestGenerate(t *testing.T) {
	content, err := Generate(WorkflowConfig{
		AppFilePath:   "build/app-release.apk",
		ActionVersion: "1.4.0",
	})
	if err != nil {
		t.Fatalf("Generate() error = %v", err)
	}

	wants := []string{
		"name: deploygate-upload",
		"pull_request:",
		"pull-requests: write",
		`VERSION="1.4.0"`,
		`--file "build/app-release.apk"`,
		"secrets.DEPLOYGATE_API_KEY",
		"secrets.GITHUB_TOKEN",
	}
	for _, want := range wants {
		if !strings.Contains(content, want) {
			t.Errorf("workflow missing %q", want)
		}
	}

	if strings.Contains(content, "{{ .") {
		t.Error("template placeholders leaked into output")
	}
}

func TestGenerateLatestVersion(t *testing.T) {
	content, err := Generate(WorkflowConfig{AppFilePath: "app.apk"})
	if err != nil {
		t.Fatalf("Generate() error = %v", err)
	}
	if !strings.Contains(content, "releases/latest") {
		t.Error("empty version should resolve the latest release")
	}
}

func TestWriteWorkflow(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "workflows", "deploygate-upload.yml")
	cfg := WorkflowConfig{AppFilePath: "app.apk"}

	if err := WriteWorkflow(cfg, path, false); err != nil {
		t.Fatalf("WriteWorkflow() error = %v", err)
	}
	if _, err := os.Stat(path); err != nil {
		t.Fatalf("workflow file not written: %v", err)
	}

	// Second write without force refuses to clobber.
	if err := WriteWorkflow(cfg, path, false); err == nil {
		t.Error("WriteWorkflow() should refuse to overwrite without force")
	}
	if err := WriteWorkflow(cfg, path, true); err != nil {
		t.Errorf("WriteWorkflow(force) error = %v", err)
	}
}
