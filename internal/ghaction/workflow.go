package ghaction

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"text/template"
)

// Validation patterns for scaffold parameters (prevent YAML injection).
var (
	safeVersionRE = regexp.MustCompile(
		`^[0-9]+\.[0-9]+\.[0-9]+(-[A-Za-z0-9.]+)?$`)
	safePathRE = regexp.MustCompile(
		`^[A-Za-z0-9][A-Za-z0-9._/*-]*$`)
)

// WorkflowConfig holds the parameters for scaffolding the upload
// workflow.
type WorkflowConfig struct {
	// AppFilePath is the path (or glob) of the built binary within
	// the workspace, e.g. "app/build/outputs/apk/release/app-release.apk".
	AppFilePath string

	// ActionVersion is the release of this tool to install. Empty
	// means "latest".
	ActionVersion string
}

// DefaultWorkflowConfig returns a config with a typical Android output
// path.
func DefaultWorkflowConfig() WorkflowConfig {
	return WorkflowConfig{
		AppFilePath: "app/build/outputs/apk/release/app-release.apk",
	}
}

// Validate checks all scaffold fields against safe patterns. Returns an
// error describing the first invalid field.
func (c *WorkflowConfig) Validate() error {
	if c.AppFilePath == "" {
		return fmt.Errorf("app file path is required")
	}
	if !safePathRE.MatchString(c.AppFilePath) {
		return fmt.Errorf("invalid app file path %q", c.AppFilePath)
	}
	if c.ActionVersion != "" && !safeVersionRE.MatchString(c.ActionVersion) {
		return fmt.Errorf(
			"invalid version %q (expected semver like 1.2.0)",
			c.ActionVersion)
	}
	return nil
}

// Generate produces the workflow YAML for the given config.
func Generate(cfg WorkflowConfig) (string, error) {
	if cfg.AppFilePath == "" {
		cfg.AppFilePath = DefaultWorkflowConfig().AppFilePath
	}
	if err := cfg.Validate(); err != nil {
		return "", fmt.Errorf("invalid config: %w", err)
	}

	tmpl, err := template.New("workflow").Parse(workflowTemplate)
	if err != nil {
		return "", fmt.Errorf("parse template: %w", err)
	}

	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, cfg); err != nil {
		return "", fmt.Errorf("execute template: %w", err)
	}
	return buf.String(), nil
}

// WriteWorkflow generates the workflow and writes it to outputPath,
// creating parent directories as needed. Refuses to overwrite an
// existing file unless force is set.
func WriteWorkflow(cfg WorkflowConfig, outputPath string, force bool) error {
	if !force {
		if _, err := os.Stat(outputPath); err == nil {
			return fmt.Errorf(
				"workflow file already exists: %s (use --force to overwrite)",
				outputPath)
		}
	}

	content, err := Generate(cfg)
	if err != nil {
		return err
	}

	dir := filepath.Dir(outputPath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("create directory %s: %w", dir, err)
	}
	if err := os.WriteFile(outputPath, []byte(content), 0644); err != nil {
		return fmt.Errorf("write workflow: %w", err)
	}
	return nil
}

var workflowTemplate = `# Upload to DeployGate
# Generated by: deploygate-upload ghaction
# Uploads the built app binary and posts the install link on the PR.
#
# Required setup:
#   - Add a repository secret named "DEPLOYGATE_API_KEY"
#   - Add a repository secret or variable "DEPLOYGATE_OWNER"

name: deploygate-upload

on:
  pull_request:
    types: [opened, synchronize, reopened]

permissions:
  contents: read
  pull-requests: write

jobs:
  upload:
    runs-on: ubuntu-latest
    steps:
      - name: Checkout
        uses: actions/checkout@de0fac2e4500dabe0009e67214ff5f5447ce83dd  # v6.0.2

      # Replace with your real build steps.
      - name: Build
        run: echo "build {{ .AppFilePath }} here"

      - name: Install deploygate-upload
        run: |
          set -euo pipefail
          {{- if .ActionVersion }}
          VERSION="{{ .ActionVersion }}"
          {{- else }}
          VERSION=$(curl -sfL https://api.github.com/repos/DeployGate/deploygate-upload-github-action/releases/latest | grep '"tag_name"' | sed -E 's/.*"v?([^"]+)".*/\1/')
          {{- end }}
          ARCHIVE="deploygate-upload_${VERSION}_linux_amd64.tar.gz"
          curl -sfLO "https://github.com/DeployGate/deploygate-upload-github-action/releases/download/v${VERSION}/${ARCHIVE}"
          mkdir -p "$HOME/.local/bin"
          tar xzf "${ARCHIVE}" -C "$HOME/.local/bin" deploygate-upload
          echo "$HOME/.local/bin" >> "$GITHUB_PATH"

      - name: Upload
        env:
          GITHUB_TOKEN: ${{"{{"}} secrets.GITHUB_TOKEN {{"}}"}}
        run: |
          set -euo pipefail
          deploygate-upload upload \
            --api-key "${{"{{"}} secrets.DEPLOYGATE_API_KEY {{"}}"}}" \
            --owner "${{"{{"}} vars.DEPLOYGATE_OWNER {{"}}"}}" \
            --file "{{ .AppFilePath }}" \
            --message "${{"{{"}} github.event.pull_request.title {{"}}"}}"
`
