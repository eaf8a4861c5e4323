// Package ghaction is the GitHub Actions host surface: event payload
// detection, action inputs/outputs, secret masking, and workflow
// scaffolding.
package ghaction

import (
	"encoding/json"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/sethvargo/go-githubactions"
)

// RunningInActions reports whether the process is a GitHub Actions
// step.
func RunningInActions() bool {
	return os.Getenv("GITHUB_ACTIONS") == "true"
}

// Repository returns the "owner/name" of the current repository, split.
func Repository() (owner, repo string, err error) {
	full := os.Getenv("GITHUB_REPOSITORY")
	owner, repo, ok := strings.Cut(full, "/")
	if !ok || owner == "" || repo == "" {
		return "", "", fmt.Errorf("GITHUB_REPOSITORY not set or malformed: %q", full)
	}
	return owner, repo, nil
}

// prEvent holds the pull_request fields of an Actions event payload.
type prEvent struct {
	PullRequest struct {
		Number int `json:"number"`
	} `json:"pull_request"`
}

// readPREvent reads and unmarshals the event file pointed to by
// GITHUB_EVENT_PATH.
func readPREvent() (*prEvent, error) {
	eventPath := os.Getenv("GITHUB_EVENT_PATH")
	if eventPath == "" {
		return nil, fmt.Errorf("GITHUB_EVENT_PATH not set")
	}
	data, err := os.ReadFile(eventPath)
	if err != nil {
		return nil, fmt.Errorf("read event file: %w", err)
	}
	var event prEvent
	if err := json.Unmarshal(data, &event); err != nil {
		return nil, fmt.Errorf("parse event JSON: %w", err)
	}
	return &event, nil
}

// DetectPRNumber auto-detects the pull request number from the Actions
// environment: the event payload first, then GITHUB_REF
// (refs/pull/N/merge). Returns 0 with an error when the run was not
// triggered by a pull request.
func DetectPRNumber() (int, error) {
	event, err := readPREvent()
	if err == nil && event.PullRequest.Number > 0 {
		return event.PullRequest.Number, nil
	}

	ghRef := os.Getenv("GITHUB_REF")
	if rest, ok := strings.CutPrefix(ghRef, "refs/pull/"); ok {
		numStr, _, _ := strings.Cut(rest, "/")
		if n, err := strconv.Atoi(numStr); err == nil && n > 0 {
			return n, nil
		}
	}

	return 0, fmt.Errorf("could not detect PR number from environment")
}

// Input returns the named action input (INPUT_* environment variable),
// or "" when unset.
func Input(name string) string {
	return githubactions.GetInput(name)
}

// Host adapts the Actions toolkit to the reporter's OutputSink
// contract. Outside Actions the same methods degrade to stdout notes so
// local runs still show what would have been published.
type Host struct {
	inActions bool
}

// NewHost returns the host surface for the current environment.
func NewHost() *Host {
	return &Host{inActions: RunningInActions()}
}

// SetOutput publishes a step output. The toolkit writes outputs through
// the GITHUB_OUTPUT file and panics when that variable is missing, so
// a stripped-down environment degrades to the stdout note instead.
func (h *Host) SetOutput(name, value string) {
	if h.inActions && os.Getenv("GITHUB_OUTPUT") != "" {
		githubactions.SetOutput(name, value)
		return
	}
	fmt.Printf("output %s=%s\n", name, value)
}

// AddMask flags a value so the host scrubs it from logs.
func (h *Host) AddMask(value string) {
	if h.inActions {
		githubactions.AddMask(value)
	}
}

// Warningf emits a warning annotation (or a plain line locally).
func (h *Host) Warningf(format string, args ...any) {
	if h.inActions {
		githubactions.Warningf(format, args...)
		return
	}
	fmt.Printf("warning: "+format+"\n", args...)
}
