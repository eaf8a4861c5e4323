// Package input validates and normalizes the raw string parameters
// supplied by the CI environment before any network activity happens.
package input

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// Known binary extensions for the distribution service. Anything else
// uploads fine but earns a warning.
var knownExtensions = []string{".ipa", ".apk", ".aab"}

// Params holds the raw, untrusted inputs exactly as the pipeline host
// passed them. All fields are plain strings; boolean-ish fields are
// parsed during Validate.
type Params struct {
	APIKey           string
	AppOwnerName     string
	AppFilePath      string
	Message          string
	DistributionKey  string
	DistributionName string
	ReleaseNote      string
	DisableNotify    string
	EnablePRComment  string
	GitHubToken      string
}

// UploadRequest is the validated, immutable form of Params. Constructing
// one either succeeds with every field checked or fails before any
// network call is made.
type UploadRequest struct {
	APIKey           string
	AppOwnerName     string
	FilePath         string
	FileSize         int64
	Message          string
	DistributionKey  string
	DistributionName string
	ReleaseNote      string
	DisableNotify    bool
}

// ValidationError reports a bad or missing input parameter.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid input %q: %s", e.Field, e.Reason)
}

// Validator checks Params and reports secrets and warnings back to the
// host. Mask flags a value that must never appear in plaintext logs;
// Warnf surfaces non-fatal findings. Both may be nil.
type Validator struct {
	Mask  func(value string)
	Warnf func(format string, args ...any)
}

// Validate sanitizes and checks params, returning a fully validated
// UploadRequest. No network activity occurs here; a returned error means
// the run must abort before the first upload attempt.
func (v *Validator) Validate(p Params) (*UploadRequest, error) {
	apiKey := strings.TrimSpace(p.APIKey)
	if apiKey == "" {
		return nil, &ValidationError{Field: "api_key", Reason: "must not be empty"}
	}
	v.mask(apiKey)

	owner := StripControl(strings.TrimSpace(p.AppOwnerName))
	if owner == "" {
		return nil, &ValidationError{Field: "app_owner_name", Reason: "must not be empty"}
	}
	v.mask(owner)

	path := strings.TrimSpace(p.AppFilePath)
	if path == "" {
		return nil, &ValidationError{Field: "app_file_path", Reason: "must not be empty"}
	}
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, &ValidationError{Field: "app_file_path", Reason: err.Error()}
	}
	info, err := os.Stat(abs)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, &ValidationError{Field: "app_file_path", Reason: fmt.Sprintf("file not found: %s", abs)}
		}
		return nil, &ValidationError{Field: "app_file_path", Reason: err.Error()}
	}
	if !info.Mode().IsRegular() {
		return nil, &ValidationError{Field: "app_file_path", Reason: fmt.Sprintf("not a regular file: %s", abs)}
	}
	if info.Size() == 0 {
		return nil, &ValidationError{Field: "app_file_path", Reason: fmt.Sprintf("file is empty: %s", abs)}
	}
	if ext := strings.ToLower(filepath.Ext(abs)); !knownExt(ext) {
		v.warnf("unexpected file extension %q (expected one of %s); uploading anyway",
			ext, strings.Join(knownExtensions, ", "))
	}

	return &UploadRequest{
		APIKey:           apiKey,
		AppOwnerName:     owner,
		FilePath:         abs,
		FileSize:         info.Size(),
		Message:          StripControl(p.Message),
		DistributionKey:  StripControl(p.DistributionKey),
		DistributionName: StripControl(p.DistributionName),
		ReleaseNote:      StripControl(p.ReleaseNote),
		DisableNotify:    ParseBool(StripControl(p.DisableNotify)),
	}, nil
}

// CommentEnabled reports whether the PR comment feature is on. Any value
// other than an exact (case-insensitive) "false" leaves it enabled.
func CommentEnabled(raw string) bool {
	return !strings.EqualFold(strings.TrimSpace(StripControl(raw)), "false")
}

// ParseBool treats exactly "true" (case-insensitive) as true and
// everything else as false.
func ParseBool(raw string) bool {
	return strings.EqualFold(strings.TrimSpace(raw), "true")
}

// StripControl removes C0 and C1 control characters (and DEL) from s,
// leaving all other bytes untouched. Free-text inputs pass through here
// before they reach logs, headers, or multipart fields.
func StripControl(s string) string {
	return strings.Map(func(r rune) rune {
		if r < 0x20 || (r >= 0x7F && r <= 0x9F) {
			return -1
		}
		return r
	}, s)
}

func knownExt(ext string) bool {
	for _, k := range knownExtensions {
		if ext == k {
			return true
		}
	}
	return false
}

func (v *Validator) mask(value string) {
	if v.Mask != nil {
		v.Mask(value)
	}
}

func (v *Validator) warnf(format string, args ...any) {
	if v.Warnf != nil {
		v.Warnf(format, args...)
	}
}
