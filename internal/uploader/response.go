package uploader

import (
	"encoding/json"
)

// Response is the JSON envelope returned by the upload endpoint.
// The error flag is authoritative: the service can report a logical
// failure on an HTTP 200.
type Response struct {
	Error   bool        `json:"error"`
	Message string      `json:"message,omitempty"`
	Results *AppResults `json:"results,omitempty"`
}

// Distribution describes the distribution page a revision was published
// to, when a distribution key or name was supplied.
type Distribution struct {
	URL string `json:"url,omitempty"`

	extra map[string]json.RawMessage
}

// User is the owning user record nested in upload results.
type User struct {
	Name string `json:"name,omitempty"`

	extra map[string]json.RawMessage
}

// AppResults is the per-upload record returned by the service. Known
// fields are typed; everything the server sends that this integration
// does not model is preserved verbatim in an open remainder so that
// forward-compatible fields survive output serialization.
type AppResults struct {
	Name             string        `json:"name,omitempty"`
	PackageName      string        `json:"package_name,omitempty"`
	OSName           string        `json:"os_name,omitempty"`
	VersionCode      string        `json:"version_code,omitempty"`
	VersionName      string        `json:"version_name,omitempty"`
	SDKVersion       int           `json:"sdk_version,omitempty"`
	RawSDKVersion    string        `json:"raw_sdk_version,omitempty"`
	TargetSDKVersion *int          `json:"target_sdk_version,omitempty"`
	Signature        *string       `json:"signature,omitempty"`
	Message          string        `json:"message,omitempty"`
	File             string        `json:"file,omitempty"`
	IconURL          string        `json:"icon_url,omitempty"`
	Revision         int           `json:"revision,omitempty"`
	Path             string        `json:"path,omitempty"`
	User             *User         `json:"user,omitempty"`
	Distribution     *Distribution `json:"distribution,omitempty"`

	extra map[string]json.RawMessage
}

// knownAppResultsFields lists the JSON keys AppResults models directly;
// any other key lands in the passthrough remainder.
var knownAppResultsFields = []string{
	"name", "package_name", "os_name", "version_code", "version_name",
	"sdk_version", "raw_sdk_version", "target_sdk_version", "signature",
	"message", "file", "icon_url", "revision", "path", "user",
	"distribution",
}

// DistributionURL returns the nested distribution page URL, or "" when
// the upload was not attached to a distribution.
func (r *AppResults) DistributionURL() string {
	if r == nil || r.Distribution == nil {
		return ""
	}
	return r.Distribution.URL
}

// UserName returns the nested owner name, or "".
func (r *AppResults) UserName() string {
	if r == nil || r.User == nil {
		return ""
	}
	return r.User.Name
}

func (r *AppResults) UnmarshalJSON(data []byte) error {
	type alias AppResults
	var a alias
	if err := json.Unmarshal(data, &a); err != nil {
		return err
	}
	*r = AppResults(a)
	r.extra = extraFields(data, knownAppResultsFields)
	return nil
}

func (r AppResults) MarshalJSON() ([]byte, error) {
	type alias AppResults
	return mergeExtra(alias(r), r.extra)
}

func (d *Distribution) UnmarshalJSON(data []byte) error {
	type alias Distribution
	var a alias
	if err := json.Unmarshal(data, &a); err != nil {
		return err
	}
	*d = Distribution(a)
	d.extra = extraFields(data, []string{"url"})
	return nil
}

func (d Distribution) MarshalJSON() ([]byte, error) {
	type alias Distribution
	return mergeExtra(alias(d), d.extra)
}

func (u *User) UnmarshalJSON(data []byte) error {
	type alias User
	var a alias
	if err := json.Unmarshal(data, &a); err != nil {
		return err
	}
	*u = User(a)
	u.extra = extraFields(data, []string{"name"})
	return nil
}

func (u User) MarshalJSON() ([]byte, error) {
	type alias User
	return mergeExtra(alias(u), u.extra)
}

// extraFields decodes data as a generic object and returns the keys not
// covered by known, with their raw values.
func extraFields(data []byte, known []string) map[string]json.RawMessage {
	var all map[string]json.RawMessage
	if err := json.Unmarshal(data, &all); err != nil {
		return nil
	}
	for _, k := range known {
		delete(all, k)
	}
	if len(all) == 0 {
		return nil
	}
	return all
}

// mergeExtra marshals v and splices the preserved unknown fields back
// into the resulting object.
func mergeExtra(v any, extra map[string]json.RawMessage) ([]byte, error) {
	base, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	if len(extra) == 0 {
		return base, nil
	}
	var merged map[string]json.RawMessage
	if err := json.Unmarshal(base, &merged); err != nil {
		return nil, err
	}
	for k, raw := range extra {
		if _, ok := merged[k]; !ok {
			merged[k] = raw
		}
	}
	return json.Marshal(merged)
}
