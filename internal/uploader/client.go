// Package uploader performs the multipart upload of an app binary to
// the DeployGate API, with bounded retries and exponential backoff.
package uploader

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/DeployGate/deploygate-upload-github-action/internal/input"
	"github.com/DeployGate/deploygate-upload-github-action/internal/version"
)

const (
	// DefaultBaseURL is the production API endpoint.
	DefaultBaseURL = "https://deploygate.com"

	// DefaultMaxAttempts bounds the retry loop. Each attempt re-reads
	// the file from the start.
	DefaultMaxAttempts = 3

	// DefaultTimeout is the end-to-end budget for a single attempt.
	// Large binaries over slow links can legitimately take a long time.
	DefaultTimeout = 30 * time.Minute

	maxRedirects = 5
)

// Client uploads app binaries. The zero value is not usable; call New.
type Client struct {
	BaseURL     string
	UserAgent   string
	MaxAttempts int
	HTTPClient  *http.Client

	// Sleep waits between attempts. Overridable so tests can record
	// backoff durations instead of waiting them out.
	Sleep func(ctx context.Context, d time.Duration) error

	// Logf receives operational log lines (attempt starts, retries,
	// progress milestones). Nil disables them.
	Logf func(format string, args ...any)
}

// Option customizes a Client.
type Option func(*Client)

// WithHTTPClient replaces the underlying HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.HTTPClient = hc }
}

// WithMaxAttempts sets the retry bound. Values below 1 are clamped to 1.
func WithMaxAttempts(n int) Option {
	return func(c *Client) { c.MaxAttempts = n }
}

// WithTimeout sets the per-attempt timeout on the underlying client.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) { c.HTTPClient.Timeout = d }
}

// WithLogf sets the log sink.
func WithLogf(logf func(format string, args ...any)) Option {
	return func(c *Client) { c.Logf = logf }
}

// New returns a Client for the given API base URL. An empty baseURL
// selects production.
func New(baseURL string, opts ...Option) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	c := &Client{
		BaseURL:     baseURL,
		UserAgent:   version.UserAgent(),
		MaxAttempts: DefaultMaxAttempts,
		HTTPClient: &http.Client{
			// Keep-alives stay on so retries reuse the connection.
			Timeout: DefaultTimeout,
			CheckRedirect: func(req *http.Request, via []*http.Request) error {
				if len(via) >= maxRedirects {
					return fmt.Errorf("stopped after %d redirects", maxRedirects)
				}
				return nil
			},
		},
		Sleep: sleepCtx,
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.MaxAttempts < 1 {
		c.MaxAttempts = 1
	}
	return c
}

// Upload posts the binary described by req and returns the parsed
// results. Failed attempts are retried up to MaxAttempts with
// exponential backoff; the last error is terminal. The upload endpoint
// is atomic per attempt, so a retry never observes partial state.
func (c *Client) Upload(ctx context.Context, req *input.UploadRequest) (*AppResults, error) {
	state := newRetryState(c.MaxAttempts)
	for {
		c.logf("uploader: attempt %d/%d for %s", state.attempt+1, c.MaxAttempts, filepath.Base(req.FilePath))

		results, err := c.attempt(ctx, req)
		if err == nil {
			return results, nil
		}
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}

		next, retryable := state.next(err)
		state = next
		if !retryable {
			return nil, state.lastErr
		}

		wait := state.backoff()
		c.logf("uploader: attempt %d failed (%v), retrying in %s", state.attempt, err, wait)
		if err := c.Sleep(ctx, wait); err != nil {
			return nil, err
		}
	}
}

// attempt performs one complete upload: fresh file stream, fresh
// multipart body, one HTTP round trip, response classification.
func (c *Client) attempt(ctx context.Context, req *input.UploadRequest) (*AppResults, error) {
	body, contentType, err := c.multipartBody(req)
	if err != nil {
		return nil, err
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost,
		c.BaseURL+"/api/users/"+req.AppOwnerName+"/apps", body)
	if err != nil {
		body.Close()
		return nil, &TransportError{Err: err}
	}
	httpReq.Header.Set("Content-Type", contentType)
	httpReq.Header.Set("Authorization", "Bearer "+req.APIKey)
	httpReq.Header.Set("User-Agent", c.UserAgent)

	resp, err := c.HTTPClient.Do(httpReq)
	if err != nil {
		return nil, &TransportError{Err: err}
	}
	defer resp.Body.Close()

	return classify(resp)
}

// classify maps an HTTP response to results or the error taxonomy. The
// body's error flag wins over the HTTP status: the service reports
// logical failures on HTTP 200.
func classify(resp *http.Response) (*AppResults, error) {
	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &TransportError{Err: err}
	}

	var parsed Response
	parseErr := json.Unmarshal(raw, &parsed)

	if resp.StatusCode >= 400 {
		herr := &HTTPError{StatusCode: resp.StatusCode}
		if parseErr == nil {
			herr.Message = parsed.Message
		}
		return nil, herr
	}
	if parseErr != nil {
		return nil, &TransportError{Err: fmt.Errorf("malformed response body: %w", parseErr)}
	}
	if parsed.Error {
		return nil, &AppError{Message: parsed.Message}
	}
	if parsed.Results == nil {
		return nil, &TransportError{Err: fmt.Errorf("response missing results")}
	}
	return parsed.Results, nil
}

// multipartBody streams the file and text fields as multipart/form-data.
// The body is built through a pipe so the binary is never buffered in
// memory; each call opens the file fresh, which is what makes attempts
// independently re-readable.
func (c *Client) multipartBody(req *input.UploadRequest) (io.ReadCloser, string, error) {
	f, err := os.Open(req.FilePath)
	if err != nil {
		return nil, "", &TransportError{Err: err}
	}

	pr, pw := io.Pipe()
	mw := multipart.NewWriter(pw)

	go func() {
		defer f.Close()
		err := writeParts(mw, req, c.progressReader(f, req.FileSize))
		if err == nil {
			err = mw.Close()
		}
		pw.CloseWithError(err)
	}()

	return pr, mw.FormDataContentType(), nil
}

func writeParts(mw *multipart.Writer, req *input.UploadRequest, file io.Reader) error {
	part, err := mw.CreateFormFile("file", filepath.Base(req.FilePath))
	if err != nil {
		return err
	}
	if _, err := io.Copy(part, file); err != nil {
		return err
	}

	fields := []struct{ name, value string }{
		{"message", req.Message},
		{"distribution_key", req.DistributionKey},
		{"distribution_name", req.DistributionName},
		{"release_note", req.ReleaseNote},
	}
	for _, fld := range fields {
		if fld.value == "" {
			continue
		}
		if err := mw.WriteField(fld.name, fld.value); err != nil {
			return err
		}
	}
	return mw.WriteField("disable_notify", strconv.FormatBool(req.DisableNotify))
}

// progressReader wraps the file stream to log coarse percentage
// milestones. Purely informational.
func (c *Client) progressReader(r io.Reader, total int64) io.Reader {
	if c.Logf == nil || total <= 0 {
		return r
	}
	return &progressLogger{r: r, total: total, logf: c.Logf}
}

type progressLogger struct {
	r        io.Reader
	total    int64
	sent     int64
	lastMark int
	logf     func(format string, args ...any)
}

func (p *progressLogger) Read(buf []byte) (int, error) {
	n, err := p.r.Read(buf)
	p.sent += int64(n)
	// Report at 25% steps to keep CI logs quiet.
	if mark := int(p.sent * 100 / p.total / 25 * 25); mark > p.lastMark {
		p.lastMark = mark
		p.logf("uploader: sent %d%% (%d/%d bytes)", mark, p.sent, p.total)
	}
	return n, err
}

func (c *Client) logf(format string, args ...any) {
	if c.Logf != nil {
		c.Logf(format, args...)
	}
}

// sleepCtx waits for d or until ctx is cancelled, whichever comes first.
func sleepCtx(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
