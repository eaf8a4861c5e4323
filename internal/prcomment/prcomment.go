// Package prcomment maintains a single status comment on the pull
// request that triggered the upload. Reruns update the existing comment
// in place instead of piling up new ones.
package prcomment

import (
	"context"
	"fmt"
	"net/url"
	"strings"

	"github.com/DeployGate/deploygate-upload-github-action/internal/uploader"
)

// Marker is the fixed heading embedded in every generated comment body.
// Reconcile finds a prior comment by scanning for this substring, so it
// must stay stable across releases.
const Marker = "## :rocket: Uploaded to DeployGate"

// qrEndpoint renders a QR code for the distribution URL so testers can
// open the page from a phone camera.
const qrEndpoint = "https://api.qrserver.com/v1/create-qr-code/"

// Comment is the read view of a stored comment.
type Comment struct {
	ID   int64
	Body string
}

// Store is the comment-store contract: list the thread, create a new
// comment, or update one in place.
type Store interface {
	List(ctx context.Context) ([]Comment, error)
	Create(ctx context.Context, body string) error
	Update(ctx context.Context, id int64, body string) error
}

// Body renders the status comment for a successful upload. The
// distribution rows appear only when the upload landed on a
// distribution page.
func Body(results *uploader.AppResults, baseURL string) string {
	var b strings.Builder
	b.WriteString(Marker)
	b.WriteString("\n\n")
	b.WriteString("| | |\n|---|---|\n")
	fmt.Fprintf(&b, "| Revision | %d |\n", results.Revision)
	fmt.Fprintf(&b, "| App detail | %s |\n", detailURL(results, baseURL))

	if dist := results.DistributionURL(); dist != "" {
		fmt.Fprintf(&b, "| Distribution | %s |\n", dist)
		fmt.Fprintf(&b, "| QR code | ![QR code](%s?size=150x150&data=%s) |\n",
			qrEndpoint, url.QueryEscape(dist))
	}
	return b.String()
}

// detailURL links the revision's detail page on the service.
func detailURL(results *uploader.AppResults, baseURL string) string {
	if results.Path == "" {
		return baseURL
	}
	return baseURL + results.Path
}

// Reconcile ensures exactly one marker-tagged comment exists on the
// thread: the first existing match is updated in place, otherwise a new
// comment is created. Concurrent runs on the same thread can race the
// find-then-act sequence and leave two comments; the store offers no
// idempotency key, so that stays an accepted limitation.
func Reconcile(ctx context.Context, store Store, body string) error {
	comments, err := store.List(ctx)
	if err != nil {
		return fmt.Errorf("list comments: %w", err)
	}
	for _, c := range comments {
		if strings.Contains(c.Body, Marker) {
			if err := store.Update(ctx, c.ID, body); err != nil {
				return fmt.Errorf("update comment %d: %w", c.ID, err)
			}
			return nil
		}
	}
	if err := store.Create(ctx, body); err != nil {
		return fmt.Errorf("create comment: %w", err)
	}
	return nil
}
