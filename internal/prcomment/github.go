package prcomment

import (
	"context"

	"github.com/google/go-github/v66/github"
	"golang.org/x/oauth2"
)

// GitHubStore implements Store over the GitHub issue-comments API for
// one pull request. PR comments live on the issues endpoint.
type GitHubStore struct {
	client *github.Client
	owner  string
	repo   string
	number int
}

// NewGitHubStore returns a store bound to owner/repo#number, authed
// with the given token.
func NewGitHubStore(ctx context.Context, token, owner, repo string, number int) *GitHubStore {
	tc := oauth2.NewClient(ctx, oauth2.StaticTokenSource(
		&oauth2.Token{AccessToken: token}))
	return &GitHubStore{
		client: github.NewClient(tc),
		owner:  owner,
		repo:   repo,
		number: number,
	}
}

// List returns every comment on the pull request, following pagination.
func (s *GitHubStore) List(ctx context.Context) ([]Comment, error) {
	var out []Comment
	opts := &github.IssueListCommentsOptions{
		ListOptions: github.ListOptions{PerPage: 100},
	}
	for {
		comments, resp, err := s.client.Issues.ListComments(
			ctx, s.owner, s.repo, s.number, opts)
		if err != nil {
			return nil, err
		}
		for _, c := range comments {
			out = append(out, Comment{
				ID:   c.GetID(),
				Body: c.GetBody(),
			})
		}
		if resp.NextPage == 0 {
			return out, nil
		}
		opts.Page = resp.NextPage
	}
}

// Create posts a new comment on the pull request.
func (s *GitHubStore) Create(ctx context.Context, body string) error {
	_, _, err := s.client.Issues.CreateComment(
		ctx, s.owner, s.repo, s.number,
		&github.IssueComment{Body: github.String(body)})
	return err
}

// Update replaces the body of an existing comment.
func (s *GitHubStore) Update(ctx context.Context, id int64, body string) error {
	_, _, err := s.client.Issues.EditComment(
		ctx, s.owner, s.repo, id,
		&github.IssueComment{Body: github.String(body)})
	return err
}
