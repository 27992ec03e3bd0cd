// Package github fetches the live state of mirrored issues and pull
// requests from the GitHub API at index time.
package github

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/google/go-github/v66/github"

	"github.com/kontur-labs/ticketsearch/internal/domain"
	"github.com/kontur-labs/ticketsearch/internal/usecase/publish"
)

// maxComments caps how many comments a refetch pulls per issue. A single
// page is enough for ranking; full threads are not worth extra API calls.
const maxComments = 100

// Client implements the refetcher contract for GitHub.
type Client struct {
	gh *github.Client
}

// Config holds the GitHub connection settings.
type Config struct {
	// Token is optional; unauthenticated clients work with lower rate
	// limits.
	Token string
	// BaseURL points at a GitHub Enterprise instance when set.
	BaseURL string
}

// New creates a GitHub client.
func New(cfg *Config) (*Client, error) {
	gh := github.NewClient(nil)
	if cfg.Token != "" {
		gh = gh.WithAuthToken(cfg.Token)
	}
	if cfg.BaseURL != "" {
		var err error
		gh, err = gh.WithEnterpriseURLs(cfg.BaseURL, cfg.BaseURL)
		if err != nil {
			return nil, fmt.Errorf("enterprise base URL: %w", err)
		}
	}
	return &Client{gh: gh}, nil
}

// FetchIssue pulls the current state of one issue or pull request.
// externalKey is "owner/repo#number".
func (c *Client) FetchIssue(ctx context.Context, externalKey string) (publish.RemoteIssue, error) {
	owner, repo, number, err := parseExternalKey(externalKey)
	if err != nil {
		return publish.RemoteIssue{}, err
	}

	issue, _, err := c.gh.Issues.Get(ctx, owner, repo, number)
	if err != nil {
		return publish.RemoteIssue{}, fmt.Errorf("%w: get %s: %w", domain.ErrRefetchFailed, externalKey, err)
	}

	remote := publish.RemoteIssue{
		Title:     issue.GetTitle(),
		Body:      issue.GetBody(),
		State:     issue.GetState(),
		URL:       issue.GetHTMLURL(),
		CreatedAt: issue.GetCreatedAt().Time,
		UpdatedAt: issue.GetUpdatedAt().Time,
	}
	for _, l := range issue.Labels {
		remote.Labels = append(remote.Labels, l.GetName())
	}

	if issue.GetComments() > 0 {
		comments, _, err := c.gh.Issues.ListComments(ctx, owner, repo, number, &github.IssueListCommentsOptions{
			ListOptions: github.ListOptions{PerPage: maxComments},
		})
		if err != nil {
			return publish.RemoteIssue{}, fmt.Errorf("%w: list comments %s: %w", domain.ErrRefetchFailed, externalKey, err)
		}
		for _, cm := range comments {
			if body := cm.GetBody(); body != "" {
				remote.Comments = append(remote.Comments, body)
			}
		}
	}

	return remote, nil
}

// HealthCheck verifies API reachability.
func (c *Client) HealthCheck(ctx context.Context) error {
	if _, _, err := c.gh.Zen(ctx); err != nil {
		return fmt.Errorf("github api: %w", err)
	}
	return nil
}

// parseExternalKey splits "owner/repo#number".
func parseExternalKey(key string) (owner, repo string, number int, err error) {
	path, num, ok := strings.Cut(key, "#")
	if !ok {
		return "", "", 0, fmt.Errorf("invalid external key %q: missing issue number", key)
	}
	owner, repo, ok = strings.Cut(path, "/")
	if !ok || owner == "" || repo == "" {
		return "", "", 0, fmt.Errorf("invalid external key %q: want owner/repo#number", key)
	}
	number, err = strconv.Atoi(num)
	if err != nil || number <= 0 {
		return "", "", 0, fmt.Errorf("invalid external key %q: bad issue number", key)
	}
	return owner, repo, number, nil
}
