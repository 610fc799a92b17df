// Package github reads rosters and comment threads from GitHub and writes the
// status label and comment back.
package github

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/google/go-github/v71/github"

	"ApprovalBot/internal/config"
	"ApprovalBot/internal/domain"
	"ApprovalBot/internal/platform"
)

const pageSize = 100

var _ platform.Platform = (*Client)(nil)

type Client struct {
	gh    *github.Client
	owner string
	repo  string
	org   string
	teams map[domain.Role]string
}

func New(cfg config.GitHubConfig, httpClient *http.Client) (*Client, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	gh := github.NewClient(httpClient)
	if cfg.Token != "" {
		gh = gh.WithAuthToken(cfg.Token)
	}
	if cfg.APIURL != "" {
		base := cfg.APIURL
		if !strings.HasSuffix(base, "/") {
			base += "/"
		}
		u, err := url.Parse(base)
		if err != nil {
			return nil, fmt.Errorf("parse github api url: %w", err)
		}
		gh.BaseURL = u
	}

	org := cfg.Org
	if org == "" {
		org = cfg.Owner
	}

	return &Client{
		gh:    gh,
		owner: cfg.Owner,
		repo:  cfg.Repo,
		org:   org,
		teams: map[domain.Role]string{
			domain.RoleCore:       cfg.CoreTeam,
			domain.RoleMaintainer: cfg.MaintainerTeam,
		},
	}, nil
}

func (c *Client) FetchRoster(ctx context.Context, role domain.Role) ([]string, error) {
	slug := c.teams[role]
	if slug == "" {
		return nil, fmt.Errorf("%w: no team configured for role %s", domain.ErrRosterFetch, role)
	}

	opts := &github.TeamListTeamMembersOptions{
		ListOptions: github.ListOptions{PerPage: pageSize},
	}
	var members []string
	for {
		users, resp, err := c.gh.Teams.ListTeamMembersBySlug(ctx, c.org, slug, opts)
		if err != nil {
			return nil, fmt.Errorf("%w: team %s/%s: %w", domain.ErrRosterFetch, c.org, slug, err)
		}
		for _, user := range users {
			members = append(members, user.GetLogin())
		}
		if resp.NextPage == 0 {
			break
		}
		opts.Page = resp.NextPage
	}
	return members, nil
}

func (c *Client) FetchComments(ctx context.Context, thread int) ([]domain.Comment, error) {
	opts := &github.IssueListCommentsOptions{
		Sort:        github.Ptr("created"),
		Direction:   github.Ptr("asc"),
		ListOptions: github.ListOptions{PerPage: pageSize},
	}
	var comments []domain.Comment
	for {
		page, resp, err := c.gh.Issues.ListComments(ctx, c.owner, c.repo, thread, opts)
		if err != nil {
			return nil, fmt.Errorf("%w: %s/%s#%d: %w", domain.ErrCommentFetch, c.owner, c.repo, thread, err)
		}
		for _, comment := range page {
			comments = append(comments, domain.Comment{
				ID:       comment.GetID(),
				Author:   comment.GetUser().GetLogin(),
				Body:     comment.GetBody(),
				Position: len(comments),
			})
		}
		if resp.NextPage == 0 {
			break
		}
		opts.Page = resp.NextPage
	}
	return comments, nil
}

func (c *Client) ReplaceLabels(ctx context.Context, thread int, labels []string) error {
	if _, _, err := c.gh.Issues.ReplaceLabelsForIssue(ctx, c.owner, c.repo, thread, labels); err != nil {
		return fmt.Errorf("replace labels on %s/%s#%d: %w", c.owner, c.repo, thread, err)
	}
	return nil
}

func (c *Client) UpsertComment(ctx context.Context, thread int, existingID *int64, body string) error {
	comment := &github.IssueComment{Body: github.Ptr(body)}
	if existingID != nil {
		if _, _, err := c.gh.Issues.EditComment(ctx, c.owner, c.repo, *existingID, comment); err != nil {
			return fmt.Errorf("edit comment %d: %w", *existingID, err)
		}
		return nil
	}
	if _, _, err := c.gh.Issues.CreateComment(ctx, c.owner, c.repo, thread, comment); err != nil {
		return fmt.Errorf("create comment on %s/%s#%d: %w", c.owner, c.repo, thread, err)
	}
	return nil
}
