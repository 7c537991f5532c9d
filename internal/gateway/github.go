// Package gateway provides a gateway to the GitHub API,
// abstracting away the underlying REST and GraphQL clients.
package gateway

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"sort"
	"time"

	"github.com/google/go-github/v62/github"
	"github.com/shurcooL/githubv4"
	"golang.org/x/oauth2"

	"github.com/gofri/go-github-ratelimit/github_ratelimit"

	"github.com/devwork/gh-activity/internal/archive"
	"github.com/devwork/gh-activity/internal/dates"
	"github.com/devwork/gh-activity/internal/domain"
)

// Commit messages are truncated at fetch time; only the first line is ever
// rendered and full messages can carry entire changelogs.
const maxMessageLen = 200

// Fetcher defines the behavior of a gateway for fetching activity from
// GitHub. All repositories belong to the owner the gateway was built for.
type Fetcher interface {
	// FetchIssues returns the details of every issue created or updated in
	// the date range, in ascending issue-number order.
	FetchIssues(ctx context.Context, repo string, since, until time.Time) ([]domain.Issue, error)
	// FetchSubIssues returns the details of the issues tracked by the given
	// issue (GitHub tracked-issues linkage).
	FetchSubIssues(ctx context.Context, repo string, number int) ([]domain.Issue, error)
	// FetchTimelinePRs returns the numbers of PRs that cross-reference the
	// issue in its timeline.
	FetchTimelinePRs(ctx context.Context, repo string, number int) ([]int, error)
	// FetchMentioningPRs returns the numbers of PRs whose title or body
	// mention #number.
	FetchMentioningPRs(ctx context.Context, repo string, number int) ([]int, error)
	// FetchPRCommits returns the commits of a pull request.
	FetchPRCommits(ctx context.Context, repo string, number int) ([]domain.Commit, error)
	// FetchRepoCommits returns the repository commits in the date range.
	FetchRepoCommits(ctx context.Context, repo string, since, until time.Time) ([]domain.Commit, error)
}

// GitHubGateway is the concrete implementation of the Fetcher interface.
type GitHubGateway struct {
	restClient    *github.Client
	graphqlClient *githubv4.Client
	owner         string
	archive       *archive.Archive
	logger        *log.Logger
}

// NewGitHubGateway is a constructor that creates a new instance of GitHubGateway.
func NewGitHubGateway(token, owner string, arch *archive.Archive, logger *log.Logger) (Fetcher, error) {
	rateLimitWaiter, err := github_ratelimit.NewRateLimitWaiter(nil, github_ratelimit.WithSingleSleepLimit(1*time.Hour, nil))
	if err != nil {
		return nil, fmt.Errorf("failed to create rate limit waiter: %w", err)
	}
	ts := oauth2.StaticTokenSource(&oauth2.Token{AccessToken: token})
	httpClient := &http.Client{
		Transport: &oauth2.Transport{
			Base:   rateLimitWaiter,
			Source: ts,
		},
	}
	return &GitHubGateway{
		restClient:    github.NewClient(httpClient),
		graphqlClient: githubv4.NewClient(httpClient),
		owner:         owner,
		archive:       arch,
		logger:        logger,
	}, nil
}

func (g *GitHubGateway) FetchIssues(ctx context.Context, repo string, since, until time.Time) ([]domain.Issue, error) {
	g.logger.Printf("Fetching issues for %s/%s...", g.owner, repo)

	numbers := make(map[int]struct{})
	for _, field := range []string{"created", "updated"} {
		found, err := g.searchIssueNumbers(ctx, repo, field, since, until)
		if err != nil {
			return nil, err
		}
		for _, n := range found {
			numbers[n] = struct{}{}
		}
	}

	sorted := make([]int, 0, len(numbers))
	for n := range numbers {
		sorted = append(sorted, n)
	}
	sort.Ints(sorted)

	issues := make([]domain.Issue, 0, len(sorted))
	for _, n := range sorted {
		issue, err := g.fetchIssue(ctx, repo, n)
		if err != nil {
			return nil, err
		}
		issues = append(issues, issue)
	}
	g.logger.Printf("Found %d issues in range for %s/%s.", len(issues), g.owner, repo)
	return issues, nil
}

// searchIssueNumbers pages through an issue search filtered by one date
// field ("created" or "updated").
func (g *GitHubGateway) searchIssueNumbers(ctx context.Context, repo, field string, since, until time.Time) ([]int, error) {
	query := fmt.Sprintf("repo:%s/%s type:issue %s:%s..%s",
		g.owner, repo, field, dates.GitHubTime(since), dates.GitHubTime(until))
	opts := &github.SearchOptions{ListOptions: github.ListOptions{PerPage: 100}}

	var numbers []int
	page := 1
	for {
		result, resp, err := g.restClient.Search.Issues(ctx, query, opts)
		if err != nil {
			return nil, fmt.Errorf("failed to search issues by %s: %w", field, err)
		}
		g.archive.Save(fmt.Sprintf("search_issues_%s_%d.json", field, page), result)
		for _, issue := range result.Issues {
			numbers = append(numbers, issue.GetNumber())
		}
		if resp.NextPage == 0 {
			break
		}
		opts.Page = resp.NextPage
		page = resp.NextPage
		g.logger.Println("  Fetching next page of issue search results...")
	}
	return numbers, nil
}

func (g *GitHubGateway) fetchIssue(ctx context.Context, repo string, number int) (domain.Issue, error) {
	issue, _, err := g.restClient.Issues.Get(ctx, g.owner, repo, number)
	if err != nil {
		return domain.Issue{}, fmt.Errorf("failed to fetch issue #%d: %w", number, err)
	}
	g.archive.Save(fmt.Sprintf("issue_%d.json", number), issue)
	return convertIssue(repo, issue), nil
}

// trackedIssuesQuery asks for the issues tracked by an epic. Only the
// numbers are taken from GraphQL; details come from the REST issue endpoint
// so sub-issues carry the same fields as top-level ones.
type trackedIssuesQuery struct {
	Repository struct {
		Issue struct {
			TrackedIssues struct {
				Nodes []struct {
					Number githubv4.Int
					Title  githubv4.String
					State  githubv4.String
				}
			} `graphql:"trackedIssues(first: 100)"`
		} `graphql:"issue(number: $number)"`
	} `graphql:"repository(owner: $owner, name: $name)"`
}

func (g *GitHubGateway) FetchSubIssues(ctx context.Context, repo string, number int) ([]domain.Issue, error) {
	variables := map[string]interface{}{
		"owner":  githubv4.String(g.owner),
		"name":   githubv4.String(repo),
		"number": githubv4.Int(number),
	}

	var q trackedIssuesQuery
	if err := g.graphqlClient.Query(ctx, &q, variables); err != nil {
		return nil, fmt.Errorf("failed to execute GraphQL query for tracked issues of #%d: %w", number, err)
	}
	g.archive.Save(fmt.Sprintf("sub_issues_%d.json", number), q)

	nodes := q.Repository.Issue.TrackedIssues.Nodes
	subIssues := make([]domain.Issue, 0, len(nodes))
	for _, node := range nodes {
		if node.Number == 0 {
			continue
		}
		issue, err := g.fetchIssue(ctx, repo, int(node.Number))
		if err != nil {
			return nil, err
		}
		subIssues = append(subIssues, issue)
	}
	return subIssues, nil
}

func (g *GitHubGateway) FetchTimelinePRs(ctx context.Context, repo string, number int) ([]int, error) {
	opts := &github.ListOptions{PerPage: 100}
	var events []*github.Timeline
	for {
		page, resp, err := g.restClient.Issues.ListIssueTimeline(ctx, g.owner, repo, number, opts)
		if err != nil {
			return nil, fmt.Errorf("failed to fetch timeline of issue #%d: %w", number, err)
		}
		events = append(events, page...)
		if resp.NextPage == 0 {
			break
		}
		opts.Page = resp.NextPage
	}
	g.archive.Save(fmt.Sprintf("issue_%d_timeline.json", number), events)

	var prs []int
	for _, e := range events {
		if e.GetEvent() != "cross-referenced" || e.Source == nil || e.Source.Issue == nil {
			continue
		}
		if e.Source.Issue.IsPullRequest() {
			prs = append(prs, e.Source.Issue.GetNumber())
		}
	}
	return prs, nil
}

func (g *GitHubGateway) FetchMentioningPRs(ctx context.Context, repo string, number int) ([]int, error) {
	query := fmt.Sprintf("repo:%s/%s type:pr #%d", g.owner, repo, number)
	opts := &github.SearchOptions{ListOptions: github.ListOptions{PerPage: 100}}

	var prs []int
	page := 1
	for {
		result, resp, err := g.restClient.Search.Issues(ctx, query, opts)
		if err != nil {
			return nil, fmt.Errorf("failed to search PRs mentioning #%d: %w", number, err)
		}
		g.archive.Save(fmt.Sprintf("issue_%d_prs_search_page_%d.json", number, page), result)
		for _, item := range result.Issues {
			prs = append(prs, item.GetNumber())
		}
		if resp.NextPage == 0 {
			break
		}
		opts.Page = resp.NextPage
		page = resp.NextPage
	}
	return prs, nil
}

func (g *GitHubGateway) FetchPRCommits(ctx context.Context, repo string, number int) ([]domain.Commit, error) {
	opts := &github.ListOptions{PerPage: 100}
	var raw []*github.RepositoryCommit
	for {
		page, resp, err := g.restClient.PullRequests.ListCommits(ctx, g.owner, repo, number, opts)
		if err != nil {
			return nil, fmt.Errorf("failed to fetch commits of PR #%d: %w", number, err)
		}
		raw = append(raw, page...)
		if resp.NextPage == 0 {
			break
		}
		opts.Page = resp.NextPage
	}
	g.archive.Save(fmt.Sprintf("pr_%d_commits.json", number), raw)

	commits := make([]domain.Commit, 0, len(raw))
	for _, rc := range raw {
		commits = append(commits, convertCommit(rc))
	}
	return commits, nil
}

func (g *GitHubGateway) FetchRepoCommits(ctx context.Context, repo string, since, until time.Time) ([]domain.Commit, error) {
	g.logger.Printf("Fetching repository commits for %s/%s...", g.owner, repo)
	opts := &github.CommitsListOptions{
		Since:       since,
		Until:       until,
		ListOptions: github.ListOptions{PerPage: 100},
	}

	var commits []domain.Commit
	page := 1
	for {
		raw, resp, err := g.restClient.Repositories.ListCommits(ctx, g.owner, repo, opts)
		if err != nil {
			return nil, fmt.Errorf("failed to fetch commits of %s: %w", repo, err)
		}
		g.archive.Save(fmt.Sprintf("repo_commits_page_%d.json", page), raw)
		for _, rc := range raw {
			commits = append(commits, convertCommit(rc))
		}
		if resp.NextPage == 0 {
			break
		}
		opts.Page = resp.NextPage
		page = resp.NextPage
		g.logger.Println("  Fetching next page of commits...")
	}
	g.logger.Printf("Found %d commits in range for %s/%s.", len(commits), g.owner, repo)
	return commits, nil
}

func convertIssue(repo string, issue *github.Issue) domain.Issue {
	return domain.Issue{
		Number:    issue.GetNumber(),
		Title:     issue.GetTitle(),
		State:     issue.GetState(),
		Author:    issue.GetUser().GetLogin(),
		Repo:      repo,
		HTMLURL:   issue.GetHTMLURL(),
		CreatedAt: issue.GetCreatedAt().Time,
		UpdatedAt: issue.GetUpdatedAt().Time,
	}
}

func convertCommit(rc *github.RepositoryCommit) domain.Commit {
	msg := rc.GetCommit().GetMessage()
	if len(msg) > maxMessageLen {
		msg = msg[:maxMessageLen]
	}
	return domain.Commit{
		SHA:        rc.GetSHA(),
		Message:    msg,
		Author:     rc.GetCommit().GetAuthor().GetName(),
		AuthoredAt: rc.GetCommit().GetAuthor().GetDate().Time,
		HTMLURL:    rc.GetHTMLURL(),
	}
}
