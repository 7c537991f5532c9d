// Package usecase contains the business logic of the application.
package usecase

import (
	"context"
	"fmt"
	"log"
	"sort"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/devwork/gh-activity/internal/archive"
	"github.com/devwork/gh-activity/internal/domain"
	"github.com/devwork/gh-activity/internal/gateway"
)

// Aggregator is the use case for collecting per-issue activity.
// It orchestrates the issue → PR → commit traversal for every repository.
type Aggregator struct {
	fetcher gateway.Fetcher
	archive *archive.Archive
	logger  *log.Logger
}

// NewAggregator creates a new Aggregator instance.
func NewAggregator(fetcher gateway.Fetcher, arch *archive.Archive, logger *log.Logger) *Aggregator {
	return &Aggregator{
		fetcher: fetcher,
		archive: arch,
		logger:  logger,
	}
}

type repoResult struct {
	activities []domain.IssueActivity
	commits    []domain.Commit
}

// Aggregate collects the activity of every repository in the date range:
// the issues created or updated in range with their linked PRs and commits,
// plus the plain repository commit history. Repositories are fetched
// concurrently; results keep the input repo order.
func (a *Aggregator) Aggregate(ctx context.Context, repos []string, since, until time.Time) ([]domain.IssueActivity, []domain.Commit, error) {
	a.logger.Println("Usecase: Starting data aggregation...")

	results := make([]repoResult, len(repos))
	eg, egCtx := errgroup.WithContext(ctx)
	for i, repo := range repos {
		i, repo := i, repo
		eg.Go(func() error {
			res, err := a.collectRepo(egCtx, repo, since, until)
			if err != nil {
				return err
			}
			results[i] = res
			return nil
		})
	}
	if err := eg.Wait(); err != nil {
		return nil, nil, err
	}

	var activities []domain.IssueActivity
	var commits []domain.Commit
	for _, res := range results {
		activities = append(activities, res.activities...)
		commits = append(commits, res.commits...)
	}
	a.logger.Println("Usecase: Aggregation complete.")
	return activities, commits, nil
}

func (a *Aggregator) collectRepo(ctx context.Context, repo string, since, until time.Time) (repoResult, error) {
	issues, err := a.fetcher.FetchIssues(ctx, repo, since, until)
	if err != nil {
		return repoResult{}, err
	}

	// The full in-range commit list doubles as the haystack for the
	// per-issue mention filter, so it is fetched once per repository.
	repoCommits, err := a.fetcher.FetchRepoCommits(ctx, repo, since, until)
	if err != nil {
		return repoResult{}, err
	}

	activities := make([]domain.IssueActivity, 0, len(issues))
	for _, issue := range issues {
		activity, err := a.gatherIssue(ctx, repo, issue, repoCommits)
		if err != nil {
			return repoResult{}, err
		}
		activities = append(activities, activity)
	}
	return repoResult{activities: activities, commits: repoCommits}, nil
}

// gatherIssue collects everything around one issue: its sub-issues, the
// PRs linked to it or to its sub-issues (timeline cross-references plus
// mention search, set-deduplicated), the commits of each linked PR, and the
// in-range repo commits whose message mentions the issue number.
func (a *Aggregator) gatherIssue(ctx context.Context, repo string, issue domain.Issue, repoCommits []domain.Commit) (domain.IssueActivity, error) {
	subIssues, err := a.fetcher.FetchSubIssues(ctx, repo, issue.Number)
	if err != nil {
		return domain.IssueActivity{}, err
	}

	activity := domain.IssueActivity{
		Issue:     issue,
		SubIssues: subIssues,
	}

	seen := make(map[int]struct{})
	numbers := []int{issue.Number}
	for _, si := range subIssues {
		if si.Number == 0 {
			continue
		}
		numbers = append(numbers, si.Number)
	}

	for _, num := range numbers {
		prs, err := a.linkedPRs(ctx, repo, num)
		if err != nil {
			return domain.IssueActivity{}, err
		}
		for _, prn := range prs {
			if _, ok := seen[prn]; ok {
				continue
			}
			seen[prn] = struct{}{}
			prCommits, err := a.fetcher.FetchPRCommits(ctx, repo, prn)
			if err != nil {
				return domain.IssueActivity{}, err
			}
			activity.Commits = append(activity.Commits, prCommits...)
		}

		mentioned := filterMentions(repoCommits, num)
		a.archive.Save(fmt.Sprintf("issue_%d_commits_filtered.json", num), mentioned)
		activity.Commits = append(activity.Commits, mentioned...)
	}

	activity.PRNumbers = make([]int, 0, len(seen))
	for prn := range seen {
		activity.PRNumbers = append(activity.PRNumbers, prn)
	}
	sort.Ints(activity.PRNumbers)
	return activity, nil
}

// linkedPRs unions the timeline cross-references with the mention search
// for one issue number.
func (a *Aggregator) linkedPRs(ctx context.Context, repo string, number int) ([]int, error) {
	timeline, err := a.fetcher.FetchTimelinePRs(ctx, repo, number)
	if err != nil {
		return nil, err
	}
	mentioning, err := a.fetcher.FetchMentioningPRs(ctx, repo, number)
	if err != nil {
		return nil, err
	}
	return append(timeline, mentioning...), nil
}

// filterMentions returns the commits whose message contains "#<number>".
func filterMentions(commits []domain.Commit, number int) []domain.Commit {
	ref := fmt.Sprintf("#%d", number)
	var matched []domain.Commit
	for _, c := range commits {
		if strings.Contains(c.Message, ref) {
			matched = append(matched, c)
		}
	}
	return matched
}

// GroupByAuthor attributes activity to canonical authors. An issue goes to
// its resolved author together with the linked commits that resolve to the
// same person; every repository commit goes to its own resolved author.
// When mapOnly is set, authors absent from the map are dropped.
func GroupByAuthor(activities []domain.IssueActivity, repoCommits []domain.Commit, authors domain.AuthorMap, mapOnly bool) map[string]*domain.AuthorActivity {
	grouped := make(map[string]*domain.AuthorActivity)
	ensure := func(name string) *domain.AuthorActivity {
		if _, ok := grouped[name]; !ok {
			grouped[name] = &domain.AuthorActivity{}
		}
		return grouped[name]
	}

	for _, activity := range activities {
		author := authors.IssueAuthor(activity.Issue)
		entry := ensure(author)
		entry.Issues = append(entry.Issues, activity)
		for _, c := range activity.Commits {
			if authors.CommitAuthor(c) == author {
				entry.Commits = append(entry.Commits, c)
			}
		}
	}

	for _, c := range repoCommits {
		entry := ensure(authors.CommitAuthor(c))
		entry.Commits = append(entry.Commits, c)
	}

	if mapOnly {
		for name := range grouped {
			if !authors.Contains(name) {
				delete(grouped, name)
			}
		}
	}
	return grouped
}
