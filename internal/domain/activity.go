// Package domain contains the core data structures and domain logic for the
// application.
package domain

import (
	"fmt"
	"time"
)

// Issue is a GitHub issue (or sub-issue) as seen by the reports.
type Issue struct {
	Number    int       `json:"number"`
	Title     string    `json:"title"`
	State     string    `json:"state"`
	Author    string    `json:"author"` // GitHub login
	Repo      string    `json:"repo"`
	HTMLURL   string    `json:"html_url"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Commit is a single commit reachable from an issue, a linked PR, or the
// plain repository history.
type Commit struct {
	SHA        string    `json:"sha"`
	Message    string    `json:"msg"` // first line matters; truncated to 200 bytes at fetch time
	Author     string    `json:"author"` // git author name
	AuthoredAt time.Time `json:"date"`
	HTMLURL    string    `json:"url"`
}

// ShortSHA returns the 7-character abbreviation used in report lines.
func (c Commit) ShortSHA() string {
	if len(c.SHA) <= 7 {
		return c.SHA
	}
	return c.SHA[:7]
}

// IssueActivity is everything gathered around one issue: its sub-issues,
// the PRs linked to it or to its sub-issues, and the commits reached
// through those PRs or through commit-message mentions.
type IssueActivity struct {
	Issue     Issue   `json:"issue"`
	SubIssues []Issue `json:"sub_issues"`
	PRNumbers []int   `json:"pr_numbers"` // sorted, unique
	Commits   []Commit `json:"commits"`
}

// AuthorActivity groups the activity attributed to one canonical author.
type AuthorActivity struct {
	Issues  []IssueActivity
	Commits []Commit
}

// DedupeCommits removes duplicate commits by SHA, keeping the first
// occurrence. Commits without a SHA fall back to a whole-record key so two
// genuinely different SHA-less entries both survive.
func DedupeCommits(commits []Commit) []Commit {
	seen := make(map[string]struct{}, len(commits))
	deduped := make([]Commit, 0, len(commits))
	for _, c := range commits {
		key := c.SHA
		if key == "" {
			key = fmt.Sprintf("%s|%s|%s|%s", c.Message, c.Author, c.AuthoredAt.Format(time.RFC3339), c.HTMLURL)
		}
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		deduped = append(deduped, c)
	}
	return deduped
}
