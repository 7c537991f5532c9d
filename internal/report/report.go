// Package report renders per-author activity into Quarto markdown files.
package report

import (
	"fmt"
	"log"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/montanaflynn/stats"

	"github.com/devwork/gh-activity/internal/dates"
	"github.com/devwork/gh-activity/internal/domain"
)

// Generator writes one .qmd file per canonical author.
type Generator struct {
	Owner   string
	Repos   map[string][]string
	Authors domain.AuthorMap
	Formats []string
	OutDir  string
	Logger  *log.Logger
}

var (
	safeNameReplacer = strings.NewReplacer("/", "_", " ", "_")
	fileReplacer     = strings.NewReplacer(":", "-")
)

// Generate writes a Quarto markdown report for every author in grouped and
// returns the author → file path mapping. Authors are processed in sorted
// order so runs are deterministic.
func (g *Generator) Generate(since, until time.Time, grouped map[string]*domain.AuthorActivity) (map[string]string, error) {
	startDay := dates.Day(since)
	endDay := dates.Day(until)

	names := make([]string, 0, len(grouped))
	for name := range grouped {
		names = append(names, name)
	}
	sort.Strings(names)

	paths := make(map[string]string, len(names))
	for _, author := range names {
		content := g.build(author, startDay, endDay, grouped[author])

		safe := safeNameReplacer.Replace(author)
		dir := filepath.Join(g.OutDir, fmt.Sprintf("%s_%s", startDay, endDay), safe)
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create report dir for %s: %w", author, err)
		}
		filename := fileReplacer.Replace(fmt.Sprintf("%s_%s_%s.qmd", safe, startDay, endDay))
		path := filepath.Join(dir, filename)
		if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
			return nil, fmt.Errorf("write report for %s: %w", author, err)
		}
		g.Logger.Printf("Generated Quarto report for %s → %s", author, path)
		paths[author] = path
	}
	return paths, nil
}

func (g *Generator) build(author, startDay, endDay string, activity *domain.AuthorActivity) string {
	var b strings.Builder

	b.WriteString("---\n")
	fmt.Fprintf(&b, "title: %q\n", "Relatório de "+g.Owner)
	fmt.Fprintf(&b, "author: %q\n", author)
	fmt.Fprintf(&b, "date: %s\n", endDay)
	fmt.Fprintf(&b, "period: %q\n", startDay+" → "+endDay)
	b.WriteString("format:\n")
	for _, format := range g.Formats {
		fmt.Fprintf(&b, "   %s: default\n", format)
	}
	b.WriteString("---\n\n")

	fmt.Fprintf(&b, "**Período:** %s → %s\n\n", startDay, endDay)
	fmt.Fprintf(&b, "**Repositórios:** %s\n\n", g.repoLinks())

	fmt.Fprintf(&b, "- Issues do autor: %d\n", len(activity.Issues))
	fmt.Fprintf(&b, "- Commits do autor: %d\n", len(activity.Commits))
	g.writeSummary(&b, author, activity)
	b.WriteString("\n")

	for _, info := range activity.Issues {
		g.writeIssue(&b, author, info)
	}

	if len(activity.Commits) > 0 {
		b.WriteString("## Commits no intervalo (não necessariamente vinculados a issues)\n")
		for _, c := range domain.DedupeCommits(activity.Commits) {
			writeCommitLine(&b, c)
		}
		b.WriteString("\n")
	}

	return b.String()
}

// writeSummary adds mean/median commits-per-issue lines when the author has
// issues with attributable commits.
func (g *Generator) writeSummary(b *strings.Builder, author string, activity *domain.AuthorActivity) {
	if len(activity.Issues) == 0 {
		return
	}
	counts := make([]float64, 0, len(activity.Issues))
	for _, info := range activity.Issues {
		counts = append(counts, float64(len(authorCommits(author, info, g.Authors))))
	}
	mean, err := stats.Mean(counts)
	if err != nil {
		return
	}
	median, _ := stats.Median(counts)
	fmt.Fprintf(b, "- Média de commits por issue: %.1f (mediana: %.1f)\n", mean, median)
}

func (g *Generator) writeIssue(b *strings.Builder, author string, info domain.IssueActivity) {
	issue := info.Issue
	title := issue.Title
	if title == "" {
		title = "(no title)"
	}
	fmt.Fprintf(b, "## Issue #%d: [%s](%s)\n", issue.Number, title, issue.HTMLURL)
	fmt.Fprintf(b, "- Estado: %s\n", issue.State)
	fmt.Fprintf(b, "- Criado: %s\n", issue.CreatedAt.Format(time.RFC3339))
	fmt.Fprintf(b, "- Atualizado: %s\n", issue.UpdatedAt.Format(time.RFC3339))
	fmt.Fprintf(b, "- URL: [%s](%s)\n\n", issue.HTMLURL, issue.HTMLURL)

	if len(info.PRNumbers) > 0 {
		b.WriteString("### PRs Relacionados\n")
		for _, prn := range info.PRNumbers {
			fmt.Fprintf(b, "- [PR #%d](https://github.com/%s/%s/pull/%d)\n", prn, g.Owner, issue.Repo, prn)
		}
		b.WriteString("\n")
	}

	commits := authorCommits(author, info, g.Authors)
	if len(commits) > 0 {
		b.WriteString("### Commits relacionados a esta issue\n")
		for _, c := range commits {
			writeCommitLine(b, c)
		}
		b.WriteString("\n")
	}
}

func writeCommitLine(b *strings.Builder, c domain.Commit) {
	msg := c.Message
	if i := strings.IndexByte(msg, '\n'); i >= 0 {
		msg = msg[:i]
	}
	date := "unknown"
	if !c.AuthoredAt.IsZero() {
		date = c.AuthoredAt.Format(time.RFC3339)
	}
	fmt.Fprintf(b, "- `%s` %s (%s) [%s](%s)\n", c.ShortSHA(), msg, date, c.HTMLURL, c.HTMLURL)
}

// repoLinks builds the markdown link list of all configured repositories,
// orgs and repos alphabetical.
func (g *Generator) repoLinks() string {
	orgs := make([]string, 0, len(g.Repos))
	for org := range g.Repos {
		orgs = append(orgs, org)
	}
	sort.Strings(orgs)

	var links []string
	for _, org := range orgs {
		for _, repo := range g.Repos[org] {
			links = append(links, fmt.Sprintf("[%s](https://github.com/%s/%s)", repo, g.Owner, repo))
		}
	}
	return strings.Join(links, ", ")
}

// authorCommits returns the SHA-deduped commits of an issue that belong to
// the report's author.
func authorCommits(author string, info domain.IssueActivity, authors domain.AuthorMap) []domain.Commit {
	var commits []domain.Commit
	for _, c := range domain.DedupeCommits(info.Commits) {
		if authors.CommitAuthor(c) == author {
			commits = append(commits, c)
		}
	}
	return commits
}
