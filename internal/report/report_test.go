package report

import (
	"io"
	"log"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/devwork/gh-activity/internal/domain"
)

func testGenerator(t *testing.T) *Generator {
	t.Helper()
	return &Generator{
		Owner:   "acme",
		Repos:   map[string][]string{"acme": {"repo-a"}},
		Authors: domain.AuthorMap{"Alice Silva": {"alice-gh", "Alice S."}},
		Formats: []string{"pdf", "docx"},
		OutDir:  t.TempDir(),
		Logger:  log.New(io.Discard, "", 0),
	}
}

func TestGeneratorGenerate(t *testing.T) {
	g := testGenerator(t)
	since := time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC)
	until := time.Date(2025, 3, 31, 12, 0, 0, 0, time.UTC)

	issue := domain.Issue{
		Number:    1,
		Title:     "Add report pipeline",
		State:     "closed",
		Author:    "alice-gh",
		Repo:      "repo-a",
		HTMLURL:   "https://github.com/acme/repo-a/issues/1",
		CreatedAt: time.Date(2025, 3, 2, 10, 0, 0, 0, time.UTC),
		UpdatedAt: time.Date(2025, 3, 20, 10, 0, 0, 0, time.UTC),
	}
	aliceCommit := domain.Commit{
		SHA:        "aaa1111222333",
		Message:    "feat: wire pipeline #1\n\nlong body",
		Author:     "Alice S.",
		AuthoredAt: time.Date(2025, 3, 3, 9, 0, 0, 0, time.UTC),
		HTMLURL:    "https://github.com/acme/repo-a/commit/aaa1111222333",
	}
	grouped := map[string]*domain.AuthorActivity{
		"Alice Silva": {
			Issues: []domain.IssueActivity{{
				Issue:     issue,
				PRNumbers: []int{10},
				// The same commit arrives via the PR and via the mention
				// filter; the report must list it once.
				Commits: []domain.Commit{aliceCommit, aliceCommit, {SHA: "zzz", Author: "Bob"}},
			}},
			Commits: []domain.Commit{aliceCommit},
		},
	}

	paths, err := g.Generate(since, until, grouped)
	require.NoError(t, err)
	require.Len(t, paths, 1)

	path := paths["Alice Silva"]
	assert.Equal(t, filepath.Join(g.OutDir, "2025-02-28_2025-03-31", "Alice_Silva", "Alice_Silva_2025-02-28_2025-03-31.qmd"), path)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	content := string(data)

	assert.Contains(t, content, `title: "Relatório de acme"`)
	assert.Contains(t, content, `author: "Alice Silva"`)
	assert.Contains(t, content, "   pdf: default\n   docx: default\n")
	assert.Contains(t, content, "**Período:** 2025-02-28 → 2025-03-31")
	assert.Contains(t, content, "[repo-a](https://github.com/acme/repo-a)")
	assert.Contains(t, content, "- Issues do autor: 1")
	assert.Contains(t, content, "- Commits do autor: 1")
	assert.Contains(t, content, "- Média de commits por issue: 1.0 (mediana: 1.0)")
	assert.Contains(t, content, "## Issue #1: [Add report pipeline](https://github.com/acme/repo-a/issues/1)")
	assert.Contains(t, content, "- [PR #10](https://github.com/acme/repo-a/pull/10)")
	assert.Contains(t, content, "## Commits no intervalo (não necessariamente vinculados a issues)")

	// Deduped, first line only, short SHA; Bob's commit stays out of
	// Alice's issue section.
	assert.Equal(t, 2, strings.Count(content, "`aaa1111` feat: wire pipeline #1"))
	assert.NotContains(t, content, "zzz")
}

func TestGeneratorGenerate_UnmappedAuthorAndEmptyIssueList(t *testing.T) {
	g := testGenerator(t)
	g.Formats = nil
	since := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	until := time.Date(2025, 3, 31, 12, 0, 0, 0, time.UTC)

	grouped := map[string]*domain.AuthorActivity{
		"stranger": {
			Commits: []domain.Commit{{SHA: "fff", Message: "drive-by fix", Author: "stranger"}},
		},
	}

	paths, err := g.Generate(since, until, grouped)
	require.NoError(t, err)

	data, err := os.ReadFile(paths["stranger"])
	require.NoError(t, err)
	content := string(data)

	assert.Contains(t, content, "- Issues do autor: 0")
	assert.Contains(t, content, "- Commits do autor: 1")
	// No issues means no commits-per-issue summary and no format entries.
	assert.NotContains(t, content, "Média de commits por issue")
	assert.Contains(t, content, "format:\n---")
	// A commit without a date renders the unknown placeholder.
	assert.Contains(t, content, "`fff` drive-by fix (unknown)")
}
