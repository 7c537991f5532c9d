package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDedupeCommits(t *testing.T) {
	testCases := []struct {
		name     string
		input    []Commit
		expected []Commit
	}{
		{
			name: "duplicate SHAs keep the first occurrence",
			input: []Commit{
				{SHA: "aaa", Message: "first"},
				{SHA: "bbb", Message: "other"},
				{SHA: "aaa", Message: "second copy"},
			},
			expected: []Commit{
				{SHA: "aaa", Message: "first"},
				{SHA: "bbb", Message: "other"},
			},
		},
		{
			name: "commits without SHA are keyed by their contents",
			input: []Commit{
				{Message: "no sha", Author: "a"},
				{Message: "no sha", Author: "a"},
				{Message: "no sha", Author: "b"},
			},
			expected: []Commit{
				{Message: "no sha", Author: "a"},
				{Message: "no sha", Author: "b"},
			},
		},
		{
			name:     "empty input yields empty output",
			input:    nil,
			expected: []Commit{},
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.expected, DedupeCommits(tc.input))
		})
	}
}

func TestCommitShortSHA(t *testing.T) {
	assert.Equal(t, "1234567", Commit{SHA: "1234567890abcdef"}.ShortSHA())
	assert.Equal(t, "12345", Commit{SHA: "12345"}.ShortSHA())
	assert.Equal(t, "", Commit{}.ShortSHA())
}
