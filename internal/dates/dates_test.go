package dates

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseInput(t *testing.T) {
	tz := Location()

	testCases := []struct {
		name       string
		input      string
		startOfDay bool
		expected   time.Time
		expectErr  bool
	}{
		{
			name:       "date only - start of day",
			input:      "2025-03-10",
			startOfDay: true,
			expected:   time.Date(2025, 3, 10, 0, 0, 0, 0, tz),
		},
		{
			name:       "date only - end of day",
			input:      "2025-03-10",
			startOfDay: false,
			expected:   time.Date(2025, 3, 10, 23, 59, 59, 0, tz),
		},
		{
			name:       "UTC instant is converted to São Paulo",
			input:      "2025-03-10T12:00:00Z",
			startOfDay: true,
			expected:   time.Date(2025, 3, 10, 9, 0, 0, 0, tz),
		},
		{
			name:       "explicit offset is converted",
			input:      "2025-03-10T12:00:00+02:00",
			startOfDay: false,
			expected:   time.Date(2025, 3, 10, 7, 0, 0, 0, tz),
		},
		{
			name:       "naive datetime is assumed São Paulo",
			input:      "2025-03-10T08:30:00",
			startOfDay: true,
			expected:   time.Date(2025, 3, 10, 8, 30, 0, 0, tz),
		},
		{
			name:       "surrounding whitespace is trimmed",
			input:      "  2025-03-10 ",
			startOfDay: true,
			expected:   time.Date(2025, 3, 10, 0, 0, 0, 0, tz),
		},
		{
			name:      "empty input",
			input:     "   ",
			expectErr: true,
		},
		{
			name:      "garbage input",
			input:     "10/03/2025",
			expectErr: true,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := ParseInput(tc.input, tc.startOfDay)
			if tc.expectErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.True(t, tc.expected.Equal(got), "expected %s, got %s", tc.expected, got)
		})
	}
}

func TestGitHubTime(t *testing.T) {
	in := time.Date(2025, 3, 10, 12, 0, 0, 0, time.UTC)
	assert.Equal(t, "2025-03-10T09:00:00-03:00", GitHubTime(in))
}

func TestDay(t *testing.T) {
	// 01:00 UTC is still the previous day in São Paulo.
	in := time.Date(2025, 3, 11, 1, 0, 0, 0, time.UTC)
	assert.Equal(t, "2025-03-10", Day(in))
}
