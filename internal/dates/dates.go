// Package dates parses user-supplied range boundaries and formats them the
// way GitHub search qualifiers and the commits endpoint expect.
package dates

import (
	"fmt"
	"strings"
	"sync"
	"time"
)

// All report dates are anchored to São Paulo, matching the timezone the
// reports are read in. The fixed-offset fallback covers hosts without a
// tz database; the zone has had no DST since 2019.
var (
	locOnce sync.Once
	loc     *time.Location
)

// Location returns the America/Sao_Paulo location.
func Location() *time.Location {
	locOnce.Do(func() {
		var err error
		loc, err = time.LoadLocation("America/Sao_Paulo")
		if err != nil {
			loc = time.FixedZone("-03", -3*60*60)
		}
	})
	return loc
}

// ParseInput parses a range boundary in one of three forms:
//
//   - "YYYY-MM-DD"
//   - "YYYY-MM-DDTHH:MM:SS" (naive, assumed São Paulo)
//   - full ISO/RFC3339 with Z or a numeric offset
//
// A date-only value expands to the start of the day when startOfDay is
// true, and to 23:59:59 otherwise. The result is always localized to
// São Paulo.
func ParseInput(s string, startOfDay bool) (time.Time, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, fmt.Errorf("date string is required")
	}

	tz := Location()

	if len(s) == 10 && strings.Count(s, "-") == 2 {
		d, err := time.ParseInLocation("2006-01-02", s, tz)
		if err != nil {
			return time.Time{}, fmt.Errorf("unable to parse date %q: %w", s, err)
		}
		if startOfDay {
			return d, nil
		}
		return d.Add(24*time.Hour - time.Second), nil
	}

	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t.In(tz), nil
	}

	t, err := time.ParseInLocation("2006-01-02T15:04:05", s, tz)
	if err != nil {
		return time.Time{}, fmt.Errorf("unable to parse date %q: %w", s, err)
	}
	return t, nil
}

// GitHubTime formats t as an RFC3339 string with seconds precision in the
// São Paulo offset, the form GitHub range qualifiers accept.
func GitHubTime(t time.Time) string {
	return t.In(Location()).Format("2006-01-02T15:04:05-07:00")
}

// Day formats t as YYYY-MM-DD in São Paulo, used in report paths and
// front matter.
func Day(t time.Time) string {
	return t.In(Location()).Format("2006-01-02")
}
