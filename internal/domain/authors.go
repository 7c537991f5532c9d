package domain

import "sort"

// UnknownAuthor is the bucket for items whose author cannot be determined.
const UnknownAuthor = "unknown"

// AuthorMap maps a canonical author name to the GitHub logins and git
// author names that belong to that person.
type AuthorMap map[string][]string

// Resolve maps an alias (login or git author name) to its canonical name.
// Unmapped aliases resolve to themselves; an empty alias resolves to
// UnknownAuthor. Canonical names are scanned in sorted order so that an
// alias listed under two names resolves deterministically.
func (m AuthorMap) Resolve(alias string) string {
	if alias == "" {
		return UnknownAuthor
	}
	for _, canonical := range m.CanonicalNames() {
		for _, a := range m[canonical] {
			if a == alias {
				return canonical
			}
		}
	}
	return alias
}

// Contains reports whether name is one of the canonical names.
func (m AuthorMap) Contains(name string) bool {
	_, ok := m[name]
	return ok
}

// CanonicalNames returns the canonical names in sorted order.
func (m AuthorMap) CanonicalNames() []string {
	names := make([]string, 0, len(m))
	for name := range m {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// IssueAuthor resolves the canonical author of an issue.
func (m AuthorMap) IssueAuthor(i Issue) string {
	return m.Resolve(i.Author)
}

// CommitAuthor resolves the canonical author of a commit.
func (m AuthorMap) CommitAuthor(c Commit) string {
	return m.Resolve(c.Author)
}
