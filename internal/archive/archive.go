// Package archive persists raw API payloads as JSON files for debugging
// and offline inspection.
package archive

import (
	"encoding/json"
	"log"
	"os"
	"path/filepath"
)

// Archive writes indented JSON dumps under a single directory. A disabled
// archive is a no-op, so callers never need to branch on the toggle.
type Archive struct {
	dir     string
	enabled bool
	logger  *log.Logger
}

// New creates an Archive rooted at dir. When enabled is false every Save
// call is a no-op.
func New(dir string, enabled bool, logger *log.Logger) *Archive {
	return &Archive{dir: dir, enabled: enabled, logger: logger}
}

// Save writes v as indented JSON to <dir>/<name>. Failures are logged and
// swallowed: losing a debug artifact must not abort a long fetch run.
func (a *Archive) Save(name string, v any) {
	if a == nil || !a.enabled {
		return
	}
	data, err := json.MarshalIndent(v, "", "   ")
	if err != nil {
		a.logger.Printf("archive: marshal %s: %v", name, err)
		return
	}
	path := filepath.Join(a.dir, name)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		a.logger.Printf("archive: mkdir for %s: %v", name, err)
		return
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		a.logger.Printf("archive: write %s: %v", name, err)
		return
	}
	a.logger.Printf("archive: saved %s", path)
}
