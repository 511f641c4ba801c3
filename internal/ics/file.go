package ics

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"
)

var unsafeChars = regexp.MustCompile(`[^A-Za-z0-9_-]+`)

// Filename derives the output file name for the event titled title at the
// 1-based row index.
func Filename(title string, index int) string {
	safe := strings.Trim(unsafeChars.ReplaceAllString(title, "_"), "_")
	if safe == "" {
		safe = "event"
	}
	return fmt.Sprintf("%s_%d.ics", safe, index)
}

// WriteFile writes data to dir/name, replacing any existing file. dir must
// already exist; the converter creates it once per run.
func WriteFile(dir, name string, data []byte) (string, error) {
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", fmt.Errorf("failed to write %s: %w", path, err)
	}
	return path, nil
}
