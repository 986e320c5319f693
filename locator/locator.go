// Package locator finds ARTRollOut exports under a batch directory.
package locator

import (
	"errors"
	"fmt"
	"io/fs"
	"path/filepath"
	"sort"
	"strings"
)

// DefaultPattern matches "ARTRollOut.xls", "ARTRollout.xlsx" and run-suffixed
// variants. Matching is case-insensitive.
const DefaultPattern = "*artrollout*.xls*"

var (
	// ErrNoFiles is returned when nothing under root matches the pattern.
	ErrNoFiles = errors.New("locator: no matching files")
	// ErrBadPattern wraps an invalid glob.
	ErrBadPattern = errors.New("locator: bad pattern")
)

// Find walks root recursively and returns every regular file whose base name
// matches pattern, sorted by path. An empty pattern uses DefaultPattern.
func Find(root, pattern string) ([]string, error) {
	if pattern == "" {
		pattern = DefaultPattern
	}
	pattern = strings.ToLower(pattern)
	if _, err := filepath.Match(pattern, ""); err != nil {
		return nil, fmt.Errorf("%w: %q", ErrBadPattern, pattern)
	}

	var found []string
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.Type().IsRegular() {
			return nil
		}
		if ok, _ := filepath.Match(pattern, strings.ToLower(d.Name())); ok {
			found = append(found, path)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to walk %s: %w", root, err)
	}
	if len(found) == 0 {
		return nil, fmt.Errorf("%w: %q under %s", ErrNoFiles, pattern, root)
	}

	sort.Strings(found)
	return found, nil
}
