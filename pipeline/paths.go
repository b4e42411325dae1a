package pipeline

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
)

// ErrNoInputs is returned when no configured path resolves to a table.
var ErrNoInputs = errors.New("no input tables")

// tableGlob matches event tables inside a plain input directory.
const tableGlob = "*.{csv,tsv}"

// IsTable reports whether path has an event table extension.
func IsTable(path string) bool {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".csv", ".tsv":
		return true
	}
	return false
}

// containsGlob reports whether pattern contains doublestar metacharacters.
func containsGlob(pattern string) bool {
	return strings.ContainsAny(pattern, "*?[{")
}

// ResolveInputs expands input patterns into table paths.
//
// Glob patterns (e.g. "data/**/*.tsv") are expanded to the .csv and .tsv
// tables they match, so a broad glob never picks up the JSONL outputs written
// next to the inputs. A plain directory expands to the .csv and .tsv tables directly inside it.
// Any other plain path is returned as-is so that a missing file is reported
// when it is read. The result is sorted and free of duplicates.
func ResolveInputs(patterns []string) ([]string, error) {
	var paths []string
	for _, pattern := range patterns {
		if pattern == "" {
			continue
		}

		if !containsGlob(pattern) {
			info, err := os.Stat(pattern)
			if err != nil || !info.IsDir() {
				paths = append(paths, filepath.Clean(pattern))
				continue
			}
			pattern = filepath.Join(pattern, tableGlob)
		}

		matches, err := doublestar.FilepathGlob(pattern, doublestar.WithFilesOnly())
		if err != nil {
			return nil, fmt.Errorf("expand input pattern %q: %w", pattern, err)
		}
		for _, m := range matches {
			if IsTable(m) {
				paths = append(paths, m)
			}
		}
	}

	slices.Sort(paths)
	return slices.Compact(paths), nil
}

// WatchRoots returns the directories to watch for the input patterns: the
// static prefix of each glob, the directory itself for a plain directory and
// the parent directory of a plain file.
func WatchRoots(patterns []string) []string {
	var roots []string
	for _, pattern := range patterns {
		if pattern == "" {
			continue
		}

		var root string
		switch {
		case containsGlob(pattern):
			base, _ := doublestar.SplitPattern(filepath.ToSlash(pattern))
			root = filepath.FromSlash(base)
		case isDir(pattern):
			root = pattern
		default:
			root = filepath.Dir(pattern)
		}
		roots = append(roots, filepath.Clean(root))
	}

	slices.Sort(roots)
	return slices.Compact(roots)
}

// MatchInput reports whether path is selected by one of the input patterns.
// Globs and directories only select tables; a plain file pattern selects
// that file whatever its extension.
func MatchInput(path string, patterns []string) bool {
	path = filepath.Clean(path)
	for _, pattern := range patterns {
		if pattern == "" {
			continue
		}

		if containsGlob(pattern) {
			if !IsTable(path) {
				continue
			}
			if ok, err := doublestar.PathMatch(filepath.Clean(pattern), path); err == nil && ok {
				return true
			}
			continue
		}

		clean := filepath.Clean(pattern)
		if path == clean {
			return true
		}
		if isDir(clean) && filepath.Dir(path) == clean && IsTable(path) {
			return true
		}
	}
	return false
}

func isDir(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.IsDir()
}
