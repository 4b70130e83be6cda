// Package scan lists experiment directories and filters them by name.
package scan

import (
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"
)

// Hidden and private directory name prefixes skipped by ListDirs.
const (
	privatePrefix = "__"
	hiddenPrefix  = "."
)

// ListDirs returns the sorted names of the subdirectories of root.
// Files and names starting with "__" or "." are skipped.
func ListDirs(root string) ([]string, error) {
	entries, err := os.ReadDir(root)
	if err != nil {
		return nil, fmt.Errorf("list directories: %w", err)
	}

	dirs := make([]string, 0, len(entries))

	for _, e := range entries {
		name := e.Name()
		if strings.HasPrefix(name, privatePrefix) || strings.HasPrefix(name, hiddenPrefix) {
			continue
		}

		if !isDir(root, e) {
			continue
		}

		dirs = append(dirs, name)
	}

	slices.Sort(dirs)

	return dirs, nil
}

// isDir follows symlinks so linked experiment folders are listed too.
func isDir(root string, e os.DirEntry) bool {
	if e.IsDir() {
		return true
	}

	if e.Type()&os.ModeSymlink == 0 {
		return false
	}

	info, err := os.Stat(filepath.Join(root, e.Name()))

	return err == nil && info.IsDir()
}

type matcher func(name, pattern string) bool

func keep(names, patterns []string, match matcher) []string {
	out := make([]string, 0, len(names))

	for _, n := range names {
		if anyMatch(n, patterns, match) {
			out = append(out, n)
		}
	}

	return out
}

func prune(names, patterns []string, match matcher) []string {
	out := make([]string, 0, len(names))

	for _, n := range names {
		if !anyMatch(n, patterns, match) {
			out = append(out, n)
		}
	}

	return out
}

func anyMatch(name string, patterns []string, match matcher) bool {
	for _, p := range patterns {
		if match(name, p) {
			return true
		}
	}

	return false
}

// KeepStart keeps names starting with any pattern.
func KeepStart(names, patterns []string) []string { return keep(names, patterns, strings.HasPrefix) }

// KeepEnd keeps names ending with any pattern.
func KeepEnd(names, patterns []string) []string { return keep(names, patterns, strings.HasSuffix) }

// KeepInside keeps names containing any pattern.
func KeepInside(names, patterns []string) []string { return keep(names, patterns, strings.Contains) }

// PruneStart drops names starting with any pattern.
func PruneStart(names, patterns []string) []string { return prune(names, patterns, strings.HasPrefix) }

// PruneEnd drops names ending with any pattern.
func PruneEnd(names, patterns []string) []string { return prune(names, patterns, strings.HasSuffix) }

// PruneInside drops names containing any pattern.
func PruneInside(names, patterns []string) []string { return prune(names, patterns, strings.Contains) }

// Clean keeps names starting with any of startsWith and, when contains is
// non-empty, also containing any of contains.
func Clean(names, startsWith, contains []string) []string {
	out := KeepStart(names, startsWith)
	if len(contains) > 0 {
		out = KeepInside(out, contains)
	}

	return out
}
