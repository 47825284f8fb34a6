// Package locate finds a tool executable inside an unpredictable directory
// layout. Archives and package managers disagree about where the binary lands,
// so lookup proceeds from the cheapest layout to a bounded recursive descent.
package locate

import (
	"io/fs"
	"os"
	"path/filepath"
	"strings"
)

// conventionalSubdirs are the directories archives commonly extract into.
var conventionalSubdirs = []string{"bin", "cli", "beacon", "beacon-cli"}

const (
	// maxWalkDepth bounds the recursive descent below root.
	maxWalkDepth = 8
	// maxWalkEntries bounds the total entries scanned during a descent.
	maxWalkEntries = 4096
)

// Find locates name under root, trying in order: the exact file directly under
// root, the conventional subdirectories, then a bounded recursive walk. It
// returns "" when no candidate exists; absence is not an error, the caller
// decides whether it is fatal.
func Find(root string, name string) string {
	if isRegularFile(filepath.Join(root, name)) {
		return filepath.Join(root, name)
	}
	for _, sub := range conventionalSubdirs {
		candidate := filepath.Join(root, sub, name)
		if isRegularFile(candidate) {
			return candidate
		}
	}
	return walkFor(root, func(entryName string) bool {
		return entryName == name
	})
}

// FindFuzzy locates the first regular file under root whose name contains
// short. The direct-download strategy uses it for archives that extract to a
// version-and-platform-qualified filename instead of the canonical one.
func FindFuzzy(root string, short string) string {
	if short == "" {
		return ""
	}
	return walkFor(root, func(entryName string) bool {
		return strings.Contains(entryName, short)
	})
}

// walkFor descends root breadth-limited by depth and entry count, returning
// the first regular file whose base name satisfies match. Symlinks are not
// followed, so link cycles cannot loop the walk.
func walkFor(root string, match func(name string) bool) string {
	found := ""
	scanned := 0
	_ = filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return nil
		}
		scanned++
		if scanned > maxWalkEntries {
			return fs.SkipAll
		}
		if d.IsDir() {
			if walkDepth(root, path) > maxWalkDepth {
				return fs.SkipDir
			}
			return nil
		}
		if !d.Type().IsRegular() {
			return nil
		}
		if match(d.Name()) {
			found = path
			return fs.SkipAll
		}
		return nil
	})
	return found
}

// walkDepth returns how many levels path sits below root.
func walkDepth(root string, path string) int {
	rel, err := filepath.Rel(root, path)
	if err != nil || rel == "." {
		return 0
	}
	return len(strings.Split(rel, string(filepath.Separator)))
}

// isRegularFile reports whether path exists and is a regular file.
func isRegularFile(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.Mode().IsRegular()
}
