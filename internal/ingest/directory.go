// Package ingest discovers notice documents, either by a one-shot directory
// scan or by watching directories for new arrivals.
package ingest

import (
	"io/fs"
	"path/filepath"
	"sort"
	"strings"

	"github.com/kra-data-tools/notice-tracker/constants"
)

// ScanDirectory walks root recursively and returns the supported document
// paths in sorted order. Hidden files and directories (dot-prefixed) are
// skipped, as are editor lock files.
func ScanDirectory(root string) ([]string, error) {
	var paths []string
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, walkErr error) error {
		if walkErr != nil {
			return walkErr
		}
		name := d.Name()
		if d.IsDir() {
			if path != root && strings.HasPrefix(name, ".") {
				return filepath.SkipDir
			}
			return nil
		}
		if strings.HasPrefix(name, ".") || strings.HasPrefix(name, "~$") {
			return nil
		}
		if allowed(path) {
			paths = append(paths, path)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	sort.Strings(paths)
	return paths, nil
}

func allowed(path string) bool {
	ext := constants.NormalizeExt(filepath.Ext(path))
	_, ok := constants.AllowedExtensions[ext]
	return ok
}
