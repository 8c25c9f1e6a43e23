package project

import (
	"fmt"
	"io/fs"
	"path/filepath"

	"github.com/bmatcuk/doublestar/v4"
)

// ScanOptions configures workspace file discovery, grounded on
// gnana997-uispec/pkg/indexer's ScanOptions (include/exclude glob lists
// checked with doublestar.PathMatch against root-relative, slash-
// normalized paths).
type ScanOptions struct {
	Include []string
	Exclude []string
}

func DefaultScanOptions() ScanOptions {
	return ScanOptions{
		Include: []string{"**/*.hql"},
		Exclude: []string{"**/node_modules/**", "**/.git/**", "**/dist/**", "**/build/**"},
	}
}

// DiscoverFiles walks rootPath and returns every file matching
// options.Include that does not match options.Exclude, in workspace-
// relative slash form resolved back to an absolute path rooted at
// rootPath.
func DiscoverFiles(rootPath string, options ScanOptions) ([]string, error) {
	for _, pattern := range options.Include {
		if !doublestar.ValidatePattern(pattern) {
			return nil, fmt.Errorf("invalid include pattern: %s", pattern)
		}
	}
	for _, pattern := range options.Exclude {
		if !doublestar.ValidatePattern(pattern) {
			return nil, fmt.Errorf("invalid exclude pattern: %s", pattern)
		}
	}

	var files []string
	err := filepath.WalkDir(rootPath, func(walkPath string, d fs.DirEntry, err error) error {
		if err != nil {
			return nil
		}

		relPath, err := filepath.Rel(rootPath, walkPath)
		if err != nil {
			relPath = walkPath
		}
		relPath = filepath.ToSlash(relPath)

		for _, pattern := range options.Exclude {
			if matched, _ := doublestar.PathMatch(pattern, relPath); matched {
				if d.IsDir() {
					return filepath.SkipDir
				}
				return nil
			}
		}

		if d.IsDir() {
			return nil
		}

		for _, pattern := range options.Include {
			if matched, _ := doublestar.PathMatch(pattern, relPath); matched {
				files = append(files, walkPath)
				break
			}
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("workspace scan failed: %w", err)
	}
	return files, nil
}
