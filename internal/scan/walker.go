// Package scan walks directory trees and selects the Go source files the
// doc updater should visit. Exclusions match path basenames at every
// level, the walk root included.
package scan

import (
	"os"
	"path/filepath"
	"strings"

	"go.uber.org/zap"
)

// Walker visits Go source files under a root, honoring basename exclusions.
type Walker struct {
	excludeDirs  map[string]bool
	excludeFiles map[string]bool
	logger       *zap.Logger
}

// New creates a Walker for the given exclusion lists.
func New(excludeDirs, excludeFiles []string, logger *zap.Logger) *Walker {
	if logger == nil {
		logger = zap.NewNop()
	}
	w := &Walker{
		excludeDirs:  make(map[string]bool, len(excludeDirs)),
		excludeFiles: make(map[string]bool, len(excludeFiles)),
		logger:       logger,
	}
	for _, d := range excludeDirs {
		w.excludeDirs[d] = true
	}
	for _, f := range excludeFiles {
		w.excludeFiles[f] = true
	}
	return w
}

// ExcludedDir reports whether a directory basename is excluded.
func (w *Walker) ExcludedDir(name string) bool {
	return w.excludeDirs[name]
}

// ExcludedFile reports whether a file basename is excluded.
func (w *Walker) ExcludedFile(name string) bool {
	return w.excludeFiles[name]
}

// Walk visits every eligible .go file under root in lexical order and
// calls fn with its path. Excluded directories are pruned whole, dot
// directories (VCS metadata, editor state) are skipped unless they are
// the root itself, and excluded files are passed over. An error from fn
// stops the walk.
func (w *Walker) Walk(root string, fn func(path string) error) error {
	return filepath.Walk(root, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		name := info.Name()

		if info.IsDir() {
			if w.ExcludedDir(name) {
				w.logger.Debug("skipping excluded directory", zap.String("path", path))
				return filepath.SkipDir
			}
			if path != root && strings.HasPrefix(name, ".") {
				return filepath.SkipDir
			}
			return nil
		}

		if !strings.HasSuffix(name, ".go") {
			return nil
		}
		if w.ExcludedFile(name) {
			w.logger.Debug("skipping excluded file", zap.String("path", path))
			return nil
		}
		return fn(path)
	})
}
