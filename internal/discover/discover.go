// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package discover enumerates candidate input files under a directory tree.
package discover

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/sirupsen/logrus"
)

// ErrDirectoryNotFound is returned when the root does not exist or is not a
// directory. It aborts the whole run.
var ErrDirectoryNotFound = errors.New("directory not found")

// DefaultExtensions is the conventional set of document types processed
// when the caller does not choose any.
var DefaultExtensions = []string{".pdf", ".docx", ".pptx", ".xlsx", ".html", ".htm", ".txt", ".csv"}

// SupportedExtensions extends DefaultExtensions with the structured text
// formats the converters also understand.
var SupportedExtensions = append(append([]string{}, DefaultExtensions...), ".json", ".xml", ".rtf")

// Options controls a discovery walk.
type Options struct {
	// Extensions filters files by suffix. Matching is case-insensitive and a
	// missing leading dot is added. Empty means DefaultExtensions.
	Extensions []string

	// Exclude lists directories whose contents are skipped, typically the
	// output directory when it sits inside the input tree.
	Exclude []string

	// Log receives warnings for entries that cannot be read. Nil uses the
	// standard logrus logger.
	Log logrus.FieldLogger
}

// NormalizeExtensions lowercases exts, adds a leading dot where missing, and
// drops blanks and duplicates while keeping first-seen order.
func NormalizeExtensions(exts []string) []string {
	seen := make(map[string]bool, len(exts))
	out := make([]string, 0, len(exts))
	for _, e := range exts {
		e = strings.ToLower(strings.TrimSpace(e))
		if e == "" || e == "." {
			continue
		}
		if !strings.HasPrefix(e, ".") {
			e = "." + e
		}
		if seen[e] {
			continue
		}
		seen[e] = true
		out = append(out, e)
	}
	return out
}

// Files walks root recursively and returns the paths whose extension is in
// opts.Extensions, sorted lexically so repeated runs over an unchanged tree
// produce the same sequence. Only a missing or unreadable root is an error;
// unreadable entries below it are skipped with a warning.
func Files(root string, opts Options) ([]string, error) {
	info, err := os.Stat(root)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", ErrDirectoryNotFound, root)
		}
		return nil, fmt.Errorf("stat %s: %w", root, err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("%w: %s is not a directory", ErrDirectoryNotFound, root)
	}

	exts := opts.Extensions
	if len(exts) == 0 {
		exts = DefaultExtensions
	}
	wanted := make(map[string]bool)
	for _, e := range NormalizeExtensions(exts) {
		wanted[e] = true
	}

	excluded := make(map[string]bool, len(opts.Exclude))
	for _, dir := range opts.Exclude {
		if abs, err := filepath.Abs(dir); err == nil {
			excluded[abs] = true
		}
	}

	log := opts.Log
	if log == nil {
		log = logrus.StandardLogger()
	}

	var files []string
	err = filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			if path == root {
				return err
			}
			log.WithError(err).WithField("path", path).Warn("skipping unreadable entry")
			if d != nil && d.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}
		if d.IsDir() {
			if path != root && len(excluded) > 0 {
				if abs, absErr := filepath.Abs(path); absErr == nil && excluded[abs] {
					return filepath.SkipDir
				}
			}
			return nil
		}
		if !d.Type().IsRegular() {
			return nil
		}
		if wanted[strings.ToLower(filepath.Ext(d.Name()))] {
			files = append(files, path)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("walking %s: %w", root, err)
	}

	sort.Strings(files)
	return files, nil
}
