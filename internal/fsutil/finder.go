// Package fsutil provides file system utility functions.
package fsutil

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
)

// LessonExt is the file extension lesson documents are stored under.
const LessonExt = ".hcl"

// FindLessonFiles resolves a lesson path to the list of lesson files it
// denotes. A file path returns itself (regardless of extension, so explicit
// paths always win); a directory is walked recursively for *.hcl files in
// lexical order.
func FindLessonFiles(path string) ([]string, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("accessing lesson path %s: %w", path, err)
	}
	if !info.IsDir() {
		return []string{path}, nil
	}

	var files []string
	err = filepath.WalkDir(path, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() && filepath.Ext(p) == LessonExt {
			files = append(files, p)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	if len(files) == 0 {
		return nil, fmt.Errorf("no %s files under %s", LessonExt, path)
	}
	return files, nil
}
