// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package assets

import (
	"fmt"
	"os"
	"path/filepath"
)

// DirName is the name of the asset directory Discover looks for.
const DirName = "assets"

// FileSystem is a Source reading from an asset directory on disk.
// Identifiers are slash-separated paths relative to the directory and may
// not escape it.
type FileSystem struct {
	*FS
	dir string
}

// NewFileSystem returns a Source reading from dir.
func NewFileSystem(dir string) *FileSystem {
	return &FileSystem{FS: NewFS(os.DirFS(dir)), dir: dir}
}

// Discover locates the asset directory and returns a FileSystem for it.
// See FindDir for the search order.
func Discover() (*FileSystem, error) {
	dir, err := FindDir()
	if err != nil {
		return nil, err
	}
	return NewFileSystem(dir), nil
}

// FindDir finds the asset directory. It looks for a directory named
// "assets":
//   - next to the executable
//   - in each parent directory of the executable (covers binaries built
//     into a nested output directory)
//   - in the current working directory
func FindDir() (string, error) {
	exe, err := os.Executable()
	if err != nil {
		return "", fmt.Errorf("assets: locate executable: %w", err)
	}
	if resolved, err := filepath.EvalSymlinks(exe); err == nil {
		exe = resolved
	}

	for dir := filepath.Dir(exe); ; {
		if candidate := filepath.Join(dir, DirName); isDir(candidate) {
			return candidate, nil
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}
		dir = parent
	}

	wd, err := os.Getwd()
	if err != nil {
		return "", fmt.Errorf("assets: working directory: %w", err)
	}
	if candidate := filepath.Join(wd, DirName); isDir(candidate) {
		return candidate, nil
	}
	return "", ErrNoAssetDir
}

func isDir(path string) bool {
	fi, err := os.Stat(path)
	return err == nil && fi.IsDir()
}

// Dir returns the asset directory.
func (f *FileSystem) Dir() string {
	return f.dir
}
