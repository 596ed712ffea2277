// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

// Package assets resolves asset identifiers, such as shader source paths, to
// their contents.
//
// A Source maps a slash-separated identifier like "shaders/triangle.wgsl" to
// text. FileSystem reads from an asset directory on disk, FS reads from any
// fs.FS, Builtin serves the shaders shipped with this module, and Chain
// combines sources with first-match-wins lookup.
package assets

import (
	"errors"
	"fmt"
	"io/fs"
)

// Package errors.
var (
	// ErrNotFound matches every *NotFoundError.
	ErrNotFound = errors.New("assets: not found")

	// ErrNoAssetDir is returned by Discover when no asset directory exists.
	ErrNoAssetDir = errors.New("assets: asset directory not found")
)

// Source reads asset text by identifier.
type Source interface {
	// ReadSource returns the contents of the asset. A missing asset is
	// reported as *NotFoundError.
	ReadSource(id string) (string, error)
}

// NotFoundError reports an identifier the source could not resolve.
type NotFoundError struct {
	ID  string
	Err error
}

func (e *NotFoundError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("assets: %q not found: %v", e.ID, e.Err)
	}
	return fmt.Sprintf("assets: %q not found", e.ID)
}

func (e *NotFoundError) Unwrap() error { return e.Err }

// Is reports whether target is ErrNotFound.
func (e *NotFoundError) Is(target error) bool {
	return target == ErrNotFound
}

// FS is a Source backed by an fs.FS.
type FS struct {
	fsys fs.FS
}

// NewFS returns a Source reading from fsys.
func NewFS(fsys fs.FS) *FS {
	return &FS{fsys: fsys}
}

// ReadSource implements Source.
func (s *FS) ReadSource(id string) (string, error) {
	if !fs.ValidPath(id) {
		return "", &NotFoundError{ID: id, Err: fs.ErrInvalid}
	}
	data, err := fs.ReadFile(s.fsys, id)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return "", &NotFoundError{ID: id, Err: err}
		}
		return "", fmt.Errorf("assets: read %q: %w", id, err)
	}
	return string(data), nil
}

// Chain is a Source that asks each of its sources in order. The first
// source that has the asset wins; any error other than not-found stops the
// search.
type Chain []Source

// ReadSource implements Source.
func (c Chain) ReadSource(id string) (string, error) {
	for _, s := range c {
		text, err := s.ReadSource(id)
		if err == nil {
			return text, nil
		}
		if !errors.Is(err, ErrNotFound) {
			return "", err
		}
	}
	return "", &NotFoundError{ID: id}
}
