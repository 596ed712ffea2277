// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package assets

import "embed"

//go:embed shaders/*.wgsl
var builtinFS embed.FS

// Builtin returns a Source serving the shaders embedded in this module,
// for example "shaders/triangle.wgsl".
func Builtin() Source {
	return NewFS(builtinFS)
}
