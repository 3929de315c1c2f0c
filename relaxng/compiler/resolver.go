/**
 * Copyright (c) 2019, The Artemis Authors.
 *
 * Permission to use, copy, modify, and/or distribute this software for any
 * purpose with or without fee is hereby granted, provided that the above
 * copyright notice and this permission notice appear in all copies.
 *
 * THE SOFTWARE IS PROVIDED "AS IS" AND THE AUTHOR DISCLAIMS ALL WARRANTIES
 * WITH REGARD TO THIS SOFTWARE INCLUDING ALL IMPLIED WARRANTIES OF
 * MERCHANTABILITY AND FITNESS. IN NO EVENT SHALL THE AUTHOR BE LIABLE FOR
 * ANY SPECIAL, DIRECT, INDIRECT, OR CONSEQUENTIAL DAMAGES OR ANY DAMAGES
 * WHATSOEVER RESULTING FROM LOSS OF USE, DATA OR PROFITS, WHETHER IN AN
 * ACTION OF CONTRACT, NEGLIGENCE OR OTHER TORTIOUS ACTION, ARISING OUT OF
 * OR IN CONNECTION WITH THE USE OR PERFORMANCE OF THIS SOFTWARE.
 */

// Package compiler transforms a parsed RELAX NG ast.Pattern tree into the
// simplified relaxng model graph: it resolves include and external
// references, threads default namespace and datatype-library context,
// folds combined defines, and instantiates datatype descriptors, per §4.2.
package compiler

import "github.com/relaxng/rngcore/relaxng/ast"

// FileIdentity is an opaque, comparable token a FileResolver hands back for
// a resolved file. Two resolutions of the same underlying file (regardless
// of path spelling) must produce equal FileIdentity values, since the
// compiler uses equality on this type for include/externalRef cycle
// detection.
type FileIdentity struct {
	key string
}

// NewFileIdentity constructs a FileIdentity from a resolver-chosen canonical
// key (e.g. an absolute, symlink-resolved path, or a content hash).
// FileResolver implementations are the only expected callers.
func NewFileIdentity(canonicalKey string) FileIdentity {
	return FileIdentity{key: canonicalKey}
}

// String returns the canonical key, for diagnostics.
func (id FileIdentity) String() string { return id.key }

// FileResolver is the file-discovery collaborator of §6: given the
// identity of the file an include/externalRef appears in and the href it
// names, produce the referenced file's canonical identity, raw contents,
// and a syntax tag selecting which (out-of-scope) parser to invoke.
// Filesystem I/O itself stays outside the core behind this interface.
type FileResolver interface {
	Resolve(base FileIdentity, href string) (id FileIdentity, contents []byte, syntax string, err error)
}

// Parser is the external-parser collaborator: turns raw contents from a
// FileResolver into an AST pattern, selecting compact or XML grammar by
// syntax. The compiler never implements this itself — concrete syntax
// parsing is explicitly out of scope — but needs a seam to invoke it
// recursively for include and externalRef targets.
type Parser interface {
	Parse(contents []byte, file FileIdentity, syntax string) (ast.Pattern, error)
}
