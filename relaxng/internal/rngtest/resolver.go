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

package rngtest

import (
	"fmt"

	"github.com/relaxng/rngcore/relaxng/ast"
	"github.com/relaxng/rngcore/relaxng/compiler"
)

// FileSet is a canned compiler.FileResolver + compiler.Parser backed by an
// in-memory map of already-parsed ASTs, standing in for the file-discovery
// and concrete-syntax-parsing collaborators that are out of scope for this
// core (§1 and §6). Keys are hrefs as written in an <include>/<externalRef>;
// FileIdentity is the href itself, which is already canonical for the
// fixtures tests build.
type FileSet struct {
	files map[string]ast.Pattern
}

// NewFileSet builds a FileSet with no files registered.
func NewFileSet() *FileSet {
	return &FileSet{files: make(map[string]ast.Pattern)}
}

// Add registers root under href.
func (fs *FileSet) Add(href string, root ast.Pattern) *FileSet {
	fs.files[href] = root
	return fs
}

// RootFile is the FileIdentity tests pass as Compile's rootFile argument.
var RootFile = compiler.NewFileIdentity("<root>")

// Resolve implements compiler.FileResolver.
func (fs *FileSet) Resolve(base compiler.FileIdentity, href string) (compiler.FileIdentity, []byte, string, error) {
	if _, ok := fs.files[href]; !ok {
		return compiler.FileIdentity{}, nil, "", fmt.Errorf("no such file %q", href)
	}
	return compiler.NewFileIdentity(href), []byte(href), "fake", nil
}

// Parse implements compiler.Parser: contents is the href, round-tripped
// from Resolve, used as the map key back into the registered AST.
func (fs *FileSet) Parse(contents []byte, file compiler.FileIdentity, syntax string) (ast.Pattern, error) {
	root, ok := fs.files[string(contents)]
	if !ok {
		return nil, fmt.Errorf("no such file %q", string(contents))
	}
	return root, nil
}
