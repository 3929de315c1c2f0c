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

package compiler

import "github.com/relaxng/rngcore/relaxng/ast"

// xmlNamespaceURI is the predefined "xml" prefix binding that is always in
// scope, per §3.
const xmlNamespaceURI = "http://www.w3.org/XML/1998/namespace"

// valueContext implements relaxng.DatatypeContext for a single <value>
// node's compiled Datatype, using the prefix bindings the parser recorded
// at that node (the compiler never sees prefixes anywhere else).
type valueContext struct {
	prefixes map[string]string
}

func newValueContext(v *ast.Value) *valueContext {
	return &valueContext{prefixes: v.Prefixes}
}

// ResolveNamespacePrefix implements relaxng.DatatypeContext.
func (c *valueContext) ResolveNamespacePrefix(prefix string) (string, bool) {
	if prefix == "xml" {
		return xmlNamespaceURI, true
	}
	if c.prefixes == nil {
		return "", false
	}
	uri, ok := c.prefixes[prefix]
	return uri, ok
}

// grammarScope tracks the defines visible for <ref> and <parentRef>
// resolution while compiling one <grammar>'s content. Scopes nest: a
// nested <grammar> gets its own scope whose parent is the enclosing one,
// per §3's "grammars nest; parentRef resolves in the lexically enclosing
// grammar".
type grammarScope struct {
	parent  *grammarScope
	defines map[string]*defineHandleRef
}

func newGrammarScope(parent *grammarScope) *grammarScope {
	return &grammarScope{parent: parent, defines: make(map[string]*defineHandleRef)}
}

// lookupRef resolves a plain <ref name="n"/> against this scope only (no
// fallthrough to parent — RELAX NG's own semantics require an explicit
// <parentRef> to cross a grammar boundary).
func (s *grammarScope) lookupRef(name string) (*defineHandleRef, bool) {
	h, ok := s.defines[name]
	return h, ok
}

// lookupParentRef resolves a <parentRef name="n"/> against the enclosing
// scope.
func (s *grammarScope) lookupParentRef(name string) (*defineHandleRef, bool) {
	if s.parent == nil {
		return nil, false
	}
	return s.parent.lookupRef(name)
}

// knownNames lists the define names visible in this scope, for building a
// "did you mean" suggestion when a ref/parentRef fails to resolve.
func (s *grammarScope) knownNames() []string {
	names := make([]string, 0, len(s.defines))
	for name := range s.defines {
		names = append(names, name)
	}
	return names
}
