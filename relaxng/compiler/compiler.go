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

import (
	"github.com/relaxng/rngcore/relaxng"
	"github.com/relaxng/rngcore/relaxng/ast"
	"github.com/relaxng/rngcore/relaxng/datatype"
)

// Compiler transforms a parsed schema into a relaxng.Schema, resolving
// include/externalRef via Resolver+Parser and instantiating datatypes via
// Registry, per §4.2.
type Compiler struct {
	Registry *datatype.Registry
	Resolver FileResolver
	Parser   Parser
}

// New builds a Compiler. registry may be nil, in which case
// datatype.NewRegistry() is used.
func New(registry *datatype.Registry, resolver FileResolver, parser Parser) *Compiler {
	if registry == nil {
		registry = datatype.NewRegistry()
	}
	return &Compiler{Registry: registry, Resolver: resolver, Parser: parser}
}

// compileCtx carries the mutable state threaded through one Compile call:
// accumulated diagnostics and the include-cycle stack. It is discarded at
// the end of Compile; nothing it holds outlives a single call, per §5's
// "resources acquired with scoped lifetime tied to the compile call".
type compileCtx struct {
	compiler     *Compiler
	errs         relaxng.Errors
	includeStack []FileIdentity
	defines      map[string]*relaxng.DefineHandle // DefineHandles by name across all grammars, for Schema.Defines; a later write of a name replaces the earlier handle
}

// Compile compiles root (the already-parsed top-level grammar or pattern,
// per §6's AST contract) into a Schema. rootFile identifies root's source
// file, used as the base for resolving any include/externalRef it
// contains. Diagnostics accumulate; a non-empty return indicates failure
// and the returned *Schema is nil.
func (c *Compiler) Compile(root ast.Pattern, rootFile FileIdentity) (*relaxng.Schema, relaxng.Errors) {
	ctx := &compileCtx{
		compiler:     c,
		includeStack: []FileIdentity{rootFile},
		defines:      make(map[string]*relaxng.DefineHandle),
	}

	grammar := asImplicitGrammar(root)
	scope := newGrammarScope(nil)

	rules := ctx.collectGrammarRules(grammar, rootFile, scope)
	if ctx.errs.HaveOccurred() {
		return nil, ctx.errs
	}

	handles := ctx.allocateShells(rules, scope)
	ctx.finalizeBodies(rules, handles, scope)
	if ctx.errs.HaveOccurred() {
		return nil, ctx.errs
	}

	start, ok := handles["start"]
	if !ok {
		ctx.errs.Emplace("grammar has no start pattern",
			relaxng.Op("compiler.Compile"), relaxng.ErrKindCompile, relaxng.CodeUnresolvedRef)
		return nil, ctx.errs
	}

	for name, h := range handles {
		ctx.defines[name] = h
	}

	return &relaxng.Schema{Start: start.Pattern, Defines: ctx.defines}, ctx.errs
}

// asImplicitGrammar wraps a bare top-level pattern (one that is not itself
// a <grammar>) in a synthetic single-start grammar, per RELAX NG's rule
// that a schema whose root is not <grammar> behaves as if it were
// `grammar { start = <root> }`.
func asImplicitGrammar(root ast.Pattern) *ast.Grammar {
	if g, ok := root.(*ast.Grammar); ok {
		return g
	}
	return &ast.Grammar{
		NodeBase: ast.NodeBase{},
		Defines: []*ast.Define{
			{IsStart: true, Combine: ast.CombineNone, Body: root},
		},
	}
}
