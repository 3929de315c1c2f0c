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
	"fmt"

	"github.com/relaxng/rngcore/relaxng"
	"github.com/relaxng/rngcore/relaxng/ast"
	"github.com/relaxng/rngcore/relaxng/span"
)

// defineHandleRef is the shell-phase entry for one grammar name: the
// DefineHandle exists so Ref/ParentRef can resolve to it, but its Pattern
// field is still nil until finalizeBodies runs.
type defineHandleRef struct {
	handle *relaxng.DefineHandle
}

// collectedRule is one <define> or <start> contribution to a name, after
// div flattening and include splicing but before same-named siblings are
// combined.
type collectedRule struct {
	combine ast.CombineMode
	body    ast.Pattern
	file    FileIdentity
	span    span.Span
}

// collectGrammarRules flattens g's own <define>s, every nested <div>, and
// every <include> (recursively) into one name -> []collectedRule map.
// <div> contributes its own content as if it had not been present; a
// <define> inside an override list from <include> entirely replaces any
// same-named rule coming from the included file.
func (ctx *compileCtx) collectGrammarRules(g *ast.Grammar, file FileIdentity, scope *grammarScope) map[string][]collectedRule {
	rules := make(map[string][]collectedRule)
	ctx.collectDefines(g.Defines, file, rules)
	for _, div := range g.Divs {
		ctx.collectDiv(div, file, rules)
	}
	for _, inc := range g.Includes {
		ctx.collectInclude(inc, file, rules)
	}
	return rules
}

func ruleName(d *ast.Define) string {
	if d.IsStart {
		return "start"
	}
	return d.Name
}

func (ctx *compileCtx) collectDefines(defines []*ast.Define, file FileIdentity, rules map[string][]collectedRule) {
	for _, d := range defines {
		name := ruleName(d)
		rules[name] = append(rules[name], collectedRule{combine: d.Combine, body: d.Body, file: file, span: d.Span()})
	}
}

func (ctx *compileCtx) collectDiv(div *ast.Div, file FileIdentity, rules map[string][]collectedRule) {
	ctx.collectDefines(div.Defines, file, rules)
	for _, nested := range div.Divs {
		ctx.collectDiv(nested, file, rules)
	}
	for _, inc := range div.Includes {
		ctx.collectInclude(inc, file, rules)
	}
}

func (ctx *compileCtx) collectInclude(inc *ast.Include, file FileIdentity, rules map[string][]collectedRule) {
	id, contents, syntax, err := ctx.compiler.Resolver.Resolve(file, inc.HRef)
	if err != nil {
		ctx.errs.Emplace("failed to resolve include "+quote(inc.HRef)+": "+err.Error(),
			relaxng.Op("compiler.Compile"), inc.Span(), relaxng.ErrKindCompile, relaxng.CodeUnresolvedRef)
		return
	}
	if ctx.onIncludeStack(id) {
		ctx.errs.Emplace("include cycle detected at "+quote(inc.HRef),
			relaxng.Op("compiler.Compile"), inc.Span(), relaxng.ErrKindCompile, relaxng.CodeIncludeCycle)
		return
	}

	root, err := ctx.compiler.Parser.Parse(contents, id, syntax)
	if err != nil {
		ctx.errs.Emplace("failed to parse include "+quote(inc.HRef)+": "+err.Error(),
			relaxng.Op("compiler.Compile"), inc.Span(), relaxng.ErrKindParse, relaxng.CodeParseError)
		return
	}

	ctx.includeStack = append(ctx.includeStack, id)
	included := make(map[string][]collectedRule)
	ctx.collectGrammarRulesFromAny(root, id, included)
	ctx.includeStack = ctx.includeStack[:len(ctx.includeStack)-1]

	// Overrides (this include element's own <define>s and <div>s) entirely
	// replace the included file's rules for the same name, per §3's
	// per-define override semantics.
	overrides := make(map[string][]collectedRule)
	ctx.collectDefines(inc.Overrides, file, overrides)
	for _, div := range inc.Divs {
		ctx.collectDiv(div, file, overrides)
	}

	for name, rs := range included {
		if _, overridden := overrides[name]; overridden {
			continue
		}
		rules[name] = append(rules[name], rs...)
	}
	for name, rs := range overrides {
		rules[name] = append(rules[name], rs...)
	}
}

// collectGrammarRulesFromAny handles an include/externalRef target whose
// parsed root may or may not itself be a <grammar> element.
func (ctx *compileCtx) collectGrammarRulesFromAny(root ast.Pattern, file FileIdentity, rules map[string][]collectedRule) {
	g := asImplicitGrammar(root)
	ctx.collectDefines(g.Defines, file, rules)
	for _, div := range g.Divs {
		ctx.collectDiv(div, file, rules)
	}
	for _, inc := range g.Includes {
		ctx.collectInclude(inc, file, rules)
	}
}

func (ctx *compileCtx) onIncludeStack(id FileIdentity) bool {
	for _, f := range ctx.includeStack {
		if f == id {
			return true
		}
	}
	return false
}

// allocateShells allocates one *relaxng.DefineHandle per collected name
// (the "shell" phase) and registers it in scope, before any rule body is
// compiled, so a Ref anywhere in this grammar's bodies — including a Ref
// inside the very first rule compiled — already has a handle to resolve
// to.
func (ctx *compileCtx) allocateShells(rules map[string][]collectedRule, scope *grammarScope) map[string]*relaxng.DefineHandle {
	handles := make(map[string]*relaxng.DefineHandle, len(rules))
	for name, rs := range rules {
		h := &relaxng.DefineHandle{Name: name, NodeSpan: rs[0].span}
		handles[name] = h
		scope.defines[name] = &defineHandleRef{handle: h}
	}
	return handles
}

// finalizeBodies fills in each handle's Pattern (the "body" phase) by
// compiling and combining its collected rules, in definition order. By now
// every name in this grammar has a shell, so Refs resolve correctly even
// in cyclic grammars.
func (ctx *compileCtx) finalizeBodies(rules map[string][]collectedRule, handles map[string]*relaxng.DefineHandle, scope *grammarScope) {
	for name, rs := range rules {
		h := handles[name]
		combine, err := resolveCombine(rs)
		if err != nil {
			ctx.errs.Emplace(err.Error(), relaxng.Op("compiler.Compile"), rs[0].span,
				relaxng.ErrKindCompile, relaxng.CodeIncompatibleCombine)
			h.Pattern = &relaxng.NotAllowedPattern{NodeSpan: rs[0].span}
			continue
		}
		h.Combine = modelCombine(combine)

		patterns := make([]relaxng.Pattern, len(rs))
		for i, r := range rs {
			patterns[i] = ctx.compilePattern(r.body, r.file, scope)
		}

		if len(patterns) == 1 {
			h.Pattern = patterns[0]
			continue
		}
		switch combine {
		case ast.CombineChoice:
			h.Pattern = &relaxng.ChoicePattern{Patterns: patterns, NodeSpan: rs[0].span}
		case ast.CombineInterleave:
			h.Pattern = &relaxng.InterleavePattern{Patterns: patterns, NodeSpan: rs[0].span}
		}
	}
}

func modelCombine(c ast.CombineMode) relaxng.CombineMode {
	switch c {
	case ast.CombineChoice:
		return relaxng.CombineChoice
	case ast.CombineInterleave:
		return relaxng.CombineInterleave
	}
	return relaxng.CombineNone
}

// resolveCombine validates that, when a name has more than one rule, every
// rule names the same combine mode and that mode is not CombineNone (§3:
// "declaring the same name without combine at all, when multiple
// definitions exist, is an error").
func resolveCombine(rs []collectedRule) (ast.CombineMode, error) {
	if len(rs) == 1 {
		return rs[0].combine, nil
	}
	mode := rs[0].combine
	if mode == ast.CombineNone {
		return 0, fmt.Errorf("multiple definitions with no combine attribute")
	}
	for _, r := range rs[1:] {
		if r.combine != mode {
			return 0, fmt.Errorf("definitions disagree on combine mode")
		}
	}
	return mode, nil
}

// compileGrammarFull runs the full collect/allocate/finalize pipeline for
// one <grammar> element, used both for the document root (via Compile) and
// for a <grammar> appearing in pattern position or as an include/
// externalRef target.
func (ctx *compileCtx) compileGrammarFull(g *ast.Grammar, file FileIdentity, parentScope *grammarScope) (map[string]*relaxng.DefineHandle, error) {
	scope := newGrammarScope(parentScope)
	rules := ctx.collectGrammarRules(g, file, scope)
	if len(rules) == 0 {
		return nil, fmt.Errorf("grammar has no definitions")
	}
	handles := ctx.allocateShells(rules, scope)
	ctx.finalizeBodies(rules, handles, scope)
	for name, h := range handles {
		ctx.defines[name] = h
	}
	return handles, nil
}

// compileExternalRef resolves, parses and fully (independently) compiles an
// <externalRef> target, per RELAX NG's rule that externalRef substitutes
// the referenced schema's start pattern and does not share the
// referencing grammar's scope (a parentRef cannot cross an externalRef
// boundary).
func (ctx *compileCtx) compileExternalRef(ref *ast.ExternalRef, file FileIdentity) (relaxng.Pattern, error) {
	id, contents, syntax, err := ctx.compiler.Resolver.Resolve(file, ref.HRef)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve externalRef %q: %w", ref.HRef, err)
	}
	if ctx.onIncludeStack(id) {
		return nil, fmt.Errorf("externalRef cycle detected at %q", ref.HRef)
	}

	root, err := ctx.compiler.Parser.Parse(contents, id, syntax)
	if err != nil {
		return nil, fmt.Errorf("failed to parse externalRef %q: %w", ref.HRef, err)
	}

	ctx.includeStack = append(ctx.includeStack, id)
	handles, err := ctx.compileGrammarFull(asImplicitGrammar(root), id, nil)
	ctx.includeStack = ctx.includeStack[:len(ctx.includeStack)-1]
	if err != nil {
		return nil, err
	}

	start, ok := handles["start"]
	if !ok {
		return nil, fmt.Errorf("externalRef target %q has no start pattern", ref.HRef)
	}
	return &relaxng.RefPattern{Define: start, NodeSpan: ref.Span()}, nil
}
