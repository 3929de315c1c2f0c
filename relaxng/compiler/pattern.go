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
	"github.com/relaxng/rngcore/internal/util"
	"github.com/relaxng/rngcore/relaxng"
	"github.com/relaxng/rngcore/relaxng/ast"
)

// compilePattern translates one parsed pattern node into its model-graph
// form within the given file and grammar scope. file is the FileIdentity
// p was parsed from, needed to resolve a nested externalRef's href
// relative to the right base. scope resolves ref/parentRef.
//
// AST-level sugar (Optional, ZeroOrMore, Mixed) is desugared here per §3:
// Optional(p) -> Choice(p, Empty); ZeroOrMore(p) -> Choice(OneOrMore(p),
// Empty); Mixed(p) -> Interleave(p, Text). None of the three survive into
// the model graph.
func (ctx *compileCtx) compilePattern(p ast.Pattern, file FileIdentity, scope *grammarScope) relaxng.Pattern {
	switch p := p.(type) {
	case *ast.Empty:
		return &relaxng.EmptyPattern{NodeSpan: p.Span()}

	case *ast.NotAllowed:
		return &relaxng.NotAllowedPattern{NodeSpan: p.Span()}

	case *ast.Text:
		return &relaxng.TextPattern{NodeSpan: p.Span()}

	case *ast.Element:
		return &relaxng.ElementPattern{
			NameClass: ctx.compileNameClass(p.NameClass),
			Content:   ctx.compilePattern(p.Content, file, scope),
			NodeSpan:  p.Span(),
		}

	case *ast.Attribute:
		return &relaxng.AttributePattern{
			NameClass: ctx.compileNameClass(p.NameClass),
			Content:   ctx.compilePattern(p.Content, file, scope),
			NodeSpan:  p.Span(),
		}

	case *ast.List:
		return &relaxng.ListPattern{
			Content:  ctx.compilePattern(p.Content, file, scope),
			NodeSpan: p.Span(),
		}

	case *ast.Data:
		return ctx.compileData(p, file, scope)

	case *ast.Value:
		return ctx.compileValue(p)

	case *ast.Group:
		return &relaxng.GroupPattern{Patterns: ctx.compileChildren(p.Patterns, file, scope), NodeSpan: p.Span()}

	case *ast.Interleave:
		return &relaxng.InterleavePattern{Patterns: ctx.compileChildren(p.Patterns, file, scope), NodeSpan: p.Span()}

	case *ast.Choice:
		return &relaxng.ChoicePattern{Patterns: ctx.compileChildren(p.Patterns, file, scope), NodeSpan: p.Span()}

	case *ast.OneOrMore:
		return &relaxng.OneOrMorePattern{Content: ctx.compilePattern(p.Content, file, scope), NodeSpan: p.Span()}

	case *ast.Optional:
		content := ctx.compilePattern(p.Content, file, scope)
		return &relaxng.ChoicePattern{
			Patterns: []relaxng.Pattern{content, &relaxng.EmptyPattern{NodeSpan: p.Span()}},
			NodeSpan: p.Span(),
		}

	case *ast.ZeroOrMore:
		content := ctx.compilePattern(p.Content, file, scope)
		oneOrMore := &relaxng.OneOrMorePattern{Content: content, NodeSpan: p.Span()}
		return &relaxng.ChoicePattern{
			Patterns: []relaxng.Pattern{oneOrMore, &relaxng.EmptyPattern{NodeSpan: p.Span()}},
			NodeSpan: p.Span(),
		}

	case *ast.Mixed:
		content := ctx.compilePattern(p.Content, file, scope)
		return &relaxng.InterleavePattern{
			Patterns: []relaxng.Pattern{content, &relaxng.TextPattern{NodeSpan: p.Span()}},
			NodeSpan: p.Span(),
		}

	case *ast.Ref:
		h, ok := scope.lookupRef(p.Name)
		if !ok {
			ctx.errs.Emplace("reference to undefined pattern "+quote(p.Name)+didYouMean(p.Name, scope.knownNames()),
				relaxng.Op("compiler.Compile"), p.Span(), relaxng.ErrKindCompile, relaxng.CodeUnresolvedRef)
			return &relaxng.NotAllowedPattern{NodeSpan: p.Span()}
		}
		return &relaxng.RefPattern{Define: h.handle, NodeSpan: p.Span()}

	case *ast.ParentRef:
		h, ok := scope.lookupParentRef(p.Name)
		if !ok {
			var known []string
			if scope.parent != nil {
				known = scope.parent.knownNames()
			}
			ctx.errs.Emplace("parentRef to undefined pattern "+quote(p.Name)+didYouMean(p.Name, known),
				relaxng.Op("compiler.Compile"), p.Span(), relaxng.ErrKindCompile, relaxng.CodeUnresolvedRef)
			return &relaxng.NotAllowedPattern{NodeSpan: p.Span()}
		}
		return &relaxng.RefPattern{Define: h.handle, NodeSpan: p.Span()}

	case *ast.ExternalRef:
		pat, err := ctx.compileExternalRef(p, file)
		if err != nil {
			ctx.errs.Emplace(err.Error(),
				relaxng.Op("compiler.Compile"), p.Span(), relaxng.ErrKindCompile, relaxng.CodeIncludeCycle)
			return &relaxng.NotAllowedPattern{Cause: err, NodeSpan: p.Span()}
		}
		return pat

	case *ast.Grammar:
		handles, err := ctx.compileGrammarFull(p, file, scope)
		if err != nil {
			return &relaxng.NotAllowedPattern{Cause: err, NodeSpan: p.Span()}
		}
		start, ok := handles["start"]
		if !ok {
			ctx.errs.Emplace("nested grammar has no start pattern",
				relaxng.Op("compiler.Compile"), p.Span(), relaxng.ErrKindCompile, relaxng.CodeUnresolvedRef)
			return &relaxng.NotAllowedPattern{NodeSpan: p.Span()}
		}
		return &relaxng.RefPattern{Define: start, NodeSpan: p.Span()}
	}
	panic("compiler: unreachable pattern variant")
}

func (ctx *compileCtx) compileChildren(patterns []ast.Pattern, file FileIdentity, scope *grammarScope) []relaxng.Pattern {
	out := make([]relaxng.Pattern, len(patterns))
	for i, p := range patterns {
		out[i] = ctx.compilePattern(p, file, scope)
	}
	return out
}

func (ctx *compileCtx) compileData(d *ast.Data, file FileIdentity, scope *grammarScope) relaxng.Pattern {
	lib, ok := ctx.compiler.Registry.Lookup(d.LibraryURI)
	if !ok {
		ctx.errs.Emplace("unknown datatype library "+quote(d.LibraryURI),
			relaxng.Op("compiler.CompileDatatype"), d.Span(), relaxng.ErrKindCompile, relaxng.CodeUnknownDatatypeLibrary)
		return &relaxng.NotAllowedPattern{NodeSpan: d.Span()}
	}

	params := make([]relaxng.Param, len(d.Params))
	for i, p := range d.Params {
		params[i] = relaxng.Param{Name: p.Name, Value: p.Value}
	}

	dt, err := lib.LookupType(d.Name, params, nil)
	if err != nil {
		code := relaxng.CodeInvalidFacet
		if _, nameErr := lib.LookupType(d.Name, nil, nil); nameErr != nil {
			code = relaxng.CodeUnknownDatatype
		}
		ctx.errs.Emplace("invalid datatype "+quote(d.Name)+": "+err.Error(),
			relaxng.Op("compiler.CompileDatatype"), d.Span(), relaxng.ErrKindCompile, code)
		return &relaxng.NotAllowedPattern{NodeSpan: d.Span()}
	}

	var except relaxng.Pattern
	if d.Except != nil {
		except = ctx.compilePattern(d.Except, file, scope)
	}

	return &relaxng.DataPattern{Datatype: dt, Except: except, NodeSpan: d.Span()}
}

func (ctx *compileCtx) compileValue(v *ast.Value) relaxng.Pattern {
	libURI, name := v.LibraryURI, v.Name
	if name == "" {
		// An untyped <value> is defined to behave as RELAX NG's own "token"
		// type, regardless of the value's own datatypeLibrary attribute.
		libURI, name = "", "token"
	}

	lib, ok := ctx.compiler.Registry.Lookup(libURI)
	if !ok {
		ctx.errs.Emplace("unknown datatype library "+quote(libURI),
			relaxng.Op("compiler.CompileDatatype"), v.Span(), relaxng.ErrKindCompile, relaxng.CodeUnknownDatatypeLibrary)
		return &relaxng.NotAllowedPattern{NodeSpan: v.Span()}
	}

	valCtx := newValueContext(v)
	dt, err := lib.LookupType(name, nil, valCtx)
	if err != nil {
		ctx.errs.Emplace("invalid datatype "+quote(name)+": "+err.Error(),
			relaxng.Op("compiler.CompileDatatype"), v.Span(), relaxng.ErrKindCompile, relaxng.CodeUnknownDatatype)
		return &relaxng.NotAllowedPattern{NodeSpan: v.Span()}
	}

	if err := dt.Allows(v.Text, valCtx); err != nil {
		ctx.errs.Emplace("value "+quote(v.Text)+" is not valid for its datatype: "+err.Error(),
			relaxng.Op("compiler.CompileDatatype"), v.Span(), relaxng.ErrKindCompile, relaxng.CodeInvalidFacet)
	}

	return &relaxng.ValuePattern{Datatype: dt, Value: v.Text, Context: valCtx, NodeSpan: v.Span()}
}

func quote(s string) string { return "\"" + s + "\"" }

// didYouMean appends a " did you mean ...?" suffix naming the closest
// known define names to an unresolved ref, or "" if nothing is close
// enough to suggest (per util.SuggestionList's edit-distance threshold).
func didYouMean(name string, known []string) string {
	suggestions := util.SuggestionList(name, known)
	if len(suggestions) == 0 {
		return ""
	}
	var b util.StringBuilder
	b.WriteString(" did you mean ")
	util.OrList(&b, suggestions, 5, true)
	b.WriteString("?")
	return b.String()
}
