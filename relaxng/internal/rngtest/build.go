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

// Package rngtest provides small AST-construction helpers shared by the
// relaxng test suites, standing in for the compact/XML parsers that are
// out of scope for this core (§1): tests build the ast.Pattern tree a
// parser would have produced directly, as literal Go values.
package rngtest

import "github.com/relaxng/rngcore/relaxng/ast"

// Name builds an unqualified <name> name class.
func Name(local string) ast.NameClass {
	return &ast.Name{LocalName: local}
}

// QName builds a namespace-qualified <name> name class.
func QName(ns, local string) ast.NameClass {
	return &ast.Name{NamespaceURI: ns, LocalName: local}
}

// AnyName builds an <anyName>, optionally excepting except (pass nil for a
// plain wildcard).
func AnyName(except ast.NameClass) ast.NameClass {
	return &ast.AnyName{Except: except}
}

// NsName builds an <nsName> for the given namespace, optionally excepting
// except.
func NsName(ns string, except ast.NameClass) ast.NameClass {
	return &ast.NsName{NamespaceURI: ns, Except: except}
}

// NameChoice builds a name-class <choice>.
func NameChoice(classes ...ast.NameClass) ast.NameClass {
	return &ast.NameClassChoice{Classes: classes}
}

// El builds an <element> pattern.
func El(nc ast.NameClass, content ast.Pattern) ast.Pattern {
	return &ast.Element{NameClass: nc, Content: content}
}

// ElName is a convenience for El(Name(local), content).
func ElName(local string, content ast.Pattern) ast.Pattern {
	return El(Name(local), content)
}

// Attr builds an <attribute> pattern.
func Attr(nc ast.NameClass, content ast.Pattern) ast.Pattern {
	return &ast.Attribute{NameClass: nc, Content: content}
}

// AttrName is a convenience for Attr(Name(local), content).
func AttrName(local string, content ast.Pattern) ast.Pattern {
	return Attr(Name(local), content)
}

// Empty builds an <empty> pattern.
func Empty() ast.Pattern { return &ast.Empty{} }

// NotAllowed builds a <notAllowed> pattern.
func NotAllowed() ast.Pattern { return &ast.NotAllowed{} }

// Text builds a <text> pattern.
func Text() ast.Pattern { return &ast.Text{} }

// List builds a <list> pattern.
func List(content ast.Pattern) ast.Pattern { return &ast.List{Content: content} }

// Data builds a <data> pattern under the built-in RELAX NG library ("").
func Data(name string, params ...*ast.Param) ast.Pattern {
	return &ast.Data{Name: name, Params: params}
}

// XSDData builds a <data> pattern under the XML Schema datatype library.
func XSDData(name string, params ...*ast.Param) ast.Pattern {
	return &ast.Data{LibraryURI: xsdLibraryURI, Name: name, Params: params}
}

// DataExcept builds a <data> pattern with an <except> child.
func DataExcept(libraryURI, name string, except ast.Pattern, params ...*ast.Param) ast.Pattern {
	return &ast.Data{LibraryURI: libraryURI, Name: name, Params: params, Except: except}
}

// Facet builds a <param> facet.
func Facet(name, value string) *ast.Param {
	return &ast.Param{Name: name, Value: value}
}

// Value builds a <value> pattern under the built-in RELAX NG library.
func Value(text string) ast.Pattern {
	return &ast.Value{Text: text}
}

// XSDValue builds a <value> pattern under the XML Schema datatype library.
func XSDValue(name, text string) ast.Pattern {
	return &ast.Value{LibraryURI: xsdLibraryURI, Name: name, Text: text}
}

// QNameValue builds a <value type="QName"> literal with the given prefix
// bindings in scope.
func QNameValue(text string, prefixes map[string]string) ast.Pattern {
	return &ast.Value{LibraryURI: xsdLibraryURI, Name: "QName", Text: text, Prefixes: prefixes}
}

// Group builds a <group> pattern (",") out of its children.
func Group(patterns ...ast.Pattern) ast.Pattern {
	return &ast.Group{Patterns: patterns}
}

// Interleave builds an <interleave> pattern ("&") out of its children.
func Interleave(patterns ...ast.Pattern) ast.Pattern {
	return &ast.Interleave{Patterns: patterns}
}

// Choice builds a <choice> pattern ("|") out of its children.
func Choice(patterns ...ast.Pattern) ast.Pattern {
	return &ast.Choice{Patterns: patterns}
}

// OneOrMore builds a <oneOrMore> pattern ("+").
func OneOrMore(content ast.Pattern) ast.Pattern {
	return &ast.OneOrMore{Content: content}
}

// ZeroOrMore builds a <zeroOrMore> pattern ("*").
func ZeroOrMore(content ast.Pattern) ast.Pattern {
	return &ast.ZeroOrMore{Content: content}
}

// Optional builds an <optional> pattern ("?").
func Optional(content ast.Pattern) ast.Pattern {
	return &ast.Optional{Content: content}
}

// Mixed builds a <mixed> pattern.
func Mixed(content ast.Pattern) ast.Pattern {
	return &ast.Mixed{Content: content}
}

// Ref builds a <ref name="..."/>.
func Ref(name string) ast.Pattern { return &ast.Ref{Name: name} }

// ParentRef builds a <parentRef name="..."/>.
func ParentRef(name string) ast.Pattern { return &ast.ParentRef{Name: name} }

// ExternalRef builds an <externalRef href="..."/>.
func ExternalRef(href string) ast.Pattern { return &ast.ExternalRef{HRef: href} }

// Define builds a named <define>, defaulting to CombineNone.
func Define(name string, body ast.Pattern) *ast.Define {
	return &ast.Define{Name: name, Body: body}
}

// CombinedDefine builds a <define> that folds under the given combine mode.
func CombinedDefine(name string, combine ast.CombineMode, body ast.Pattern) *ast.Define {
	return &ast.Define{Name: name, Combine: combine, Body: body}
}

// Start builds the grammar's <start> rule.
func Start(body ast.Pattern) *ast.Define {
	return &ast.Define{IsStart: true, Body: body}
}

// Grammar builds a <grammar> out of its top-level defines.
func Grammar(defines ...*ast.Define) *ast.Grammar {
	return &ast.Grammar{Defines: defines}
}

// xsdLibraryURI is the well-known URI identifying the XML Schema datatype
// library, duplicated here (rather than imported) because the compiled
// constant in relaxng/datatype is unexported: a parser produces this
// string verbatim from a schema's datatypeLibrary attribute.
const xsdLibraryURI = "http://www.w3.org/2001/XMLSchema-datatypes"
