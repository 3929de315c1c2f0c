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

// Package ast defines the tree a RELAX NG parser (compact or XML syntax,
// both out of scope here) is assumed to hand to the compiler: a rooted,
// span-carrying tree in which every node that may introduce namespace or
// datatype-library context carries that context as an inherited attribute
// the parser has already resolved, per the external AST contract.
package ast

import "github.com/relaxng/rngcore/relaxng/span"

// NodeBase is embedded in every AST node. DefaultNS and DatatypeLibrary are
// the inherited attributes the parser propagates down from the nearest
// enclosing ns/datatypeLibrary declaration. The compiler does not read them;
// it uses the URIs already resolved on the name-class, data and value nodes.
type NodeBase struct {
	NodeSpan        span.Span
	DefaultNS       string
	DatatypeLibrary string
}

// Span locates the node in parsed source.
func (b NodeBase) Span() span.Span { return b.NodeSpan }

// Node is satisfied by every AST node.
type Node interface {
	Span() span.Span
}

// Param is a <param> child of a <data> element: a facet name and its
// literal string value.
type Param struct {
	NodeBase
	Name  string
	Value string
}

//===---------------------------------------------------------------===//
// Name classes
//===---------------------------------------------------------------===//

// NameClass is a closed union over the parsed name-class forms of §3.
type NameClass interface {
	Node
	isNameClass()
}

// Name is a single qualified name (a <name> element, or the compact "ns:local"
// or "local" forms).
type Name struct {
	NodeBase
	NamespaceURI string
	LocalName    string
}

func (*Name) isNameClass() {}

// AnyName is a <anyName>, optionally with an <except> child.
type AnyName struct {
	NodeBase
	Except NameClass // nil if no <except>
}

func (*AnyName) isNameClass() {}

// NsName is a <nsName>, optionally with an <except> child.
type NsName struct {
	NodeBase
	NamespaceURI string
	Except       NameClass // nil if no <except>
}

func (*NsName) isNameClass() {}

// NameClassChoice is a <choice> appearing in name-class position.
type NameClassChoice struct {
	NodeBase
	Classes []NameClass
}

func (*NameClassChoice) isNameClass() {}

//===---------------------------------------------------------------===//
// Patterns
//===---------------------------------------------------------------===//

// Pattern is a closed union over every construct that may appear in pattern
// position, including the AST-only sugar (Optional, ZeroOrMore, Mixed) and
// the reference forms (Ref, ParentRef, ExternalRef) that the compiler
// resolves away during simplification. Grammar itself is a Pattern, since a
// <grammar> element may appear anywhere a pattern may.
type Pattern interface {
	Node
	isPattern()
}

// Empty is an <empty> element.
type Empty struct{ NodeBase }

func (*Empty) isPattern() {}

// NotAllowed is a <notAllowed> element.
type NotAllowed struct{ NodeBase }

func (*NotAllowed) isPattern() {}

// Text is a <text> element.
type Text struct{ NodeBase }

func (*Text) isPattern() {}

// Element is an <element> element.
type Element struct {
	NodeBase
	NameClass NameClass
	Content   Pattern
}

func (*Element) isPattern() {}

// Attribute is an <attribute> element.
type Attribute struct {
	NodeBase
	NameClass NameClass
	Content   Pattern
}

func (*Attribute) isPattern() {}

// List is a <list> element.
type List struct {
	NodeBase
	Content Pattern
}

func (*List) isPattern() {}

// Data is a <data> element: a datatype name under a library, zero or more
// <param> facets, and an optional <except> child.
type Data struct {
	NodeBase
	LibraryURI string
	Name       string
	Params     []*Param
	Except     Pattern // nil if no <except>
}

func (*Data) isPattern() {}

// Value is a <value> element: a literal lexical value under a datatype,
// with the namespace bindings in scope at this node so the compiler can
// resolve a QName-shaped literal without the parser needing to understand
// datatypes.
type Value struct {
	NodeBase
	LibraryURI string
	Name       string // "" defaults to the library's token type, per RELAX NG's <value> rule
	Text       string
	Prefixes   map[string]string // prefix -> namespace URI, in scope at this node
}

func (*Value) isPattern() {}

// Group is a <group> element, or the compact "," operator; Patterns holds
// all children already flattened out of nested same-operator groups.
type Group struct {
	NodeBase
	Patterns []Pattern
}

func (*Group) isPattern() {}

// Interleave is an <interleave> element, or the compact "&" operator.
type Interleave struct {
	NodeBase
	Patterns []Pattern
}

func (*Interleave) isPattern() {}

// Choice is a <choice> element in pattern position, or the compact "|"
// operator.
type Choice struct {
	NodeBase
	Patterns []Pattern
}

func (*Choice) isPattern() {}

// OneOrMore is a <oneOrMore> element, or the compact "+" operator.
type OneOrMore struct {
	NodeBase
	Content Pattern
}

func (*OneOrMore) isPattern() {}

// ZeroOrMore is a <zeroOrMore> element, or the compact "*" operator. Sugar
// for Choice(OneOrMore(p), Empty); the compiler desugars it and it never
// appears in the model graph.
type ZeroOrMore struct {
	NodeBase
	Content Pattern
}

func (*ZeroOrMore) isPattern() {}

// Optional is an <optional> element, or the compact "?" operator. Sugar for
// Choice(p, Empty).
type Optional struct {
	NodeBase
	Content Pattern
}

func (*Optional) isPattern() {}

// Mixed is a <mixed> element. Sugar for Interleave(p, Text).
type Mixed struct {
	NodeBase
	Content Pattern
}

func (*Mixed) isPattern() {}

// Ref is a <ref name="..."/>: a reference to a define of the current
// grammar only; an enclosing grammar's defines are reached through
// parentRef, which skips the current scope.
type Ref struct {
	NodeBase
	Name string
}

func (*Ref) isPattern() {}

// ParentRef is a <parentRef name="..."/>: a reference resolved in the
// lexically enclosing grammar, skipping the current grammar's own defines
// even if one shadows the name.
type ParentRef struct {
	NodeBase
	Name string
}

func (*ParentRef) isPattern() {}

// ExternalRef is an <externalRef href="..."/>: splices in another schema
// document's start pattern wholesale, under the href's own default
// namespace and datatype library (not the referencing node's).
type ExternalRef struct {
	NodeBase
	HRef string
}

func (*ExternalRef) isPattern() {}

//===---------------------------------------------------------------===//
// Grammars, defines, includes, divs
//===---------------------------------------------------------------===//

// CombineMode mirrors relaxng.CombineMode at the AST level, before the
// compiler has validated that same-named siblings agree on it.
type CombineMode uint8

// Enumeration of CombineMode.
const (
	CombineNone CombineMode = iota
	CombineChoice
	CombineInterleave
)

// Define is a <define name="..."> or <start> element. IsStart is true for
// <start>; Name is meaningless ("start" is used as the resolved name, by
// the compiler's ruleName) when IsStart is true.
type Define struct {
	NodeBase
	Name    string
	IsStart bool
	Combine CombineMode
	Body    Pattern
}

// Div is a <div> element: a grouping construct that contributes its
// Defines, Includes and nested Divs to the enclosing grammar as if it had
// not been present (div introduces no scope of its own; the compiler
// flattens it away during simplification).
type Div struct {
	NodeBase
	Defines  []*Define
	Includes []*Include
	Divs     []*Div
}

// Include is an <include href="..."> element: splices another grammar's
// defines into this one, with Overrides (and nested Divs' defines)
// replacing same-named definitions from the included file entirely rather
// than combining with them.
type Include struct {
	NodeBase
	HRef      string
	Overrides []*Define
	Divs      []*Div
}

// Grammar is a <grammar> element. It is itself a Pattern (a <grammar> may
// appear in pattern position, and the document root is always either a
// <grammar> or a single pattern the compiler wraps in an implicit one).
type Grammar struct {
	NodeBase
	Defines  []*Define
	Includes []*Include
	Divs     []*Div
}

func (*Grammar) isPattern() {}
