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

package relaxng

import "github.com/relaxng/rngcore/relaxng/span"

// Pattern is a closed union over the simplified pattern forms of §2: the
// thirteen node kinds that remain after full schema simplification (grammar,
// define, parentRef, include and div have all been resolved away by the
// compiler; only Ref to a DefineHandle survives, carrying the recursion).
//
// Like NameClass, the concrete types are unexported-marker-sealed, so the
// set of types a type switch over Pattern has to handle is closed to this
// package.
type Pattern interface {
	isPattern()

	// Span locates the pattern in the compiled source. A NotAllowed the
	// compiler substitutes for a failed construct (e.g. an externalRef)
	// carries that construct's span; patterns the validator builds during
	// derivation carry the zero Span.
	Span() span.Span
}

// EmptyPattern matches a node with no content: the empty sequence of
// children and no text.
type EmptyPattern struct {
	NodeSpan span.Span
}

func (*EmptyPattern) isPattern()      {}
func (e *EmptyPattern) Span() span.Span { return e.NodeSpan }

// NotAllowedPattern matches nothing. Cause records why, for diagnostics: the
// compiler sets it when it substitutes NotAllowed for a failed <externalRef>
// or a nested grammar with no definitions, and the validator sets it when it
// knows the reason; other NotAllowed values have a nil Cause.
type NotAllowedPattern struct {
	Cause    error
	NodeSpan span.Span
}

func (*NotAllowedPattern) isPattern()      {}
func (n *NotAllowedPattern) Span() span.Span { return n.NodeSpan }

// TextPattern matches any sequence of characters, including none.
type TextPattern struct {
	NodeSpan span.Span
}

func (*TextPattern) isPattern()      {}
func (t *TextPattern) Span() span.Span { return t.NodeSpan }

// ElementPattern matches an element whose name is matched by NameClass and
// whose children match Content.
type ElementPattern struct {
	NameClass NameClass
	Content   Pattern
	NodeSpan  span.Span
}

func (*ElementPattern) isPattern()      {}
func (e *ElementPattern) Span() span.Span { return e.NodeSpan }

// AttributePattern matches an attribute whose name is matched by NameClass
// and whose value matches Content.
type AttributePattern struct {
	NameClass NameClass
	Content   Pattern
	NodeSpan  span.Span
}

func (*AttributePattern) isPattern()      {}
func (a *AttributePattern) Span() span.Span { return a.NodeSpan }

// ListPattern matches text content by splitting it on whitespace and
// matching the resulting token sequence against Content, per §2 and the
// list-content restriction of §7.
type ListPattern struct {
	Content  Pattern
	NodeSpan span.Span
}

func (*ListPattern) isPattern()      {}
func (l *ListPattern) Span() span.Span { return l.NodeSpan }

// DataPattern matches a string value of the given Datatype, excluding any
// value matched by Except (the content of a <data> element's <except>
// child, nil if absent).
type DataPattern struct {
	Datatype Datatype
	Except   Pattern
	NodeSpan span.Span
}

func (*DataPattern) isPattern()      {}
func (d *DataPattern) Span() span.Span { return d.NodeSpan }

// ValuePattern matches a single literal string value (as written in a
// <value> element), compared using Datatype's value-equality rules and, for
// QName-shaped literals, Context to resolve prefixes.
type ValuePattern struct {
	Datatype Datatype
	Value    string
	Context  DatatypeContext
	NodeSpan span.Span
}

func (*ValuePattern) isPattern()      {}
func (v *ValuePattern) Span() span.Span { return v.NodeSpan }

// GroupPattern matches its Patterns in sequence: each child's trailing
// position must be compatible with the next child's leading position.
type GroupPattern struct {
	Patterns []Pattern
	NodeSpan span.Span
}

func (*GroupPattern) isPattern()      {}
func (g *GroupPattern) Span() span.Span { return g.NodeSpan }

// InterleavePattern matches its Patterns in any interleaving: elements and
// attributes contributed by different branches may appear in any relative
// order, though each branch's own internal order is preserved.
type InterleavePattern struct {
	Patterns []Pattern
	NodeSpan span.Span
}

func (*InterleavePattern) isPattern()      {}
func (i *InterleavePattern) Span() span.Span { return i.NodeSpan }

// ChoicePattern matches whatever any one of its Patterns matches.
type ChoicePattern struct {
	Patterns []Pattern
	NodeSpan span.Span
}

func (*ChoicePattern) isPattern()      {}
func (c *ChoicePattern) Span() span.Span { return c.NodeSpan }

// OneOrMorePattern matches one or more repetitions of Content in sequence.
// "zeroOrMore" and the "?" shorthand are compiler-level sugar desugared to
// combinations of OneOrMorePattern, ChoicePattern and EmptyPattern; they do
// not survive simplification as distinct node kinds.
type OneOrMorePattern struct {
	Content  Pattern
	NodeSpan span.Span
}

func (*OneOrMorePattern) isPattern()      {}
func (o *OneOrMorePattern) Span() span.Span { return o.NodeSpan }

// RefPattern matches whatever Define's pattern matches. It is the only
// surviving form of indirection after simplification, and the only way a
// Pattern graph can contain a cycle: Define.Pattern may (transitively)
// contain a RefPattern pointing back at the same DefineHandle.
type RefPattern struct {
	Define   *DefineHandle
	NodeSpan span.Span
}

func (*RefPattern) isPattern()      {}
func (r *RefPattern) Span() span.Span { return r.NodeSpan }
