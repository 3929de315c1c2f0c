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

// NameClass is a closed union over the name class forms of §3: a single
// qualified name, any name (optionally with an exception), a namespace
// wildcard (optionally with an exception), or a choice of name classes.
//
// The concrete types are unexported-marker-sealed so a type switch over
// NameClass can be exhaustive without a default case.
type NameClass interface {
	isNameClass()

	// Span locates the name class in the compiled source, or span.None if it
	// was synthesized (e.g. during restriction rewriting).
	Span() span.Span

	// Contains reports whether the name class matches the given expanded
	// name. localName "*" never matches anything but a wildcard; ns is the
	// expanded namespace URI ("" for no namespace).
	Contains(ns, localName string) bool
}

// QName is a name class containing exactly one expanded name.
type QName struct {
	NamespaceURI string
	LocalName    string
	NodeSpan     span.Span
}

func (*QName) isNameClass()      {}
func (q *QName) Span() span.Span { return q.NodeSpan }

// Contains reports whether (ns, localName) equals the QName.
func (q *QName) Contains(ns, localName string) bool {
	return q.NamespaceURI == ns && q.LocalName == localName
}

// AnyNameClass matches any expanded name, except those matched by Except
// (which is nil for a plain "anyName").
type AnyNameClass struct {
	Except   NameClass
	NodeSpan span.Span
}

func (*AnyNameClass) isNameClass()      {}
func (a *AnyNameClass) Span() span.Span { return a.NodeSpan }

// Contains reports whether ns/localName is matched by the wildcard and not
// excluded.
func (a *AnyNameClass) Contains(ns, localName string) bool {
	if a.Except != nil && a.Except.Contains(ns, localName) {
		return false
	}
	return true
}

// NsNameClass matches any name in a given namespace, except those matched
// by Except.
type NsNameClass struct {
	NamespaceURI string
	Except       NameClass
	NodeSpan     span.Span
}

func (*NsNameClass) isNameClass()      {}
func (n *NsNameClass) Span() span.Span { return n.NodeSpan }

// Contains reports whether ns matches NamespaceURI and localName is not
// excluded.
func (n *NsNameClass) Contains(ns, localName string) bool {
	if ns != n.NamespaceURI {
		return false
	}
	if n.Except != nil && n.Except.Contains(ns, localName) {
		return false
	}
	return true
}

// ChoiceNameClass matches any name matched by one of its Classes.
type ChoiceNameClass struct {
	Classes  []NameClass
	NodeSpan span.Span
}

func (*ChoiceNameClass) isNameClass()      {}
func (c *ChoiceNameClass) Span() span.Span { return c.NodeSpan }

// Contains reports whether any branch matches.
func (c *ChoiceNameClass) Contains(ns, localName string) bool {
	for _, class := range c.Classes {
		if class.Contains(ns, localName) {
			return true
		}
	}
	return false
}
