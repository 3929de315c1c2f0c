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

package validator

import (
	"github.com/relaxng/rngcore/relaxng"
	"github.com/relaxng/rngcore/relaxng/span"
)

// EventKind enumerates the XML infoset occurrences a Tokenizer delivers, per
// the tokenizer contract of §6: a start-element is always immediately
// followed by that element's Attribute events and then one StartTagClose
// marker, before any Text/child/EndElement event for that element.
type EventKind uint8

// Enumeration of EventKind.
const (
	StartElement EventKind = iota
	Attribute
	StartTagClose
	Text
	ProcessingInstruction
	Comment
	EndElement
)

func (k EventKind) String() string {
	switch k {
	case StartElement:
		return "start-element"
	case Attribute:
		return "attribute"
	case StartTagClose:
		return "start-tag-close"
	case Text:
		return "text"
	case ProcessingInstruction:
		return "processing-instruction"
	case Comment:
		return "comment"
	case EndElement:
		return "end-element"
	}
	return "unknown event"
}

// Event is one XML infoset occurrence, in document order, with entity
// references already resolved by whatever produced the Tokenizer.
type Event struct {
	Kind EventKind

	// NamespaceURI and LocalName name the element or attribute for
	// StartElement and Attribute events; both are empty for the other kinds.
	NamespaceURI string
	LocalName    string

	// Value is the attribute's literal value for an Attribute event, or the
	// run of character data for a Text event; empty for the other kinds.
	Value string

	// NSContext resolves the namespace prefix bindings in scope at this
	// event's location, needed when Value denotes a QName-shaped datatype
	// (xsd:QName). May be nil when the event cannot carry a
	// QName-valued literal or the caller has none to offer.
	NSContext relaxng.DatatypeContext

	// Span locates the event in its source document.
	Span span.Span
}

// Tokenizer is a pull iterator over Events: Next returns iterator.Done (see
// the iterator package) once the stream is exhausted, the same shape the
// teacher's own pull-based iterators use.
type Tokenizer interface {
	Next() (Event, error)
}
