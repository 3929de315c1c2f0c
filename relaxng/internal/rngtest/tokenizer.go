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
	"github.com/relaxng/rngcore/iterator"
	"github.com/relaxng/rngcore/relaxng"
	"github.com/relaxng/rngcore/relaxng/validator"
)

// Events is a canned validator.Tokenizer backed by a pre-built slice,
// standing in for the streaming XML tokenizer that is out of scope for
// this core (§1): tests hand-assemble the event sequence a tokenizer
// would have produced.
type Events struct {
	events []validator.Event
	pos    int
}

// NewEvents builds an Events tokenizer over the given events.
func NewEvents(events ...validator.Event) *Events {
	return &Events{events: events}
}

// Next implements validator.Tokenizer.
func (e *Events) Next() (validator.Event, error) {
	if e.pos >= len(e.events) {
		return validator.Event{}, iterator.Done
	}
	ev := e.events[e.pos]
	e.pos++
	return ev, nil
}

// emptyCtx is a relaxng.DatatypeContext with no namespace bindings, used
// for events that never carry a QName-shaped literal.
type emptyCtx struct{}

func (emptyCtx) ResolveNamespacePrefix(prefix string) (string, bool) { return "", false }

// EmptyCtx is a DatatypeContext that resolves no prefixes.
var EmptyCtx = emptyCtx{}

// StartEl builds a StartElement event for an unqualified local name.
func StartEl(local string) validator.Event {
	return validator.Event{Kind: validator.StartElement, LocalName: local}
}

// StartElNS builds a StartElement event for a namespace-qualified name.
func StartElNS(ns, local string) validator.Event {
	return validator.Event{Kind: validator.StartElement, NamespaceURI: ns, LocalName: local}
}

// Att builds an Attribute event for an unqualified attribute name.
func Att(local, value string) validator.Event {
	return validator.Event{Kind: validator.Attribute, LocalName: local, Value: value, NSContext: EmptyCtx}
}

// AttCtx builds an Attribute event carrying an explicit namespace context
// (for QName-valued attribute literals).
func AttCtx(local, value string, ctx relaxng.DatatypeContext) validator.Event {
	return validator.Event{Kind: validator.Attribute, LocalName: local, Value: value, NSContext: ctx}
}

// TagClose builds a StartTagClose event.
func TagClose() validator.Event { return validator.Event{Kind: validator.StartTagClose} }

// Txt builds a Text event.
func Txt(s string) validator.Event {
	return validator.Event{Kind: validator.Text, Value: s, NSContext: EmptyCtx}
}

// TxtCtx builds a Text event carrying an explicit namespace context (for
// QName-valued text literals).
func TxtCtx(s string, ctx relaxng.DatatypeContext) validator.Event {
	return validator.Event{Kind: validator.Text, Value: s, NSContext: ctx}
}

// PrefixCtx is a relaxng.DatatypeContext backed by a literal prefix->URI
// map, standing in for the namespace bindings a tokenizer attaches to an
// event.
type PrefixCtx map[string]string

// ResolveNamespacePrefix implements relaxng.DatatypeContext.
func (c PrefixCtx) ResolveNamespacePrefix(prefix string) (string, bool) {
	uri, ok := c[prefix]
	return uri, ok
}

// PI builds a ProcessingInstruction event.
func PI() validator.Event { return validator.Event{Kind: validator.ProcessingInstruction} }

// Comment builds a Comment event.
func Comment() validator.Event { return validator.Event{Kind: validator.Comment} }

// EndEl builds an EndElement event.
func EndEl() validator.Event { return validator.Event{Kind: validator.EndElement} }
