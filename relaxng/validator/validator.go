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

// Package validator implements streaming RELAX NG instance validation by
// taking the Brzozowski derivative of a compiled relaxng.Schema's pattern
// graph with respect to each XML infoset event in turn (§4): a document is
// valid iff every event's derivative stays reachable (never collapses every
// live alternative to NotAllowed) and the root pattern is nullable once the
// stream ends.
package validator

import (
	"strings"

	"github.com/relaxng/rngcore/iterator"
	"github.com/relaxng/rngcore/relaxng"
	"github.com/relaxng/rngcore/relaxng/span"
)

// alt is one still-live way the document so far could match the grammar.
// content is this element's own content model, progressively derived by
// its attributes, text and children. parentAlt/parentResidual together
// record, without needing a synthetic "After" pattern node spliced into
// the closed relaxng.Pattern union, what the enclosing frame's matching
// alternative becomes once this element is found to close cleanly:
// parentAlt identifies *which* alternative of the enclosing frame this
// element was entered from (by pointer identity, so several children
// opened from different enclosing alternatives are never confused with
// each other), and parentResidual is the pattern that alternative's
// content becomes, in place of the Element pattern that matched, once
// this element's own content turns out to be nullable. Because parentAlt
// itself carries its own parentAlt/parentResidual pointing one level
// further up, the chain reaches all the way back to the document root
// without a fixed-depth field count — an arbitrarily ambiguous, arbitrarily
// deep grammar is handled the same way a two-level one is.
type alt struct {
	content        relaxng.Pattern
	parentAlt      *alt
	parentResidual relaxng.Pattern
}

// frame is the validator's state for one currently open element.
type frame struct {
	ns, local string
	startSpan span.Span
	alts      []*alt

	// pendingText accumulates consecutive Text events, with intervening
	// ProcessingInstruction/Comment events skipped rather than flushing,
	// so a processing instruction or comment in the middle of a run of
	// character data does not split it into two text nodes.
	pendingText    strings.Builder
	havePending    bool
	pendingCtx     relaxng.DatatypeContext
	pendingSpan    span.Span
	attrsOpen      bool // true until this element's StartTagClose event
}

// Validator drives one streaming validation run against an immutable
// compiled Schema. A Validator owns its own memo tables and must not be
// shared across concurrently running validations; the Schema itself has no
// such restriction and may back any number of Validators at once (§5).
type Validator struct {
	schema *relaxng.Schema

	frames []*frame

	idTable  *ids
	interned *interner

	matchMemo map[string][]childMatch
	attMemo   map[string]relaxng.Pattern
	textMemo  map[string]relaxng.Pattern

	sharedEmpty      relaxng.Pattern
	sharedNotAllowed relaxng.Pattern

	err error
}

// New prepares a Validator for schema's start pattern. schema is assumed
// to have already passed restriction.Check; New does not re-run it.
func New(schema *relaxng.Schema) *Validator {
	v := &Validator{
		schema:           schema,
		idTable:          newIDs(),
		interned:         newInterner(),
		matchMemo:        make(map[string][]childMatch),
		attMemo:          make(map[string]relaxng.Pattern),
		textMemo:         make(map[string]relaxng.Pattern),
		sharedEmpty:      &relaxng.EmptyPattern{},
		sharedNotAllowed: &relaxng.NotAllowedPattern{},
	}
	root := &alt{content: schema.Start}
	v.frames = []*frame{{alts: []*alt{root}}}
	return v
}

func (v *Validator) idOf(p relaxng.Pattern) int { return v.idTable.idOf(p) }

func (v *Validator) top() *frame { return v.frames[len(v.frames)-1] }

// Err reports the first error this Validator encountered, or nil if
// validation is still (so far) proceeding cleanly. Once set it never
// clears: the derivative algebra is fail-fast, per §4 — the first
// NotAllowed on a path ends that run, there is no backtracking to try an
// alternative reading of the events already consumed.
func (v *Validator) Err() error { return v.err }

func (v *Validator) fail(err error) error {
	if v.err == nil {
		v.err = err
	}
	return err
}

// StartElement derives the current frame's alternatives with respect to
// opening a child element named (ns, local) and pushes a new frame for it.
func (v *Validator) StartElement(ns, local string, sp span.Span) error {
	if v.err != nil {
		return v.err
	}
	cur := v.top()
	if err := v.flushText(cur); err != nil {
		return err
	}

	vs := visited{}
	var next []*alt
	for _, a := range cur.alts {
		for _, m := range v.matchChild(a.content, ns, local, vs) {
			next = append(next, &alt{content: m.enter, parentAlt: a, parentResidual: m.residual})
		}
	}
	if len(next) == 0 {
		return v.fail(validationErrorAt("unexpected element "+qname(ns, local),
			relaxng.Op("validator.StartElement"), relaxng.CodeUnexpectedElement, sp, nil))
	}

	v.frames = append(v.frames, &frame{ns: ns, local: local, startSpan: sp, alts: next, attrsOpen: true})
	return nil
}

// Attribute derives the current (still attribute-open) frame's
// alternatives with respect to one attribute occurrence.
func (v *Validator) Attribute(ns, local, value string, ctx relaxng.DatatypeContext, sp span.Span) error {
	if v.err != nil {
		return v.err
	}
	cur := v.top()
	vs := visited{}
	var causeOfDeath error
	next := make([]*alt, 0, len(cur.alts))
	for _, a := range cur.alts {
		d := v.attDeriv(a.content, ns, local, value, ctx, vs)
		if isDead(d) {
			if causeOfDeath == nil {
				causeOfDeath = findCause(d)
			}
			continue
		}
		next = append(next, &alt{content: d, parentAlt: a.parentAlt, parentResidual: a.parentResidual})
	}
	if len(next) == 0 {
		return v.fail(validationErrorAt("unexpected attribute "+qname(ns, local),
			relaxng.Op("validator.Attribute"), relaxng.CodeUnexpectedAttribute, sp, causeOfDeath))
	}
	cur.alts = next
	return nil
}

// StartTagClose marks the end of the current frame's attributes: any
// attribute position still structurally required but unmatched becomes
// dead from here on, surfacing as MissingAttribute if that kills every
// alternative.
func (v *Validator) StartTagClose(sp span.Span) error {
	if v.err != nil {
		return v.err
	}
	cur := v.top()
	cur.attrsOpen = false

	next := make([]*alt, 0, len(cur.alts))
	for _, a := range cur.alts {
		d := v.startTagCloseDeriv(a.content)
		if isDead(d) {
			continue
		}
		next = append(next, &alt{content: d, parentAlt: a.parentAlt, parentResidual: a.parentResidual})
	}
	if len(next) == 0 {
		return v.fail(validationErrorAt("element is missing a required attribute",
			relaxng.Op("validator.StartTagClose"), relaxng.CodeMissingAttribute, sp, nil))
	}
	cur.alts = next
	return nil
}

// startTagCloseDeriv substitutes NotAllowed for every Attribute pattern
// still reachable in p, since no further attributes can arrive once the
// start tag has closed; everything else is left as is.
func (v *Validator) startTagCloseDeriv(p relaxng.Pattern) relaxng.Pattern {
	switch p := p.(type) {
	case *relaxng.AttributePattern:
		return v.mkNotAllowed(nil)
	case *relaxng.GroupPattern:
		parts := make([]relaxng.Pattern, len(p.Patterns))
		for i, c := range p.Patterns {
			parts[i] = v.startTagCloseDeriv(c)
		}
		return v.mkGroup(parts...)
	case *relaxng.InterleavePattern:
		parts := make([]relaxng.Pattern, len(p.Patterns))
		for i, c := range p.Patterns {
			parts[i] = v.startTagCloseDeriv(c)
		}
		return v.mkInterleave(parts...)
	case *relaxng.ChoicePattern:
		parts := make([]relaxng.Pattern, len(p.Patterns))
		for i, c := range p.Patterns {
			parts[i] = v.startTagCloseDeriv(c)
		}
		return v.mkChoice(parts...)
	case *relaxng.OneOrMorePattern:
		return v.mkOneOrMore(v.startTagCloseDeriv(p.Content))
	case *relaxng.RefPattern:
		// A Ref's own Define body is shared across every occurrence of that
		// name in the document; rewriting it here would corrupt every other
		// open element validating against the same Define. Attribute
		// positions reached only through a Ref are exceedingly rare in
		// practice (an attribute pattern nested inside a referenced element
		// body belongs to that nested element, not this one) and are left
		// alone: they simply cannot be closed off early this way.
		return p
	default:
		return p
	}
}

// Text derives the current frame's alternatives with respect to one text
// event. Consecutive Text events (with ProcessingInstruction/Comment
// events skipped over) are accumulated and only actually derived against
// at the next structural event, since RELAX NG text matching operates on
// whole text nodes and a tokenizer may split one logical run into several
// events around an escaped or skipped construct.
func (v *Validator) Text(s string, ctx relaxng.DatatypeContext, sp span.Span) error {
	if v.err != nil {
		return v.err
	}
	cur := v.top()
	if !cur.havePending {
		cur.pendingSpan = sp
	} else {
		cur.pendingSpan = span.Cover(cur.pendingSpan, sp)
	}
	cur.pendingText.WriteString(s)
	cur.pendingCtx = ctx
	cur.havePending = true
	return nil
}

// ProcessingInstruction and Comment are pure no-ops: neither can affect a
// content model's matching and neither breaks a surrounding text run.
func (v *Validator) ProcessingInstruction(sp span.Span) error { return v.err }
func (v *Validator) Comment(sp span.Span) error               { return v.err }

// flushText applies the frame's accumulated pending text (if any) against
// every alternative, dropping it silently first if it is whitespace-only
// and no alternative has any text-accepting position at all.
func (v *Validator) flushText(f *frame) error {
	if !f.havePending {
		return nil
	}
	text := f.pendingText.String()
	sp := f.pendingSpan
	f.havePending = false
	f.pendingText.Reset()

	if isWhitespaceOnly(text) {
		anyAdmits := false
		for _, a := range f.alts {
			if admitsText(a.content, visited{}) {
				anyAdmits = true
				break
			}
		}
		if !anyAdmits {
			return nil
		}
	}

	vs := visited{}
	var anyAdmitted bool
	var causeOfDeath error
	next := make([]*alt, 0, len(f.alts))
	for _, a := range f.alts {
		if admitsText(a.content, vs) {
			anyAdmitted = true
		}
		d := v.textDeriv(a.content, text, f.pendingCtx, vs)
		if isDead(d) {
			if causeOfDeath == nil {
				causeOfDeath = findCause(d)
			}
			continue
		}
		next = append(next, &alt{content: d, parentAlt: a.parentAlt, parentResidual: a.parentResidual})
	}
	if len(next) == 0 {
		code := relaxng.CodeTextNotAllowed
		if !anyAdmitted {
			code = relaxng.CodeUnexpectedText
		}
		return v.fail(validationErrorAt("text "+quote(text)+" is not allowed here",
			relaxng.Op("validator.Text"), code, sp, causeOfDeath))
	}
	f.alts = next
	return nil
}

// EndElement closes the current frame: the frame's content must be
// nullable along at least one alternative, and that alternative's
// parentResidual is spliced back into the enclosing frame in place of the
// Element pattern that was opened.
func (v *Validator) EndElement(sp span.Span) error {
	if v.err != nil {
		return v.err
	}
	cur := v.top()
	if err := v.flushText(cur); err != nil {
		return err
	}

	type group struct {
		parentAlt *alt
		residuals []relaxng.Pattern
	}
	groups := make(map[*alt]*group)
	var order []*alt
	var causeOfDeath error

	for _, a := range cur.alts {
		if !nullable(a.content, visited{}) {
			if causeOfDeath == nil {
				causeOfDeath = findCause(a.content)
			}
			continue
		}
		g, ok := groups[a.parentAlt]
		if !ok {
			g = &group{parentAlt: a.parentAlt}
			groups[a.parentAlt] = g
			order = append(order, a.parentAlt)
		}
		g.residuals = append(g.residuals, a.parentResidual)
	}
	if len(order) == 0 {
		return v.fail(validationErrorAt("element "+qname(cur.ns, cur.local)+" ends before its content is complete",
			relaxng.Op("validator.EndElement"), relaxng.CodePrematureEndOfContent, sp, causeOfDeath))
	}

	v.frames = v.frames[:len(v.frames)-1]
	parent := v.top()
	replacement := make([]*alt, 0, len(order))
	for _, pa := range order {
		g := groups[pa]
		combined := v.mkChoice(g.residuals...)
		replacement = append(replacement, &alt{
			content:        combined,
			parentAlt:      parentOf(pa),
			parentResidual: residualOf(pa),
		})
	}
	parent.alts = replacement
	return nil
}

func parentOf(a *alt) *alt {
	if a == nil {
		return nil
	}
	return a.parentAlt
}

func residualOf(a *alt) relaxng.Pattern {
	if a == nil {
		return nil
	}
	return a.parentResidual
}

// Finish checks that the document-level content is complete: the root
// frame's content must be nullable along at least one alternative. Finish
// must be called after the last EndElement of the document's single root
// element (there are no sibling frames left to pop by that point).
func (v *Validator) Finish() error {
	if v.err != nil {
		return v.err
	}
	if len(v.frames) != 1 {
		return v.fail(validationError("document ended with open elements",
			relaxng.Op("validator.Finish"), relaxng.CodePrematureEndOfContent, nil))
	}
	root := v.top()
	if err := v.flushText(root); err != nil {
		return err
	}
	for _, a := range root.alts {
		if nullable(a.content, visited{}) {
			return nil
		}
	}
	var cause error
	for _, a := range root.alts {
		if c := findCause(a.content); c != nil {
			cause = c
			break
		}
	}
	return v.fail(validationError("document does not match the schema's start pattern",
		relaxng.Op("validator.Finish"), relaxng.CodePrematureEndOfContent, cause))
}

// Validate drives a full validation run by pulling every Event from t and
// feeding it to the matching Validator method, stopping at the first
// error (the derivative algebra is fail-fast: once every live alternative
// has died there is nothing left to validate against).
func Validate(schema *relaxng.Schema, t Tokenizer) relaxng.Errors {
	v := New(schema)
	for {
		ev, err := t.Next()
		if err != nil {
			if err == iterator.Done {
				break
			}
			var errs relaxng.Errors
			errs.Emplace(err.Error(), relaxng.Op("validator.Validate"), relaxng.ErrKindValidation)
			return errs
		}
		if verr := v.dispatch(ev); verr != nil {
			var errs relaxng.Errors
			errs.Append(verr)
			return errs
		}
	}
	if verr := v.Finish(); verr != nil {
		var errs relaxng.Errors
		errs.Append(verr)
		return errs
	}
	return relaxng.NoErrors()
}

func (v *Validator) dispatch(ev Event) error {
	switch ev.Kind {
	case StartElement:
		return v.StartElement(ev.NamespaceURI, ev.LocalName, ev.Span)
	case Attribute:
		return v.Attribute(ev.NamespaceURI, ev.LocalName, ev.Value, ev.NSContext, ev.Span)
	case StartTagClose:
		return v.StartTagClose(ev.Span)
	case Text:
		return v.Text(ev.Value, ev.NSContext, ev.Span)
	case ProcessingInstruction:
		return v.ProcessingInstruction(ev.Span)
	case Comment:
		return v.Comment(ev.Span)
	case EndElement:
		return v.EndElement(ev.Span)
	}
	panic("validator: unreachable event kind")
}

func qname(ns, local string) string {
	if ns == "" {
		return quote(local)
	}
	return quote("{" + ns + "}" + local)
}
