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
	"fmt"
	"strings"

	"github.com/relaxng/rngcore/relaxng"
	"github.com/relaxng/rngcore/relaxng/span"
)

// visited guards the Ref-following recursion in every derivative function
// against a cyclic grammar with no intervening element (a schema only a
// pathological author could write, since an ordinary recursive grammar
// always crosses an Element boundary — which starts a fresh frame and a
// fresh visited set — before it can cycle back to the same define). Re-
// entering an already-visited handle returns the conservative answer
// documented at each call site, mirroring the restriction checker's
// visitSet.
type visited map[*relaxng.DefineHandle]bool

func (vs visited) enter(h *relaxng.DefineHandle) (visited, bool) {
	if vs[h] {
		return vs, false
	}
	next := make(visited, len(vs)+1)
	for k := range vs {
		next[k] = true
	}
	next[h] = true
	return next, true
}

// nullable reports whether p can match with no input at all: no
// attributes, no text, no child elements. A cyclic Ref re-entered before
// reaching a base case is conservatively not nullable.
func nullable(p relaxng.Pattern, vs visited) bool {
	switch p := p.(type) {
	case *relaxng.EmptyPattern, *relaxng.TextPattern:
		return true
	case *relaxng.NotAllowedPattern, *relaxng.ElementPattern, *relaxng.AttributePattern,
		*relaxng.ListPattern, *relaxng.DataPattern, *relaxng.ValuePattern:
		return false
	case *relaxng.GroupPattern:
		for _, c := range p.Patterns {
			if !nullable(c, vs) {
				return false
			}
		}
		return true
	case *relaxng.InterleavePattern:
		for _, c := range p.Patterns {
			if !nullable(c, vs) {
				return false
			}
		}
		return true
	case *relaxng.ChoicePattern:
		for _, c := range p.Patterns {
			if nullable(c, vs) {
				return true
			}
		}
		return false
	case *relaxng.OneOrMorePattern:
		return nullable(p.Content, vs)
	case *relaxng.RefPattern:
		next, ok := vs.enter(p.Define)
		if !ok || p.Define.Pattern == nil {
			return false
		}
		return nullable(p.Define.Pattern, next)
	}
	panic("validator: unreachable pattern variant")
}

// admitsText reports whether p has some text-accepting position reachable
// without first crossing a required, not-yet-satisfied non-text item — the
// predicate that governs whether a whitespace-only text run must be
// dropped as insignificant (7.4's "mixed content is not required just
// because whitespace appears" rule generalized to any content model).
// Using nullable(p) here would be wrong: a Group of two required elements
// has no text position anywhere, yet is not nullable at its very start, so
// a nullable-based rule would wrongly reject the whitespace between the
// element's start tag and its first required child.
func admitsText(p relaxng.Pattern, vs visited) bool {
	switch p := p.(type) {
	case *relaxng.TextPattern, *relaxng.DataPattern, *relaxng.ValuePattern, *relaxng.ListPattern:
		return true
	case *relaxng.EmptyPattern, *relaxng.NotAllowedPattern, *relaxng.ElementPattern, *relaxng.AttributePattern:
		return false
	case *relaxng.GroupPattern:
		for _, c := range p.Patterns {
			if admitsText(c, vs) {
				return true
			}
			if !nullable(c, vs) {
				// c is a required, not-yet-satisfied item: no text position
				// beyond it is reachable without first matching c.
				return false
			}
		}
		return false
	case *relaxng.InterleavePattern:
		for _, c := range p.Patterns {
			if admitsText(c, vs) {
				return true
			}
		}
		return false
	case *relaxng.ChoicePattern:
		for _, c := range p.Patterns {
			if admitsText(c, vs) {
				return true
			}
		}
		return false
	case *relaxng.OneOrMorePattern:
		return admitsText(p.Content, vs)
	case *relaxng.RefPattern:
		next, ok := vs.enter(p.Define)
		if !ok || p.Define.Pattern == nil {
			return false
		}
		return admitsText(p.Define.Pattern, next)
	}
	panic("validator: unreachable pattern variant")
}

func isWhitespaceOnly(s string) bool { return strings.TrimSpace(s) == "" }

// validationError builds a *relaxng.Error of the given op/code, wrapping
// cause only when non-nil: relaxng.NewError's variadic dispatch treats an
// explicit nil error argument as an unrecognized argument type rather than
// "no cause", so a nil cause must simply be omitted from the call.
func validationError(message string, op relaxng.Op, code relaxng.Code, cause error) error {
	return validationErrorAt(message, op, code, span.None, cause)
}

// validationErrorAt is validationError with an explicit event span; used
// at the call sites that have one handy to report.
func validationErrorAt(message string, op relaxng.Op, code relaxng.Code, sp span.Span, cause error) error {
	args := []interface{}{op, relaxng.ErrKindValidation, code}
	if sp.IsValid() {
		args = append(args, sp)
	}
	if cause != nil {
		args = append(args, cause)
	}
	return relaxng.NewError(message, args...)
}

// childMatch is one way a start tag for some name could be accepted at a
// content-model position: enter is the matched ElementPattern's own
// Content (what the new child frame derives against), and residual is what
// the searched pattern becomes, at this position, once the child element
// is later found to fully close.
type childMatch struct {
	enter    relaxng.Pattern
	residual relaxng.Pattern
}

// matchChild searches p for every way a start tag named (ns, local) could
// be accepted, per the sequential, nullable-prefix-aware algebra that
// governs element matching through Group (7.4's ordering rule), the
// unordered apply-to-any-branch algebra of Interleave, and the OneOrMore
// recurrence of §4 (Group(deriv p, Choice(OneOrMore(p), Empty))).
func (v *Validator) matchChild(p relaxng.Pattern, ns, local string, vs visited) []childMatch {
	key := fmt.Sprintf("C%d|%s|%s", v.idOf(p), ns, local)
	if cached, ok := v.matchMemo[key]; ok {
		return cached
	}
	result := v.matchChildUncached(p, ns, local, vs)
	v.matchMemo[key] = result
	return result
}

func (v *Validator) matchChildUncached(p relaxng.Pattern, ns, local string, vs visited) []childMatch {
	switch p := p.(type) {
	case *relaxng.EmptyPattern, *relaxng.NotAllowedPattern, *relaxng.TextPattern,
		*relaxng.AttributePattern, *relaxng.DataPattern, *relaxng.ValuePattern, *relaxng.ListPattern:
		return nil

	case *relaxng.ElementPattern:
		if !p.NameClass.Contains(ns, local) {
			return nil
		}
		return []childMatch{{enter: p.Content, residual: v.mkEmpty()}}

	case *relaxng.GroupPattern:
		return v.matchChildGroup(p.Patterns, ns, local, vs)

	case *relaxng.InterleavePattern:
		var out []childMatch
		for i, part := range p.Patterns {
			for _, m := range v.matchChild(part, ns, local, vs) {
				rest := make([]relaxng.Pattern, len(p.Patterns))
				copy(rest, p.Patterns)
				rest[i] = m.residual
				out = append(out, childMatch{enter: m.enter, residual: v.mkInterleave(rest...)})
			}
		}
		return out

	case *relaxng.ChoicePattern:
		var out []childMatch
		for _, part := range p.Patterns {
			out = append(out, v.matchChild(part, ns, local, vs)...)
		}
		return out

	case *relaxng.OneOrMorePattern:
		var out []childMatch
		for _, m := range v.matchChild(p.Content, ns, local, vs) {
			out = append(out, childMatch{
				enter:    m.enter,
				residual: v.mkGroup(m.residual, v.mkChoice(v.mkOneOrMore(p.Content), v.mkEmpty())),
			})
		}
		return out

	case *relaxng.RefPattern:
		next, ok := vs.enter(p.Define)
		if !ok || p.Define.Pattern == nil {
			return nil
		}
		return v.matchChild(p.Define.Pattern, ns, local, next)
	}
	panic("validator: unreachable pattern variant")
}

// matchChildGroup peels parts left to right: an element can be matched
// within parts[0], or — only if parts[0] is nullable, i.e. it can be
// skipped by taking its empty alternative — within the rest, with
// parts[0] then dropped entirely from the residual (its nullable path was
// the one taken).
func (v *Validator) matchChildGroup(parts []relaxng.Pattern, ns, local string, vs visited) []childMatch {
	if len(parts) == 0 {
		return nil
	}
	first, rest := parts[0], parts[1:]

	var out []childMatch
	for _, m := range v.matchChild(first, ns, local, vs) {
		out = append(out, childMatch{enter: m.enter, residual: v.mkGroup(append([]relaxng.Pattern{m.residual}, rest...)...)})
	}
	if nullable(first, vs) {
		out = append(out, v.matchChildGroup(rest, ns, local, vs)...)
	}
	return out
}

// attDeriv derives p with respect to an attribute event: an order-
// independent algebra (7.5) since XML attribute order carries no meaning,
// applied to every branch of Group/Interleave independently and combined
// with mkChoice — the branches a Section 7-conformant schema leaves
// genuinely ambiguous collapse back to one surviving branch once the
// attribute's own name and value have ruled the others out.
func (v *Validator) attDeriv(p relaxng.Pattern, ns, local, value string, ctx relaxng.DatatypeContext, vs visited) relaxng.Pattern {
	key := fmt.Sprintf("A%d|%s|%s|%s", v.idOf(p), ns, local, value)
	if cached, ok := v.attMemo[key]; ok {
		return cached
	}
	result := v.attDerivUncached(p, ns, local, value, ctx, vs)
	v.attMemo[key] = result
	return result
}

func (v *Validator) attDerivUncached(p relaxng.Pattern, ns, local, value string, ctx relaxng.DatatypeContext, vs visited) relaxng.Pattern {
	switch p := p.(type) {
	case *relaxng.EmptyPattern, *relaxng.NotAllowedPattern, *relaxng.TextPattern,
		*relaxng.ElementPattern, *relaxng.DataPattern, *relaxng.ValuePattern, *relaxng.ListPattern:
		return v.mkNotAllowed(nil)

	case *relaxng.AttributePattern:
		if !p.NameClass.Contains(ns, local) {
			return v.mkNotAllowed(nil)
		}
		derived := v.textDeriv(p.Content, value, ctx, vs)
		if !nullable(derived, vs) {
			return v.mkNotAllowed(validationError(
				"value "+quote(value)+" is not allowed for attribute "+quote(local),
				relaxng.Op("validator.AttDeriv"), relaxng.CodeDatatypeError, findCause(derived)))
		}
		return v.mkEmpty()

	case *relaxng.GroupPattern:
		var branches []relaxng.Pattern
		for i := range p.Patterns {
			rest := make([]relaxng.Pattern, len(p.Patterns))
			copy(rest, p.Patterns)
			rest[i] = v.attDeriv(p.Patterns[i], ns, local, value, ctx, vs)
			branches = append(branches, v.mkGroup(rest...))
		}
		return v.mkChoice(branches...)

	case *relaxng.InterleavePattern:
		var branches []relaxng.Pattern
		for i := range p.Patterns {
			rest := make([]relaxng.Pattern, len(p.Patterns))
			copy(rest, p.Patterns)
			rest[i] = v.attDeriv(p.Patterns[i], ns, local, value, ctx, vs)
			branches = append(branches, v.mkInterleave(rest...))
		}
		return v.mkChoice(branches...)

	case *relaxng.ChoicePattern:
		branches := make([]relaxng.Pattern, len(p.Patterns))
		for i, c := range p.Patterns {
			branches[i] = v.attDeriv(c, ns, local, value, ctx, vs)
		}
		return v.mkChoice(branches...)

	case *relaxng.OneOrMorePattern:
		d := v.attDeriv(p.Content, ns, local, value, ctx, vs)
		if isDead(d) {
			return d
		}
		return v.mkGroup(d, v.mkChoice(v.mkOneOrMore(p.Content), v.mkEmpty()))

	case *relaxng.RefPattern:
		next, ok := vs.enter(p.Define)
		if !ok || p.Define.Pattern == nil {
			return v.mkNotAllowed(nil)
		}
		return v.attDeriv(p.Define.Pattern, ns, local, value, ctx, next)
	}
	panic("validator: unreachable pattern variant")
}

// textDeriv derives p with respect to one text event, per §4's six core
// recurrences. The caller drops a whitespace-only run beforehand only when
// admitsText finds no alternative that accepts text; otherwise such runs,
// like list tokens, are derived here as ordinary text.
func (v *Validator) textDeriv(p relaxng.Pattern, text string, ctx relaxng.DatatypeContext, vs visited) relaxng.Pattern {
	key := fmt.Sprintf("T%d|%s", v.idOf(p), text)
	if cached, ok := v.textMemo[key]; ok {
		return cached
	}
	result := v.textDerivUncached(p, text, ctx, vs)
	v.textMemo[key] = result
	return result
}

func (v *Validator) textDerivUncached(p relaxng.Pattern, text string, ctx relaxng.DatatypeContext, vs visited) relaxng.Pattern {
	switch p := p.(type) {
	case *relaxng.EmptyPattern, *relaxng.NotAllowedPattern, *relaxng.ElementPattern, *relaxng.AttributePattern:
		return v.mkNotAllowed(nil)

	case *relaxng.TextPattern:
		return p

	case *relaxng.DataPattern:
		if err := p.Datatype.Allows(text, ctx); err != nil {
			return v.mkNotAllowed(validationError("text "+quote(text)+" is not a valid "+p.Datatype.Name(),
				relaxng.Op("validator.TextDeriv"), relaxng.CodeDatatypeError, err))
		}
		if p.Except != nil {
			excepted := v.textDeriv(p.Except, text, ctx, vs)
			if nullable(excepted, vs) {
				return v.mkNotAllowed(validationError("text "+quote(text)+" matches the except branch of its datatype",
					relaxng.Op("validator.TextDeriv"), relaxng.CodeDatatypeError, nil))
			}
		}
		return v.mkEmpty()

	case *relaxng.ValuePattern:
		equal, err := p.Datatype.Equal(text, p.Value, ctx)
		if err != nil {
			return v.mkNotAllowed(validationError("text "+quote(text)+" could not be compared to "+quote(p.Value),
				relaxng.Op("validator.TextDeriv"), relaxng.CodeDatatypeError, err))
		}
		if !equal {
			return v.mkNotAllowed(validationError("text "+quote(text)+" does not equal "+quote(p.Value),
				relaxng.Op("validator.TextDeriv"), relaxng.CodeDatatypeError, nil))
		}
		return v.mkEmpty()

	case *relaxng.ListPattern:
		return v.textDerivList(p, text, ctx, vs)

	case *relaxng.GroupPattern:
		return v.textDerivGroup(p.Patterns, text, ctx, vs)

	case *relaxng.InterleavePattern:
		var branches []relaxng.Pattern
		for i := range p.Patterns {
			d := v.textDeriv(p.Patterns[i], text, ctx, vs)
			if isDead(d) {
				continue
			}
			rest := make([]relaxng.Pattern, len(p.Patterns))
			copy(rest, p.Patterns)
			rest[i] = d
			branches = append(branches, v.mkInterleave(rest...))
		}
		return v.mkChoice(branches...)

	case *relaxng.ChoicePattern:
		branches := make([]relaxng.Pattern, len(p.Patterns))
		for i, c := range p.Patterns {
			branches[i] = v.textDeriv(c, text, ctx, vs)
		}
		return v.mkChoice(branches...)

	case *relaxng.OneOrMorePattern:
		d := v.textDeriv(p.Content, text, ctx, vs)
		if isDead(d) {
			return d
		}
		return v.mkGroup(d, v.mkChoice(v.mkOneOrMore(p.Content), v.mkEmpty()))

	case *relaxng.RefPattern:
		next, ok := vs.enter(p.Define)
		if !ok || p.Define.Pattern == nil {
			return v.mkNotAllowed(nil)
		}
		return v.textDeriv(p.Define.Pattern, text, ctx, next)
	}
	panic("validator: unreachable pattern variant")
}

// textDerivGroup peels parts left to right exactly as matchChildGroup
// does, but folds the (possibly ambiguous) alternatives into one combined
// residual via mkChoice rather than keeping them as separate frame
// alternatives — a text event never spans a frame boundary, so there is no
// later point at which the ambiguity needs to be told apart again.
func (v *Validator) textDerivGroup(parts []relaxng.Pattern, text string, ctx relaxng.DatatypeContext, vs visited) relaxng.Pattern {
	if len(parts) == 0 {
		return v.mkNotAllowed(nil)
	}
	first, rest := parts[0], parts[1:]

	var branches []relaxng.Pattern
	d := v.textDeriv(first, text, ctx, vs)
	if !isDead(d) {
		branches = append(branches, v.mkGroup(append([]relaxng.Pattern{d}, rest...)...))
	}
	if nullable(first, vs) {
		restDeriv := v.textDerivGroup(rest, text, ctx, vs)
		if !isDead(restDeriv) {
			branches = append(branches, restDeriv)
		}
	}
	return v.mkChoice(branches...)
}

// textDerivList matches an entire text event against a List pattern's
// content in one step: the text is split on XML whitespace (list items
// never contain significant whitespace themselves) and threaded through
// Content token by token, reusing textDeriv as the token matcher since
// Section 7 restricts list content to Data/Value/Choice/Group/OneOrMore of
// those — none of which need the element-aware machinery.
func (v *Validator) textDerivList(p *relaxng.ListPattern, text string, ctx relaxng.DatatypeContext, vs visited) relaxng.Pattern {
	tokens := strings.Fields(text)
	cur := p.Content
	for _, tok := range tokens {
		cur = v.textDeriv(cur, tok, ctx, vs)
		if isDead(cur) {
			return v.mkNotAllowed(validationError("list item "+quote(tok)+" does not match the list's content model",
				relaxng.Op("validator.TextDeriv"), relaxng.CodeDatatypeError, findCause(cur)))
		}
	}
	if !nullable(cur, vs) {
		return v.mkNotAllowed(validationError("list "+quote(text)+" has too few items for its content model",
			relaxng.Op("validator.TextDeriv"), relaxng.CodeDatatypeError, nil))
	}
	return v.mkEmpty()
}

func quote(s string) string { return "\"" + s + "\"" }
