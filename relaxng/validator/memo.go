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
)

// ids assigns a stable integer identity to every relaxng.Pattern node the
// validator has seen, derived ones included. Identity, not structural
// equality, is what the memo tables key on: two distinct *GroupPattern
// values with identical children get distinct ids unless they were produced
// through intern (below), which is exactly the point — intern is what
// collapses structurally-identical derived nodes back down to one id so the
// memo tables actually pay off across branches of a Choice.
type ids struct {
	next int
	m    map[relaxng.Pattern]int
}

func newIDs() *ids { return &ids{m: make(map[relaxng.Pattern]int)} }

func (t *ids) idOf(p relaxng.Pattern) int {
	if p == nil {
		return 0
	}
	if id, ok := t.m[p]; ok {
		return id
	}
	t.next++
	t.m[p] = t.next
	return t.next
}

// interner hash-conses derived patterns by a structural fingerprint of their
// constructor and already-interned child ids, so repeated derivatives along
// different paths of an ambiguous grammar converge back onto one node
// instead of growing the working pattern set without bound. This is the
// generalization of the teacher's identity cache over constructed types
// (compare graphql's type_creator.go createdTypes map) to a recursive,
// structural key instead of a flat name.
type interner struct {
	byKey map[string]relaxng.Pattern
}

func newInterner() *interner { return &interner{byKey: make(map[string]relaxng.Pattern)} }

// mkNotAllowed returns the canonical NotAllowed, carrying cause as its
// diagnostic Cause when the derivative that produced it knows one.
func (v *Validator) mkNotAllowed(cause error) relaxng.Pattern {
	if cause == nil {
		return v.sharedNotAllowed
	}
	return &relaxng.NotAllowedPattern{Cause: cause}
}

func (v *Validator) mkEmpty() relaxng.Pattern { return v.sharedEmpty }

// mkChoice builds a simplified Choice over parts: NotAllowed branches are
// dropped (they can never contribute a match), and a single surviving
// branch collapses to that branch directly rather than a one-element
// Choice, keeping the working pattern set from growing without bound along
// derivative chains that repeatedly hit dead branches.
func (v *Validator) mkChoice(parts ...relaxng.Pattern) relaxng.Pattern {
	var live []relaxng.Pattern
	var cause error
	for _, p := range parts {
		if isDead(p) {
			if cause == nil {
				cause = findCause(p)
			}
			continue
		}
		live = append(live, p)
	}
	switch len(live) {
	case 0:
		return v.mkNotAllowed(cause)
	case 1:
		return live[0]
	}
	return v.intern(keyChoice(v, live), func() relaxng.Pattern {
		return &relaxng.ChoicePattern{Patterns: live}
	})
}

// mkGroup builds a simplified Group: a NotAllowed child makes the whole
// group dead; an Empty child is elided since it contributes nothing to the
// sequence.
func (v *Validator) mkGroup(parts ...relaxng.Pattern) relaxng.Pattern {
	var live []relaxng.Pattern
	for _, p := range parts {
		if isDead(p) {
			return v.mkNotAllowed(findCause(p))
		}
		if isEmpty(p) {
			continue
		}
		live = append(live, p)
	}
	switch len(live) {
	case 0:
		return v.mkEmpty()
	case 1:
		return live[0]
	}
	return v.intern(keyGroup(v, live), func() relaxng.Pattern {
		return &relaxng.GroupPattern{Patterns: live}
	})
}

// mkInterleave mirrors mkGroup's dead/empty simplification for Interleave,
// whose children are unordered.
func (v *Validator) mkInterleave(parts ...relaxng.Pattern) relaxng.Pattern {
	var live []relaxng.Pattern
	for _, p := range parts {
		if isDead(p) {
			return v.mkNotAllowed(findCause(p))
		}
		if isEmpty(p) {
			continue
		}
		live = append(live, p)
	}
	switch len(live) {
	case 0:
		return v.mkEmpty()
	case 1:
		return live[0]
	}
	return v.intern(keyInterleave(v, live), func() relaxng.Pattern {
		return &relaxng.InterleavePattern{Patterns: live}
	})
}

// mkOneOrMore returns the canonical OneOrMore(content), or NotAllowed
// directly if content is already dead (one-or-more of nothing matchable can
// never match).
func (v *Validator) mkOneOrMore(content relaxng.Pattern) relaxng.Pattern {
	if isDead(content) {
		return v.mkNotAllowed(findCause(content))
	}
	return v.intern(fmt.Sprintf("1+(%d)", v.idOf(content)), func() relaxng.Pattern {
		return &relaxng.OneOrMorePattern{Content: content}
	})
}

func (v *Validator) intern(key string, build func() relaxng.Pattern) relaxng.Pattern {
	if p, ok := v.interned.byKey[key]; ok {
		return p
	}
	p := build()
	v.interned.byKey[key] = p
	v.idOf(p) // assign an id eagerly so later fingerprints referencing it are stable
	return p
}

func keyChoice(v *Validator, parts []relaxng.Pattern) string  { return keyN(v, "|", parts) }
func keyGroup(v *Validator, parts []relaxng.Pattern) string   { return keyN(v, ",", parts) }
func keyInterleave(v *Validator, parts []relaxng.Pattern) string { return keyN(v, "&", parts) }

func keyN(v *Validator, op string, parts []relaxng.Pattern) string {
	var b strings.Builder
	b.WriteByte('(')
	for i, p := range parts {
		if i > 0 {
			b.WriteString(op)
		}
		fmt.Fprintf(&b, "%d", v.idOf(p))
	}
	b.WriteByte(')')
	return b.String()
}

// isEmpty reports whether p is structurally Empty (not merely nullable).
func isEmpty(p relaxng.Pattern) bool {
	_, ok := p.(*relaxng.EmptyPattern)
	return ok
}

// isDead reports whether p is structurally NotAllowed: once a derivative
// collapses to NotAllowed there is no alternative path left to try on this
// branch, which is what lets the validator fail fast instead of
// backtracking.
func isDead(p relaxng.Pattern) bool {
	_, ok := p.(*relaxng.NotAllowedPattern)
	return ok
}

// findCause recovers the most specific diagnostic cause recorded on a dead
// pattern, if any, so a validation failure can report why rather than just
// that.
func findCause(p relaxng.Pattern) error {
	if na, ok := p.(*relaxng.NotAllowedPattern); ok {
		return na.Cause
	}
	return nil
}
