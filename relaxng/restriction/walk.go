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

// Package restriction implements the Section 7 checks that a compiled
// relaxng.Schema must pass before any instance is validated against it:
// start-contentfulness, the xmlns attribute prohibition, attribute/list
// nesting, data-except content, and the interleave/group/oneOrMore
// disjointness rules.
package restriction

import "github.com/relaxng/rngcore/relaxng"

// visitSet tracks DefineHandles already entered by the current query, so a
// cyclic grammar (e.g. `A = element a { B }; B = element b { A }`) doesn't
// recurse forever. Queries that hit an already-visited handle return the
// conservative answer for that query (documented at each call site) rather
// than erroring: a cycle is a compiler/model-graph concern, not a
// restriction violation by itself.
type visitSet map[*relaxng.DefineHandle]bool

func (v visitSet) enter(h *relaxng.DefineHandle) (visitSet, bool) {
	if v[h] {
		return v, false
	}
	next := make(visitSet, len(v)+1)
	for k := range v {
		next[k] = true
	}
	next[h] = true
	return next, true
}

// containsElementPath reports whether p can match a top-level element
// along some path: used for the start-contentful check (7.1), where the
// answer for a cycle we've already entered is conservatively false (a
// schema that can only reach "contentful" through infinite unguarded
// recursion isn't usefully element-contentful either).
func containsElementPath(p relaxng.Pattern, visited visitSet) bool {
	switch p := p.(type) {
	case *relaxng.ElementPattern:
		return true
	case *relaxng.ChoicePattern:
		for _, c := range p.Patterns {
			if containsElementPath(c, visited) {
				return true
			}
		}
		return false
	case *relaxng.GroupPattern:
		for _, c := range p.Patterns {
			if containsElementPath(c, visited) {
				return true
			}
		}
		return false
	case *relaxng.InterleavePattern:
		for _, c := range p.Patterns {
			if containsElementPath(c, visited) {
				return true
			}
		}
		return false
	case *relaxng.OneOrMorePattern:
		return containsElementPath(p.Content, visited)
	case *relaxng.RefPattern:
		next, ok := visited.enter(p.Define)
		if !ok {
			return false
		}
		if p.Define.Pattern == nil {
			return false
		}
		return containsElementPath(p.Define.Pattern, next)
	default:
		return false
	}
}

// hasDirectText reports whether p can match text content directly, without
// crossing into a nested element's own content — used for the interleave
// text-overlap check (7.6: two interleave branches must not both be able
// to match text at the top level).
func hasDirectText(p relaxng.Pattern, visited visitSet) bool {
	switch p := p.(type) {
	case *relaxng.TextPattern:
		return true
	case *relaxng.ChoicePattern:
		for _, c := range p.Patterns {
			if hasDirectText(c, visited) {
				return true
			}
		}
		return false
	case *relaxng.GroupPattern:
		for _, c := range p.Patterns {
			if hasDirectText(c, visited) {
				return true
			}
		}
		return false
	case *relaxng.InterleavePattern:
		for _, c := range p.Patterns {
			if hasDirectText(c, visited) {
				return true
			}
		}
		return false
	case *relaxng.OneOrMorePattern:
		return hasDirectText(p.Content, visited)
	case *relaxng.RefPattern:
		next, ok := visited.enter(p.Define)
		if !ok {
			return false
		}
		if p.Define.Pattern == nil {
			return false
		}
		return hasDirectText(p.Define.Pattern, next)
	default:
		return false
	}
}

// attributeNameClasses collects the NameClass of every Attribute pattern
// reachable from p without crossing an Element boundary (an attribute
// belongs to the element that directly contains it, not to that element's
// descendants), used by the group/interleave/oneOrMore attribute-overlap
// checks (7.5, 7.6, 7.7).
func attributeNameClasses(p relaxng.Pattern, visited visitSet) []relaxng.NameClass {
	switch p := p.(type) {
	case *relaxng.AttributePattern:
		return []relaxng.NameClass{p.NameClass}
	case *relaxng.ChoicePattern:
		var out []relaxng.NameClass
		for _, c := range p.Patterns {
			out = append(out, attributeNameClasses(c, visited)...)
		}
		return out
	case *relaxng.GroupPattern:
		var out []relaxng.NameClass
		for _, c := range p.Patterns {
			out = append(out, attributeNameClasses(c, visited)...)
		}
		return out
	case *relaxng.InterleavePattern:
		var out []relaxng.NameClass
		for _, c := range p.Patterns {
			out = append(out, attributeNameClasses(c, visited)...)
		}
		return out
	case *relaxng.OneOrMorePattern:
		return attributeNameClasses(p.Content, visited)
	case *relaxng.RefPattern:
		next, ok := visited.enter(p.Define)
		if !ok {
			return nil
		}
		if p.Define.Pattern == nil {
			return nil
		}
		return attributeNameClasses(p.Define.Pattern, next)
	default:
		return nil
	}
}

// nameClassesOverlap conservatively reports whether a and b could both
// match some common qualified name. Named classes are compared by value;
// a wildcard (AnyName or NsName) is treated as overlapping with anything
// except where it is trivially disjoint (an NsName against a QName or
// another NsName in a different namespace), since a sound but incomplete approximation
// here only risks over-reporting an overlap that a human author can
// restructure, never under-reporting one that would let an ambiguous
// schema silently compile.
func nameClassesOverlap(a, b relaxng.NameClass) bool {
	switch a := a.(type) {
	case *relaxng.QName:
		switch b := b.(type) {
		case *relaxng.QName:
			return a.NamespaceURI == b.NamespaceURI && a.LocalName == b.LocalName
		case *relaxng.NsNameClass:
			return a.NamespaceURI == b.NamespaceURI
		default:
			return true
		}
	case *relaxng.NsNameClass:
		switch b := b.(type) {
		case *relaxng.QName:
			return a.NamespaceURI == b.NamespaceURI
		case *relaxng.NsNameClass:
			return a.NamespaceURI == b.NamespaceURI
		default:
			return true
		}
	case *relaxng.ChoiceNameClass:
		for _, ac := range a.Classes {
			if nameClassesOverlap(ac, b) {
				return true
			}
		}
		return false
	default:
		// AnyName, or b being a ChoiceNameClass handled by the symmetric call
		// below.
		if choice, ok := b.(*relaxng.ChoiceNameClass); ok {
			return nameClassesOverlap(choice, a)
		}
		return true
	}
}

// anyOverlap reports whether any two distinct name classes in classes
// overlap.
func anyOverlap(classes []relaxng.NameClass) bool {
	for i := 0; i < len(classes); i++ {
		for j := i + 1; j < len(classes); j++ {
			if nameClassesOverlap(classes[i], classes[j]) {
				return true
			}
		}
	}
	return false
}
