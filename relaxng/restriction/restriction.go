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

package restriction

import (
	"sort"

	"github.com/relaxng/rngcore/relaxng"
)

const xmlnsNamespaceURI = "http://www.w3.org/2000/xmlns/"

// refKey identifies one (Define, ambient context) pair already fully
// checked: a Define reached again through the *same* context need not be
// re-walked, but a Define reached through a *different* context (e.g. once
// at top level, once from inside a list) must be, since the violations that
// apply depend on the context, not just on which Define it is.
type refKey struct {
	define *relaxng.DefineHandle
	ctx    checkContext
}

// checker accumulates diagnostics and the (Define, context) pairs already
// fully checked, so a shared define reached again through the same context
// is only walked once.
type checker struct {
	errs    relaxng.Errors
	checked map[refKey]bool
}

// Check runs every Section 7 restriction against schema and returns the
// violations found. An empty, non-erroring Errors means schema is safe to
// validate instances against. Check is deterministic and idempotent:
// running it twice on the same Schema produces the same diagnostics, since
// it only reads the (immutable, by contract) Pattern graph.
func Check(schema *relaxng.Schema) relaxng.Errors {
	c := &checker{checked: make(map[refKey]bool)}

	if schema.Start != nil && !containsElementPath(schema.Start, visitSet{}) {
		c.errs.Emplace("start pattern does not contain an element pattern; a schema's start must permit at least one element",
			relaxng.Op("restriction.Check"), relaxng.ErrKindRestriction, relaxng.CodeStartNotElementContentful)
	}

	if len(schema.Defines) > 0 {
		names := make([]string, 0, len(schema.Defines))
		for name := range schema.Defines {
			names = append(names, name)
		}
		sort.Strings(names)
		for _, name := range names {
			c.checkPattern(schema.Defines[name].Pattern, checkContext{})
		}
	} else {
		c.checkPattern(schema.Start, checkContext{})
	}

	return c.errs
}

// checkContext tracks the ambient restrictions in effect at the current
// position in the pattern tree (7.2, 7.3): whether we are already inside
// an Attribute's content (nesting is forbidden) or a List's content
// (List/Element/Attribute/Text/Interleave are forbidden inside list
// content).
type checkContext struct {
	insideAttribute bool
	insideList      bool
}

func (c *checker) checkPattern(p relaxng.Pattern, ctx checkContext) {
	if p == nil {
		return
	}
	switch p := p.(type) {
	case *relaxng.EmptyPattern, *relaxng.NotAllowedPattern:
		return

	case *relaxng.TextPattern:
		if ctx.insideList {
			c.errs.Emplace("list content must not contain a text pattern",
				relaxng.Op("restriction.Check"), p.Span(), relaxng.ErrKindRestriction, relaxng.CodeListContainsText)
		}

	case *relaxng.ElementPattern:
		if ctx.insideList {
			c.errs.Emplace("list content must not contain an element pattern",
				relaxng.Op("restriction.Check"), p.Span(), relaxng.ErrKindRestriction, relaxng.CodeListContainsElement)
		}
		c.checkNameClass(p.NameClass, false)
		c.checkPattern(p.Content, checkContext{})

	case *relaxng.AttributePattern:
		if ctx.insideAttribute {
			c.errs.Emplace("attribute pattern must not appear inside another attribute pattern",
				relaxng.Op("restriction.Check"), p.Span(), relaxng.ErrKindRestriction, relaxng.CodeAttributeNesting)
		}
		if ctx.insideList {
			c.errs.Emplace("attribute pattern must not appear inside list content",
				relaxng.Op("restriction.Check"), p.Span(), relaxng.ErrKindRestriction, relaxng.CodeListContainsAttribute)
		}
		c.checkXmlnsAttribute(p)
		c.checkPattern(p.Content, checkContext{insideAttribute: true})

	case *relaxng.ListPattern:
		if ctx.insideList {
			c.errs.Emplace("list pattern must not appear inside another list pattern",
				relaxng.Op("restriction.Check"), p.Span(), relaxng.ErrKindRestriction, relaxng.CodeListContainsList)
		}
		c.checkPattern(p.Content, checkContext{insideList: true})

	case *relaxng.DataPattern:
		if p.Except != nil {
			if containsElementPath(p.Except, visitSet{}) {
				c.errs.Emplace("data except content must not contain an element pattern",
					relaxng.Op("restriction.Check"), p.Except.Span(), relaxng.ErrKindRestriction, relaxng.CodeDataExceptForbiddenContent)
			}
			c.checkPattern(p.Except, ctx)
		}

	case *relaxng.ValuePattern:
		return

	case *relaxng.GroupPattern:
		attrs := make([][]relaxng.NameClass, len(p.Patterns))
		for i, child := range p.Patterns {
			attrs[i] = attributeNameClasses(child, visitSet{})
		}
		if groupAttributesOverlap(attrs) {
			c.errs.Emplace("group branches may both match an attribute with the same name",
				relaxng.Op("restriction.Check"), p.Span(), relaxng.ErrKindRestriction, relaxng.CodeGroupAttributeOverlap)
		}
		for _, child := range p.Patterns {
			c.checkPattern(child, ctx)
		}

	case *relaxng.InterleavePattern:
		if ctx.insideList {
			c.errs.Emplace("list content must not contain an interleave pattern",
				relaxng.Op("restriction.Check"), p.Span(), relaxng.ErrKindRestriction, relaxng.CodeListContainsInterleave)
		}
		textBranches := 0
		for _, child := range p.Patterns {
			if hasDirectText(child, visitSet{}) {
				textBranches++
			}
		}
		if textBranches > 1 {
			c.errs.Emplace("more than one interleave branch can match text directly",
				relaxng.Op("restriction.Check"), p.Span(), relaxng.ErrKindRestriction, relaxng.CodeInterleaveTextOverlap)
		}
		attrs := make([][]relaxng.NameClass, len(p.Patterns))
		for i, child := range p.Patterns {
			attrs[i] = attributeNameClasses(child, visitSet{})
		}
		if groupAttributesOverlap(attrs) {
			c.errs.Emplace("interleave branches may both match an attribute with the same name",
				relaxng.Op("restriction.Check"), p.Span(), relaxng.ErrKindRestriction, relaxng.CodeInterleaveAttributeOverlap)
		}
		for _, child := range p.Patterns {
			c.checkPattern(child, ctx)
		}

	case *relaxng.ChoicePattern:
		for _, child := range p.Patterns {
			c.checkPattern(child, ctx)
		}

	case *relaxng.OneOrMorePattern:
		if attrs := attributeNameClasses(p.Content, visitSet{}); anyOverlap(attrs) {
			c.errs.Emplace("repeated pattern may match two attributes with the same name",
				relaxng.Op("restriction.Check"), p.Span(), relaxng.ErrKindRestriction, relaxng.CodeOneOrMoreAttributeOverlap)
		}
		c.checkPattern(p.Content, ctx)

	case *relaxng.RefPattern:
		key := refKey{p.Define, ctx}
		if c.checked[key] {
			return
		}
		c.checked[key] = true
		c.checkPattern(p.Define.Pattern, ctx)
	}
}

// groupAttributesOverlap reports whether any two distinct branches'
// attribute-name-class sets overlap.
func groupAttributesOverlap(perBranch [][]relaxng.NameClass) bool {
	for i := range perBranch {
		for j := i + 1; j < len(perBranch); j++ {
			for _, a := range perBranch[i] {
				for _, b := range perBranch[j] {
					if nameClassesOverlap(a, b) {
						return true
					}
				}
			}
		}
	}
	return false
}

// checkXmlnsAttribute reports use of the reserved "xmlns" attribute name or
// any name in the xmlns namespace, forbidden by 7.3 since namespace
// declarations are not ordinary attributes in the XML infoset RELAX NG
// validates against.
func (c *checker) checkXmlnsAttribute(p *relaxng.AttributePattern) {
	if nameClassForbidsXmlns(p.NameClass) {
		c.errs.Emplace("attribute pattern must not match the reserved \"xmlns\" name or the xmlns namespace",
			relaxng.Op("restriction.Check"), p.Span(), relaxng.ErrKindRestriction, relaxng.CodeXmlnsAttributeForbidden)
	}
}

func nameClassForbidsXmlns(nc relaxng.NameClass) bool {
	switch nc := nc.(type) {
	case *relaxng.QName:
		return nc.NamespaceURI == "" && nc.LocalName == "xmlns" || nc.NamespaceURI == xmlnsNamespaceURI
	case *relaxng.NsNameClass:
		return nc.NamespaceURI == xmlnsNamespaceURI
	case *relaxng.AnyNameClass:
		return nc.Except == nil || !nameClassForbidsXmlns(nc.Except)
	case *relaxng.ChoiceNameClass:
		for _, c := range nc.Classes {
			if nameClassForbidsXmlns(c) {
				return true
			}
		}
	}
	return false
}

// checkNameClass validates the wildcard-except rules (7.7): anyName's
// except must not itself contain anyName, and nsName's except must not
// contain anyName or nsName.
func (c *checker) checkNameClass(nc relaxng.NameClass, insideExcept bool) {
	switch nc := nc.(type) {
	case *relaxng.AnyNameClass:
		if nc.Except != nil {
			if containsAnyName(nc.Except) {
				c.errs.Emplace("anyName except must not itself contain anyName",
					relaxng.Op("restriction.Check"), nc.Except.Span(), relaxng.ErrKindRestriction, relaxng.CodeAnyNameExceptContainsAnyName)
			}
			c.checkNameClass(nc.Except, true)
		}
	case *relaxng.NsNameClass:
		if nc.Except != nil {
			var hasWildcard func(relaxng.NameClass) bool
			hasWildcard = func(e relaxng.NameClass) bool {
				switch e := e.(type) {
				case *relaxng.AnyNameClass, *relaxng.NsNameClass:
					return true
				case *relaxng.ChoiceNameClass:
					for _, ch := range e.Classes {
						if hasWildcard(ch) {
							return true
						}
					}
				}
				return false
			}
			if hasWildcard(nc.Except) {
				c.errs.Emplace("nsName except must not contain a wildcard name class",
					relaxng.Op("restriction.Check"), nc.Except.Span(), relaxng.ErrKindRestriction, relaxng.CodeNsNameExceptContainsWildcard)
			}
			c.checkNameClass(nc.Except, true)
		}
	case *relaxng.ChoiceNameClass:
		for _, child := range nc.Classes {
			c.checkNameClass(child, insideExcept)
		}
	}
}

func containsAnyName(nc relaxng.NameClass) bool {
	switch nc := nc.(type) {
	case *relaxng.AnyNameClass:
		return true
	case *relaxng.ChoiceNameClass:
		for _, c := range nc.Classes {
			if containsAnyName(c) {
				return true
			}
		}
	}
	return false
}
