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

package datatype

import "strings"

// isXMLWhitespace reports whether r is XML whitespace (space, tab, CR, LF),
// the only characters collapse/replace whitespace facets act on.
func isXMLWhitespace(r rune) bool {
	switch r {
	case ' ', '\t', '\r', '\n':
		return true
	}
	return false
}

// collapseWhitespace implements XSD's "collapse" whiteSpace facet: replace
// every run of whitespace with a single space, then trim leading/trailing
// space. token and every derived/list-ish type normalizes this way before
// comparison.
func collapseWhitespace(s string) string {
	fields := strings.FieldsFunc(s, isXMLWhitespace)
	return strings.Join(fields, " ")
}

// splitTokens splits s on whitespace runs, discarding empty fields; used for
// list-valued lexical spaces (NMTOKENS, IDREFS, ENTITIES) and by the
// model-graph List pattern's tokenization (see validator).
func splitTokens(s string) []string {
	return strings.FieldsFunc(s, isXMLWhitespace)
}

// isNCNameStartChar reports whether r may begin an NCName: a Letter or "_",
// per XML's Name production with the colon excluded (NCName = Name - ':').
// It covers the Unicode ranges of XML's NameStartChar production.
func isNCNameStartChar(r rune) bool {
	switch {
	case r == '_':
		return true
	case r >= 'A' && r <= 'Z', r >= 'a' && r <= 'z':
		return true
	case r >= 0xC0 && r <= 0xD6, r >= 0xD8 && r <= 0xF6, r >= 0xF8 && r <= 0x2FF:
		return true
	case r >= 0x370 && r <= 0x37D, r >= 0x37F && r <= 0x1FFF:
		return true
	case r >= 0x200C && r <= 0x200D, r >= 0x2070 && r <= 0x218F:
		return true
	case r >= 0x2C00 && r <= 0x2FEF, r >= 0x3001 && r <= 0xD7FF:
		return true
	case r >= 0xF900 && r <= 0xFDCF, r >= 0xFDF0 && r <= 0xFFFD:
		return true
	case r >= 0x10000 && r <= 0xEFFFF:
		return true
	}
	return false
}

// isNCNameChar reports whether r may continue an NCName (NameStartChar plus
// "-", ".", digits and the combining-character ranges).
func isNCNameChar(r rune) bool {
	if isNCNameStartChar(r) {
		return true
	}
	switch {
	case r == '-', r == '.':
		return true
	case r >= '0' && r <= '9':
		return true
	case r == 0xB7:
		return true
	case r >= 0x0300 && r <= 0x036F, r >= 0x203F && r <= 0x2040:
		return true
	}
	return false
}

// isNCName reports whether s is a syntactically valid NCName: a non-empty
// string with no ':' whose first character starts a name and whose
// remaining characters continue one. Used directly for the NCName datatype
// and as a building block for Name (NCName (':' NCName)?) and QName.
func isNCName(s string) bool {
	if s == "" {
		return false
	}
	first := true
	for _, r := range s {
		if first {
			if !isNCNameStartChar(r) {
				return false
			}
			first = false
			continue
		}
		if !isNCNameChar(r) {
			return false
		}
	}
	return true
}

// isName reports whether s is a syntactically valid XML Name: one or two
// NCName parts joined by a single ':'.
func isName(s string) bool {
	if isNCName(s) {
		return true
	}
	i := strings.IndexByte(s, ':')
	if i <= 0 || i == len(s)-1 {
		return false
	}
	return isNCName(s[:i]) && isNCName(s[i+1:])
}

// splitQName splits a lexical QName into its prefix (empty for an unprefixed
// name) and local part, validating that both halves are syntactically valid
// NCNames. ok is false for a malformed QName (more than one ':', or either
// half failing NCName syntax).
func splitQName(s string) (prefix, local string, ok bool) {
	i := strings.IndexByte(s, ':')
	if i < 0 {
		if !isNCName(s) {
			return "", "", false
		}
		return "", s, true
	}
	prefix, local = s[:i], s[i+1:]
	if !isNCName(prefix) || !isNCName(local) {
		return "", "", false
	}
	return prefix, local, true
}
