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

import (
	"fmt"
	"math/big"
	"strconv"
	"strings"

	"github.com/dlclark/regexp2"

	"github.com/relaxng/rngcore/relaxng"
)

// facetSet holds every XSD facet §4.1 lists, parsed and validated once at
// compile time (allows_params) so that Allows/Equal never re-parses a facet
// value per instance. Nil/zero fields mean "facet not applied".
type facetSet struct {
	length        *int
	minLength     *int
	maxLength     *int
	totalDigits   *int
	fractionDigit *int
	pattern       *regexp2.Regexp
	enumeration   []string

	hasMinIncl, hasMaxIncl, hasMinExcl, hasMaxExcl bool
	minIncl, maxIncl, minExcl, maxExcl             *big.Rat
}

// facetAllowance names which facets a base type accepts, per §4.1's "user
// facets may only tighten, never loosen" rule: a facet absent from a type's
// allowance set is CodeInvalidFacet at compile time.
type facetAllowance struct {
	length, minLength, maxLength bool
	pattern, enumeration         bool
	totalDigits, fractionDigits  bool
	ordered                      bool // minInclusive/minExclusive/maxInclusive/maxExclusive
}

var stringLikeFacets = facetAllowance{length: true, minLength: true, maxLength: true, pattern: true, enumeration: true}
var numericFacets = facetAllowance{pattern: true, enumeration: true, totalDigits: true, fractionDigits: true, ordered: true}
var orderedOnlyFacets = facetAllowance{pattern: true, enumeration: true, ordered: true}
var noFacets = facetAllowance{}

// parseFacets validates and compiles params against allowed. It records only
// the explicit facets; the type's implicit bounds (e.g. positiveInteger's
// "minInclusive 1") are folded in afterwards by LookupType through
// tightenLowerBound/tightenUpperBound, which keep the tighter of the two.
func parseFacets(params []relaxng.Param, allowed facetAllowance) (*facetSet, error) {
	fs := &facetSet{}
	for _, p := range params {
		switch p.Name {
		case "length":
			if !allowed.length {
				return nil, fmt.Errorf("facet %q not allowed on this datatype", p.Name)
			}
			n, err := parseNonNegativeInt(p.Value)
			if err != nil {
				return nil, fmt.Errorf("invalid length facet %q: %w", p.Value, err)
			}
			fs.length = &n
		case "minLength":
			if !allowed.minLength {
				return nil, fmt.Errorf("facet %q not allowed on this datatype", p.Name)
			}
			n, err := parseNonNegativeInt(p.Value)
			if err != nil {
				return nil, fmt.Errorf("invalid minLength facet %q: %w", p.Value, err)
			}
			fs.minLength = &n
		case "maxLength":
			if !allowed.maxLength {
				return nil, fmt.Errorf("facet %q not allowed on this datatype", p.Name)
			}
			n, err := parseNonNegativeInt(p.Value)
			if err != nil {
				return nil, fmt.Errorf("invalid maxLength facet %q: %w", p.Value, err)
			}
			fs.maxLength = &n
		case "pattern":
			if !allowed.pattern {
				return nil, fmt.Errorf("facet %q not allowed on this datatype", p.Name)
			}
			re, err := compileAnchoredPattern(p.Value)
			if err != nil {
				return nil, fmt.Errorf("invalid pattern facet %q: %w", p.Value, err)
			}
			fs.pattern = re
		case "enumeration":
			if !allowed.enumeration {
				return nil, fmt.Errorf("facet %q not allowed on this datatype", p.Name)
			}
			fs.enumeration = append(fs.enumeration, p.Value)
		case "totalDigits":
			if !allowed.totalDigits {
				return nil, fmt.Errorf("facet %q not allowed on this datatype", p.Name)
			}
			n, err := parsePositiveInt(p.Value)
			if err != nil {
				return nil, fmt.Errorf("invalid totalDigits facet %q: %w", p.Value, err)
			}
			fs.totalDigits = &n
		case "fractionDigits":
			if !allowed.fractionDigits {
				return nil, fmt.Errorf("facet %q not allowed on this datatype", p.Name)
			}
			n, err := parseNonNegativeInt(p.Value)
			if err != nil {
				return nil, fmt.Errorf("invalid fractionDigits facet %q: %w", p.Value, err)
			}
			fs.fractionDigit = &n
		case "minInclusive", "minExclusive", "maxInclusive", "maxExclusive":
			if !allowed.ordered {
				return nil, fmt.Errorf("facet %q not allowed on this datatype", p.Name)
			}
			r, ok := new(big.Rat).SetString(p.Value)
			if !ok {
				return nil, fmt.Errorf("invalid numeric bound facet %q=%q", p.Name, p.Value)
			}
			switch p.Name {
			case "minInclusive":
				fs.hasMinIncl, fs.minIncl = true, r
			case "minExclusive":
				fs.hasMinExcl, fs.minExcl = true, r
			case "maxInclusive":
				fs.hasMaxIncl, fs.maxIncl = true, r
			case "maxExclusive":
				fs.hasMaxExcl, fs.maxExcl = true, r
			}
		default:
			return nil, fmt.Errorf("unknown facet %q", p.Name)
		}
	}
	if fs.hasMinIncl && fs.hasMaxIncl && fs.minIncl.Cmp(fs.maxIncl) > 0 {
		return nil, fmt.Errorf("minInclusive %s exceeds maxInclusive %s", fs.minIncl, fs.maxIncl)
	}
	return fs, nil
}

// tightenLowerBound folds an implicit base-type bound (e.g. positiveInteger's
// minInclusive=1) into fs, keeping whichever of the implicit and any
// explicit user bound is tighter (larger lower bound wins).
func tightenLowerBound(fs *facetSet, inclusive bool, bound *big.Rat) {
	if inclusive {
		if !fs.hasMinIncl || fs.minIncl.Cmp(bound) < 0 {
			fs.hasMinIncl, fs.minIncl = true, bound
		}
	} else {
		if !fs.hasMinExcl || fs.minExcl.Cmp(bound) < 0 {
			fs.hasMinExcl, fs.minExcl = true, bound
		}
	}
}

// tightenUpperBound is tightenLowerBound's counterpart (smaller upper bound
// wins).
func tightenUpperBound(fs *facetSet, inclusive bool, bound *big.Rat) {
	if inclusive {
		if !fs.hasMaxIncl || fs.maxIncl.Cmp(bound) > 0 {
			fs.hasMaxIncl, fs.maxIncl = true, bound
		}
	} else {
		if !fs.hasMaxExcl || fs.maxExcl.Cmp(bound) > 0 {
			fs.hasMaxExcl, fs.maxExcl = true, bound
		}
	}
}

// checkLexicalFacets applies the length/pattern/enumeration facets common to
// every datatype kind against the raw lexical string lex.
func (fs *facetSet) checkLexicalFacets(lex string) error {
	if fs.length != nil && runeLen(lex) != *fs.length {
		return fmt.Errorf("length %d does not equal required length %d", runeLen(lex), *fs.length)
	}
	if fs.minLength != nil && runeLen(lex) < *fs.minLength {
		return fmt.Errorf("length %d is less than minLength %d", runeLen(lex), *fs.minLength)
	}
	if fs.maxLength != nil && runeLen(lex) > *fs.maxLength {
		return fmt.Errorf("length %d exceeds maxLength %d", runeLen(lex), *fs.maxLength)
	}
	if fs.pattern != nil {
		ok, err := fs.pattern.MatchString(lex)
		if err != nil {
			return fmt.Errorf("pattern facet evaluation failed: %w", err)
		}
		if !ok {
			return fmt.Errorf("value %q does not match pattern facet", lex)
		}
	}
	if len(fs.enumeration) > 0 {
		found := false
		for _, e := range fs.enumeration {
			if e == lex {
				found = true
				break
			}
		}
		if !found {
			return fmt.Errorf("value %q is not one of the enumerated values", lex)
		}
	}
	return nil
}

// checkNumericFacets applies the ordered and digit-count facets against a
// parsed value v, whose lexical form is lex (needed for totalDigits, which
// is defined over the lexical digit count, not the value).
func (fs *facetSet) checkNumericFacets(lex string, v *big.Rat) error {
	if fs.hasMinIncl && v.Cmp(fs.minIncl) < 0 {
		return fmt.Errorf("value %s is less than minInclusive %s", v, fs.minIncl)
	}
	if fs.hasMinExcl && v.Cmp(fs.minExcl) <= 0 {
		return fmt.Errorf("value %s does not exceed minExclusive %s", v, fs.minExcl)
	}
	if fs.hasMaxIncl && v.Cmp(fs.maxIncl) > 0 {
		return fmt.Errorf("value %s exceeds maxInclusive %s", v, fs.maxIncl)
	}
	if fs.hasMaxExcl && v.Cmp(fs.maxExcl) >= 0 {
		return fmt.Errorf("value %s does not fall below maxExclusive %s", v, fs.maxExcl)
	}
	if fs.totalDigits != nil || fs.fractionDigit != nil {
		intDigits, fracDigits := countDigits(lex)
		if fs.totalDigits != nil && intDigits+fracDigits > *fs.totalDigits {
			return fmt.Errorf("value %q has more than totalDigits %d significant digits", lex, *fs.totalDigits)
		}
		if fs.fractionDigit != nil && fracDigits > *fs.fractionDigit {
			return fmt.Errorf("value %q has more than fractionDigits %d fractional digits", lex, *fs.fractionDigit)
		}
	}
	return nil
}

func runeLen(s string) int {
	return len([]rune(s))
}

func parseNonNegativeInt(s string) (int, error) {
	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil || n < 0 {
		return 0, fmt.Errorf("expected a non-negative integer, got %q", s)
	}
	return n, nil
}

func parsePositiveInt(s string) (int, error) {
	n, err := parseNonNegativeInt(s)
	if err != nil || n == 0 {
		return 0, fmt.Errorf("expected a positive integer, got %q", s)
	}
	return n, nil
}

// countDigits returns the number of significant integer and fractional
// digits in a decimal lexical form, ignoring sign and leading/trailing
// insignificant zeros, per XSD's totalDigits/fractionDigits definitions.
func countDigits(lex string) (intDigits, fracDigits int) {
	s := strings.TrimPrefix(strings.TrimPrefix(lex, "+"), "-")
	intPart, fracPart, hasFrac := s, "", false
	if i := strings.IndexByte(s, '.'); i >= 0 {
		intPart, fracPart, hasFrac = s[:i], s[i+1:], true
	}
	if hasFrac {
		fracPart = strings.TrimRight(fracPart, "0")
		fracDigits = len(fracPart)
	}
	intPart = strings.TrimLeft(intPart, "0")
	if intPart == "" && fracDigits == 0 {
		intDigits = 1 // XSD counts a single significant zero for "0"
	} else {
		intDigits = len(intPart)
	}
	return intDigits, fracDigits
}

// compileAnchoredPattern compiles an XSD pattern facet value, anchoring it
// to the whole input: §4.1 requires full-value matching, and a facet regex
// author writes an XSD pattern (which is implicitly whole-string) rather
// than a Go-style substring regex, so a literal, un-anchored regexp2 match
// would silently accept inputs containing the pattern rather than equal to
// it.
func compileAnchoredPattern(pattern string) (*regexp2.Regexp, error) {
	// \A/\z rather than ^/$: regexp2 emulates .NET, where unanchored $
	// matches end-of-input or just before a single trailing \n, which would
	// let a value like "AB-1234\n" slip past a pattern meant to match whole.
	anchored := "\\A(?:" + pattern + ")\\z"
	re, err := regexp2.Compile(anchored, regexp2.None)
	if err != nil {
		return nil, err
	}
	re.MatchTimeout = 0
	return re, nil
}
