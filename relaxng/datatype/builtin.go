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

	"github.com/relaxng/rngcore/relaxng"
)

// builtinLibrary is the RELAX NG built-in datatype library (URI ""),
// supplying "string" (any text) and "token" (whitespace-collapsed
// equality), per §4.1.
type builtinLibrary struct{}

func (builtinLibrary) URI() string { return "" }

func (builtinLibrary) LookupType(name string, params []relaxng.Param, ctx relaxng.DatatypeContext) (relaxng.Datatype, error) {
	switch name {
	case "string":
		if len(params) > 0 {
			return nil, fmt.Errorf("the RELAX NG %q type accepts no facets", name)
		}
		return builtinString{}, nil
	case "token":
		if len(params) > 0 {
			return nil, fmt.Errorf("the RELAX NG %q type accepts no facets", name)
		}
		return builtinToken{}, nil
	}
	return nil, errUnknownType("", name)
}

// builtinString allows any lexical value and compares by exact string
// equality.
type builtinString struct{}

func (builtinString) LibraryURI() string { return "" }
func (builtinString) Name() string       { return "string" }

func (builtinString) Allows(lex string, ctx relaxng.DatatypeContext) error { return nil }

func (builtinString) Equal(lex, value string, ctx relaxng.DatatypeContext) (bool, error) {
	return lex == value, nil
}

// builtinToken allows any lexical value and compares after whitespace
// collapse, so "a  b" and "a b" denote the same value.
type builtinToken struct{}

func (builtinToken) LibraryURI() string { return "" }
func (builtinToken) Name() string       { return "token" }

func (builtinToken) Allows(lex string, ctx relaxng.DatatypeContext) error { return nil }

func (builtinToken) Equal(lex, value string, ctx relaxng.DatatypeContext) (bool, error) {
	return collapseWhitespace(lex) == collapseWhitespace(value), nil
}
