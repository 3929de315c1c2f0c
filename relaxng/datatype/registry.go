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

// Package datatype implements the RELAX NG built-in and XML Schema
// datatype libraries of §4.1: lexical-value validation, value equality and
// facet-constrained subtyping, exposed to the compiler through the Library
// interface and to the compiled model graph through relaxng.Datatype.
package datatype

import (
	"fmt"

	"github.com/relaxng/rngcore/relaxng"
)

// Library resolves a type name plus a set of facet parameters into a
// concrete, immutable relaxng.Datatype. The compiler calls
// LookupType once per <data>/<value> element at compile time; the returned
// Datatype is then reused for every instance document validated against the
// schema.
type Library interface {
	// URI is the library's identifying URI ("" for the RELAX NG built-in
	// library).
	URI() string

	// LookupType resolves name under params, performing the static
	// allows_params check of §4.1 (e.g. minInclusive <= maxInclusive). ctx
	// is threaded through for datatypes whose facets reference namespace
	// bindings (none currently do, but the hook matches valid_lexical's
	// signature). A return of (nil, err) means either the name is unknown to
	// this library (CodeUnknownDatatype) or a facet was invalid or
	// unsupported for the base type (CodeInvalidFacet).
	LookupType(name string, params []relaxng.Param, ctx relaxng.DatatypeContext) (relaxng.Datatype, error)
}

// Registry maps a datatype library URI to its Library implementation. The
// empty URI always names the RELAX NG built-in library.
type Registry struct {
	libraries map[string]Library
}

// NewRegistry builds a Registry with the RELAX NG built-in and XML Schema
// libraries already registered, which covers every library named in §4.1.
func NewRegistry() *Registry {
	r := &Registry{libraries: make(map[string]Library)}
	r.Register(builtinLibrary{})
	r.Register(xsdLibrary{})
	return r
}

// Register adds or replaces the library entry for lib.URI().
func (r *Registry) Register(lib Library) {
	r.libraries[lib.URI()] = lib
}

// Lookup resolves a datatype library URI to its Library. ok is false if no
// library is registered under uri (CodeUnknownDatatypeLibrary at the call
// site).
func (r *Registry) Lookup(uri string) (Library, bool) {
	lib, ok := r.libraries[uri]
	return lib, ok
}

// errUnknownType is a convenience constructor for "no such type in this
// library" used by both built-in libraries.
func errUnknownType(libraryURI, name string) error {
	if libraryURI == "" {
		return fmt.Errorf("unknown RELAX NG datatype %q", name)
	}
	return fmt.Errorf("unknown datatype %q in library %q", name, libraryURI)
}
