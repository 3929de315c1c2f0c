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

package relaxng

// DatatypeContext supplies the ambient information a Datatype implementation
// needs to interpret a literal that isn't self-contained: namespace prefix
// resolution for QName-valued data (xsd:QName), per §4.3.
type DatatypeContext interface {
	// ResolveNamespacePrefix expands prefix (the empty string for the default
	// namespace) to a namespace URI using the bindings in scope at the
	// literal's location. ok is false if the prefix is unbound.
	ResolveNamespacePrefix(prefix string) (uri string, ok bool)
}

// Param is a single datatype parameter (a facet, in XSD terms): a name and
// its literal string value as written in the schema, per §4.2.
type Param struct {
	Name  string
	Value string
}

// Datatype is the compiled, parameter-applied form of a <data> or <value>
// element's type: a name from some datatype library together with whatever
// facets the schema attached to it. The compiler builds these by
// asking a datatype.Library to parse and validate a type name and its Params
// once, so that Allows/Equal can run per-instance without re-parsing facets.
type Datatype interface {
	// LibraryURI is the datatype library's identifying URI (the empty string
	// names the built-in RELAX NG library of §4.1).
	LibraryURI() string

	// Name is the local type name ("string", "token", "integer", ...).
	Name() string

	// Allows reports whether literal lex is an allowed value of this
	// datatype, i.e. in the datatype's value space and within its facets.
	// ctx may be nil when the caller has no namespace context to offer;
	// implementations that never need it may ignore it.
	// A non-nil error is the reason lex was rejected, suitable for wrapping
	// into a CodeDatatypeError diagnostic; it is never itself an *Error.
	Allows(lex string, ctx DatatypeContext) error

	// Equal reports whether literal lex denotes an equal value to the
	// <value> pattern's Value under this datatype's value/equality rules
	// (e.g. QName equality compares resolved namespace+local name, not the
	// raw lexical prefix:local text). A non-nil error means lex itself was
	// not a valid lexical value of the datatype; equal is then false.
	Equal(lex, value string, ctx DatatypeContext) (equal bool, err error)
}
