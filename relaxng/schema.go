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

// Schema is the fully compiled, simplified and restriction-checked result of
// processing a RELAX NG grammar: the object a validator.Validator is built
// from. Compiler.Compile produces it and restriction.Check checks it without
// building a new one; both live in their own packages so that a caller who trusts a Schema's
// provenance (e.g. one round-tripped through restriction.Check already) can
// skip re-checking it.
type Schema struct {
	// Start is the grammar's start pattern, fully simplified: no grammar,
	// define, parentRef, include or div nodes remain, only the thirteen forms
	// of Pattern with Ref nodes closing every recursive cycle.
	Start Pattern

	// Defines holds, keyed by name, the DefineHandle of every define and of
	// "start" in the top-level grammar, whether referenced or not, plus those
	// of nested and externalRef grammars, so diagnostics and tooling can
	// enumerate them without re-walking the graph. Names are not qualified by
	// grammar: where several grammars use one name a single handle is kept,
	// the top-level grammar's when it has one.
	Defines map[string]*DefineHandle
}

// StartHandle returns the grammar's synthetic "start" DefineHandle if Start
// was compiled from a named grammar (it always is; a schema without a
// grammar wrapper is simplified into one implicitly), or nil if Defines
// does not record one.
func (s *Schema) StartHandle() *DefineHandle {
	return s.Defines["start"]
}
