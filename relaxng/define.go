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

import "github.com/relaxng/rngcore/relaxng/span"

// CombineMode records how multiple <define>s (or a grammar's multiple
// <start>s) sharing a name were folded into one, per §2's combine rule.
type CombineMode uint8

// Enumeration of CombineMode.
const (
	// CombineNone means there was exactly one definition under this name; no
	// combine attribute was consulted or needed.
	CombineNone CombineMode = iota
	// CombineChoice means sibling definitions were combined with <choice>.
	CombineChoice
	// CombineInterleave means sibling definitions were combined with
	// <interleave>.
	CombineInterleave
)

func (c CombineMode) String() string {
	switch c {
	case CombineChoice:
		return "choice"
	case CombineInterleave:
		return "interleave"
	}
	return "none"
}

// DefineHandle is the compiled, shared identity of a grammar's named
// pattern (a <define> name, or "start"). Every RefPattern referencing the
// same name points at the same *DefineHandle, which is how the Pattern
// graph represents recursion: Pattern itself holds no name, only the
// handle's address.
//
// Construction is two-phase, mirroring the teacher's newTypeImpl two-phase
// type creation: the compiler first allocates a DefineHandle per grammar
// name (the "shell"), before any RefPattern that names it is built, so a
// forward or cyclic reference always has a handle to point at. Only once
// every definition's shell exists does the compiler fill in each handle's
// Pattern (the "body") by compiling its <define> content — at which point
// any RefPattern inside that content resolves to an already-allocated
// handle rather than a dangling name.
//
// A DefineHandle is immutable once Pattern is set; compiler code must not
// mutate Pattern concurrently with a validator or restriction pass reading
// it (compilation fully completes, error or not, before either runs).
type DefineHandle struct {
	// Name is the grammar name this handle was allocated for ("start" for
	// the grammar's start pattern).
	Name string

	// Pattern is the combined, simplified pattern for this name. It is nil
	// during the shell phase and non-nil (possibly *NotAllowedPattern, on
	// compile failure) once finalization completes.
	Pattern Pattern

	// Combine records how multiple same-named siblings were merged.
	Combine CombineMode

	// NodeSpan covers the first <define> (or <start>) that introduced this
	// name, for diagnostics that need to point at "the" definition.
	NodeSpan span.Span
}

// Span locates the handle's introducing definition.
func (d *DefineHandle) Span() span.Span { return d.NodeSpan }

// DefineRule describes one <define> or <start> element, with its combine
// mode, before same-named siblings are folded together into a single
// DefineHandle. The compiler does not use this type: it collects rules in
// its own internal form and combines them there (erroring if siblings
// disagree on which combine mode to use, per §2).
type DefineRule struct {
	Name     string
	Pattern  Pattern
	Combine  CombineMode
	NodeSpan span.Span
}
