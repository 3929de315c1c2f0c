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

// Package span provides source location values shared by the AST, compiler,
// restriction checker and validator. It is the leaf package of the module:
// nothing here depends on any other relaxng package.
package span

import "fmt"

// Position is an 1-indexed line/column pair within a source file.
type Position struct {
	Line   uint
	Column uint
}

// IsValid reports whether the position was actually set by a producer
// instead of being the zero value.
func (p Position) IsValid() bool {
	return p.Line != 0
}

// String formats the position as "line:column".
func (p Position) String() string {
	return fmt.Sprintf("%d:%d", p.Line, p.Column)
}

// Span is a half-open range [Start, End) within a named file. File is the
// canonical identity produced by the file resolver (see compiler.FileResolver),
// not necessarily a filesystem path.
type Span struct {
	File  string
	Start Position
	End   Position
}

// None is the zero Span, used where no source location is available (e.g. a
// pattern synthesized during simplification with no single originating node).
var None = Span{}

// IsValid reports whether the span carries real position information.
func (s Span) IsValid() bool {
	return s.Start.IsValid()
}

// String formats the span for inclusion in diagnostic messages.
func (s Span) String() string {
	if !s.IsValid() {
		return "<unknown location>"
	}
	if s.File == "" {
		return fmt.Sprintf("%s-%s", s.Start, s.End)
	}
	return fmt.Sprintf("%s:%s-%s", s.File, s.Start, s.End)
}

// Cover returns the smallest span that contains both a and b. A zero-value
// operand is ignored; if both are zero, the result is the zero Span.
func Cover(a, b Span) Span {
	if !a.IsValid() {
		return b
	}
	if !b.IsValid() {
		return a
	}
	cov := a
	if less(b.Start, cov.Start) {
		cov.Start = b.Start
	}
	if less(cov.End, b.End) {
		cov.End = b.End
	}
	return cov
}

func less(a, b Position) bool {
	if a.Line != b.Line {
		return a.Line < b.Line
	}
	return a.Column < b.Column
}
