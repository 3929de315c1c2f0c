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

import (
	"unsafe"

	"github.com/json-iterator/go"
)

// errorMarshaller implements jsoniter.ValEncoder to encode *Error as a
// Diagnostic record without going through reflection.
type errorMarshaller struct{}

var _ jsoniter.ValEncoder = errorMarshaller{}

func (errorMarshaller) IsEmpty(ptr unsafe.Pointer) bool {
	return (*Error)(ptr) == nil
}

func (errorMarshaller) Encode(ptr unsafe.Pointer, stream *jsoniter.Stream) {
	e := (*Error)(ptr)
	stream.WriteObjectStart()

	stream.WriteObjectField("severity")
	stream.WriteString(e.Severity.String())
	stream.WriteMore()

	stream.WriteObjectField("message")
	stream.WriteString(e.Message)

	if len(e.Spans) > 0 {
		stream.WriteMore()
		stream.WriteObjectField("spans")
		stream.WriteArrayStart()
		for i, s := range e.Spans {
			stream.WriteObjectStart()
			stream.WriteObjectField("file")
			stream.WriteString(s.File)
			stream.WriteMore()
			stream.WriteObjectField("startLine")
			stream.WriteUint(s.Start.Line)
			stream.WriteMore()
			stream.WriteObjectField("startColumn")
			stream.WriteUint(s.Start.Column)
			stream.WriteMore()
			stream.WriteObjectField("endLine")
			stream.WriteUint(s.End.Line)
			stream.WriteMore()
			stream.WriteObjectField("endColumn")
			stream.WriteUint(s.End.Column)
			stream.WriteObjectEnd()
			if i != len(e.Spans)-1 {
				stream.WriteMore()
			}
		}
		stream.WriteArrayEnd()
	}

	if e.Code != "" {
		stream.WriteMore()
		stream.WriteObjectField("code")
		stream.WriteString(string(e.Code))
	}

	stream.WriteObjectEnd()
}

// Errors wraps a list of *Error. Intentionally a named struct (not a bare
// slice alias) so call sites check HaveOccurred() rather than comparing to
// nil, since a zero-length-but-non-nil Errors must still mean "no errors".
type Errors struct {
	Errors []*Error
}

// NoErrors constructs an empty Errors.
func NoErrors() Errors {
	return Errors{}
}

// Emplace constructs an Error from args via NewError and appends it.
func (errs *Errors) Emplace(message string, args ...interface{}) {
	errs.Append(NewError(message, args...))
}

// Append appends the given errors to errs. Panics if one of them is not a
// *Error, which indicates a programmer error at the call site.
func (errs *Errors) Append(es ...error) {
	for _, err := range es {
		if err == nil {
			continue
		}
		errs.Errors = append(errs.Errors, err.(*Error))
	}
}

// AppendErrors concatenates the Errors of each argument onto errs.
func (errs *Errors) AppendErrors(more ...Errors) {
	for _, m := range more {
		errs.Errors = append(errs.Errors, m.Errors...)
	}
}

// HaveOccurred reports whether any error has been recorded.
func (errs Errors) HaveOccurred() bool {
	return len(errs.Errors) > 0
}

// Error implements Go's error interface so an Errors value can itself be
// returned/wrapped as a single error (e.g. from a function returning
// (Schema, error) to a caller that doesn't need per-diagnostic detail).
func (errs Errors) Error() string {
	var b []byte
	for i, e := range errs.Errors {
		if i > 0 {
			b = append(b, '\n')
		}
		b = append(b, e.Error()...)
	}
	return string(b)
}
