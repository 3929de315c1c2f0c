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
	"fmt"
	"log"
	"reflect"
	"runtime"

	"github.com/json-iterator/go"

	"github.com/relaxng/rngcore/internal/util"
	"github.com/relaxng/rngcore/relaxng/span"
)

// Op describes an operation, usually as "package.Function", such as
// "compiler.Compile" or "validator.TextDeriv".
type Op string

// ErrKind names which phase or layer an Error comes from.
type ErrKind uint8

// Enumeration of ErrKind.
const (
	ErrKindOther       ErrKind = iota // Unclassified. Not printed in the error message.
	ErrKindParse                      // Produced by the external parser (AST contract violation).
	ErrKindCompile                    // Compile-phase: include/ref/combine/datatype-instantiation errors.
	ErrKindRestriction                // Section 7 restriction violation.
	ErrKindValidation                 // Instance failed to match the compiled schema.
	ErrKindInternal                   // Programmer error: invariant violated.
)

func (k ErrKind) String() string {
	switch k {
	case ErrKindOther:
		return "other error"
	case ErrKindParse:
		return "parse error"
	case ErrKindCompile:
		return "compile error"
	case ErrKindRestriction:
		return "restriction violation"
	case ErrKindValidation:
		return "validation error"
	case ErrKindInternal:
		return "internal error"
	}
	return "unknown error kind"
}

// Code further classifies an Error within its Kind, per the category lists in
// spec §7 (e.g. "IncludeCycle" for a compile error, "StartNotElementContentful"
// for a restriction violation, "UnexpectedElement" for a validation error).
type Code string

// Compile error codes (ErrKindCompile, plus ErrKindParse for ParseError).
const (
	CodeParseError               Code = "ParseError"
	CodeIncludeCycle              Code = "IncludeCycle"
	CodeUnresolvedRef             Code = "UnresolvedRef"
	CodeDuplicateDefinition       Code = "DuplicateDefinition"
	CodeIncompatibleCombine       Code = "IncompatibleCombine"
	CodeUnknownDatatypeLibrary    Code = "UnknownDatatypeLibrary"
	CodeUnknownDatatype           Code = "UnknownDatatype"
	CodeInvalidFacet              Code = "InvalidFacet"
	CodeInvalidNameClass          Code = "InvalidNameClass"
	CodeInvalidDatatypeLibraryURI Code = "InvalidDatatypeLibraryURI"
	CodeNCNameSyntax              Code = "NCNameSyntax"
)

// Restriction violation sub-codes (ErrKindRestriction).
const (
	CodeStartNotElementContentful    Code = "StartNotElementContentful"
	CodeXmlnsAttributeForbidden      Code = "XmlnsAttributeForbidden"
	CodeAttributeNesting             Code = "AttributeNesting"
	CodeListContainsList             Code = "ListContainsList"
	CodeListContainsElement          Code = "ListContainsElement"
	CodeListContainsAttribute        Code = "ListContainsAttribute"
	CodeListContainsText             Code = "ListContainsText"
	CodeListContainsInterleave       Code = "ListContainsInterleave"
	CodeDataExceptForbiddenContent   Code = "DataExceptForbiddenContent"
	CodeInterleaveTextOverlap        Code = "InterleaveTextOverlap"
	CodeInterleaveElementOverlap     Code = "InterleaveElementOverlap"
	CodeInterleaveAttributeOverlap   Code = "InterleaveAttributeOverlap"
	CodeGroupAttributeOverlap        Code = "GroupAttributeOverlap"
	CodeOneOrMoreAttributeOverlap    Code = "OneOrMoreAttributeOverlap"
	CodeAnyNameExceptContainsAnyName Code = "AnyNameExceptContainsAnyName"
	CodeNsNameExceptContainsWildcard Code = "NsNameExceptContainsWildcard"
)

// Validation error codes (ErrKindValidation).
const (
	CodeUnexpectedElement       Code = "UnexpectedElement"
	CodeUnexpectedAttribute     Code = "UnexpectedAttribute"
	CodeMissingAttribute        Code = "MissingAttribute"
	CodeUnexpectedText          Code = "UnexpectedText"
	CodeTextNotAllowed          Code = "TextNotAllowed"
	CodeDatatypeError           Code = "DatatypeError"
	CodeUndefinedNamespacePrefix Code = "UndefinedNamespacePrefix"
	CodePrematureEndOfContent   Code = "PrematureEndOfContent"
)

// ErrorWithSpans indicates an error that carries source spans. If "spans" is
// not given to NewError, NewError retrieves them from an underlying error
// implementing this interface.
type ErrorWithSpans interface {
	Spans() []span.Span
}

// Severity classifies a Diagnostic for rendering purposes (the CLI's concern,
// but the value travels with the Error since it is cheap to carry).
type Severity uint8

// Enumeration of Severity.
const (
	SeverityError Severity = iota
	SeverityWarning
)

func (s Severity) String() string {
	if s == SeverityWarning {
		return "warning"
	}
	return "error"
}

// Error describes a failure found during compilation, restriction-checking or
// validation. It implements Go's error interface and can be serialized to
// JSON as a Diagnostic record (severity, span, message) per spec §6.
type Error struct {
	// Message describes the error for diagnostics / debugging.
	Message string

	// Spans locates the offending source construct(s). Validation errors carry
	// the span of the XML event that produced NotAllowed; restriction errors
	// carry the span of the offending pattern node; compile errors carry the
	// span of the offending AST node. More than one span is used for errors
	// that reference two things (e.g. two definitions of the same name).
	Spans []span.Span

	// Severity for rendering. Defaults to SeverityError.
	Severity Severity

	// Op is the operation being performed, usually "package.Function".
	Op Op

	// Kind classifies which of the three error layers produced this Error.
	Kind ErrKind

	// Code further classifies the error within its Kind.
	Code Code

	// Err is the underlying error that triggered this one, if any.
	Err error
}

var _ error = (*Error)(nil)

// NewError builds an Error value from its message and a set of typed
// arguments. Inspired by the upspin.io error-construction idiom the teacher
// repo itself credits (graphql.NewError).
func NewError(message string, args ...interface{}) error {
	e := &Error{
		Message: message,
	}

	for _, arg := range args {
		switch arg := arg.(type) {
		case span.Span:
			e.Spans = append(e.Spans, arg)
		case []span.Span:
			e.Spans = arg
		case Severity:
			e.Severity = arg
		case error:
			e.Err = arg
		case Op:
			e.Op = arg
		case ErrKind:
			e.Kind = arg
		case Code:
			e.Code = arg
		default:
			_, file, line, _ := runtime.Caller(1)
			log.Printf("relaxng.NewError: bad call from %s:%d: %v", file, line, args)
			return fmt.Errorf("unknown type %T, value %v in error call", arg, arg)
		}
	}

	if prev := e.Err; prev != nil {
		if len(e.Spans) == 0 {
			switch prevWithSpans := prev.(type) {
			case ErrorWithSpans:
				e.Spans = prevWithSpans.Spans()
			case *Error:
				e.Spans = append([]span.Span(nil), prevWithSpans.Spans...)
			}
		}
		if e.Kind == ErrKindOther {
			if prevErr, ok := prev.(*Error); ok {
				e.Kind = prevErr.Kind
			}
		}
		if e.Code == "" {
			if prevErr, ok := prev.(*Error); ok {
				e.Code = prevErr.Code
			}
		}
	}

	return e
}

// WrapError wraps err with an additional message, propagating kind/code/spans
// from err when not otherwise specified.
func WrapError(err error, message string) error {
	return NewError(message, err)
}

// WrapErrorf is WrapError with a format specifier.
func WrapErrorf(err error, format string, args ...interface{}) error {
	return NewError(fmt.Sprintf(format, args...), err)
}

// Error implements Go's error interface.
func (e *Error) Error() string {
	var b util.StringBuilder
	e.printError(&b, nil)
	return b.String()
}

func (e *Error) printError(b *util.StringBuilder, next *Error) {
	initialLen := b.Len()
	pad := func(str string) {
		if b.Len() != initialLen {
			b.WriteString(str)
		}
	}

	if len(e.Op) > 0 {
		b.WriteString(string(e.Op))
	}

	if len(e.Message) > 0 {
		pad(": ")
		b.WriteString(e.Message)
	}

	if len(e.Spans) > 0 {
		if next == nil || !reflect.DeepEqual(next.Spans, e.Spans) {
			if b.Len() == initialLen {
				b.WriteString("at ")
			} else {
				b.WriteString(" at ")
			}
			for i, s := range e.Spans {
				if i > 0 {
					b.WriteString(", ")
				}
				b.WriteString(s.String())
			}
		}
	}

	if e.Code != "" {
		if next == nil || next.Code != e.Code {
			pad(": ")
			b.WriteString(string(e.Code))
		}
	}

	if e.Kind != ErrKindOther {
		if next == nil || next.Kind != e.Kind {
			pad(": ")
			b.WriteString(e.Kind.String())
		}
	}

	if e.Err != nil {
		if prev, ok := e.Err.(*Error); ok {
			pad(":\n  ")
			prev.printError(b, e)
		} else {
			pad(": ")
			b.WriteString(e.Err.Error())
		}
	}
}

// MarshalJSON implements json.Marshaler, encoding the Error as a Diagnostic
// record: {severity, span(s), message}.
func (e *Error) MarshalJSON() ([]byte, error) {
	return jsoniter.Marshal(e)
}

func init() {
	jsoniter.RegisterTypeEncoder("relaxng.Error", errorMarshaller{})
}
