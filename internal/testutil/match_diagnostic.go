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

// Package testutil provides gomega matchers shared by the relaxng test
// suites, adapted from the teacher repo's own error matchers.
package testutil

import (
	"github.com/relaxng/rngcore/relaxng"

	"github.com/onsi/gomega"
	"github.com/onsi/gomega/gstruct"
	"github.com/onsi/gomega/types"
)

// ErrorFieldsMatcher sets up fields to match on a *relaxng.Error.
type ErrorFieldsMatcher func(gstruct.Fields)

// MessageEqual matches the Message field exactly.
func MessageEqual(s string) ErrorFieldsMatcher {
	return func(fields gstruct.Fields) {
		fields["Message"] = gomega.Equal(s)
	}
}

// MessageContainSubstring matches the Message field by substring.
func MessageContainSubstring(s string) ErrorFieldsMatcher {
	return func(fields gstruct.Fields) {
		fields["Message"] = gomega.ContainSubstring(s)
	}
}

// KindIs matches the Kind field.
func KindIs(kind relaxng.ErrKind) ErrorFieldsMatcher {
	return func(fields gstruct.Fields) {
		fields["Kind"] = gomega.Equal(kind)
	}
}

// CodeIs matches the Code field.
func CodeIs(code relaxng.Code) ErrorFieldsMatcher {
	return func(fields gstruct.Fields) {
		fields["Code"] = gomega.Equal(code)
	}
}

// MatchDiagnostic matches a *relaxng.Error with the given fields.
//
//	Expect(err).Should(MatchDiagnostic(
//		MessageContainSubstring("undefined pattern"),
//		KindIs(relaxng.ErrKindCompile),
//		CodeIs(relaxng.CodeUnresolvedRef),
//	))
func MatchDiagnostic(matchers ...ErrorFieldsMatcher) types.GomegaMatcher {
	fields := gstruct.Fields{}
	for _, matcher := range matchers {
		matcher(fields)
	}
	return gstruct.PointTo(gstruct.MatchFields(gstruct.IgnoreExtras, fields))
}

// ConsistOfDiagnostics matches a relaxng.Errors value by its Errors slice.
func ConsistOfDiagnostics(matchers ...interface{}) types.GomegaMatcher {
	return gstruct.MatchAllFields(gstruct.Fields{
		"Errors": gomega.ConsistOf(matchers...),
	})
}
