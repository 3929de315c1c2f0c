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

package datatype_test

import (
	"testing"

	"github.com/relaxng/rngcore/relaxng"
	"github.com/relaxng/rngcore/relaxng/datatype"

	. "github.com/onsi/ginkgo"
	. "github.com/onsi/gomega"
)

func TestDatatype(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "Datatype Registry Suite")
}

const xsdURI = "http://www.w3.org/2001/XMLSchema-datatypes"

var emptyCtx = fakeCtx{}

type fakeCtx struct{ prefixes map[string]string }

func (c fakeCtx) ResolveNamespacePrefix(prefix string) (string, bool) {
	uri, ok := c.prefixes[prefix]
	return uri, ok
}

func lookup(lib datatype.Library, name string, params ...relaxng.Param) relaxng.Datatype {
	dt, err := lib.LookupType(name, params, emptyCtx)
	ExpectWithOffset(1, err).NotTo(HaveOccurred())
	return dt
}

var _ = Describe("Registry", func() {
	var reg *datatype.Registry

	BeforeEach(func() {
		reg = datatype.NewRegistry()
	})

	It("resolves the RELAX NG built-in library under the empty URI", func() {
		lib, ok := reg.Lookup("")
		Expect(ok).To(BeTrue())
		Expect(lib.URI()).To(Equal(""))
	})

	It("resolves the XML Schema library under its canonical URI", func() {
		lib, ok := reg.Lookup(xsdURI)
		Expect(ok).To(BeTrue())
		Expect(lib.URI()).To(Equal(xsdURI))
	})

	It("reports an unknown library as not found rather than panicking", func() {
		_, ok := reg.Lookup("urn:example:nonsense")
		Expect(ok).To(BeFalse())
	})
})

var _ = Describe("RELAX NG built-in library", func() {
	var lib datatype.Library

	BeforeEach(func() {
		lib, _ = datatype.NewRegistry().Lookup("")
	})

	It("accepts any lexical value for string, including the empty string", func() {
		dt := lookup(lib, "string")
		Expect(dt.Allows("", emptyCtx)).To(Succeed())
		Expect(dt.Allows("anything at all", emptyCtx)).To(Succeed())
	})

	It("compares string values by exact equality", func() {
		dt := lookup(lib, "string")
		equal, err := dt.Equal("a  b", "a b", emptyCtx)
		Expect(err).NotTo(HaveOccurred())
		Expect(equal).To(BeFalse())
	})

	It("compares token values after whitespace collapse", func() {
		dt := lookup(lib, "token")
		equal, err := dt.Equal("  a   b  ", "a b", emptyCtx)
		Expect(err).NotTo(HaveOccurred())
		Expect(equal).To(BeTrue())
	})

	It("rejects facets on string and token, per §4.1", func() {
		_, err := lib.LookupType("string", []relaxng.Param{{Name: "pattern", Value: "a+"}}, emptyCtx)
		Expect(err).To(HaveOccurred())
	})

	It("reports an unknown type as a recoverable error, not a panic", func() {
		_, err := lib.LookupType("decimal", nil, emptyCtx)
		Expect(err).To(HaveOccurred())
	})
})

var _ = Describe("XML Schema library", func() {
	var lib datatype.Library

	BeforeEach(func() {
		lib, _ = datatype.NewRegistry().Lookup(xsdURI)
	})

	Describe("positiveInteger", func() {
		It("enforces its implicit lower bound of 1 before any user facet applies", func() {
			dt := lookup(lib, "positiveInteger")
			Expect(dt.Allows("1", emptyCtx)).To(Succeed())
			Expect(dt.Allows("0", emptyCtx)).To(HaveOccurred())
			Expect(dt.Allows("-1", emptyCtx)).To(HaveOccurred())
		})

		It("lets a user facet tighten, never loosen, the implicit bound", func() {
			_, err := lib.LookupType("positiveInteger", []relaxng.Param{{Name: "minInclusive", Value: "5"}}, emptyCtx)
			Expect(err).NotTo(HaveOccurred())

			dt := lookup(lib, "positiveInteger", relaxng.Param{Name: "minInclusive", Value: "5"})
			Expect(dt.Allows("5", emptyCtx)).To(Succeed())
			Expect(dt.Allows("4", emptyCtx)).To(HaveOccurred())
		})

		It("treats lexically distinct but value-equal forms as equal", func() {
			dt := lookup(lib, "positiveInteger")
			equal, err := dt.Equal("01", "1", emptyCtx)
			Expect(err).NotTo(HaveOccurred())
			Expect(equal).To(BeTrue())
		})

		It("keeps positiveInteger's floor of 1 when given a looser minInclusive", func() {
			// minInclusive=0 is incompatible with positiveInteger's own
			// implicit bound once both are considered together: the facet
			// itself is well-formed but the effective range is empty only
			// when combined with an incompatible maxInclusive; a plain
			// looser minInclusive is simply narrowed by the type's own
			// floor rather than rejected, so assert the floor still holds.
			dt := lookup(lib, "positiveInteger", relaxng.Param{Name: "minInclusive", Value: "0"})
			Expect(dt.Allows("0", emptyCtx)).To(HaveOccurred())
		})
	})

	Describe("pattern facet anchoring", func() {
		It("rejects a value that only contains a substring match", func() {
			dt := lookup(lib, "string", relaxng.Param{Name: "pattern", Value: "[A-Z]{2}-[0-9]{4}"})
			Expect(dt.Allows("AB-1234", emptyCtx)).To(Succeed())
			Expect(dt.Allows("xxAB-1234yy", emptyCtx)).To(HaveOccurred())
			Expect(dt.Allows("AB-12345", emptyCtx)).To(HaveOccurred())
		})
	})

	Describe("minInclusive/maxInclusive compile-time validation", func() {
		It("rejects minInclusive greater than maxInclusive", func() {
			_, err := lib.LookupType("integer", []relaxng.Param{
				{Name: "minInclusive", Value: "10"},
				{Name: "maxInclusive", Value: "5"},
			}, emptyCtx)
			Expect(err).To(HaveOccurred())
		})

		It("accepts minInclusive equal to maxInclusive", func() {
			_, err := lib.LookupType("integer", []relaxng.Param{
				{Name: "minInclusive", Value: "5"},
				{Name: "maxInclusive", Value: "5"},
			}, emptyCtx)
			Expect(err).NotTo(HaveOccurred())
		})
	})

	Describe("anyURI leniency (§9 open question)", func() {
		It("accepts any Unicode string, including whitespace", func() {
			dt := lookup(lib, "anyURI")
			Expect(dt.Allows("not a uri at all, has spaces", emptyCtx)).To(Succeed())
			Expect(dt.Allows("", emptyCtx)).To(Succeed())
		})
	})

	Describe("QName", func() {
		It("resolves the lexical prefix against the in-scope context for equality", func() {
			ctx := fakeCtx{prefixes: map[string]string{"a": "urn:one", "b": "urn:one"}}
			dt := lookup(lib, "QName")
			equal, err := dt.Equal("a:foo", "b:foo", ctx)
			Expect(err).NotTo(HaveOccurred())
			Expect(equal).To(BeTrue(), "same expanded name under different prefixes must compare equal")
		})

		It("rejects a QName whose prefix is unbound", func() {
			dt := lookup(lib, "QName")
			Expect(dt.Allows("unbound:foo", emptyCtx)).To(HaveOccurred())
		})
	})

	Describe("boolean", func() {
		It("accepts the XSD lexical forms and rejects everything else", func() {
			dt := lookup(lib, "boolean")
			for _, ok := range []string{"true", "false", "1", "0"} {
				Expect(dt.Allows(ok, emptyCtx)).To(Succeed())
			}
			Expect(dt.Allows("yes", emptyCtx)).To(HaveOccurred())
		})
	})

	Describe("unsupported/unknown datatypes", func() {
		It("reports an unknown type name as a recoverable error", func() {
			_, err := lib.LookupType("notAType", nil, emptyCtx)
			Expect(err).To(HaveOccurred())
		})
	})
})
