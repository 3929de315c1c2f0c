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

package restriction_test

import (
	"testing"

	"github.com/relaxng/rngcore/internal/testutil"
	"github.com/relaxng/rngcore/relaxng"
	"github.com/relaxng/rngcore/relaxng/ast"
	"github.com/relaxng/rngcore/relaxng/compiler"
	"github.com/relaxng/rngcore/relaxng/internal/rngtest"
	"github.com/relaxng/rngcore/relaxng/restriction"

	. "github.com/onsi/ginkgo"
	. "github.com/onsi/gomega"
)

func TestRestriction(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "Restriction Checker Suite")
}

// compileOK compiles root and requires the compiler itself to accept it,
// since every restriction fixture here is meant to fail only at the
// restriction-checking stage.
func compileOK(root ast.Pattern) *relaxng.Schema {
	c := compiler.New(nil, rngtest.NewFileSet(), rngtest.NewFileSet())
	schema, errs := c.Compile(root, rngtest.RootFile)
	ExpectWithOffset(1, errs.HaveOccurred()).To(BeFalse(), "fixture must compile cleanly")
	return schema
}

var _ = Describe("Check", func() {
	It("is a no-op on a schema that violates nothing", func() {
		schema := compileOK(rngtest.ElName("r", rngtest.AttrName("a", rngtest.Text())))
		errs := restriction.Check(schema)
		Expect(errs.HaveOccurred()).To(BeFalse())
	})

	It("is deterministic and idempotent", func() {
		schema := compileOK(rngtest.Text())
		first := restriction.Check(schema)
		second := restriction.Check(schema)
		Expect(len(first.Errors)).To(Equal(len(second.Errors)))
	})

	Describe("start contents", func() {
		It("rejects a start pattern equivalent to text", func() {
			schema := compileOK(rngtest.Text())
			errs := restriction.Check(schema)
			Expect(errs.Errors).To(ContainElement(testutil.MatchDiagnostic(
				testutil.CodeIs(relaxng.CodeStartNotElementContentful),
			)))
		})

		It("rejects a start pattern equivalent to empty", func() {
			schema := compileOK(rngtest.Empty())
			errs := restriction.Check(schema)
			Expect(errs.Errors).To(ContainElement(testutil.MatchDiagnostic(
				testutil.CodeIs(relaxng.CodeStartNotElementContentful),
			)))
		})

		It("rejects a start pattern equivalent to data type=\"string\"", func() {
			schema := compileOK(rngtest.Data("string"))
			errs := restriction.Check(schema)
			Expect(errs.Errors).To(ContainElement(testutil.MatchDiagnostic(
				testutil.CodeIs(relaxng.CodeStartNotElementContentful),
			)))
		})

		It("accepts a start pattern reached only through a ref to an element", func() {
			g := rngtest.Grammar(
				rngtest.Start(rngtest.Ref("a")),
				rngtest.Define("a", rngtest.ElName("a", rngtest.Empty())),
			)
			schema := compileOK(g)
			errs := restriction.Check(schema)
			Expect(errs.HaveOccurred()).To(BeFalse())
		})

		It("accepts a choice as long as every branch is element-contentful", func() {
			schema := compileOK(rngtest.Choice(
				rngtest.ElName("a", rngtest.Empty()),
				rngtest.ElName("b", rngtest.Empty()),
			))
			errs := restriction.Check(schema)
			Expect(errs.HaveOccurred()).To(BeFalse())
		})
	})

	Describe("xmlns attribute prohibition", func() {
		It("rejects an attribute named xmlns", func() {
			schema := compileOK(rngtest.ElName("r", rngtest.AttrName("xmlns", rngtest.Text())))
			errs := restriction.Check(schema)
			Expect(errs.Errors).To(ContainElement(testutil.MatchDiagnostic(
				testutil.CodeIs(relaxng.CodeXmlnsAttributeForbidden),
			)))
		})

		It("rejects an attribute name class in the xmlns namespace", func() {
			schema := compileOK(rngtest.ElName("r", rngtest.Attr(
				rngtest.NsName("http://www.w3.org/2000/xmlns/", nil), rngtest.Text())))
			errs := restriction.Check(schema)
			Expect(errs.Errors).To(ContainElement(testutil.MatchDiagnostic(
				testutil.CodeIs(relaxng.CodeXmlnsAttributeForbidden),
			)))
		})

		It("clears the violation when anyName's except excludes xmlns", func() {
			schema := compileOK(rngtest.ElName("r", rngtest.Attr(
				rngtest.AnyName(rngtest.Name("xmlns")), rngtest.Text())))
			errs := restriction.Check(schema)
			Expect(errs.HaveOccurred()).To(BeFalse())
		})

		It("rejects a plain anyName attribute since it matches xmlns too", func() {
			schema := compileOK(rngtest.ElName("r", rngtest.Attr(
				rngtest.AnyName(nil), rngtest.Text())))
			errs := restriction.Check(schema)
			Expect(errs.Errors).To(ContainElement(testutil.MatchDiagnostic(
				testutil.CodeIs(relaxng.CodeXmlnsAttributeForbidden),
			)))
		})
	})

	Describe("attribute nesting", func() {
		It("rejects an attribute pattern nested inside another attribute", func() {
			schema := compileOK(rngtest.ElName("r", rngtest.AttrName("a",
				rngtest.AttrName("b", rngtest.Text()))))
			errs := restriction.Check(schema)
			Expect(errs.Errors).To(ContainElement(testutil.MatchDiagnostic(
				testutil.CodeIs(relaxng.CodeAttributeNesting),
			)))
		})
	})

	Describe("list contents", func() {
		It("rejects list containing element", func() {
			schema := compileOK(rngtest.ElName("r", rngtest.List(rngtest.ElName("c", rngtest.Empty()))))
			errs := restriction.Check(schema)
			Expect(errs.Errors).To(ContainElement(testutil.MatchDiagnostic(
				testutil.CodeIs(relaxng.CodeListContainsElement),
			)))
		})

		It("rejects list containing attribute", func() {
			schema := compileOK(rngtest.ElName("r", rngtest.List(rngtest.AttrName("a", rngtest.Text()))))
			errs := restriction.Check(schema)
			Expect(errs.Errors).To(ContainElement(testutil.MatchDiagnostic(
				testutil.CodeIs(relaxng.CodeListContainsAttribute),
			)))
		})

		It("rejects list containing another list", func() {
			schema := compileOK(rngtest.ElName("r", rngtest.List(rngtest.List(rngtest.Text()))))
			errs := restriction.Check(schema)
			Expect(errs.Errors).To(ContainElement(testutil.MatchDiagnostic(
				testutil.CodeIs(relaxng.CodeListContainsList),
			)))
		})

		It("rejects list containing interleave", func() {
			schema := compileOK(rngtest.ElName("r", rngtest.List(rngtest.Interleave(
				rngtest.Data("token"), rngtest.Data("token")))))
			errs := restriction.Check(schema)
			Expect(errs.Errors).To(ContainElement(testutil.MatchDiagnostic(
				testutil.CodeIs(relaxng.CodeListContainsInterleave),
			)))
		})

		It("rejects list containing text", func() {
			schema := compileOK(rngtest.ElName("r", rngtest.List(rngtest.Text())))
			errs := restriction.Check(schema)
			Expect(errs.Errors).To(ContainElement(testutil.MatchDiagnostic(
				testutil.CodeIs(relaxng.CodeListContainsText),
			)))
		})

		It("accepts list containing only data and text-like content", func() {
			schema := compileOK(rngtest.ElName("r", rngtest.List(rngtest.Group(
				rngtest.Data("token"), rngtest.Data("token")))))
			errs := restriction.Check(schema)
			Expect(errs.HaveOccurred()).To(BeFalse())
		})

		It("still flags a define's violation under list content even after the same define was already walked clean at top level", func() {
			// start = element root { ref foo, ref bar }
			// foo = element a { text }
			// bar = list { ref foo }
			// Walking "foo" via the first branch (ctx={}) must not suppress the
			// genuine violation found walking it again via "bar" (ctx.insideList).
			g := rngtest.Grammar(
				rngtest.Start(rngtest.ElName("root", rngtest.Group(rngtest.Ref("foo"), rngtest.Ref("bar")))),
				rngtest.Define("foo", rngtest.ElName("a", rngtest.Text())),
				rngtest.Define("bar", rngtest.List(rngtest.Ref("foo"))),
			)
			schema := compileOK(g)
			errs := restriction.Check(schema)
			Expect(errs.Errors).To(ContainElement(testutil.MatchDiagnostic(
				testutil.CodeIs(relaxng.CodeListContainsElement),
			)))
		})
	})

	Describe("data except restriction", func() {
		It("rejects an except that contains an element pattern", func() {
			schema := compileOK(rngtest.ElName("r", rngtest.AttrName("a",
				rngtest.DataExcept("", "string", rngtest.ElName("x", rngtest.Empty())))))
			errs := restriction.Check(schema)
			Expect(errs.Errors).To(ContainElement(testutil.MatchDiagnostic(
				testutil.CodeIs(relaxng.CodeDataExceptForbiddenContent),
			)))
		})

		It("accepts an except containing a plain value", func() {
			schema := compileOK(rngtest.ElName("r", rngtest.AttrName("a",
				rngtest.DataExcept("", "string", rngtest.Value("forbidden")))))
			errs := restriction.Check(schema)
			Expect(errs.HaveOccurred()).To(BeFalse())
		})
	})

	Describe("interleave disjointness", func() {
		It("rejects interleave with text on both sides", func() {
			schema := compileOK(rngtest.ElName("r", rngtest.Interleave(rngtest.Text(), rngtest.Text())))
			errs := restriction.Check(schema)
			Expect(errs.Errors).To(ContainElement(testutil.MatchDiagnostic(
				testutil.CodeIs(relaxng.CodeInterleaveTextOverlap),
			)))
		})

		It("rejects interleave whose branches can both match the same attribute name", func() {
			schema := compileOK(rngtest.ElName("r", rngtest.Interleave(
				rngtest.AttrName("a", rngtest.Text()),
				rngtest.AttrName("a", rngtest.Text()),
			)))
			errs := restriction.Check(schema)
			Expect(errs.Errors).To(ContainElement(testutil.MatchDiagnostic(
				testutil.CodeIs(relaxng.CodeInterleaveAttributeOverlap),
			)))
		})

		It("accepts interleave with disjoint element and attribute name classes", func() {
			schema := compileOK(rngtest.ElName("r", rngtest.Interleave(
				rngtest.Group(rngtest.AttrName("a", rngtest.Text()), rngtest.ElName("x", rngtest.Empty())),
				rngtest.Group(rngtest.AttrName("b", rngtest.Text()), rngtest.ElName("y", rngtest.Empty())),
			)))
			errs := restriction.Check(schema)
			Expect(errs.HaveOccurred()).To(BeFalse())
		})
	})

	Describe("group and oneOrMore attribute disjointness", func() {
		It("rejects a group whose two sides can both match the same attribute", func() {
			schema := compileOK(rngtest.ElName("r", rngtest.Group(
				rngtest.AttrName("a", rngtest.Text()),
				rngtest.AttrName("a", rngtest.Text()),
			)))
			errs := restriction.Check(schema)
			Expect(errs.Errors).To(ContainElement(testutil.MatchDiagnostic(
				testutil.CodeIs(relaxng.CodeGroupAttributeOverlap),
			)))
		})

		It("rejects oneOrMore whose content can match the same attribute name on two different paths", func() {
			schema := compileOK(rngtest.ElName("r", rngtest.OneOrMore(rngtest.Choice(
				rngtest.AttrName("a", rngtest.Text()),
				rngtest.AttrName("a", rngtest.Text()),
			))))
			errs := restriction.Check(schema)
			Expect(errs.Errors).To(ContainElement(testutil.MatchDiagnostic(
				testutil.CodeIs(relaxng.CodeOneOrMoreAttributeOverlap),
			)))
		})

		It("accepts a oneOrMore over a single attribute, since the check only flags a single expansion pass seeing duplicates", func() {
			schema := compileOK(rngtest.ElName("r", rngtest.OneOrMore(rngtest.AttrName("a", rngtest.Text()))))
			errs := restriction.Check(schema)
			Expect(errs.HaveOccurred()).To(BeFalse())
		})

		It("accepts a group whose two sides match disjoint attributes", func() {
			schema := compileOK(rngtest.ElName("r", rngtest.Group(
				rngtest.AttrName("a", rngtest.Text()),
				rngtest.AttrName("b", rngtest.Text()),
			)))
			errs := restriction.Check(schema)
			Expect(errs.HaveOccurred()).To(BeFalse())
		})
	})

	Describe("wildcard except restrictions", func() {
		It("rejects anyName except containing anyName", func() {
			schema := compileOK(rngtest.El(
				rngtest.AnyName(rngtest.AnyName(nil)), rngtest.Empty()))
			errs := restriction.Check(schema)
			Expect(errs.Errors).To(ContainElement(testutil.MatchDiagnostic(
				testutil.CodeIs(relaxng.CodeAnyNameExceptContainsAnyName),
			)))
		})

		It("rejects nsName except containing anyName", func() {
			schema := compileOK(rngtest.El(
				rngtest.NsName("urn:example", rngtest.AnyName(nil)), rngtest.Empty()))
			errs := restriction.Check(schema)
			Expect(errs.Errors).To(ContainElement(testutil.MatchDiagnostic(
				testutil.CodeIs(relaxng.CodeNsNameExceptContainsWildcard),
			)))
		})

		It("rejects nsName except containing nsName", func() {
			schema := compileOK(rngtest.El(
				rngtest.NsName("urn:example", rngtest.NsName("urn:other", nil)), rngtest.Empty()))
			errs := restriction.Check(schema)
			Expect(errs.Errors).To(ContainElement(testutil.MatchDiagnostic(
				testutil.CodeIs(relaxng.CodeNsNameExceptContainsWildcard),
			)))
		})

		It("accepts nsName except containing a plain name", func() {
			schema := compileOK(rngtest.El(
				rngtest.NsName("urn:example", rngtest.Name("forbidden")), rngtest.Empty()))
			errs := restriction.Check(schema)
			Expect(errs.HaveOccurred()).To(BeFalse())
		})
	})

	Describe("cyclic grammars", func() {
		It("terminates on a self-recursive define instead of looping forever", func() {
			g := rngtest.Grammar(
				rngtest.Start(rngtest.Ref("a")),
				rngtest.Define("a", rngtest.ElName("a", rngtest.Choice(rngtest.Ref("a"), rngtest.Empty()))),
			)
			schema := compileOK(g)
			errs := restriction.Check(schema)
			Expect(errs.HaveOccurred()).To(BeFalse())
		})

		It("terminates on a mutually recursive pair of defines", func() {
			g := rngtest.Grammar(
				rngtest.Start(rngtest.Ref("a")),
				rngtest.Define("a", rngtest.ElName("a", rngtest.Ref("b"))),
				rngtest.Define("b", rngtest.ElName("b", rngtest.Choice(rngtest.Ref("a"), rngtest.Empty()))),
			)
			schema := compileOK(g)
			errs := restriction.Check(schema)
			Expect(errs.HaveOccurred()).To(BeFalse())
		})
	})
})
