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

package compiler_test

import (
	"testing"

	"github.com/relaxng/rngcore/internal/testutil"
	"github.com/relaxng/rngcore/relaxng"
	"github.com/relaxng/rngcore/relaxng/ast"
	"github.com/relaxng/rngcore/relaxng/compiler"
	"github.com/relaxng/rngcore/relaxng/internal/rngtest"

	. "github.com/onsi/ginkgo"
	. "github.com/onsi/gomega"
)

func TestCompiler(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "Compiler Suite")
}

func compile(root ast.Pattern) (*relaxng.Schema, relaxng.Errors) {
	c := compiler.New(nil, rngtest.NewFileSet(), rngtest.NewFileSet())
	return c.Compile(root, rngtest.RootFile)
}

var _ = Describe("Compile", func() {
	It("wraps a bare top-level pattern as an implicit single-start grammar", func() {
		schema, errs := compile(rngtest.ElName("r", rngtest.Empty()))
		Expect(errs.HaveOccurred()).To(BeFalse())
		Expect(schema.Start).To(BeAssignableToTypeOf(&relaxng.ElementPattern{}))
	})

	It("resolves a ref to a sibling define", func() {
		g := rngtest.Grammar(
			rngtest.Start(rngtest.Ref("a")),
			rngtest.Define("a", rngtest.ElName("a", rngtest.Empty())),
		)
		schema, errs := compile(g)
		Expect(errs.HaveOccurred()).To(BeFalse())
		ref, ok := schema.Start.(*relaxng.RefPattern)
		Expect(ok).To(BeTrue())
		Expect(ref.Define.Name).To(Equal("a"))
	})

	It("supports mutually cyclic defines via two-phase shell/body construction", func() {
		g := rngtest.Grammar(
			rngtest.Start(rngtest.Ref("a")),
			rngtest.Define("a", rngtest.ElName("a", rngtest.Ref("b"))),
			rngtest.Define("b", rngtest.ElName("b", rngtest.Choice(rngtest.Ref("a"), rngtest.Empty()))),
		)
		schema, errs := compile(g)
		Expect(errs.HaveOccurred()).To(BeFalse())
		Expect(schema.Defines["a"].Pattern).NotTo(BeNil())
		Expect(schema.Defines["b"].Pattern).NotTo(BeNil())
	})

	It("reports an unresolved ref with a did-you-mean suggestion for a near-miss name", func() {
		g := rngtest.Grammar(
			rngtest.Start(rngtest.Ref("foo")),
			rngtest.Define("fop", rngtest.Empty()),
		)
		_, errs := compile(g)
		Expect(errs.HaveOccurred()).To(BeTrue())
		Expect(errs.Errors).To(ContainElement(testutil.MatchDiagnostic(
			testutil.MessageContainSubstring("did you mean"),
			testutil.CodeIs(relaxng.CodeUnresolvedRef),
		)))
	})

	It("reports an unresolved ref plainly when nothing is close enough to suggest", func() {
		g := rngtest.Grammar(
			rngtest.Start(rngtest.Ref("zzzzzzzzzz")),
			rngtest.Define("a", rngtest.Empty()),
		)
		_, errs := compile(g)
		Expect(errs.HaveOccurred()).To(BeTrue())
		Expect(errs.Errors).To(ContainElement(testutil.MatchDiagnostic(
			testutil.CodeIs(relaxng.CodeUnresolvedRef),
		)))
	})

	It("folds same-named defines sharing a choice combine into one pattern", func() {
		g := rngtest.Grammar(
			rngtest.Start(rngtest.Ref("a")),
			rngtest.CombinedDefine("a", ast.CombineChoice, rngtest.ElName("x", rngtest.Empty())),
			rngtest.CombinedDefine("a", ast.CombineChoice, rngtest.ElName("y", rngtest.Empty())),
		)
		schema, errs := compile(g)
		Expect(errs.HaveOccurred()).To(BeFalse())
		choice, ok := schema.Defines["a"].Pattern.(*relaxng.ChoicePattern)
		Expect(ok).To(BeTrue())
		Expect(choice.Patterns).To(HaveLen(2))
	})

	It("rejects same-named defines with no combine attribute", func() {
		g := rngtest.Grammar(
			rngtest.Start(rngtest.Ref("a")),
			rngtest.Define("a", rngtest.ElName("x", rngtest.Empty())),
			rngtest.Define("a", rngtest.ElName("y", rngtest.Empty())),
		)
		_, errs := compile(g)
		Expect(errs.HaveOccurred()).To(BeTrue())
		Expect(errs.Errors).To(ContainElement(testutil.MatchDiagnostic(
			testutil.CodeIs(relaxng.CodeIncompatibleCombine),
		)))
	})

	It("rejects same-named defines that disagree on combine mode", func() {
		g := rngtest.Grammar(
			rngtest.Start(rngtest.Ref("a")),
			rngtest.CombinedDefine("a", ast.CombineChoice, rngtest.ElName("x", rngtest.Empty())),
			rngtest.CombinedDefine("a", ast.CombineInterleave, rngtest.ElName("y", rngtest.Empty())),
		)
		_, errs := compile(g)
		Expect(errs.HaveOccurred()).To(BeTrue())
		Expect(errs.Errors).To(ContainElement(testutil.MatchDiagnostic(
			testutil.CodeIs(relaxng.CodeIncompatibleCombine),
		)))
	})

	It("desugars optional to Choice(p, Empty)", func() {
		schema, errs := compile(rngtest.ElName("r", rngtest.Optional(rngtest.AttrName("a", rngtest.Text()))))
		Expect(errs.HaveOccurred()).To(BeFalse())
		el := schema.Start.(*relaxng.ElementPattern)
		choice, ok := el.Content.(*relaxng.ChoicePattern)
		Expect(ok).To(BeTrue())
		Expect(choice.Patterns).To(HaveLen(2))
		Expect(choice.Patterns[1]).To(BeAssignableToTypeOf(&relaxng.EmptyPattern{}))
	})

	It("desugars zeroOrMore to Choice(OneOrMore(p), Empty)", func() {
		schema, errs := compile(rngtest.ElName("r", rngtest.ZeroOrMore(rngtest.ElName("c", rngtest.Empty()))))
		Expect(errs.HaveOccurred()).To(BeFalse())
		el := schema.Start.(*relaxng.ElementPattern)
		choice, ok := el.Content.(*relaxng.ChoicePattern)
		Expect(ok).To(BeTrue())
		Expect(choice.Patterns).To(HaveLen(2))
		Expect(choice.Patterns[0]).To(BeAssignableToTypeOf(&relaxng.OneOrMorePattern{}))
	})

	It("desugars mixed to Interleave(p, Text)", func() {
		schema, errs := compile(rngtest.ElName("r", rngtest.Mixed(rngtest.ElName("c", rngtest.Empty()))))
		Expect(errs.HaveOccurred()).To(BeFalse())
		el := schema.Start.(*relaxng.ElementPattern)
		inter, ok := el.Content.(*relaxng.InterleavePattern)
		Expect(ok).To(BeTrue())
		Expect(inter.Patterns).To(HaveLen(2))
		Expect(inter.Patterns[1]).To(BeAssignableToTypeOf(&relaxng.TextPattern{}))
	})

	It("resolves parentRef in the lexically enclosing grammar, skipping the current scope", func() {
		nested := rngtest.Grammar(
			rngtest.Start(rngtest.ParentRef("outer")),
		)
		g := rngtest.Grammar(
			rngtest.Start(nested),
			rngtest.Define("outer", rngtest.ElName("o", rngtest.Empty())),
		)
		schema, errs := compile(g)
		Expect(errs.HaveOccurred()).To(BeFalse())
		wrapper := schema.Start.(*relaxng.RefPattern)
		ref := wrapper.Define.Pattern.(*relaxng.RefPattern)
		Expect(ref.Define.Name).To(Equal("outer"))
	})

	It("rejects parentRef when there is no enclosing grammar", func() {
		_, errs := compile(rngtest.ParentRef("outer"))
		Expect(errs.HaveOccurred()).To(BeTrue())
	})

	It("instantiates a data datatype and validates facet params at compile time", func() {
		_, errs := compile(rngtest.ElName("r", rngtest.AttrName("a",
			rngtest.XSDData("positiveInteger"))))
		Expect(errs.HaveOccurred()).To(BeFalse())
	})

	It("reports invalid facet parameters as a compile error", func() {
		_, errs := compile(rngtest.ElName("r", rngtest.AttrName("a",
			rngtest.XSDData("integer", rngtest.Facet("minInclusive", "10"), rngtest.Facet("maxInclusive", "5")))))
		Expect(errs.HaveOccurred()).To(BeTrue())
		Expect(errs.Errors).To(ContainElement(testutil.MatchDiagnostic(
			testutil.CodeIs(relaxng.CodeInvalidFacet),
		)))
	})

	It("reports an unknown datatype library as a compile error", func() {
		_, errs := compile(rngtest.ElName("r", rngtest.AttrName("a",
			&ast.Data{LibraryURI: "urn:example:nonsense", Name: "foo"})))
		Expect(errs.HaveOccurred()).To(BeTrue())
		Expect(errs.Errors).To(ContainElement(testutil.MatchDiagnostic(
			testutil.CodeIs(relaxng.CodeUnknownDatatypeLibrary),
		)))
	})

	It("resolves an include, splicing the included grammar's defines", func() {
		files := rngtest.NewFileSet().Add("lib.rng", rngtest.Grammar(
			rngtest.Define("a", rngtest.ElName("a", rngtest.Empty())),
		))
		c := compiler.New(nil, files, files)
		g := rngtest.Grammar(rngtest.Start(rngtest.Ref("a")))
		g.Includes = []*ast.Include{{HRef: "lib.rng"}}
		schema, errs := c.Compile(g, rngtest.RootFile)
		Expect(errs.HaveOccurred()).To(BeFalse())
		Expect(schema.Defines["a"].Pattern).NotTo(BeNil())
	})

	It("lets an include's own define override the included file's same-named rule", func() {
		files := rngtest.NewFileSet().Add("lib.rng", rngtest.Grammar(
			rngtest.Define("a", rngtest.ElName("libVersion", rngtest.Empty())),
		))
		c := compiler.New(nil, files, files)
		g := rngtest.Grammar(rngtest.Start(rngtest.Ref("a")))
		g.Includes = []*ast.Include{{
			HRef:      "lib.rng",
			Overrides: []*ast.Define{rngtest.Define("a", rngtest.ElName("overridden", rngtest.Empty()))},
		}}
		schema, errs := c.Compile(g, rngtest.RootFile)
		Expect(errs.HaveOccurred()).To(BeFalse())
		el := schema.Defines["a"].Pattern.(*relaxng.ElementPattern)
		Expect(el.NameClass.(*relaxng.QName).LocalName).To(Equal("overridden"))
	})

	It("detects an include cycle", func() {
		files := rngtest.NewFileSet()
		a := rngtest.Grammar(rngtest.Define("x", rngtest.Empty()))
		a.Includes = []*ast.Include{{HRef: "a.rng"}}
		files.Add("a.rng", a)
		c := compiler.New(nil, files, files)
		g := rngtest.Grammar(rngtest.Start(rngtest.Ref("x")))
		g.Includes = []*ast.Include{{HRef: "a.rng"}}
		_, errs := c.Compile(g, rngtest.RootFile)
		Expect(errs.HaveOccurred()).To(BeTrue())
		Expect(errs.Errors).To(ContainElement(testutil.MatchDiagnostic(
			testutil.CodeIs(relaxng.CodeIncludeCycle),
		)))
	})

	It("resolves an externalRef by compiling the target independently and substituting its start", func() {
		files := rngtest.NewFileSet().Add("other.rng", rngtest.ElName("e", rngtest.Empty()))
		c := compiler.New(nil, files, files)
		schema, errs := c.Compile(rngtest.ElName("r", rngtest.ExternalRef("other.rng")), rngtest.RootFile)
		Expect(errs.HaveOccurred()).To(BeFalse())
		el := schema.Start.(*relaxng.ElementPattern)
		ref, ok := el.Content.(*relaxng.RefPattern)
		Expect(ok).To(BeTrue())
		Expect(ref.Define.Pattern).To(BeAssignableToTypeOf(&relaxng.ElementPattern{}))
	})
})

var _ = Describe("name class compilation", func() {
	It("compiles anyName with an except", func() {
		schema, errs := compile(rngtest.El(
			rngtest.AnyName(rngtest.Name("forbidden")),
			rngtest.Empty(),
		))
		Expect(errs.HaveOccurred()).To(BeFalse())
		el := schema.Start.(*relaxng.ElementPattern)
		any, ok := el.NameClass.(*relaxng.AnyNameClass)
		Expect(ok).To(BeTrue())
		Expect(any.Contains("", "forbidden")).To(BeFalse())
		Expect(any.Contains("", "allowed")).To(BeTrue())
	})

	It("compiles a name-class choice", func() {
		schema, errs := compile(rngtest.El(
			rngtest.NameChoice(rngtest.Name("a"), rngtest.Name("b")),
			rngtest.Empty(),
		))
		Expect(errs.HaveOccurred()).To(BeFalse())
		el := schema.Start.(*relaxng.ElementPattern)
		choice := el.NameClass.(*relaxng.ChoiceNameClass)
		Expect(choice.Contains("", "a")).To(BeTrue())
		Expect(choice.Contains("", "c")).To(BeFalse())
	})
})
