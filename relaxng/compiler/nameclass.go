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

package compiler

import (
	"github.com/relaxng/rngcore/relaxng"
	"github.com/relaxng/rngcore/relaxng/ast"
)

// compileNameClass translates a parsed name class into its model-graph
// form. Name classes carry no references and no datatype, so this never
// fails or needs ctx.
func (ctx *compileCtx) compileNameClass(nc ast.NameClass) relaxng.NameClass {
	switch nc := nc.(type) {
	case *ast.Name:
		return &relaxng.QName{
			NamespaceURI: nc.NamespaceURI,
			LocalName:    nc.LocalName,
			NodeSpan:     nc.Span(),
		}
	case *ast.AnyName:
		var except relaxng.NameClass
		if nc.Except != nil {
			except = ctx.compileNameClass(nc.Except)
		}
		return &relaxng.AnyNameClass{Except: except, NodeSpan: nc.Span()}
	case *ast.NsName:
		var except relaxng.NameClass
		if nc.Except != nil {
			except = ctx.compileNameClass(nc.Except)
		}
		return &relaxng.NsNameClass{NamespaceURI: nc.NamespaceURI, Except: except, NodeSpan: nc.Span()}
	case *ast.NameClassChoice:
		classes := make([]relaxng.NameClass, len(nc.Classes))
		for i, c := range nc.Classes {
			classes[i] = ctx.compileNameClass(c)
		}
		return &relaxng.ChoiceNameClass{Classes: classes, NodeSpan: nc.Span()}
	}
	panic("compiler: unreachable name class variant")
}
