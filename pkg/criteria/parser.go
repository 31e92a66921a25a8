// Licensed to Apache Software Foundation (ASF) under one or more contributor
// license agreements. See the NOTICE file distributed with
// this work for additional information regarding copyright
// ownership. Apache Software Foundation (ASF) licenses this file to you under
// the Apache License, Version 2.0 (the "License"); you may
// not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing,
// software distributed under the License is distributed on an
// "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY
// KIND, either express or implied.  See the License for the
// specific language governing permissions and limitations
// under the License.

package criteria

import "github.com/pkg/errors"

// Parse parses a single derivation segment into a syntax tree. Boolean
// chains with a single term collapse to that term, and redundant parentheses
// leave no trace in the tree.
func Parse(segment string) (Node, error) {
	grammar, err := exprParser.ParseString("", segment)
	if err != nil {
		return nil, errors.WithMessage(ErrSyntax, err.Error())
	}
	return grammar.toAST(), nil
}

func (g *grammarExpr) toAST() Node {
	children := make([]Node, 0, 1+len(g.Right))
	children = append(children, g.Left.toAST())
	for _, r := range g.Right {
		children = append(children, r.Right.toAST())
	}
	if len(children) == 1 {
		return children[0]
	}
	return &And{Children: children}
}

func (g *grammarOrChain) toAST() Node {
	children := make([]Node, 0, 1+len(g.Right))
	children = append(children, g.Left.toAST())
	for _, r := range g.Right {
		children = append(children, r.Right.toAST())
	}
	if len(children) == 1 {
		return children[0]
	}
	return &Or{Children: children}
}

func (g *grammarPrimary) toAST() Node {
	if g.Paren != nil {
		return g.Paren.toAST()
	}
	return &Comparison{
		Field:    g.Comparison.Field,
		Operator: g.Comparison.Operator,
		Values:   g.Comparison.Values,
	}
}
