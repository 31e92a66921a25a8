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

//nolint:govet // ignore fieldalignment in this file; layout is the expression grammar
package criteria

import (
	"fmt"
	"strings"

	"github.com/alecthomas/participle/v2"
	"github.com/alecthomas/participle/v2/lexer"
)

// Operator keywords, longest alternatives first so the lexer never matches a
// prefix of a longer keyword.
var operatorKeywords = []string{
	"not_equals_ignore_case", "equals_ignore_case",
	"not_equals", "equals",
	"not_one_of", "one_of",
	"not_contains", "contains",
	"not_starts_with", "starts_with",
	"not_ends_with", "ends_with",
	"not_between", "between",
	"greater_than", "less_than",
}

// Lexer and parser are initialized in init().
var (
	exprLexer  lexer.Definition
	exprParser *participle.Parser[grammarExpr]
)

func init() {
	exprLexer = lexer.MustSimple([]lexer.SimpleRule{
		{
			Name:    "Operator",
			Pattern: fmt.Sprintf(`\b(%s)\b`, strings.Join(operatorKeywords, "|")),
		},
		// Connectives are case-sensitive; "AND" is an ordinary word.
		{Name: "Connective", Pattern: `\b(and|or)\b`},
		{Name: "Paren", Pattern: `[()]`},
		{Name: "Word", Pattern: `[^\s()]+`},
		{Name: "whitespace", Pattern: `\s+`},
	})

	var err error
	exprParser, err = participle.Build[grammarExpr](
		participle.Lexer(exprLexer),
		participle.UseLookahead(2),
	)
	if err != nil {
		panic(fmt.Sprintf("failed to build criteria parser: %v", err))
	}
}

// grammarExpr is the root rule. A conjunction binds last: the or-chains on
// either side of an "and" are grouped before the "and" itself is applied, so
// "a and b or c" reads as "a and (b or c)". This is the precedence the
// expression language has always had and existing expressions depend on it;
// do not swap it for conventional boolean precedence.
type grammarExpr struct {
	Left  *grammarOrChain    `parser:"@@"`
	Right []*grammarAndRight `parser:"@@*"`
}

// grammarAndRight is one "and"-joined term after the first.
type grammarAndRight struct {
	Right *grammarOrChain `parser:"'and' @@"`
}

// grammarOrChain is a run of "or"-joined primaries.
type grammarOrChain struct {
	Left  *grammarPrimary   `parser:"@@"`
	Right []*grammarOrRight `parser:"@@*"`
}

// grammarOrRight is one "or"-joined primary after the first.
type grammarOrRight struct {
	Right *grammarPrimary `parser:"'or' @@"`
}

// grammarPrimary is either a parenthesized sub-expression or a comparison.
type grammarPrimary struct {
	Paren      *grammarExpr       `parser:"  '(' @@ ')'"`
	Comparison *grammarComparison `parser:"| @@"`
}

// grammarComparison is a single clause. The operator position accepts any
// bare word so that an unrecognized keyword surfaces as an unknown-operator
// condition during validation instead of a parse failure. Values run until
// the next keyword, connective, parenthesis or end of segment.
type grammarComparison struct {
	Field    string   `parser:"@Word"`
	Operator string   `parser:"@(Operator | Word)"`
	Values   []string `parser:"@Word+"`
}
