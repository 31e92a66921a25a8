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

// Node is a node of the expression syntax tree. The set of implementations
// is closed: Comparison, Not, And and Or.
type Node interface {
	node()
}

// Comparison is a single "field operator value..." clause. Operator holds the
// surface keyword as written; it is resolved against the operator table
// during compilation, not during parsing.
type Comparison struct {
	Field    string
	Operator string
	Values   []string
}

func (*Comparison) node() {}

// Not negates its child. The parser never produces Not nodes; negated
// operator keywords introduce them during compilation.
type Not struct {
	Child Node
}

func (*Not) node() {}

// And is a conjunction of two or more children, in source order.
type And struct {
	Children []Node
}

func (*And) node() {}

// Or is a disjunction of two or more children, in source order.
type Or struct {
	Children []Node
}

func (*Or) node() {}
