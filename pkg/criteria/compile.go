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

import (
	"strings"

	"github.com/pkg/errors"
)

// FieldValidator reports whether a field name may appear in an expression.
type FieldValidator func(name string) bool

// DefaultFieldValidator accepts the Content-table fields, which all carry the
// cntn_ prefix.
func DefaultFieldValidator(name string) bool {
	return strings.HasPrefix(name, "cntn_")
}

// arityAny marks operators taking one or more values.
const arityAny = -1

type operatorSpec struct {
	operator Operator
	arity    int
	negated  bool
}

// operatorTable maps surface keywords to backend operators. Negated keywords
// share the arity of their positive form and compile to a "not" composite
// around the positive leaf.
var operatorTable = map[string]operatorSpec{
	"equals":                 {operator: OpEquals, arity: 1},
	"not_equals":             {operator: OpEquals, arity: 1, negated: true},
	"equals_ignore_case":     {operator: OpEqualsIgnoreCase, arity: 1},
	"not_equals_ignore_case": {operator: OpEqualsIgnoreCase, arity: 1, negated: true},
	"one_of":                 {operator: OpInSet, arity: arityAny},
	"not_one_of":             {operator: OpInSet, arity: arityAny, negated: true},
	"contains":               {operator: OpContains, arity: 1},
	"not_contains":           {operator: OpContains, arity: 1, negated: true},
	"starts_with":            {operator: OpStartsWith, arity: 1},
	"not_starts_with":        {operator: OpStartsWith, arity: 1, negated: true},
	"ends_with":              {operator: OpEndsWith, arity: 1},
	"not_ends_with":          {operator: OpEndsWith, arity: 1, negated: true},
	"between":                {operator: OpBetweenInclusive, arity: 2},
	"not_between":            {operator: OpBetweenInclusive, arity: 2, negated: true},
	"greater_than":           {operator: OpGreaterThan, arity: 1},
	"less_than":              {operator: OpLessThan, arity: 1},
}

// Compile lexes, parses, validates and compiles a single derivation segment.
func Compile(segment string, opts ...Option) (*Criterion, error) {
	o := newOptions(opts)
	node, err := Parse(segment)
	if err != nil {
		return nil, err
	}
	return compiler{validField: o.validField}.compile(node)
}

type compiler struct {
	validField FieldValidator
}

func (c compiler) compile(node Node) (*Criterion, error) {
	switch node := node.(type) {
	case *Comparison:
		return c.compileComparison(node)
	case *Not:
		child, err := c.compile(node.Child)
		if err != nil {
			return nil, err
		}
		return IsNot(child), nil
	case *And:
		return c.compileComposite(Conjunction(), node.Children)
	case *Or:
		return c.compileComposite(Disjunction(), node.Children)
	default:
		return nil, errors.WithMessagef(ErrSyntax, "unexpected node %T", node)
	}
}

func (c compiler) compileComposite(out *Criterion, children []Node) (*Criterion, error) {
	for _, child := range children {
		compiled, err := c.compile(child)
		if err != nil {
			return nil, err
		}
		out.Add(compiled)
	}
	return out, nil
}

func (c compiler) compileComparison(cmp *Comparison) (*Criterion, error) {
	spec, ok := operatorTable[cmp.Operator]
	if !ok {
		return nil, errors.WithMessagef(ErrUnknownOperator, "%q", cmp.Operator)
	}
	switch {
	case spec.arity == arityAny && len(cmp.Values) < 1:
		return nil, errors.WithMessagef(ErrArity, "%q requires at least one value", cmp.Operator)
	case spec.arity != arityAny && len(cmp.Values) != spec.arity:
		return nil, errors.WithMessagef(ErrArity,
			"%q requires %d value(s), got %d", cmp.Operator, spec.arity, len(cmp.Values))
	}
	if !c.validField(cmp.Field) {
		return nil, errors.WithMessagef(ErrUnknownField, "%q", cmp.Field)
	}

	if spec.negated {
		positive := strings.TrimPrefix(cmp.Operator, "not_")
		return c.compile(&Not{Child: &Comparison{
			Field:    cmp.Field,
			Operator: positive,
			Values:   cmp.Values,
		}})
	}

	switch spec.operator {
	case OpInSet:
		return IsOneOf(cmp.Field, anyValues(cmp.Values)...), nil
	case OpBetweenInclusive:
		return BetweenInclusive(cmp.Field, cmp.Values[0], cmp.Values[1]), nil
	default:
		return &Criterion{FieldName: cmp.Field, Operator: spec.operator, Value: cmp.Values[0]}, nil
	}
}
