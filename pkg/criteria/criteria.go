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

// Package criteria compiles textual filter expressions into the nested
// criteria trees accepted by the SLIMS advanced-query endpoint.
//
// An expression is a boolean combination of "field operator value" clauses,
// for example:
//
//	cntn_id equals QD1337 and (cntn_status equals 10 or cntn_status equals 20)
//
// Clauses chained with "->" describe derivation: records linked, through
// their original-content reference, to the records matched by the previous
// clause.
package criteria

// Operator is a query operator understood by the SLIMS backend.
type Operator string

// Leaf operators.
const (
	OpEquals             Operator = "equals"
	OpEqualsIgnoreCase   Operator = "iEquals"
	OpInSet              Operator = "inSet"
	OpContains           Operator = "iContains"
	OpStartsWith         Operator = "iStartsWith"
	OpEndsWith           Operator = "iEndsWith"
	OpBetweenInclusive   Operator = "betweenInclusive"
	OpGreaterThan        Operator = "greaterThan"
	OpGreaterThanOrEqual Operator = "greaterThanOrEqual"
	OpLessThan           Operator = "lessThan"
)

// Composite operators.
const (
	OpAnd Operator = "and"
	OpOr  Operator = "or"
	OpNot Operator = "not"
)

// Criterion is a single node of a compiled criteria tree. A leaf carries a
// field name, an operator and one of Value, Values or Start/End. A composite
// carries a boolean operator and child criteria. The zero value is not
// useful; use the builder functions.
type Criterion struct {
	Value     any          `json:"value,omitempty"`
	Start     any          `json:"start,omitempty"`
	End       any          `json:"end,omitempty"`
	FieldName string       `json:"fieldName,omitempty"`
	Operator  Operator     `json:"operator"`
	Values    []any        `json:"values,omitempty"`
	Criteria  []*Criterion `json:"criteria,omitempty"`
}

// Add appends a child criterion to a composite and returns the receiver so
// calls can be chained. Nil children are skipped.
func (c *Criterion) Add(child *Criterion) *Criterion {
	if child != nil {
		c.Criteria = append(c.Criteria, child)
	}
	return c
}

// Conjunction returns an empty "and" composite.
func Conjunction() *Criterion {
	return &Criterion{Operator: OpAnd}
}

// Disjunction returns an empty "or" composite.
func Disjunction() *Criterion {
	return &Criterion{Operator: OpOr}
}

// IsNot negates a criterion.
func IsNot(c *Criterion) *Criterion {
	return &Criterion{Operator: OpNot, Criteria: []*Criterion{c}}
}

// Equals matches records whose field equals value.
func Equals(field string, value any) *Criterion {
	return &Criterion{FieldName: field, Operator: OpEquals, Value: value}
}

// EqualsIgnoreCase matches records whose field equals value, ignoring case.
func EqualsIgnoreCase(field string, value any) *Criterion {
	return &Criterion{FieldName: field, Operator: OpEqualsIgnoreCase, Value: value}
}

// IsOneOf matches records whose field equals any of the given values.
func IsOneOf(field string, values ...any) *Criterion {
	return &Criterion{FieldName: field, Operator: OpInSet, Values: values}
}

// Contains matches records whose field contains value.
func Contains(field string, value any) *Criterion {
	return &Criterion{FieldName: field, Operator: OpContains, Value: value}
}

// StartsWith matches records whose field starts with value.
func StartsWith(field string, value any) *Criterion {
	return &Criterion{FieldName: field, Operator: OpStartsWith, Value: value}
}

// EndsWith matches records whose field ends with value.
func EndsWith(field string, value any) *Criterion {
	return &Criterion{FieldName: field, Operator: OpEndsWith, Value: value}
}

// BetweenInclusive matches records whose field lies in [start, end].
func BetweenInclusive(field string, start, end any) *Criterion {
	return &Criterion{FieldName: field, Operator: OpBetweenInclusive, Start: start, End: end}
}

// GreaterThan matches records whose field is greater than value.
func GreaterThan(field string, value any) *Criterion {
	return &Criterion{FieldName: field, Operator: OpGreaterThan, Value: value}
}

// GreaterThanOrEqual matches records whose field is greater than or equal to
// value. It has no surface keyword in the expression language.
func GreaterThanOrEqual(field string, value any) *Criterion {
	return &Criterion{FieldName: field, Operator: OpGreaterThanOrEqual, Value: value}
}

// LessThan matches records whose field is less than value.
func LessThan(field string, value any) *Criterion {
	return &Criterion{FieldName: field, Operator: OpLessThan, Value: value}
}

func anyValues(values []string) []any {
	out := make([]any, len(values))
	for i, v := range values {
		out[i] = v
	}
	return out
}

func pkValues(pks []int64) []any {
	out := make([]any, len(pks))
	for i, pk := range pks {
		out[i] = pk
	}
	return out
}
