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

// Content-table fields used for parent restriction and derivation linking.
const (
	// FieldPK is the primary key of a record.
	FieldPK = "cntn_pk"
	// FieldOriginalContent references the record a derived record originates
	// from.
	FieldOriginalContent = "cntn_fk_originalContent"
)

// ParentRecord exposes the primary key of a previously fetched record.
type ParentRecord interface {
	PK() int64
}

type options struct {
	validField FieldValidator
	parentPKs  []int64
	hasParents bool
}

// Option configures compilation and resolution.
type Option func(*options)

// WithParentRecords supplies previously fetched records whose primary keys
// restrict or link the criteria. Supplying no records is the same as not
// supplying the option.
func WithParentRecords(records ...ParentRecord) Option {
	return func(o *options) {
		for _, r := range records {
			o.parentPKs = append(o.parentPKs, r.PK())
		}
		o.hasParents = len(o.parentPKs) > 0
	}
}

// WithFieldValidator replaces the default Content-field validator.
func WithFieldValidator(fn FieldValidator) Option {
	return func(o *options) {
		o.validField = fn
	}
}

func newOptions(opts []Option) options {
	o := options{validField: DefaultFieldValidator}
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

// Split breaks an expression into its derivation segments at every "->" not
// nested inside parentheses. A non-derived expression yields one segment.
func Split(expr string) ([]string, error) {
	var segments []string
	var part strings.Builder
	depth := 0
	for i := 0; i < len(expr); i++ {
		switch c := expr[i]; c {
		case '(':
			depth++
			part.WriteByte(c)
		case ')':
			depth--
			if depth < 0 {
				return nil, errors.WithMessagef(ErrSyntax, "unmatched parentheses: %s", expr)
			}
			part.WriteByte(c)
		case '-':
			if depth == 0 && i+1 < len(expr) && expr[i+1] == '>' {
				segments = append(segments, strings.TrimSpace(part.String()))
				part.Reset()
				i++
				continue
			}
			part.WriteByte(c)
		default:
			part.WriteByte(c)
		}
	}
	if depth != 0 {
		return nil, errors.WithMessagef(ErrSyntax, "unmatched parentheses: %s", expr)
	}
	return append(segments, strings.TrimSpace(part.String())), nil
}

// Resolve compiles a full expression into one criterion per derivation
// segment, in order.
//
// Without any "->" the single compiled criterion is returned as is, unless
// parent records were supplied, in which case it is AND-combined with a
// restriction on the records' own primary keys.
//
// With one or more "->" the first segment is linked to the supplied parent
// records through the original-content reference; a leading "->" (empty
// first segment) requires parent records and compiles to the bare link.
// Later segments are returned unlinked, because their parent keys only exist
// once the preceding step has been executed: run each step, collect the
// primary keys of its result, and link the next step with ResolveStep or
// LinkDerived.
func Resolve(expr string, opts ...Option) ([]*Criterion, error) {
	o := newOptions(opts)
	segments, err := Split(expr)
	if err != nil {
		return nil, err
	}
	derived := len(segments) > 1

	out := make([]*Criterion, 0, len(segments))
	for i, segment := range segments {
		if segment == "" {
			if !derived {
				return nil, errors.WithMessage(ErrSyntax, "empty expression")
			}
			if i > 0 {
				return nil, errors.WithMessagef(ErrSyntax, "empty derivation segment %d", i)
			}
			if !o.hasParents {
				return nil, errors.WithMessage(ErrMissingParent, `expression starts with "->"`)
			}
			out = append(out, IsOneOf(FieldOriginalContent, pkValues(o.parentPKs)...))
			continue
		}

		node, err := Compile(segment, WithFieldValidator(o.validField))
		if err != nil {
			return nil, err
		}
		if i == 0 && o.hasParents {
			if derived {
				node = LinkDerived(node, o.parentPKs)
			} else {
				node = Conjunction().
					Add(IsOneOf(FieldPK, pkValues(o.parentPKs)...)).
					Add(node)
			}
		}
		out = append(out, node)
	}
	return out, nil
}

// ResolveStep compiles a single derivation segment and links it to the given
// parent primary keys, typically the keys produced by executing the previous
// step.
func ResolveStep(segment string, parentPKs []int64, opts ...Option) (*Criterion, error) {
	if len(parentPKs) == 0 {
		return nil, errors.WithMessagef(ErrMissingParent, "derivation step %q", segment)
	}
	node, err := Compile(segment, opts...)
	if err != nil {
		return nil, err
	}
	return LinkDerived(node, parentPKs), nil
}

// LinkDerived AND-combines a step criterion with the parent link that scopes
// it to records derived from the given primary keys. A nil criterion yields
// the bare link.
func LinkDerived(c *Criterion, parentPKs []int64) *Criterion {
	link := IsOneOf(FieldOriginalContent, pkValues(parentPKs)...)
	if c == nil {
		return link
	}
	return Conjunction().Add(link).Add(c)
}

// PKs extracts the primary keys of parent records.
func PKs[R ParentRecord](records []R) []int64 {
	out := make([]int64, len(records))
	for i, r := range records {
		out[i] = r.PK()
	}
	return out
}
