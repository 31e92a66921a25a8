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

// Compilation errors. All of them abort the affected segment immediately;
// no partial tree is ever returned. Match with errors.Is.
var (
	// ErrSyntax indicates a malformed expression: unbalanced parentheses,
	// a trailing connective, or a clause that is not "field operator value".
	ErrSyntax = errors.New("invalid syntax")

	// ErrUnknownOperator indicates an operator keyword outside the fixed table.
	ErrUnknownOperator = errors.New("unknown operator")

	// ErrUnknownField indicates a field name rejected by the field validator.
	ErrUnknownField = errors.New("unknown field")

	// ErrArity indicates a clause with the wrong number of values for its
	// operator.
	ErrArity = errors.New("wrong number of values")

	// ErrMissingParent indicates a derivation that needs parent records which
	// the caller did not supply.
	ErrMissingParent = errors.New("parent records required")
)
