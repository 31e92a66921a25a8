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

package slims

import (
	"strconv"
	"strings"

	"github.com/valyala/fastjson"
)

// Column is one field of a record as returned by the REST API.
type Column struct {
	Value any    `json:"value"`
	Name  string `json:"name"`
	Title string `json:"title,omitempty"`
}

// Record is a single entity of a SLIMS table.
type Record struct {
	TableName string   `json:"tableName,omitempty"`
	Columns   []Column `json:"columns"`
	Pk        int64    `json:"pk"`
}

// PK returns the primary key of the record.
func (r *Record) PK() int64 { return r.Pk }

// Value returns the raw value of a column.
func (r *Record) Value(name string) (any, bool) {
	for i := range r.Columns {
		if r.Columns[i].Name == name {
			return r.Columns[i].Value, true
		}
	}
	return nil, false
}

// StringValue returns a column value as a string, or "" when the column is
// absent or not a string.
func (r *Record) StringValue(name string) string {
	v, ok := r.Value(name)
	if !ok {
		return ""
	}
	s, _ := v.(string)
	return s
}

// ID returns the cntn_id column of a Content record.
func (r *Record) ID() string { return r.StringValue("cntn_id") }

const jsonFieldPrefix = "json:"

// Field returns a column value addressed by a field path. A plain path is a
// column name. A path with the "json:" prefix addresses a value inside a
// JSON-encoded column, e.g. "json:cntn_cstm_demuxerSampleResult.fastq_paths[0]".
func (r *Record) Field(path string) (any, bool) {
	if !strings.HasPrefix(path, jsonFieldPrefix) {
		return r.Value(path)
	}
	keys := jsonPathKeys(path[len(jsonFieldPrefix):])
	if len(keys) == 0 {
		return nil, false
	}
	raw, ok := r.Value(keys[0])
	if !ok {
		return nil, false
	}
	encoded, ok := raw.(string)
	if !ok {
		return nil, false
	}
	parsed, err := fastjson.Parse(encoded)
	if err != nil {
		return nil, false
	}
	value := parsed.Get(keys[1:]...)
	if value == nil {
		return nil, false
	}
	return jsonValue(value), true
}

// jsonPathKeys splits "a.b[0].c" into ["a", "b", "0", "c"]. Array indices
// become plain keys; fastjson resolves decimal keys as indices.
func jsonPathKeys(path string) []string {
	var keys []string
	var current strings.Builder
	flush := func() {
		if current.Len() > 0 {
			keys = append(keys, current.String())
			current.Reset()
		}
	}
	for i := 0; i < len(path); i++ {
		switch c := path[i]; c {
		case '.', '[', ']':
			flush()
		default:
			current.WriteByte(c)
		}
	}
	flush()
	return keys
}

func jsonValue(v *fastjson.Value) any {
	switch v.Type() {
	case fastjson.TypeString:
		return string(v.GetStringBytes())
	case fastjson.TypeNumber:
		return v.GetFloat64()
	case fastjson.TypeTrue:
		return true
	case fastjson.TypeFalse:
		return false
	case fastjson.TypeNull:
		return nil
	case fastjson.TypeArray:
		items := v.GetArray()
		out := make([]any, len(items))
		for i, item := range items {
			out[i] = jsonValue(item)
		}
		return out
	case fastjson.TypeObject:
		out := make(map[string]any)
		v.GetObject().Visit(func(key []byte, item *fastjson.Value) {
			out[string(key)] = jsonValue(item)
		})
		return out
	default:
		return nil
	}
}

// int64Value coerces the numeric representations the REST API may use for a
// primary key.
func int64Value(v any) (int64, bool) {
	switch v := v.(type) {
	case int64:
		return v, true
	case int:
		return int64(v), true
	case float64:
		return int64(v), true
	case string:
		n, err := strconv.ParseInt(v, 10, 64)
		return n, err == nil
	default:
		return 0, false
	}
}
