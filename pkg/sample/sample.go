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

// Package sample models pipeline samples backed by SLIMS Content records.
// A sample carries the fields mapped from its fastq record plus the demuxer
// payloads, and knows how to push state back to SLIMS through a derived
// bioinformatics record.
package sample

import (
	"context"
	"reflect"
	"strconv"
	"strings"

	"github.com/pkg/errors"

	"github.com/ClinicalGenomicsGBG/qd-rna/pkg/criteria"
	"github.com/ClinicalGenomicsGBG/qd-rna/pkg/slims"
)

// State of the secondary analysis tracked on the bioinformatics record.
type State string

const (
	StateNovel    State = "novel"
	StateRunning  State = "running"
	StateComplete State = "complete"
	StateError    State = "error"
)

// Valid reports whether the state is one a bioinformatics record may hold.
func (s State) Valid() bool {
	switch s {
	case StateNovel, StateRunning, StateComplete, StateError:
		return true
	}
	return false
}

// MergeState combines the states of two partial analyses of the same sample.
// Any error wins, then running, then complete.
func MergeState(a, b State) State {
	switch {
	case a == StateError || b == StateError:
		return StateError
	case a == StateRunning || b == StateRunning:
		return StateRunning
	default:
		return StateComplete
	}
}

// Columns of the Content table the sample model reads and writes.
const (
	demuxResultColumn  = "cntn_cstm_demuxerSampleResult"
	backupResultColumn = "cntn_cstm_demuxerBackupSampleResult"
	stateColumn        = "cntn_cstm_SecondaryAnalysisState"
)

// FieldMap maps sample field names to record field paths. Paths go through
// Record.Field, so "json:" prefixed paths reach into JSON-encoded columns.
type FieldMap map[string]string

// DefaultFieldMap is the minimal mapping every sample needs.
var DefaultFieldMap = FieldMap{"id": "cntn_id"}

// withID returns the map with the "id" mapping filled in when absent.
func (m FieldMap) withID() FieldMap {
	if _, ok := m["id"]; ok {
		return m
	}
	merged := make(FieldMap, len(m)+1)
	merged["id"] = "cntn_id"
	for k, v := range m {
		merged[k] = v
	}
	return merged
}

// Sample is one pipeline sample backed by a SLIMS fastq record.
type Sample struct {
	// Fields holds the values mapped from the backing record.
	Fields map[string]any

	// Demux and Backup are the demuxer result payloads of the record.
	Demux  map[string]any
	Backup map[string]any

	// Record is the backing fastq record.
	Record *slims.Record

	// Bioinformatics is the derived record tracking the secondary analysis.
	Bioinformatics *slims.Record

	ID string
}

// FromRecord builds a sample from a fastq record, mapping the configured
// fields and decoding the demuxer payloads.
func FromRecord(record *slims.Record, fields FieldMap) (*Sample, error) {
	s := &Sample{}
	if err := s.MapFromRecord(record, fields); err != nil {
		return nil, err
	}
	s.Demux = jsonColumn(record, demuxResultColumn)
	s.Backup = jsonColumn(record, backupResultColumn)
	return s, nil
}

func jsonColumn(record *slims.Record, column string) map[string]any {
	v, ok := record.Field("json:" + column)
	if !ok {
		return nil
	}
	payload, ok := v.(map[string]any)
	if !ok {
		return nil
	}
	return payload
}

// PK returns the primary key of the backing record, or 0 without one.
func (s *Sample) PK() int64 {
	if s.Record == nil {
		return 0
	}
	return s.Record.PK()
}

// field returns a mapped sample value by name.
func (s *Sample) field(name string) (any, bool) {
	if name == "id" {
		return s.ID, true
	}
	v, ok := s.Fields[name]
	return v, ok
}

// MatchesRecord reports whether a record belongs to this sample. The id
// field always takes part in the comparison; match names additional mapped
// fields that have to agree. Fields absent on either side are skipped.
func (s *Sample) MatchesRecord(record *slims.Record, fields FieldMap, match ...string) bool {
	mapping := fields.withID()
	names := append([]string{"id"}, match...)
	matched := false
	for _, name := range names {
		path, ok := mapping[name]
		if !ok {
			continue
		}
		recordValue, ok := record.Field(path)
		if !ok {
			continue
		}
		sampleValue, ok := s.field(name)
		if !ok {
			continue
		}
		if !reflect.DeepEqual(recordValue, sampleValue) {
			return false
		}
		matched = true
	}
	return matched
}

// MapFromRecord copies the mapped record fields onto the sample and makes the
// record the sample's backing record.
func (s *Sample) MapFromRecord(record *slims.Record, fields FieldMap) error {
	mapping := fields.withID()
	values := make(map[string]any, len(mapping))
	for name, path := range mapping {
		v, ok := record.Field(path)
		if !ok {
			return errors.Wrapf(criteria.ErrUnknownField,
				"cannot map %q from record %d", path, record.PK())
		}
		values[name] = v
	}

	id, ok := values["id"].(string)
	if !ok {
		return errors.Errorf("record %d: id field is not a string", record.PK())
	}
	s.ID = id
	delete(values, "id")
	if s.Fields == nil {
		s.Fields = make(map[string]any, len(values))
	}
	for name, v := range values {
		s.Fields[name] = v
	}
	s.Record = record
	return nil
}

// SyncRecord writes the named sample fields back to the backing record.
func (s *Sample) SyncRecord(ctx context.Context, c *slims.Client, fields FieldMap, sync ...string) error {
	if s.Record == nil {
		return errors.Errorf("sample %s has no record to sync", s.ID)
	}
	mapping := fields.withID()
	update := make(map[string]any, len(sync))
	for _, name := range sync {
		path, ok := mapping[name]
		if !ok {
			return errors.Errorf("sample %s: field %q is not mapped", s.ID, name)
		}
		if strings.HasPrefix(path, "json:") {
			return errors.Errorf("sample %s: cannot sync into json path %q", s.ID, path)
		}
		v, ok := s.field(name)
		if !ok {
			return errors.Errorf("sample %s: field %q has no value", s.ID, name)
		}
		update[path] = v
	}
	if len(update) == 0 {
		return nil
	}
	record, err := c.Update(ctx, slims.ContentTable, s.Record.PK(), update)
	if err != nil {
		return errors.WithMessagef(err, "sync sample %s", s.ID)
	}
	s.Record = record
	return nil
}

// SyncDerived creates or updates the bioinformatics record derived from the
// sample. String values may reference the sample with the {id} and {pk}
// placeholders. New records start in the novel state.
func (s *Sample) SyncDerived(ctx context.Context, c *slims.Client, fields map[string]any) error {
	if s.Record == nil {
		return errors.Errorf("sample %s has no record to derive from", s.ID)
	}

	update := make(map[string]any, len(fields))
	for name, v := range fields {
		if text, ok := v.(string); ok {
			v = s.expand(text)
		}
		update[name] = v
	}

	if s.Bioinformatics != nil {
		record, err := c.Update(ctx, slims.ContentTable, s.Bioinformatics.PK(), update)
		if err != nil {
			return errors.WithMessagef(err, "update derived record for sample %s", s.ID)
		}
		s.Bioinformatics = record
		return nil
	}

	update["cntn_id"] = s.ID
	update["cntn_fk_contentType"] = slims.ContentTypeBioinformatics
	update[criteria.FieldOriginalContent] = s.PK()
	if _, ok := update[stateColumn]; !ok {
		update[stateColumn] = string(StateNovel)
	}
	record, err := c.Add(ctx, slims.ContentTable, update)
	if err != nil {
		return errors.WithMessagef(err, "add derived record for sample %s", s.ID)
	}
	s.Bioinformatics = record
	return nil
}

// SetState moves the bioinformatics record to a new analysis state.
func (s *Sample) SetState(ctx context.Context, c *slims.Client, state State) error {
	if !state.Valid() {
		return errors.Errorf("invalid state %q", state)
	}
	if s.Bioinformatics == nil {
		return errors.Errorf("sample %s has no derived record", s.ID)
	}
	record, err := c.Update(ctx, slims.ContentTable, s.Bioinformatics.PK(),
		map[string]any{stateColumn: string(state)})
	if err != nil {
		return errors.WithMessagef(err, "set state for sample %s", s.ID)
	}
	s.Bioinformatics = record
	return nil
}

// State returns the analysis state recorded on the bioinformatics record.
func (s *Sample) State() State {
	if s.Bioinformatics == nil {
		return ""
	}
	return State(s.Bioinformatics.StringValue(stateColumn))
}

func (s *Sample) expand(text string) string {
	text = strings.ReplaceAll(text, "{id}", s.ID)
	return strings.ReplaceAll(text, "{pk}", strconv.FormatInt(s.PK(), 10))
}
