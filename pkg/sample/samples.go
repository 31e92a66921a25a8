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

package sample

import (
	"context"

	"github.com/pkg/errors"

	"github.com/ClinicalGenomicsGBG/qd-rna/pkg/logger"
	"github.com/ClinicalGenomicsGBG/qd-rna/pkg/slims"
)

// Samples is a collection of samples from one fetch.
type Samples []*Sample

// FromRecords builds one sample per fastq record.
func FromRecords(records []*slims.Record, fields FieldMap) (Samples, error) {
	samples := make(Samples, 0, len(records))
	for _, record := range records {
		s, err := FromRecord(record, fields)
		if err != nil {
			return nil, err
		}
		samples = append(samples, s)
	}
	return samples, nil
}

// FromCriteria fetches samples matching a criteria expression.
func FromCriteria(ctx context.Context, c *slims.Client, criteria string, fields FieldMap) (Samples, error) {
	return FromQuery(ctx, c, slims.Query{Criteria: criteria}, fields)
}

// FromQuery fetches matching fastq records and builds samples from them.
func FromQuery(ctx context.Context, c *slims.Client, q slims.Query, fields FieldMap) (Samples, error) {
	if len(q.ContentTypes) == 0 {
		q.ContentTypes = []int64{slims.ContentTypeFastq}
	}
	records, err := c.Records(ctx, q)
	if err != nil {
		return nil, err
	}
	return FromRecords(records, fields)
}

// IDs returns the sample ids, in order.
func (ss Samples) IDs() []string {
	ids := make([]string, len(ss))
	for i, s := range ss {
		ids[i] = s.ID
	}
	return ids
}

// Records returns the backing records of all samples that have one.
func (ss Samples) Records() []*slims.Record {
	records := make([]*slims.Record, 0, len(ss))
	for _, s := range ss {
		if s.Record != nil {
			records = append(records, s.Record)
		}
	}
	return records
}

// WithState returns the samples whose analysis is in the given state.
func (ss Samples) WithState(state State) Samples {
	var out Samples
	for _, s := range ss {
		if s.State() == state {
			out = append(out, s)
		}
	}
	return out
}

// Augment attaches matching records to pre-existing samples. Samples that
// match no record, or more than one, keep their current record.
func (ss Samples) Augment(records []*slims.Record, fields FieldMap, match ...string) {
	log := logger.GetLogger("sample")
	for _, s := range ss {
		var found *slims.Record
		ambiguous := false
		for _, record := range records {
			if !s.MatchesRecord(record, fields, match...) {
				continue
			}
			if found != nil {
				ambiguous = true
				break
			}
			found = record
		}
		switch {
		case ambiguous:
			log.Warn().Str("sample", s.ID).Msg("multiple records match sample")
		case found == nil:
			log.Warn().Str("sample", s.ID).Msg("no records match sample")
		default:
			if err := s.MapFromRecord(found, fields); err != nil {
				log.Warn().Err(err).Str("sample", s.ID).Msg("cannot map record to sample")
			}
		}
	}
}

// SyncRecords writes the named fields of every sample back to its record.
func (ss Samples) SyncRecords(ctx context.Context, c *slims.Client, fields FieldMap, sync ...string) error {
	for _, s := range ss {
		if err := s.SyncRecord(ctx, c, fields, sync...); err != nil {
			return err
		}
	}
	return nil
}

// SyncDerived creates or updates the bioinformatics record of every sample.
func (ss Samples) SyncDerived(ctx context.Context, c *slims.Client, fields map[string]any) error {
	for _, s := range ss {
		if err := s.SyncDerived(ctx, c, fields); err != nil {
			return err
		}
	}
	return nil
}

// AttachDerived links already-existing bioinformatics records to their
// samples so later syncs update instead of add.
func (ss Samples) AttachDerived(ctx context.Context, c *slims.Client) error {
	grouped, err := c.Derived(ctx, ss.Records(), slims.Query{
		ContentTypes: []int64{slims.ContentTypeBioinformatics},
	})
	if err != nil {
		return errors.WithMessage(err, "attach derived records")
	}
	for _, s := range ss {
		derived := grouped[s.PK()]
		if len(derived) == 0 {
			continue
		}
		s.Bioinformatics = derived[0]
	}
	return nil
}
