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
	"context"
	"sort"
	"time"

	"github.com/pkg/errors"
	str2duration "github.com/xhit/go-str2duration/v2"

	"github.com/ClinicalGenomicsGBG/qd-rna/pkg/criteria"
)

// Query describes which Content records to fetch.
type Query struct {
	// Criteria is a filter expression, possibly with "->" derivation chains.
	// When set, each derivation step is executed in order and the primary
	// keys of its result become the parent keys of the next step.
	Criteria string

	// MaxAge limits results to records modified within a human-readable
	// timespan such as "36h" or "30d".
	MaxAge string

	// SlimsIDs restricts results to the given cntn_id values.
	SlimsIDs []string

	// ContentTypes restricts results to the given cntn_fk_contentType values.
	ContentTypes []int64

	// Restrict adds one inSet restriction per field.
	Restrict map[string][]any

	// DerivedFrom restricts results to records derived from the given
	// records, or anchors the first derivation step of Criteria.
	DerivedFrom []*Record

	// UnrestrictParents lifts the SlimsIDs and MaxAge restrictions from all
	// derivation steps but the last.
	UnrestrictParents bool
}

// Records fetches Content records matching the query.
func (c *Client) Records(ctx context.Context, q Query) ([]*Record, error) {
	if q.Criteria != "" {
		return c.recordsByCriteria(ctx, q)
	}

	criterion := criteria.Conjunction()
	addIDRestriction(criterion, q.SlimsIDs)
	if err := addAgeRestriction(criterion, q.MaxAge, time.Now()); err != nil {
		return nil, err
	}
	addContentTypeRestriction(criterion, q.ContentTypes)
	if len(q.DerivedFrom) > 0 {
		criterion.Add(criteria.LinkDerived(nil, criteria.PKs(q.DerivedFrom)))
	}
	addFieldRestrictions(criterion, q.Restrict)
	return c.Fetch(ctx, ContentTable, unwrap(criterion))
}

// unwrap flattens conjunctions a restriction pass left trivial.
func unwrap(criterion *criteria.Criterion) *criteria.Criterion {
	switch len(criterion.Criteria) {
	case 0:
		return nil
	case 1:
		return criterion.Criteria[0]
	default:
		return criterion
	}
}

// recordsByCriteria executes a compiled expression step by step, feeding the
// primary keys of every step's result into the parent link of the next one.
func (c *Client) recordsByCriteria(ctx context.Context, q Query) ([]*Record, error) {
	steps, err := criteria.Resolve(q.Criteria, criteria.WithParentRecords(asParents(q.DerivedFrom)...))
	if err != nil {
		return nil, err
	}

	var parents []*Record
	for i, step := range steps {
		last := i == len(steps)-1
		if i > 0 {
			if len(parents) == 0 {
				c.log.Debug().Int("step", i).Msg("no parent records, derivation chain is empty")
				return nil, nil
			}
			step = criteria.LinkDerived(step, criteria.PKs(parents))
		}

		criterion := criteria.Conjunction().Add(step)
		if last || !q.UnrestrictParents {
			addIDRestriction(criterion, q.SlimsIDs)
			if err := addAgeRestriction(criterion, q.MaxAge, time.Now()); err != nil {
				return nil, err
			}
		}
		if last {
			addContentTypeRestriction(criterion, q.ContentTypes)
			addFieldRestrictions(criterion, q.Restrict)
		}
		records, err := c.Fetch(ctx, ContentTable, unwrap(criterion))
		if err != nil {
			return nil, err
		}
		if last {
			return records, nil
		}
		parents = records
	}
	return nil, nil
}

// Derived fetches records derived from the given parents and groups them by
// parent primary key. Parents without derived records map to an empty slice.
func (c *Client) Derived(ctx context.Context, parents []*Record, q Query) (map[int64][]*Record, error) {
	grouped := make(map[int64][]*Record, len(parents))
	if len(parents) == 0 {
		return grouped, nil
	}
	for _, p := range parents {
		grouped[p.PK()] = nil
	}

	q.DerivedFrom = parents
	records, err := c.Records(ctx, q)
	if err != nil {
		return nil, err
	}
	for _, r := range records {
		origin, ok := r.Value(criteria.FieldOriginalContent)
		if !ok {
			continue
		}
		pk, ok := int64Value(origin)
		if !ok {
			return nil, errors.Errorf("record %d: malformed original content reference %v", r.PK(), origin)
		}
		grouped[pk] = append(grouped[pk], r)
	}
	return grouped, nil
}

func addIDRestriction(criterion *criteria.Criterion, ids []string) {
	switch len(ids) {
	case 0:
	case 1:
		criterion.Add(criteria.Equals("cntn_id", ids[0]))
	default:
		values := make([]any, len(ids))
		for i, id := range ids {
			values[i] = id
		}
		criterion.Add(criteria.IsOneOf("cntn_id", values...))
	}
}

func addAgeRestriction(criterion *criteria.Criterion, maxAge string, now time.Time) error {
	if maxAge == "" {
		return nil
	}
	span, err := str2duration.ParseDuration(maxAge)
	if err != nil {
		return errors.Wrapf(err, "malformed max age %q", maxAge)
	}
	criterion.Add(criteria.BetweenInclusive("cntn_modifiedOn",
		now.Add(-span).Format(time.RFC3339), now.Format(time.RFC3339)))
	return nil
}

func addContentTypeRestriction(criterion *criteria.Criterion, types []int64) {
	switch len(types) {
	case 0:
	case 1:
		criterion.Add(criteria.Equals("cntn_fk_contentType", types[0]))
	default:
		values := make([]any, len(types))
		for i, t := range types {
			values[i] = t
		}
		criterion.Add(criteria.IsOneOf("cntn_fk_contentType", values...))
	}
}

func addFieldRestrictions(criterion *criteria.Criterion, restrict map[string][]any) {
	fields := make([]string, 0, len(restrict))
	for field := range restrict {
		fields = append(fields, field)
	}
	sort.Strings(fields)
	for _, field := range fields {
		criterion.Add(criteria.IsOneOf(field, restrict[field]...))
	}
}

func asParents(records []*Record) []criteria.ParentRecord {
	out := make([]criteria.ParentRecord, len(records))
	for i, r := range records {
		out[i] = r
	}
	return out
}
