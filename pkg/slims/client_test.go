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

package slims_test

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ClinicalGenomicsGBG/qd-rna/pkg/criteria"
	"github.com/ClinicalGenomicsGBG/qd-rna/pkg/slims"
)

// capturedRequest is one request the fake SLIMS instance received.
type capturedRequest struct {
	Method string
	Path   string
	Body   map[string]any
}

// fakeSLIMS serves canned responses in order and records every request.
type fakeSLIMS struct {
	t         *testing.T
	server    *httptest.Server
	requests  []capturedRequest
	responses []fakeResponse
}

type fakeResponse struct {
	status int
	body   string
}

func newFakeSLIMS(t *testing.T, responses ...fakeResponse) *fakeSLIMS {
	t.Helper()
	f := &fakeSLIMS{t: t, responses: responses}
	f.server = httptest.NewServer(http.HandlerFunc(f.handle))
	t.Cleanup(f.server.Close)
	return f
}

func (f *fakeSLIMS) handle(w http.ResponseWriter, r *http.Request) {
	user, pass, ok := r.BasicAuth()
	require.True(f.t, ok, "request without basic auth")
	require.Equal(f.t, "apiuser", user)
	require.Equal(f.t, "apipass", pass)

	captured := capturedRequest{Method: r.Method, Path: r.URL.Path}
	raw, err := io.ReadAll(r.Body)
	require.NoError(f.t, err)
	if len(raw) > 0 {
		require.NoError(f.t, json.Unmarshal(raw, &captured.Body))
	}
	f.requests = append(f.requests, captured)

	resp := fakeResponse{status: http.StatusOK, body: `{"entities": []}`}
	if len(f.responses) > 0 {
		resp = f.responses[0]
		f.responses = f.responses[1:]
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(resp.status)
	_, _ = w.Write([]byte(resp.body))
}

func (f *fakeSLIMS) client(opts ...slims.ClientOption) *slims.Client {
	return slims.NewClient(f.server.URL, "apiuser", "apipass", opts...)
}

func entities(bodies ...string) string {
	out := "["
	for i, b := range bodies {
		if i > 0 {
			out += ","
		}
		out += b
	}
	return `{"entities": ` + out + `]}`
}

func contentEntity(pk int64, columns string) string {
	if columns == "" {
		columns = "[]"
	}
	return fmt.Sprintf(`{"pk": %d, "tableName": "Content", "columns": %s}`, pk, columns)
}

func TestFetch(t *testing.T) {
	f := newFakeSLIMS(t, fakeResponse{http.StatusOK, entities(
		contentEntity(11, `[{"name": "cntn_id", "value": "DNA11"}]`),
		contentEntity(12, `[{"name": "cntn_id", "value": "DNA12"}]`),
	)})

	records, err := f.client().Fetch(context.Background(), slims.ContentTable,
		criteria.Equals("cntn_id", "DNA11"))
	require.NoError(t, err)
	require.Len(t, records, 2)
	assert.Equal(t, int64(11), records[0].PK())
	assert.Equal(t, "DNA12", records[1].ID())

	require.Len(t, f.requests, 1)
	req := f.requests[0]
	assert.Equal(t, http.MethodPost, req.Method)
	assert.Equal(t, "/rest/Content/advanced", req.Path)
	assert.Equal(t, map[string]any{
		"criteria": map[string]any{
			"fieldName": "cntn_id",
			"operator":  "equals",
			"value":     "DNA11",
		},
	}, req.Body)
}

func TestFetchNilCriteria(t *testing.T) {
	f := newFakeSLIMS(t)

	_, err := f.client().Fetch(context.Background(), slims.ContentTable, nil)
	require.NoError(t, err)

	require.Len(t, f.requests, 1)
	assert.Empty(t, f.requests[0].Body)
}

func TestFetchRetriesServerErrors(t *testing.T) {
	f := newFakeSLIMS(t,
		fakeResponse{http.StatusBadGateway, `upstream gone`},
		fakeResponse{http.StatusInternalServerError, `boom`},
		fakeResponse{http.StatusOK, entities(contentEntity(1, ""))},
	)

	records, err := f.client(slims.WithRetries(3)).
		Fetch(context.Background(), slims.ContentTable, nil)
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Len(t, f.requests, 3)
}

func TestFetchDoesNotRetryClientErrors(t *testing.T) {
	f := newFakeSLIMS(t, fakeResponse{http.StatusBadRequest, `no such column`})

	_, err := f.client(slims.WithRetries(5)).
		Fetch(context.Background(), slims.ContentTable, nil)
	require.Error(t, err)
	assert.Len(t, f.requests, 1)
}

func TestAdd(t *testing.T) {
	f := newFakeSLIMS(t, fakeResponse{http.StatusOK,
		contentEntity(99, `[{"name": "cntn_id", "value": "DNA99"}]`)})

	record, err := f.client().Add(context.Background(), slims.ContentTable, map[string]any{
		"cntn_id":             "DNA99",
		"cntn_fk_contentType": slims.ContentTypeBioinformatics,
	})
	require.NoError(t, err)
	assert.Equal(t, int64(99), record.PK())

	require.Len(t, f.requests, 1)
	req := f.requests[0]
	assert.Equal(t, http.MethodPut, req.Method)
	assert.Equal(t, "/rest/Content", req.Path)
	assert.Equal(t, "DNA99", req.Body["cntn_id"])
	assert.Equal(t, float64(slims.ContentTypeBioinformatics), req.Body["cntn_fk_contentType"])
}

func TestUpdate(t *testing.T) {
	f := newFakeSLIMS(t, fakeResponse{http.StatusOK, contentEntity(7, "")})

	record, err := f.client().Update(context.Background(), slims.ContentTable, 7, map[string]any{
		"cntn_cstm_SecondaryAnalysisState": "complete",
	})
	require.NoError(t, err)
	assert.Equal(t, int64(7), record.PK())

	require.Len(t, f.requests, 1)
	req := f.requests[0]
	assert.Equal(t, http.MethodPost, req.Method)
	assert.Equal(t, "/rest/Content/7", req.Path)
	assert.Equal(t, "complete", req.Body["cntn_cstm_SecondaryAnalysisState"])
}

func TestUpdateError(t *testing.T) {
	f := newFakeSLIMS(t, fakeResponse{http.StatusNotFound, `no record`})

	_, err := f.client().Update(context.Background(), slims.ContentTable, 404, nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "update Content")
}
