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

// Package slims is a client for the SLIMS REST API. It fetches, creates and
// updates records, and executes compiled criteria including multi-step
// derivation chains.
package slims

import (
	"context"
	"strconv"
	"strings"

	"github.com/cenkalti/backoff/v4"
	"github.com/go-resty/resty/v2"
	"github.com/pkg/errors"

	"github.com/ClinicalGenomicsGBG/qd-rna/pkg/criteria"
	"github.com/ClinicalGenomicsGBG/qd-rna/pkg/logger"
)

// ContentTable is the SLIMS table holding sample content records.
const ContentTable = "Content"

// Content types of the records the pipeline works with.
const (
	ContentTypeDNA            int64 = 6
	ContentTypeFastq          int64 = 22
	ContentTypeBioinformatics int64 = 23
)

// Client talks to a SLIMS instance.
type Client struct {
	rest       *resty.Client
	log        *logger.Logger
	maxRetries uint64
}

// ClientOption configures a Client.
type ClientOption func(*Client)

// WithRetries sets how many times a failed request is retried.
func WithRetries(n uint64) ClientOption {
	return func(c *Client) {
		c.maxRetries = n
	}
}

// WithLogger replaces the default module logger.
func WithLogger(l *logger.Logger) ClientOption {
	return func(c *Client) {
		c.log = l
	}
}

// NewClient creates a client for the SLIMS instance at baseURL.
func NewClient(baseURL, username, password string, opts ...ClientOption) *Client {
	c := &Client{
		log:        logger.GetLogger("slims"),
		maxRetries: 3,
	}
	for _, opt := range opts {
		opt(c)
	}
	c.rest = resty.New().
		SetBaseURL(strings.TrimSuffix(baseURL, "/")).
		SetBasicAuth(username, password).
		SetHeader("Content-Type", "application/json")
	return c
}

type entitiesResponse struct {
	Entities []*Record `json:"entities"`
}

// Fetch runs a compiled criterion against a table and returns the matched
// records. Nil criteria match every record. Transport failures and server
// errors are retried with exponential backoff; client errors are not.
func (c *Client) Fetch(ctx context.Context, table string, criterion *criteria.Criterion) ([]*Record, error) {
	body := map[string]any{}
	if criterion != nil {
		body["criteria"] = criterion
	}

	var result entitiesResponse
	operation := func() error {
		result = entitiesResponse{}
		resp, err := c.rest.R().
			SetContext(ctx).
			SetBody(body).
			SetResult(&result).
			Post("/rest/" + table + "/advanced")
		if err != nil {
			return errors.Wrapf(err, "fetch %s", table)
		}
		return c.checkStatus(resp, "fetch "+table)
	}
	if err := backoff.Retry(operation, c.policy(ctx)); err != nil {
		return nil, err
	}

	c.log.Debug().Str("table", table).Int("records", len(result.Entities)).Msg("fetched records")
	return result.Entities, nil
}

// Add creates a record.
func (c *Client) Add(ctx context.Context, table string, fields map[string]any) (*Record, error) {
	var result Record
	resp, err := c.rest.R().
		SetContext(ctx).
		SetBody(fields).
		SetResult(&result).
		Put("/rest/" + table)
	if err != nil {
		return nil, errors.Wrapf(err, "add %s", table)
	}
	if err := c.checkStatus(resp, "add "+table); err != nil {
		return nil, err
	}
	c.log.Debug().Str("table", table).Int64("pk", result.Pk).Msg("added record")
	return &result, nil
}

// Update modifies an existing record.
func (c *Client) Update(ctx context.Context, table string, pk int64, fields map[string]any) (*Record, error) {
	var result Record
	resp, err := c.rest.R().
		SetContext(ctx).
		SetBody(fields).
		SetResult(&result).
		Post("/rest/" + table + "/" + formatPK(pk))
	if err != nil {
		return nil, errors.Wrapf(err, "update %s/%d", table, pk)
	}
	if err := c.checkStatus(resp, "update "+table); err != nil {
		return nil, err
	}
	c.log.Debug().Str("table", table).Int64("pk", pk).Msg("updated record")
	return &result, nil
}

func (c *Client) checkStatus(resp *resty.Response, op string) error {
	if !resp.IsError() {
		return nil
	}
	err := errors.Errorf("%s: %s", op, resp.Status())
	if resp.StatusCode() < 500 {
		// invalid criteria, bad credentials and friends; retrying cannot help
		return backoff.Permanent(err)
	}
	return err
}

func (c *Client) policy(ctx context.Context) backoff.BackOff {
	return backoff.WithContext(
		backoff.WithMaxRetries(backoff.NewExponentialBackOff(), c.maxRetries), ctx)
}

func formatPK(pk int64) string {
	return strconv.FormatInt(pk, 10)
}
