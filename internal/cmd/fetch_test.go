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

package cmd_test

import (
	"io"
	"net/http"
	"net/http/httptest"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"github.com/spf13/cobra"
	"github.com/zenizh/go-capturer"

	"github.com/ClinicalGenomicsGBG/qd-rna/internal/cmd"
)

var _ = Describe("Fetch command", func() {
	var rootCmd *cobra.Command
	var server *httptest.Server
	var requestBodies []string

	BeforeEach(func() {
		requestBodies = nil
		server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			body, err := io.ReadAll(r.Body)
			Expect(err).NotTo(HaveOccurred())
			requestBodies = append(requestBodies, string(body))
			w.Header().Set("Content-Type", "application/json")
			_, _ = w.Write([]byte(`{"entities": [
				{"pk": 7, "tableName": "Content", "columns": [{"name": "cntn_id", "value": "DNA123456"}]}
			]}`))
		}))
		rootCmd = cmd.NewRoot()
	})

	AfterEach(func() {
		server.Close()
	})

	It("prints pks and ids of matched records", func() {
		rootCmd.SetArgs([]string{"fetch", "cntn_id equals DNA123456",
			"--url", server.URL, "--pks-only"})
		out := capturer.CaptureStdout(func() {
			Expect(rootCmd.Execute()).Should(Succeed())
		})
		Expect(out).To(Equal("7\tDNA123456\n"))
		Expect(requestBodies).To(HaveLen(1))
		Expect(requestBodies[0]).To(MatchJSON(`{
			"criteria": {"fieldName": "cntn_id", "operator": "equals", "value": "DNA123456"}
		}`))
	})

	It("prints full records as yaml", func() {
		rootCmd.SetArgs([]string{"fetch", "--url", server.URL, "--slims-id", "DNA123456"})
		out := capturer.CaptureStdout(func() {
			Expect(rootCmd.Execute()).Should(Succeed())
		})
		Expect(out).To(ContainSubstring("tableName: Content"))
		Expect(out).To(ContainSubstring("pk: 7"))
	})

	It("requires a url", func() {
		rootCmd.SetArgs([]string{"fetch", "cntn_id equals DNA123456"})
		rootCmd.SilenceErrors = true
		rootCmd.SilenceUsage = true
		err := rootCmd.Execute()
		Expect(err).To(MatchError(ContainSubstring("SLIMS url")))
	})
})
