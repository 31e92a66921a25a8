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
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"github.com/spf13/cobra"
	"github.com/zenizh/go-capturer"

	"github.com/ClinicalGenomicsGBG/qd-rna/internal/cmd"
	"github.com/ClinicalGenomicsGBG/qd-rna/pkg/criteria"
)

var _ = Describe("Compile command", func() {
	var rootCmd *cobra.Command
	BeforeEach(func() {
		rootCmd = cmd.NewRoot()
	})

	It("prints a compiled comparison as json", func() {
		rootCmd.SetArgs([]string{"compile", "cntn_id equals DNA123456", "-o", "json"})
		out := capturer.CaptureStdout(func() {
			Expect(rootCmd.Execute()).Should(Succeed())
		})
		Expect(out).To(MatchJSON(`{
			"fieldName": "cntn_id",
			"operator": "equals",
			"value": "DNA123456"
		}`))
	})

	It("prints yaml by default", func() {
		rootCmd.SetArgs([]string{"compile", "cntn_id equals DNA123456"})
		out := capturer.CaptureStdout(func() {
			Expect(rootCmd.Execute()).Should(Succeed())
		})
		Expect(out).To(ContainSubstring("operator: equals"))
		Expect(out).To(ContainSubstring("fieldName: cntn_id"))
	})

	It("prints one document per derivation step", func() {
		rootCmd.SetArgs([]string{"compile",
			"cntn_id equals DNA123456 -> cntn_fk_contentType equals 22"})
		out := capturer.CaptureStdout(func() {
			Expect(rootCmd.Execute()).Should(Succeed())
		})
		Expect(out).To(ContainSubstring("---"))
		Expect(out).To(ContainSubstring("value: \"22\""))
	})

	It("anchors the first step to the given parent pks", func() {
		rootCmd.SetArgs([]string{"compile", "cntn_id equals DNA123456",
			"--parent-pk", "5", "--parent-pk", "6", "-o", "json"})
		out := capturer.CaptureStdout(func() {
			Expect(rootCmd.Execute()).Should(Succeed())
		})
		Expect(out).To(MatchJSON(`{
			"operator": "and",
			"criteria": [
				{"fieldName": "cntn_pk", "operator": "inSet", "values": [5, 6]},
				{"fieldName": "cntn_id", "operator": "equals", "value": "DNA123456"}
			]
		}`))
	})

	It("rejects an unknown operator", func() {
		rootCmd.SetArgs([]string{"compile", "cntn_id resembles DNA123456"})
		rootCmd.SilenceErrors = true
		rootCmd.SilenceUsage = true
		err := rootCmd.Execute()
		Expect(err).To(MatchError(criteria.ErrUnknownOperator))
	})
})
