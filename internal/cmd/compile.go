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

package cmd

import (
	"encoding/json"
	"fmt"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"sigs.k8s.io/yaml"

	"github.com/ClinicalGenomicsGBG/qd-rna/pkg/criteria"
)

// pkRef satisfies criteria.ParentRecord for a bare primary key.
type pkRef int64

func (p pkRef) PK() int64 { return int64(p) }

func newCompileCmd() *cobra.Command {
	var parentPKs []int64
	cmd := &cobra.Command{
		Use:   "compile <expression>",
		Short: "Compile a criteria expression and print the resulting criteria",
		Long: `Compile a criteria expression into the criteria the SLIMS REST API accepts.
An expression with "->" derivation steps compiles to one criterion per step;
parent records for the first step are supplied with --parent-pk.`,
		Args: cobra.ExactArgs(1),
		RunE: func(_ *cobra.Command, args []string) error {
			parents := make([]criteria.ParentRecord, len(parentPKs))
			for i, pk := range parentPKs {
				parents[i] = pkRef(pk)
			}
			steps, err := criteria.Resolve(args[0], criteria.WithParentRecords(parents...))
			if err != nil {
				return err
			}
			return printSteps(steps)
		},
	}
	cmd.Flags().Int64SliceVar(&parentPKs, "parent-pk", nil,
		"primary keys of the parent records anchoring the first derivation step")
	return cmd
}

func printSteps(steps []*criteria.Criterion) error {
	for i, step := range steps {
		body, err := json.MarshalIndent(step, "", "  ")
		if err != nil {
			return err
		}
		switch format := viper.GetString("output"); format {
		case "json":
		case "yaml":
			if body, err = yaml.JSONToYAML(body); err != nil {
				return err
			}
		default:
			return errors.Errorf("unknown output format %q", format)
		}
		if i > 0 {
			fmt.Println("---")
		}
		fmt.Println(string(body))
	}
	return nil
}
