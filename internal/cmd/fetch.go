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

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"sigs.k8s.io/yaml"

	"github.com/ClinicalGenomicsGBG/qd-rna/pkg/slims"
)

func newFetchCmd() *cobra.Command {
	var q slims.Query
	cmd := &cobra.Command{
		Use:   "fetch [expression]",
		Short: "Fetch Content records matching a criteria expression",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) > 0 {
				q.Criteria = args[0]
			}
			client, err := newSlimsClient()
			if err != nil {
				return err
			}
			records, err := client.Records(cmd.Context(), q)
			if err != nil {
				return err
			}
			if viper.GetBool("pks-only") {
				for _, r := range records {
					fmt.Printf("%d\t%s\n", r.PK(), r.ID())
				}
				return nil
			}
			return printRecords(records)
		},
	}
	cmd.Flags().StringSliceVar(&q.SlimsIDs, "slims-id", nil, "restrict results to the given cntn_id values")
	cmd.Flags().Int64SliceVar(&q.ContentTypes, "content-type", nil, "restrict results to the given content types")
	cmd.Flags().StringVar(&q.MaxAge, "max-age", "", "restrict results to records modified within a timespan, e.g. 36h")
	cmd.Flags().BoolVar(&q.UnrestrictParents, "unrestrict-parents", false,
		"apply id and age restrictions to the final derivation step only")
	cmd.Flags().Bool("pks-only", false, "print one pk and id per line instead of full records")
	return cmd
}

func printRecords(records []*slims.Record) error {
	body, err := json.MarshalIndent(records, "", "  ")
	if err != nil {
		return err
	}
	if viper.GetString("output") == "yaml" {
		if body, err = yaml.JSONToYAML(body); err != nil {
			return err
		}
	}
	fmt.Println(string(body))
	return nil
}
