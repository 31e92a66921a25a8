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

// Package cmd implements the qdrna command line tool.
package cmd

import (
	"github.com/pkg/errors"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/ClinicalGenomicsGBG/qd-rna/pkg/logger"
	"github.com/ClinicalGenomicsGBG/qd-rna/pkg/slims"
	"github.com/ClinicalGenomicsGBG/qd-rna/pkg/version"
)

// NewRoot returns the root command.
func NewRoot() *cobra.Command {
	cmd := &cobra.Command{
		Use:               "qdrna",
		DisableAutoGenTag: true,
		Version:           version.Build(),
		Short:             "qdrna compiles and runs SLIMS criteria expressions",
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) (err error) {
			viper.SetConfigType("yaml")
			viper.SetConfigName("qdrna")
			viper.AddConfigPath(".")
			viper.AddConfigPath("$HOME/.config/qdrna")
			if err = viper.ReadInConfig(); err != nil {
				var notFound viper.ConfigFileNotFoundError
				if !errors.As(err, &notFound) {
					return err
				}
			}
			viper.SetEnvPrefix("qdrna")
			viper.AutomaticEnv()
			if err = viper.BindPFlags(cmd.Flags()); err != nil {
				return err
			}
			return logger.Init(logger.Logging{
				Env:   viper.GetString("log-env"),
				Level: viper.GetString("log-level"),
			})
		},
	}
	cmd.PersistentFlags().String("url", "", "base url of the SLIMS instance")
	cmd.PersistentFlags().String("username", "", "SLIMS API username")
	cmd.PersistentFlags().String("password", "", "SLIMS API password")
	cmd.PersistentFlags().StringP("output", "o", "yaml", "output format (yaml or json)")
	cmd.PersistentFlags().String("log-level", "warn", "log level")
	cmd.PersistentFlags().String("log-env", "dev", "log format (dev or prod)")
	if err := viper.BindPFlags(cmd.PersistentFlags()); err != nil {
		panic(err)
	}
	cmd.AddCommand(newCompileCmd(), newFetchCmd())
	return cmd
}

// newSlimsClient builds a client from the resolved config.
func newSlimsClient() (*slims.Client, error) {
	url := viper.GetString("url")
	if url == "" {
		return nil, errors.New("please specify a SLIMS url through the flag, config file or environment")
	}
	return slims.NewClient(url, viper.GetString("username"), viper.GetString("password")), nil
}
