// Copyright 2025 The Corpusagent Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package main

import (
	"github.com/spf13/cobra"

	"github.com/ragops/corpusagent/internal/config"
	"github.com/ragops/corpusagent/internal/searchengine"
)

func newEnginesCmd(opts *rootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "engines",
		Short: "Vertex AI Search engines (apps)",
	}

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "List the engines in the project",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, svc, err := searchService(cmd, opts)
			if err != nil {
				return err
			}
			defer svc.Close()
			page, err := svc.ListEngines(cmd.Context(), int32(cfg.Search.PageSize), "")
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), page)
		},
	}

	cmd.AddCommand(listCmd)
	return cmd
}

func newSearchCmd(opts *rootOptions) *cobra.Command {
	var filter string
	var pageSize int

	cmd := &cobra.Command{
		Use:   "search ENGINE QUERY",
		Short: "Search an engine and show the summarized results",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, svc, err := searchService(cmd, opts)
			if err != nil {
				return err
			}
			defer svc.Close()

			if pageSize <= 0 {
				pageSize = cfg.Search.PageSize
			}
			sc := cfg.Search
			result, err := svc.Search(cmd.Context(), &searchengine.SearchParams{
				EngineID:        args[0],
				Query:           args[1],
				ServingConfigID: sc.ServingConfigID,
				PageSize:        int32(pageSize),
				Filter:          filter,

				SummaryResultCount:  int32(sc.SummaryResultCount),
				IncludeCitations:    sc.IncludeCitations,
				UseSemanticChunks:   sc.UseSemanticChunks,
				SummaryModelVersion: sc.SummaryModelVersion,
				SummaryPreamble:     sc.SummaryPreamble,

				MaxSnippetCount:           int32(sc.MaxSnippetCount),
				MaxExtractiveAnswerCount:  int32(sc.MaxExtractiveAnswerCount),
				MaxExtractiveSegmentCount: int32(sc.MaxExtractiveSegmentCount),

				QueryExpansion:  sc.QueryExpansion,
				SpellCorrection: sc.SpellCorrection,
			})
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), result)
		},
	}
	cmd.Flags().StringVar(&filter, "filter", "", "filter expression")
	cmd.Flags().IntVar(&pageSize, "page-size", 0, "result page size")
	return cmd
}

func searchService(cmd *cobra.Command, opts *rootOptions) (*config.Config, *searchengine.Service, error) {
	cfg, err := opts.loadConfig()
	if err != nil {
		return nil, nil, err
	}
	svc, err := searchengine.NewService(cmd.Context(), cfg.ProjectID, cfg.AppLocation, searchengine.WithLogger(opts.logger()))
	if err != nil {
		return nil, nil, err
	}
	return cfg, svc, nil
}
