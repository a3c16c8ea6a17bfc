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
	"fmt"

	"github.com/spf13/cobra"

	"github.com/ragops/corpusagent/internal/config"
	"github.com/ragops/corpusagent/internal/ragengine"
)

func newCorporaCmd(opts *rootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "corpora",
		Short: "Vertex AI RAG corpora and their files",
	}

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "List the corpora in the project",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, svc, err := ragService(cmd, opts)
			if err != nil {
				return err
			}
			defer svc.Close()
			page, err := svc.ListCorpora(cmd.Context(), int32(cfg.RAG.PageSize), "")
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), page)
		},
	}

	var description, embeddingModel string
	createCmd := &cobra.Command{
		Use:   "create DISPLAY_NAME",
		Short: "Create a corpus",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, svc, err := ragService(cmd, opts)
			if err != nil {
				return err
			}
			defer svc.Close()
			if embeddingModel == "" {
				embeddingModel = cfg.RAG.EmbeddingModel
			}
			corpus, err := svc.CreateCorpus(cmd.Context(), args[0], description, embeddingModel)
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), corpus)
		},
	}
	createCmd.Flags().StringVar(&description, "description", "", "corpus description")
	createCmd.Flags().StringVar(&embeddingModel, "embedding-model", "", "embedding model")

	getCmd := &cobra.Command{
		Use:   "get CORPUS",
		Short: "Show one corpus (id or full resource name)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, svc, err := ragService(cmd, opts)
			if err != nil {
				return err
			}
			defer svc.Close()
			corpus, err := svc.GetCorpus(cmd.Context(), cfg.CorpusResourceName(args[0]))
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), corpus)
		},
	}

	var yes bool
	deleteCmd := &cobra.Command{
		Use:   "delete CORPUS",
		Short: "Delete a corpus and all of its files",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if !yes {
				return fmt.Errorf("refusing to delete %s without --yes", args[0])
			}
			cfg, svc, err := ragService(cmd, opts)
			if err != nil {
				return err
			}
			defer svc.Close()
			name := cfg.CorpusResourceName(args[0])
			if err := svc.DeleteCorpus(cmd.Context(), name, true); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Deleted %s\n", name)
			return nil
		},
	}
	deleteCmd.Flags().BoolVar(&yes, "yes", false, "confirm the deletion")

	var chunkSize, chunkOverlap int
	importCmd := &cobra.Command{
		Use:   "import CORPUS GCS_URI...",
		Short: "Import documents from Cloud Storage into a corpus",
		Args:  cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, svc, err := ragService(cmd, opts)
			if err != nil {
				return err
			}
			defer svc.Close()
			result, err := svc.ImportFromGCS(cmd.Context(), cfg.CorpusResourceName(args[0]), args[1:], int32(chunkSize), int32(chunkOverlap))
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), result)
		},
	}
	importCmd.Flags().IntVar(&chunkSize, "chunk-size", 0, "chunk size in tokens")
	importCmd.Flags().IntVar(&chunkOverlap, "chunk-overlap", 0, "chunk overlap in tokens")

	filesCmd := &cobra.Command{
		Use:   "files CORPUS",
		Short: "List the files in a corpus",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, svc, err := ragService(cmd, opts)
			if err != nil {
				return err
			}
			defer svc.Close()
			page, err := svc.ListFiles(cmd.Context(), cfg.CorpusResourceName(args[0]), int32(cfg.RAG.PageSize), "")
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), page)
		},
	}

	var topK int
	var threshold float64
	queryCmd := &cobra.Command{
		Use:   "query CORPUS QUERY",
		Short: "Retrieve the most relevant chunks from one corpus",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, svc, err := ragService(cmd, opts)
			if err != nil {
				return err
			}
			defer svc.Close()
			if topK <= 0 {
				topK = cfg.RAG.TopK
			}
			if threshold <= 0 {
				threshold = cfg.RAG.DistanceThreshold
			}
			contexts, err := svc.QueryCorpus(cmd.Context(), cfg.CorpusResourceName(args[0]), args[1], int32(topK), threshold)
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), contexts)
		},
	}
	queryCmd.Flags().IntVar(&topK, "top-k", 0, "number of chunks to retrieve")
	queryCmd.Flags().Float64Var(&threshold, "threshold", 0, "vector distance threshold")

	cmd.AddCommand(listCmd, createCmd, getCmd, deleteCmd, importCmd, filesCmd, queryCmd)
	return cmd
}

func ragService(cmd *cobra.Command, opts *rootOptions) (*config.Config, *ragengine.Service, error) {
	cfg, err := opts.loadConfig()
	if err != nil {
		return nil, nil, err
	}
	svc, err := ragengine.NewService(cmd.Context(), cfg.ProjectID, cfg.Location, ragengine.WithLogger(opts.logger()))
	if err != nil {
		return nil, nil, err
	}
	return cfg, svc, nil
}
