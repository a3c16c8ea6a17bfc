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
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/ragops/corpusagent/internal/config"
)

type rootOptions struct {
	configPath string
	projectID  string
	location   string
}

func newRootCmd() *cobra.Command {
	opts := &rootOptions{}

	cmd := &cobra.Command{
		Use:           "corpusctl",
		Short:         "Manage Cloud Storage buckets, RAG corpora, and Vertex AI Search apps",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	cmd.PersistentFlags().StringVar(&opts.configPath, "config", "", "path to a YAML config file")
	cmd.PersistentFlags().StringVar(&opts.projectID, "project", "", "Google Cloud project id (overrides config)")
	cmd.PersistentFlags().StringVar(&opts.location, "location", "", "Vertex AI location (overrides config)")

	cmd.AddCommand(
		newBucketsCmd(opts),
		newCorporaCmd(opts),
		newEnginesCmd(opts),
		newSearchCmd(opts),
	)
	return cmd
}

func (o *rootOptions) loadConfig() (*config.Config, error) {
	cfg, err := config.Load(o.configPath)
	if err != nil {
		return nil, err
	}
	if o.projectID != "" {
		cfg.ProjectID = o.projectID
	}
	if o.location != "" {
		cfg.Location = o.location
	}
	return cfg, nil
}

func (o *rootOptions) logger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelWarn}))
}

// printJSON renders a command result to stdout.
func printJSON(w io.Writer, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode result: %w", err)
	}
	_, err = fmt.Fprintln(w, string(data))
	return err
}
