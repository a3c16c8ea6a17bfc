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
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/ragops/corpusagent/internal/config"
	"github.com/ragops/corpusagent/internal/gcs"
)

func newBucketsCmd(opts *rootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "buckets",
		Short: "Cloud Storage buckets and objects",
	}

	var prefix string
	var maxResults int
	listCmd := &cobra.Command{
		Use:   "list",
		Short: "List buckets in the project",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, svc, err := storageService(cmd, opts)
			if err != nil {
				return err
			}
			if maxResults <= 0 {
				maxResults = cfg.Storage.ListBucketsMaxResults
			}
			buckets, err := svc.ListBuckets(cmd.Context(), prefix, maxResults)
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), buckets)
		},
	}
	listCmd.Flags().StringVar(&prefix, "prefix", "", "only buckets with this name prefix")
	listCmd.Flags().IntVar(&maxResults, "max", 0, "maximum number of buckets")

	var location, storageClass string
	createCmd := &cobra.Command{
		Use:   "create NAME",
		Short: "Create a bucket",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, svc, err := storageService(cmd, opts)
			if err != nil {
				return err
			}
			if location == "" {
				location = cfg.Storage.DefaultLocation
			}
			if storageClass == "" {
				storageClass = cfg.Storage.DefaultStorageClass
			}
			bucket, err := svc.CreateBucket(cmd.Context(), args[0], location, storageClass)
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), bucket)
		},
	}
	createCmd.Flags().StringVar(&location, "location", "", "bucket location")
	createCmd.Flags().StringVar(&storageClass, "class", "", "storage class")

	describeCmd := &cobra.Command{
		Use:   "describe NAME",
		Short: "Show the details of one bucket",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			_, svc, err := storageService(cmd, opts)
			if err != nil {
				return err
			}
			bucket, err := svc.BucketDetails(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), bucket)
		},
	}

	var objectName, contentType string
	uploadCmd := &cobra.Command{
		Use:   "upload BUCKET FILE",
		Short: "Upload a local file to a bucket",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, svc, err := storageService(cmd, opts)
			if err != nil {
				return err
			}
			f, err := os.Open(args[1])
			if err != nil {
				return fmt.Errorf("failed to open %s: %w", args[1], err)
			}
			defer f.Close()
			if objectName == "" {
				objectName = filepath.Base(args[1])
			}
			if contentType == "" {
				contentType = cfg.Storage.DefaultContentType
			}
			blob, err := svc.Upload(cmd.Context(), args[0], objectName, contentType, f)
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), blob)
		},
	}
	uploadCmd.Flags().StringVar(&objectName, "object", "", "object name (default: file base name)")
	uploadCmd.Flags().StringVar(&contentType, "content-type", "", "content type")

	var objPrefix string
	var objMax int
	objectsCmd := &cobra.Command{
		Use:   "objects BUCKET",
		Short: "List objects in a bucket",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, svc, err := storageService(cmd, opts)
			if err != nil {
				return err
			}
			if objMax <= 0 {
				objMax = cfg.Storage.ListBlobsMaxResults
			}
			blobs, err := svc.ListBlobs(cmd.Context(), args[0], objPrefix, objMax)
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), blobs)
		},
	}
	objectsCmd.Flags().StringVar(&objPrefix, "prefix", "", "only objects with this name prefix")
	objectsCmd.Flags().IntVar(&objMax, "max", 0, "maximum number of objects")

	cmd.AddCommand(listCmd, createCmd, describeCmd, uploadCmd, objectsCmd)
	return cmd
}

func storageService(cmd *cobra.Command, opts *rootOptions) (*config.Config, *gcs.Service, error) {
	cfg, err := opts.loadConfig()
	if err != nil {
		return nil, nil, err
	}
	svc, err := gcs.NewService(cmd.Context(), cfg.ProjectID, gcs.WithLogger(opts.logger()))
	if err != nil {
		return nil, nil, err
	}
	return cfg, svc, nil
}
