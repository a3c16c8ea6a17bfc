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

// Package storagetools exposes Cloud Storage operations as agent function
// tools: creating and inspecting buckets, uploading files, and listing
// objects. Every tool fills omitted parameters from the central config.
package storagetools

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"google.golang.org/adk/tool"
	"google.golang.org/adk/tool/functiontool"

	"github.com/ragops/corpusagent/internal/config"
	"github.com/ragops/corpusagent/internal/gcs"
)

// StorageService is the subset of the GCS service the tools call.
type StorageService interface {
	CreateBucket(ctx context.Context, name, location, storageClass string) (*gcs.Bucket, error)
	ListBuckets(ctx context.Context, prefix string, maxResults int) ([]*gcs.Bucket, error)
	BucketDetails(ctx context.Context, name string) (*gcs.Bucket, error)
	Upload(ctx context.Context, bucket, object, contentType string, r io.Reader) (*gcs.Blob, error)
	ListBlobs(ctx context.Context, bucket, prefix string, maxResults int) ([]*gcs.Blob, error)
}

// Toolset binds the storage tools to a service and the shared defaults.
type Toolset struct {
	cfg    *config.Config
	svc    StorageService
	logger *slog.Logger
}

// New creates the storage toolset.
func New(cfg *config.Config, svc StorageService, logger *slog.Logger) *Toolset {
	if logger == nil {
		logger = slog.Default()
	}
	return &Toolset{cfg: cfg, svc: svc, logger: logger}
}

// Tools returns the function tools for the agent.
func (ts *Toolset) Tools() ([]tool.Tool, error) {
	specs := []struct {
		name        string
		description string
		build       func(functiontool.Config) (tool.Tool, error)
	}{
		{
			name:        "create_gcs_bucket",
			description: "Create a Google Cloud Storage bucket. Location and storage class fall back to the configured defaults when omitted.",
			build: func(c functiontool.Config) (tool.Tool, error) {
				return functiontool.New(c, func(ctx tool.Context, in CreateBucketInput) (CreateBucketOutput, error) {
					return ts.createBucket(ctx, in)
				})
			},
		},
		{
			name:        "list_gcs_buckets",
			description: "List Cloud Storage buckets in the project, optionally filtered by a name prefix.",
			build: func(c functiontool.Config) (tool.Tool, error) {
				return functiontool.New(c, func(ctx tool.Context, in ListBucketsInput) (ListBucketsOutput, error) {
					return ts.listBuckets(ctx, in)
				})
			},
		},
		{
			name:        "get_gcs_bucket_details",
			description: "Get the location, storage class, and creation time of one Cloud Storage bucket.",
			build: func(c functiontool.Config) (tool.Tool, error) {
				return functiontool.New(c, func(ctx tool.Context, in BucketDetailsInput) (BucketDetailsOutput, error) {
					return ts.bucketDetails(ctx, in)
				})
			},
		},
		{
			name:        "upload_file_gcs",
			description: "Upload a file to a Cloud Storage bucket. Provide either a local file path or inline text content.",
			build: func(c functiontool.Config) (tool.Tool, error) {
				return functiontool.New(c, func(ctx tool.Context, in UploadInput) (UploadOutput, error) {
					return ts.upload(ctx, in)
				})
			},
		},
		{
			name:        "list_gcs_blobs",
			description: "List objects in a Cloud Storage bucket, optionally filtered by a name prefix.",
			build: func(c functiontool.Config) (tool.Tool, error) {
				return functiontool.New(c, func(ctx tool.Context, in ListBlobsInput) (ListBlobsOutput, error) {
					return ts.listBlobs(ctx, in)
				})
			},
		},
	}

	tools := make([]tool.Tool, 0, len(specs))
	for _, spec := range specs {
		t, err := spec.build(functiontool.Config{Name: spec.name, Description: spec.description})
		if err != nil {
			return nil, fmt.Errorf("failed to create tool %s: %w", spec.name, err)
		}
		tools = append(tools, t)
	}
	return tools, nil
}

// CreateBucketInput are the arguments for create_gcs_bucket.
type CreateBucketInput struct {
	BucketName   string `json:"bucket_name"`
	Location     string `json:"location,omitempty"`
	StorageClass string `json:"storage_class,omitempty"`
}

// CreateBucketOutput reports the created bucket.
type CreateBucketOutput struct {
	Bucket  *gcs.Bucket `json:"bucket"`
	Message string      `json:"message"`
}

func (ts *Toolset) createBucket(ctx context.Context, in CreateBucketInput) (CreateBucketOutput, error) {
	if in.BucketName == "" {
		return CreateBucketOutput{}, fmt.Errorf("bucket_name must not be empty")
	}
	location := in.Location
	if location == "" {
		location = ts.cfg.Storage.DefaultLocation
	}
	storageClass := in.StorageClass
	if storageClass == "" {
		storageClass = ts.cfg.Storage.DefaultStorageClass
	}

	bucket, err := ts.svc.CreateBucket(ctx, in.BucketName, location, storageClass)
	if err != nil {
		return CreateBucketOutput{}, err
	}
	return CreateBucketOutput{
		Bucket:  bucket,
		Message: fmt.Sprintf("Created bucket %s in %s.", bucket.URI, bucket.Location),
	}, nil
}

// ListBucketsInput are the arguments for list_gcs_buckets.
type ListBucketsInput struct {
	Prefix     string `json:"prefix,omitempty"`
	MaxResults int    `json:"max_results,omitempty"`
}

// ListBucketsOutput lists the matching buckets.
type ListBucketsOutput struct {
	Buckets []*gcs.Bucket `json:"buckets"`
	Count   int           `json:"count"`
}

func (ts *Toolset) listBuckets(ctx context.Context, in ListBucketsInput) (ListBucketsOutput, error) {
	maxResults := in.MaxResults
	if maxResults <= 0 {
		maxResults = ts.cfg.Storage.ListBucketsMaxResults
	}
	buckets, err := ts.svc.ListBuckets(ctx, in.Prefix, maxResults)
	if err != nil {
		return ListBucketsOutput{}, err
	}
	return ListBucketsOutput{Buckets: buckets, Count: len(buckets)}, nil
}

// BucketDetailsInput are the arguments for get_gcs_bucket_details.
type BucketDetailsInput struct {
	BucketName string `json:"bucket_name"`
}

// BucketDetailsOutput describes one bucket.
type BucketDetailsOutput struct {
	Bucket *gcs.Bucket `json:"bucket"`
}

func (ts *Toolset) bucketDetails(ctx context.Context, in BucketDetailsInput) (BucketDetailsOutput, error) {
	if in.BucketName == "" {
		return BucketDetailsOutput{}, fmt.Errorf("bucket_name must not be empty")
	}
	bucket, err := ts.svc.BucketDetails(ctx, in.BucketName)
	if err != nil {
		return BucketDetailsOutput{}, err
	}
	return BucketDetailsOutput{Bucket: bucket}, nil
}

// UploadInput are the arguments for upload_file_gcs. Exactly one of
// LocalPath and Content must be set.
type UploadInput struct {
	BucketName  string `json:"bucket_name"`
	ObjectName  string `json:"object_name,omitempty"`
	LocalPath   string `json:"local_path,omitempty"`
	Content     string `json:"content,omitempty"`
	ContentType string `json:"content_type,omitempty"`
}

// UploadOutput reports the uploaded object.
type UploadOutput struct {
	Blob    *gcs.Blob `json:"blob"`
	Message string    `json:"message"`
}

func (ts *Toolset) upload(ctx context.Context, in UploadInput) (UploadOutput, error) {
	if in.BucketName == "" {
		return UploadOutput{}, fmt.Errorf("bucket_name must not be empty")
	}
	if in.LocalPath == "" && in.Content == "" {
		return UploadOutput{}, fmt.Errorf("either local_path or content must be set")
	}
	if in.LocalPath != "" && in.Content != "" {
		return UploadOutput{}, fmt.Errorf("local_path and content are mutually exclusive")
	}

	objectName := in.ObjectName
	var r io.Reader
	if in.LocalPath != "" {
		f, err := os.Open(in.LocalPath)
		if err != nil {
			return UploadOutput{}, fmt.Errorf("failed to open %s: %w", in.LocalPath, err)
		}
		defer f.Close()
		r = f
		if objectName == "" {
			objectName = filepath.Base(in.LocalPath)
		}
	} else {
		r = strings.NewReader(in.Content)
	}
	if objectName == "" {
		return UploadOutput{}, fmt.Errorf("object_name must be set when uploading inline content")
	}

	contentType := in.ContentType
	if contentType == "" {
		contentType = ts.cfg.Storage.DefaultContentType
	}

	blob, err := ts.svc.Upload(ctx, in.BucketName, objectName, contentType, r)
	if err != nil {
		return UploadOutput{}, err
	}
	ts.logger.InfoContext(ctx, "uploaded object",
		slog.String("uri", blob.URI),
		slog.Int64("size", blob.Size),
	)
	return UploadOutput{
		Blob:    blob,
		Message: fmt.Sprintf("Uploaded %s (%d bytes).", blob.URI, blob.Size),
	}, nil
}

// ListBlobsInput are the arguments for list_gcs_blobs.
type ListBlobsInput struct {
	BucketName string `json:"bucket_name"`
	Prefix     string `json:"prefix,omitempty"`
	MaxResults int    `json:"max_results,omitempty"`
}

// ListBlobsOutput lists the matching objects.
type ListBlobsOutput struct {
	Blobs []*gcs.Blob `json:"blobs"`
	Count int         `json:"count"`
}

func (ts *Toolset) listBlobs(ctx context.Context, in ListBlobsInput) (ListBlobsOutput, error) {
	if in.BucketName == "" {
		return ListBlobsOutput{}, fmt.Errorf("bucket_name must not be empty")
	}
	maxResults := in.MaxResults
	if maxResults <= 0 {
		maxResults = ts.cfg.Storage.ListBlobsMaxResults
	}
	blobs, err := ts.svc.ListBlobs(ctx, in.BucketName, in.Prefix, maxResults)
	if err != nil {
		return ListBlobsOutput{}, err
	}
	return ListBlobsOutput{Blobs: blobs, Count: len(blobs)}, nil
}
