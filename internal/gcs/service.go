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

// Package gcs wraps the Cloud Storage client with the handful of bucket
// and blob operations the storage tools expose. The client sits behind a
// small interface seam so tests run against an in-memory fake.
package gcs

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"time"

	"cloud.google.com/go/storage"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"
	"google.golang.org/api/iterator"
)

// Bucket describes a Cloud Storage bucket.
type Bucket struct {
	Name         string    `json:"name"`
	Location     string    `json:"location,omitempty"`
	StorageClass string    `json:"storage_class,omitempty"`
	Created      time.Time `json:"created,omitzero"`
	URI          string    `json:"uri"`
}

// Blob describes a Cloud Storage object.
type Blob struct {
	Bucket      string    `json:"bucket"`
	Name        string    `json:"name"`
	Size        int64     `json:"size,omitempty"`
	ContentType string    `json:"content_type,omitempty"`
	Updated     time.Time `json:"updated,omitzero"`
	URI         string    `json:"uri"`
}

// BlobURI renders the gs:// URI for an object.
func BlobURI(bucket, name string) string {
	return fmt.Sprintf("gs://%s/%s", bucket, name)
}

// Service performs bucket and blob operations for one project.
type Service struct {
	projectID string
	client    gcsClient
	logger    *slog.Logger
	tracer    trace.Tracer
}

// Option configures a Service.
type Option func(*Service)

// WithLogger sets the logger for the Service.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) {
		s.logger = logger
	}
}

// NewService creates a Service backed by a real Cloud Storage client.
func NewService(ctx context.Context, projectID string, opts ...Option) (*Service, error) {
	client, err := storage.NewClient(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to create storage client: %w", err)
	}
	return newService(projectID, &gcsClientWrapper{client: client}, opts...), nil
}

// newServiceForTesting creates a Service backed by the in-memory fake.
func newServiceForTesting(projectID string, opts ...Option) *Service {
	return newService(projectID, newFakeClient(), opts...)
}

func newService(projectID string, client gcsClient, opts ...Option) *Service {
	s := &Service{
		projectID: projectID,
		client:    client,
		logger:    slog.Default(),
		tracer:    otel.Tracer("corpusagent/gcs"),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// CreateBucket creates a bucket with the given location and storage class.
func (s *Service) CreateBucket(ctx context.Context, name, location, storageClass string) (*Bucket, error) {
	ctx, span := s.tracer.Start(ctx, "gcs.CreateBucket")
	defer span.End()

	if name == "" {
		return nil, fmt.Errorf("bucket name must not be empty")
	}

	s.logger.InfoContext(ctx, "Creating GCS bucket",
		slog.String("bucket", name),
		slog.String("location", location),
		slog.String("storage_class", storageClass),
	)

	attrs := &storage.BucketAttrs{
		Location:     location,
		StorageClass: storageClass,
	}
	if err := s.client.bucket(name).create(ctx, s.projectID, attrs); err != nil {
		return nil, fmt.Errorf("failed to create bucket %s: %w", name, err)
	}

	created, err := s.client.bucket(name).attrs(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to read attributes of bucket %s: %w", name, err)
	}
	return bucketFromAttrs(created), nil
}

// ListBuckets lists buckets in the project, optionally filtered by name
// prefix and capped at maxResults.
func (s *Service) ListBuckets(ctx context.Context, prefix string, maxResults int) ([]*Bucket, error) {
	ctx, span := s.tracer.Start(ctx, "gcs.ListBuckets")
	defer span.End()

	it := s.client.buckets(ctx, s.projectID, prefix)
	var buckets []*Bucket
	for {
		if maxResults > 0 && len(buckets) >= maxResults {
			break
		}
		attrs, err := it.next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to list buckets: %w", err)
		}
		buckets = append(buckets, bucketFromAttrs(attrs))
	}

	s.logger.InfoContext(ctx, "Listed GCS buckets",
		slog.Int("count", len(buckets)),
		slog.String("prefix", prefix),
	)
	return buckets, nil
}

// BucketDetails returns the attributes of one bucket.
func (s *Service) BucketDetails(ctx context.Context, name string) (*Bucket, error) {
	ctx, span := s.tracer.Start(ctx, "gcs.BucketDetails")
	defer span.End()

	if name == "" {
		return nil, fmt.Errorf("bucket name must not be empty")
	}
	attrs, err := s.client.bucket(name).attrs(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get bucket %s: %w", name, err)
	}
	return bucketFromAttrs(attrs), nil
}

// Upload writes the contents of r to bucket/object with the given content
// type and returns the resulting blob.
func (s *Service) Upload(ctx context.Context, bucket, object, contentType string, r io.Reader) (*Blob, error) {
	ctx, span := s.tracer.Start(ctx, "gcs.Upload")
	defer span.End()

	if bucket == "" || object == "" {
		return nil, fmt.Errorf("bucket and object names must not be empty")
	}

	w := s.client.bucket(bucket).object(object).newWriter(ctx)
	w.SetContentType(contentType)
	n, err := io.Copy(w, r)
	if err != nil {
		w.Close()
		return nil, fmt.Errorf("failed to write gs://%s/%s: %w", bucket, object, err)
	}
	if err := w.Close(); err != nil {
		return nil, fmt.Errorf("failed to finalize gs://%s/%s: %w", bucket, object, err)
	}

	s.logger.InfoContext(ctx, "Uploaded object to GCS",
		slog.String("uri", BlobURI(bucket, object)),
		slog.Int64("bytes", n),
		slog.String("content_type", contentType),
	)

	return &Blob{
		Bucket:      bucket,
		Name:        object,
		Size:        n,
		ContentType: contentType,
		URI:         BlobURI(bucket, object),
	}, nil
}

// ListBlobs lists objects in a bucket, optionally under a prefix and
// capped at maxResults.
func (s *Service) ListBlobs(ctx context.Context, bucket, prefix string, maxResults int) ([]*Blob, error) {
	ctx, span := s.tracer.Start(ctx, "gcs.ListBlobs")
	defer span.End()

	if bucket == "" {
		return nil, fmt.Errorf("bucket name must not be empty")
	}

	var q *storage.Query
	if prefix != "" {
		q = &storage.Query{Prefix: prefix}
	}

	it := s.client.bucket(bucket).objects(ctx, q)
	var blobs []*Blob
	for {
		if maxResults > 0 && len(blobs) >= maxResults {
			break
		}
		attrs, err := it.next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to list objects in bucket %s: %w", bucket, err)
		}
		blobs = append(blobs, &Blob{
			Bucket:      bucket,
			Name:        attrs.Name,
			Size:        attrs.Size,
			ContentType: attrs.ContentType,
			Updated:     attrs.Updated,
			URI:         BlobURI(bucket, attrs.Name),
		})
	}

	s.logger.InfoContext(ctx, "Listed GCS objects",
		slog.String("bucket", bucket),
		slog.String("prefix", prefix),
		slog.Int("count", len(blobs)),
	)
	return blobs, nil
}

// ParseURI splits a gs://bucket/object URI. The object part may be empty.
func ParseURI(uri string) (bucket, object string, err error) {
	rest, ok := strings.CutPrefix(uri, "gs://")
	if !ok {
		return "", "", fmt.Errorf("not a gs:// URI: %s", uri)
	}
	bucket, object, _ = strings.Cut(rest, "/")
	if bucket == "" {
		return "", "", fmt.Errorf("missing bucket in URI: %s", uri)
	}
	return bucket, object, nil
}

func bucketFromAttrs(attrs *storage.BucketAttrs) *Bucket {
	return &Bucket{
		Name:         attrs.Name,
		Location:     attrs.Location,
		StorageClass: attrs.StorageClass,
		Created:      attrs.Created,
		URI:          "gs://" + attrs.Name,
	}
}
