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

package gcs

import (
	"context"
	"io"

	"cloud.google.com/go/storage"
)

// ------------------------ Interfaces to enable mocking ------------------------

// gcsClient is the interface a storage client must satisfy.
type gcsClient interface {
	bucket(name string) gcsBucket
	buckets(ctx context.Context, projectID, prefix string) gcsBucketIterator
}

// gcsBucket is the interface a bucket handle must satisfy.
type gcsBucket interface {
	create(ctx context.Context, projectID string, attrs *storage.BucketAttrs) error
	attrs(ctx context.Context) (*storage.BucketAttrs, error)
	object(name string) gcsObject
	objects(ctx context.Context, q *storage.Query) gcsObjectIterator
}

// gcsObject is the interface an object handle must satisfy.
type gcsObject interface {
	newWriter(ctx context.Context) gcsWriter
	attrs(ctx context.Context) (*storage.ObjectAttrs, error)
}

type gcsBucketIterator interface {
	next() (*storage.BucketAttrs, error)
}

type gcsObjectIterator interface {
	next() (*storage.ObjectAttrs, error)
}

type gcsWriter interface {
	io.Writer
	io.Closer
	SetContentType(string)
}

// ---------------------- Wrappers for the real storage types ----------------------

// gcsClientWrapper wraps a storage.Client to satisfy the gcsClient interface.
type gcsClientWrapper struct {
	client *storage.Client
}

func (w *gcsClientWrapper) bucket(name string) gcsBucket {
	return &gcsBucketWrapper{bucket: w.client.Bucket(name)}
}

func (w *gcsClientWrapper) buckets(ctx context.Context, projectID, prefix string) gcsBucketIterator {
	it := w.client.Buckets(ctx, projectID)
	it.Prefix = prefix
	return &gcsBucketIteratorWrapper{iter: it}
}

// gcsBucketWrapper wraps a storage.BucketHandle.
type gcsBucketWrapper struct {
	bucket *storage.BucketHandle
}

func (w *gcsBucketWrapper) create(ctx context.Context, projectID string, attrs *storage.BucketAttrs) error {
	return w.bucket.Create(ctx, projectID, attrs)
}

func (w *gcsBucketWrapper) attrs(ctx context.Context) (*storage.BucketAttrs, error) {
	return w.bucket.Attrs(ctx)
}

func (w *gcsBucketWrapper) object(name string) gcsObject {
	return &gcsObjectWrapper{object: w.bucket.Object(name)}
}

func (w *gcsBucketWrapper) objects(ctx context.Context, q *storage.Query) gcsObjectIterator {
	return &gcsObjectIteratorWrapper{iter: w.bucket.Objects(ctx, q)}
}

// gcsObjectWrapper wraps a storage.ObjectHandle.
type gcsObjectWrapper struct {
	object *storage.ObjectHandle
}

func (w *gcsObjectWrapper) newWriter(ctx context.Context) gcsWriter {
	return &gcsWriterWrapper{w: w.object.NewWriter(ctx)}
}

func (w *gcsObjectWrapper) attrs(ctx context.Context) (*storage.ObjectAttrs, error) {
	return w.object.Attrs(ctx)
}

type gcsBucketIteratorWrapper struct {
	iter *storage.BucketIterator
}

func (w *gcsBucketIteratorWrapper) next() (*storage.BucketAttrs, error) {
	return w.iter.Next()
}

type gcsObjectIteratorWrapper struct {
	iter *storage.ObjectIterator
}

func (w *gcsObjectIteratorWrapper) next() (*storage.ObjectAttrs, error) {
	return w.iter.Next()
}

// gcsWriterWrapper wraps the real storage writer.
type gcsWriterWrapper struct {
	w *storage.Writer
}

func (g *gcsWriterWrapper) Write(p []byte) (n int, err error) {
	return g.w.Write(p)
}

func (g *gcsWriterWrapper) Close() error {
	return g.w.Close()
}

func (g *gcsWriterWrapper) SetContentType(cType string) {
	g.w.ContentType = cType
}

var _ gcsClient = (*gcsClientWrapper)(nil)
var _ gcsBucket = (*gcsBucketWrapper)(nil)
var _ gcsObject = (*gcsObjectWrapper)(nil)
var _ gcsBucketIterator = (*gcsBucketIteratorWrapper)(nil)
var _ gcsObjectIterator = (*gcsObjectIteratorWrapper)(nil)
var _ gcsWriter = (*gcsWriterWrapper)(nil)
