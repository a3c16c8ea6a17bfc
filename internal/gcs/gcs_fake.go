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
	"bytes"
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"cloud.google.com/go/storage"
	"google.golang.org/api/iterator"
)

// fakeClient implements the gcsClient interface with in-memory buckets.
type fakeClient struct {
	mu         sync.Mutex
	bucketsMap map[string]*fakeBucket
}

func newFakeClient() *fakeClient {
	return &fakeClient{
		bucketsMap: make(map[string]*fakeBucket),
	}
}

func (c *fakeClient) bucket(name string) gcsBucket {
	c.mu.Lock()
	defer c.mu.Unlock()
	if b, ok := c.bucketsMap[name]; ok {
		return b
	}
	// Uncreated bucket handle; create() registers it.
	b := &fakeBucket{name: name, client: c, objectsMap: make(map[string]*fakeObject)}
	return b
}

func (c *fakeClient) buckets(ctx context.Context, projectID, prefix string) gcsBucketIterator {
	c.mu.Lock()
	defer c.mu.Unlock()

	var names []string
	for name := range c.bucketsMap {
		if prefix != "" && !strings.HasPrefix(name, prefix) {
			continue
		}
		names = append(names, name)
	}
	sort.Strings(names)

	var attrs []*storage.BucketAttrs
	for _, name := range names {
		b := c.bucketsMap[name]
		attrs = append(attrs, &storage.BucketAttrs{
			Name:         b.name,
			Location:     b.location,
			StorageClass: b.storageClass,
			Created:      b.created,
		})
	}
	return &fakeBucketIterator{attrs: attrs}
}

// fakeBucket implements the gcsBucket interface.
type fakeBucket struct {
	mu           sync.Mutex
	client       *fakeClient
	name         string
	location     string
	storageClass string
	created      time.Time
	exists       bool
	objectsMap   map[string]*fakeObject
}

func (f *fakeBucket) create(ctx context.Context, projectID string, attrs *storage.BucketAttrs) error {
	f.client.mu.Lock()
	defer f.client.mu.Unlock()
	if existing, ok := f.client.bucketsMap[f.name]; ok && existing.exists {
		return fmt.Errorf("bucket %q already exists", f.name)
	}
	f.exists = true
	f.created = time.Now()
	if attrs != nil {
		f.location = attrs.Location
		f.storageClass = attrs.StorageClass
	}
	f.client.bucketsMap[f.name] = f
	return nil
}

func (f *fakeBucket) attrs(ctx context.Context) (*storage.BucketAttrs, error) {
	f.client.mu.Lock()
	registered, ok := f.client.bucketsMap[f.name]
	f.client.mu.Unlock()
	if !ok || !registered.exists {
		return nil, storage.ErrBucketNotExist
	}
	return &storage.BucketAttrs{
		Name:         registered.name,
		Location:     registered.location,
		StorageClass: registered.storageClass,
		Created:      registered.created,
	}, nil
}

func (f *fakeBucket) object(name string) gcsObject {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.objectsMap[name]; !ok {
		f.objectsMap[name] = &fakeObject{name: name}
	}
	return f.objectsMap[name]
}

func (f *fakeBucket) objects(ctx context.Context, q *storage.Query) gcsObjectIterator {
	f.mu.Lock()
	defer f.mu.Unlock()

	var names []string
	for name, obj := range f.objectsMap {
		if q != nil && q.Prefix != "" && !strings.HasPrefix(name, q.Prefix) {
			continue
		}
		if obj.data != nil {
			names = append(names, name)
		}
	}
	sort.Strings(names)

	var objs []*fakeObject
	for _, name := range names {
		objs = append(objs, f.objectsMap[name])
	}
	return &fakeObjectIterator{objects: objs}
}

// fakeObject implements the gcsObject interface.
type fakeObject struct {
	mu          sync.Mutex
	name        string
	data        []byte
	contentType string
	updated     time.Time
}

func (f *fakeObject) newWriter(ctx context.Context) gcsWriter {
	return &fakeWriter{obj: f, buffer: &bytes.Buffer{}}
}

func (f *fakeObject) attrs(ctx context.Context) (*storage.ObjectAttrs, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.data == nil {
		return nil, storage.ErrObjectNotExist
	}
	return &storage.ObjectAttrs{
		Name:        f.name,
		Size:        int64(len(f.data)),
		ContentType: f.contentType,
		Updated:     f.updated,
	}, nil
}

// fakeWriter buffers writes and commits on Close.
type fakeWriter struct {
	obj         *fakeObject
	buffer      *bytes.Buffer
	contentType string
}

func (w *fakeWriter) Write(p []byte) (n int, err error) {
	return w.buffer.Write(p)
}

func (w *fakeWriter) Close() error {
	w.obj.mu.Lock()
	defer w.obj.mu.Unlock()
	w.obj.data = w.buffer.Bytes()
	w.obj.contentType = w.contentType
	w.obj.updated = time.Now()
	return nil
}

func (w *fakeWriter) SetContentType(cType string) {
	w.contentType = cType
}

type fakeBucketIterator struct {
	attrs []*storage.BucketAttrs
	index int
}

func (i *fakeBucketIterator) next() (*storage.BucketAttrs, error) {
	if i.index >= len(i.attrs) {
		return nil, iterator.Done
	}
	a := i.attrs[i.index]
	i.index++
	return a, nil
}

type fakeObjectIterator struct {
	objects []*fakeObject
	index   int
}

func (i *fakeObjectIterator) next() (*storage.ObjectAttrs, error) {
	if i.index >= len(i.objects) {
		return nil, iterator.Done
	}
	obj := i.objects[i.index]
	i.index++
	return &storage.ObjectAttrs{
		Name:        obj.name,
		Size:        int64(len(obj.data)),
		ContentType: obj.contentType,
		Updated:     obj.updated,
	}, nil
}

var _ gcsClient = (*fakeClient)(nil)
var _ gcsBucket = (*fakeBucket)(nil)
var _ gcsObject = (*fakeObject)(nil)
var _ gcsBucketIterator = (*fakeBucketIterator)(nil)
var _ gcsObjectIterator = (*fakeObjectIterator)(nil)
var _ gcsWriter = (*fakeWriter)(nil)
