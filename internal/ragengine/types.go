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

package ragengine

import (
	"fmt"
	"strings"
	"time"
)

// CorpusState represents the state of a RAG corpus.
type CorpusState string

const (
	CorpusStateUnspecified CorpusState = "CORPUS_STATE_UNSPECIFIED"
	CorpusStateActive      CorpusState = "ACTIVE"
	CorpusStateError       CorpusState = "ERROR"
)

// FileState represents the state of a RAG file.
type FileState string

const (
	FileStateUnspecified FileState = "FILE_STATE_UNSPECIFIED"
	FileStateActive      FileState = "ACTIVE"
	FileStateError       FileState = "ERROR"
)

// Corpus is a managed, indexed document collection in the RAG Engine.
type Corpus struct {
	// Name is the full resource name:
	// projects/{project}/locations/{location}/ragCorpora/{corpus}
	Name string `json:"name"`

	DisplayName string `json:"display_name,omitempty"`
	Description string `json:"description,omitempty"`

	// EmbeddingModel is the publisher embedding model backing the corpus,
	// e.g. "publishers/google/models/text-multilingual-embedding-002".
	EmbeddingModel string `json:"embedding_model,omitempty"`

	// VectorSearchIndex references an external Vertex Vector Search index
	// when the corpus is not on the managed database.
	VectorSearchIndex string `json:"vector_search_index,omitempty"`

	State      CorpusState `json:"state,omitempty"`
	CreateTime *time.Time  `json:"create_time,omitempty"`
	UpdateTime *time.Time  `json:"update_time,omitempty"`
}

// File is a document ingested into a corpus.
type File struct {
	// Name is the full resource name:
	// projects/{p}/locations/{l}/ragCorpora/{c}/ragFiles/{f}
	Name string `json:"name"`

	DisplayName string `json:"display_name,omitempty"`
	Description string `json:"description,omitempty"`

	// SourceURIs are the gs:// URIs the file was imported from, when the
	// source was Cloud Storage.
	SourceURIs []string `json:"source_uris,omitempty"`

	SizeBytes  int64      `json:"size_bytes,omitempty"`
	State      FileState  `json:"state,omitempty"`
	CreateTime *time.Time `json:"create_time,omitempty"`
}

// CorpusPage is one page of a corpus listing.
type CorpusPage struct {
	Corpora       []*Corpus `json:"corpora"`
	NextPageToken string    `json:"next_page_token,omitempty"`
}

// FilePage is one page of a file listing.
type FilePage struct {
	Files         []*File `json:"files"`
	NextPageToken string  `json:"next_page_token,omitempty"`
}

// ImportResult reports the outcome of a document import.
type ImportResult struct {
	ImportedCount int64 `json:"imported_count"`
	FailedCount   int64 `json:"failed_count"`
	SkippedCount  int64 `json:"skipped_count,omitempty"`
}

// Context is one retrieved chunk with its source.
type Context struct {
	Text              string  `json:"text"`
	SourceURI         string  `json:"source_uri,omitempty"`
	SourceDisplayName string  `json:"source_display_name,omitempty"`
	Distance          float64 `json:"distance,omitempty"`
	Corpus            string  `json:"corpus,omitempty"`
}

// PublisherModel expands a bare embedding model id into the publisher
// model resource path the RAG Engine expects.
func PublisherModel(model string) string {
	if model == "" {
		return ""
	}
	if strings.HasPrefix(model, "publishers/") || strings.HasPrefix(model, "projects/") {
		return model
	}
	return "publishers/google/models/" + model
}

// CorpusID extracts the trailing id from a corpus resource name.
func CorpusID(name string) string {
	if i := strings.LastIndex(name, "/"); i >= 0 {
		return name[i+1:]
	}
	return name
}

// ValidateCorpusName checks that name looks like a corpus resource name.
func ValidateCorpusName(name string) error {
	parts := strings.Split(name, "/")
	if len(parts) != 6 || parts[0] != "projects" || parts[2] != "locations" || parts[4] != "ragCorpora" {
		return fmt.Errorf("invalid corpus resource name %q, want projects/{project}/locations/{location}/ragCorpora/{corpus}", name)
	}
	return nil
}

// ValidateFileName checks that name looks like a rag file resource name.
func ValidateFileName(name string) error {
	parts := strings.Split(name, "/")
	if len(parts) != 8 || parts[0] != "projects" || parts[2] != "locations" || parts[4] != "ragCorpora" || parts[6] != "ragFiles" {
		return fmt.Errorf("invalid rag file resource name %q, want projects/{project}/locations/{location}/ragCorpora/{corpus}/ragFiles/{file}", name)
	}
	return nil
}
