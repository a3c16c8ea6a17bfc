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

package corpustools

import (
	"context"
	"fmt"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/ragops/corpusagent/internal/config"
	"github.com/ragops/corpusagent/internal/ragengine"
)

const (
	corpusA = "projects/test-project/locations/us-central1/ragCorpora/111"
	corpusB = "projects/test-project/locations/us-central1/ragCorpora/222"
)

// stubRAG records the arguments of the last call and returns canned
// values.
type stubRAG struct {
	createdModel     string
	updatedName      string
	deletedCorpus    string
	deletedForce     bool
	deletedFile      string
	importCorpus     string
	importURIs       []string
	importChunkSize  int32
	retrieveCorpora  []string
	retrieveTopK     int32
	retrieveDistance float64
	listCalls        int
	corpora          []*ragengine.Corpus
	err              error
}

func (s *stubRAG) CreateCorpus(ctx context.Context, displayName, description, embeddingModel string) (*ragengine.Corpus, error) {
	if s.err != nil {
		return nil, s.err
	}
	s.createdModel = embeddingModel
	return &ragengine.Corpus{Name: corpusA, DisplayName: displayName, Description: description, State: ragengine.CorpusStateActive}, nil
}

func (s *stubRAG) UpdateCorpus(ctx context.Context, corpusName, displayName, description string) (*ragengine.Corpus, error) {
	if s.err != nil {
		return nil, s.err
	}
	s.updatedName = corpusName
	return &ragengine.Corpus{Name: corpusName, DisplayName: displayName, Description: description}, nil
}

func (s *stubRAG) ListCorpora(ctx context.Context, pageSize int32, pageToken string) (*ragengine.CorpusPage, error) {
	if s.err != nil {
		return nil, s.err
	}
	s.listCalls++
	return &ragengine.CorpusPage{Corpora: s.corpora}, nil
}

func (s *stubRAG) GetCorpus(ctx context.Context, corpusName string) (*ragengine.Corpus, error) {
	if s.err != nil {
		return nil, s.err
	}
	return &ragengine.Corpus{Name: corpusName, DisplayName: "Docs"}, nil
}

func (s *stubRAG) DeleteCorpus(ctx context.Context, corpusName string, force bool) error {
	if s.err != nil {
		return s.err
	}
	s.deletedCorpus, s.deletedForce = corpusName, force
	return nil
}

func (s *stubRAG) ImportFromGCS(ctx context.Context, corpusName string, gcsURIs []string, chunkSize, chunkOverlap int32) (*ragengine.ImportResult, error) {
	if s.err != nil {
		return nil, s.err
	}
	s.importCorpus, s.importURIs, s.importChunkSize = corpusName, gcsURIs, chunkSize
	return &ragengine.ImportResult{ImportedCount: int64(len(gcsURIs))}, nil
}

func (s *stubRAG) ListFiles(ctx context.Context, corpusName string, pageSize int32, pageToken string) (*ragengine.FilePage, error) {
	if s.err != nil {
		return nil, s.err
	}
	return &ragengine.FilePage{Files: []*ragengine.File{{Name: corpusName + "/ragFiles/f1", DisplayName: "a.pdf"}}}, nil
}

func (s *stubRAG) GetFile(ctx context.Context, fileName string) (*ragengine.File, error) {
	if s.err != nil {
		return nil, s.err
	}
	return &ragengine.File{Name: fileName, DisplayName: "a.pdf", State: ragengine.FileStateActive}, nil
}

func (s *stubRAG) DeleteFile(ctx context.Context, fileName string) error {
	if s.err != nil {
		return s.err
	}
	s.deletedFile = fileName
	return nil
}

func (s *stubRAG) RetrieveContexts(ctx context.Context, corpusNames []string, query string, topK int32, distanceThreshold float64) ([]*ragengine.Context, error) {
	if s.err != nil {
		return nil, s.err
	}
	s.retrieveCorpora, s.retrieveTopK, s.retrieveDistance = corpusNames, topK, distanceThreshold
	return []*ragengine.Context{{Text: "chunk", Corpus: corpusNames[0]}}, nil
}

func newToolset(svc RAGService) *Toolset {
	cfg := config.Default()
	cfg.ProjectID = "test-project"
	return New(cfg, svc, nil)
}

func TestCreateCorpus_DefaultEmbeddingModel(t *testing.T) {
	stub := &stubRAG{}
	ts := newToolset(stub)

	out, err := ts.createCorpus(context.Background(), CreateCorpusInput{DisplayName: "Docs"})
	if err != nil {
		t.Fatalf("createCorpus: %v", err)
	}
	if stub.createdModel != "text-multilingual-embedding-002" {
		t.Errorf("embedding model = %q, want configured default", stub.createdModel)
	}
	if out.Corpus.State != ragengine.CorpusStateActive {
		t.Errorf("state = %q", out.Corpus.State)
	}
}

func TestCreateCorpus_EmptyDisplayName(t *testing.T) {
	ts := newToolset(&stubRAG{})
	if _, err := ts.createCorpus(context.Background(), CreateCorpusInput{}); err == nil {
		t.Fatal("createCorpus with empty display name succeeded, want error")
	}
}

func TestUpdateCorpus_ExpandsBareID(t *testing.T) {
	stub := &stubRAG{}
	ts := newToolset(stub)

	_, err := ts.updateCorpus(context.Background(), UpdateCorpusInput{CorpusName: "111", DisplayName: "New"})
	if err != nil {
		t.Fatalf("updateCorpus: %v", err)
	}
	if stub.updatedName != corpusA {
		t.Errorf("corpus name = %q, want expanded %q", stub.updatedName, corpusA)
	}
}

func TestDeleteCorpus_RequiresConfirmation(t *testing.T) {
	stub := &stubRAG{}
	ts := newToolset(stub)
	ctx := context.Background()

	if _, err := ts.deleteCorpus(ctx, DeleteCorpusInput{CorpusName: "111"}); err == nil {
		t.Fatal("unconfirmed delete succeeded, want error")
	}
	if stub.deletedCorpus != "" {
		t.Fatalf("service was called without confirmation: %q", stub.deletedCorpus)
	}

	out, err := ts.deleteCorpus(ctx, DeleteCorpusInput{CorpusName: "111", Confirm: true})
	if err != nil {
		t.Fatalf("confirmed delete: %v", err)
	}
	if stub.deletedCorpus != corpusA || !stub.deletedForce {
		t.Errorf("delete called with corpus=%q force=%v", stub.deletedCorpus, stub.deletedForce)
	}
	if out.Deleted != corpusA {
		t.Errorf("Deleted = %q", out.Deleted)
	}
}

func TestImportDocuments(t *testing.T) {
	stub := &stubRAG{}
	ts := newToolset(stub)

	out, err := ts.importDocuments(context.Background(), ImportInput{
		CorpusName: "111",
		GCSUris:    []string{"gs://docs/a.pdf", "gs://docs/b.pdf"},
		ChunkSize:  512,
	})
	if err != nil {
		t.Fatalf("importDocuments: %v", err)
	}
	if stub.importCorpus != corpusA {
		t.Errorf("corpus = %q, want expanded %q", stub.importCorpus, corpusA)
	}
	if stub.importChunkSize != 512 {
		t.Errorf("chunk size = %d", stub.importChunkSize)
	}
	if out.Result.ImportedCount != 2 {
		t.Errorf("imported = %d, want 2", out.Result.ImportedCount)
	}
}

func TestImportDocuments_RejectsNonGCSURI(t *testing.T) {
	stub := &stubRAG{}
	ts := newToolset(stub)

	_, err := ts.importDocuments(context.Background(), ImportInput{
		CorpusName: "111",
		GCSUris:    []string{"https://example.com/a.pdf"},
	})
	if err == nil {
		t.Fatal("import with https source succeeded, want error")
	}
	if stub.importCorpus != "" {
		t.Error("service was called despite invalid source")
	}
}

func TestFileResourceName(t *testing.T) {
	ts := newToolset(&stubRAG{})

	tests := []struct {
		name    string
		corpus  string
		file    string
		want    string
		wantErr bool
	}{
		{
			name:   "bare ids",
			corpus: "111",
			file:   "f1",
			want:   corpusA + "/ragFiles/f1",
		},
		{
			name: "full resource name passes through",
			file: corpusA + "/ragFiles/f1",
			want: corpusA + "/ragFiles/f1",
		},
		{name: "empty file", wantErr: true},
		{name: "bare file without corpus", file: "f1", wantErr: true},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got, err := ts.fileResourceName(tc.corpus, tc.file)
			if tc.wantErr {
				if err == nil {
					t.Fatal("want error, got nil")
				}
				return
			}
			if err != nil {
				t.Fatalf("fileResourceName: %v", err)
			}
			if got != tc.want {
				t.Errorf("got %q, want %q", got, tc.want)
			}
		})
	}
}

func TestDeleteFile_RequiresConfirmation(t *testing.T) {
	stub := &stubRAG{}
	ts := newToolset(stub)
	ctx := context.Background()

	if _, err := ts.deleteFile(ctx, DeleteFileInput{CorpusName: "111", FileName: "f1"}); err == nil {
		t.Fatal("unconfirmed delete succeeded, want error")
	}
	if _, err := ts.deleteFile(ctx, DeleteFileInput{CorpusName: "111", FileName: "f1", Confirm: true}); err != nil {
		t.Fatalf("confirmed delete: %v", err)
	}
	if want := corpusA + "/ragFiles/f1"; stub.deletedFile != want {
		t.Errorf("deleted %q, want %q", stub.deletedFile, want)
	}
}

func TestQueryCorpus_Defaults(t *testing.T) {
	stub := &stubRAG{}
	ts := newToolset(stub)

	out, err := ts.queryCorpus(context.Background(), QueryInput{CorpusName: "111", Query: "revenue"})
	if err != nil {
		t.Fatalf("queryCorpus: %v", err)
	}
	if diff := cmp.Diff([]string{corpusA}, stub.retrieveCorpora); diff != "" {
		t.Errorf("corpora mismatch (-want +got):\n%s", diff)
	}
	if stub.retrieveTopK != 10 {
		t.Errorf("top_k = %d, want configured default 10", stub.retrieveTopK)
	}
	if stub.retrieveDistance != 0.5 {
		t.Errorf("distance threshold = %v, want configured default 0.5", stub.retrieveDistance)
	}
	if out.Count != 1 {
		t.Errorf("count = %d", out.Count)
	}
}

func TestSearchAllCorpora_SingleRetrieveCall(t *testing.T) {
	stub := &stubRAG{corpora: []*ragengine.Corpus{{Name: corpusA}, {Name: corpusB}}}
	ts := newToolset(stub)

	out, err := ts.searchAllCorpora(context.Background(), SearchAllInput{Query: "revenue"})
	if err != nil {
		t.Fatalf("searchAllCorpora: %v", err)
	}
	if diff := cmp.Diff([]string{corpusA, corpusB}, stub.retrieveCorpora); diff != "" {
		t.Errorf("corpora mismatch (-want +got):\n%s", diff)
	}
	if stub.retrieveTopK != 5 {
		t.Errorf("top_k = %d, want search default 5", stub.retrieveTopK)
	}
	if out.Count != 1 {
		t.Errorf("count = %d", out.Count)
	}
}

func TestSearchAllCorpora_NoCorpora(t *testing.T) {
	ts := newToolset(&stubRAG{})
	if _, err := ts.searchAllCorpora(context.Background(), SearchAllInput{Query: "revenue"}); err == nil {
		t.Fatal("search with no corpora succeeded, want error")
	}
}

func TestErrorsPropagate(t *testing.T) {
	stub := &stubRAG{err: fmt.Errorf("permission denied")}
	ts := newToolset(stub)
	ctx := context.Background()

	if _, err := ts.getCorpus(ctx, GetCorpusInput{CorpusName: "111"}); err == nil {
		t.Error("getCorpus did not propagate the service error")
	}
	if _, err := ts.listFiles(ctx, ListFilesInput{CorpusName: "111"}); err == nil {
		t.Error("listFiles did not propagate the service error")
	}
}

func TestTools_AllRegistered(t *testing.T) {
	ts := newToolset(&stubRAG{})
	tools, err := ts.Tools()
	if err != nil {
		t.Fatalf("Tools: %v", err)
	}
	if len(tools) != 11 {
		t.Fatalf("len(tools) = %d, want 11", len(tools))
	}
}
